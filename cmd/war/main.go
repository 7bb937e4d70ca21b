package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"war-game/internal/config"
	"war-game/internal/game"
	"war-game/internal/shared"
	"war-game/internal/simulation"

	"github.com/pterm/pterm"
	"go.uber.org/zap"
)

type options struct {
	setup   game.Setup
	games   int
	workers int
	quiet   bool
	verbose bool
}

func main() {
	opts, err := parseArgs()
	if err != nil {
		pterm.Error.Println(err)
		os.Exit(2)
	}

	logger := zap.NewNop()
	if opts.verbose {
		if logger, err = zap.NewDevelopment(); err != nil {
			pterm.Error.Println(err)
			os.Exit(1)
		}
	}
	defer logger.Sync()

	if opts.games > 1 {
		err = runBatch(opts, logger)
	} else {
		err = playOne(opts, logger)
	}
	if err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}
}

// parseArgs starts from the environment (and .env) and lets flags override it.
func parseArgs() (options, error) {
	cfg, err := config.Load()
	if err != nil {
		return options{}, err
	}
	s := cfg.Game
	rankDefault := "high"
	if s.JokerRank == shared.Low {
		rankDefault = "low"
	}

	decks := flag.Int("decks", s.Decks, "Number of 52-card packs")
	jokers := flag.String("jokers", s.Jokers.String(), "Jokers: keep or discard")
	jokerRank := flag.String("joker-rank", rankDefault, "Joker rank: high or low")
	seed := flag.Uint64("seed", s.Seed, "Random seed (0 for current time)")
	passes := flag.Int("passes", s.ShufflePasses, "Relink shuffle passes")
	shuffle := flag.String("shuffle", string(s.Shuffle), "Shuffle mode: relink or uniform")
	maxCycles := flag.Int("max-cycles", s.MaxCycles, "Stop a game after this many draws (0 for no limit)")
	games := flag.Int("games", 1, "Number of games; more than one prints statistics only")
	workers := flag.Int("workers", 0, "Simulation workers (0 for one per CPU)")
	quiet := flag.Bool("quiet", false, "Do not print one line per draw")
	verbose := flag.Bool("v", false, "Debug logging")
	flag.Parse()

	s.Decks = *decks
	s.Seed = *seed
	s.ShufflePasses = *passes
	s.MaxCycles = *maxCycles
	if s.Jokers, err = shared.ParseJokerPolicy(*jokers); err != nil {
		return options{}, err
	}
	if s.JokerRank, err = shared.ParseJokerRank(*jokerRank); err != nil {
		return options{}, err
	}
	if s.Shuffle, err = game.ParseShuffleMode(*shuffle); err != nil {
		return options{}, err
	}
	if err := s.Validate(); err != nil {
		return options{}, err
	}
	if *games < 1 {
		return options{}, fmt.Errorf("games must be positive: %d", *games)
	}
	return options{setup: s, games: *games, workers: *workers, quiet: *quiet, verbose: *verbose}, nil
}

func printPile(title string, lines []string) {
	pterm.DefaultSection.Println(title)
	pterm.Println(strings.Join(lines, "\n"))
}

// playOne prints a single game from the ordered deck to the winner.
func playOne(opts options, logger *zap.Logger) error {
	s := opts.setup.WithSeed()
	d, err := s.Deck()
	if err != nil {
		return err
	}
	printPile("Ordered deck", d.ShowCards())

	src := shared.NewSource(s.Seed)
	s.ShuffleDeck(d, src)
	printPile(fmt.Sprintf("Shuffled deck (seed %d)", s.Seed), d.ShowCards())

	g := game.NewGame(d, src,
		game.WithLogger(logger),
		game.WithMaxCycles(s.MaxCycles),
		game.WithObserver(func(ev game.Event) {
			if !opts.quiet || ev.Kind == game.EventGameOver {
				pterm.Println(ev.String())
			}
		}))
	g.Seed = s.Seed
	printPile("Hand A", g.Players[0].Hand.ShowCards())
	printPile("Hand B", g.Players[1].Hand.ShowCards())

	pterm.DefaultSection.Println("Play")
	res := g.Run()

	printPile("Discard A", g.Players[0].Discard.ShowCards())
	printPile("Discard B", g.Players[1].Discard.ShowCards())
	printPile("Deck", d.ShowCards())

	switch {
	case res.Capped:
		pterm.Warning.Printfln("Stopped after %d draws, %s", res.Draws, res)
	case res.Winner == shared.NoSide:
		pterm.Warning.Println(res.String())
	default:
		pterm.Success.Println(res.String())
	}
	pterm.Info.Printfln("Wars: %d, deepest war: %d, cards A/B: %d/%d", res.Wars, res.MaxWarDepth, res.CardsA, res.CardsB)
	return nil
}

func runBatch(opts options, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	spinner, _ := pterm.DefaultSpinner.Start(fmt.Sprintf("Playing %d games...", opts.games))
	start := time.Now()
	sum, err := simulation.Run(ctx, simulation.Options{
		Setup:   opts.setup,
		Games:   opts.games,
		Workers: opts.workers,
		Seed:    opts.setup.Seed,
		Logger:  logger,
	})
	if err != nil {
		if spinner != nil {
			spinner.Fail(err.Error())
		}
		return err
	}
	if spinner != nil {
		spinner.Success(fmt.Sprintf("Simulation completed in %v", time.Since(start).Round(time.Millisecond)))
	}

	pct := func(n int) string {
		return fmt.Sprintf("%d (%.1f%%)", n, 100*float64(n)/float64(sum.Games))
	}
	return pterm.DefaultTable.WithHasHeader().WithData(pterm.TableData{
		{"Statistic", "Value"},
		{"Games", strconv.Itoa(sum.Games)},
		{"Master seed", strconv.FormatUint(sum.Seed, 10)},
		{"A wins", pct(sum.WinsA)},
		{"B wins", pct(sum.WinsB)},
		{"No winner", pct(sum.NoWinner)},
		{"Stalemates", strconv.Itoa(sum.Stalemates)},
		{"Capped", strconv.Itoa(sum.Capped)},
		{"Draws min/mean/max", fmt.Sprintf("%d / %.1f / %d", sum.MinDraws, sum.MeanDraws, sum.MaxDraws)},
		{"Wars", strconv.Itoa(sum.Wars)},
		{"Deepest war", strconv.Itoa(sum.MaxWarDepth)},
	}).Render()
}
