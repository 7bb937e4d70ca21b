package simulation

import (
	"context"
	"errors"
	"runtime"
	"sync"

	"war-game/internal/game"
	"war-game/internal/shared"

	"go.uber.org/zap"
)

var ErrNoGames = errors.New("number of games must be positive")

// Options configures a batch. Every game uses Setup with its own seed drawn
// from Seed, so a batch is reproducible whatever the number of workers.
type Options struct {
	Setup   game.Setup
	Games   int
	Workers int    // zero uses one worker per CPU
	Seed    uint64 // zero picks a wall-clock seed
	Logger  *zap.Logger
}

// Summary aggregates the results of a batch.
type Summary struct {
	Seed        uint64  `json:"seed"`
	Games       int     `json:"games"`
	WinsA       int     `json:"wins_a"`
	WinsB       int     `json:"wins_b"`
	NoWinner    int     `json:"no_winner"`
	Capped      int     `json:"capped"`
	Stalemates  int     `json:"stalemates"`
	MinDraws    int     `json:"min_draws"`
	MaxDraws    int     `json:"max_draws"`
	MeanDraws   float64 `json:"mean_draws"`
	Wars        int     `json:"wars"`
	MaxWarDepth int     `json:"max_war_depth"`
}

// Run plays opts.Games games on a worker pool. It stops early and returns
// ctx.Err() when ctx is cancelled.
func Run(ctx context.Context, opts Options) (Summary, error) {
	if opts.Games < 1 {
		return Summary{}, ErrNoGames
	}
	setup := opts.Setup
	if err := setup.Validate(); err != nil {
		return Summary{}, err
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > opts.Games {
		workers = opts.Games
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Seed == 0 {
		opts.Seed = setup.WithSeed().Seed
	}

	seeds := make(chan uint64, opts.Games)
	results := make(chan game.Result, opts.Games)

	rng := shared.NewSource(opts.Seed)
	for i := 0; i < opts.Games; i++ {
		seed := rng.Uint64()
		if seed == 0 {
			seed = 1
		}
		seeds <- seed
	}
	close(seeds)

	var wg sync.WaitGroup
	errs := make([]error, workers)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			errs[w] = worker(ctx, setup, seeds, results)
		}(w)
	}
	go func() {
		wg.Wait()
		close(results)
	}()

	all := make([]game.Result, 0, opts.Games)
	for res := range results {
		all = append(all, res)
	}
	if err := ctx.Err(); err != nil {
		return Summary{}, err
	}
	if err := errors.Join(errs...); err != nil {
		return Summary{}, err
	}

	sum := aggregate(all)
	sum.Seed = opts.Seed
	logger.Info("simulation finished",
		zap.Int("games", sum.Games),
		zap.Int("workers", workers),
		zap.Uint64("seed", sum.Seed),
		zap.Int("wins_a", sum.WinsA),
		zap.Int("wins_b", sum.WinsB),
		zap.Float64("mean_draws", sum.MeanDraws))
	return sum, nil
}

func worker(ctx context.Context, setup game.Setup, seeds <-chan uint64, results chan<- game.Result) error {
	for seed := range seeds {
		if ctx.Err() != nil {
			return nil
		}
		setup.Seed = seed
		g, err := setup.Build()
		if err != nil {
			return err
		}
		results <- g.Run()
	}
	return nil
}

func aggregate(all []game.Result) Summary {
	sum := Summary{Games: len(all)}
	if len(all) == 0 {
		return sum
	}
	total := 0
	sum.MinDraws = all[0].Draws
	for _, r := range all {
		switch r.Winner {
		case shared.SideA:
			sum.WinsA++
		case shared.SideB:
			sum.WinsB++
		default:
			sum.NoWinner++
		}
		if r.Capped {
			sum.Capped++
		}
		if r.Stalemate {
			sum.Stalemates++
		}
		sum.MinDraws = min(sum.MinDraws, r.Draws)
		sum.MaxDraws = max(sum.MaxDraws, r.Draws)
		sum.MaxWarDepth = max(sum.MaxWarDepth, r.MaxWarDepth)
		sum.Wars += r.Wars
		total += r.Draws
	}
	sum.MeanDraws = float64(total) / float64(len(all))
	return sum
}
