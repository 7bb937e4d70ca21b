package simulation

import (
	"context"
	"errors"
	"testing"

	"war-game/internal/game"
	"war-game/internal/shared"
)

func TestRun_IsReproducible(t *testing.T) {
	opts := Options{Setup: game.DefaultSetup(), Games: 24, Seed: 31337}

	opts.Workers = 1
	serial, err := Run(context.Background(), opts)
	if err != nil {
		t.Fatal(err)
	}
	opts.Workers = 4
	parallel, err := Run(context.Background(), opts)
	if err != nil {
		t.Fatal(err)
	}
	if serial != parallel {
		t.Fatalf("worker count changed the summary:\n%+v\n%+v", serial, parallel)
	}

	if serial.Games != 24 || serial.WinsA+serial.WinsB+serial.NoWinner != 24 {
		t.Fatalf("summary = %+v", serial)
	}
	if serial.MinDraws < 26 || serial.MinDraws > serial.MaxDraws {
		t.Fatalf("draws min %d max %d", serial.MinDraws, serial.MaxDraws)
	}
	if serial.MeanDraws < float64(serial.MinDraws) || serial.MeanDraws > float64(serial.MaxDraws) {
		t.Fatalf("mean %f outside [%d, %d]", serial.MeanDraws, serial.MinDraws, serial.MaxDraws)
	}
	if serial.Seed != 31337 {
		t.Fatalf("Seed = %d", serial.Seed)
	}
}

func TestRun_Invalid(t *testing.T) {
	if _, err := Run(context.Background(), Options{Setup: game.DefaultSetup()}); !errors.Is(err, ErrNoGames) {
		t.Fatalf("zero games error = %v", err)
	}
	bad := game.DefaultSetup()
	bad.Decks = 0
	if _, err := Run(context.Background(), Options{Setup: bad, Games: 1}); err == nil {
		t.Fatal("invalid setup should fail")
	}
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Run(ctx, Options{Setup: game.DefaultSetup(), Games: 100, Workers: 2, Seed: 1})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want context.Canceled", err)
	}
}

func TestAggregate(t *testing.T) {
	sum := aggregate([]game.Result{
		{Winner: shared.SideA, Draws: 10, Wars: 1, MaxWarDepth: 1},
		{Winner: shared.SideB, Draws: 30, Wars: 3, MaxWarDepth: 2, Capped: true},
		{Winner: shared.NoSide, Draws: 20, Stalemate: true},
	})
	want := Summary{
		Games: 3, WinsA: 1, WinsB: 1, NoWinner: 1, Capped: 1, Stalemates: 1,
		MinDraws: 10, MaxDraws: 30, MeanDraws: 20, Wars: 4, MaxWarDepth: 2,
	}
	if sum != want {
		t.Fatalf("aggregate = %+v, want %+v", sum, want)
	}
}

func BenchmarkRun(b *testing.B) {
	opts := Options{Setup: game.DefaultSetup(), Games: 100, Seed: 1}
	for i := 0; i < b.N; i++ {
		if _, err := Run(context.Background(), opts); err != nil {
			b.Fatal(err)
		}
	}
}
