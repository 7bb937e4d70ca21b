package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"war-game/internal/broker"
	"war-game/internal/config"
	"war-game/internal/database"
	"war-game/internal/server"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger, err := cfg.NewLogger()
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer logger.Sync()
	logger.Info("starting War server",
		zap.String("addr", cfg.HTTPAddr),
		zap.String("db_driver", cfg.DBDriver),
		zap.Int("decks", cfg.Game.Decks),
		zap.Stringer("jokers", cfg.Game.Jokers))

	db, err := database.New(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		return err
	}
	defer db.Close()

	pub, err := broker.Connect(cfg.NATSURL, cfg.NATSSubject, logger.Named("nats"))
	if err != nil {
		return err
	}
	defer pub.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rec := server.NewRecorder(db, pub, logger.Named("results"))
	hub := server.NewHub(cfg.Game, rec, logger.Named("hub"))
	go hub.Run(ctx)

	if cfg.LogLevel > zap.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}
	router := server.SetupRouter(server.Deps{
		DB:       db,
		Hub:      hub,
		Recorder: rec,
		Setup:    cfg.Game,
		Logger:   logger.Named("http"),
	})
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
