package server

import (
	"war-game/internal/database"
	"war-game/internal/game"

	"go.uber.org/zap"
)

type ResultStore interface {
	Insert(result database.GameResult) error
}

type ResultPublisher interface {
	Publish(result database.GameResult) error
}

// Recorder stores every finished game and publishes it. Either side may be
// nil.
type Recorder struct {
	store  ResultStore
	pub    ResultPublisher
	logger *zap.Logger
}

func NewRecorder(store ResultStore, pub ResultPublisher, logger *zap.Logger) *Recorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Recorder{store: store, pub: pub, logger: logger}
}

// Record saves res. A failed publish is logged but does not fail the call;
// the row is already stored.
func (r *Recorder) Record(res game.Result, setup game.Setup) (database.GameResult, error) {
	row := database.NewGameResult(res, setup)
	if r.store != nil {
		if err := r.store.Insert(row); err != nil {
			r.logger.Error("storing result failed", zap.String("game_id", row.ID), zap.Error(err))
			return row, err
		}
	}
	if r.pub != nil {
		if err := r.pub.Publish(row); err != nil {
			r.logger.Warn("publishing result failed", zap.String("game_id", row.ID), zap.Error(err))
		}
	}
	r.logger.Info("game recorded",
		zap.String("game_id", row.ID),
		zap.String("winner", row.Winner),
		zap.Int("draws", row.Draws))
	return row, nil
}
