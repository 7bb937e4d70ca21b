package broker

import (
	"fmt"
	"time"

	"war-game/internal/database"
	"war-game/internal/protocol"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

// Publisher sends finished games to a NATS subject. A Publisher without a
// connection drops everything, so callers never check whether NATS is
// configured.
type Publisher struct {
	nc      *nats.Conn
	subject string
	logger  *zap.Logger
}

// Connect dials url. An empty url returns a disabled Publisher.
func Connect(url, subject string, logger *zap.Logger) (*Publisher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	p := &Publisher{subject: subject, logger: logger}
	if url == "" {
		logger.Info("nats disabled")
		return p, nil
	}

	opts := []nats.Option{
		nats.Name("war-server"),
		nats.Timeout(10 * time.Second),
		nats.ReconnectWait(2 * time.Second),
		nats.MaxReconnects(5),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			logger.Warn("nats disconnected", zap.Error(err))
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("nats reconnected", zap.String("url", nc.ConnectedUrl()))
		}),
	}
	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("nats connect %s: %w", url, err)
	}
	p.nc = nc
	logger.Info("nats connected", zap.String("url", nc.ConnectedUrl()), zap.String("subject", subject))
	return p, nil
}

// Enabled reports whether results actually leave the process.
func (p *Publisher) Enabled() bool { return p != nil && p.nc != nil }

// Encode wraps result in a game_over message.
func Encode(result database.GameResult) ([]byte, error) {
	return protocol.NewMessage(protocol.TypeGameOver, result)
}

// Publish sends result on the configured subject.
func (p *Publisher) Publish(result database.GameResult) error {
	if !p.Enabled() {
		return nil
	}
	data, err := Encode(result)
	if err != nil {
		return err
	}
	if err := p.nc.Publish(p.subject, data); err != nil {
		return fmt.Errorf("publish game %s: %w", result.ID, err)
	}
	p.logger.Debug("result published", zap.String("game_id", result.ID), zap.String("subject", p.subject))
	return nil
}

// Close flushes pending messages and closes the connection.
func (p *Publisher) Close() {
	if !p.Enabled() {
		return
	}
	if err := p.nc.Flush(); err != nil {
		p.logger.Warn("nats flush", zap.Error(err))
	}
	p.nc.Close()
}
