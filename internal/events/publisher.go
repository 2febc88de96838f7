// Package events publishes intake notifications over NATS for
// downstream consumers. The service runs without a broker; the router
// treats a nil sink as a no-op.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/sif-medellin/sifgpt/internal/intake"
)

// NATS subjects emitted by the intake service.
const (
	SubjectTurnProcessed = "sif.intake.turn.processed"
	SubjectRegistered    = "sif.intake.registered"
)

type Client struct {
	conn   *nats.Conn
	logger *slog.Logger
}

func NewClient(url, token string, logger *slog.Logger) (*Client, error) {
	opts := []nats.Option{
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(60),
		nats.ReconnectWait(2 * time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("nats disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			logger.Info("nats reconnected")
		}),
	}
	if token != "" {
		opts = append(opts, nats.Token(token))
	}

	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	return &Client{conn: nc, logger: logger}, nil
}

// TurnProcessed implements intake.EventSink. Publish failures are
// logged and swallowed; losing an event must never break a turn.
func (c *Client) TurnProcessed(_ context.Context, e intake.TurnEvent) {
	if err := c.publish(SubjectTurnProcessed, e); err != nil {
		c.logger.Warn("failed to publish turn event",
			"subject", SubjectTurnProcessed,
			"session_id", e.SessionID,
			"error", err)
	}
}

// Registered announces service startup to the bus.
func (c *Client) Registered(port int) error {
	return c.publish(SubjectRegistered, map[string]any{
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"service":   "sifgpt",
		"port":      port,
	})
}

func (c *Client) publish(subject string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	return c.conn.Publish(subject, payload)
}

func (c *Client) Close() {
	c.conn.Close()
}
