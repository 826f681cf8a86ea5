// Package events is the NATS edge of the pipeline: it carries the
// notifications that drive processing and announce its outcome.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
)

// SubjectKramankStored is published by the OCR stage when a kramank's
// page sidecars have landed on disk.
const SubjectKramankStored = "sabha.ocr.kramank.stored"

// SubjectKramankProcessed announces a completed pipeline run.
const SubjectKramankProcessed = "sabha.kramank.processed"

// SubjectKramankFailed announces a document-fatal failure.
const SubjectKramankFailed = "sabha.kramank.failed"

// KramankStored is the inbound trigger payload.
type KramankStored struct {
	Name string `json:"name"`
	Dir  string `json:"dir"`
}

// KramankProcessed is emitted after results are persisted.
type KramankProcessed struct {
	KramankID   string `json:"kramank_id"`
	Name        string `json:"name"`
	Debates     int    `json:"debates"`
	Members     int    `json:"members"`
	Resolutions int    `json:"resolutions"`
}

// KramankFailed is emitted when a run aborts.
type KramankFailed struct {
	KramankID string `json:"kramank_id"`
	Name      string `json:"name"`
	Reason    string `json:"reason"`
}

type Client struct {
	conn   *nats.Conn
	subs   []*nats.Subscription
	logger *slog.Logger
}

func NewClient(ctx context.Context, url, token string, logger *slog.Logger) (*Client, error) {
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

// Conn exposes the underlying connection for JetStream consumers.
func (c *Client) Conn() *nats.Conn {
	return c.conn
}

func (c *Client) Publish(subject string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	return c.conn.Publish(subject, payload)
}

func (c *Client) Subscribe(subject string, handler func(subject string, data []byte)) error {
	sub, err := c.conn.Subscribe(subject, func(msg *nats.Msg) {
		handler(msg.Subject, msg.Data)
	})
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", subject, err)
	}
	c.subs = append(c.subs, sub)
	c.logger.Info("subscribed", "subject", subject)
	return nil
}

func (c *Client) Close() {
	for _, sub := range c.subs {
		_ = sub.Unsubscribe()
	}
	c.conn.Close()
}
