package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
)

const (
	MethodSimulated  = "simulated"
	MethodCORSPost   = "cors-post"
	MethodNoCORSPost = "no-cors-post"
	MethodBeacon     = "beacon"
	MethodImageGet   = "image-get"
	MethodFailed     = "failed"

	DefaultSimulatedDelay = 1500 * time.Millisecond
	DefaultAttemptTimeout = 10 * time.Second
)

// ErrNotApplicable marks a strategy that declined to try at all.
var ErrNotApplicable = errors.New("strategy not applicable")

// Payload is always a flat map of human-readable keys to strings so that
// spreadsheet-style consumers can map it column by column.
type Payload map[string]string

type Result struct {
	Success bool   `json:"success"`
	Method  string `json:"methodUsed"`
}

// Strategy is one transport in the cascade. Send returns nil only when the
// strategy considers the payload delivered.
type Strategy interface {
	Method() string
	Send(ctx context.Context, endpoint string, body []byte) error
}

type Option func(*Cascade)

func WithClock(clock clockwork.Clock) Option {
	return func(c *Cascade) { c.clock = clock }
}

func WithSimulatedDelay(d time.Duration) Option {
	return func(c *Cascade) { c.simulatedDelay = d }
}

func WithAttemptTimeout(d time.Duration) Option {
	return func(c *Cascade) {
		if d > 0 {
			c.attemptTimeout = d
		}
	}
}

// Cascade tries its strategies strictly in order, once each, and stops at
// the first success.
type Cascade struct {
	strategies     []Strategy
	clock          clockwork.Clock
	simulatedDelay time.Duration
	attemptTimeout time.Duration
	logger         *zap.Logger
}

func NewCascade(logger *zap.Logger, strategies []Strategy, opts ...Option) *Cascade {
	c := &Cascade{
		strategies:     strategies,
		clock:          clockwork.NewRealClock(),
		simulatedDelay: DefaultSimulatedDelay,
		attemptTimeout: DefaultAttemptTimeout,
		logger:         logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Deliver sends payload to endpoint. An empty endpoint reports a simulated
// success after the configured delay without touching the network.
func (c *Cascade) Deliver(ctx context.Context, endpoint string, payload Payload) Result {
	if endpoint == "" {
		select {
		case <-c.clock.After(c.simulatedDelay):
			c.logger.Info("No webhook URL configured, simulated delivery")
			return Result{Success: true, Method: MethodSimulated}
		case <-ctx.Done():
			return Result{Success: false, Method: MethodFailed}
		}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		c.logger.Error("Failed to marshal webhook payload", zap.Error(err))
		return Result{Success: false, Method: MethodFailed}
	}

	for _, s := range c.strategies {
		if ctx.Err() != nil {
			break
		}
		if err := c.attempt(ctx, s, endpoint, body); err != nil {
			if errors.Is(err, ErrNotApplicable) {
				c.logger.Debug("Webhook strategy skipped",
					zap.String("method", s.Method()),
					zap.Error(err))
			} else {
				c.logger.Warn("Webhook strategy failed",
					zap.String("method", s.Method()),
					zap.Error(err))
			}
			continue
		}
		c.logger.Info("Webhook delivered",
			zap.String("method", s.Method()),
			zap.String("endpoint", endpoint))
		return Result{Success: true, Method: s.Method()}
	}

	c.logger.Error("All webhook delivery methods failed", zap.String("endpoint", endpoint))
	return Result{Success: false, Method: MethodFailed}
}

func (c *Cascade) attempt(ctx context.Context, s Strategy, endpoint string, body []byte) error {
	ctx, cancel := context.WithTimeout(ctx, c.attemptTimeout)
	defer cancel()
	return s.Send(ctx, endpoint, body)
}
