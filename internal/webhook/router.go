package webhook

import (
	"context"
	"net/http"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
)

type Kind string

const (
	KindOrder    Kind = "order"
	KindReturn   Kind = "return"
	KindExchange Kind = "exchange"
)

// Deliverer is what order and request flows depend on.
type Deliverer interface {
	Deliver(ctx context.Context, kind Kind, payload Payload) Result
}

// Router picks the endpoint configured for each kind of event. An unset
// endpoint falls back to simulated delivery.
type Router struct {
	cascade   *Cascade
	endpoints map[Kind]string
}

func NewRouter(cascade *Cascade, endpoints map[Kind]string) *Router {
	m := make(map[Kind]string, len(endpoints))
	for k, v := range endpoints {
		m[k] = v
	}
	return &Router{cascade: cascade, endpoints: m}
}

func (r *Router) Deliver(ctx context.Context, kind Kind, payload Payload) Result {
	return r.cascade.Deliver(ctx, r.endpoints[kind], payload)
}

// Settings collects the knobs of the standard four-strategy cascade.
type Settings struct {
	SimulatedDelay  time.Duration
	AttemptTimeout  time.Duration
	MaxURLLength    int
	BeaconQueueSize int
	Clock           clockwork.Clock
}

// NewStandard builds the cors-post, no-cors-post, beacon, image-get cascade.
// The returned Beacon must be closed on shutdown.
func NewStandard(client *http.Client, logger *zap.Logger, s Settings) (*Cascade, *Beacon) {
	beacon := NewBeacon(client, logger.Named("beacon"), s.BeaconQueueSize, s.AttemptTimeout)
	strategies := []Strategy{
		CORSPost{Client: client},
		NoCORSPost{Client: client},
		beacon,
		ImageGet{Client: client, MaxURLLength: s.MaxURLLength},
	}

	opts := []Option{
		WithSimulatedDelay(s.SimulatedDelay),
		WithAttemptTimeout(s.AttemptTimeout),
	}
	if s.Clock != nil {
		opts = append(opts, WithClock(s.Clock))
	}
	return NewCascade(logger, strategies, opts...), beacon
}
