package webhook

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
)

// MaxBeaconBytes caps a queued payload, mirroring browser beacon limits.
const MaxBeaconBytes = 64 << 10

var ErrBeaconRejected = errors.New("beacon rejected")

type beaconJob struct {
	endpoint string
	body     []byte
}

// Beacon accepts payloads into a bounded queue and sends them in the
// background. Acceptance is the success signal; remote receipt is never
// confirmed.
type Beacon struct {
	client      *http.Client
	logger      *zap.Logger
	sendTimeout time.Duration

	mu     sync.RWMutex
	closed bool
	queue  chan beaconJob
	done   chan struct{}
}

func NewBeacon(client *http.Client, logger *zap.Logger, queueSize int, sendTimeout time.Duration) *Beacon {
	if queueSize <= 0 {
		queueSize = 64
	}
	if sendTimeout <= 0 {
		sendTimeout = DefaultAttemptTimeout
	}
	b := &Beacon{
		client:      clientOrDefault(client),
		logger:      logger,
		sendTimeout: sendTimeout,
		queue:       make(chan beaconJob, queueSize),
		done:        make(chan struct{}),
	}
	go b.run()
	return b
}

func (*Beacon) Method() string { return MethodBeacon }

func (b *Beacon) Send(_ context.Context, endpoint string, body []byte) error {
	if len(body) > MaxBeaconBytes {
		return fmt.Errorf("%w: payload %d bytes exceeds %d", ErrBeaconRejected, len(body), MaxBeaconBytes)
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return fmt.Errorf("%w: closed", ErrBeaconRejected)
	}
	select {
	case b.queue <- beaconJob{endpoint: endpoint, body: append([]byte(nil), body...)}:
		return nil
	default:
		return fmt.Errorf("%w: queue full", ErrBeaconRejected)
	}
}

// Close stops accepting payloads and waits for the queue to drain or ctx
// to end.
func (b *Beacon) Close(ctx context.Context) error {
	b.mu.Lock()
	if !b.closed {
		b.closed = true
		close(b.queue)
	}
	b.mu.Unlock()

	select {
	case <-b.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (b *Beacon) run() {
	defer close(b.done)
	for job := range b.queue {
		b.deliver(job)
	}
}

func (b *Beacon) deliver(job beaconJob) {
	ctx, cancel := context.WithTimeout(context.Background(), b.sendTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, job.endpoint, bytes.NewReader(job.body))
	if err != nil {
		b.logger.Warn("Beacon request invalid", zap.Error(err))
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.client.Do(req)
	if err != nil {
		b.logger.Warn("Beacon send failed",
			zap.String("endpoint", job.endpoint),
			zap.Error(err))
		return
	}
	drain(resp.Body)
	b.logger.Debug("Beacon sent",
		zap.String("endpoint", job.endpoint),
		zap.Int("status", resp.StatusCode))
}
