package storefront

import (
	"slices"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/mhhmod/tes3/internal/notify"
	"github.com/mhhmod/tes3/internal/repository"
	"go.uber.org/zap"
)

type RegistryOption func(*Registry)

func WithClock(clock clockwork.Clock) RegistryOption {
	return func(r *Registry) { r.clock = clock }
}

func WithToastOptions(opts ...notify.Option) RegistryOption {
	return func(r *Registry) { r.toastOpts = append(r.toastOpts, opts...) }
}

// Registry hands out the single Session owner per session id.
type Registry struct {
	store     repository.Store
	products  ProductSource
	logger    *zap.Logger
	clock     clockwork.Clock
	toastOpts []notify.Option

	mu        sync.Mutex
	sessions  map[string]*entry
	listeners []func(Change)
	toastFns  []func(sessionID string, ev notify.Event)
}

type entry struct {
	session  *Session
	lastUsed time.Time
}

func NewRegistry(store repository.Store, products ProductSource, logger *zap.Logger, opts ...RegistryOption) *Registry {
	r := &Registry{
		store:    store,
		products: products,
		logger:   logger,
		clock:    clockwork.NewRealClock(),
		sessions: make(map[string]*entry),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Subscribe registers fn for changes in every session, including sessions
// opened later.
func (r *Registry) Subscribe(fn func(Change)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listeners = append(r.listeners, fn)
}

// OnToast registers fn for notification events of every session.
func (r *Registry) OnToast(fn func(sessionID string, ev notify.Event)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.toastFns = append(r.toastFns, fn)
}

func (r *Registry) Open(sessionID string) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.clock.Now()
	if e, ok := r.sessions[sessionID]; ok {
		e.lastUsed = now
		return e.session
	}

	s := &Session{
		id:       sessionID,
		store:    r.store,
		products: r.products,
		logger:   r.logger.With(zap.String("sessionId", sessionID)),
		toasts:   notify.NewTimer(r.clock, r.toastOpts...),
	}
	s.Subscribe(r.dispatch)
	s.toasts.OnChange(func(ev notify.Event) { r.dispatchToast(sessionID, ev) })

	r.sessions[sessionID] = &entry{session: s, lastUsed: now}
	r.logger.Debug("Session opened", zap.String("sessionId", sessionID))
	return s
}

// Sweep drops session owners idle for longer than maxIdle. Their state
// stays in the store and is picked up again by the next Open.
func (r *Registry) Sweep(maxIdle time.Duration) int {
	r.mu.Lock()
	now := r.clock.Now()
	var idle []*Session
	for id, e := range r.sessions {
		if now.Sub(e.lastUsed) > maxIdle {
			idle = append(idle, e.session)
			delete(r.sessions, id)
		}
	}
	r.mu.Unlock()

	for _, s := range idle {
		s.toasts.Hide()
	}
	if len(idle) > 0 {
		r.logger.Info("Swept idle sessions", zap.Int("count", len(idle)))
	}
	return len(idle)
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

func (r *Registry) dispatch(ch Change) {
	r.mu.Lock()
	listeners := slices.Clone(r.listeners)
	r.mu.Unlock()

	for _, fn := range listeners {
		fn(ch)
	}
}

func (r *Registry) dispatchToast(sessionID string, ev notify.Event) {
	r.mu.Lock()
	fns := slices.Clone(r.toastFns)
	r.mu.Unlock()

	for _, fn := range fns {
		fn(sessionID, ev)
	}
}
