package notify

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

const (
	DefaultDuration = 3500 * time.Millisecond
	DefaultWatchdog = 8 * time.Second
	historySize     = 10
)

type Kind string

const (
	KindInfo    Kind = "info"
	KindSuccess Kind = "success"
	KindWarning Kind = "warning"
	KindError   Kind = "error"
)

type State int

const (
	Idle State = iota
	Showing
	Paused
)

func (s State) String() string {
	switch s {
	case Showing:
		return "showing"
	case Paused:
		return "paused"
	default:
		return "idle"
	}
}

type Notification struct {
	ID       string        `json:"id"`
	Message  string        `json:"message"`
	Kind     Kind          `json:"kind"`
	Duration time.Duration `json:"duration"`
	ShownAt  time.Time     `json:"shownAt"`
}

// HideReason says why a notification left the screen.
type HideReason string

const (
	HideDismissed HideReason = "dismissed"
	HideWatchdog  HideReason = "watchdog"
	HideManual    HideReason = "manual"
)

const (
	EventShow = "show"
	EventHide = "hide"
)

type Event struct {
	Type         string        `json:"type"`
	Notification *Notification `json:"notification,omitempty"`
	Reason       HideReason    `json:"reason,omitempty"`
}

type Option func(*Timer)

func WithWatchdog(d time.Duration) Option {
	return func(t *Timer) {
		if d > 0 {
			t.watchdog = d
		}
	}
}

func WithDefaultDuration(d time.Duration) Option {
	return func(t *Timer) {
		if d > 0 {
			t.defaultDuration = d
		}
	}
}

// Timer shows one notification at a time. The dismiss timer can be paused
// and resumed; the watchdog cannot, so a notification is never visible for
// longer than the watchdog period.
type Timer struct {
	clock           clockwork.Clock
	watchdog        time.Duration
	defaultDuration time.Duration

	mu        sync.Mutex
	state     State
	current   *Notification
	remaining time.Duration
	startedAt time.Time
	dismiss   clockwork.Timer
	guard     clockwork.Timer
	gen       uint64
	history   []Notification
	onChange  func(Event)
}

func NewTimer(clock clockwork.Clock, opts ...Option) *Timer {
	t := &Timer{
		clock:           clock,
		watchdog:        DefaultWatchdog,
		defaultDuration: DefaultDuration,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// OnChange registers the listener for show and hide events. Listeners run
// without the timer lock held.
func (t *Timer) OnChange(fn func(Event)) {
	t.mu.Lock()
	t.onChange = fn
	t.mu.Unlock()
}

// Show replaces whatever is on screen. A non-positive duration uses the
// default.
func (t *Timer) Show(message string, kind Kind, duration time.Duration) Notification {
	if duration <= 0 {
		duration = t.defaultDuration
	}
	if kind == "" {
		kind = KindInfo
	}

	t.mu.Lock()
	t.stopTimersLocked()
	t.gen++
	gen := t.gen

	n := Notification{
		ID:       uuid.NewString(),
		Message:  message,
		Kind:     kind,
		Duration: duration,
		ShownAt:  t.clock.Now(),
	}
	t.current = &n
	t.state = Showing
	t.remaining = duration
	t.startedAt = n.ShownAt
	t.dismiss = t.clock.AfterFunc(duration, func() { t.expire(gen, HideDismissed) })
	t.guard = t.clock.AfterFunc(t.watchdog, func() { t.expire(gen, HideWatchdog) })

	t.history = append(t.history, n)
	if len(t.history) > historySize {
		t.history = t.history[len(t.history)-historySize:]
	}
	listener := t.onChange
	t.mu.Unlock()

	if listener != nil {
		listener(Event{Type: EventShow, Notification: &n})
	}
	return n
}

// Pause freezes the dismiss countdown. The watchdog keeps running.
func (t *Timer) Pause() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state != Showing {
		return false
	}
	elapsed := t.clock.Now().Sub(t.startedAt)
	t.remaining -= elapsed
	if t.dismiss != nil {
		t.dismiss.Stop()
		t.dismiss = nil
	}
	t.state = Paused
	return true
}

// Resume restarts the dismiss countdown for the time left when paused.
func (t *Timer) Resume() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state != Paused || t.remaining <= 0 {
		return false
	}
	gen := t.gen
	t.startedAt = t.clock.Now()
	t.dismiss = t.clock.AfterFunc(t.remaining, func() { t.expire(gen, HideDismissed) })
	t.state = Showing
	return true
}

func (t *Timer) Hide() {
	t.hide(HideManual)
}

func (t *Timer) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Remaining reports the dismiss time left as of the last pause or resume.
func (t *Timer) Remaining() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.remaining
}

func (t *Timer) Current() (Notification, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.current == nil {
		return Notification{}, false
	}
	return *t.current, true
}

// History returns the most recent notifications, oldest first.
func (t *Timer) History() []Notification {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]Notification, len(t.history))
	copy(out, t.history)
	return out
}

// expire ignores timers that belong to a notification already replaced
// or hidden.
func (t *Timer) expire(gen uint64, reason HideReason) {
	t.mu.Lock()
	if gen != t.gen {
		t.mu.Unlock()
		return
	}
	notifyFn := t.hideLocked(reason)
	t.mu.Unlock()

	if notifyFn != nil {
		notifyFn()
	}
}

func (t *Timer) hide(reason HideReason) {
	t.mu.Lock()
	notifyFn := t.hideLocked(reason)
	t.mu.Unlock()

	if notifyFn != nil {
		notifyFn()
	}
}

func (t *Timer) hideLocked(reason HideReason) func() {
	if t.state == Idle {
		return nil
	}
	t.stopTimersLocked()
	t.gen++
	n := t.current
	t.current = nil
	t.state = Idle
	t.remaining = 0

	listener := t.onChange
	if listener == nil {
		return nil
	}
	return func() { listener(Event{Type: EventHide, Notification: n, Reason: reason}) }
}

func (t *Timer) stopTimersLocked() {
	if t.dismiss != nil {
		t.dismiss.Stop()
		t.dismiss = nil
	}
	if t.guard != nil {
		t.guard.Stop()
		t.guard = nil
	}
}
