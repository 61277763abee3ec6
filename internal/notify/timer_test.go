package notify

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) record(ev Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recorder) hides() []HideReason {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []HideReason
	for _, ev := range r.events {
		if ev.Type == "hide" {
			out = append(out, ev.Reason)
		}
	}
	return out
}

func waitIdle(t *testing.T, timer *Timer) {
	t.Helper()
	require.Eventually(t, func() bool { return timer.State() == Idle }, time.Second, time.Millisecond)
}

func TestTimer_DismissesAfterDuration(t *testing.T) {
	clock := clockwork.NewFakeClock()
	timer := NewTimer(clock)
	rec := &recorder{}
	timer.OnChange(rec.record)

	n := timer.Show("Added to cart", KindSuccess, time.Second)
	assert.Equal(t, Showing, timer.State())
	assert.Equal(t, KindSuccess, n.Kind)

	clock.Advance(999 * time.Millisecond)
	assert.Equal(t, Showing, timer.State())

	clock.Advance(time.Millisecond)
	waitIdle(t, timer)
	assert.Equal(t, []HideReason{HideDismissed}, rec.hides())
}

func TestTimer_PauseResumeKeepsRemainingTime(t *testing.T) {
	clock := clockwork.NewFakeClock()
	timer := NewTimer(clock)

	timer.Show("msg", KindInfo, 1000*time.Millisecond)
	clock.Advance(400 * time.Millisecond)
	require.True(t, timer.Pause())
	assert.Equal(t, Paused, timer.State())
	assert.Equal(t, 600*time.Millisecond, timer.Remaining())

	// Paused time does not count against the notification.
	clock.Advance(2 * time.Second)
	assert.Equal(t, Paused, timer.State())

	require.True(t, timer.Resume())
	clock.Advance(599 * time.Millisecond)
	assert.Equal(t, Showing, timer.State())

	clock.Advance(time.Millisecond)
	waitIdle(t, timer)
}

func TestTimer_WatchdogIgnoresPause(t *testing.T) {
	clock := clockwork.NewFakeClock()
	timer := NewTimer(clock, WithWatchdog(8*time.Second))
	rec := &recorder{}
	timer.OnChange(rec.record)

	timer.Show("stuck hover", KindInfo, 3*time.Second)
	for i := 0; i < 4; i++ {
		clock.Advance(400 * time.Millisecond)
		require.True(t, timer.Pause())
		clock.Advance(1400 * time.Millisecond)
		require.True(t, timer.Resume())
	}
	assert.Equal(t, 1400*time.Millisecond, timer.Remaining())

	clock.Advance(800 * time.Millisecond)
	waitIdle(t, timer)
	assert.Equal(t, []HideReason{HideWatchdog}, rec.hides())
}

func TestTimer_WatchdogFiresWhilePaused(t *testing.T) {
	clock := clockwork.NewFakeClock()
	timer := NewTimer(clock)

	timer.Show("msg", KindInfo, 0)
	clock.Advance(time.Second)
	require.True(t, timer.Pause())

	clock.Advance(DefaultWatchdog)
	waitIdle(t, timer)
	assert.False(t, timer.Resume())
}

func TestTimer_ShowReplacesCurrent(t *testing.T) {
	clock := clockwork.NewFakeClock()
	timer := NewTimer(clock)
	rec := &recorder{}
	timer.OnChange(rec.record)

	timer.Show("first", KindInfo, time.Second)
	clock.Advance(500 * time.Millisecond)
	second := timer.Show("second", KindError, 2*time.Second)

	clock.Advance(time.Second)
	current, ok := timer.Current()
	require.True(t, ok)
	assert.Equal(t, second.ID, current.ID)
	assert.Equal(t, Showing, timer.State())
	assert.Empty(t, rec.hides())

	clock.Advance(time.Second)
	waitIdle(t, timer)
	assert.Equal(t, []HideReason{HideDismissed}, rec.hides())
}

func TestTimer_Transitions(t *testing.T) {
	clock := clockwork.NewFakeClock()
	timer := NewTimer(clock, WithDefaultDuration(2*time.Second))

	assert.False(t, timer.Pause(), "nothing to pause")
	assert.False(t, timer.Resume(), "nothing to resume")

	n := timer.Show("msg", "", 0)
	assert.Equal(t, KindInfo, n.Kind)
	assert.Equal(t, 2*time.Second, n.Duration)

	assert.False(t, timer.Resume(), "already showing")
	require.True(t, timer.Pause())
	assert.False(t, timer.Pause(), "already paused")

	timer.Hide()
	assert.Equal(t, Idle, timer.State())
	_, ok := timer.Current()
	assert.False(t, ok)
	timer.Hide()
}

func TestTimer_HistoryKeepsLastTen(t *testing.T) {
	timer := NewTimer(clockwork.NewFakeClock())
	for i := 0; i < 12; i++ {
		timer.Show(fmt.Sprintf("n%d", i), KindInfo, time.Second)
	}

	history := timer.History()
	require.Len(t, history, 10)
	assert.Equal(t, "n2", history[0].Message)
	assert.Equal(t, "n11", history[9].Message)
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "idle", Idle.String())
	assert.Equal(t, "showing", Showing.String())
	assert.Equal(t, "paused", Paused.String())
}
