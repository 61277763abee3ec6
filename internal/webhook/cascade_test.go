package webhook

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func okResponse(status int) *http.Response {
	return &http.Response{StatusCode: status, Body: io.NopCloser(strings.NewReader("")), Header: http.Header{}}
}

var orderPayload = Payload{"Order ID": "GC-ABC-123456", "Total": "850.00"}

type fakeStrategy struct {
	method string
	err    error
	calls  int
	block  bool
}

func (f *fakeStrategy) Method() string { return f.method }

func (f *fakeStrategy) Send(ctx context.Context, _ string, _ []byte) error {
	f.calls++
	if f.block {
		<-ctx.Done()
		return ctx.Err()
	}
	return f.err
}

func TestDeliver_SimulatedWithoutEndpoint(t *testing.T) {
	clock := clockwork.NewFakeClock()
	var networkCalls atomic.Int32
	client := &http.Client{Transport: roundTripFunc(func(*http.Request) (*http.Response, error) {
		networkCalls.Add(1)
		return okResponse(http.StatusOK), nil
	})}
	cascade, beacon := NewStandard(client, zaptest.NewLogger(t), Settings{
		SimulatedDelay: 1500 * time.Millisecond,
		Clock:          clock,
	})
	defer beacon.Close(context.Background())

	done := make(chan Result, 1)
	go func() { done <- cascade.Deliver(context.Background(), "", orderPayload) }()

	clock.BlockUntil(1)
	select {
	case <-done:
		t.Fatal("delivered before the simulated delay elapsed")
	default:
	}

	clock.Advance(1500 * time.Millisecond)
	select {
	case res := <-done:
		assert.Equal(t, Result{Success: true, Method: MethodSimulated}, res)
	case <-time.After(time.Second):
		t.Fatal("simulated delivery never completed")
	}
	assert.Zero(t, networkCalls.Load())
}

func TestDeliver_SimulatedHonorsCancellation(t *testing.T) {
	cascade := NewCascade(zaptest.NewLogger(t), nil, WithClock(clockwork.NewFakeClock()))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := cascade.Deliver(ctx, "", orderPayload)
	assert.False(t, res.Success)
}

func TestDeliver_FallsThroughToBeaconWhenPostsThrow(t *testing.T) {
	var mu sync.Mutex
	var methods []string
	client := &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
		mu.Lock()
		methods = append(methods, r.Method+" "+r.Header.Get("Content-Type"))
		mu.Unlock()
		if r.Method == http.MethodPost {
			return nil, errors.New("blocked by CORS policy")
		}
		return okResponse(http.StatusOK), nil
	})}
	cascade, beacon := NewStandard(client, zaptest.NewLogger(t), Settings{})
	defer beacon.Close(context.Background())

	res := cascade.Deliver(context.Background(), "https://hooks.example.com/orders", orderPayload)
	assert.Equal(t, Result{Success: true, Method: MethodBeacon}, res)

	mu.Lock()
	defer mu.Unlock()
	require.GreaterOrEqual(t, len(methods), 2)
	assert.Equal(t, "POST application/json", methods[0])
	assert.Equal(t, "POST text/plain;charset=UTF-8", methods[1])
}

func TestDeliver_CORSPostSuccess(t *testing.T) {
	var received atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		received.Store(string(body))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	cascade, beacon := NewStandard(srv.Client(), zaptest.NewLogger(t), Settings{})
	defer beacon.Close(context.Background())

	res := cascade.Deliver(context.Background(), srv.URL, orderPayload)
	assert.Equal(t, Result{Success: true, Method: MethodCORSPost}, res)
	assert.JSONEq(t, `{"Order ID":"GC-ABC-123456","Total":"850.00"}`, received.Load().(string))
}

func TestDeliver_NonSuccessStatusFallsToNoCORS(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	cascade, beacon := NewStandard(srv.Client(), zaptest.NewLogger(t), Settings{})
	defer beacon.Close(context.Background())

	res := cascade.Deliver(context.Background(), srv.URL, orderPayload)
	assert.Equal(t, Result{Success: true, Method: MethodNoCORSPost}, res)
	assert.Equal(t, int32(2), hits.Load())
}

func TestDeliver_StrictOrderAndNoRetry(t *testing.T) {
	first := &fakeStrategy{method: "a", err: errors.New("boom")}
	second := &fakeStrategy{method: "b", err: ErrNotApplicable}
	third := &fakeStrategy{method: "c"}
	fourth := &fakeStrategy{method: "d"}
	cascade := NewCascade(zaptest.NewLogger(t), []Strategy{first, second, third, fourth})

	res := cascade.Deliver(context.Background(), "https://x", orderPayload)
	assert.Equal(t, Result{Success: true, Method: "c"}, res)
	assert.Equal(t, 1, first.calls)
	assert.Equal(t, 1, second.calls)
	assert.Equal(t, 1, third.calls)
	assert.Zero(t, fourth.calls)
}

func TestDeliver_AllFail(t *testing.T) {
	a := &fakeStrategy{method: "a", err: errors.New("no")}
	b := &fakeStrategy{method: "b", err: errors.New("no")}
	cascade := NewCascade(zaptest.NewLogger(t), []Strategy{a, b})

	res := cascade.Deliver(context.Background(), "https://x", orderPayload)
	assert.Equal(t, Result{Success: false, Method: MethodFailed}, res)
}

func TestDeliver_AttemptsAreBounded(t *testing.T) {
	stuck := &fakeStrategy{method: "stuck", block: true}
	next := &fakeStrategy{method: "next"}
	cascade := NewCascade(zaptest.NewLogger(t), []Strategy{stuck, next}, WithAttemptTimeout(20*time.Millisecond))

	start := time.Now()
	res := cascade.Deliver(context.Background(), "https://x", orderPayload)
	assert.Equal(t, "next", res.Method)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestImageGet(t *testing.T) {
	var gotURL atomic.Value
	client := &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
		gotURL.Store(r.URL.String())
		return okResponse(http.StatusNotFound), nil
	})}
	img := ImageGet{Client: client}

	require.NoError(t, img.Send(context.Background(), "https://hooks.example.com/p?src=web", []byte(`{"a":"b c"}`)))
	assert.Equal(t, "https://hooks.example.com/p?src=web&payload=%7B%22a%22%3A%22b+c%22%7D", gotURL.Load())

	long := []byte(strings.Repeat("x", 2100))
	err := img.Send(context.Background(), "https://hooks.example.com/p", long)
	assert.ErrorIs(t, err, ErrNotApplicable)
}

func TestDeliver_OversizedPayloadExhaustsCascade(t *testing.T) {
	client := &http.Client{Transport: roundTripFunc(func(*http.Request) (*http.Response, error) {
		return nil, errors.New("network down")
	})}
	cascade, beacon := NewStandard(client, zaptest.NewLogger(t), Settings{})
	defer beacon.Close(context.Background())

	big := Payload{"Note": strings.Repeat("n", MaxBeaconBytes+1)}
	res := cascade.Deliver(context.Background(), "https://hooks.example.com", big)
	assert.Equal(t, Result{Success: false, Method: MethodFailed}, res)
}

func TestBeacon_QueueLimits(t *testing.T) {
	release := make(chan struct{})
	var sent atomic.Int32
	client := &http.Client{Transport: roundTripFunc(func(*http.Request) (*http.Response, error) {
		<-release
		sent.Add(1)
		return okResponse(http.StatusOK), nil
	})}
	beacon := NewBeacon(client, zaptest.NewLogger(t), 1, time.Second)

	ctx := context.Background()
	require.NoError(t, beacon.Send(ctx, "https://x", []byte("1")))
	// The worker may already hold the first job; fill until rejected.
	var rejected error
	for i := 0; i < 3 && rejected == nil; i++ {
		rejected = beacon.Send(ctx, "https://x", []byte("more"))
	}
	assert.ErrorIs(t, rejected, ErrBeaconRejected)

	close(release)
	require.NoError(t, beacon.Close(ctx))
	assert.GreaterOrEqual(t, sent.Load(), int32(1))

	assert.ErrorIs(t, beacon.Send(ctx, "https://x", []byte("late")), ErrBeaconRejected)
}

func TestRouter(t *testing.T) {
	var mu sync.Mutex
	var hosts []string
	client := &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
		mu.Lock()
		hosts = append(hosts, r.URL.Host)
		mu.Unlock()
		return okResponse(http.StatusOK), nil
	})}
	clock := clockwork.NewFakeClock()
	cascade, beacon := NewStandard(client, zaptest.NewLogger(t), Settings{Clock: clock, SimulatedDelay: time.Second})
	defer beacon.Close(context.Background())

	router := NewRouter(cascade, map[Kind]string{
		KindOrder:  "https://orders.example.com/hook",
		KindReturn: "https://returns.example.com/hook",
	})

	assert.Equal(t, MethodCORSPost, router.Deliver(context.Background(), KindOrder, orderPayload).Method)
	assert.Equal(t, MethodCORSPost, router.Deliver(context.Background(), KindReturn, orderPayload).Method)

	done := make(chan Result, 1)
	go func() { done <- router.Deliver(context.Background(), KindExchange, orderPayload) }()
	clock.BlockUntil(1)
	clock.Advance(time.Second)
	assert.Equal(t, MethodSimulated, (<-done).Method)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"orders.example.com", "returns.example.com"}, hosts)
}
