package client

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	oshttp "github.com/fivetwenty-io/openshift-client/internal/http"
)

var errProbeFailed = errors.New("connection refused")

// scriptedProber answers with bodies in order and repeats the last one.
type scriptedProber struct {
	calls  int32
	bodies []string
	err    error
	delay  time.Duration
}

func (p *scriptedProber) Probe(ctx context.Context, _ string) (*oshttp.Response, error) {
	n := int(atomic.AddInt32(&p.calls, 1))

	if p.delay > 0 {
		select {
		case <-time.After(p.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if p.err != nil {
		return nil, p.err
	}

	body := p.bodies[min(n, len(p.bodies))-1]

	return &oshttp.Response{StatusCode: 200, Body: []byte(body)}, nil
}

func TestPoller_NeverHealthy(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		prober *scriptedProber
	}{
		{name: "wrong body", prober: &scriptedProber{bodies: []string{"0"}}},
		{name: "probe errors", prober: &scriptedProber{err: errProbeFailed}},
		{name: "slow probes", prober: &scriptedProber{bodies: []string{"1"}, delay: time.Second}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			poller := NewPoller(tt.prober, 20*time.Millisecond)
			timeout := 200 * time.Millisecond

			start := time.Now()
			ok := poller.WaitFor(context.Background(), "http://app.example.com/health", expectExactly("1"), timeout)
			elapsed := time.Since(start)

			assert.False(t, ok)
			assert.GreaterOrEqual(t, elapsed, timeout)
			assert.Less(t, elapsed, timeout+500*time.Millisecond)
			assert.Positive(t, atomic.LoadInt32(&tt.prober.calls))
		})
	}
}

func TestPoller_BecomesHealthy(t *testing.T) {
	t.Parallel()

	prober := &scriptedProber{bodies: []string{"0", "0", "1"}}
	poller := NewPoller(prober, 10*time.Millisecond)

	ok := poller.WaitFor(context.Background(), "http://app.example.com/health", expectExactly("1"), 5*time.Second)
	assert.True(t, ok)
	assert.Equal(t, int32(3), atomic.LoadInt32(&prober.calls))
}

func TestPoller_FirstProbeSucceeds(t *testing.T) {
	t.Parallel()

	prober := &scriptedProber{bodies: []string{"1"}}
	poller := NewPoller(prober, time.Second)

	start := time.Now()
	assert.True(t, poller.WaitFor(context.Background(), "http://app.example.com/health", expectExactly("1"), 5*time.Second))
	assert.Less(t, time.Since(start), time.Second)
	assert.Equal(t, int32(1), atomic.LoadInt32(&prober.calls))
}

func TestPoller_Cancelled(t *testing.T) {
	t.Parallel()

	prober := &scriptedProber{bodies: []string{"0"}}
	poller := NewPoller(prober, 10*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	assert.False(t, poller.WaitFor(ctx, "http://app.example.com/health", expectExactly("1"), 10*time.Second))
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestPoller_DefaultInterval(t *testing.T) {
	t.Parallel()

	poller := NewPoller(&scriptedProber{}, 0)
	assert.Positive(t, poller.interval)
}
