package client

import (
	"context"
	"time"

	"github.com/fivetwenty-io/openshift-client/internal/constants"
	oshttp "github.com/fivetwenty-io/openshift-client/internal/http"
)

// prober fetches the body at an absolute URL.
type prober interface {
	Probe(ctx context.Context, rawURL string) (*oshttp.Response, error)
}

// Poller waits for application health checks to pass.
type Poller struct {
	prober   prober
	interval time.Duration
}

// NewPoller creates a poller probing through p every interval.
func NewPoller(p prober, interval time.Duration) *Poller {
	if interval <= 0 {
		interval = constants.HealthPollInterval
	}

	return &Poller{prober: p, interval: interval}
}

// WaitFor probes target until isHealthy accepts the body or timeout
// elapses. Probe failures count as unhealthy answers. It returns true only
// when a probe succeeded before the deadline; when none does it returns
// false no earlier than timeout after the call. A cancelled ctx ends the
// wait early with false.
func (p *Poller) WaitFor(ctx context.Context, target string, isHealthy func(string) bool, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)

	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return false
		}

		if p.probe(ctx, target, isHealthy, min(remaining, constants.ProbeTimeout)) {
			return time.Now().Before(deadline)
		}

		remaining = time.Until(deadline)
		if remaining <= 0 {
			return false
		}

		timer := time.NewTimer(min(p.interval, remaining))

		select {
		case <-ctx.Done():
			timer.Stop()

			return false
		case <-timer.C:
		}
	}
}

func (p *Poller) probe(ctx context.Context, target string, isHealthy func(string) bool, timeout time.Duration) bool {
	probeCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	resp, err := p.prober.Probe(probeCtx, target)
	if err != nil {
		return false
	}

	return isHealthy(string(resp.Body))
}
