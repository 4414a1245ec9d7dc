// Package events publishes resource lifecycle events produced by the client.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/fivetwenty-io/openshift-client/internal/constants"
	"github.com/fivetwenty-io/openshift-client/pkg/openshift"
)

// ErrNATSURLRequired is returned by Connect when no server address is given.
var ErrNATSURLRequired = errors.New("NATS server URL required")

// Publisher sends a message on a subject. *nats.Conn satisfies it.
type Publisher interface {
	Publish(subject string, data []byte) error
}

// Subject returns the subject an event is published on, e.g.
// "oshift.application.created".
func Subject(prefix string, event openshift.Event) string {
	return strings.Join([]string{prefix, string(event.Resource), string(event.Action)}, ".")
}

// NATSNotifier publishes events as JSON.
type NATSNotifier struct {
	publisher Publisher
	prefix    string
	closer    func()
}

var _ openshift.Notifier = (*NATSNotifier)(nil)

// Option configures a NATSNotifier.
type Option func(*NATSNotifier)

// WithSubjectPrefix replaces the default "oshift" subject prefix.
func WithSubjectPrefix(prefix string) Option {
	return func(n *NATSNotifier) {
		n.prefix = strings.TrimSuffix(prefix, ".")
	}
}

// NewNATSNotifier creates a notifier publishing through p.
func NewNATSNotifier(p Publisher, opts ...Option) *NATSNotifier {
	n := &NATSNotifier{
		publisher: p,
		prefix:    constants.EventSubjectPrefix,
	}

	for _, opt := range opts {
		opt(n)
	}

	return n
}

// Connect dials the NATS server at url and returns a notifier owning the
// connection. Close drains it.
func Connect(url string, opts ...Option) (*NATSNotifier, error) {
	if url == "" {
		return nil, ErrNATSURLRequired
	}

	conn, err := nats.Connect(url,
		nats.Name(constants.DefaultUserAgent),
		nats.Timeout(5*time.Second),
		nats.MaxReconnects(3),
	)
	if err != nil {
		return nil, fmt.Errorf("connecting to NATS at %s: %w", url, err)
	}

	n := NewNATSNotifier(conn, opts...)
	n.closer = func() { _ = conn.Drain() }

	return n, nil
}

// Notify implements openshift.Notifier.
func (n *NATSNotifier) Notify(ctx context.Context, event openshift.Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encoding event: %w", err)
	}

	subject := Subject(n.prefix, event)

	err = n.publisher.Publish(subject, payload)
	if err != nil {
		return fmt.Errorf("publishing to %s: %w", subject, err)
	}

	return nil
}

// Close releases the connection opened by Connect. It is a no-op for
// notifiers built with NewNATSNotifier.
func (n *NATSNotifier) Close() {
	if n.closer != nil {
		n.closer()
	}
}

// LogNotifier writes events to a logger.
type LogNotifier struct {
	Logger openshift.Logger
}

var _ openshift.Notifier = (*LogNotifier)(nil)

// Notify implements openshift.Notifier.
func (n *LogNotifier) Notify(_ context.Context, event openshift.Event) error {
	fields := map[string]interface{}{
		"resource": string(event.Resource),
		"action":   string(event.Action),
		"name":     event.Name,
	}

	if event.Parent != "" {
		fields["parent"] = event.Parent
	}

	if event.Detail != "" {
		fields["detail"] = event.Detail
	}

	n.Logger.Info("Resource "+string(event.Action), fields)

	return nil
}

// Fanout delivers every event to all notifiers and joins their errors.
type Fanout []openshift.Notifier

var _ openshift.Notifier = Fanout(nil)

// Notify implements openshift.Notifier.
func (f Fanout) Notify(ctx context.Context, event openshift.Event) error {
	var errs []error

	for _, n := range f {
		if n == nil {
			continue
		}

		if err := n.Notify(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}
