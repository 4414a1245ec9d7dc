package client

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/fivetwenty-io/openshift-client/pkg/openshift"
	"golang.org/x/sync/singleflight"
)

// linkCatalog holds a resource's links. A nil map is unresolved; resolver,
// when set, fetches the catalog on first use.
type linkCatalog struct {
	mu       sync.RWMutex
	links    openshift.Links
	resolver func(ctx context.Context) (openshift.Links, error)
	group    singleflight.Group
}

func newLinkCatalog(links openshift.Links) *linkCatalog {
	if links == nil {
		links = openshift.Links{}
	}

	return &linkCatalog{links: links}
}

// snapshot returns the catalog, resolving it first if needed. Concurrent
// first calls share one fetch, which keeps running when a single caller's
// ctx ends.
func (c *linkCatalog) snapshot(ctx context.Context) (openshift.Links, error) {
	c.mu.RLock()
	links := c.links
	resolver := c.resolver
	c.mu.RUnlock()

	if links.Resolved() || resolver == nil {
		return links, nil
	}

	fetchCtx := context.WithoutCancel(ctx)

	ch := c.group.DoChan("resolve", func() (interface{}, error) {
		c.mu.RLock()
		current := c.links
		c.mu.RUnlock()

		if current.Resolved() {
			return current, nil
		}

		resolved, err := resolver(fetchCtx)
		if err != nil {
			return nil, err
		}

		if resolved == nil {
			resolved = openshift.Links{}
		}

		c.mu.Lock()
		c.links = resolved
		c.mu.Unlock()

		return resolved, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}

		links, _ = res.Val.(openshift.Links)

		return links, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// current returns the catalog without resolving it.
func (c *linkCatalog) current() openshift.Links {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.links
}

// replace swaps the whole catalog. Passing nil makes it unresolved again.
func (c *linkCatalog) replace(links openshift.Links) {
	c.mu.Lock()
	c.links = links
	c.mu.Unlock()

	c.group.Forget("resolve")
}

// resource carries what every broker resource shares.
type resource struct {
	service  *RestService
	runtime  *runtime
	catalog  *linkCatalog
	messages openshift.Messages
	describe func() string
}

func newResource(rt *runtime, links openshift.Links, messages openshift.Messages, describe func() string) resource {
	return resource{
		service:  rt.service,
		runtime:  rt,
		catalog:  newLinkCatalog(links),
		messages: append(openshift.Messages(nil), messages...),
		describe: describe,
	}
}

// link returns the link for rel, failing with a validation error when the
// catalog does not offer it.
func (r *resource) link(ctx context.Context, rel openshift.Relation) (openshift.Link, error) {
	links, err := r.catalog.snapshot(ctx)
	if err != nil {
		return openshift.Link{}, err
	}

	if !links.Resolved() {
		return openshift.Link{}, &openshift.Error{
			Kind:     openshift.KindRequestValidation,
			Message:  fmt.Sprintf("links of resource %q are not resolved", r.describe()),
			Relation: rel,
			Cause:    openshift.ErrLinksNotResolved,
		}
	}

	link, ok := links.Get(rel)
	if !ok {
		return openshift.Link{}, &openshift.Error{
			Kind:     openshift.KindRequestValidation,
			Message:  fmt.Sprintf("could not find link %q in resource %q", rel, r.describe()),
			Relation: rel,
			Cause:    openshift.ErrLinkNotFound,
		}
	}

	return link, nil
}

// Links implements openshift.Resource.
func (r *resource) Links() openshift.Links {
	return r.catalog.current().Clone()
}

// Messages implements openshift.Resource.
func (r *resource) Messages() openshift.Messages {
	return append(openshift.Messages(nil), r.messages...)
}

// CreationLog implements openshift.Resource.
func (r *resource) CreationLog() string {
	return r.messages.Texts()
}

// HasCreationLog implements openshift.Resource.
func (r *resource) HasCreationLog() bool {
	return r.CreationLog() != ""
}

// checkRelations fails when a required relation is missing and logs the
// expected ones that are absent.
func (r *resource) checkRelations(links openshift.Links, required, expected []openshift.Relation) error {
	if missing := links.Missing(required...); len(missing) > 0 {
		names := make([]string, 0, len(missing))
		for _, rel := range missing {
			names = append(names, string(rel))
		}

		return &openshift.Error{
			Kind:     openshift.KindRequestValidation,
			Message:  fmt.Sprintf("resource %q lacks required links %s", r.describe(), strings.Join(names, ", ")),
			Relation: missing[0],
			Cause:    openshift.ErrLinkNotFound,
		}
	}

	r.logMissingRelations(links, expected)

	return nil
}

// logMissingRelations logs the expected relations links does not offer.
func (r *resource) logMissingRelations(links openshift.Links, expected []openshift.Relation) {
	if missing := links.Missing(expected...); len(missing) > 0 {
		r.runtime.logger.Debug("Resource offers a reduced set of links", map[string]interface{}{
			"resource": r.describe(),
			"missing":  missing,
		})
	}
}

// notify publishes a lifecycle event. Failures are logged only.
func (r *resource) notify(ctx context.Context, kind openshift.ResourceKind, action openshift.EventAction, name, parent string) {
	r.runtime.notify(ctx, openshift.Event{
		Resource: kind,
		Action:   action,
		Name:     name,
		Parent:   parent,
	})
}

// runtime is shared by every resource of one connection.
type runtime struct {
	service  *RestService
	logger   openshift.Logger
	notifier openshift.Notifier
	poller   *Poller
}

func (rt *runtime) notify(ctx context.Context, event openshift.Event) {
	if rt.notifier == nil {
		return
	}

	if event.Time.IsZero() {
		event.Time = time.Now().UTC()
	}

	err := rt.notifier.Notify(ctx, event)
	if err != nil {
		rt.logger.Warn("Failed to publish lifecycle event", map[string]interface{}{
			"resource": string(event.Resource),
			"action":   string(event.Action),
			"name":     event.Name,
			"error":    err.Error(),
		})
	}
}

// noopLogger discards everything.
type noopLogger struct{}

func (noopLogger) Debug(string, map[string]interface{}) {}
func (noopLogger) Info(string, map[string]interface{})  {}
func (noopLogger) Warn(string, map[string]interface{})  {}
func (noopLogger) Error(string, map[string]interface{}) {}
