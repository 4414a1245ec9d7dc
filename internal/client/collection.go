package client

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"
)

// loadState is the state of a lazily loaded collection.
type loadState int

const (
	stateUnloaded loadState = iota
	stateLoading
	stateLoaded
)

// lazyCollection is a child collection fetched on first access and cached
// until invalidated. Concurrent first accesses share a single fetch. Create
// and destroy hold mutation so they never interleave on the same collection.
type lazyCollection[T any] struct {
	mu         sync.Mutex
	state      loadState
	items      []T
	generation uint64
	group      singleflight.Group
	load       func(ctx context.Context) ([]T, error)

	mutation sync.Mutex
}

func newLazyCollection[T any](load func(ctx context.Context) ([]T, error)) *lazyCollection[T] {
	return &lazyCollection[T]{load: load}
}

// list returns a copy of the collection, loading it if needed. The shared
// fetch outlives the cancellation of any one caller; a caller whose ctx ends
// first gets ctx.Err() while the others keep waiting.
func (c *lazyCollection[T]) list(ctx context.Context) ([]T, error) {
	c.mu.Lock()
	if c.state == stateLoaded {
		items := clone(c.items)
		c.mu.Unlock()

		return items, nil
	}

	generation := c.generation
	c.state = stateLoading
	c.mu.Unlock()

	fetchCtx := context.WithoutCancel(ctx)

	ch := c.group.DoChan("load", func() (interface{}, error) {
		c.mu.Lock()
		if c.state == stateLoaded {
			items := clone(c.items)
			c.mu.Unlock()

			return items, nil
		}
		c.mu.Unlock()

		items, err := c.load(fetchCtx)

		c.mu.Lock()
		defer c.mu.Unlock()

		if c.generation != generation {
			// invalidated while loading; keep the result out of the cache
			return items, err
		}

		if err != nil {
			c.state = stateUnloaded

			return nil, err
		}

		if items == nil {
			items = []T{}
		}

		c.items = items
		c.state = stateLoaded

		return clone(items), nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}

		items, _ := res.Val.([]T)

		return clone(items), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// find returns the first member matching match.
func (c *lazyCollection[T]) find(ctx context.Context, match func(T) bool) (T, bool, error) {
	var zero T

	items, err := c.list(ctx)
	if err != nil {
		return zero, false, err
	}

	for _, item := range items {
		if match(item) {
			return item, true, nil
		}
	}

	return zero, false, nil
}

// create adds the member built by build unless exists reports a live member
// with the same identity. Nothing is added when build fails.
func (c *lazyCollection[T]) create(ctx context.Context, exists func(T) bool, conflict func() error, build func() (T, error)) (T, error) {
	var zero T

	c.mutation.Lock()
	defer c.mutation.Unlock()

	_, found, err := c.find(ctx, exists)
	if err != nil {
		return zero, err
	}

	if found {
		return zero, conflict()
	}

	item, err := build()
	if err != nil {
		return zero, err
	}

	c.mu.Lock()
	if c.state == stateLoaded {
		c.items = append(clone(c.items), item)
	}
	c.mu.Unlock()

	return item, nil
}

// remove runs destroy and, once it succeeded, drops the members matching match.
func (c *lazyCollection[T]) remove(match func(T) bool, destroy func() error) error {
	c.mutation.Lock()
	defer c.mutation.Unlock()

	err := destroy()
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != stateLoaded {
		return nil
	}

	kept := make([]T, 0, len(c.items))

	for _, item := range c.items {
		if !match(item) {
			kept = append(kept, item)
		}
	}

	c.items = kept

	return nil
}

// invalidate returns the collection to unloaded.
func (c *lazyCollection[T]) invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.generation++
	c.state = stateUnloaded
	c.items = nil
	c.group.Forget("load")
}

// loaded reports whether the collection is cached.
func (c *lazyCollection[T]) loaded() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.state == stateLoaded
}

func clone[T any](items []T) []T {
	if items == nil {
		return nil
	}

	return append(make([]T, 0, len(items)), items...)
}
