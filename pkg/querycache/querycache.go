// Package querycache keeps fetched result sets keyed by name and refreshes
// them when a mutation declares it affected them.
package querycache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

type Key string

type Loader func(ctx context.Context) (any, error)

type entry struct {
	value     any
	fetchedAt time.Time
}

type Cache struct {
	mu      sync.RWMutex
	entries map[Key]entry
	gens    map[Key]uint64
	loaders map[Key]Loader
	subs    map[Key]map[int]func(Key)
	nextSub int

	group  singleflight.Group
	now    func() time.Time
	logger *zap.Logger
}

func New(logger ...*zap.Logger) *Cache {
	l := zap.L().Named("querycache")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("querycache")
	}
	return &Cache{
		entries: make(map[Key]entry),
		gens:    make(map[Key]uint64),
		loaders: make(map[Key]Loader),
		subs:    make(map[Key]map[int]func(Key)),
		now:     time.Now,
		logger:  l,
	}
}

// Register associates loader with key so Invalidate can refetch it.
func (c *Cache) Register(key Key, loader Loader) {
	c.mu.Lock()
	c.loaders[key] = loader
	c.mu.Unlock()
}

// Get returns the cached value for key, if present.
func (c *Cache) Get(key Key) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[key]
	return e.value, ok
}

// FetchedAt reports when key was last loaded.
func (c *Cache) FetchedAt(key Key) (time.Time, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[key]
	return e.fetchedAt, ok
}

// Subscribe calls fn whenever key is invalidated. The returned func removes
// the subscription.
func (c *Cache) Subscribe(key Key, fn func(Key)) func() {
	c.mu.Lock()
	id := c.nextSub
	c.nextSub++
	if c.subs[key] == nil {
		c.subs[key] = make(map[int]func(Key))
	}
	c.subs[key][id] = fn
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.subs[key], id)
		c.mu.Unlock()
	}
}

// Load returns the cached value or calls loader once for all concurrent
// callers of the same key.
func (c *Cache) Load(ctx context.Context, key Key, loader Loader) (any, error) {
	c.Register(key, loader)
	if v, ok := c.Get(key); ok {
		return v, nil
	}
	return c.load(ctx, key, loader)
}

func (c *Cache) load(ctx context.Context, key Key, loader Loader) (any, error) {
	c.mu.RLock()
	gen := c.gens[key]
	c.mu.RUnlock()

	v, err, shared := c.group.Do(string(key), func() (any, error) {
		v, err := loader(ctx)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		// an Invalidate during the load makes this result stale
		if c.gens[key] == gen {
			c.entries[key] = entry{value: v, fetchedAt: c.now()}
		}
		c.mu.Unlock()
		return v, nil
	})
	if err != nil {
		c.logger.Debug("load failed", zap.String("key", string(key)), zap.Error(err))
		return nil, err
	}
	if shared {
		c.logger.Debug("load shared", zap.String("key", string(key)))
	}
	return v, nil
}

// Invalidate drops every key, refetches those with a registered loader and
// then notifies subscribers. Refetch errors are joined; the key stays empty.
func (c *Cache) Invalidate(ctx context.Context, keys ...Key) error {
	type refetch struct {
		key    Key
		loader Loader
	}
	var todo []refetch

	c.mu.Lock()
	for _, k := range keys {
		delete(c.entries, k)
		c.gens[k]++
		c.group.Forget(string(k))
		if l, ok := c.loaders[k]; ok {
			todo = append(todo, refetch{key: k, loader: l})
		}
	}
	c.mu.Unlock()

	var errs []error
	for _, r := range todo {
		if _, err := c.load(ctx, r.key, r.loader); err != nil {
			errs = append(errs, fmt.Errorf("refetch %s: %w", r.key, err))
		}
	}

	for _, k := range keys {
		c.mu.RLock()
		fns := make([]func(Key), 0, len(c.subs[k]))
		for _, fn := range c.subs[k] {
			fns = append(fns, fn)
		}
		c.mu.RUnlock()
		for _, fn := range fns {
			fn(k)
		}
	}
	return errors.Join(errs...)
}

// Reset forgets every cached value and loader, as when the signed-in user
// changes. Loads still in flight finish without storing their result.
// Subscribers are notified once per key they watch.
func (c *Cache) Reset() {
	c.mu.Lock()
	for k := range c.entries {
		c.gens[k]++
		c.group.Forget(string(k))
	}
	for k := range c.loaders {
		c.gens[k]++
		c.group.Forget(string(k))
	}
	c.entries = make(map[Key]entry)
	c.loaders = make(map[Key]Loader)

	type notice struct {
		key Key
		fn  func(Key)
	}
	var notices []notice
	for k, fns := range c.subs {
		for _, fn := range fns {
			notices = append(notices, notice{key: k, fn: fn})
		}
	}
	c.mu.Unlock()

	c.logger.Debug("cache reset")
	for _, n := range notices {
		n.fn(n.key)
	}
}

// Fetch is the typed form of Load.
func Fetch[T any](ctx context.Context, c *Cache, key Key, loader func(ctx context.Context) (T, error)) (T, error) {
	v, err := c.Load(ctx, key, func(ctx context.Context) (any, error) {
		return loader(ctx)
	})
	if err != nil {
		var zero T
		return zero, err
	}
	t, ok := v.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("querycache: key %s holds %T", key, v)
	}
	return t, nil
}

// Peek is the typed form of Get.
func Peek[T any](c *Cache, key Key) (T, bool) {
	v, ok := c.Get(key)
	if !ok {
		var zero T
		return zero, false
	}
	t, ok := v.(T)
	return t, ok
}
