package querycache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestFetch_CachesAndDedupes(t *testing.T) {
	c := New(zap.NewNop())
	var calls int32
	release := make(chan struct{})

	loader := func(context.Context) ([]string, error) {
		atomic.AddInt32(&calls, 1)
		<-release
		return []string{"a"}, nil
	}

	var wg sync.WaitGroup
	results := make([][]string, 5)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, err := Fetch(context.Background(), c, "entries", loader)
			assert.NoError(t, err)
			results[i] = v
		}(i)
	}
	close(release)
	wg.Wait()

	assert.LessOrEqual(t, atomic.LoadInt32(&calls), int32(5))
	for _, r := range results {
		assert.Equal(t, []string{"a"}, r)
	}

	before := atomic.LoadInt32(&calls)
	v, err := Fetch(context.Background(), c, "entries", loader)
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, v)
	assert.Equal(t, before, atomic.LoadInt32(&calls))
}

func TestFetch_ErrorNotCached(t *testing.T) {
	c := New(zap.NewNop())
	boom := errors.New("boom")

	_, err := Fetch(context.Background(), c, "k", func(context.Context) (int, error) { return 0, boom })
	assert.ErrorIs(t, err, boom)
	_, ok := c.Get("k")
	assert.False(t, ok)

	v, err := Fetch(context.Background(), c, "k", func(context.Context) (int, error) { return 3, nil })
	require.NoError(t, err)
	assert.Equal(t, 3, v)
}

func TestInvalidate_RefetchesAndNotifies(t *testing.T) {
	c := New(zap.NewNop())
	n := 0
	loader := func(context.Context) (int, error) {
		n++
		return n, nil
	}

	v, err := Fetch(context.Background(), c, "count", loader)
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	var notified []Key
	var seen int
	unsubscribe := c.Subscribe("count", func(k Key) {
		notified = append(notified, k)
		seen, _ = Peek[int](c, "count")
	})

	require.NoError(t, c.Invalidate(context.Background(), "count", "unknown"))
	assert.Equal(t, []Key{"count"}, notified)
	assert.Equal(t, 2, seen)

	unsubscribe()
	require.NoError(t, c.Invalidate(context.Background(), "count"))
	assert.Len(t, notified, 1)
	got, ok := Peek[int](c, "count")
	assert.True(t, ok)
	assert.Equal(t, 3, got)
}

func TestInvalidate_RefetchErrorLeavesKeyEmpty(t *testing.T) {
	c := New(zap.NewNop())
	_, err := c.Load(context.Background(), "k", func(context.Context) (any, error) { return "v", nil })
	require.NoError(t, err)

	c.Register("k", func(context.Context) (any, error) { return nil, errors.New("down") })
	err = c.Invalidate(context.Background(), "k")
	assert.ErrorContains(t, err, "refetch k")
	_, ok := c.Get("k")
	assert.False(t, ok)
}

func TestRun_InvalidatesOnlyOnSuccess(t *testing.T) {
	c := New(zap.NewNop())
	var loads int32
	_, err := Fetch(context.Background(), c, "pending", func(context.Context) (int, error) {
		return int(atomic.AddInt32(&loads, 1)), nil
	})
	require.NoError(t, err)

	m := Mutation{Name: "approve", Affects: []Key{"pending"}}

	_, err = Run(context.Background(), c, m, func(context.Context) (string, error) {
		return "", errors.New("conflict")
	})
	assert.Error(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&loads))
	v, _ := Peek[int](c, "pending")
	assert.Equal(t, 1, v)

	out, err := Run(context.Background(), c, m, func(context.Context) (string, error) {
		return "approved", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "approved", out)
	assert.Equal(t, int32(2), atomic.LoadInt32(&loads))
	v, _ = Peek[int](c, "pending")
	assert.Equal(t, 2, v)
}

func TestFetch_TypeMismatch(t *testing.T) {
	c := New(zap.NewNop())
	_, err := c.Load(context.Background(), "k", func(context.Context) (any, error) { return "str", nil })
	require.NoError(t, err)

	_, err = Fetch(context.Background(), c, "k", func(context.Context) (int, error) { return 1, nil })
	assert.ErrorContains(t, err, "holds string")
}

func TestReset_DropsValuesLoadersAndInFlightResults(t *testing.T) {
	c := New(zap.NewNop())
	ctx := context.Background()

	_, err := Fetch(ctx, c, "mine", func(context.Context) (string, error) { return "alice", nil })
	require.NoError(t, err)

	var notified []Key
	c.Subscribe("mine", func(k Key) { notified = append(notified, k) })

	started := make(chan struct{})
	release := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = c.Load(ctx, "slow", func(context.Context) (any, error) {
			close(started)
			<-release
			return "alice-slow", nil
		})
	}()
	<-started

	c.Reset()
	close(release)
	<-done

	_, ok := c.Get("mine")
	assert.False(t, ok)
	_, ok = c.Get("slow")
	assert.False(t, ok, "a load begun before the reset must not repopulate the cache")
	assert.Equal(t, []Key{"mine"}, notified)

	// no loader survives, so invalidating refetches nothing
	require.NoError(t, c.Invalidate(ctx, "mine"))
	_, ok = c.Get("mine")
	assert.False(t, ok)

	v, err := Fetch(ctx, c, "mine", func(context.Context) (string, error) { return "bob", nil })
	require.NoError(t, err)
	assert.Equal(t, "bob", v)
}
