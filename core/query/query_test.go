package query_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/memberportal/core/query"
)

func TestKey(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "news:list:2", query.Key("news", "list", 2))
	assert.Equal(t, "news", query.Key("news"))
}

func TestFetch_CachesUntilStale(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	qc := query.New(query.WithStaleTime(time.Minute), query.WithClock(func() time.Time { return now }))

	var calls int
	fetch := func(context.Context) ([]string, error) {
		calls++
		return []string{"a", "b"}, nil
	}

	ctx := context.Background()
	v, err := query.Fetch(ctx, qc, "news:list", fetch)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, v)

	_, err = query.Fetch(ctx, qc, "news:list", fetch)
	require.NoError(t, err)
	assert.Equal(t, 1, calls)

	now = now.Add(time.Minute)
	_, err = query.Fetch(ctx, qc, "news:list", fetch)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestFetch_ErrorsNotCached(t *testing.T) {
	t.Parallel()

	qc := query.New()
	boom := errors.New("boom")
	var calls int

	for range 2 {
		_, err := query.Fetch(context.Background(), qc, "k", func(context.Context) (int, error) {
			calls++
			return 0, boom
		})
		require.ErrorIs(t, err, boom)
	}
	assert.Equal(t, 2, calls)
	assert.Equal(t, 0, qc.Len())
}

func TestFetch_TypeMismatch(t *testing.T) {
	t.Parallel()

	qc := query.New()
	_, err := query.Fetch(context.Background(), qc, "k", func(context.Context) (int, error) { return 1, nil })
	require.NoError(t, err)

	_, err = query.Fetch(context.Background(), qc, "k", func(context.Context) (string, error) { return "x", nil })
	require.ErrorIs(t, err, query.ErrTypeMismatch)
}

func TestFetch_CollapsesConcurrentCalls(t *testing.T) {
	t.Parallel()

	qc := query.New()
	var calls atomic.Int32
	release := make(chan struct{})

	var wg sync.WaitGroup
	results := make([]int, 10)
	for i := range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := query.Fetch(context.Background(), qc, "slow", func(context.Context) (int, error) {
				calls.Add(1)
				<-release
				return 42, nil
			})
			assert.NoError(t, err)
			results[i] = v
		}()
	}

	// Let the goroutines pile up behind the first call.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.LessOrEqual(t, calls.Load(), int32(10))
	for _, v := range results {
		assert.Equal(t, 42, v)
	}
}

func TestInvalidate(t *testing.T) {
	t.Parallel()

	qc := query.New()
	ctx := context.Background()
	one := func(context.Context) (int, error) { return 1, nil }

	for _, k := range []string{"news", "news:list", "news:1", "newsletter", "events:list"} {
		_, err := query.Fetch(ctx, qc, k, one)
		require.NoError(t, err)
	}

	assert.Equal(t, 3, qc.Invalidate("news"))
	assert.Equal(t, 2, qc.Len())

	qc.Clear()
	assert.Equal(t, 0, qc.Len())
}

func TestNewFromConfig(t *testing.T) {
	t.Parallel()

	qc := query.NewFromConfig(query.Config{StaleTime: time.Second, MaxSize: 2})
	ctx := context.Background()
	for _, k := range []string{"a", "b", "c"} {
		_, err := query.Fetch(ctx, qc, k, func(context.Context) (string, error) { return k, nil })
		require.NoError(t, err)
	}
	assert.Equal(t, 2, qc.Len())
}

func TestInvalidate_DropsRunningFetch(t *testing.T) {
	t.Parallel()

	qc := query.New(query.WithStaleTime(time.Hour))
	ctx := context.Background()
	started := make(chan struct{})
	release := make(chan struct{})

	done := make(chan string)
	go func() {
		v, err := query.Fetch(ctx, qc, "news:list", func(context.Context) (string, error) {
			close(started)
			<-release
			return "old", nil
		})
		assert.NoError(t, err)
		done <- v
	}()

	<-started
	qc.Invalidate("news")
	close(release)
	assert.Equal(t, "old", <-done)

	var calls int
	v, err := query.Fetch(ctx, qc, "news:list", func(context.Context) (string, error) {
		calls++
		return "new", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "new", v)
	assert.Equal(t, 1, calls)
}

func TestClear_DropsRunningFetch(t *testing.T) {
	t.Parallel()

	qc := query.New(query.WithStaleTime(time.Hour))
	started := make(chan struct{})
	release := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = query.Fetch(context.Background(), qc, "events:list", func(context.Context) (int, error) {
			close(started)
			<-release
			return 1, nil
		})
	}()

	<-started
	qc.Clear()
	close(release)
	<-done
	assert.Equal(t, 0, qc.Len())
}

func TestFetch_CancelledWaiterDoesNotFailOthers(t *testing.T) {
	t.Parallel()

	qc := query.New()
	started := make(chan struct{})
	release := make(chan struct{})

	ctxA, cancelA := context.WithCancel(context.Background())
	errA := make(chan error, 1)
	go func() {
		_, err := query.Fetch(ctxA, qc, "publications:list", func(ctx context.Context) (string, error) {
			close(started)
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-release:
				return "page", nil
			}
		})
		errA <- err
	}()
	<-started

	type result struct {
		v   string
		err error
	}
	resB := make(chan result, 1)
	go func() {
		v, err := query.Fetch(context.Background(), qc, "publications:list", func(context.Context) (string, error) {
			return "unused", nil
		})
		resB <- result{v, err}
	}()

	cancelA()
	require.ErrorIs(t, <-errA, context.Canceled)

	close(release)
	b := <-resB
	require.NoError(t, b.err)
	assert.Contains(t, []string{"page", "unused"}, b.v)
}
