package cache

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoComputesOnce(t *testing.T) {
	m := New[*int](0)
	calls := 0
	fn := func(context.Context) (*int, error) {
		calls++
		v := 42
		return &v, nil
	}
	a, cached, err := m.Do(context.Background(), "k", fn)
	require.NoError(t, err)
	assert.False(t, cached)
	b, cached, err := m.Do(context.Background(), "k", fn)
	require.NoError(t, err)
	assert.True(t, cached)
	assert.Same(t, a, b)
	assert.Equal(t, 1, calls)
}

func TestMemoDoesNotStoreErrors(t *testing.T) {
	m := New[int](0)
	boom := errors.New("boom")
	_, _, err := m.Do(context.Background(), "k", func(context.Context) (int, error) { return 0, boom })
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 0, m.Len())

	v, cached, err := m.Do(context.Background(), "k", func(context.Context) (int, error) { return 7, nil })
	require.NoError(t, err)
	assert.False(t, cached)
	assert.Equal(t, 7, v)
}

func TestMemoEvictsLeastRecentlyUsed(t *testing.T) {
	m := New[int](2)
	for i := 1; i <= 2; i++ {
		_, _, err := m.Do(context.Background(), strconv.Itoa(i), func(context.Context) (int, error) { return i * 10, nil })
		require.NoError(t, err)
	}
	_, ok := m.Get("1") // 1 becomes most recent
	require.True(t, ok)
	_, _, err := m.Do(context.Background(), "3", func(context.Context) (int, error) { return 30, nil })
	require.NoError(t, err)

	_, ok = m.Get("2")
	assert.False(t, ok, "2 should have been evicted")
	_, ok = m.Get("1")
	assert.True(t, ok)
	assert.Equal(t, 2, m.Len())
}

func TestMemoInvalidate(t *testing.T) {
	m := New[int](0)
	_, _, _ = m.Do(context.Background(), "k", func(context.Context) (int, error) { return 1, nil })
	m.Invalidate("k")
	_, ok := m.Get("k")
	assert.False(t, ok)
}

func TestMemoSharesInflight(t *testing.T) {
	m := New[int](0)
	var calls atomic.Int32
	release := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, _, err := m.Do(context.Background(), "k", func(context.Context) (int, error) {
				calls.Add(1)
				<-release
				return 5, nil
			})
			assert.NoError(t, err)
			assert.Equal(t, 5, v)
		}()
	}
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()
	assert.Equal(t, int32(1), calls.Load())
}

func TestMemoFirstCallerCancelDoesNotFailOthers(t *testing.T) {
	m := New[int](0)
	started := make(chan struct{})
	release := make(chan struct{})
	var calls atomic.Int32
	fn := func(ctx context.Context) (int, error) {
		calls.Add(1)
		close(started)
		<-release
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		return 9, nil
	}

	ctxA, cancelA := context.WithCancel(context.Background())
	errA := make(chan error, 1)
	go func() {
		_, _, err := m.Do(ctxA, "k", fn)
		errA <- err
	}()
	<-started

	type result struct {
		v      int
		cached bool
		err    error
	}
	resB := make(chan result, 1)
	go func() {
		v, cached, err := m.Do(context.Background(), "k", fn)
		resB <- result{v, cached, err}
	}()
	time.Sleep(20 * time.Millisecond)

	cancelA()
	assert.ErrorIs(t, <-errA, context.Canceled)

	close(release)
	b := <-resB
	require.NoError(t, b.err)
	assert.Equal(t, 9, b.v)
	assert.True(t, b.cached)
	assert.Equal(t, int32(1), calls.Load())

	v, ok := m.Get("k")
	assert.True(t, ok)
	assert.Equal(t, 9, v)
}

func TestMemoWaiterHonoursOwnContext(t *testing.T) {
	m := New[int](0)
	started := make(chan struct{})
	release := make(chan struct{})
	defer close(release)
	go func() {
		_, _, _ = m.Do(context.Background(), "k", func(context.Context) (int, error) {
			close(started)
			<-release
			return 1, nil
		})
	}()
	<-started

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, _, err := m.Do(ctx, "k", func(context.Context) (int, error) { return 2, nil })
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
