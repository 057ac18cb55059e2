package session

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vincentngwk/GIT-ML-DS/internal/dataset"
	"github.com/vincentngwk/GIT-ML-DS/internal/parser"
)

const sensorsCSV = "id,temp,pressure\n" +
	"1,20.5,101.2\n" +
	"2,21.0,101.0\n" +
	"3,21.7,100.8\n" +
	"4,22.1,100.9\n" +
	"5,22.4,101.5\n"

type countingParser struct {
	mu    sync.Mutex
	calls int
}

func (c *countingParser) parse(name string, data []byte) (*dataset.Dataset, error) {
	c.mu.Lock()
	c.calls++
	c.mu.Unlock()
	return parser.Parse(name, data)
}

func newTestResolver(p *countingParser, invalidated *[]string) *Resolver {
	opts := []ResolverOption{WithSeed(42), WithParser(p.parse)}
	if invalidated != nil {
		opts = append(opts, WithInvalidate(func(id string) { *invalidated = append(*invalidated, id) }))
	}
	return NewResolver(opts...)
}

func TestAwaitingInputWithoutEvents(t *testing.T) {
	store := NewStore(time.Hour)
	r := NewResolver()
	s := store.New()
	for i := 0; i < 3; i++ {
		ds, err := r.Resolve(s)
		require.NoError(t, err)
		assert.Nil(t, ds)
		assert.Equal(t, AwaitingInput, s.State())
	}
}

func TestUploadIsParsedOnce(t *testing.T) {
	p := &countingParser{}
	r := newTestResolver(p, nil)
	store := NewStore(time.Hour)
	s := store.New()

	first, err := r.OnUpload(context.Background(), s, "sensors.csv", []byte(sensorsCSV))
	require.NoError(t, err)
	assert.Equal(t, HasUploadedData, s.State())
	assert.Equal(t, 5, first.Nrow())
	assert.Equal(t, 3, first.Ncol())

	again, err := r.OnUpload(context.Background(), s, "sensors.csv", []byte(sensorsCSV))
	require.NoError(t, err)
	resolved, err := r.Resolve(s)
	require.NoError(t, err)
	assert.Same(t, first, again)
	assert.Same(t, first, resolved)

	other := store.New()
	shared, err := r.OnUpload(context.Background(), other, "sensors.csv", []byte(sensorsCSV))
	require.NoError(t, err)
	assert.Same(t, first, shared)
	assert.Equal(t, 1, p.calls)

	renamed, err := r.OnUpload(context.Background(), store.New(), "copy.csv", []byte(sensorsCSV))
	require.NoError(t, err)
	assert.NotSame(t, first, renamed)
	assert.Equal(t, "copy.csv", renamed.Name)
	assert.Equal(t, "sensors.csv", first.Name)
	assert.NotEqual(t, first.ID, renamed.ID)
	assert.Equal(t, 2, p.calls)
}

func TestSameBytesParsedPerExtension(t *testing.T) {
	r := newTestResolver(&countingParser{}, nil)
	store := NewStore(time.Hour)
	data := []byte("id\ttemp\tpressure\n1\t2\t3\n4\t5\t6\n")

	asCSV, err := r.OnUpload(context.Background(), store.New(), "readings.csv", data)
	require.NoError(t, err)
	assert.Equal(t, 1, asCSV.Ncol())

	s := store.New()
	asTSV, err := r.OnUpload(context.Background(), s, "readings.tsv", data)
	require.NoError(t, err)
	assert.Equal(t, 3, asTSV.Ncol())
	assert.Equal(t, []string{"id", "temp", "pressure"}, asTSV.Names())
	assert.Equal(t, "readings.tsv", asTSV.Name)

	up, ok := s.Upload()
	require.True(t, ok)
	assert.Equal(t, asTSV.ID, up.Key)
}

func TestMalformedUploadKeepsState(t *testing.T) {
	r := newTestResolver(&countingParser{}, nil)
	s := NewStore(time.Hour).New()

	_, err := r.OnUpload(context.Background(), s, "bad.csv", []byte("a,b,c\n1,2,3\n4,5\n"))
	require.Error(t, err)
	var pe *dataset.ParseError
	assert.True(t, errors.As(err, &pe))
	assert.Equal(t, AwaitingInput, s.State())
	assert.NotEmpty(t, s.TakeFlash())
	assert.Empty(t, s.TakeFlash())

	_, err = r.OnUpload(context.Background(), s, "sensors.csv", []byte(sensorsCSV))
	require.NoError(t, err)
	_, err = r.OnUpload(context.Background(), s, "bad.csv", []byte("a,b\n\"open\n"))
	require.Error(t, err)
	assert.Equal(t, HasUploadedData, s.State())
	up, ok := s.Upload()
	require.True(t, ok)
	assert.Equal(t, "sensors.csv", up.Name)
}

func TestExampleDataset(t *testing.T) {
	r := newTestResolver(&countingParser{}, nil)
	s := NewStore(time.Hour).New()

	ds, err := r.OnExample(context.Background(), s)
	require.NoError(t, err)
	assert.Equal(t, HasExampleData, s.State())
	assert.Equal(t, 100, ds.Nrow())
	assert.Equal(t, []string{"a", "b", "c", "d", "e", "f", "g"}, ds.Names())
	assert.Equal(t, dataset.SourceExample, ds.Source)
	for j := 0; j < ds.Ncol(); j++ {
		for _, v := range ds.Floats(j) {
			assert.True(t, v >= 0 && v <= 1)
		}
	}

	again, err := r.Resolve(s)
	require.NoError(t, err)
	assert.Same(t, ds, again)
}

func TestUploadTakesPrecedence(t *testing.T) {
	var invalidated []string
	r := newTestResolver(&countingParser{}, &invalidated)
	s := NewStore(time.Hour).New()

	_, err := r.OnExample(context.Background(), s)
	require.NoError(t, err)
	up, err := r.OnUpload(context.Background(), s, "sensors.csv", []byte(sensorsCSV))
	require.NoError(t, err)
	assert.Equal(t, HasUploadedData, s.State())
	assert.Contains(t, invalidated, "example:"+s.ID)

	ds, err := r.OnExample(context.Background(), s)
	require.NoError(t, err)
	assert.Equal(t, HasUploadedData, s.State())
	assert.Same(t, up, ds)
}

func TestNewUploadInvalidatesPrevious(t *testing.T) {
	var invalidated []string
	p := &countingParser{}
	r := newTestResolver(p, &invalidated)
	s := NewStore(time.Hour).New()

	first, err := r.OnUpload(context.Background(), s, "a.csv", []byte(sensorsCSV))
	require.NoError(t, err)
	_, err = r.OnUpload(context.Background(), s, "b.csv", []byte("x,y\n1,2\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{first.ID}, invalidated)
}

func TestReset(t *testing.T) {
	r := newTestResolver(&countingParser{}, nil)
	s := NewStore(time.Hour).New()
	_, err := r.OnUpload(context.Background(), s, "sensors.csv", []byte(sensorsCSV))
	require.NoError(t, err)

	r.Reset(s)
	assert.Equal(t, AwaitingInput, s.State())
	ds, err := r.Resolve(s)
	require.NoError(t, err)
	assert.Nil(t, ds)
	_, ok := s.Upload()
	assert.False(t, ok)
}

func TestCancelledContext(t *testing.T) {
	r := NewResolver()
	s := NewStore(time.Hour).New()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := r.OnExample(ctx, s)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, AwaitingInput, s.State())
}

func TestStoreSweep(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	store := NewStore(30 * time.Minute)
	store.now = func() time.Time { return now }
	var evicted []string
	store.OnEvict(func(s *Session) { evicted = append(evicted, s.ID) })

	idle := store.New()
	now = now.Add(20 * time.Minute)
	active := store.New()
	now = now.Add(15 * time.Minute)
	_, ok := store.Get(active.ID)
	require.True(t, ok)

	assert.Equal(t, 1, store.Sweep())
	assert.Equal(t, []string{idle.ID}, evicted)
	_, ok = store.Get(idle.ID)
	assert.False(t, ok)

	s, created := store.GetOrCreate(active.ID)
	assert.False(t, created)
	assert.Same(t, active, s)
	_, created = store.GetOrCreate("unknown")
	assert.True(t, created)
	assert.Equal(t, 2, store.Len())
}

func TestSweeperStartStop(t *testing.T) {
	store := NewStore(time.Minute)
	require.NoError(t, store.StartSweeper())
	assert.Error(t, store.StartSweeper())
	store.StopSweeper()
}

func TestSweeperConcurrentStart(t *testing.T) {
	store := NewStore(time.Minute)
	var started atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if store.StartSweeper() == nil {
				started.Add(1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), started.Load())

	var stop sync.WaitGroup
	for i := 0; i < 4; i++ {
		stop.Add(1)
		go func() {
			defer stop.Done()
			store.StopSweeper()
		}()
	}
	stop.Wait()
	require.NoError(t, store.StartSweeper())
	store.StopSweeper()
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "awaiting_input", AwaitingInput.String())
	assert.Equal(t, "has_uploaded_data", HasUploadedData.String())
	b, err := HasExampleData.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "has_example_data", string(b))
}
