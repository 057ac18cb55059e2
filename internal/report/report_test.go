package report

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vincentngwk/GIT-ML-DS/internal/analysis"
	"github.com/vincentngwk/GIT-ML-DS/internal/dataset"
	"github.com/vincentngwk/GIT-ML-DS/internal/widget"
)

type countingProfiler struct {
	calls atomic.Int32
	inner analysis.Profiler
}

func (c *countingProfiler) Profile(ctx context.Context, ds *dataset.Dataset) (*analysis.Report, error) {
	c.calls.Add(1)
	return c.inner.Profile(ctx, ds)
}

type failingProfiler struct{ err error }

func (f failingProfiler) Profile(context.Context, *dataset.Dataset) (*analysis.Report, error) {
	return nil, f.err
}

func sensors(t *testing.T) *dataset.Dataset {
	t.Helper()
	ds, err := dataset.ReadCSV("sensors.csv", strings.NewReader("id,temp,pressure\n"+
		"1,20.5,101.2\n"+
		"2,21.0,101.0\n"+
		"3,21.7,100.8\n"+
		"4,22.1,100.9\n"+
		"5,22.4,101.5\n"), dataset.CSVOptions{})
	require.NoError(t, err)
	ds.ID = "sha256:sensors"
	return ds
}

func TestRenderSensorTable(t *testing.T) {
	o := New(analysis.NewEngine(analysis.DefaultOptions()), widget.HTML{})
	page, err := o.Render(context.Background(), sensors(t))
	require.NoError(t, err)

	assert.Equal(t, 5, page.Table.TotalRows)
	assert.Equal(t, 3, page.Table.TotalCols)
	assert.Len(t, page.Table.Rows, 5)
	assert.Equal(t, []string{"id", "temp", "pressure"}, page.Table.Columns)
	assert.False(t, page.Table.Truncated)
	assert.Equal(t, 3, page.Report.Variables())
	assert.Contains(t, page.View.String(), "Overview")
}

func TestRenderMemoizesByDatasetID(t *testing.T) {
	p := &countingProfiler{inner: analysis.NewEngine(analysis.DefaultOptions())}
	o := New(p, widget.Markdown{})
	ds := sensors(t)

	first, err := o.Render(context.Background(), ds)
	require.NoError(t, err)
	second, err := o.Render(context.Background(), ds)
	require.NoError(t, err)
	assert.Same(t, first.Report, second.Report)
	assert.True(t, second.Cached)
	assert.Equal(t, int32(1), p.calls.Load())

	o.Forget(ds.ID)
	_, err = o.Render(context.Background(), ds)
	require.NoError(t, err)
	assert.Equal(t, int32(2), p.calls.Load())
}

func TestRenderWithoutIDIsNotMemoized(t *testing.T) {
	p := &countingProfiler{inner: analysis.NewEngine(analysis.DefaultOptions())}
	o := New(p, widget.JSON{})
	ds := dataset.Example(3)
	for i := 0; i < 2; i++ {
		_, err := o.Render(context.Background(), ds)
		require.NoError(t, err)
	}
	assert.Equal(t, int32(2), p.calls.Load())
}

func TestRenderTableCap(t *testing.T) {
	o := New(analysis.NewEngine(analysis.DefaultOptions()), widget.Markdown{}, WithTableRows(10))
	page, err := o.Render(context.Background(), dataset.Example(9))
	require.NoError(t, err)
	assert.Len(t, page.Table.Rows, 10)
	assert.Equal(t, 100, page.Table.TotalRows)
	assert.Equal(t, 7, page.Table.TotalCols)
	assert.True(t, page.Table.Truncated)
	assert.Equal(t, 100, page.Report.Rows)
}

func TestRenderPropagatesProfileError(t *testing.T) {
	boom := errors.New("boom")
	var observed error
	o := New(failingProfiler{err: boom}, widget.HTML{}, WithObserver(func(_ string, _ bool, err error, _ float64) {
		observed = err
	}))
	_, err := o.Render(context.Background(), sensors(t))
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "profile dataset")
	assert.ErrorIs(t, observed, boom)
}

func TestRenderPropagatesRenderError(t *testing.T) {
	bad := widget.RendererFunc(func(*analysis.Report) (widget.View, error) {
		return widget.View{}, errors.New("template exploded")
	})
	o := New(analysis.NewEngine(analysis.DefaultOptions()), bad)
	_, err := o.Render(context.Background(), sensors(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "render report")
}

type blockingProfiler struct {
	started chan struct{}
	release chan struct{}
	calls   atomic.Int32
}

func (b *blockingProfiler) Profile(ctx context.Context, ds *dataset.Dataset) (*analysis.Report, error) {
	if b.calls.Add(1) == 1 {
		close(b.started)
	}
	<-b.release
	return analysis.NewEngine(analysis.DefaultOptions()).Profile(ctx, ds)
}

func TestRenderSurvivesOtherCallerCancel(t *testing.T) {
	p := &blockingProfiler{started: make(chan struct{}), release: make(chan struct{})}
	o := New(p, widget.Markdown{})
	ds := sensors(t)

	ctxA, cancelA := context.WithCancel(context.Background())
	errA := make(chan error, 1)
	go func() {
		_, err := o.Render(ctxA, ds)
		errA <- err
	}()
	<-p.started

	type result struct {
		page *Page
		err  error
	}
	resB := make(chan result, 1)
	go func() {
		page, err := o.Render(context.Background(), ds)
		resB <- result{page, err}
	}()
	time.Sleep(20 * time.Millisecond)

	cancelA()
	assert.ErrorIs(t, <-errA, context.Canceled)
	close(p.release)

	b := <-resB
	require.NoError(t, b.err)
	assert.Equal(t, 3, b.page.Report.Variables())
	assert.Equal(t, int32(1), p.calls.Load())
}
