package pipeline

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func noop(context.Context) error { return nil }

func TestNewGraphRejectsInvalid(t *testing.T) {
	tests := []struct {
		name  string
		tasks []Task
		kind  error
	}{
		{"empty", nil, ErrInvalidGraph},
		{"no name", []Task{{Run: noop}}, ErrInvalidGraph},
		{"duplicate", []Task{{Name: "a", Run: noop}, {Name: "a", Run: noop}}, ErrInvalidGraph},
		{"no run", []Task{{Name: "a"}}, ErrInvalidGraph},
		{"unknown dep", []Task{{Name: "a", Deps: []string{"b"}, Run: noop}}, ErrInvalidGraph},
		{"self dep", []Task{{Name: "a", Deps: []string{"a"}, Run: noop}}, ErrInvalidGraph},
		{"cycle", []Task{
			{Name: "a", Deps: []string{"c"}, Run: noop},
			{Name: "b", Deps: []string{"a"}, Run: noop},
			{Name: "c", Deps: []string{"b"}, Run: noop},
			{Name: "d", Run: noop},
		}, ErrCycle},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := NewGraph(tt.tasks...)
			require.Error(t, err)
			assert.Nil(t, g)
			assert.True(t, errors.Is(err, tt.kind), err.Error())

			var ge *GraphError
			assert.True(t, errors.As(err, &ge))
		})
	}
}

func TestCycleErrorNamesTasks(t *testing.T) {
	_, err := NewGraph(
		Task{Name: "x", Deps: []string{"y"}, Run: noop},
		Task{Name: "y", Deps: []string{"x"}, Run: noop},
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "x, y")
}

func buildShape() []Task {
	return []Task{
		{Name: "finalise-html", Deps: []string{"minify-js", "minify-css", "compress-images", "copy-misc-files"}, Run: noop},
		{Name: "minify-js", Deps: []string{"scripts"}, Run: noop},
		{Name: "minify-css", Deps: []string{"styles"}, Run: noop},
		{Name: "compress-images", Deps: []string{"clean"}, Run: noop},
		{Name: "copy-misc-files", Deps: []string{"clean"}, Run: noop},
		{Name: "scripts", Deps: []string{"download-data"}, Run: noop},
		{Name: "styles", Deps: []string{"download-data"}, Run: noop},
		{Name: "templates", Deps: []string{"download-data"}, Run: noop},
		{Name: "download-data", Deps: []string{"clean"}, Run: noop},
		{Name: "clean", Run: noop},
	}
}

func TestStages(t *testing.T) {
	g, err := NewGraph(buildShape()...)
	require.NoError(t, err)

	want := [][]string{
		{"clean"},
		{"compress-images", "copy-misc-files", "download-data"},
		{"scripts", "styles", "templates"},
		{"minify-css", "minify-js"},
		{"finalise-html"},
	}
	if diff := cmp.Diff(want, g.Stages()); diff != "" {
		t.Fatalf("stages mismatch (-want +got):\n%s", diff)
	}

	d, ok := g.Depth("finalise-html")
	require.True(t, ok)
	assert.Equal(t, 4, d)
	assert.Equal(t, 10, g.Len())
}

func TestRunRespectsStageBarrier(t *testing.T) {
	var (
		mu    sync.Mutex
		order []string
		// writers in stage 0 must all be done before readers start
		written atomic.Int32
	)
	record := func(name string) {
		mu.Lock()
		order = append(order, name)
		mu.Unlock()
	}
	writer := func(name string) Task {
		return Task{Name: name, Run: func(ctx context.Context) error {
			time.Sleep(10 * time.Millisecond)
			written.Add(1)
			record(name)
			return nil
		}}
	}
	reader := func(name string, deps ...string) Task {
		return Task{Name: name, Deps: deps, Run: func(ctx context.Context) error {
			assert.Equal(t, int32(2), written.Load(), name)
			record(name)
			return nil
		}}
	}

	g, err := NewGraph(writer("w1"), writer("w2"), reader("r1", "w1"), reader("r2", "w1"))
	require.NoError(t, err)
	require.NoError(t, Run(context.Background(), g, nil))

	require.Len(t, order, 4)
	assert.ElementsMatch(t, []string{"w1", "w2"}, order[:2])
	assert.ElementsMatch(t, []string{"r1", "r2"}, order[2:])
}

func TestRunStopsOnFirstError(t *testing.T) {
	boom := errors.New("boom")
	var laterRan atomic.Bool

	g, err := NewGraph(
		Task{Name: "styles", Run: func(context.Context) error { return boom }},
		Task{Name: "scripts", Run: func(ctx context.Context) error {
			<-ctx.Done()
			return ctx.Err()
		}},
		Task{Name: "finalise", Deps: []string{"styles", "scripts"}, Run: func(context.Context) error {
			laterRan.Store(true)
			return nil
		}},
	)
	require.NoError(t, err)

	err = Run(context.Background(), g, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, boom))

	var te *TaskError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, "styles", te.Task)
	assert.False(t, laterRan.Load())
}

func TestRunHonoursCancelledContext(t *testing.T) {
	var ran atomic.Bool
	g, err := NewGraph(Task{Name: "a", Run: func(context.Context) error {
		ran.Store(true)
		return nil
	}})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, Run(ctx, g, nil), context.Canceled)
	assert.False(t, ran.Load())
}
