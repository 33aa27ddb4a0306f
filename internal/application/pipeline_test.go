package application

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/go-tally/internal/domain"
	"github.com/ahrav/go-tally/internal/ports"
)

var traceKey = domain.NewKey[[]string]("test.trace")

// mockExecutable appends its ID to traceKey, or fails with err.
type mockExecutable struct {
	id  string
	err error
}

func (m *mockExecutable) ID() string { return m.id }

func (m *mockExecutable) Execute(_ context.Context, state domain.State) (domain.State, error) {
	if m.err != nil {
		return state, m.err
	}
	trace, _ := domain.Get(state, traceKey)
	return domain.With(state, traceKey, append(trace, m.id)), nil
}

func TestPipeline_Execute(t *testing.T) {
	p := NewPipeline("p")
	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, p.Add(&mockExecutable{id: id}))
	}

	out, err := p.Execute(context.Background(), domain.NewState())
	require.NoError(t, err)

	trace, ok := domain.Get(out, traceKey)
	require.True(t, ok)
	assert.Equal(t, []string{"a", "b", "c"}, trace)
}

func TestPipeline_ExecuteError(t *testing.T) {
	boom := errors.New("boom")
	p := NewPipeline("p")
	require.NoError(t, p.Add(&mockExecutable{id: "a"}))
	require.NoError(t, p.Add(&mockExecutable{id: "b", err: boom}))
	require.NoError(t, p.Add(&mockExecutable{id: "c"}))

	out, err := p.Execute(context.Background(), domain.NewState())
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "pipeline p: execution failed at b")

	trace, _ := domain.Get(out, traceKey)
	assert.Equal(t, []string{"a"}, trace, "state reflects the executables that succeeded")
}

func TestPipeline_ExecuteCanceled(t *testing.T) {
	p := NewPipeline("p")
	require.NoError(t, p.Add(&mockExecutable{id: "a"}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Execute(ctx, domain.NewState())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPipeline_Add(t *testing.T) {
	p := NewPipeline("p")

	assert.Error(t, p.Add(nil))
	require.NoError(t, p.Add(&mockExecutable{id: "a"}))
	assert.Error(t, p.Add(&mockExecutable{id: "a"}), "duplicate IDs are rejected")

	execs := p.Executables()
	require.Len(t, execs, 1)
	execs[0] = nil
	assert.NotNil(t, p.Executables()[0], "Executables returns a copy")
}

func TestPipeline_ConcurrentAddAndExecute(t *testing.T) {
	p := NewPipeline("p")
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			_ = p.Add(&mockExecutable{id: string(rune('a' + i))})
		}(i)
		go func() {
			defer wg.Done()
			_, err := p.Execute(context.Background(), domain.NewState())
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.Len(t, p.Executables(), 10)
}

func TestUnitAdapter(t *testing.T) {
	unit := &registryTestUnit{name: "inner"}
	adapter := NewUnitAdapter(unit, "outer")

	var _ ports.Executable = adapter
	assert.Equal(t, "outer", adapter.ID())
	assert.Same(t, unit, adapter.Unit())

	_, err := adapter.Execute(context.Background(), domain.NewState())
	assert.NoError(t, err)
	assert.Equal(t, 1, unit.calls)
}
