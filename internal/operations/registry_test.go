package operations

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStep is a configurable step used across the package tests.
type fakeStep struct {
	id         string
	name       string
	validateFn func(*RunState) error
	executeFn  func(context.Context, *RunState) error
}

func (f *fakeStep) ID() string   { return f.id }
func (f *fakeStep) Name() string { return f.name }

func (f *fakeStep) Validate(state *RunState) error {
	if f.validateFn != nil {
		return f.validateFn(state)
	}
	return nil
}

func (f *fakeStep) Execute(ctx context.Context, state *RunState) error {
	if f.executeFn != nil {
		return f.executeFn(ctx, state)
	}
	return nil
}

func TestRegistry_RegisterPreservesOrder(t *testing.T) {
	r := NewRegistry()
	ids := []string{"first", "second", "third"}
	for _, id := range ids {
		require.NoError(t, r.Register(&fakeStep{id: id, name: id}))
	}

	steps := r.List()
	require.Len(t, steps, 3)
	for i, step := range steps {
		assert.Equal(t, ids[i], step.ID())
	}
	assert.Equal(t, 3, r.Count())
}

func TestRegistry_RejectsDuplicates(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(&fakeStep{id: "ingest"}))

	err := r.Register(&fakeStep{id: "ingest"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already registered")
}

func TestRegistry_RejectsInvalidSteps(t *testing.T) {
	r := NewRegistry()

	require.Error(t, r.Register(nil))
	require.Error(t, r.Register(&fakeStep{id: ""}))
}

func TestRegistry_Get(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(&fakeStep{id: "validate", name: "Validation"}))

	step, err := r.Get("validate")
	require.NoError(t, err)
	assert.Equal(t, "Validation", step.Name())

	_, err = r.Get("missing")
	require.Error(t, err)
	assert.Equal(t, fmt.Sprintf("step with ID %s not found", "missing"), err.Error())
}
