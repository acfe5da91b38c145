package async

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunParallel_Empty(t *testing.T) {
	t.Parallel()
	require.NoError(t, RunParallel(context.Background(), nil))
}

func TestRunParallel_AllSucceed(t *testing.T) {
	t.Parallel()
	var count atomic.Int32
	tasks := []Task{
		{Name: "a", Func: func(context.Context) error { count.Add(1); return nil }},
		{Name: "b", Func: func(context.Context) error { count.Add(1); return nil }},
		{Name: "c", Func: func(context.Context) error { count.Add(1); return nil }},
	}

	require.NoError(t, RunParallel(context.Background(), tasks))
	assert.Equal(t, int32(3), count.Load())
}

func TestRunParallel_FirstErrorWrappedWithTaskName(t *testing.T) {
	t.Parallel()
	boom := errors.New("boom")
	tasks := []Task{
		{Name: "ok", Func: func(context.Context) error { return nil }},
		{Name: "broken", Func: func(context.Context) error { return boom }},
	}

	err := RunParallel(context.Background(), tasks)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "broken")
}

func TestRunParallel_AllTasksRunDespiteFailure(t *testing.T) {
	t.Parallel()
	var count atomic.Int32
	tasks := []Task{
		{Name: "fail", Func: func(context.Context) error { count.Add(1); return errors.New("x") }},
		{Name: "slow", Func: func(context.Context) error { count.Add(1); return nil }},
	}

	err := RunParallel(context.Background(), tasks)
	require.Error(t, err)
	assert.Equal(t, int32(2), count.Load())
}
