package handlers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlanFreshEnvironment(t *testing.T) {
	spec := validSpec(t)
	env := swapFactories(t, spec)

	require.NoError(t, Plan(context.Background(), ""))

	out := env.out.String()
	assert.Contains(t, out, "bucket")
	assert.Contains(t, out, "crawler")
	assert.Contains(t, out, "plan: 13 to create, 0 to update, 0 unchanged\n")

	// Preview only: nothing was provisioned and no identity persisted.
	assert.Empty(t, env.storage.Buckets)
	assert.Empty(t, env.files)
}

func TestPlanAfterApplyIsAllUnchanged(t *testing.T) {
	spec := validSpec(t)
	env := swapFactories(t, spec)

	require.NoError(t, Apply(context.Background(), ""))
	env.out.Reset()

	require.NoError(t, Plan(context.Background(), ""))
	assert.Contains(t, env.out.String(), "plan: 0 to create, 0 to update, 13 unchanged\n")
}
