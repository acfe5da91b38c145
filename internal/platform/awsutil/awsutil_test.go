package awsutil

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lakeforge/lakeforge/internal/provisioning"
)

func apiError(code string) error {
	return &smithy.GenericAPIError{Code: code, Message: code}
}

func TestIsNotFound(t *testing.T) {
	t.Parallel()
	assert.False(t, IsNotFound(nil))
	assert.False(t, IsNotFound(errors.New("plain")))
	assert.True(t, IsNotFound(apiError("NoSuchBucket")))
	assert.True(t, IsNotFound(apiError("NotFound")))
	assert.True(t, IsNotFound(apiError("NoSuchLifecycleConfiguration")))
	assert.True(t, IsNotFound(apiError("EntityNotFoundException")))
	assert.True(t, IsNotFound(apiError("NoSuchEntity")))
	assert.False(t, IsNotFound(apiError("AccessDenied")))
}

func TestIsAlreadyExists(t *testing.T) {
	t.Parallel()
	assert.True(t, IsAlreadyExists(apiError("BucketAlreadyExists")))
	assert.True(t, IsAlreadyExists(apiError("BucketAlreadyOwnedByYou")))
	assert.True(t, IsAlreadyExists(apiError("AlreadyExistsException")))
	assert.True(t, IsAlreadyExists(apiError("EntityAlreadyExists")))
	assert.False(t, IsAlreadyExists(nil))
	assert.False(t, IsAlreadyExists(apiError("NoSuchBucket")))
}

func TestIsAccessDenied(t *testing.T) {
	t.Parallel()
	assert.True(t, IsAccessDenied(apiError("AccessDenied")))
	assert.True(t, IsAccessDenied(apiError("AccessDeniedException")))
	assert.False(t, IsAccessDenied(apiError("Throttling")))
}

func TestCall_Success(t *testing.T) {
	t.Parallel()
	calls := 0
	err := Call(context.Background(), "put object", func() error {
		calls++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestCall_PermissionDeniedNotRetried(t *testing.T) {
	t.Parallel()
	calls := 0
	err := Call(context.Background(), "create role", func() error {
		calls++
		return apiError("AccessDenied")
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)

	var permErr *provisioning.PermissionError
	require.ErrorAs(t, err, &permErr)
	assert.Equal(t, "create role", permErr.Op)
}

func TestCall_InvalidInputNotRetried(t *testing.T) {
	t.Parallel()
	calls := 0
	err := Call(context.Background(), "create bucket", func() error {
		calls++
		return apiError("InvalidBucketName")
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestCall_TransientSurfacesAsBackendUnavailable(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	calls := 0
	err := Call(ctx, "head bucket", func() error {
		calls++
		if calls < 2 {
			return apiError("Throttling")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestCall_RetryBudgetExhausted(t *testing.T) {
	t.Parallel()
	// A permanently-throttled backend must eventually surface as
	// unavailable rather than block forever. Cancel quickly so the
	// backoff does not stretch the test.
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := Call(ctx, "list objects", func() error {
		return apiError("Throttling")
	})
	require.Error(t, err)
}
