// Package awsutil classifies AWS API errors and wraps backend calls
// with bounded retry.
package awsutil

import (
	"context"
	"errors"

	"github.com/aws/smithy-go"

	"github.com/lakeforge/lakeforge/internal/provisioning"
	"github.com/lakeforge/lakeforge/internal/util/retry"
)

// Call runs fn with exponential backoff for transient failures.
// Deterministic rejections (permission denials, invalid input) are not
// retried. Once the retry budget is exhausted the transient cause is
// surfaced as a BackendUnavailableError.
func Call(ctx context.Context, op string, fn func() error) error {
	err := retry.Do(ctx, func() error {
		if err := fn(); err != nil {
			return classify(op, err)
		}
		return nil
	})
	if err == nil {
		return nil
	}

	// Typed deterministic errors surface verbatim.
	var permErr *provisioning.PermissionError
	if errors.As(err, &permErr) {
		return permErr
	}
	var conflictErr *provisioning.ConflictError
	if errors.As(err, &conflictErr) {
		return conflictErr
	}
	if retry.IsFatal(err) {
		return err
	}
	return &provisioning.BackendUnavailableError{Op: op, Err: err}
}

// classify maps an API error onto the retry policy: deterministic
// rejections are marked fatal, everything else is treated as transient.
func classify(op string, err error) error {
	switch {
	case IsAccessDenied(err):
		return retry.Fatal(&provisioning.PermissionError{Op: op, Err: err})
	case IsInvalidInput(err):
		return retry.Fatal(err)
	default:
		return err
	}
}

// errorCode extracts the API error code, or "" for non-API errors such
// as network failures.
func errorCode(err error) string {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorCode()
	}
	return ""
}

// IsNotFound reports whether err indicates an absent resource. Every
// backend family has its own spelling.
func IsNotFound(err error) bool {
	if err == nil {
		return false
	}
	switch errorCode(err) {
	case "NotFound", "404",
		"NoSuchBucket",
		"NoSuchLifecycleConfiguration",
		"NoSuchTagSet",
		"NoSuchPublicAccessBlockConfiguration",
		"ServerSideEncryptionConfigurationNotFoundError",
		"EntityNotFoundException",
		"NoSuchEntity":
		return true
	}
	return false
}

// IsAlreadyExists reports whether err indicates the resource already
// exists.
func IsAlreadyExists(err error) bool {
	if err == nil {
		return false
	}
	switch errorCode(err) {
	case "BucketAlreadyExists",
		"BucketAlreadyOwnedByYou",
		"AlreadyExistsException",
		"EntityAlreadyExists":
		return true
	}
	return false
}

// IsAccessDenied reports whether err is a permission rejection.
func IsAccessDenied(err error) bool {
	if err == nil {
		return false
	}
	switch errorCode(err) {
	case "AccessDenied", "AccessDeniedException", "UnauthorizedOperation":
		return true
	}
	return false
}

// IsInvalidInput reports whether err is a deterministic validation
// rejection that retrying cannot fix.
func IsInvalidInput(err error) bool {
	if err == nil {
		return false
	}
	switch errorCode(err) {
	case "InvalidBucketName",
		"InvalidInput",
		"ValidationException",
		"InvalidParameterValue",
		"MalformedPolicyDocument":
		return true
	}
	return false
}
