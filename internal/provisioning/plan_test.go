package provisioning

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlan_Counts(t *testing.T) {
	t.Parallel()
	plan := Plan{Actions: []Action{
		{Kind: KindBucket, Op: OpCreate},
		{Kind: KindVersioning, Op: OpCreate},
		{Kind: KindLifecycle, Op: OpUpdate},
		{Kind: KindTags, Op: OpNoOp},
		{Kind: KindCrawler, Op: OpNoOp},
	}}

	create, update, noop := plan.Counts()
	assert.Equal(t, 2, create)
	assert.Equal(t, 1, update)
	assert.Equal(t, 2, noop)
}

func TestPlan_MutationsPreserveOrder(t *testing.T) {
	t.Parallel()
	plan := Plan{Actions: []Action{
		{Kind: KindBucket, Op: OpNoOp},
		{Kind: KindVersioning, Op: OpCreate},
		{Kind: KindLifecycle, Op: OpUpdate},
		{Kind: KindCrawler, Op: OpNoOp},
	}}

	muts := plan.Mutations()
	require.Len(t, muts, 2)
	assert.Equal(t, KindVersioning, muts[0].Kind)
	assert.Equal(t, KindLifecycle, muts[1].Kind)
}

func TestAction_Target(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "bucket", Action{Kind: KindBucket}.Target())
	assert.Equal(t, "zone-marker/raw", Action{Kind: KindZoneMarker, Zone: "raw"}.Target())
}

func TestExecutionReport_Partitions(t *testing.T) {
	t.Parallel()
	report := NewExecutionReport()
	require.NotEmpty(t, report.RunID)

	boom := errors.New("boom")
	report.Record(Action{Kind: KindBucket, Op: OpCreate}, StatusCompleted, nil)
	report.Record(Action{Kind: KindVersioning, Op: OpCreate}, StatusFailed, boom)
	report.Record(Action{Kind: KindLifecycle, Op: OpCreate}, StatusNotAttempted, nil)

	assert.Len(t, report.Completed(), 1)
	require.NotNil(t, report.Failed())
	assert.Equal(t, KindVersioning, report.Failed().Action.Kind)
	assert.ErrorIs(t, report.Failed().Err, boom)
	assert.Len(t, report.NotAttempted(), 1)
}

func TestExecutionReport_NoFailure(t *testing.T) {
	t.Parallel()
	report := NewExecutionReport()
	report.Record(Action{Kind: KindBucket, Op: OpCreate}, StatusCompleted, nil)
	assert.Nil(t, report.Failed())
}

func TestPartialExecutionError_Message(t *testing.T) {
	t.Parallel()
	report := NewExecutionReport()
	boom := errors.New("throttled")
	report.Record(Action{Kind: KindBucket, Op: OpCreate}, StatusCompleted, nil)
	report.Record(Action{Kind: KindDatabase, Op: OpCreate}, StatusFailed, boom)

	err := &PartialExecutionError{Report: report, Err: boom}
	assert.Contains(t, err.Error(), "1 of 2 actions completed")
	assert.Contains(t, err.Error(), "database failed")
	assert.ErrorIs(t, err, boom)
}

func TestErrorKinds_UnwrapAndMessage(t *testing.T) {
	t.Parallel()
	cause := errors.New("connection reset")

	var err error = &BackendUnavailableError{Op: "head bucket", Err: cause}
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "head bucket")

	err = &ConflictError{Resource: "bucket", Name: "taken-name", Err: cause}
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), `"taken-name"`)

	err = &PermissionError{Op: "create role", Err: cause}
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "permission denied")
}
