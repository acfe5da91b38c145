package orchestration

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lakeforge/lakeforge/internal/provisioning"
	"github.com/lakeforge/lakeforge/internal/provisioning/provisioningtest"
	"github.com/lakeforge/lakeforge/internal/util/naming"
)

type reconcilerFixture struct {
	storage    *provisioningtest.FakeStorage
	catalog    *provisioningtest.FakeCatalog
	roles      *provisioningtest.FakeRoles
	reconciler *Reconciler
}

func newReconcilerFixture() reconcilerFixture {
	f := reconcilerFixture{
		storage: provisioningtest.NewFakeStorage(),
		catalog: provisioningtest.NewFakeCatalog(),
		roles:   provisioningtest.NewFakeRoles(),
	}
	f.reconciler = NewReconciler(f.storage, f.catalog, f.roles, nil, naming.NewResolver(rand.NewSource(1)))
	return f
}

func TestReconcileFreshEnvironment(t *testing.T) {
	t.Parallel()

	f := newReconcilerFixture()
	spec := testSpec(t)

	result, err := f.reconciler.Reconcile(context.Background(), spec, nil)
	require.NoError(t, err)

	assert.Equal(t, 13, result.Created)
	assert.Zero(t, result.Updated)
	assert.Zero(t, result.Unchanged)
	assert.Len(t, result.Report.Completed(), 13)
	require.Len(t, result.Actions, 13)
	assert.Equal(t, ActionOutcome{Resource: "bucket", Outcome: "created"}, result.Actions[0])
	assert.Equal(t, ActionOutcome{Resource: "crawler", Outcome: "created"}, result.Actions[12])

	identity := result.Identity
	assert.True(t, identity.Valid())
	assert.Equal(t, "arn:aws:s3:::"+identity.BucketName, result.BucketARN)
	assert.NotEmpty(t, result.RoleARN)
	assert.Equal(t, []string{"landing", "raw", "curated", "analytics"}, result.Zones)

	bucket := f.storage.Buckets[identity.BucketName]
	require.NotNil(t, bucket)
	assert.Equal(t, "eu-central-1", bucket.Region)
	assert.True(t, bucket.Versioning)
	assert.Equal(t, "AES256", bucket.Encryption)
	assert.True(t, bucket.PublicAccessBlocked)
	require.NotNil(t, bucket.Lifecycle)
	assert.Len(t, bucket.Lifecycle.Rules, 3)
	assert.Equal(t, "lakeforge", bucket.Tags["ManagedBy"])
	assert.Equal(t, "data-lake", bucket.Tags["Purpose"])
	for _, zone := range result.Zones {
		assert.Contains(t, bucket.Objects, zone+"/.keep")
	}

	assert.Contains(t, f.catalog.Databases, identity.DatabaseName)
	require.Contains(t, f.catalog.Crawlers, identity.CrawlerName)
	crawler := f.catalog.Crawlers[identity.CrawlerName]
	assert.Equal(t, "s3://"+identity.BucketName+"/raw/", crawler.TargetPath)
	assert.Equal(t, result.RoleARN, crawler.RoleARN)

	assert.Contains(t, f.roles.ARNs, identity.RoleName)
	assert.Contains(t, f.roles.Policies[identity.RoleName], AccessPolicyName)
}

func TestReconcileSecondRunIsAllNoOp(t *testing.T) {
	t.Parallel()

	f := newReconcilerFixture()
	spec := testSpec(t)
	ctx := context.Background()

	first, err := f.reconciler.Reconcile(ctx, spec, nil)
	require.NoError(t, err)

	second, err := f.reconciler.Reconcile(ctx, spec, &first.Identity)
	require.NoError(t, err)

	assert.Equal(t, first.Identity, second.Identity)
	assert.Zero(t, second.Created)
	assert.Zero(t, second.Updated)
	assert.Equal(t, 13, second.Unchanged)
	assert.Empty(t, second.Report.Results)
}

func TestReconcileRepairsDeletedLifecycle(t *testing.T) {
	t.Parallel()

	f := newReconcilerFixture()
	spec := testSpec(t)
	ctx := context.Background()

	first, err := f.reconciler.Reconcile(ctx, spec, nil)
	require.NoError(t, err)

	f.storage.Buckets[first.Identity.BucketName].Lifecycle = nil

	second, err := f.reconciler.Reconcile(ctx, spec, &first.Identity)
	require.NoError(t, err)

	assert.Zero(t, second.Created)
	assert.Equal(t, 1, second.Updated)
	assert.Equal(t, 12, second.Unchanged)

	restored := f.storage.Buckets[first.Identity.BucketName].Lifecycle
	require.NotNil(t, restored)
	assert.Len(t, restored.Rules, 3)
}

func TestReconcilePreservesForeignTags(t *testing.T) {
	t.Parallel()

	f := newReconcilerFixture()
	spec := testSpec(t)
	ctx := context.Background()

	first, err := f.reconciler.Reconcile(ctx, spec, nil)
	require.NoError(t, err)

	bucket := f.storage.Buckets[first.Identity.BucketName]
	bucket.Tags["CostCenter"] = "1234"
	bucket.Tags["Project"] = "tampered"

	_, err = f.reconciler.Reconcile(ctx, spec, &first.Identity)
	require.NoError(t, err)

	assert.Equal(t, "1234", bucket.Tags["CostCenter"])
	assert.Equal(t, "acme", bucket.Tags["Project"])
}

func TestReconcileNeverOverwritesMarkers(t *testing.T) {
	t.Parallel()

	f := newReconcilerFixture()
	spec := testSpec(t)
	ctx := context.Background()

	first, err := f.reconciler.Reconcile(ctx, spec, nil)
	require.NoError(t, err)

	bucket := f.storage.Buckets[first.Identity.BucketName]
	bucket.Tags = map[string]string{} // force a tags update on the next run
	bucket.Objects["raw/.keep"] = []byte("customized")

	_, err = f.reconciler.Reconcile(ctx, spec, &first.Identity)
	require.NoError(t, err)
	assert.Equal(t, "customized", string(bucket.Objects["raw/.keep"]))
}

func TestReconcileStopsAtFirstFailure(t *testing.T) {
	t.Parallel()

	f := newReconcilerFixture()
	f.catalog.Fail["CreateDatabase"] = errors.New("throttled")
	spec := testSpec(t)

	_, err := f.reconciler.Reconcile(context.Background(), spec, nil)

	var partial *provisioning.PartialExecutionError
	require.ErrorAs(t, err, &partial)

	report := partial.Report
	failed := report.Failed()
	require.NotNil(t, failed)
	assert.Equal(t, provisioning.KindDatabase, failed.Action.Kind)

	// Everything before the database completed; the crawler was never
	// attempted.
	assert.Len(t, report.Completed(), 11)
	notAttempted := report.NotAttempted()
	require.Len(t, notAttempted, 1)
	assert.Equal(t, provisioning.KindCrawler, notAttempted[0].Action.Kind)
}

func TestReconcileResumesAfterFailure(t *testing.T) {
	t.Parallel()

	f := newReconcilerFixture()
	f.catalog.Fail["CreateDatabase"] = errors.New("throttled")
	spec := testSpec(t)
	ctx := context.Background()

	_, err := f.reconciler.Reconcile(ctx, spec, nil)
	require.Error(t, err)

	// The bucket was created with a minted identity on the failed run;
	// reuse it so the retry converges on the same resources.
	var identity naming.Identity
	for name := range f.storage.Buckets {
		identity = naming.Identity{
			BucketName:   name,
			DatabaseName: "acme_dev_data_lake",
			CrawlerName:  "acme-dev-lake-crawler",
			RoleName:     "acme-dev-lake-crawler-role",
		}
	}
	require.True(t, identity.Valid())

	delete(f.catalog.Fail, "CreateDatabase")

	result, err := f.reconciler.Reconcile(ctx, spec, &identity)
	require.NoError(t, err)

	// Only the missing tail is created on the retry.
	assert.Equal(t, 2, result.Created)
	assert.Equal(t, 11, result.Unchanged)
	assert.Contains(t, f.catalog.Databases, identity.DatabaseName)
	assert.Contains(t, f.catalog.Crawlers, identity.CrawlerName)
}

func TestReconcileHonorsCancellation(t *testing.T) {
	t.Parallel()

	f := newReconcilerFixture()
	spec := testSpec(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.reconciler.Reconcile(ctx, spec, nil)
	require.Error(t, err)
}

func TestReconcileSurfacesBucketNameConflict(t *testing.T) {
	t.Parallel()

	f := newReconcilerFixture()
	spec := testSpec(t)

	identity := naming.Identity{
		BucketName:   "acme-dev-data-lake-abc123",
		DatabaseName: "acme_dev_data_lake",
		CrawlerName:  "acme-dev-lake-crawler",
		RoleName:     "acme-dev-lake-crawler-role",
	}
	f.storage.TakenNames[identity.BucketName] = true

	_, err := f.reconciler.Reconcile(context.Background(), spec, &identity)

	var conflict *provisioning.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, identity.BucketName, conflict.Name)
}

func TestReconcileDisabledCrawler(t *testing.T) {
	t.Parallel()

	f := newReconcilerFixture()
	spec := testSpec(t)
	spec.DisableCrawler = true

	result, err := f.reconciler.Reconcile(context.Background(), spec, nil)
	require.NoError(t, err)

	assert.Equal(t, 10, result.Created)
	assert.Empty(t, result.RoleARN)
	assert.Empty(t, f.catalog.Databases)
	assert.Empty(t, f.catalog.Crawlers)
	assert.Empty(t, f.roles.ARNs)
}
