package destroy

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lakeforge/lakeforge/internal/policy"
	"github.com/lakeforge/lakeforge/internal/provisioning/provisioningtest"
	"github.com/lakeforge/lakeforge/internal/util/naming"
)

func testIdentity() naming.Identity {
	return naming.Identity{
		BucketName:   "acme-dev-data-lake-abc123",
		DatabaseName: "acme_dev_data_lake",
		CrawlerName:  "acme-dev-lake-crawler",
		RoleName:     "acme-dev-lake-crawler-role",
	}
}

type fixture struct {
	storage *provisioningtest.FakeStorage
	catalog *provisioningtest.FakeCatalog
	roles   *provisioningtest.FakeRoles
}

func provisionedLake(t *testing.T, identity naming.Identity) fixture {
	t.Helper()
	ctx := context.Background()

	f := fixture{
		storage: provisioningtest.NewFakeStorage(),
		catalog: provisioningtest.NewFakeCatalog(),
		roles:   provisioningtest.NewFakeRoles(),
	}

	require.NoError(t, f.storage.CreateBucket(ctx, identity.BucketName, "eu-central-1"))
	require.NoError(t, f.catalog.CreateDatabase(ctx, identity.DatabaseName, "data lake catalog"))
	arn, err := f.roles.CreateRole(ctx, identity.RoleName, policy.BuildTrustPolicy(), nil)
	require.NoError(t, err)
	require.NoError(t, f.catalog.CreateCrawler(ctx, identity.CrawlerName, arn, policy.CrawlerConfigDocument{
		DatabaseName:    identity.DatabaseName,
		TargetPath:      "s3://" + identity.BucketName + "/raw/",
		RecrawlBehavior: policy.RecrawlNewObjectsOnly,
	}))
	return f
}

func TestDestroyRemovesEverything(t *testing.T) {
	t.Parallel()

	identity := testIdentity()
	f := provisionedLake(t, identity)

	report, err := NewDestroyer(f.storage, f.catalog, f.roles).Destroy(context.Background(), identity, false)
	require.NoError(t, err)

	assert.True(t, report.CrawlerDeleted)
	assert.True(t, report.DatabaseDeleted)
	assert.True(t, report.RoleDeleted)
	assert.False(t, report.BucketEmptied)
	assert.True(t, report.BucketDeleted)

	assert.Empty(t, f.storage.Buckets)
	assert.Empty(t, f.catalog.Databases)
	assert.Empty(t, f.catalog.Crawlers)
	assert.Empty(t, f.roles.ARNs)
}

func TestDestroyRefusesNonEmptyBucketWithoutForce(t *testing.T) {
	t.Parallel()

	identity := testIdentity()
	f := provisionedLake(t, identity)
	ctx := context.Background()
	require.NoError(t, f.storage.PutObject(ctx, identity.BucketName, "raw/events.parquet", []byte("data"), "application/octet-stream"))

	report, err := NewDestroyer(f.storage, f.catalog, f.roles).Destroy(ctx, identity, false)

	var notEmpty *NotEmptyError
	require.ErrorAs(t, err, &notEmpty)
	assert.Equal(t, identity.BucketName, notEmpty.Bucket)
	assert.Equal(t, 1, notEmpty.Objects)

	// Catalog resources deleted before the refusal stay deleted; the
	// bucket and its data survive.
	assert.True(t, report.CrawlerDeleted)
	assert.True(t, report.DatabaseDeleted)
	assert.True(t, report.RoleDeleted)
	assert.False(t, report.BucketDeleted)
	assert.Contains(t, f.storage.Buckets, identity.BucketName)
}

func TestDestroyForceEmptiesThenDeletes(t *testing.T) {
	t.Parallel()

	identity := testIdentity()
	f := provisionedLake(t, identity)
	ctx := context.Background()
	require.NoError(t, f.storage.PutObject(ctx, identity.BucketName, "raw/events.parquet", []byte("data"), "application/octet-stream"))

	report, err := NewDestroyer(f.storage, f.catalog, f.roles).Destroy(ctx, identity, true)
	require.NoError(t, err)

	assert.True(t, report.BucketEmptied)
	assert.True(t, report.BucketDeleted)
	assert.Empty(t, f.storage.Buckets)
}

func TestDestroySkipsAbsentResources(t *testing.T) {
	t.Parallel()

	report, err := NewDestroyer(
		provisioningtest.NewFakeStorage(),
		provisioningtest.NewFakeCatalog(),
		provisioningtest.NewFakeRoles(),
	).Destroy(context.Background(), testIdentity(), false)
	require.NoError(t, err)

	assert.Equal(t, Report{}, report)
}

func TestDestroyStopsOnBackendFailure(t *testing.T) {
	t.Parallel()

	identity := testIdentity()
	f := provisionedLake(t, identity)
	f.catalog.Fail["DeleteDatabase"] = errors.New("throttled")

	report, err := NewDestroyer(f.storage, f.catalog, f.roles).Destroy(context.Background(), identity, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), identity.DatabaseName)

	// The crawler was removed before the failure; the role and bucket
	// remain for the next attempt.
	assert.True(t, report.CrawlerDeleted)
	assert.False(t, report.RoleDeleted)
	assert.Contains(t, f.roles.ARNs, identity.RoleName)
	assert.Contains(t, f.storage.Buckets, identity.BucketName)
}
