// Package state reads the live backend state of a data lake.
package state

import (
	"context"

	"github.com/lakeforge/lakeforge/internal/provisioning"
	"github.com/lakeforge/lakeforge/internal/util/async"
	"github.com/lakeforge/lakeforge/internal/util/naming"
)

// Reader observes the current backend state for one identity. All
// queries are read-only and tolerate absent sub-resources: a
// partially-provisioned lake is a normal, recoverable state.
type Reader struct {
	storage provisioning.StorageBackend
	catalog provisioning.CatalogBackend
	roles   provisioning.RoleBackend
}

// NewReader creates a state reader over the given backends.
func NewReader(storage provisioning.StorageBackend, catalog provisioning.CatalogBackend, roles provisioning.RoleBackend) *Reader {
	return &Reader{storage: storage, catalog: catalog, roles: roles}
}

// Read takes a fresh snapshot of the backend. The bucket, catalog, and
// role sub-queries are independent and issued concurrently; only a
// transport-level failure aborts the read.
func (r *Reader) Read(ctx context.Context, identity naming.Identity, zones []string) (*provisioning.ObservedState, error) {
	observed := &provisioning.ObservedState{
		Tags:        map[string]string{},
		ZoneMarkers: map[string]bool{},
	}

	tasks := []async.Task{
		{
			Name: "bucket",
			Func: func(ctx context.Context) error {
				return r.readBucket(ctx, identity.BucketName, zones, observed)
			},
		},
		{
			Name: "catalog",
			Func: func(ctx context.Context) error {
				return r.readCatalog(ctx, identity, observed)
			},
		},
		{
			Name: "role",
			Func: func(ctx context.Context) error {
				arn, err := r.roles.GetRoleARN(ctx, identity.RoleName)
				if err != nil {
					return err
				}
				observed.RoleARN = arn
				return nil
			},
		},
	}

	if err := async.RunParallel(ctx, tasks); err != nil {
		return nil, err
	}
	return observed, nil
}

// readBucket fills in the bucket portion of the snapshot. When the
// bucket is absent every dependent sub-read is skipped; their zero
// values already mean "absent".
func (r *Reader) readBucket(ctx context.Context, bucket string, zones []string, observed *provisioning.ObservedState) error {
	exists, err := r.storage.BucketExists(ctx, bucket)
	if err != nil {
		return err
	}
	observed.BucketExists = exists
	if !exists {
		return nil
	}

	if observed.VersioningEnabled, err = r.storage.GetVersioning(ctx, bucket); err != nil {
		return err
	}
	if observed.EncryptionAlgorithm, err = r.storage.GetEncryption(ctx, bucket); err != nil {
		return err
	}
	if observed.PublicAccessBlocked, err = r.storage.GetPublicAccessBlock(ctx, bucket); err != nil {
		return err
	}
	if observed.Lifecycle, err = r.storage.GetLifecycle(ctx, bucket); err != nil {
		return err
	}
	if observed.Tags, err = r.storage.GetTags(ctx, bucket); err != nil {
		return err
	}

	for _, zone := range zones {
		present, err := r.storage.ObjectExists(ctx, bucket, provisioning.MarkerKey(zone))
		if err != nil {
			return err
		}
		observed.ZoneMarkers[zone] = present
	}
	return nil
}

func (r *Reader) readCatalog(ctx context.Context, identity naming.Identity, observed *provisioning.ObservedState) error {
	exists, err := r.catalog.DatabaseExists(ctx, identity.DatabaseName)
	if err != nil {
		return err
	}
	observed.DatabaseExists = exists

	crawler, err := r.catalog.GetCrawler(ctx, identity.CrawlerName)
	if err != nil {
		return err
	}
	observed.Crawler = crawler
	return nil
}
