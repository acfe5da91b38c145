// Package destroy tears down a data lake in reverse dependency order.
package destroy

import (
	"context"
	"fmt"

	"github.com/lakeforge/lakeforge/internal/provisioning"
	"github.com/lakeforge/lakeforge/internal/util/naming"
)

// NotEmptyError is returned when the bucket still holds objects and
// force destroy was not requested.
type NotEmptyError struct {
	Bucket  string
	Objects int
}

func (e *NotEmptyError) Error() string {
	return fmt.Sprintf("bucket %s holds %d objects; refusing to destroy without force", e.Bucket, e.Objects)
}

// Report lists the resources removed by one destroy run.
type Report struct {
	CrawlerDeleted  bool
	DatabaseDeleted bool
	RoleDeleted     bool
	BucketEmptied   bool
	BucketDeleted   bool
}

// Destroyer removes the resources of one data lake. Resources are
// deleted in reverse creation order so no dangling reference survives
// a partial run: crawler, database, role, then bucket.
type Destroyer struct {
	storage provisioning.StorageBackend
	catalog provisioning.CatalogBackend
	roles   provisioning.RoleBackend
}

// NewDestroyer creates a destroyer over the given backends.
func NewDestroyer(storage provisioning.StorageBackend, catalog provisioning.CatalogBackend, roles provisioning.RoleBackend) *Destroyer {
	return &Destroyer{storage: storage, catalog: catalog, roles: roles}
}

// Destroy removes every resource of the identity. Absent resources are
// skipped. A bucket that still holds objects is only removed when
// force is set; otherwise the run stops with NotEmptyError, leaving
// the already-deleted catalog resources gone.
func (d *Destroyer) Destroy(ctx context.Context, identity naming.Identity, force bool) (Report, error) {
	var report Report

	crawler, err := d.catalog.GetCrawler(ctx, identity.CrawlerName)
	if err != nil {
		return report, fmt.Errorf("checking crawler: %w", err)
	}
	if crawler != nil {
		if err := d.catalog.DeleteCrawler(ctx, identity.CrawlerName); err != nil {
			return report, fmt.Errorf("deleting crawler %s: %w", identity.CrawlerName, err)
		}
		report.CrawlerDeleted = true
	}

	dbExists, err := d.catalog.DatabaseExists(ctx, identity.DatabaseName)
	if err != nil {
		return report, fmt.Errorf("checking database: %w", err)
	}
	if dbExists {
		if err := d.catalog.DeleteDatabase(ctx, identity.DatabaseName); err != nil {
			return report, fmt.Errorf("deleting database %s: %w", identity.DatabaseName, err)
		}
		report.DatabaseDeleted = true
	}

	arn, err := d.roles.GetRoleARN(ctx, identity.RoleName)
	if err != nil {
		return report, fmt.Errorf("checking role: %w", err)
	}
	if arn != "" {
		if err := d.roles.DeleteRole(ctx, identity.RoleName); err != nil {
			return report, fmt.Errorf("deleting role %s: %w", identity.RoleName, err)
		}
		report.RoleDeleted = true
	}

	exists, err := d.storage.BucketExists(ctx, identity.BucketName)
	if err != nil {
		return report, fmt.Errorf("checking bucket: %w", err)
	}
	if !exists {
		return report, nil
	}

	keys, err := d.storage.ListObjects(ctx, identity.BucketName, "")
	if err != nil {
		return report, fmt.Errorf("listing bucket %s: %w", identity.BucketName, err)
	}
	if len(keys) > 0 {
		if !force {
			return report, &NotEmptyError{Bucket: identity.BucketName, Objects: len(keys)}
		}
		if err := d.storage.EmptyBucket(ctx, identity.BucketName); err != nil {
			return report, fmt.Errorf("emptying bucket %s: %w", identity.BucketName, err)
		}
		report.BucketEmptied = true
	}

	if err := d.storage.DeleteBucket(ctx, identity.BucketName); err != nil {
		return report, fmt.Errorf("deleting bucket %s: %w", identity.BucketName, err)
	}
	report.BucketDeleted = true
	return report, nil
}
