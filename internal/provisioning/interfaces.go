// Package provisioning provides shared types and interfaces for data
// lake provisioning.
//
// The provisioning domain is organized into focused subpackages:
//   - state/ — read-only observation of live backend state
//   - seed/ — zone marker seeding
//   - crawl/ — on-demand crawler runs and status
//   - destroy/ — explicitly-invoked teardown
//
// This root package contains the backend interfaces, the observed-state
// snapshot, the reconciliation plan model, and the error kinds used
// across subpackages.
package provisioning

import (
	"context"

	"github.com/lakeforge/lakeforge/internal/policy"
)

// StorageBackend is the object-store side of the lake: one bucket, its
// configuration, and its objects. Implementations must be idempotent:
// creating an already-created configuration is a no-op.
type StorageBackend interface {
	// CreateBucket creates the bucket in the given region. Returns nil
	// when the bucket already exists and is owned by the caller.
	CreateBucket(ctx context.Context, name, region string) error

	// BucketExists reports whether the bucket exists and is accessible.
	BucketExists(ctx context.Context, name string) (bool, error)

	// GetVersioning reports whether versioning is enabled.
	GetVersioning(ctx context.Context, bucket string) (bool, error)

	// EnableVersioning turns on bucket versioning.
	EnableVersioning(ctx context.Context, bucket string) error

	// GetEncryption returns the default encryption algorithm, or ""
	// when no default encryption is configured.
	GetEncryption(ctx context.Context, bucket string) (string, error)

	// EnableEncryption configures AES256 server-side encryption.
	EnableEncryption(ctx context.Context, bucket string) error

	// GetPublicAccessBlock reports whether all public access is blocked.
	GetPublicAccessBlock(ctx context.Context, bucket string) (bool, error)

	// BlockPublicAccess blocks all four public access vectors.
	BlockPublicAccess(ctx context.Context, bucket string) error

	// GetLifecycle returns the current lifecycle document, or nil when
	// none is configured.
	GetLifecycle(ctx context.Context, bucket string) (*policy.LifecycleDocument, error)

	// PutLifecycle replaces the bucket lifecycle configuration.
	PutLifecycle(ctx context.Context, bucket string, doc policy.LifecycleDocument) error

	// GetTags returns the bucket tag set, empty when untagged.
	GetTags(ctx context.Context, bucket string) (map[string]string, error)

	// PutTags replaces the bucket tag set.
	PutTags(ctx context.Context, bucket string, tags map[string]string) error

	// ObjectExists reports whether the object key is present.
	ObjectExists(ctx context.Context, bucket, key string) (bool, error)

	// PutObject writes an object.
	PutObject(ctx context.Context, bucket, key string, body []byte, contentType string) error

	// ListObjects returns the keys under prefix. An empty prefix lists
	// the whole bucket.
	ListObjects(ctx context.Context, bucket, prefix string) ([]string, error)

	// EmptyBucket deletes every object and object version.
	EmptyBucket(ctx context.Context, bucket string) error

	// DeleteBucket deletes the bucket. The bucket must be empty.
	DeleteBucket(ctx context.Context, bucket string) error
}

// CatalogBackend manages the metadata catalog: the database and the
// schema-discovery crawler.
type CatalogBackend interface {
	// DatabaseExists reports whether the catalog database exists.
	DatabaseExists(ctx context.Context, name string) (bool, error)

	// CreateDatabase creates the catalog database.
	CreateDatabase(ctx context.Context, name, description string) error

	// DeleteDatabase removes the catalog database.
	DeleteDatabase(ctx context.Context, name string) error

	// GetCrawler returns the crawler's observed configuration, or nil
	// when the crawler does not exist.
	GetCrawler(ctx context.Context, name string) (*CrawlerObservation, error)

	// CreateCrawler creates the crawler with the given role and config.
	CreateCrawler(ctx context.Context, name, roleARN string, doc policy.CrawlerConfigDocument) error

	// UpdateCrawler reissues the crawler configuration.
	UpdateCrawler(ctx context.Context, name, roleARN string, doc policy.CrawlerConfigDocument) error

	// DeleteCrawler removes the crawler.
	DeleteCrawler(ctx context.Context, name string) error

	// StartCrawler begins a crawl run.
	StartCrawler(ctx context.Context, name string) error

	// CrawlState returns the crawler's current run state.
	CrawlState(ctx context.Context, name string) (CrawlState, error)
}

// RoleBackend manages the crawler's service role.
type RoleBackend interface {
	// GetRoleARN returns the role ARN, or "" when the role is absent.
	GetRoleARN(ctx context.Context, name string) (string, error)

	// CreateRole creates the role with the given trust policy and
	// returns its ARN. Returns the existing ARN when the role already
	// exists.
	CreateRole(ctx context.Context, name, trustPolicy string, tags map[string]string) (string, error)

	// PutRolePolicy attaches an inline policy document to the role.
	PutRolePolicy(ctx context.Context, roleName, policyName, document string) error

	// DeleteRole removes the role and its inline policies.
	DeleteRole(ctx context.Context, name string) error
}

// CrawlState is the run state of a crawler.
type CrawlState string

const (
	CrawlRunning   CrawlState = "Running"
	CrawlSucceeded CrawlState = "Succeeded"
	CrawlFailed    CrawlState = "Failed"
	CrawlNotFound  CrawlState = "NotFound"
)
