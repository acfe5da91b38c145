// Package policy compiles a data lake spec into the concrete policy
// documents the backend consumes: lifecycle rules, a least-privilege
// access policy, and the crawler configuration. Everything here is a
// pure transformation with no I/O.
package policy

import (
	"encoding/json"
	"fmt"
)

// Lifecycle rule identifiers. Stable so re-applied configurations diff
// cleanly against what the backend already holds.
const (
	RuleExpireTempFiles          = "expire-temp-files"
	RuleExpireNoncurrentVersions = "expire-noncurrent-versions"
	RuleAbortIncompleteMultipart = "abort-incomplete-multipart"
)

// RecrawlBehavior controls how the crawler revisits already-seen data.
type RecrawlBehavior string

const (
	RecrawlEverything     RecrawlBehavior = "crawl-everything"
	RecrawlNewObjectsOnly RecrawlBehavior = "new-objects-only"
	RecrawlEventDriven    RecrawlBehavior = "event-driven"
)

// Valid reports whether b is one of the supported behaviors.
func (b RecrawlBehavior) Valid() bool {
	switch b {
	case RecrawlEverything, RecrawlNewObjectsOnly, RecrawlEventDriven:
		return true
	}
	return false
}

// LifecyclePolicy is the retention part of the desired state.
type LifecyclePolicy struct {
	TemporaryPrefix            string
	TemporaryRetentionDays     int
	EnableNoncurrentExpiration bool
	NoncurrentRetentionDays    int
	MultipartAbortDays         int
}

// CrawlerPolicy is the schema-discovery part of the desired state.
type CrawlerPolicy struct {
	TargetPrefix    string
	Schedule        string
	RecrawlBehavior RecrawlBehavior
}

// LifecycleRule is one rule of a bucket lifecycle document. Exactly one
// of the retention fields is set per rule.
type LifecycleRule struct {
	ID                       string
	Prefix                   string
	ExpirationDays           int32
	NoncurrentExpirationDays int32
	MultipartAbortDays       int32
}

// LifecycleDocument is the full desired lifecycle configuration.
type LifecycleDocument struct {
	Rules []LifecycleRule
}

// BuildLifecycle compiles the retention policy into lifecycle rules.
// The temporary-prefix rule and the multipart abort rule are
// unconditional; the noncurrent-version rule is included only when
// enabled, so disabling it means versioning history never auto-expires.
func BuildLifecycle(p LifecyclePolicy) LifecycleDocument {
	doc := LifecycleDocument{
		Rules: []LifecycleRule{
			{
				ID:             RuleExpireTempFiles,
				Prefix:         p.TemporaryPrefix + "/",
				ExpirationDays: int32(p.TemporaryRetentionDays),
			},
		},
	}
	if p.EnableNoncurrentExpiration {
		doc.Rules = append(doc.Rules, LifecycleRule{
			ID:                       RuleExpireNoncurrentVersions,
			NoncurrentExpirationDays: int32(p.NoncurrentRetentionDays),
		})
	}
	doc.Rules = append(doc.Rules, LifecycleRule{
		ID:                 RuleAbortIncompleteMultipart,
		MultipartAbortDays: int32(p.MultipartAbortDays),
	})
	return doc
}

// AccessPolicyDocument is an IAM policy document in wire format.
type AccessPolicyDocument struct {
	Version   string      `json:"Version"`
	Statement []Statement `json:"Statement"`
}

// Statement is a single IAM policy statement.
type Statement struct {
	Sid      string   `json:"Sid"`
	Effect   string   `json:"Effect"`
	Action   []string `json:"Action"`
	Resource []string `json:"Resource"`
}

// JSON renders the document for the backend.
func (d AccessPolicyDocument) JSON() (string, error) {
	raw, err := json.Marshal(d)
	if err != nil {
		return "", fmt.Errorf("marshal access policy: %w", err)
	}
	return string(raw), nil
}

// BuildAccessPolicy grants the crawler role exactly the object-store
// permissions it needs: list on the bucket, and object-level read,
// write, delete, version access, and multipart handling. No wildcard
// administrative actions.
func BuildAccessPolicy(bucketARN string) AccessPolicyDocument {
	return AccessPolicyDocument{
		Version: "2012-10-17",
		Statement: []Statement{
			{
				Sid:      "ListLakeBucket",
				Effect:   "Allow",
				Action:   []string{"s3:ListBucket", "s3:ListBucketMultipartUploads"},
				Resource: []string{bucketARN},
			},
			{
				Sid:    "ReadWriteLakeObjects",
				Effect: "Allow",
				Action: []string{
					"s3:GetObject",
					"s3:PutObject",
					"s3:DeleteObject",
					"s3:GetObjectVersion",
					"s3:DeleteObjectVersion",
					"s3:ListMultipartUploadParts",
					"s3:AbortMultipartUpload",
				},
				Resource: []string{bucketARN + "/*"},
			},
		},
	}
}

// BuildTrustPolicy returns the assume-role document allowing the catalog
// crawler service to use the role.
func BuildTrustPolicy() string {
	return `{"Version":"2012-10-17","Statement":[{"Effect":"Allow","Principal":{"Service":"glue.amazonaws.com"},"Action":"sts:AssumeRole"}]}`
}

// CrawlerConfigDocument is the desired crawler configuration.
type CrawlerConfigDocument struct {
	DatabaseName    string
	TargetPath      string
	Schedule        string
	RecrawlBehavior RecrawlBehavior
	Configuration   string
}

// crawlerConfiguration fixes schema grouping and partition inheritance.
// These are engine defaults, not configurable, so catalog behavior stays
// predictable across lakes.
const crawlerConfiguration = `{"Version":1.0,"Grouping":{"TableGroupingPolicy":"CombineCompatibleSchemas"},"CrawlerOutput":{"Partitions":{"AddOrUpdateBehavior":"InheritFromTable"}}}`

// BuildCrawlerConfig compiles the crawler policy against a resolved
// bucket and database. The schedule is included only when a non-empty
// expression is present; otherwise the crawler is on-demand only.
func BuildCrawlerConfig(bucketName, databaseName string, p CrawlerPolicy) CrawlerConfigDocument {
	return CrawlerConfigDocument{
		DatabaseName:    databaseName,
		TargetPath:      fmt.Sprintf("s3://%s/%s/", bucketName, p.TargetPrefix),
		Schedule:        p.Schedule,
		RecrawlBehavior: p.RecrawlBehavior,
		Configuration:   crawlerConfiguration,
	}
}
