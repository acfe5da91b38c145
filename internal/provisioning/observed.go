package provisioning

import "github.com/lakeforge/lakeforge/internal/policy"

// ObservedState is a snapshot of the backend, fetched fresh at the
// start of each reconciliation run and never cached across runs. A
// partially-provisioned lake is a normal state: absent sub-resources
// are recorded as absent, not errors.
type ObservedState struct {
	BucketExists        bool
	VersioningEnabled   bool
	EncryptionAlgorithm string
	PublicAccessBlocked bool

	// Lifecycle is nil when the bucket has no lifecycle configuration.
	Lifecycle *policy.LifecycleDocument

	Tags map[string]string

	// ZoneMarkers maps zone name to marker-object presence.
	ZoneMarkers map[string]bool

	// RoleARN is "" when the crawler role is absent.
	RoleARN string

	DatabaseExists bool

	// Crawler is nil when the crawler is absent.
	Crawler *CrawlerObservation
}

// CrawlerObservation is the crawler's live configuration and run state.
type CrawlerObservation struct {
	DatabaseName    string
	TargetPath      string
	Schedule        string
	RecrawlBehavior policy.RecrawlBehavior
	RoleARN         string
	Running         bool
	LastRunStatus   string
}

// Matches reports whether the observed crawler configuration equals the
// desired document field by field. Run state is ignored; only
// configuration participates in the diff.
func (o *CrawlerObservation) Matches(doc policy.CrawlerConfigDocument, roleARN string) bool {
	if o == nil {
		return false
	}
	return o.DatabaseName == doc.DatabaseName &&
		o.TargetPath == doc.TargetPath &&
		o.Schedule == doc.Schedule &&
		o.RecrawlBehavior == doc.RecrawlBehavior &&
		(roleARN == "" || o.RoleARN == roleARN)
}
