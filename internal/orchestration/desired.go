package orchestration

import (
	"fmt"

	"github.com/lakeforge/lakeforge/internal/config"
	"github.com/lakeforge/lakeforge/internal/policy"
	"github.com/lakeforge/lakeforge/internal/util/labels"
	"github.com/lakeforge/lakeforge/internal/util/naming"
)

// AccessPolicyName is the inline policy attached to the crawler role.
const AccessPolicyName = "s3-data-lake-access"

// DesiredState is the fully-compiled target of one reconciliation run:
// identity plus every policy document, derived once from the spec and
// never recomputed mid-run.
type DesiredState struct {
	Identity naming.Identity
	Region   string
	Zones    []string

	Lifecycle policy.LifecycleDocument
	Tags      map[string]string

	// Crawler is nil when catalog provisioning is disabled; the role
	// and database are then not desired either.
	Crawler             *policy.CrawlerConfigDocument
	TrustPolicy         string
	AccessPolicy        string
	DatabaseDescription string
}

// CatalogEnabled reports whether the role, database, and crawler are
// part of the desired state.
func (d *DesiredState) CatalogEnabled() bool {
	return d.Crawler != nil
}

// BuildDesired compiles the spec into the desired state for the given
// identity.
func BuildDesired(spec *config.Spec, identity naming.Identity) (*DesiredState, error) {
	desired := &DesiredState{
		Identity:  identity,
		Region:    spec.Region,
		Zones:     spec.Zones,
		Lifecycle: policy.BuildLifecycle(spec.Lifecycle()),
		Tags:      labels.NewTagBuilder(spec.Project, spec.Environment).Merge(spec.Tags).Build(),
	}

	crawler := spec.Crawler()
	if crawler == nil {
		return desired, nil
	}

	doc := policy.BuildCrawlerConfig(identity.BucketName, identity.DatabaseName, *crawler)
	access, err := policy.BuildAccessPolicy(BucketARN(identity.BucketName)).JSON()
	if err != nil {
		return nil, fmt.Errorf("rendering access policy: %w", err)
	}

	desired.Crawler = &doc
	desired.TrustPolicy = policy.BuildTrustPolicy()
	desired.AccessPolicy = access
	desired.DatabaseDescription = fmt.Sprintf("Data lake catalog for %s (%s)", spec.Project, spec.Environment)
	return desired, nil
}

// BucketARN returns the ARN form of a bucket name.
func BucketARN(bucket string) string {
	return "arn:aws:s3:::" + bucket
}
