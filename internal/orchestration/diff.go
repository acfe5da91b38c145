package orchestration

import (
	"github.com/lakeforge/lakeforge/internal/policy"
	"github.com/lakeforge/lakeforge/internal/provisioning"
)

// encryptionAlgorithm is the only algorithm the engine provisions.
const encryptionAlgorithm = "AES256"

// ComputePlan diffs the observed state against the desired state and
// returns the ordered action list. The diff is pure: it performs no
// backend calls and the same inputs always produce the same plan.
//
// Ordering follows resource dependencies: the bucket first, then its
// configuration, then the zone markers, then the catalog chain of
// role, database, and crawler.
func ComputePlan(desired *DesiredState, observed *provisioning.ObservedState) provisioning.Plan {
	var plan provisioning.Plan
	add := func(kind provisioning.ResourceKind, zone string, op provisioning.Op, reason string) {
		plan.Actions = append(plan.Actions, provisioning.Action{Kind: kind, Zone: zone, Op: op, Reason: reason})
	}

	// A bucket created this run starts blank, so every piece of bucket
	// configuration is a Create alongside it. On an existing bucket a
	// missing or drifted piece is an Update: the resource was there and
	// its configuration is being brought back in line.
	creating := !observed.BucketExists
	configOp := func(inSync bool, reason string) (provisioning.Op, string) {
		switch {
		case creating:
			return provisioning.OpCreate, "bucket is being created"
		case inSync:
			return provisioning.OpNoOp, "already matches desired state"
		default:
			return provisioning.OpUpdate, reason
		}
	}

	if creating {
		add(provisioning.KindBucket, "", provisioning.OpCreate, "bucket does not exist")
	} else {
		add(provisioning.KindBucket, "", provisioning.OpNoOp, "bucket exists")
	}

	op, reason := configOp(observed.PublicAccessBlocked, "public access is not blocked")
	add(provisioning.KindPublicAccessBlock, "", op, reason)

	op, reason = configOp(observed.VersioningEnabled, "versioning is not enabled")
	add(provisioning.KindVersioning, "", op, reason)

	op, reason = configOp(observed.EncryptionAlgorithm == encryptionAlgorithm, "encryption is not configured")
	add(provisioning.KindEncryption, "", op, reason)

	op, reason = configOp(lifecycleEqual(observed.Lifecycle, desired.Lifecycle), "lifecycle configuration drifted")
	add(provisioning.KindLifecycle, "", op, reason)

	op, reason = configOp(tagsApplied(observed.Tags, desired.Tags), "tags drifted")
	add(provisioning.KindTags, "", op, reason)

	for _, zone := range desired.Zones {
		if creating || !observed.ZoneMarkers[zone] {
			add(provisioning.KindZoneMarker, zone, provisioning.OpCreate, "zone marker absent")
		} else {
			add(provisioning.KindZoneMarker, zone, provisioning.OpNoOp, "zone marker present")
		}
	}

	if !desired.CatalogEnabled() {
		return plan
	}

	if observed.RoleARN == "" {
		add(provisioning.KindRole, "", provisioning.OpCreate, "role does not exist")
	} else {
		add(provisioning.KindRole, "", provisioning.OpNoOp, "role exists")
	}

	if !observed.DatabaseExists {
		add(provisioning.KindDatabase, "", provisioning.OpCreate, "database does not exist")
	} else {
		add(provisioning.KindDatabase, "", provisioning.OpNoOp, "database exists")
	}

	switch {
	case observed.Crawler == nil:
		add(provisioning.KindCrawler, "", provisioning.OpCreate, "crawler does not exist")
	case !observed.Crawler.Matches(*desired.Crawler, observed.RoleARN):
		add(provisioning.KindCrawler, "", provisioning.OpUpdate, "crawler configuration drifted")
	default:
		add(provisioning.KindCrawler, "", provisioning.OpNoOp, "already matches desired state")
	}

	return plan
}

// lifecycleEqual compares lifecycle documents by rule ID, ignoring rule
// order. Extra rules added manually count as drift: the document is
// owned by the engine.
func lifecycleEqual(observed *policy.LifecycleDocument, desired policy.LifecycleDocument) bool {
	if observed == nil {
		return false
	}
	if len(observed.Rules) != len(desired.Rules) {
		return false
	}
	byID := make(map[string]policy.LifecycleRule, len(observed.Rules))
	for _, rule := range observed.Rules {
		byID[rule.ID] = rule
	}
	for _, want := range desired.Rules {
		got, ok := byID[want.ID]
		if !ok || got != want {
			return false
		}
	}
	return true
}

// tagsApplied reports whether every desired tag is present with the
// desired value. Extra tags added by other tooling are tolerated.
func tagsApplied(observed, desired map[string]string) bool {
	for key, want := range desired {
		if observed[key] != want {
			return false
		}
	}
	return true
}
