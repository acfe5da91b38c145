package provisioning

import "fmt"

// ResourceKind identifies the target of a planned action.
type ResourceKind string

const (
	KindBucket            ResourceKind = "bucket"
	KindVersioning        ResourceKind = "versioning"
	KindEncryption        ResourceKind = "encryption"
	KindPublicAccessBlock ResourceKind = "public-access-block"
	KindLifecycle         ResourceKind = "lifecycle"
	KindTags              ResourceKind = "tags"
	KindZoneMarker        ResourceKind = "zone-marker"
	KindRole              ResourceKind = "role"
	KindDatabase          ResourceKind = "database"
	KindCrawler           ResourceKind = "crawler"
)

// Op is the operation a planned action performs.
type Op string

const (
	OpCreate Op = "create"
	OpUpdate Op = "update"
	OpNoOp   Op = "noop"
)

// Action is one planned step against a single resource.
type Action struct {
	Kind ResourceKind
	// Zone is set only for zone-marker actions.
	Zone   string
	Op     Op
	Reason string
}

// Target returns the resource identifier for logs and reports.
func (a Action) Target() string {
	if a.Kind == KindZoneMarker {
		return fmt.Sprintf("%s/%s", a.Kind, a.Zone)
	}
	return string(a.Kind)
}

// Plan is the ordered list of actions for one reconciliation run. The
// order respects resource dependencies and the execute phase follows it
// strictly. A plan is built once per run, executed once, and discarded.
type Plan struct {
	Actions []Action
}

// Mutations returns the create and update actions, preserving order.
func (p Plan) Mutations() []Action {
	var out []Action
	for _, a := range p.Actions {
		if a.Op != OpNoOp {
			out = append(out, a)
		}
	}
	return out
}

// Counts tallies the plan by operation.
func (p Plan) Counts() (create, update, noop int) {
	for _, a := range p.Actions {
		switch a.Op {
		case OpCreate:
			create++
		case OpUpdate:
			update++
		case OpNoOp:
			noop++
		}
	}
	return create, update, noop
}
