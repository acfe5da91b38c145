// Package orchestration coordinates the reconciliation workflow: it
// resolves the lake identity, snapshots the backend, diffs it against
// the compiled desired state, and executes the resulting plan in
// dependency order.
package orchestration

import (
	"context"
	"fmt"

	"github.com/lakeforge/lakeforge/internal/config"
	"github.com/lakeforge/lakeforge/internal/provisioning"
	"github.com/lakeforge/lakeforge/internal/provisioning/seed"
	"github.com/lakeforge/lakeforge/internal/provisioning/state"
	"github.com/lakeforge/lakeforge/internal/util/naming"
)

// Result is the outcome of one successful reconciliation run.
type Result struct {
	Identity  naming.Identity `yaml:"identity"`
	BucketARN string          `yaml:"bucket_arn"`
	RoleARN   string          `yaml:"role_arn,omitempty"`
	Zones     []string        `yaml:"zones"`

	Created   int `yaml:"created"`
	Updated   int `yaml:"updated"`
	Unchanged int `yaml:"unchanged"`

	// Actions lists what happened to every resource, in plan order.
	Actions []ActionOutcome `yaml:"actions"`

	Report *provisioning.ExecutionReport `yaml:"-"`
}

// ActionOutcome is the per-resource outcome of a run.
type ActionOutcome struct {
	Resource string `yaml:"resource"`
	Outcome  string `yaml:"outcome"`
}

func outcomes(plan provisioning.Plan) []ActionOutcome {
	out := make([]ActionOutcome, 0, len(plan.Actions))
	for _, a := range plan.Actions {
		outcome := "unchanged"
		switch a.Op {
		case provisioning.OpCreate:
			outcome = "created"
		case provisioning.OpUpdate:
			outcome = "updated"
		}
		out = append(out, ActionOutcome{Resource: a.Target(), Outcome: outcome})
	}
	return out
}

// Reconciler drives a data lake towards its desired state. Reads are
// issued concurrently; mutations run strictly sequentially in plan
// order.
type Reconciler struct {
	storage  provisioning.StorageBackend
	catalog  provisioning.CatalogBackend
	roles    provisioning.RoleBackend
	observer provisioning.Observer
	resolver *naming.Resolver
	reader   *state.Reader
	seeder   *seed.Seeder
}

// NewReconciler creates a reconciler over the given backends. A nil
// observer disables progress reporting.
func NewReconciler(
	storage provisioning.StorageBackend,
	catalog provisioning.CatalogBackend,
	roles provisioning.RoleBackend,
	observer provisioning.Observer,
	resolver *naming.Resolver,
) *Reconciler {
	if observer == nil {
		observer = provisioning.NopObserver{}
	}
	return &Reconciler{
		storage:  storage,
		catalog:  catalog,
		roles:    roles,
		observer: observer,
		resolver: resolver,
		reader:   state.NewReader(storage, catalog, roles),
		seeder:   seed.NewSeeder(storage),
	}
}

// Reconcile runs one full pass: resolve identity, snapshot the backend,
// plan, and execute. The identity passed in is reused when valid and
// minted otherwise; the caller persists the returned identity so later
// runs converge on the same resources.
func (r *Reconciler) Reconcile(ctx context.Context, spec *config.Spec, existing *naming.Identity) (*Result, error) {
	identity, err := r.resolver.Resolve(spec.Project, spec.Environment, existing)
	if err != nil {
		return nil, err
	}

	desired, err := BuildDesired(spec, identity)
	if err != nil {
		return nil, err
	}

	observed, err := r.reader.Read(ctx, identity, spec.Zones)
	if err != nil {
		return nil, err
	}

	plan := ComputePlan(desired, observed)
	r.observer.PlanComputed(plan)

	report, roleARN, err := r.Execute(ctx, desired, observed, plan)
	if err != nil {
		return nil, err
	}

	created, updated, unchanged := plan.Counts()
	return &Result{
		Identity:  identity,
		BucketARN: BucketARN(identity.BucketName),
		RoleARN:   roleARN,
		Zones:     desired.Zones,
		Created:   created,
		Updated:   updated,
		Unchanged: unchanged,
		Actions:   outcomes(plan),
		Report:    report,
	}, nil
}

// Execute applies the plan's mutations one at a time, in order. The
// first failure stops execution: the report then carries the completed
// prefix, the failure, and the untouched remainder, wrapped in a
// PartialExecutionError. Context cancellation between actions stops the
// run the same way.
func (r *Reconciler) Execute(ctx context.Context, desired *DesiredState, observed *provisioning.ObservedState, plan provisioning.Plan) (*provisioning.ExecutionReport, string, error) {
	report := provisioning.NewExecutionReport()
	roleARN := observed.RoleARN

	mutations := plan.Mutations()
	for i, action := range mutations {
		if err := ctx.Err(); err != nil {
			report.Record(action, provisioning.StatusFailed, err)
			for _, remaining := range mutations[i+1:] {
				report.Record(remaining, provisioning.StatusNotAttempted, nil)
			}
			return report, roleARN, &provisioning.PartialExecutionError{Report: report, Err: err}
		}

		r.observer.ActionStarted(action)
		arn, err := r.apply(ctx, desired, observed, action, roleARN)
		if err != nil {
			r.observer.ActionFailed(action, err)
			report.Record(action, provisioning.StatusFailed, err)
			for _, remaining := range mutations[i+1:] {
				report.Record(remaining, provisioning.StatusNotAttempted, nil)
			}
			return report, roleARN, &provisioning.PartialExecutionError{Report: report, Err: err}
		}
		if arn != "" {
			roleARN = arn
		}
		r.observer.ActionCompleted(action)
		report.Record(action, provisioning.StatusCompleted, nil)
	}

	return report, roleARN, nil
}

// apply performs one mutation. It returns the role ARN when the action
// produced one; the crawler action later in the plan depends on it.
func (r *Reconciler) apply(ctx context.Context, desired *DesiredState, observed *provisioning.ObservedState, action provisioning.Action, roleARN string) (string, error) {
	identity := desired.Identity

	switch action.Kind {
	case provisioning.KindBucket:
		return "", r.storage.CreateBucket(ctx, identity.BucketName, desired.Region)

	case provisioning.KindPublicAccessBlock:
		return "", r.storage.BlockPublicAccess(ctx, identity.BucketName)

	case provisioning.KindVersioning:
		return "", r.storage.EnableVersioning(ctx, identity.BucketName)

	case provisioning.KindEncryption:
		return "", r.storage.EnableEncryption(ctx, identity.BucketName)

	case provisioning.KindLifecycle:
		return "", r.storage.PutLifecycle(ctx, identity.BucketName, desired.Lifecycle)

	case provisioning.KindTags:
		// Tags set by other tooling survive; ours win on collision.
		merged := make(map[string]string, len(observed.Tags)+len(desired.Tags))
		for k, v := range observed.Tags {
			merged[k] = v
		}
		for k, v := range desired.Tags {
			merged[k] = v
		}
		return "", r.storage.PutTags(ctx, identity.BucketName, merged)

	case provisioning.KindZoneMarker:
		_, err := r.seeder.SeedZone(ctx, identity.BucketName, action.Zone)
		return "", err

	case provisioning.KindRole:
		arn, err := r.roles.CreateRole(ctx, identity.RoleName, desired.TrustPolicy, desired.Tags)
		if err != nil {
			return "", err
		}
		if err := r.roles.PutRolePolicy(ctx, identity.RoleName, AccessPolicyName, desired.AccessPolicy); err != nil {
			return "", err
		}
		return arn, nil

	case provisioning.KindDatabase:
		return "", r.catalog.CreateDatabase(ctx, identity.DatabaseName, desired.DatabaseDescription)

	case provisioning.KindCrawler:
		if roleARN == "" {
			return "", fmt.Errorf("crawler requires a role ARN")
		}
		if action.Op == provisioning.OpUpdate {
			return "", r.catalog.UpdateCrawler(ctx, identity.CrawlerName, roleARN, *desired.Crawler)
		}
		return "", r.catalog.CreateCrawler(ctx, identity.CrawlerName, roleARN, *desired.Crawler)
	}

	return "", fmt.Errorf("unknown resource kind %q", action.Kind)
}
