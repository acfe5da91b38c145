package handlers

import (
	"context"
	"fmt"

	"github.com/lakeforge/lakeforge/internal/orchestration"
	"github.com/lakeforge/lakeforge/internal/provisioning/state"
	"github.com/lakeforge/lakeforge/internal/util/naming"
)

// Plan previews an apply without mutating anything. The live state is
// read, diffed against the configuration, and the resulting action
// list printed. When no identity is persisted yet the preview uses
// placeholder names; apply mints the real ones.
func Plan(ctx context.Context, configPath string) error {
	spec, err := loadSpec(configPath)
	if err != nil {
		return err
	}

	existing, err := loadIdentity(spec)
	if err != nil {
		return err
	}

	backends, err := newBackends(ctx, spec.Region)
	if err != nil {
		return err
	}

	identity, err := naming.NewResolver(newRandSource()).Resolve(spec.Project, spec.Environment, existing)
	if err != nil {
		return err
	}

	observed, err := state.NewReader(backends.Storage, backends.Catalog, backends.Roles).Read(ctx, identity, spec.Zones)
	if err != nil {
		return err
	}

	desired, err := orchestration.BuildDesired(spec, identity)
	if err != nil {
		return err
	}

	plan := orchestration.ComputePlan(desired, observed)
	for _, action := range plan.Actions {
		fmt.Fprintf(output, "%-8s %-24s %s\n", action.Op, action.Target(), action.Reason)
	}

	create, update, noop := plan.Counts()
	fmt.Fprintf(output, "\nplan: %d to create, %d to update, %d unchanged\n", create, update, noop)
	return nil
}
