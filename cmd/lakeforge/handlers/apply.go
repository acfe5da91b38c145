package handlers

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/lakeforge/lakeforge/internal/util/naming"
)

// Apply provisions or updates a data lake.
//
// The workflow:
//  1. Loads and validates the lake configuration
//  2. Resolves the lake identity, reusing the persisted one when present
//  3. Persists the identity before any mutation so a failed run can be
//     retried against the same resources
//  4. Reconciles bucket, zones, lifecycle, role, database, and crawler
//  5. Prints the result, including what was created and what matched
func Apply(ctx context.Context, configPath string) error {
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

	resolver := naming.NewResolver(newRandSource())
	identity, err := resolver.Resolve(spec.Project, spec.Environment, existing)
	if err != nil {
		return err
	}
	if existing == nil {
		if err := saveIdentity(spec, identity); err != nil {
			return err
		}
		log.Info().Str("bucket", identity.BucketName).Msg("minted new lake identity")
	}

	result, err := newReconciler(backends, resolver).Reconcile(ctx, spec, &identity)
	if err != nil {
		return fmt.Errorf("apply failed: %w", err)
	}

	log.Info().
		Int("created", result.Created).
		Int("updated", result.Updated).
		Int("unchanged", result.Unchanged).
		Msg("lake reconciled")

	encoded, err := yaml.Marshal(result)
	if err != nil {
		return fmt.Errorf("encoding result: %w", err)
	}
	fmt.Fprintf(output, "%s", encoded)
	return nil
}
