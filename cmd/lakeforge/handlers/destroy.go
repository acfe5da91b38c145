package handlers

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/lakeforge/lakeforge/internal/provisioning/destroy"
	"github.com/lakeforge/lakeforge/internal/util/naming"
)

// Destroyer interface for testing - matches destroy.Destroyer.
type Destroyer interface {
	Destroy(ctx context.Context, identity naming.Identity, force bool) (destroy.Report, error)
}

// newDestroyer creates a new lake destroyer - can be replaced in tests.
var newDestroyer = func(b Backends) Destroyer {
	return destroy.NewDestroyer(b.Storage, b.Catalog, b.Roles)
}

// Destroy tears down a data lake. The persisted identity names the
// resources to remove; without it there is nothing to destroy. On
// success the identity file is removed so the next apply mints a fresh
// lake.
func Destroy(ctx context.Context, configPath string, force bool) error {
	spec, err := loadSpec(configPath)
	if err != nil {
		return err
	}

	identity, err := loadIdentity(spec)
	if err != nil {
		return err
	}
	if identity == nil {
		return fmt.Errorf("no identity file found for %s/%s; nothing to destroy", spec.Project, spec.Environment)
	}

	backends, err := newBackends(ctx, spec.Region)
	if err != nil {
		return err
	}

	log.Info().Str("bucket", identity.BucketName).Msg("destroying lake")

	report, err := newDestroyer(backends).Destroy(ctx, *identity, force || spec.ForceDestroy)
	if err != nil {
		return fmt.Errorf("destroy failed: %w", err)
	}

	if report.BucketEmptied {
		log.Warn().Str("bucket", identity.BucketName).Msg("bucket was emptied before deletion")
	}

	if err := removeFile(identityFile(spec)); err != nil {
		return fmt.Errorf("removing identity file: %w", err)
	}

	fmt.Fprintf(output, "lake %s destroyed\n", identity.BucketName)
	return nil
}
