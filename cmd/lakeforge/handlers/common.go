// Package handlers implements the business logic for CLI commands.
//
// This package contains handler functions that are called by command
// definitions in the commands package. Handlers are framework-agnostic
// and can be tested independently of the CLI framework.
package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math/rand"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/lakeforge/lakeforge/internal/config"
	"github.com/lakeforge/lakeforge/internal/orchestration"
	"github.com/lakeforge/lakeforge/internal/platform/glue"
	"github.com/lakeforge/lakeforge/internal/platform/iam"
	"github.com/lakeforge/lakeforge/internal/platform/s3"
	"github.com/lakeforge/lakeforge/internal/provisioning"
	"github.com/lakeforge/lakeforge/internal/util/naming"
)

// DefaultConfigFile is the configuration file apply looks for when no
// path is given.
const DefaultConfigFile = "lakeforge.yaml"

// Backends bundles the three cloud clients a lake spans.
type Backends struct {
	Storage provisioning.StorageBackend
	Catalog provisioning.CatalogBackend
	Roles   provisioning.RoleBackend
}

// Reconciler interface for testing - matches orchestration.Reconciler.
type Reconciler interface {
	Reconcile(ctx context.Context, spec *config.Spec, existing *naming.Identity) (*orchestration.Result, error)
}

// Factory function variables - can be replaced in tests for dependency
// injection.
var (
	// loadSpecFile loads the lake configuration.
	loadSpecFile = config.LoadFile

	// newBackends creates the cloud clients. LAKEFORGE_S3_ENDPOINT,
	// LAKEFORGE_S3_ACCESS_KEY, and LAKEFORGE_S3_SECRET_KEY override the
	// object-store endpoint for S3-compatible stores.
	newBackends = func(ctx context.Context, region string) (Backends, error) {
		storage, err := s3.NewClient(ctx, s3.Options{
			Region:    region,
			Endpoint:  os.Getenv("LAKEFORGE_S3_ENDPOINT"),
			AccessKey: os.Getenv("LAKEFORGE_S3_ACCESS_KEY"),
			SecretKey: os.Getenv("LAKEFORGE_S3_SECRET_KEY"),
		})
		if err != nil {
			return Backends{}, fmt.Errorf("creating object store client: %w", err)
		}
		catalog, err := glue.NewClient(ctx, region)
		if err != nil {
			return Backends{}, fmt.Errorf("creating catalog client: %w", err)
		}
		roles, err := iam.NewClient(ctx, region)
		if err != nil {
			return Backends{}, fmt.Errorf("creating role client: %w", err)
		}
		return Backends{Storage: storage, Catalog: catalog, Roles: roles}, nil
	}

	// newReconciler creates a new lake reconciler.
	newReconciler = func(b Backends, resolver *naming.Resolver) Reconciler {
		observer := provisioning.NewLogObserver(log.Logger)
		return orchestration.NewReconciler(b.Storage, b.Catalog, b.Roles, observer, resolver)
	}

	// newRandSource seeds the name resolver.
	newRandSource = func() rand.Source {
		return rand.NewSource(time.Now().UnixNano())
	}

	// readFile / writeFile / removeFile access the identity file.
	readFile   = os.ReadFile
	writeFile  = os.WriteFile
	removeFile = os.Remove

	// output receives command results.
	output io.Writer = os.Stdout
)

func loadSpec(configPath string) (*config.Spec, error) {
	if configPath == "" {
		configPath = DefaultConfigFile
	}
	return loadSpecFile(configPath)
}

// identityFile returns the path the resolved resource names are
// persisted at. It sits next to the configuration so identities are
// committed alongside the spec they belong to.
func identityFile(spec *config.Spec) string {
	return fmt.Sprintf("%s-%s.lake.yaml", spec.Project, spec.Environment)
}

// loadIdentity reads a previously persisted identity. A missing file
// means this lake has never been provisioned; nil is returned.
func loadIdentity(spec *config.Spec) (*naming.Identity, error) {
	data, err := readFile(identityFile(spec))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading identity file: %w", err)
	}

	var identity naming.Identity
	if err := yaml.Unmarshal(data, &identity); err != nil {
		return nil, fmt.Errorf("parsing identity file: %w", err)
	}
	if !identity.Valid() {
		return nil, fmt.Errorf("identity file %s is incomplete", identityFile(spec))
	}
	return &identity, nil
}

func saveIdentity(spec *config.Spec, identity naming.Identity) error {
	data, err := yaml.Marshal(identity)
	if err != nil {
		return fmt.Errorf("encoding identity: %w", err)
	}
	if err := writeFile(identityFile(spec), data, 0o644); err != nil {
		return fmt.Errorf("writing identity file: %w", err)
	}
	return nil
}
