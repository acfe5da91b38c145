// Package seed writes zone marker objects into a data lake bucket.
package seed

import (
	"context"
	"fmt"

	"github.com/lakeforge/lakeforge/internal/provisioning"
)

// Report lists which zones received a new marker and which already had
// one.
type Report struct {
	Seeded   []string
	Existing []string
}

// Seeder materializes the zone layout of a bucket. Markers are written
// at most once per zone; an existing marker object is never overwritten
// regardless of its content.
type Seeder struct {
	storage provisioning.StorageBackend
}

// NewSeeder creates a seeder over the given object store.
func NewSeeder(storage provisioning.StorageBackend) *Seeder {
	return &Seeder{storage: storage}
}

// SeedZone ensures the marker object for one zone. Returns true when a
// marker was written, false when one was already present.
func (s *Seeder) SeedZone(ctx context.Context, bucket, zone string) (bool, error) {
	key := provisioning.MarkerKey(zone)

	exists, err := s.storage.ObjectExists(ctx, bucket, key)
	if err != nil {
		return false, fmt.Errorf("checking marker for zone %s: %w", zone, err)
	}
	if exists {
		return false, nil
	}

	err = s.storage.PutObject(ctx, bucket, key, []byte(provisioning.MarkerContent), provisioning.MarkerContentType)
	if err != nil {
		return false, fmt.Errorf("writing marker for zone %s: %w", zone, err)
	}
	return true, nil
}

// Seed ensures markers for all zones in order. On failure the markers
// already written stay in place and the report reflects them.
func (s *Seeder) Seed(ctx context.Context, bucket string, zones []string) (Report, error) {
	var report Report
	for _, zone := range zones {
		seeded, err := s.SeedZone(ctx, bucket, zone)
		if err != nil {
			return report, err
		}
		if seeded {
			report.Seeded = append(report.Seeded, zone)
		} else {
			report.Existing = append(report.Existing, zone)
		}
	}
	return report, nil
}
