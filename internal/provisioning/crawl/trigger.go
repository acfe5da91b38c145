// Package crawl starts catalog crawler runs and tracks them to
// completion.
package crawl

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lakeforge/lakeforge/internal/provisioning"
)

// Handle identifies one tracked crawler run.
type Handle struct {
	ID        string
	Crawler   string
	StartedAt time.Time

	// Reused is true when Start found a run already in progress and
	// attached to it instead of triggering a new one.
	Reused bool
}

// Trigger starts crawler runs at most once while a run is in progress.
// Concurrent Start calls for the same crawler share a single handle.
type Trigger struct {
	catalog provisioning.CatalogBackend

	mu     sync.Mutex
	active map[string]*Handle
}

// NewTrigger creates a trigger over the given catalog backend.
func NewTrigger(catalog provisioning.CatalogBackend) *Trigger {
	return &Trigger{
		catalog: catalog,
		active:  map[string]*Handle{},
	}
}

// Start begins a crawler run, or attaches to the one already running.
// The crawler must exist; starting an absent crawler is an error.
func (t *Trigger) Start(ctx context.Context, crawler string) (*Handle, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if handle, ok := t.active[crawler]; ok {
		reused := *handle
		reused.Reused = true
		return &reused, nil
	}

	state, err := t.catalog.CrawlState(ctx, crawler)
	if err != nil {
		return nil, fmt.Errorf("checking crawler %s: %w", crawler, err)
	}
	if state == provisioning.CrawlRunning {
		handle := &Handle{
			ID:        uuid.NewString(),
			Crawler:   crawler,
			StartedAt: time.Now(),
			Reused:    true,
		}
		t.active[crawler] = handle
		return handle, nil
	}

	if err := t.catalog.StartCrawler(ctx, crawler); err != nil {
		return nil, fmt.Errorf("starting crawler %s: %w", crawler, err)
	}

	handle := &Handle{
		ID:        uuid.NewString(),
		Crawler:   crawler,
		StartedAt: time.Now(),
	}
	t.active[crawler] = handle
	return handle, nil
}

// Status reports the current state of a tracked run. Once the run is
// no longer in progress the handle is released and a later Start
// triggers a fresh run.
func (t *Trigger) Status(ctx context.Context, handle *Handle) (provisioning.CrawlState, error) {
	state, err := t.catalog.CrawlState(ctx, handle.Crawler)
	if err != nil {
		return "", fmt.Errorf("checking crawler %s: %w", handle.Crawler, err)
	}

	if state != provisioning.CrawlRunning {
		t.mu.Lock()
		if active, ok := t.active[handle.Crawler]; ok && active.ID == handle.ID {
			delete(t.active, handle.Crawler)
		}
		t.mu.Unlock()
	}
	return state, nil
}

// Wait polls the run until it leaves the running state or the context
// is cancelled.
func (t *Trigger) Wait(ctx context.Context, handle *Handle, interval time.Duration) (provisioning.CrawlState, error) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		state, err := t.Status(ctx, handle)
		if err != nil {
			return "", err
		}
		if state != provisioning.CrawlRunning {
			return state, nil
		}

		select {
		case <-ctx.Done():
			return provisioning.CrawlRunning, ctx.Err()
		case <-ticker.C:
		}
	}
}
