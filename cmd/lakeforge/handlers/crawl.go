package handlers

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/lakeforge/lakeforge/internal/provisioning"
	"github.com/lakeforge/lakeforge/internal/provisioning/crawl"
)

// crawlPollInterval is how often --wait checks the run state.
var crawlPollInterval = 15 * time.Second

// Crawl triggers a schema-discovery run of the lake's crawler. A run
// already in progress is joined, not duplicated. With wait set the
// handler blocks until the run finishes and fails when the run did.
func Crawl(ctx context.Context, configPath string, wait bool) error {
	spec, err := loadSpec(configPath)
	if err != nil {
		return err
	}
	if spec.DisableCrawler {
		return fmt.Errorf("the crawler is disabled for %s/%s", spec.Project, spec.Environment)
	}

	identity, err := loadIdentity(spec)
	if err != nil {
		return err
	}
	if identity == nil {
		return fmt.Errorf("no identity file found for %s/%s; run apply first", spec.Project, spec.Environment)
	}

	backends, err := newBackends(ctx, spec.Region)
	if err != nil {
		return err
	}

	trigger := crawl.NewTrigger(backends.Catalog)
	handle, err := trigger.Start(ctx, identity.CrawlerName)
	if err != nil {
		return err
	}

	if handle.Reused {
		log.Info().Str("crawler", handle.Crawler).Msg("crawler run already in progress")
	} else {
		log.Info().Str("crawler", handle.Crawler).Msg("crawler run started")
	}

	if !wait {
		fmt.Fprintf(output, "crawler %s running\n", handle.Crawler)
		return nil
	}

	state, err := trigger.Wait(ctx, handle, crawlPollInterval)
	if err != nil {
		return err
	}
	fmt.Fprintf(output, "crawler %s finished: %s\n", handle.Crawler, state)
	if state == provisioning.CrawlFailed {
		return fmt.Errorf("crawler run failed")
	}
	return nil
}
