package handlers

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCrawlStartsRun(t *testing.T) {
	spec := validSpec(t)
	env := swapFactories(t, spec)
	ctx := context.Background()

	require.NoError(t, Apply(ctx, ""))
	env.out.Reset()

	require.NoError(t, Crawl(ctx, "", false))

	assert.Equal(t, 1, env.catalog.StartCalls["acme-dev-lake-crawler"])
	assert.Contains(t, env.out.String(), "crawler acme-dev-lake-crawler running")
}

func TestCrawlWaitReportsFailure(t *testing.T) {
	spec := validSpec(t)
	env := swapFactories(t, spec)
	ctx := context.Background()

	require.NoError(t, Apply(ctx, ""))

	origInterval := crawlPollInterval
	crawlPollInterval = 5 * time.Millisecond
	t.Cleanup(func() { crawlPollInterval = origInterval })

	go func() {
		time.Sleep(20 * time.Millisecond)
		env.catalog.FinishCrawl("acme-dev-lake-crawler", "FAILED")
	}()

	err := Crawl(ctx, "", true)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "crawler run failed")
}

func TestCrawlDisabledCrawlerFails(t *testing.T) {
	spec := validSpec(t)
	spec.DisableCrawler = true
	swapFactories(t, spec)

	err := Crawl(context.Background(), "", false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disabled")
}

func TestCrawlWithoutIdentityFails(t *testing.T) {
	spec := validSpec(t)
	swapFactories(t, spec)

	err := Crawl(context.Background(), "", false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "run apply first")
}
