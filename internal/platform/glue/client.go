// Package glue provides the metadata catalog backend client: the
// catalog database and the schema-discovery crawler.
package glue

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/glue"
	"github.com/aws/aws-sdk-go-v2/service/glue/types"

	"github.com/lakeforge/lakeforge/internal/platform/awsutil"
	"github.com/lakeforge/lakeforge/internal/policy"
	"github.com/lakeforge/lakeforge/internal/provisioning"
)

// Client wraps the Glue API as a provisioning.CatalogBackend.
type Client struct {
	glue *glue.Client
}

// NewClient creates a Glue client from the default credential chain.
func NewClient(ctx context.Context, region string) (*Client, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return &Client{glue: glue.NewFromConfig(cfg)}, nil
}

// NewFromAPI wraps an already-constructed Glue client.
func NewFromAPI(api *glue.Client) *Client {
	return &Client{glue: api}
}

// DatabaseExists checks whether the catalog database exists.
func (c *Client) DatabaseExists(ctx context.Context, name string) (bool, error) {
	var exists bool
	err := awsutil.Call(ctx, "get database", func() error {
		_, err := c.glue.GetDatabase(ctx, &glue.GetDatabaseInput{Name: aws.String(name)})
		if err != nil {
			if awsutil.IsNotFound(err) {
				exists = false
				return nil
			}
			return err
		}
		exists = true
		return nil
	})
	return exists, err
}

// CreateDatabase creates the catalog database. Already-exists is a
// no-op.
func (c *Client) CreateDatabase(ctx context.Context, name, description string) error {
	return awsutil.Call(ctx, "create database", func() error {
		_, err := c.glue.CreateDatabase(ctx, &glue.CreateDatabaseInput{
			DatabaseInput: &types.DatabaseInput{
				Name:        aws.String(name),
				Description: aws.String(description),
			},
		})
		if err != nil && awsutil.IsAlreadyExists(err) {
			return nil
		}
		return err
	})
}

// DeleteDatabase removes the catalog database. Absence is a no-op.
func (c *Client) DeleteDatabase(ctx context.Context, name string) error {
	return awsutil.Call(ctx, "delete database", func() error {
		_, err := c.glue.DeleteDatabase(ctx, &glue.DeleteDatabaseInput{Name: aws.String(name)})
		if err != nil && awsutil.IsNotFound(err) {
			return nil
		}
		return err
	})
}

// GetCrawler returns the crawler's observed configuration, or nil when
// it does not exist.
func (c *Client) GetCrawler(ctx context.Context, name string) (*provisioning.CrawlerObservation, error) {
	var obs *provisioning.CrawlerObservation
	err := awsutil.Call(ctx, "get crawler", func() error {
		out, err := c.glue.GetCrawler(ctx, &glue.GetCrawlerInput{Name: aws.String(name)})
		if err != nil {
			if awsutil.IsNotFound(err) {
				return nil
			}
			return err
		}
		obs = observeCrawler(out.Crawler)
		return nil
	})
	return obs, err
}

// CreateCrawler creates the crawler. Already-exists is a no-op.
func (c *Client) CreateCrawler(ctx context.Context, name, roleARN string, doc policy.CrawlerConfigDocument) error {
	input := &glue.CreateCrawlerInput{
		Name:          aws.String(name),
		Role:          aws.String(roleARN),
		DatabaseName:  aws.String(doc.DatabaseName),
		Targets:       crawlerTargets(doc.TargetPath),
		Configuration: aws.String(doc.Configuration),
		RecrawlPolicy: &types.RecrawlPolicy{RecrawlBehavior: recrawlBehavior(doc.RecrawlBehavior)},
	}
	if doc.Schedule != "" {
		input.Schedule = aws.String(doc.Schedule)
	}
	return awsutil.Call(ctx, "create crawler", func() error {
		_, err := c.glue.CreateCrawler(ctx, input)
		if err != nil && awsutil.IsAlreadyExists(err) {
			return nil
		}
		return err
	})
}

// UpdateCrawler reissues the crawler configuration.
func (c *Client) UpdateCrawler(ctx context.Context, name, roleARN string, doc policy.CrawlerConfigDocument) error {
	input := &glue.UpdateCrawlerInput{
		Name:          aws.String(name),
		Role:          aws.String(roleARN),
		DatabaseName:  aws.String(doc.DatabaseName),
		Targets:       crawlerTargets(doc.TargetPath),
		Configuration: aws.String(doc.Configuration),
		RecrawlPolicy: &types.RecrawlPolicy{RecrawlBehavior: recrawlBehavior(doc.RecrawlBehavior)},
		// An empty schedule expression clears any existing schedule.
		Schedule: aws.String(doc.Schedule),
	}
	return awsutil.Call(ctx, "update crawler", func() error {
		_, err := c.glue.UpdateCrawler(ctx, input)
		return err
	})
}

// DeleteCrawler removes the crawler. Absence is a no-op.
func (c *Client) DeleteCrawler(ctx context.Context, name string) error {
	return awsutil.Call(ctx, "delete crawler", func() error {
		_, err := c.glue.DeleteCrawler(ctx, &glue.DeleteCrawlerInput{Name: aws.String(name)})
		if err != nil && awsutil.IsNotFound(err) {
			return nil
		}
		return err
	})
}

// StartCrawler begins a crawl run. An already-running crawler is not
// an error; callers check the run state first and reuse the running
// handle.
func (c *Client) StartCrawler(ctx context.Context, name string) error {
	return awsutil.Call(ctx, "start crawler", func() error {
		_, err := c.glue.StartCrawler(ctx, &glue.StartCrawlerInput{Name: aws.String(name)})
		if err != nil && isCrawlerRunning(err) {
			return nil
		}
		return err
	})
}

// CrawlState returns the crawler's current run state.
func (c *Client) CrawlState(ctx context.Context, name string) (provisioning.CrawlState, error) {
	obs, err := c.GetCrawler(ctx, name)
	if err != nil {
		return "", err
	}
	if obs == nil {
		return provisioning.CrawlNotFound, nil
	}
	if obs.Running {
		return provisioning.CrawlRunning, nil
	}
	switch obs.LastRunStatus {
	case string(types.LastCrawlStatusSucceeded):
		return provisioning.CrawlSucceeded, nil
	case string(types.LastCrawlStatusFailed), string(types.LastCrawlStatusCancelled):
		return provisioning.CrawlFailed, nil
	}
	// Never run yet.
	return provisioning.CrawlNotFound, nil
}
