package glue

import (
	"errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/glue/types"
	"github.com/aws/smithy-go"

	"github.com/lakeforge/lakeforge/internal/policy"
	"github.com/lakeforge/lakeforge/internal/provisioning"
)

func crawlerTargets(path string) *types.CrawlerTargets {
	return &types.CrawlerTargets{
		S3Targets: []types.S3Target{{Path: aws.String(path)}},
	}
}

func recrawlBehavior(b policy.RecrawlBehavior) types.RecrawlBehavior {
	switch b {
	case policy.RecrawlEverything:
		return types.RecrawlBehaviorCrawlEverything
	case policy.RecrawlEventDriven:
		return types.RecrawlBehaviorCrawlEventMode
	default:
		return types.RecrawlBehaviorCrawlNewFoldersOnly
	}
}

func behaviorFromWire(b types.RecrawlBehavior) policy.RecrawlBehavior {
	switch b {
	case types.RecrawlBehaviorCrawlEverything:
		return policy.RecrawlEverything
	case types.RecrawlBehaviorCrawlEventMode:
		return policy.RecrawlEventDriven
	default:
		return policy.RecrawlNewObjectsOnly
	}
}

// observeCrawler projects the wire crawler onto the fields the
// reconciler diffs.
func observeCrawler(crawler *types.Crawler) *provisioning.CrawlerObservation {
	if crawler == nil {
		return nil
	}
	obs := &provisioning.CrawlerObservation{
		DatabaseName: aws.ToString(crawler.DatabaseName),
		RoleARN:      aws.ToString(crawler.Role),
		Running:      crawler.State == types.CrawlerStateRunning,
	}
	if crawler.Targets != nil && len(crawler.Targets.S3Targets) > 0 {
		obs.TargetPath = aws.ToString(crawler.Targets.S3Targets[0].Path)
	}
	if crawler.Schedule != nil {
		obs.Schedule = aws.ToString(crawler.Schedule.ScheduleExpression)
	}
	if crawler.RecrawlPolicy != nil {
		obs.RecrawlBehavior = behaviorFromWire(crawler.RecrawlPolicy.RecrawlBehavior)
	}
	if crawler.LastCrawl != nil {
		obs.LastRunStatus = string(crawler.LastCrawl.Status)
	}
	return obs
}

func isCrawlerRunning(err error) bool {
	var running *types.CrawlerRunningException
	if errors.As(err, &running) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorCode() == "CrawlerRunningException"
	}
	return false
}
