package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lakeforge/lakeforge/internal/policy"
)

func validSpec() *Spec {
	s := &Spec{Project: "acme-analytics", Region: "us-east-1"}
	s.ApplyDefaults()
	return s
}

func TestApplyDefaults(t *testing.T) {
	t.Parallel()
	s := validSpec()

	assert.Equal(t, "dev", s.Environment)
	assert.Equal(t, []string{"landing", "raw", "curated", "analytics"}, s.Zones)
	assert.Equal(t, "temp", s.TemporaryPrefix)
	assert.Equal(t, 7, s.TemporaryRetentionDays)
	require.NotNil(t, s.EnableNoncurrentExpiration)
	assert.True(t, *s.EnableNoncurrentExpiration)
	assert.Equal(t, 90, s.NoncurrentRetentionDays)
	assert.Equal(t, 7, s.MultipartAbortDays)
	assert.Equal(t, "new-objects-only", s.CrawlerRecrawlBehavior)
	assert.Equal(t, "raw", s.CrawlerTargetPrefix)
	assert.False(t, s.ForceDestroy)
	assert.Empty(t, s.CrawlerSchedule)
}

func TestApplyDefaults_DoesNotOverrideExplicitValues(t *testing.T) {
	t.Parallel()
	disabled := false
	s := &Spec{
		Project:                    "p",
		Environment:                "prod",
		Zones:                      []string{"raw"},
		TemporaryRetentionDays:     14,
		EnableNoncurrentExpiration: &disabled,
	}
	s.ApplyDefaults()

	assert.Equal(t, "prod", s.Environment)
	assert.Equal(t, []string{"raw"}, s.Zones)
	assert.Equal(t, 14, s.TemporaryRetentionDays)
	assert.False(t, *s.EnableNoncurrentExpiration)
}

func TestValidate(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		mutate  func(*Spec)
		wantErr string
	}{
		{"valid", func(*Spec) {}, ""},
		{
			"missing project",
			func(s *Spec) { s.Project = "  " },
			"project",
		},
		{
			"empty zone name",
			func(s *Spec) { s.Zones = []string{"raw", ""} },
			"zone name must not be empty",
		},
		{
			"uppercase zone",
			func(s *Spec) { s.Zones = []string{"Raw"} },
			"lowercase",
		},
		{
			"duplicate zones",
			func(s *Spec) { s.Zones = []string{"raw", "raw"} },
			"duplicate zone",
		},
		{
			"zero temp retention",
			func(s *Spec) { s.TemporaryRetentionDays = -1 },
			"temporary_retention_days",
		},
		{
			"zero noncurrent retention while enabled",
			func(s *Spec) { s.NoncurrentRetentionDays = -1 },
			"noncurrent_retention_days",
		},
		{
			"crawler without its target zone",
			func(s *Spec) { s.Zones = []string{"landing", "curated"} },
			"crawler_target_prefix",
		},
		{
			"unknown recrawl behavior",
			func(s *Spec) { s.CrawlerRecrawlBehavior = "sometimes" },
			"crawler_recrawl_behavior",
		},
		{
			"malformed schedule",
			func(s *Spec) { s.CrawlerSchedule = "0 2 * * *" },
			"crawler_schedule",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s := validSpec()
			tt.mutate(s)
			err := s.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			var specErr *InvalidSpecError
			require.ErrorAs(t, err, &specErr)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidate_CrawlerDisabledSkipsCrawlerChecks(t *testing.T) {
	t.Parallel()
	s := validSpec()
	s.Zones = []string{"landing", "curated"}
	s.DisableCrawler = true
	require.NoError(t, s.Validate())
	assert.Nil(t, s.Crawler())
}

func TestLifecycleAccessor(t *testing.T) {
	t.Parallel()
	s := validSpec()
	lc := s.Lifecycle()
	assert.Equal(t, policy.LifecyclePolicy{
		TemporaryPrefix:            "temp",
		TemporaryRetentionDays:     7,
		EnableNoncurrentExpiration: true,
		NoncurrentRetentionDays:    90,
		MultipartAbortDays:         7,
	}, lc)
}

func TestCrawlerAccessor(t *testing.T) {
	t.Parallel()
	s := validSpec()
	s.CrawlerSchedule = "cron(0 2 * * ? *)"
	c := s.Crawler()
	require.NotNil(t, c)
	assert.Equal(t, "raw", c.TargetPrefix)
	assert.Equal(t, "cron(0 2 * * ? *)", c.Schedule)
	assert.Equal(t, policy.RecrawlNewObjectsOnly, c.RecrawlBehavior)
}

func TestParse(t *testing.T) {
	t.Parallel()
	spec, err := Parse([]byte(`
project: acme-analytics
environment: staging
region: eu-west-1
zones: [landing, raw]
tags:
  Owner: data-team
`))
	require.NoError(t, err)
	assert.Equal(t, "acme-analytics", spec.Project)
	assert.Equal(t, "staging", spec.Environment)
	assert.Equal(t, "eu-west-1", spec.Region)
	assert.Equal(t, []string{"landing", "raw"}, spec.Zones)
	assert.Equal(t, "data-team", spec.Tags["Owner"])
}

func TestParse_InvalidYAML(t *testing.T) {
	t.Parallel()
	_, err := Parse([]byte("zones: [unclosed"))
	require.Error(t, err)
}

func TestParse_InvalidSpec(t *testing.T) {
	t.Parallel()
	_, err := Parse([]byte("environment: dev"))
	require.Error(t, err)
	var specErr *InvalidSpecError
	assert.ErrorAs(t, err, &specErr)
}
