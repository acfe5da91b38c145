// Package config defines the desired-state descriptor for a data lake
// and loads it from YAML.
package config

import (
	"fmt"
	"strings"

	"github.com/lakeforge/lakeforge/internal/policy"
)

// Defaults applied when the descriptor omits a field.
const (
	DefaultEnvironment             = "dev"
	DefaultTemporaryPrefix         = "temp"
	DefaultTemporaryRetentionDays  = 7
	DefaultNoncurrentRetentionDays = 90
	DefaultMultipartAbortDays      = 7

	// RawZone is the zone the crawler discovers schema in.
	RawZone = "raw"
)

// DefaultZones are the standard data-maturity partitions of a lake.
func DefaultZones() []string {
	return []string{"landing", RawZone, "curated", "analytics"}
}

// Spec is the desired state for one data lake, immutable per
// reconciliation run.
type Spec struct {
	Project     string   `yaml:"project"`
	Environment string   `yaml:"environment"`
	Region      string   `yaml:"region"`
	Zones       []string `yaml:"zones"`

	// ForceDestroy authorizes teardown to empty a non-empty bucket.
	// It never influences reconciliation, only the destroy operation.
	ForceDestroy bool `yaml:"force_destroy"`

	TemporaryPrefix            string `yaml:"temporary_prefix"`
	TemporaryRetentionDays     int    `yaml:"temporary_retention_days"`
	EnableNoncurrentExpiration *bool  `yaml:"enable_noncurrent_expiration"`
	NoncurrentRetentionDays    int    `yaml:"noncurrent_retention_days"`
	MultipartAbortDays         int    `yaml:"multipart_abort_days"`

	// DisableCrawler turns off catalog provisioning entirely: no role,
	// no database, no crawler.
	DisableCrawler         bool   `yaml:"disable_crawler"`
	CrawlerSchedule        string `yaml:"crawler_schedule"`
	CrawlerRecrawlBehavior string `yaml:"crawler_recrawl_behavior"`
	CrawlerTargetPrefix    string `yaml:"crawler_target_prefix"`

	Tags map[string]string `yaml:"tags"`
}

// InvalidSpecError indicates a malformed or contradictory desired state.
// It is never retried and surfaced immediately.
type InvalidSpecError struct {
	Field  string
	Reason string
}

func (e *InvalidSpecError) Error() string {
	return fmt.Sprintf("invalid spec: %s: %s", e.Field, e.Reason)
}

// ApplyDefaults fills in every omitted field.
func (s *Spec) ApplyDefaults() {
	if s.Environment == "" {
		s.Environment = DefaultEnvironment
	}
	if len(s.Zones) == 0 {
		s.Zones = DefaultZones()
	}
	if s.TemporaryPrefix == "" {
		s.TemporaryPrefix = DefaultTemporaryPrefix
	}
	if s.TemporaryRetentionDays == 0 {
		s.TemporaryRetentionDays = DefaultTemporaryRetentionDays
	}
	if s.EnableNoncurrentExpiration == nil {
		enabled := true
		s.EnableNoncurrentExpiration = &enabled
	}
	if s.NoncurrentRetentionDays == 0 {
		s.NoncurrentRetentionDays = DefaultNoncurrentRetentionDays
	}
	if s.MultipartAbortDays == 0 {
		s.MultipartAbortDays = DefaultMultipartAbortDays
	}
	if s.CrawlerRecrawlBehavior == "" {
		s.CrawlerRecrawlBehavior = string(policy.RecrawlNewObjectsOnly)
	}
	if s.CrawlerTargetPrefix == "" {
		s.CrawlerTargetPrefix = RawZone
	}
	if s.Tags == nil {
		s.Tags = map[string]string{}
	}
}

// Validate checks the spec invariants. Call after ApplyDefaults.
func (s *Spec) Validate() error {
	if strings.TrimSpace(s.Project) == "" {
		return &InvalidSpecError{Field: "project", Reason: "required"}
	}

	seen := make(map[string]struct{}, len(s.Zones))
	for _, zone := range s.Zones {
		if err := validateZoneName(zone); err != nil {
			return err
		}
		if _, dup := seen[zone]; dup {
			return &InvalidSpecError{Field: "zones", Reason: fmt.Sprintf("duplicate zone %q", zone)}
		}
		seen[zone] = struct{}{}
	}

	if s.TemporaryRetentionDays <= 0 {
		return &InvalidSpecError{Field: "temporary_retention_days", Reason: "must be greater than zero"}
	}
	if *s.EnableNoncurrentExpiration && s.NoncurrentRetentionDays <= 0 {
		return &InvalidSpecError{Field: "noncurrent_retention_days", Reason: "must be greater than zero"}
	}
	if s.MultipartAbortDays <= 0 {
		return &InvalidSpecError{Field: "multipart_abort_days", Reason: "must be greater than zero"}
	}

	if !s.DisableCrawler {
		if !policy.RecrawlBehavior(s.CrawlerRecrawlBehavior).Valid() {
			return &InvalidSpecError{
				Field:  "crawler_recrawl_behavior",
				Reason: fmt.Sprintf("unknown behavior %q", s.CrawlerRecrawlBehavior),
			}
		}
		if _, ok := seen[s.CrawlerTargetPrefix]; !ok {
			return &InvalidSpecError{
				Field:  "crawler_target_prefix",
				Reason: fmt.Sprintf("zone %q is not in the zone list; disable the crawler or add the zone", s.CrawlerTargetPrefix),
			}
		}
		if s.CrawlerSchedule != "" && !strings.HasPrefix(s.CrawlerSchedule, "cron(") {
			return &InvalidSpecError{Field: "crawler_schedule", Reason: "must be a cron(...) expression"}
		}
	}

	return nil
}

// validateZoneName enforces non-empty, lowercase, URL-path-safe tokens.
func validateZoneName(zone string) error {
	if zone == "" {
		return &InvalidSpecError{Field: "zones", Reason: "zone name must not be empty"}
	}
	for _, c := range zone {
		valid := (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') || c == '-' || c == '_'
		if !valid {
			return &InvalidSpecError{
				Field:  "zones",
				Reason: fmt.Sprintf("zone %q must be a lowercase URL-path-safe token", zone),
			}
		}
	}
	return nil
}

// Lifecycle returns the retention policy portion of the spec.
func (s *Spec) Lifecycle() policy.LifecyclePolicy {
	return policy.LifecyclePolicy{
		TemporaryPrefix:            s.TemporaryPrefix,
		TemporaryRetentionDays:     s.TemporaryRetentionDays,
		EnableNoncurrentExpiration: *s.EnableNoncurrentExpiration,
		NoncurrentRetentionDays:    s.NoncurrentRetentionDays,
		MultipartAbortDays:         s.MultipartAbortDays,
	}
}

// Crawler returns the crawler policy, or nil when catalog provisioning
// is disabled.
func (s *Spec) Crawler() *policy.CrawlerPolicy {
	if s.DisableCrawler {
		return nil
	}
	return &policy.CrawlerPolicy{
		TargetPrefix:    s.CrawlerTargetPrefix,
		Schedule:        s.CrawlerSchedule,
		RecrawlBehavior: policy.RecrawlBehavior(s.CrawlerRecrawlBehavior),
	}
}
