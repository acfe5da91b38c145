// Package naming derives globally-unique, constraint-compliant resource
// names for a data lake from its project and environment.
package naming

import (
	"fmt"
	"math/rand"
	"regexp"
	"strings"
)

const (
	// SuffixLength is the length of the random bucket name suffix.
	SuffixLength = 6

	// MaxBucketNameLength is the S3 bucket name limit.
	MaxBucketNameLength = 63

	suffixAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"
)

var (
	bucketNamePattern   = regexp.MustCompile(`^[a-z0-9][a-z0-9-]*[a-z0-9]$`)
	databaseNamePattern = regexp.MustCompile(`^[a-z0-9_]+$`)
)

// Identity holds the resolved names for every lake resource. Once created
// it is persisted by the caller and passed back on later reconciliations
// so the same bucket is reused instead of minting a new suffix.
type Identity struct {
	BucketName   string `yaml:"bucket_name"`
	DatabaseName string `yaml:"database_name"`
	CrawlerName  string `yaml:"crawler_name"`
	RoleName     string `yaml:"role_name"`
}

// Valid reports whether the identity satisfies all naming constraints.
func (id Identity) Valid() bool {
	if id.BucketName == "" || len(id.BucketName) > MaxBucketNameLength {
		return false
	}
	if !bucketNamePattern.MatchString(id.BucketName) {
		return false
	}
	if id.DatabaseName == "" || !databaseNamePattern.MatchString(id.DatabaseName) {
		return false
	}
	return id.CrawlerName != "" && id.RoleName != ""
}

// InvalidNameError indicates a project or environment that sanitizes to
// an empty string and therefore cannot produce a resource name.
type InvalidNameError struct {
	Field string
	Value string
}

func (e *InvalidNameError) Error() string {
	return fmt.Sprintf("invalid name: %s %q sanitizes to an empty string", e.Field, e.Value)
}

// Resolver derives identities. The random source is injected so tests
// can produce deterministic suffixes.
type Resolver struct {
	rng *rand.Rand
}

// NewResolver creates a resolver backed by the given random source.
func NewResolver(src rand.Source) *Resolver {
	return &Resolver{rng: rand.New(src)}
}

// Resolve returns the identity for (project, environment). When existing
// is non-nil and still satisfies the naming constraints it is returned
// unchanged, keeping re-resolution idempotent. Otherwise a fresh identity
// is derived with a new random suffix.
func (r *Resolver) Resolve(project, environment string, existing *Identity) (Identity, error) {
	cleanProject := sanitize(project, "-")
	cleanEnv := sanitize(environment, "-")
	if cleanProject == "" {
		return Identity{}, &InvalidNameError{Field: "project", Value: project}
	}
	if cleanEnv == "" {
		return Identity{}, &InvalidNameError{Field: "environment", Value: environment}
	}

	if existing != nil && existing.Valid() {
		return *existing, nil
	}

	return Identity{
		BucketName:   r.bucketName(cleanProject, cleanEnv),
		DatabaseName: databaseName(sanitize(project, "_"), sanitize(environment, "_")),
		CrawlerName:  fmt.Sprintf("%s-%s-lake-crawler", cleanProject, cleanEnv),
		RoleName:     fmt.Sprintf("%s-%s-lake-crawler-role", cleanProject, cleanEnv),
	}, nil
}

// bucketName builds <project>-<environment>-data-lake-<suffix>, truncated
// to the S3 limit. Only the generated tail is truncated, never the
// suffix, so global uniqueness is preserved.
func (r *Resolver) bucketName(project, environment string) string {
	suffix := r.suffix()
	stem := fmt.Sprintf("%s-%s-data-lake-", project, environment)
	if len(stem)+SuffixLength > MaxBucketNameLength {
		stem = stem[:MaxBucketNameLength-SuffixLength]
	}
	return stem + suffix
}

func (r *Resolver) suffix() string {
	b := make([]byte, SuffixLength)
	for i := range b {
		b[i] = suffixAlphabet[r.rng.Intn(len(suffixAlphabet))]
	}
	return string(b)
}

func databaseName(project, environment string) string {
	return fmt.Sprintf("%s_%s_data_lake", project, environment)
}

// sanitize lowercases s and strips every character outside [a-z0-9] and
// the given separator.
func sanitize(s, separator string) string {
	var b strings.Builder
	for _, c := range strings.ToLower(s) {
		switch {
		case c >= 'a' && c <= 'z', c >= '0' && c <= '9':
			b.WriteRune(c)
		case string(c) == separator:
			b.WriteRune(c)
		}
	}
	return strings.Trim(b.String(), separator)
}
