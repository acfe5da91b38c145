// Package labels builds the tag sets applied to data lake resources.
package labels

// Base tag keys applied to every managed resource. They identify the
// owning project and mark the resource as engine-managed so teardown can
// distinguish it from hand-made infrastructure.
const (
	KeyProject     = "Project"
	KeyEnvironment = "Environment"
	KeyManagedBy   = "ManagedBy"
	KeyPurpose     = "Purpose"

	ManagedByValue = "lakeforge"
	PurposeValue   = "data-lake"
)

// TagBuilder provides a fluent interface for assembling resource tags.
type TagBuilder struct {
	tags map[string]string
}

// NewTagBuilder creates a builder pre-populated with the base tags for
// the given project and environment.
func NewTagBuilder(project, environment string) *TagBuilder {
	return &TagBuilder{
		tags: map[string]string{
			KeyProject:     project,
			KeyEnvironment: environment,
			KeyManagedBy:   ManagedByValue,
			KeyPurpose:     PurposeValue,
		},
	}
}

// With adds a custom key-value tag.
func (tb *TagBuilder) With(key, value string) *TagBuilder {
	tb.tags[key] = value
	return tb
}

// Merge adds all tags from the provided map. Caller tags win over base
// tags on key collision.
func (tb *TagBuilder) Merge(extra map[string]string) *TagBuilder {
	for k, v := range extra {
		tb.tags[k] = v
	}
	return tb
}

// Build returns a copy of the tag map so later builder mutations do not
// leak into already-built sets.
func (tb *TagBuilder) Build() map[string]string {
	result := make(map[string]string, len(tb.tags))
	for k, v := range tb.tags {
		result[k] = v
	}
	return result
}
