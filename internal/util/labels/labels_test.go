package labels

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewTagBuilder_BaseTags(t *testing.T) {
	t.Parallel()
	tags := NewTagBuilder("acme", "dev").Build()

	assert.Equal(t, map[string]string{
		"Project":     "acme",
		"Environment": "dev",
		"ManagedBy":   "lakeforge",
		"Purpose":     "data-lake",
	}, tags)
}

func TestTagBuilder_WithAndMerge(t *testing.T) {
	t.Parallel()
	tags := NewTagBuilder("acme", "dev").
		With("Owner", "data-team").
		Merge(map[string]string{"CostCenter": "analytics"}).
		Build()

	assert.Equal(t, "data-team", tags["Owner"])
	assert.Equal(t, "analytics", tags["CostCenter"])
	assert.Len(t, tags, 6)
}

func TestTagBuilder_MergeOverridesBaseTags(t *testing.T) {
	t.Parallel()
	tags := NewTagBuilder("acme", "dev").
		Merge(map[string]string{"Purpose": "ml-feature-store"}).
		Build()

	assert.Equal(t, "ml-feature-store", tags["Purpose"])
}

func TestTagBuilder_BuildReturnsCopy(t *testing.T) {
	t.Parallel()
	tb := NewTagBuilder("acme", "dev")
	first := tb.Build()
	tb.With("Extra", "later")
	second := tb.Build()

	assert.NotContains(t, first, "Extra")
	assert.Contains(t, second, "Extra")
}
