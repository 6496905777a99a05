package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTree() []Category {
	return []Category{
		{
			Name: "Seat Covers", Slug: "seat-covers",
			Children: []Category{
				{
					Name: "Leatherette", Slug: "leatherette",
					Children: []Category{
						{Name: "Bucket Fit", Slug: "bucket-fit"},
						{Name: "Universal Fit", Slug: "universal-fit"},
					},
				},
				{Name: "Fabric", Slug: "fabric"},
			},
		},
		{Name: "Horns", Slug: "horns"},
	}
}

func TestIndex_LineageAtEachLevel(t *testing.T) {
	ix := NewIndex(testTree())

	lineage, ok := ix.GetLineage("seat-covers")
	require.True(t, ok)
	assert.Equal(t, "seat-covers", lineage.Category)
	assert.Nil(t, lineage.SubCategory)
	assert.Nil(t, lineage.SubSubCategory)

	lineage, ok = ix.GetLineage("leatherette")
	require.True(t, ok)
	assert.Equal(t, "seat-covers", lineage.Category)
	require.NotNil(t, lineage.SubCategory)
	assert.Equal(t, "leatherette", *lineage.SubCategory)
	assert.Nil(t, lineage.SubSubCategory)

	lineage, ok = ix.GetLineage("bucket-fit")
	require.True(t, ok)
	assert.Equal(t, "seat-covers", lineage.Category)
	require.NotNil(t, lineage.SubCategory)
	assert.Equal(t, "leatherette", *lineage.SubCategory)
	require.NotNil(t, lineage.SubSubCategory)
	assert.Equal(t, "bucket-fit", *lineage.SubSubCategory)
}

func TestIndex_UnknownSlug(t *testing.T) {
	ix := NewIndex(testTree())

	_, ok := ix.GetLineage("spoilers")
	assert.False(t, ok)
	assert.Empty(t, ix.AllChildSlugs("spoilers"))
}

func TestIndex_AllChildSlugsIncludesSelfAndDescendants(t *testing.T) {
	ix := NewIndex(testTree())

	slugs := ix.AllChildSlugs("seat-covers")
	assert.ElementsMatch(t, []string{"seat-covers", "leatherette", "bucket-fit", "universal-fit", "fabric"}, slugs)

	assert.ElementsMatch(t, []string{"leatherette", "bucket-fit", "universal-fit"}, ix.AllChildSlugs("leatherette"))
	assert.Equal(t, []string{"horns"}, ix.AllChildSlugs("horns"))
}

func TestIndex_AllChildSlugsReturnsCopy(t *testing.T) {
	ix := NewIndex(testTree())

	slugs := ix.AllChildSlugs("horns")
	slugs[0] = "mutated"
	assert.Equal(t, []string{"horns"}, ix.AllChildSlugs("horns"))
}

func TestIndex_DuplicateSlugKeepsFirst(t *testing.T) {
	tree := []Category{
		{Name: "Lighting", Slug: "lighting", Children: []Category{
			{Name: "Fog Lamps", Slug: "fog-lamps"},
		}},
		{Name: "Accessories", Slug: "accessories", Children: []Category{
			{Name: "Fog Lamps Again", Slug: "fog-lamps"},
		}},
	}
	ix := NewIndex(tree)

	lineage, ok := ix.GetLineage("fog-lamps")
	require.True(t, ok)
	assert.Equal(t, "lighting", lineage.Category)
}

func TestDefaultTree_SlugsAreUnique(t *testing.T) {
	seen := map[string]bool{}
	var walk func(nodes []Category)
	walk = func(nodes []Category) {
		for _, node := range nodes {
			assert.False(t, seen[node.Slug], "duplicate slug %q", node.Slug)
			seen[node.Slug] = true
			walk(node.Children)
		}
	}
	walk(DefaultTree())
	assert.NotEmpty(t, seen)
}

func TestDefaultTree_KnownLineages(t *testing.T) {
	ix := NewIndex(DefaultTree())

	lineage, ok := ix.GetLineage("car-audio-speakers-coaxial")
	require.True(t, ok)
	assert.Equal(t, "car-audio", lineage.Category)
	require.NotNil(t, lineage.SubCategory)
	assert.Equal(t, "car-audio-speakers", *lineage.SubCategory)
}
