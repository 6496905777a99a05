package catalog

// Category is a node in the static three-level catalog tree
// (category -> sub-category -> sub-sub-category). Slugs are unique across the
// whole tree. The tree is reference data loaded once at process start.
type Category struct {
	Name     string     `json:"name"`
	Slug     string     `json:"slug"`
	Children []Category `json:"children,omitempty"`
}

// Lineage is the full path from the tree root down to a slug.
type Lineage struct {
	Category       string  `json:"category"`
	SubCategory    *string `json:"sub_category,omitempty"`
	SubSubCategory *string `json:"sub_sub_category,omitempty"`
}

// Index answers lineage and descendant queries over the category tree.
type Index struct {
	roots       []Category
	lineages    map[string]Lineage
	descendants map[string][]string
}

// NewIndex builds lookup tables for the given tree with a depth-first walk.
// Duplicate slugs keep the first occurrence.
func NewIndex(roots []Category) *Index {
	ix := &Index{
		roots:       roots,
		lineages:    make(map[string]Lineage),
		descendants: make(map[string][]string),
	}
	for _, root := range roots {
		ix.walk(root, Lineage{Category: root.Slug})
	}
	return ix
}

func (ix *Index) walk(node Category, lineage Lineage) []string {
	subtree := []string{node.Slug}
	for _, child := range node.Children {
		childLineage := lineage
		if childLineage.SubCategory == nil {
			slug := child.Slug
			childLineage.SubCategory = &slug
		} else {
			slug := child.Slug
			childLineage.SubSubCategory = &slug
		}
		subtree = append(subtree, ix.walk(child, childLineage)...)
	}
	if _, exists := ix.lineages[node.Slug]; !exists {
		ix.lineages[node.Slug] = lineage
		ix.descendants[node.Slug] = subtree
	}
	return subtree
}

// Roots returns the full tree for listing endpoints.
func (ix *Index) Roots() []Category {
	return ix.roots
}

// AllChildSlugs returns the given slug plus every descendant slug, so a shop
// filter on a parent category also matches products classified at any deeper
// level. Unknown slugs yield an empty slice, never an error.
func (ix *Index) AllChildSlugs(slug string) []string {
	slugs, ok := ix.descendants[slug]
	if !ok {
		return []string{}
	}
	out := make([]string, len(slugs))
	copy(out, slugs)
	return out
}

// GetLineage finds the slug at any of the three levels and returns the path
// from the root to it. The second return is false when the slug is not in the
// tree; callers treat that as "no match", not a failure.
func (ix *Index) GetLineage(slug string) (Lineage, bool) {
	lineage, ok := ix.lineages[slug]
	return lineage, ok
}
