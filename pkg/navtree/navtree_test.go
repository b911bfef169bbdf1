package navtree_test

import (
	"errors"
	"testing"

	// Packages
	navtree "github.com/mutablelogic/go-dms/pkg/navtree"
	schema "github.com/mutablelogic/go-dms/pkg/schema"
	assert "github.com/stretchr/testify/assert"
	require "github.com/stretchr/testify/require"
)

func flatNodes() []schema.Node {
	return []schema.Node{
		{ID: "d1", Kind: schema.NodeDepartment, Name: "Finance"},
		{ID: "d2", Kind: schema.NodeDepartment, Name: "Engineering"},
		{ID: "c1", Kind: schema.NodeCategory, Name: "Invoices", Parent: "d1"},
		{ID: "c2", Kind: schema.NodeCategory, Name: "budgets", Parent: "d1"},
		{ID: "s1", Kind: schema.NodeSubcategory, Name: "2026", Parent: "c1"},
		{ID: "f1", Kind: schema.NodeFolder, Name: "Q1", Parent: "s1"},
		{ID: "f2", Kind: schema.NodeFolder, Name: "Q2", Parent: "s1"},
		{ID: "f3", Kind: schema.NodeFolder, Name: "Drafts", Parent: "f1"},
	}
}

func Test_Build_001(t *testing.T) {
	assert := assert.New(t)
	forest, err := navtree.Build(flatNodes())
	require.NoError(t, err)

	// Departments sorted by name
	if assert.Len(forest, 2) {
		assert.Equal("Engineering", forest[0].Name)
		assert.Equal("Finance", forest[1].Name)
	}

	// Case-insensitive sort of children
	finance := forest[1]
	if assert.Len(finance.Children, 2) {
		assert.Equal("budgets", finance.Children[0].Name)
		assert.Equal("Invoices", finance.Children[1].Name)
	}
	assert.Len(finance.Children[1].Children[0].Children, 2)
}

func Test_Build_002(t *testing.T) {
	assert := assert.New(t)

	t.Run("Orphan", func(t *testing.T) {
		_, err := navtree.Build([]schema.Node{
			{ID: "c1", Kind: schema.NodeCategory, Name: "x", Parent: "missing"},
		})
		assert.True(errors.Is(err, navtree.ErrOrphan))
	})

	t.Run("Cycle", func(t *testing.T) {
		_, err := navtree.Build([]schema.Node{
			{ID: "d1", Kind: schema.NodeDepartment, Name: "root"},
			{ID: "a", Kind: schema.NodeFolder, Name: "a", Parent: "b"},
			{ID: "b", Kind: schema.NodeFolder, Name: "b", Parent: "a"},
		})
		assert.True(errors.Is(err, navtree.ErrCycle))
	})

	t.Run("Duplicate", func(t *testing.T) {
		_, err := navtree.Build([]schema.Node{
			{ID: "d1", Kind: schema.NodeDepartment, Name: "one"},
			{ID: "d1", Kind: schema.NodeDepartment, Name: "two"},
		})
		assert.True(errors.Is(err, navtree.ErrDuplicate))
	})

	t.Run("Empty", func(t *testing.T) {
		forest, err := navtree.Build(nil)
		assert.NoError(err)
		assert.Empty(forest)
	})
}

func Test_Breadcrumb_001(t *testing.T) {
	assert := assert.New(t)
	forest, err := navtree.Build(flatNodes())
	require.NoError(t, err)
	tree := navtree.New(forest)
	assert.Equal(8, tree.Len())

	crumbs, err := tree.Breadcrumb("f3")
	require.NoError(t, err)
	ids := make([]string, 0, len(crumbs))
	for _, c := range crumbs {
		ids = append(ids, c.ID)
	}
	assert.Equal([]string{"d1", "c1", "s1", "f1", "f3"}, ids)
	assert.Equal("/Finance/Invoices/2026/Q1/Drafts", crumbs.String())
	assert.Equal("/Finance/Invoices/2026/Q1/Drafts", tree.Path("f3"))

	// Department breadcrumb is itself
	crumbs, err = tree.Breadcrumb("d2")
	require.NoError(t, err)
	assert.Len(crumbs, 1)

	// Unknown node
	_, err = tree.Breadcrumb("nope")
	assert.True(errors.Is(err, navtree.ErrNotFound))
	assert.Equal("", tree.Path("nope"))
}

func Test_Resolve_001(t *testing.T) {
	assert := assert.New(t)
	forest, err := navtree.Build(flatNodes())
	require.NoError(t, err)
	tree := navtree.New(forest)

	node, err := tree.Resolve("/finance/INVOICES/2026/q2")
	if assert.NoError(err) {
		assert.Equal("f2", node.ID)
	}
	node, err = tree.Resolve("Finance//Invoices/")
	if assert.NoError(err) {
		assert.Equal("c1", node.ID)
	}
	_, err = tree.Resolve("/Finance/Nope")
	assert.True(errors.Is(err, navtree.ErrNotFound))
	_, err = tree.Resolve("/")
	assert.True(errors.Is(err, navtree.ErrNotFound))
}

func Test_Relations_001(t *testing.T) {
	assert := assert.New(t)
	forest, err := navtree.Build(flatNodes())
	require.NoError(t, err)
	tree := navtree.New(forest)

	parent, ok := tree.Parent("f3")
	assert.True(ok)
	assert.Equal("f1", parent.ID)
	_, ok = tree.Parent("d1")
	assert.False(ok)

	assert.True(tree.IsAncestor("d1", "f3"))
	assert.True(tree.IsAncestor("s1", "f3"))
	assert.False(tree.IsAncestor("f3", "d1"))
	assert.False(tree.IsAncestor("f3", "f3"))
	assert.False(tree.IsAncestor("d2", "f3"))

	assert.Equal([]string{"c2", "c1", "s1", "f1", "f3", "f2"}, tree.Descendants("d1"))
	assert.Empty(tree.Descendants("f3"))
	assert.Empty(tree.Descendants("nope"))

	roots := tree.Children("")
	assert.Len(roots, 2)
	node, ok := tree.Find("c1")
	assert.True(ok)
	assert.Nil(node.Children)
}

func Test_Walk_001(t *testing.T) {
	assert := assert.New(t)
	forest, err := navtree.Build(flatNodes())
	require.NoError(t, err)
	tree := navtree.New(forest)

	var visited []string
	var depths []int
	err = tree.Walk(func(n schema.Node, depth int) error {
		visited = append(visited, n.ID)
		depths = append(depths, depth)
		if n.ID == "s1" {
			return navtree.SkipChildren
		}
		return nil
	})
	assert.NoError(err)
	assert.Equal([]string{"d2", "d1", "c2", "c1", "s1"}, visited)
	assert.Equal([]int{0, 0, 1, 1, 2}, depths)

	// Errors stop the walk
	stop := errors.New("stop")
	err = tree.Walk(func(n schema.Node, depth int) error {
		return stop
	})
	assert.ErrorIs(err, stop)
}

func Test_Filter_001(t *testing.T) {
	assert := assert.New(t)
	forest, err := navtree.Build(flatNodes())
	require.NoError(t, err)
	tree := navtree.New(forest)

	result := tree.Filter("q")
	if assert.Len(result, 2) {
		assert.Equal("f1", result[0].ID)
		assert.Equal("f2", result[1].ID)
	}
	assert.Empty(tree.Filter("  "))
	assert.Len(tree.Filter("INV"), 1)
}
