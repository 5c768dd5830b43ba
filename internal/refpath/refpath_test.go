package refpath

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scenekit/scenesync/internal/scene"
)

func buildPathTree() *scene.Tree {
	root := scene.NewInstance("Folder", "Root")
	world := root.BuildChild("Folder", "World")
	props := world.BuildChild("Folder", "Props")
	props.BuildChild("Part", "Crate")
	shared := root.BuildChild("Folder", "Shared")
	shared.BuildChild("Script", "Util")
	return scene.NewTree(root)
}

func TestBuildReferencePath(t *testing.T) {
	tree := buildPathTree()
	root := tree.RootRef()

	world := tree.ChildrenOf(root)[0]
	props := tree.ChildrenOf(world)[0]
	crate := tree.ChildrenOf(props)[0]

	assert.Equal(t, "World", BuildReferencePath(tree, root, world))
	assert.Equal(t, "World/Props/Crate.model.json", BuildReferencePath(tree, root, crate))
	assert.Equal(t, "", BuildReferencePath(tree, root, root))
	assert.Equal(t, "", BuildReferencePath(tree, root, scene.NewRef()))
}

func TestPathRoundTrip(t *testing.T) {
	tree := buildPathTree()
	root := tree.RootRef()

	for _, ref := range tree.Descendants(root) {
		if ref == root {
			continue
		}
		refPath := BuildReferencePath(tree, root, ref)
		require.NotEmpty(t, refPath)
		assert.Equal(t, ref, ResolveReferencePath(tree, root, refPath), "path %s", refPath)
	}
}

func TestResolveUnknownPath(t *testing.T) {
	tree := buildPathTree()
	assert.True(t, ResolveReferencePath(tree, tree.RootRef(), "World/Nothing").IsNone())
	assert.Equal(t, tree.RootRef(), ResolveReferencePath(tree, tree.RootRef(), ""))
}

func TestComputeRelative(t *testing.T) {
	cases := []struct {
		name   string
		source string
		target string
		want   string
	}{
		{"self", "A/B", "A/B", "@self"},
		{"descendant", "A/B", "A/B/C/D", "@self/C/D"},
		{"sibling", "A/B", "A/C", "./C"},
		{"uncle child", "A/B/C", "A/D/E", "../D/E"},
		{"two levels up", "A/B/C/D", "A/E", "../../E"},
		{"no common prefix", "A/B", "X/Y", "@root/X/Y"},
		{"target is ancestor", "A/B/C", "A/B", "@root/A/B"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ComputeRelative(tc.source, tc.target))
		})
	}
}

func TestResolveRelative(t *testing.T) {
	cases := []struct {
		name   string
		path   string
		source string
		want   string
		ok     bool
	}{
		{"self", "@self", "A/B", "A/B", true},
		{"self descendant", "@self/C", "A/B", "A/B/C", true},
		{"sibling", "./C", "A/B", "A/C", true},
		{"up chain", "../D/E", "A/B/C", "A/D/E", true},
		{"root form", "@root/X/Y", "A/B", "X/Y", true},
		{"bare is absolute", "X/Y", "A/B", "X/Y", true},
		{"dotdot inside rest", "@self/C/../D", "A/B", "A/B/D", true},
		{"climb above root", "../../../X", "A/B", "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := ResolveRelative(tc.path, tc.source)
			assert.Equal(t, tc.ok, ok)
			if tc.ok {
				assert.Equal(t, tc.want, got)
			}
		})
	}
}

func TestRelativeRoundTrip(t *testing.T) {
	pairs := [][2]string{
		{"A/B", "A/B"},
		{"A/B", "A/B/C"},
		{"A/B", "A/C"},
		{"A/B/C", "A/D/E"},
		{"A/B", "X/Y"},
	}
	for _, pair := range pairs {
		relative := ComputeRelative(pair[0], pair[1])
		resolved, ok := ResolveRelative(relative, pair[0])
		require.True(t, ok, "relative %s", relative)
		assert.Equal(t, pair[1], resolved, "relative %s", relative)
	}
}

func TestRefAttributeNames(t *testing.T) {
	assert.Equal(t, "Ref_PrimaryPart", RefAttributeName("PrimaryPart"))

	prop, ok := PropertyForRefAttribute("Ref_Value")
	assert.True(t, ok)
	assert.Equal(t, "Value", prop)

	_, ok = PropertyForRefAttribute("Color")
	assert.False(t, ok)
}
