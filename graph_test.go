package uanode_test

import (
	"context"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chenyanchen/uanode"
)

func resolvedTree(t *testing.T) *uanode.Node {
	t.Helper()
	f := newFixture(t)
	ctx := context.Background()

	objects, err := f.client.Node(ctx, uanode.ObjectsFolder)
	require.NoError(t, err)
	a, err := objects.Member(ctx, uanode.NewQualifiedName(exampleNS, "A"), uanode.MemberHint{ReferenceTypeID: uanode.Organizes})
	require.NoError(t, err)
	require.True(t, a == f.a)

	for _, name := range []string{"Severity", "Modes", "Build", "Missing"} {
		_, err := a.Member(ctx, uanode.NewQualifiedName(exampleNS, name), uanode.MemberHint{})
		require.NoError(t, err)
	}
	return objects
}

func TestGraphExport(t *testing.T) {
	root := resolvedTree(t)
	g := root.Graph()

	require.Len(t, g.Nodes, 5)
	require.Len(t, g.Edges, 4)
	assert.Equal(t, uanode.ObjectsFolder, g.Nodes[0].ID)
	assert.Equal(t, "A", g.Nodes[1].BrowseName.Name)
	assert.Equal(t, uanode.NodeClassObject, g.Nodes[1].NodeClass)

	gold := goldie.New(t)
	gold.Assert(t, "member_graph_dot", []byte(g.DOT()))
	gold.Assert(t, "member_graph_mermaid", []byte(g.Mermaid()))
}

func TestGraphDepth(t *testing.T) {
	root := resolvedTree(t)

	g := root.GraphDepth(1)
	require.Len(t, g.Nodes, 2)
	require.Len(t, g.Edges, 1)
	assert.Equal(t, "A", g.Edges[0].Name.Name)

	g = root.GraphDepth(0)
	assert.Len(t, g.Nodes, 1)
	assert.Empty(t, g.Edges)
}
