//                           _       _
// __      _____  __ ___   ___  __ _| |_ ___
// \ \ /\ / / _ \/ _` \ \ / / |/ _` | __/ _ \
//  \ V  V /  __/ (_| |\ V /| | (_| | ||  __/
//   \_/\_/ \___|\__,_| \_/ |_|\__,_|\__\___|
//
//  Copyright © 2016 - 2025 Weaviate B.V. All rights reserved.
//
//  CONTACT: hello@weaviate.io
//

package kmeridx

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weaviate/vgset/entities/vgraph"
)

func TestStoreGraphRoundTrip(t *testing.T) {
	idx := testIndex(t)

	g := vgraph.New()
	g.AddNode(1, []byte("ACGT"))
	g.AddNode(2, []byte("GG"))
	g.AddEdge(1, 2)

	require.Nil(t, idx.StoreGraph(g))

	n, err := idx.CountNodes()
	require.Nil(t, err)
	assert.Equal(t, 2, n)

	node, err := idx.Node(1)
	require.Nil(t, err)
	require.NotNil(t, node)
	assert.Equal(t, []byte("ACGT"), node.Sequence)

	node, err = idx.Node(42)
	require.Nil(t, err)
	assert.Nil(t, node)
}

func TestStoreGraphOverwritesNodes(t *testing.T) {
	idx := testIndex(t)

	g := vgraph.New()
	g.AddNode(1, []byte("AA"))
	require.Nil(t, idx.StoreGraph(g))

	g2 := vgraph.New()
	g2.AddNode(1, []byte("CC"))
	require.Nil(t, idx.StoreGraph(g2))

	n, err := idx.CountNodes()
	require.Nil(t, err)
	assert.Equal(t, 1, n)

	node, err := idx.Node(1)
	require.Nil(t, err)
	require.NotNil(t, node)
	assert.Equal(t, []byte("CC"), node.Sequence)
}

func TestStorePaths(t *testing.T) {
	idx := testIndex(t)

	g := vgraph.New()
	g.AddNode(1, []byte("ACGT"))
	g.AddNode(2, []byte("GG"))
	g.AddPath(&vgraph.Path{Name: "ref", Mappings: []vgraph.Mapping{
		{Rank: 1, Position: vgraph.Position{NodeID: 1}},
		{Rank: 2, Position: vgraph.Position{NodeID: 2}},
	}})
	g.AddPath(&vgraph.Path{Name: "alt", Mappings: []vgraph.Mapping{
		{Rank: 1, Position: vgraph.Position{NodeID: 2}},
	}})

	require.Nil(t, idx.StorePaths(g))

	n, err := idx.CountPathMappings("ref")
	require.Nil(t, err)
	assert.Equal(t, 2, n)

	n, err = idx.CountPathMappings("alt")
	require.Nil(t, err)
	assert.Equal(t, 1, n)

	n, err = idx.CountPathMappings("missing")
	require.Nil(t, err)
	assert.Equal(t, 0, n)
}
