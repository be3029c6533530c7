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

package vgraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func linearGraph(t *testing.T, seqs ...string) *Graph {
	t.Helper()
	g := New()
	for i, s := range seqs {
		g.AddNode(int64(i+1), []byte(s))
		if i > 0 {
			g.AddEdge(int64(i), int64(i+1))
		}
	}
	return g
}

func TestIncrementNodeIDs(t *testing.T) {
	g := linearGraph(t, "A", "C", "G")
	g.AddPath(&Path{
		Name: "x",
		Mappings: []Mapping{
			{Rank: 1, Position: Position{NodeID: 1}},
			{Rank: 2, Position: Position{NodeID: 2}},
		},
	})

	g.IncrementNodeIDs(10)

	assert.Equal(t, int64(11), g.MinNodeID())
	assert.Equal(t, int64(13), g.MaxNodeID())
	assert.Nil(t, g.Node(1))
	require.NotNil(t, g.Node(11))
	assert.Equal(t, []byte("A"), g.Node(11).Sequence)

	assert.Equal(t, []int64{12}, g.NextNodes(11))
	assert.Equal(t, []int64{11}, g.PrevNodes(12))

	assert.Equal(t, int64(11), g.Paths()[0].Mappings[0].Position.NodeID)
	assert.Equal(t, int64(12), g.Paths()[0].Mappings[1].Position.NodeID)
}

func TestIncrementNodeIDsZeroDelta(t *testing.T) {
	g := linearGraph(t, "AC", "GT")
	g.IncrementNodeIDs(0)
	assert.Equal(t, int64(1), g.MinNodeID())
	assert.Equal(t, int64(2), g.MaxNodeID())
}

func TestHeadAndTailNodes(t *testing.T) {
	g := New()
	g.AddNode(1, []byte("A"))
	g.AddNode(2, []byte("C"))
	g.AddNode(3, []byte("G"))
	g.AddEdge(1, 3)
	g.AddEdge(2, 3)

	assert.Equal(t, []int64{1, 2}, g.HeadNodes())
	assert.Equal(t, []int64{3}, g.TailNodes())
}

func TestAddStartEndMarkers(t *testing.T) {
	g := linearGraph(t, "AC", "GT")
	head, tail := g.AddStartEndMarkers(3, '#', '$', 100, 101)

	assert.Equal(t, []byte("###"), head.Sequence)
	assert.Equal(t, []byte("$$$"), tail.Sequence)
	assert.Equal(t, []int64{1}, g.NextNodes(100))
	assert.Equal(t, []int64{2}, g.PrevNodes(101))
}

func TestFragmentRoundTrip(t *testing.T) {
	g := linearGraph(t, "A", "C", "G", "T", "A")
	g.AddPath(&Path{
		Name: "p",
		Mappings: []Mapping{
			{Rank: 1, Position: Position{NodeID: 1}},
			{Rank: 2, Position: Position{NodeID: 3}},
			{Rank: 3, Position: Position{NodeID: 5}},
		},
	})

	frags := g.ToFragments(2)
	require.Len(t, frags, 3)
	assert.Len(t, frags[0].Nodes, 2)
	assert.Len(t, frags[2].Nodes, 1)

	// path mappings land in the fragment holding their node
	require.Len(t, frags[1].Paths, 1)
	assert.Equal(t, int64(3), frags[1].Paths[0].Mappings[0].Position.NodeID)

	re := New()
	for _, frag := range frags {
		re.AddFragment(frag)
	}
	assert.Equal(t, 5, re.NodeCount())
	assert.Len(t, re.Edges(), 4)
	require.Len(t, re.Paths(), 1)
	assert.Len(t, re.Paths()[0].Mappings, 3)
}

func TestPathAdjacency(t *testing.T) {
	g := linearGraph(t, "A", "C", "G")
	g.AddPath(&Path{
		Name: "p",
		Mappings: []Mapping{
			{Rank: 1, Position: Position{NodeID: 1}},
			{Rank: 2, Position: Position{NodeID: 2}},
		},
	})

	adj := g.PathAdjacency()
	_, ok := adj[[2]int64{1, 2}]
	assert.True(t, ok)
	_, ok = adj[[2]int64{2, 3}]
	assert.False(t, ok)
}
