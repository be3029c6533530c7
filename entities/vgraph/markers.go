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

import "bytes"

// AddStartEndMarkers augments the graph with two sentinel nodes. The head
// node carries k copies of startChar and gains an edge into every node
// without predecessors; the tail node carries k copies of endChar and gains
// an edge from every node without successors. Traversals that reach past
// the graph's boundary then read sentinel characters instead of running out
// of sequence, which suffix-array construction relies on.
//
// The caller assigns the sentinel ids; they must not collide with existing
// node ids. On an empty graph the head connects straight to the tail.
func (g *Graph) AddStartEndMarkers(k int, startChar, endChar byte, headID, tailID int64) (head, tail *Node) {
	heads := g.HeadNodes()
	tails := g.TailNodes()

	head = g.AddNode(headID, bytes.Repeat([]byte{startChar}, k))
	tail = g.AddNode(tailID, bytes.Repeat([]byte{endChar}, k))

	for _, id := range heads {
		g.AddEdge(headID, id)
	}
	for _, id := range tails {
		g.AddEdge(id, tailID)
	}
	if len(heads) == 0 && len(tails) == 0 {
		g.AddEdge(headID, tailID)
	}
	return head, tail
}
