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

// Package vgraph holds the in-memory representation of a variation graph: a
// directed graph whose nodes carry short nucleotide sequences and whose paths
// describe named walks through the nodes. A graph is exclusively owned by
// whichever component is currently processing it and is released when that
// component is done with it.
package vgraph

import (
	"sort"
)

// Node is a single labeled vertex. The sequence is the forward-strand
// label, offsets into it are zero-based.
type Node struct {
	ID       int64  `msgpack:"id"`
	Sequence []byte `msgpack:"seq"`
}

// Edge connects the end of From to the start of To.
type Edge struct {
	From int64 `msgpack:"from"`
	To   int64 `msgpack:"to"`
}

// Position is a location on a node: the node id and the zero-based offset
// into its sequence. A negative offset addresses the reverse strand,
// counting back from the node's end.
type Position struct {
	NodeID int64 `msgpack:"node_id"`
	Offset int64 `msgpack:"offset"`
}

// Mapping places one step of a path onto a node. Rank is the explicit
// ordering key within the path; zero means "not yet assigned".
type Mapping struct {
	Rank      int64    `msgpack:"rank"`
	Position  Position `msgpack:"pos"`
	IsReverse bool     `msgpack:"rev,omitempty"`
}

// Path is a named ordered walk, its mappings sorted by ascending rank once
// reconstructed.
type Path struct {
	Name     string    `msgpack:"name"`
	Mappings []Mapping `msgpack:"mappings"`
}

// Graph is a mutable in-memory variation graph. It is not safe for
// concurrent mutation; concurrent read-only traversal is fine.
type Graph struct {
	name  string
	nodes map[int64]*Node
	edges []Edge
	paths []*Path

	next map[int64][]int64
	prev map[int64][]int64
}

func New() *Graph {
	return &Graph{
		nodes: map[int64]*Node{},
		next:  map[int64][]int64{},
		prev:  map[int64][]int64{},
	}
}

func (g *Graph) Name() string        { return g.name }
func (g *Graph) SetName(name string) { g.name = name }

// AddNode inserts a node, replacing any previous node with the same id.
func (g *Graph) AddNode(id int64, sequence []byte) *Node {
	n := &Node{ID: id, Sequence: sequence}
	g.nodes[id] = n
	return n
}

// AddEdge connects from -> to. Duplicate edges are kept as given; callers
// that care deduplicate on write.
func (g *Graph) AddEdge(from, to int64) {
	g.edges = append(g.edges, Edge{From: from, To: to})
	g.next[from] = append(g.next[from], to)
	g.prev[to] = append(g.prev[to], from)
}

func (g *Graph) AddPath(p *Path) {
	g.paths = append(g.paths, p)
}

func (g *Graph) Node(id int64) *Node {
	return g.nodes[id]
}

func (g *Graph) NodeCount() int { return len(g.nodes) }

func (g *Graph) Edges() []Edge { return g.edges }

func (g *Graph) Paths() []*Path { return g.paths }

// SetPaths replaces the path list wholesale, e.g. after a caller has
// partitioned paths into kept and removed sets.
func (g *Graph) SetPaths(paths []*Path) {
	g.paths = paths
}

// NextNodes returns the ids reachable through one outgoing edge of id.
func (g *Graph) NextNodes(id int64) []int64 { return g.next[id] }

// PrevNodes returns the ids with an edge into id.
func (g *Graph) PrevNodes(id int64) []int64 { return g.prev[id] }

// HeadNodes returns the ids of nodes without incoming edges, ascending.
func (g *Graph) HeadNodes() []int64 {
	var out []int64
	for id := range g.nodes {
		if len(g.prev[id]) == 0 {
			out = append(out, id)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// TailNodes returns the ids of nodes without outgoing edges, ascending.
func (g *Graph) TailNodes() []int64 {
	var out []int64
	for id := range g.nodes {
		if len(g.next[id]) == 0 {
			out = append(out, id)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// SortedNodeIDs returns every node id in ascending order. Iteration over
// the set must be deterministic for chunked serialization.
func (g *Graph) SortedNodeIDs() []int64 {
	out := make([]int64, 0, len(g.nodes))
	for id := range g.nodes {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// MaxNodeID returns the largest node id, or 0 for an empty graph.
func (g *Graph) MaxNodeID() int64 {
	var max int64
	for id := range g.nodes {
		if id > max {
			max = id
		}
	}
	return max
}

// MinNodeID returns the smallest node id, or 0 for an empty graph.
func (g *Graph) MinNodeID() int64 {
	var min int64
	for id := range g.nodes {
		if min == 0 || id < min {
			min = id
		}
	}
	return min
}

// IncrementNodeIDs shifts every node id, edge endpoint and path mapping
// position upward by delta. Used to move a whole graph into a fresh region
// of the global id space.
func (g *Graph) IncrementNodeIDs(delta int64) {
	if delta == 0 {
		return
	}

	nodes := make(map[int64]*Node, len(g.nodes))
	for id, n := range g.nodes {
		n.ID = id + delta
		nodes[n.ID] = n
	}
	g.nodes = nodes

	for i := range g.edges {
		g.edges[i].From += delta
		g.edges[i].To += delta
	}

	next := make(map[int64][]int64, len(g.next))
	for id, succs := range g.next {
		for i := range succs {
			succs[i] += delta
		}
		next[id+delta] = succs
	}
	g.next = next

	prev := make(map[int64][]int64, len(g.prev))
	for id, preds := range g.prev {
		for i := range preds {
			preds[i] += delta
		}
		prev[id+delta] = preds
	}
	g.prev = prev

	for _, p := range g.paths {
		for i := range p.Mappings {
			p.Mappings[i].Position.NodeID += delta
		}
	}
}

// PathAdjacency returns the set of node-id pairs that occur as consecutive
// mappings on some stored path. Traversals restricted to paths may only
// cross an edge whose endpoints form such a pair.
func (g *Graph) PathAdjacency() map[[2]int64]struct{} {
	adj := map[[2]int64]struct{}{}
	for _, p := range g.paths {
		for i := 1; i < len(p.Mappings); i++ {
			a := p.Mappings[i-1].Position.NodeID
			b := p.Mappings[i].Position.NodeID
			adj[[2]int64{a, b}] = struct{}{}
		}
	}
	return adj
}
