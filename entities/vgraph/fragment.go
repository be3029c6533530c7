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

// Fragment is the wire shape of one graph chunk: a bounded slice of a
// graph's nodes together with the edges leaving them and the path mappings
// placed on them. A whole graph serializes as a sequence of fragments.
type Fragment struct {
	Nodes []Node  `msgpack:"nodes"`
	Edges []Edge  `msgpack:"edges,omitempty"`
	Paths []*Path `msgpack:"paths,omitempty"`
}

// ToFragments splits the graph into fragments of at most chunkNodes nodes,
// in ascending node-id order. Each edge travels with the fragment holding
// its From node, each path mapping with the fragment holding its node. Path
// fragments keep the path's name so a reader can merge them back by name.
func (g *Graph) ToFragments(chunkNodes int) []*Fragment {
	if chunkNodes <= 0 {
		chunkNodes = len(g.nodes)
	}

	ids := g.SortedNodeIDs()
	if len(ids) == 0 {
		return []*Fragment{{}}
	}

	var frags []*Fragment
	chunkOf := map[int64]int{}
	for i := 0; i < len(ids); i += chunkNodes {
		end := i + chunkNodes
		if end > len(ids) {
			end = len(ids)
		}
		frag := &Fragment{}
		for _, id := range ids[i:end] {
			n := g.nodes[id]
			frag.Nodes = append(frag.Nodes, *n)
			chunkOf[id] = len(frags)
		}
		frags = append(frags, frag)
	}

	for _, e := range g.edges {
		c := chunkOf[e.From]
		frags[c].Edges = append(frags[c].Edges, e)
	}

	for _, p := range g.paths {
		// one partial path per fragment the path touches
		parts := map[int]*Path{}
		for _, m := range p.Mappings {
			c, ok := chunkOf[m.Position.NodeID]
			if !ok {
				// mapping onto a node this graph does not hold; keep it
				// with the first fragment so it is not lost
				c = 0
			}
			part, ok := parts[c]
			if !ok {
				part = &Path{Name: p.Name}
				parts[c] = part
				frags[c].Paths = append(frags[c].Paths, part)
			}
			part.Mappings = append(part.Mappings, m)
		}
	}

	return frags
}

// AddFragment merges one fragment into the graph, appending mappings of
// same-named paths onto a single path object.
func (g *Graph) AddFragment(frag *Fragment) {
	for i := range frag.Nodes {
		n := frag.Nodes[i]
		g.AddNode(n.ID, n.Sequence)
	}
	for _, e := range frag.Edges {
		g.AddEdge(e.From, e.To)
	}
	for _, p := range frag.Paths {
		existing := g.pathByName(p.Name)
		if existing == nil {
			g.AddPath(&Path{Name: p.Name, Mappings: append([]Mapping(nil), p.Mappings...)})
			continue
		}
		existing.Mappings = append(existing.Mappings, p.Mappings...)
	}
}

// FragmentGraph builds a standalone graph from a single fragment. Used
// when a consumer wants to treat each chunk as a partial graph of its own.
func FragmentGraph(frag *Fragment) *Graph {
	g := New()
	g.AddFragment(frag)
	return g
}

func (g *Graph) pathByName(name string) *Path {
	for _, p := range g.paths {
		if p.Name == name {
			return p
		}
	}
	return nil
}
