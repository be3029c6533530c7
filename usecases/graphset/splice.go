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

package graphset

import (
	"regexp"
	"sort"

	"github.com/weaviate/vgset/adapters/repos/graphio"
	"github.com/weaviate/vgset/entities/vgraph"
)

// SuccinctBuilder is the construction protocol of the succinct graph
// index: the builder drives the load function it is handed, which in turn
// emits graph fragments in original stream order, exactly once each.
type SuccinctBuilder interface {
	FromCallback(load func(emit func(*vgraph.Fragment) error) error) error
}

// ToSuccinct feeds every graph of the set, chunk by chunk, into the
// succinct index builder. Paths whose name matches pattern are removed
// from the fragments before they are forwarded and reassembled into whole
// paths instead; the completed map from path name to reconstructed path is
// returned once the builder has consumed all fragments.
//
// Ranks are global per path name across the entire set: a path may span
// fragments and even graphs. A mapping without a rank is filed one past
// the highest rank seen so far for its path. Two mappings filed under the
// same rank resolve last-write-wins; this mirrors long-standing behavior
// and is deliberately not an error.
func (s *Set) ToSuccinct(builder SuccinctBuilder, pattern *regexp.Regexp) (map[string]*vgraph.Path, error) {
	acc := newPathAccumulator()

	err := builder.FromCallback(func(emit func(*vgraph.Fragment) error) error {
		for _, name := range s.filenames {
			in, err := graphio.Open(name)
			if err != nil {
				return err
			}
			s.progress.Start("streaming chunks", name)

			err = graphio.ForEachFragment(in, func(frag *vgraph.Fragment) error {
				s.spliceFragment(frag, pattern, acc)
				s.metrics.IncChunksForwarded()
				return emit(frag)
			})
			in.Close()
			if err != nil {
				return err
			}
			s.progress.Done("streaming chunks", name)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	removed := acc.drain()
	s.metrics.AddPathsReconstructed(len(removed))
	return removed, nil
}

// ToSuccinctAll builds the succinct index over the complete set without
// removing any paths.
func (s *Set) ToSuccinctAll(builder SuccinctBuilder) error {
	// match-nothing pattern, so every path is kept in the stream
	_, err := s.ToSuccinct(builder, nil)
	return err
}

// spliceFragment partitions the fragment's paths into kept and taken,
// files every taken mapping into the accumulator and leaves only the kept
// paths behind, in their original order.
func (s *Set) spliceFragment(frag *vgraph.Fragment, pattern *regexp.Regexp, acc *pathAccumulator) {
	if pattern == nil {
		return
	}

	kept := frag.Paths[:0]
	for _, p := range frag.Paths {
		if !pattern.MatchString(p.Name) {
			kept = append(kept, p)
			continue
		}
		for _, m := range p.Mappings {
			acc.file(p.Name, m)
		}
	}
	frag.Paths = kept
}

// pathAccumulator collects path mappings by name and rank for the
// lifetime of one full set traversal. It has a single writer; drain
// consumes it.
type pathAccumulator struct {
	mappings map[string]map[int64]vgraph.Mapping
	maxRank  map[string]int64
}

func newPathAccumulator() *pathAccumulator {
	return &pathAccumulator{
		mappings: map[string]map[int64]vgraph.Mapping{},
		maxRank:  map[string]int64{},
	}
}

func (a *pathAccumulator) file(name string, m vgraph.Mapping) {
	ranked, ok := a.mappings[name]
	if !ok {
		ranked = map[int64]vgraph.Mapping{}
		a.mappings[name] = ranked
	}

	if m.Rank == 0 {
		m.Rank = a.maxRank[name] + 1
	}
	if m.Rank > a.maxRank[name] {
		a.maxRank[name] = m.Rank
	}

	// same rank filed twice: last write wins
	ranked[m.Rank] = m
}

// drain converts the accumulated mappings into one path per name, sorted
// by ascending rank, and leaves the accumulator empty.
func (a *pathAccumulator) drain() map[string]*vgraph.Path {
	out := make(map[string]*vgraph.Path, len(a.mappings))
	for name, ranked := range a.mappings {
		ranks := make([]int64, 0, len(ranked))
		for r := range ranked {
			ranks = append(ranks, r)
		}
		sort.Slice(ranks, func(i, j int) bool { return ranks[i] < ranks[j] })

		p := &vgraph.Path{Name: name, Mappings: make([]vgraph.Mapping, 0, len(ranks))}
		for _, r := range ranks {
			p.Mappings = append(p.Mappings, ranked[r])
		}
		out[name] = p
	}
	a.mappings = map[string]map[int64]vgraph.Mapping{}
	a.maxRank = map[string]int64{}
	return out
}
