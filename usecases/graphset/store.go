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
	"github.com/weaviate/vgset/adapters/repos/kmeridx"
	"github.com/weaviate/vgset/entities/vgraph"
)

// StoreInIndex persists the topology of every graph in the set into idx.
// Run after MergeIDSpace, otherwise graphs with overlapping id ranges
// overwrite each other's nodes.
func (s *Set) StoreInIndex(idx *kmeridx.Index) error {
	return s.ForEach(func(g *vgraph.Graph) error {
		s.progress.Start("store graph", g.Name())
		defer s.progress.Done("store graph", g.Name())
		return idx.StoreGraph(g)
	})
}

// StorePathsInIndex persists the paths of every graph in the set into
// idx.
func (s *Set) StorePathsInIndex(idx *kmeridx.Index) error {
	return s.ForEach(func(g *vgraph.Graph) error {
		s.progress.Start("store paths", g.Name())
		defer s.progress.Done("store paths", g.Name())
		return idx.StorePaths(g)
	})
}
