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
	"github.com/weaviate/vgset/entities/vgraph"
)

// MergeIDSpace rewrites every graph in the set so their node-id ranges are
// pairwise disjoint and increase in set order: each graph is shifted up by
// the running maximum of all graphs before it. Every file is rewritten in
// place. The returned value is the final running maximum, which is also
// the next free id for graphs appended to the set later.
func (s *Set) MergeIDSpace() (int64, error) {
	var maxID int64
	err := s.Transform(func(g *vgraph.Graph) error {
		s.progress.Start("merging id space", g.Name())
		if maxID > 0 {
			g.IncrementNodeIDs(maxID)
		}
		maxID = g.MaxNodeID()
		s.progress.Done("merging id space", g.Name())
		return nil
	})
	if err != nil {
		return 0, err
	}
	return maxID, nil
}
