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

// Package graphset treats an ordered collection of on-disk variation
// graphs as one logical graph. It unifies their id spaces, splices
// selected paths out of chunked streams while feeding a succinct index
// builder, and extracts k-mers in parallel into a persistent index.
//
// Graphs are processed strictly one at a time in set order; all
// parallelism lives inside the processing of a single graph.
package graphset

import (
	"runtime"

	"github.com/sirupsen/logrus"

	"github.com/weaviate/vgset/adapters/repos/graphio"
	"github.com/weaviate/vgset/entities/vgraph"
	"github.com/weaviate/vgset/usecases/monitoring"
)

// Config carries the explicit knobs of a set. Nothing here is read from
// ambient process state.
type Config struct {
	// ChunkNodes bounds how many nodes one written fragment carries.
	// Zero means graphio.DefaultChunkNodes.
	ChunkNodes int

	Logger   logrus.FieldLogger
	Metrics  *monitoring.Metrics
	Progress Progress
}

// Set is an ordered sequence of graph source locations. The set owns no
// graph data itself; each operation loads, processes and releases one
// graph at a time.
type Set struct {
	filenames  []string
	chunkNodes int
	logger     logrus.FieldLogger
	metrics    *monitoring.Metrics
	progress   Progress
}

func NewSet(filenames []string, cfg Config) *Set {
	chunkNodes := cfg.ChunkNodes
	if chunkNodes <= 0 {
		chunkNodes = graphio.DefaultChunkNodes
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logrus.New()
	}
	progress := cfg.Progress
	if progress == nil {
		progress = nopProgress{}
	}
	return &Set{
		filenames:  filenames,
		chunkNodes: chunkNodes,
		logger:     logger,
		metrics:    cfg.Metrics,
		progress:   progress,
	}
}

// Filenames returns the set members in order.
func (s *Set) Filenames() []string { return s.filenames }

// ForEach loads each graph in set order, applies fn and releases the
// graph again. A source that cannot be opened aborts the whole walk: the
// set would otherwise end up in an inconsistent state.
func (s *Set) ForEach(fn func(*vgraph.Graph) error) error {
	for _, name := range s.filenames {
		g, err := graphio.Load(name)
		if err != nil {
			return err
		}
		if err := fn(g); err != nil {
			return err
		}
		s.metrics.IncGraphsProcessed()
	}
	return nil
}

// Transform is ForEach plus write-back: after fn has mutated the graph it
// is rewritten to its source location in place.
func (s *Set) Transform(fn func(*vgraph.Graph) error) error {
	for _, name := range s.filenames {
		g, err := graphio.Load(name)
		if err != nil {
			return err
		}
		if err := fn(g); err != nil {
			return err
		}
		if err := graphio.Store(name, g, s.chunkNodes); err != nil {
			return err
		}
		s.metrics.IncGraphsProcessed()
	}
	return nil
}

func defaultWorkers(n int) int {
	if n > 0 {
		return n
	}
	return runtime.GOMAXPROCS(0)
}
