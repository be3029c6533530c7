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
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/weaviate/vgset/adapters/repos/kmeridx"
	"github.com/weaviate/vgset/entities/vgraph"
)

// DefaultBufferThreshold is how many occurrences a worker accumulates
// before it flushes them as one batched write.
const DefaultBufferThreshold = 100_000

// IndexKmersConfig configures a set-wide k-mer indexing pass. All
// parallelism knobs are explicit; nothing is read from ambient state.
type IndexKmersConfig struct {
	KmerSize int

	// Stride is the distance between k-mer start offsets within a node.
	// Values below 1 mean every offset.
	Stride int

	// EdgeMax bounds how many edges a single k-mer may cross; zero is
	// unbounded. The bound applies per graph: it is not renormalized
	// across the set, so k-mers spanning heavily branched regions near
	// graph boundaries can exceed the intended bound. Correcting that
	// would require rewriting each graph before extraction, which this
	// pass does not do.
	EdgeMax int

	// PathOnly restricts traversals to edges used consecutively by some
	// stored path.
	PathOnly bool

	// AllowNegatives additionally indexes reverse-strand occurrences,
	// which carry negative end-relative offsets.
	AllowNegatives bool

	// Workers is the pool size per graph; zero means GOMAXPROCS.
	Workers int

	// BufferThreshold overrides DefaultBufferThreshold when positive.
	BufferThreshold int
}

// kmerMatch is one buffered occurrence awaiting its batched write.
type kmerMatch struct {
	seq      []byte
	nodeID   int64
	offset   int64
	backward bool
}

// IndexKmers extracts every k-mer of every graph in the set into idx.
//
// Graphs are processed one at a time. Within one graph a pool of workers
// traverses nodes concurrently; each worker appends matches to a buffer it
// exclusively owns, so the append path takes no locks. A worker whose
// buffer grows past the threshold flushes it as one batched write and
// clears it in place; concurrent flushes from different workers are
// serialized by the store. Once the traversal finishes, the remaining
// non-empty buffers are flushed in parallel. After all graphs are done the
// configured k is recorded in the index once.
//
// K-mers containing characters outside A, C, G, T are never indexed.
//
// A failed batched write aborts the whole pass; partially-flushed state is
// unsafe to resume blindly, so nothing is retried.
func (s *Set) IndexKmers(idx *kmeridx.Index, cfg IndexKmersConfig) error {
	threshold := cfg.BufferThreshold
	if threshold <= 0 {
		threshold = DefaultBufferThreshold
	}
	workers := defaultWorkers(cfg.Workers)

	t := traversal{
		k:              cfg.KmerSize,
		stride:         cfg.Stride,
		edgeMax:        cfg.EdgeMax,
		pathOnly:       cfg.PathOnly,
		forwardOnly:    false,
		allowNegatives: cfg.AllowNegatives,
		workers:        workers,
	}

	err := s.ForEach(func(g *vgraph.Graph) error {
		s.progress.Start("indexing kmers", g.Name())

		// arena per worker: buffers[w] is only ever touched by worker w
		// until the final flush below
		buffers := make([][]kmerMatch, workers)

		err := forEachKmerParallel(g, t, func(w int, kp KmerPosition) error {
			if !allACGT(kp.Kmer) {
				return nil
			}
			buffers[w] = append(buffers[w], kmerMatch{
				seq:      kp.Kmer,
				nodeID:   kp.Pos.NodeID,
				offset:   kp.Pos.Offset,
				backward: kp.Backward,
			})
			s.metrics.AddKmersIndexed(1)
			if len(buffers[w]) > threshold {
				if err := s.flushBuffer(idx, buffers[w]); err != nil {
					return err
				}
				buffers[w] = buffers[w][:0]
			}
			return nil
		})
		if err != nil {
			return errors.Wrapf(err, "index kmers of %q", g.Name())
		}

		s.progress.Start("flushing kmer buffers", g.Name())
		eg := errgroup.Group{}
		for i := range buffers {
			buf := buffers[i]
			if len(buf) == 0 {
				continue
			}
			eg.Go(func() error {
				return s.flushBuffer(idx, buf)
			})
		}
		if err := eg.Wait(); err != nil {
			return errors.Wrapf(err, "flush kmer buffers of %q", g.Name())
		}
		s.progress.Done("indexing kmers", g.Name())
		return nil
	})
	if err != nil {
		return err
	}

	return idx.RememberKmerSize(cfg.KmerSize)
}

func (s *Set) flushBuffer(idx *kmeridx.Index, buf []kmerMatch) error {
	wb := idx.NewWriteBatch()
	for _, m := range buf {
		if err := wb.PutKmer(m.seq, m.nodeID, m.offset, m.backward); err != nil {
			wb.Cancel()
			return err
		}
	}
	if err := wb.Flush(); err != nil {
		return err
	}
	s.metrics.IncBatchesFlushed()
	return nil
}

// ForEachKmerParallel visits every k-mer occurrence of every graph in the
// set without touching a persistent index. Handlers run on pool workers;
// emission order across workers is unspecified.
func (s *Set) ForEachKmerParallel(k int, fn func(Kmer) error) error {
	t := traversal{k: k, allowNegatives: true}
	return s.ForEach(func(g *vgraph.Graph) error {
		s.progress.Start("processing kmers", g.Name())
		err := forEachKmerParallel(g, t, func(_ int, kp KmerPosition) error {
			return fn(Kmer{Seq: kp.Kmer, Pos: kp.Pos, Backward: kp.Backward})
		})
		if err != nil {
			return errors.Wrapf(err, "process kmers of %q", g.Name())
		}
		s.progress.Done("processing kmers", g.Name())
		return nil
	})
}
