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
	"context"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/weaviate/vgset/entities/vgraph"
)

// Kmer is one fixed-length subsequence occurrence: its characters, the
// position of its first character and the strand it was read on.
//
// Reverse-strand occurrences carry end-relative negative offsets: an
// occurrence starting i characters before the node's end on the reverse
// strand has Offset -(i+1), so -1 is the node's last base read backward.
type Kmer struct {
	Seq      []byte
	Pos      vgraph.Position
	Backward bool
}

// KmerPosition is a k-mer occurrence annotated with its graph context:
// the characters that can precede it, the characters that can follow it,
// and the positions a traversal continues at immediately after it. This is
// the record shape the suffix-array index builder consumes.
type KmerPosition struct {
	Kmer          []byte            `msgpack:"kmer"`
	Pos           vgraph.Position   `msgpack:"pos"`
	Backward      bool              `msgpack:"rev,omitempty"`
	PrevChars     []byte            `msgpack:"prev,omitempty"`
	NextChars     []byte            `msgpack:"next,omitempty"`
	NextPositions []vgraph.Position `msgpack:"next_pos,omitempty"`
}

// traversal bundles the parameters of one per-graph k-mer walk.
type traversal struct {
	k              int
	stride         int
	edgeMax        int
	pathOnly       bool
	forwardOnly    bool
	allowNegatives bool
	workers        int
}

// forEachKmerParallel visits every k-mer occurrence of g with a pool of
// workers. Nodes are dealt out over a channel; each worker walks its nodes
// independently and reports occurrences through handle together with its
// own worker id, so handlers can keep per-worker state without locking.
// Emission order across workers is unspecified.
func forEachKmerParallel(g *vgraph.Graph, t traversal, handle func(worker int, kp KmerPosition) error) error {
	workers := defaultWorkers(t.workers)

	var pathAdj map[[2]int64]struct{}
	if t.pathOnly {
		pathAdj = g.PathAdjacency()
	}

	jobs := make(chan int64)
	eg, ctx := errgroup.WithContext(context.Background())

	eg.Go(func() error {
		defer close(jobs)
		for _, id := range g.SortedNodeIDs() {
			select {
			case jobs <- id:
			case <-ctx.Done():
				return nil
			}
		}
		return nil
	})

	for w := 0; w < workers; w++ {
		w := w
		v := &kmerVisitor{g: g, t: t, pathAdj: pathAdj}
		eg.Go(func() error {
			for id := range jobs {
				err := v.visitNode(id, func(kp KmerPosition) error {
					return handle(w, kp)
				})
				if err != nil {
					return err
				}
			}
			return nil
		})
	}

	return eg.Wait()
}

// kmerVisitor walks k-mers starting on one node at a time. Visitors are
// per-worker; they share the graph read-only.
type kmerVisitor struct {
	g       *vgraph.Graph
	t       traversal
	pathAdj map[[2]int64]struct{}
}

// walkState aggregates, per distinct k-mer sequence discovered from one
// start position, the continuations seen across all branch walks.
type walkState struct {
	nextChars map[byte]struct{}
	nextPos   map[vgraph.Position]struct{}
}

func (v *kmerVisitor) visitNode(id int64, emit func(KmerPosition) error) error {
	n := v.g.Node(id)
	stride := v.t.stride
	if stride < 1 {
		stride = 1
	}

	for off := 0; off < len(n.Sequence); off += stride {
		if err := v.walkFrom(n, off, false, emit); err != nil {
			return err
		}
		if !v.t.forwardOnly && v.t.allowNegatives {
			if err := v.walkFrom(n, off, true, emit); err != nil {
				return err
			}
		}
	}
	return nil
}

// walkFrom explores every traversal of length k starting at strand offset
// off of node n, then emits one annotated record per distinct k-mer
// sequence found there. Branches that run out of graph before reaching k
// characters yield nothing.
func (v *kmerVisitor) walkFrom(n *vgraph.Node, off int, backward bool, emit func(KmerPosition) error) error {
	results := map[string]*walkState{}
	buf := make([]byte, 0, v.t.k)
	v.extend(buf, n, off, backward, 0, results)
	if len(results) == 0 {
		return nil
	}

	prevChars := v.prevChars(n, off, backward)
	pos := strandPosition(n, off, backward)

	// deterministic per-start emission order
	seqs := make([]string, 0, len(results))
	for seq := range results {
		seqs = append(seqs, seq)
	}
	sort.Strings(seqs)

	for _, seq := range seqs {
		st := results[seq]
		kp := KmerPosition{
			Kmer:          []byte(seq),
			Pos:           pos,
			Backward:      backward,
			PrevChars:     sortedChars(prevChars),
			NextChars:     sortedChars(st.nextChars),
			NextPositions: sortedPositions(st.nextPos),
		}
		if err := emit(kp); err != nil {
			return err
		}
	}
	return nil
}

// extend accumulates strand characters into buf until the k-mer is
// complete or the current node runs out; in the latter case it branches
// across outgoing edges, bounded by edgeMax.
func (v *kmerVisitor) extend(buf []byte, n *vgraph.Node, idx int, backward bool, edgesCrossed int, results map[string]*walkState) {
	seq := v.strand(n, backward)
	for idx < len(seq) && len(buf) < v.t.k {
		buf = append(buf, seq[idx])
		idx++
	}

	if len(buf) == v.t.k {
		st, ok := results[string(buf)]
		if !ok {
			st = &walkState{
				nextChars: map[byte]struct{}{},
				nextPos:   map[vgraph.Position]struct{}{},
			}
			results[string(buf)] = st
		}
		if idx < len(seq) {
			st.nextChars[seq[idx]] = struct{}{}
			st.nextPos[strandPosition(n, idx, backward)] = struct{}{}
		} else {
			for _, sid := range v.successors(n.ID, backward) {
				sn := v.g.Node(sid)
				sseq := v.strand(sn, backward)
				if len(sseq) == 0 {
					continue
				}
				st.nextChars[sseq[0]] = struct{}{}
				st.nextPos[strandPosition(sn, 0, backward)] = struct{}{}
			}
		}
		return
	}

	if v.t.edgeMax > 0 && edgesCrossed >= v.t.edgeMax {
		return
	}
	for _, sid := range v.successors(n.ID, backward) {
		sn := v.g.Node(sid)
		branch := append(make([]byte, 0, v.t.k), buf...)
		v.extend(branch, sn, 0, backward, edgesCrossed+1, results)
	}
}

// successors returns the nodes a strand traversal continues at after
// running off the end of id. On the reverse strand these are the forward
// predecessors. Path-restricted traversals only cross edges whose forward
// orientation is a consecutive pair on some stored path.
func (v *kmerVisitor) successors(id int64, backward bool) []int64 {
	var succs []int64
	if backward {
		succs = v.g.PrevNodes(id)
	} else {
		succs = v.g.NextNodes(id)
	}
	if v.pathAdj == nil {
		return succs
	}

	out := succs[:0:0]
	for _, s := range succs {
		pair := [2]int64{id, s}
		if backward {
			pair = [2]int64{s, id}
		}
		if _, ok := v.pathAdj[pair]; ok {
			out = append(out, s)
		}
	}
	return out
}

// prevChars collects the characters that can immediately precede strand
// offset off of node n. Empty when the occurrence starts at the very
// beginning of the graph.
func (v *kmerVisitor) prevChars(n *vgraph.Node, off int, backward bool) map[byte]struct{} {
	out := map[byte]struct{}{}
	seq := v.strand(n, backward)
	if off > 0 {
		out[seq[off-1]] = struct{}{}
		return out
	}
	for _, pid := range v.predecessors(n.ID, backward) {
		pn := v.g.Node(pid)
		pseq := v.strand(pn, backward)
		if len(pseq) > 0 {
			out[pseq[len(pseq)-1]] = struct{}{}
		}
	}
	return out
}

func (v *kmerVisitor) predecessors(id int64, backward bool) []int64 {
	if backward {
		return v.g.NextNodes(id)
	}
	return v.g.PrevNodes(id)
}

// strand returns the characters of n as read in the given orientation.
func (v *kmerVisitor) strand(n *vgraph.Node, backward bool) []byte {
	if !backward {
		return n.Sequence
	}
	return reverseComplement(n.Sequence)
}

// strandPosition maps a strand offset to an emitted position; see Kmer for
// the reverse-strand encoding.
func strandPosition(n *vgraph.Node, idx int, backward bool) vgraph.Position {
	if !backward {
		return vgraph.Position{NodeID: n.ID, Offset: int64(idx)}
	}
	return vgraph.Position{NodeID: n.ID, Offset: -int64(idx) - 1}
}

func reverseComplement(seq []byte) []byte {
	out := make([]byte, len(seq))
	for i, c := range seq {
		out[len(seq)-1-i] = complementChar(c)
	}
	return out
}

func complementChar(c byte) byte {
	switch c {
	case 'A':
		return 'T'
	case 'T':
		return 'A'
	case 'C':
		return 'G'
	case 'G':
		return 'C'
	default:
		// sentinel and ambiguity characters are their own complement
		return c
	}
}

// allACGT reports whether the k-mer consists only of the canonical
// four-symbol alphabet. Anything else never reaches the persistent index.
func allACGT(seq []byte) bool {
	for _, c := range seq {
		switch c {
		case 'A', 'C', 'G', 'T':
		default:
			return false
		}
	}
	return true
}

func sortedChars(set map[byte]struct{}) []byte {
	if len(set) == 0 {
		return nil
	}
	out := make([]byte, 0, len(set))
	for c := range set {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func sortedPositions(set map[vgraph.Position]struct{}) []vgraph.Position {
	if len(set) == 0 {
		return nil
	}
	out := make([]vgraph.Position, 0, len(set))
	for p := range set {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].NodeID != out[j].NodeID {
			return out[i].NodeID < out[j].NodeID
		}
		return out[i].Offset < out[j].Offset
	})
	return out
}
