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
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/weaviate/vgset/entities/vgraph"
)

// Sentinel characters for GCSA output. The head sentinel node carries
// GCSAStartChar, the tail sentinel GCSAEndChar. In the text export, '$'
// stands in for "no preceding character" and '#' for "no following
// character", matching what the suffix-array builder expects.
const (
	GCSAStartChar = '#'
	GCSAEndChar   = '$'
)

// GCSAConfig configures an export pass for the suffix-array index
// builder.
type GCSAConfig struct {
	KmerSize    int
	PathOnly    bool
	ForwardOnly bool

	// HeadID and TailID are the caller-assigned ids of the sentinel
	// head/tail nodes. They must not collide with ids of any graph in
	// the set; after MergeIDSpace, two ids above the returned maximum
	// are safe.
	HeadID int64
	TailID int64

	Workers int
}

func (cfg GCSAConfig) traversal() traversal {
	return traversal{
		k:              cfg.KmerSize,
		stride:         1,
		pathOnly:       cfg.PathOnly,
		forwardOnly:    cfg.ForwardOnly,
		allowNegatives: true,
		workers:        cfg.Workers,
	}
}

// WriteGCSAOut writes one position-annotated text line per k-mer
// occurrence across the whole set. Line emission is atomic: a mutex
// guards the shared stream so lines never interleave, but the relative
// order of lines from different workers is unspecified.
func (s *Set) WriteGCSAOut(w io.Writer, cfg GCSAConfig) error {
	bw := bufio.NewWriter(w)
	var mu sync.Mutex

	err := s.ForEach(func(g *vgraph.Graph) error {
		s.progress.Start("writing gcsa kmers", g.Name())
		err := forEachKmerParallel(g, cfg.traversal(), func(_ int, kp KmerPosition) error {
			line := formatGCSALine(kp, cfg.HeadID)
			mu.Lock()
			_, err := bw.WriteString(line)
			mu.Unlock()
			if err != nil {
				return errors.Wrap(err, "write gcsa line")
			}
			s.metrics.AddGCSARecords(1)
			return nil
		})
		if err != nil {
			return errors.Wrapf(err, "gcsa kmers of %q", g.Name())
		}
		s.progress.Done("writing gcsa kmers", g.Name())
		return nil
	})
	if err != nil {
		return err
	}
	return errors.Wrap(bw.Flush(), "flush gcsa output")
}

// formatGCSALine renders one record as the tab-separated line the
// suffix-array builder parses: kmer, start position, comma-joined
// predecessor characters ($ if none), comma-joined successor characters
// (# if none), comma-joined successor positions (the head sentinel
// position if none).
func formatGCSALine(kp KmerPosition, headID int64) string {
	var b strings.Builder
	b.Write(kp.Kmer)
	b.WriteByte('\t')
	b.WriteString(formatPosition(kp.Pos))
	b.WriteByte('\t')

	if len(kp.PrevChars) == 0 {
		b.WriteByte(GCSAEndChar)
	} else {
		for i, c := range kp.PrevChars {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteByte(c)
		}
	}
	b.WriteByte('\t')

	if len(kp.NextChars) == 0 {
		b.WriteByte(GCSAStartChar)
	} else {
		for i, c := range kp.NextChars {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteByte(c)
		}
	}
	b.WriteByte('\t')

	if len(kp.NextPositions) == 0 {
		b.WriteString(fmt.Sprintf("%d:0", headID))
	} else {
		for i, p := range kp.NextPositions {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(formatPosition(p))
		}
	}
	b.WriteByte('\n')
	return b.String()
}

func formatPosition(p vgraph.Position) string {
	return strconv.FormatInt(p.NodeID, 10) + ":" + strconv.FormatInt(p.Offset, 10)
}

// WriteGCSAKmersBinary streams length-framed binary k-mer records for the
// whole set into one shared writer. Each graph is first augmented with
// sentinel head/tail nodes so boundary k-mers read sentinel characters.
// Record emission is atomic per record, guarded by a mutex.
func (s *Set) WriteGCSAKmersBinary(w io.Writer, cfg GCSAConfig) error {
	bw := bufio.NewWriter(w)
	var mu sync.Mutex

	err := s.ForEach(func(g *vgraph.Graph) error {
		return s.writeGCSAKmersForGraph(g, bw, &mu, cfg)
	})
	if err != nil {
		return err
	}
	return errors.Wrap(bw.Flush(), "flush gcsa binary output")
}

// WriteGCSAKmersToTmpFiles writes one temporary file of binary k-mer
// records per graph in the set and returns the file names in set order.
// The caller owns the files; the out-of-core suffix-array construction
// merges and sorts them externally.
func (s *Set) WriteGCSAKmersToTmpFiles(cfg GCSAConfig) ([]string, error) {
	var names []string
	err := s.ForEach(func(g *vgraph.Graph) error {
		f, err := os.CreateTemp("", "vgset-gcsa-*.kmers")
		if err != nil {
			return errors.Wrapf(err, "create gcsa tmpfile for %q", g.Name())
		}
		names = append(names, f.Name())

		bw := bufio.NewWriter(f)
		var mu sync.Mutex
		if err := s.writeGCSAKmersForGraph(g, bw, &mu, cfg); err != nil {
			f.Close()
			return err
		}
		if err := bw.Flush(); err != nil {
			f.Close()
			return errors.Wrapf(err, "flush gcsa tmpfile for %q", g.Name())
		}
		return errors.Wrapf(f.Close(), "close gcsa tmpfile for %q", g.Name())
	})
	if err != nil {
		return nil, err
	}
	return names, nil
}

func (s *Set) writeGCSAKmersForGraph(g *vgraph.Graph, w *bufio.Writer, mu *sync.Mutex, cfg GCSAConfig) error {
	s.progress.Start("writing gcsa kmers", g.Name())
	g.AddStartEndMarkers(cfg.KmerSize, GCSAStartChar, GCSAEndChar, cfg.HeadID, cfg.TailID)

	err := forEachKmerParallel(g, cfg.traversal(), func(_ int, kp KmerPosition) error {
		payload, err := msgpack.Marshal(&kp)
		if err != nil {
			return errors.Wrap(err, "marshal gcsa record")
		}
		mu.Lock()
		defer mu.Unlock()
		if err := binary.Write(w, binary.LittleEndian, uint32(len(payload))); err != nil {
			return errors.Wrap(err, "write gcsa record length")
		}
		if _, err := w.Write(payload); err != nil {
			return errors.Wrap(err, "write gcsa record")
		}
		s.metrics.AddGCSARecords(1)
		return nil
	})
	if err != nil {
		return errors.Wrapf(err, "gcsa kmers of %q", g.Name())
	}
	s.progress.Done("writing gcsa kmers", g.Name())
	return nil
}

// ReadGCSAKmersBinary decodes a binary record stream produced by the
// binary export, invoking fn per record in stream order.
func ReadGCSAKmersBinary(r io.Reader, fn func(KmerPosition) error) error {
	br := bufio.NewReader(r)
	for {
		var length uint32
		if err := binary.Read(br, binary.LittleEndian, &length); err != nil {
			if err == io.EOF {
				return nil
			}
			return errors.Wrap(err, "read gcsa record length")
		}
		payload := make([]byte, length)
		if _, err := io.ReadFull(br, payload); err != nil {
			return errors.Wrap(err, "read gcsa record")
		}
		var kp KmerPosition
		if err := msgpack.Unmarshal(payload, &kp); err != nil {
			return errors.Wrap(err, "unmarshal gcsa record")
		}
		if err := fn(kp); err != nil {
			return err
		}
	}
}
