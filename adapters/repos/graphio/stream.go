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

// Package graphio reads and writes variation graphs as gzip-compressed
// streams of length-framed msgpack fragments. The fragment framing keeps
// memory bounded on read: a consumer sees one bounded fragment at a time
// and never needs the whole graph resident unless it asks for it.
package graphio

import (
	"bufio"
	"compress/gzip"
	"encoding/binary"
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/weaviate/vgset/entities/vgraph"
)

const (
	// magic marks the start of a graph stream, before compression framing
	// is peeled off it is the gzip magic; inside it is ours.
	magic uint32 = 0x76677374 // "vgst"

	formatVersion uint8 = 1

	// DefaultChunkNodes bounds how many nodes a single fragment carries.
	DefaultChunkNodes = 1000
)

// WriteStream writes the graph to w as a fragment stream. chunkNodes <= 0
// writes the whole graph as one fragment.
func WriteStream(w io.Writer, g *vgraph.Graph, chunkNodes int) error {
	gzw := gzip.NewWriter(w)
	bw := bufio.NewWriter(gzw)

	if err := binary.Write(bw, binary.LittleEndian, magic); err != nil {
		return errors.Wrap(err, "write magic")
	}
	if err := binary.Write(bw, binary.LittleEndian, formatVersion); err != nil {
		return errors.Wrap(err, "write version")
	}

	for i, frag := range g.ToFragments(chunkNodes) {
		payload, err := msgpack.Marshal(frag)
		if err != nil {
			return errors.Wrapf(err, "marshal fragment %d", i)
		}
		if err := binary.Write(bw, binary.LittleEndian, uint32(len(payload))); err != nil {
			return errors.Wrapf(err, "write fragment %d length", i)
		}
		if _, err := bw.Write(payload); err != nil {
			return errors.Wrapf(err, "write fragment %d", i)
		}
	}

	if err := bw.Flush(); err != nil {
		return errors.Wrap(err, "flush")
	}
	return errors.Wrap(gzw.Close(), "close gzip stream")
}

// ForEachFragment streams fragments out of r in file order, invoking fn
// once per fragment. It never materializes more than one fragment at a
// time. fn errors abort the stream.
func ForEachFragment(r io.Reader, fn func(*vgraph.Fragment) error) error {
	gzr, err := gzip.NewReader(r)
	if err != nil {
		return errors.Wrap(err, "open gzip stream")
	}
	defer gzr.Close()

	br := bufio.NewReader(gzr)

	var m uint32
	if err := binary.Read(br, binary.LittleEndian, &m); err != nil {
		return errors.Wrap(err, "read magic")
	}
	if m != magic {
		return errors.Errorf("not a graph stream: magic %08x", m)
	}
	var version uint8
	if err := binary.Read(br, binary.LittleEndian, &version); err != nil {
		return errors.Wrap(err, "read version")
	}
	if version != formatVersion {
		return errors.Errorf("unsupported graph stream version %d", version)
	}

	for {
		var length uint32
		if err := binary.Read(br, binary.LittleEndian, &length); err != nil {
			if err == io.EOF {
				return nil
			}
			return errors.Wrap(err, "read fragment length")
		}

		payload := make([]byte, length)
		if _, err := io.ReadFull(br, payload); err != nil {
			return errors.Wrap(err, "read fragment")
		}

		frag := &vgraph.Fragment{}
		if err := msgpack.Unmarshal(payload, frag); err != nil {
			return errors.Wrap(err, "unmarshal fragment")
		}

		if err := fn(frag); err != nil {
			return err
		}
	}
}

// ReadStream assembles a whole graph from a fragment stream.
func ReadStream(r io.Reader) (*vgraph.Graph, error) {
	g := vgraph.New()
	err := ForEachFragment(r, func(frag *vgraph.Fragment) error {
		g.AddFragment(frag)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return g, nil
}

// StdinToken is the set-member name that stands for standard input. A set
// may read it at most once.
const StdinToken = "-"

// Open returns a reader for the named graph source. A failure to open is
// an unrecoverable configuration error for the whole set operation, so the
// error names the offending source.
func Open(name string) (io.ReadCloser, error) {
	if name == StdinToken {
		return io.NopCloser(os.Stdin), nil
	}
	f, err := os.Open(name)
	if err != nil {
		return nil, errors.Wrapf(err, "open graph source %q", name)
	}
	return f, nil
}

// Load reads the whole graph behind name into memory and labels it with
// its source name.
func Load(name string) (*vgraph.Graph, error) {
	in, err := Open(name)
	if err != nil {
		return nil, err
	}
	defer in.Close()

	g, err := ReadStream(in)
	if err != nil {
		return nil, errors.Wrapf(err, "read graph %q", name)
	}
	g.SetName(name)
	return g, nil
}

// Store rewrites the graph to the named destination. Writing back to the
// stdin token is refused: a streamed source has no rewrite destination.
func Store(name string, g *vgraph.Graph, chunkNodes int) error {
	if name == StdinToken {
		return errors.New("cannot write a graph back to standard input")
	}
	f, err := os.Create(name)
	if err != nil {
		return errors.Wrapf(err, "open graph destination %q", name)
	}
	if err := WriteStream(f, g, chunkNodes); err != nil {
		f.Close()
		return errors.Wrapf(err, "write graph %q", name)
	}
	return errors.Wrapf(f.Close(), "close graph destination %q", name)
}
