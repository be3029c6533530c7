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
	"bytes"
	"os"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weaviate/vgset/entities/vgraph"
)

func TestWriteGCSAOut(t *testing.T) {
	dir := t.TempDir()
	file := writeGraphFile(t, dir, "g.vg", linearGraph("AC", "GT"), 0)

	var buf bytes.Buffer
	s := newTestSet(t, 0, file)
	err := s.WriteGCSAOut(&buf, GCSAConfig{
		KmerSize:    2,
		ForwardOnly: true,
		HeadID:      99,
		TailID:      100,
	})
	require.Nil(t, err)

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	sort.Strings(lines)

	assert.Equal(t, []string{
		"AC\t1:0\t$\tG\t2:0",
		"CG\t1:1\tA\tT\t2:1",
		"GT\t2:0\tC\t#\t99:0",
	}, lines)
}

func TestWriteGCSAOutFieldShape(t *testing.T) {
	dir := t.TempDir()
	file := writeGraphFile(t, dir, "g.vg", linearGraph("ACGTAC"), 0)

	var buf bytes.Buffer
	s := newTestSet(t, 0, file)
	err := s.WriteGCSAOut(&buf, GCSAConfig{KmerSize: 3, HeadID: 99, TailID: 100})
	require.Nil(t, err)

	for _, line := range strings.Split(strings.TrimRight(buf.String(), "\n"), "\n") {
		fields := strings.Split(line, "\t")
		require.Len(t, fields, 5, line)
		assert.Len(t, fields[0], 3)
		assert.Contains(t, fields[1], ":")
	}
}

func TestWriteGCSAKmersBinary(t *testing.T) {
	dir := t.TempDir()
	file := writeGraphFile(t, dir, "g.vg", linearGraph("AC"), 0)

	var buf bytes.Buffer
	s := newTestSet(t, 0, file)
	err := s.WriteGCSAKmersBinary(&buf, GCSAConfig{
		KmerSize:    2,
		ForwardOnly: true,
		HeadID:      10,
		TailID:      11,
	})
	require.Nil(t, err)

	var kmers []string
	err = ReadGCSAKmersBinary(&buf, func(kp KmerPosition) error {
		assert.Len(t, kp.Kmer, 2)
		kmers = append(kmers, string(kp.Kmer))
		return nil
	})
	require.Nil(t, err)

	// the sentinel-augmented graph is ## -> AC -> $$, read forward
	sort.Strings(kmers)
	assert.Equal(t, []string{"##", "#A", "$$", "AC", "C$"}, kmers)
}

func TestWriteGCSAKmersToTmpFiles(t *testing.T) {
	dir := t.TempDir()
	a := writeGraphFile(t, dir, "a.vg", linearGraph("ACG"), 0)
	b := writeGraphFile(t, dir, "b.vg", linearGraph("TTT"), 0)

	s := newTestSet(t, 0, a, b)
	names, err := s.WriteGCSAKmersToTmpFiles(GCSAConfig{
		KmerSize:    2,
		ForwardOnly: true,
		HeadID:      10,
		TailID:      11,
	})
	require.Nil(t, err)
	t.Cleanup(func() {
		for _, name := range names {
			os.Remove(name)
		}
	})

	// one file per graph, in set order
	require.Len(t, names, 2)

	for _, name := range names {
		f, err := os.Open(name)
		require.Nil(t, err)
		var n int
		err = ReadGCSAKmersBinary(f, func(kp KmerPosition) error {
			n++
			return nil
		})
		f.Close()
		require.Nil(t, err)
		assert.Greater(t, n, 0, name)
	}
}

func TestFormatGCSALineFallbacks(t *testing.T) {
	kp := KmerPosition{Kmer: []byte("GT"), Pos: vgraph.Position{NodeID: 2}}
	line := formatGCSALine(kp, 7)
	assert.Equal(t, "GT\t2:0\t$\t#\t7:0\n", line)
}

func TestFormatGCSALineJoins(t *testing.T) {
	kp := KmerPosition{
		Kmer:      []byte("GT"),
		Pos:       vgraph.Position{NodeID: 2, Offset: 1},
		PrevChars: []byte{'A', 'C'},
		NextChars: []byte{'G'},
		NextPositions: []vgraph.Position{
			{NodeID: 3}, {NodeID: 4},
		},
	}
	line := formatGCSALine(kp, 7)
	assert.Equal(t, "GT\t2:1\tA,C\tG\t3:0,4:0\n", line)
}
