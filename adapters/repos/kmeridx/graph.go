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

package kmeridx

import (
	"encoding/binary"

	"github.com/dgraph-io/badger/v4"
	"github.com/pkg/errors"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/weaviate/vgset/entities/vgraph"
)

const (
	nodePrefix = 'n'
	edgePrefix = 'e'
	pathPrefix = 'p'
)

// StoreGraph persists the graph's topology next to the k-mer records: one
// record per node, one per edge. Everything goes in as a single batched
// write.
func (i *Index) StoreGraph(g *vgraph.Graph) error {
	wb := i.db.NewWriteBatch()

	for _, id := range g.SortedNodeIDs() {
		n := g.Node(id)
		payload, err := msgpack.Marshal(n)
		if err != nil {
			wb.Cancel()
			return errors.Wrapf(err, "marshal node %d", id)
		}
		if err := wb.Set(nodeKey(id), payload); err != nil {
			wb.Cancel()
			return errors.Wrapf(err, "batch node %d", id)
		}
	}

	for _, e := range g.Edges() {
		if err := wb.Set(edgeKey(e.From, e.To), nil); err != nil {
			wb.Cancel()
			return errors.Wrapf(err, "batch edge %d-%d", e.From, e.To)
		}
	}

	return errors.Wrapf(wb.Flush(), "store graph %q", g.Name())
}

// StorePaths persists the graph's paths, one record per mapping keyed by
// path name and rank.
func (i *Index) StorePaths(g *vgraph.Graph) error {
	wb := i.db.NewWriteBatch()

	for _, p := range g.Paths() {
		for _, m := range p.Mappings {
			payload, err := msgpack.Marshal(&m)
			if err != nil {
				wb.Cancel()
				return errors.Wrapf(err, "marshal mapping of %q", p.Name)
			}
			if err := wb.Set(pathKey(p.Name, m.Rank), payload); err != nil {
				wb.Cancel()
				return errors.Wrapf(err, "batch mapping of %q", p.Name)
			}
		}
	}

	return errors.Wrapf(wb.Flush(), "store paths of %q", g.Name())
}

// Node reads one stored node back, or nil if the id is unknown.
func (i *Index) Node(id int64) (*vgraph.Node, error) {
	var node *vgraph.Node
	err := i.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(nodeKey(id))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			node = &vgraph.Node{}
			return msgpack.Unmarshal(val, node)
		})
	})
	return node, errors.Wrapf(err, "read node %d", id)
}

// CountNodes returns how many nodes are stored.
func (i *Index) CountNodes() (int, error) {
	n, err := i.countPrefix([]byte{nodePrefix})
	return n, errors.Wrap(err, "count nodes")
}

// CountPathMappings returns how many mappings are stored for the named
// path.
func (i *Index) CountPathMappings(name string) (int, error) {
	prefix := append([]byte{pathPrefix}, name...)
	prefix = append(prefix, kmerSeparator)
	n, err := i.countPrefix(prefix)
	return n, errors.Wrapf(err, "count mappings of %q", name)
}

func (i *Index) countPrefix(prefix []byte) (int, error) {
	var n int
	err := i.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			n++
		}
		return nil
	})
	return n, err
}

func nodeKey(id int64) []byte {
	key := make([]byte, 0, 9)
	key = append(key, nodePrefix)
	return binary.BigEndian.AppendUint64(key, uint64(id))
}

func edgeKey(from, to int64) []byte {
	key := make([]byte, 0, 17)
	key = append(key, edgePrefix)
	key = binary.BigEndian.AppendUint64(key, uint64(from))
	return binary.BigEndian.AppendUint64(key, uint64(to))
}

func pathKey(name string, rank int64) []byte {
	key := make([]byte, 0, 1+len(name)+1+8)
	key = append(key, pathPrefix)
	key = append(key, name...)
	key = append(key, kmerSeparator)
	return binary.BigEndian.AppendUint64(key, uint64(rank))
}
