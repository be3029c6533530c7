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

// Package kmeridx persists k-mer occurrences in an embedded BadgerDB
// key-value store. All writes go through batched submissions; the store
// serializes concurrent batch flushes internally, so many extraction
// workers may flush at once without coordination on our side.
package kmeridx

import (
	"encoding/binary"

	"github.com/dgraph-io/badger/v4"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const (
	kmerPrefix     = 'k'
	metaPrefix     = 'm'
	kmerSeparator  = 0x00
	orientForward  = 0x00
	orientBackward = 0x01
)

var metaKmerSizeKey = []byte{metaPrefix, 'k', 's'}

// Config configures the index store.
type Config struct {
	// Path is the store directory. Ignored when InMemory is set.
	Path string

	// InMemory keeps the whole store in RAM. Used in tests.
	InMemory bool

	// SyncWrites makes every flush durable before it returns.
	SyncWrites bool

	Logger logrus.FieldLogger
}

// Index is a persistent k-mer occurrence index.
type Index struct {
	db     *badger.DB
	logger logrus.FieldLogger
}

func New(cfg Config) (*Index, error) {
	opts := badger.DefaultOptions(cfg.Path).
		WithInMemory(cfg.InMemory).
		WithSyncWrites(cfg.SyncWrites).
		WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, errors.Wrapf(err, "open kmer index at %q", cfg.Path)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = logrus.New()
	}

	return &Index{db: db, logger: logger}, nil
}

func (i *Index) Close() error {
	return errors.Wrap(i.db.Close(), "close kmer index")
}

// RememberKmerSize records the configured k once for the whole index.
func (i *Index) RememberKmerSize(k int) error {
	val := make([]byte, 4)
	binary.BigEndian.PutUint32(val, uint32(k))
	err := i.db.Update(func(txn *badger.Txn) error {
		return txn.Set(metaKmerSizeKey, val)
	})
	return errors.Wrap(err, "remember kmer size")
}

// KmerSize returns the recorded k, or 0 if none was recorded yet.
func (i *Index) KmerSize() (int, error) {
	var k int
	err := i.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(metaKmerSizeKey)
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			k = int(binary.BigEndian.Uint32(val))
			return nil
		})
	})
	return k, errors.Wrap(err, "read kmer size")
}

// CountKmer returns how many occurrences of seq are stored.
func (i *Index) CountKmer(seq []byte) (int, error) {
	prefix := append([]byte{kmerPrefix}, seq...)
	prefix = append(prefix, kmerSeparator)
	n, err := i.countPrefix(prefix)
	return n, errors.Wrapf(err, "count kmer %q", seq)
}

// CountAll returns the total number of stored occurrences. Test and
// inspection surface, not used on the indexing path.
func (i *Index) CountAll() (int, error) {
	n, err := i.countPrefix([]byte{kmerPrefix})
	return n, errors.Wrap(err, "count kmers")
}

// kmerKey encodes one occurrence. Keys sort by k-mer first (big-endian
// numeric fields), so a prefix scan over a sequence finds all of its
// occurrences.
func kmerKey(seq []byte, nodeID, offset int64, backward bool) []byte {
	key := make([]byte, 0, 1+len(seq)+1+8+8+1)
	key = append(key, kmerPrefix)
	key = append(key, seq...)
	key = append(key, kmerSeparator)
	key = binary.BigEndian.AppendUint64(key, uint64(nodeID))
	key = binary.BigEndian.AppendUint64(key, uint64(offset))
	if backward {
		key = append(key, orientBackward)
	} else {
		key = append(key, orientForward)
	}
	return key
}
