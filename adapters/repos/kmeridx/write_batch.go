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
	"github.com/dgraph-io/badger/v4"
	"github.com/pkg/errors"
)

// WriteBatch accumulates k-mer occurrences and submits them to the store
// as one atomic batched write. A batch belongs to a single caller; the
// store itself serializes concurrent Flush calls from different batches.
type WriteBatch struct {
	wb *badger.WriteBatch
}

func (i *Index) NewWriteBatch() *WriteBatch {
	return &WriteBatch{wb: i.db.NewWriteBatch()}
}

// PutKmer adds one occurrence of seq at (nodeID, offset) with the given
// orientation. The occurrence is fully encoded in the key; the value stays
// empty.
func (b *WriteBatch) PutKmer(seq []byte, nodeID, offset int64, backward bool) error {
	err := b.wb.Set(kmerKey(seq, nodeID, offset, backward), nil)
	return errors.Wrapf(err, "batch kmer %q", seq)
}

// Flush submits the batch. A flush failure is fatal for the operation that
// produced the batch; it is never retried.
func (b *WriteBatch) Flush() error {
	return errors.Wrap(b.wb.Flush(), "flush kmer batch")
}

// Cancel discards the batch without writing.
func (b *WriteBatch) Cancel() {
	b.wb.Cancel()
}
