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
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testIndex(t *testing.T) *Index {
	t.Helper()
	logger, _ := test.NewNullLogger()
	idx, err := New(Config{InMemory: true, Logger: logger})
	require.Nil(t, err)
	t.Cleanup(func() {
		require.Nil(t, idx.Close())
	})
	return idx
}

func TestBatchedWrites(t *testing.T) {
	idx := testIndex(t)

	wb := idx.NewWriteBatch()
	require.Nil(t, wb.PutKmer([]byte("ACG"), 1, 0, false))
	require.Nil(t, wb.PutKmer([]byte("CGT"), 1, 1, false))
	require.Nil(t, wb.PutKmer([]byte("ACG"), 7, 2, true))
	require.Nil(t, wb.Flush())

	n, err := idx.CountKmer([]byte("ACG"))
	require.Nil(t, err)
	assert.Equal(t, 2, n)

	n, err = idx.CountAll()
	require.Nil(t, err)
	assert.Equal(t, 3, n)
}

func TestDuplicateOccurrenceStoredOnce(t *testing.T) {
	idx := testIndex(t)

	wb := idx.NewWriteBatch()
	require.Nil(t, wb.PutKmer([]byte("ACG"), 1, 0, false))
	require.Nil(t, wb.PutKmer([]byte("ACG"), 1, 0, false))
	require.Nil(t, wb.Flush())

	n, err := idx.CountKmer([]byte("ACG"))
	require.Nil(t, err)
	assert.Equal(t, 1, n)
}

func TestOrientationDistinguishesOccurrences(t *testing.T) {
	idx := testIndex(t)

	wb := idx.NewWriteBatch()
	require.Nil(t, wb.PutKmer([]byte("ACG"), 1, 0, false))
	require.Nil(t, wb.PutKmer([]byte("ACG"), 1, 0, true))
	require.Nil(t, wb.Flush())

	n, err := idx.CountKmer([]byte("ACG"))
	require.Nil(t, err)
	assert.Equal(t, 2, n)
}

func TestRememberKmerSize(t *testing.T) {
	idx := testIndex(t)

	k, err := idx.KmerSize()
	require.Nil(t, err)
	assert.Equal(t, 0, k)

	require.Nil(t, idx.RememberKmerSize(11))

	k, err = idx.KmerSize()
	require.Nil(t, err)
	assert.Equal(t, 11, k)
}

func TestCancelDiscardsBatch(t *testing.T) {
	idx := testIndex(t)

	wb := idx.NewWriteBatch()
	require.Nil(t, wb.PutKmer([]byte("ACG"), 1, 0, false))
	wb.Cancel()

	n, err := idx.CountAll()
	require.Nil(t, err)
	assert.Equal(t, 0, n)
}
