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

// Package monitoring exposes Prometheus instrumentation for set indexing.
// Metrics are an injected collaborator: components receive a *Metrics and
// never reach for a global registry. A nil *Metrics disables all
// instrumentation.
package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	GraphsProcessed    prometheus.Counter
	ChunksForwarded    prometheus.Counter
	KmersIndexed       prometheus.Counter
	BatchesFlushed     prometheus.Counter
	GCSARecordsOut     prometheus.Counter
	PathsReconstructed prometheus.Counter
}

// NewMetrics registers the indexing metrics with reg. Pass
// prometheus.DefaultRegisterer in production, a fresh registry in tests.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		GraphsProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "vgset_graphs_processed_total",
			Help: "Graphs fully processed across all set operations",
		}),
		ChunksForwarded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "vgset_chunks_forwarded_total",
			Help: "Graph chunks forwarded to the succinct index builder",
		}),
		KmersIndexed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "vgset_kmers_indexed_total",
			Help: "Kmer occurrences appended to worker buffers",
		}),
		BatchesFlushed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "vgset_batches_flushed_total",
			Help: "Batched writes submitted to the kmer index",
		}),
		GCSARecordsOut: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "vgset_gcsa_records_total",
			Help: "GCSA kmer records written to streams or temp files",
		}),
		PathsReconstructed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "vgset_paths_reconstructed_total",
			Help: "Paths reconstructed from spliced chunk streams",
		}),
	}
	reg.MustRegister(m.GraphsProcessed, m.ChunksForwarded, m.KmersIndexed,
		m.BatchesFlushed, m.GCSARecordsOut, m.PathsReconstructed)
	return m
}

// nil-safe increment helpers, so call sites don't guard on m

func (m *Metrics) IncGraphsProcessed() {
	if m != nil {
		m.GraphsProcessed.Inc()
	}
}

func (m *Metrics) IncChunksForwarded() {
	if m != nil {
		m.ChunksForwarded.Inc()
	}
}

func (m *Metrics) AddKmersIndexed(n int) {
	if m != nil {
		m.KmersIndexed.Add(float64(n))
	}
}

func (m *Metrics) IncBatchesFlushed() {
	if m != nil {
		m.BatchesFlushed.Inc()
	}
}

func (m *Metrics) AddGCSARecords(n int) {
	if m != nil {
		m.GCSARecordsOut.Add(float64(n))
	}
}

func (m *Metrics) AddPathsReconstructed(n int) {
	if m != nil {
		m.PathsReconstructed.Add(float64(n))
	}
}
