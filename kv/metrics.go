// Copyright (c) 2026 The Cactus developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package kv

import "github.com/cactusfi/cactus/metrics"

var (
	metricBulkWrites = metrics.LazyLoadCounterVec("kv_bulk_writes_count", []string{"engine", "result"})
	metricBulkOps    = metrics.LazyLoadHistogramVec("kv_bulk_ops", []string{"engine"}, []int64{0, 1, 2, 4, 8, 16, 64, 256})
)

// ObserveBulkWrite records a bulk write of ops entries by engine.
func ObserveBulkWrite(engine string, ops int, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	metricBulkWrites().AddWithLabel(1, map[string]string{"engine": engine, "result": result})
	metricBulkOps().ObserveWithLabels(int64(ops), map[string]string{"engine": engine})
}
