// Copyright (c) 2026 The Cactus developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package eventlog

import (
	"github.com/cactusfi/cactus/metrics"
)

var (
	metricWritten     = metrics.LazyLoadCounter("eventlog_written_count")
	metricQueryParams = metrics.LazyLoadCounterVec("eventlog_query_parameters", []string{"parameters"})
	metricLimitBucket = metrics.LazyLoadHistogram("eventlog_query_limit_bucket", []int64{
		0, 5, 10, 25, 50, 100, 250, 500, 1000,
	})
)

func observeFilter(f *Filter) {
	params := "none"
	switch {
	case f.User != nil && len(f.Kinds) > 0:
		params = "user,kind"
	case f.User != nil:
		params = "user"
	case len(f.Kinds) > 0:
		params = "kind"
	}
	if f.Range != nil {
		params += ",range"
	}
	metricQueryParams().AddWithLabel(1, map[string]string{"parameters": params})
	if f.Options != nil {
		limit := min(f.Options.Limit, 1001)
		metricLimitBucket().Observe(int64(limit))
	}
}
