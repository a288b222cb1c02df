// Copyright (c) 2025 The OdinVM developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package client

import "github.com/odinvm/odin/metrics"

var (
	metricRequestCount = metrics.LazyLoadCounterVec("client_request_count", []string{"kind"})
	metricQueueDepth   = metrics.LazyLoadGauge("client_queue_depth")
)
