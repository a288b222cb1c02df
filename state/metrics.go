// Copyright (c) 2025 The OdinVM developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import "github.com/odinvm/odin/metrics"

var (
	metricCommitCount = metrics.LazyLoadCounter("state_commit_count")
	metricLayerDepth  = metrics.LazyLoadGauge("state_layer_depth")
)
