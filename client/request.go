// Copyright (c) 2025 The OdinVM developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package client

import (
	"github.com/holiman/uint256"

	"github.com/odinvm/odin/odin"
	"github.com/odinvm/odin/runtime"
	"github.com/odinvm/odin/state"
	"github.com/odinvm/odin/tx"
)

// Request variants carried by the queue. Every variant owns a dedicated
// 1-slot reply channel consumed by exactly one caller.

type accountRequest struct {
	addr  odin.Address
	reply chan accountResponse
}

type accountResponse struct {
	account *state.Account
	err     error
}

type dryRunRequest struct {
	trx   *tx.Transaction
	reply chan dryRunResponse
}

type dryRunResponse struct {
	result  *runtime.ExecutionResult
	changes state.Changes
	err     error
}

type runRequest struct {
	trx   *tx.Transaction
	reply chan runResponse
}

type runResponse struct {
	result *runtime.ExecutionResult
	err    error
}

type insertAccountRequest struct {
	addr    odin.Address
	account *state.Account
	reply   chan error
}

type insertBlockRequest struct {
	number uint64
	hash   odin.Bytes32
	reply  chan error
}

type setBalanceRequest struct {
	addr    odin.Address
	balance *uint256.Int
	reply   chan error
}

type setNonceRequest struct {
	addr  odin.Address
	nonce uint64
	reply chan error
}

type setCodeRequest struct {
	addr  odin.Address
	code  []byte
	reply chan error
}

type setStorageRequest struct {
	addr       odin.Address
	key, value odin.Bytes32
	reply      chan error
}

type checkpointRequest struct {
	reply chan error
}

type revertRequest struct {
	reply chan error
}

func requestKind(item any) string {
	switch item.(type) {
	case *accountRequest:
		return "account"
	case *dryRunRequest:
		return "dry_run"
	case *runRequest:
		return "run"
	case *insertAccountRequest:
		return "insert_account"
	case *insertBlockRequest:
		return "insert_block"
	case *setBalanceRequest:
		return "set_balance"
	case *setNonceRequest:
		return "set_nonce"
	case *setCodeRequest:
		return "set_code"
	case *setStorageRequest:
		return "set_storage"
	case *checkpointRequest:
		return "checkpoint"
	case *revertRequest:
		return "revert"
	}
	return "unknown"
}
