// Copyright (c) 2025 The OdinVM developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package vm hosts executor implementations.
package vm

import (
	"github.com/pkg/errors"

	"github.com/odinvm/odin/runtime"
	"github.com/odinvm/odin/state"
	"github.com/odinvm/odin/tx"
)

// GasPerTransfer is the flat gas reported per value transfer.
const GasPerTransfer = 21000

// TransferVM is a minimal executor that moves value between externally
// owned accounts. It understands no bytecode; it exists to exercise the
// state backend and serves as the built-in executor of the demo node.
type TransferVM struct{}

var _ runtime.VM = (*TransferVM)(nil)

// Transact implements runtime.VM.
func (vm *TransferVM) Transact(reader state.Reader, trx *tx.Transaction) (*runtime.ExecutionResult, state.Changes, error) {
	if trx.To == nil {
		return nil, nil, errors.New("vm: contract creation not supported")
	}

	sender, err := reader.GetAccount(trx.From)
	if err != nil {
		return nil, nil, err
	}
	if trx.Nonce != nil && *trx.Nonce != sender.Nonce {
		return nil, nil, errors.Errorf("vm: nonce mismatch, want %d have %d", sender.Nonce, *trx.Nonce)
	}
	if sender.Balance.Lt(trx.Value) {
		// failed execution, no state changes
		return &runtime.ExecutionResult{ExitCode: 1, GasUsed: GasPerTransfer}, state.Changes{}, nil
	}

	sender.Balance.Sub(sender.Balance, trx.Value)
	sender.Nonce++

	recipient := sender
	if *trx.To != trx.From {
		if recipient, err = reader.GetAccount(*trx.To); err != nil {
			return nil, nil, err
		}
	}
	recipient.Balance.Add(recipient.Balance, trx.Value)

	changes := state.Changes{
		trx.From: {Account: *sender},
	}
	if *trx.To != trx.From {
		changes[*trx.To] = &state.AccountChange{Account: *recipient}
	}

	result := &runtime.ExecutionResult{
		ExitCode: 0,
		GasUsed:  GasPerTransfer,
	}
	return result, changes, nil
}
