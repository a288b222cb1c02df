// Copyright (c) 2025 The OdinVM developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package runtime couples a virtual machine with the layered state it
// executes against. The instruction interpreter and gas accounting live
// behind the VM interface; this package only decides whether a
// transaction's output becomes durable.
package runtime

import (
	"github.com/odinvm/odin/log"
	"github.com/odinvm/odin/odin"
	"github.com/odinvm/odin/state"
	"github.com/odinvm/odin/tx"
)

var logger = log.WithContext("pkg", "runtime")

// Log is one event record emitted during execution.
type Log struct {
	Address odin.Address
	Topics  []odin.Bytes32
	Data    []byte
}

// Output holds the return data of a call or creation.
type Output struct {
	Data            []byte
	ContractAddress *odin.Address // set for creations
}

// ExecutionResult is what a transaction execution reports back.
type ExecutionResult struct {
	ExitCode    uint8 // 0 means success
	Output      Output
	GasUsed     uint64
	GasRefunded uint64
	Logs        []Log
}

// VM executes one transaction against a read-only state view, returning the
// execution result and the change batch it produced. It must not mutate
// state through any other path.
type VM interface {
	Transact(reader state.Reader, trx *tx.Transaction) (*ExecutionResult, state.Changes, error)
}

// VMFunc adapts a plain function to the VM interface.
type VMFunc func(state.Reader, *tx.Transaction) (*ExecutionResult, state.Changes, error)

// Transact implements VM.
func (f VMFunc) Transact(reader state.Reader, trx *tx.Transaction) (*ExecutionResult, state.Changes, error) {
	return f(reader, trx)
}

// Runtime owns a VM instance and the state it runs over.
type Runtime struct {
	vm    VM
	state *state.LayeredState
}

// New creates a Runtime.
func New(vm VM, st *state.LayeredState) *Runtime {
	return &Runtime{
		vm:    vm,
		state: st,
	}
}

// State returns the underlying layered state.
func (r *Runtime) State() *state.LayeredState {
	return r.state
}

// DryRun executes trx without committing, returning the execution result
// together with the change batch it would have committed.
func (r *Runtime) DryRun(trx *tx.Transaction) (*ExecutionResult, state.Changes, error) {
	norm := trx.WithDefaults()
	result, changes, err := r.vm.Transact(r.state, &norm)
	if err != nil {
		return nil, nil, err
	}
	logger.Debug("dry run", "tx", trx.Hash().AbbrevString(), "gasUsed", result.GasUsed)
	return result, changes, nil
}

// Run executes trx and folds the resulting change batch into the active
// layer, returning the execution result only.
func (r *Runtime) Run(trx *tx.Transaction) (*ExecutionResult, error) {
	result, changes, err := r.DryRun(trx)
	if err != nil {
		return nil, err
	}
	r.state.Commit(changes)
	logger.Debug("committed", "tx", trx.Hash().AbbrevString(), "changed", len(changes))
	return result, nil
}
