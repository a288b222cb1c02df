// Copyright (c) 2025 The OdinVM developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api

import (
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/holiman/uint256"

	"github.com/odinvm/odin/odin"
	"github.com/odinvm/odin/runtime"
	"github.com/odinvm/odin/state"
	"github.com/odinvm/odin/tx"
)

// Account is the wire form of a state account.
type Account struct {
	Balance  *uint256.Int   `json:"balance"`
	Nonce    hexutil.Uint64 `json:"nonce"`
	CodeHash odin.Bytes32   `json:"codeHash"`
	Code     hexutil.Bytes  `json:"code,omitempty"`
}

func convertAccount(acc *state.Account) *Account {
	return &Account{
		Balance:  acc.Balance,
		Nonce:    hexutil.Uint64(acc.Nonce),
		CodeHash: acc.CodeHash,
		Code:     acc.Code,
	}
}

func (a *Account) toState() *state.Account {
	acc := &state.Account{
		Nonce:    uint64(a.Nonce),
		CodeHash: a.CodeHash,
		Code:     a.Code,
	}
	if a.Balance != nil {
		acc.Balance = a.Balance
	} else {
		acc.Balance = new(uint256.Int)
	}
	return acc
}

// Quantity wraps a single 256-bit value payload.
type Quantity struct {
	Value *uint256.Int `json:"value"`
}

// Nonce wraps a nonce payload.
type Nonce struct {
	Value hexutil.Uint64 `json:"value"`
}

// Code wraps a code payload.
type Code struct {
	Code hexutil.Bytes `json:"code"`
}

// StorageSlot wraps a storage write payload.
type StorageSlot struct {
	Key   odin.Bytes32 `json:"key"`
	Value odin.Bytes32 `json:"value"`
}

// Block wraps a block-hash insertion payload.
type Block struct {
	Number hexutil.Uint64 `json:"number"`
	Hash   odin.Bytes32   `json:"hash"`
}

// AccessItem is the wire form of one access-list entry.
type AccessItem struct {
	Address     odin.Address   `json:"address"`
	StorageKeys []odin.Bytes32 `json:"storageKeys"`
}

// Transaction is the wire form of an executor transaction.
type Transaction struct {
	From        *odin.Address   `json:"from"`
	To          *odin.Address   `json:"to"`
	GasLimit    *hexutil.Uint64 `json:"gasLimit"`
	GasPrice    *uint256.Int    `json:"gasPrice"`
	PriorityFee *uint256.Int    `json:"priorityFee"`
	Value       *uint256.Int    `json:"value"`
	Nonce       *hexutil.Uint64 `json:"nonce"`
	Input       hexutil.Bytes   `json:"input"`
	AccessList  []AccessItem    `json:"accessList"`
	ChainID     *hexutil.Uint64 `json:"chainId"`
}

func (t *Transaction) toTx() *tx.Transaction {
	trx := &tx.Transaction{
		To:          t.To,
		GasPrice:    t.GasPrice,
		PriorityFee: t.PriorityFee,
		Value:       t.Value,
		Input:       t.Input,
	}
	if t.From != nil {
		trx.From = *t.From
	}
	if t.GasLimit != nil {
		trx.GasLimit = uint64(*t.GasLimit)
	}
	if t.Nonce != nil {
		nonce := uint64(*t.Nonce)
		trx.Nonce = &nonce
	}
	if t.ChainID != nil {
		chainID := uint64(*t.ChainID)
		trx.ChainID = &chainID
	}
	for _, item := range t.AccessList {
		trx.AccessList = append(trx.AccessList, tx.AccessItem{
			Address:     item.Address,
			StorageKeys: item.StorageKeys,
		})
	}
	return trx
}

// Log is the wire form of one execution log record.
type Log struct {
	Address odin.Address   `json:"address"`
	Topics  []odin.Bytes32 `json:"topics"`
	Data    hexutil.Bytes  `json:"data"`
}

// ExecutionResult is the wire form of a transaction's outcome.
type ExecutionResult struct {
	ExitCode        uint8          `json:"exitCode"`
	Output          hexutil.Bytes  `json:"output,omitempty"`
	ContractAddress *odin.Address  `json:"contractAddress,omitempty"`
	GasUsed         hexutil.Uint64 `json:"gasUsed"`
	GasRefunded     hexutil.Uint64 `json:"gasRefunded"`
	Logs            []Log          `json:"logs"`
}

func convertResult(result *runtime.ExecutionResult) *ExecutionResult {
	out := &ExecutionResult{
		ExitCode:        result.ExitCode,
		Output:          result.Output.Data,
		ContractAddress: result.Output.ContractAddress,
		GasUsed:         hexutil.Uint64(result.GasUsed),
		GasRefunded:     hexutil.Uint64(result.GasRefunded),
		Logs:            make([]Log, 0, len(result.Logs)),
	}
	for _, l := range result.Logs {
		out.Logs = append(out.Logs, Log{Address: l.Address, Topics: l.Topics, Data: l.Data})
	}
	return out
}

// AccountChange is the wire form of one entry of a dry run's state diff.
type AccountChange struct {
	Account        Account                 `json:"account"`
	Storage        map[string]odin.Bytes32 `json:"storage,omitempty"`
	Destroyed      bool                    `json:"destroyed,omitempty"`
	StorageCleared bool                    `json:"storageCleared,omitempty"`
}

func convertChanges(changes state.Changes) map[string]*AccountChange {
	out := make(map[string]*AccountChange, len(changes))
	for addr, change := range changes {
		converted := &AccountChange{
			Account:        *convertAccount(&change.Account),
			Destroyed:      change.Destroyed,
			StorageCleared: change.StorageCleared,
		}
		if len(change.Storage) > 0 {
			converted.Storage = make(map[string]odin.Bytes32, len(change.Storage))
			for key, value := range change.Storage {
				converted.Storage[key.String()] = value
			}
		}
		out[addr.String()] = converted
	}
	return out
}

// DryRunResult pairs an execution result with the state diff it produced.
type DryRunResult struct {
	Result  *ExecutionResult          `json:"result"`
	Changes map[string]*AccountChange `json:"changes"`
}
