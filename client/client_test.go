// Copyright (c) 2025 The OdinVM developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package client_test

import (
	"sync"
	"testing"

	"github.com/holiman/uint256"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odinvm/odin/client"
	"github.com/odinvm/odin/odin"
	"github.com/odinvm/odin/runtime"
	"github.com/odinvm/odin/state"
	"github.com/odinvm/odin/tx"
	"github.com/odinvm/odin/vm"
)

var (
	alice = odin.BytesToAddress([]byte{0x0a})
	bob   = odin.BytesToAddress([]byte{0x0b})
)

func newClient(t *testing.T) *client.Client {
	t.Helper()
	c := client.New(runtime.New(&vm.TransferVM{}, state.New()))
	t.Cleanup(c.Close)
	return c
}

func TestAccountByAddressDefaults(t *testing.T) {
	c := newClient(t)

	acc, err := c.AccountByAddress(alice)
	require.NoError(t, err)
	assert.True(t, acc.IsEmpty())
}

func TestSetters(t *testing.T) {
	c := newClient(t)
	code := []byte{0x60, 0x60}

	require.NoError(t, c.InsertAccount(alice, nil))
	require.NoError(t, c.SetBalance(alice, uint256.NewInt(1000)))
	require.NoError(t, c.SetNonce(alice, 7))
	require.NoError(t, c.SetCode(alice, code))
	require.NoError(t, c.SetStorageSlot(alice, odin.BytesToBytes32([]byte{1}), odin.BytesToBytes32([]byte{0xff})))
	require.NoError(t, c.InsertBlock(9, odin.BytesToBytes32([]byte{9})))

	acc, err := c.AccountByAddress(alice)
	require.NoError(t, err)
	assert.Equal(t, uint256.NewInt(1000), acc.Balance)
	assert.Equal(t, uint64(7), acc.Nonce)
	assert.Equal(t, odin.Keccak256(code), acc.CodeHash)
}

func TestRunAndDryRun(t *testing.T) {
	c := newClient(t)

	require.NoError(t, c.SetBalance(alice, uint256.NewInt(500)))

	trx := &tx.Transaction{From: alice, To: &bob, Value: uint256.NewInt(100)}

	result, changes, err := c.DryRun(trx)
	require.NoError(t, err)
	assert.Zero(t, result.ExitCode)
	assert.Len(t, changes, 2)

	// dry run left the state untouched
	acc, err := c.AccountByAddress(bob)
	require.NoError(t, err)
	assert.True(t, acc.Balance.IsZero())

	result, err = c.Run(trx)
	require.NoError(t, err)
	assert.Zero(t, result.ExitCode)

	acc, err = c.AccountByAddress(bob)
	require.NoError(t, err)
	assert.Equal(t, uint256.NewInt(100), acc.Balance)
}

func TestCheckpointRevert(t *testing.T) {
	c := newClient(t)

	require.NoError(t, c.SetBalance(alice, uint256.NewInt(100)))
	require.NoError(t, c.Checkpoint())
	require.NoError(t, c.SetBalance(alice, uint256.NewInt(50)))

	acc, err := c.AccountByAddress(alice)
	require.NoError(t, err)
	assert.Equal(t, uint256.NewInt(50), acc.Balance)

	require.NoError(t, c.Revert())

	acc, err = c.AccountByAddress(alice)
	require.NoError(t, err)
	assert.Equal(t, uint256.NewInt(100), acc.Balance)

	assert.True(t, errors.Is(c.Revert(), state.ErrNoCheckpoint))
}

func TestFIFOOrdering(t *testing.T) {
	c := newClient(t)

	// issued from one goroutine, later writes must win
	for i := range uint64(100) {
		require.NoError(t, c.SetNonce(alice, i))
	}

	acc, err := c.AccountByAddress(alice)
	require.NoError(t, err)
	assert.Equal(t, uint64(99), acc.Nonce)
}

func TestConcurrentCallers(t *testing.T) {
	c := newClient(t)

	const callers = 16
	var wg sync.WaitGroup
	for i := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			addr := odin.BytesToAddress([]byte{byte(i + 1)})
			assert.NoError(t, c.SetBalance(addr, uint256.NewInt(uint64(i+1))))
			acc, err := c.AccountByAddress(addr)
			assert.NoError(t, err)
			assert.Equal(t, uint256.NewInt(uint64(i+1)), acc.Balance)
		}()
	}
	wg.Wait()
}

func TestClosedClient(t *testing.T) {
	c := client.New(runtime.New(&vm.TransferVM{}, state.New()))
	c.Close()

	assert.True(t, errors.Is(c.SetNonce(alice, 1), client.ErrClosed))
	_, err := c.AccountByAddress(alice)
	assert.True(t, errors.Is(err, client.ErrClosed))
	assert.NoError(t, c.Err())
}

func TestCloseProcessesQueuedRequests(t *testing.T) {
	c := client.New(runtime.New(&vm.TransferVM{}, state.New()))

	for i := range uint64(50) {
		require.NoError(t, c.SetNonce(alice, i+1))
	}
	c.Close()
	assert.NoError(t, c.Err())
}
