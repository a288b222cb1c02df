// Copyright (c) 2025 The OdinVM developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package odinclient_test

import (
	"net/http/httptest"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odinvm/odin/api"
	"github.com/odinvm/odin/client"
	"github.com/odinvm/odin/odin"
	"github.com/odinvm/odin/odinclient"
	"github.com/odinvm/odin/runtime"
	"github.com/odinvm/odin/state"
	"github.com/odinvm/odin/vm"
)

var (
	alice = odin.BytesToAddress([]byte{0x0a})
	bob   = odin.BytesToAddress([]byte{0x0b})
)

func newNodeClient(t *testing.T) *odinclient.Client {
	t.Helper()
	c := client.New(runtime.New(&vm.TransferVM{}, state.New()))
	t.Cleanup(c.Close)

	server := httptest.NewServer(api.New(c))
	t.Cleanup(server.Close)
	return odinclient.New(server.URL)
}

func TestAccountRoundTrip(t *testing.T) {
	nc := newNodeClient(t)
	code := []byte{0x60, 0x60}

	require.NoError(t, nc.InsertAccount(alice, nil))
	require.NoError(t, nc.SetBalance(alice, uint256.NewInt(1000)))
	require.NoError(t, nc.SetNonce(alice, 7))
	require.NoError(t, nc.SetCode(alice, code))
	require.NoError(t, nc.SetStorage(alice, odin.BytesToBytes32([]byte{1}), odin.BytesToBytes32([]byte{0xff})))
	require.NoError(t, nc.InsertBlock(9, odin.BytesToBytes32([]byte{9})))

	acc, err := nc.Account(alice)
	require.NoError(t, err)
	assert.Equal(t, uint256.NewInt(1000), acc.Balance)
	assert.EqualValues(t, 7, acc.Nonce)
	assert.Equal(t, odin.Keccak256(code), acc.CodeHash)
}

func TestCheckpointRevert(t *testing.T) {
	nc := newNodeClient(t)

	assert.ErrorIs(t, nc.Revert(), odinclient.ErrUnexpectedStatus)

	require.NoError(t, nc.Checkpoint())
	require.NoError(t, nc.SetBalance(alice, uint256.NewInt(50)))
	require.NoError(t, nc.Revert())

	acc, err := nc.Account(alice)
	require.NoError(t, err)
	assert.True(t, acc.Balance.IsZero())
}

func TestRunAndDryRun(t *testing.T) {
	nc := newNodeClient(t)

	require.NoError(t, nc.SetBalance(alice, uint256.NewInt(500)))

	trx := &api.Transaction{From: &alice, To: &bob, Value: uint256.NewInt(100)}

	dryRun, err := nc.DryRun(trx)
	require.NoError(t, err)
	assert.Zero(t, dryRun.Result.ExitCode)
	assert.Len(t, dryRun.Changes, 2)

	result, err := nc.Run(trx)
	require.NoError(t, err)
	assert.Zero(t, result.ExitCode)

	acc, err := nc.Account(bob)
	require.NoError(t, err)
	assert.Equal(t, uint256.NewInt(100), acc.Balance)
}
