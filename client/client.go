// Copyright (c) 2025 The OdinVM developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package client is the single-writer front end to the layered state.
//
// A Client owns one Runtime (and through it one LayeredState). All access
// is funneled through an unbounded FIFO request queue drained by a single
// worker goroutine, so the store never sees a concurrent mutator and every
// caller observes a linearizable view without locks.
package client

import (
	"sync"

	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/odinvm/odin/log"
	"github.com/odinvm/odin/odin"
	"github.com/odinvm/odin/runtime"
	"github.com/odinvm/odin/state"
	"github.com/odinvm/odin/tx"
)

var logger = log.WithContext("pkg", "client")

// ErrClosed is returned for requests issued against a closed or crashed
// client.
var ErrClosed = errors.New("client: closed")

// Client serializes all state and executor access through one worker.
type Client struct {
	queue *queue
	rt    *runtime.Runtime
	done  chan struct{}

	mu      sync.Mutex
	loopErr error
}

// New creates a Client around rt and starts its worker.
func New(rt *runtime.Runtime) *Client {
	c := &Client{
		queue: newQueue(),
		rt:    rt,
		done:  make(chan struct{}),
	}
	go c.loop()
	return c
}

// Close stops accepting requests, waits for queued ones to finish and stops
// the worker.
func (c *Client) Close() {
	c.queue.close()
	<-c.done
}

// Err reports why the worker stopped, nil after a clean Close.
func (c *Client) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loopErr
}

func (c *Client) loop() {
	defer close(c.done)
	for {
		item, ok := c.queue.pop()
		if !ok {
			return
		}
		metricQueueDepth().Set(int64(c.queue.len()))
		metricRequestCount().AddWithLabel(1, map[string]string{"kind": requestKind(item)})

		if err := c.dispatch(item); err != nil {
			// a broken reply channel is a coordination bug, not a
			// transient fault: surface it and stop
			logger.Error("request processing failed", "kind", requestKind(item), "err", err)
			c.mu.Lock()
			c.loopErr = err
			c.mu.Unlock()
			c.queue.close()
			return
		}
	}
}

func (c *Client) dispatch(item any) error {
	st := c.rt.State()

	switch req := item.(type) {
	case *accountRequest:
		acc, err := st.GetAccount(req.addr)
		return reply(req.reply, accountResponse{account: acc, err: err})

	case *dryRunRequest:
		result, changes, err := c.rt.DryRun(req.trx)
		return reply(req.reply, dryRunResponse{result: result, changes: changes, err: err})

	case *runRequest:
		result, err := c.rt.Run(req.trx)
		return reply(req.reply, runResponse{result: result, err: err})

	case *insertAccountRequest:
		acc := req.account
		if acc == nil {
			acc = &state.Account{}
		}
		st.InsertAccount(req.addr, acc)
		return reply(req.reply, nil)

	case *insertBlockRequest:
		st.InsertBlock(req.number, req.hash)
		return reply(req.reply, nil)

	case *setBalanceRequest:
		st.ModifyAccount(req.addr, func(acc *state.Account) {
			acc.Balance = req.balance
		})
		return reply(req.reply, nil)

	case *setNonceRequest:
		st.ModifyAccount(req.addr, func(acc *state.Account) {
			acc.Nonce = req.nonce
		})
		return reply(req.reply, nil)

	case *setCodeRequest:
		acc, err := st.GetAccount(req.addr)
		if err != nil {
			return reply(req.reply, err)
		}
		acc.Code = req.code
		// recomputed on insert; zero normalizes to the empty-code hash
		acc.CodeHash = odin.Bytes32{}
		st.InsertAccount(req.addr, acc)
		return reply(req.reply, nil)

	case *setStorageRequest:
		st.SetStorage(req.addr, req.key, req.value)
		return reply(req.reply, nil)

	case *checkpointRequest:
		st.Checkpoint()
		return reply(req.reply, nil)

	case *revertRequest:
		return reply(req.reply, st.Revert())
	}
	return errors.Errorf("client: unknown request type %T", item)
}

// reply delivers v without blocking. The channel has one slot and a single
// consumer, so an unwritable channel means the transport is broken.
func reply[T any](ch chan T, v T) error {
	select {
	case ch <- v:
		return nil
	default:
		return errors.New("client: reply channel not writable")
	}
}

func (c *Client) send(item any) error {
	if !c.queue.push(item) {
		return ErrClosed
	}
	return nil
}

// await blocks for the reply, falling back to ErrClosed when the worker
// stopped without answering.
func await[T any](c *Client, ch chan T) (T, error) {
	select {
	case v := <-ch:
		return v, nil
	case <-c.done:
		// the worker may have replied right before exiting
		select {
		case v := <-ch:
			return v, nil
		default:
			var zero T
			return zero, ErrClosed
		}
	}
}

// AccountByAddress returns the account recorded for addr, defaulting for
// unknown addresses.
func (c *Client) AccountByAddress(addr odin.Address) (*state.Account, error) {
	req := &accountRequest{addr: addr, reply: make(chan accountResponse, 1)}
	if err := c.send(req); err != nil {
		return nil, err
	}
	resp, err := await(c, req.reply)
	if err != nil {
		return nil, err
	}
	return resp.account, resp.err
}

// DryRun executes trx without committing, returning the result and the
// state diff it produced.
func (c *Client) DryRun(trx *tx.Transaction) (*runtime.ExecutionResult, state.Changes, error) {
	req := &dryRunRequest{trx: trx, reply: make(chan dryRunResponse, 1)}
	if err := c.send(req); err != nil {
		return nil, nil, err
	}
	resp, err := await(c, req.reply)
	if err != nil {
		return nil, nil, err
	}
	return resp.result, resp.changes, resp.err
}

// Run executes trx and commits its changes, returning the result only.
func (c *Client) Run(trx *tx.Transaction) (*runtime.ExecutionResult, error) {
	req := &runRequest{trx: trx, reply: make(chan runResponse, 1)}
	if err := c.send(req); err != nil {
		return nil, err
	}
	resp, err := await(c, req.reply)
	if err != nil {
		return nil, err
	}
	return resp.result, resp.err
}

// InsertAccount records acc at addr; a nil acc inserts the default record.
func (c *Client) InsertAccount(addr odin.Address, acc *state.Account) error {
	req := &insertAccountRequest{addr: addr, account: acc, reply: make(chan error, 1)}
	return c.roundTrip(req, req.reply)
}

// InsertBlock records the hash for a block number.
func (c *Client) InsertBlock(number uint64, hash odin.Bytes32) error {
	req := &insertBlockRequest{number: number, hash: hash, reply: make(chan error, 1)}
	return c.roundTrip(req, req.reply)
}

// SetBalance sets the balance of the account at addr.
func (c *Client) SetBalance(addr odin.Address, balance *uint256.Int) error {
	req := &setBalanceRequest{addr: addr, balance: balance, reply: make(chan error, 1)}
	return c.roundTrip(req, req.reply)
}

// SetNonce sets the nonce of the account at addr.
func (c *Client) SetNonce(addr odin.Address, nonce uint64) error {
	req := &setNonceRequest{addr: addr, nonce: nonce, reply: make(chan error, 1)}
	return c.roundTrip(req, req.reply)
}

// SetCode sets the code of the account at addr.
func (c *Client) SetCode(addr odin.Address, code []byte) error {
	req := &setCodeRequest{addr: addr, code: code, reply: make(chan error, 1)}
	return c.roundTrip(req, req.reply)
}

// SetStorageSlot sets one storage slot of the account at addr. A zero value
// clears the slot.
func (c *Client) SetStorageSlot(addr odin.Address, key, value odin.Bytes32) error {
	req := &setStorageRequest{addr: addr, key: key, value: value, reply: make(chan error, 1)}
	return c.roundTrip(req, req.reply)
}

// Checkpoint opens a revertible savepoint.
func (c *Client) Checkpoint() error {
	req := &checkpointRequest{reply: make(chan error, 1)}
	return c.roundTrip(req, req.reply)
}

// Revert discards everything since the last savepoint. It returns
// state.ErrNoCheckpoint when none is open.
func (c *Client) Revert() error {
	req := &revertRequest{reply: make(chan error, 1)}
	return c.roundTrip(req, req.reply)
}

func (c *Client) roundTrip(item any, replyCh chan error) error {
	if err := c.send(item); err != nil {
		return err
	}
	resp, err := await(c, replyCh)
	if err != nil {
		return err
	}
	return resp
}
