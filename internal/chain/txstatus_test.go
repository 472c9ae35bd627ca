package chain

import (
	"context"
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/require"
)

// fakeNode serves receipts and head numbers to the watcher.
type fakeNode struct {
	mu      sync.Mutex
	receipt *types.Receipt
	head    uint64
}

func (n *fakeNode) TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.receipt == nil {
		return nil, ethereum.NotFound
	}
	return n.receipt, nil
}

func (n *fakeNode) BlockNumber(ctx context.Context) (uint64, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.head, nil
}

func (n *fakeNode) setReceipt(r *types.Receipt) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.receipt = r
}

func (n *fakeNode) setHead(h uint64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.head = h
}

func collect(t *testing.T, h *TxHandle) []TxUpdate {
	t.Helper()
	var got []TxUpdate
	for {
		select {
		case u, ok := <-h.Updates():
			if !ok {
				return got
			}
			got = append(got, u)
		case <-time.After(5 * time.Second):
			t.Fatal("timed out waiting for status updates")
		}
	}
}

func TestWatch_ConfirmedAfterDepth(t *testing.T) {
	node := &fakeNode{head: 100}
	h := NewHandle(common.HexToHash("0x01"))

	go watch(context.Background(), node, h, 3, 5*time.Millisecond)

	// Let the watcher poll a few times with no receipt, then include the tx.
	time.Sleep(25 * time.Millisecond)
	node.setReceipt(&types.Receipt{Status: types.ReceiptStatusSuccessful, BlockNumber: big.NewInt(100)})
	time.Sleep(25 * time.Millisecond)
	node.setHead(102) // depth 3: blocks 100, 101, 102

	got := collect(t, h)
	require.Equal(t, []TxUpdate{
		{Status: StatusPending},
		{Status: StatusConfirming},
		{Status: StatusConfirmed},
	}, got)
	require.Equal(t, StatusConfirmed, h.Status().Status)
}

func TestWatch_RevertedTransaction(t *testing.T) {
	node := &fakeNode{head: 10}
	node.setReceipt(&types.Receipt{Status: types.ReceiptStatusFailed, BlockNumber: big.NewInt(10)})
	h := NewHandle(common.HexToHash("0x02"))

	go watch(context.Background(), node, h, 3, 5*time.Millisecond)

	got := collect(t, h)
	require.Equal(t, []TxUpdate{
		{Status: StatusPending},
		{Status: StatusFailed, Reason: "transaction reverted"},
	}, got)
}

func TestWatch_ContextCancelled(t *testing.T) {
	node := &fakeNode{} // never produces a receipt
	h := NewHandle(common.HexToHash("0x03"))

	ctx, cancel := context.WithCancel(context.Background())
	go watch(ctx, node, h, 3, 5*time.Millisecond)
	cancel()

	got := collect(t, h)
	require.Equal(t, StatusFailed, got[len(got)-1].Status)
}

func TestTxHandle_TerminalStopsUpdates(t *testing.T) {
	h := NewHandle(common.HexToHash("0x04"))
	h.Publish(TxUpdate{Status: StatusConfirming})
	h.Publish(TxUpdate{Status: StatusConfirmed})

	// Ignored after the terminal value.
	h.Publish(TxUpdate{Status: StatusFailed, Reason: "late"})

	got := collect(t, h)
	require.Equal(t, []TxUpdate{
		{Status: StatusPending},
		{Status: StatusConfirming},
		{Status: StatusConfirmed},
	}, got)
	require.Equal(t, StatusConfirmed, h.Status().Status)
}

func TestTxHandle_ConcurrentTerminalPublishers(t *testing.T) {
	h := NewHandle(common.HexToHash("0x05"))

	// Racing terminal publishers must not send past the close of the stream.
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		status := StatusConfirmed
		if i%2 == 1 {
			status = StatusFailed
		}
		wg.Add(1)
		go func(s TxStatus) {
			defer wg.Done()
			require.NotPanics(t, func() {
				h.Publish(TxUpdate{Status: s})
			})
		}(status)
	}
	wg.Wait()

	got := collect(t, h)
	require.Len(t, got, 2) // Pending plus exactly one terminal value
	require.True(t, got[1].Status.Terminal())
	require.Equal(t, got[1].Status, h.Status().Status)
}

func TestTxStatus_Strings(t *testing.T) {
	require.Equal(t, "pending", StatusPending.String())
	require.Equal(t, "confirming", StatusConfirming.String())
	require.Equal(t, "confirmed", StatusConfirmed.String())
	require.Equal(t, "failed", StatusFailed.String())
	require.True(t, StatusConfirmed.Terminal())
	require.True(t, StatusFailed.Terminal())
	require.False(t, StatusConfirming.Terminal())
}
