package chain

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// TxStatus is the lifecycle of one submitted transaction.
type TxStatus int

const (
	StatusIdle       TxStatus = iota
	StatusPending             // submitted, not yet included in a block
	StatusConfirming          // included, awaiting finality depth
	StatusConfirmed
	StatusFailed
)

func (s TxStatus) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusConfirming:
		return "confirming"
	case StatusConfirmed:
		return "confirmed"
	case StatusFailed:
		return "failed"
	default:
		return "idle"
	}
}

// Terminal reports whether no further transitions can follow.
func (s TxStatus) Terminal() bool {
	return s == StatusConfirmed || s == StatusFailed
}

// TxUpdate is one observed transition. Reason is set for StatusFailed only
// and carries the raw node error untouched.
type TxUpdate struct {
	Status TxStatus
	Reason string
}

// TxHandle is returned by every write call. The submitter owns the status;
// observers consume Updates or snapshot with Status. The updates channel is
// closed once a terminal status has been published.
type TxHandle struct {
	Hash common.Hash

	mu      sync.Mutex
	current TxUpdate
	updates chan TxUpdate
}

// NewHandle creates a handle for a freshly submitted transaction. It starts
// at Pending; the submitting component drives it from there.
func NewHandle(hash common.Hash) *TxHandle {
	h := &TxHandle{
		Hash:    hash,
		current: TxUpdate{Status: StatusIdle},
		// Buffered past the worst-case transition count so the watcher
		// never blocks on a slow observer.
		updates: make(chan TxUpdate, 8),
	}
	h.Publish(TxUpdate{Status: StatusPending})
	return h
}

// Updates is the push-based status stream. Every transition is delivered in
// order; the channel closes after the terminal value.
func (h *TxHandle) Updates() <-chan TxUpdate {
	return h.updates
}

// Status snapshots the latest published value.
func (h *TxHandle) Status() TxUpdate {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.current
}

// Publish records a transition; transitions after a terminal value are
// dropped. The send and close stay under the lock so concurrent publishers
// cannot race a send past the close; the buffer covers the worst-case
// transition count, so the send never blocks.
func (h *TxHandle) Publish(u TxUpdate) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.current.Status.Terminal() {
		return
	}
	h.current = u

	h.updates <- u
	if u.Status.Terminal() {
		close(h.updates)
	}
}

// receiptSource is the slice of the node API the watcher needs.
type receiptSource interface {
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
	BlockNumber(ctx context.Context) (uint64, error)
}

// watch drives the handle from Pending to a terminal status by polling the
// node: first for the receipt, then for the confirmation depth.
func watch(ctx context.Context, src receiptSource, h *TxHandle, confirmations uint64, poll time.Duration) {
	ticker := time.NewTicker(poll)
	defer ticker.Stop()

	var included *types.Receipt

	for included == nil {
		select {
		case <-ctx.Done():
			h.Publish(TxUpdate{Status: StatusFailed, Reason: ctx.Err().Error()})
			return
		case <-ticker.C:
		}

		receipt, err := src.TransactionReceipt(ctx, h.Hash)
		if err != nil {
			if errors.Is(err, ethereum.NotFound) {
				continue // still in the mempool
			}
			h.Publish(TxUpdate{Status: StatusFailed, Reason: err.Error()})
			return
		}

		if receipt.Status == types.ReceiptStatusFailed {
			h.Publish(TxUpdate{Status: StatusFailed, Reason: "transaction reverted"})
			return
		}
		included = receipt
		h.Publish(TxUpdate{Status: StatusConfirming})
	}

	target := included.BlockNumber.Uint64() + confirmations
	for {
		select {
		case <-ctx.Done():
			h.Publish(TxUpdate{Status: StatusFailed, Reason: ctx.Err().Error()})
			return
		case <-ticker.C:
		}

		head, err := src.BlockNumber(ctx)
		if err != nil {
			continue
		}
		if head+1 >= target {
			h.Publish(TxUpdate{Status: StatusConfirmed})
			return
		}
	}
}
