package daemons

import (
	"context"
	"log"
	"time"

	"edustore-gateway/internal/chain"
	"edustore-gateway/internal/database"
)

// DealReader is the chain read the auditor needs.
type DealReader interface {
	GetDeal(ctx context.Context, cid string) (*chain.Deal, error)
}

// DealIndex is the slice of the content index the auditor needs.
type DealIndex interface {
	GetDealsForAudit(ctx context.Context, totalWorkers, workerID int) ([]database.DealWithCID, error)
	UpdateDealCheck(ctx context.Context, dealID int64) error
	MarkDealExpired(ctx context.Context, dealID int64) error
}

// RunDealAuditor periodically compares indexed deals against their on-chain
// state and marks the ones that have lapsed.
func RunDealAuditor(ctx context.Context, workerID int, totalWorkers int, db DealIndex, reader DealReader) {
	log.Printf("[Auditor %d] Worker started. Watching deal health", workerID)

	for {
		select {
		case <-ctx.Done():
			log.Printf("[Auditor %d] Stopping...", workerID)
			return
		default:
		}

		deals, err := db.GetDealsForAudit(ctx, totalWorkers, workerID)
		if err != nil {
			log.Printf("[Auditor %d] DB Error: %v", workerID, err)
			time.Sleep(5 * time.Second)
			continue
		}

		if len(deals) == 0 {
			time.Sleep(30 * time.Second)
			continue
		}

		for _, d := range deals {
			if ctx.Err() != nil {
				return
			}
			auditDeal(ctx, workerID, db, reader, d)
		}
	}
}

func auditDeal(ctx context.Context, workerID int, db DealIndex, reader DealReader, d database.DealWithCID) {
	// Content ids are stored on chain with their ipfs:// prefix intact.
	onchain, err := reader.GetDeal(ctx, d.CID)
	if err != nil {
		log.Printf("[Auditor %d] ⚠️ Failed to read deal for %s: %v", workerID, d.CID, err)
		db.UpdateDealCheck(ctx, d.ID)
		return
	}

	expired := !onchain.Active ||
		(onchain.EndTime.Sign() > 0 && onchain.EndTime.Int64() < time.Now().Unix())

	if expired {
		log.Printf("[Auditor %d] Deal %d for %s lapsed on chain, marking expired", workerID, d.ID, d.CID)
		if err := db.MarkDealExpired(ctx, d.ID); err != nil {
			log.Printf("[Auditor %d] DB Error: %v", workerID, err)
		}
		return
	}

	if err := db.UpdateDealCheck(ctx, d.ID); err != nil {
		log.Printf("[Auditor %d] DB Error: %v", workerID, err)
	}
}
