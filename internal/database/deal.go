package database

import "context"

func (db *DB) InsertDeal(ctx context.Context, d *Deal) error {
	_, err := db.pool.Exec(ctx, `
		INSERT INTO deals (content_id, provider_addr, duration_days, payment_wei, deal_tx, status)
		VALUES ($1, $2, $3, $4, $5, 'active')
	`, d.ContentID, d.ProviderAddr, d.DurationDays, d.PaymentWei, d.DealTx)
	return err
}

func (db *DB) GetContentDeals(ctx context.Context, contentID int64) ([]Deal, error) {
	rows, err := db.pool.Query(ctx, `
		SELECT id, content_id, provider_addr, duration_days, payment_wei, deal_tx, status, last_check, created_at
		FROM deals WHERE content_id = $1
		ORDER BY created_at DESC
	`, contentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Deal
	for rows.Next() {
		var d Deal
		if err := rows.Scan(&d.ID, &d.ContentID, &d.ProviderAddr, &d.DurationDays, &d.PaymentWei, &d.DealTx, &d.Status, &d.LastCheck, &d.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, d)
	}
	return result, nil
}

// GetDealsForAudit shards stale active deals across workers by id modulo.
func (db *DB) GetDealsForAudit(ctx context.Context, totalWorkers, workerID int) ([]DealWithCID, error) {
	rows, err := db.pool.Query(ctx, `
		SELECT d.id, d.content_id, d.provider_addr, d.duration_days, d.payment_wei, d.deal_tx, d.status, d.last_check, d.created_at, c.cid
		FROM deals d
		JOIN contents c ON d.content_id = c.id
		WHERE d.status = 'active'
		  AND d.id % $1 = $2
		  AND d.last_check < NOW() - INTERVAL '10 minutes'
		ORDER BY d.last_check ASC
		LIMIT 20
	`, totalWorkers, workerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []DealWithCID
	for rows.Next() {
		var d DealWithCID
		if err := rows.Scan(&d.ID, &d.ContentID, &d.ProviderAddr, &d.DurationDays, &d.PaymentWei, &d.DealTx, &d.Status, &d.LastCheck, &d.CreatedAt, &d.CID); err != nil {
			return nil, err
		}
		result = append(result, d)
	}
	return result, nil
}

func (db *DB) UpdateDealCheck(ctx context.Context, dealID int64) error {
	_, err := db.pool.Exec(ctx, `UPDATE deals SET last_check = NOW() WHERE id = $1`, dealID)
	return err
}

func (db *DB) MarkDealExpired(ctx context.Context, dealID int64) error {
	_, err := db.pool.Exec(ctx, `UPDATE deals SET status = 'expired', last_check = NOW() WHERE id = $1`, dealID)
	return err
}
