package database

import "context"

func (db *DB) InsertContent(ctx context.Context, c *Content) (int64, error) {
	var id int64
	err := db.pool.QueryRow(ctx, `
		INSERT INTO contents (cid, title, is_public, owner_addr, file_name, size_bytes, register_tx)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`, c.CID, c.Title, c.IsPublic, c.OwnerAddr, c.FileName, c.SizeBytes, c.RegisterTx).Scan(&id)
	return id, err
}

func (db *DB) ListContents(ctx context.Context, limit, offset int) ([]Content, error) {
	rows, err := db.pool.Query(ctx, `
		SELECT id, cid, title, is_public, owner_addr, file_name, size_bytes, register_tx, created_at
		FROM contents
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Content
	for rows.Next() {
		var c Content
		if err := rows.Scan(&c.ID, &c.CID, &c.Title, &c.IsPublic, &c.OwnerAddr, &c.FileName, &c.SizeBytes, &c.RegisterTx, &c.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	return result, nil
}

func (db *DB) GetContentByCID(ctx context.Context, cid string) (*Content, error) {
	var c Content
	err := db.pool.QueryRow(ctx, `
		SELECT id, cid, title, is_public, owner_addr, file_name, size_bytes, register_tx, created_at
		FROM contents WHERE cid = $1
	`, cid).Scan(&c.ID, &c.CID, &c.Title, &c.IsPublic, &c.OwnerAddr, &c.FileName, &c.SizeBytes, &c.RegisterTx, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}
