package database

import "context"

// SetRole stores the educator/learner choice a wallet made, replacing any
// previous one.
func (db *DB) SetRole(ctx context.Context, walletAddr, role string) error {
	_, err := db.pool.Exec(ctx, `
		INSERT INTO roles (wallet_addr, role) VALUES ($1, $2)
		ON CONFLICT (wallet_addr) DO UPDATE SET role = EXCLUDED.role, updated_at = NOW()
	`, walletAddr, role)
	return err
}

func (db *DB) GetRole(ctx context.Context, walletAddr string) (*Role, error) {
	var r Role
	err := db.pool.QueryRow(ctx, `
		SELECT wallet_addr, role, updated_at FROM roles WHERE wallet_addr = $1
	`, walletAddr).Scan(&r.WalletAddr, &r.Role, &r.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &r, nil
}
