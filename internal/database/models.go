package database

import "time"

type Content struct {
	ID         int64
	CID        string
	Title      string
	IsPublic   bool
	OwnerAddr  string
	FileName   string
	SizeBytes  int64
	RegisterTx string
	CreatedAt  time.Time
}

type Deal struct {
	ID           int64
	ContentID    int64
	ProviderAddr string
	DurationDays int64
	PaymentWei   string
	DealTx       string
	Status       string
	LastCheck    time.Time
	CreatedAt    time.Time
}

type DealWithCID struct {
	Deal
	CID string
}

type Role struct {
	WalletAddr string
	Role       string
	UpdatedAt  time.Time
}
