package chain

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
)

// Service signs and submits EduStore contract calls with the gateway wallet
// and exposes the read surface of the three contracts.
type Service struct {
	client        *ethclient.Client
	key           *ecdsa.PrivateKey
	chainID       *big.Int
	confirmations uint64
	pollInterval  time.Duration

	core    *bind.BoundContract
	storage *bind.BoundContract
	access  *bind.BoundContract

	// Serializes submissions so concurrent writes cannot race on the nonce.
	submitMu sync.Mutex

	watchCtx context.Context
}

func NewService(ctx context.Context, rpcURL string, chainID int64, privateKeyHex string, coreAddr, storageAddr, accessAddr common.Address, confirmations uint64) (*Service, error) {
	client, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, fmt.Errorf("failed to dial rpc node: %w", err)
	}

	key, err := crypto.HexToECDSA(strings.TrimPrefix(privateKeyHex, "0x"))
	if err != nil {
		return nil, fmt.Errorf("invalid private key: %w", err)
	}

	s := &Service{
		client:        client,
		key:           key,
		chainID:       big.NewInt(chainID),
		confirmations: confirmations,
		pollInterval:  2 * time.Second,
		watchCtx:      ctx,
	}

	for _, c := range []struct {
		rawABI string
		addr   common.Address
		out    **bind.BoundContract
	}{
		{coreABI, coreAddr, &s.core},
		{storageABI, storageAddr, &s.storage},
		{accessABI, accessAddr, &s.access},
	} {
		parsed, err := abi.JSON(strings.NewReader(c.rawABI))
		if err != nil {
			return nil, fmt.Errorf("failed to parse contract abi: %w", err)
		}
		*c.out = bind.NewBoundContract(c.addr, parsed, client, client, client)
	}

	return s, nil
}

// WalletAddress is the gateway's own account, the owner of everything it
// registers.
func (s *Service) WalletAddress() common.Address {
	return crypto.PubkeyToAddress(s.key.PublicKey)
}

func (s *Service) Close() {
	s.client.Close()
}

func (s *Service) transactOpts(ctx context.Context, value *big.Int) (*bind.TransactOpts, error) {
	opts, err := bind.NewKeyedTransactorWithChainID(s.key, s.chainID)
	if err != nil {
		return nil, err
	}
	opts.Context = ctx
	opts.Value = value
	return opts, nil
}

// submit sends one write call and hands back a TxHandle whose status stream
// a watcher goroutine drives to a terminal value. The raw node error is
// returned as-is when the submission itself is rejected.
func (s *Service) submit(ctx context.Context, contract *bind.BoundContract, value *big.Int, method string, args ...interface{}) (*TxHandle, error) {
	s.submitMu.Lock()
	defer s.submitMu.Unlock()

	opts, err := s.transactOpts(ctx, value)
	if err != nil {
		return nil, err
	}

	tx, err := contract.Transact(opts, method, args...)
	if err != nil {
		return nil, err
	}

	handle := NewHandle(tx.Hash())
	go watch(s.watchCtx, s.client, handle, s.confirmations, s.pollInterval)
	return handle, nil
}

// StoreContent registers a content id with its title and visibility on the
// core contract.
func (s *Service) StoreContent(ctx context.Context, cid, title string, isPublic bool) (*TxHandle, error) {
	return s.submit(ctx, s.core, nil, "storeContent", cid, title, isPublic)
}

// CreateDeal pays a provider to persist the content for durationDays. The
// payment is attached as the transaction value, unmodified.
func (s *Service) CreateDeal(ctx context.Context, cid string, provider common.Address, durationDays int64, payment *big.Int) (*TxHandle, error) {
	return s.submit(ctx, s.storage, payment, "createDeal", cid, provider, big.NewInt(durationDays))
}

// ExtendDeal adds additionalDays to an existing deal.
func (s *Service) ExtendDeal(ctx context.Context, cid string, additionalDays int64, payment *big.Int) (*TxHandle, error) {
	return s.submit(ctx, s.storage, payment, "extendDeal", cid, big.NewInt(additionalDays))
}

// GrantAccess lets user read the content for durationDays.
func (s *Service) GrantAccess(ctx context.Context, cid string, user common.Address, durationDays int64) (*TxHandle, error) {
	return s.submit(ctx, s.access, nil, "grantAccess", cid, user, big.NewInt(durationDays))
}

// RevokeAccess withdraws a previously granted access.
func (s *Service) RevokeAccess(ctx context.Context, cid string, user common.Address) (*TxHandle, error) {
	return s.submit(ctx, s.access, nil, "revokeAccess", cid, user)
}

// ContentDetails is the read-side view of a registered content.
type ContentDetails struct {
	Owner     common.Address
	Title     string
	IsPublic  bool
	Timestamp *big.Int
}

func (s *Service) GetContentDetails(ctx context.Context, cid string) (*ContentDetails, error) {
	var out []interface{}
	if err := s.core.Call(&bind.CallOpts{Context: ctx}, &out, "getContentDetails", cid); err != nil {
		return nil, err
	}
	if len(out) != 4 {
		return nil, fmt.Errorf("unexpected getContentDetails output arity: %d", len(out))
	}
	return &ContentDetails{
		Owner:     out[0].(common.Address),
		Title:     out[1].(string),
		IsPublic:  out[2].(bool),
		Timestamp: out[3].(*big.Int),
	}, nil
}

func (s *Service) IsContentPublic(ctx context.Context, cid string) (bool, error) {
	var out []interface{}
	if err := s.core.Call(&bind.CallOpts{Context: ctx}, &out, "isContentPublic", cid); err != nil {
		return false, err
	}
	return out[0].(bool), nil
}

func (s *Service) GetMyContent(ctx context.Context) ([]string, error) {
	var out []interface{}
	opts := &bind.CallOpts{Context: ctx, From: s.WalletAddress()}
	if err := s.core.Call(opts, &out, "getMyContent"); err != nil {
		return nil, err
	}
	return out[0].([]string), nil
}

func (s *Service) HasAccess(ctx context.Context, cid string, user common.Address) (bool, error) {
	var out []interface{}
	if err := s.access.Call(&bind.CallOpts{Context: ctx}, &out, "hasAccess", cid, user); err != nil {
		return false, err
	}
	return out[0].(bool), nil
}

// Deal is the on-chain state of a storage deal.
type Deal struct {
	Provider  common.Address
	StartTime *big.Int
	EndTime   *big.Int
	Payment   *big.Int
	Active    bool
}

func (s *Service) GetDeal(ctx context.Context, cid string) (*Deal, error) {
	var out []interface{}
	if err := s.storage.Call(&bind.CallOpts{Context: ctx}, &out, "getDeal", cid); err != nil {
		return nil, err
	}
	if len(out) != 5 {
		return nil, fmt.Errorf("unexpected getDeal output arity: %d", len(out))
	}
	return &Deal{
		Provider:  out[0].(common.Address),
		StartTime: out[1].(*big.Int),
		EndTime:   out[2].(*big.Int),
		Payment:   out[3].(*big.Int),
		Active:    out[4].(bool),
	}, nil
}
