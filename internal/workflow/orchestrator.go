package workflow

import (
	"context"
	"errors"
	"log"
	"math/big"
	"strings"
	"sync"

	"edustore-gateway/internal/chain"
	"edustore-gateway/internal/database"
	"edustore-gateway/internal/storage"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
)

// Local validation failures, rejected before any network work begins.
var (
	ErrNoFile          = errors.New("no file selected")
	ErrNoTitle         = errors.New("file title is required")
	ErrNoPlan          = errors.New("no storage plan selected")
	ErrTaskInFlight    = errors.New("an upload is already in progress")
	ErrNotAwaitingDeal = errors.New("content registration has not confirmed yet")
)

// ChainClient is the slice of the chain service the orchestrator drives.
type ChainClient interface {
	StoreContent(ctx context.Context, cid, title string, isPublic bool) (*chain.TxHandle, error)
	CreateDeal(ctx context.Context, cid string, provider common.Address, durationDays int64, payment *big.Int) (*chain.TxHandle, error)
	WalletAddress() common.Address
}

// ContentStore records terminal workflow results. May be nil.
type ContentStore interface {
	InsertContent(ctx context.Context, c *database.Content) (int64, error)
	InsertDeal(ctx context.Context, d *database.Deal) error
}

// Service sequences upload, registration and deal creation for one task at a
// time. All task state is owned here; the uploader and chain client are
// stateless request/response collaborators.
type Service struct {
	uploader storage.Uploader
	chain    ChainClient
	store    ContentStore
	ctx      context.Context

	mu           sync.Mutex
	task         *Task
	contentRowID int64
}

// Request is one submitted upload form.
type Request struct {
	File     storage.File
	Title    string
	PlanName string
	IsPublic bool
}

func NewService(ctx context.Context, uploader storage.Uploader, chainClient ChainClient, store ContentStore) *Service {
	return &Service{
		uploader: uploader,
		chain:    chainClient,
		store:    store,
		ctx:      ctx,
	}
}

// Start validates the form and kicks off the pipeline. Validation failures
// are returned synchronously with no side effects; everything after runs in
// the background and is observed via Snapshot.
func (s *Service) Start(req Request) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.task != nil && !s.task.Stage.Terminal() {
		return Snapshot{}, ErrTaskInFlight
	}
	if len(req.File.Data) == 0 || req.File.Name == "" {
		return Snapshot{}, ErrNoFile
	}
	if strings.TrimSpace(req.Title) == "" {
		return Snapshot{}, ErrNoTitle
	}
	plan, ok := PlanByName(req.PlanName)
	if !ok {
		return Snapshot{}, ErrNoPlan
	}

	t := &Task{
		ID:        uuid.NewString(),
		FileName:  req.File.Name,
		SizeBytes: req.File.Size,
		Title:     strings.TrimSpace(req.Title),
		IsPublic:  req.IsPublic,
		Plan:      plan,
		Stage:     StageUploading,
		Status:    "Uploading file...",
	}
	s.task = t
	s.contentRowID = 0

	go s.run(req.File, t.Title, t.IsPublic, plan)

	return t.snapshot(), nil
}

func (s *Service) run(file storage.File, title string, isPublic bool, plan Plan) {
	onProgress := func(percent float64) {
		s.mu.Lock()
		if s.task != nil && s.task.Stage == StageUploading {
			s.task.Progress = percent
		}
		s.mu.Unlock()
	}

	strategies := storage.Strategies(s.uploader, &plan.DealParams)
	cid, err := storage.UploadWithFallback(s.ctx, strategies, file, onProgress, func(strategy string, err error) {
		log.Printf("⚠️ Upload strategy %q failed: %v", strategy, err)
	})
	if err != nil {
		s.fail(err)
		return
	}

	s.mu.Lock()
	if s.task.CID == "" {
		s.task.CID = cid
	}
	s.task.Stage = StageRegisteringContent
	s.task.Status = "File uploaded. Registering content on blockchain..."
	s.mu.Unlock()

	handle, err := s.chain.StoreContent(s.ctx, cid, title, isPublic)
	if err != nil {
		s.fail(err)
		return
	}

	s.mu.Lock()
	s.task.RegisterTx = handle.Hash.Hex()
	s.mu.Unlock()

	for update := range handle.Updates() {
		switch update.Status {
		case chain.StatusPending:
			s.setStatus("Submitting content registration to blockchain...")
		case chain.StatusConfirming:
			s.setStatus("Confirming content registration...")
		case chain.StatusConfirmed:
			s.persistContent(cid, title, isPublic, file, handle.Hash.Hex())
			s.mu.Lock()
			s.task.Stage = StageAwaitingDealConfirmation
			s.task.Status = "Content registered. Ready to create storage deal."
			s.mu.Unlock()
		case chain.StatusFailed:
			s.fail(errors.New(update.Reason))
			return
		}
	}
}

// ConfirmDeal is the one mid-workflow step that needs fresh user input: the
// chosen provider. It is only accepted while the task awaits it.
func (s *Service) ConfirmDeal(provider common.Address) (Snapshot, error) {
	s.mu.Lock()
	if s.task == nil || s.task.Stage != StageAwaitingDealConfirmation {
		s.mu.Unlock()
		return Snapshot{}, ErrNotAwaitingDeal
	}

	t := s.task
	payment, err := EthToWei(t.Plan.Price)
	if err != nil {
		s.mu.Unlock()
		return Snapshot{}, err
	}

	t.Stage = StageCreatingDeal
	t.Status = "Creating storage deal on Filecoin..."
	cid, days := t.CID, t.Plan.Days
	s.mu.Unlock()

	handle, err := s.chain.CreateDeal(s.ctx, cid, provider, days, payment)
	if err != nil {
		s.fail(err)
		return s.CurrentTask(), err
	}

	s.mu.Lock()
	s.task.DealTx = handle.Hash.Hex()
	snap := s.task.snapshot()
	s.mu.Unlock()

	go s.watchDeal(handle, provider, days, payment)

	return snap, nil
}

func (s *Service) watchDeal(handle *chain.TxHandle, provider common.Address, days int64, payment *big.Int) {
	for update := range handle.Updates() {
		switch update.Status {
		case chain.StatusPending:
			s.setStatus("Submitting storage deal to blockchain...")
		case chain.StatusConfirming:
			s.setStatus("Confirming storage deal on the Filecoin network...")
		case chain.StatusConfirmed:
			s.persistDeal(provider, days, payment, handle.Hash.Hex())
			s.mu.Lock()
			s.task.Stage = StageComplete
			s.task.Status = "Storage deal created successfully! Your file is now securely stored."
			// Clear form fields so a new upload can be started.
			s.task.FileName = ""
			s.task.Title = ""
			s.task.Plan = Plan{}
			s.mu.Unlock()
		case chain.StatusFailed:
			s.fail(errors.New(update.Reason))
			return
		}
	}
}

// CurrentTask snapshots the active task, or an idle view when none exists.
func (s *Service) CurrentTask() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.task == nil {
		return Snapshot{Stage: StageIdle.String()}
	}
	return s.task.snapshot()
}

func (s *Service) setStatus(status string) {
	s.mu.Lock()
	if s.task != nil && !s.task.Stage.Terminal() {
		s.task.Status = status
	}
	s.mu.Unlock()
}

func (s *Service) fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.task == nil || s.task.Stage.Terminal() {
		return
	}
	log.Printf("❌ Upload task %s failed at stage %s: %v", s.task.ID, s.task.Stage, err)
	s.task.Stage = StageError
	s.task.Err = err.Error()
}

func (s *Service) persistContent(cid, title string, isPublic bool, file storage.File, txHash string) {
	if s.store == nil {
		return
	}
	id, err := s.store.InsertContent(s.ctx, &database.Content{
		CID:        cid,
		Title:      title,
		IsPublic:   isPublic,
		OwnerAddr:  s.chain.WalletAddress().Hex(),
		FileName:   file.Name,
		SizeBytes:  file.Size,
		RegisterTx: txHash,
	})
	if err != nil {
		log.Printf("⚠️ Failed to index registered content %s: %v", cid, err)
		return
	}
	s.mu.Lock()
	s.contentRowID = id
	s.mu.Unlock()
}

func (s *Service) persistDeal(provider common.Address, days int64, payment *big.Int, txHash string) {
	if s.store == nil {
		return
	}
	s.mu.Lock()
	contentID := s.contentRowID
	s.mu.Unlock()
	if contentID == 0 {
		return
	}
	err := s.store.InsertDeal(s.ctx, &database.Deal{
		ContentID:    contentID,
		ProviderAddr: provider.Hex(),
		DurationDays: days,
		PaymentWei:   payment.String(),
		DealTx:       txHash,
	})
	if err != nil {
		log.Printf("⚠️ Failed to index storage deal: %v", err)
	}
}
