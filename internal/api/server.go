package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"math/big"

	"edustore-gateway/internal/chain"
	"edustore-gateway/internal/database"
	"edustore-gateway/internal/storage"
	"edustore-gateway/internal/workflow"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/jackc/pgx/v5"
)

// ChainService is the slice of the chain layer the handlers proxy.
type ChainService interface {
	WalletAddress() common.Address
	GetContentDetails(ctx context.Context, cid string) (*chain.ContentDetails, error)
	IsContentPublic(ctx context.Context, cid string) (bool, error)
	GetMyContent(ctx context.Context) ([]string, error)
	HasAccess(ctx context.Context, cid string, user common.Address) (bool, error)
	GrantAccess(ctx context.Context, cid string, user common.Address, durationDays int64) (*chain.TxHandle, error)
	RevokeAccess(ctx context.Context, cid string, user common.Address) (*chain.TxHandle, error)
	ExtendDeal(ctx context.Context, cid string, additionalDays int64, payment *big.Int) (*chain.TxHandle, error)
}

// ContentIndex is the slice of the database the handlers read and write.
type ContentIndex interface {
	ListContents(ctx context.Context, limit, offset int) ([]database.Content, error)
	GetContentByCID(ctx context.Context, cid string) (*database.Content, error)
	GetContentDeals(ctx context.Context, contentID int64) ([]database.Deal, error)
	GetRole(ctx context.Context, walletAddr string) (*database.Role, error)
	SetRole(ctx context.Context, walletAddr, role string) error
}

// FileStore is the pinning-service surface the handlers use.
type FileStore interface {
	Pin(ctx context.Context, cid string) error
	GatewayURL(cid string) string
}

// Workflow controls the upload pipeline.
type Workflow interface {
	Start(req workflow.Request) (workflow.Snapshot, error)
	ConfirmDeal(provider common.Address) (workflow.Snapshot, error)
	CurrentTask() workflow.Snapshot
}

type Server struct {
	app       *fiber.App
	db        ContentIndex
	chainSvc  ChainService
	files     FileStore
	flow      Workflow
	providers []common.Address
}

func NewServer(db ContentIndex, chainSvc ChainService, files FileStore, flow Workflow, providers []common.Address) *Server {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		BodyLimit:             256 << 20,
	})

	app.Use(logger.New())
	app.Use(cors.New())

	s := &Server{
		app:       app,
		db:        db,
		chainSvc:  chainSvc,
		files:     files,
		flow:      flow,
		providers: providers,
	}

	s.registerRoutes()
	return s
}

func (s *Server) Start(addr string) error {
	log.Printf("🕹️  EduStore API running on %s", addr)
	return s.app.Listen(addr)
}

func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

func (s *Server) registerRoutes() {
	v1 := s.app.Group("/api/v1")

	v1.Get("/plans", s.listPlans)
	v1.Get("/providers", s.listProviders)

	v1.Post("/uploads", s.startUpload)
	v1.Get("/uploads/current", s.currentUpload)
	v1.Post("/uploads/current/deal", s.confirmDeal)

	v1.Get("/contents", s.listContents)
	v1.Get("/wallet/contents", s.myContents)
	v1.Get("/contents/:cid", s.getContent)
	v1.Post("/contents/:cid/pin", s.repinContent)
	v1.Post("/contents/:cid/deal/extend", s.extendDeal)
	v1.Post("/contents/:cid/access", s.grantAccess)
	v1.Get("/contents/:cid/access/:user", s.checkAccess)
	v1.Delete("/contents/:cid/access/:user", s.revokeAccess)

	v1.Get("/roles/:address", s.getRole)
	v1.Put("/roles/:address", s.setRole)
}

// cidParam normalizes the :cid path segment. Clients may send the bare hash
// or the full scheme-prefixed id; the index stores the prefixed form.
func cidParam(c *fiber.Ctx) string {
	return storage.URIScheme + storage.StripScheme(c.Params("cid"))
}

func (s *Server) listPlans(c *fiber.Ctx) error {
	return c.JSON(workflow.DefaultPlans)
}

func (s *Server) listProviders(c *fiber.Ctx) error {
	list := make([]fiber.Map, 0, len(s.providers))
	for i, p := range s.providers {
		list = append(list, fiber.Map{
			"address": p.Hex(),
			"name":    fmt.Sprintf("EduStore Provider %d", i+1),
		})
	}
	return c.JSON(list)
}

func (s *Server) startUpload(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": workflow.ErrNoFile.Error()})
	}

	f, err := fileHeader.Open()
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "failed to read file"})
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "failed to read file"})
	}

	req := workflow.Request{
		File: storage.File{
			Name: fileHeader.Filename,
			Size: fileHeader.Size,
			Data: data,
		},
		Title:    c.FormValue("title"),
		PlanName: c.FormValue("plan"),
		IsPublic: c.FormValue("visibility", "public") == "public",
	}

	snap, err := s.flow.Start(req)
	if err != nil {
		if errors.Is(err, workflow.ErrTaskInFlight) {
			return c.Status(409).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}
	return c.Status(202).JSON(snap)
}

func (s *Server) currentUpload(c *fiber.Ctx) error {
	return c.JSON(s.flow.CurrentTask())
}

func (s *Server) confirmDeal(c *fiber.Ctx) error {
	var body struct {
		Provider string `json:"provider"`
	}
	if err := c.BodyParser(&body); err != nil && len(c.Body()) > 0 {
		return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
	}

	provider := s.providers[0]
	if body.Provider != "" {
		if !common.IsHexAddress(body.Provider) {
			return c.Status(400).JSON(fiber.Map{"error": "invalid provider address"})
		}
		provider = common.HexToAddress(body.Provider)
	}

	snap, err := s.flow.ConfirmDeal(provider)
	if err != nil {
		if errors.Is(err, workflow.ErrNotAwaitingDeal) {
			return c.Status(409).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(502).JSON(fiber.Map{"error": err.Error()})
	}
	return c.Status(202).JSON(snap)
}

func (s *Server) listContents(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 50)
	offset := c.QueryInt("offset", 0)

	contents, err := s.db.ListContents(c.Context(), limit, offset)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": err.Error()})
	}

	result := make([]fiber.Map, 0, len(contents))
	for _, item := range contents {
		result = append(result, fiber.Map{
			"cid":         storage.StripScheme(item.CID),
			"title":       item.Title,
			"is_public":   item.IsPublic,
			"owner":       item.OwnerAddr,
			"file_name":   item.FileName,
			"size_bytes":  item.SizeBytes,
			"register_tx": item.RegisterTx,
			"created_at":  item.CreatedAt,
			"gateway_url": s.files.GatewayURL(item.CID),
		})
	}
	return c.JSON(result)
}

func (s *Server) getContent(c *fiber.Ctx) error {
	cid := cidParam(c)

	content, err := s.db.GetContentByCID(c.Context(), cid)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.Status(404).JSON(fiber.Map{"error": "Content not found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": err.Error()})
	}

	deals, err := s.db.GetContentDeals(c.Context(), content.ID)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to load deals"})
	}

	details, err := s.chainSvc.GetContentDetails(c.Context(), cid)
	if err != nil {
		log.Printf("⚠️ Chain read failed for %s: %v", cid, err)
	}

	resp := fiber.Map{
		"content":     content,
		"deals":       deals,
		"gateway_url": s.files.GatewayURL(cid),
	}
	if details != nil {
		resp["onchain"] = fiber.Map{
			"owner":     details.Owner.Hex(),
			"title":     details.Title,
			"is_public": details.IsPublic,
			"timestamp": details.Timestamp.String(),
		}
	}
	return c.JSON(resp)
}

func (s *Server) myContents(c *fiber.Ctx) error {
	cids, err := s.chainSvc.GetMyContent(c.Context())
	if err != nil {
		return c.Status(502).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{
		"owner": s.chainSvc.WalletAddress().Hex(),
		"cids":  cids,
	})
}

func (s *Server) extendDeal(c *fiber.Ctx) error {
	cid := cidParam(c)

	var body struct {
		Days     int64  `json:"days"`
		PriceEth string `json:"price_eth"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
	}
	if body.Days <= 0 {
		return c.Status(400).JSON(fiber.Map{"error": "days must be positive"})
	}
	payment, err := workflow.EthToWei(body.PriceEth)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}

	handle, err := s.chainSvc.ExtendDeal(c.Context(), cid, body.Days, payment)
	if err != nil {
		return c.Status(502).JSON(fiber.Map{"error": err.Error()})
	}
	return c.Status(202).JSON(fiber.Map{"tx_hash": handle.Hash.Hex()})
}

func (s *Server) repinContent(c *fiber.Ctx) error {
	cid := cidParam(c)

	if _, err := s.db.GetContentByCID(c.Context(), cid); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.Status(404).JSON(fiber.Map{"error": "Content not found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": err.Error()})
	}

	if err := s.files.Pin(c.Context(), cid); err != nil {
		return c.Status(502).JSON(fiber.Map{"error": err.Error()})
	}
	log.Printf("📌 Re-pinned %s", cid)
	return c.JSON(fiber.Map{"status": "pinned", "cid": cid})
}

func (s *Server) grantAccess(c *fiber.Ctx) error {
	cid := cidParam(c)

	var body struct {
		User string `json:"user"`
		Days int64  `json:"days"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
	}
	if !common.IsHexAddress(body.User) {
		return c.Status(400).JSON(fiber.Map{"error": "invalid user address"})
	}
	if body.Days <= 0 {
		return c.Status(400).JSON(fiber.Map{"error": "days must be positive"})
	}

	handle, err := s.chainSvc.GrantAccess(c.Context(), cid, common.HexToAddress(body.User), body.Days)
	if err != nil {
		return c.Status(502).JSON(fiber.Map{"error": err.Error()})
	}
	return c.Status(202).JSON(fiber.Map{"tx_hash": handle.Hash.Hex()})
}

func (s *Server) revokeAccess(c *fiber.Ctx) error {
	cid := cidParam(c)
	user := c.Params("user")
	if !common.IsHexAddress(user) {
		return c.Status(400).JSON(fiber.Map{"error": "invalid user address"})
	}

	handle, err := s.chainSvc.RevokeAccess(c.Context(), cid, common.HexToAddress(user))
	if err != nil {
		return c.Status(502).JSON(fiber.Map{"error": err.Error()})
	}
	return c.Status(202).JSON(fiber.Map{"tx_hash": handle.Hash.Hex()})
}

func (s *Server) checkAccess(c *fiber.Ctx) error {
	cid := cidParam(c)
	user := c.Params("user")
	if !common.IsHexAddress(user) {
		return c.Status(400).JSON(fiber.Map{"error": "invalid user address"})
	}

	public, err := s.chainSvc.IsContentPublic(c.Context(), cid)
	if err != nil {
		return c.Status(502).JSON(fiber.Map{"error": err.Error()})
	}
	if public {
		return c.JSON(fiber.Map{"has_access": true, "is_public": true})
	}

	allowed, err := s.chainSvc.HasAccess(c.Context(), cid, common.HexToAddress(user))
	if err != nil {
		return c.Status(502).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"has_access": allowed, "is_public": false})
}

func (s *Server) getRole(c *fiber.Ctx) error {
	addr := c.Params("address")
	if !common.IsHexAddress(addr) {
		return c.Status(400).JSON(fiber.Map{"error": "invalid wallet address"})
	}

	role, err := s.db.GetRole(c.Context(), common.HexToAddress(addr).Hex())
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.Status(404).JSON(fiber.Map{"error": "No role selected"})
		}
		return c.Status(500).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(role)
}

func (s *Server) setRole(c *fiber.Ctx) error {
	addr := c.Params("address")
	if !common.IsHexAddress(addr) {
		return c.Status(400).JSON(fiber.Map{"error": "invalid wallet address"})
	}

	var body struct {
		Role string `json:"role"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
	}
	if body.Role != "educator" && body.Role != "learner" {
		return c.Status(400).JSON(fiber.Map{"error": "role must be educator or learner"})
	}

	if err := s.db.SetRole(c.Context(), common.HexToAddress(addr).Hex(), body.Role); err != nil {
		return c.Status(500).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"status": "ok"})
}
