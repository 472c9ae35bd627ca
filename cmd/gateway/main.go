package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"edustore-gateway/internal/api"
	"edustore-gateway/internal/chain"
	"edustore-gateway/internal/config"
	"edustore-gateway/internal/daemons"
	"edustore-gateway/internal/database"
	"edustore-gateway/internal/storage"
	"edustore-gateway/internal/workflow"
)

func main() {

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("❌ Config error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := database.NewDB(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("❌ DB Init failed: %v", err)
	}
	defer db.Close()

	if err := db.InitSchema(ctx); err != nil {
		log.Fatalf("❌ DB Schema Init failed: %v", err)
	}

	log.Println("✅ Database connected")

	chainSvc, err := chain.NewService(
		ctx,
		cfg.ChainRPCURL,
		cfg.ChainID,
		cfg.PrivateKey,
		cfg.CoreContractAddr,
		cfg.StorageContractAddr,
		cfg.AccessContractAddr,
		cfg.Confirmations,
	)
	if err != nil {
		log.Fatalf("❌ Chain Service init failed: %v", err)
	}
	defer chainSvc.Close()
	log.Printf("✅ Chain Service initialized (wallet %s, chain %d)", chainSvc.WalletAddress().Hex(), cfg.ChainID)

	files := storage.NewClient(cfg.StorageNodeURL, cfg.GatewayHost, cfg.StorageAPIKey, cfg.UploadTimeout)
	flow := workflow.NewService(ctx, files, chainSvc, db)

	auditorTask := func(ctx context.Context, id int, total int) {
		daemons.RunDealAuditor(ctx, id, total, db, chainSvc)
	}

	auditorPool := daemons.NewPool(ctx, cfg.AuditorWorkers, auditorTask)
	auditorPool.Start()
	log.Printf("✅ Started Deal Auditor Pool (%d workers)", cfg.AuditorWorkers)

	server := api.NewServer(db, chainSvc, files, flow, cfg.DefaultProviders)

	go func() {
		if err := server.Start(cfg.ServerPort); err != nil {
			log.Printf("❌ API Server Error: %v", err)
			cancel()
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stop:
		log.Printf("🛑 Received signal: %s. Shutting down...", sig)
	case <-ctx.Done():
		log.Println("🛑 Context cancelled. Shutting down...")
	}

	if err := server.Shutdown(); err != nil {
		log.Printf("⚠️ API shutdown error: %v", err)
	}

	log.Println("Waiting for Auditors to finish...")
	auditorPool.Stop()

	cancel()

	log.Println("👋 Shutdown complete.")
}
