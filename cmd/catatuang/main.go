package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"catatuang/internal/amqp"
	"catatuang/internal/cli"
	"catatuang/internal/docstore"
	docmem "catatuang/internal/docstore/memory"
	docsqlite "catatuang/internal/docstore/sqlite"
	apphttp "catatuang/internal/http"
	"catatuang/internal/report/xlsx"
	"catatuang/internal/session"
	idgoogle "catatuang/internal/session/google"
	idmem "catatuang/internal/session/memory"
	"catatuang/internal/store"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()
	cfg := cli.LoadAndValidateConfig(logger)

	// Transaction collection backend
	var col docstore.Collection
	switch cfg.DocstoreBackend {
	case "sqlite":
		sqliteCol, err := docsqlite.NewCollection(cfg.SQLiteDBPath)
		if err != nil {
			logger.Error("Failed to open sqlite collection", "error", err, "path", cfg.SQLiteDBPath)
			os.Exit(1)
		}
		defer sqliteCol.Close()
		col = sqliteCol
		logger.Info("Initialized sqlite docstore", "path", cfg.SQLiteDBPath)
	default:
		col = docmem.NewCollection()
		logger.Info("Initialized memory docstore")
	}

	// Identity backend
	var svc session.IdentityService
	switch cfg.IdentityBackend {
	case "google":
		googleSvc, err := idgoogle.New(context.Background(), cfg.GoogleAPIKey, cfg.IdentityEmulatorHost)
		if err != nil {
			logger.Error("Failed to initialize Google identity service", "error", err)
			os.Exit(1)
		}
		svc = googleSvc
		logger.Info("Initialized Google identity backend", "emulator", cfg.IdentityEmulatorHost != "")
	default:
		svc = idmem.NewService()
		logger.Info("Initialized memory identity backend")
	}
	provider := session.NewProvider(svc)

	// Event publishing is optional; without AMQP the store works the same
	storeOpts := []store.Option{}
	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", "error", err)
			os.Exit(1)
		}
		defer amqpClient.Close()
		storeOpts = append(storeOpts, store.WithEventPublisher(amqpClient))
		logger.Info("Transaction event publishing enabled", "exchange", cfg.AMQPExchange)
	}
	liveStore := store.New(col, storeOpts...)

	srv := apphttp.NewServer(":"+cfg.Port, provider, liveStore,
		apphttp.WithReportWriter(xlsx.New()),
		apphttp.WithExportDir(cfg.ExportDir))
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 30 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		liveStore.Unbind()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		cancel()
	}()

	logger.Info("Starting catatuang server",
		"port", cfg.Port,
		"docstore", cfg.DocstoreBackend,
		"identity", cfg.IdentityBackend)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Server stopped gracefully")
}
