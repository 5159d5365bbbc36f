package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"facturador/internal/afip"
	"facturador/internal/config"
	"facturador/internal/infra"
	"facturador/internal/repository"
	"facturador/internal/router"
	"facturador/internal/worker"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Structured logger — dev: pretty, prod: JSON
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}

	rdb, err := infra.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ── Fiscal authority clients ─────────────────────────────────────────────
	signer := afip.NewRequestSigner(cfg.AFIPCertPath, cfg.AFIPCertPassword)
	ticketCache := afip.NewTicketCache(cfg.AFIPTACachePath)
	authClient := afip.NewAuthClient(cfg.AFIPWSAAURL, signer, ticketCache)
	billingClient := afip.NewBillingClient(cfg.AFIPWSFEURL, cfg.AFIPCUIT, cfg.AFIPPuntoVenta, cfg.AFIPCbteTipoDefault, authClient)
	qrEncoder := afip.NewQREncoder(cfg.AFIPCUIT, cfg.AFIPCbteTipoDefault)
	afipCB := infra.NewCircuitBreaker(infra.DefaultCBConfig())

	mailer := infra.NewMailer(cfg)
	pdfGen := infra.NewPDFGenerator(cfg.PDFStoragePath, cfg.RazonSocial, cfg.Domicilio, cfg.AFIPCUIT)
	dispatcher := worker.NewDispatcher(rdb)
	comprobanteRepo := repository.NewComprobanteRepository(db)

	// ── Async workers ────────────────────────────────────────────────────────
	// One facturacion consumer serializes every submission; email fan-out is
	// sized by WORKER_POOL_SIZE.
	facturacionWorker := worker.NewFacturacionWorker(
		comprobanteRepo, billingClient, qrEncoder, pdfGen,
		afipCB, dispatcher, rdb, cfg.RazonSocial,
	)
	emailWorker := worker.NewEmailWorker(mailer)
	worker.StartWorkerPool(ctx, rdb, cfg.WorkerPoolSize, facturacionWorker, emailWorker)

	worker.StartRetryCron(ctx, worker.RetryCronConfig{
		ComprobanteRepo: comprobanteRepo,
		Dispatcher:      dispatcher,
		CB:              afipCB,
	})

	r := router.New(cfg, db, rdb, afipCB, dispatcher, pdfGen)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		log.Info().Msgf("facturador backend listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server…")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("forced shutdown")
	}
	log.Info().Msg("server exited")
}
