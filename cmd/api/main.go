package main

import (
	"context"
	"errors"
	"log/slog"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"consultation-platform/internal/audit"
	"consultation-platform/internal/auth"
	"consultation-platform/internal/booking"
	"consultation-platform/internal/call"
	"consultation-platform/internal/config"
	"consultation-platform/internal/consent"
	"consultation-platform/internal/deck"
	"consultation-platform/internal/draft"
	"consultation-platform/internal/extension"
	"consultation-platform/internal/httpapi"
	"consultation-platform/internal/pricing"
	"consultation-platform/internal/reading"
	"consultation-platform/internal/reporting"
	"consultation-platform/internal/transport"
	"consultation-platform/pkg/logger"
	"consultation-platform/pkg/utils"

	"github.com/gin-gonic/gin"
	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	// Root context that cancels on shutdown
	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", "err", err)
		os.Exit(1)
	}

	log := logger.New(cfg.App.Env)
	slog.SetDefault(log)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	authManager, err := auth.NewManager(cfg.Auth)
	if err != nil {
		log.Error("auth init failed", "err", err)
		os.Exit(1)
	}

	db, err := utils.OpenPostgres(rootCtx, "pgx", cfg.PostgresDSN(), utils.PostgresPoolConfig{})
	if err != nil {
		log.Error("postgres init failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	rdb, err := utils.OpenRedis(rootCtx, utils.RedisConfig{Addr: cfg.RedisAddr()})
	if err != nil {
		log.Error("redis init failed", "err", err)
		os.Exit(1)
	}
	defer rdb.Close()

	// Services. The Redis-backed session locker keeps the single-writer
	// rule per reading session across API instances.
	auditor := audit.NewService(audit.NewPostgresRepo(db))
	decks := deck.NewRegistry(deck.NewPostgresRepo(db))
	billing := booking.NewMemoryProvider() // TODO: swap for billing service client once its API ships
	rates := pricing.NewService(pricing.NewPostgresRepo(db))

	locker := &reading.RedisSessionLocker{
		RDB:  rdb,
		TTL:  cfg.Session.LockTTL,
		Wait: cfg.Session.LockWait,
	}
	readings := reading.NewService(
		reading.NewPostgresRepo(db), decks, billing, auditor, locker,
		cfg.Session.MaxSpreadSize, rand.New(rand.NewSource(time.Now().UnixNano())),
	)

	var generator draft.Generator
	if cfg.AI.APIKey != "" {
		generator = draft.NewOpenAIGenerator(draft.OpenAIConfig{
			BaseURL:    cfg.AI.BaseURL,
			APIKey:     cfg.AI.APIKey,
			Model:      cfg.AI.Model,
			HTTPClient: &http.Client{Timeout: cfg.AI.Timeout},
		})
	} else {
		generator = &draft.StaticGenerator{}
		log.Warn("AI_API_KEY not set, using static draft generator")
	}
	drafts := draft.NewService(draft.NewPostgresRepo(db), readings, auditor, locker, generator)

	consents := consent.NewService(consent.NewPostgresRepo(db), auditor)

	var media transport.Provider
	if cfg.Transport.TwilioAccountSID != "" {
		media = transport.NewTwilioProvider(transport.TwilioConfig{
			AccountSID: cfg.Transport.TwilioAccountSID,
			AuthToken:  cfg.Transport.TwilioAuthToken,
		})
	} else {
		media = transport.NewStaticProvider()
		log.Warn("TWILIO_ACCOUNT_SID not set, using static transport provider")
	}
	calls := call.NewService(call.NewPostgresRepo(db), billing, consents, media, auditor, cfg.Session.ConsentGraceWindow)

	extensions := extension.NewService(extension.NewPostgresRepo(db), billing, rates, calls, auditor)

	reportRepo := reporting.NewPostgresRepo(db)
	reports := reporting.NewService(reportRepo, reportRepo)

	// Unconsented calls past the grace window are ended by this sweeper.
	go runSweeper(rootCtx, log, calls, cfg.Session.ConsentGraceWindow)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.Middleware(log))

	h := httpapi.Handlers{
		Auth:       authManager,
		Readings:   readings,
		Drafts:     drafts,
		Consents:   consents,
		Calls:      calls,
		Extensions: extensions,
		Reports:    reports,
	}
	registerRoutes(r, h, auth.RequireAccessToken(authManager))

	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("api listening", "addr", srv.Addr, "env", cfg.App.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server failed", "err", err)
			stop()
		}
	}()

	<-rootCtx.Done()
	log.Info("shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown failed", "err", err)
	}

	_ = logger.ShutdownFlush(shutdownCtx, 2*time.Second)
}

// runSweeper periodically ends unconsented calls. The interval is a fraction
// of the grace window so a call never lingers much past it.
func runSweeper(ctx context.Context, log *slog.Logger, calls *call.Service, grace time.Duration) {
	interval := grace / 3
	if interval < 10*time.Second {
		interval = 10 * time.Second
	}
	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			n, err := calls.SweepUnconsented(ctx, now)
			if err != nil {
				log.Error("unconsented sweep failed", "err", err)
				continue
			}
			if n > 0 {
				log.Info("ended unconsented calls", "count", n)
			}
		}
	}
}
