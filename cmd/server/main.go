// Command server runs the pharmacy network backend: store registry,
// per-store inventory ledgers, and prescription-based store location.
//
// Configuration is environment-driven (see internal/config); a local .env
// file is honored for development. The process wires the SQLite row store,
// the tagged object store backing the analysis caches, the external
// analyzer clients, and the HTTP API, then serves until SIGINT/SIGTERM.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/pharmafind/go-pharmacy-backend/internal/analysis"
	"github.com/pharmafind/go-pharmacy-backend/internal/auth"
	"github.com/pharmafind/go-pharmacy-backend/internal/blobcache"
	"github.com/pharmafind/go-pharmacy-backend/internal/config"
	httpapi "github.com/pharmafind/go-pharmacy-backend/internal/http"
	"github.com/pharmafind/go-pharmacy-backend/internal/observability"
	"github.com/pharmafind/go-pharmacy-backend/internal/repo"
	"github.com/pharmafind/go-pharmacy-backend/internal/services"
	"github.com/pharmafind/go-pharmacy-backend/internal/sysutil"
)

// version is stamped at build time via -ldflags.
var version = "dev"

func main() {
	// Optional .env for local development; absence is not an error.
	_ = godotenv.Load()

	cfg := config.MustLoad()

	sysutil.SetLogLevel(cfg.LogLevel)
	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
	if cfg.Auth.SecretGenerated {
		log.Warn().Msg("JWT_SECRET not set; generated a process-local secret, all tokens become invalid on restart")
	}

	ctx := context.Background()

	shutdownOTel, err := observability.SetupOTel(ctx, cfg.OTEL, version)
	if err != nil {
		log.Fatal().Err(err).Msg("otel setup failed")
	}

	db, err := repo.OpenSQLite(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("open database failed")
	}
	if err := repo.AutoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("migrate database failed")
	}

	textCache, entityCache, err := buildCaches(cfg.ObjectStore)
	if err != nil {
		log.Fatal().Err(err).Msg("object store setup failed")
	}

	extractSvc := &services.ExtractionService{
		Text:          analysis.NewDocClient(cfg.Analyzer.DocEndpoint, cfg.Analyzer.DocKey, cfg.Analyzer.Timeout),
		Entities:      analysis.NewEntityClient(cfg.Analyzer.EntityEndpoint, cfg.Analyzer.EntityKey, cfg.Analyzer.Timeout),
		TextCache:     textCache,
		EntityCache:   entityCache,
		MinConfidence: cfg.MinConfidence,
	}

	issuer := auth.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	gin.SetMode(cfg.GinMode)
	router := gin.New()
	httpapi.RegisterRoutes(router, db, issuer, extractSvc, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Str("version", version).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown failed")
	}
	if err := shutdownOTel(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("otel shutdown failed")
	}
}

// buildCaches constructs the two analysis cache tiers. With a configured
// MinIO endpoint both tiers live in their own bucket; without one the
// process falls back to in-memory stores, which lose cached results on
// restart but keep the pipeline functional for development.
func buildCaches(cfg config.ObjectStoreConfig) (*blobcache.Cache, *blobcache.Cache, error) {
	if cfg.Endpoint == "" {
		log.Warn().Msg("MINIO_ENDPOINT not set; analysis caches are in-memory and not shared across restarts")
		return blobcache.NewCache(blobcache.NewMemoryStore()), blobcache.NewCache(blobcache.NewMemoryStore()), nil
	}

	textStore, err := blobcache.NewMinioStore(cfg.Endpoint, cfg.AccessKey, cfg.SecretKey, cfg.TextBucket, cfg.UseSSL)
	if err != nil {
		return nil, nil, err
	}
	entityStore, err := blobcache.NewMinioStore(cfg.Endpoint, cfg.AccessKey, cfg.SecretKey, cfg.EntityBucket, cfg.UseSSL)
	if err != nil {
		return nil, nil, err
	}
	return blobcache.NewCache(textStore), blobcache.NewCache(entityStore), nil
}
