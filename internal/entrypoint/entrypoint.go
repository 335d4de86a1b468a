package entrypoint

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mrlokans/libris/internal/audit"
	"github.com/mrlokans/libris/internal/auth"
	"github.com/mrlokans/libris/internal/config"
	"github.com/mrlokans/libris/internal/database"
	http_controllers "github.com/mrlokans/libris/internal/http"
	"github.com/mrlokans/libris/internal/scheduler"
	"github.com/mrlokans/libris/internal/services"
	"github.com/mrlokans/libris/internal/tasks"
)

// csrfSecret decodes AUTH_SESSION_SECRET, or generates a per-process secret
// when none is configured.
func csrfSecret(cfg config.Auth, log *zap.Logger) ([]byte, error) {
	if cfg.SessionSecret != "" {
		if secret, err := hex.DecodeString(cfg.SessionSecret); err == nil {
			return secret, nil
		}
		// Not hex, use as raw bytes
		return []byte(cfg.SessionSecret), nil
	}
	secret, err := auth.GenerateSessionSecret()
	if err != nil {
		return nil, err
	}
	log.Warn("generated session secret, set AUTH_SESSION_SECRET to keep CSRF tokens valid across restarts")
	return hex.DecodeString(secret)
}

// Run wires the application and serves HTTP until ctx is cancelled or the
// process receives SIGINT/SIGTERM.
func Run(ctx context.Context, cfg *config.Config, log *zap.Logger, version string) error {
	log.Info("starting libris", zap.String("version", version))

	db, err := database.NewDatabase(cfg.Storage, cfg.Auth.BcryptCost, log.Named("database"))
	if err != nil {
		return fmt.Errorf("initialize database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("error closing database", zap.Error(err))
		}
	}()

	auditor := audit.NewService(audit.NewAuditor(cfg.Audit.Dir, log.Named("audit")), log.Named("audit"))
	defer auditor.Wait()

	// The task queue is optional; without it cleanup runs inline.
	var (
		taskClient    *tasks.Client
		purger        services.PurgeEnqueuer
		pruneEnqueuer scheduler.PruneEnqueuer
		taskQueue     http_controllers.TaskQueue
	)
	if cfg.Tasks.Enabled {
		taskClient, err = tasks.NewClient(cfg.Storage.DatabasePath, tasks.FromConfig(cfg.Tasks), log.Named("tasks"))
		if err != nil {
			return fmt.Errorf("initialize task queue: %w", err)
		}
		defer func() {
			if err := taskClient.Close(); err != nil {
				log.Error("error closing task client", zap.Error(err))
			}
		}()
		taskClient.Register(
			tasks.NewPurgeBookReferencesQueue(db.Users, log.Named("tasks")),
			tasks.NewPruneVisitsQueue(db.Stats, log.Named("tasks")),
		)
		purger = taskClient
		pruneEnqueuer = taskClient
		taskQueue = taskClient
	}

	library := services.NewLibraryService(db.Users, db.Books, db.Requests, db.Stats, purger, auditor, log.Named("library"))

	sqlDB, err := db.SQLDB()
	if err != nil {
		return fmt.Errorf("get SQL DB for sessions: %w", err)
	}
	sessions, err := auth.NewSessionManager(sqlDB, cfg.Auth)
	if err != nil {
		return fmt.Errorf("initialize session manager: %w", err)
	}

	limiter := auth.NewRateLimiter(auth.RateLimitConfigFrom(cfg.Auth))
	defer limiter.Stop()

	var secret []byte
	if cfg.Auth.CSRFEnabled {
		if secret, err = csrfSecret(cfg.Auth, log); err != nil {
			return fmt.Errorf("generate CSRF secret: %w", err)
		}
	}

	if users, err := db.Users.List(ctx); err != nil {
		log.Error("failed to load users", zap.Error(err))
	} else if len(users) == 0 {
		log.Warn("no users found, run `libris seed` or `libris create-user --admin` to create an administrator")
	}

	router := http_controllers.NewRouter(http_controllers.RouterConfig{
		Library:            library,
		Database:           db,
		TaskQueue:          taskQueue,
		Sessions:           sessions,
		AuthMiddleware:     auth.NewMiddleware(db.Users, sessions, log.Named("auth")),
		RateLimiter:        limiter,
		CSRFSecret:         secret,
		SecureCookies:      cfg.Auth.SecureCookies,
		CORSAllowedOrigins: cfg.HTTP.CORSAllowedOrigins,
		Log:                log,
		Version:            version,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	if taskClient != nil {
		taskClient.Start(gctx)
	}

	retention := scheduler.NewStatsRetentionScheduler(cfg.StatsRetention, db.Stats, pruneEnqueuer, log.Named("scheduler"))
	if err := retention.Start(gctx); err != nil {
		return err
	}

	g.Go(func() error {
		log.Info("starting server", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second
		log.Info("shutting down", zap.Duration("timeout", timeout))

		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		retention.Stop()
		if taskClient != nil {
			taskClient.Stop(shutdownCtx)
		}
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	log.Info("server exited")
	return nil
}
