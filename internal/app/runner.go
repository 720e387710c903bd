// Package app wires configuration, chain access, storage and the admin API
// into one running process.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Ksavu/launched-lol-admin/internal/api"
	"github.com/Ksavu/launched-lol-admin/internal/blockchain/solbc"
	"github.com/Ksavu/launched-lol-admin/internal/config"
	"github.com/Ksavu/launched-lol-admin/internal/graduation"
	"github.com/Ksavu/launched-lol-admin/internal/license"
	"github.com/Ksavu/launched-lol-admin/internal/storage"
	"github.com/Ksavu/launched-lol-admin/internal/storage/memory"
	"github.com/Ksavu/launched-lol-admin/internal/storage/postgres"
	"github.com/Ksavu/launched-lol-admin/internal/utils/logger"
	"github.com/Ksavu/launched-lol-admin/internal/utils/metrics"
	"github.com/Ksavu/launched-lol-admin/internal/wallet"
)

const shutdownTimeout = 15 * time.Second

type Runner struct {
	config     *config.Config
	logger     *logger.Logger
	server     *http.Server
	shutdown   *ShutdownHandler
	shutdownCh chan os.Signal
}

func NewRunner(cfg *config.Config, log *logger.Logger) *Runner {
	return &Runner{
		config:     cfg,
		logger:     log,
		shutdown:   NewShutdownHandler(log.Named("shutdown"), shutdownTimeout),
		shutdownCh: make(chan os.Signal, 1),
	}
}

// Initialize builds every component. Resources opened here are released by Run,
// or by Close when Run is never called.
func (r *Runner) Initialize(ctx context.Context) error {
	zl := r.logger.Logger

	signer, err := r.loadWallet()
	if err != nil {
		return err
	}
	zl.Info("Platform wallet loaded", zap.Stringer("wallet", signer))

	programs, err := r.config.Launchpad()
	if err != nil {
		return err
	}

	collector := metrics.NewCollector()
	client := solbc.NewClient(r.config.RPCURL, r.config.ClientOptions(), zl).WithObserver(collector)

	ledger, err := r.openLedger()
	if err != nil {
		return err
	}

	locker, err := r.openLocker(ctx)
	if err != nil {
		return err
	}

	svc := graduation.NewService(graduation.Deps{
		Client:   client,
		Signer:   signer,
		Programs: programs,
		Ledger:   ledger,
		Locker:   locker,
		Metrics:  collector,
		Workers:  r.config.Workers,
		Logger:   r.logger,
	})

	r.server = &http.Server{
		Addr:              r.config.ListenAddr,
		Handler:           api.NewServer(svc, collector, zl).Router(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       10 * time.Second,
		// a settlement waits for two confirmations
		WriteTimeout: 3 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}
	r.shutdown.AddFunc("http", r.server.Shutdown)
	return nil
}

// Handler returns the admin API handler built by Initialize.
func (r *Runner) Handler() http.Handler {
	if r.server == nil {
		return nil
	}
	return r.server.Handler
}

// Run validates the license and serves the admin API until ctx is cancelled,
// SIGINT/SIGTERM arrives or the listener fails.
func (r *Runner) Run(ctx context.Context) error {
	if r.server == nil {
		return errors.New("runner is not initialized")
	}

	signal.Notify(r.shutdownCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(r.shutdownCh)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		select {
		case sig := <-r.shutdownCh:
			r.logger.Info("Signal received", zap.String("signal", sig.String()))
			cancel()
		case <-runCtx.Done():
		}
	}()

	if err := r.validateLicense(runCtx); err != nil {
		_ = r.Close()
		return fmt.Errorf("license validation failed: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		defer close(errCh)
		r.logger.Info("Admin API listening", zap.String("addr", r.server.Addr))
		if err := r.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	var serveErr error
	select {
	case <-runCtx.Done():
	case serveErr = <-errCh:
		if serveErr != nil {
			r.logger.LogError("Admin API stopped", serveErr, zap.String("addr", r.server.Addr))
		}
	}

	if err := r.Close(); err != nil && serveErr == nil {
		serveErr = err
	}
	return serveErr
}

// Close releases every resource opened by Initialize.
func (r *Runner) Close() error {
	return r.shutdown.Shutdown(context.Background())
}

func (r *Runner) loadWallet() (*wallet.Wallet, error) {
	if r.config.WalletSecret != "" {
		w, err := wallet.NewWallet(r.config.WalletSecret)
		if err != nil {
			return nil, fmt.Errorf("invalid platform_wallet_secret: %w", err)
		}
		return w, nil
	}
	w, err := wallet.LoadFromFile(r.config.WalletFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load platform wallet file: %w", err)
	}
	return w, nil
}

func (r *Runner) openLedger() (storage.Storage, error) {
	if r.config.PostgresURL == "" {
		r.logger.Warn("postgres_url not set, using in-memory settlement ledger (data will not persist)")
		return memory.New(), nil
	}

	ledger, err := postgres.NewStorage(r.config.PostgresURL, r.logger.Logger)
	if err != nil {
		return nil, err
	}
	r.shutdown.AddCloser("ledger", ledger.Close)

	if err := ledger.RunMigrations(); err != nil {
		return nil, fmt.Errorf("failed to migrate settlement ledger: %w", err)
	}
	r.logger.Info("Connected to PostgreSQL settlement ledger")
	return ledger, nil
}

func (r *Runner) openLocker(ctx context.Context) (graduation.Locker, error) {
	if r.config.RedisURL == "" {
		r.logger.Info("redis_url not set, settlement locks are local to this process")
		return graduation.NewLocalLocker(), nil
	}

	opt, err := redis.ParseURL(r.config.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis_url: %w", err)
	}
	rdb := redis.NewClient(opt)
	r.shutdown.AddCloser("redis", rdb.Close)

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	r.logger.Info("Redis settlement locks enabled", zap.Duration("ttl", r.config.LockTTL))
	return graduation.NewRedisLocker(rdb, r.config.LockTTL, r.logger.Logger), nil
}

func (r *Runner) validateLicense(ctx context.Context) error {
	if r.config.License == "" {
		r.logger.Warn("No license configured, skipping license validation")
		return nil
	}

	validator := license.NewValidator(
		r.config.Keygen.Account,
		r.config.Keygen.Token,
		r.config.Keygen.Product,
		r.logger.WithComponent("license"),
	)
	return validator.Validate(ctx, r.config.License)
}
