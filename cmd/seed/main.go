package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	appdonation "github.com/donortrack/backend/internal/application/donation"
	appidentity "github.com/donortrack/backend/internal/application/identity"
	appproject "github.com/donortrack/backend/internal/application/project"
	"github.com/donortrack/backend/internal/infrastructure/auth"
	"github.com/donortrack/backend/internal/infrastructure/cache"
	"github.com/donortrack/backend/internal/infrastructure/config"
	"github.com/donortrack/backend/internal/infrastructure/logger"
	"github.com/donortrack/backend/internal/infrastructure/migration"
	"github.com/donortrack/backend/internal/infrastructure/persistence"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	var opts SeedOptions
	flag.IntVar(&opts.Donors, "donors", 20, "Number of donor accounts")
	flag.IntVar(&opts.Projects, "projects", 8, "Number of projects")
	flag.IntVar(&opts.DonationsPerDonor, "donations", 5, "Donations per donor")
	flag.StringVar(&opts.Password, "password", "donortrack-demo", "Password for every seeded account")
	flag.Uint64Var(&opts.Seed, "seed", 0, "Random seed (0 picks one)")
	flag.Parse()

	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Failed to load configuration:", err)
		os.Exit(1)
	}
	log := logger.New(logger.FromAppConfig(cfg))
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, opts, log); err != nil {
		log.Error("Seed failed", zap.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, opts SeedOptions, log *zap.Logger) error {
	gormLog := logger.NewGormLogger(log, logger.GormLevel("warn"), cfg.Telemetry.DBSlowQueryThresh, false)
	db, err := persistence.NewDatabase(ctx, cfg.Database, gormLog)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	sqlDB, err := db.DB.DB()
	if err != nil {
		return err
	}
	m, err := migration.New(sqlDB, migration.Options{}, log)
	if err != nil {
		return err
	}
	if err := m.Up(); err != nil {
		return err
	}

	users := persistence.NewGormUserRepository(db.DB)
	projects := persistence.NewGormProjectRepository(db.DB)
	donations := persistence.NewGormDonationRepository(db.DB)

	idempotency := cache.NewInMemoryIdempotencyStore(time.Minute)
	defer func() { _ = idempotency.Close() }()

	accounts := appidentity.NewAuthService(appidentity.AuthServiceConfig{
		UserRepo:   users,
		JWTService: auth.NewJWTService(cfg.JWT),
		Blacklist:  auth.NewInMemoryTokenBlacklist(),
		Logger:     log,
	})
	catalog := appproject.NewProjectService(appproject.ProjectServiceConfig{
		ProjectRepo: projects,
		UserRepo:    users,
		Donations:   donations,
		Logger:      log,
	})
	ledger := appdonation.NewLedgerService(appdonation.LedgerServiceConfig{
		TxScope:          persistence.NewGormLedgerTransactionScope(db.DB),
		DonationRepo:     donations,
		ProjectRepo:      projects,
		UserRepo:         users,
		ReverseOnFailure: cfg.Ledger.ReverseOnFailure,
		Logger:           log,
	})
	settlements := appdonation.NewSettlementService(appdonation.SettlementServiceConfig{
		Ledger: ledger,
		Store:  idempotency,
		TTL:    cfg.Settlement.IdempotencyTTL,
		Logger: log,
	})

	seed := opts.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	summary, err := NewSeeder(accounts, catalog, ledger, settlements, seed, log).Run(ctx, opts)
	if err != nil {
		return err
	}
	log.Info("Demo data written",
		zap.Uint64("seed", seed),
		zap.Int("completed", summary.ByStatus["COMPLETED"]),
		zap.Int("failed", summary.ByStatus["FAILED"]),
		zap.Int("refunded", summary.ByStatus["REFUNDED"]),
		zap.String("outstanding", summary.Outstanding.StringFixed(2)))
	return nil
}
