package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	appdonation "github.com/donortrack/backend/internal/application/donation"
	appidentity "github.com/donortrack/backend/internal/application/identity"
	appproject "github.com/donortrack/backend/internal/application/project"
	appreport "github.com/donortrack/backend/internal/application/report"
	"github.com/donortrack/backend/internal/domain/report"
	"github.com/donortrack/backend/internal/domain/shared"
	"github.com/donortrack/backend/internal/infrastructure/auth"
	"github.com/donortrack/backend/internal/infrastructure/cache"
	"github.com/donortrack/backend/internal/infrastructure/config"
	"github.com/donortrack/backend/internal/infrastructure/event"
	"github.com/donortrack/backend/internal/infrastructure/logger"
	"github.com/donortrack/backend/internal/infrastructure/messaging"
	"github.com/donortrack/backend/internal/infrastructure/migration"
	"github.com/donortrack/backend/internal/infrastructure/persistence"
	"github.com/donortrack/backend/internal/infrastructure/storage"
	"github.com/donortrack/backend/internal/infrastructure/telemetry"
	"github.com/donortrack/backend/internal/interfaces/http/handler"
	"github.com/donortrack/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	_ "github.com/donortrack/backend/docs"
)

//	@title			DonorTrack API
//	@version		1.0
//	@description	Donations, NGO projects and donor impact reports

//	@host		localhost:8080
//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

//go:generate swag init -g main.go -d ./,../../internal/interfaces/http/handler,../../internal/application -o ../../docs --v3.1

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
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

	if err := run(ctx, cfg, log); err != nil {
		log.Error("Server exited with error", zap.Error(err))
		os.Exit(1)
	}
	log.Info("Server exited gracefully")
}

func run(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	telemetry.ServiceVersion = version
	log.Info("Starting DonorTrack backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version))

	tp, err := telemetry.NewTracerProvider(ctx, cfg.Telemetry, log)
	if err != nil {
		return err
	}
	mp, err := telemetry.NewMeterProvider(ctx, cfg.Telemetry, log)
	if err != nil {
		return err
	}
	lp, err := telemetry.NewLoggerProvider(ctx, cfg.Telemetry, log)
	if err != nil {
		return err
	}
	profiler, err := telemetry.NewProfiler(cfg.Telemetry.Profiling, cfg.Telemetry.ServiceName, log)
	if err != nil {
		return err
	}
	defer func() { _ = profiler.Stop() }()
	if profiler.IsEnabled() && cfg.Telemetry.Profiling.SpanProfiles {
		tp.EnableSpanProfiles()
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()
		if err := errors.Join(mp.Shutdown(shutdownCtx), tp.Shutdown(shutdownCtx), lp.Shutdown(shutdownCtx)); err != nil {
			log.Warn("Telemetry shutdown incomplete", zap.Error(err))
		}
	}()
	level, err := zapcore.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}
	log = lp.Bridge(log, cfg.Telemetry.ServiceName, level)
	meter := mp.Meter("donortrack")

	gormLog := logger.NewGormLogger(log, logger.GormLevel(cfg.Log.Level), cfg.Telemetry.DBSlowQueryThresh, cfg.Telemetry.DBLogFullSQL)
	db, err := persistence.NewDatabase(ctx, cfg.Database, gormLog)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected")

	if err := migrateUp(db, log); err != nil {
		return err
	}
	if err := telemetry.RegisterDBTracing(db.DB, cfg.Telemetry, log); err != nil {
		return fmt.Errorf("failed to register database tracing: %w", err)
	}
	if mp.IsEnabled() {
		sqlDB, err := db.DB.DB()
		if err != nil {
			return err
		}
		dbMetrics, err := telemetry.NewDBMetrics(meter, sqlDB)
		if err != nil {
			return err
		}
		if err := db.DB.Use(dbMetrics); err != nil {
			return fmt.Errorf("failed to register database metrics: %w", err)
		}
		defer func() { _ = dbMetrics.Close() }()
	}

	var redisClient *redis.Client
	if cfg.Settlement.IdempotencyBackend == "redis" {
		redisClient, err = cache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			return err
		}
		defer func() { _ = redisClient.Close() }()
		log.Info("Redis connected", zap.String("addr", cfg.Redis.Addr()))
	}

	var blacklist auth.TokenBlacklist = auth.NewInMemoryTokenBlacklist()
	if redisClient != nil {
		blacklist = auth.NewRedisTokenBlacklist(redisClient)
	}
	idempotency, err := newIdempotencyStore(cfg.Settlement.IdempotencyBackend, redisClient)
	if err != nil {
		return err
	}
	defer func() { _ = idempotency.Close() }()

	bus := event.NewInMemoryEventBus(log)
	if mp.IsEnabled() {
		donationMetrics, err := telemetry.NewDonationMetrics(meter)
		if err != nil {
			return err
		}
		bus.Subscribe(donationMetrics)
	}

	userRepo := persistence.NewGormUserRepository(db.DB)
	projectRepo := persistence.NewGormProjectRepository(db.DB)
	donationRepo := persistence.NewGormDonationRepository(db.DB)

	ratios, err := impactRatios(cfg.Impact)
	if err != nil {
		return err
	}

	authService := appidentity.NewAuthService(appidentity.AuthServiceConfig{
		UserRepo:       userRepo,
		JWTService:     auth.NewJWTService(cfg.JWT),
		Blacklist:      blacklist,
		EventPublisher: bus,
		Logger:         log,
	})
	userService := appidentity.NewUserService(appidentity.UserServiceConfig{
		UserRepo:  userRepo,
		Donations: donationRepo,
		Projects:  projectRepo,
		Logger:    log,
	})
	projectService := appproject.NewProjectService(appproject.ProjectServiceConfig{
		ProjectRepo:    projectRepo,
		UserRepo:       userRepo,
		Donations:      donationRepo,
		EventPublisher: bus,
		Logger:         log,
	})
	ledger := appdonation.NewLedgerService(appdonation.LedgerServiceConfig{
		TxScope:          persistence.NewGormLedgerTransactionScope(db.DB),
		DonationRepo:     donationRepo,
		ProjectRepo:      projectRepo,
		UserRepo:         userRepo,
		EventPublisher:   bus,
		ReverseOnFailure: cfg.Ledger.ReverseOnFailure,
		Logger:           log,
	})
	settlements := appdonation.NewSettlementService(appdonation.SettlementServiceConfig{
		Ledger: ledger,
		Store:  idempotency,
		TTL:    cfg.Settlement.IdempotencyTTL,
		Logger: log,
	})
	reportService := appreport.NewReportService(appreport.ReportServiceConfig{
		Donations: donationRepo,
		Projects:  projectRepo,
		Ratios:    &ratios,
		Logger:    log,
	})

	exportCfg := appreport.ExportServiceConfig{
		Reports:   reportService,
		URLExpiry: cfg.Storage.PresignExpiration,
		Logger:    log,
	}
	if cfg.Storage.Enabled {
		archive, err := storage.NewS3ArchiveStorage(ctx, cfg.Storage, storage.WithLogger(log))
		if err != nil {
			return err
		}
		if cfg.Storage.CreateBucket {
			if err := archive.EnsureBucket(ctx); err != nil {
				return err
			}
		}
		exportCfg.Storage = archive
		log.Info("Report archiving enabled", zap.String("bucket", archive.Bucket()))
	}
	exportService := appreport.NewExportService(exportCfg)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	routerCfg := router.Config{
		HTTP:             cfg.HTTP,
		Swagger:          cfg.Swagger,
		ServiceName:      cfg.Telemetry.ServiceName,
		Tracing:          tp.IsEnabled(),
		Authenticator:    authService,
		SettlementSecret: cfg.Settlement.Secret,
		Logger:           log,
		Handlers: router.Handlers{
			Health:     handler.NewHealthHandler(db, cfg.App.Name, version),
			Auth:       handler.NewAuthHandler(authService),
			User:       handler.NewUserHandler(userService),
			Donation:   handler.NewDonationHandler(ledger),
			Project:    handler.NewProjectHandler(projectService, ledger),
			Report:     handler.NewReportHandler(reportService, exportService),
			Settlement: handler.NewSettlementHandler(settlements),
		},
	}
	if mp.IsEnabled() {
		routerCfg.Meter = meter
	}
	api, err := router.New(routerCfg)
	if err != nil {
		return err
	}
	defer api.Close()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        api.Engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	if cfg.Settlement.AMQP.Enabled {
		consumer := messaging.NewSettlementConsumer(cfg.Settlement.AMQP, settlements, log)
		g.Go(func() error { return consumer.Run(gctx) })
	}
	return g.Wait()
}

func migrateUp(db *persistence.Database, log *zap.Logger) error {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return err
	}
	m, err := migration.New(sqlDB, migration.Options{}, log)
	if err != nil {
		return err
	}
	// closing the migrator would close the shared pool
	return m.Up()
}

// newIdempotencyStore keeps a nil *redis.Client from becoming a non-nil
// interface value
func newIdempotencyStore(backend string, client *redis.Client) (shared.IdempotencyStore, error) {
	if client == nil {
		return cache.NewIdempotencyStore(backend, nil)
	}
	return cache.NewIdempotencyStore(backend, client)
}

func impactRatios(cfg config.ImpactConfig) (report.ImpactRatios, error) {
	var r report.ImpactRatios
	for _, f := range []struct {
		key   string
		value string
		dst   *decimal.Decimal
	}{
		{"impact.people_helped", cfg.PeopleHelped, &r.PeopleHelped},
		{"impact.trees_planted", cfg.TreesPlanted, &r.TreesPlanted},
		{"impact.meals_provided", cfg.MealsProvided, &r.MealsProvided},
		{"impact.education_hours", cfg.EducationHours, &r.EducationHours},
	} {
		d, err := decimal.NewFromString(f.value)
		if err != nil || !d.IsPositive() {
			return report.ImpactRatios{}, fmt.Errorf("%s must be a positive amount, got %q", f.key, f.value)
		}
		*f.dst = d
	}
	return r, nil
}
