package main

import (
	"context"
	"testing"
	"time"

	appdonation "github.com/donortrack/backend/internal/application/donation"
	appidentity "github.com/donortrack/backend/internal/application/identity"
	appproject "github.com/donortrack/backend/internal/application/project"
	"github.com/donortrack/backend/internal/infrastructure/auth"
	"github.com/donortrack/backend/internal/infrastructure/cache"
	"github.com/donortrack/backend/internal/infrastructure/config"
	"github.com/donortrack/backend/internal/infrastructure/persistence"
	"github.com/donortrack/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestSeeder(t *testing.T) (*Seeder, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		SkipDefaultTransaction: true,
		TranslateError:         true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(
		&models.UserModel{},
		&models.ProjectModel{},
		&models.MilestoneModel{},
		&models.UpdateModel{},
		&models.ImpactMetricModel{},
		&models.DonationModel{},
	))

	log := zaptest.NewLogger(t)
	users := persistence.NewGormUserRepository(db)
	projects := persistence.NewGormProjectRepository(db)
	donations := persistence.NewGormDonationRepository(db)
	idempotency := cache.NewInMemoryIdempotencyStore(time.Minute)
	t.Cleanup(func() { _ = idempotency.Close() })

	accounts := appidentity.NewAuthService(appidentity.AuthServiceConfig{
		UserRepo: users,
		JWTService: auth.NewJWTService(config.JWTConfig{
			Secret:                 "seed-test-secret-0123456789abcdef",
			AccessTokenExpiration:  time.Minute,
			RefreshTokenExpiration: time.Hour,
			Issuer:                 "donortrack-test",
		}),
		Blacklist: auth.NewInMemoryTokenBlacklist(),
		Logger:    log,
	})
	catalog := appproject.NewProjectService(appproject.ProjectServiceConfig{
		ProjectRepo: projects,
		UserRepo:    users,
		Donations:   donations,
		Logger:      log,
	})
	ledger := appdonation.NewLedgerService(appdonation.LedgerServiceConfig{
		TxScope:          persistence.NewGormLedgerTransactionScope(db),
		DonationRepo:     donations,
		ProjectRepo:      projects,
		UserRepo:         users,
		ReverseOnFailure: true,
		Logger:           log,
	})
	settlements := appdonation.NewSettlementService(appdonation.SettlementServiceConfig{
		Ledger: ledger,
		Store:  idempotency,
		TTL:    time.Minute,
		Logger: log,
	})
	return NewSeeder(accounts, catalog, ledger, settlements, 42, log), db
}

func TestSeederKeepsRunningTotalsConsistent(t *testing.T) {
	seeder, db := newTestSeeder(t)

	summary, err := seeder.Run(context.Background(), SeedOptions{
		Donors:            3,
		Projects:          2,
		DonationsPerDonor: 6,
		Password:          "donortrack-demo",
	})
	require.NoError(t, err)

	assert.Equal(t, 4, summary.Users)
	assert.Equal(t, 2, summary.Projects)
	assert.Equal(t, 18, summary.Donations)

	counted := 0
	for _, n := range summary.ByStatus {
		counted += n
	}
	assert.Equal(t, summary.Donations, counted)

	var stored int64
	require.NoError(t, db.Model(&models.DonationModel{}).Count(&stored).Error)
	assert.Equal(t, int64(summary.Donations), stored)

	var projects []models.ProjectModel
	require.NoError(t, db.Find(&projects).Error)
	require.Len(t, projects, 2)
	total := decimal.Zero
	for _, p := range projects {
		total = total.Add(p.CurrentAmount)
	}
	assert.True(t, summary.Outstanding.Equal(total), "outstanding %s, projects hold %s", summary.Outstanding, total)

	var milestones int64
	require.NoError(t, db.Model(&models.MilestoneModel{}).Count(&milestones).Error)
	assert.Equal(t, int64(6), milestones)
}

func TestSeederWithoutProjectsOnlyCreatesNGO(t *testing.T) {
	seeder, db := newTestSeeder(t)

	summary, err := seeder.Run(context.Background(), SeedOptions{Donors: 5, DonationsPerDonor: 3, Password: "donortrack-demo"})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Users)
	assert.Zero(t, summary.Donations)

	var users int64
	require.NoError(t, db.Model(&models.UserModel{}).Count(&users).Error)
	assert.Equal(t, int64(1), users)
}
