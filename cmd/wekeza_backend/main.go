package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"os"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ulule/limiter/v3"
	memorystore "github.com/ulule/limiter/v3/drivers/store/memory"

	migrate "github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/wekeza/wekeza_backend/internal/adapters/database/pgsql"
	portssvc "github.com/wekeza/wekeza_backend/internal/core/ports/services"
	"github.com/wekeza/wekeza_backend/internal/core/services"
	"github.com/wekeza/wekeza_backend/internal/dto"
	"github.com/wekeza/wekeza_backend/internal/handlers"
	"github.com/wekeza/wekeza_backend/internal/middleware"
	"github.com/wekeza/wekeza_backend/pkg/config"
	"github.com/wekeza/wekeza_backend/pkg/database"
	"github.com/wekeza/wekeza_backend/pkg/logging"
)

func main() {
	logging.SetupJSON()
	logger := slog.Default()

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	dbPool, err := database.NewPgxPool(context.Background(), cfg.DatabaseURL)
	if err != nil {
		logger.Error("Failed to initialize database pool", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer database.ClosePgxPool(dbPool)

	if err := runMigrations(cfg.DatabaseURL, logger); err != nil {
		logger.Error("Failed to apply migrations", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	rate, err := limiter.NewRateFromFormatted(cfg.RateLimit)
	if err != nil {
		logger.Error("Invalid RATE_LIMIT format", slog.String("rate_limit", cfg.RateLimit), slog.String("error", err.Error()))
		os.Exit(1)
	}
	limiterInstance := limiter.New(memorystore.NewStore(), rate)

	if err := dto.RegisterCustomValidators(); err != nil {
		logger.Error("Failed to register custom validators", slog.String("error", err.Error()))
		os.Exit(1)
	}

	r := gin.New()
	r.Use(
		middleware.StructuredLoggingMiddleware(logger),
		gin.Recovery(),
		cors.Default(),
		middleware.RateLimit(limiterInstance),
	)
	if err := r.SetTrustedProxies(nil); err != nil {
		logger.Error("Failed to set trusted proxies", slog.String("error", err.Error()))
		os.Exit(1)
	}

	container, err := buildServices(dbPool, cfg)
	if err != nil {
		logger.Error("Failed to build services", slog.String("error", err.Error()))
		os.Exit(1)
	}

	handlers.RegisterRoutes(r, container)

	logger.Info("Server starting", slog.String("port", cfg.Port))
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Error("Server failed to run", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// buildServices wires repositories into the service facades.
func buildServices(dbPool *pgxpool.Pool, cfg *config.Config) (*portssvc.ServiceContainer, error) {
	txm := pgsql.NewPgxTxManager(dbPool)
	debtRepo := pgsql.NewPgxDebtRepository(dbPool)
	savingRepo := pgsql.NewPgxSavingRepository(dbPool)
	collectionRepo := pgsql.NewPgxAccountCollectionRepository(dbPool)
	incomeRepo := pgsql.NewPgxIncomeRepository(dbPool)
	receivableRepo := pgsql.NewPgxReceivableRepository(dbPool)
	effectRepo := pgsql.NewPgxEffectRepository(dbPool)
	accountRepo := pgsql.NewPgxAccountRepository(dbPool)
	runRepo := pgsql.NewPgxInterestRunRepository(dbPool)

	effectSvc := services.NewEffectService(txm, effectRepo, debtRepo, savingRepo, collectionRepo)
	postingSvc := services.NewPostingService(txm, debtRepo, savingRepo, collectionRepo, incomeRepo, receivableRepo, accountRepo, effectSvc)
	receivableSvc := services.NewReceivableService(txm, receivableRepo, effectSvc)
	savingSvc := services.NewSavingService(savingRepo)
	interestSvc, err := services.NewInterestService(txm, debtRepo, runRepo, cfg.InterestRate)
	if err != nil {
		return nil, err
	}

	return &portssvc.ServiceContainer{
		Posting:    postingSvc,
		Receivable: receivableSvc,
		Effect:     effectSvc,
		Interest:   interestSvc,
		Saving:     savingSvc,
	}, nil
}

// runMigrations applies all pending migrations from file://migrations using a
// short-lived database/sql connection via the pgx stdlib driver.
func runMigrations(databaseURL string, logger *slog.Logger) error {
	migrationDB, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := migrationDB.Close(); cerr != nil {
			logger.Error("Error closing migration DB connection", slog.String("error", cerr.Error()))
		}
	}()
	if err := migrationDB.Ping(); err != nil {
		return err
	}

	driver, err := postgres.WithInstance(migrationDB, &postgres.Config{})
	if err != nil {
		return err
	}
	m, err := migrate.NewWithDatabaseInstance("file://migrations", "postgres", driver)
	if err != nil {
		return err
	}

	err = m.Up()
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}

	sourceErr, dbErr := m.Close()
	if sourceErr != nil {
		return sourceErr
	}
	if dbErr != nil {
		return dbErr
	}

	if errors.Is(err, migrate.ErrNoChange) {
		logger.Info("No new migrations to apply.")
	} else {
		logger.Info("Database migrations applied successfully.")
	}
	return nil
}
