// Command interest_runner applies the monthly interest batch once and exits.
// Meant to be run by a first-of-month scheduler. Prints a JSON summary to
// stdout; logs go to stderr.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"

	"github.com/shopspring/decimal"

	"github.com/wekeza/wekeza_backend/internal/adapters/database/pgsql"
	"github.com/wekeza/wekeza_backend/internal/core/services"
	"github.com/wekeza/wekeza_backend/internal/dto"
	"github.com/wekeza/wekeza_backend/pkg/config"
	"github.com/wekeza/wekeza_backend/pkg/database"
	"github.com/wekeza/wekeza_backend/pkg/logging"
)

const runnerActor = "interest-runner"

func main() {
	logging.SetupCLI()
	logger := slog.Default()

	rateFlag := flag.String("rate", "", "interest rate as a fraction (e.g. 0.01 for 1%), overrides INTEREST_RATE")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	rate := cfg.InterestRate
	if *rateFlag != "" {
		rate, err = decimal.NewFromString(*rateFlag)
		if err != nil {
			logger.Error("Invalid -rate value", slog.String("rate", *rateFlag), slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	ctx := context.Background()
	dbPool, err := database.NewPgxPool(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("Failed to initialize database pool", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer database.ClosePgxPool(dbPool)

	txm := pgsql.NewPgxTxManager(dbPool)
	debtRepo := pgsql.NewPgxDebtRepository(dbPool)
	runRepo := pgsql.NewPgxInterestRunRepository(dbPool)

	interestSvc, err := services.NewInterestService(txm, debtRepo, runRepo, rate)
	if err != nil {
		logger.Error("Failed to create interest service", slog.String("error", err.Error()))
		os.Exit(1)
	}

	run, err := interestSvc.ApplyMonthlyInterest(ctx, runnerActor)
	if err != nil {
		logger.Error("Interest run failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := json.NewEncoder(os.Stdout).Encode(dto.ToInterestRunResponse(run)); err != nil {
		logger.Error("Failed to encode run summary", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
