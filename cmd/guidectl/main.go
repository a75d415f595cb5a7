package main

import (
	"context"
	"os"

	"github.com/ssmgcode/cargo-expreso-control/internal/cli"
	"github.com/ssmgcode/cargo-expreso-control/internal/config"
	"github.com/ssmgcode/cargo-expreso-control/internal/logger"
	"github.com/ssmgcode/cargo-expreso-control/internal/repository"
	"github.com/ssmgcode/cargo-expreso-control/internal/services/reconciliation"
)

func main() {
	cfg := config.Load()
	// Table output goes to stdout; logs go to stderr.
	logger.InitWithWriter(cfg.LogLevel, os.Stderr)

	db, err := config.InitDB(cfg)
	if err != nil {
		logger.L.Error("Failed to initialize database", "error", err)
		os.Exit(cli.ExitFatal)
	}

	svc := reconciliation.NewReconciliationService(
		repository.NewGuideRepository(db),
		repository.NewSettlementRepository(db),
		repository.NewBatchRepository(db),
		reconciliation.Options{
			DropFooter:       cfg.DropFooterRow,
			IncludeGuideType: cfg.IncludeGuideType,
		},
	)

	app := &cli.App{
		Service:             svc,
		SheetName:           cfg.SheetName,
		SettlementHeaderRow: cfg.SettlementHeaderRow,
		Out:                 os.Stdout,
		Err:                 os.Stderr,
	}
	os.Exit(app.Run(context.Background(), os.Args[1:]))
}
