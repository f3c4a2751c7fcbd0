package main

import (
	"fmt"
	"os"

	"github.com/nurpe/sales-crm/internal/auth"
	"github.com/nurpe/sales-crm/internal/config"
	"github.com/nurpe/sales-crm/internal/db"
	"github.com/nurpe/sales-crm/internal/excel"
	httphandler "github.com/nurpe/sales-crm/internal/http"
	"github.com/nurpe/sales-crm/internal/http/middleware"
	"github.com/nurpe/sales-crm/internal/logger"
	"github.com/nurpe/sales-crm/internal/pdf"
	"github.com/nurpe/sales-crm/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Environment)

	database, err := db.New(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect database")
	}

	tokens := auth.NewManager(cfg.Auth.AccessSecret, cfg.Auth.AccessTokenTTL, cfg.Auth.RefreshTokenTTL)

	authService := service.NewAuthService(database, tokens)
	customerService := service.NewCustomerService(database)
	quoteService := service.NewQuoteService(database)
	contractService := service.NewContractService(database)
	orderService := service.NewOrderService(database)
	statsService := service.NewStatsService(database)
	exportService := service.NewExportService(database, excel.NewGenerator(), pdf.NewGenerator())

	handler := httphandler.NewHandler(
		authService,
		customerService,
		quoteService,
		contractService,
		orderService,
		statsService,
		exportService,
		log,
	)
	authMiddleware := middleware.Auth(tokens)
	router := httphandler.NewRouter(handler, authMiddleware, cfg.Environment)

	addr := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
	log.Info().Str("addr", addr).Msg("starting crm server")

	if err := router.Run(addr); err != nil {
		log.Error().Err(err).Msg("server stopped")
		os.Exit(1)
	}
}
