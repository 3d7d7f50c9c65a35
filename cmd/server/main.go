package main

import (
	"fmt"
	"os"

	"github.com/gin-gonic/gin"

	"daybill/internal/config"
	"daybill/internal/handler"
	"daybill/internal/logging"
	"daybill/internal/router"
	"daybill/internal/service"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log := logging.Setup(cfg.Log.Level, cfg.Log.Format)
	if cfg.Server.Environment != "development" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize services
	extractSvc := service.NewExtractService(&cfg.Upload, log)

	// Initialize handlers
	extractH := handler.NewExtractHandler(extractSvc)
	healthH := handler.NewHealthHandler()

	// Setup router
	r := router.Setup(extractH, healthH, log)

	log.Info().Str("port", cfg.Server.Port).Msg("server starting")
	if err := r.Run(cfg.Server.Port); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}
