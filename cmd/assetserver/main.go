// Package main is the entry point for the asset server.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/leodutra/bevy-city/internal/assets"
	"github.com/leodutra/bevy-city/internal/config"
	"github.com/leodutra/bevy-city/internal/logger"
	"github.com/leodutra/bevy-city/internal/server"
)

var flagWriteConfig = flag.Bool("writeconfig", false, "Write the effective config to the user config dir and exit")

func main() {
	// Parse CLI flags first
	config.ParseFlags()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	if *flagWriteConfig {
		if err := cfg.Save(); err != nil {
			fmt.Fprintf(os.Stderr, "Config save error: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Config written to", config.ConfigDir())
		return
	}

	// Initialize logger
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("=== Vice City Asset Server ===")
	logger.Sugar.Debugf("Config: %+v", cfg)

	// Mount game data
	manager := assets.NewManager()
	defer manager.Close()

	for _, path := range cfg.Data.IMGPaths {
		if err := manager.AddArchive(path); err != nil {
			logger.Warn("skipping archive", zap.String("path", path), zap.Error(err))
		}
	}
	if cfg.Data.AssetDir != "" {
		manager.SetDirectory(cfg.Data.AssetDir)
	}

	srv := server.New(cfg.Server.Addr, manager, logger.Named("server"))

	// Shut down on interrupt, draining in-flight requests.
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-stop
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("shutdown", zap.Error(err))
		}
	}()

	if err := srv.ListenAndServe(); err != nil {
		logger.Error("server error", zap.Error(err))
		os.Exit(1)
	}

	logger.Info("server closed normally")
}
