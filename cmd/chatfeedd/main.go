package main

import (
	"log"
	"net"
	"strconv"

	"chatfeed/internal/app"
	"chatfeed/pkg/config"
	"chatfeed/pkg/logger"
	"chatfeed/pkg/shutdown"
)

// version is set via ldflags during release builds.
var version = "dev"

func main() {
	addrVal, dbVal, cfgVal, setFlags := config.ParseCommandFlags()

	// config file path: flag wins over CHATFEED_CONFIG
	cfgPath := config.ResolveConfigPath(cfgVal, setFlags["config"])

	// file + env; flags win over both when explicitly provided
	cfg, _, err := config.LoadEffective(cfgPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if setFlags["addr"] {
		if h, p, err := net.SplitHostPort(addrVal); err == nil {
			cfg.Server.Address = h
			if pi, err := strconv.Atoi(p); err == nil {
				cfg.Server.Port = pi
			}
		} else {
			cfg.Server.Address = addrVal
		}
	}
	if setFlags["db"] || cfg.Storage.DBPath == "" {
		cfg.Storage.DBPath = dbVal
	}

	logger.Init(cfg.Logging.Level, cfg.Logging.Format)

	a, err := app.New(cfg, version)
	if err != nil {
		log.Fatalf("startup failed: %v", err)
	}

	ctx := shutdown.SetupSignalHandler()
	if err := a.Run(ctx); err != nil {
		log.Fatalf("server error: %v", err)
	}
	logger.Info("server_stopped")
}
