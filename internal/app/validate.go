package app

import (
	"fmt"
	"os"

	"chatfeed/pkg/config"
	"chatfeed/pkg/logger"
)

// validateConfig performs quick, fail-fast validation of the effective
// configuration before starting long-running services. Keep checks light
// and focused so callers can surface user-friendly errors.
func validateConfig(cfg *config.Config) error {
	if cfg.Storage.DBPath == "" {
		return fmt.Errorf("database path is empty: set --db flag, CHATFEED_DB_PATH env, or storage.db_path in config")
	}

	cert := cfg.Server.TLS.CertFile
	key := cfg.Server.TLS.KeyFile
	if (cert != "" && key == "") || (cert == "" && key != "") {
		return fmt.Errorf("incomplete TLS configuration: both server.tls.cert_file and server.tls.key_file must be set")
	}
	if cert != "" {
		if _, err := os.Stat(cert); err != nil {
			return fmt.Errorf("tls cert file not accessible: %w", err)
		}
		if _, err := os.Stat(key); err != nil {
			return fmt.Errorf("tls key file not accessible: %w", err)
		}
	}

	if len(cfg.Security.APIKeys.Keys) == 0 && !cfg.Security.APIKeys.AllowUnauth {
		logger.Warn("no_api_keys_configured", "hint", "set security.api_keys or allow_unauth")
	}

	if cfg.Retention.Enabled && cfg.Retention.Period == "" {
		return fmt.Errorf("retention enabled but retention.period is empty")
	}
	return nil
}
