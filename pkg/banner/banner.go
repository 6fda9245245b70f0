package banner

import (
	"fmt"

	"chatfeed/pkg/config"
)

const banner = `
 ██████╗██╗  ██╗ █████╗ ████████╗███████╗███████╗███████╗██████╗
██╔════╝██║  ██║██╔══██╗╚══██╔══╝██╔════╝██╔════╝██╔════╝██╔══██╗
██║     ███████║███████║   ██║   █████╗  █████╗  █████╗  ██║  ██║
██║     ██╔══██║██╔══██║   ██║   ██╔══╝  ██╔══╝  ██╔══╝  ██║  ██║
╚██████╗██║  ██║██║  ██║   ██║   ██║     ███████╗███████╗██████╔╝
 ╚═════╝╚═╝  ╚═╝╚═╝  ╚═╝   ╚═╝   ╚═╝     ╚══════╝╚══════╝╚═════╝
`

// Print shows the effective runtime configuration at startup.
func Print(cfg *config.Config, version string) {
	fmt.Print(banner)
	fmt.Println("== Config =====================================================")
	fmt.Printf("Listen:   %s\n", cfg.Addr())
	fmt.Printf("Engine:   %s\n", cfg.Server.Engine)
	fmt.Printf("DB Path:  %s\n", cfg.Storage.DBPath)
	if version != "" {
		fmt.Printf("Version:  %s\n", version)
	}

	fmt.Println("\n== Endpoints ==================================================")
	fmt.Println("POST /v1/messages                 - Add a message")
	fmt.Println("GET  /v1/messages?a=<id>&b=<id>   - List a direct conversation")
	fmt.Println("GET  /v1/messages?group=true      - List the group room")
	fmt.Println("GET  /v1/feed?...                 - Live change feed (websocket)")

	fmt.Println("\n== Production? ================================================")
	if n := len(cfg.Security.APIKeys.Keys); n > 0 {
		fmt.Printf("- API keys: OK (%d)\n", n)
	} else if cfg.Security.APIKeys.AllowUnauth {
		fmt.Println("- API keys: none, unauthenticated access allowed")
	} else {
		fmt.Println("- API keys: MISSING (every request will be rejected)")
	}
	if cfg.Server.TLS.CertFile != "" && cfg.Server.TLS.KeyFile != "" {
		fmt.Println("- TLS: configured")
	} else {
		fmt.Println("- TLS: unconfigured")
	}
	if cfg.Retention.Enabled {
		fmt.Printf("- Retention: enabled (cron=%s period=%s)\n", cfg.Retention.Cron, cfg.Retention.Period)
	} else {
		fmt.Println("- Retention: disabled")
	}

	fmt.Println("\n== Logs ======================================================")
}
