package auth

import (
	"net"
	"net/http"
	"strings"

	"chatfeed/pkg/logger"
	"chatfeed/pkg/utils"
)

// SecConfig carries the security settings applied by the middleware.
type SecConfig struct {
	AllowedOrigins []string
	RPS            float64
	Burst          int
	// Keys holds the accepted API keys. Empty plus AllowUnauth false
	// rejects every request, which is almost never what you want; the
	// config loader warns about it.
	Keys        map[string]struct{}
	AllowUnauth bool
}

// Middleware authenticates and rate-limits requests. Health endpoints
// pass through unauthenticated so probes keep working.
func Middleware(cfg SecConfig) func(http.Handler) http.Handler {
	// rate limiters keyed by api key or remote ip
	limiters := &limiterPool{cfg: cfg}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// cors preflight
			origin := r.Header.Get("Origin")
			if origin != "" && originAllowed(origin, cfg.AllowedOrigins) {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Vary", "Origin")
				w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
				w.Header().Set("Access-Control-Max-Age", "600")
				w.Header().Set("Access-Control-Allow-Headers", "Authorization,Content-Type,X-API-Key")
			}
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			// allow unauthenticated health checks for probes
			if (r.URL.Path == "/healthz" || r.URL.Path == "/readyz") && r.Method == http.MethodGet {
				next.ServeHTTP(w, r)
				return
			}

			key, hasKey := apiKey(r)
			if hasKey {
				if _, ok := cfg.Keys[key]; !ok {
					utils.JSONError(w, http.StatusUnauthorized, "unauthorized")
					logger.Warn("request_unauthorized", "reason", "unknown_api_key", "path", r.URL.Path, "remote", r.RemoteAddr)
					return
				}
			} else {
				if !cfg.AllowUnauth {
					utils.JSONError(w, http.StatusUnauthorized, "unauthorized")
					logger.Warn("request_unauthorized", "reason", "missing_api_key", "path", r.URL.Path, "remote", r.RemoteAddr)
					return
				}
				key = clientIP(r)
			}

			if !limiters.Allow(key) {
				utils.JSONError(w, http.StatusTooManyRequests, "rate limit exceeded")
				logger.Warn("rate_limited", "has_api_key", hasKey, "path", r.URL.Path)
				return
			}

			logger.Debug("request_allowed", "method", r.Method, "path", r.URL.Path)
			next.ServeHTTP(w, r)
		})
	}
}

func apiKey(r *http.Request) (string, bool) {
	// prefer authorization: bearer <key>, fallback to x-api-key, then
	// an api_key query param for clients that cannot set headers
	// (browser websocket dialers)
	auth := r.Header.Get("Authorization")
	var key string
	if strings.HasPrefix(strings.ToLower(auth), "bearer ") {
		key = strings.TrimSpace(auth[7:])
	}
	if key == "" {
		key = r.Header.Get("X-API-Key")
	}
	if key == "" {
		key = r.URL.Query().Get("api_key")
	}
	if key == "" {
		return "", false
	}
	return key, true
}

func originAllowed(origin string, allowed []string) bool {
	if len(allowed) == 0 {
		return false
	}
	for _, a := range allowed {
		if a == "*" || strings.EqualFold(a, origin) {
			return true
		}
	}
	return false
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
