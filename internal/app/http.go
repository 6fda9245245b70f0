package app

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"chatfeed/pkg/api"
	"chatfeed/pkg/auth"
	"chatfeed/pkg/httpx"
	"chatfeed/pkg/logger"
)

// handler assembles the route table with auth in front and the metrics
// endpoint outside the authenticated surface.
func (a *App) handler() http.Handler {
	sec := auth.SecConfig{
		AllowedOrigins: a.cfg.Security.CORS.AllowedOrigins,
		RPS:            a.cfg.Security.RateLimit.RPS,
		Burst:          a.cfg.Security.RateLimit.Burst,
		Keys:           make(map[string]struct{}, len(a.cfg.Security.APIKeys.Keys)),
		AllowUnauth:    a.cfg.Security.APIKeys.AllowUnauth,
	}
	for _, k := range a.cfg.Security.APIKeys.Keys {
		sec.Keys[k] = struct{}{}
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/", auth.Middleware(sec)(api.New(a.store).Router()))
	return mux
}

func (a *App) serveHTTP(ctx context.Context) error {
	engine := a.cfg.Server.Engine
	logger.Info("http_listening", "addr", a.cfg.Addr(), "engine", engine)
	return httpx.Serve(ctx, a.cfg.Addr(), engine, a.handler(),
		a.cfg.Server.TLS.CertFile, a.cfg.Server.TLS.KeyFile)
}
