// Package httpx runs the HTTP surface on one of two engines: standard
// net/http, or fasthttp behind an adaptor. The fasthttp engine cannot
// hijack connections, so deployments that serve the websocket feed
// should stay on the default net/http engine.
package httpx

import (
	"context"
	"net/http"
	"time"

	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"

	"chatfeed/pkg/logger"
)

const (
	EngineNetHTTP  = "nethttp"
	EngineFastHTTP = "fasthttp"
)

// Serve listens on addr until ctx is cancelled, then shuts down
// gracefully. certFile/keyFile enable TLS when both are set.
func Serve(ctx context.Context, addr, engine string, h http.Handler, certFile, keyFile string) error {
	switch engine {
	case EngineFastHTTP:
		return serveFast(ctx, addr, h, certFile, keyFile)
	case EngineNetHTTP, "":
		return serveNet(ctx, addr, h, certFile, keyFile)
	default:
		logger.Warn("unknown_http_engine", "engine", engine)
		return serveNet(ctx, addr, h, certFile, keyFile)
	}
}

func serveNet(ctx context.Context, addr string, h http.Handler, certFile, keyFile string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		if certFile != "" && keyFile != "" {
			errCh <- srv.ListenAndServeTLS(certFile, keyFile)
		} else {
			errCh <- srv.ListenAndServe()
		}
	}()
	select {
	case <-ctx.Done():
		sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(sctx)
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}

func serveFast(ctx context.Context, addr string, h http.Handler, certFile, keyFile string) error {
	srv := &fasthttp.Server{
		Handler:     fasthttpadaptor.NewFastHTTPHandler(h),
		ReadTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		if certFile != "" && keyFile != "" {
			errCh <- srv.ListenAndServeTLS(addr, certFile, keyFile)
		} else {
			errCh <- srv.ListenAndServe(addr)
		}
	}()
	select {
	case <-ctx.Done():
		return srv.Shutdown()
	case err := <-errCh:
		return err
	}
}
