package shutdown

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"chatfeed/pkg/logger"
)

// SetupSignalHandler returns a context cancelled on SIGINT or SIGTERM.
// A second signal exits immediately.
func SetupSignalHandler() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan os.Signal, 2)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-ch
		logger.Info("shutdown_signal", "signal", sig.String())
		cancel()
		<-ch
		logger.Warn("forced_exit")
		os.Exit(1)
	}()
	return ctx
}
