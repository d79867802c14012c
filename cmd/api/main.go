// Command api runs the webhook relay HTTP server together with its delivery
// worker pool, job scheduler, and retention purger.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/webhookrelay/relay/internal/app"
)

func main() {
	a := app.New()

	if err := a.Initialize(); err != nil {
		os.Stderr.WriteString("failed to initialize application: " + err.Error() + "\n")
		os.Exit(1)
	}

	log := a.Logger()

	errCh := make(chan error, 1)
	go func() {
		if err := a.Start(); err != nil {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		log.WithField("error", err.Error()).Fatal("server failed")
	case sig := <-sigCh:
		log.WithField("signal", sig.String()).Info("shutdown signal received")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := a.Shutdown(ctx); err != nil {
		log.WithField("error", err.Error()).Error("error during shutdown")
	}

	log.Info("shutdown complete")
}
