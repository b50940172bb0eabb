package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"

	"github.com/joho/godotenv"

	"github.com/jacobpanov/compiler-explorer/internal/platform"
)

func main() {
	_ = godotenv.Load() // repo-wide defaults; real env wins
	platform.InitMetrics()
	platform.InitLogger()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	appCfg := platform.LoadAppConfig()

	// --- Run embedded NATS server ---
	nc, ns, natErrCh, err := platform.RunEmbeddedServer(ctx, *appCfg.NatsCfg)
	if err != nil {
		slog.Error("Failed to start embedded server", "err", err)
		os.Exit(1)
	}
	defer nc.Close()
	defer ns.Shutdown()

	if err := platform.EnsureStreams(ctx, nc); err != nil {
		slog.Error("Failed to create streams", "err", err)
		os.Exit(1)
	}

	var httpErrCh <-chan error
	if !appCfg.Flags.Headless {
		httpErrCh = platform.RunHTTPServer(ctx, nc, *appCfg.HTTPSrvCfg)
	} else {
		// Create a dummy channel that never sends
		ch := make(chan error)
		httpErrCh = ch
	}

	select {
	case err := <-natErrCh:
		if err != nil && err != context.Canceled {
			slog.Error("Embedded server error", "err", err)
		}
	case err := <-httpErrCh:
		if err != nil && err != context.Canceled {
			slog.Error("HTTP server error", "err", err)
		}
	}
	cancel()
}
