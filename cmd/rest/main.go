package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"econote-be/internal/bootstrap"
	"econote-be/internal/config"
	"econote-be/internal/discovery"
	"econote-be/internal/server"
	"econote-be/internal/tracer"
)

const shutdownTimeout = 15 * time.Second

func main() {
	// 1. Load Configuration
	cfg := config.Load()

	// 2. Tracing (no-op unless OTEL_ENABLED)
	shutdownTracer := tracer.InitTracer(cfg.Tracing)

	// 3. Bootstrap Dependencies (Container)
	container, err := bootstrap.NewContainer(cfg)
	if err != nil {
		log.Fatalf("Failed to bootstrap: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 4. Start Background Services
	go container.WebSocketHub.Run(ctx)

	if err := container.NotificationService.Start(ctx); err != nil {
		log.Printf("Background Notification Relay Error: %v", err)
	}
	if err := container.ConsumerService.Consume(ctx); err != nil {
		log.Printf("Background Consumer Error: %v", err)
	}

	if cfg.Discovery.Enabled {
		port, _ := strconv.Atoi(cfg.App.Port)
		mdnsServer, err := discovery.Advertise(cfg.Discovery.Instance, port)
		if err != nil {
			log.Printf("[WARN] mDNS advertisement failed: %v", err)
		} else {
			defer mdnsServer.Shutdown()
			log.Printf("Advertising %s as %q", discovery.ServiceType, cfg.Discovery.Instance)
		}
	}

	// 5. Initialize Server
	srv := server.New(cfg, container)

	go func() {
		if err := srv.Run(); err != nil {
			log.Printf("Server stopped: %v", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down, flushing open sessions...")

	if err := srv.Shutdown(); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	flushCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	container.SessionManager.CloseAll(flushCtx)
	container.Close()

	if err := shutdownTracer(flushCtx); err != nil {
		log.Printf("Tracer shutdown error: %v", err)
	}
}
