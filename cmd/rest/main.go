package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"ai-chatbot-be/internal/bootstrap"
	"ai-chatbot-be/internal/config"
	"ai-chatbot-be/internal/constant"
	"ai-chatbot-be/internal/server"
	"ai-chatbot-be/internal/tracer"
	"ai-chatbot-be/pkg/database"

	"github.com/google/uuid"
)

func main() {
	// 1. Load Configuration
	cfg := config.Load()
	if cfg.App.InstanceID == "" {
		cfg.App.InstanceID = defaultInstanceID()
	}

	// 2. Initialize Database
	gormDB, err := database.NewGormDBFromDSN(cfg.Database.Connection, cfg.App.Environment != "production")
	if err != nil {
		log.Panicf("Unable to connect to GORM DB: %v", err)
	}

	// 3. Bootstrap Dependencies (Container)
	container, err := bootstrap.NewContainer(gormDB, cfg)
	if err != nil {
		log.Fatalf("Failed to bootstrap: %v", err)
	}
	defer container.Close()
	sysLogger := container.Logger

	shutdownTracer := tracer.InitTracer(sysLogger)
	defer shutdownTracer(context.Background())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 4. Restore state
	container.ConfigService.RestoreMode(ctx)
	if _, err := container.EmbeddingService.Load(ctx); err != nil {
		sysLogger.Error("MAIN", "Failed to load vector index", map[string]interface{}{
			"error": err.Error(),
		})
	}

	// 5. Start Background Services
	if err := container.ConsumerService.Consume(ctx); err != nil {
		sysLogger.Error("MAIN", "Failed to start indexing consumer", map[string]interface{}{
			"error": err.Error(),
		})
	}
	if container.EventSubscriber != nil {
		durable := "chat-mode-" + cfg.App.InstanceID
		err := container.EventSubscriber.Subscribe(ctx, constant.EventChatModeChanged, durable, container.ConfigService.HandleModeChanged)
		if err != nil {
			sysLogger.Error("MAIN", "Failed to subscribe to mode changes", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}

	// 6. Run Server
	srv := server.New(cfg, container)
	go func() {
		if err := srv.Run(); err != nil {
			sysLogger.Error("MAIN", "Server stopped", map[string]interface{}{
				"error": err.Error(),
			})
			stop()
		}
	}()

	<-ctx.Done()
	sysLogger.Info("MAIN", "Shutting down", nil)

	done := make(chan struct{})
	go func() {
		if err := srv.Shutdown(); err != nil {
			sysLogger.Error("MAIN", "Server shutdown failed", map[string]interface{}{
				"error": err.Error(),
			})
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(10 * time.Second):
		sysLogger.Warn("MAIN", "Server shutdown timed out", nil)
	}
}

// defaultInstanceID names this replica for its NATS durable consumer.
func defaultInstanceID() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		return uuid.NewString()
	}
	return strings.NewReplacer(".", "-", "*", "-", ">", "-", " ", "-").Replace(host)
}
