package main

import (
	"context"
	"log"

	"ai-chatbot-be/internal/bootstrap"
	"ai-chatbot-be/internal/config"
	"ai-chatbot-be/pkg/database"
)

// Re-embeds every stored segment with the configured embedding provider.
// Run it after switching embedding models.
func main() {
	cfg := config.Load()

	db, err := database.NewGormDBFromDSN(cfg.Database.Connection, false)
	if err != nil {
		log.Fatalf("Unable to connect to GORM DB: %v", err)
	}

	container, err := bootstrap.NewContainer(db, cfg)
	if err != nil {
		log.Fatalf("Failed to bootstrap: %v", err)
	}
	defer container.Close()

	res, err := container.EmbeddingService.ReindexAll(context.Background())
	if err != nil {
		log.Fatalf("Reindex failed: %v", err)
	}

	log.Printf("Reindex finished: %d/%d segments indexed, %d failed, dimension %d, took %dms",
		res.Indexed, res.Total, res.Failed, res.Dimension, res.DurationMs)
}
