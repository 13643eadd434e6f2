package main

import (
	"context"
	"log"

	"vault-copilot-be/internal/bootstrap"
	"vault-copilot-be/internal/config"
	"vault-copilot-be/internal/model"
	"vault-copilot-be/internal/server"
	"vault-copilot-be/internal/tracer"
	"vault-copilot-be/pkg/database"
)

func main() {
	// 0. Tracing (no-op unless OTEL_ENABLED)
	shutdownTracer := tracer.InitTracer()
	defer shutdownTracer(context.Background())

	// 1. Configuration
	cfg := config.Load()

	// 2. Database
	gormDB, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Panicf("Unable to connect to GORM DB: %v", err)
	}
	if err := gormDB.AutoMigrate(&model.Conversation{}, &model.ConversationMessage{}); err != nil {
		log.Panicf("Unable to migrate schema: %v", err)
	}

	// 3. Dependency container
	container := bootstrap.NewContainer(gormDB, cfg)

	// 4. Background indexing consumer
	go func() {
		log.Println("Background: starting indexing consumer...")
		if err := container.IndexingService.Consume(context.Background()); err != nil {
			log.Printf("Background indexing error: %v", err)
		}
	}()

	// 5. HTTP server
	srv := server.New(cfg, container)
	log.Fatal(srv.Run())
}
