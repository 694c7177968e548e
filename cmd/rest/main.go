package main

import (
	"context"
	"log"
	"time"

	"rag-assistant-be/internal/bootstrap"
	"rag-assistant-be/internal/config"
	"rag-assistant-be/internal/server"
	"rag-assistant-be/internal/tracer"
	"rag-assistant-be/pkg/database"
)

func main() {
	// 0. Initialize Tracer
	shutdownTracer := tracer.InitTracer()
	defer shutdownTracer(context.Background())

	// 1. Load Configuration
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// 2. Initialize Database
	gormDB, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Panicf("Unable to connect to GORM DB: %v", err)
	}

	// 3. Bootstrap Dependencies (Container)
	container := bootstrap.NewContainer(gormDB, cfg)
	defer container.Close()

	// 4. Start Background Services
	go func() {
		log.Println("Background: Starting Consumer Service...")
		if err := container.ConsumerService.Consume(context.Background()); err != nil {
			log.Printf("Background Consumer Error: %v", err)
		}
	}()
	go runSessionJanitor(container, cfg)

	// 5. Initialize and Run Server
	srv := server.New(cfg, container)
	log.Fatal(srv.Run())
}

// runSessionJanitor sweeps idle sessions on the configured interval.
func runSessionJanitor(container *bootstrap.Container, cfg *config.Config) {
	ticker := time.NewTicker(cfg.Memory.SessionCleanupInterval)
	defer ticker.Stop()

	for now := range ticker.C {
		evicted := container.SessionStore.EvictExpired(now, cfg.Memory.SessionTimeout)
		if evicted > 0 {
			container.Logger.Info("session_janitor", "Evicted idle sessions", map[string]interface{}{
				"count": evicted,
			})
		}
	}
}
