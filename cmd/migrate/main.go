package main

import (
	"log"
	"os"

	"rag-assistant-be/internal/model"
	"rag-assistant-be/pkg/database"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	db, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	color.Cyan("Starting GORM migration...")

	// Extensions and indexes AutoMigrate cannot express.
	color.Yellow("Step 1: Extensions")
	setupSQL := []string{
		`CREATE EXTENSION IF NOT EXISTS "pgcrypto"`,
		`CREATE EXTENSION IF NOT EXISTS "vector"`,
	}
	for _, stmt := range setupSQL {
		if err := db.Exec(stmt).Error; err != nil {
			log.Fatalf("Error: Failed to execute setup statement %q: %v", stmt, err)
		}
	}

	color.Yellow("Step 2: Tables")
	if err := db.AutoMigrate(
		&model.User{},
		&model.Conversation{},
		&model.Message{},
		&model.DocumentChunk{},
	); err != nil {
		log.Fatal("Error: AutoMigrate failed:", err)
	}

	color.Yellow("Step 3: Search indexes")
	indexSQL := []string{
		`CREATE INDEX IF NOT EXISTS idx_document_chunks_embedding
			ON document_chunks USING hnsw (embedding vector_cosine_ops)`,
		`CREATE INDEX IF NOT EXISTS idx_document_chunks_content_fts
			ON document_chunks USING gin (to_tsvector('english', content))`,
	}
	for _, stmt := range indexSQL {
		if err := db.Exec(stmt).Error; err != nil {
			log.Fatalf("Error: Failed to create index: %v", err)
		}
	}

	color.Green("Migration completed successfully.")
}
