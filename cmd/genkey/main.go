// Package main implements the genkey operator tool: mint a device API key for
// a tenant, store its bcrypt hash, and print the raw key exactly once.
//
// Usage:
//
//	genkey -tenant <tenant-uuid> [-description "front desk laptop"]
//
// The raw key cannot be recovered later; only the hash and display prefix are
// persisted.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/google/uuid"

	"github.com/songbird-live/songbird-backend/internal/auth"
	"github.com/songbird-live/songbird-backend/internal/config"
	"github.com/songbird-live/songbird-backend/internal/db"
	"github.com/songbird-live/songbird-backend/internal/db/models"
	"github.com/songbird-live/songbird-backend/internal/db/repositories"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Error: %v\n", err)
	}
}

func run() error {
	tenantFlag := flag.String("tenant", "", "tenant UUID the key belongs to (required)")
	description := flag.String("description", "", "optional human-readable label for the key")
	flag.Parse()

	if *tenantFlag == "" {
		flag.Usage()
		return fmt.Errorf("-tenant is required")
	}

	tenantID, err := uuid.Parse(*tenantFlag)
	if err != nil {
		return fmt.Errorf("invalid tenant id %q: %w", *tenantFlag, err)
	}

	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	database, err := db.Connect(cfg.Database.GetDSN(), cfg.Database.MaxConnections, cfg.Database.MinIdleConnections)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer database.Close()

	rawKey, hash, displayPrefix, err := auth.GenerateAPIKey(cfg.Auth.KeyPrefix)
	if err != nil {
		return fmt.Errorf("failed to generate key: %w", err)
	}

	key := &models.APIKey{
		TenantID:    tenantID,
		KeyHash:     hash,
		KeyPrefix:   displayPrefix,
		Status:      models.APIKeyStatusActive,
		Description: *description,
	}

	repo := repositories.NewAPIKeyRepository(database)
	if err := repo.Create(context.Background(), key); err != nil {
		return fmt.Errorf("failed to store key: %w", err)
	}

	fmt.Printf("API key created for tenant %s\n", tenantID)
	fmt.Printf("  Key ID:  %s\n", key.ID)
	fmt.Printf("  Prefix:  %s\n", displayPrefix)
	fmt.Println()
	fmt.Printf("  %s\n", rawKey)
	fmt.Println()
	fmt.Println("This is the only time the key is shown. Store it in the device now.")
	return nil
}
