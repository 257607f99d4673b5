package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"golang.org/x/crypto/bcrypt"

	"github.com/nidys-catering/api/internal/catalog"
	"github.com/nidys-catering/api/internal/store"
	"github.com/nidys-catering/api/internal/store/postgres"
)

func main() {
	// CLI flags
	password := flag.String("password", "", "Admin password to hash")
	flag.Parse()

	// Fall back to environment variables
	if *password == "" {
		*password = os.Getenv("SEED_PASSWORD")
	}

	// Fall back to defaults
	if *password == "" {
		*password = "password123"
		log.Println("WARNING: Using default password 'password123'. Change immediately in production!")
	}

	// Hash the admin password for ADMIN_PASSWORD_HASH
	hashed, err := bcrypt.GenerateFromPassword([]byte(*password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}
	fmt.Printf("ADMIN_PASSWORD_HASH=%s\n", string(hashed))

	// Load database URL from environment
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Println("DATABASE_URL not set, skipping document seed")
		return
	}

	// Connect to database
	ctx := context.Background()
	pg, err := postgres.New(ctx, dbURL)
	if err != nil {
		log.Fatalf("Unable to connect to database: %v", err)
	}
	defer pg.Close()
	log.Println("Connected to database")

	seedDoc(ctx, pg, catalog.DocMenuData, catalog.DefaultMenu())
	seedDoc(ctx, pg, catalog.DocThemes, catalog.DefaultThemes())
	seedDoc(ctx, pg, catalog.DocAppTitle, catalog.DefaultAppTitle)
	seedDoc(ctx, pg, catalog.DocActiveThemeID, catalog.DefaultThemes()[0].ID)

	log.Println("Seed completed successfully")
}

// seedDoc writes a document only when it doesn't exist yet, so reruns never
// clobber live edits.
func seedDoc(ctx context.Context, docs store.Documents, key string, value interface{}) {
	_, err := docs.GetDoc(ctx, key)
	if err == nil {
		log.Printf("Document '%s' already exists, skipping", key)
		return
	}
	if !errors.Is(err, store.ErrNotFound) {
		log.Fatalf("Failed to check document '%s': %v", key, err)
	}

	raw, err := json.Marshal(value)
	if err != nil {
		log.Fatalf("Failed to encode document '%s': %v", key, err)
	}
	if err := docs.SetDoc(ctx, key, raw); err != nil {
		log.Fatalf("Failed to seed document '%s': %v", key, err)
	}
	log.Printf("Seeded document '%s'", key)
}
