// migrate applies the embedded SQL migrations: go run ./cmd/migrate -direction up
package main

import (
	"errors"
	"flag"
	"log"

	"github.com/xavierca1/ligue-crm/internal/config"
	"github.com/xavierca1/ligue-crm/internal/infra/database"
)

func main() {
	direction := flag.String("direction", "up", "Migration direction: up or down")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ config: %v", err)
	}

	if err := database.Migrate(cfg.DatabaseURL, *direction); err != nil {
		if errors.Is(err, database.ErrNoChange) {
			log.Println("✅ schema already up to date")
			return
		}
		log.Fatalf("❌ migrate: %v", err)
	}
	log.Printf("✅ migrations applied (%s)", *direction)
}
