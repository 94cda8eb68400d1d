package main

import (
	"flag"
	"log"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"walk-scheduler/internal/adapters/repositories"
	"walk-scheduler/internal/config"
	"walk-scheduler/internal/platform/db"
)

// dbtool initializes the database schema and optionally seeds demo data.
func main() {
	seedPath := flag.String("seed", "", "path to a JSON seed file (optional)")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	cfg := config.Load()

	pool, err := db.Open(cfg.Database.URL)
	if err != nil {
		log.Fatal(err)
	}
	defer pool.Close()

	log.Println("Initializing database schema...")
	if err := repositories.InitSchema(pool); err != nil {
		log.Fatalf("schema initialization failed: %v", err)
	}
	log.Println("Schema ready.")

	if *seedPath == "" {
		return
	}

	log.Println("Seeding database...")
	if err := repositories.SeedFromJSON(pool, *seedPath); err != nil {
		log.Fatalf("seeding failed: %v", err)
	}
	log.Println("Seeding complete.")
}
