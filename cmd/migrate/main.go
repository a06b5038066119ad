package main

import (
	"context"
	"flag"
	"log"
	"time"

	"statcalc/adapters/sqlstore"
	"statcalc/internal/config"
	"statcalc/internal/migration"

	"github.com/joho/godotenv"
)

func main() {
	statusOnly := flag.Bool("status", false, "Print migration status without applying anything")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	db, err := sqlstore.Open(ctx, appConfig.Database.Driver, appConfig.Database.URL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	runner := migration.NewRunner()
	if !*statusOnly {
		if err := runner.Run(ctx, db); err != nil {
			log.Fatalf("Migration failed: %v", err)
		}
		log.Printf("Schema is at version %s", runner.Version())
	}

	statuses, err := runner.Status(ctx, db)
	if err != nil {
		log.Fatalf("Failed to read migration status: %v", err)
	}
	for _, s := range statuses {
		state := "pending"
		if s.Applied {
			state = "applied " + s.AppliedAt.Format(time.RFC3339)
		}
		log.Printf("%s_%s: %s", s.Version, s.Name, state)
	}
}
