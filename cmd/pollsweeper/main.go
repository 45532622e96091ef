package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/pollbox/api/internal/adapters/repository/postgres"
	"github.com/pollbox/api/internal/core/services"
)

// The sweeper closes active polls whose expiry has passed. Without
// -interval it performs a single sweep and exits, which is the shape an
// external scheduler wants; the sweep is idempotent, so at-least-once
// delivery is fine.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	var dbHost, dbPort, dbUser, dbPass, dbName string
	var interval time.Duration

	flag.StringVar(&dbHost, "db-host", os.Getenv("POSTGRES_HOST"), "Database host")
	flag.StringVar(&dbPort, "db-port", os.Getenv("POSTGRES_PORT"), "Database port")
	flag.StringVar(&dbUser, "db-user", os.Getenv("POSTGRES_USER"), "Database user")
	flag.StringVar(&dbPass, "db-pass", os.Getenv("POSTGRES_PASSWORD"), "Database password")
	flag.StringVar(&dbName, "db-name", os.Getenv("POSTGRES_DB"), "Database name")
	flag.DurationVar(&interval, "interval", 0, "Run forever, sweeping on this period (e.g. 1h)")
	flag.Parse()

	connStr := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", dbUser, dbPass, dbHost, dbPort, dbName)
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatal(err)
	}

	sweeper := services.NewSweeperService(postgres.NewPollRepository(db))

	if interval > 0 {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		log.Printf("Sweeping expired polls every %s...", interval)
		sweeper.Run(ctx, interval)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	log.Println("Starting expired-poll sweep...")

	closed, err := sweeper.CloseExpired(ctx)
	if err != nil {
		log.Fatalf("Error closing expired polls: %v", err)
	}

	log.Printf("Sweep completed successfully, closed %d polls.", closed)
}
