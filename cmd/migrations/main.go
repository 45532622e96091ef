package main

// Applies a single SQL migration by name:
//
//	go run ./cmd/migrations 0001_initial_schema.up

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

const migrationsDir = "internal/adapters/repository/postgres/migrations"

func main() {
	if len(os.Args) < 2 {
		log.Fatal("usage: migrations <name>")
	}
	name := os.Args[1]

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	db, err := sql.Open("postgres", connString())
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	script, err := loadMigration(migrationsDir, name)
	if err != nil {
		log.Fatal(err)
	}

	if _, err := db.Exec(script); err != nil {
		log.Fatalf("migration %s failed: %v", name, err)
	}
	log.Printf("applied %s", name)
}

func loadMigration(dir, name string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if !strings.HasPrefix(entry.Name(), name) || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}

		content, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return "", err
		}
		return string(content), nil
	}

	return "", fmt.Errorf("no migration named %q under %s", name, dir)
}

func connString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		os.Getenv("POSTGRES_USER"),
		os.Getenv("POSTGRES_PASSWORD"),
		os.Getenv("POSTGRES_HOST"),
		os.Getenv("POSTGRES_PORT"),
		os.Getenv("POSTGRES_DB"),
	)
}
