package main

import (
	"database/sql"
	"embed"
	"flag"
	"log"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/siftlabs/sift/pkg/config"
)

//go:embed migrations/*.sql
var migrations embed.FS

var command = flag.String("command", "up", "Migration command: up, down, status, version")

func main() {
	flag.Parse()

	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("Sift Database Migration Tool")
	log.Println("============================")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := sql.Open("pgx", cfg.PostgresDSN())
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("Database not reachable: %v", err)
	}
	log.Printf("Database: %s@%s:%d/%s", cfg.PostgresUser, cfg.PostgresHost, cfg.PostgresPort, cfg.PostgresDB)

	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		log.Fatalf("Failed to set dialect: %v", err)
	}

	switch *command {
	case "up":
		if err := goose.Up(db, "migrations"); err != nil {
			log.Fatalf("Migration failed: %v", err)
		}
		log.Println("✓ Migrations applied successfully")
	case "down":
		if err := goose.Down(db, "migrations"); err != nil {
			log.Fatalf("Rollback failed: %v", err)
		}
		log.Println("✓ Rolled back one migration")
	case "status":
		if err := goose.Status(db, "migrations"); err != nil {
			log.Fatalf("Status failed: %v", err)
		}
	case "version":
		if err := goose.Version(db, "migrations"); err != nil {
			log.Fatalf("Version failed: %v", err)
		}
	default:
		log.Fatalf("Unknown command %q (want up, down, status or version)", *command)
	}
}
