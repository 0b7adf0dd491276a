package main

import (
	"log"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/opencourt/bracket-engine/internal/db"
	"github.com/opencourt/bracket-engine/internal/live"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	database := db.InitDB(envOr("DATABASE_PATH", "brackets.db"))
	defer database.Close()

	if err := db.RunMigrations(database.DB, envOr("MIGRATIONS_URL", "file://migrations")); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	hub := live.NewHub()
	router := newRouter(database, hub)

	addr := envOr("ADDR", ":8080")
	log.Println("Server starting on", addr)
	if err := http.ListenAndServe(addr, router); err != nil {
		log.Fatal(err)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
