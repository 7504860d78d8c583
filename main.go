package main

import (
	"fmt"
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

var jwtSecret []byte // loaded from env JWT_SECRET (fallback to dev default)

func main() {
	// Auto-load ./.env if present before reading vars
	_ = godotenv.Load()
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "dev-insecure-secret-change" // development fallback
	}
	jwtSecret = []byte(secret)

	// Lightweight subcommands:
	//   `./fintrack migrate` runs AutoMigrate and seeding then exits.
	//   `./fintrack seed` additionally loads demo financial records.
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "migrate":
			initDB()
			fmt.Println("migration and seeding completed")
			return
		case "seed":
			initDB()
			if err := seedDemoRecords(); err != nil {
				log.Fatalf("seeding demo records failed: %v", err)
			}
			fmt.Println("demo records seeded")
			return
		}
	}

	initDB()
	initCaches()

	r := gin.Default()

	setupRoutes(r)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8081"
	}
	r.Run(":" + port)
}
