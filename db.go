package main

import (
	"log"
	"os"
	"strings"

	"fintrack/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var db *gorm.DB

func initDB() {
	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		log.Fatal("DB_DSN is not set. This project requires a Postgres DSN in DB_DSN.")
	}
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("failed to connect postgres database:", err)
	}
	db = gdb
	// Control schema migrations with env DB_AUTO_MIGRATE (default true).
	shouldMigrate := true
	if v := os.Getenv("DB_AUTO_MIGRATE"); v != "" {
		lv := strings.ToLower(v)
		if lv == "false" || lv == "0" || lv == "no" {
			shouldMigrate = false
		}
	}
	if shouldMigrate {
		migrateDB()
	}
	seedDB()
}

// migrateDB migrates models individually so a failure on one doesn't block
// others. Roles go first so the users FK can be applied safely.
func migrateDB() {
	if err := db.AutoMigrate(&models.Role{}); err != nil {
		log.Printf("migration warning (roles): %v", err)
	}
	if err := db.AutoMigrate(&models.User{}); err != nil {
		log.Printf("migration warning (users): %v", err)
	}
	if err := db.AutoMigrate(&models.RefreshToken{}); err != nil {
		log.Printf("migration warning (refresh_tokens): %v", err)
	}
	if err := db.AutoMigrate(&models.Income{}); err != nil {
		log.Printf("migration warning (incomes): %v", err)
	}
	if err := db.AutoMigrate(&models.Expense{}); err != nil {
		log.Printf("migration warning (expenses): %v", err)
	}
	if err := db.AutoMigrate(&models.Loan{}); err != nil {
		log.Printf("migration warning (loans): %v", err)
	}
}

func seedDB() {
	// Ensure master roles exist
	roles := []models.Role{{Name: "administrator", Description: "full access"}, {Name: "user", Description: "regular user"}}
	for _, r := range roles {
		var cnt int64
		db.Model(&models.Role{}).Where("name = ?", r.Name).Count(&cnt)
		if cnt == 0 {
			db.Create(&r)
		}
	}

	// Check if admin user exists
	var count int64
	db.Model(&models.User{}).Where("username = ?", "admin").Count(&count)
	if count == 0 {
		var role models.Role
		if err := db.Where("name = ?", "administrator").First(&role).Error; err != nil {
			log.Printf("failed to find administrator role: %v", err)
		}
		rid := role.ID
		admin := models.User{
			Username: "admin",
			Email:    "admin@example.com",
			RoleID:   &rid,
		}
		hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.DefaultCost)
		admin.HashedPassword = hashedPassword
		db.Create(&admin)
		log.Println("Seeded admin user: username=admin, password=admin123")
	}
}
