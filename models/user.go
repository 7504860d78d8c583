package models

import (
	"time"
)

// User model
type User struct {
	ID             uint `gorm:"primaryKey"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
	DeletedAt      *time.Time `gorm:"index"`
	Username       string     `gorm:"size:255;not null;unique"`
	Email          string     `gorm:"size:255;uniqueIndex"`
	HashedPassword []byte     `gorm:"not null"`
	// Deleting a user cascades to every financial record they own.
	Incomes  []Income  `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Expenses []Expense `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Loans    []Loan    `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	RoleID   *uint     `gorm:"index"`
	Role     Role      `gorm:"foreignKey:RoleID;references:ID"`
}
