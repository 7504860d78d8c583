package models

import "time"

// RefreshToken records an issued refresh token by its sha256 hash; the raw
// token is only ever returned to the client. Rotation marks the old row
// revoked rather than deleting it.
type RefreshToken struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time
	UserID    uint      `gorm:"index;not null"`
	TokenHash string    `gorm:"size:128;not null;uniqueIndex"`
	ExpiresAt time.Time `gorm:"index;not null"`
	Revoked   bool      `gorm:"default:false"`
}
