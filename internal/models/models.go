package models

import (
	"time"
)

// Message categories accepted by the public API.
const (
	CategoryAdvice     = "advice"
	CategoryConfession = "confession"
	CategoryFun        = "fun"
)

// ValidCategory reports whether s is one of the accepted categories.
func ValidCategory(s string) bool {
	switch s {
	case CategoryAdvice, CategoryConfession, CategoryFun:
		return true
	}
	return false
}

// Message is a single anonymous post. ip_hash and is_deleted are never
// serialized on the public API; admin responses re-expose is_deleted through
// their own view type.
type Message struct {
	ID         uint       `gorm:"primarykey" json:"id"`
	Content    string     `gorm:"type:text;not null" json:"content"`
	IPHash     string     `gorm:"column:ip_hash;type:char(64);not null" json:"-"`
	Category   *string    `gorm:"size:50" json:"category"`
	LikesCount int        `gorm:"not null;default:0" json:"likes_count"`
	IsDeleted  bool       `gorm:"not null;default:false" json:"-"`
	CreatedAt  time.Time  `gorm:"index" json:"created_at"`
	UpdatedAt  time.Time  `json:"-"`
	ExpiresAt  *time.Time `gorm:"index" json:"expires_at"`
}

// Admin is a moderator account. The password hash never leaves the server.
type Admin struct {
	ID           uint      `gorm:"primarykey" json:"id"`
	Name         string    `gorm:"size:255;not null" json:"name"`
	Email        string    `gorm:"uniqueIndex;size:255;not null" json:"email"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"-"`
}

// AdminToken is one issued bearer token. Only the SHA-256 digest of the
// plaintext token is stored; login deletes all rows for the admin before
// inserting a fresh one, so at most one row is live per admin.
type AdminToken struct {
	ID        uint      `gorm:"primarykey"`
	AdminID   uint      `gorm:"not null;index"`
	TokenHash string    `gorm:"uniqueIndex;type:char(64);not null"`
	CreatedAt time.Time
}

// Announcement is a site-wide notice. Only active ones are publicly visible.
type Announcement struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	Title     string    `gorm:"size:255;not null" json:"title"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	IsActive  bool      `gorm:"not null;default:false" json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
