package models

import (
	"strings"
	"time"
)

// AnonymousUsername is the identity of a session that has not logged in.
const AnonymousUsername = "anonymous"

// Developer is an account allowed to log in and own plugins and resources.
// Usernames are stored lowercase.
type Developer struct {
	Username     string    `gorm:"primaryKey;size:255" json:"username"`
	PasswordHash string    `gorm:"not null" json:"-"`
	Firstname    string    `gorm:"size:255" json:"firstname"`
	Lastname     string    `gorm:"size:255" json:"lastname"`
	Email        string    `gorm:"size:255" json:"email"`
	IsAdmin      bool      `gorm:"default:false" json:"is_admin"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// TableName returns the table name for Developer.
func (Developer) TableName() string {
	return "developers"
}

// NormalizeUsername returns the canonical (lowercase, trimmed) form.
func NormalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}
