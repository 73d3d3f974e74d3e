package model

import "time"

// Account status values.
const (
	AccountStatusActive   = "active"
	AccountStatusInactive = "inactive"
	AccountStatusBanned   = "banned"
)

// Account represents a player account and its public profile.
type Account struct {
	AccountID    string     `gorm:"primaryKey;size:36" json:"account_id"`
	Username     string     `gorm:"uniqueIndex;size:50;not null" json:"username"`
	PasswordHash string     `gorm:"size:64;not null" json:"-"`
	DisplayName  string     `gorm:"size:100;not null" json:"display_name"`
	AvatarURL    *string    `gorm:"size:255" json:"avatar_url"`
	Level        int        `gorm:"default:1" json:"level"`
	Status       string     `gorm:"index;size:20;default:active" json:"status"`
	IsOnline     bool       `gorm:"index;default:false" json:"is_online"`
	LastSeenAt   *time.Time `json:"last_seen_at"`
	CreatedAt    time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}
