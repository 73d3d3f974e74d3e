package model

import "time"

// FriendRequest status values. A request is immutable once it leaves pending.
const (
	RequestStatusPending  = "pending"
	RequestStatusAccepted = "accepted"
	RequestStatusRejected = "rejected"
)

// FriendRequest is a directed friend proposal from one account to another.
type FriendRequest struct {
	RequestID     string    `gorm:"primaryKey;size:36" json:"request_id"`
	FromAccountID string    `gorm:"index:idx_request_from;size:36;not null" json:"from_account_id"`
	ToAccountID   string    `gorm:"index:idx_request_to;size:36;not null" json:"to_account_id"`
	Status        string    `gorm:"index;size:20;default:pending" json:"status"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
