package model

import "time"

// BlockedAccount records that one account has blocked another. Blocks are
// directed; the unique pair index prevents double-blocking.
type BlockedAccount struct {
	BlockID          string    `gorm:"primaryKey;size:36" json:"block_id"`
	BlockerAccountID string    `gorm:"uniqueIndex:idx_block_pair;size:36;not null" json:"blocker_account_id"`
	BlockedAccountID string    `gorm:"uniqueIndex:idx_block_pair;size:36;not null" json:"blocked_account_id"`
	Reason           *string   `gorm:"size:255" json:"reason"`
	CreatedAt        time.Time `gorm:"autoCreateTime" json:"created_at"`
}
