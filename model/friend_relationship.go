package model

import "time"

// FriendRelationship is an undirected friendship edge between two accounts.
// Rows are stored canonically with AccountID1 < AccountID2 so the composite
// unique index covers the unordered pair in a single ordering.
type FriendRelationship struct {
	RelationshipID string    `gorm:"primaryKey;size:36" json:"relationship_id"`
	AccountID1     string    `gorm:"uniqueIndex:idx_relationship_pair;size:36;not null" json:"account_id1"`
	AccountID2     string    `gorm:"uniqueIndex:idx_relationship_pair;size:36;not null" json:"account_id2"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
}
