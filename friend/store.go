package friend

import (
	"context"
	"errors"
	"fmt"

	dbutil "github.com/moonveil-games/friendserver/db"
	"github.com/moonveil-games/friendserver/model"
	"gorm.io/gorm"
)

// canonicalPair returns the two account IDs in canonical storage order
// (lexicographically smaller first) so the unordered pair always maps to
// the same row.
func canonicalPair(a, b string) (string, string) {
	if b < a {
		return b, a
	}
	return a, b
}

// RequestStore persists friend requests.
type RequestStore struct {
	db *gorm.DB
}

// NewRequestStore creates a RequestStore.
func NewRequestStore(db *gorm.DB) *RequestStore {
	return &RequestStore{db: db}
}

// WithTx returns a RequestStore bound to the given transaction.
func (s *RequestStore) WithTx(tx *gorm.DB) *RequestStore {
	return &RequestStore{db: tx}
}

// Create inserts a new request row.
func (s *RequestStore) Create(ctx context.Context, req *model.FriendRequest) error {
	if err := s.db.WithContext(ctx).Create(req).Error; err != nil {
		return fmt.Errorf("create friend request: %w", err)
	}
	return nil
}

// GetByID returns the request with the given ID, or ErrRequestNotFound.
func (s *RequestStore) GetByID(ctx context.Context, requestID string) (*model.FriendRequest, error) {
	var req model.FriendRequest
	err := s.db.WithContext(ctx).First(&req, "request_id = ?", requestID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRequestNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get friend request: %w", err)
	}
	return &req, nil
}

// FindPendingBetween returns a pending request between the two accounts in
// either direction, or nil when none exists.
func (s *RequestStore) FindPendingBetween(ctx context.Context, a, b string) (*model.FriendRequest, error) {
	var req model.FriendRequest
	err := s.db.WithContext(ctx).
		Where("((from_account_id = ? AND to_account_id = ?) OR (from_account_id = ? AND to_account_id = ?)) AND status = ?",
			a, b, b, a, model.RequestStatusPending).
		First(&req).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find pending request: %w", err)
	}
	return &req, nil
}

// ListPendingTo returns all pending requests addressed to the account,
// most recent first.
func (s *RequestStore) ListPendingTo(ctx context.Context, accountID string) ([]model.FriendRequest, error) {
	var reqs []model.FriendRequest
	err := s.db.WithContext(ctx).
		Where("to_account_id = ? AND status = ?", accountID, model.RequestStatusPending).
		Order("created_at DESC").
		Find(&reqs).Error
	if err != nil {
		return nil, fmt.Errorf("list pending requests: %w", err)
	}
	return reqs, nil
}

// MarkStatus flips a still-pending request to the given status. It reports
// whether the row was updated; false means the request was no longer pending
// (or gone), so a concurrent resolver already won.
func (s *RequestStore) MarkStatus(ctx context.Context, requestID, status string) (bool, error) {
	res := s.db.WithContext(ctx).
		Model(&model.FriendRequest{}).
		Where("request_id = ? AND status = ?", requestID, model.RequestStatusPending).
		Update("status", status)
	if res.Error != nil {
		return false, fmt.Errorf("update request status: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

// RelationshipStore persists friendship edges.
type RelationshipStore struct {
	db *gorm.DB
}

// NewRelationshipStore creates a RelationshipStore.
func NewRelationshipStore(db *gorm.DB) *RelationshipStore {
	return &RelationshipStore{db: db}
}

// WithTx returns a RelationshipStore bound to the given transaction.
func (s *RelationshipStore) WithTx(tx *gorm.DB) *RelationshipStore {
	return &RelationshipStore{db: tx}
}

// Create inserts the edge for the pair, canonicalizing the column order.
// A duplicate pair surfaces as ErrAlreadyFriends via the unique index.
func (s *RelationshipStore) Create(ctx context.Context, rel *model.FriendRelationship) error {
	rel.AccountID1, rel.AccountID2 = canonicalPair(rel.AccountID1, rel.AccountID2)
	if err := s.db.WithContext(ctx).Create(rel).Error; err != nil {
		if dbutil.IsUniqueViolation(err) {
			return ErrAlreadyFriends
		}
		return fmt.Errorf("create relationship: %w", err)
	}
	return nil
}

// ExistsByPair reports whether the unordered pair is already friends.
func (s *RelationshipStore) ExistsByPair(ctx context.Context, a, b string) (bool, error) {
	id1, id2 := canonicalPair(a, b)
	var count int64
	err := s.db.WithContext(ctx).
		Model(&model.FriendRelationship{}).
		Where("account_id1 = ? AND account_id2 = ?", id1, id2).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("check relationship: %w", err)
	}
	return count > 0, nil
}

// DeleteByPair removes the edge for the unordered pair. It reports whether
// a row was deleted.
func (s *RelationshipStore) DeleteByPair(ctx context.Context, a, b string) (bool, error) {
	id1, id2 := canonicalPair(a, b)
	res := s.db.WithContext(ctx).
		Where("account_id1 = ? AND account_id2 = ?", id1, id2).
		Delete(&model.FriendRelationship{})
	if res.Error != nil {
		return false, fmt.Errorf("delete relationship: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

// ListByAccount returns every edge touching the account, oldest first so the
// resolved friend list follows relationship creation order.
func (s *RelationshipStore) ListByAccount(ctx context.Context, accountID string) ([]model.FriendRelationship, error) {
	var rels []model.FriendRelationship
	err := s.db.WithContext(ctx).
		Where("account_id1 = ? OR account_id2 = ?", accountID, accountID).
		Order("created_at ASC, relationship_id ASC").
		Find(&rels).Error
	if err != nil {
		return nil, fmt.Errorf("list relationships: %w", err)
	}
	return rels, nil
}
