package friend

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/moonveil-games/friendserver/model"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// BlockChecker answers whether either of two accounts blocks the other.
// It is consulted before a friend request is created.
type BlockChecker interface {
	IsBlockedBidirectional(ctx context.Context, a, b string) (bool, error)
}

// Service orchestrates the friend request lifecycle and the friendship
// graph, and keeps the list cache coherent with mutations.
type Service struct {
	db       *gorm.DB
	requests *RequestStore
	rels     *RelationshipStore
	blocks   BlockChecker
	cache    *ListCache
	logger   *zap.Logger
}

// NewService creates a friend Service.
func NewService(db *gorm.DB, blocks BlockChecker, cache *ListCache, logger *zap.Logger) *Service {
	return &Service{
		db:       db,
		requests: NewRequestStore(db),
		rels:     NewRelationshipStore(db),
		blocks:   blocks,
		cache:    cache,
		logger:   logger,
	}
}

func (svc *Service) getAccount(ctx context.Context, accountID string) (*model.Account, error) {
	var acc model.Account
	err := svc.db.WithContext(ctx).First(&acc, "account_id = ?", accountID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get account: %w", err)
	}
	return &acc, nil
}

// SendFriendRequest validates the pair and creates a pending request.
// The relationship graph is untouched, so no cache invalidation happens here.
func (svc *Service) SendFriendRequest(ctx context.Context, fromAccountID, toAccountID string) (*model.FriendRequest, error) {
	// Self-requests are rejected before existence checks so the error is
	// the same whether or not the account exists.
	if fromAccountID == toAccountID {
		return nil, ErrSelfRequest
	}

	if _, err := svc.getAccount(ctx, fromAccountID); err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return nil, ErrSenderNotFound
		}
		return nil, err
	}
	if _, err := svc.getAccount(ctx, toAccountID); err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return nil, ErrRecipientNotFound
		}
		return nil, err
	}

	blocked, err := svc.blocks.IsBlockedBidirectional(ctx, fromAccountID, toAccountID)
	if err != nil {
		return nil, fmt.Errorf("block check: %w", err)
	}
	if blocked {
		return nil, ErrBlocked
	}

	alreadyFriends, err := svc.rels.ExistsByPair(ctx, fromAccountID, toAccountID)
	if err != nil {
		return nil, err
	}
	if alreadyFriends {
		return nil, ErrAlreadyFriends
	}

	pending, err := svc.requests.FindPendingBetween(ctx, fromAccountID, toAccountID)
	if err != nil {
		return nil, err
	}
	if pending != nil {
		return nil, ErrRequestPending
	}

	req := &model.FriendRequest{
		RequestID:     uuid.New().String(),
		FromAccountID: fromAccountID,
		ToAccountID:   toAccountID,
		Status:        model.RequestStatusPending,
	}
	if err := svc.requests.Create(ctx, req); err != nil {
		return nil, err
	}

	svc.logger.Info("friend request sent",
		zap.String("request_id", req.RequestID),
		zap.String("from", fromAccountID),
		zap.String("to", toAccountID))
	return req, nil
}

// AcceptFriendRequest turns a pending request into a friendship edge.
// The edge insert and the status flip run in one transaction, and the flip
// is conditional on the request still being pending, so of two concurrent
// acceptors exactly one wins.
func (svc *Service) AcceptFriendRequest(ctx context.Context, requestID string) error {
	req, err := svc.requests.GetByID(ctx, requestID)
	if err != nil {
		return err
	}
	if req.Status != model.RequestStatusPending {
		return ErrRequestNotPending
	}

	err = svc.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rel := &model.FriendRelationship{
			RelationshipID: uuid.New().String(),
			AccountID1:     req.FromAccountID,
			AccountID2:     req.ToAccountID,
		}
		if err := svc.rels.WithTx(tx).Create(ctx, rel); err != nil {
			return err
		}
		updated, err := svc.requests.WithTx(tx).MarkStatus(ctx, requestID, model.RequestStatusAccepted)
		if err != nil {
			return err
		}
		if !updated {
			return ErrRequestNotPending
		}
		return nil
	})
	if err != nil {
		return err
	}

	svc.cache.Invalidate(ctx, req.FromAccountID, req.ToAccountID)
	svc.logger.Info("friend request accepted",
		zap.String("request_id", requestID),
		zap.String("from", req.FromAccountID),
		zap.String("to", req.ToAccountID))
	return nil
}

// RejectFriendRequest resolves a pending request to rejected. No edge is
// created and the caches stay untouched. A rejected pair may re-request.
func (svc *Service) RejectFriendRequest(ctx context.Context, requestID string) error {
	req, err := svc.requests.GetByID(ctx, requestID)
	if err != nil {
		return err
	}
	if req.Status != model.RequestStatusPending {
		return ErrRequestNotPending
	}

	updated, err := svc.requests.MarkStatus(ctx, requestID, model.RequestStatusRejected)
	if err != nil {
		return err
	}
	if !updated {
		return ErrRequestNotPending
	}

	svc.logger.Info("friend request rejected", zap.String("request_id", requestID))
	return nil
}

// RemoveFriend deletes the friendship edge for the unordered pair. Either
// party may call it with the arguments in either order.
func (svc *Service) RemoveFriend(ctx context.Context, accountID, friendAccountID string) error {
	deleted, err := svc.rels.DeleteByPair(ctx, accountID, friendAccountID)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrFriendshipNotFound
	}

	svc.cache.Invalidate(ctx, accountID, friendAccountID)
	svc.logger.Info("friend removed",
		zap.String("account_id", accountID),
		zap.String("friend_id", friendAccountID))
	return nil
}

// GetFriendList returns the account's friends in relationship creation
// order, serving from the cache when possible.
func (svc *Service) GetFriendList(ctx context.Context, accountID string) ([]model.Account, error) {
	if friends, ok := svc.cache.Get(ctx, accountID); ok {
		return friends, nil
	}

	rels, err := svc.rels.ListByAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}

	friendIDs := make([]string, 0, len(rels))
	for _, rel := range rels {
		if rel.AccountID1 == accountID {
			friendIDs = append(friendIDs, rel.AccountID2)
		} else {
			friendIDs = append(friendIDs, rel.AccountID1)
		}
	}

	friends := make([]model.Account, 0, len(friendIDs))
	if len(friendIDs) > 0 {
		var accounts []model.Account
		if err := svc.db.WithContext(ctx).Where("account_id IN ?", friendIDs).Find(&accounts).Error; err != nil {
			return nil, fmt.Errorf("resolve friend accounts: %w", err)
		}
		byID := make(map[string]model.Account, len(accounts))
		for _, acc := range accounts {
			byID[acc.AccountID] = acc
		}
		// Assemble in relationship order; accounts deleted out from under a
		// dangling edge are skipped.
		for _, id := range friendIDs {
			if acc, ok := byID[id]; ok {
				friends = append(friends, acc)
			}
		}
	}

	svc.cache.Put(ctx, accountID, friends)
	return friends, nil
}

// GetPendingRequests returns pending requests addressed to the account,
// most recent first.
func (svc *Service) GetPendingRequests(ctx context.Context, accountID string) ([]model.FriendRequest, error) {
	return svc.requests.ListPendingTo(ctx, accountID)
}

// UpdateOnlineStatus sets the account's presence flag. last_seen_at marks
// the last status-change observation, so it moves on both transitions.
func (svc *Service) UpdateOnlineStatus(ctx context.Context, accountID string, isOnline bool) error {
	acc, err := svc.getAccount(ctx, accountID)
	if err != nil {
		return err
	}

	now := time.Now()
	err = svc.db.WithContext(ctx).Model(acc).Updates(map[string]interface{}{
		"is_online":    isOnline,
		"last_seen_at": now,
	}).Error
	if err != nil {
		return fmt.Errorf("update online status: %w", err)
	}
	return nil
}

// GetFriendsOnlineStatus returns a map of account ID to presence for the
// given IDs. Unknown IDs are omitted rather than reported as errors; fresh
// presence always comes from the store, never the list cache.
func (svc *Service) GetFriendsOnlineStatus(ctx context.Context, accountIDs []string) (map[string]bool, error) {
	status := make(map[string]bool, len(accountIDs))
	if len(accountIDs) == 0 {
		return status, nil
	}

	var accounts []model.Account
	err := svc.db.WithContext(ctx).
		Select("account_id", "is_online").
		Where("account_id IN ?", accountIDs).
		Find(&accounts).Error
	if err != nil {
		return nil, fmt.Errorf("query online status: %w", err)
	}
	for _, acc := range accounts {
		status[acc.AccountID] = acc.IsOnline
	}
	return status, nil
}
