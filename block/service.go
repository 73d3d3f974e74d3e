package block

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	dbutil "github.com/moonveil-games/friendserver/db"
	"github.com/moonveil-games/friendserver/model"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrAccountNotFound = errors.New("block: account not found")
	ErrSelfBlock       = errors.New("block: cannot block yourself")
	ErrAlreadyBlocked  = errors.New("block: account is already blocked")
	ErrBlockNotFound   = errors.New("block: block record not found")
)

// Service manages directed block records between accounts. It also serves
// as the block checker the friend service consults before creating a
// request.
type Service struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewService creates a block Service.
func NewService(db *gorm.DB, logger *zap.Logger) *Service {
	return &Service{db: db, logger: logger}
}

func (svc *Service) accountExists(ctx context.Context, accountID string) (bool, error) {
	var count int64
	err := svc.db.WithContext(ctx).
		Model(&model.Account{}).
		Where("account_id = ?", accountID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("check account: %w", err)
	}
	return count > 0, nil
}

// Block records that blocker has blocked blocked. Reason is optional.
func (svc *Service) Block(ctx context.Context, blockerID, blockedID, reason string) (*model.BlockedAccount, error) {
	if blockerID == blockedID {
		return nil, ErrSelfBlock
	}
	for _, id := range []string{blockerID, blockedID} {
		exists, err := svc.accountExists(ctx, id)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, ErrAccountNotFound
		}
	}

	blk := &model.BlockedAccount{
		BlockID:          uuid.New().String(),
		BlockerAccountID: blockerID,
		BlockedAccountID: blockedID,
	}
	if reason != "" {
		blk.Reason = &reason
	}
	if err := svc.db.WithContext(ctx).Create(blk).Error; err != nil {
		if dbutil.IsUniqueViolation(err) {
			return nil, ErrAlreadyBlocked
		}
		return nil, fmt.Errorf("create block: %w", err)
	}

	svc.logger.Info("account blocked",
		zap.String("blocker", blockerID),
		zap.String("blocked", blockedID))
	return blk, nil
}

// Unblock removes the block record, or returns ErrBlockNotFound.
func (svc *Service) Unblock(ctx context.Context, blockerID, blockedID string) error {
	res := svc.db.WithContext(ctx).
		Where("blocker_account_id = ? AND blocked_account_id = ?", blockerID, blockedID).
		Delete(&model.BlockedAccount{})
	if res.Error != nil {
		return fmt.Errorf("delete block: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrBlockNotFound
	}
	return nil
}

// IsBlocked reports whether blocker has blocked blocked (one direction).
func (svc *Service) IsBlocked(ctx context.Context, blockerID, blockedID string) (bool, error) {
	var count int64
	err := svc.db.WithContext(ctx).
		Model(&model.BlockedAccount{}).
		Where("blocker_account_id = ? AND blocked_account_id = ?", blockerID, blockedID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("check block: %w", err)
	}
	return count > 0, nil
}

// IsBlockedBidirectional reports whether either account blocks the other.
func (svc *Service) IsBlockedBidirectional(ctx context.Context, a, b string) (bool, error) {
	var count int64
	err := svc.db.WithContext(ctx).
		Model(&model.BlockedAccount{}).
		Where("(blocker_account_id = ? AND blocked_account_id = ?) OR (blocker_account_id = ? AND blocked_account_id = ?)",
			a, b, b, a).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("check block: %w", err)
	}
	return count > 0, nil
}

// ListBlocked returns the accounts the blocker has blocked, newest first.
func (svc *Service) ListBlocked(ctx context.Context, blockerID string) ([]model.Account, error) {
	var blocks []model.BlockedAccount
	err := svc.db.WithContext(ctx).
		Where("blocker_account_id = ?", blockerID).
		Order("created_at DESC").
		Find(&blocks).Error
	if err != nil {
		return nil, fmt.Errorf("list blocks: %w", err)
	}
	if len(blocks) == 0 {
		return []model.Account{}, nil
	}

	ids := make([]string, len(blocks))
	for i, blk := range blocks {
		ids[i] = blk.BlockedAccountID
	}
	var accounts []model.Account
	if err := svc.db.WithContext(ctx).Where("account_id IN ?", ids).Find(&accounts).Error; err != nil {
		return nil, fmt.Errorf("resolve blocked accounts: %w", err)
	}
	byID := make(map[string]model.Account, len(accounts))
	for _, acc := range accounts {
		byID[acc.AccountID] = acc
	}
	result := make([]model.Account, 0, len(blocks))
	for _, blk := range blocks {
		if acc, ok := byID[blk.BlockedAccountID]; ok {
			result = append(result, acc)
		}
	}
	return result, nil
}
