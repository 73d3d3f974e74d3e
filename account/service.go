package account

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	dbutil "github.com/moonveil-games/friendserver/db"
	"github.com/moonveil-games/friendserver/model"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrAccountNotFound = errors.New("account: not found")
	ErrUsernameTaken   = errors.New("account: username already exists")
	ErrInvalidStatus   = errors.New("account: invalid status")
)

// Service manages account records and profile updates.
type Service struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewService creates an account Service.
func NewService(db *gorm.DB, logger *zap.Logger) *Service {
	return &Service{db: db, logger: logger}
}

// Create inserts a new account. The display name defaults to the username
// and new accounts start active, level 1, offline.
func (svc *Service) Create(ctx context.Context, username, displayName, passwordHash string) (*model.Account, error) {
	if displayName == "" {
		displayName = username
	}
	acc := &model.Account{
		AccountID:    uuid.New().String(),
		Username:     username,
		PasswordHash: passwordHash,
		DisplayName:  displayName,
		Level:        1,
		Status:       model.AccountStatusActive,
	}
	if err := svc.db.WithContext(ctx).Create(acc).Error; err != nil {
		if dbutil.IsUniqueViolation(err) {
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("create account: %w", err)
	}
	svc.logger.Info("account created",
		zap.String("account_id", acc.AccountID),
		zap.String("username", acc.Username))
	return acc, nil
}

// Get returns the account with the given ID, or ErrAccountNotFound.
func (svc *Service) Get(ctx context.Context, accountID string) (*model.Account, error) {
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

// GetByUsername returns the account with the given username, or
// ErrAccountNotFound.
func (svc *Service) GetByUsername(ctx context.Context, username string) (*model.Account, error) {
	var acc model.Account
	err := svc.db.WithContext(ctx).First(&acc, "username = ?", username).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get account by username: %w", err)
	}
	return &acc, nil
}

// UpdateParams holds the profile fields a caller may change. Nil fields are
// left untouched.
type UpdateParams struct {
	Username    *string
	DisplayName *string
	AvatarURL   *string
	Level       *int
	Status      *string
}

// Update applies the given profile changes and returns the updated account.
func (svc *Service) Update(ctx context.Context, accountID string, params UpdateParams) (*model.Account, error) {
	acc, err := svc.Get(ctx, accountID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if params.Username != nil && *params.Username != acc.Username {
		updates["username"] = *params.Username
	}
	if params.DisplayName != nil {
		updates["display_name"] = *params.DisplayName
	}
	if params.AvatarURL != nil {
		updates["avatar_url"] = *params.AvatarURL
	}
	if params.Level != nil {
		updates["level"] = *params.Level
	}
	if params.Status != nil {
		switch *params.Status {
		case model.AccountStatusActive, model.AccountStatusInactive, model.AccountStatusBanned:
			updates["status"] = *params.Status
		default:
			return nil, ErrInvalidStatus
		}
	}
	if len(updates) == 0 {
		return acc, nil
	}

	if err := svc.db.WithContext(ctx).Model(acc).Updates(updates).Error; err != nil {
		if dbutil.IsUniqueViolation(err) {
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("update account: %w", err)
	}
	return svc.Get(ctx, accountID)
}

// SetStatus flips the account's moderation status (admin ban/unban path).
func (svc *Service) SetStatus(ctx context.Context, accountID, status string) error {
	switch status {
	case model.AccountStatusActive, model.AccountStatusInactive, model.AccountStatusBanned:
	default:
		return ErrInvalidStatus
	}
	res := svc.db.WithContext(ctx).
		Model(&model.Account{}).
		Where("account_id = ?", accountID).
		Update("status", status)
	if res.Error != nil {
		return fmt.Errorf("set account status: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrAccountNotFound
	}
	return nil
}

// SearchByUsername returns up to 20 accounts whose username contains the
// query. A blank query returns an empty slice.
func (svc *Service) SearchByUsername(ctx context.Context, query string) ([]model.Account, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []model.Account{}, nil
	}
	var accounts []model.Account
	err := svc.db.WithContext(ctx).
		Where("username LIKE ?", "%"+query+"%").
		Limit(20).
		Find(&accounts).Error
	if err != nil {
		return nil, fmt.Errorf("search accounts: %w", err)
	}
	return accounts, nil
}

// SearchByID returns the account with the given ID, or nil when the ID is
// blank or unknown (search semantics, not an error).
func (svc *Service) SearchByID(ctx context.Context, accountID string) (*model.Account, error) {
	if strings.TrimSpace(accountID) == "" {
		return nil, nil
	}
	acc, err := svc.Get(ctx, accountID)
	if errors.Is(err, ErrAccountNotFound) {
		return nil, nil
	}
	return acc, err
}
