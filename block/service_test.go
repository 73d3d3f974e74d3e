package block

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/moonveil-games/friendserver/model"
	"github.com/moonveil-games/friendserver/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	return NewService(db, zap.NewNop()), db
}

func mkAccount(t *testing.T, db *gorm.DB, username string) string {
	t.Helper()
	acc := &model.Account{
		AccountID:    uuid.New().String(),
		Username:     username,
		PasswordHash: "x",
		DisplayName:  username,
		Status:       model.AccountStatusActive,
	}
	require.NoError(t, db.Create(acc).Error)
	return acc.AccountID
}

func TestBlock(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()
	alice := mkAccount(t, db, "alice")
	bob := mkAccount(t, db, "bob")

	blk, err := svc.Block(ctx, alice, bob, "spam")
	require.NoError(t, err)
	assert.NotEmpty(t, blk.BlockID)
	assert.Equal(t, alice, blk.BlockerAccountID)
	assert.Equal(t, bob, blk.BlockedAccountID)
	require.NotNil(t, blk.Reason)
	assert.Equal(t, "spam", *blk.Reason)
}

func TestBlockWithoutReason(t *testing.T) {
	svc, db := newTestService(t)
	alice := mkAccount(t, db, "alice")
	bob := mkAccount(t, db, "bob")

	blk, err := svc.Block(context.Background(), alice, bob, "")
	require.NoError(t, err)
	assert.Nil(t, blk.Reason)
}

func TestBlockSelf(t *testing.T) {
	svc, db := newTestService(t)
	alice := mkAccount(t, db, "alice")

	_, err := svc.Block(context.Background(), alice, alice, "")
	assert.ErrorIs(t, err, ErrSelfBlock)
}

func TestBlockUnknownAccount(t *testing.T) {
	svc, db := newTestService(t)
	alice := mkAccount(t, db, "alice")

	_, err := svc.Block(context.Background(), alice, "ghost", "")
	assert.ErrorIs(t, err, ErrAccountNotFound)
	_, err = svc.Block(context.Background(), "ghost", alice, "")
	assert.ErrorIs(t, err, ErrAccountNotFound)
}

func TestBlockTwice(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()
	alice := mkAccount(t, db, "alice")
	bob := mkAccount(t, db, "bob")

	_, err := svc.Block(ctx, alice, bob, "")
	require.NoError(t, err)
	_, err = svc.Block(ctx, alice, bob, "")
	assert.ErrorIs(t, err, ErrAlreadyBlocked)
}

func TestBlockIsDirected(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()
	alice := mkAccount(t, db, "alice")
	bob := mkAccount(t, db, "bob")

	_, err := svc.Block(ctx, alice, bob, "")
	require.NoError(t, err)

	blocked, err := svc.IsBlocked(ctx, alice, bob)
	require.NoError(t, err)
	assert.True(t, blocked)

	blocked, err = svc.IsBlocked(ctx, bob, alice)
	require.NoError(t, err)
	assert.False(t, blocked)

	// Blocking back is its own record, not a duplicate.
	_, err = svc.Block(ctx, bob, alice, "")
	require.NoError(t, err)
}

func TestIsBlockedBidirectional(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()
	alice := mkAccount(t, db, "alice")
	bob := mkAccount(t, db, "bob")
	carol := mkAccount(t, db, "carol")

	_, err := svc.Block(ctx, alice, bob, "")
	require.NoError(t, err)

	blocked, err := svc.IsBlockedBidirectional(ctx, bob, alice)
	require.NoError(t, err)
	assert.True(t, blocked)
	blocked, err = svc.IsBlockedBidirectional(ctx, alice, bob)
	require.NoError(t, err)
	assert.True(t, blocked)
	blocked, err = svc.IsBlockedBidirectional(ctx, alice, carol)
	require.NoError(t, err)
	assert.False(t, blocked)
}

func TestUnblock(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()
	alice := mkAccount(t, db, "alice")
	bob := mkAccount(t, db, "bob")

	_, err := svc.Block(ctx, alice, bob, "")
	require.NoError(t, err)

	require.NoError(t, svc.Unblock(ctx, alice, bob))
	blocked, err := svc.IsBlocked(ctx, alice, bob)
	require.NoError(t, err)
	assert.False(t, blocked)

	assert.ErrorIs(t, svc.Unblock(ctx, alice, bob), ErrBlockNotFound)
}

func TestListBlocked(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()
	alice := mkAccount(t, db, "alice")
	bob := mkAccount(t, db, "bob")
	carol := mkAccount(t, db, "carol")

	_, err := svc.Block(ctx, alice, bob, "")
	require.NoError(t, err)
	_, err = svc.Block(ctx, alice, carol, "")
	require.NoError(t, err)
	_, err = svc.Block(ctx, bob, alice, "")
	require.NoError(t, err)

	blocked, err := svc.ListBlocked(ctx, alice)
	require.NoError(t, err)
	require.Len(t, blocked, 2)
	ids := []string{blocked[0].AccountID, blocked[1].AccountID}
	assert.Contains(t, ids, bob)
	assert.Contains(t, ids, carol)

	blocked, err = svc.ListBlocked(ctx, carol)
	require.NoError(t, err)
	assert.Empty(t, blocked)
}
