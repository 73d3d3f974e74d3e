package friend

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/moonveil-games/friendserver/block"
	"github.com/moonveil-games/friendserver/model"
	"github.com/moonveil-games/friendserver/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) (*Service, *block.Service, *gorm.DB) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()
	blocks := block.NewService(db, logger)
	listCache := NewListCache(testutil.SetupTestCache(t), time.Minute, logger)
	return NewService(db, blocks, listCache, logger), blocks, db
}

func mkAccount(t *testing.T, db *gorm.DB, username string) string {
	t.Helper()
	acc := &model.Account{
		AccountID:    uuid.New().String(),
		Username:     username,
		PasswordHash: "x",
		DisplayName:  username,
		Level:        1,
		Status:       model.AccountStatusActive,
	}
	require.NoError(t, db.Create(acc).Error)
	return acc.AccountID
}

// ---- SendFriendRequest ----

func TestSendFriendRequest(t *testing.T) {
	svc, _, db := newTestService(t)
	ctx := context.Background()
	alice := mkAccount(t, db, "alice")
	bob := mkAccount(t, db, "bob")

	req, err := svc.SendFriendRequest(ctx, alice, bob)
	require.NoError(t, err)
	assert.NotEmpty(t, req.RequestID)
	assert.Equal(t, alice, req.FromAccountID)
	assert.Equal(t, bob, req.ToAccountID)
	assert.Equal(t, model.RequestStatusPending, req.Status)
}

func TestSendFriendRequestToSelf(t *testing.T) {
	svc, _, db := newTestService(t)
	ctx := context.Background()
	alice := mkAccount(t, db, "alice")

	_, err := svc.SendFriendRequest(ctx, alice, alice)
	assert.ErrorIs(t, err, ErrSelfRequest)

	// The same error even when the account does not exist at all.
	_, err = svc.SendFriendRequest(ctx, "ghost", "ghost")
	assert.ErrorIs(t, err, ErrSelfRequest)
}

func TestSendFriendRequestUnknownAccounts(t *testing.T) {
	svc, _, db := newTestService(t)
	ctx := context.Background()
	alice := mkAccount(t, db, "alice")

	_, err := svc.SendFriendRequest(ctx, "ghost", alice)
	assert.ErrorIs(t, err, ErrSenderNotFound)

	_, err = svc.SendFriendRequest(ctx, alice, "ghost")
	assert.ErrorIs(t, err, ErrRecipientNotFound)
}

func TestSendFriendRequestDuplicatePending(t *testing.T) {
	svc, _, db := newTestService(t)
	ctx := context.Background()
	alice := mkAccount(t, db, "alice")
	bob := mkAccount(t, db, "bob")

	_, err := svc.SendFriendRequest(ctx, alice, bob)
	require.NoError(t, err)

	_, err = svc.SendFriendRequest(ctx, alice, bob)
	assert.ErrorIs(t, err, ErrRequestPending)

	// The reverse direction is the same pending pair.
	_, err = svc.SendFriendRequest(ctx, bob, alice)
	assert.ErrorIs(t, err, ErrRequestPending)
}

func TestSendFriendRequestWhenBlocked(t *testing.T) {
	svc, blocks, db := newTestService(t)
	ctx := context.Background()
	alice := mkAccount(t, db, "alice")
	bob := mkAccount(t, db, "bob")

	_, err := blocks.Block(ctx, bob, alice, "")
	require.NoError(t, err)

	// Blocked in either direction, for either sender.
	_, err = svc.SendFriendRequest(ctx, alice, bob)
	assert.ErrorIs(t, err, ErrBlocked)
	_, err = svc.SendFriendRequest(ctx, bob, alice)
	assert.ErrorIs(t, err, ErrBlocked)
}

func TestSendFriendRequestAlreadyFriends(t *testing.T) {
	svc, _, db := newTestService(t)
	ctx := context.Background()
	alice := mkAccount(t, db, "alice")
	bob := mkAccount(t, db, "bob")

	req, err := svc.SendFriendRequest(ctx, alice, bob)
	require.NoError(t, err)
	require.NoError(t, svc.AcceptFriendRequest(ctx, req.RequestID))

	_, err = svc.SendFriendRequest(ctx, alice, bob)
	assert.ErrorIs(t, err, ErrAlreadyFriends)
	_, err = svc.SendFriendRequest(ctx, bob, alice)
	assert.ErrorIs(t, err, ErrAlreadyFriends)
}

// ---- Accept / Reject ----

func TestAcceptFriendRequestCreatesSymmetricFriendship(t *testing.T) {
	svc, _, db := newTestService(t)
	ctx := context.Background()
	alice := mkAccount(t, db, "alice")
	bob := mkAccount(t, db, "bob")

	req, err := svc.SendFriendRequest(ctx, alice, bob)
	require.NoError(t, err)
	require.NoError(t, svc.AcceptFriendRequest(ctx, req.RequestID))

	aliceFriends, err := svc.GetFriendList(ctx, alice)
	require.NoError(t, err)
	require.Len(t, aliceFriends, 1)
	assert.Equal(t, bob, aliceFriends[0].AccountID)

	bobFriends, err := svc.GetFriendList(ctx, bob)
	require.NoError(t, err)
	require.Len(t, bobFriends, 1)
	assert.Equal(t, alice, bobFriends[0].AccountID)

	// The request left the pending set.
	pending, err := svc.GetPendingRequests(ctx, bob)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestAcceptFriendRequestUnknown(t *testing.T) {
	svc, _, _ := newTestService(t)

	err := svc.AcceptFriendRequest(context.Background(), "no-such-request")
	assert.ErrorIs(t, err, ErrRequestNotFound)
}

func TestAcceptFriendRequestTwice(t *testing.T) {
	svc, _, db := newTestService(t)
	ctx := context.Background()
	alice := mkAccount(t, db, "alice")
	bob := mkAccount(t, db, "bob")

	req, err := svc.SendFriendRequest(ctx, alice, bob)
	require.NoError(t, err)
	require.NoError(t, svc.AcceptFriendRequest(ctx, req.RequestID))

	err = svc.AcceptFriendRequest(ctx, req.RequestID)
	assert.ErrorIs(t, err, ErrRequestNotPending)
}

func TestAcceptAfterReject(t *testing.T) {
	svc, _, db := newTestService(t)
	ctx := context.Background()
	alice := mkAccount(t, db, "alice")
	bob := mkAccount(t, db, "bob")

	req, err := svc.SendFriendRequest(ctx, alice, bob)
	require.NoError(t, err)
	require.NoError(t, svc.RejectFriendRequest(ctx, req.RequestID))

	err = svc.AcceptFriendRequest(ctx, req.RequestID)
	assert.ErrorIs(t, err, ErrRequestNotPending)

	// No friendship came out of the rejected request.
	friends, err := svc.GetFriendList(ctx, alice)
	require.NoError(t, err)
	assert.Empty(t, friends)
}

func TestRejectAllowsReRequest(t *testing.T) {
	svc, _, db := newTestService(t)
	ctx := context.Background()
	alice := mkAccount(t, db, "alice")
	bob := mkAccount(t, db, "bob")

	req, err := svc.SendFriendRequest(ctx, alice, bob)
	require.NoError(t, err)
	require.NoError(t, svc.RejectFriendRequest(ctx, req.RequestID))

	// The pair is free to try again, in either direction.
	again, err := svc.SendFriendRequest(ctx, bob, alice)
	require.NoError(t, err)
	assert.NotEqual(t, req.RequestID, again.RequestID)
}

func TestRejectFriendRequestTwice(t *testing.T) {
	svc, _, db := newTestService(t)
	ctx := context.Background()
	alice := mkAccount(t, db, "alice")
	bob := mkAccount(t, db, "bob")

	req, err := svc.SendFriendRequest(ctx, alice, bob)
	require.NoError(t, err)
	require.NoError(t, svc.RejectFriendRequest(ctx, req.RequestID))

	err = svc.RejectFriendRequest(ctx, req.RequestID)
	assert.ErrorIs(t, err, ErrRequestNotPending)
}

// ---- RemoveFriend ----

func TestRemoveFriendSymmetric(t *testing.T) {
	svc, _, db := newTestService(t)
	ctx := context.Background()
	alice := mkAccount(t, db, "alice")
	bob := mkAccount(t, db, "bob")

	req, err := svc.SendFriendRequest(ctx, alice, bob)
	require.NoError(t, err)
	require.NoError(t, svc.AcceptFriendRequest(ctx, req.RequestID))

	require.NoError(t, svc.RemoveFriend(ctx, alice, bob))

	aliceFriends, err := svc.GetFriendList(ctx, alice)
	require.NoError(t, err)
	assert.Empty(t, aliceFriends)
	bobFriends, err := svc.GetFriendList(ctx, bob)
	require.NoError(t, err)
	assert.Empty(t, bobFriends)
}

func TestRemoveFriendReversedOrder(t *testing.T) {
	svc, _, db := newTestService(t)
	ctx := context.Background()
	alice := mkAccount(t, db, "alice")
	bob := mkAccount(t, db, "bob")

	req, err := svc.SendFriendRequest(ctx, alice, bob)
	require.NoError(t, err)
	require.NoError(t, svc.AcceptFriendRequest(ctx, req.RequestID))

	// The recipient removes with the arguments flipped.
	require.NoError(t, svc.RemoveFriend(ctx, bob, alice))

	friends, err := svc.GetFriendList(ctx, alice)
	require.NoError(t, err)
	assert.Empty(t, friends)
}

func TestRemoveFriendNotFriends(t *testing.T) {
	svc, _, db := newTestService(t)
	ctx := context.Background()
	alice := mkAccount(t, db, "alice")
	bob := mkAccount(t, db, "bob")

	err := svc.RemoveFriend(ctx, alice, bob)
	assert.ErrorIs(t, err, ErrFriendshipNotFound)
}

func TestRemoveFriendTwice(t *testing.T) {
	svc, _, db := newTestService(t)
	ctx := context.Background()
	alice := mkAccount(t, db, "alice")
	bob := mkAccount(t, db, "bob")

	req, err := svc.SendFriendRequest(ctx, alice, bob)
	require.NoError(t, err)
	require.NoError(t, svc.AcceptFriendRequest(ctx, req.RequestID))
	require.NoError(t, svc.RemoveFriend(ctx, alice, bob))

	err = svc.RemoveFriend(ctx, alice, bob)
	assert.ErrorIs(t, err, ErrFriendshipNotFound)
}

// ---- GetFriendList / caching ----

func TestGetFriendListEmpty(t *testing.T) {
	svc, _, db := newTestService(t)
	alice := mkAccount(t, db, "alice")

	friends, err := svc.GetFriendList(context.Background(), alice)
	require.NoError(t, err)
	assert.Empty(t, friends)
}

func TestGetFriendListOrderedByFriendshipAge(t *testing.T) {
	svc, _, db := newTestService(t)
	ctx := context.Background()
	alice := mkAccount(t, db, "alice")
	bob := mkAccount(t, db, "bob")
	carol := mkAccount(t, db, "carol")

	r1, err := svc.SendFriendRequest(ctx, alice, bob)
	require.NoError(t, err)
	require.NoError(t, svc.AcceptFriendRequest(ctx, r1.RequestID))
	r2, err := svc.SendFriendRequest(ctx, carol, alice)
	require.NoError(t, err)
	require.NoError(t, svc.AcceptFriendRequest(ctx, r2.RequestID))

	friends, err := svc.GetFriendList(ctx, alice)
	require.NoError(t, err)
	require.Len(t, friends, 2)
	assert.Equal(t, bob, friends[0].AccountID)
	assert.Equal(t, carol, friends[1].AccountID)
}

func TestGetFriendListServesFromCache(t *testing.T) {
	svc, _, db := newTestService(t)
	ctx := context.Background()
	alice := mkAccount(t, db, "alice")
	bob := mkAccount(t, db, "bob")

	req, err := svc.SendFriendRequest(ctx, alice, bob)
	require.NoError(t, err)
	require.NoError(t, svc.AcceptFriendRequest(ctx, req.RequestID))

	first, err := svc.GetFriendList(ctx, alice)
	require.NoError(t, err)
	require.Len(t, first, 1)

	// Mutate the store behind the service's back; the cached list wins
	// until the TTL lapses or a mutation invalidates it.
	require.NoError(t, db.Where("1 = 1").Delete(&model.FriendRelationship{}).Error)

	second, err := svc.GetFriendList(ctx, alice)
	require.NoError(t, err)
	assert.Len(t, second, 1)
}

func TestMutationsInvalidateBothCaches(t *testing.T) {
	svc, _, db := newTestService(t)
	ctx := context.Background()
	alice := mkAccount(t, db, "alice")
	bob := mkAccount(t, db, "bob")
	carol := mkAccount(t, db, "carol")

	// Warm both caches with empty lists.
	_, err := svc.GetFriendList(ctx, alice)
	require.NoError(t, err)
	_, err = svc.GetFriendList(ctx, bob)
	require.NoError(t, err)

	req, err := svc.SendFriendRequest(ctx, alice, bob)
	require.NoError(t, err)
	require.NoError(t, svc.AcceptFriendRequest(ctx, req.RequestID))

	// Acceptance is visible immediately on both sides.
	aliceFriends, err := svc.GetFriendList(ctx, alice)
	require.NoError(t, err)
	require.Len(t, aliceFriends, 1)
	bobFriends, err := svc.GetFriendList(ctx, bob)
	require.NoError(t, err)
	require.Len(t, bobFriends, 1)

	// Removal too, and it leaves unrelated caches alone.
	r2, err := svc.SendFriendRequest(ctx, alice, carol)
	require.NoError(t, err)
	require.NoError(t, svc.AcceptFriendRequest(ctx, r2.RequestID))
	require.NoError(t, svc.RemoveFriend(ctx, alice, bob))

	aliceFriends, err = svc.GetFriendList(ctx, alice)
	require.NoError(t, err)
	require.Len(t, aliceFriends, 1)
	assert.Equal(t, carol, aliceFriends[0].AccountID)
	bobFriends, err = svc.GetFriendList(ctx, bob)
	require.NoError(t, err)
	assert.Empty(t, bobFriends)
}

// ---- Pending requests ----

func TestGetPendingRequests(t *testing.T) {
	svc, _, db := newTestService(t)
	ctx := context.Background()
	alice := mkAccount(t, db, "alice")
	bob := mkAccount(t, db, "bob")
	carol := mkAccount(t, db, "carol")

	_, err := svc.SendFriendRequest(ctx, alice, carol)
	require.NoError(t, err)
	_, err = svc.SendFriendRequest(ctx, bob, carol)
	require.NoError(t, err)

	// Outgoing requests never show up in the sender's pending list.
	pendingAlice, err := svc.GetPendingRequests(ctx, alice)
	require.NoError(t, err)
	assert.Empty(t, pendingAlice)

	pending, err := svc.GetPendingRequests(ctx, carol)
	require.NoError(t, err)
	assert.Len(t, pending, 2)
	for _, req := range pending {
		assert.Equal(t, carol, req.ToAccountID)
		assert.Equal(t, model.RequestStatusPending, req.Status)
	}
}

// ---- Online status ----

func TestUpdateOnlineStatus(t *testing.T) {
	svc, _, db := newTestService(t)
	ctx := context.Background()
	alice := mkAccount(t, db, "alice")

	require.NoError(t, svc.UpdateOnlineStatus(ctx, alice, true))

	var acc model.Account
	require.NoError(t, db.First(&acc, "account_id = ?", alice).Error)
	assert.True(t, acc.IsOnline)
	require.NotNil(t, acc.LastSeenAt)
	firstSeen := *acc.LastSeenAt

	time.Sleep(10 * time.Millisecond)
	require.NoError(t, svc.UpdateOnlineStatus(ctx, alice, false))
	require.NoError(t, db.First(&acc, "account_id = ?", alice).Error)
	assert.False(t, acc.IsOnline)
	require.NotNil(t, acc.LastSeenAt)
	assert.True(t, acc.LastSeenAt.After(firstSeen))
}

func TestUpdateOnlineStatusUnknownAccount(t *testing.T) {
	svc, _, _ := newTestService(t)

	err := svc.UpdateOnlineStatus(context.Background(), "ghost", true)
	assert.ErrorIs(t, err, ErrAccountNotFound)
}

func TestGetFriendsOnlineStatus(t *testing.T) {
	svc, _, db := newTestService(t)
	ctx := context.Background()
	alice := mkAccount(t, db, "alice")
	bob := mkAccount(t, db, "bob")

	require.NoError(t, svc.UpdateOnlineStatus(ctx, alice, true))

	status, err := svc.GetFriendsOnlineStatus(ctx, []string{alice, bob, "ghost"})
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{alice: true, bob: false}, status)
}

func TestGetFriendsOnlineStatusEmpty(t *testing.T) {
	svc, _, _ := newTestService(t)

	status, err := svc.GetFriendsOnlineStatus(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, status)
}
