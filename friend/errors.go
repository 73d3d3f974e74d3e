package friend

import "errors"

// Sentinel errors returned by the friend service. The REST layer maps these
// to HTTP status codes with errors.Is.
var (
	ErrSenderNotFound     = errors.New("friend: sender account not found")
	ErrRecipientNotFound  = errors.New("friend: recipient account not found")
	ErrAccountNotFound    = errors.New("friend: account not found")
	ErrSelfRequest        = errors.New("friend: cannot send friend request to yourself")
	ErrBlocked            = errors.New("friend: cannot send friend request to this account")
	ErrAlreadyFriends     = errors.New("friend: already friends")
	ErrRequestPending     = errors.New("friend: friend request already pending")
	ErrRequestNotFound    = errors.New("friend: friend request not found")
	ErrRequestNotPending  = errors.New("friend: friend request is not pending")
	ErrFriendshipNotFound = errors.New("friend: friendship not found")
)
