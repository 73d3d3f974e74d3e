package rest

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/moonveil-games/friendserver/audit"
	"github.com/moonveil-games/friendserver/friend"
	"github.com/moonveil-games/friendserver/metrics"
	mw "github.com/moonveil-games/friendserver/middleware"
)

// FriendHandler handles friend and friend-request REST endpoints.
type FriendHandler struct {
	svc     *friend.Service
	auditor *audit.Service
	stats   *metrics.Registry
}

// NewFriendHandler creates a new FriendHandler.
func NewFriendHandler(svc *friend.Service, auditor *audit.Service, stats *metrics.Registry) *FriendHandler {
	return &FriendHandler{svc: svc, auditor: auditor, stats: stats}
}

// friendStatus maps friend service errors to HTTP status codes. Unknown
// errors fall through to 500.
func friendStatus(err error) int {
	switch {
	case errors.Is(err, friend.ErrSenderNotFound),
		errors.Is(err, friend.ErrRecipientNotFound),
		errors.Is(err, friend.ErrAccountNotFound),
		errors.Is(err, friend.ErrRequestNotFound),
		errors.Is(err, friend.ErrFriendshipNotFound):
		return http.StatusNotFound
	case errors.Is(err, friend.ErrSelfRequest),
		errors.Is(err, friend.ErrBlocked),
		errors.Is(err, friend.ErrAlreadyFriends),
		errors.Is(err, friend.ErrRequestPending),
		errors.Is(err, friend.ErrRequestNotPending):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func friendError(c *gin.Context, err error) {
	status := friendStatus(err)
	if status == http.StatusInternalServerError {
		c.JSON(status, gin.H{"error": "internal error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func (h *FriendHandler) logAudit(c *gin.Context, action string, accountID, targetID string, req, resp interface{}, err error, started time.Time) {
	entry := audit.Entry{
		TraceID:    mw.GetTraceID(c),
		Action:     action,
		Request:    req,
		Response:   resp,
		IP:         c.ClientIP(),
		DurationMs: int(time.Since(started).Milliseconds()),
	}
	if accountID != "" {
		entry.AccountID = &accountID
	}
	if targetID != "" {
		entry.TargetAccountID = &targetID
	}
	if err != nil {
		entry.Error = err.Error()
	}
	h.auditor.Log(entry)
}

type sendRequestBody struct {
	FromAccountID string `json:"from_account_id" binding:"required"`
	ToAccountID   string `json:"to_account_id" binding:"required"`
}

// SendRequest handles POST /api/friend-requests.
func (h *FriendHandler) SendRequest(c *gin.Context) {
	started := time.Now()
	var body sendRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	req, err := h.svc.SendFriendRequest(c.Request.Context(), body.FromAccountID, body.ToAccountID)
	h.logAudit(c, "friend_request.send", body.FromAccountID, body.ToAccountID, body, req, err, started)
	if err != nil {
		friendError(c, err)
		return
	}

	h.stats.Inc(metrics.FriendRequestsSent)
	c.JSON(http.StatusCreated, gin.H{"request": req})
}

// AcceptRequest handles POST /api/friend-requests/:id/accept.
func (h *FriendHandler) AcceptRequest(c *gin.Context) {
	started := time.Now()
	requestID := c.Param("id")

	err := h.svc.AcceptFriendRequest(c.Request.Context(), requestID)
	h.logAudit(c, "friend_request.accept", "", "", gin.H{"request_id": requestID}, nil, err, started)
	if err != nil {
		friendError(c, err)
		return
	}

	h.stats.Inc(metrics.FriendRequestsAccepted)
	h.stats.Inc(metrics.FriendsAdded)
	c.JSON(http.StatusOK, gin.H{"message": "friend request accepted"})
}

// RejectRequest handles POST /api/friend-requests/:id/reject.
func (h *FriendHandler) RejectRequest(c *gin.Context) {
	started := time.Now()
	requestID := c.Param("id")

	err := h.svc.RejectFriendRequest(c.Request.Context(), requestID)
	h.logAudit(c, "friend_request.reject", "", "", gin.H{"request_id": requestID}, nil, err, started)
	if err != nil {
		friendError(c, err)
		return
	}

	h.stats.Inc(metrics.FriendRequestsRejected)
	c.JSON(http.StatusOK, gin.H{"message": "friend request rejected"})
}

// ListPending handles GET /api/friend-requests/:id/pending.
func (h *FriendHandler) ListPending(c *gin.Context) {
	accountID := c.Param("id")

	requests, err := h.svc.GetPendingRequests(c.Request.Context(), accountID)
	if err != nil {
		friendError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"requests": requests, "count": len(requests)})
}

// ListFriends handles GET /api/friends/:id.
func (h *FriendHandler) ListFriends(c *gin.Context) {
	accountID := c.Param("id")

	friends, err := h.svc.GetFriendList(c.Request.Context(), accountID)
	if err != nil {
		friendError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"friends": friends, "count": len(friends)})
}

type removeFriendBody struct {
	AccountID string `json:"account_id" binding:"required"`
}

// RemoveFriend handles DELETE /api/friends/:id. The path parameter is the
// friend being removed; the body names the account doing the removing.
func (h *FriendHandler) RemoveFriend(c *gin.Context) {
	started := time.Now()
	friendAccountID := c.Param("id")
	var body removeFriendBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := h.svc.RemoveFriend(c.Request.Context(), body.AccountID, friendAccountID)
	h.logAudit(c, "friend.remove", body.AccountID, friendAccountID, body, nil, err, started)
	if err != nil {
		friendError(c, err)
		return
	}

	h.stats.Inc(metrics.FriendsRemoved)
	c.JSON(http.StatusOK, gin.H{"message": "friend removed"})
}

type onlineStatusBody struct {
	AccountID string `json:"account_id" binding:"required"`
	IsOnline  *bool  `json:"is_online" binding:"required"`
}

// UpdateStatus handles POST /api/friends/status.
func (h *FriendHandler) UpdateStatus(c *gin.Context) {
	var body onlineStatusBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.svc.UpdateOnlineStatus(c.Request.Context(), body.AccountID, *body.IsOnline); err != nil {
		friendError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "status updated"})
}

type batchStatusBody struct {
	AccountIDs []string `json:"account_ids" binding:"required"`
}

// BatchStatus handles POST /api/friends/status/batch.
func (h *FriendHandler) BatchStatus(c *gin.Context) {
	var body batchStatusBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	statuses, err := h.svc.GetFriendsOnlineStatus(c.Request.Context(), body.AccountIDs)
	if err != nil {
		friendError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"statuses": statuses})
}
