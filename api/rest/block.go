package rest

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/moonveil-games/friendserver/audit"
	"github.com/moonveil-games/friendserver/block"
	mw "github.com/moonveil-games/friendserver/middleware"
)

// BlockHandler handles block-list REST endpoints.
type BlockHandler struct {
	svc     *block.Service
	auditor *audit.Service
}

// NewBlockHandler creates a new BlockHandler.
func NewBlockHandler(svc *block.Service, auditor *audit.Service) *BlockHandler {
	return &BlockHandler{svc: svc, auditor: auditor}
}

func blockError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, block.ErrAccountNotFound), errors.Is(err, block.ErrBlockNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, block.ErrSelfBlock), errors.Is(err, block.ErrAlreadyBlocked):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

type createBlockBody struct {
	BlockerAccountID string `json:"blocker_account_id" binding:"required"`
	BlockedAccountID string `json:"blocked_account_id" binding:"required"`
	Reason           string `json:"reason" binding:"max=255"`
}

// Create handles POST /api/blocks.
func (h *BlockHandler) Create(c *gin.Context) {
	started := time.Now()
	var body createBlockBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	blk, err := h.svc.Block(c.Request.Context(), body.BlockerAccountID, body.BlockedAccountID, body.Reason)
	h.auditor.Log(audit.Entry{
		TraceID:         mw.GetTraceID(c),
		AccountID:       &body.BlockerAccountID,
		TargetAccountID: &body.BlockedAccountID,
		Action:          "block.create",
		Request:         body,
		Error:           errString(err),
		IP:              c.ClientIP(),
		DurationMs:      int(time.Since(started).Milliseconds()),
	})
	if err != nil {
		blockError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"block": blk})
}

type removeBlockBody struct {
	BlockerAccountID string `json:"blocker_account_id" binding:"required"`
}

// Remove handles DELETE /api/blocks/:id. The path parameter is the blocked
// account; the body names the blocker.
func (h *BlockHandler) Remove(c *gin.Context) {
	started := time.Now()
	blockedID := c.Param("id")
	var body removeBlockBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := h.svc.Unblock(c.Request.Context(), body.BlockerAccountID, blockedID)
	h.auditor.Log(audit.Entry{
		TraceID:         mw.GetTraceID(c),
		AccountID:       &body.BlockerAccountID,
		TargetAccountID: &blockedID,
		Action:          "block.remove",
		Request:         body,
		Error:           errString(err),
		IP:              c.ClientIP(),
		DurationMs:      int(time.Since(started).Milliseconds()),
	})
	if err != nil {
		blockError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "unblocked"})
}

// List handles GET /api/blocks/:id.
func (h *BlockHandler) List(c *gin.Context) {
	accounts, err := h.svc.ListBlocked(c.Request.Context(), c.Param("id"))
	if err != nil {
		blockError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"blocked": accounts, "count": len(accounts)})
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
