package rest

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/moonveil-games/friendserver/account"
	"github.com/moonveil-games/friendserver/audit"
	"github.com/moonveil-games/friendserver/metrics"
	"github.com/moonveil-games/friendserver/model"
	"github.com/moonveil-games/friendserver/scheduler"
)

// AdminHandler handles admin-only REST endpoints.
// Routes should be protected by AdminAuth middleware.
type AdminHandler struct {
	accounts *account.Service
	auditor  *audit.Service
	stats    *metrics.Registry
	sched    *scheduler.Scheduler
	logger   *zap.Logger
}

// NewAdminHandler creates an AdminHandler.
func NewAdminHandler(
	accounts *account.Service,
	auditor *audit.Service,
	stats *metrics.Registry,
	sched *scheduler.Scheduler,
	logger *zap.Logger,
) *AdminHandler {
	return &AdminHandler{accounts: accounts, auditor: auditor, stats: stats, sched: sched, logger: logger}
}

// Metrics returns server operation counters.
// GET /api/admin/metrics
func (h *AdminHandler) Metrics(c *gin.Context) {
	counters, gauges := h.stats.Snapshot()
	c.JSON(http.StatusOK, gin.H{
		"counters":        counters,
		"gauges":          gauges,
		"scheduler_tasks": h.sched.ListTickers(),
	})
}

// AuditTail returns the most recent audit entries.
// GET /api/admin/audit?limit=
func (h *AdminHandler) AuditTail(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = n
	}

	entries, err := h.auditor.Recent(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries, "count": len(entries)})
}

// BanAccount bans or unbans an account.
// POST /api/admin/accounts/:id/ban
func (h *AdminHandler) BanAccount(c *gin.Context) {
	accountID := c.Param("id")
	var req struct {
		Ban bool `json:"ban"`
	}
	_ = c.ShouldBindJSON(&req)

	status := model.AccountStatusActive
	if req.Ban {
		status = model.AccountStatusBanned
	}
	if err := h.accounts.SetStatus(c.Request.Context(), accountID, status); err != nil {
		if errors.Is(err, account.ErrAccountNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "account not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		}
		return
	}

	h.logger.Info("admin changed account status",
		zap.String("account_id", accountID),
		zap.String("status", status))
	c.JSON(http.StatusOK, gin.H{"ok": true, "status": status})
}

// AdminAuth returns a middleware that checks the X-Admin-Key header.
// WARNING: if adminKey is empty all admin endpoints are disabled (503) so the
// server cannot be accidentally deployed without protection. Set a non-empty
// server.admin_key in config to enable admin routes.
func AdminAuth(adminKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if adminKey == "" {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable,
				gin.H{"error": "admin endpoints disabled: set server.admin_key in config"})
			return
		}
		key := c.GetHeader("X-Admin-Key")
		if key != adminKey {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.Next()
	}
}
