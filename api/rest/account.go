package rest

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/moonveil-games/friendserver/account"
	"github.com/moonveil-games/friendserver/metrics"
)

// AccountHandler handles account profile and search REST endpoints.
type AccountHandler struct {
	svc   *account.Service
	stats *metrics.Registry
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(svc *account.Service, stats *metrics.Registry) *AccountHandler {
	return &AccountHandler{svc: svc, stats: stats}
}

type createAccountBody struct {
	Username    string `json:"username" binding:"required,min=3,max=50"`
	Password    string `json:"password" binding:"required,min=8,max=64"`
	DisplayName string `json:"display_name" binding:"max=100"`
}

// Create handles POST /api/accounts.
func (h *AccountHandler) Create(c *gin.Context) {
	var body createAccountBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(body.Password), 12)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	acc, err := h.svc.Create(c.Request.Context(), body.Username, body.DisplayName, string(hash))
	if err != nil {
		if errors.Is(err, account.ErrUsernameTaken) {
			c.JSON(http.StatusConflict, gin.H{"error": "username already taken"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		}
		return
	}

	h.stats.Inc(metrics.AccountsCreated)
	c.JSON(http.StatusCreated, acc)
}

// Get handles GET /api/accounts/:id.
func (h *AccountHandler) Get(c *gin.Context) {
	acc, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, account.ErrAccountNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "account not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		}
		return
	}
	c.JSON(http.StatusOK, acc)
}

type updateAccountBody struct {
	Username    *string `json:"username" binding:"omitempty,min=3,max=50"`
	DisplayName *string `json:"display_name" binding:"omitempty,max=100"`
	AvatarURL   *string `json:"avatar_url" binding:"omitempty,max=255"`
	Level       *int    `json:"level" binding:"omitempty,min=1"`
	Status      *string `json:"status"`
}

// Update handles PUT /api/accounts/:id.
func (h *AccountHandler) Update(c *gin.Context) {
	var body updateAccountBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	acc, err := h.svc.Update(c.Request.Context(), c.Param("id"), account.UpdateParams{
		Username:    body.Username,
		DisplayName: body.DisplayName,
		AvatarURL:   body.AvatarURL,
		Level:       body.Level,
		Status:      body.Status,
	})
	if err != nil {
		switch {
		case errors.Is(err, account.ErrAccountNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "account not found"})
		case errors.Is(err, account.ErrUsernameTaken):
			c.JSON(http.StatusConflict, gin.H{"error": "username already taken"})
		case errors.Is(err, account.ErrInvalidStatus):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		}
		return
	}

	h.stats.Inc(metrics.AccountsUpdated)
	c.JSON(http.StatusOK, acc)
}

// SearchByUsername handles GET /api/search/accounts?q=.
func (h *AccountHandler) SearchByUsername(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query parameter 'q' is required"})
		return
	}

	accounts, err := h.svc.SearchByUsername(c.Request.Context(), query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"accounts": accounts, "count": len(accounts)})
}

// SearchByID handles GET /api/search/accounts/:id. An exact ID lookup that
// returns 404 instead of an empty list when nothing matches.
func (h *AccountHandler) SearchByID(c *gin.Context) {
	acc, err := h.svc.SearchByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	if acc == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "account not found"})
		return
	}
	c.JSON(http.StatusOK, acc)
}
