package credentials

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"dnspanel/api/v1/middleware"
	"dnspanel/internal/credentials"
	"dnspanel/internal/dns"
	"dnspanel/internal/httpx"
)

// Handler serves the stored provider credential endpoints
type Handler struct {
	svc *credentials.Service
}

// NewHandler creates a credentials handler
func NewHandler(svc *credentials.Service) *Handler {
	return &Handler{svc: svc}
}

// CreateRequest represents the create credential request body
type CreateRequest struct {
	Name     string `json:"name" binding:"required"`
	APIToken string `json:"api_token" binding:"required"`
	APIEmail string `json:"api_email"`
}

// List returns the caller's credentials with masked tokens
func (h *Handler) List(c *gin.Context) {
	items, err := h.svc.List(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		httpx.FailErr(c, httpx.ErrDatabaseError("failed to list credentials", err))
		return
	}
	httpx.OK(c, items)
}

// Create verifies the token against the provider and stores it
func (h *Handler) Create(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.FailErr(c, httpx.ErrParamInvalid("invalid request body"))
		return
	}

	cred, err := h.svc.Create(c.Request.Context(), middleware.UserID(c), credentials.CreateParams{
		Name:     req.Name,
		APIToken: req.APIToken,
		APIEmail: req.APIEmail,
	})
	if err != nil {
		var pe *dns.ProviderError
		var ue *dns.UnreachableError
		if errors.As(err, &pe) || errors.As(err, &ue) {
			httpx.FailErr(c, httpx.MapDNSError(err))
			return
		}
		httpx.FailErr(c, httpx.ErrValidation(err.Error()))
		return
	}

	httpx.OK(c, gin.H{
		"id":     cred.ID,
		"name":   cred.Name,
		"status": cred.Status,
	})
}

// Delete removes a stored credential by id
func (h *Handler) Delete(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		httpx.FailErr(c, httpx.ErrParamInvalid("invalid credential id"))
		return
	}

	if err := h.svc.Delete(c.Request.Context(), middleware.UserID(c), id); err != nil {
		if errors.Is(err, credentials.ErrNotFound) {
			httpx.FailErr(c, httpx.ErrNotFound("credential not found"))
			return
		}
		httpx.FailErr(c, httpx.ErrDatabaseError("failed to delete credential", err))
		return
	}

	httpx.OK(c, gin.H{"deleted": id})
}
