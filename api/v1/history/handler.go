package history

import (
	"github.com/gin-gonic/gin"

	"dnspanel/api/v1/middleware"
	"dnspanel/internal/history"
	"dnspanel/internal/httpx"
)

// Handler serves the operation history listing
type Handler struct {
	svc *history.Service
}

// NewHandler creates a history handler
func NewHandler(svc *history.Service) *Handler {
	return &Handler{svc: svc}
}

// ListRequest represents history list query parameters
type ListRequest struct {
	Operation    string `form:"operation"`
	ResourceType string `form:"resource_type"`
	ZoneID       string `form:"zone_id"`
	Page         int    `form:"page"`
	PerPage      int    `form:"per_page"`
}

// List returns the caller's operation history, newest first
func (h *Handler) List(c *gin.Context) {
	var req ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpx.FailErr(c, httpx.ErrParamInvalid("invalid query parameters"))
		return
	}

	if req.Page < 1 {
		req.Page = 1
	}
	if req.PerPage < 1 {
		req.PerPage = 20
	}
	if req.PerPage > 100 {
		req.PerPage = 100
	}

	entries, total, err := h.svc.List(c.Request.Context(), middleware.UserID(c), history.ListParams{
		Operation:    req.Operation,
		ResourceType: req.ResourceType,
		ZoneID:       req.ZoneID,
		Page:         req.Page,
		PageSize:     req.PerPage,
	})
	if err != nil {
		httpx.FailErr(c, httpx.ErrDatabaseError("failed to query history", err))
		return
	}

	httpx.OKList(c, entries, req.Page, req.PerPage, total)
}
