package zones

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"dnspanel/api/v1/middleware"
	"dnspanel/internal/dns"
	"dnspanel/internal/history"
	"dnspanel/internal/httpx"
	"dnspanel/internal/mirror"
	"dnspanel/internal/model"
	"dnspanel/internal/ttlcache"
	"dnspanel/internal/zonesync"
)

// Store is the zone store surface the handlers need
type Store interface {
	QueryZones(ctx context.Context, userID int, filters mirror.ZoneFilters, page, pageSize int) ([]model.Zone, int64, error)
	GetZone(ctx context.Context, userID int, zoneID string) (*model.Zone, error)
	RecordStats(ctx context.Context, userID int, zoneID string) (map[string]int64, error)
	DeleteZone(ctx context.Context, userID int, zoneID string) error
}

// ProviderResolver yields the provider client to use for a user
type ProviderResolver interface {
	ProviderFor(ctx context.Context, userID int) (dns.Provider, error)
}

// Historian appends operation history entries
type Historian interface {
	Append(ctx context.Context, e history.Entry) error
}

// Invalidator drops cached entries by key prefix
type Invalidator interface {
	Invalidate(prefix string)
}

// Handler serves zone listing and synchronization endpoints. Reads go
// to the local store; sync endpoints pull from the remote provider.
type Handler struct {
	store     Store
	engine    *zonesync.Engine
	resolver  ProviderResolver
	historian Historian
	cache     Invalidator
}

// NewHandler creates a zones handler
func NewHandler(store Store, engine *zonesync.Engine, resolver ProviderResolver, historian Historian, cache Invalidator) *Handler {
	return &Handler{store: store, engine: engine, resolver: resolver, historian: historian, cache: cache}
}

// ListRequest represents zone list query parameters
type ListRequest struct {
	Page    int    `form:"page"`
	PerPage int    `form:"per_page"`
	Name    string `form:"name"`
	Status  string `form:"status"`
}

// List returns the caller's locally stored zones
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

	zones, total, err := h.store.QueryZones(c.Request.Context(), middleware.UserID(c), mirror.ZoneFilters{
		Name:   req.Name,
		Status: req.Status,
	}, req.Page, req.PerPage)
	if err != nil {
		httpx.FailErr(c, httpx.ErrDatabaseError("failed to query zones", err))
		return
	}

	httpx.OKList(c, zones, req.Page, req.PerPage, total)
}

// Get returns one zone with its per-type record counts
func (h *Handler) Get(c *gin.Context) {
	userID := middleware.UserID(c)
	zoneID := c.Param("id")

	zone, err := h.store.GetZone(c.Request.Context(), userID, zoneID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.FailErr(c, httpx.ErrNotFound("zone not found"))
			return
		}
		httpx.FailErr(c, httpx.ErrDatabaseError("failed to fetch zone", err))
		return
	}

	stats, err := h.store.RecordStats(c.Request.Context(), userID, zoneID)
	if err != nil {
		httpx.FailErr(c, httpx.ErrDatabaseError("failed to count records", err))
		return
	}

	httpx.OK(c, gin.H{
		"zone":         zone,
		"record_stats": stats,
	})
}

// SyncAll pulls every zone visible to the caller's credential into the
// local store.
func (h *Handler) SyncAll(c *gin.Context) {
	userID := middleware.UserID(c)

	provider, err := h.resolver.ProviderFor(c.Request.Context(), userID)
	if err != nil {
		httpx.FailErr(c, httpx.ErrValidation(err.Error()))
		return
	}

	result, err := h.engine.SyncAllZones(c.Request.Context(), provider, userID)
	if err != nil {
		httpx.FailErr(c, httpx.MapDNSError(err))
		return
	}

	httpx.OK(c, result)
}

// Delete removes a zone and its records from the local store. The
// zone at the provider is untouched; a later sync can bring it back.
func (h *Handler) Delete(c *gin.Context) {
	userID := middleware.UserID(c)
	zoneID := c.Param("id")

	zone, err := h.store.GetZone(c.Request.Context(), userID, zoneID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.FailErr(c, httpx.ErrNotFound("zone not found"))
			return
		}
		httpx.FailErr(c, httpx.ErrDatabaseError("failed to fetch zone", err))
		return
	}

	if err := h.store.DeleteZone(c.Request.Context(), userID, zoneID); err != nil {
		httpx.FailErr(c, httpx.ErrDatabaseError("failed to delete zone", err))
		return
	}

	h.cache.Invalidate(ttlcache.ZonePrefix(zoneID))
	h.cache.Invalidate(ttlcache.ZoneListKey)

	// The rows are gone either way; a failed history append must not
	// turn the response into a 500.
	_ = h.historian.Append(c.Request.Context(), history.Entry{
		UserID:       userID,
		RequestID:    uuid.New().String(),
		Operation:    model.OperationDelete,
		ResourceType: model.ResourceZone,
		ResourceID:   zoneID,
		ResourceName: zone.Name,
		ZoneID:       zoneID,
		OldData:      zone,
		Status:       model.OperationStatusSuccess,
	})

	httpx.OK(c, gin.H{"zone_id": zoneID, "deleted": true})
}

// SyncZone pulls one zone and all of its records into the local store
func (h *Handler) SyncZone(c *gin.Context) {
	userID := middleware.UserID(c)
	zoneID := c.Param("id")

	provider, err := h.resolver.ProviderFor(c.Request.Context(), userID)
	if err != nil {
		httpx.FailErr(c, httpx.ErrValidation(err.Error()))
		return
	}

	result, err := h.engine.SyncZone(c.Request.Context(), provider, userID, zoneID)
	if err != nil {
		// Partial progress still matters to the caller
		app := httpx.MapDNSError(err).WithDetails(result)
		httpx.FailErr(c, app)
		return
	}

	httpx.OK(c, result)
}
