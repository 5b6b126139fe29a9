package records

import (
	"context"
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"dnspanel/api/v1/middleware"
	"dnspanel/internal/dns"
	"dnspanel/internal/httpx"
	"dnspanel/internal/mirror"
	"dnspanel/internal/mutation"
	"dnspanel/internal/ttlcache"
)

// ProviderResolver yields the provider client to use for a user
type ProviderResolver interface {
	ProviderFor(ctx context.Context, userID int) (dns.Provider, error)
}

// Handler serves DNS record reads and mutations. Mirror reads come
// from the local store; live reads go to the provider through the TTL
// cache; mutations go through the coordinator.
type Handler struct {
	store       *mirror.Store
	cache       *ttlcache.Cache
	coordinator *mutation.Coordinator
	resolver    ProviderResolver
}

// NewHandler creates a records handler
func NewHandler(store *mirror.Store, cache *ttlcache.Cache, coordinator *mutation.Coordinator, resolver ProviderResolver) *Handler {
	return &Handler{store: store, cache: cache, coordinator: coordinator, resolver: resolver}
}

// ListRequest represents record list query parameters
type ListRequest struct {
	Source  string `form:"source"`
	Type    string `form:"type"`
	Name    string `form:"name"`
	Content string `form:"content"`
	Page    int    `form:"page"`
	PerPage int    `form:"per_page"`
}

// liveListResult is the cached value for a live record listing
type liveListResult struct {
	Records []dns.Record  `json:"records"`
	Page    *dns.PageInfo `json:"page_info,omitempty"`
}

// List returns a zone's records from the requested source
func (h *Handler) List(c *gin.Context) {
	var req ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpx.FailErr(c, httpx.ErrParamInvalid("invalid query parameters"))
		return
	}

	if req.Source == "live" {
		h.listLive(c, req)
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

	records, total, err := h.store.QueryRecords(c.Request.Context(), middleware.UserID(c), c.Param("id"), mirror.RecordFilters{
		Name:    req.Name,
		Content: req.Content,
		Type:    req.Type,
	}, req.Page, req.PerPage)
	if err != nil {
		httpx.FailErr(c, httpx.ErrDatabaseError("failed to query records", err))
		return
	}

	httpx.OKList(c, records, req.Page, req.PerPage, total)
}

// ListLive returns a zone's records from the provider regardless of
// the source parameter.
func (h *Handler) ListLive(c *gin.Context) {
	var req ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpx.FailErr(c, httpx.ErrParamInvalid("invalid query parameters"))
		return
	}
	h.listLive(c, req)
}

// listLive serves the listing from the provider through the TTL cache.
// Cache keys are scoped to the requesting user: the cached payload was
// fetched with that user's credential and is theirs alone. The stamp
// is taken before the remote call so an invalidation racing with the
// fetch wins and the stale result is discarded.
func (h *Handler) listLive(c *gin.Context, req ListRequest) {
	userID := middleware.UserID(c)
	zoneID := c.Param("id")
	query := fmt.Sprintf("t=%s&n=%s&c=%s&p=%d&pp=%d", req.Type, req.Name, req.Content, req.Page, req.PerPage)
	key := ttlcache.RecordListKey(userID, zoneID, query)

	if cached, ok := h.cache.Get(key); ok {
		if result, ok := cached.(liveListResult); ok {
			httpx.OK(c, result)
			return
		}
	}

	provider, err := h.resolver.ProviderFor(c.Request.Context(), userID)
	if err != nil {
		httpx.FailErr(c, httpx.ErrValidation(err.Error()))
		return
	}

	stamp := h.cache.Stamp()
	records, pageInfo, err := provider.ListRecords(c.Request.Context(), zoneID, dns.RecordFilters{
		Type:    req.Type,
		Name:    req.Name,
		Content: req.Content,
		Page:    req.Page,
		PerPage: req.PerPage,
	})
	if err != nil {
		httpx.FailErr(c, httpx.MapDNSError(err))
		return
	}

	result := liveListResult{Records: records, Page: pageInfo}
	h.cache.Put(key, result, stamp)
	httpx.OK(c, result)
}

// Get fetches one record directly from the provider
func (h *Handler) Get(c *gin.Context) {
	provider, err := h.resolver.ProviderFor(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		httpx.FailErr(c, httpx.ErrValidation(err.Error()))
		return
	}

	rec, err := provider.GetRecord(c.Request.Context(), c.Param("id"), c.Param("recordId"))
	if err != nil {
		httpx.FailErr(c, httpx.MapDNSError(err))
		return
	}

	httpx.OK(c, rec)
}

// CreateRequest represents the create record request body
type CreateRequest struct {
	Type     string   `json:"type" binding:"required"`
	Name     string   `json:"name" binding:"required"`
	Content  string   `json:"content" binding:"required"`
	TTL      int      `json:"ttl"`
	Proxied  bool     `json:"proxied"`
	Priority *int     `json:"priority"`
	Comment  string   `json:"comment"`
	Tags     []string `json:"tags"`
}

// Create validates and executes a record creation
func (h *Handler) Create(c *gin.Context) {
	userID := middleware.UserID(c)
	zoneID := c.Param("id")

	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.FailErr(c, httpx.ErrParamInvalid("invalid request body"))
		return
	}

	provider, zoneName, err := h.zoneContext(c, userID, zoneID)
	if err != nil {
		return
	}

	rec, outcome, err := h.coordinator.CreateRecord(c.Request.Context(), provider, userID, zoneID, zoneName, mutation.CreateInput{
		Type:     req.Type,
		Name:     req.Name,
		Content:  req.Content,
		TTL:      req.TTL,
		Proxied:  req.Proxied,
		Priority: req.Priority,
		Comment:  req.Comment,
		Tags:     req.Tags,
	})
	if err != nil {
		h.failMutation(c, outcome, err)
		return
	}

	httpx.OK(c, gin.H{"record": rec, "outcome": outcome})
}

// Update validates and executes a partial record update
func (h *Handler) Update(c *gin.Context) {
	userID := middleware.UserID(c)
	zoneID := c.Param("id")

	var patch dns.RecordPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		httpx.FailErr(c, httpx.ErrParamInvalid("invalid request body"))
		return
	}

	provider, zoneName, err := h.zoneContext(c, userID, zoneID)
	if err != nil {
		return
	}

	rec, outcome, err := h.coordinator.UpdateRecord(c.Request.Context(), provider, userID, zoneID, zoneName, c.Param("recordId"), patch)
	if err != nil {
		h.failMutation(c, outcome, err)
		return
	}

	httpx.OK(c, gin.H{"record": rec, "outcome": outcome})
}

// Delete executes a record deletion. Deleting an id that is already
// gone succeeds.
func (h *Handler) Delete(c *gin.Context) {
	userID := middleware.UserID(c)
	zoneID := c.Param("id")

	provider, err := h.resolver.ProviderFor(c.Request.Context(), userID)
	if err != nil {
		httpx.FailErr(c, httpx.ErrValidation(err.Error()))
		return
	}

	outcome, err := h.coordinator.DeleteRecord(c.Request.Context(), provider, userID, zoneID, c.Param("recordId"))
	if err != nil {
		h.failMutation(c, outcome, err)
		return
	}

	httpx.OK(c, gin.H{"outcome": outcome})
}

// BatchRequest represents the batch mutation request body
type BatchRequest struct {
	ZoneID    string           `json:"zone_id" binding:"required"`
	Op        string           `json:"op" binding:"required"`
	RecordIDs []string         `json:"record_ids" binding:"required,min=1"`
	Data      *dns.RecordPatch `json:"data"`
}

// Batch applies one operation to several records independently
func (h *Handler) Batch(c *gin.Context) {
	userID := middleware.UserID(c)

	var req BatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.FailErr(c, httpx.ErrParamInvalid("invalid request body"))
		return
	}

	op := mutation.BatchOp(req.Op)
	if op != mutation.BatchOpUpdate && op != mutation.BatchOpDelete {
		httpx.FailErr(c, httpx.ErrValidation("op must be 'update' or 'delete'"))
		return
	}
	if op == mutation.BatchOpUpdate && req.Data == nil {
		httpx.FailErr(c, httpx.ErrValidation("data is required for batch updates"))
		return
	}

	provider, zoneName, err := h.zoneContext(c, userID, req.ZoneID)
	if err != nil {
		return
	}

	results := h.coordinator.Batch(c.Request.Context(), provider, userID, req.ZoneID, zoneName, op, req.RecordIDs, req.Data)
	httpx.OK(c, gin.H{"results": results})
}

// zoneContext resolves the provider client and the zone's name, which
// anchors relative-to-FQDN conversion. The local store is tried first;
// an unsynced zone falls back to a provider lookup. Responds on error.
func (h *Handler) zoneContext(c *gin.Context, userID int, zoneID string) (dns.Provider, string, error) {
	provider, err := h.resolver.ProviderFor(c.Request.Context(), userID)
	if err != nil {
		httpx.FailErr(c, httpx.ErrValidation(err.Error()))
		return nil, "", err
	}

	zone, err := h.store.GetZone(c.Request.Context(), userID, zoneID)
	if err == nil {
		return provider, zone.Name, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		httpx.FailErr(c, httpx.ErrDatabaseError("failed to fetch zone", err))
		return nil, "", err
	}

	remote, err := provider.GetZone(c.Request.Context(), zoneID)
	if err != nil {
		httpx.FailErr(c, httpx.MapDNSError(err))
		return nil, "", err
	}
	return provider, remote.Name, nil
}

// failMutation maps a coordinator failure to the HTTP error model. An
// unknown outcome gets its own error class so clients know to re-read
// instead of retrying the mutation.
func (h *Handler) failMutation(c *gin.Context, outcome mutation.Outcome, err error) {
	if outcome == mutation.OutcomeUnknown {
		httpx.FailErr(c, httpx.ErrOutcomeUnknown("mutation outcome unknown, re-read zone state before retrying", err))
		return
	}
	httpx.FailErr(c, httpx.MapDNSError(err))
}
