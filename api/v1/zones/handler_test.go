package zones

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"dnspanel/internal/history"
	"dnspanel/internal/mirror"
	"dnspanel/internal/model"
	"dnspanel/internal/ttlcache"
)

type fakeStore struct {
	zones   map[string]*model.Zone
	deleted []string
}

func newFakeStore() *fakeStore {
	return &fakeStore{zones: make(map[string]*model.Zone)}
}

func (s *fakeStore) QueryZones(ctx context.Context, userID int, filters mirror.ZoneFilters, page, pageSize int) ([]model.Zone, int64, error) {
	var out []model.Zone
	for _, z := range s.zones {
		out = append(out, *z)
	}
	return out, int64(len(out)), nil
}

func (s *fakeStore) GetZone(ctx context.Context, userID int, zoneID string) (*model.Zone, error) {
	z, ok := s.zones[zoneID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return z, nil
}

func (s *fakeStore) RecordStats(ctx context.Context, userID int, zoneID string) (map[string]int64, error) {
	return map[string]int64{}, nil
}

func (s *fakeStore) DeleteZone(ctx context.Context, userID int, zoneID string) error {
	delete(s.zones, zoneID)
	s.deleted = append(s.deleted, zoneID)
	return nil
}

type fakeHistorian struct {
	entries []history.Entry
}

func (h *fakeHistorian) Append(ctx context.Context, e history.Entry) error {
	h.entries = append(h.entries, e)
	return nil
}

type fakeInvalidator struct {
	prefixes []string
}

func (i *fakeInvalidator) Invalidate(prefix string) {
	i.prefixes = append(i.prefixes, prefix)
}

func (i *fakeInvalidator) has(prefix string) bool {
	for _, p := range i.prefixes {
		if p == prefix {
			return true
		}
	}
	return false
}

func setupDeleteRouter(store Store, historian Historian, cache Invalidator) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(store, nil, nil, historian, cache)

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("uid", 7)
		c.Next()
	})
	r.DELETE("/zones/:id", h.Delete)
	return r
}

func TestDeleteZone(t *testing.T) {
	store := newFakeStore()
	store.zones["z1"] = &model.Zone{ZoneID: "z1", Name: "example.com"}
	historian := &fakeHistorian{}
	cache := &fakeInvalidator{}
	r := setupDeleteRouter(store, historian, cache)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("DELETE", "/zones/z1", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	if len(store.deleted) != 1 || store.deleted[0] != "z1" {
		t.Errorf("Expected z1 deleted from store, got %v", store.deleted)
	}

	// Cached listings for the zone and the zone list itself are stale
	if !cache.has(ttlcache.ZonePrefix("z1")) {
		t.Error("Zone prefix should have been invalidated")
	}
	if !cache.has(ttlcache.ZoneListKey) {
		t.Error("Zone list key should have been invalidated")
	}

	if len(historian.entries) != 1 {
		t.Fatalf("Expected 1 history entry, got %d", len(historian.entries))
	}
	entry := historian.entries[0]
	if entry.Operation != model.OperationDelete || entry.ResourceType != model.ResourceZone {
		t.Errorf("Expected zone delete entry, got %s/%s", entry.Operation, entry.ResourceType)
	}
	if entry.ResourceName != "example.com" || entry.UserID != 7 {
		t.Errorf("Unexpected entry fields: %+v", entry)
	}
	if entry.OldData == nil {
		t.Error("Deleted zone snapshot should be recorded")
	}
}

func TestDeleteZone_NotFound(t *testing.T) {
	store := newFakeStore()
	historian := &fakeHistorian{}
	cache := &fakeInvalidator{}
	r := setupDeleteRouter(store, historian, cache)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("DELETE", "/zones/z404", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("Expected status 404, got %d", w.Code)
	}
	if len(historian.entries) != 0 {
		t.Error("No history entry should be written for a missing zone")
	}
	if len(cache.prefixes) != 0 {
		t.Error("Nothing should be invalidated for a missing zone")
	}
}
