package records

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"dnspanel/internal/dns"
	"dnspanel/internal/httpx"
	"dnspanel/internal/ttlcache"
)

// fakeListProvider serves canned record listings and captures filters
type fakeListProvider struct {
	dns.Provider

	calls       int
	lastFilters dns.RecordFilters
	records     []dns.Record
}

func (f *fakeListProvider) ListRecords(ctx context.Context, zoneID string, filters dns.RecordFilters) ([]dns.Record, *dns.PageInfo, error) {
	f.calls++
	f.lastFilters = filters
	return f.records, nil, nil
}

// fakeResolver hands each user their own provider, like per-user
// stored credentials do.
type fakeResolver struct {
	providers map[int]dns.Provider
}

func (r *fakeResolver) ProviderFor(ctx context.Context, userID int) (dns.Provider, error) {
	return r.providers[userID], nil
}

func setupLiveRouter(cache *ttlcache.Cache, resolver ProviderResolver, uid int) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(nil, cache, nil, resolver)

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("uid", uid)
		c.Next()
	})
	r.GET("/zones/:id/dns-records", h.List)
	return r
}

func liveListBody(t *testing.T, r *gin.Engine, path string) string {
	t.Helper()
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", path, nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp httpx.Response
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	data, err := json.Marshal(resp.Data)
	if err != nil {
		t.Fatalf("Failed to re-marshal data: %v", err)
	}
	return string(data)
}

func TestListLive_CacheScopedByUser(t *testing.T) {
	cache := ttlcache.New(time.Minute, nil)

	userOne := &fakeListProvider{records: []dns.Record{{ID: "r-one", ZoneID: "z1", Type: "A", Name: "one.example.com"}}}
	userTwo := &fakeListProvider{records: []dns.Record{{ID: "r-two", ZoneID: "z1", Type: "A", Name: "two.example.com"}}}
	resolver := &fakeResolver{providers: map[int]dns.Provider{1: userOne, 2: userTwo}}

	// User one primes the cache for z1.
	body := liveListBody(t, setupLiveRouter(cache, resolver, 1), "/zones/z1/dns-records?source=live")
	if !strings.Contains(body, "r-one") {
		t.Fatalf("Expected user one's records, got %s", body)
	}

	// The same request as user two must be fetched with user two's
	// credential, never served from user one's cached payload.
	body = liveListBody(t, setupLiveRouter(cache, resolver, 2), "/zones/z1/dns-records?source=live")
	if strings.Contains(body, "r-one") {
		t.Fatalf("User one's cached listing leaked to user two: %s", body)
	}
	if !strings.Contains(body, "r-two") {
		t.Errorf("Expected user two's records, got %s", body)
	}
	if userTwo.calls != 1 {
		t.Errorf("Expected user two's provider consulted, got %d calls", userTwo.calls)
	}
}

func TestListLive_CacheHitSameUser(t *testing.T) {
	cache := ttlcache.New(time.Minute, nil)
	provider := &fakeListProvider{records: []dns.Record{{ID: "r1", ZoneID: "z1", Type: "A", Name: "www.example.com"}}}
	r := setupLiveRouter(cache, &fakeResolver{providers: map[int]dns.Provider{1: provider}}, 1)

	liveListBody(t, r, "/zones/z1/dns-records?source=live")
	liveListBody(t, r, "/zones/z1/dns-records?source=live")

	if provider.calls != 1 {
		t.Errorf("Expected second identical request served from cache, provider called %d times", provider.calls)
	}
}

func TestListLive_ContentFilter(t *testing.T) {
	cache := ttlcache.New(time.Minute, nil)
	provider := &fakeListProvider{}
	r := setupLiveRouter(cache, &fakeResolver{providers: map[int]dns.Provider{1: provider}}, 1)

	liveListBody(t, r, "/zones/z1/dns-records?source=live&content=192.0.2.1")
	if provider.lastFilters.Content != "192.0.2.1" {
		t.Errorf("Expected content filter passed to provider, got %q", provider.lastFilters.Content)
	}

	// A different content filter is a different cache key.
	liveListBody(t, r, "/zones/z1/dns-records?source=live&content=192.0.2.2")
	if provider.calls != 2 {
		t.Errorf("Expected distinct content filters to miss independently, provider called %d times", provider.calls)
	}
	if provider.lastFilters.Content != "192.0.2.2" {
		t.Errorf("Expected second content filter passed through, got %q", provider.lastFilters.Content)
	}
}
