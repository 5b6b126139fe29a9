package zonesync

import (
	"context"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"

	"dnspanel/internal/dns"
	"dnspanel/internal/model"
)

type fakeProvider struct {
	dns.Provider

	zones       []dns.Zone
	records     []dns.Record
	getZoneErr  error
	listRecErr  error
	listZoneErr error

	// listRecFailures makes the first N ListRecords calls fail
	// with an UnreachableError before succeeding.
	listRecFailures int
	listRecCalls    int
}

func (f *fakeProvider) GetZone(ctx context.Context, zoneID string) (*dns.Zone, error) {
	if f.getZoneErr != nil {
		return nil, f.getZoneErr
	}
	for _, z := range f.zones {
		if z.ID == zoneID {
			zone := z
			return &zone, nil
		}
	}
	return nil, dns.ErrNotFound
}

func (f *fakeProvider) ListRecords(ctx context.Context, zoneID string, filters dns.RecordFilters) ([]dns.Record, *dns.PageInfo, error) {
	f.listRecCalls++
	if f.listRecFailures > 0 {
		f.listRecFailures--
		return nil, nil, &dns.UnreachableError{Err: errors.New("connection reset")}
	}
	if f.listRecErr != nil {
		return nil, nil, f.listRecErr
	}
	return f.records, nil, nil
}

func (f *fakeProvider) ListZones(ctx context.Context, filters dns.ZoneFilters) ([]dns.Zone, *dns.PageInfo, error) {
	if f.listZoneErr != nil {
		return nil, nil, f.listZoneErr
	}
	return f.zones, &dns.PageInfo{Page: 1, TotalPages: 1}, nil
}

type fakeMirror struct {
	zones      map[string]dns.Zone
	records    map[string]dns.Record
	zoneErr    error
	recordErrs map[string]error
	order      []string
}

func newFakeMirror() *fakeMirror {
	return &fakeMirror{
		zones:      make(map[string]dns.Zone),
		records:    make(map[string]dns.Record),
		recordErrs: make(map[string]error),
	}
}

func (m *fakeMirror) UpsertZone(ctx context.Context, userID int, zone dns.Zone) (*model.Zone, error) {
	if m.zoneErr != nil {
		return nil, m.zoneErr
	}
	m.zones[zone.ID] = zone
	m.order = append(m.order, "zone:"+zone.ID)
	return &model.Zone{ZoneID: zone.ID}, nil
}

func (m *fakeMirror) UpsertRecord(ctx context.Context, userID int, rec dns.Record) (*model.DNSRecord, error) {
	if err := m.recordErrs[rec.ID]; err != nil {
		return nil, err
	}
	m.records[rec.ID] = rec
	m.order = append(m.order, "record:"+rec.ID)
	return &model.DNSRecord{RecordID: rec.ID}, nil
}

func testEngine(m Mirror) *Engine {
	return NewEngine(m, logrus.NewEntry(logrus.New()))
}

func TestSyncZone(t *testing.T) {
	provider := &fakeProvider{
		zones: []dns.Zone{{ID: "z1", Name: "example.com", Status: "active"}},
		records: []dns.Record{
			{ID: "r1", ZoneID: "z1", Type: "A", Name: "www.example.com", Content: "192.0.2.1", TTL: 1},
			{ID: "r2", ZoneID: "z1", Type: "MX", Name: "example.com", Content: "mail.example.com", TTL: 3600},
		},
	}
	mirror := newFakeMirror()

	result, err := testEngine(mirror).SyncZone(context.Background(), provider, 1, "z1")
	if err != nil {
		t.Fatalf("SyncZone() failed: %v", err)
	}

	if !result.ZoneSynced || !result.RecordsSynced {
		t.Errorf("Expected full sync, got %+v", result)
	}
	if result.Fetched != 2 || result.Upserted != 2 {
		t.Errorf("Expected 2 fetched/upserted, got %+v", result)
	}

	// Zone upsert must precede record upserts
	if len(mirror.order) == 0 || mirror.order[0] != "zone:z1" {
		t.Errorf("Expected zone upsert first, got order %v", mirror.order)
	}
}

func TestSyncZone_Idempotent(t *testing.T) {
	provider := &fakeProvider{
		zones:   []dns.Zone{{ID: "z1", Name: "example.com"}},
		records: []dns.Record{{ID: "r1", ZoneID: "z1", Type: "A", Name: "www.example.com", Content: "192.0.2.1"}},
	}
	mirror := newFakeMirror()
	engine := testEngine(mirror)

	if _, err := engine.SyncZone(context.Background(), provider, 1, "z1"); err != nil {
		t.Fatalf("First SyncZone() failed: %v", err)
	}
	if _, err := engine.SyncZone(context.Background(), provider, 1, "z1"); err != nil {
		t.Fatalf("Second SyncZone() failed: %v", err)
	}

	if len(mirror.zones) != 1 || len(mirror.records) != 1 {
		t.Errorf("Expected identical row set after repeat sync, got %d zones / %d records",
			len(mirror.zones), len(mirror.records))
	}
}

func TestSyncZone_RecordFetchFails(t *testing.T) {
	provider := &fakeProvider{
		zones:      []dns.Zone{{ID: "z1", Name: "example.com"}},
		listRecErr: &dns.UnreachableError{Err: errors.New("timeout")},
	}
	mirror := newFakeMirror()

	result, err := testEngine(mirror).SyncZone(context.Background(), provider, 1, "z1")
	if err == nil {
		t.Fatal("Expected error from record fetch failure")
	}

	if !result.ZoneSynced {
		t.Error("Zone row should be updated despite record fetch failure")
	}
	if result.RecordsSynced {
		t.Error("Records must not be marked synced when the fetch failed")
	}
	if _, ok := mirror.zones["z1"]; !ok {
		t.Error("Zone should be in mirror")
	}
}

func TestSyncZone_RetriesTransientListFailure(t *testing.T) {
	provider := &fakeProvider{
		zones:           []dns.Zone{{ID: "z1", Name: "example.com"}},
		records:         []dns.Record{{ID: "r1", ZoneID: "z1", Type: "A", Name: "www.example.com", Content: "192.0.2.1"}},
		listRecFailures: 1,
	}
	mirror := newFakeMirror()

	result, err := testEngine(mirror).SyncZone(context.Background(), provider, 1, "z1")
	if err != nil {
		t.Fatalf("SyncZone() failed despite transient error: %v", err)
	}

	if provider.listRecCalls != 2 {
		t.Errorf("Expected exactly one retry, got %d calls", provider.listRecCalls)
	}
	if !result.RecordsSynced || result.Upserted != 1 {
		t.Errorf("Expected full sync after retry, got %+v", result)
	}
}

func TestSyncZone_NoRetryOnPersistentError(t *testing.T) {
	provider := &fakeProvider{
		zones:      []dns.Zone{{ID: "z1", Name: "example.com"}},
		listRecErr: &dns.ProviderError{Code: 10000, Message: "authentication error"},
	}
	mirror := newFakeMirror()

	_, err := testEngine(mirror).SyncZone(context.Background(), provider, 1, "z1")
	if err == nil {
		t.Fatal("Expected error from record fetch failure")
	}
	if provider.listRecCalls != 1 {
		t.Errorf("Non-transient errors must not be retried, got %d calls", provider.listRecCalls)
	}
}

func TestSyncZone_PartialRecordFailure(t *testing.T) {
	provider := &fakeProvider{
		zones: []dns.Zone{{ID: "z1", Name: "example.com"}},
		records: []dns.Record{
			{ID: "r1", ZoneID: "z1", Type: "A", Name: "a.example.com", Content: "192.0.2.1"},
			{ID: "r2", ZoneID: "z1", Type: "A", Name: "b.example.com", Content: "192.0.2.2"},
			{ID: "r3", ZoneID: "z1", Type: "A", Name: "c.example.com", Content: "192.0.2.3"},
		},
	}
	mirror := newFakeMirror()
	mirror.recordErrs["r2"] = errors.New("constraint violation")

	result, err := testEngine(mirror).SyncZone(context.Background(), provider, 1, "z1")
	if err != nil {
		t.Fatalf("SyncZone() failed: %v", err)
	}

	// One record failing must not abort the rest
	if result.Upserted != 2 || result.Failed != 1 {
		t.Errorf("Expected 2 upserted / 1 failed, got %+v", result)
	}
	if result.RecordsSynced {
		t.Error("RecordsSynced must be false when any record failed")
	}
	if _, ok := mirror.records["r3"]; !ok {
		t.Error("r3 should have been upserted after r2 failed")
	}
}

func TestSyncZone_ZoneFetchFails(t *testing.T) {
	provider := &fakeProvider{getZoneErr: dns.ErrNotFound}
	mirror := newFakeMirror()

	result, err := testEngine(mirror).SyncZone(context.Background(), provider, 1, "z404")
	if err == nil {
		t.Fatal("Expected error when zone fetch fails")
	}
	if result.ZoneSynced {
		t.Error("Nothing should be marked synced")
	}
	if len(mirror.zones) != 0 {
		t.Error("Mirror must be untouched")
	}
}

func TestSyncAllZones(t *testing.T) {
	provider := &fakeProvider{
		zones: []dns.Zone{
			{ID: "z1", Name: "example.com"},
			{ID: "z2", Name: "example.org"},
		},
	}
	mirror := newFakeMirror()

	result, err := testEngine(mirror).SyncAllZones(context.Background(), provider, 1)
	if err != nil {
		t.Fatalf("SyncAllZones() failed: %v", err)
	}

	if result.Total != 2 || result.Upserted != 2 {
		t.Errorf("Expected 2 zones synced, got %+v", result)
	}
}
