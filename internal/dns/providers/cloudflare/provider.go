package cloudflare

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"dnspanel/internal/dns"
)

const (
	defaultAPIBase = "https://api.cloudflare.com/client/v4"
	defaultTimeout = 30 * time.Second
)

// Cloudflare error codes for "record does not exist" on delete
const (
	errCodeRecordNotFound    = 81044
	errCodeRecordNotFoundAlt = 81043
)

// Provider implements dns.Provider for the Cloudflare v4 API
type Provider struct {
	apiBase  string
	email    string
	apiToken string
	client   *http.Client
}

// Option configures a Provider
type Option func(*Provider)

// WithBaseURL overrides the API base URL (tests)
func WithBaseURL(base string) Option {
	return func(p *Provider) {
		p.apiBase = base
	}
}

// WithTimeout overrides the per-request timeout
func WithTimeout(d time.Duration) Option {
	return func(p *Provider) {
		p.client.Timeout = d
	}
}

// New creates a Cloudflare DNS provider. email may be empty when the
// token is a scoped API token rather than a legacy key.
func New(email, apiToken string, opts ...Option) *Provider {
	p := &Provider{
		apiBase:  defaultAPIBase,
		email:    email,
		apiToken: apiToken,
		client: &http.Client{
			Timeout: defaultTimeout,
		},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// apiResponse represents the Cloudflare API envelope
type apiResponse struct {
	Success    bool            `json:"success"`
	Errors     []apiError      `json:"errors"`
	Result     json.RawMessage `json:"result"`
	ResultInfo *resultInfo     `json:"result_info"`
}

// apiError represents a Cloudflare API error
type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type resultInfo struct {
	Page       int `json:"page"`
	PerPage    int `json:"per_page"`
	TotalCount int `json:"total_count"`
	TotalPages int `json:"total_pages"`
}

// zonePayload is the wire shape of a Cloudflare zone
type zonePayload struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Status      string   `json:"status"`
	Paused      bool     `json:"paused"`
	NameServers []string `json:"name_servers"`
	Account     struct {
		ID string `json:"id"`
	} `json:"account"`
	Plan struct {
		Name string `json:"name"`
	} `json:"plan"`
}

// recordPayload is the wire shape of a Cloudflare DNS record
type recordPayload struct {
	ID         string    `json:"id"`
	ZoneID     string    `json:"zone_id"`
	Type       string    `json:"type"`
	Name       string    `json:"name"`
	Content    string    `json:"content"`
	TTL        int       `json:"ttl"`
	Proxied    bool      `json:"proxied"`
	Priority   *int      `json:"priority,omitempty"`
	Comment    string    `json:"comment,omitempty"`
	Tags       []string  `json:"tags,omitempty"`
	CreatedOn  time.Time `json:"created_on"`
	ModifiedOn time.Time `json:"modified_on"`
}

func (z zonePayload) toZone() dns.Zone {
	return dns.Zone{
		ID:          z.ID,
		Name:        z.Name,
		Status:      z.Status,
		Paused:      z.Paused,
		NameServers: z.NameServers,
		AccountID:   z.Account.ID,
		PlanName:    z.Plan.Name,
	}
}

func (r recordPayload) toRecord() dns.Record {
	return dns.Record{
		ID:         r.ID,
		ZoneID:     r.ZoneID,
		Type:       r.Type,
		Name:       r.Name,
		Content:    r.Content,
		TTL:        r.TTL,
		Proxied:    r.Proxied,
		Priority:   r.Priority,
		Comment:    r.Comment,
		Tags:       r.Tags,
		CreatedOn:  r.CreatedOn,
		ModifiedOn: r.ModifiedOn,
	}
}

// ListZones lists zones visible to the credential
func (p *Provider) ListZones(ctx context.Context, filters dns.ZoneFilters) ([]dns.Zone, *dns.PageInfo, error) {
	q := url.Values{}
	if filters.Name != "" {
		q.Set("name", "contains:"+filters.Name)
	}
	if filters.Status != "" {
		q.Set("status", filters.Status)
	}
	if filters.Page > 0 {
		q.Set("page", strconv.Itoa(filters.Page))
	}
	if filters.PerPage > 0 {
		q.Set("per_page", strconv.Itoa(filters.PerPage))
	}

	endpoint := p.apiBase + "/zones"
	if len(q) > 0 {
		endpoint += "?" + q.Encode()
	}

	resp, err := p.do(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, nil, err
	}

	var zones []zonePayload
	if err := json.Unmarshal(resp.Result, &zones); err != nil {
		return nil, nil, fmt.Errorf("failed to parse zone list: %w", err)
	}

	out := make([]dns.Zone, 0, len(zones))
	for _, z := range zones {
		out = append(out, z.toZone())
	}
	return out, pageInfo(resp.ResultInfo), nil
}

// GetZone fetches a single zone by id
func (p *Provider) GetZone(ctx context.Context, zoneID string) (*dns.Zone, error) {
	resp, err := p.do(ctx, http.MethodGet, fmt.Sprintf("%s/zones/%s", p.apiBase, zoneID), nil)
	if err != nil {
		return nil, err
	}

	var zone zonePayload
	if err := json.Unmarshal(resp.Result, &zone); err != nil {
		return nil, fmt.Errorf("failed to parse zone: %w", err)
	}
	z := zone.toZone()
	return &z, nil
}

// ListRecords lists DNS records within a zone
func (p *Provider) ListRecords(ctx context.Context, zoneID string, filters dns.RecordFilters) ([]dns.Record, *dns.PageInfo, error) {
	q := url.Values{}
	if filters.Type != "" {
		q.Set("type", filters.Type)
	}
	if filters.Name != "" {
		q.Set("name", filters.Name)
	}
	if filters.Content != "" {
		q.Set("content", filters.Content)
	}
	if filters.Page > 0 {
		q.Set("page", strconv.Itoa(filters.Page))
	}
	perPage := filters.PerPage
	if perPage <= 0 {
		perPage = 1000
	}
	q.Set("per_page", strconv.Itoa(perPage))

	endpoint := fmt.Sprintf("%s/zones/%s/dns_records?%s", p.apiBase, zoneID, q.Encode())
	resp, err := p.do(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, nil, err
	}

	var records []recordPayload
	if err := json.Unmarshal(resp.Result, &records); err != nil {
		return nil, nil, fmt.Errorf("failed to parse record list: %w", err)
	}

	out := make([]dns.Record, 0, len(records))
	for _, r := range records {
		out = append(out, r.toRecord())
	}
	return out, pageInfo(resp.ResultInfo), nil
}

// GetRecord fetches a single record by id
func (p *Provider) GetRecord(ctx context.Context, zoneID, recordID string) (*dns.Record, error) {
	resp, err := p.do(ctx, http.MethodGet, fmt.Sprintf("%s/zones/%s/dns_records/%s", p.apiBase, zoneID, recordID), nil)
	if err != nil {
		return nil, err
	}

	var record recordPayload
	if err := json.Unmarshal(resp.Result, &record); err != nil {
		return nil, fmt.Errorf("failed to parse record: %w", err)
	}
	r := record.toRecord()
	return &r, nil
}

// CreateRecord creates a new DNS record
func (p *Provider) CreateRecord(ctx context.Context, zoneID string, record dns.Record) (*dns.Record, error) {
	payload := map[string]interface{}{
		"type":    record.Type,
		"name":    record.Name,
		"content": record.Content,
		"ttl":     record.TTL,
		"proxied": record.Proxied,
	}
	if record.Priority != nil {
		payload["priority"] = *record.Priority
	}
	if record.Comment != "" {
		payload["comment"] = record.Comment
	}
	if len(record.Tags) > 0 {
		payload["tags"] = record.Tags
	}

	resp, err := p.do(ctx, http.MethodPost, fmt.Sprintf("%s/zones/%s/dns_records", p.apiBase, zoneID), payload)
	if err != nil {
		return nil, err
	}

	var created recordPayload
	if err := json.Unmarshal(resp.Result, &created); err != nil {
		return nil, fmt.Errorf("failed to parse created record: %w", err)
	}
	r := created.toRecord()
	return &r, nil
}

// UpdateRecord applies a partial update to an existing record
func (p *Provider) UpdateRecord(ctx context.Context, zoneID, recordID string, patch dns.RecordPatch) (*dns.Record, error) {
	payload := map[string]interface{}{}
	if patch.Type != nil {
		payload["type"] = *patch.Type
	}
	if patch.Name != nil {
		payload["name"] = *patch.Name
	}
	if patch.Content != nil {
		payload["content"] = *patch.Content
	}
	if patch.TTL != nil {
		payload["ttl"] = *patch.TTL
	}
	if patch.Proxied != nil {
		payload["proxied"] = *patch.Proxied
	}
	if patch.Priority != nil {
		payload["priority"] = *patch.Priority
	}
	if patch.Comment != nil {
		payload["comment"] = *patch.Comment
	}
	if patch.Tags != nil {
		payload["tags"] = *patch.Tags
	}

	resp, err := p.do(ctx, http.MethodPatch, fmt.Sprintf("%s/zones/%s/dns_records/%s", p.apiBase, zoneID, recordID), payload)
	if err != nil {
		return nil, err
	}

	var updated recordPayload
	if err := json.Unmarshal(resp.Result, &updated); err != nil {
		return nil, fmt.Errorf("failed to parse updated record: %w", err)
	}
	r := updated.toRecord()
	return &r, nil
}

// DeleteRecord deletes a DNS record by id.
// Returns dns.ErrNotFound if the record doesn't exist; callers treat
// that as already satisfied.
func (p *Provider) DeleteRecord(ctx context.Context, zoneID, recordID string) error {
	_, err := p.do(ctx, http.MethodDelete, fmt.Sprintf("%s/zones/%s/dns_records/%s", p.apiBase, zoneID, recordID), nil)
	return err
}

// VerifyToken validates the credential against the token verify endpoint
func (p *Provider) VerifyToken(ctx context.Context) (*dns.TokenStatus, error) {
	resp, err := p.do(ctx, http.MethodGet, p.apiBase+"/user/tokens/verify", nil)
	if err != nil {
		return nil, err
	}

	var status dns.TokenStatus
	if err := json.Unmarshal(resp.Result, &status); err != nil {
		return nil, fmt.Errorf("failed to parse token status: %w", err)
	}
	return &status, nil
}

// do performs one authenticated round trip and decodes the envelope,
// mapping failures to the typed error vocabulary.
func (p *Provider) do(ctx context.Context, method, endpoint string, payload interface{}) (*apiResponse, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal payload: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if p.email != "" {
		req.Header.Set("X-Auth-Email", p.email)
		req.Header.Set("X-Auth-Key", p.apiToken)
	} else {
		req.Header.Set("Authorization", "Bearer "+p.apiToken)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &dns.UnreachableError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		retryAfter, _ := strconv.Atoi(resp.Header.Get("Retry-After"))
		return nil, &dns.RateLimitedError{RetryAfter: retryAfter}
	}

	if resp.StatusCode == http.StatusNotFound && method == http.MethodGet {
		return nil, dns.ErrNotFound
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &dns.UnreachableError{Err: err}
	}

	var envelope apiResponse
	if err := json.Unmarshal(respBody, &envelope); err != nil {
		if resp.StatusCode == http.StatusNotFound {
			return nil, dns.ErrNotFound
		}
		return nil, fmt.Errorf("failed to parse response (http %d): %w", resp.StatusCode, err)
	}

	if !envelope.Success {
		for _, e := range envelope.Errors {
			if e.Code == errCodeRecordNotFound || e.Code == errCodeRecordNotFoundAlt {
				return nil, dns.ErrNotFound
			}
		}
		if resp.StatusCode == http.StatusNotFound {
			return nil, dns.ErrNotFound
		}
		code := 0
		message := "unknown error"
		if len(envelope.Errors) > 0 {
			code = envelope.Errors[0].Code
			message = envelope.Errors[0].Message
		}
		return nil, &dns.ProviderError{
			Code:       code,
			Message:    message,
			HTTPStatus: resp.StatusCode,
		}
	}

	return &envelope, nil
}

func pageInfo(ri *resultInfo) *dns.PageInfo {
	if ri == nil {
		return nil
	}
	return &dns.PageInfo{
		Page:       ri.Page,
		PerPage:    ri.PerPage,
		Total:      ri.TotalCount,
		TotalPages: ri.TotalPages,
	}
}
