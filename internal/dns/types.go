package dns

import "time"

// Zone represents a provider zone as reported by the remote API
type Zone struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Status      string   `json:"status"`
	Paused      bool     `json:"paused"`
	NameServers []string `json:"name_servers"`
	AccountID   string   `json:"account_id"`
	PlanName    string   `json:"plan_name"`
}

// Record represents a provider DNS record. Name is always
// fully-qualified on the wire.
type Record struct {
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

// RecordPatch is a partial update; nil fields are left unchanged by the
// provider.
type RecordPatch struct {
	Type     *string   `json:"type,omitempty"`
	Name     *string   `json:"name,omitempty"`
	Content  *string   `json:"content,omitempty"`
	TTL      *int      `json:"ttl,omitempty"`
	Proxied  *bool     `json:"proxied,omitempty"`
	Priority *int      `json:"priority,omitempty"`
	Comment  *string   `json:"comment,omitempty"`
	Tags     *[]string `json:"tags,omitempty"`
}

// ZoneFilters narrows a zone listing
type ZoneFilters struct {
	Name    string
	Status  string
	Page    int
	PerPage int
}

// RecordFilters narrows a record listing within a zone
type RecordFilters struct {
	Type    string
	Name    string
	Content string
	Page    int
	PerPage int
}

// PageInfo reports provider-side pagination of a listing
type PageInfo struct {
	Page       int `json:"page"`
	PerPage    int `json:"per_page"`
	Total      int `json:"total_count"`
	TotalPages int `json:"total_pages"`
}

// TokenStatus reports the result of a credential verification
type TokenStatus struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}
