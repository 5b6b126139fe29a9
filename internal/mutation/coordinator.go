package mutation

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"dnspanel/internal/dns"
	"dnspanel/internal/dnsname"
	"dnspanel/internal/history"
	"dnspanel/internal/model"
	"dnspanel/internal/record"
	"dnspanel/internal/ttlcache"
)

// Outcome classifies what happened to the remote state
type Outcome string

const (
	// OutcomeApplied means the remote mutation succeeded
	OutcomeApplied Outcome = "applied"
	// OutcomeRejected means the remote state definitely did not change
	OutcomeRejected Outcome = "rejected"
	// OutcomeUnknown means the call was aborted mid-flight; the caller
	// must re-fetch rather than assume rollback
	OutcomeUnknown Outcome = "unknown"
)

// Mirror is the slice of the local store the coordinator writes through
type Mirror interface {
	UpsertRecord(ctx context.Context, userID int, rec dns.Record) (*model.DNSRecord, error)
	DeleteRecord(ctx context.Context, userID int, recordID string) error
}

// Historian appends operation history entries
type Historian interface {
	Append(ctx context.Context, e history.Entry) error
}

// Invalidator drops cached read results for mutated zones
type Invalidator interface {
	Invalidate(prefixOrKey string)
}

// Coordinator is the sole path through which DNS records are created,
// updated, or deleted. Each mutation validates first, then executes
// remotely, then records history, then invalidates cached reads.
// Mutations are at-most-once against the provider: nothing here retries.
type Coordinator struct {
	mirror  Mirror
	history Historian
	cache   Invalidator
	logger  *logrus.Entry
}

// NewCoordinator creates a mutation coordinator
func NewCoordinator(mirror Mirror, historian Historian, cache Invalidator, logger *logrus.Entry) *Coordinator {
	return &Coordinator{
		mirror:  mirror,
		history: historian,
		cache:   cache,
		logger:  logger.WithField("component", "mutation-coordinator"),
	}
}

// CreateInput is a record creation request. Name is zone-relative as
// the UI presents it; the coordinator qualifies it against zoneName.
type CreateInput struct {
	Type     string
	Name     string
	Content  string
	TTL      int
	Proxied  bool
	Priority *int
	Comment  string
	Tags     []string
}

// CreateRecord validates and executes a record creation.
func (c *Coordinator) CreateRecord(ctx context.Context, provider dns.Provider, userID int, zoneID, zoneName string, input CreateInput) (*dns.Record, Outcome, error) {
	rec := dns.Record{
		ZoneID:   zoneID,
		Type:     input.Type,
		Name:     dnsname.ToFQDN(input.Name, zoneName),
		Content:  input.Content,
		TTL:      input.TTL,
		Proxied:  input.Proxied,
		Priority: input.Priority,
		Comment:  input.Comment,
		Tags:     input.Tags,
	}

	record.Normalize(&rec)
	if err := record.Validate(rec); err != nil {
		return nil, OutcomeRejected, err
	}

	created, err := provider.CreateRecord(ctx, zoneID, rec)
	if err != nil {
		return nil, c.failedExecution(ctx, zoneID, err), err
	}

	c.appendHistory(ctx, history.Entry{
		UserID:       userID,
		RequestID:    uuid.New().String(),
		Operation:    model.OperationCreate,
		ResourceType: model.ResourceDNSRecord,
		ResourceID:   created.ID,
		ResourceName: created.Name,
		ZoneID:       zoneID,
		NewData:      created,
	})

	c.invalidateAndMirror(ctx, userID, zoneID, created)
	return created, OutcomeApplied, nil
}

// UpdateRecord validates and executes a partial record update.
func (c *Coordinator) UpdateRecord(ctx context.Context, provider dns.Provider, userID int, zoneID, zoneName, recordID string, patch dns.RecordPatch) (*dns.Record, Outcome, error) {
	// The old record anchors patch validation and the history snapshot.
	old, err := provider.GetRecord(ctx, zoneID, recordID)
	if err != nil {
		return nil, classify(ctx, err), err
	}

	if patch.Name != nil {
		fqdn := dnsname.ToFQDN(*patch.Name, zoneName)
		patch.Name = &fqdn
	}
	record.NormalizePatch(&patch, old.Type)
	if err := record.ValidatePatch(patch, old.Type); err != nil {
		return nil, OutcomeRejected, err
	}

	updated, err := provider.UpdateRecord(ctx, zoneID, recordID, patch)
	if err != nil {
		return nil, c.failedExecution(ctx, zoneID, err), err
	}

	c.appendHistory(ctx, history.Entry{
		UserID:       userID,
		RequestID:    uuid.New().String(),
		Operation:    model.OperationUpdate,
		ResourceType: model.ResourceDNSRecord,
		ResourceID:   updated.ID,
		ResourceName: updated.Name,
		ZoneID:       zoneID,
		OldData:      old,
		NewData:      updated,
	})

	c.invalidateAndMirror(ctx, userID, zoneID, updated)
	return updated, OutcomeApplied, nil
}

// DeleteRecord executes a record deletion. A provider not-found is
// treated as already satisfied.
func (c *Coordinator) DeleteRecord(ctx context.Context, provider dns.Provider, userID int, zoneID, recordID string) (Outcome, error) {
	err := provider.DeleteRecord(ctx, zoneID, recordID)
	if err != nil && !errors.Is(err, dns.ErrNotFound) {
		return c.failedExecution(ctx, zoneID, err), err
	}
	alreadyGone := errors.Is(err, dns.ErrNotFound)

	if !alreadyGone {
		c.appendHistory(ctx, history.Entry{
			UserID:       userID,
			RequestID:    uuid.New().String(),
			Operation:    model.OperationDelete,
			ResourceType: model.ResourceDNSRecord,
			ResourceID:   recordID,
			ZoneID:       zoneID,
		})
	}

	c.cache.Invalidate(ttlcache.ZonePrefix(zoneID))
	c.cache.Invalidate(ttlcache.ZoneListKey)
	if err := c.mirror.DeleteRecord(ctx, userID, recordID); err != nil {
		c.logger.WithError(err).WithField("record_id", recordID).Warn("failed to delete mirror row")
	}

	return OutcomeApplied, nil
}

// BatchOp is the operation a batch request applies to each id
type BatchOp string

const (
	BatchOpUpdate BatchOp = "update"
	BatchOpDelete BatchOp = "delete"
)

// BatchItemResult is the per-id outcome of a batch operation
type BatchItemResult struct {
	RecordID string  `json:"record_id"`
	Outcome  Outcome `json:"outcome"`
	Error    string  `json:"error,omitempty"`
}

// Batch applies one operation to each record id independently. A
// failure on one id never aborts the remaining ids.
func (c *Coordinator) Batch(ctx context.Context, provider dns.Provider, userID int, zoneID, zoneName string, op BatchOp, recordIDs []string, patch *dns.RecordPatch) []BatchItemResult {
	results := make([]BatchItemResult, 0, len(recordIDs))

	for _, id := range recordIDs {
		item := BatchItemResult{RecordID: id, Outcome: OutcomeApplied}

		switch op {
		case BatchOpDelete:
			outcome, err := c.DeleteRecord(ctx, provider, userID, zoneID, id)
			item.Outcome = outcome
			if err != nil {
				item.Error = err.Error()
			}
		case BatchOpUpdate:
			p := dns.RecordPatch{}
			if patch != nil {
				p = *patch
			}
			_, outcome, err := c.UpdateRecord(ctx, provider, userID, zoneID, zoneName, id, p)
			item.Outcome = outcome
			if err != nil {
				item.Error = err.Error()
			}
		default:
			item.Outcome = OutcomeRejected
			item.Error = "unsupported batch operation"
		}

		results = append(results, item)
	}

	return results
}

// appendHistory records a mutation best-effort: the remote change is
// already authoritative, so a history failure is logged, never
// propagated.
func (c *Coordinator) appendHistory(ctx context.Context, e history.Entry) {
	if err := c.history.Append(ctx, e); err != nil {
		c.logger.WithError(err).WithFields(logrus.Fields{
			"operation":   e.Operation,
			"resource_id": e.ResourceID,
		}).Warn("failed to append history entry")
	}
}

func (c *Coordinator) invalidateAndMirror(ctx context.Context, userID int, zoneID string, rec *dns.Record) {
	c.cache.Invalidate(ttlcache.ZonePrefix(zoneID))
	c.cache.Invalidate(ttlcache.ZoneListKey)

	if rec.ZoneID == "" {
		rec.ZoneID = zoneID
	}
	if _, err := c.mirror.UpsertRecord(ctx, userID, *rec); err != nil {
		c.logger.WithError(err).WithField("record_id", rec.ID).Warn("failed to upsert mirror row")
	}
}

// failedExecution classifies an execution error. When the outcome is
// unknown the zone's cached reads are dropped anyway, so the next read
// re-fetches whatever state the provider is actually in.
func (c *Coordinator) failedExecution(ctx context.Context, zoneID string, err error) Outcome {
	outcome := classify(ctx, err)
	if outcome == OutcomeUnknown {
		c.cache.Invalidate(ttlcache.ZonePrefix(zoneID))
	}
	return outcome
}

// classify maps an execution error to an outcome. Context aborts leave
// the remote state unknown; anything the provider answered means the
// state definitely did not change.
func classify(ctx context.Context, err error) Outcome {
	if ctx.Err() != nil || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return OutcomeUnknown
	}
	var unreachable *dns.UnreachableError
	if errors.As(err, &unreachable) {
		return OutcomeUnknown
	}
	return OutcomeRejected
}
