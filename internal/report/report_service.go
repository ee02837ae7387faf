package report

import (
	"context"
	"database/sql"
	"encoding/json"
	"sync"
	"time"

	"go-outpass/internal/events"
	"go-outpass/internal/messaging/kafka"
	reporterrors "go-outpass/internal/report/errors"
	"go-outpass/internal/shared/contextutil"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// SnapshotCacheKey holds the last successfully fetched raw record set in
// Redis, so a restarted process (or a process whose upstream is down) can keep
// serving the last-known data.
const SnapshotCacheKey = "reports:snapshot"

const snapshotTTL = 24 * time.Hour

type ExportReceipt struct {
	ExportID    string    `json:"export_id"`
	RecordCount int       `json:"record_count"`
	RequestedAt time.Time `json:"requested_at"`
}

type SnapshotMeta struct {
	RecordCount int       `json:"record_count"`
	FetchedAt   time.Time `json:"fetched_at"`
	Stale       bool      `json:"stale"`
}

//go:generate mockgen -source=report_service.go -destination=mock/report_service_mock.go -package=mock
type Service interface {
	Query(ctx context.Context, criteria Criteria) (FilterResult, error)
	Stats(ctx context.Context, criteria Criteria) (Stats, error)
	Refresh(ctx context.Context) error
	Meta() SnapshotMeta
	Export(ctx context.Context, criteria Criteria) (ExportReceipt, error)
}

type service struct {
	source RecordSource
	cache  *ResultCache
	db     *sql.DB
	outbox kafka.OutboxRepository
	rdb    *redis.Client
	logger *zap.Logger

	// Overlapping refreshes join the in-flight fetch instead of racing it,
	// so a slow fetch can never overwrite newer data with stale results.
	sf singleflight.Group

	mu          sync.RWMutex
	snapshot    []ClassifiedRecord
	fetchedAt   time.Time
	hasSnapshot bool
	stale       bool
}

func NewService(
	source RecordSource,
	db *sql.DB,
	outbox kafka.OutboxRepository,
	rdb *redis.Client,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("report.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("report.service")
	}
	return &service{
		source: source,
		cache:  NewResultCache(),
		db:     db,
		outbox: outbox,
		rdb:    rdb,
		logger: l,
	}
}

// Refresh re-fetches the full record set, clears the result cache and
// rebuilds the classified snapshot. On upstream failure the previous snapshot
// and its cache are retained (stale-but-available) and the error is returned
// for the caller to surface.
func (s *service) Refresh(ctx context.Context) error {
	_, err, shared := s.sf.Do("refresh", func() (interface{}, error) {
		records, err := s.source.Fetch(ctx)
		if err != nil {
			s.logger.Warn("report refresh fetch failed, keeping previous snapshot", zap.Error(err))
			s.markStale()
			return nil, reporterrors.ErrUpstreamUnavailable
		}
		s.install(ctx, Normalize(records))
		return nil, nil
	})
	if shared {
		s.logger.Debug("report refresh joined in-flight fetch")
	}
	return err
}

// install replaces the snapshot with a freshly classified record set.
func (s *service) install(ctx context.Context, records []Record) {
	now := time.Now()

	s.cache.Clear()
	classified := make([]ClassifiedRecord, len(records))
	for i, r := range records {
		classified[i] = ClassifiedRecord{
			Record:    r,
			Violation: s.cache.GetOrCompute(r, now),
		}
	}

	s.mu.Lock()
	s.snapshot = classified
	s.fetchedAt = now
	s.hasSnapshot = true
	s.stale = false
	s.mu.Unlock()

	s.logger.Info("report snapshot refreshed", zap.Int("records", len(records)))

	if s.rdb != nil {
		if data, err := json.Marshal(records); err == nil {
			if err := s.rdb.Set(ctx, SnapshotCacheKey, data, snapshotTTL).Err(); err != nil {
				s.logger.Warn("store snapshot in redis failed", zap.Error(err))
			}
		}
	}
}

func (s *service) markStale() {
	s.mu.Lock()
	if s.hasSnapshot {
		s.stale = true
	}
	s.mu.Unlock()
}

// Query applies the filter pipeline to the current snapshot, refreshing
// lazily when no snapshot exists yet. When the upstream is down and nothing
// was fetched in this process lifetime, the last-good record set from Redis
// is restored before giving up.
func (s *service) Query(ctx context.Context, criteria Criteria) (FilterResult, error) {
	s.mu.RLock()
	has := s.hasSnapshot
	snap := s.snapshot
	s.mu.RUnlock()

	if !has {
		if err := s.Refresh(ctx); err != nil {
			if !s.restoreFromRedis(ctx) {
				return FilterResult{}, err
			}
		}
		s.mu.RLock()
		snap = s.snapshot
		s.mu.RUnlock()
	}

	return ApplyFilters(snap, criteria), nil
}

func (s *service) Stats(ctx context.Context, criteria Criteria) (Stats, error) {
	result, err := s.Query(ctx, criteria)
	if err != nil {
		return Stats{}, err
	}
	return result.Stats, nil
}

func (s *service) Meta() SnapshotMeta {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return SnapshotMeta{
		RecordCount: len(s.snapshot),
		FetchedAt:   s.fetchedAt,
		Stale:       s.stale,
	}
}

func (s *service) restoreFromRedis(ctx context.Context) bool {
	if s.rdb == nil {
		return false
	}

	data, err := s.rdb.Get(ctx, SnapshotCacheKey).Bytes()
	if err != nil {
		return false
	}

	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		s.logger.Warn("decode redis snapshot failed", zap.Error(err))
		return false
	}

	s.install(ctx, records)
	s.markStale()
	s.logger.Info("report snapshot restored from redis", zap.Int("records", len(records)))
	return true
}

// exportPayload is the opaque hand-off to the export/email collaborators.
type exportPayload struct {
	EventType   string             `json:"event_type"`
	ExportID    string             `json:"export_id"`
	RequestedAt time.Time          `json:"requested_at"`
	Criteria    Criteria           `json:"criteria"`
	Stats       Stats              `json:"stats"`
	Records     []ClassifiedRecord `json:"records"`
}

// Export filters the current snapshot and hands the result off on the export
// topic through the transactional outbox. The engine knows nothing about the
// destination format.
func (s *service) Export(ctx context.Context, criteria Criteria) (ExportReceipt, error) {
	if s.db == nil || s.outbox == nil {
		return ExportReceipt{}, reporterrors.ErrExportUnavailable
	}

	result, err := s.Query(ctx, criteria)
	if err != nil {
		return ExportReceipt{}, err
	}

	receipt := ExportReceipt{
		ExportID:    uuid.NewString(),
		RecordCount: len(result.Filtered),
		RequestedAt: time.Now().UTC(),
	}

	payload, err := json.Marshal(exportPayload{
		EventType:   "report.export.requested",
		ExportID:    receipt.ExportID,
		RequestedAt: receipt.RequestedAt,
		Criteria:    criteria,
		Stats:       result.Stats,
		Records:     result.Filtered,
	})
	if err != nil {
		return ExportReceipt{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("export begin tx failed", zap.Error(err))
		return ExportReceipt{}, err
	}
	defer tx.Rollback()

	event := kafka.OutboxEvent{
		ID:            uuid.NewString(),
		RequestID:     contextutil.GetRequestID(ctx),
		AggregateType: "report_export",
		AggregateID:   receipt.ExportID,
		EventType:     "report.export.requested",
		Topic:         events.ReportExportTopic,
		Payload:       payload,
		Status:        kafka.OutboxStatusPending,
	}
	if err := s.outbox.WithTx(tx).Create(ctx, event); err != nil {
		s.logger.Error("export outbox persist failed", zap.Error(err))
		return ExportReceipt{}, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("export commit failed", zap.Error(err))
		return ExportReceipt{}, err
	}

	s.logger.Info("report export queued",
		zap.String("export_id", receipt.ExportID),
		zap.Int("records", receipt.RecordCount),
	)

	return receipt, nil
}
