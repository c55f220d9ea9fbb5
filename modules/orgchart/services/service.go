package services

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Luannt1005/Orgchart-Mil-firebase-sub000/modules/orgchart/domain"
)

const recordsCacheKey = "orgchart:records"

var tracer = otel.Tracer("orgchart-services")

// RecordSource yields the current employee record snapshot.
type RecordSource interface {
	FetchRecords(ctx context.Context) ([]domain.RawRecord, error)
}

// RecordStore replaces the stored snapshot with a new one.
type RecordStore interface {
	ImportRecords(ctx context.Context, records []domain.RawRecord) (int, error)
}

// SnapshotCache holds raw records between builds so several processes can
// share one fetch.
type SnapshotCache interface {
	Get(ctx context.Context, key string) ([]domain.RawRecord, bool, error)
	Set(ctx context.Context, key string, records []domain.RawRecord) error
	Delete(ctx context.Context, key string) error
}

type OrgChartServiceOptions struct {
	Source     RecordSource
	Store      RecordStore
	Cache      SnapshotCache
	Classifier *Classifier
	Logger     *logrus.Logger
	TTL        time.Duration
	Now        func() time.Time
}

type OrgChartService struct {
	source     RecordSource
	store      RecordStore
	cache      SnapshotCache
	classifier *Classifier
	logger     *logrus.Logger
	ttl        time.Duration
	now        func() time.Time

	mu       sync.Mutex
	current  *Snapshot
	expireAt time.Time
}

func NewOrgChartService(opts OrgChartServiceOptions) *OrgChartService {
	s := &OrgChartService{
		source:     opts.Source,
		store:      opts.Store,
		cache:      opts.Cache,
		classifier: opts.Classifier,
		logger:     opts.Logger,
		ttl:        opts.TTL,
		now:        opts.Now,
	}
	if s.classifier == nil {
		s.classifier = MustDefaultClassifier()
	}
	if s.logger == nil {
		s.logger = logrus.StandardLogger()
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

func (s *OrgChartService) Classifier() *Classifier { return s.classifier }

func (s *OrgChartService) Now() time.Time { return s.now() }

// Snapshot returns the built hierarchy, rebuilding when the in-process copy
// is missing or older than the configured TTL. A zero TTL keeps the copy
// until Invalidate or Import.
func (s *OrgChartService) Snapshot(ctx context.Context) (*Snapshot, error) {
	ctx, span := tracer.Start(ctx, "orgchart.snapshot")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current != nil && (s.ttl <= 0 || s.now().Before(s.expireAt)) {
		span.SetAttributes(attribute.Bool("orgchart.memoized", true))
		return s.current, nil
	}

	records, err := s.loadRecords(ctx, span)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	snap, err := Build(records, BuildOptions{Classifier: s.classifier, Logger: s.logger, Now: s.now})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	span.SetAttributes(attribute.Int("orgchart.nodes", snap.Len()))
	s.current = snap
	s.expireAt = s.now().Add(s.ttl)
	return snap, nil
}

func (s *OrgChartService) loadRecords(ctx context.Context, span trace.Span) ([]domain.RawRecord, error) {
	if s.cache != nil {
		records, ok, err := s.cache.Get(ctx, recordsCacheKey)
		switch {
		case err != nil:
			recordCacheRequest("error")
			s.logger.WithError(err).Warn("orgchart: snapshot cache read failed, falling back to source")
		case ok:
			recordCacheRequest("hit")
			span.SetAttributes(attribute.Bool("orgchart.cache_hit", true))
			return records, nil
		default:
			recordCacheRequest("miss")
		}
	}

	if s.source == nil {
		return nil, ErrSourceMissing
	}
	records, err := s.source.FetchRecords(ctx)
	if err != nil {
		return nil, newServiceError(http.StatusServiceUnavailable, "ORGCHART_SOURCE_FAILED", "failed to fetch employee records", err)
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, recordsCacheKey, records); err != nil {
			s.logger.WithError(err).Warn("orgchart: snapshot cache write failed")
		}
	}
	return records, nil
}

// Invalidate drops the memoized snapshot and the shared record cache.
func (s *OrgChartService) Invalidate(ctx context.Context) error {
	s.mu.Lock()
	s.current = nil
	s.expireAt = time.Time{}
	s.mu.Unlock()
	if s.cache == nil {
		return nil
	}
	return s.cache.Delete(ctx, recordsCacheKey)
}

// Import replaces the stored records and returns the snapshot built from
// them. The rebuild does not go back to the source.
func (s *OrgChartService) Import(ctx context.Context, records []domain.RawRecord) (*Snapshot, error) {
	ctx, span := tracer.Start(ctx, "orgchart.import", trace.WithAttributes(attribute.Int("orgchart.records", len(records))))
	defer span.End()

	if s.store == nil {
		return nil, ErrImportTargetNil
	}
	if len(records) == 0 {
		return nil, ErrEmptyImport
	}
	snap, err := Build(records, BuildOptions{Classifier: s.classifier, Logger: s.logger, Now: s.now})
	if err != nil {
		return nil, err
	}
	n, err := s.store.ImportRecords(ctx, records)
	if err != nil {
		span.RecordError(err)
		return nil, newServiceError(http.StatusInternalServerError, "ORGCHART_IMPORT_FAILED", "failed to store employee records", err)
	}
	if err := s.Invalidate(ctx); err != nil {
		s.logger.WithError(err).Warn("orgchart: snapshot cache invalidation failed")
	}

	s.mu.Lock()
	s.current = snap
	s.expireAt = s.now().Add(s.ttl)
	s.mu.Unlock()

	s.logger.WithFields(logrus.Fields{"records": n, "build_id": snap.BuildID}).Info("orgchart: records imported")
	return snap, nil
}
