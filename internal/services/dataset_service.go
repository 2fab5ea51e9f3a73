package services

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	"ipedsprep/internal/config"
	"ipedsprep/internal/dataprocessing"
	apperrors "ipedsprep/internal/errors"
	"ipedsprep/internal/exporter"
	"ipedsprep/internal/files"
	"ipedsprep/internal/infrastructure"
	"ipedsprep/pkg/contracts/domain"
)

// DatasetService serves the merged dataset of a year from published
// artifacts. Loads are memoized per year for the life of the service;
// concurrent callers for the same year share one load.
type DatasetService struct {
	paths     *config.Paths
	telemetry *infrastructure.Telemetry
	logger    *slog.Logger

	mu    sync.RWMutex
	cache map[domain.YearTag][]domain.MergedRecord
	// generation changes on every Invalidate or Clear. A load started under
	// an older generation returns its result but does not cache it.
	generation uint64
	group      singleflight.Group

	// afterLoad runs between merging and caching a dataset
	afterLoad func(tag domain.YearTag)
}

// NewDatasetService creates a service reading artifacts from paths.ProcessedDir
func NewDatasetService(paths *config.Paths, telemetry *infrastructure.Telemetry, logger *slog.Logger) *DatasetService {
	if logger == nil {
		logger = slog.Default()
	}
	if telemetry == nil {
		telemetry = infrastructure.NoopTelemetry()
	}
	return &DatasetService{
		paths:     paths,
		telemetry: telemetry,
		logger:    infrastructure.WithComponent(logger, "dataset_service"),
		cache:     make(map[domain.YearTag][]domain.MergedRecord),
	}
}

// Load returns the merged dataset for tag. The award and institution
// artifacts must exist; a missing graduation-rate artifact leaves
// grad_rate_2023 null. The caller owns the returned slice.
func (s *DatasetService) Load(ctx context.Context, tag domain.YearTag) ([]domain.MergedRecord, error) {
	if !tag.Valid() {
		return nil, apperrors.NewInvalidYearTagError(string(tag))
	}
	attrs := metric.WithAttributes(attribute.String("year", string(tag)))

	s.mu.RLock()
	cached, ok := s.cache[tag]
	s.mu.RUnlock()
	if ok {
		s.telemetry.Metrics.DatasetCacheHits.Add(ctx, 1, attrs)
		return dataprocessing.CloneMerged(cached), nil
	}
	s.telemetry.Metrics.DatasetCacheMiss.Add(ctx, 1, attrs)

	// the shared load outlives any single caller's cancellation
	loadCtx := context.WithoutCancel(ctx)
	ch := s.group.DoChan(string(tag), func() (interface{}, error) {
		return s.loadAndStore(loadCtx, tag)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-ch:
		if r.Err != nil {
			s.telemetry.Metrics.DatasetLoadErrors.Add(ctx, 1, attrs)
			return nil, r.Err
		}
		return dataprocessing.CloneMerged(r.Val.([]domain.MergedRecord)), nil
	}
}

func (s *DatasetService) loadAndStore(ctx context.Context, tag domain.YearTag) ([]domain.MergedRecord, error) {
	s.mu.RLock()
	cached, ok := s.cache[tag]
	generation := s.generation
	s.mu.RUnlock()
	if ok {
		return cached, nil
	}

	ctx, span := s.telemetry.Tracer.Start(ctx, "dataset.load",
		trace.WithAttributes(attribute.String("year", string(tag))))
	defer span.End()

	start := time.Now()
	merged, err := s.load(ctx, tag)
	s.telemetry.Metrics.RecordStage(ctx, "merge", string(domain.KindAward), time.Since(start), err)
	if err != nil {
		infrastructure.RecordError(ctx, err)
		s.logger.ErrorContext(ctx, "Failed to load dataset", infrastructure.ErrorAttrs(err)...)
		return nil, err
	}

	if s.afterLoad != nil {
		s.afterLoad(tag)
	}

	s.mu.Lock()
	stale := s.generation != generation
	if !stale {
		s.cache[tag] = merged
	}
	s.mu.Unlock()
	if stale {
		s.logger.DebugContext(ctx, "Dataset invalidated during load, not caching",
			slog.String("year", string(tag)))
	}

	s.logger.InfoContext(ctx, "Dataset loaded",
		slog.String("year", string(tag)),
		slog.Int("rows", len(merged)),
		slog.Duration("duration", time.Since(start)))
	return merged, nil
}

func (s *DatasetService) load(ctx context.Context, tag domain.YearTag) ([]domain.MergedRecord, error) {
	awards, err := exporter.ReadTable[domain.AwardRecord](s.paths.AwardArtifact(tag))
	if err != nil {
		return nil, withYear(err, tag)
	}
	institutions, err := exporter.ReadTable[domain.InstitutionRecord](s.paths.InstitutionsArtifact())
	if err != nil {
		return nil, withYear(err, tag)
	}

	var gradRates []domain.GradRateRecord
	gradPath := s.paths.GradRateArtifact()
	if config.FileExists(gradPath) {
		if gradRates, err = exporter.ReadTable[domain.GradRateRecord](gradPath); err != nil {
			return nil, withYear(err, tag)
		}
	} else {
		s.logger.WarnContext(ctx, "Graduation rate artifact not found, grad_rate_2023 will be null",
			slog.String("path", gradPath))
	}

	refs := dataprocessing.CheckReferences(awards, institutions)
	if refs.Unmatched > 0 {
		s.logger.WarnContext(ctx, "Award rows without an institution",
			slog.String("year", string(tag)),
			slog.Int("unmatched", refs.Unmatched),
			slog.Any("sample", refs.Sample))
	}

	return dataprocessing.Merge(awards, institutions, gradRates), nil
}

func withYear(err error, tag domain.YearTag) error {
	if appErr, ok := err.(*apperrors.AppError); ok {
		return appErr.WithContext(apperrors.CtxYear, string(tag))
	}
	return err
}

// Invalidate drops the cached dataset of tag
func (s *DatasetService) Invalidate(tag domain.YearTag) {
	s.mu.Lock()
	delete(s.cache, tag)
	s.generation++
	s.mu.Unlock()
	s.group.Forget(string(tag))
}

// Clear drops every cached dataset
func (s *DatasetService) Clear() {
	s.mu.Lock()
	s.cache = make(map[domain.YearTag][]domain.MergedRecord)
	s.generation++
	s.mu.Unlock()
	// in-flight loads are keyed by year whether or not they were cached
	for _, y := range domain.AcademicYears() {
		s.group.Forget(string(y.Tag))
	}
}

// Cached reports whether tag is currently memoized
func (s *DatasetService) Cached(tag domain.YearTag) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.cache[tag]
	return ok
}

// Years lists the years with a published award artifact, oldest first
func (s *DatasetService) Years() []domain.AcademicYear {
	return files.ProcessedYears(s.paths)
}
