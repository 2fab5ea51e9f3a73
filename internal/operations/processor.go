package operations

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"ipedsprep/internal/config"
	"ipedsprep/internal/dataprocessing"
	apperrors "ipedsprep/internal/errors"
	"ipedsprep/internal/exporter"
	"ipedsprep/internal/infrastructure"
	"ipedsprep/internal/validation"
	"ipedsprep/pkg/contracts"
	"ipedsprep/pkg/contracts/domain"
)

// Result describes one published artifact
type Result struct {
	Kind        domain.RecordKind                `json:"kind"`
	Year        domain.YearTag                   `json:"year,omitempty"`
	Source      string                           `json:"source"`
	Artifact    string                           `json:"artifact"`
	Rows        int                              `json:"rows"`
	Identifiers *dataprocessing.IdentifierReport `json:"identifiers,omitempty"`
	Duration    time.Duration                    `json:"duration"`
}

// YearlyProcessor turns one raw extract into one verified artifact
type YearlyProcessor struct {
	paths     *config.Paths
	cfg       config.PipelineConfig
	telemetry *infrastructure.Telemetry
	logger    *slog.Logger
	decoder   *dataprocessing.Decoder
	files     *validation.FileValidator

	// beforeVerify runs between writing and re-reading the temporary artifact
	beforeVerify func(tmp string)
}

// NewYearlyProcessor creates a processor writing into paths.ProcessedDir.
// A nil telemetry records nothing.
func NewYearlyProcessor(paths *config.Paths, cfg config.PipelineConfig, telemetry *infrastructure.Telemetry, logger *slog.Logger) *YearlyProcessor {
	if logger == nil {
		logger = slog.Default()
	}
	if telemetry == nil {
		telemetry = infrastructure.NoopTelemetry()
	}
	logger = infrastructure.WithComponent(logger, "yearly_processor")
	return &YearlyProcessor{
		paths:     paths,
		cfg:       cfg,
		telemetry: telemetry,
		logger:    logger,
		decoder:   dataprocessing.NewDecoder(logger),
		files:     validation.NewFileValidator(logger),
	}
}

// ProcessAwards maps one year's award extract and publishes
// financial_aid_<tag>.parquet. An existing artifact yields AlreadyProcessed
// and is left untouched.
func (p *YearlyProcessor) ProcessAwards(ctx context.Context, rawPath string, tag domain.YearTag) (*Result, error) {
	if !tag.Valid() {
		return nil, apperrors.NewInvalidYearTagError(string(tag)).WithContext(apperrors.CtxPath, rawPath)
	}
	target := p.paths.Artifact(domain.KindAward, tag)

	return p.run(ctx, domain.KindAward, tag, rawPath, target, func(ctx context.Context, res *Result, table *dataprocessing.RawTable) error {
		records, err := timed(ctx, p, "map", domain.KindAward, func() ([]domain.AwardRecord, error) {
			return dataprocessing.MapAwards(table)
		})
		if err != nil {
			return err
		}
		if err := checkRecords(ctx, p, domain.KindAward, records, func(r domain.AwardRecord) int64 { return r.UnitID }); err != nil {
			return err
		}

		summary := dataprocessing.SummarizeAwards(records)
		p.logger.DebugContext(ctx, "Award table profiled",
			slog.String("year", string(tag)),
			slog.Int("rows", summary.Rows),
			slog.Int("distinct_unit_ids", summary.DistinctUnitIDs))

		res.Rows = len(records)
		return persist(ctx, p, res, records, domain.AwardColumns)
	})
}

// ProcessInstitutions decodes the institution reference table and replaces
// institutions.parquet.
func (p *YearlyProcessor) ProcessInstitutions(ctx context.Context, rawPath string) (*Result, error) {
	target := p.paths.Artifact(domain.KindInstitution, "")

	return p.run(ctx, domain.KindInstitution, "", rawPath, target, func(ctx context.Context, res *Result, table *dataprocessing.RawTable) error {
		raw, err := timed(ctx, p, "map", domain.KindInstitution, func() ([]domain.RawInstitution, error) {
			return dataprocessing.MapInstitutions(table)
		})
		if err != nil {
			return err
		}

		start := time.Now()
		records, _ := p.decoder.DecodeInstitutions(raw)
		report := dataprocessing.ValidateIdentifiers(records)
		p.telemetry.Metrics.RecordStage(ctx, "decode", string(domain.KindInstitution), time.Since(start), nil)
		p.reportIdentifiers(ctx, rawPath, report)
		res.Identifiers = &report

		if err := checkRecords(ctx, p, domain.KindInstitution, records, func(r domain.InstitutionRecord) int64 { return r.UnitID }); err != nil {
			return err
		}

		res.Rows = len(records)
		return persist(ctx, p, res, records, domain.InstitutionColumns)
	})
}

// ProcessGradRates replaces grad_rate_2023.parquet
func (p *YearlyProcessor) ProcessGradRates(ctx context.Context, rawPath string) (*Result, error) {
	target := p.paths.Artifact(domain.KindGradRate, "")

	return p.run(ctx, domain.KindGradRate, "", rawPath, target, func(ctx context.Context, res *Result, table *dataprocessing.RawTable) error {
		records, err := timed(ctx, p, "map", domain.KindGradRate, func() ([]domain.GradRateRecord, error) {
			return dataprocessing.MapGradRates(table)
		})
		if err != nil {
			return err
		}
		if err := checkRecords(ctx, p, domain.KindGradRate, records, func(r domain.GradRateRecord) int64 { return r.UnitID }); err != nil {
			return err
		}

		res.Rows = len(records)
		return persist(ctx, p, res, records, domain.GradRateColumns)
	})
}

type body func(ctx context.Context, res *Result, table *dataprocessing.RawTable) error

// run wraps one processing run with tracing, the idempotency pre-check,
// loading, and outcome metrics.
func (p *YearlyProcessor) run(ctx context.Context, kind domain.RecordKind, tag domain.YearTag, rawPath, target string, fn body) (*Result, error) {
	ctx = infrastructure.EnsureTraceID(ctx)
	ctx, span := p.telemetry.Tracer.Start(ctx, "process."+string(kind),
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("kind", string(kind)),
			attribute.String("year", string(tag)),
			attribute.String("source", rawPath),
		),
	)
	defer span.End()

	logger := p.logger.With(slog.String("kind", string(kind)))
	if tag != "" {
		logger = logger.With(slog.String("year", string(tag)))
	}

	start := time.Now()
	res := &Result{Kind: kind, Year: tag, Source: rawPath, Artifact: target}

	err := withRunContext(p.execute(ctx, kind, tag, rawPath, target, res, fn), tag, rawPath)
	res.Duration = time.Since(start)

	switch {
	case err == nil:
		span.SetAttributes(attribute.Int("rows", res.Rows))
		logger.InfoContext(ctx, "Artifact published",
			slog.String("artifact", target),
			slog.Int("rows", res.Rows),
			slog.Duration("duration", res.Duration))
		return res, nil
	case apperrors.Is(err, apperrors.ErrTypeAlreadyProcessed):
		p.telemetry.Metrics.RunsSkipped.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", string(kind))))
		logger.InfoContext(ctx, "Artifact already exists, skipping", slog.String("artifact", target))
		return nil, err
	default:
		infrastructure.RecordError(ctx, err)
		p.telemetry.Metrics.RecordFailure(ctx, string(kind), err)
		logger.ErrorContext(ctx, "Processing failed", infrastructure.ErrorAttrs(err)...)
		return nil, err
	}
}

// withRunContext tags an AppError with the run's year and, when the failing
// stage did not set one, its source path
func withRunContext(err error, tag domain.YearTag, rawPath string) error {
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		return err
	}
	if tag != "" {
		appErr.WithContext(apperrors.CtxYear, string(tag))
	}
	if _, ok := appErr.Context[apperrors.CtxPath]; !ok {
		appErr.WithContext(apperrors.CtxPath, rawPath)
	}
	return err
}

func (p *YearlyProcessor) execute(ctx context.Context, kind domain.RecordKind, tag domain.YearTag, rawPath, target string, res *Result, fn body) error {
	if !kind.Singleton() && config.FileExists(target) {
		return apperrors.NewAlreadyProcessedError(target, string(tag))
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := p.files.ValidateRawFile(rawPath); err != nil {
		return err
	}

	table, err := timed(ctx, p, "load", kind, func() (*dataprocessing.RawTable, error) {
		return dataprocessing.ParseFile(rawPath)
	})
	if err != nil {
		return err
	}
	return fn(ctx, res, table)
}

// timed runs fn under a child span named after the stage and records its duration
func timed[T any](ctx context.Context, p *YearlyProcessor, name string, kind domain.RecordKind, fn func() (T, error)) (T, error) {
	ctx, span := p.telemetry.Tracer.Start(ctx, "stage."+name)
	defer span.End()

	start := time.Now()
	out, err := fn()
	p.telemetry.Metrics.RecordStage(ctx, name, string(kind), time.Since(start), err)
	if err != nil {
		infrastructure.RecordError(ctx, err)
	}
	return out, err
}

// checkRecords applies the structural checks: unique unit_id, then struct tags
func checkRecords[T any](ctx context.Context, p *YearlyProcessor, kind domain.RecordKind, records []T, key func(T) int64) error {
	_, err := timed(ctx, p, "validate", kind, func() (struct{}, error) {
		if err := validation.CheckUniqueKeys(records, key); err != nil {
			return struct{}{}, err
		}
		return struct{}{}, validation.ValidateRecords(records)
	})
	return err
}

func (p *YearlyProcessor) reportIdentifiers(ctx context.Context, source string, report dataprocessing.IdentifierReport) {
	if report.NonConforming == 0 {
		p.logger.InfoContext(ctx, "All OPE IDs conform",
			slog.Int("total", report.Total))
		return
	}
	p.telemetry.Metrics.NonConformingIDs.Add(ctx, int64(report.NonConforming))
	p.logger.WarnContext(ctx, "Non-conforming OPE IDs found",
		slog.String("error_type", string(apperrors.ErrTypeIdentifierNonConform)),
		slog.String("path", source),
		slog.Int("total", report.Total),
		slog.Int("conforming", report.Conforming),
		slog.Int("non_conforming", report.NonConforming),
		slog.Any("sample", report.Sample))
}

// persist writes records to a temporary file, verifies the round trip, then
// publishes. Award artifacts are never overwritten; singletons are replaced.
func persist[T any](ctx context.Context, p *YearlyProcessor, res *Result, records []T, columns []string) error {
	start := time.Now()
	err := publish(p, res, records, columns)
	p.telemetry.Metrics.RecordStage(ctx, "persist", string(res.Kind), time.Since(start), err)
	if err != nil {
		return err
	}

	attrs := metric.WithAttributes(attribute.String("kind", string(res.Kind)))
	p.telemetry.Metrics.ArtifactsWritten.Add(ctx, 1, attrs)
	p.telemetry.Metrics.RecordsProcessed.Add(ctx, int64(len(records)), attrs)

	if p.cfg.WriteSidecar {
		p.writeSidecar(ctx, res, columns, time.Since(start))
	}
	return nil
}

func publish[T any](p *YearlyProcessor, res *Result, records []T, columns []string) error {
	tmp, err := exporter.WriteTemp(res.Artifact, records)
	if err != nil {
		return err
	}
	if p.beforeVerify != nil {
		p.beforeVerify(tmp)
	}
	if err := VerifyRoundTrip(tmp, records, p.cfg.FloatTolerance); err != nil {
		os.Remove(tmp)
		return err
	}

	if res.Kind.Singleton() {
		return exporter.PublishReplace(tmp, res.Artifact)
	}
	return exporter.PublishNew(tmp, res.Artifact, string(res.Year))
}

// writeSidecar records provenance next to a published artifact. A failure
// here is logged; the artifact itself is already valid.
func (p *YearlyProcessor) writeSidecar(ctx context.Context, res *Result, columns []string, elapsed time.Duration) {
	checksum, err := exporter.FileChecksum(res.Artifact)
	if err != nil {
		p.logger.WarnContext(ctx, "Failed to checksum artifact",
			slog.String("artifact", res.Artifact),
			slog.String("error", err.Error()))
		return
	}
	source, _ := filepath.Abs(res.Source)
	sc := exporter.Sidecar{
		RunID:         infrastructure.GetTraceID(ctx),
		Kind:          string(res.Kind),
		Year:          string(res.Year),
		Source:        source,
		Artifact:      filepath.Base(res.Artifact),
		Rows:          res.Rows,
		Columns:       columns,
		Checksum:      checksum,
		FormatVersion: contracts.ArtifactFormatVersion,
		ProcessedAt:   time.Now().UTC(),
		DurationMS:    elapsed.Milliseconds(),
	}
	if err := exporter.WriteSidecar(res.Artifact, sc); err != nil {
		p.logger.WarnContext(ctx, "Failed to write sidecar",
			slog.String("artifact", res.Artifact),
			slog.String("error", err.Error()))
	}
}
