package operations

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	apperrors "ipedsprep/internal/errors"
	"ipedsprep/internal/files"
	"ipedsprep/pkg/contracts/domain"
)

// Status is the outcome of one unit of batch work
type Status string

const (
	StatusProcessed Status = "processed"
	StatusSkipped   Status = "skipped"
	StatusMissing   Status = "missing"
	StatusFailed    Status = "failed"
)

// Outcome records what happened to one raw extract during a batch run
type Outcome struct {
	Kind   domain.RecordKind `json:"kind"`
	Year   domain.YearTag    `json:"year,omitempty"`
	Source string            `json:"source,omitempty"`
	Status Status            `json:"status"`
	Result *Result           `json:"result,omitempty"`
	Err    error             `json:"-"`
}

// BatchSummary collects every outcome of a batch run, singletons first, then
// award years oldest first.
type BatchSummary struct {
	Outcomes []Outcome     `json:"outcomes"`
	Duration time.Duration `json:"duration"`
}

// Count returns how many outcomes have status s
func (b *BatchSummary) Count(s Status) int {
	n := 0
	for _, o := range b.Outcomes {
		if o.Status == s {
			n++
		}
	}
	return n
}

// Failed reports whether any unit failed
func (b *BatchSummary) Failed() bool {
	return b.Count(StatusFailed) > 0
}

// BatchPlan lists the raw extracts a batch run should process. Empty
// singleton paths mean the file was not found.
type BatchPlan struct {
	Institutions string
	GradRates    string
	Awards       []files.YearSource
}

// RunBatch processes the singletons, then every award year in parallel with
// at most workers concurrent years. A failing year never stops the others.
// Missing raw files and existing artifacts are not failures.
func RunBatch(ctx context.Context, p *YearlyProcessor, plan BatchPlan, workers int) *BatchSummary {
	start := time.Now()
	summary := &BatchSummary{}

	singletons := []struct {
		kind domain.RecordKind
		path string
		fn   func(context.Context, string) (*Result, error)
	}{
		{domain.KindInstitution, plan.Institutions, p.ProcessInstitutions},
		{domain.KindGradRate, plan.GradRates, p.ProcessGradRates},
	}
	for _, s := range singletons {
		if s.path == "" {
			p.logger.WarnContext(ctx, "Raw file not found, skipping", slog.String("kind", string(s.kind)))
			summary.Outcomes = append(summary.Outcomes, Outcome{Kind: s.kind, Status: StatusMissing})
			continue
		}
		res, err := s.fn(ctx, s.path)
		summary.Outcomes = append(summary.Outcomes, outcomeOf(s.kind, "", s.path, res, err))
	}

	awards := make([]Outcome, len(plan.Awards))
	g, gctx := errgroup.WithContext(ctx)
	if workers < 1 {
		workers = 1
	}
	g.SetLimit(workers)

	for i, src := range plan.Awards {
		if !src.Found {
			p.logger.WarnContext(ctx, "Raw award file not found, skipping",
				slog.String("year", string(src.Year.Tag)),
				slog.String("expected", src.Year.RawFile))
			awards[i] = Outcome{Kind: domain.KindAward, Year: src.Year.Tag, Status: StatusMissing}
			continue
		}
		g.Go(func() error {
			res, err := p.ProcessAwards(gctx, src.File.Path, src.Year.Tag)
			awards[i] = outcomeOf(domain.KindAward, src.Year.Tag, src.File.Path, res, err)
			// per-year failures are collected, not propagated
			return nil
		})
	}
	_ = g.Wait()

	summary.Outcomes = append(summary.Outcomes, awards...)
	summary.Duration = time.Since(start)

	p.logger.InfoContext(ctx, "Batch run complete",
		slog.Int("processed", summary.Count(StatusProcessed)),
		slog.Int("skipped", summary.Count(StatusSkipped)),
		slog.Int("missing", summary.Count(StatusMissing)),
		slog.Int("failed", summary.Count(StatusFailed)),
		slog.Duration("duration", summary.Duration))
	return summary
}

func outcomeOf(kind domain.RecordKind, tag domain.YearTag, source string, res *Result, err error) Outcome {
	o := Outcome{Kind: kind, Year: tag, Source: source, Result: res, Err: err}
	switch {
	case err == nil:
		o.Status = StatusProcessed
	case apperrors.Is(err, apperrors.ErrTypeAlreadyProcessed):
		o.Status = StatusSkipped
	default:
		o.Status = StatusFailed
	}
	return o
}
