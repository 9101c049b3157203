package usecases

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/samirrijal/gymdemand/internal/core/domain"
	"github.com/samirrijal/gymdemand/internal/core/gravity"
	"github.com/samirrijal/gymdemand/internal/core/ports"
	"github.com/samirrijal/gymdemand/internal/pkg/config"
	"github.com/samirrijal/gymdemand/internal/pkg/geospatial"
	"github.com/samirrijal/gymdemand/internal/pkg/metrics"
	"github.com/samirrijal/gymdemand/internal/pkg/telemetry"
)

// Estimation sources used as metric labels.
const (
	SourceInline = "inline"
	SourceStudy  = "study"
)

// EstimateParams overrides the service's default evaluation options for one
// call. Zero values keep the defaults.
type EstimateParams struct {
	Metric       string   `json:"metric,omitempty"`
	ZeroDistance string   `json:"zero_distance,omitempty"`
	Epsilon      *float64 `json:"epsilon,omitempty"`
	NonNegative  *bool    `json:"non_negative,omitempty"`
}

// DemandConfig holds the service-level settings.
type DemandConfig struct {
	Defaults        gravity.Options
	CacheTTLSeconds int
	// MaxCells bounds facilities×populations for one estimation. Zero
	// disables the bound.
	MaxCells int
}

// NewDemandConfig builds the service settings from the model section of
// the application config.
func NewDemandConfig(m config.ModelConfig) (DemandConfig, error) {
	metric, err := geospatial.ParseMetric(m.Metric)
	if err != nil {
		return DemandConfig{}, err
	}
	policy, err := gravity.ParseZeroDistancePolicy(m.ZeroDistance)
	if err != nil {
		return DemandConfig{}, err
	}
	return DemandConfig{
		Defaults: gravity.Options{
			Metric:       metric,
			ZeroDistance: policy,
			Epsilon:      m.Epsilon,
			NonNegative:  m.NonNegative,
			Workers:      m.Workers,
		},
		CacheTTLSeconds: m.CacheTTLSeconds,
		MaxCells:        m.MaxCells,
	}, nil
}

// DemandService runs gravity-model estimations and manages their results.
type DemandService struct {
	studies   ports.StudyRepository
	estimates ports.EstimateRepository
	cache     ports.CacheService
	events    ports.EventPublisher
	cfg       DemandConfig
	now       func() time.Time
}

// NewDemandService creates a new DemandService. cache and events may be nil.
func NewDemandService(
	studies ports.StudyRepository,
	estimates ports.EstimateRepository,
	cache ports.CacheService,
	events ports.EventPublisher,
	cfg DemandConfig,
) *DemandService {
	if cfg.CacheTTLSeconds <= 0 {
		cfg.CacheTTLSeconds = 600
	}
	return &DemandService{
		studies:   studies,
		estimates: estimates,
		cache:     cache,
		events:    events,
		cfg:       cfg,
		now:       time.Now,
	}
}

// Defaults returns the default evaluation options.
func (s *DemandService) Defaults() gravity.Options {
	return s.cfg.Defaults
}

// ResolveOptions applies p on top of the default options.
func (s *DemandService) ResolveOptions(p EstimateParams) (gravity.Options, error) {
	opts := s.cfg.Defaults
	if p.Metric != "" {
		m, err := geospatial.ParseMetric(p.Metric)
		if err != nil {
			return opts, domain.NewInputError("options", -1, "metric", err.Error())
		}
		opts.Metric = m
	}
	if p.ZeroDistance != "" {
		z, err := gravity.ParseZeroDistancePolicy(p.ZeroDistance)
		if err != nil {
			return opts, domain.NewInputError("options", -1, "zero_distance", err.Error())
		}
		opts.ZeroDistance = z
	}
	if p.Epsilon != nil {
		if *p.Epsilon <= 0 {
			return opts, domain.NewInputError("options", -1, "epsilon", "must be positive")
		}
		opts.Epsilon = *p.Epsilon
	}
	if p.NonNegative != nil {
		opts.NonNegative = *p.NonNegative
	}
	return opts, nil
}

// Estimate evaluates an inline request without persisting it.
func (s *DemandService) Estimate(ctx context.Context, in gravity.Input, p EstimateParams) (*domain.DemandEstimate, error) {
	ctx, span := telemetry.Tracer().Start(ctx, telemetry.SpanEstimateInline)
	defer span.End()

	opts, err := s.ResolveOptions(p)
	if err != nil {
		return nil, err
	}
	est, err := s.run(ctx, SourceInline, in, opts)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.Float64(telemetry.AttrTotalDemand, est.Total))
	return est, nil
}

// EstimateStudy evaluates a stored study with its own metric, persists the
// estimate, refreshes the cache and publishes it.
func (s *DemandService) EstimateStudy(ctx context.Context, studyID string, p EstimateParams) (*domain.DemandEstimate, error) {
	ctx, span := telemetry.Tracer().Start(ctx, telemetry.SpanEstimateStudy)
	defer span.End()
	span.SetAttributes(attribute.String(telemetry.AttrStudyID, studyID))
	if err := domain.ValidateStudyID(studyID); err != nil {
		return nil, err
	}

	loadCtx, loadSpan := telemetry.Tracer().Start(ctx, telemetry.SpanLoadStudy)
	study, err := s.studies.GetByID(loadCtx, studyID)
	loadSpan.End()
	if err != nil {
		return nil, fmt.Errorf("load study %s: %w", studyID, err)
	}

	if p.Metric == "" {
		p.Metric = study.Metric
	}
	opts, err := s.ResolveOptions(p)
	if err != nil {
		return nil, err
	}

	est, err := s.run(ctx, SourceStudy, gravity.Input{
		Facilities:  study.Facilities,
		Populations: study.Populations,
		Competitors: study.Competitors,
	}, opts)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	est.StudyID = studyID

	saveCtx, saveSpan := telemetry.Tracer().Start(ctx, telemetry.SpanSaveEstimate)
	err = s.estimates.Save(saveCtx, est)
	saveSpan.End()
	if err != nil {
		return nil, fmt.Errorf("save estimate: %w", err)
	}

	s.cacheEstimate(ctx, est)

	if s.events != nil {
		if err := s.events.PublishEstimate(ctx, est); err != nil {
			metrics.EventsPublished.WithLabelValues("estimate", "error").Inc()
			slog.WarnContext(ctx, "publish estimate failed", "study_id", studyID, "error", err)
		} else {
			metrics.EventsPublished.WithLabelValues("estimate", "ok").Inc()
		}
	}

	span.SetAttributes(attribute.Float64(telemetry.AttrTotalDemand, est.Total))
	return est, nil
}

// LatestEstimate returns the most recent stored estimate of a study.
func (s *DemandService) LatestEstimate(ctx context.Context, studyID string) (*domain.DemandEstimate, error) {
	cacheKey := estimateCacheKey(studyID)
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			var est domain.DemandEstimate
			if err := json.Unmarshal(data, &est); err == nil {
				metrics.CacheHits.WithLabelValues("latest_estimate").Inc()
				trace.SpanFromContext(ctx).SetAttributes(attribute.Bool(telemetry.AttrCacheHit, true))
				return &est, nil
			}
		}
		metrics.CacheMisses.WithLabelValues("latest_estimate").Inc()
	}

	est, err := s.estimates.LatestByStudy(ctx, studyID)
	if err != nil {
		return nil, err
	}
	s.cacheEstimate(ctx, est)
	return est, nil
}

func (s *DemandService) run(ctx context.Context, source string, in gravity.Input, opts gravity.Options) (*domain.DemandEstimate, error) {
	start := time.Now()
	trace.SpanFromContext(ctx).SetAttributes(
		attribute.Int(telemetry.AttrFacilities, len(in.Facilities)),
		attribute.Int(telemetry.AttrPopulations, len(in.Populations)),
		attribute.Int(telemetry.AttrCompetitors, len(in.Competitors)),
		attribute.String(telemetry.AttrMetric, string(opts.Metric)),
		attribute.String(telemetry.AttrZeroDistance, string(opts.ZeroDistance)),
	)

	cells := len(in.Facilities) * len(in.Populations)
	if s.cfg.MaxCells > 0 && cells > s.cfg.MaxCells {
		err := domain.NewInputError(gravity.SetPopulations, -1, "",
			fmt.Sprintf("%d facility×population cells exceed the limit of %d", cells, s.cfg.MaxCells))
		metrics.ObserveEstimation(source, metrics.OutcomeInvalid, time.Since(start), 0)
		return nil, err
	}

	res, err := gravity.Estimate(in, opts)
	if err != nil {
		metrics.ObserveEstimation(source, outcomeOf(err), time.Since(start), 0)
		return nil, err
	}
	metrics.ObserveEstimation(source, metrics.OutcomeOK, time.Since(start), res.Cells())

	for _, d := range res.Demand {
		if d.Demand < 0 {
			metrics.NegativeDemandFacilities.Inc()
		}
	}

	slog.DebugContext(ctx, "demand estimated",
		"source", source,
		"facilities", len(in.Facilities),
		"populations", len(in.Populations),
		"competitors", len(in.Competitors),
		"total", res.Total,
		"elapsed", time.Since(start).String(),
	)

	return &domain.DemandEstimate{
		ID:         uuid.NewString(),
		Facilities: res.Demand,
		Total:      res.Total,
		Params: domain.ModelParams{
			Metric:       string(opts.Metric),
			ZeroDistance: string(opts.ZeroDistance),
			Epsilon:      epsilonParam(opts),
			NonNegative:  opts.NonNegative,
		},
		ComputedAt: s.now().UTC(),
	}, nil
}

func (s *DemandService) cacheEstimate(ctx context.Context, est *domain.DemandEstimate) {
	if s.cache == nil {
		return
	}
	if data, err := json.Marshal(est); err == nil {
		_ = s.cache.Set(ctx, estimateCacheKey(est.StudyID), data, s.cfg.CacheTTLSeconds)
	}
}

func estimateCacheKey(studyID string) string {
	return "estimates:latest:" + studyID
}

func epsilonParam(opts gravity.Options) float64 {
	if opts.ZeroDistance == gravity.ClampZeroDistance {
		return opts.Epsilon
	}
	return 0
}

func outcomeOf(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return metrics.OutcomeInvalid
	case errors.Is(err, domain.ErrDegenerateGeometry):
		return metrics.OutcomeDegenerate
	default:
		return metrics.OutcomeError
	}
}
