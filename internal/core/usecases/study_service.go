package usecases

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/samirrijal/gymdemand/internal/core/domain"
	"github.com/samirrijal/gymdemand/internal/core/gravity"
	"github.com/samirrijal/gymdemand/internal/core/ports"
	"github.com/samirrijal/gymdemand/internal/pkg/geospatial"
	"github.com/samirrijal/gymdemand/internal/pkg/metrics"
)

// StudyService handles study storage and change notification.
type StudyService struct {
	studies ports.StudyRepository
	cache   ports.CacheService
	events  ports.EventPublisher
}

// NewStudyService creates a new StudyService. cache and events may be nil.
func NewStudyService(studies ports.StudyRepository, cache ports.CacheService, events ports.EventPublisher) *StudyService {
	return &StudyService{studies: studies, cache: cache, events: events}
}

// List returns all studies.
func (s *StudyService) List(ctx context.Context) ([]domain.StudySummary, error) {
	return s.studies.List(ctx)
}

// GetByID returns a study with its sites.
func (s *StudyService) GetByID(ctx context.Context, id string) (*domain.Study, error) {
	if err := domain.ValidateStudyID(id); err != nil {
		return nil, err
	}
	return s.studies.GetByID(ctx, id)
}

// Save validates a study and stores it. A study with an ID that already
// exists has its sites replaced and keeps its creation time; otherwise it is
// created. The returned flag reports a replace.
func (s *StudyService) Save(ctx context.Context, study *domain.Study) (bool, error) {
	if study.ID != "" {
		if err := domain.ValidateStudyID(study.ID); err != nil {
			return false, err
		}
	}
	study.Name = strings.TrimSpace(study.Name)
	if study.Name == "" {
		return false, domain.NewInputError("study", -1, "name", "must not be empty")
	}
	metric, err := geospatial.ParseMetric(study.Metric)
	if err != nil {
		return false, domain.NewInputError("study", -1, "metric", err.Error())
	}
	study.Metric = string(metric)

	in := gravity.Input{
		Facilities:  study.Facilities,
		Populations: study.Populations,
		Competitors: study.Competitors,
	}
	if err := in.Validate(metric); err != nil {
		return false, err
	}

	now := time.Now().UTC()
	study.UpdatedAt = now

	replace := false
	if study.ID != "" {
		existing, err := s.studies.GetByID(ctx, study.ID)
		switch {
		case err == nil:
			replace = true
			study.CreatedAt = existing.CreatedAt
		case !errors.Is(err, domain.ErrNotFound):
			return false, fmt.Errorf("lookup study %s: %w", study.ID, err)
		}
	}

	if replace {
		if err := s.studies.ReplaceSites(ctx, study); err != nil {
			return false, fmt.Errorf("replace study sites: %w", err)
		}
	} else {
		study.CreatedAt = now
		if err := s.studies.Create(ctx, study); err != nil {
			return false, fmt.Errorf("create study: %w", err)
		}
	}

	if s.cache != nil {
		_ = s.cache.Delete(ctx, estimateCacheKey(study.ID))
	}
	s.notifyUpdated(ctx, study.ID)
	return replace, nil
}

func (s *StudyService) notifyUpdated(ctx context.Context, studyID string) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishStudyUpdated(ctx, studyID); err != nil {
		metrics.EventsPublished.WithLabelValues("study_updated", "error").Inc()
		slog.WarnContext(ctx, "publish study update failed", "study_id", studyID, "error", err)
		return
	}
	metrics.EventsPublished.WithLabelValues("study_updated", "ok").Inc()
}
