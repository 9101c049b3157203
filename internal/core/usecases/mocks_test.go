package usecases_test

import (
	"context"
	"errors"
	"sync"

	"github.com/samirrijal/gymdemand/internal/core/domain"
)

// --- Mock StudyRepository ---

type mockStudyRepo struct {
	getByIDFn      func(ctx context.Context, id string) (*domain.Study, error)
	listFn         func(ctx context.Context) ([]domain.StudySummary, error)
	createFn       func(ctx context.Context, s *domain.Study) error
	replaceSitesFn func(ctx context.Context, s *domain.Study) error
}

func (m *mockStudyRepo) Create(ctx context.Context, s *domain.Study) error {
	if m.createFn != nil {
		return m.createFn(ctx, s)
	}
	return nil
}

func (m *mockStudyRepo) ReplaceSites(ctx context.Context, s *domain.Study) error {
	if m.replaceSitesFn != nil {
		return m.replaceSitesFn(ctx, s)
	}
	return nil
}

func (m *mockStudyRepo) GetByID(ctx context.Context, id string) (*domain.Study, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, domain.ErrNotFound
}

func (m *mockStudyRepo) List(ctx context.Context) ([]domain.StudySummary, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return nil, nil
}

// --- Mock EstimateRepository ---

type mockEstimateRepo struct {
	saved    []*domain.DemandEstimate
	saveErr  error
	latestFn func(ctx context.Context, studyID string) (*domain.DemandEstimate, error)
}

func (m *mockEstimateRepo) Save(ctx context.Context, est *domain.DemandEstimate) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saved = append(m.saved, est)
	return nil
}

func (m *mockEstimateRepo) LatestByStudy(ctx context.Context, studyID string) (*domain.DemandEstimate, error) {
	if m.latestFn != nil {
		return m.latestFn(ctx, studyID)
	}
	return nil, domain.ErrNotFound
}

// --- In-memory CacheService ---

type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemCache() *memCache { return &memCache{data: map[string][]byte{}} }

func (c *memCache) Get(ctx context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	if !ok {
		return nil, errors.New("miss")
	}
	return v, nil
}

func (c *memCache) Set(ctx context.Context, key string, value []byte, ttl int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	return nil
}

func (c *memCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

// --- Mock EventPublisher ---

type mockPublisher struct {
	estimates []*domain.DemandEstimate
	updated   []string
	err       error
}

func (m *mockPublisher) PublishEstimate(ctx context.Context, est *domain.DemandEstimate) error {
	m.estimates = append(m.estimates, est)
	return m.err
}

func (m *mockPublisher) PublishStudyUpdated(ctx context.Context, studyID string) error {
	m.updated = append(m.updated, studyID)
	return m.err
}

func scenarioStudy(id string) *domain.Study {
	return &domain.Study{
		ID:     id,
		Name:   "Deusto",
		Metric: "euclidean",
		Facilities: []domain.Facility{
			{Name: "central", Location: domain.Point{X: 0, Y: 0}, Attractiveness: 10},
		},
		Populations: []domain.PopulationSite{
			{ID: "p1", Location: domain.Point{X: 0, Y: 10}, Population: 100},
		},
	}
}
