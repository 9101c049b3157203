package http_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	handler "github.com/samirrijal/gymdemand/internal/adapters/http"
	"github.com/samirrijal/gymdemand/internal/core/domain"
	"github.com/samirrijal/gymdemand/internal/core/gravity"
	"github.com/samirrijal/gymdemand/internal/core/usecases"
)

// ---- Mock repositories ----

type mockStudyRepo struct {
	getByIDFn func(ctx context.Context, id string) (*domain.Study, error)
	listFn    func(ctx context.Context) ([]domain.StudySummary, error)
	created   []*domain.Study
}

func (m *mockStudyRepo) Create(ctx context.Context, s *domain.Study) error {
	if s.ID == "" {
		s.ID = fmt.Sprintf("study-%d", len(m.created)+1)
	}
	m.created = append(m.created, s)
	return nil
}
func (m *mockStudyRepo) ReplaceSites(ctx context.Context, s *domain.Study) error { return nil }
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

type mockEstimateRepo struct {
	saved    []*domain.DemandEstimate
	latestFn func(ctx context.Context, studyID string) (*domain.DemandEstimate, error)
}

func (m *mockEstimateRepo) Save(ctx context.Context, est *domain.DemandEstimate) error {
	m.saved = append(m.saved, est)
	return nil
}
func (m *mockEstimateRepo) LatestByStudy(ctx context.Context, studyID string) (*domain.DemandEstimate, error) {
	if m.latestFn != nil {
		return m.latestFn(ctx, studyID)
	}
	return nil, domain.ErrNotFound
}

type mockScheduler struct {
	scheduled []string
}

func (m *mockScheduler) ScheduleStudyEstimation(ctx context.Context, studyID string) (string, error) {
	m.scheduled = append(m.scheduled, studyID)
	return "estimate-" + studyID, nil
}

// ---- Test helpers ----

func setupApp(deps *handler.Dependencies) *fiber.App {
	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	handler.SetupRoutes(app, deps)
	return app
}

func makeDeps(studies *mockStudyRepo, estimates *mockEstimateRepo) *handler.Dependencies {
	if studies == nil {
		studies = &mockStudyRepo{}
	}
	if estimates == nil {
		estimates = &mockEstimateRepo{}
	}
	return &handler.Dependencies{
		Demand: usecases.NewDemandService(studies, estimates, nil, nil, usecases.DemandConfig{
			Defaults: gravity.DefaultOptions(),
		}),
		Studies: usecases.NewStudyService(studies, nil, nil),
	}
}

func postJSON(t *testing.T, app *fiber.App, path, body string) (int, []byte) {
	t.Helper()
	req := httptest.NewRequest("POST", path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	return resp.StatusCode, readBody(t, resp.Body)
}

func readBody(t *testing.T, body io.Reader) []byte {
	t.Helper()
	b, err := io.ReadAll(body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return b
}

func scenarioStudy(id string) *domain.Study {
	return &domain.Study{
		ID:     id,
		Name:   "Abando",
		Metric: "euclidean",
		Facilities: []domain.Facility{
			{Name: "central", Location: domain.Point{X: 0, Y: 0}, Attractiveness: 10},
		},
		Populations: []domain.PopulationSite{
			{ID: "p1", Location: domain.Point{X: 0, Y: 10}, Population: 100},
		},
	}
}

type apiError struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Details struct {
		Set   string `json:"set"`
		Index *int   `json:"index"`
		Field string `json:"field"`
		Row   *int   `json:"row"`
		Col   *int   `json:"col"`
	} `json:"details"`
}

// ---- Inline estimate tests ----

const scenarioBody = `{
	"facilities": [{"name": "central", "location": {"x": 0, "y": 0}, "attractiveness": 10}],
	"populations": [{"location": {"x": 0, "y": 10}, "population": 100}]
	%s
}`

func TestEstimate_Success(t *testing.T) {
	app := setupApp(makeDeps(nil, nil))

	status, body := postJSON(t, app, "/v1/estimates", fmt.Sprintf(scenarioBody, ""))
	if status != 200 {
		t.Fatalf("expected 200, got %d: %s", status, body)
	}

	var est domain.DemandEstimate
	if err := json.Unmarshal(body, &est); err != nil {
		t.Fatal(err)
	}
	if len(est.Facilities) != 1 || est.Facilities[0].Name != "central" {
		t.Fatalf("unexpected facilities: %+v", est.Facilities)
	}
	if est.Facilities[0].Demand != 10 {
		t.Errorf("expected demand 10, got %v", est.Facilities[0].Demand)
	}
}

func TestEstimate_CompetitionKeepsNegativeDemand(t *testing.T) {
	app := setupApp(makeDeps(nil, nil))

	competitors := `, "competitors": [{"location": {"x": 2, "y": 0}, "attractiveness": 5}]`
	status, body := postJSON(t, app, "/v1/estimates", fmt.Sprintf(scenarioBody, competitors))
	if status != 200 {
		t.Fatalf("expected 200, got %d: %s", status, body)
	}

	var est domain.DemandEstimate
	json.Unmarshal(body, &est)
	if est.Total != -21.25 {
		t.Errorf("expected total -21.25, got %v", est.Total)
	}
}

func TestEstimate_NonNegativeOption(t *testing.T) {
	app := setupApp(makeDeps(nil, nil))

	extra := `, "competitors": [{"location": {"x": 2, "y": 0}, "attractiveness": 5}],
		"options": {"non_negative": true}`
	status, body := postJSON(t, app, "/v1/estimates", fmt.Sprintf(scenarioBody, extra))
	if status != 200 {
		t.Fatalf("expected 200, got %d: %s", status, body)
	}

	var est domain.DemandEstimate
	json.Unmarshal(body, &est)
	if est.Total != 0 {
		t.Errorf("expected total 0, got %v", est.Total)
	}
	if !est.Params.NonNegative {
		t.Error("expected params to record non_negative")
	}
}

func TestEstimate_InvalidInput(t *testing.T) {
	app := setupApp(makeDeps(nil, nil))

	body := `{
		"facilities": [{"name": "central", "location": {"x": 0, "y": 0}, "attractiveness": -1}],
		"populations": [{"location": {"x": 0, "y": 10}, "population": 100}]
	}`
	status, raw := postJSON(t, app, "/v1/estimates", body)
	if status != 400 {
		t.Fatalf("expected 400, got %d", status)
	}

	var apiErr apiError
	json.Unmarshal(raw, &apiErr)
	if apiErr.Code != "invalid_input" {
		t.Errorf("expected invalid_input, got %s", apiErr.Code)
	}
	if apiErr.Details.Set != "facilities" || apiErr.Details.Field != "attractiveness" {
		t.Errorf("unexpected details: %+v", apiErr.Details)
	}
	if apiErr.Details.Index == nil || *apiErr.Details.Index != 0 {
		t.Errorf("expected index 0, got %v", apiErr.Details.Index)
	}
}

func TestEstimate_MissingPopulations(t *testing.T) {
	app := setupApp(makeDeps(nil, nil))

	status, raw := postJSON(t, app, "/v1/estimates",
		`{"facilities": [{"name": "a", "location": {"x": 0, "y": 0}, "attractiveness": 1}]}`)
	if status != 400 {
		t.Fatalf("expected 400, got %d", status)
	}
	var apiErr apiError
	json.Unmarshal(raw, &apiErr)
	if apiErr.Details.Set != "populations" || apiErr.Details.Index != nil {
		t.Errorf("unexpected details: %+v", apiErr.Details)
	}
}

func TestEstimate_ZeroDistance(t *testing.T) {
	app := setupApp(makeDeps(nil, nil))

	body := `{
		"facilities": [{"name": "central", "location": {"x": 1, "y": 1}, "attractiveness": 10}],
		"populations": [{"location": {"x": 0, "y": 10}, "population": 5}, {"location": {"x": 1, "y": 1}, "population": 100}]
	}`
	status, raw := postJSON(t, app, "/v1/estimates", body)
	if status != 422 {
		t.Fatalf("expected 422, got %d", status)
	}

	var apiErr apiError
	json.Unmarshal(raw, &apiErr)
	if apiErr.Code != "degenerate_geometry" {
		t.Errorf("expected degenerate_geometry, got %s", apiErr.Code)
	}
	if apiErr.Details.Row == nil || *apiErr.Details.Row != 0 || apiErr.Details.Col == nil || *apiErr.Details.Col != 1 {
		t.Errorf("unexpected location: %+v", apiErr.Details)
	}
}

func TestEstimate_UnknownMetric(t *testing.T) {
	app := setupApp(makeDeps(nil, nil))

	status, _ := postJSON(t, app, "/v1/estimates", fmt.Sprintf(scenarioBody, `, "options": {"metric": "manhattan"}`))
	if status != 400 {
		t.Fatalf("expected 400, got %d", status)
	}
}

func TestEstimate_MalformedBody(t *testing.T) {
	app := setupApp(makeDeps(nil, nil))

	status, raw := postJSON(t, app, "/v1/estimates", `{"facilities": [`)
	if status != 400 {
		t.Fatalf("expected 400, got %d", status)
	}
	var apiErr apiError
	json.Unmarshal(raw, &apiErr)
	if apiErr.Code != "bad_request" {
		t.Errorf("expected bad_request, got %s", apiErr.Code)
	}
}

// ---- Study tests ----

func TestListStudies_Pagination(t *testing.T) {
	summaries := make([]domain.StudySummary, 5)
	for i := range summaries {
		summaries[i] = domain.StudySummary{ID: fmt.Sprintf("s%d", i), Name: fmt.Sprintf("Study %d", i)}
	}
	app := setupApp(makeDeps(&mockStudyRepo{
		listFn: func(ctx context.Context) ([]domain.StudySummary, error) { return summaries, nil },
	}, nil))

	req := httptest.NewRequest("GET", "/v1/studies?offset=2&limit=2", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var result struct {
		Data       []domain.StudySummary `json:"data"`
		Pagination struct {
			Offset int `json:"offset"`
			Limit  int `json:"limit"`
			Total  int `json:"total"`
		} `json:"pagination"`
	}
	json.NewDecoder(resp.Body).Decode(&result)
	if result.Pagination.Total != 5 {
		t.Errorf("expected total 5, got %d", result.Pagination.Total)
	}
	if len(result.Data) != 2 || result.Data[0].ID != "s2" {
		t.Errorf("expected page starting at s2, got %+v", result.Data)
	}
	if link := resp.Header.Get("Link"); !strings.Contains(link, `rel="next"`) {
		t.Errorf("expected next link, got %q", link)
	}
}

func TestListStudies_Empty(t *testing.T) {
	app := setupApp(makeDeps(nil, nil))

	req := httptest.NewRequest("GET", "/v1/studies", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	body := readBody(t, resp.Body)
	if !strings.Contains(string(body), `"data":[]`) {
		t.Errorf("expected empty data array, got %s", body)
	}
}

func TestGetStudy_NotFound(t *testing.T) {
	app := setupApp(makeDeps(nil, nil))

	req := httptest.NewRequest("GET", "/v1/studies/missing", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 404 {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestGetStudy_Success(t *testing.T) {
	app := setupApp(makeDeps(&mockStudyRepo{
		getByIDFn: func(ctx context.Context, id string) (*domain.Study, error) {
			return scenarioStudy(id), nil
		},
	}, nil))

	req := httptest.NewRequest("GET", "/v1/studies/s-1", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if resp.Header.Get("ETag") == "" {
		t.Error("expected ETag header")
	}

	var study struct {
		ID     string        `json:"id"`
		Name   string        `json:"name"`
		Bounds domain.Bounds `json:"bounds"`
	}
	json.NewDecoder(resp.Body).Decode(&study)
	if study.ID != "s-1" || study.Name != "Abando" {
		t.Errorf("unexpected study: %+v", study)
	}
	if study.Bounds != (domain.Bounds{MinX: 0, MinY: 0, MaxX: 0, MaxY: 10}) {
		t.Errorf("unexpected bounds: %+v", study.Bounds)
	}
}

func TestCreateStudy(t *testing.T) {
	repo := &mockStudyRepo{}
	app := setupApp(makeDeps(repo, nil))

	body, _ := json.Marshal(scenarioStudy(""))
	status, raw := postJSON(t, app, "/v1/studies", string(body))
	if status != 201 {
		t.Fatalf("expected 201, got %d: %s", status, raw)
	}
	if len(repo.created) != 1 {
		t.Fatalf("expected one created study, got %d", len(repo.created))
	}

	var created domain.Study
	json.Unmarshal(raw, &created)
	if created.ID != "study-1" {
		t.Errorf("expected id study-1, got %q", created.ID)
	}
}

func TestCreateStudy_ReplaceKeepsCreatedAt(t *testing.T) {
	created := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	repo := &mockStudyRepo{
		getByIDFn: func(ctx context.Context, id string) (*domain.Study, error) {
			existing := scenarioStudy(id)
			existing.CreatedAt = created
			return existing, nil
		},
	}
	app := setupApp(makeDeps(repo, nil))

	body, _ := json.Marshal(scenarioStudy("s-1"))
	status, raw := postJSON(t, app, "/v1/studies", string(body))
	if status != 200 {
		t.Fatalf("expected 200 for a replace, got %d: %s", status, raw)
	}
	if len(repo.created) != 0 {
		t.Errorf("expected no created studies, got %d", len(repo.created))
	}

	var replaced domain.Study
	json.Unmarshal(raw, &replaced)
	if !replaced.CreatedAt.Equal(created) {
		t.Errorf("expected created_at %v, got %v", created, replaced.CreatedAt)
	}
}

func TestCreateStudy_RejectsUnsafeID(t *testing.T) {
	repo := &mockStudyRepo{}
	app := setupApp(makeDeps(repo, nil))

	body, _ := json.Marshal(scenarioStudy("a.>"))
	status, raw := postJSON(t, app, "/v1/studies", string(body))
	if status != 400 {
		t.Fatalf("expected 400, got %d: %s", status, raw)
	}
	var apiErr apiError
	json.Unmarshal(raw, &apiErr)
	if apiErr.Details.Field != "id" {
		t.Errorf("expected id field error, got %+v", apiErr.Details)
	}
	if len(repo.created) != 0 {
		t.Errorf("expected nothing stored, got %d", len(repo.created))
	}
}

func TestCreateStudy_Invalid(t *testing.T) {
	app := setupApp(makeDeps(nil, nil))

	study := scenarioStudy("")
	study.Facilities = append(study.Facilities, study.Facilities[0])
	body, _ := json.Marshal(study)

	status, raw := postJSON(t, app, "/v1/studies", string(body))
	if status != 400 {
		t.Fatalf("expected 400, got %d", status)
	}
	var apiErr apiError
	json.Unmarshal(raw, &apiErr)
	if apiErr.Details.Field != "name" || apiErr.Details.Index == nil || *apiErr.Details.Index != 1 {
		t.Errorf("expected duplicate name at facilities[1], got %+v", apiErr.Details)
	}
}

func TestEstimateStudy_Sync(t *testing.T) {
	estimates := &mockEstimateRepo{}
	app := setupApp(makeDeps(&mockStudyRepo{
		getByIDFn: func(ctx context.Context, id string) (*domain.Study, error) {
			return scenarioStudy(id), nil
		},
	}, estimates))

	status, raw := postJSON(t, app, "/v1/studies/s-1/estimate", "")
	if status != 200 {
		t.Fatalf("expected 200, got %d: %s", status, raw)
	}
	if len(estimates.saved) != 1 {
		t.Fatalf("expected the estimate to be saved")
	}

	var est domain.DemandEstimate
	json.Unmarshal(raw, &est)
	if est.StudyID != "s-1" || est.Total != 10 {
		t.Errorf("unexpected estimate: %+v", est)
	}
}

func TestEstimateStudy_NotFound(t *testing.T) {
	app := setupApp(makeDeps(nil, nil))

	status, _ := postJSON(t, app, "/v1/studies/missing/estimate", "")
	if status != 404 {
		t.Fatalf("expected 404, got %d", status)
	}
}

func TestEstimateStudy_Async(t *testing.T) {
	sched := &mockScheduler{}
	deps := makeDeps(&mockStudyRepo{
		getByIDFn: func(ctx context.Context, id string) (*domain.Study, error) {
			return scenarioStudy(id), nil
		},
	}, nil)
	deps.Scheduler = sched
	app := setupApp(deps)

	status, raw := postJSON(t, app, "/v1/studies/s-1/estimate?async=true", "")
	if status != 202 {
		t.Fatalf("expected 202, got %d: %s", status, raw)
	}
	if len(sched.scheduled) != 1 || sched.scheduled[0] != "s-1" {
		t.Errorf("expected s-1 to be scheduled, got %v", sched.scheduled)
	}

	var out handler.ScheduledEstimation
	json.Unmarshal(raw, &out)
	if out.WorkflowID != "estimate-s-1" {
		t.Errorf("unexpected workflow id %q", out.WorkflowID)
	}
}

func TestEstimateStudy_AsyncWithoutScheduler(t *testing.T) {
	app := setupApp(makeDeps(nil, nil))

	status, _ := postJSON(t, app, "/v1/studies/s-1/estimate?async=true", "")
	if status != 503 {
		t.Fatalf("expected 503, got %d", status)
	}
}

func TestLatestEstimate(t *testing.T) {
	app := setupApp(makeDeps(nil, &mockEstimateRepo{
		latestFn: func(ctx context.Context, studyID string) (*domain.DemandEstimate, error) {
			if studyID != "s-1" {
				return nil, domain.ErrNotFound
			}
			return &domain.DemandEstimate{ID: "e-1", StudyID: studyID, Total: 42}, nil
		},
	}))

	req := httptest.NewRequest("GET", "/v1/studies/s-1/estimate", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if cc := resp.Header.Get("Cache-Control"); !strings.Contains(cc, "max-age=0") {
		t.Errorf("expected revalidating Cache-Control, got %q", cc)
	}

	req = httptest.NewRequest("GET", "/v1/studies/s-2/estimate", nil)
	resp, _ = app.Test(req, -1)
	if resp.StatusCode != 404 {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

// ---- GraphQL ----

func TestGraphQL_Studies(t *testing.T) {
	app := setupApp(makeDeps(&mockStudyRepo{
		listFn: func(ctx context.Context) ([]domain.StudySummary, error) {
			return []domain.StudySummary{{ID: "s-1", Name: "Abando", FacilityCount: 3}}, nil
		},
	}, nil))

	status, raw := postJSON(t, app, "/graphql", `{"query": "{ studies { id name facility_count } }"}`)
	if status != 200 {
		t.Fatalf("expected 200, got %d", status)
	}

	var result struct {
		Data struct {
			Studies []struct {
				ID            string `json:"id"`
				Name          string `json:"name"`
				FacilityCount int    `json:"facility_count"`
			} `json:"studies"`
		} `json:"data"`
	}
	json.Unmarshal(raw, &result)
	if len(result.Data.Studies) != 1 || result.Data.Studies[0].FacilityCount != 3 {
		t.Errorf("unexpected result: %s", raw)
	}
}

func TestGraphQL_StudyWithBounds(t *testing.T) {
	app := setupApp(makeDeps(&mockStudyRepo{
		getByIDFn: func(ctx context.Context, id string) (*domain.Study, error) {
			return scenarioStudy(id), nil
		},
	}, nil))

	query := `{"query": "{ study(id: \"s-1\") { name facilities { name location { x y } } bounds { max_y } } }"}`
	status, raw := postJSON(t, app, "/graphql", query)
	if status != 200 {
		t.Fatalf("expected 200, got %d", status)
	}

	var result struct {
		Data struct {
			Study struct {
				Name       string `json:"name"`
				Facilities []struct {
					Name string `json:"name"`
				} `json:"facilities"`
				Bounds struct {
					MaxY float64 `json:"max_y"`
				} `json:"bounds"`
			} `json:"study"`
		} `json:"data"`
	}
	json.Unmarshal(raw, &result)
	if result.Data.Study.Name != "Abando" || len(result.Data.Study.Facilities) != 1 {
		t.Errorf("unexpected result: %s", raw)
	}
	if result.Data.Study.Bounds.MaxY != 10 {
		t.Errorf("expected max_y 10, got %v", result.Data.Study.Bounds.MaxY)
	}
}

func TestGraphQL_EstimateStudyMetricOverride(t *testing.T) {
	estimates := &mockEstimateRepo{}
	app := setupApp(makeDeps(&mockStudyRepo{
		getByIDFn: func(ctx context.Context, id string) (*domain.Study, error) {
			return scenarioStudy(id), nil
		},
	}, estimates))

	query := `{"query": "mutation { estimateStudy(studyId: \"s-1\", metric: \"haversine\") { study_id params { metric } } }"}`
	status, raw := postJSON(t, app, "/graphql", query)
	if status != 200 {
		t.Fatalf("expected 200, got %d: %s", status, raw)
	}

	var result struct {
		Data struct {
			EstimateStudy struct {
				StudyID string `json:"study_id"`
				Params  struct {
					Metric string `json:"metric"`
				} `json:"params"`
			} `json:"estimateStudy"`
		} `json:"data"`
	}
	json.Unmarshal(raw, &result)
	if result.Data.EstimateStudy.Params.Metric != "haversine" {
		t.Errorf("expected haversine metric, got %s", raw)
	}
	if len(estimates.saved) != 1 || estimates.saved[0].Params.Metric != "haversine" {
		t.Errorf("expected one stored haversine estimate, got %+v", estimates.saved)
	}
}

// ---- System ----

func TestHealth(t *testing.T) {
	app := setupApp(makeDeps(nil, nil))

	req := httptest.NewRequest("GET", "/v1/health", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}

func TestReady_WithoutDatabase(t *testing.T) {
	app := setupApp(makeDeps(nil, nil))

	req := httptest.NewRequest("GET", "/v1/ready", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 503 {
		t.Fatalf("expected 503, got %d", resp.StatusCode)
	}
}

func TestSecurityHeaders(t *testing.T) {
	app := setupApp(makeDeps(nil, nil))

	req := httptest.NewRequest("GET", "/v1/health", nil)
	resp, _ := app.Test(req, -1)
	if resp.Header.Get("X-Content-Type-Options") != "nosniff" {
		t.Error("missing X-Content-Type-Options")
	}
	if resp.Header.Get("X-Request-Id") == "" {
		t.Error("missing request id")
	}
}

func TestDocs_ServesEmbeddedOpenAPI(t *testing.T) {
	app := setupApp(makeDeps(nil, nil))

	req := httptest.NewRequest("GET", "/docs/openapi.yaml", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	body := readBody(t, resp.Body)
	if !strings.Contains(string(body), "Gym Demand API") {
		t.Error("expected the embedded OpenAPI document")
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/yaml" {
		t.Errorf("expected application/yaml, got %q", ct)
	}
}
