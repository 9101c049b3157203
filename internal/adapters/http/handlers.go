package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/gymdemand/internal/core/domain"
	"github.com/samirrijal/gymdemand/internal/core/gravity"
	"github.com/samirrijal/gymdemand/internal/core/usecases"
)

// EstimateRequest is the body of POST /v1/estimates.
type EstimateRequest struct {
	Facilities  []domain.Facility       `json:"facilities"`
	Populations []domain.PopulationSite `json:"populations"`
	Competitors []domain.Competitor     `json:"competitors"`
	Options     usecases.EstimateParams `json:"options"`
}

// StudyResponse is a study with the bounding box of all its sites.
type StudyResponse struct {
	*domain.Study
	Bounds domain.Bounds `json:"bounds"`
}

// ScheduledEstimation is returned when a study estimation runs in the
// background.
type ScheduledEstimation struct {
	StudyID    string `json:"study_id"`
	WorkflowID string `json:"workflow_id"`
}

// EstimateHandler evaluates an inline set of facilities, population sites
// and competitors without storing anything.
func EstimateHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req EstimateRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		est, err := deps.Demand.Estimate(c.UserContext(), gravity.Input{
			Facilities:  req.Facilities,
			Populations: req.Populations,
			Competitors: req.Competitors,
		}, req.Options)
		if err != nil {
			return errFromDomain(c, err)
		}

		c.Set("Cache-Control", "no-store")
		return c.JSON(est)
	}
}

// ListStudiesHandler returns study summaries with offset/limit pagination.
func ListStudiesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		studies, err := deps.Studies.List(c.UserContext())
		if err != nil {
			return errFromDomain(c, err)
		}

		page, pg := paginate(studies, c.QueryInt("offset", 0), c.QueryInt("limit", 50), 200)
		SetLinkHeaders(c, pg)
		return c.JSON(PaginatedResponse{Data: page, Pagination: pg})
	}
}

// GetStudyHandler returns a study with its sites.
func GetStudyHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if id == "" {
			return errBadRequest(c, "study id is required")
		}
		study, err := deps.Studies.GetByID(c.UserContext(), id)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return errNotFound(c, "study not found")
			}
			return errFromDomain(c, err)
		}
		return c.JSON(StudyResponse{Study: study, Bounds: studyBounds(study)})
	}
}

// CreateStudyHandler stores a study with its sites. A body carrying the ID
// of an existing study replaces that study's sites.
func CreateStudyHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var study domain.Study
		if err := c.BodyParser(&study); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		replaced, err := deps.Studies.Save(c.UserContext(), &study)
		if err != nil {
			return errFromDomain(c, err)
		}
		status := fiber.StatusCreated
		if replaced {
			status = fiber.StatusOK
		}
		c.Location("/v1/studies/" + study.ID)
		return c.Status(status).JSON(StudyResponse{Study: &study, Bounds: studyBounds(&study)})
	}
}

// EstimateStudyHandler computes, stores and publishes the demand of a
// study. With ?async=true the estimation is handed to the scheduler and the
// handler answers 202.
func EstimateStudyHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if id == "" {
			return errBadRequest(c, "study id is required")
		}

		if c.QueryBool("async", false) {
			if deps.Scheduler == nil {
				return errUnavailable(c, "background estimation is not configured")
			}
			if _, err := deps.Studies.GetByID(c.UserContext(), id); err != nil {
				if errors.Is(err, domain.ErrNotFound) {
					return errNotFound(c, "study not found")
				}
				return errFromDomain(c, err)
			}
			runID, err := deps.Scheduler.ScheduleStudyEstimation(c.UserContext(), id)
			if err != nil {
				return errFromDomain(c, err)
			}
			return c.Status(fiber.StatusAccepted).JSON(ScheduledEstimation{StudyID: id, WorkflowID: runID})
		}

		var params usecases.EstimateParams
		if len(c.Body()) > 0 {
			if err := c.BodyParser(&params); err != nil {
				return errBadRequest(c, "invalid request body")
			}
		}

		est, err := deps.Demand.EstimateStudy(c.UserContext(), id, params)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return errNotFound(c, "study not found")
			}
			return errFromDomain(c, err)
		}
		return c.JSON(est)
	}
}

// LatestEstimateHandler returns the most recent stored estimate of a study.
func LatestEstimateHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if id == "" {
			return errBadRequest(c, "study id is required")
		}
		est, err := deps.Demand.LatestEstimate(c.UserContext(), id)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return errNotFound(c, "no estimate for study")
			}
			return errFromDomain(c, err)
		}
		return c.JSON(est)
	}
}

func studyBounds(s *domain.Study) domain.Bounds {
	pts := make([]domain.Point, 0, len(s.Facilities)+len(s.Populations)+len(s.Competitors))
	for _, f := range s.Facilities {
		pts = append(pts, f.Location)
	}
	for _, p := range s.Populations {
		pts = append(pts, p.Location)
	}
	for _, c := range s.Competitors {
		pts = append(pts, c.Location)
	}
	return domain.BoundsOf(pts)
}
