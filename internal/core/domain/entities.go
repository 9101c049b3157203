package domain

import (
	"regexp"
	"time"
)

// studyIDPattern keeps IDs usable as a NATS subject token and a URL path
// segment.
var studyIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// ValidateStudyID reports an InputError for IDs outside [A-Za-z0-9_-]{1,64}.
func ValidateStudyID(id string) error {
	if id == "" {
		return NewInputError("study", -1, "id", "must not be empty")
	}
	if !studyIDPattern.MatchString(id) {
		return NewInputError("study", -1, "id", "must be 1-64 letters, digits, '_' or '-'")
	}
	return nil
}

// Facility is a gym in the study set.
type Facility struct {
	Name           string  `json:"name"`
	Location       Point   `json:"location"`
	Attractiveness float64 `json:"attractiveness"`
}

// PopulationSite is a population centre carrying demand mass.
type PopulationSite struct {
	ID         string  `json:"id,omitempty"`
	Location   Point   `json:"location"`
	Population float64 `json:"population"`
}

// Competitor is a facility outside the study set that draws on the same
// population.
type Competitor struct {
	Name           string  `json:"name,omitempty"`
	Location       Point   `json:"location"`
	Attractiveness float64 `json:"attractiveness"`
}

// Study groups the sites of one demand analysis.
type Study struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Metric      string           `json:"metric"`
	Facilities  []Facility       `json:"facilities,omitempty"`
	Populations []PopulationSite `json:"populations,omitempty"`
	Competitors []Competitor     `json:"competitors,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// StudySummary is the list view of a study.
type StudySummary struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Metric          string    `json:"metric"`
	FacilityCount   int       `json:"facility_count"`
	PopulationCount int       `json:"population_count"`
	CompetitorCount int       `json:"competitor_count"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// FacilityDemand is the aggregate net demand of one facility.
type FacilityDemand struct {
	Name   string  `json:"name"`
	Demand float64 `json:"demand"`
}

// ModelParams records the evaluation options an estimate was produced with.
type ModelParams struct {
	Metric       string  `json:"metric"`
	ZeroDistance string  `json:"zero_distance"`
	Epsilon      float64 `json:"epsilon,omitempty"`
	NonNegative  bool    `json:"non_negative"`
}

// DemandEstimate is the result of one gravity-model evaluation.
type DemandEstimate struct {
	ID         string           `json:"id"`
	StudyID    string           `json:"study_id,omitempty"`
	Facilities []FacilityDemand `json:"facilities"`
	Total      float64          `json:"total"`
	Params     ModelParams      `json:"params"`
	ComputedAt time.Time        `json:"computed_at"`
}
