package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/samirrijal/gymdemand/internal/core/domain"
)

// EstimateRepo implements ports.EstimateRepository with pgx.
type EstimateRepo struct {
	db *DB
}

// NewEstimateRepo creates a new EstimateRepo.
func NewEstimateRepo(db *DB) *EstimateRepo {
	return &EstimateRepo{db: db}
}

// Save inserts an estimate. Per-facility demand and the evaluation
// parameters are stored as JSONB.
func (r *EstimateRepo) Save(ctx context.Context, est *domain.DemandEstimate) error {
	facilities, err := json.Marshal(est.Facilities)
	if err != nil {
		return fmt.Errorf("marshal facilities: %w", err)
	}
	params, err := json.Marshal(est.Params)
	if err != nil {
		return fmt.Errorf("marshal params: %w", err)
	}
	_, err = r.db.Pool.Exec(ctx, `
		INSERT INTO estimates (id, study_id, total, facilities, params, computed_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, est.ID, est.StudyID, est.Total, facilities, params, est.ComputedAt)
	return err
}

// LatestByStudy returns the most recent estimate of a study.
func (r *EstimateRepo) LatestByStudy(ctx context.Context, studyID string) (*domain.DemandEstimate, error) {
	var (
		est                domain.DemandEstimate
		facilities, params []byte
	)
	err := r.db.Pool.QueryRow(ctx, `
		SELECT id, study_id, total, facilities, params, computed_at
		FROM estimates
		WHERE study_id = $1
		ORDER BY computed_at DESC
		LIMIT 1
	`, studyID).Scan(&est.ID, &est.StudyID, &est.Total, &facilities, &params, &est.ComputedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(facilities, &est.Facilities); err != nil {
		return nil, fmt.Errorf("decode facilities: %w", err)
	}
	if err := json.Unmarshal(params, &est.Params); err != nil {
		return nil, fmt.Errorf("decode params: %w", err)
	}
	return &est, nil
}
