package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/samirrijal/gymdemand/internal/core/domain"
)

// StudyRepo implements ports.StudyRepository with pgx.
type StudyRepo struct {
	db *DB
}

// NewStudyRepo creates a new StudyRepo.
func NewStudyRepo(db *DB) *StudyRepo {
	return &StudyRepo{db: db}
}

// Create inserts a study and all of its sites in one transaction.
func (r *StudyRepo) Create(ctx context.Context, s *domain.Study) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return pgx.BeginFunc(ctx, r.db.Pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO studies (id, name, metric, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5)
		`, s.ID, s.Name, s.Metric, s.CreatedAt, s.UpdatedAt)
		if err != nil {
			return fmt.Errorf("insert study: %w", err)
		}
		return insertSites(ctx, tx, s)
	})
}

// ReplaceSites updates the study header and swaps every site.
func (r *StudyRepo) ReplaceSites(ctx context.Context, s *domain.Study) error {
	return pgx.BeginFunc(ctx, r.db.Pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			UPDATE studies SET name = $2, metric = $3, updated_at = $4 WHERE id = $1
		`, s.ID, s.Name, s.Metric, s.UpdatedAt)
		if err != nil {
			return fmt.Errorf("update study: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return domain.ErrNotFound
		}
		for _, table := range []string{"facilities", "population_sites", "competitors"} {
			if _, err := tx.Exec(ctx, "DELETE FROM "+table+" WHERE study_id = $1", s.ID); err != nil {
				return fmt.Errorf("clear %s: %w", table, err)
			}
		}
		return insertSites(ctx, tx, s)
	})
}

// insertSites queues every site row in a single pgx.Batch. The ordinal
// column keeps the caller's order, which is the row and column order of the
// demand matrix.
func insertSites(ctx context.Context, tx pgx.Tx, s *domain.Study) error {
	batch := &pgx.Batch{}
	for i, f := range s.Facilities {
		batch.Queue(`
			INSERT INTO facilities (study_id, ordinal, name, x, y, attractiveness)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, s.ID, i, f.Name, f.Location.X, f.Location.Y, f.Attractiveness)
	}
	for i, p := range s.Populations {
		batch.Queue(`
			INSERT INTO population_sites (study_id, ordinal, site_id, x, y, population)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, s.ID, i, p.ID, p.Location.X, p.Location.Y, p.Population)
	}
	for i, c := range s.Competitors {
		batch.Queue(`
			INSERT INTO competitors (study_id, ordinal, name, x, y, attractiveness)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, s.ID, i, c.Name, c.Location.X, c.Location.Y, c.Attractiveness)
	}

	br := tx.SendBatch(ctx, batch)
	defer br.Close()
	for range batch.Len() {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("batch exec: %w", err)
		}
	}
	return br.Close()
}

// GetByID returns a study with its sites in insertion order.
func (r *StudyRepo) GetByID(ctx context.Context, id string) (*domain.Study, error) {
	var s domain.Study
	err := r.db.Pool.QueryRow(ctx, `
		SELECT id, name, metric, created_at, updated_at FROM studies WHERE id = $1
	`, id).Scan(&s.ID, &s.Name, &s.Metric, &s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Pool.Query(ctx, `
		SELECT name, x, y, attractiveness FROM facilities WHERE study_id = $1 ORDER BY ordinal
	`, id)
	if err != nil {
		return nil, err
	}
	s.Facilities, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Facility, error) {
		var f domain.Facility
		err := row.Scan(&f.Name, &f.Location.X, &f.Location.Y, &f.Attractiveness)
		return f, err
	})
	if err != nil {
		return nil, fmt.Errorf("facilities: %w", err)
	}

	rows, err = r.db.Pool.Query(ctx, `
		SELECT site_id, x, y, population FROM population_sites WHERE study_id = $1 ORDER BY ordinal
	`, id)
	if err != nil {
		return nil, err
	}
	s.Populations, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.PopulationSite, error) {
		var p domain.PopulationSite
		err := row.Scan(&p.ID, &p.Location.X, &p.Location.Y, &p.Population)
		return p, err
	})
	if err != nil {
		return nil, fmt.Errorf("population sites: %w", err)
	}

	rows, err = r.db.Pool.Query(ctx, `
		SELECT name, x, y, attractiveness FROM competitors WHERE study_id = $1 ORDER BY ordinal
	`, id)
	if err != nil {
		return nil, err
	}
	s.Competitors, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Competitor, error) {
		var c domain.Competitor
		err := row.Scan(&c.Name, &c.Location.X, &c.Location.Y, &c.Attractiveness)
		return c, err
	})
	if err != nil {
		return nil, fmt.Errorf("competitors: %w", err)
	}

	return &s, nil
}

// List returns every study with its site counts, most recently updated first.
func (r *StudyRepo) List(ctx context.Context) ([]domain.StudySummary, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT s.id, s.name, s.metric,
		       (SELECT count(*) FROM facilities f WHERE f.study_id = s.id),
		       (SELECT count(*) FROM population_sites p WHERE p.study_id = s.id),
		       (SELECT count(*) FROM competitors c WHERE c.study_id = s.id),
		       s.updated_at
		FROM studies s
		ORDER BY s.updated_at DESC, s.name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.StudySummary
	for rows.Next() {
		var s domain.StudySummary
		if err := rows.Scan(
			&s.ID, &s.Name, &s.Metric,
			&s.FacilityCount, &s.PopulationCount, &s.CompetitorCount,
			&s.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
