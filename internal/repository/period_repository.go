package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/academic-records-api/internal/models"
)

const periodColumns = `id, name, start_date, end_date, first_partial_active, second_partial_active, third_partial_active, is_active, is_deleted`

// PeriodRepository manages persistence for academic periods.
type PeriodRepository struct {
	db *sqlx.DB
}

// NewPeriodRepository constructs a PeriodRepository.
func NewPeriodRepository(db *sqlx.DB) *PeriodRepository {
	return &PeriodRepository{db: db}
}

// List returns live periods ordered by id with the total count.
func (r *PeriodRepository) List(ctx context.Context, limit, offset int) ([]models.Period, int, error) {
	query := fmt.Sprintf("SELECT %s FROM periods WHERE is_deleted = FALSE ORDER BY id LIMIT $1 OFFSET $2", periodColumns)
	var periods []models.Period
	if err := r.db.SelectContext(ctx, &periods, query, limit, offset); err != nil {
		return nil, 0, fmt.Errorf("list periods: %w", err)
	}
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM periods WHERE is_deleted = FALSE"); err != nil {
		return nil, 0, fmt.Errorf("count periods: %w", err)
	}
	return periods, total, nil
}

// FindByID fetches a live period.
func (r *PeriodRepository) FindByID(ctx context.Context, id int64) (*models.Period, error) {
	query := fmt.Sprintf("SELECT %s FROM periods WHERE id = $1 AND is_deleted = FALSE", periodColumns)
	var period models.Period
	if err := r.db.GetContext(ctx, &period, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find period: %w", err)
	}
	return &period, nil
}

// Create inserts a period and sets its generated id.
func (r *PeriodRepository) Create(ctx context.Context, period *models.Period) error {
	const query = `INSERT INTO periods (name, start_date, end_date, first_partial_active, second_partial_active, third_partial_active, is_active)
        VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`
	if err := r.db.QueryRowxContext(ctx, query,
		period.Name, period.StartDate, period.EndDate,
		period.FirstPartialActive, period.SecondPartialActive, period.ThirdPartialActive, period.IsActive,
	).Scan(&period.ID); err != nil {
		return fmt.Errorf("create period: %w", err)
	}
	return nil
}

// Update persists every mutable column of the period.
func (r *PeriodRepository) Update(ctx context.Context, period *models.Period) error {
	const query = `UPDATE periods SET name = :name, start_date = :start_date, end_date = :end_date,
        first_partial_active = :first_partial_active, second_partial_active = :second_partial_active,
        third_partial_active = :third_partial_active, is_active = :is_active
        WHERE id = :id AND is_deleted = FALSE`
	if _, err := r.db.NamedExecContext(ctx, query, period); err != nil {
		return fmt.Errorf("update period: %w", err)
	}
	return nil
}

// SoftDelete marks the period deleted.
func (r *PeriodRepository) SoftDelete(ctx context.Context, id int64) error {
	return softDelete(ctx, r.db, "periods", id)
}
