package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/academic-records-api/internal/models"
)

const groupDetailSelect = `SELECT g.id, g.name, g.semester, g.period_id, g.is_deleted, p.name AS period_name
        FROM groups g JOIN periods p ON p.id = g.period_id`

// GroupRepository manages persistence for student groups.
type GroupRepository struct {
	db *sqlx.DB
}

// NewGroupRepository constructs a GroupRepository.
func NewGroupRepository(db *sqlx.DB) *GroupRepository {
	return &GroupRepository{db: db}
}

// List returns live groups with their period.
func (r *GroupRepository) List(ctx context.Context, limit, offset int) ([]models.GroupDetail, int, error) {
	query := groupDetailSelect + " WHERE g.is_deleted = FALSE ORDER BY g.id LIMIT $1 OFFSET $2"
	var groups []models.GroupDetail
	if err := r.db.SelectContext(ctx, &groups, query, limit, offset); err != nil {
		return nil, 0, fmt.Errorf("list groups: %w", err)
	}
	for i := range groups {
		groups[i].Hydrate()
	}
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM groups WHERE is_deleted = FALSE"); err != nil {
		return nil, 0, fmt.Errorf("count groups: %w", err)
	}
	return groups, total, nil
}

// FindByID fetches a live group with its period.
func (r *GroupRepository) FindByID(ctx context.Context, id int64) (*models.GroupDetail, error) {
	var group models.GroupDetail
	if err := r.db.GetContext(ctx, &group, groupDetailSelect+" WHERE g.id = $1 AND g.is_deleted = FALSE", id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find group: %w", err)
	}
	group.Hydrate()
	return &group, nil
}

// Create inserts a group and sets its generated id.
func (r *GroupRepository) Create(ctx context.Context, group *models.Group) error {
	const query = `INSERT INTO groups (name, semester, period_id) VALUES ($1, $2, $3) RETURNING id`
	if err := r.db.QueryRowxContext(ctx, query, group.Name, group.Semester, group.PeriodID).Scan(&group.ID); err != nil {
		return fmt.Errorf("create group: %w", err)
	}
	return nil
}

// Update persists group columns.
func (r *GroupRepository) Update(ctx context.Context, group *models.Group) error {
	const query = `UPDATE groups SET name = :name, semester = :semester, period_id = :period_id WHERE id = :id AND is_deleted = FALSE`
	if _, err := r.db.NamedExecContext(ctx, query, group); err != nil {
		return fmt.Errorf("update group: %w", err)
	}
	return nil
}

// SoftDelete marks the group deleted.
func (r *GroupRepository) SoftDelete(ctx context.Context, id int64) error {
	return softDelete(ctx, r.db, "groups", id)
}
