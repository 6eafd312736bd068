package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// softDelete flags a row as deleted. A row that is already deleted still
// matches, which keeps repeated removes harmless. sql.ErrNoRows is returned
// only when the id never existed.
func softDelete(ctx context.Context, db *sqlx.DB, table string, id int64) error {
	query := fmt.Sprintf("UPDATE %s SET is_deleted = TRUE WHERE id = $1", table)
	res, err := db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete %s: %w", table, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete %s rows affected: %w", table, err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// exists runs a "SELECT 1 ... LIMIT 1" probe.
func exists(ctx context.Context, db *sqlx.DB, query string, args ...interface{}) (bool, error) {
	var found int
	if err := db.GetContext(ctx, &found, query+" LIMIT 1", args...); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// expectAffected converts a zero-row update into sql.ErrNoRows.
func expectAffected(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
