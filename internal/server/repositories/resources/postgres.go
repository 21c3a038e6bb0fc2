// Package resources stores resources and answers the gallery queries.
package resources

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/team-dbx/dbx/internal/common"
	"github.com/team-dbx/dbx/internal/dbx"
	"github.com/team-dbx/dbx/internal/server/models"
)

// PostgresRepository implements Repository over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts r without a current version; callers set it with
// SetCurrentVersion in the same transaction.
func (r *PostgresRepository) Create(ctx context.Context, res *models.Resource) error {
	query :=
		`INSERT INTO resources (id, category_id, name, author_id)
		 VALUES ($1, $2, $3, $4)
		 RETURNING created_at
		 `

	if err := r.db.QueryRowContext(ctx, query, res.ID, res.CategoryID, res.Name, res.AuthorID).Scan(&res.CreatedAt); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// Get returns the resource only if it belongs to categoryID.
func (r *PostgresRepository) Get(ctx context.Context, categoryID, resourceID string) (*models.Resource, error) {
	query :=
		`SELECT id, category_id, name, author_id, COALESCE(current_version_id::text, ''), created_at
		 FROM resources
		 WHERE category_id = $1 AND id = $2
		 `

	res := &models.Resource{}
	err := r.db.QueryRowContext(ctx, query, categoryID, resourceID).
		Scan(&res.ID, &res.CategoryID, &res.Name, &res.AuthorID, &res.CurrentVersionID, &res.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return res, nil
}

func (r *PostgresRepository) SetCurrentVersion(ctx context.Context, resourceID, versionID string) error {
	query := `UPDATE resources SET current_version_id = $2 WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, resourceID, versionID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n != 1 {
		return common.ErrorNotFound
	}
	return nil
}

// ListByCategory returns the gallery rows of a category, oldest first. The
// SVG key is the one of the first file of the current version.
func (r *PostgresRepository) ListByCategory(ctx context.Context, categoryID string) ([]models.ResourceSummary, error) {
	query :=
		`SELECT r.id, r.name, v.version, COALESCE(f.svg_key, '')
		 FROM resources r
		 JOIN versions v ON v.id = r.current_version_id
		 LEFT JOIN files f ON f.version_id = v.id AND f.position = 0
		 WHERE r.category_id = $1
		 ORDER BY r.created_at, r.id
		 `

	rows, err := r.db.QueryContext(ctx, query, categoryID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := []models.ResourceSummary{}
	for rows.Next() {
		var s models.ResourceSummary
		if err := rows.Scan(&s.ID, &s.Name, &s.Version, &s.SvgKey); err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Detail returns the resource at its current version. The author is the
// uploader of that version.
func (r *PostgresRepository) Detail(ctx context.Context, categoryID, resourceID string) (*models.ResourceDetail, error) {
	query :=
		`SELECT r.id, c.name, u.name, r.name, v.upload_date, v.version, v.id
		 FROM resources r
		 JOIN categories c ON c.id = r.category_id
		 JOIN versions v ON v.id = r.current_version_id
		 JOIN users u ON u.id = v.author_id
		 WHERE r.category_id = $1 AND r.id = $2
		 `

	d := &models.ResourceDetail{}
	err := r.db.QueryRowContext(ctx, query, categoryID, resourceID).
		Scan(&d.ResourceID, &d.CategoryName, &d.AuthorName, &d.ResourceName, &d.UploadDate, &d.Version, &d.VersionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return d, nil
}

// Delete removes the resource; versions and files cascade. It reports
// whether a row was removed.
func (r *PostgresRepository) Delete(ctx context.Context, categoryID, resourceID string) (bool, error) {
	query := `DELETE FROM resources WHERE category_id = $1 AND id = $2`

	result, err := r.db.ExecContext(ctx, query, categoryID, resourceID)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected error: %w", err)
	}
	return n == 1, nil
}
