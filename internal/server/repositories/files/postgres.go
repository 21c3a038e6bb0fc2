package files

import (
	"context"
	"fmt"

	"github.com/team-dbx/dbx/internal/dbx"
	"github.com/team-dbx/dbx/internal/server/models"
)

// PostgresRepository implements file storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts one file row. A duplicate file name within the version
// violates the unique constraint and is returned as a db error.
func (r *PostgresRepository) Create(ctx context.Context, file *models.File) error {
	query := `
		INSERT INTO files (id, version_id, file_name, svg_key, png_key, position)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.ExecContext(ctx, query,
		file.ID, file.VersionID, file.FileName, file.SvgKey, file.PngKey, file.Position)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// ListByVersion returns the files of one version in upload order.
func (r *PostgresRepository) ListByVersion(ctx context.Context, versionID string) ([]models.File, error) {
	query := `SELECT id, version_id, file_name, svg_key, png_key, position FROM files
		WHERE version_id=$1
		ORDER BY position
		`
	return r.list(ctx, query, versionID)
}

// ListByResource returns the files of every version of a resource.
func (r *PostgresRepository) ListByResource(ctx context.Context, resourceID string) ([]models.File, error) {
	query := `SELECT f.id, f.version_id, f.file_name, f.svg_key, f.png_key, f.position FROM files f
		JOIN versions v ON v.id = f.version_id
		WHERE v.resource_id=$1
		ORDER BY v.upload_date, f.position
		`
	return r.list(ctx, query, resourceID)
}

func (r *PostgresRepository) list(ctx context.Context, query string, arg string) ([]models.File, error) {
	rows, err := r.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to select files: %w", err)
	}
	defer rows.Close()

	var result []models.File
	for rows.Next() {
		var item models.File
		if err := rows.Scan(&item.ID, &item.VersionID, &item.FileName, &item.SvgKey, &item.PngKey, &item.Position); err != nil {
			return nil, err
		}
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
