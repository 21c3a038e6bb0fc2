package versions

import (
	"context"
	"fmt"

	"github.com/team-dbx/dbx/internal/dbx"
	"github.com/team-dbx/dbx/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, v *models.Version) error {
	query :=
		`INSERT INTO versions (id, resource_id, version, description, author_id, upload_date)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 `

	_, err := r.db.ExecContext(ctx, query, v.ID, v.ResourceID, v.Version, v.Description, v.AuthorID, v.UploadDate)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// ListByResource returns the versions of a resource, newest first, with
// author names. Files are not loaded.
func (r *PostgresRepository) ListByResource(ctx context.Context, resourceID string) ([]models.Version, error) {
	query :=
		`SELECT v.id, v.resource_id, v.version, v.description, v.author_id, u.name, v.upload_date
		 FROM versions v
		 JOIN users u ON u.id = v.author_id
		 WHERE v.resource_id = $1
		 ORDER BY v.upload_date DESC, v.id
		 `

	rows, err := r.db.QueryContext(ctx, query, resourceID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := []models.Version{}
	for rows.Next() {
		var v models.Version
		if err := rows.Scan(&v.ID, &v.ResourceID, &v.Version, &v.Description, &v.AuthorID, &v.AuthorName, &v.UploadDate); err != nil {
			return nil, err
		}
		result = append(result, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
