// Package categories stores the category bar.
package categories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/team-dbx/dbx/internal/common"
	"github.com/team-dbx/dbx/internal/dbx"
	"github.com/team-dbx/dbx/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// List returns all categories in bar order.
func (r *PostgresRepository) List(ctx context.Context) ([]models.Category, error) {
	query := `SELECT id, name, position FROM categories ORDER BY position, name`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := []models.Category{}
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Position); err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Category, error) {
	query := `SELECT id, name, position FROM categories WHERE id = $1`

	c := &models.Category{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&c.ID, &c.Name, &c.Position)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return c, nil
}

// InsertIfAbsent adds c unless a category with the same name exists.
func (r *PostgresRepository) InsertIfAbsent(ctx context.Context, c *models.Category) error {
	query :=
		`INSERT INTO categories (id, name, position)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (name) DO NOTHING
		 `

	if _, err := r.db.ExecContext(ctx, query, c.ID, c.Name, c.Position); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
