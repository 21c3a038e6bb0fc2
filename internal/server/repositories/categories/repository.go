package categories

import (
	"context"

	"github.com/team-dbx/dbx/internal/server/models"
)

type Repository interface {
	List(ctx context.Context) ([]models.Category, error)
	GetByID(ctx context.Context, id string) (*models.Category, error)
	InsertIfAbsent(ctx context.Context, c *models.Category) error
}
