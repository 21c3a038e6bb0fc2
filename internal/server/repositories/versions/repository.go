package versions

import (
	"context"

	"github.com/team-dbx/dbx/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, v *models.Version) error
	ListByResource(ctx context.Context, resourceID string) ([]models.Version, error)
}
