package files

import (
	"context"

	"github.com/team-dbx/dbx/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, file *models.File) error
	ListByVersion(ctx context.Context, versionID string) ([]models.File, error)
	ListByResource(ctx context.Context, resourceID string) ([]models.File, error)
}
