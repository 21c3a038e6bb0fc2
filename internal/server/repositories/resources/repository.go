package resources

import (
	"context"

	"github.com/team-dbx/dbx/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, r *models.Resource) error
	Get(ctx context.Context, categoryID, resourceID string) (*models.Resource, error)
	SetCurrentVersion(ctx context.Context, resourceID, versionID string) error
	ListByCategory(ctx context.Context, categoryID string) ([]models.ResourceSummary, error)
	Detail(ctx context.Context, categoryID, resourceID string) (*models.ResourceDetail, error)
	Delete(ctx context.Context, categoryID, resourceID string) (bool, error)
}
