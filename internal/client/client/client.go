package client

import (
	"context"

	"github.com/team-dbx/dbx/internal/dto"
)

type Client interface {
	CategoriesURL() string
	FetchCategories(ctx context.Context, url string) ([]dto.Category, error)
	CategoryResources(ctx context.Context, categoryID string) ([]dto.ResourceSummary, error)
	Resource(ctx context.Context, categoryID, resourceID string) (*dto.ResourceDetail, error)
	ResourceVersions(ctx context.Context, categoryID, resourceID string) ([]dto.VersionRecord, error)
	CreateResource(ctx context.Context, categoryID string, req *dto.UploadRequest) (int, error)
	AddVersion(ctx context.Context, categoryID, resourceID string, req *dto.UploadRequest) (int, error)
	DeleteResource(ctx context.Context, categoryID, resourceID string) (string, error)
	Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error)
	InitialSetting(ctx context.Context) ([]dto.Category, error)
	ShareLink(categoryID, resourceID string) string
}

// TokenSource yields the credential attached to each request; "" means
// no Authorization header.
type TokenSource interface {
	Token() string
}
