package users

import (
	"context"

	"github.com/team-dbx/dbx/internal/server/models"
)

type Repository interface {
	Upsert(ctx context.Context, user *models.User) (created bool, err error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}
