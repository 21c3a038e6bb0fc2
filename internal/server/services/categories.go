package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/team-dbx/dbx/internal/common"
	"github.com/team-dbx/dbx/internal/dbx"
	"github.com/team-dbx/dbx/internal/server/models"
	"github.com/team-dbx/dbx/internal/server/repositories/repomanager"
)

// DefaultCategories are seeded by InitialSetting, in bar order.
var DefaultCategories = []string{common.DefaultCategoryName, "Icons", "Illustrations"}

type CategoryService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewCategoryService(db *sql.DB, m repomanager.RepositoryManager) *CategoryService {
	return &CategoryService{db: db, repomanager: m}
}

func (s *CategoryService) List(ctx context.Context) ([]models.Category, error) {
	cats, err := s.repomanager.Categories(s.db).List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return cats, nil
}

// InitialSetting makes sure the default categories exist and returns the
// full list. Running it again changes nothing.
func (s *CategoryService) InitialSetting(ctx context.Context) ([]models.Category, error) {
	return dbx.WithTxValue(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) ([]models.Category, error) {
		repo := s.repomanager.Categories(tx)
		for i, name := range DefaultCategories {
			if err := repo.InsertIfAbsent(ctx, &models.Category{ID: uuid.NewString(), Name: name, Position: i}); err != nil {
				return nil, fmt.Errorf("seed category %s: %w", name, err)
			}
		}
		return repo.List(ctx)
	})
}
