package users

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

// Upsert inserts user or, if the email is known, touches its last login.
// The stored id, name and creation time are written back into user.
// created reports whether the row was inserted by this call.
func (r *PostgresRepository) Upsert(ctx context.Context, user *models.User) (bool, error) {
	query :=
		`INSERT INTO users (id, email, name)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (email) DO UPDATE SET last_login_at = now()
		 RETURNING id, name, created_at, (xmax = 0) AS inserted
		 `

	var inserted bool
	err := r.db.QueryRowContext(ctx, query, user.ID, user.Email, user.Name).
		Scan(&user.ID, &user.Name, &user.CreatedAt, &inserted)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return inserted, nil
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query :=
		`SELECT id, email, name, created_at FROM users
		 WHERE email = $1
		 `

	user := &models.User{}
	err := r.db.QueryRowContext(ctx, query, email).Scan(&user.ID, &user.Email, &user.Name, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return user, nil
}
