package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/team-dbx/dbx/internal/common"
	"github.com/team-dbx/dbx/internal/server/auth"
	"github.com/team-dbx/dbx/internal/server/models"
	"github.com/team-dbx/dbx/internal/server/repositories/repomanager"
)

// UserService signs users in with their identity-provider ID token.
type UserService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	verifier    auth.Verifier
}

func NewUserService(db *sql.DB, m repomanager.RepositoryManager, v auth.Verifier) *UserService {
	return &UserService{db: db, repomanager: m, verifier: v}
}

// Login verifies idToken, checks that it was issued for email and records
// the user. initial is true the first time the email signs in.
func (s *UserService) Login(ctx context.Context, email, idToken string) (initial bool, err error) {
	verified, err := s.verifier.Verify(ctx, idToken)
	if err != nil {
		return false, err
	}
	if !strings.EqualFold(verified, email) {
		return false, common.ErrEmailMismatch
	}

	user := &models.User{ID: uuid.NewString(), Email: verified, Name: displayName(verified)}
	created, err := s.repomanager.Users(s.db).Upsert(ctx, user)
	if err != nil {
		return false, fmt.Errorf("record user: %w", err)
	}
	return created, nil
}

// Authenticate resolves a bearer token to a user who has signed in before.
func (s *UserService) Authenticate(ctx context.Context, idToken string) (*models.User, error) {
	email, err := s.verifier.Verify(ctx, idToken)
	if err != nil {
		return nil, err
	}
	user, err := s.repomanager.Users(s.db).GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, fmt.Errorf("%w: %s has not signed in", common.ErrorUnauthorized, email)
		}
		return nil, err
	}
	return user, nil
}

// displayName is the local part of an email address.
func displayName(email string) string {
	name, _, _ := strings.Cut(email, "@")
	return name
}
