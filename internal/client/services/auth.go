package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/team-dbx/dbx/internal/client/client"
	"github.com/team-dbx/dbx/internal/client/identity"
	"github.com/team-dbx/dbx/internal/client/notify"
	"github.com/team-dbx/dbx/internal/client/state"
	"github.com/team-dbx/dbx/internal/common"
	"github.com/team-dbx/dbx/internal/dto"
	"github.com/team-dbx/dbx/internal/logging"
)

const (
	MsgUnauthorized = "Unauthorized: Please check your login details"
	MsgServerError  = "Server error: Please try again later"
	MsgGenericError = "An error occurred: Please try again"
	MsgLoginFailed  = "Login failed. Please try again."
	MsgLogoutFailed = "Logout failed"
)

var ErrLoginRejected = errors.New("login rejected")

// LoginAPI is the part of the Resource API used while signing in.
type LoginAPI interface {
	Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error)
	InitialSetting(ctx context.Context) ([]dto.Category, error)
}

// LoginResult tells the console where to go next: a first-time user is
// sent to the bootstrap upload form, everybody else to the gallery.
type LoginResult struct {
	Email       string
	InitialUser bool
}

type AuthService interface {
	Login(ctx context.Context) (LoginResult, error)
	Logout(ctx context.Context) error
}

type authService struct {
	provider identity.Provider
	api      LoginAPI
	session  *state.Session
	registry *state.CategoryRegistry
	notifier notify.Notifier
	log      logging.Logger
}

func NewAuthService(p identity.Provider, api LoginAPI, session *state.Session,
	registry *state.CategoryRegistry, n notify.Notifier, log logging.Logger) AuthService {
	return &authService{provider: p, api: api, session: session, registry: registry, notifier: n, log: log}
}

// LoginErrorMessage maps a sign-in failure to the text shown to the user.
func LoginErrorMessage(err error) string {
	switch {
	case errors.Is(err, client.ErrUnauthorized):
		return MsgUnauthorized
	case errors.Is(err, client.ErrServer):
		return MsgServerError
	default:
		return MsgGenericError
	}
}

// Login signs in with the identity provider, stores the credentials, and
// registers the sign-in with the server. On any failure the session is left
// empty.
func (a *authService) Login(ctx context.Context) (LoginResult, error) {
	id, err := a.provider.SignIn(ctx)
	if err != nil {
		return LoginResult{}, a.loginFailed(ctx, "sign-in", MsgGenericError, err)
	}

	if err := a.session.SetCredentials(id.IDToken, id.Email); err != nil {
		return LoginResult{}, a.loginFailed(ctx, "set credentials", MsgGenericError, err)
	}

	resp, err := a.api.Login(ctx, dto.LoginRequest{Email: id.Email, IDToken: id.IDToken, Login: true})
	if err != nil {
		return LoginResult{}, a.loginFailed(ctx, "login request", LoginErrorMessage(err), err)
	}

	if resp.IsInitialUser {
		cats, err := a.api.InitialSetting(ctx)
		if err != nil {
			return LoginResult{}, a.loginFailed(ctx, "initial setting", LoginErrorMessage(err), err)
		}
		a.registry.ReplaceAll(cats)
		a.log.Info(ctx, "first login, default categories created", "email", id.Email, "categories", len(cats))
		return LoginResult{Email: id.Email, InitialUser: true}, nil
	}

	if resp.Result != common.ResultOK {
		return LoginResult{}, a.loginFailed(ctx, "login result", MsgLoginFailed,
			fmt.Errorf("%w: %q", ErrLoginRejected, resp.Result))
	}

	a.log.Info(ctx, "logged in", "email", id.Email)
	return LoginResult{Email: id.Email}, nil
}

func (a *authService) loginFailed(ctx context.Context, step, msg string, err error) error {
	a.session.Clear()
	a.log.Warn(ctx, "login failed", "step", step, "error", err)
	a.notifier.Error(msg)
	return err
}

// Logout signs out of the identity provider and always clears the local
// session, even when the provider sign-out fails.
func (a *authService) Logout(ctx context.Context) error {
	err := a.provider.SignOut(ctx)
	a.session.Clear()
	if err != nil {
		a.log.Warn(ctx, "sign-out failed", "error", err)
		a.notifier.Error(MsgLogoutFailed)
		return err
	}
	return nil
}
