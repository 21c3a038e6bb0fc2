// Package identity signs console users in with a federated identity
// provider and hands back the provider's ID token and the user's email.
package identity

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/markbates/goth"
	"github.com/markbates/goth/providers/google"

	"github.com/team-dbx/dbx/internal/common"
)

var (
	ErrStateMismatch = errors.New("oauth state mismatch")
	ErrNoCode        = errors.New("callback has no authorization code")
	ErrNoIDToken     = errors.New("provider returned no id token")
	ErrNoEmail       = errors.New("provider returned no email")
)

// Identity is the outcome of a successful sign-in.
type Identity struct {
	IDToken string
	Email   string
}

type Provider interface {
	SignIn(ctx context.Context) (Identity, error)
	SignOut(ctx context.Context) error
}

// PromptFunc shows authURL to the user and returns the callback url the
// browser was redirected to after consent.
type PromptFunc func(ctx context.Context, authURL string) (string, error)

// OAuthProvider runs the authorization-code flow of a goth provider from a
// terminal: the user opens the consent url and pastes the redirect back.
type OAuthProvider struct {
	provider goth.Provider
	prompt   PromptFunc
	newState func() (string, error)
}

func NewOAuthProvider(p goth.Provider, prompt PromptFunc) *OAuthProvider {
	return &OAuthProvider{
		provider: p,
		prompt:   prompt,
		newState: func() (string, error) { return common.MakeRandHexString(16) },
	}
}

// NewGoogleProvider signs in with Google, asking for the email scope.
func NewGoogleProvider(clientID, clientSecret, callbackURL string, prompt PromptFunc) *OAuthProvider {
	return NewOAuthProvider(google.New(clientID, clientSecret, callbackURL, "email"), prompt)
}

func (p *OAuthProvider) SignIn(ctx context.Context) (Identity, error) {
	state, err := p.newState()
	if err != nil {
		return Identity{}, fmt.Errorf("generate state: %w", err)
	}

	sess, err := p.provider.BeginAuth(state)
	if err != nil {
		return Identity{}, fmt.Errorf("begin auth: %w", err)
	}
	authURL, err := sess.GetAuthURL()
	if err != nil {
		return Identity{}, fmt.Errorf("auth url: %w", err)
	}

	callback, err := p.prompt(ctx, authURL)
	if err != nil {
		return Identity{}, err
	}
	params, err := callbackParams(callback)
	if err != nil {
		return Identity{}, err
	}
	if params.Get("state") != state {
		return Identity{}, ErrStateMismatch
	}
	if params.Get("code") == "" {
		return Identity{}, ErrNoCode
	}

	if _, err := sess.Authorize(p.provider, params); err != nil {
		return Identity{}, fmt.Errorf("authorize: %w", err)
	}
	user, err := p.provider.FetchUser(sess)
	if err != nil {
		return Identity{}, fmt.Errorf("fetch user: %w", err)
	}

	switch {
	case user.IDToken == "":
		return Identity{}, ErrNoIDToken
	case user.Email == "":
		return Identity{}, ErrNoEmail
	}
	return Identity{IDToken: user.IDToken, Email: user.Email}, nil
}

// SignOut has nothing to revoke: the console only ever held the ID token.
func (p *OAuthProvider) SignOut(ctx context.Context) error {
	return ctx.Err()
}

// callbackParams accepts either the full redirect url or just its query.
func callbackParams(callback string) (url.Values, error) {
	callback = strings.TrimSpace(callback)
	if i := strings.IndexByte(callback, '?'); i >= 0 {
		callback = callback[i+1:]
	}
	v, err := url.ParseQuery(callback)
	if err != nil {
		return nil, fmt.Errorf("parse callback: %w", err)
	}
	return v, nil
}
