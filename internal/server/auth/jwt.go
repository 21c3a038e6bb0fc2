// Package auth verifies the ID tokens clients present on the Resource API.
//
// Production deployments verify Google ID tokens against Google's JWKS.
// Local development and tests sign HS256 tokens with a shared secret.
package auth

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/MicahParks/jwkset"
	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"

	"github.com/team-dbx/dbx/internal/common"
	"github.com/team-dbx/dbx/internal/logging"
)

// GoogleIssuers are the iss values Google puts into ID tokens.
var GoogleIssuers = []string{"accounts.google.com", "https://accounts.google.com"}

// Claims are the ID token claims the server relies on.
type Claims struct {
	jwt.RegisteredClaims
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
}

// Verifier checks an ID token and returns the email it was issued for.
type Verifier interface {
	Verify(ctx context.Context, token string) (string, error)
}

// GenerateToken signs an HS256 ID token for email. Used by local tooling and
// tests together with HMACVerifier.
func GenerateToken(email string, secretKey []byte, validityDuration time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(validityDuration)),
		},
		Email:         email,
		EmailVerified: true,
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

type HMACVerifier struct {
	secret []byte
}

func NewHMACVerifier(secret []byte) *HMACVerifier {
	return &HMACVerifier{secret: secret}
}

func (v *HMACVerifier) Verify(_ context.Context, tokenString string) (string, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return v.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return "", fmt.Errorf("%w: %w", common.ErrInvalidToken, err)
	}
	return emailOf(claims)
}

// JWKSVerifier validates RS256 ID tokens against a remote key set.
type JWKSVerifier struct {
	jwks     keyfunc.Keyfunc
	audience string
	issuers  []string
}

// NewJWKSVerifier wraps an existing key function. An empty audience skips
// the aud check, no issuers skips the iss check.
func NewJWKSVerifier(kf keyfunc.Keyfunc, audience string, issuers ...string) *JWKSVerifier {
	return &JWKSVerifier{jwks: kf, audience: audience, issuers: issuers}
}

// NewGoogleVerifier loads Google's signing keys from jwksURL and keeps them
// refreshed until ctx is done. The first fetch may fail; verification will
// then fail until a refresh succeeds.
func NewGoogleVerifier(ctx context.Context, jwksURL, clientID string, log logging.Logger) (*JWKSVerifier, error) {
	storage, err := jwkset.NewStorageFromHTTP(jwksURL, jwkset.HTTPClientStorageOptions{
		Ctx:                       ctx,
		NoErrorReturnFirstHTTPReq: true,
		RefreshInterval:           time.Hour,
		RefreshErrorHandler: func(ctx context.Context, err error) {
			log.Error(ctx, "jwks refresh failed", "url", jwksURL, "error", err)
		},
	})
	if err != nil {
		return nil, fmt.Errorf("jwks storage: %w", err)
	}

	k, err := keyfunc.New(keyfunc.Options{Ctx: ctx, Storage: storage})
	if err != nil {
		return nil, fmt.Errorf("keyfunc: %w", err)
	}
	return NewJWKSVerifier(k, clientID, GoogleIssuers...), nil
}

func (v *JWKSVerifier) Verify(ctx context.Context, tokenString string) (string, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(30 * time.Second),
	}
	if v.audience != "" {
		opts = append(opts, jwt.WithAudience(v.audience))
	}

	claims := &Claims{}
	if _, err := jwt.ParseWithClaims(tokenString, claims, v.jwks.KeyfuncCtx(ctx), opts...); err != nil {
		return "", fmt.Errorf("%w: %w", common.ErrInvalidToken, err)
	}

	if len(v.issuers) > 0 && !slices.Contains(v.issuers, claims.Issuer) {
		return "", fmt.Errorf("%w: issuer %q", common.ErrInvalidToken, claims.Issuer)
	}
	if !claims.EmailVerified {
		return "", fmt.Errorf("%w: email not verified", common.ErrInvalidToken)
	}
	return emailOf(claims)
}

func emailOf(c *Claims) (string, error) {
	if c.Email == "" {
		return "", fmt.Errorf("%w: no email claim", common.ErrInvalidToken)
	}
	return c.Email, nil
}
