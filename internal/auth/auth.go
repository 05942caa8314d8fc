// Package auth implements password hashing and JWT bearer authentication
// for the HTTP API.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"

	"prdflow/internal/config"
	"prdflow/internal/repository"
	"prdflow/pkg/models"
)

// Logger defines the logging interface compatible with the application logger.
type Logger interface {
	Debug(msg string, keyvals ...any)
	Info(msg string, keyvals ...any)
	Error(msg string, keyvals ...any)
}

// ErrInvalidToken covers every way a bearer token can fail verification:
// bad signature, expiry, missing user_id claim, unknown or inactive user.
var ErrInvalidToken = errors.New("auth: invalid token")

var errNoCredentials = errors.New("auth: no credentials")

// Auth signs and verifies access tokens and carries the echo middleware
// that resolves the request user.
type Auth struct {
	secret []byte
	expiry time.Duration
	store  repository.Store
	logger Logger
}

// New creates an Auth from the application configuration.
func New(cfg *config.Config, store repository.Store, logger Logger) (*Auth, error) {
	if cfg.Auth.JWTSecret == "" {
		return nil, errors.New("auth: jwt secret is not configured")
	}
	return &Auth{
		secret: []byte(cfg.Auth.JWTSecret),
		expiry: time.Duration(cfg.Auth.ExpiryMinutes) * time.Minute,
		store:  store,
		logger: logger,
	}, nil
}

// HashPassword hashes a plaintext password with bcrypt at the default cost.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("auth: hash password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword reports whether the plaintext matches the stored bcrypt hash.
func CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// IssueToken signs an HS256 access token carrying the user id.
func (a *Auth) IssueToken(userID string) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID,
		"iat":     now.Unix(),
		"exp":     now.Add(a.expiry).Unix(),
	})
	signed, err := token.SignedString(a.secret)
	if err != nil {
		return "", fmt.Errorf("auth: sign token: %w", err)
	}
	return signed, nil
}

// VerifyToken validates a signed token and loads its user from the store.
// Unknown and deactivated users fail verification; store outages surface as
// distinct errors so they are not mistaken for bad credentials.
func (a *Auth) VerifyToken(ctx context.Context, raw string) (*models.User, error) {
	token, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}
	userID, _ := claims["user_id"].(string)
	if userID == "" {
		return nil, ErrInvalidToken
	}

	user, err := a.store.GetUserByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrInvalidToken
	}
	if err != nil {
		return nil, fmt.Errorf("auth: load user: %w", err)
	}
	if !user.IsActive {
		return nil, ErrInvalidToken
	}
	return user, nil
}

// Required is echo middleware that rejects requests without a valid bearer
// token.
func (a *Auth) Required(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		user, err := a.authenticate(c)
		if err != nil {
			if !errors.Is(err, ErrInvalidToken) && !errors.Is(err, errNoCredentials) {
				a.logger.Error("authentication lookup failed", "error", err)
				return echo.NewHTTPError(http.StatusServiceUnavailable, "authentication unavailable")
			}
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid or missing credentials")
		}
		setUser(c, user)
		return next(c)
	}
}

// Optional is echo middleware that resolves the user when a valid bearer
// token is present and lets the request through anonymously otherwise.
// Invalid tokens are treated as anonymous rather than rejected.
func (a *Auth) Optional(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		user, err := a.authenticate(c)
		if err == nil {
			setUser(c, user)
		}
		return next(c)
	}
}

func (a *Auth) authenticate(c echo.Context) (*models.User, error) {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	if header == "" {
		return nil, errNoCredentials
	}
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return nil, ErrInvalidToken
	}
	return a.VerifyToken(c.Request().Context(), strings.TrimPrefix(header, prefix))
}

type userKey struct{}

func setUser(c echo.Context, user *models.User) {
	ctx := context.WithValue(c.Request().Context(), userKey{}, user)
	c.SetRequest(c.Request().WithContext(ctx))
}

// UserFromContext returns the authenticated user placed by the middleware,
// or nil for anonymous requests.
func UserFromContext(ctx context.Context) *models.User {
	user, _ := ctx.Value(userKey{}).(*models.User)
	return user
}
