package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"prdflow/internal/auth"
	"prdflow/internal/repository"
	"prdflow/pkg/models"
)

// Register creates an account and signs the caller straight in.
func (s *Server) Register(c echo.Context) error {
	var req models.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body: "+err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Registration failed")
	}

	user := &models.User{
		ID:             uuid.NewString(),
		Email:          normalizeEmail(req.Email),
		Name:           req.Name,
		HashedPassword: hash,
		CreatedAt:      time.Now().UTC(),
		IsActive:       true,
	}
	if err := s.store.CreateUser(c.Request().Context(), user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return echo.NewHTTPError(http.StatusBadRequest, "Email already registered")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Registration failed")
	}

	return s.tokenResponse(c, user)
}

// Login verifies credentials and returns a fresh token. Unknown emails and
// wrong passwords answer identically.
func (s *Server) Login(c echo.Context) error {
	var req models.LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body: "+err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	user, err := s.store.GetUserByEmail(c.Request().Context(), normalizeEmail(req.Email))
	if errors.Is(err, repository.ErrNotFound) {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid email or password")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Login failed")
	}
	if !auth.CheckPassword(req.Password, user.HashedPassword) {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid email or password")
	}

	return s.tokenResponse(c, user)
}

// Me returns the authenticated user's profile.
func (s *Server) Me(c echo.Context) error {
	user := auth.UserFromContext(c.Request().Context())
	if user == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid or missing credentials")
	}
	return c.JSON(http.StatusOK, user.Response())
}

func (s *Server) tokenResponse(c echo.Context, user *models.User) error {
	token, err := s.auth.IssueToken(user.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to issue token")
	}
	return c.JSON(http.StatusOK, models.TokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
		User:        user.Response(),
	})
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
