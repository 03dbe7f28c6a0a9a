// Handles user authentication.

// Package handlers implements the HTTP API endpoints.
package handlers

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"

	apierrors "github.com/academiahq/academia/internal/errors"
	"github.com/academiahq/academia/internal/models"
	"github.com/academiahq/academia/internal/storage"
)

const tokenExpiration = 24 * time.Hour

// AuthHandler handles authentication requests.
type AuthHandler struct {
	users     *storage.UserService
	jwtSecret []byte
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(users *storage.UserService, jwtSecret []byte) *AuthHandler {
	return &AuthHandler{users: users, jwtSecret: jwtSecret}
}

// LoginRequest is the login request payload.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserResponse describes an authenticated user.
type UserResponse struct {
	ID    string          `json:"id"`
	Email string          `json:"email"`
	Name  string          `json:"name"`
	Role  models.UserRole `json:"role"`
}

// AuthResponse is returned on successful login.
type AuthResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

// Login authenticates a user and returns a JWT token.
func (h *AuthHandler) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	if req.Email == "" || req.Password == "" {
		return nil, apierrors.MissingField("email or password")
	}

	user, err := h.users.Authenticate(req.Email, req.Password)
	if err != nil {
		return nil, apierrors.NewAPIError(401, apierrors.ErrUnauthorized, "Invalid credentials")
	}

	token, err := h.GenerateToken(user)
	if err != nil {
		return nil, apierrors.InternalWithError("Failed to generate token", err)
	}

	return &AuthResponse{
		Token: token,
		User: UserResponse{
			ID:    user.ID,
			Email: user.Email,
			Name:  user.Name,
			Role:  user.Role,
		},
	}, nil
}

// GenerateToken generates a signed JWT token for the given user.
func (h *AuthHandler) GenerateToken(user *models.User) (string, error) {
	claims := jwt.MapClaims{
		"sub":   user.ID,
		"email": user.Email,
		"role":  string(user.Role),
		"exp":   time.Now().Add(tokenExpiration).Unix(),
		"iat":   time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(h.jwtSecret)
}
