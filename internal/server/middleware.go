package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	apierrors "github.com/academiahq/academia/internal/errors"
	"github.com/academiahq/academia/internal/models"
	"github.com/academiahq/academia/internal/server/ratelimit"
	"github.com/academiahq/academia/internal/storage"
)

var (
	errMissingAuthHdr = errors.New("missing authorization header")
	errInvalidAuthHdr = errors.New("invalid authorization header")
	errInvalidToken   = errors.New("invalid token")
	errInvalidClaims  = errors.New("invalid claims")
	errUserNotFound   = errors.New("user not found")
)

// validateJWT extracts and validates the bearer token from the request and
// resolves it to a user.
func validateJWT(r *http.Request, users *storage.UserService, jwtSecret []byte) (*models.User, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return nil, errMissingAuthHdr
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return nil, errInvalidAuthHdr
	}

	token, err := jwt.Parse(parts[1], func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return nil, errInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errInvalidClaims
	}
	userID, ok := claims["sub"].(string)
	if !ok {
		return nil, errInvalidClaims
	}

	user, err := users.Get(userID)
	if err != nil {
		return nil, errUserNotFound
	}
	return user, nil
}

// authMiddleware rejects requests without a valid bearer token and stores the
// resolved user in the request context. The login and health endpoints are
// expected to be registered outside this middleware.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := validateJWT(r, s.users, s.jwtSecret)
		if err != nil {
			slog.WarnContext(r.Context(), "Rejected request", "path", r.URL.Path, "err", err)
			writeError(w, apierrors.Unauthorized())
			return
		}
		ctx := context.WithValue(r.Context(), models.UserKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireRole rejects authenticated requests whose user lacks the given role.
func requireRole(role models.UserRole, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := r.Context().Value(models.UserKey).(*models.User)
		if !ok || !hasPermission(user.Role, role) {
			writeError(w, apierrors.Forbidden("Insufficient permissions"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// hasPermission reports whether userRole meets requiredRole. Admin outranks
// staff.
func hasPermission(userRole, requiredRole models.UserRole) bool {
	weights := map[models.UserRole]int{
		models.RoleStaff: 1,
		models.RoleAdmin: 2,
	}
	return weights[userRole] >= weights[requiredRole]
}

// rateLimitMiddleware enforces per-client-IP token buckets. Login attempts
// draw from a stricter bucket than general API traffic.
func (s *Server) rateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tier := s.rateLimits.Match(r.Method, r.URL.Path)
		if tier == nil {
			next.ServeHTTP(w, r)
			return
		}

		key := ratelimit.BuildKey(clientIP(r), tier.Name)
		result := tier.Limiter.Allow(key)
		ratelimit.WriteHeaders(w, result)
		if !result.Allowed {
			slog.WarnContext(r.Context(), "Rate limited", "path", r.URL.Path, "key", key)
			writeError(w, apierrors.NewAPIError(http.StatusTooManyRequests, apierrors.ErrRateLimited, "Too many requests"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientIP extracts the client address, preferring X-Forwarded-For when a
// reverse proxy set it.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		ip, _, _ := strings.Cut(fwd, ",")
		return strings.TrimSpace(ip)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
