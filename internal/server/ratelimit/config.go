// Defines rate limit tiers and routing rules.

package ratelimit

import (
	"net/http"
	"strconv"
	"time"
)

// Tier is a named rate limit bucket group. A nil Limiter means the tier is
// disabled and its requests pass unchecked.
type Tier struct {
	Name    string
	Limiter *Limiter
}

// Config holds rate limiters for the two request classes: authentication
// attempts (keyed by IP, strict) and general API traffic (keyed by IP,
// generous).
type Config struct {
	Auth Tier
	API  Tier
}

// NewConfig builds rate limiters from per-minute budgets. A budget of 0
// disables that tier entirely.
func NewConfig(authPerMin, apiPerMin int) *Config {
	c := &Config{
		Auth: Tier{Name: "auth"},
		API:  Tier{Name: "api"},
	}
	if authPerMin > 0 {
		c.Auth.Limiter = NewLimiter(authPerMin, time.Minute, authPerMin)
	}
	if apiPerMin > 0 {
		c.API.Limiter = NewLimiter(apiPerMin, time.Minute, max(apiPerMin/4, 1))
	}
	return c
}

// Match returns the tier covering the request, or nil when the path is not
// rate limited.
func (c *Config) Match(method, path string) *Tier {
	if path == "/api/health" {
		return nil
	}
	tier := &c.API
	if method == "POST" && path == "/api/auth/login" {
		tier = &c.Auth
	}
	if tier.Limiter == nil {
		return nil
	}
	return tier
}

// Close stops all limiter cleanup goroutines.
func (c *Config) Close() {
	if c.Auth.Limiter != nil {
		c.Auth.Limiter.Close()
	}
	if c.API.Limiter != nil {
		c.API.Limiter.Close()
	}
}

// WriteHeaders writes rate limit headers to the response. Headers are written
// on all responses, not only 429s.
func WriteHeaders(w http.ResponseWriter, result Result) {
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
	w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))
	if !result.Allowed {
		w.Header().Set("Retry-After", strconv.Itoa(int(result.RetryAfter.Seconds())))
	}
}

// BuildKey creates a rate limit bucket key from the client identifier and
// tier name.
func BuildKey(identifier, tierName string) string {
	return "ip:" + identifier + ":" + tierName
}
