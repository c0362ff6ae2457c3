// Package identity holds the request-scoped employer identity decoded from the
// backend's bearer token.
package identity

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/cast"
)

// ErrMalformedToken is returned when a token cannot be decoded into claims.
var ErrMalformedToken = errors.New("identity: malformed token")

// Claims is the typed view of the token payload. Every field is optional; the
// backend decides what it puts in the token.
type Claims struct {
	Subject    string
	Email      string
	Role       string
	Roles      []string
	FirstName  string
	LastName   string
	EmployerID string
	IssuedAt   time.Time
	ExpiresAt  time.Time
	// Raw keeps the decoded mapping for display code that needs other fields.
	Raw map[string]any
}

// Decode parses the payload of raw without verifying its signature. The
// backend is the only party that verifies tokens; the dashboard decodes for
// display and routing hints only.
func Decode(raw string) (Claims, error) {
	raw = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(raw), "Bearer "))
	if raw == "" {
		return Claims{}, fmt.Errorf("%w: empty token", ErrMalformedToken)
	}
	mapClaims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, mapClaims); err != nil {
		return Claims{}, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}
	return claimsFromMap(mapClaims), nil
}

func claimsFromMap(m jwt.MapClaims) Claims {
	c := Claims{
		Subject:    stringClaim(m, "sub"),
		Email:      stringClaim(m, "email"),
		Role:       stringClaim(m, "role"),
		FirstName:  stringClaim(m, "firstName"),
		LastName:   stringClaim(m, "lastName"),
		EmployerID: stringClaim(m, "id"),
		Raw:        map[string]any(m),
	}
	if c.Email == "" && strings.Contains(c.Subject, "@") {
		c.Email = c.Subject
	}
	for _, key := range []string{"roles", "authorities", "scope"} {
		if v, ok := m[key]; ok {
			c.Roles = append(c.Roles, roleList(v)...)
		}
	}
	if iat, err := m.GetIssuedAt(); err == nil && iat != nil {
		c.IssuedAt = iat.Time
	}
	if exp, err := m.GetExpirationTime(); err == nil && exp != nil {
		c.ExpiresAt = exp.Time
	}
	return c
}

func stringClaim(m jwt.MapClaims, key string) string {
	v, ok := m[key]
	if !ok || v == nil {
		return ""
	}
	return cast.ToString(v)
}

// roleList accepts "A B", ["A","B"] and [{"authority":"A"}] shapes.
func roleList(v any) []string {
	switch t := v.(type) {
	case string:
		return strings.Fields(t)
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			if obj, ok := item.(map[string]any); ok {
				if name := cast.ToString(obj["authority"]); name != "" {
					out = append(out, name)
				}
				continue
			}
			if name := cast.ToString(item); name != "" {
				out = append(out, name)
			}
		}
		return out
	}
	roles, err := cast.ToStringSliceE(v)
	if err != nil {
		return nil
	}
	return roles
}

// HasRole reports whether the claims name the role, ignoring case and an
// optional ROLE_ prefix.
func (c Claims) HasRole(role string) bool {
	want := normalizeRole(role)
	if want == "" {
		return false
	}
	if normalizeRole(c.Role) == want {
		return true
	}
	for _, r := range c.Roles {
		if normalizeRole(r) == want {
			return true
		}
	}
	return false
}

// Expired reports whether the token carries an expiry before now.
func (c Claims) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && now.After(c.ExpiresAt)
}

// DisplayName prefers the full name and falls back to the email or subject.
func (c Claims) DisplayName() string {
	if name := strings.TrimSpace(c.FirstName + " " + c.LastName); name != "" {
		return name
	}
	if c.Email != "" {
		return c.Email
	}
	return c.Subject
}

func normalizeRole(role string) string {
	role = strings.ToUpper(strings.TrimSpace(role))
	return strings.TrimPrefix(role, "ROLE_")
}
