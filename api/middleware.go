package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/linesmerrill/justice-case-api/models"
)

// Claims is the payload of a bearer token. The subject is the actor id.
type Claims struct {
	Name  string   `json:"name,omitempty"`
	Role  string   `json:"role,omitempty"`
	Roles []string `json:"roles,omitempty"`
	jwt.RegisteredClaims
}

// Principal converts the claims into the principal every operation runs as
func (c Claims) Principal() models.Principal {
	return models.Principal{
		ActorID:     c.Subject,
		Name:        c.Name,
		PrimaryRole: c.Role,
		Roles:       c.Roles,
	}
}

// Authenticator decodes HS256 bearer tokens issued elsewhere
type Authenticator struct {
	Secret []byte
}

// Middleware rejects requests without a valid bearer token and stores the
// token's principal in the request context
func (a Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		claims, err := a.Parse(bearerToken(r))
		if err != nil {
			zap.S().Debugw("unauthorized",
				"url", r.URL.Path,
				"error", err)
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error": "unauthorized"}`))
			return
		}
		next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), claims.Principal())))
	})
}

// Parse validates a signed token and returns its claims
func (a Authenticator) Parse(token string) (*Claims, error) {
	if len(a.Secret) == 0 {
		return nil, errors.New("no token secret configured")
	}
	if token == "" {
		return nil, errors.New("missing bearer token")
	}
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return a.Secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}
	if claims.Subject == "" {
		return nil, errors.New("token has no subject")
	}
	return claims, nil
}

// Issue signs a token for p that expires after ttl
func (a Authenticator) Issue(p models.Principal, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Name:  p.Name,
		Role:  p.PrimaryRole,
		Roles: p.Roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.ActorID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.Secret)
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	// browsers cannot set headers on websocket upgrades
	return r.URL.Query().Get("token")
}
