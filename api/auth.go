/*
auth.go - Admin session authentication

PURPOSE:
  Issues a bearer credential for the admin session and gates mutating
  routes on it. Login checks the password against a bcrypt hash and
  signs a short-lived HS256 JWT; the middleware verifies the token and
  checks the subject against the admin allow-list.

  Public routes (calculator, rate read, health, gallery reads) bypass
  this entirely - see server.go for which groups are wrapped.
*/
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/woodline/sitebook/ledger"
)

// Auth holds credential configuration for the admin surface.
type Auth struct {
	AdminUser    string
	PasswordHash string // bcrypt
	Allowlist    []string
	Secret       []byte
	TokenTTL     time.Duration
}

type ctxKey string

const ctxAdmin ctxKey = "admin"

// Login verifies credentials and returns a signed bearer token.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.fail(w, "login", &ledger.ValidationError{Field: "body", Reason: "invalid JSON"})
		return
	}
	a := h.Auth
	if a == nil || a.PasswordHash == "" || len(a.Secret) == 0 {
		h.fail(w, "login", &ledger.AuthError{Reason: "authentication not configured"})
		return
	}
	if req.Username != a.AdminUser ||
		bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(req.Password)) != nil {
		h.fail(w, "login", &ledger.AuthError{Reason: "invalid credentials"})
		return
	}

	expires := time.Now().Add(a.TokenTTL)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   req.Username,
		ExpiresAt: jwt.NewNumericDate(expires),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	})
	signed, err := token.SignedString(a.Secret)
	if err != nil {
		h.fail(w, "login", err)
		return
	}
	writeJSON(w, http.StatusOK, LoginResponse{
		Token:     signed,
		ExpiresAt: expires.Format(time.RFC3339),
	})
}

// RequireAdmin wraps mutating routes with bearer verification and the
// allow-list check.
func (a *Auth) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		subject, err := a.verify(r)
		if err != nil {
			writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "auth", Message: err.Error()})
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxAdmin, subject)))
	})
}

func (a *Auth) verify(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", &ledger.AuthError{Reason: "missing bearer token"}
	}
	raw, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return "", &ledger.AuthError{Reason: "malformed authorization header"}
	}

	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, &ledger.AuthError{Reason: "unexpected signing method"}
		}
		return a.Secret, nil
	})
	if err != nil || !token.Valid {
		return "", &ledger.AuthError{Reason: "invalid token"}
	}

	for _, allowed := range a.Allowlist {
		if claims.Subject == allowed {
			return claims.Subject, nil
		}
	}
	return "", &ledger.AuthError{Reason: "not an admin"}
}
