// Package middleware provides HTTP middleware for authentication,
// authorization, rate limiting and request logging.
package middleware

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rotisserie/eris"

	"fraud-dashboard/internal/ctxkeys"
	"fraud-dashboard/internal/models"
)

// SessionCookie holds the signed session token of a browser session.
const SessionCookie = "fd_session"

// LoginPath is where unauthenticated page requests are sent.
const LoginPath = "/login"

// IssueToken signs a session token for u that expires after ttl.
func IssueToken(jwtSecret string, u models.User, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"email": u.Email,
		"name":  u.Name,
		"role":  u.Role,
		"exp":   now.Add(ttl).Unix(),
		"iat":   now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(jwtSecret))
	return signed, eris.Wrap(err, "middleware: sign token")
}

// tokenFrom reads the bearer token, falling back to the session cookie.
func tokenFrom(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		parts := strings.SplitN(h, " ", 2)
		if len(parts) == 2 && parts[0] == "Bearer" {
			return parts[1]
		}
		return ""
	}
	if c, err := r.Cookie(SessionCookie); err == nil {
		return c.Value
	}
	return ""
}

// Auth validates the session token and injects the analyst's email, name
// and role into the request context. Page requests without a valid token
// are redirected to the login page; API requests get a 401.
func Auth(jwtSecret string) func(http.Handler) http.Handler {
	secret := []byte(jwtSecret)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := tokenFrom(r)
			if raw == "" {
				unauthorized(w, r, "Authentication required")
				return
			}

			token, err := jwt.Parse(raw, func(token *jwt.Token) (interface{}, error) {
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrSignatureInvalid
				}
				return secret, nil
			})

			if err != nil || !token.Valid {
				unauthorized(w, r, "Invalid or expired token")
				return
			}

			claims, ok := token.Claims.(jwt.MapClaims)
			if !ok {
				unauthorized(w, r, "Invalid token claims")
				return
			}

			email, _ := claims["email"].(string)
			name, _ := claims["name"].(string)
			role, _ := claims["role"].(string)

			if email == "" || !ctxkeys.ValidRoles[role] {
				unauthorized(w, r, "Invalid token: missing identity")
				return
			}

			ctx := ctxkeys.WithUser(r.Context(), email, name, role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireMinRole returns middleware that restricts access to analysts with
// at least the given role. Role hierarchy: admin > analyst > viewer.
func RequireMinRole(minRole string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !ctxkeys.Can(r.Context(), minRole) {
				if wantsHTML(r) {
					http.Error(w, "You do not have permission to perform this action.", http.StatusForbidden)
					return
				}
				writeError(w, http.StatusForbidden, "Insufficient permissions")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func unauthorized(w http.ResponseWriter, r *http.Request, message string) {
	if wantsHTML(r) {
		target := LoginPath
		if r.Method == http.MethodGet {
			target += "?next=" + url.QueryEscape(r.URL.RequestURI())
		}
		http.Redirect(w, r, target, http.StatusSeeOther)
		return
	}
	writeError(w, http.StatusUnauthorized, message)
}

// wantsHTML reports whether the request came from a browser page rather
// than a JSON client.
func wantsHTML(r *http.Request) bool {
	if strings.HasPrefix(r.URL.Path, "/api/") {
		return false
	}
	accept := r.Header.Get("Accept")
	return accept == "" || strings.Contains(accept, "text/html") || strings.Contains(accept, "*/*")
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
