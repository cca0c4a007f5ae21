package handlers

import (
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"fraud-dashboard/internal/ctxkeys"
	"fraud-dashboard/internal/middleware"
	"fraud-dashboard/internal/models"
)

// AuthHandler signs analysts in and out. Analysts are declared in
// configuration with bcrypt password hashes.
type AuthHandler struct {
	base
	users        map[string]models.User
	jwtSecret    string
	ttl          time.Duration
	secureCookie bool
}

// NewAuthHandler creates an AuthHandler for the given users.
func NewAuthHandler(d Deps, users []models.User, jwtSecret string, ttl time.Duration, secureCookie bool) *AuthHandler {
	byEmail := make(map[string]models.User, len(users))
	for _, u := range users {
		if !ctxkeys.ValidRoles[u.Role] {
			u.Role = ctxkeys.RoleViewer
		}
		byEmail[strings.ToLower(strings.TrimSpace(u.Email))] = u
	}
	return &AuthHandler{
		base:         base{d},
		users:        byEmail,
		jwtSecret:    jwtSecret,
		ttl:          ttl,
		secureCookie: secureCookie,
	}
}

type loginData struct {
	Email  string
	Next   string
	Errors map[string]string
}

// LoginPage handles GET /login.
func (h *AuthHandler) LoginPage(w http.ResponseWriter, r *http.Request) {
	data := loginData{Next: safeReturn(r.URL.Query().Get("next"), "/")}
	h.render(w, http.StatusOK, "login", h.page(r, "Sign in", "", data))
}

// Login handles POST /login. Email and password are checked against the
// configured users; the session token is set as an HTTP-only cookie.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form body", http.StatusBadRequest)
		return
	}
	req := models.LoginRequest{
		Email:    strings.TrimSpace(r.PostForm.Get("email")),
		Password: r.PostForm.Get("password"),
	}
	data := loginData{Email: req.Email, Next: safeReturn(r.PostForm.Get("next"), "/")}

	if errs := req.Validate(); len(errs) > 0 {
		data.Errors = errs
		h.render(w, http.StatusUnprocessableEntity, "login", h.page(r, "Sign in", "", data))
		return
	}

	// Generic message for unknown emails and wrong passwords alike.
	user, ok := h.users[strings.ToLower(req.Email)]
	if !ok || bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		data.Errors = map[string]string{"form": "Invalid email or password"}
		p := h.page(r, "Sign in", "", data)
		p.Banner = failure("Invalid email or password")
		h.render(w, http.StatusUnauthorized, "login", p)
		return
	}

	token, err := middleware.IssueToken(h.jwtSecret, user, h.ttl)
	if err != nil {
		zap.L().Error("handlers: issue session token", zap.Error(err))
		http.Error(w, "Login failed", http.StatusInternalServerError)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.ttl.Seconds()),
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	zap.L().Info("handlers: analyst signed in", zap.String("email", user.Email), zap.String("role", user.Role))
	http.Redirect(w, r, data.Next, http.StatusSeeOther)
}

// Logout handles POST /logout. It clears the cookie, the analyst's upload
// sessions and the query cache.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if email := h.sessionEmail(r); email != "" && h.Uploads != nil {
		h.Uploads.Drop(email)
	}
	if h.Cache != nil {
		h.Cache.InvalidateAll()
	}
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, withNotice(middleware.LoginPath, "signed-out"), http.StatusSeeOther)
}

// sessionEmail is the email of the request, when it went through Auth.
func (h *AuthHandler) sessionEmail(r *http.Request) string {
	return ctxkeys.Email(r.Context())
}

// HashPassword returns the bcrypt hash stored in the users configuration.
func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), 12)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}
