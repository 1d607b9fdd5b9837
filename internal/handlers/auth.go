package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/docdrop-io/apiserver/internal/services"
	"github.com/go-chi/chi/v5"
)

// AuthHandler provides signup, email verification, and login endpoints.
type AuthHandler struct {
	auth *services.AuthService
}

// NewAuthHandler constructs an AuthHandler with the provided dependencies.
func NewAuthHandler(auth *services.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// AuthRouter registers the public auth routes on the given router.
func AuthRouter(r chi.Router, auth *services.AuthService) {
	handler := NewAuthHandler(auth)

	r.Post("/sign-up", handler.Signup)
	r.Get("/verify-email/{token}", handler.VerifyEmail)
	r.Post("/login", handler.Login)
}

// RequireAuth enforces bearer authentication and injects the resolved
// user into the request context. The user record reflects current store
// state, not the token's claims.
func RequireAuth(auth *services.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString, err := bearerToken(r)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "unauthorized")
				return
			}

			user, err := auth.Authenticate(r.Context(), tokenString)
			if err != nil {
				if errors.Is(err, services.ErrUnauthorized) {
					writeError(w, http.StatusUnauthorized, "unauthorized")
					return
				}
				writeError(w, http.StatusInternalServerError, "failed to authenticate")
				return
			}

			ctx := context.WithValue(r.Context(), contextUserKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Require enforces an authorization predicate against the identity
// resolved by RequireAuth.
func Require(allowed services.Predicate, message string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := userFromContext(r.Context())
			if err != nil {
				writeError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			if err := services.Require(user, allowed); err != nil {
				writeError(w, http.StatusForbidden, message)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Signup creates an unverified client account and returns the
// verification path.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	req.Email = strings.TrimSpace(req.Email)
	req.Name = strings.TrimSpace(req.Name)
	if req.Email == "" || req.Name == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "missing required fields")
		return
	}

	path, err := h.auth.Signup(r.Context(), req.Email, req.Name, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrDuplicateUser) {
			writeError(w, http.StatusBadRequest, "user already exists")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to create user")
		return
	}

	writeJSON(w, http.StatusCreated, SignupResponse{VerificationURL: path})
}

// VerifyEmail consumes a confirmation token from the path.
func (h *AuthHandler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	tokenString := chi.URLParam(r, "token")

	if err := h.auth.VerifyEmail(r.Context(), tokenString); err != nil {
		if errors.Is(err, services.ErrInvalidToken) {
			writeError(w, http.StatusBadRequest, "invalid or expired token")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to verify email")
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{Message: "email verified successfully"})
}

// Login verifies form-encoded credentials and returns a bearer token.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	email := strings.TrimSpace(r.PostFormValue("username"))
	password := r.PostFormValue("password")
	if email == "" || password == "" {
		writeError(w, http.StatusBadRequest, "missing credentials")
		return
	}

	accessToken, err := h.auth.Login(r.Context(), email, password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			writeError(w, http.StatusUnauthorized, "incorrect credentials")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to authenticate")
		return
	}

	writeJSON(w, http.StatusOK, TokenResponse{AccessToken: accessToken, TokenType: "bearer"})
}

type SignupRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

type SignupResponse struct {
	VerificationURL string `json:"encrypted-verification-url"`
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}
