package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/docdrop-io/apiserver/internal/store"
	"github.com/docdrop-io/apiserver/internal/token"
	"github.com/docdrop-io/apiserver/types"
	"golang.org/x/crypto/bcrypt"
)

const (
	verificationTokenTTL = time.Hour
	sessionTokenTTL      = 30 * time.Minute
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByEmail(ctx context.Context, email string) (types.User, error)
	Create(ctx context.Context, user types.User) (types.User, error)
	SetVerified(ctx context.Context, email string) error
}

// AuthService owns signup, email verification, login, and bearer-token
// authentication.
type AuthService struct {
	users  UserRepository
	tokens *token.Service
	events Events
}

func NewAuthService(users UserRepository, tokens *token.Service, events Events) *AuthService {
	if events == nil {
		events = noopEvents{}
	}
	return &AuthService{
		users:  users,
		tokens: tokens,
		events: events,
	}
}

// Signup creates an unverified client account and returns the
// verification path containing a one-hour confirmation token. The token
// carries only a subject, no role, so the bearer gate rejects it.
//
// The user is persisted before the token is minted; if minting fails the
// account exists without a usable token and the caller sees an error.
// There is no rollback.
func (s *AuthService) Signup(ctx context.Context, email, name, password string) (string, error) {
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return "", ErrDuplicateUser
	} else if !errors.Is(err, store.ErrNotFound) {
		return "", err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}

	user := types.User{
		Email:        email,
		Name:         name,
		Role:         types.RoleClient,
		Verified:     false,
		PasswordHash: string(hashed),
	}
	if _, err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return "", ErrDuplicateUser
		}
		return "", err
	}

	confirmation, err := s.tokens.Issue(email, "", "", verificationTokenTTL)
	if err != nil {
		return "", err
	}

	path := "/verify-email/" + confirmation
	s.events.UserSignedUp(ctx, email, path)
	return path, nil
}

// VerifyEmail consumes a confirmation token and marks the subject
// verified. A second call with a still-valid token is a successful
// no-op. Tokens are not invalidated on use; the one-hour TTL bounds the
// replay window.
func (s *AuthService) VerifyEmail(ctx context.Context, tokenString string) error {
	claims, err := s.tokens.Parse(tokenString)
	if err != nil {
		return ErrInvalidToken
	}

	user, err := s.users.GetByEmail(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrInvalidToken
		}
		return err
	}
	if user.Verified {
		return nil
	}
	return s.users.SetVerified(ctx, user.Email)
}

// Login checks the password against the stored bcrypt hash and returns
// a 30-minute bearer token carrying the user's email and role.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	return s.tokens.Issue(user.Email, user.Role, "", sessionTokenTTL)
}

// Authenticate resolves a bearer token to the current user record. The
// token must carry a subject and a role, and the subject must still
// exist. Role and verified flag always come from the store, never from
// the token's snapshot.
func (s *AuthService) Authenticate(ctx context.Context, tokenString string) (types.User, error) {
	claims, err := s.tokens.Parse(tokenString)
	if err != nil {
		return types.User{}, ErrUnauthorized
	}
	if strings.TrimSpace(claims.Role) == "" {
		return types.User{}, ErrUnauthorized
	}

	user, err := s.users.GetByEmail(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.User{}, ErrUnauthorized
		}
		return types.User{}, err
	}
	return user, nil
}

// EnsureOpsUser creates the seeded ops account if it does not exist.
// Existing accounts are left untouched.
func (s *AuthService) EnsureOpsUser(ctx context.Context, email, name, password string) error {
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil
	} else if !errors.Is(err, store.ErrNotFound) {
		return err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	_, err = s.users.Create(ctx, types.User{
		Email:        email,
		Name:         name,
		Role:         types.RoleOps,
		Verified:     true,
		PasswordHash: string(hashed),
	})
	if errors.Is(err, store.ErrDuplicate) {
		return nil
	}
	return err
}

// Predicate is an authorization check over the caller's current state.
type Predicate func(types.User) bool

// IsOps allows the privileged uploader accounts.
func IsOps(user types.User) bool {
	return strings.EqualFold(user.Role, types.RoleOps)
}

// IsVerifiedClient allows client accounts that completed email
// verification.
func IsVerifiedClient(user types.User) bool {
	return strings.EqualFold(user.Role, types.RoleClient) && user.Verified
}

// Require enforces a predicate against the resolved identity.
func Require(user types.User, allowed Predicate) error {
	if !allowed(user) {
		return ErrForbidden
	}
	return nil
}
