package services_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/docdrop-io/apiserver/internal/services"
	"github.com/docdrop-io/apiserver/internal/store"
	"github.com/docdrop-io/apiserver/internal/token"
	"github.com/docdrop-io/apiserver/types"
)

const verifyPathPrefix = "/verify-email/"

// eventRecorder captures emitted events for assertions.
type eventRecorder struct {
	mu      sync.Mutex
	signups []string
	uploads []types.FileRecord
}

func (r *eventRecorder) UserSignedUp(_ context.Context, email, _ string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.signups = append(r.signups, email)
}

func (r *eventRecorder) FileUploaded(_ context.Context, record types.FileRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.uploads = append(r.uploads, record)
}

func newAuthService(t *testing.T) (*services.AuthService, *store.MemoryUserRepository, *token.Service, *eventRecorder) {
	t.Helper()
	users := store.NewMemoryUserRepository()
	tokens := token.NewService("test-secret")
	events := &eventRecorder{}
	return services.NewAuthService(users, tokens, events), users, tokens, events
}

func TestSignupCreatesUnverifiedClient(t *testing.T) {
	ctx := context.Background()
	auth, users, _, events := newAuthService(t)

	path, err := auth.Signup(ctx, "a@x.com", "A", "pw")
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	if !strings.HasPrefix(path, verifyPathPrefix) {
		t.Fatalf("unexpected verification path: %q", path)
	}

	user, err := users.GetByEmail(ctx, "a@x.com")
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if user.Role != types.RoleClient {
		t.Fatalf("unexpected role: %q", user.Role)
	}
	if user.Verified {
		t.Fatalf("expected new user to be unverified")
	}
	if user.PasswordHash == "pw" || user.PasswordHash == "" {
		t.Fatalf("expected password to be hashed")
	}

	if len(events.signups) != 1 || events.signups[0] != "a@x.com" {
		t.Fatalf("expected signup event for a@x.com, got %v", events.signups)
	}
}

func TestSignupRejectsDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	auth, _, _, _ := newAuthService(t)

	if _, err := auth.Signup(ctx, "a@x.com", "A", "pw"); err != nil {
		t.Fatalf("first signup: %v", err)
	}
	if _, err := auth.Signup(ctx, "a@x.com", "Other", "pw2"); !errors.Is(err, services.ErrDuplicateUser) {
		t.Fatalf("expected ErrDuplicateUser, got %v", err)
	}
}

func TestVerifyEmailMarksOnlyTheSubject(t *testing.T) {
	ctx := context.Background()
	auth, users, _, _ := newAuthService(t)

	path, err := auth.Signup(ctx, "a@x.com", "A", "pw")
	if err != nil {
		t.Fatalf("signup a: %v", err)
	}
	if _, err := auth.Signup(ctx, "b@x.com", "B", "pw"); err != nil {
		t.Fatalf("signup b: %v", err)
	}

	if err := auth.VerifyEmail(ctx, strings.TrimPrefix(path, verifyPathPrefix)); err != nil {
		t.Fatalf("verify: %v", err)
	}

	userA, _ := users.GetByEmail(ctx, "a@x.com")
	if !userA.Verified {
		t.Fatalf("expected a@x.com to be verified")
	}
	userB, _ := users.GetByEmail(ctx, "b@x.com")
	if userB.Verified {
		t.Fatalf("expected b@x.com to stay unverified")
	}
}

func TestVerifyEmailIsIdempotent(t *testing.T) {
	ctx := context.Background()
	auth, _, _, _ := newAuthService(t)

	path, err := auth.Signup(ctx, "a@x.com", "A", "pw")
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	confirmation := strings.TrimPrefix(path, verifyPathPrefix)

	if err := auth.VerifyEmail(ctx, confirmation); err != nil {
		t.Fatalf("first verify: %v", err)
	}
	if err := auth.VerifyEmail(ctx, confirmation); err != nil {
		t.Fatalf("second verify should be a no-op, got %v", err)
	}
}

func TestVerifyEmailRejectsBadTokens(t *testing.T) {
	ctx := context.Background()
	auth, users, tokens, _ := newAuthService(t)

	if _, err := users.Create(ctx, types.User{Email: "a@x.com", Role: types.RoleClient}); err != nil {
		t.Fatalf("create user: %v", err)
	}

	expired, err := tokens.Issue("a@x.com", "", "", -time.Minute)
	if err != nil {
		t.Fatalf("issue expired: %v", err)
	}
	unknown, err := tokens.Issue("ghost@x.com", "", "", time.Hour)
	if err != nil {
		t.Fatalf("issue unknown: %v", err)
	}

	for name, input := range map[string]string{
		"garbage":         "not-a-token",
		"expired":         expired,
		"unknown subject": unknown,
	} {
		if err := auth.VerifyEmail(ctx, input); !errors.Is(err, services.ErrInvalidToken) {
			t.Fatalf("%s: expected ErrInvalidToken, got %v", name, err)
		}
	}
}

func TestLoginIssuesBearerToken(t *testing.T) {
	ctx := context.Background()
	auth, _, _, _ := newAuthService(t)

	if _, err := auth.Signup(ctx, "a@x.com", "A", "pw"); err != nil {
		t.Fatalf("signup: %v", err)
	}

	bearer, err := auth.Login(ctx, "a@x.com", "pw")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	user, err := auth.Authenticate(ctx, bearer)
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if user.Email != "a@x.com" || user.Role != types.RoleClient {
		t.Fatalf("unexpected identity: %+v", user)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	ctx := context.Background()
	auth, _, _, _ := newAuthService(t)

	if _, err := auth.Signup(ctx, "a@x.com", "A", "pw"); err != nil {
		t.Fatalf("signup: %v", err)
	}

	if _, err := auth.Login(ctx, "a@x.com", "wrong"); !errors.Is(err, services.ErrInvalidCredentials) {
		t.Fatalf("wrong password: expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := auth.Login(ctx, "ghost@x.com", "pw"); !errors.Is(err, services.ErrInvalidCredentials) {
		t.Fatalf("unknown email: expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthenticateRejectsExpiredToken(t *testing.T) {
	ctx := context.Background()
	auth, _, tokens, _ := newAuthService(t)

	if _, err := auth.Signup(ctx, "a@x.com", "A", "pw"); err != nil {
		t.Fatalf("signup: %v", err)
	}

	expired, err := tokens.Issue("a@x.com", types.RoleClient, "", -time.Minute)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := auth.Authenticate(ctx, expired); !errors.Is(err, services.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestAuthenticateRejectsVerificationToken(t *testing.T) {
	ctx := context.Background()
	auth, _, _, _ := newAuthService(t)

	path, err := auth.Signup(ctx, "a@x.com", "A", "pw")
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	confirmation := strings.TrimPrefix(path, verifyPathPrefix)

	// The confirmation token carries no role claim and must not work
	// as a bearer token.
	if _, err := auth.Authenticate(ctx, confirmation); !errors.Is(err, services.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestAuthenticateRejectsUnknownSubject(t *testing.T) {
	ctx := context.Background()
	auth, _, tokens, _ := newAuthService(t)

	bearer, err := tokens.Issue("ghost@x.com", types.RoleClient, "", time.Minute)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := auth.Authenticate(ctx, bearer); !errors.Is(err, services.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestAuthenticateReflectsCurrentStoreState(t *testing.T) {
	ctx := context.Background()
	auth, users, _, _ := newAuthService(t)

	if _, err := auth.Signup(ctx, "a@x.com", "A", "pw"); err != nil {
		t.Fatalf("signup: %v", err)
	}
	bearer, err := auth.Login(ctx, "a@x.com", "pw")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	user, err := auth.Authenticate(ctx, bearer)
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if user.Verified {
		t.Fatalf("expected unverified identity before confirmation")
	}

	if err := users.SetVerified(ctx, "a@x.com"); err != nil {
		t.Fatalf("set verified: %v", err)
	}

	// Same token, fresh store state.
	user, err = auth.Authenticate(ctx, bearer)
	if err != nil {
		t.Fatalf("authenticate after verify: %v", err)
	}
	if !user.Verified {
		t.Fatalf("expected verified flag from live store state")
	}
}

func TestEnsureOpsUser(t *testing.T) {
	ctx := context.Background()
	auth, users, _, _ := newAuthService(t)

	if err := auth.EnsureOpsUser(ctx, "ops@x.com", "Ops", "ops-pw"); err != nil {
		t.Fatalf("ensure: %v", err)
	}

	user, err := users.GetByEmail(ctx, "ops@x.com")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if user.Role != types.RoleOps || !user.Verified {
		t.Fatalf("unexpected ops user: %+v", user)
	}

	if err := auth.EnsureOpsUser(ctx, "ops@x.com", "Ops", "other-pw"); err != nil {
		t.Fatalf("second ensure should be a no-op, got %v", err)
	}
	if _, err := auth.Login(ctx, "ops@x.com", "ops-pw"); err != nil {
		t.Fatalf("login with original password: %v", err)
	}
}

func TestPredicates(t *testing.T) {
	ops := types.User{Email: "ops@x.com", Role: types.RoleOps, Verified: true}
	verified := types.User{Email: "a@x.com", Role: types.RoleClient, Verified: true}
	unverified := types.User{Email: "b@x.com", Role: types.RoleClient}

	if !services.IsOps(ops) || services.IsOps(verified) {
		t.Fatalf("IsOps misclassified")
	}
	if !services.IsVerifiedClient(verified) {
		t.Fatalf("expected verified client to pass")
	}
	if services.IsVerifiedClient(unverified) || services.IsVerifiedClient(ops) {
		t.Fatalf("IsVerifiedClient misclassified")
	}

	if err := services.Require(verified, services.IsVerifiedClient); err != nil {
		t.Fatalf("require: %v", err)
	}
	if err := services.Require(unverified, services.IsVerifiedClient); !errors.Is(err, services.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}
