package store

import (
	"context"
	"errors"
	"testing"

	"github.com/docdrop-io/apiserver/types"
)

func TestMemoryUserRepositoryCreateAndGet(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryUserRepository()

	created, err := repo.Create(ctx, types.User{
		Email: "a@x.com",
		Name:  "A",
		Role:  types.RoleClient,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.CreatedAt.IsZero() {
		t.Fatalf("expected created_at to be set")
	}

	got, err := repo.GetByEmail(ctx, "a@x.com")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Name != "A" || got.Role != types.RoleClient {
		t.Fatalf("unexpected user: %+v", got)
	}
}

func TestMemoryUserRepositoryRejectsDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryUserRepository()

	if _, err := repo.Create(ctx, types.User{Email: "a@x.com"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := repo.Create(ctx, types.User{Email: "a@x.com"}); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
}

func TestMemoryUserRepositorySetVerified(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryUserRepository()

	if _, err := repo.Create(ctx, types.User{Email: "a@x.com", Role: types.RoleClient}); err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := repo.SetVerified(ctx, "a@x.com"); err != nil {
		t.Fatalf("set verified: %v", err)
	}

	got, err := repo.GetByEmail(ctx, "a@x.com")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !got.Verified {
		t.Fatalf("expected verified flag to be set")
	}

	if err := repo.SetVerified(ctx, "missing@x.com"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryUserRepositoryGetUnknown(t *testing.T) {
	repo := NewMemoryUserRepository()

	if _, err := repo.GetByEmail(context.Background(), "missing@x.com"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryFileRepositoryLifecycle(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryFileRepository()

	records, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("expected empty list, got %d records", len(records))
	}

	created, err := repo.Create(ctx, types.FileRecord{
		ID:       "file-1",
		Filename: "report.xlsx",
		Uploader: "ops@x.com",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.CreatedAt.IsZero() {
		t.Fatalf("expected created_at to be set")
	}

	got, err := repo.Get(ctx, "file-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Filename != "report.xlsx" {
		t.Fatalf("unexpected filename: %q", got.Filename)
	}

	records, err = repo.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}

	if err := repo.Delete(ctx, "file-1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := repo.Get(ctx, "file-1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if err := repo.Delete(ctx, "file-1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}
