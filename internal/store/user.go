package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/docdrop-io/apiserver/types"
	"github.com/lib/pq"
)

// UserRepository handles postgres persistence for users, keyed by email.
type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (types.User, error) {
	const query = `
		SELECT email, name, role, verified, password_hash, created_at, updated_at
		FROM users
		WHERE email = $1`
	var user types.User
	err := r.db.QueryRowContext(ctx, query, email).Scan(
		&user.Email,
		&user.Name,
		&user.Role,
		&user.Verified,
		&user.PasswordHash,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.User{}, ErrNotFound
		}
		return types.User{}, err
	}
	return user, nil
}

func (r *UserRepository) Create(ctx context.Context, user types.User) (types.User, error) {
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	const query = `
		INSERT INTO users (email, name, role, verified, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.db.ExecContext(
		ctx,
		query,
		user.Email,
		user.Name,
		user.Role,
		user.Verified,
		user.PasswordHash,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return types.User{}, ErrDuplicate
		}
		return types.User{}, err
	}
	return user, nil
}

// SetVerified flips the verified flag for the user. The flag never
// transitions back to false.
func (r *UserRepository) SetVerified(ctx context.Context, email string) error {
	const query = `
		UPDATE users
		SET verified = TRUE,
			updated_at = $1
		WHERE email = $2`
	result, err := r.db.ExecContext(ctx, query, time.Now(), email)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
