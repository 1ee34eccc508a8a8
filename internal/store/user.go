package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/userhub/apiserver/types"
)

const uniqueViolationCode = "23505"
const usernameConstraint = "users_username_key"

// UserRepository handles persistence for users. Soft-deleted rows are
// retained in the table but reported as ErrDeleted by every read path.
type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (types.User, error) {
	const query = `
		SELECT id, username, first_name, last_name, password_hash, profile_image, created_at, modified_at, deleted_at
		FROM users
		WHERE id = $1`
	var user types.User
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&user.ID,
		&user.Username,
		&user.FirstName,
		&user.LastName,
		&user.PasswordHash,
		&user.ProfileImage,
		&user.CreatedAt,
		&user.ModifiedAt,
		&user.DeletedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.User{}, ErrNotFound
		}
		return types.User{}, err
	}
	if user.Deleted() {
		return types.User{}, ErrDeleted
	}
	return user, nil
}

func (r *UserRepository) List(ctx context.Context, offset, limit int) ([]types.User, int, error) {
	const countQuery = `SELECT COUNT(*) FROM users WHERE deleted_at IS NULL`
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery).Scan(&total); err != nil {
		return nil, 0, err
	}

	const query = `
		SELECT id, username, first_name, last_name, password_hash, profile_image, created_at, modified_at, deleted_at
		FROM users
		WHERE deleted_at IS NULL
		ORDER BY created_at, id
		OFFSET $1 LIMIT $2`
	rows, err := r.db.QueryContext(ctx, query, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	users := make([]types.User, 0, limit)
	for rows.Next() {
		var user types.User
		if err := rows.Scan(
			&user.ID,
			&user.Username,
			&user.FirstName,
			&user.LastName,
			&user.PasswordHash,
			&user.ProfileImage,
			&user.CreatedAt,
			&user.ModifiedAt,
			&user.DeletedAt,
		); err != nil {
			return nil, 0, err
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

func (r *UserRepository) Create(ctx context.Context, user types.User) (types.User, error) {
	now := time.Now().UTC()
	user.CreatedAt = now
	user.ModifiedAt = now

	const query = `
		INSERT INTO users (id, username, first_name, last_name, password_hash, profile_image, created_at, modified_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.db.ExecContext(
		ctx,
		query,
		user.ID,
		user.Username,
		user.FirstName,
		user.LastName,
		user.PasswordHash,
		user.ProfileImage,
		user.CreatedAt,
		user.ModifiedAt,
	)
	if err != nil {
		return types.User{}, translateUniqueViolation(err)
	}
	return user, nil
}

func (r *UserRepository) Update(ctx context.Context, user types.User) (types.User, error) {
	user.ModifiedAt = time.Now().UTC()

	const query = `
		UPDATE users
		SET username = $1,
			first_name = $2,
			last_name = $3,
			password_hash = $4,
			profile_image = $5,
			modified_at = $6
		WHERE id = $7 AND deleted_at IS NULL`
	result, err := r.db.ExecContext(
		ctx,
		query,
		user.Username,
		user.FirstName,
		user.LastName,
		user.PasswordHash,
		user.ProfileImage,
		user.ModifiedAt,
		user.ID,
	)
	if err != nil {
		return types.User{}, translateUniqueViolation(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return types.User{}, err
	}
	if affected == 0 {
		return types.User{}, ErrNotFound
	}
	return user, nil
}

// SoftDelete stamps deleted_at on an active row. The row itself is never
// removed.
func (r *UserRepository) SoftDelete(ctx context.Context, id uuid.UUID, at time.Time) error {
	const query = `
		UPDATE users
		SET deleted_at = $2
		WHERE id = $1 AND deleted_at IS NULL`
	result, err := r.db.ExecContext(ctx, query, id, at)
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

func translateUniqueViolation(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolationCode && pqErr.Constraint == usernameConstraint {
		return ErrUsernameTaken
	}
	return err
}
