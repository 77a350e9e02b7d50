package repository

import (
	"context"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/foodlink/foodlink-api/internal/model"
	"github.com/foodlink/foodlink-api/internal/service"
	"github.com/foodlink/foodlink-api/pkg/database"
)

const userTable = "users"

var userColumns = []string{
	"id", "email", "password_hash", "name", "phone_number", "credit", "image_url", "created_at", "updated_at",
}

// UserRepository provides data access for users using pgx.
type UserRepository struct {
	pool PoolInterface
}

// NewUserRepository creates a new UserRepository with the given pool.
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

// NewUserRepositoryWithPool creates a new UserRepository with a custom pool interface.
// This is primarily used for testing.
func NewUserRepositoryWithPool(pool PoolInterface) *UserRepository {
	return &UserRepository{pool: pool}
}

// Insert creates a new user and fills in its id, credit and timestamps.
// Returns service.ErrEmailTaken if the email is already registered.
func (r *UserRepository) Insert(ctx context.Context, u *model.User) error {
	query, args, err := psql().
		Insert(userTable).
		Columns("email", "password_hash", "name", "phone_number", "image_url").
		Values(u.Email, u.PasswordHash, u.Name, u.PhoneNumber, u.ImageURL).
		Suffix("RETURNING id, credit, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert user query: %w", err)
	}

	err = r.pool.QueryRow(ctx, query, args...).Scan(&u.ID, &u.Credit, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if isPgCode(err, pgUniqueViolation) {
			return service.ErrEmailTaken
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// GetByID retrieves a user by id.
// Returns nil, nil if the user is not found.
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	return r.getOne(ctx, sq.Eq{"id": id})
}

// GetByEmail retrieves a user by normalized email.
// Returns nil, nil if the user is not found.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.getOne(ctx, sq.Eq{"email": email})
}

func (r *UserRepository) getOne(ctx context.Context, where sq.Eq) (*model.User, error) {
	query, args, err := psql().
		Select(userColumns...).
		From(userTable).
		Where(where).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get user query: %w", err)
	}
	return r.fetch(ctx, query, args...)
}

// fetch runs a single-row user query; no rows yields nil, nil.
func (r *UserRepository) fetch(ctx context.Context, query string, args ...any) (*model.User, error) {
	var u model.User
	if err := pgxscan.Get(ctx, r.pool, &u, query, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}

// Update applies the non-nil fields of req and returns the updated user.
// Returns nil, nil if the user is not found.
func (r *UserRepository) Update(ctx context.Context, id int64, req *model.UpdateUserRequest) (*model.User, error) {
	builder := psql().
		Update(userTable).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": id}).
		Suffix("RETURNING " + strings.Join(userColumns, ", "))

	if req.Name != nil {
		builder = builder.Set("name", *req.Name)
	}
	if req.PhoneNumber != nil {
		builder = builder.Set("phone_number", *req.PhoneNumber)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build update user query: %w", err)
	}
	return r.fetch(ctx, query, args...)
}

// SetImageURL points the user's profile image at url.
// Returns nil, nil if the user is not found.
func (r *UserRepository) SetImageURL(ctx context.Context, id int64, url string) (*model.User, error) {
	query, args, err := psql().
		Update(userTable).
		Set("image_url", url).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": id}).
		Suffix("RETURNING " + strings.Join(userColumns, ", ")).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build set image url query: %w", err)
	}
	return r.fetch(ctx, query, args...)
}

// IncrementCredit adds one credit to the user inside the caller's transaction.
// Returns service.ErrUserNotFound if no row was updated.
func (r *UserRepository) IncrementCredit(ctx context.Context, tx database.TxQuerier, userID int64) error {
	query, args, err := psql().
		Update(userTable).
		Set("credit", sq.Expr("credit + 1")).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": userID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build increment credit query: %w", err)
	}

	tag, err := tx.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("increment credit for user %d: %w", userID, err)
	}
	if tag.RowsAffected() == 0 {
		return service.ErrUserNotFound
	}
	return nil
}
