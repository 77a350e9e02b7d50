package repository

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/foodlink/foodlink-api/internal/model"
	"github.com/foodlink/foodlink-api/internal/service"
)

// LocationRepository stores one saved search origin per user.
type LocationRepository struct {
	pool PoolInterface
}

// NewLocationRepository creates a new LocationRepository with the given pool.
func NewLocationRepository(pool *pgxpool.Pool) *LocationRepository {
	return &LocationRepository{pool: pool}
}

// NewLocationRepositoryWithPool creates a new LocationRepository with a custom pool interface.
func NewLocationRepositoryWithPool(pool PoolInterface) *LocationRepository {
	return &LocationRepository{pool: pool}
}

// Upsert saves loc as the user's location, replacing any previous one. created reports
// whether a new row was inserted.
func (r *LocationRepository) Upsert(ctx context.Context, loc *model.UserLocation) (bool, error) {
	query, args, err := psql().
		Insert("user_locations").
		Columns("user_id", "latitude", "longitude", "address").
		Values(loc.UserID, loc.Latitude, loc.Longitude, loc.Address).
		Suffix(`ON CONFLICT (user_id) DO UPDATE
SET latitude = EXCLUDED.latitude, longitude = EXCLUDED.longitude, address = EXCLUDED.address
RETURNING id, (xmax = 0)`).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build upsert location query: %w", err)
	}

	// xmax is zero only for freshly inserted tuples.
	var created bool
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&loc.ID, &created); err != nil {
		if isPgCode(err, pgForeignKeyViolation) {
			return false, service.ErrUserNotFound
		}
		return false, fmt.Errorf("upsert location: %w", err)
	}
	return created, nil
}

// GetByUserID returns the saved location of a user.
// Returns nil, nil if the user never saved one.
func (r *LocationRepository) GetByUserID(ctx context.Context, userID int64) (*model.UserLocation, error) {
	query, args, err := psql().
		Select("id", "user_id", "latitude", "longitude", "address").
		From("user_locations").
		Where(sq.Eq{"user_id": userID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get location query: %w", err)
	}

	var loc model.UserLocation
	if err := pgxscan.Get(ctx, r.pool, &loc, query, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get location for user %d: %w", userID, err)
	}
	return &loc, nil
}
