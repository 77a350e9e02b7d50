package repository

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/foodlink/foodlink-api/internal/geo"
	"github.com/foodlink/foodlink-api/internal/model"
	"github.com/foodlink/foodlink-api/internal/service"
	"github.com/foodlink/foodlink-api/pkg/database"
)

const donationTable = "donations"

var donationColumns = []string{
	"id", "product_name", "category", "amount", "description", "pickup_date", "expiration_date",
	"pickup_hours", "latitude", "longitude", "image_url", "status", "user_id", "claimed_by",
	"created_at", "updated_at",
}

// DonationRepository provides data access for donations using pgx.
type DonationRepository struct {
	pool PoolInterface
}

// NewDonationRepository creates a new DonationRepository with the given pool.
func NewDonationRepository(pool *pgxpool.Pool) *DonationRepository {
	return &DonationRepository{pool: pool}
}

// NewDonationRepositoryWithPool creates a new DonationRepository with a custom pool interface.
// This is primarily used for testing.
func NewDonationRepositoryWithPool(pool PoolInterface) *DonationRepository {
	return &DonationRepository{pool: pool}
}

func scanDonation(row pgx.Row) (*model.Donation, error) {
	var d model.Donation
	err := row.Scan(
		&d.ID,
		&d.ProductName,
		&d.Category,
		&d.Amount,
		&d.Description,
		&d.PickupDate,
		&d.ExpirationDate,
		&d.PickupHours,
		&d.Latitude,
		&d.Longitude,
		&d.ImageURL,
		&d.Status,
		&d.UserID,
		&d.ClaimedBy,
		&d.CreatedAt,
		&d.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// Insert stores a new donation and fills in its id and timestamps.
// Returns service.ErrUserNotFound if the owner does not exist.
func (r *DonationRepository) Insert(ctx context.Context, d *model.Donation) error {
	query, args, err := psql().
		Insert(donationTable).
		Columns("product_name", "category", "amount", "description", "pickup_date", "expiration_date",
			"pickup_hours", "latitude", "longitude", "image_url", "status", "user_id").
		Values(d.ProductName, d.Category, d.Amount, d.Description, d.PickupDate, d.ExpirationDate,
			d.PickupHours, d.Latitude, d.Longitude, d.ImageURL, d.Status, d.UserID).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert donation query: %w", err)
	}

	err = r.pool.QueryRow(ctx, query, args...).Scan(&d.ID, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		if isPgCode(err, pgForeignKeyViolation) {
			return service.ErrUserNotFound
		}
		return fmt.Errorf("insert donation: %w", err)
	}
	return nil
}

// GetByID retrieves a donation by id.
// Returns nil, nil if the donation is not found (service layer handles this).
func (r *DonationRepository) GetByID(ctx context.Context, id int64) (*model.Donation, error) {
	query, args, err := psql().
		Select(donationColumns...).
		From(donationTable).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get donation query: %w", err)
	}

	d, err := scanDonation(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get donation %d: %w", id, err)
	}
	return d, nil
}

// ListAvailable returns every claimable donation in insertion order. When box is not nil only
// located donations inside it are returned.
func (r *DonationRepository) ListAvailable(ctx context.Context, box *geo.BoundingBox) ([]model.Donation, error) {
	builder := psql().
		Select(donationColumns...).
		From(donationTable).
		Where(sq.Eq{"status": model.StatusAvailable}).
		Where(sq.Gt{"amount": 0})

	if box != nil {
		builder = builder.
			Where(sq.NotEq{"latitude": nil, "longitude": nil}).
			Where(sq.GtOrEq{"latitude": box.MinLat}).
			Where(sq.LtOrEq{"latitude": box.MaxLat})
		if box.HasLonBounds {
			builder = builder.
				Where(sq.GtOrEq{"longitude": box.MinLon}).
				Where(sq.LtOrEq{"longitude": box.MaxLon})
		}
	}

	query, args, err := builder.OrderBy("id ASC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list donations query: %w", err)
	}

	donations := []model.Donation{}
	if err := pgxscan.Select(ctx, r.pool, &donations, query, args...); err != nil {
		return nil, fmt.Errorf("list available donations: %w", err)
	}
	return donations, nil
}

// GetForUpdate retrieves a donation with a row lock (SELECT FOR UPDATE).
// This locks the row until the transaction completes.
// Returns service.ErrDonationNotFound if the donation doesn't exist.
func (r *DonationRepository) GetForUpdate(ctx context.Context, tx database.TxQuerier, id int64) (*model.Donation, error) {
	query, args, err := psql().
		Select(donationColumns...).
		From(donationTable).
		Where(sq.Eq{"id": id}).
		Suffix("FOR UPDATE").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build donation for update query: %w", err)
	}

	d, err := scanDonation(tx.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, service.ErrDonationNotFound
		}
		return nil, fmt.Errorf("get donation for update %d: %w", id, err)
	}
	return d, nil
}

// applyClaimSQL decrements only when enough remains and the donation is still claimable, so a
// lost race can never drive amount negative even without the row lock.
const applyClaimSQL = `UPDATE donations
SET amount = amount - $2,
    claimed_by = $3,
    status = CASE WHEN amount - $2 = 0 THEN 'claimed' ELSE 'available' END,
    updated_at = NOW()
WHERE id = $1 AND amount >= $2 AND status <> 'unavailable'
RETURNING amount, status`

// ApplyClaim takes amount units from the donation and records the claimer.
// Must be called within a transaction after locking the row.
// Returns service.ErrInsufficientAmount when the conditional update matches nothing and
// service.ErrUserNotFound when the claimer does not exist.
func (r *DonationRepository) ApplyClaim(ctx context.Context, tx database.TxQuerier, id, claimerID int64, amount int) (int, string, error) {
	var remaining int
	var status string
	err := tx.QueryRow(ctx, applyClaimSQL, id, amount, claimerID).Scan(&remaining, &status)
	if err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			return 0, "", service.ErrInsufficientAmount
		case isPgCode(err, pgForeignKeyViolation):
			return 0, "", service.ErrUserNotFound
		}
		return 0, "", fmt.Errorf("apply claim on donation %d: %w", id, err)
	}
	return remaining, status, nil
}
