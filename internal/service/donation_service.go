package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"github.com/foodlink/foodlink-api/internal/geo"
	"github.com/foodlink/foodlink-api/internal/model"
	"github.com/foodlink/foodlink-api/internal/search"
	"github.com/foodlink/foodlink-api/pkg/database"
)

const dateLayout = "2006-01-02"

// DonationRepositoryInterface defines the interface for donation data access.
type DonationRepositoryInterface interface {
	Insert(ctx context.Context, donation *model.Donation) error
	GetByID(ctx context.Context, id int64) (*model.Donation, error)
	ListAvailable(ctx context.Context, box *geo.BoundingBox) ([]model.Donation, error)
	GetForUpdate(ctx context.Context, tx database.TxQuerier, id int64) (*model.Donation, error)
	ApplyClaim(ctx context.Context, tx database.TxQuerier, id, claimerID int64, amount int) (remaining int, status string, err error)
}

// CreditRepositoryInterface rewards donation owners.
type CreditRepositoryInterface interface {
	IncrementCredit(ctx context.Context, tx database.TxQuerier, userID int64) error
}

// TxBeginner defines the interface for beginning transactions.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// ImageStore persists uploaded images and returns their public URL.
type ImageStore interface {
	Upload(ctx context.Context, img *ImageUpload) (string, error)
}

// ReverseGeocoder resolves coordinates into a display address.
type ReverseGeocoder interface {
	ReverseGeocode(ctx context.Context, c model.Coordinate) (string, error)
}

// ImageUpload is an image received from a multipart form.
type ImageUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// DonationService provides business logic for donations: creation, search, details and claims.
type DonationService struct {
	pool         TxBeginner
	donationRepo DonationRepositoryInterface
	creditRepo   CreditRepositoryInterface
	images       ImageStore
	geocoder     ReverseGeocoder
}

// NewDonationService creates a new DonationService with the given pool and collaborators.
func NewDonationService(pool *pgxpool.Pool, donationRepo DonationRepositoryInterface, creditRepo CreditRepositoryInterface, images ImageStore, geocoder ReverseGeocoder) *DonationService {
	return NewDonationServiceWithTxBeginner(pool, donationRepo, creditRepo, images, geocoder)
}

// NewDonationServiceWithTxBeginner creates a DonationService with a custom TxBeginner.
// Primarily used for testing.
func NewDonationServiceWithTxBeginner(pool TxBeginner, donationRepo DonationRepositoryInterface, creditRepo CreditRepositoryInterface, images ImageStore, geocoder ReverseGeocoder) *DonationService {
	return &DonationService{
		pool:         pool,
		donationRepo: donationRepo,
		creditRepo:   creditRepo,
		images:       images,
		geocoder:     geocoder,
	}
}

// Create validates and stores a new donation, uploading its image first when one is attached.
func (s *DonationService) Create(ctx context.Context, req *model.CreateDonationRequest, image *ImageUpload) (*model.Donation, error) {
	if req == nil || req.Amount == nil {
		return nil, ErrInvalidRequest
	}

	category := model.NormalizeCategory(req.Category)
	if !model.IsCategory(category) {
		return nil, ErrInvalidCategory
	}

	pickupHours := strings.ToLower(strings.TrimSpace(req.PickupHours))
	if pickupHours == "" {
		pickupHours = model.PickupUnspecified
	}
	if _, ok := model.PickupHours[pickupHours]; !ok {
		return nil, ErrInvalidPickupHours
	}

	if (req.Latitude == nil) != (req.Longitude == nil) {
		return nil, ErrInvalidCoordinates
	}
	if req.Latitude != nil {
		if err := geo.Validate(model.Coordinate{Lat: *req.Latitude, Lon: *req.Longitude}); err != nil {
			return nil, ErrInvalidCoordinates
		}
	}

	pickupDate, err := time.Parse(dateLayout, req.PickupDate)
	if err != nil {
		return nil, fmt.Errorf("%w: pickupDate: %v", ErrInvalidRequest, err)
	}
	expirationDate, err := time.Parse(dateLayout, req.ExpirationDate)
	if err != nil {
		return nil, fmt.Errorf("%w: expirationDate: %v", ErrInvalidRequest, err)
	}

	donation := &model.Donation{
		ProductName:    strings.TrimSpace(req.ProductName),
		Category:       category,
		Amount:         *req.Amount,
		Description:    req.Description,
		PickupDate:     pickupDate,
		ExpirationDate: expirationDate,
		PickupHours:    pickupHours,
		Latitude:       req.Latitude,
		Longitude:      req.Longitude,
		Status:         model.StatusAvailable,
		UserID:         req.UserID,
	}

	if image != nil {
		if s.images == nil {
			return nil, ErrStorageUnavailable
		}
		url, err := s.images.Upload(ctx, image)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
		}
		donation.ImageURL = &url
	}

	if err := s.donationRepo.Insert(ctx, donation); err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("insert donation: %w", err)
	}
	return donation, nil
}

// Search loads the available donations (bounded by the radius pre-filter when one is active) and
// filters them in process. A query with no active filter returns an empty slice without touching
// the store.
func (s *DonationService) Search(ctx context.Context, q model.Query) ([]model.Donation, error) {
	if err := search.ValidateQuery(q); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidQuery, err)
	}
	if !search.Active(q) {
		return []model.Donation{}, nil
	}

	candidates, err := s.donationRepo.ListAvailable(ctx, search.BoundingBox(q))
	if err != nil {
		return nil, fmt.Errorf("list candidates: %w", err)
	}

	return search.Search(candidates, q), nil
}

// Get returns a donation with a best-effort display address. Geocoding problems never fail the
// call; they surface as one of the model.Address* fallbacks.
func (s *DonationService) Get(ctx context.Context, id int64) (*model.DonationDetails, error) {
	donation, err := s.donationRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get donation: %w", err)
	}
	if donation == nil {
		return nil, ErrDonationNotFound
	}

	return &model.DonationDetails{
		Donation: *donation,
		Address:  s.resolveAddress(ctx, donation),
	}, nil
}

func (s *DonationService) resolveAddress(ctx context.Context, d *model.Donation) string {
	loc, ok := d.Location()
	if !ok {
		return model.AddressNoCoordinates
	}
	if s.geocoder == nil {
		return model.AddressLookupFailed
	}

	address, err := s.geocoder.ReverseGeocode(ctx, loc)
	switch {
	case errors.Is(err, ErrAddressNotFound):
		return model.AddressNotFound
	case err != nil:
		log.Warn().Err(err).Int64("donation_id", d.ID).Msg("could not resolve donation address")
		return model.AddressLookupFailed
	case address == "":
		return model.AddressNotFound
	}
	return address
}

// Claim atomically takes amount units of a donation for userID and credits the donation owner.
// The donation row is locked for the duration of the transaction and the decrement itself is
// conditional on enough stock remaining.
// Returns, in check order:
//   - ErrDonationNotFound if the donation doesn't exist
//   - ErrDonationUnavailable if it is unavailable or has nothing left
//   - ErrInsufficientAmount if amount exceeds what remains
//   - ErrInvalidAmount if amount is not positive
func (s *DonationService) Claim(ctx context.Context, donationID, userID int64, amount int) (*model.ClaimResult, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }() // Safe: no-op if committed

	donation, err := s.donationRepo.GetForUpdate(ctx, tx, donationID)
	if err != nil {
		if errors.Is(err, ErrDonationNotFound) {
			return nil, ErrDonationNotFound
		}
		return nil, fmt.Errorf("get donation for update: %w", err)
	}

	if donation.Status == model.StatusUnavailable || donation.Amount <= 0 {
		return nil, ErrDonationUnavailable
	}
	if amount > donation.Amount {
		return nil, ErrInsufficientAmount
	}
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	remaining, status, err := s.donationRepo.ApplyClaim(ctx, tx, donationID, userID, amount)
	if err != nil {
		if errors.Is(err, ErrInsufficientAmount) || errors.Is(err, ErrUserNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("apply claim: %w", err)
	}

	if err := s.creditRepo.IncrementCredit(ctx, tx, donation.UserID); err != nil {
		return nil, fmt.Errorf("credit donor: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit claim: %w", err)
	}

	return &model.ClaimResult{
		DonationID:      donationID,
		ClaimedAmount:   amount,
		RemainingAmount: remaining,
		Status:          status,
	}, nil
}
