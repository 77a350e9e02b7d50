package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/foodlink/foodlink-api/internal/geo"
	"github.com/foodlink/foodlink-api/internal/model"
	"github.com/foodlink/foodlink-api/pkg/database"
)

// mockDonationRepository is a mock implementation of DonationRepositoryInterface.
type mockDonationRepository struct {
	insertFn        func(ctx context.Context, donation *model.Donation) error
	getByIDFn       func(ctx context.Context, id int64) (*model.Donation, error)
	listAvailableFn func(ctx context.Context, box *geo.BoundingBox) ([]model.Donation, error)
	getForUpdateFn  func(ctx context.Context, tx database.TxQuerier, id int64) (*model.Donation, error)
	applyClaimFn    func(ctx context.Context, tx database.TxQuerier, id, claimerID int64, amount int) (int, string, error)
}

func (m *mockDonationRepository) Insert(ctx context.Context, donation *model.Donation) error {
	if m.insertFn != nil {
		return m.insertFn(ctx, donation)
	}
	return nil
}

func (m *mockDonationRepository) GetByID(ctx context.Context, id int64) (*model.Donation, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockDonationRepository) ListAvailable(ctx context.Context, box *geo.BoundingBox) ([]model.Donation, error) {
	if m.listAvailableFn != nil {
		return m.listAvailableFn(ctx, box)
	}
	return []model.Donation{}, nil
}

func (m *mockDonationRepository) GetForUpdate(ctx context.Context, tx database.TxQuerier, id int64) (*model.Donation, error) {
	if m.getForUpdateFn != nil {
		return m.getForUpdateFn(ctx, tx, id)
	}
	return nil, ErrDonationNotFound
}

func (m *mockDonationRepository) ApplyClaim(ctx context.Context, tx database.TxQuerier, id, claimerID int64, amount int) (int, string, error) {
	if m.applyClaimFn != nil {
		return m.applyClaimFn(ctx, tx, id, claimerID, amount)
	}
	return 0, model.StatusClaimed, nil
}

// mockUserRepository is a mock implementation of UserRepositoryInterface and CreditRepositoryInterface.
type mockUserRepository struct {
	insertFn          func(ctx context.Context, user *model.User) error
	getByIDFn         func(ctx context.Context, id int64) (*model.User, error)
	getByEmailFn      func(ctx context.Context, email string) (*model.User, error)
	updateFn          func(ctx context.Context, id int64, req *model.UpdateUserRequest) (*model.User, error)
	setImageURLFn     func(ctx context.Context, id int64, url string) (*model.User, error)
	incrementCreditFn func(ctx context.Context, tx database.TxQuerier, userID int64) error
}

func (m *mockUserRepository) Insert(ctx context.Context, user *model.User) error {
	if m.insertFn != nil {
		return m.insertFn(ctx, user)
	}
	return nil
}

func (m *mockUserRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockUserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	if m.getByEmailFn != nil {
		return m.getByEmailFn(ctx, email)
	}
	return nil, nil
}

func (m *mockUserRepository) Update(ctx context.Context, id int64, req *model.UpdateUserRequest) (*model.User, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, id, req)
	}
	return nil, nil
}

func (m *mockUserRepository) SetImageURL(ctx context.Context, id int64, url string) (*model.User, error) {
	if m.setImageURLFn != nil {
		return m.setImageURLFn(ctx, id, url)
	}
	return nil, nil
}

func (m *mockUserRepository) IncrementCredit(ctx context.Context, tx database.TxQuerier, userID int64) error {
	if m.incrementCreditFn != nil {
		return m.incrementCreditFn(ctx, tx, userID)
	}
	return nil
}

// mockTx is a mock implementation of pgx.Tx for testing transactions.
type mockTx struct {
	commitFn   func(ctx context.Context) error
	rollbackFn func(ctx context.Context) error
}

func (m *mockTx) Begin(ctx context.Context) (pgx.Tx, error) {
	return nil, errors.New("nested transactions not supported")
}

func (m *mockTx) Commit(ctx context.Context) error {
	if m.commitFn != nil {
		return m.commitFn(ctx)
	}
	return nil
}

func (m *mockTx) Rollback(ctx context.Context) error {
	if m.rollbackFn != nil {
		return m.rollbackFn(ctx)
	}
	return nil
}

func (m *mockTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}

func (m *mockTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults {
	return nil
}

func (m *mockTx) LargeObjects() pgx.LargeObjects {
	return pgx.LargeObjects{}
}

func (m *mockTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}

func (m *mockTx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}

func (m *mockTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}

func (m *mockTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return nil
}

func (m *mockTx) Conn() *pgx.Conn {
	return nil
}

// mockTxBeginner is a mock implementation of TxBeginner.
type mockTxBeginner struct {
	beginFn func(ctx context.Context) (pgx.Tx, error)
}

func (m *mockTxBeginner) Begin(ctx context.Context) (pgx.Tx, error) {
	if m.beginFn != nil {
		return m.beginFn(ctx)
	}
	return &mockTx{}, nil
}

type mockImageStore struct {
	uploadFn func(ctx context.Context, img *ImageUpload) (string, error)
}

func (m *mockImageStore) Upload(ctx context.Context, img *ImageUpload) (string, error) {
	if m.uploadFn != nil {
		return m.uploadFn(ctx, img)
	}
	return "https://cdn.example.test/images/" + img.Filename, nil
}

type mockGeocoder struct {
	geocodeFn        func(ctx context.Context, address string) (model.Coordinate, error)
	reverseGeocodeFn func(ctx context.Context, c model.Coordinate) (string, error)
}

func (m *mockGeocoder) Geocode(ctx context.Context, address string) (model.Coordinate, error) {
	if m.geocodeFn != nil {
		return m.geocodeFn(ctx, address)
	}
	return model.Coordinate{}, ErrAddressNotFound
}

func (m *mockGeocoder) ReverseGeocode(ctx context.Context, c model.Coordinate) (string, error) {
	if m.reverseGeocodeFn != nil {
		return m.reverseGeocodeFn(ctx, c)
	}
	return "", ErrAddressNotFound
}

func intPtr(i int) *int {
	return &i
}

func f64(v float64) *float64 {
	return &v
}
