package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/foodlink/foodlink-api/internal/model"
	"github.com/foodlink/foodlink-api/internal/service"
)

// mockDonationService is a mock implementation of DonationServiceInterface and ClaimServiceInterface.
type mockDonationService struct {
	createFn func(ctx context.Context, req *model.CreateDonationRequest, image *service.ImageUpload) (*model.Donation, error)
	searchFn func(ctx context.Context, q model.Query) ([]model.Donation, error)
	getFn    func(ctx context.Context, id int64) (*model.DonationDetails, error)
	claimFn  func(ctx context.Context, donationID, userID int64, amount int) (*model.ClaimResult, error)
}

func (m *mockDonationService) Create(ctx context.Context, req *model.CreateDonationRequest, image *service.ImageUpload) (*model.Donation, error) {
	if m.createFn != nil {
		return m.createFn(ctx, req, image)
	}
	return &model.Donation{ID: 1, UserID: req.UserID}, nil
}

func (m *mockDonationService) Search(ctx context.Context, q model.Query) ([]model.Donation, error) {
	if m.searchFn != nil {
		return m.searchFn(ctx, q)
	}
	return []model.Donation{}, nil
}

func (m *mockDonationService) Get(ctx context.Context, id int64) (*model.DonationDetails, error) {
	if m.getFn != nil {
		return m.getFn(ctx, id)
	}
	return nil, service.ErrDonationNotFound
}

func (m *mockDonationService) Claim(ctx context.Context, donationID, userID int64, amount int) (*model.ClaimResult, error) {
	if m.claimFn != nil {
		return m.claimFn(ctx, donationID, userID, amount)
	}
	return &model.ClaimResult{DonationID: donationID, ClaimedAmount: amount}, nil
}

// mockUserService is a mock implementation of UserServiceInterface.
type mockUserService struct {
	signupFn      func(ctx context.Context, req *model.SignupRequest) (*model.User, error)
	loginFn       func(ctx context.Context, req *model.LoginRequest) (*model.LoginResponse, error)
	googleLoginFn func(ctx context.Context, idToken string) (*model.LoginResponse, error)
	getFn         func(ctx context.Context, id int64) (*model.User, error)
	updateFn      func(ctx context.Context, id int64, req *model.UpdateUserRequest) (*model.User, error)
	setImageFn    func(ctx context.Context, id int64, img *service.ImageUpload) (*model.User, error)
}

func (m *mockUserService) Signup(ctx context.Context, req *model.SignupRequest) (*model.User, error) {
	if m.signupFn != nil {
		return m.signupFn(ctx, req)
	}
	return &model.User{ID: 1, Email: req.Email, Name: req.Name}, nil
}

func (m *mockUserService) Login(ctx context.Context, req *model.LoginRequest) (*model.LoginResponse, error) {
	if m.loginFn != nil {
		return m.loginFn(ctx, req)
	}
	return nil, service.ErrInvalidCredentials
}

func (m *mockUserService) GoogleLogin(ctx context.Context, idToken string) (*model.LoginResponse, error) {
	if m.googleLoginFn != nil {
		return m.googleLoginFn(ctx, idToken)
	}
	return nil, service.ErrInvalidToken
}

func (m *mockUserService) Get(ctx context.Context, id int64) (*model.User, error) {
	if m.getFn != nil {
		return m.getFn(ctx, id)
	}
	return nil, service.ErrUserNotFound
}

func (m *mockUserService) Update(ctx context.Context, id int64, req *model.UpdateUserRequest) (*model.User, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, id, req)
	}
	return &model.User{ID: id}, nil
}

func (m *mockUserService) SetProfileImage(ctx context.Context, id int64, img *service.ImageUpload) (*model.User, error) {
	if m.setImageFn != nil {
		return m.setImageFn(ctx, id, img)
	}
	url := "https://cdn.example.test/images/" + img.Filename
	return &model.User{ID: id, ImageURL: &url}, nil
}

// mockLocationService is a mock implementation of LocationServiceInterface.
type mockLocationService struct {
	geocodeFn func(ctx context.Context, address string) (model.Coordinate, error)
	saveFn    func(ctx context.Context, req *model.SaveLocationRequest) (*model.UserLocation, bool, error)
	getFn     func(ctx context.Context, userID int64) (*model.UserLocation, error)
}

func (m *mockLocationService) Geocode(ctx context.Context, address string) (model.Coordinate, error) {
	if m.geocodeFn != nil {
		return m.geocodeFn(ctx, address)
	}
	return model.Coordinate{}, service.ErrAddressNotFound
}

func (m *mockLocationService) SaveUserLocation(ctx context.Context, req *model.SaveLocationRequest) (*model.UserLocation, bool, error) {
	if m.saveFn != nil {
		return m.saveFn(ctx, req)
	}
	return &model.UserLocation{UserID: req.UserID, Address: req.Address}, true, nil
}

func (m *mockLocationService) GetUserLocation(ctx context.Context, userID int64) (*model.UserLocation, error) {
	if m.getFn != nil {
		return m.getFn(ctx, userID)
	}
	return nil, service.ErrLocationNotFound
}

// mockMessageService is a mock implementation of MessageServiceInterface.
type mockMessageService struct {
	sendFn         func(ctx context.Context, req *model.SendMessageRequest) (*model.Message, error)
	conversationFn func(ctx context.Context, donationID, userID int64) ([]model.Message, error)
	chatsFn        func(ctx context.Context, userID int64) ([]model.ChatSummary, error)
}

func (m *mockMessageService) Send(ctx context.Context, req *model.SendMessageRequest) (*model.Message, error) {
	if m.sendFn != nil {
		return m.sendFn(ctx, req)
	}
	return &model.Message{ID: 1, FromUserID: req.FromUserID, ToUserID: req.ToUserID, DonationID: req.DonationID, Text: req.Text}, nil
}

func (m *mockMessageService) Conversation(ctx context.Context, donationID, userID int64) ([]model.Message, error) {
	if m.conversationFn != nil {
		return m.conversationFn(ctx, donationID, userID)
	}
	return []model.Message{}, nil
}

func (m *mockMessageService) Chats(ctx context.Context, userID int64) ([]model.ChatSummary, error) {
	if m.chatsFn != nil {
		return m.chatsFn(ctx, userID)
	}
	return []model.ChatSummary{}, nil
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

// multipartRequest builds a multipart/form-data request. A non-nil file is attached as "image".
func multipartRequest(t *testing.T, target string, fields map[string]string, file []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if file != nil {
		part, err := w.CreateFormFile("image", "bread.png")
		require.NoError(t, err)
		_, err = part.Write(file)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, target, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

// do runs req against app and decodes the JSON response into out when out is not nil.
func do(t *testing.T, app *fiber.App, req *http.Request, out any) int {
	t.Helper()
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if out != nil {
		require.NoError(t, json.Unmarshal(body, out), "body: %s", body)
	}
	return resp.StatusCode
}

type errorBody struct {
	Error string `json:"error"`
}
