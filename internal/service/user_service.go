package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/foodlink/foodlink-api/internal/auth"
	"github.com/foodlink/foodlink-api/internal/model"
)

// UserRepositoryInterface defines the interface for user data access.
type UserRepositoryInterface interface {
	Insert(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id int64) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	Update(ctx context.Context, id int64, req *model.UpdateUserRequest) (*model.User, error)
	SetImageURL(ctx context.Context, id int64, url string) (*model.User, error)
}

// PasswordHasher hashes and checks account passwords.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(hash, plaintext string) error
}

// TokenIssuer signs session tokens.
type TokenIssuer interface {
	Issue(userID int64, email string) (string, error)
}

// IdentityVerifier checks third-party identity tokens.
type IdentityVerifier interface {
	Verify(ctx context.Context, idToken string) (*auth.GoogleIdentity, error)
}

// UserService provides business logic for accounts and sessions.
type UserService struct {
	userRepo  UserRepositoryInterface
	passwords PasswordHasher
	tokens    TokenIssuer
	google    IdentityVerifier
	images    ImageStore
}

// NewUserService creates a new UserService. google and images may be nil, which disables
// Google login and profile image uploads respectively.
func NewUserService(userRepo UserRepositoryInterface, passwords PasswordHasher, tokens TokenIssuer, google IdentityVerifier, images ImageStore) *UserService {
	return &UserService{
		userRepo:  userRepo,
		passwords: passwords,
		tokens:    tokens,
		google:    google,
		images:    images,
	}
}

// Signup creates a password account.
// Returns ErrEmailTaken if the email already has an account.
func (s *UserService) Signup(ctx context.Context, req *model.SignupRequest) (*model.User, error) {
	if req == nil {
		return nil, ErrInvalidRequest
	}

	hash, err := s.passwords.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	user := &model.User{
		Email:        normalizeEmail(req.Email),
		PasswordHash: &hash,
		Name:         strings.TrimSpace(req.Name),
		PhoneNumber:  strings.TrimSpace(req.PhoneNumber),
	}
	if err := s.userRepo.Insert(ctx, user); err != nil {
		if errors.Is(err, ErrEmailTaken) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return user, nil
}

// Login checks email and password and issues a session token. Unknown emails, Google-only
// accounts and wrong passwords all return ErrInvalidCredentials.
func (s *UserService) Login(ctx context.Context, req *model.LoginRequest) (*model.LoginResponse, error) {
	if req == nil {
		return nil, ErrInvalidRequest
	}

	user, err := s.userRepo.GetByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	if user == nil || user.PasswordHash == nil {
		return nil, ErrInvalidCredentials
	}
	if err := s.passwords.Verify(*user.PasswordHash, req.Password); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.session(user, "Login successful")
}

// GoogleLogin verifies a Google ID token and signs the matching user in, creating the
// account on first login.
func (s *UserService) GoogleLogin(ctx context.Context, idToken string) (*model.LoginResponse, error) {
	if s.google == nil {
		return nil, fmt.Errorf("%w: google login is not configured", ErrInvalidRequest)
	}

	identity, err := s.google.Verify(ctx, idToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	user, err := s.findOrCreateGoogleUser(ctx, identity)
	if err != nil {
		return nil, err
	}
	return s.session(user, "Google login successful")
}

func (s *UserService) findOrCreateGoogleUser(ctx context.Context, identity *auth.GoogleIdentity) (*model.User, error) {
	email := normalizeEmail(identity.Email)

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	if user != nil {
		return user, nil
	}

	user = &model.User{Email: email, Name: identity.Name}
	if identity.Picture != "" {
		picture := identity.Picture
		user.ImageURL = &picture
	}

	err = s.userRepo.Insert(ctx, user)
	if errors.Is(err, ErrEmailTaken) {
		// Lost a race with a concurrent first login.
		user, err = s.userRepo.GetByEmail(ctx, email)
		if err == nil && user == nil {
			err = ErrUserNotFound
		}
	}
	if err != nil {
		return nil, fmt.Errorf("create google user: %w", err)
	}
	return user, nil
}

func (s *UserService) session(user *model.User, message string) (*model.LoginResponse, error) {
	token, err := s.tokens.Issue(user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &model.LoginResponse{Message: message, Token: token, User: user}, nil
}

// Get returns a user by id.
func (s *UserService) Get(ctx context.Context, id int64) (*model.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// Update changes the mutable profile fields of a user.
func (s *UserService) Update(ctx context.Context, id int64, req *model.UpdateUserRequest) (*model.User, error) {
	if req == nil {
		return nil, ErrInvalidRequest
	}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		req.Name = &name
	}
	if req.PhoneNumber != nil {
		phone := strings.TrimSpace(*req.PhoneNumber)
		req.PhoneNumber = &phone
	}

	user, err := s.userRepo.Update(ctx, id, req)
	if err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// SetProfileImage uploads img and points the user's profile at it.
func (s *UserService) SetProfileImage(ctx context.Context, id int64, img *ImageUpload) (*model.User, error) {
	if img == nil {
		return nil, fmt.Errorf("%w: no image file provided", ErrInvalidRequest)
	}
	if s.images == nil {
		return nil, ErrStorageUnavailable
	}

	// The user must exist before anything is uploaded.
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}

	url, err := s.images.Upload(ctx, img)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	user, err := s.userRepo.SetImageURL(ctx, id, url)
	if err != nil {
		return nil, fmt.Errorf("set image url: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
