package service

import (
	"context"
	"fmt"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"todoapp/internal/auth"
	apperrors "todoapp/internal/errors"
	"todoapp/internal/model"
	"todoapp/internal/repository"
)

const bcryptCost = 12

// dummyHash keeps login timing uniform when the email does not exist.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("placeholder-password"), bcryptCost)

// AuthService handles signup, login and session lifecycle.
type AuthService interface {
	Signup(ctx context.Context, email, password, name string) (*model.User, error)
	Login(ctx context.Context, email, password string) (token string, user *model.User, err error)
	ValidateSession(ctx context.Context, token string) (*model.User, error)
	Logout(ctx context.Context, token string) error
	CurrentUser(ctx context.Context, id uint) (*model.User, error)
	UpdateProfile(ctx context.Context, id uint, name string) (*model.User, error)
}

type authService struct {
	userRepo     repository.UserRepository
	jwtService   *auth.JWTService
	sessionStore auth.SessionStoreInterface
}

// NewAuthService creates a new authentication service.
func NewAuthService(userRepo repository.UserRepository, jwtService *auth.JWTService, sessionStore auth.SessionStoreInterface) AuthService {
	return &authService{
		userRepo:     userRepo,
		jwtService:   jwtService,
		sessionStore: sessionStore,
	}
}

// Signup creates a new user with a hashed password. The plaintext password is
// never stored.
func (s *authService) Signup(ctx context.Context, email, password, name string) (*model.User, error) {
	existing, err := s.userRepo.FindByEmail(ctx, email)
	if err == nil && existing != nil {
		return nil, apperrors.ErrEmailTaken
	}
	if err != nil && err != gorm.ErrRecordNotFound {
		return nil, fmt.Errorf("check user existence: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hashedPassword),
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	return user, nil
}

// Login authenticates a user and issues a session token. Failures never
// reveal whether the email exists.
func (s *authService) Login(ctx context.Context, email, password string) (string, *model.User, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		// Burn a comparison anyway so response timing matches the
		// wrong-password path.
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		return "", nil, apperrors.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, apperrors.ErrInvalidCredentials
	}

	tokenID, token, err := s.jwtService.GenerateSessionToken(user.ID, user.Email)
	if err != nil {
		return "", nil, fmt.Errorf("generate session token: %w", err)
	}

	if err := s.sessionStore.StoreSession(ctx, tokenID, user.ID, user.Email, s.jwtService.TTL()); err != nil {
		return "", nil, fmt.Errorf("store session: %w", err)
	}

	return token, user, nil
}

// ValidateSession verifies a session token against the signature, the session
// store and the stored binding, and returns the session's user.
func (s *authService) ValidateSession(ctx context.Context, token string) (*model.User, error) {
	claims, err := s.jwtService.ValidateToken(token)
	if err != nil {
		return nil, apperrors.ErrInvalidSession
	}

	storedUserID, storedEmail, err := s.sessionStore.GetSession(ctx, claims.ID)
	if err != nil {
		return nil, apperrors.ErrInvalidSession
	}
	if storedUserID != claims.UserID || storedEmail != claims.Email {
		return nil, apperrors.ErrInvalidSession
	}

	user, err := s.userRepo.FindByID(ctx, claims.UserID)
	if err != nil {
		return nil, apperrors.ErrInvalidSession
	}

	return user, nil
}

// Logout revokes the session so subsequent validation fails.
func (s *authService) Logout(ctx context.Context, token string) error {
	claims, err := s.jwtService.ValidateToken(token)
	if err != nil {
		return apperrors.ErrInvalidSession
	}
	return s.sessionStore.DeleteSession(ctx, claims.ID)
}

// CurrentUser returns the user record for an authenticated user ID.
func (s *authService) CurrentUser(ctx context.Context, id uint) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// UpdateProfile changes the user's display name.
func (s *authService) UpdateProfile(ctx context.Context, id uint, name string) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, err
	}

	user.Name = name
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	return user, nil
}
