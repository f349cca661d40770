package services

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"grocerytracker/internal/models"
	"grocerytracker/internal/repositories"
)

// MinPasswordLength is the shortest password accepted at registration.
const MinPasswordLength = 5

// RegisterInput is the registration request.
type RegisterInput struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=5"`
	DisplayName string `json:"displayName"`
}

// LoginInput is the login request.
type LoginInput struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResult is returned on successful login.
type LoginResult struct {
	Token string          `json:"token"`
	User  models.UserView `json:"data"`
}

// AuthService handles registration, login and token checks.
type AuthService struct {
	userRepo     repositories.UserRepository
	hasher       *PasswordHasher
	tokens       *TokenManager
	events       EventPublisher
	storeTimeout time.Duration
}

// NewAuthService creates a new AuthService. events may be nil.
func NewAuthService(userRepo repositories.UserRepository, hasher *PasswordHasher, tokens *TokenManager, events EventPublisher, storeTimeout time.Duration) *AuthService {
	return &AuthService{
		userRepo:     userRepo,
		hasher:       hasher,
		tokens:       tokens,
		events:       events,
		storeTimeout: storeTimeout,
	}
}

// Register validates the input, hashes the password and stores a new user.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	in.Email = strings.TrimSpace(in.Email)
	in.DisplayName = strings.TrimSpace(in.DisplayName)

	if err := validateInput(in); err != nil {
		return nil, err
	}
	if len(in.Password) > MaxPasswordBytes {
		return nil, validationError("Validation failed", map[string]string{
			"password": "password must be at most 72 bytes long",
		})
	}

	ctx, cancel := withStoreTimeout(ctx, s.storeTimeout)
	defer cancel()

	// The unique index still guards against a concurrent insert below.
	existing, err := s.userRepo.GetByEmail(ctx, in.Email)
	if err == nil && existing != nil {
		return nil, conflictError("Account with this email already exists. Please use another email", nil)
	}
	if err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return nil, internalError("failed to check existing user", err)
	}

	if in.DisplayName == "" {
		in.DisplayName = in.Email
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, internalError("failed to hash password", err)
	}

	user := &models.User{
		Email:        in.Email,
		PasswordHash: hash,
		DisplayName:  in.DisplayName,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, conflictError("Account with this email already exists. Please use another email", err)
		}
		return nil, internalError("failed to register user", err)
	}

	publishEvent(ctx, s.events, EventUserRegistered, UserEvent{
		UserID:     user.ID,
		Email:      user.Email,
		OccurredAt: time.Now(),
	})
	return user, nil
}

// Login checks credentials and issues a token.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*LoginResult, error) {
	in.Email = strings.TrimSpace(in.Email)
	if err := validateInput(in); err != nil {
		return nil, err
	}

	ctx, cancel := withStoreTimeout(ctx, s.storeTimeout)
	defer cancel()

	user, err := s.userRepo.GetByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, notFoundError("This user does not exist.", err)
		}
		return nil, internalError("failed to look up user", err)
	}

	if !s.hasher.Verify(in.Password, user.PasswordHash) {
		return nil, authenticationError("Your password is incorrect.", nil)
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, internalError("failed to issue token", err)
	}

	return &LoginResult{Token: token, User: user.View()}, nil
}

// Authenticate verifies the token signature and expiry and returns the user id.
// It does not touch the store.
func (s *AuthService) Authenticate(token string) (string, error) {
	if token == "" {
		return "", authenticationError("Authentication token is required", nil)
	}
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return "", authenticationError("Invalid or expired token", err)
	}
	return claims.UserID, nil
}

// ValidateToken reports whether token is correctly signed, unexpired and
// refers to a user that still exists. It never returns an error.
func (s *AuthService) ValidateToken(ctx context.Context, token string) bool {
	userID, err := s.Authenticate(token)
	if err != nil {
		return false
	}

	ctx, cancel := withStoreTimeout(ctx, s.storeTimeout)
	defer cancel()

	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		if !errors.Is(err, repositories.ErrNotFound) {
			log.Printf("Token validation lookup failed for user %s: %v", userID, err)
		}
		return false
	}
	return true
}

// GetUser returns the stored user with the given id.
func (s *AuthService) GetUser(ctx context.Context, userID string) (*models.User, error) {
	ctx, cancel := withStoreTimeout(ctx, s.storeTimeout)
	defer cancel()

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, notFoundError("User not found", err)
		}
		return nil, internalError("failed to get user", err)
	}
	return user, nil
}

// DeleteUser removes the account. Grocery entries of the user are left in
// place; see the user.deleted consumer for the opt-in cascade.
func (s *AuthService) DeleteUser(ctx context.Context, userID string) (*models.User, error) {
	ctx, cancel := withStoreTimeout(ctx, s.storeTimeout)
	defer cancel()

	deleted, err := s.userRepo.Delete(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, notFoundError("User not found", err)
		}
		return nil, internalError("failed to delete user", err)
	}

	publishEvent(ctx, s.events, EventUserDeleted, UserEvent{
		UserID:     deleted.ID,
		Email:      deleted.Email,
		OccurredAt: time.Now(),
	})
	return deleted, nil
}

func withStoreTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
