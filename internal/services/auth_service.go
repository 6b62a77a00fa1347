package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/yukikurage/release-planner/internal/constants"
	"github.com/yukikurage/release-planner/internal/models"
	"github.com/yukikurage/release-planner/internal/repository"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrUsernameTaken         = errors.New("username already exists")
	ErrInvalidCredentials    = errors.New("invalid username or password")
	ErrPasswordTooShort      = errors.New("password too short")
	ErrAccountNotFound       = errors.New("account not found")
	ErrFailedToHashPassword  = errors.New("failed to hash password")
	ErrFailedToCreateAccount = errors.New("failed to create account")
)

// AuthService handles authentication related business logic.
type AuthService struct {
	accountRepo repository.AccountRepository
}

// NewAuthService creates a new AuthService.
func NewAuthService(accountRepo repository.AccountRepository) *AuthService {
	return &AuthService{
		accountRepo: accountRepo,
	}
}

// SignupInput represents the required information to create a new account.
type SignupInput struct {
	Username string
	Password string
}

// Signup creates a new account.
func (s *AuthService) Signup(input SignupInput) (*models.Account, error) {
	username := strings.TrimSpace(input.Username)
	if username == "" {
		return nil, fmt.Errorf("%w: username is required", ErrInvalidInput)
	}
	if len(input.Password) < constants.MinPasswordLength {
		return nil, ErrPasswordTooShort
	}

	if _, err := s.accountRepo.FindByUsername(username); err == nil {
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, ErrFailedToHashPassword
	}

	account := &models.Account{
		Username:     username,
		PasswordHash: string(hashedPassword),
	}
	if err := s.accountRepo.Create(account); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFailedToCreateAccount, err)
	}

	return account, nil
}

// LoginInput holds the credentials for authentication.
type LoginInput struct {
	Username string
	Password string
}

// Login verifies credentials and returns the authenticated account.
func (s *AuthService) Login(input LoginInput) (*models.Account, error) {
	account, err := s.accountRepo.FindByUsername(strings.TrimSpace(input.Username))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find account: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(input.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return account, nil
}

// GetAccount retrieves an account by ID.
func (s *AuthService) GetAccount(id uint64) (*models.Account, error) {
	account, err := s.accountRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to find account: %w", err)
	}

	return account, nil
}
