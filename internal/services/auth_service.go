package services

import (
	"context"
	"errors"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/alexbto/stonks/internal/apperr"
	"github.com/alexbto/stonks/internal/models"
)

// AuthService defines the interface for registration and credential checks
type AuthService interface {
	Register(ctx context.Context, username, password, confirmation string) (models.User, error)
	Authenticate(ctx context.Context, username, password string) (models.User, error)
}

// authService implements the AuthService interface
type authService struct {
	db           *gorm.DB
	startingCash decimal.Decimal
}

// NewAuthService creates a new authentication service. New users are
// credited startingCash on registration.
func NewAuthService(db *gorm.DB, startingCash decimal.Decimal) AuthService {
	return &authService{
		db:           db,
		startingCash: startingCash,
	}
}

// Register validates the registration form, hashes the password and creates
// the user with the starting cash balance.
func (s *authService) Register(ctx context.Context, username, password, confirmation string) (models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return models.User{}, apperr.New(apperr.Validation, "must provide username")
	}
	if password == "" {
		return models.User{}, apperr.New(apperr.Validation, "must provide password")
	}
	if password != confirmation {
		return models.User{}, apperr.New(apperr.Validation, "passwords must match")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, err
	}

	user := models.User{
		Username:       username,
		HashedPassword: string(hashed),
		Cash:           s.startingCash,
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return models.User{}, apperr.Wrap(apperr.Validation, "username already taken", err)
		}
		return models.User{}, err
	}

	return user, nil
}

// Authenticate verifies user credentials and returns the user if valid. Every
// failure sub-condition collapses to the same message so a caller cannot
// distinguish unknown usernames from wrong passwords.
func (s *authService) Authenticate(ctx context.Context, username, password string) (models.User, error) {
	invalid := apperr.New(apperr.Auth, "invalid username and/or password")

	if username == "" || password == "" {
		return models.User{}, invalid
	}

	var user models.User
	result := s.db.WithContext(ctx).Where("username = ?", username).First(&user)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return models.User{}, invalid
		}
		return models.User{}, result.Error
	}

	// Check password
	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(password)); err != nil {
		return models.User{}, invalid
	}

	return user, nil
}
