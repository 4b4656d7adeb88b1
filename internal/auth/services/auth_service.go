package services

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/strmed/docfinder-backend/internal/doctor/models"
	"github.com/strmed/docfinder-backend/internal/doctor/repositories"
	"github.com/strmed/docfinder-backend/pkg/utils"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrAccountDisabled    = errors.New("account is disabled")
)

const tokenLifetime = 24 * time.Hour

// AuthService authenticates a caller against the users table and yields a
// role-tagged token. It is the in-process realization of the identity
// provider; there is no registration or profile management here.
type AuthService struct {
	Users  repositories.UserRepository
	Logger *logrus.Logger
}

func NewAuthService(users repositories.UserRepository, logger *logrus.Logger) *AuthService {
	return &AuthService{Users: users, Logger: logger}
}

// Login verifies the password and returns a signed JWT plus the account.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, *models.User, error) {
	user, err := s.Users.GetByUsername(ctx, username)
	if err != nil {
		if err == repositories.ErrNotFound {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}
	if !user.Active {
		return "", nil, ErrAccountDisabled
	}

	token, err := utils.GenerateJWTToken(user.ID, user.Role, user.Username, time.Now().Add(tokenLifetime))
	if err != nil {
		return "", nil, err
	}

	s.Logger.WithFields(logrus.Fields{
		"Function": "Login",
		"UserId":   user.ID,
		"Role":     user.Role,
	}).Info("User logged in")

	return token, user, nil
}
