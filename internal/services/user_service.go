package services

import (
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	apperrors "quantifi/internal/errors"
	"quantifi/internal/models"
)

// userService handles user-related business logic.
type userService struct {
	db *gorm.DB
}

// NewUserService creates a new UserServicer.
func NewUserService(db *gorm.DB) UserServicer {
	return &userService{db: db}
}

// CreateUser registers a new user
func (s *userService) CreateUser(email, password, name, profileImageURL string) (*models.User, error) {
	// Validate input
	if email == "" || password == "" || name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "name, email and password are required")
	}

	// Check if user with email exists
	var count int64
	s.db.Model(&models.User{}).Where("email = ?", strings.ToLower(email)).Count(&count)
	if count > 0 {
		return nil, apperrors.ErrDuplicateEmail
	}

	// Hash password
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	// Create user
	user := &models.User{
		Email:           strings.ToLower(email),
		Password:        string(hashedPassword),
		Name:            name,
		ProfileImageURL: profileImageURL,
		IsActive:        true,
	}

	if err := s.db.Create(user).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return user, nil
}

// GetUserByEmail retrieves a user by email
func (s *userService) GetUserByEmail(email string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("email = ? AND is_active = ?", strings.ToLower(email), true).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &user, nil
}

// GetUserByID retrieves a user by ID
func (s *userService) GetUserByID(id uint) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &user, nil
}

// UpdateUser applies a partial profile update: name, email (with duplicate
// check), profile image, and password (after verifying the old one).
func (s *userService) UpdateUser(userID uint, fields UserUpdateFields) (*models.User, error) {
	user, err := s.GetUserByID(userID)
	if err != nil {
		return nil, err
	}

	if fields.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*fields.Email))
		if email == "" {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "email cannot be empty")
		}
		if email != user.Email {
			var count int64
			s.db.Model(&models.User{}).Where("email = ? AND id <> ?", email, userID).Count(&count)
			if count > 0 {
				return nil, apperrors.ErrDuplicateEmail
			}
			user.Email = email
		}
	}

	if fields.OldPassword != "" || fields.NewPassword != "" {
		if fields.OldPassword == "" || fields.NewPassword == "" {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "both oldPassword and newPassword are required to change the password")
		}
		if !s.VerifyPassword(user, fields.OldPassword) {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "Incorrect old password")
		}
		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(fields.NewPassword), bcrypt.DefaultCost)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		user.Password = string(hashedPassword)
	}

	if fields.Name != nil {
		name := strings.TrimSpace(*fields.Name)
		if name == "" {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "name cannot be empty")
		}
		user.Name = name
	}

	if fields.ProfileImageURL != nil {
		user.ProfileImageURL = *fields.ProfileImageURL
	}

	if err := s.db.Save(user).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return user, nil
}

// VerifyPassword checks if the provided password matches the stored hash
func (s *userService) VerifyPassword(user *models.User, password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password))
	return err == nil
}
