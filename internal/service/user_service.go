package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/daniswara/kumpul-api/internal/dto"
	"github.com/daniswara/kumpul-api/internal/models"
	"github.com/daniswara/kumpul-api/internal/repository"
)

const tokenLifetime = 24 * time.Hour

// ErrInvalidCredentials indicates a failed login attempt.
var ErrInvalidCredentials = errors.New("invalid email or password")

// UserService handles registration, authentication, profile and settings.
type UserService interface {
	Register(ctx context.Context, payload dto.RegisterRequest) (dto.AuthResponse, error)
	Login(ctx context.Context, payload dto.LoginRequest) (dto.AuthResponse, error)
	Get(ctx context.Context, id uint) (dto.UserResponse, error)
	UpdateProfile(ctx context.Context, id uint, payload dto.ProfileUpdateRequest) (dto.UserResponse, error)
	UpdateSettings(ctx context.Context, id uint, payload dto.SettingsUpdateRequest) (dto.SettingsResponse, error)
	GetSettings(ctx context.Context, id uint) (dto.SettingsResponse, error)
	Suspend(ctx context.Context, id uint) error
	Reactivate(ctx context.Context, id uint) error
}

type userService struct {
	users     repository.UserRepository
	validator *validator.Validate
	jwtSecret []byte
	logger    zerolog.Logger
	now       func() time.Time
}

// NewUserService constructs the account service.
func NewUserService(users repository.UserRepository, validate *validator.Validate, jwtSecret string, logger zerolog.Logger) UserService {
	return &userService{
		users:     users,
		validator: validate,
		jwtSecret: []byte(jwtSecret),
		logger:    logger.With().Str("component", "user_service").Logger(),
		now:       time.Now,
	}
}

func (s *userService) Register(ctx context.Context, payload dto.RegisterRequest) (dto.AuthResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.AuthResponse{}, err
	}

	email := strings.ToLower(strings.TrimSpace(payload.Email))

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return dto.AuthResponse{}, ErrConflict
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.AuthResponse{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(payload.Password), bcrypt.DefaultCost)
	if err != nil {
		return dto.AuthResponse{}, err
	}

	user := models.User{
		Name:             strings.TrimSpace(payload.Name),
		Email:            email,
		PasswordHash:     string(hash),
		Role:             models.RoleUser,
		Status:           models.UserStatusActive,
		PushNewFollowers: true,
		PushMessages:     true,
		PushPostLikes:    true,
		PushPostComments: true,
		PushPostShares:   true,
		PushReports:      true,
	}

	if err := s.users.Create(ctx, &user); err != nil {
		return dto.AuthResponse{}, err
	}

	s.logger.Info().Uint("user_id", user.ID).Msg("user registered")

	return s.authResponse(user)
}

func (s *userService) Login(ctx context.Context, payload dto.LoginRequest) (dto.AuthResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.AuthResponse{}, err
	}

	user, err := s.users.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(payload.Email)))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AuthResponse{}, ErrInvalidCredentials
		}
		return dto.AuthResponse{}, err
	}

	if user.Status == models.UserStatusSuspended {
		return dto.AuthResponse{}, ErrForbidden
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(payload.Password)); err != nil {
		return dto.AuthResponse{}, ErrInvalidCredentials
	}

	return s.authResponse(user)
}

func (s *userService) Get(ctx context.Context, id uint) (dto.UserResponse, error) {
	user, err := s.findUser(ctx, id)
	if err != nil {
		return dto.UserResponse{}, err
	}
	return dto.NewUserResponse(user), nil
}

func (s *userService) UpdateProfile(ctx context.Context, id uint, payload dto.ProfileUpdateRequest) (dto.UserResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.UserResponse{}, err
	}

	user, err := s.findUser(ctx, id)
	if err != nil {
		return dto.UserResponse{}, err
	}

	if payload.Name != nil {
		user.Name = strings.TrimSpace(*payload.Name)
	}
	if payload.Bio != nil {
		user.Bio = *payload.Bio
	}
	if payload.AvatarURL != nil {
		user.AvatarURL = *payload.AvatarURL
	}
	if payload.Location != nil {
		user.Location = *payload.Location
	}

	if err := s.users.Update(ctx, &user); err != nil {
		return dto.UserResponse{}, err
	}

	return dto.NewUserResponse(user), nil
}

func (s *userService) UpdateSettings(ctx context.Context, id uint, payload dto.SettingsUpdateRequest) (dto.SettingsResponse, error) {
	user, err := s.findUser(ctx, id)
	if err != nil {
		return dto.SettingsResponse{}, err
	}

	if payload.PushNewFollowers != nil {
		user.PushNewFollowers = *payload.PushNewFollowers
	}
	if payload.PushMessages != nil {
		user.PushMessages = *payload.PushMessages
	}
	if payload.PushPostLikes != nil {
		user.PushPostLikes = *payload.PushPostLikes
	}
	if payload.PushPostComments != nil {
		user.PushPostComments = *payload.PushPostComments
	}
	if payload.PushPostShares != nil {
		user.PushPostShares = *payload.PushPostShares
	}
	if payload.PushReports != nil {
		user.PushReports = *payload.PushReports
	}
	if payload.PrivateProfile != nil {
		user.PrivateProfile = *payload.PrivateProfile
	}

	if err := s.users.Update(ctx, &user); err != nil {
		return dto.SettingsResponse{}, err
	}

	return dto.NewSettingsResponse(user), nil
}

func (s *userService) GetSettings(ctx context.Context, id uint) (dto.SettingsResponse, error) {
	user, err := s.findUser(ctx, id)
	if err != nil {
		return dto.SettingsResponse{}, err
	}
	return dto.NewSettingsResponse(user), nil
}

func (s *userService) Suspend(ctx context.Context, id uint) error {
	if _, err := s.findUser(ctx, id); err != nil {
		return err
	}
	return s.users.UpdateStatus(ctx, id, models.UserStatusSuspended)
}

func (s *userService) Reactivate(ctx context.Context, id uint) error {
	if _, err := s.findUser(ctx, id); err != nil {
		return err
	}
	return s.users.UpdateStatus(ctx, id, models.UserStatusActive)
}

func (s *userService) findUser(ctx context.Context, id uint) (models.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.User{}, ErrNotFound
		}
		return models.User{}, err
	}
	return user, nil
}

func (s *userService) authResponse(user models.User) (dto.AuthResponse, error) {
	now := s.now()
	claims := jwt.MapClaims{
		"sub":  user.ID,
		"role": string(user.Role),
		"iat":  now.Unix(),
		"exp":  now.Add(tokenLifetime).Unix(),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return dto.AuthResponse{}, err
	}

	return dto.AuthResponse{
		Token: token,
		User:  dto.NewUserResponse(user),
	}, nil
}
