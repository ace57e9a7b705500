package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"anoa.com/coursemarket/internal/entity"
	"anoa.com/coursemarket/internal/modules/user/dto"
	"anoa.com/coursemarket/internal/modules/user/repository"
	"anoa.com/coursemarket/pkg/apperror"
	"anoa.com/coursemarket/pkg/token"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var ErrInvalidCredentials = fmt.Errorf("invalid email or password: %w", apperror.ErrUnauthorized)

type AuthService interface {
	SignUp(ctx context.Context, input dto.SignUpRequest) (*dto.AuthResponse, error)
	SignIn(ctx context.Context, input dto.SignInRequest) (*dto.AuthResponse, error)
}

type Options struct {
	AllowAdminSignup bool
	BcryptCost       int
}

type authService struct {
	repo   repository.UserRepository
	tokens *token.Manager
	opts   Options
	logger *slog.Logger
}

func NewAuthService(repo repository.UserRepository, tokens *token.Manager, opts Options, logger *slog.Logger) AuthService {
	if opts.BcryptCost == 0 {
		opts.BcryptCost = bcrypt.DefaultCost
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &authService{
		repo:   repo,
		tokens: tokens,
		opts:   opts,
		logger: logger,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *authService) SignUp(ctx context.Context, input dto.SignUpRequest) (*dto.AuthResponse, error) {
	role := input.Role
	if role == "" {
		role = entity.RoleStudent
	}
	if role == entity.RoleAdmin && !s.opts.AllowAdminSignup {
		return nil, fmt.Errorf("admin accounts cannot be created through sign-up: %w", apperror.ErrInvalidInput)
	}

	email := normalizeEmail(input.Email)
	if _, err := s.repo.FindByEmail(ctx, email); err == nil {
		return nil, fmt.Errorf("email is already registered: %w", apperror.ErrConflict)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), s.opts.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &entity.User{
		Name:         strings.TrimSpace(input.Name),
		Email:        email,
		PasswordHash: string(hashed),
		Role:         role,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		// lost a race with a concurrent sign-up
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("email is already registered: %w", apperror.ErrConflict)
		}
		return nil, err
	}

	s.logger.InfoContext(ctx, "user signed up", "user_id", user.ID, "role", user.Role)
	return s.buildAuthResponse(user)
}

func (s *authService) SignIn(ctx context.Context, input dto.SignInRequest) (*dto.AuthResponse, error) {
	user, err := s.repo.FindByEmail(ctx, normalizeEmail(input.Email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.buildAuthResponse(user)
}

func (s *authService) buildAuthResponse(user *entity.User) (*dto.AuthResponse, error) {
	signed, expiresAt, err := s.tokens.Issue(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, err
	}

	return &dto.AuthResponse{
		User:      dto.ToUserResponse(user),
		Token:     signed,
		ExpiresAt: expiresAt,
	}, nil
}
