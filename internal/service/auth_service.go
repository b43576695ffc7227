package service

import (
	"brainer_backend/internal/config"
	"brainer_backend/internal/model"
	"brainer_backend/internal/repository"
	"brainer_backend/internal/util"
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email,max=191"`
	Username string `json:"username" binding:"required,min=3,max=100"`
	Password string `json:"password" binding:"required,min=8,max=72"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type AuthService struct {
	UserRepo *repository.UserRepository
	Cfg      *config.Config
}

func NewAuthService(userRepo *repository.UserRepository, cfg *config.Config) *AuthService {
	return &AuthService{
		UserRepo: userRepo,
		Cfg:      cfg,
	}
}

func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*model.User, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	username := strings.TrimSpace(req.Username)

	exists, err := s.UserRepo.ExistsByEmailOrUsername(ctx, email, username)
	if err != nil {
		return nil, err
	}
	conflict := util.ConflictError("user", fmt.Sprintf("Email '%s' or username '%s' already registered", email, username))
	if exists {
		return nil, conflict
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	user := &model.User{
		Email:        email,
		Username:     username,
		PasswordHash: string(hashedPassword),
		IsActive:     true,
	}
	if err := s.UserRepo.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, conflict
		}
		return nil, err
	}
	return user, nil
}

// Login 校验密码；停用账户返回 403
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*TokenResponse, error) {
	invalid := util.UnauthorizedError("Invalid email or password")

	user, err := s.UserRepo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, invalid
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, invalid
	}
	if !user.IsActive {
		return nil, util.ForbiddenError("Account is inactive")
	}

	token, err := util.GenerateJWT(user, s.Cfg.JWT.Secret, s.Cfg.JWT.ExpireTime)
	if err != nil {
		return nil, err
	}
	return &TokenResponse{AccessToken: token, TokenType: util.TokenTypeBearer}, nil
}

// Authenticate resolves a bearer token to an active user.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*util.Claims, *model.User, error) {
	claims, err := util.ParseJWT(token, s.Cfg.JWT.Secret)
	if err != nil {
		return nil, nil, util.UnauthorizedError("Invalid or expired token")
	}
	user, err := s.UserRepo.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, util.UnauthorizedError("User not found or inactive")
		}
		return nil, nil, err
	}
	if !user.IsActive {
		return nil, nil, util.UnauthorizedError("User not found or inactive")
	}
	return claims, user, nil
}
