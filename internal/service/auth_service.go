package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/d60-Lab/anon-forum/internal/model"
	"github.com/d60-Lab/anon-forum/internal/repository"
	"github.com/d60-Lab/anon-forum/pkg/logger"
)

const (
	// 与 users.username 列宽一致，按字符计
	maxUsernameChars = 50
	// bcrypt 只使用前 72 字节
	maxPasswordBytes = 72
)

// AuthService 凭据存储：注册、校验、管理员初始化
type AuthService interface {
	Register(ctx context.Context, username, password string) (*model.User, error)
	// Authenticate 用户不存在与密码错误返回同一个 ErrInvalidCredentials
	Authenticate(ctx context.Context, username, password string) (*model.User, error)
	// CreateAdmin 绕过公开注册，直接写入 is_admin=true 的用户
	CreateAdmin(ctx context.Context, username, password string) (*model.User, error)
	GetUser(ctx context.Context, id uint) (*model.User, error)
}

type authService struct {
	users repository.UserRepository
	cost  int
}

// NewAuthService cost<=0 时使用 bcrypt.DefaultCost
func NewAuthService(users repository.UserRepository, cost int) AuthService {
	if cost <= 0 {
		cost = bcrypt.DefaultCost
	}
	return &authService{users: users, cost: cost}
}

func (s *authService) Register(ctx context.Context, username, password string) (*model.User, error) {
	u, err := s.create(ctx, username, password, false)
	if err != nil {
		return nil, err
	}
	logger.Info("user registered", zap.Uint("user_id", u.ID), zap.String("username", u.Username))
	return u, nil
}

func (s *authService) CreateAdmin(ctx context.Context, username, password string) (*model.User, error) {
	u, err := s.create(ctx, username, password, true)
	if err != nil {
		return nil, err
	}
	logger.Info("admin seeded", zap.Uint("user_id", u.ID), zap.String("username", u.Username))
	return u, nil
}

func (s *authService) create(ctx context.Context, username, password string, admin bool) (*model.User, error) {
	if strings.TrimSpace(username) == "" || password == "" {
		return nil, ErrValidationEmpty
	}
	if utf8.RuneCountInString(username) > maxUsernameChars {
		return nil, ErrUsernameTooLong
	}
	if len(password) > maxPasswordBytes {
		return nil, ErrPasswordTooLong
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u := &model.User{Username: username, PasswordHash: string(hash), IsAdmin: admin}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrDuplicateUsername
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

func (s *authService) Authenticate(ctx context.Context, username, password string) (*model.User, error) {
	u, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("load user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

func (s *authService) GetUser(ctx context.Context, id uint) (*model.User, error) {
	return s.users.GetByID(ctx, id)
}
