package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/d60-Lab/anon-forum/internal/identity"
	"github.com/d60-Lab/anon-forum/internal/repository"
	"github.com/d60-Lab/anon-forum/pkg/logger"
	"github.com/d60-Lab/anon-forum/pkg/session"
)

// SessionService 身份网关：令牌与请求身份之间的映射，进程内不保存会话表
type SessionService interface {
	Login(ctx context.Context, userID uint) (*session.Issued, error)
	// Resolve 任何失败都解析为 Anonymous
	Resolve(ctx context.Context, token string) identity.Identity
	Logout(ctx context.Context, token string) error
}

type sessionService struct {
	tokens  *session.Manager
	revoker session.Revoker
	users   repository.UserRepository
}

func NewSessionService(tokens *session.Manager, revoker session.Revoker, users repository.UserRepository) SessionService {
	if revoker == nil {
		revoker = session.NopRevoker{}
	}
	return &sessionService{tokens: tokens, revoker: revoker, users: users}
}

func (s *sessionService) Login(ctx context.Context, userID uint) (*session.Issued, error) {
	return s.tokens.Issue(userID)
}

func (s *sessionService) Resolve(ctx context.Context, token string) identity.Identity {
	if token == "" {
		return identity.Anonymous
	}
	claims, err := s.tokens.Parse(token)
	if err != nil {
		logger.Debug("session token rejected", zap.Error(err))
		return identity.Anonymous
	}
	revoked, err := s.revoker.IsRevoked(ctx, claims.ID)
	if err != nil {
		logger.Warn("revocation lookup failed", zap.Error(err))
		return identity.Anonymous
	}
	if revoked {
		return identity.Anonymous
	}
	uid, err := claims.UserID()
	if err != nil {
		return identity.Anonymous
	}
	u, err := s.users.GetByID(ctx, uid)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			logger.Error("load session user failed", zap.Uint("user_id", uid), zap.Error(err))
		}
		return identity.Anonymous
	}
	return identity.Identity{UserID: u.ID, Username: u.Username, IsAdmin: u.IsAdmin}
}

func (s *sessionService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	claims, err := s.tokens.Parse(token)
	if err != nil {
		// 无效令牌本身已无法通过校验
		return nil
	}
	return s.revoker.Revoke(ctx, claims.ID, claims.ExpiresAt.Time)
}
