// Package session 负责签发与校验会话令牌（HS256 JWT），并提供登出后的吊销存储。
package session

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var ErrInvalidToken = errors.New("invalid session token")

const issuer = "anon-forum"

// Claims 只携带用户 ID；管理员标记每次请求从库里读取
type Claims struct {
	jwt.RegisteredClaims
}

// UserID 解析 sub
func (c *Claims) UserID() (uint, error) {
	id, err := strconv.ParseUint(c.Subject, 10, 64)
	if err != nil || id == 0 {
		return 0, ErrInvalidToken
	}
	return uint(id), nil
}

// Issued 已签发的令牌
type Issued struct {
	Token     string
	ID        string
	ExpiresAt time.Time
}

// Manager 令牌编解码
type Manager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewManager(secret string, ttl time.Duration) *Manager {
	return &Manager{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// TTL 令牌有效期
func (m *Manager) TTL() time.Duration { return m.ttl }

// Issue 为用户签发新令牌
func (m *Manager) Issue(userID uint) (*Issued, error) {
	now := m.now()
	exp := now.Add(m.ttl)
	jti := uuid.NewString()
	claims := Claims{RegisteredClaims: jwt.RegisteredClaims{
		Issuer:    issuer,
		Subject:   strconv.FormatUint(uint64(userID), 10),
		ID:        jti,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	}}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	return &Issued{Token: signed, ID: jti, ExpiresAt: exp}, nil
}

// Parse 校验签名、签发方与过期时间
func (m *Manager) Parse(token string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.ID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
