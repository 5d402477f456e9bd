package service

import (
	"context"
	"fmt"
	"time"

	"github.com/bitfantasy/moldtrack/internal/config"
	"github.com/bitfantasy/moldtrack/internal/middleware"
	"github.com/bitfantasy/moldtrack/internal/workshop/entity"
	"github.com/bitfantasy/moldtrack/internal/workshop/repository"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// AuthService 认证服务
//
// 登录只凭用户编号，不设密码。刷新令牌的jti登记在Redis里，
// 刷新时轮换：旧jti作废，签发新的一对令牌。Redis不可用时退化为
// 只校验签名和有效期。
type AuthService struct {
	userRepo *repository.UserRepository
	rdb      *redis.Client
	cfg      *config.Config
}

// NewAuthService 创建认证服务
func NewAuthService(userRepo *repository.UserRepository, rdb *redis.Client, cfg *config.Config) *AuthService {
	return &AuthService{userRepo: userRepo, rdb: rdb, cfg: cfg}
}

// TokenPair 访问令牌+刷新令牌
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"` // 访问令牌有效期（秒）
}

// LoginResult 登录结果
type LoginResult struct {
	User  *entity.User `json:"user"`
	Token TokenPair    `json:"token"`
}

// Login 用户编号登录
func (s *AuthService) Login(ctx context.Context, code string) (*LoginResult, error) {
	user, err := s.userRepo.FindByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	pair, err := s.issueTokenPair(ctx, user)
	if err != nil {
		return nil, err
	}

	// 登录时间只是展示信息，更新失败不影响登录
	_ = s.userRepo.TouchLastLogin(ctx, user.ID, time.Now())

	return &LoginResult{User: user, Token: pair}, nil
}

// Refresh 刷新令牌轮换：旧refresh token作废，签发新的一对
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(refreshToken, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.cfg.JWT.Secret), nil
	})
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("%w: 刷新令牌无效", ErrValidation)
	}

	if s.rdb != nil {
		key := refreshKey(claims.ID)
		userID, err := s.rdb.Get(ctx, key).Result()
		if err == redis.Nil || (err == nil && userID != claims.Subject) {
			return nil, fmt.Errorf("%w: 刷新令牌已失效", ErrValidation)
		}
		if err != nil && err != redis.Nil {
			return nil, fmt.Errorf("校验刷新令牌失败: %w", err)
		}
		s.rdb.Del(ctx, key)
	}

	user, err := s.userRepo.FindByID(ctx, claims.Subject)
	if err != nil {
		return nil, err
	}

	pair, err := s.issueTokenPair(ctx, user)
	if err != nil {
		return nil, err
	}
	return &pair, nil
}

// Logout 注销：作废刷新令牌
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	if s.rdb == nil {
		return nil
	}
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(refreshToken, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(s.cfg.JWT.Secret), nil
	})
	if err != nil {
		return nil
	}
	return s.rdb.Del(ctx, refreshKey(claims.ID)).Err()
}

// GetCurrentUser 获取当前登录用户
func (s *AuthService) GetCurrentUser(ctx context.Context, userID string) (*entity.User, error) {
	return s.userRepo.FindByID(ctx, userID)
}

func (s *AuthService) issueTokenPair(ctx context.Context, user *entity.User) (TokenPair, error) {
	now := time.Now()
	accessExpire := s.cfg.JWT.AccessTokenExpire
	refreshExpire := s.cfg.JWT.RefreshTokenExpire

	accessClaims := middleware.JWTClaims{
		UserID:  user.ID,
		Code:    user.Code,
		Name:    user.Name,
		IsAdmin: user.IsAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.cfg.JWT.Issuer,
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(accessExpire)),
		},
	}
	accessToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, accessClaims).SignedString([]byte(s.cfg.JWT.Secret))
	if err != nil {
		return TokenPair{}, fmt.Errorf("签发访问令牌失败: %w", err)
	}

	jti := uuid.New().String()
	refreshClaims := jwt.RegisteredClaims{
		ID:        jti,
		Issuer:    s.cfg.JWT.Issuer,
		Subject:   user.ID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(refreshExpire)),
	}
	refreshToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, refreshClaims).SignedString([]byte(s.cfg.JWT.Secret))
	if err != nil {
		return TokenPair{}, fmt.Errorf("签发刷新令牌失败: %w", err)
	}

	if s.rdb != nil {
		if err := s.rdb.Set(ctx, refreshKey(jti), user.ID, refreshExpire).Err(); err != nil {
			return TokenPair{}, fmt.Errorf("登记刷新令牌失败: %w", err)
		}
	}

	return TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(accessExpire.Seconds()),
	}, nil
}

func refreshKey(jti string) string {
	return "moldtrack:refresh:" + jti
}
