package service

import (
	"context"
	"errors"
	"time"

	"github.com/modboard-next/internal/cache"
	"github.com/modboard-next/internal/config"
	"github.com/modboard-next/internal/models"
	"github.com/modboard-next/internal/store"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const defaultTokenExpireMinutes = 30

// AuthService 认证服务
type AuthService struct {
	cfg *config.Config
	db  store.Store
}

// NewAuthService 创建认证服务实例
func NewAuthService(cfg *config.Config, db store.Store) *AuthService {
	return &AuthService{
		cfg: cfg,
		db:  db,
	}
}

// HashPassword 使用 bcrypt 加密密码
func (s *AuthService) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword 验证密码
func (s *AuthService) VerifyPassword(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}

// JWTClaims JWT 声明
type JWTClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// GenerateToken 为管理员签发 Token，有效期自签发时刻起计
func (s *AuthService) GenerateToken(admin *models.Admin) (string, time.Time, error) {
	expireMinutes := defaultTokenExpireMinutes
	if s.cfg != nil && s.cfg.JWT.ExpireMinutes > 0 {
		expireMinutes = s.cfg.JWT.ExpireMinutes
	}
	now := time.Now()
	expiresAt := now.Add(time.Duration(expireMinutes) * time.Minute)

	claims := JWTClaims{
		Email: admin.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   admin.ID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.cfg.JWT.SecretKey))
	if err != nil {
		return "", time.Time{}, err
	}

	return tokenString, expiresAt, nil
}

// ParseToken 解析并校验 Token
// 过期、伪造、算法不符一律返回 ErrInvalidToken，不向调用方区分
func (s *AuthService) ParseToken(tokenString string) (*JWTClaims, error) {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	token, err := parser.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.cfg.JWT.SecretKey), nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}

	if claims, ok := token.Claims.(*JWTClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, ErrInvalidToken
}

// Login 管理员登录
// 邮箱不存在与密码错误返回同一错误，不暴露具体失败原因
func (s *AuthService) Login(email, password string) (*models.Admin, string, time.Time, error) {
	doc, err := s.db.FindOneByFilter(models.AdminCollection, store.Document{"email": email})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, "", time.Time{}, ErrInvalidCredentials
		}
		return nil, "", time.Time{}, err
	}

	hash, _ := doc["password"].(string)
	if s.VerifyPassword(hash, password) != nil {
		return nil, "", time.Time{}, ErrInvalidCredentials
	}

	admin := models.AdminFromDocument(doc)
	token, expiresAt, err := s.GenerateToken(&admin)
	if err != nil {
		return nil, "", time.Time{}, err
	}

	_ = cache.SetAdminAuthState(context.Background(), cache.BuildAdminAuthState(&admin))
	return &admin, token, expiresAt, nil
}
