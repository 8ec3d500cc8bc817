package token

import (
	"errors"
	"time"

	"viewtube/pkg/config"

	"github.com/golang-jwt/jwt/v5"
)

// Kind select which signing secret validates a token
type Kind string

const (
	// KindAccess short-lived bearer token (Authorization header)
	KindAccess Kind = "access"
	// KindRefresh long-lived token (http-only cookie)
	KindRefresh Kind = "refresh"
)

var (
	// ErrTokenExpired 簽名正確但已過期，access token 過期可走 refresh 流程
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenInvalid 簽名錯誤或格式不對，直接拒絕
	ErrTokenInvalid = errors.New("invalid token")
)

// Claims structure for custom claims in JWT
type Claims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

// Service issues and verifies access/refresh token pairs.
// access 與 refresh 使用不同 secret，驗證時互不相認
type Service struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	issuer        string
}

// NewService create a token Service from explicit config
func NewService(cfg config.TokenConfig, issuer string) *Service {
	accessTTL := cfg.AccessTTL
	if accessTTL == 0 {
		accessTTL = 15 * time.Minute
	}
	refreshTTL := cfg.RefreshTTL
	if refreshTTL == 0 {
		refreshTTL = 7 * 24 * time.Hour
	}

	return &Service{
		accessSecret:  []byte(cfg.AccessSecret),
		refreshSecret: []byte(cfg.RefreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
		issuer:        issuer,
	}
}

// AccessTTL access token lifetime
func (s *Service) AccessTTL() time.Duration {
	return s.accessTTL
}

// RefreshTTL refresh token lifetime (cookie max-age)
func (s *Service) RefreshTTL() time.Duration {
	return s.refreshTTL
}

// IssueAccessToken sign a short-lived access token for userID
func (s *Service) IssueAccessToken(userID string) (string, error) {
	return s.sign(userID, s.accessSecret, s.accessTTL)
}

// IssueRefreshToken sign a long-lived refresh token for userID
func (s *Service) IssueRefreshToken(userID string) (string, error) {
	return s.sign(userID, s.refreshSecret, s.refreshTTL)
}

func (s *Service) sign(userID string, secret []byte, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    s.issuer,
		},
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(secret)
}

// Verify validate signature and expiry against the secret configured for kind
func (s *Service) Verify(tokenStr string, kind Kind) (*Claims, error) {
	secret := s.accessSecret
	if kind == KindRefresh {
		secret = s.refreshSecret
	}

	t, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		// Check if the signing method is HMAC
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}
		return secret, nil
	})

	if err != nil {
		// 過期與無效是不同的失敗：前者 access token 可透過 refresh 換新
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}

	claims, ok := t.Claims.(*Claims)
	if !ok || !t.Valid {
		return nil, ErrTokenInvalid
	}

	return claims, nil
}
