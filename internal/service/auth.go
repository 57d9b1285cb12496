package service

import (
	"context"
	"errors"
	"time"

	"roombook/internal/metrics"
	"roombook/internal/repository"
	v1 "roombook/pkg/api/v1"
	"roombook/pkg/logger"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	Issuer = "roombook"

	tokenAccess  = "access"
	tokenRefresh = "refresh"
)

type AuthService struct {
	users           repository.UserInterface
	sessions        repository.SessionInterface
	observer        metrics.Observer
	signingKey      []byte
	accessTokenTTL  time.Duration
	refreshTokenTTL time.Duration
}

type UserClaims struct {
	UserID    uint64 `json:"uid"`
	Username  string `json:"name"`
	IsAdmin   bool   `json:"admin"`
	TokenType string `json:"typ"`
	jwt.RegisteredClaims
}

func NewAuthService(users repository.UserInterface, sessions repository.SessionInterface, observer metrics.Observer,
	signingKey string, accessTokenTTL, refreshTokenTTL time.Duration) *AuthService {
	return &AuthService{
		users:           users,
		sessions:        sessions,
		observer:        observer,
		signingKey:      []byte(signingKey),
		accessTokenTTL:  accessTokenTTL,
		refreshTokenTTL: refreshTokenTTL,
	}
}

// Login checks the password and issues a token pair.
func (s *AuthService) Login(ctx context.Context, req v1.LoginUser) (*v1.LoginUserVo, error) {
	user, err := s.users.FindByUsername(ctx, req.Username)
	if errors.Is(err, repository.ErrNotFound) {
		s.observer.RecordLogin(metrics.ResultRejected)
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		s.observer.RecordLogin(metrics.ResultError)
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)) != nil {
		s.observer.RecordLogin(metrics.ResultRejected)
		return nil, ErrInvalidCredentials
	}
	if user.IsFrozen {
		s.observer.RecordLogin(metrics.ResultRejected)
		return nil, ErrUserFrozen
	}

	access, refresh, err := s.generateTokens(ctx, user.ID, user.Username, user.IsAdmin)
	if err != nil {
		s.observer.RecordLogin(metrics.ResultError)
		return nil, err
	}

	s.observer.RecordLogin(metrics.ResultSuccess)
	return &v1.LoginUserVo{
		UserInfo:     toUserInfo(user),
		AccessToken:  access,
		RefreshToken: refresh,
	}, nil
}

// Refresh rotates the token pair. The presented refresh token must be the one
// last issued to its user.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*v1.RefreshToken, error) {
	claims, err := s.parse(refreshToken, tokenRefresh)
	if err != nil {
		s.observer.RecordRefresh(metrics.ResultRejected)
		return nil, ErrSessionExpired
	}

	stored, err := s.sessions.Get(ctx, claims.UserID)
	if errors.Is(err, repository.ErrNotFound) || (err == nil && stored != refreshToken) {
		s.observer.RecordRefresh(metrics.ResultRejected)
		return nil, ErrSessionExpired
	}
	if err != nil {
		s.observer.RecordRefresh(metrics.ResultError)
		return nil, err
	}

	user, err := s.users.FindByID(ctx, claims.UserID)
	if err != nil || user.IsFrozen {
		s.observer.RecordRefresh(metrics.ResultRejected)
		return nil, ErrSessionExpired
	}

	access, refresh, err := s.generateTokens(ctx, user.ID, user.Username, user.IsAdmin)
	if err != nil {
		s.observer.RecordRefresh(metrics.ResultError)
		return nil, err
	}

	s.observer.RecordRefresh(metrics.ResultSuccess)
	return &v1.RefreshToken{AccessToken: access, RefreshToken: refresh}, nil
}

// Authenticate verifies an access token.
func (s *AuthService) Authenticate(token string) (*OperatorInfo, error) {
	claims, err := s.parse(token, tokenAccess)
	if err != nil {
		return nil, err
	}
	return &OperatorInfo{UserID: claims.UserID, Username: claims.Username, IsAdmin: claims.IsAdmin}, nil
}

func (s *AuthService) parse(tokenString, tokenType string) (*UserClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &UserClaims{}, func(t *jwt.Token) (interface{}, error) {
		return s.signingKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithIssuer(Issuer))
	if err != nil {
		return nil, ErrTokenInvalid
	}

	claims, ok := token.Claims.(*UserClaims)
	if !ok || !token.Valid || claims.TokenType != tokenType {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

func (s *AuthService) generateTokens(ctx context.Context, userID uint64, username string, isAdmin bool) (string, string, error) {
	now := time.Now()
	claims := func(tokenType string, ttl time.Duration) UserClaims {
		return UserClaims{
			UserID:    userID,
			Username:  username,
			IsAdmin:   isAdmin,
			TokenType: tokenType,
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
				IssuedAt:  jwt.NewNumericDate(now),
				NotBefore: jwt.NewNumericDate(now),
				Issuer:    Issuer,
				ID:        uuid.New().String(),
			},
		}
	}

	accessToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims(tokenAccess, s.accessTokenTTL)).SignedString(s.signingKey)
	if err != nil {
		return "", "", err
	}
	refreshToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims(tokenRefresh, s.refreshTokenTTL)).SignedString(s.signingKey)
	if err != nil {
		return "", "", err
	}

	// Allow-list: a newer login or refresh invalidates the previous refresh token.
	if err := s.sessions.Save(ctx, userID, refreshToken, s.refreshTokenTTL); err != nil {
		return "", "", err
	}

	logger.Debug("issued token pair", zap.Uint64("user_id", userID))
	return accessToken, refreshToken, nil
}
