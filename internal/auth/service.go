package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const (
	accessTokenTTL  = 15 * time.Minute
	refreshTokenTTL = 7 * 24 * time.Hour

	ownerSubject = "owner"
	tokenAccess  = "access"
	tokenRefresh = "refresh"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenInvalid       = errors.New("token invalid")
)

// Service signs tokens for the single owner of the workout log. An empty
// password hash turns authentication off.
type Service struct {
	secret    []byte
	ownerHash []byte
}

type Claims struct {
	TokenType string `json:"typ"`
	jwt.RegisteredClaims
}

type LoginRequest struct {
	Password string `json:"password"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
}

func NewService(secret, ownerPasswordHash string) *Service {
	return &Service{
		secret:    []byte(secret),
		ownerHash: []byte(ownerPasswordHash),
	}
}

func (s *Service) Enabled() bool {
	return len(s.ownerHash) > 0
}

func (s *Service) Login(req LoginRequest) (TokenResponse, error) {
	if !s.Enabled() {
		return TokenResponse{}, errors.New("authentication disabled")
	}
	if err := bcrypt.CompareHashAndPassword(s.ownerHash, []byte(req.Password)); err != nil {
		return TokenResponse{}, ErrInvalidCredentials
	}
	return s.GenerateTokens()
}

func (s *Service) GenerateTokens() (TokenResponse, error) {
	access, err := s.signToken(tokenAccess, accessTokenTTL)
	if err != nil {
		return TokenResponse{}, err
	}
	refresh, err := s.signToken(tokenRefresh, refreshTokenTTL)
	if err != nil {
		return TokenResponse{}, err
	}
	return TokenResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
		ExpiresIn:    int64(accessTokenTTL.Seconds()),
	}, nil
}

func (s *Service) ValidateAccessToken(token string) (string, error) {
	return s.validate(token, tokenAccess)
}

func (s *Service) ValidateRefreshToken(token string) (string, error) {
	return s.validate(token, tokenRefresh)
}

func (s *Service) validate(token, typ string) (string, error) {
	claims, err := parseClaims(token, s.secret)
	if err != nil {
		return "", err
	}
	if claims.TokenType != typ {
		return "", ErrTokenInvalid
	}
	return claims.Subject, nil
}

func (s *Service) signToken(typ string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		TokenType: typ,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   ownerSubject,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

func parseClaims(token string, secret []byte) (*Claims, error) {
	parsed, err := parseClaimsFn(token, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}
		return secret, nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

var parseClaimsFn = jwt.ParseWithClaims
