package jwt

//go:generate go run go.uber.org/mock/mockgen -source=./jwt.go -destination=./mocks/jwt_mock.go -package=mocks

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"resort/config"
	"resort/shared/timezone"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken  = errors.New("invalid token")
	ErrExpiredToken  = errors.New("token has expired")
	ErrInvalidClaim  = errors.New("invalid token claim")
	ErrMissingBearer = errors.New("authorization header must use the Bearer scheme")
)

type TokenType string

const (
	SessionToken TokenType = "session"
	ResetToken   TokenType = "reset"
)

const (
	bearerScheme = "bearer"
	clockSkew    = 5 * time.Second
)

type Claims struct {
	UserID  string    `json:"userId"`
	Email   string    `json:"email"`
	Role    string    `json:"role,omitempty"`
	TokenID string    `json:"tokenId"`
	Type    TokenType `json:"type"`
	jwt.RegisteredClaims
}

// Token is a signed token together with the values needed to set a cookie or revoke it.
type Token struct {
	Value     string    `json:"token"`
	TokenID   string    `json:"-"`
	ExpiresAt time.Time `json:"expires_at"`
}

type JWT interface {
	GenerateToken(ctx context.Context, userID, email, role string, tokenType TokenType) (*Token, error)
	ValidateToken(ctx context.Context, tokenString string, tokenType TokenType) (*Claims, error)
}

type signing struct {
	secret []byte
	ttl    time.Duration
}

// Service signs session and password-reset tokens with separate HS256 secrets.
type Service struct {
	issuer string
	kinds  map[TokenType]signing
	parser *jwt.Parser
}

func New(cfg *config.Config) JWT {
	return &Service{
		issuer: cfg.App.Name,
		kinds: map[TokenType]signing{
			SessionToken: {secret: []byte(cfg.JWT.SessionSecret), ttl: time.Duration(cfg.JWT.SessionExpireMin) * time.Minute},
			ResetToken:   {secret: []byte(cfg.JWT.ResetSecret), ttl: time.Duration(cfg.JWT.ResetExpireMin) * time.Minute},
		},
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithIssuer(cfg.App.Name),
			jwt.WithExpirationRequired(),
			jwt.WithLeeway(clockSkew),
		),
	}
}

func (s *Service) GenerateToken(_ context.Context, userID, email, role string, tokenType TokenType) (*Token, error) {
	kind, ok := s.kinds[tokenType]
	if !ok {
		return nil, fmt.Errorf("unknown token type %q", tokenType)
	}

	issuedAt := timezone.Now()
	expiresAt := issuedAt.Add(kind.ttl)
	tokenID := uuid.NewString()

	claims := Claims{
		UserID:  userID,
		Email:   email,
		Role:    role,
		TokenID: tokenID,
		Type:    tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
			Issuer:    s.issuer,
			Subject:   userID,
			ID:        tokenID,
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(kind.secret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign %s token: %w", tokenType, err)
	}

	return &Token{Value: signed, TokenID: tokenID, ExpiresAt: expiresAt}, nil
}

// ValidateToken maps every parse failure to ErrExpiredToken or ErrInvalidToken so callers
// never leak parser details.
func (s *Service) ValidateToken(_ context.Context, tokenString string, tokenType TokenType) (*Claims, error) {
	kind, ok := s.kinds[tokenType]
	if !ok {
		return nil, fmt.Errorf("unknown token type %q", tokenType)
	}

	claims := &Claims{}

	_, err := s.parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return kind.secret, nil
	})

	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, ErrExpiredToken
	case err != nil:
		return nil, ErrInvalidToken
	case claims.Type != tokenType, claims.UserID == "", claims.TokenID == "":
		return nil, ErrInvalidClaim
	}

	return claims, nil
}

// ExtractTokenFromHeader returns the credentials of a "Bearer <token>" header. The scheme is
// matched case-insensitively.
func ExtractTokenFromHeader(authHeader string) (string, error) {
	scheme, token, found := strings.Cut(strings.TrimSpace(authHeader), " ")
	if !found || !strings.EqualFold(scheme, bearerScheme) {
		return "", ErrMissingBearer
	}

	token = strings.TrimSpace(token)
	if token == "" {
		return "", ErrMissingBearer
	}

	return token, nil
}
