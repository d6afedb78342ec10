package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

// TokenService signs the HS256 bearer tokens that chat integrations present
// to the API. A token's subject names the integration, not a user.
type TokenService struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// IssuedToken is a signed token with the claims worth showing an operator.
type IssuedToken struct {
	Token     string    `json:"token"`
	ID        string    `json:"id"`
	ClientID  string    `json:"client_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

func NewTokenService(secret string, issuer string, ttl time.Duration) *TokenService {
	return &TokenService{
		secret: []byte(secret),
		issuer: issuer,
		ttl:    ttl,
		now:    time.Now,
	}
}

func (s *TokenService) WithClock(now func() time.Time) *TokenService {
	s.now = now
	return s
}

// Issue signs a token for clientID valid for the configured lifetime.
func (s *TokenService) Issue(clientID string) (*IssuedToken, error) {
	clientID = strings.TrimSpace(clientID)
	if clientID == "" {
		return nil, fmt.Errorf("token service: client id is required")
	}

	now := s.now()
	issued := &IssuedToken{
		ID:        uuid.NewString(),
		ClientID:  clientID,
		ExpiresAt: now.Add(s.ttl).Truncate(time.Second),
	}

	claims := jwt.RegisteredClaims{
		ID:        issued.ID,
		Subject:   clientID,
		Issuer:    s.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(issued.ExpiresAt),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("token service: sign: %w", err)
	}
	issued.Token = signed
	return issued, nil
}

func (s *TokenService) GenerateToken(clientID string) (string, error) {
	issued, err := s.Issue(clientID)
	if err != nil {
		return "", err
	}
	return issued.Token, nil
}

// ValidateToken returns the client a token was issued to. Only HS256 tokens
// from this issuer with an expiry are accepted.
func (s *TokenService) ValidateToken(token string) (string, error) {
	claims := &jwt.RegisteredClaims{}

	_, err := jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return "", ErrTokenExpired
	case err != nil:
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	case claims.Subject == "":
		return "", fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}

	return claims.Subject, nil
}
