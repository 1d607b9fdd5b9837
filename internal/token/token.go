package token

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned for any token that fails verification:
// malformed, forged, expired, or missing a subject.
var ErrInvalidToken = errors.New("invalid or expired token")

// Claims is the claim set carried by every token the service mints.
// Role is empty on verification tokens, which keeps them unusable as
// bearer tokens. FileID is set only on scoped download tokens.
type Claims struct {
	Role   string `json:"role,omitempty"`
	FileID string `json:"file_id,omitempty"`
	jwt.RegisteredClaims
}

// Service mints and verifies compact HS256-signed tokens. It keeps no
// state beyond the signing secret; validity is signature plus expiry.
type Service struct {
	secret []byte
	now    func() time.Time
}

func NewService(secret string) *Service {
	return &Service{
		secret: []byte(secret),
		now:    time.Now,
	}
}

// Issue signs a token for the subject with expiry = now + ttl.
func (s *Service) Issue(subject, role, fileID string, ttl time.Duration) (string, error) {
	now := s.now()
	claims := Claims{
		Role:   role,
		FileID: fileID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Parse verifies signature and expiry and returns the claim set.
// Any failure collapses to ErrInvalidToken; callers never learn why a
// token was rejected.
func (s *Service) Parse(tokenString string) (Claims, error) {
	claims := Claims{}
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(func() time.Time { return s.now() }))
	if err != nil || !token.Valid {
		return Claims{}, ErrInvalidToken
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return Claims{}, ErrInvalidToken
	}
	return claims, nil
}
