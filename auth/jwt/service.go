// Package jwt issues and verifies the signed bearer tokens that carry a
// session's claims. Tokens are stateless: validity is solely a function of
// signature and expiry.
package jwt

import (
	"errors"
	"fmt"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
)

// Verification failure kinds. The route guard collapses all of these to a
// single 401 for the caller; the distinction exists for logging.
var (
	// ErrMalformedToken indicates the input is not a well-formed token.
	ErrMalformedToken = errors.New("jwt: malformed token")
	// ErrExpiredToken indicates the token's expiry has passed.
	ErrExpiredToken = errors.New("jwt: token expired")
	// ErrInvalidToken indicates a bad signature or failed claim validation.
	ErrInvalidToken = errors.New("jwt: invalid token")
)

// Claims is the session claim set embedded in every issued token.
// Subject carries the account id.
type Claims struct {
	gojwt.RegisteredClaims
	Email string `json:"email"`
}

// Service provides token generation and verification for Claims.
type Service struct {
	cfg Config
}

// NewService creates a new JWT service. A missing secret is a configuration
// error surfaced here, at startup.
func NewService(cfg *Config) (*Service, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("jwt: %w", err)
	}
	return &Service{cfg: *cfg}, nil
}

// TTL returns the configured token lifetime.
func (s *Service) TTL() time.Duration {
	return s.cfg.AccessTokenTTL
}

// Generate creates a signed token for the given account with issued-at set to
// now and expiry set to now + the configured TTL.
func (s *Service) Generate(accountID, email string) (string, error) {
	now := time.Now()
	claims := &Claims{
		RegisteredClaims: gojwt.RegisteredClaims{
			Subject:   accountID,
			Issuer:    s.cfg.Issuer,
			IssuedAt:  gojwt.NewNumericDate(now),
			ExpiresAt: gojwt.NewNumericDate(now.Add(s.cfg.AccessTokenTTL)),
		},
		Email: email,
	}

	token := gojwt.NewWithClaims(gojwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.Secret))
	if err != nil {
		return "", fmt.Errorf("jwt: sign token: %w", err)
	}
	return signed, nil
}

// Parse verifies signature and expiry and returns the embedded claims.
// Failures are classified as ErrMalformedToken, ErrExpiredToken, or
// ErrInvalidToken.
func (s *Service) Parse(tokenString string) (*Claims, error) {
	claims := &Claims{}
	opts := []gojwt.ParserOption{
		gojwt.WithValidMethods([]string{gojwt.SigningMethodHS256.Alg()}),
	}
	if s.cfg.Issuer != "" {
		opts = append(opts, gojwt.WithIssuer(s.cfg.Issuer))
	}

	token, err := gojwt.ParseWithClaims(tokenString, claims, s.keyFunc, opts...)
	if err != nil {
		switch {
		case errors.Is(err, gojwt.ErrTokenMalformed):
			return nil, ErrMalformedToken
		case errors.Is(err, gojwt.ErrTokenExpired):
			return nil, ErrExpiredToken
		default:
			return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
		}
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// keyFunc is the jwt.Keyfunc used during token parsing.
func (s *Service) keyFunc(token *gojwt.Token) (interface{}, error) {
	if token.Method.Alg() != gojwt.SigningMethodHS256.Alg() {
		return nil, fmt.Errorf("jwt: unexpected signing method: %s", token.Method.Alg())
	}
	return []byte(s.cfg.Secret), nil
}
