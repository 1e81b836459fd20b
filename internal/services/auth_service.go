package services

import (
	"crypto/sha256"
	"crypto/subtle"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// CredentialVerifier decides whether a presented secret proves admin access.
type CredentialVerifier interface {
	Verify(secret string) bool
}

// AdminVerifier checks secrets against the configured admin password. The configured
// value may be plain text or a bcrypt hash.
type AdminVerifier struct {
	hash   []byte
	digest [sha256.Size]byte
	bcrypt bool
	empty  bool
}

// NewAdminVerifier creates a verifier for the configured admin password.
func NewAdminVerifier(configured string) *AdminVerifier {
	v := &AdminVerifier{empty: configured == ""}
	if isBcryptHash(configured) {
		v.bcrypt = true
		v.hash = []byte(configured)
		return v
	}
	v.digest = sha256.Sum256([]byte(configured))
	return v
}

// Verify compares in constant time. An unset admin password never matches.
func (v *AdminVerifier) Verify(secret string) bool {
	if v.empty {
		return false
	}
	if v.bcrypt {
		return bcrypt.CompareHashAndPassword(v.hash, []byte(secret)) == nil
	}
	d := sha256.Sum256([]byte(secret))
	return subtle.ConstantTimeCompare(d[:], v.digest[:]) == 1
}

func isBcryptHash(s string) bool {
	return strings.HasPrefix(s, "$2a$") || strings.HasPrefix(s, "$2b$") || strings.HasPrefix(s, "$2y$")
}

// Claims is the payload of a capability token.
type Claims struct {
	Authenticated bool `json:"authenticated"`
	jwt.RegisteredClaims
}

// IssuedToken is a signed capability token and its expiry.
type IssuedToken struct {
	Token     string
	ExpiresAt time.Time
}

// AuthService issues and validates capability tokens.
type AuthService struct {
	verifier  CredentialVerifier
	jwtSecret []byte
	tokenTTL  time.Duration
	now       func() time.Time
	parser    *jwt.Parser
}

// NewAuthService creates a new AuthService.
func NewAuthService(verifier CredentialVerifier, jwtSecret string, tokenTTL time.Duration) *AuthService {
	return &AuthService{
		verifier:  verifier,
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  tokenTTL,
		now:       time.Now,
		// Expiry is checked against s.now so the clock stays injectable.
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithoutClaimsValidation(),
		),
	}
}

// WithClock replaces the time source. Used by tests.
func (s *AuthService) WithClock(now func() time.Time) *AuthService {
	s.now = now
	return s
}

// TokenTTL returns how long issued tokens stay valid.
func (s *AuthService) TokenTTL() time.Duration {
	return s.tokenTTL
}

// Login verifies the admin secret and issues a token on success.
func (s *AuthService) Login(password string) (IssuedToken, error) {
	if !s.verifier.Verify(password) {
		return IssuedToken{}, ErrInvalidCredentials
	}
	return s.IssueToken()
}

// IssueToken signs a new token valid for at least the configured TTL.
// NumericDate carries whole seconds, so exp is rounded up rather than truncated.
func (s *AuthService) IssueToken() (IssuedToken, error) {
	now := s.now()
	exp := now.Add(s.tokenTTL)
	if whole := exp.Truncate(time.Second); whole.Before(exp) {
		exp = whole.Add(time.Second)
	}
	claims := Claims{
		Authenticated: true,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return IssuedToken{}, fmt.Errorf("failed to generate token: %w", err)
	}
	return IssuedToken{Token: signed, ExpiresAt: claims.ExpiresAt.Time}, nil
}

// ValidateToken checks presence, seal, expiry and the authenticated flag, in that order.
func (s *AuthService) ValidateToken(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, ErrUnauthenticated
	}

	claims := &Claims{}
	_, err := s.parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	})
	if err != nil {
		log.Printf("Token validation error: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if claims.ExpiresAt == nil {
		return nil, fmt.Errorf("%w: missing exp", ErrInvalidToken)
	}
	if !s.now().Before(claims.ExpiresAt.Time) {
		return nil, ErrTokenExpired
	}
	if !claims.Authenticated {
		return nil, ErrUnauthenticated
	}
	return claims, nil
}
