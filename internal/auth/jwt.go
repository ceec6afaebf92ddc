package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

var (
	// ErrMissingToken is returned when no bearer credential is presented.
	ErrMissingToken = errors.New("missing token")
	// ErrInvalidToken covers bad signatures, malformed tokens and expiry.
	ErrInvalidToken = errors.New("invalid or expired token")
)

type Claims struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// Manager issues and verifies stateless HS256 session tokens. Verification
// is a pure function of the token, the secret and the current time; there
// is no server-side session table and no revocation.
type Manager struct {
	secret   []byte
	userTTL  time.Duration
	adminTTL time.Duration
}

func NewManager(secret string, userTTL, adminTTL time.Duration) *Manager {
	return &Manager{
		secret:   []byte(secret),
		userTTL:  userTTL,
		adminTTL: adminTTL,
	}
}

// Issue signs a token for the given identity. Admin tokens get the admin
// TTL, everything else the user TTL.
func (m *Manager) Issue(email, name, role string) (string, error) {
	now := time.Now().UTC()

	ttl := m.userTTL

	if role == RoleAdmin {
		ttl = m.adminTTL
	}

	claims := Claims{
		Email: email,
		Name:  name,
		Role:  role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			Subject:   email,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	return token.SignedString(m.secret)
}

// Verify parses and validates a raw token string.
func (m *Manager) Verify(raw string) (*Claims, error) {
	if raw == "" {
		return nil, ErrMissingToken
	}

	token, err := jwt.ParseWithClaims(raw, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		// Enforce HS256

		_, ok := t.Method.(*jwt.SigningMethodHMAC)

		if !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.secret, nil
	})

	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)

	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
