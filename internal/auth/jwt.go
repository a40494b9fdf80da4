package auth

import (
	"errors"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type JWTConfig struct {
	Secret string
	Issuer string
	TTL    time.Duration
}

// JWTManager issues and verifies HS256 session tokens. sub carries the user
// id and jti the session id.
type JWTManager struct {
	cfg JWTConfig
	now func() time.Time
}

func NewJWTManager(cfg JWTConfig) *JWTManager {
	if cfg.TTL <= 0 {
		cfg.TTL = 24 * time.Hour
	}
	return &JWTManager{cfg: cfg, now: time.Now}
}

// Issue signs a token for userID. Used by dev tooling and tests.
func (m *JWTManager) Issue(userID string) (string, error) {
	if userID == "" {
		return "", errors.New("user id is empty")
	}

	now := m.now()
	claims := jwt.RegisteredClaims{
		Issuer:    m.cfg.Issuer,
		Subject:   userID,
		ID:        uuid.NewString(),
		ExpiresAt: jwt.NewNumericDate(now.Add(m.cfg.TTL)),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(m.cfg.Secret))
}

// Parse verifies the signature and time claims of tokenString
func (m *JWTManager) Parse(tokenString string) (Identity, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	}
	if m.cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(m.cfg.Issuer))
	}

	var claims jwt.RegisteredClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(m.cfg.Secret), nil
	}, opts...)
	if err != nil || !token.Valid {
		return Identity{}, ErrUnauthenticated
	}
	if claims.Subject == "" {
		return Identity{}, ErrUnauthenticated
	}

	return Identity{
		UserID:    claims.Subject,
		SessionID: claims.ID,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

func (m *JWTManager) Resolve(r *http.Request) (Identity, error) {
	token := tokenFromRequest(r)
	if token == "" {
		return Identity{}, ErrUnauthenticated
	}
	return m.Parse(token)
}
