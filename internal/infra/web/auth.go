package web

import (
	"errors"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ===== Session/JWT primitives =====

type AuthConfig struct {
	HMACSecret   []byte
	CookieName   string
	SecureCookie bool
	TTL          time.Duration
}

type AuthManager struct{ cfg AuthConfig }

func NewAuthManager(secret string, secure bool, ttl time.Duration) *AuthManager {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &AuthManager{cfg: AuthConfig{
		HMACSecret:   []byte(secret),
		CookieName:   "admin_session",
		SecureCookie: secure,
		TTL:          ttl,
	}}
}

type AdminClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Mint issues an admin session token and sets it as a cookie.
func (a *AuthManager) Mint(w http.ResponseWriter) (string, error) {
	if len(a.cfg.HMACSecret) == 0 {
		return "", errors.New("jwt secret not configured")
	}
	now := time.Now()
	claims := AdminClaims{
		Role: "admin",
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.cfg.TTL)),
			Subject:   "admin",
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(a.cfg.HMACSecret)
	if err != nil {
		return "", err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     a.cfg.CookieName,
		Value:    signed,
		Path:     "/",
		Expires:  now.Add(a.cfg.TTL),
		HttpOnly: true,
		Secure:   a.cfg.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	return signed, nil
}

// VerifyRequest checks the session cookie and returns nil when it carries a
// valid, unexpired admin token.
func (a *AuthManager) VerifyRequest(r *http.Request) error {
	if len(a.cfg.HMACSecret) == 0 {
		return errors.New("jwt secret not configured")
	}
	c, err := r.Cookie(a.cfg.CookieName)
	if err != nil {
		return err
	}
	var claims AdminClaims
	tok, err := jwt.ParseWithClaims(c.Value, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return a.cfg.HMACSecret, nil
	})
	if err != nil {
		return err
	}
	if !tok.Valid || claims.Role != "admin" {
		return errors.New("invalid session")
	}
	return nil
}
