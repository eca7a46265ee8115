// Package session issues and reads the "user" cookie. The cookie carries the
// session fields as a signed JWT so the client cannot edit roles or
// permissions; when a Store is configured each session id must also still be
// registered server-side, which makes logout effective before expiry.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

const CookieName = "user"

var (
	ErrNoSession      = errors.New("no session cookie")
	ErrInvalidSession = errors.New("invalid or expired session")
)

// Session is the logical content of the cookie.
type Session struct {
	UserID      uint      `json:"id"`
	Email       string    `json:"email"`
	Name        string    `json:"nombre"`
	Rut         string    `json:"rut"`
	Roles       []string  `json:"roles"`
	Permissions []string  `json:"permissions"`
	SessionID   string    `json:"-"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

// Claims is the JWT payload of the cookie.
type Claims struct {
	UserID      uint     `json:"id"`
	Email       string   `json:"email"`
	Name        string   `json:"nombre"`
	Rut         string   `json:"rut"`
	Roles       []string `json:"roles"`
	Permissions []string `json:"permissions"`
	jwt.RegisteredClaims
}

// Store keeps the set of live session ids.
type Store interface {
	Register(ctx context.Context, id string, ttl time.Duration) error
	Active(ctx context.Context, id string) (bool, error)
	Revoke(ctx context.Context, id string) error
}

type Manager struct {
	secret []byte
	ttl    time.Duration
	secure bool
	store  Store
	now    func() time.Time
}

// NewManager builds a session manager. store may be nil, in which case
// sessions are validated by signature and expiry only.
func NewManager(secret string, ttl time.Duration, secure bool, store Store) *Manager {
	return &Manager{
		secret: []byte(secret),
		ttl:    ttl,
		secure: secure,
		store:  store,
		now:    time.Now,
	}
}

func (m *Manager) Secret() []byte {
	return m.secret
}

func (m *Manager) TTL() time.Duration {
	return m.ttl
}

// Encode signs s, assigning a session id and expiry when missing.
func (m *Manager) Encode(s *Session) (string, error) {
	now := m.now()
	if s.SessionID == "" {
		s.SessionID = uuid.NewString()
	}
	if s.ExpiresAt.IsZero() {
		s.ExpiresAt = now.Add(m.ttl)
	}

	claims := Claims{
		UserID:      s.UserID,
		Email:       s.Email,
		Name:        s.Name,
		Rut:         s.Rut,
		Roles:       s.Roles,
		Permissions: s.Permissions,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        s.SessionID,
			Subject:   fmt.Sprint(s.UserID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(s.ExpiresAt),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

// Decode verifies a token and rebuilds the session from it.
func (m *Manager) Decode(ctx context.Context, token string) (*Session, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return m.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidSession
	}
	// jwt only rejects expired tokens against the wall clock.
	if claims.ExpiresAt == nil || !claims.ExpiresAt.Time.After(m.now()) {
		return nil, ErrInvalidSession
	}
	return m.FromClaims(ctx, claims)
}

// FromClaims converts already-verified claims into a session, checking the
// server-side registry when one is configured.
func (m *Manager) FromClaims(ctx context.Context, claims *Claims) (*Session, error) {
	if claims.ID == "" || claims.UserID == 0 {
		return nil, ErrInvalidSession
	}
	if m.store != nil {
		ok, err := m.store.Active(ctx, claims.ID)
		if err != nil {
			return nil, fmt.Errorf("session store: %w", err)
		}
		if !ok {
			return nil, ErrInvalidSession
		}
	}

	s := &Session{
		UserID:      claims.UserID,
		Email:       claims.Email,
		Name:        claims.Name,
		Rut:         claims.Rut,
		Roles:       claims.Roles,
		Permissions: claims.Permissions,
		SessionID:   claims.ID,
	}
	if claims.ExpiresAt != nil {
		s.ExpiresAt = claims.ExpiresAt.Time
	}
	return s, nil
}

// Issue signs s, registers it and sets the cookie on the response.
func (m *Manager) Issue(c *fiber.Ctx, s *Session) error {
	token, err := m.Encode(s)
	if err != nil {
		return err
	}
	if m.store != nil {
		if err := m.store.Register(c.UserContext(), s.SessionID, s.ExpiresAt.Sub(m.now())); err != nil {
			return fmt.Errorf("session store: %w", err)
		}
	}

	c.Cookie(&fiber.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		Expires:  s.ExpiresAt,
		HTTPOnly: true,
		Secure:   m.secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return nil
}

// Read returns the session carried by the request cookie.
func (m *Manager) Read(c *fiber.Ctx) (*Session, error) {
	token := c.Cookies(CookieName)
	if token == "" {
		return nil, ErrNoSession
	}
	return m.Decode(c.UserContext(), token)
}

// Destroy expires the cookie and revokes the session id. A request without a
// valid session still gets its cookie cleared.
func (m *Manager) Destroy(c *fiber.Ctx) error {
	var err error
	if s, readErr := m.Read(c); readErr == nil && m.store != nil {
		err = m.store.Revoke(c.UserContext(), s.SessionID)
	}

	c.Cookie(&fiber.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HTTPOnly: true,
		Secure:   m.secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return err
}
