package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/dukerupert/homebase/internal/model"
	"github.com/dukerupert/homebase/internal/store"
	"github.com/golang-jwt/jwt/v5"
)

// Resolver maps a bearer or cookie token to an identity. It returns nil,
// nil when the token is unknown, expired or not meant for it.
type Resolver interface {
	Resolve(ctx context.Context, token string) (*Identity, error)
}

// TokenFromRequest reads "Authorization: Bearer <token>", falling back to
// the named session cookie.
func TokenFromRequest(r *http.Request, cookieName string) (string, bool) {
	if header := r.Header.Get("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") && strings.TrimSpace(parts[1]) != "" {
			return strings.TrimSpace(parts[1]), true
		}
		return "", false
	}
	if cookieName == "" {
		return "", false
	}
	c, err := r.Cookie(cookieName)
	if err != nil || c.Value == "" {
		return "", false
	}
	return c.Value, true
}

// SessionResolver looks tokens up in the sessions table.
type SessionResolver struct {
	sessions *store.SessionStore
}

func NewSessionResolver(sessions *store.SessionStore) *SessionResolver {
	return &SessionResolver{sessions: sessions}
}

func (s *SessionResolver) Resolve(ctx context.Context, token string) (*Identity, error) {
	sess, err := s.sessions.GetByToken(ctx, token)
	if err != nil || sess == nil {
		return nil, err
	}
	return &Identity{UserID: sess.UserID, Method: "session"}, nil
}

// Claims are the provider's token claims. Subject is the user id.
type Claims struct {
	Name    string `json:"name,omitempty"`
	Email   string `json:"email,omitempty"`
	Picture string `json:"picture,omitempty"`
	// PhoneNumber is the E.164 number SMS reminders go to.
	PhoneNumber string `json:"phone_number,omitempty"`
	jwt.RegisteredClaims
}

// JWTResolver verifies HS256 tokens signed with the provider's shared
// secret and keeps the local user row in step with the claims.
type JWTResolver struct {
	secret []byte
	users  *store.UserStore
}

func NewJWTResolver(secret string, users *store.UserStore) *JWTResolver {
	return &JWTResolver{secret: []byte(secret), users: users}
}

func (j *JWTResolver) Resolve(ctx context.Context, token string) (*Identity, error) {
	if len(j.secret) == 0 || strings.Count(token, ".") != 2 {
		return nil, nil
	}
	claims, err := j.Parse(token)
	if err != nil {
		return nil, nil
	}

	u := model.User{ID: claims.Subject, Name: claims.Name, Email: claims.Email}
	if claims.Picture != "" {
		u.Image = &claims.Picture
	}
	if claims.PhoneNumber != "" {
		u.PhoneNumber = &claims.PhoneNumber
	}
	if u.Email == "" {
		u.Email = claims.Subject
	}
	if _, err := j.users.Upsert(ctx, u); err != nil {
		return nil, err
	}
	return &Identity{UserID: claims.Subject, Method: "jwt"}, nil
}

// Parse validates signature, expiry and subject.
func (j *JWTResolver) Parse(token string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return j.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.Subject == "" {
		return nil, errors.New("token has no subject")
	}
	return claims, nil
}

// Chain tries each resolver in order and returns the first identity.
type Chain []Resolver

func (c Chain) Resolve(ctx context.Context, token string) (*Identity, error) {
	for _, r := range c {
		id, err := r.Resolve(ctx, token)
		if err != nil {
			return nil, err
		}
		if id != nil {
			return id, nil
		}
	}
	return nil, nil
}
