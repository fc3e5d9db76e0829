package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dukerupert/homebase/internal/database"
	"github.com/dukerupert/homebase/internal/store"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func setupDB(t *testing.T) *database.DB {
	t.Helper()
	db, err := database.Open(database.SQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func sign(t *testing.T, secret string, claims Claims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return tok
}

func TestTokenFromRequest(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	r.Header.Set("Authorization", "Bearer abc")
	tok, ok := TokenFromRequest(r, "session")
	assert.True(t, ok)
	assert.Equal(t, "abc", tok)

	r = httptest.NewRequest("GET", "/", nil)
	r.Header.Set("Authorization", "Basic abc")
	_, ok = TokenFromRequest(r, "session")
	assert.False(t, ok)

	r = httptest.NewRequest("GET", "/", nil)
	r.AddCookie(&http.Cookie{Name: "session", Value: "cookie-token"})
	tok, ok = TokenFromRequest(r, "session")
	assert.True(t, ok)
	assert.Equal(t, "cookie-token", tok)

	r = httptest.NewRequest("GET", "/", nil)
	_, ok = TokenFromRequest(r, "session")
	assert.False(t, ok)
}

func TestSessionResolver(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	u, err := store.NewUserStore(db).Create(ctx, "a@example.com", "A")
	require.NoError(t, err)
	sess, err := store.NewSessionStore(db).Create(ctx, u.ID, time.Hour)
	require.NoError(t, err)

	r := NewSessionResolver(store.NewSessionStore(db))
	id, err := r.Resolve(ctx, sess.Token)
	require.NoError(t, err)
	require.NotNil(t, id)
	assert.Equal(t, u.ID, id.UserID)
	assert.Equal(t, "session", id.Method)

	id, err = r.Resolve(ctx, "unknown")
	require.NoError(t, err)
	assert.Nil(t, id)
}

func TestJWTResolverUpsertsUser(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	users := store.NewUserStore(db)
	r := NewJWTResolver(testSecret, users)

	tok := sign(t, testSecret, Claims{
		Name:  "Dana",
		Email: "dana@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-123",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	id, err := r.Resolve(ctx, tok)
	require.NoError(t, err)
	require.NotNil(t, id)
	assert.Equal(t, "user-123", id.UserID)

	u, err := users.GetByID(ctx, "user-123")
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, "Dana", u.Name)
	assert.Equal(t, "dana@example.com", u.Email)
	assert.Nil(t, u.PhoneNumber)
}

func TestJWTResolverPhoneClaim(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	users := store.NewUserStore(db)
	r := NewJWTResolver(testSecret, users)

	claims := Claims{
		Name:        "Dana",
		Email:       "dana@example.com",
		PhoneNumber: "+15550100",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-123",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	_, err := r.Resolve(ctx, sign(t, testSecret, claims))
	require.NoError(t, err)

	u, err := users.GetByID(ctx, "user-123")
	require.NoError(t, err)
	require.NotNil(t, u.PhoneNumber)
	assert.Equal(t, "+15550100", *u.PhoneNumber)

	// A later token without the claim keeps the number.
	claims.PhoneNumber = ""
	_, err = r.Resolve(ctx, sign(t, testSecret, claims))
	require.NoError(t, err)
	u, err = users.GetByID(ctx, "user-123")
	require.NoError(t, err)
	require.NotNil(t, u.PhoneNumber)
	assert.Equal(t, "+15550100", *u.PhoneNumber)
}

func TestJWTResolverRejects(t *testing.T) {
	db := setupDB(t)
	r := NewJWTResolver(testSecret, store.NewUserStore(db))
	ctx := context.Background()

	tests := []struct {
		name  string
		token string
	}{
		{"wrong secret", sign(t, "other", Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "u"}})},
		{"expired", sign(t, testSecret, Claims{RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "u",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		}})},
		{"no subject", sign(t, testSecret, Claims{Email: "x@example.com"})},
		{"not a jwt", "plain-session-token"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := r.Resolve(ctx, tt.token)
			require.NoError(t, err)
			assert.Nil(t, id)
		})
	}
}

func TestChainFallsThrough(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	u, err := store.NewUserStore(db).Create(ctx, "a@example.com", "A")
	require.NoError(t, err)
	sess, err := store.NewSessionStore(db).Create(ctx, u.ID, time.Hour)
	require.NoError(t, err)

	chain := Chain{
		NewJWTResolver(testSecret, store.NewUserStore(db)),
		NewSessionResolver(store.NewSessionStore(db)),
	}
	id, err := chain.Resolve(ctx, sess.Token)
	require.NoError(t, err)
	require.NotNil(t, id)
	assert.Equal(t, u.ID, id.UserID)

	id, err = chain.Resolve(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, id)
}
