package main

import (
	"course-view-go/internal/session"
	"github.com/dgrijalva/jwt-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestParseTokenUserIDClaim(t *testing.T) {
	s := &Server{jwtKey: testJWTKey}

	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": 42,
		"exp":     time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(testJWTKey))
	require.NoError(t, err)

	sess, err := s.parseToken(raw)
	require.NoError(t, err)
	assert.Equal(t, session.Session{UserID: "42", Token: raw}, sess)
}

func TestParseTokenRejects(t *testing.T) {
	s := &Server{jwtKey: testJWTKey}

	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": 42,
		"exp":     time.Now().Add(-time.Hour).Unix(),
	}).SignedString([]byte(testJWTKey))
	require.NoError(t, err)
	_, err = s.parseToken(expired)
	assert.Error(t, err)

	anonymous, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(testJWTKey))
	require.NoError(t, err)
	_, err = s.parseToken(anonymous)
	assert.Error(t, err)

	_, err = s.parseToken("not-a-jwt")
	assert.Error(t, err)
}

func TestAuthenticateWithoutHeaderIsNoSession(t *testing.T) {
	s := &Server{jwtKey: testJWTKey}

	var got session.Session
	handler := s.authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = session.FromContext(r.Context())
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/views/x", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, session.None, got)
}

func TestRecovererAndRequestID(t *testing.T) {
	handler := requestID(recoverer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "req-1")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "req-1", rec.Header().Get("X-Request-ID"))
}
