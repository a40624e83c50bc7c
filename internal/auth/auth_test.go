package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var testConfig = Config{Secret: "test-secret", Issuer: "fitness.test", Audience: "fitness.api"}

func TestIssuedTokenParsesBack(t *testing.T) {
	issuer := NewIssuer(testConfig, time.Hour)

	token, expiresAt, err := issuer.Issue(42, "runner@example.com")
	require.NoError(t, err)
	require.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	claims, err := Parse(token, testConfig)
	require.NoError(t, err)
	require.Equal(t, "42", claims.Subject)
	require.Equal(t, "runner@example.com", claims.Email)

	owner, ok := claims.OwnerID()
	require.True(t, ok)
	require.Equal(t, int64(42), owner)
}

func TestParseRejectsForeignSecretAndAudience(t *testing.T) {
	token, _, err := NewIssuer(testConfig, time.Hour).Issue(1, "a@example.com")
	require.NoError(t, err)

	_, err = Parse(token, Config{Secret: "other", Issuer: testConfig.Issuer, Audience: testConfig.Audience})
	require.ErrorIs(t, err, ErrInvalidToken)

	_, err = Parse(token, Config{Secret: testConfig.Secret, Issuer: testConfig.Issuer, Audience: "someone-else"})
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseRejectsExpiredToken(t *testing.T) {
	issuer := NewIssuer(testConfig, time.Minute)
	issuer.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	token, _, err := issuer.Issue(1, "a@example.com")
	require.NoError(t, err)

	_, err = Parse(token, testConfig)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseRejectsEmptyToken(t *testing.T) {
	_, err := Parse("   ", testConfig)
	require.ErrorIs(t, err, ErrMissingToken)
}

func TestOwnerIDRejectsNonNumericSubject(t *testing.T) {
	for _, subject := range []string{"", "abc", "-3", "0"} {
		_, ok := (&Claims{Subject: subject}).OwnerID()
		require.Falsef(t, ok, "subject %q should not resolve", subject)
	}

	var nilClaims *Claims
	_, ok := nilClaims.OwnerID()
	require.False(t, ok)
}

func TestMiddlewareStoresClaimsOnContext(t *testing.T) {
	token, _, err := NewIssuer(testConfig, time.Hour).Issue(7, "seven@example.com")
	require.NoError(t, err)

	var seen *Claims
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = FromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/fitness/activities", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	NewMiddleware(testConfig, PublicPaths).Wrap(next).ServeHTTP(rr, req)

	require.Equal(t, http.StatusNoContent, rr.Code)
	require.NotNil(t, seen)
	require.Equal(t, "7", seen.Subject)
}

func TestMiddlewareRejectsMissingToken(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run without a token")
	})

	req := httptest.NewRequest(http.MethodGet, "/api/fitness/stats", nil)
	rr := httptest.NewRecorder()
	NewMiddleware(testConfig, PublicPaths).Wrap(next).ServeHTTP(rr, req)

	require.Equal(t, http.StatusUnauthorized, rr.Code)
	require.Contains(t, rr.Body.String(), UnauthorizedDetail)
}

func TestMiddlewareHidesTokenParseErrors(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run with a foreign token")
	})
	foreign := NewIssuer(Config{Secret: testConfig.Secret, Issuer: "someone-else", Audience: testConfig.Audience}, time.Hour)
	token, _, err := foreign.Issue(7, "runner@example.com")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/fitness/stats", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	NewMiddleware(testConfig, PublicPaths).Wrap(next).ServeHTTP(rr, req)

	require.Equal(t, http.StatusUnauthorized, rr.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	require.Equal(t, "unauthorized", body["type"])
	require.Equal(t, UnauthorizedDetail, body["detail"])
	require.NotContains(t, rr.Body.String(), "issuer")
}

func TestMiddlewareSkipsPublicPaths(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := NewMiddleware(testConfig, PublicPaths).Wrap(next)

	for _, path := range []string{"/healthz", "/metrics", "/api/fitness/status", "/auth/login"} {
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
		require.Equalf(t, http.StatusOK, rr.Code, "path %s", path)
	}
}
