package auth_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cardhub/internal/auth"
	"cardhub/pkg/database/dbtest"
)

func TestGetOrCreateByEmailIsIdempotent(t *testing.T) {
	repo := auth.NewRepo(dbtest.Open(t), nil)
	ctx := context.Background()

	first, created, err := repo.GetOrCreateByEmail(ctx, " Ash@Example.com ", "")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "ash@example.com", first.Email)
	assert.Equal(t, "ash", first.Username)

	second, created, err := repo.GetOrCreateByEmail(ctx, "ash@example.com", "someone else")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "ash", second.Username)
}

func TestTokenRoundTrip(t *testing.T) {
	ts := auth.TokenService{Secret: []byte("test-secret"), Issuer: "cardhub", Duration: time.Hour}
	repo := auth.NewRepo(dbtest.Open(t), nil)
	u, _, err := repo.GetOrCreateByEmail(context.Background(), "misty@example.com", "Misty")
	require.NoError(t, err)

	token, exp, err := ts.Sign(u)
	require.NoError(t, err)
	assert.True(t, exp.After(time.Now()))

	claims, err := ts.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, claims.UserID)
	assert.Equal(t, "Misty", claims.Username)

	other := auth.TokenService{Secret: []byte("test-secret"), Issuer: "elsewhere", Duration: time.Hour}
	_, err = other.Parse(token)
	assert.Error(t, err)
}

func TestLogoutInvalidatesToken(t *testing.T) {
	// Arrange
	gin.SetMode(gin.TestMode)
	ts := auth.TokenService{Secret: []byte("test-secret"), Issuer: "cardhub", Duration: time.Hour}
	repo := auth.NewRepo(dbtest.Open(t), nil)
	h := auth.NewHandler(repo, ts)

	r := gin.New()
	h.RegisterRoutes(r.Group("/auth"))
	users := r.Group("/users", auth.AuthMiddleware(ts, repo))
	h.RegisterUserRoutes(users)

	body, _ := json.Marshal(map[string]string{"email": "brock@example.com"})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader(body)))
	require.Equal(t, http.StatusCreated, w.Code)

	var login struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &login))

	do := func(method, path string) int {
		req := httptest.NewRequest(method, path, nil)
		req.Header.Set("Authorization", "Bearer "+login.Token)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	// Act / Assert
	assert.Equal(t, http.StatusOK, do(http.MethodGet, "/users/me"))
	assert.Equal(t, http.StatusOK, do(http.MethodPost, "/auth/logout"))
	assert.Equal(t, http.StatusUnauthorized, do(http.MethodGet, "/users/me"))
}

func TestLoginRejectsBadEmail(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := auth.NewRepo(dbtest.Open(t), nil)
	r := gin.New()
	auth.NewHandler(repo, auth.TokenService{Secret: []byte("x"), Issuer: "cardhub", Duration: time.Hour}).
		RegisterRoutes(r.Group("/auth"))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader([]byte(`{"email":"nope"}`))))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestEachTokenGetsItsOwnSession(t *testing.T) {
	ts := auth.TokenService{Secret: []byte("test-secret"), Issuer: "cardhub", Duration: time.Hour}
	repo := auth.NewRepo(dbtest.Open(t), nil)
	u, _, err := repo.GetOrCreateByEmail(context.Background(), "gary@example.com", "")
	require.NoError(t, err)

	a, _, err := ts.Sign(u)
	require.NoError(t, err)
	b, _, err := ts.Sign(u)
	require.NoError(t, err)

	ca, err := ts.Parse(a)
	require.NoError(t, err)
	cb, err := ts.Parse(b)
	require.NoError(t, err)

	assert.Equal(t, ca.UserID, cb.UserID)
	assert.NotEqual(t, ca.SessionID(), cb.SessionID())
}

func TestParseRejectsGarbage(t *testing.T) {
	ts := auth.TokenService{Secret: []byte("test-secret"), Issuer: "cardhub", Duration: time.Hour}

	_, err := ts.Parse("not.a.token")

	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}
