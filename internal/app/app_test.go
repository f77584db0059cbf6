package app_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cardhub/internal/app"
	"cardhub/internal/config"
)

const primaryPage = `{
	"data": [
		{"id": "base1-58", "name": "Pikachu", "supertype": "Pokémon",
		 "set": {"id": "base1", "name": "Base", "series": "Base", "printedTotal": 102, "total": 102},
		 "images": {"small": "https://images.example/base1-58.png"}},
		{"id": "swsh4-43", "name": "Pikachu V", "supertype": "Pokémon",
		 "set": {"id": "swsh4", "name": "Vivid Voltage", "series": "Sword & Shield", "printedTotal": 185, "total": 203}}
	],
	"page": 1, "pageSize": 250, "count": 2, "totalCount": 2
}`

const secondaryList = `[
	{"id": "sv1-63", "localId": "63", "name": "Pikachu", "image": "https://assets.example/en/sv/sv1/63"},
	{"id": "sv3-62", "localId": "62", "name": "Pikachu ex"}
]`

func catalogServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.URL.Path == "/cards":
			_, _ = w.Write([]byte(primaryPage))
		case r.URL.Path == "/en/cards" && r.URL.Query().Get("dexId") == "25":
			_, _ = w.Write([]byte(secondaryList))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newApp(t *testing.T, catalogURL string) *app.App {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := config.Default()
	cfg.Database.Path = filepath.Join(t.TempDir(), "cardhub.db")
	cfg.Catalogs.Primary.BaseURL = catalogURL
	cfg.Catalogs.Secondary.BaseURL = catalogURL

	a, err := app.New(context.Background(), cfg, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	return a
}

func do(t *testing.T, h http.Handler, method, path, token string, body any) (int, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	out := map[string]any{}
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	}
	return rec.Code, out
}

func TestSearchOwnAndCompletionFlow(t *testing.T) {
	a := newApp(t, catalogServer(t).URL)
	router := a.Router()

	code, body := do(t, router, http.MethodPost, "/auth/login", "", map[string]string{"email": "ash@example.com"})
	require.Equal(t, http.StatusCreated, code)
	token, _ := body["token"].(string)
	require.NotEmpty(t, token)

	code, body = do(t, router, http.MethodGet, "/cards/search?name=Pikachu", "", nil)
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 4, body["total"])

	code, body = do(t, router, http.MethodPut, "/users/collection/base1-58/owned", token, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, body["owned"])

	code, body = do(t, router, http.MethodGet, "/users/favorites", token, nil)
	require.Equal(t, http.StatusOK, code)
	items, _ := body["items"].([]any)
	require.Len(t, items, 1)
	fav := items[0].(map[string]any)
	assert.Equal(t, "Pikachu", fav["name"])
	assert.EqualValues(t, 2, fav["total_cards"])
	assert.EqualValues(t, 1, fav["owned_cards"])
	assert.EqualValues(t, 50, fav["percentage"])
	assert.Equal(t, "https://images.example/base1-58.png", fav["image_url"])

	code, body = do(t, router, http.MethodGet, "/users/collection/completion", token, nil)
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 2, body["total_cards"])
	assert.EqualValues(t, 1, body["owned_cards"])

	code, _ = do(t, router, http.MethodGet, "/cards/sv1-63", "", nil)
	assert.Equal(t, http.StatusOK, code)
}

func TestSearchWithCatalogsDownReturnsRetryableError(t *testing.T) {
	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream timeout", http.StatusGatewayTimeout)
	}))
	defer down.Close()
	router := newApp(t, down.URL).Router()

	code, body := do(t, router, http.MethodGet, "/cards/search?name=Pikachu", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "slow", body["kind"])
	assert.Equal(t, true, body["retryable"])
}

func TestProtectedRoutesNeedToken(t *testing.T) {
	router := newApp(t, catalogServer(t).URL).Router()

	code, _ := do(t, router, http.MethodGet, "/users/collection", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	code, body := do(t, router, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", body["status"])
}

func TestSearchLaterPageOnlyAsksThePagingCatalog(t *testing.T) {
	router := newApp(t, catalogServer(t).URL).Router()

	code, _ := do(t, router, http.MethodGet, "/cards/search?name=Pikachu&page=0", "", nil)
	assert.Equal(t, http.StatusBadRequest, code)

	code, body := do(t, router, http.MethodGet, "/cards/search?name=Pikachu&page=2", "", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(2), body["total"])

	statuses := map[string]string{}
	for _, o := range body["outcomes"].([]any) {
		m := o.(map[string]any)
		statuses[m["source"].(string)] = m["status"].(string)
	}
	assert.Equal(t, "ok", statuses["tcgapi"])
	assert.Equal(t, "not_attempted", statuses["tcgdex"])
}
