package tcgdex_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cardhub/internal/tcgdex"
)

// fakeCatalog serves n compact records for any species query and full
// detail records for ids not listed in failing.
type fakeCatalog struct {
	n       int
	failing map[string]bool

	indexQueries  atomic.Int32
	detailQueries atomic.Int32
	inFlight      atomic.Int32
	maxInFlight   atomic.Int32
}

func (f *fakeCatalog) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")

	if len(parts) == 2 && parts[1] == "cards" {
		f.indexQueries.Add(1)

		compact := make([]tcgdex.Card, 0, f.n)
		for i := 0; i < f.n; i++ {
			compact = append(compact, tcgdex.Card{
				ID:    fmt.Sprintf("sv1-%d", i),
				Name:  "Pikachu",
				Image: fmt.Sprintf("https://assets.example/%s/sv/sv1/%d", parts[0], i),
			})
		}
		_ = json.NewEncoder(w).Encode(compact)
		return
	}

	f.detailQueries.Add(1)

	cur := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		prev := f.maxInFlight.Load()
		if cur <= prev || f.maxInFlight.CompareAndSwap(prev, cur) {
			break
		}
	}
	time.Sleep(5 * time.Millisecond)

	id := parts[len(parts)-1]
	if f.failing[id] {
		http.Error(w, "boom", http.StatusInternalServerError)
		return
	}
	_ = json.NewEncoder(w).Encode(tcgdex.Card{
		ID:   id,
		Name: "Pikachu",
		Set: &tcgdex.Set{
			ID:        "sv1",
			Name:      "Scarlet & Violet",
			CardCount: &tcgdex.CardCount{Official: 198, Total: 258},
		},
	})
}

func TestBackfillFallsBackToCompactRecords(t *testing.T) {
	// Arrange
	const n = 6
	fake := &fakeCatalog{n: n, failing: map[string]bool{}}
	for i := 0; i < n-1; i++ {
		fake.failing[fmt.Sprintf("sv1-%d", i)] = true
	}
	srv := httptest.NewServer(fake)
	defer srv.Close()

	client := tcgdex.NewClient(srv.URL, 5*time.Second,
		tcgdex.WithRateLimit(1000, 100), tcgdex.WithDetailConcurrency(2))
	ctx := context.Background()

	// Act
	compact, err := client.CardsBySpecies(ctx, "en", 25)
	require.NoError(t, err)
	cards, failures := client.Backfill(ctx, "en", compact)

	// Assert
	assert.Equal(t, int32(1), fake.indexQueries.Load())
	assert.Equal(t, int32(n), fake.detailQueries.Load())
	require.Len(t, cards, n)
	assert.Len(t, failures, n-1)
	for i, c := range cards {
		assert.Equal(t, fmt.Sprintf("sv1-%d", i), c.ID)
	}
	assert.False(t, cards[0].HasSetDetail())
	assert.True(t, cards[n-1].HasSetDetail())
	assert.LessOrEqual(t, fake.maxInFlight.Load(), int32(2))
}

func TestCardsBySpeciesUsesLanguagePath(t *testing.T) {
	var gotPath, gotDex string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotDex = r.URL.Query().Get("dexId")
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	client := tcgdex.NewClient(srv.URL, 5*time.Second)
	cards, err := client.CardsBySpecies(context.Background(), "ja", 6)

	require.NoError(t, err)
	assert.Empty(t, cards)
	assert.Equal(t, "/ja/cards", gotPath)
	assert.Equal(t, "6", gotDex)
}

func TestStatusErrorOnNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client := tcgdex.NewClient(srv.URL, 5*time.Second)
	_, err := client.CardsByName(context.Background(), "en", "Missingno")

	var se *tcgdex.StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusNotFound, se.Code)
}
