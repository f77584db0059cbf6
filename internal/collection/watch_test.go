package collection_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cardhub/internal/auth"
	"cardhub/internal/cards"
	"cardhub/internal/collection"
	"cardhub/pkg/database"
	"cardhub/pkg/database/dbtest"
	"cardhub/pkg/models"
)

func newWatchedRepo(t *testing.T) *collection.Repo {
	t.Helper()
	db := dbtest.Open(t)
	dbtest.SeedUser(t, db, "u1")
	events := database.NewNotifier()
	return collection.NewRepo(db, cards.NewRepo(db, events), events)
}

func TestWatchReemitsAfterMarkOwned(t *testing.T) {
	repo := newWatchedRepo(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stream := repo.Watch(ctx, "u1")
	first := <-stream
	require.NoError(t, first.Err)
	assert.Empty(t, first.Value)

	require.NoError(t, repo.MarkOwned(ctx, "u1", "base1-58"))

	deadline := time.After(2 * time.Second)
	for {
		select {
		case snap := <-stream:
			require.NoError(t, snap.Err)
			if len(snap.Value) == 1 {
				assert.Equal(t, "base1-58", snap.Value[0].CardID)
				return
			}
		case <-deadline:
			t.Fatal("no snapshot after mark owned")
		}
	}
}

func TestWatchStreamsCollectionsLargerThanOnePage(t *testing.T) {
	// Arrange
	repo := newWatchedRepo(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tx, err := repo.DB.Begin()
	require.NoError(t, err)
	for i := 0; i < 600; i++ {
		_, err := tx.Exec(`INSERT INTO ownership (user_id, card_id, owned) VALUES ('u1', ?, 1)`, fmt.Sprintf("sv1-%d", i))
		require.NoError(t, err)
	}
	require.NoError(t, tx.Commit())

	// Act
	snap := <-repo.Watch(ctx, "u1")

	// Assert
	require.NoError(t, snap.Err)
	assert.Len(t, snap.Value, 600)
	n, err := repo.OwnedCount(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, n, len(snap.Value))
}

func TestCollectionStreamPushesOwnedEntries(t *testing.T) {
	// Arrange
	gin.SetMode(gin.TestMode)
	repo := newWatchedRepo(t)
	r := gin.New()
	users := r.Group("/users", func(c *gin.Context) {
		c.Set(auth.CtxClaimsKey, &auth.Claims{UserID: "u1"})
	})
	collection.NewHandler(repo, nil, nil).RegisterRoutes(users)
	srv := httptest.NewServer(r)
	defer srv.Close()

	ws, resp, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/users/collection/stream", nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusSwitchingProtocols, resp.StatusCode)
	defer ws.Close()

	var msg struct {
		Items []models.CollectionEntry `json:"items"`
	}
	_ = ws.SetReadDeadline(time.Now().Add(2 * time.Second))
	require.NoError(t, ws.ReadJSON(&msg))
	assert.Empty(t, msg.Items)

	// Act
	require.NoError(t, repo.MarkOwned(context.Background(), "u1", "base1-58"))

	// Assert
	_ = ws.SetReadDeadline(time.Now().Add(3 * time.Second))
	for {
		require.NoError(t, ws.ReadJSON(&msg))
		if len(msg.Items) == 1 {
			assert.Equal(t, "base1-58", msg.Items[0].CardID)
			return
		}
	}
}
