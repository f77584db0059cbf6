package cards_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cardhub/internal/cards"
	"cardhub/pkg/database"
	"cardhub/pkg/database/dbtest"
	"cardhub/pkg/models"
)

func TestWatchReemitsAfterSearchStoresCards(t *testing.T) {
	repo := cards.NewRepo(dbtest.Open(t), database.NewNotifier())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stream := repo.Watch(ctx, "Pikachu")
	first := <-stream
	require.NoError(t, first.Err)
	assert.Empty(t, first.Value)

	require.NoError(t, repo.UpsertMany(ctx, []models.Card{
		{ID: "base1-58", Name: "Pikachu", Language: "en", Source: "tcgapi"},
		{ID: "base1-14", Name: "Raichu", Language: "en", Source: "tcgapi"},
	}))

	deadline := time.After(2 * time.Second)
	for {
		select {
		case snap := <-stream:
			require.NoError(t, snap.Err)
			if len(snap.Value) > 0 {
				require.Len(t, snap.Value, 1)
				assert.Equal(t, "base1-58", snap.Value[0].ID)
				return
			}
		case <-deadline:
			t.Fatal("no snapshot after upsert")
		}
	}
}
