package collection_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cardhub/internal/cards"
	"cardhub/internal/collection"
	"cardhub/pkg/database/dbtest"
	"cardhub/pkg/models"
)

func newRepo(t *testing.T) *collection.Repo {
	t.Helper()
	db := dbtest.Open(t)
	dbtest.SeedUser(t, db, "u1")
	return collection.NewRepo(db, cards.NewRepo(db, nil), nil)
}

func countRecords(t *testing.T, repo *collection.Repo, userID, cardID string) int {
	t.Helper()
	var n int
	require.NoError(t, repo.DB.QueryRow(
		`SELECT COUNT(*) FROM ownership WHERE user_id = ? AND card_id = ?`, userID, cardID).Scan(&n))
	return n
}

func TestMarkOwnedTwiceKeepsOneRecord(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.MarkOwned(ctx, "u1", "base1-58"))
	require.NoError(t, repo.MarkOwned(ctx, "u1", "base1-58"))

	assert.Equal(t, 1, countRecords(t, repo, "u1", "base1-58"))
	owned, err := repo.IsOwned(ctx, "u1", "base1-58")
	require.NoError(t, err)
	assert.True(t, owned)
}

func TestConcurrentMarkOwnedKeepsOneRecord(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, repo.MarkOwned(ctx, "u1", "sv1-25"))
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, countRecords(t, repo, "u1", "sv1-25"))
}

func TestMarkOwnedKeepsAttributes(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()
	price := 12.0

	require.NoError(t, repo.Upsert(ctx, models.OwnershipRecord{
		UserID: "u1", CardID: "c1", Owned: false,
		Condition: models.ConditionNearMint, Graded: true, GradingCompany: "PSA", Grade: "9",
		PurchasePrice: &price,
	}))
	require.NoError(t, repo.MarkOwned(ctx, "u1", "c1"))

	rec, err := repo.Get(ctx, "u1", "c1")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.True(t, rec.Owned)
	assert.Equal(t, models.ConditionNearMint, rec.Condition)
	assert.Equal(t, "PSA", rec.GradingCompany)
	require.NotNil(t, rec.PurchasePrice)
	assert.Equal(t, 12.0, *rec.PurchasePrice)
	assert.Nil(t, rec.CurrentPrice)
}

func TestMarkMissingAndOwnedCount(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.MarkOwned(ctx, "u1", "a"))
	require.NoError(t, repo.MarkOwned(ctx, "u1", "b"))
	require.NoError(t, repo.MarkMissing(ctx, "u1", "b"))
	require.NoError(t, repo.MarkMissing(ctx, "u1", "c"))

	n, err := repo.OwnedCount(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	owned := false
	missing, total, err := repo.List(ctx, "u1", collection.ListParams{Owned: &owned})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Len(t, missing, 2)
}

func TestListAttachesStoredCards(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()
	require.NoError(t, repo.Cards.Upsert(ctx, models.Card{ID: "base1-58", Name: "Pikachu", Language: "en", Source: "tcgapi"}))
	require.NoError(t, repo.MarkOwned(ctx, "u1", "base1-58"))
	require.NoError(t, repo.MarkOwned(ctx, "u1", "not-local"))

	items, total, err := repo.List(ctx, "u1", collection.ListParams{})
	require.NoError(t, err)
	assert.Equal(t, 2, total)

	byID := map[string]models.CollectionEntry{}
	for _, it := range items {
		byID[it.CardID] = it
	}
	require.NotNil(t, byID["base1-58"].Card)
	assert.Equal(t, "Pikachu", byID["base1-58"].Card.Name)
	assert.Nil(t, byID["not-local"].Card)
}

func TestDelete(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()
	require.NoError(t, repo.MarkOwned(ctx, "u1", "a"))

	ok, err := repo.Delete(ctx, "u1", "a")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.Delete(ctx, "u1", "a")
	require.NoError(t, err)
	assert.False(t, ok)
}
