package aggregator_test

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cardhub/internal/aggregator"
	"cardhub/internal/cards"
	"cardhub/internal/catalog"
	"cardhub/internal/characters"
	"cardhub/pkg/database/dbtest"
	"cardhub/pkg/models"
)

type fakeSource struct {
	name string
	fn   func(ctx context.Context, q catalog.Query) catalog.Result

	mu      sync.Mutex
	queries []catalog.Query
}

func (f *fakeSource) Name() string { return f.name }

func (f *fakeSource) FetchCards(ctx context.Context, q catalog.Query) catalog.Result {
	f.mu.Lock()
	f.queries = append(f.queries, q)
	f.mu.Unlock()
	return f.fn(ctx, q)
}

func (f *fakeSource) lastQuery() catalog.Query {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.queries[len(f.queries)-1]
}

func returning(name string, cs ...models.Card) *fakeSource {
	return &fakeSource{name: name, fn: func(context.Context, catalog.Query) catalog.Result {
		return catalog.Result{Source: name, Status: catalog.StatusOK, Cards: cs, Total: len(cs)}
	}}
}

func failing(name string, err error) *fakeSource {
	return &fakeSource{name: name, fn: func(context.Context, catalog.Query) catalog.Result {
		return catalog.Result{Source: name, Status: catalog.StatusFailed, Err: err}
	}}
}

func card(id, name, source string) models.Card {
	return models.Card{ID: id, Name: name, Set: models.UnknownSet(), Language: "en", Source: source}
}

type fixture struct {
	cards *cards.Repo
	chars *characters.Repo
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	db := dbtest.Open(t)
	chars := characters.NewRepo(db, nil)
	_, err := chars.Seed(context.Background(), []characters.RosterEntry{
		{Name: "Pikachu", SpeciesIndex: 25},
		{Name: "Mew", SpeciesIndex: 151},
	})
	require.NoError(t, err)
	return fixture{cards: cards.NewRepo(db, nil), chars: chars}
}

func (f fixture) service(sources ...catalog.Source) *aggregator.Service {
	return aggregator.NewService(sources, f.cards, f.chars, 25, 0, nil)
}

func TestAllSourcesFailingReturnsEmptyAndKeepsLocalRows(t *testing.T) {
	// Arrange
	f := newFixture(t)
	ctx := context.Background()
	stored := card("base1-58", "Pikachu", "tcgapi")
	stored.Rarity = "Common"
	require.NoError(t, f.cards.Upsert(ctx, stored))

	offline := &net.DNSError{Err: "no such host", Name: "api.example"}
	svc := f.service(failing("tcgapi", offline), failing("tcgdex", context.DeadlineExceeded))

	// Act
	got, err := svc.SearchCharacterCards(ctx, "Pikachu", "en")
	rep, repErr := svc.Search(ctx, aggregator.Request{Character: "Pikachu"})

	// Assert
	require.NoError(t, err)
	assert.Empty(t, got)

	require.NoError(t, repErr)
	assert.True(t, rep.Degraded)
	assert.Equal(t, catalog.FailureOffline, rep.FailureKind)
	require.Len(t, rep.Cached, 1)

	after, err := f.cards.GetByID(ctx, "base1-58")
	require.NoError(t, err)
	require.NotNil(t, after)
	assert.Equal(t, "Common", after.Rarity)
	assert.Equal(t, "tcgapi", after.Source)
}

func TestMergeUnionsByIDInSourceOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first := card("b", "Pikachu", "tcgapi")
	first.Rarity = "Rare"
	primary := returning("tcgapi", card("a", "Pikachu", "tcgapi"), first)
	secondary := returning("tcgdex", card("b", "Pikachu", "tcgdex"), card("c", "Pikachu V", "tcgdex"))

	rep, err := f.service(primary, secondary).Search(ctx, aggregator.Request{Character: "Pikachu"})
	require.NoError(t, err)
	assert.False(t, rep.Degraded)

	ids := make([]string, len(rep.Cards))
	for i, c := range rep.Cards {
		ids[i] = c.ID
	}
	assert.Equal(t, []string{"a", "b", "c"}, ids)
	assert.Equal(t, "tcgapi", rep.Cards[1].Source)

	stored, err := f.cards.ListByIDs(ctx, ids)
	require.NoError(t, err)
	assert.Len(t, stored, 3)
}

func TestOneSourceFailingDoesNotBlockTheOther(t *testing.T) {
	f := newFixture(t)
	svc := f.service(failing("tcgapi", errors.New("boom")), returning("tcgdex", card("sv1-1", "Pikachu", "tcgdex")))

	rep, err := svc.Search(context.Background(), aggregator.Request{Character: "Pikachu", Language: "ja"})
	require.NoError(t, err)
	assert.False(t, rep.Degraded)
	require.Len(t, rep.Cards, 1)
	require.Len(t, rep.Outcomes, 2)
	assert.Equal(t, "failed", rep.Outcomes[0].Status)
	assert.Equal(t, catalog.FailureUnknown, rep.Outcomes[0].Kind)
	assert.Equal(t, "ok", rep.Outcomes[1].Status)
}

func TestSpeciesIndexFromRosterOrFallback(t *testing.T) {
	f := newFixture(t)
	src := returning("tcgdex")
	svc := f.service(src)
	ctx := context.Background()

	rep, err := svc.Search(ctx, aggregator.Request{Character: "Mew", Language: "fr"})
	require.NoError(t, err)
	assert.False(t, rep.IndexFallback)
	assert.Equal(t, catalog.Query{Character: "Mew", Language: "fr", SpeciesIndex: 151}, src.lastQuery())

	rep, err = svc.Search(ctx, aggregator.Request{Character: "Missingno"})
	require.NoError(t, err)
	assert.True(t, rep.IndexFallback)
	assert.Equal(t, 25, src.lastQuery().SpeciesIndex)
	assert.Equal(t, "en", src.lastQuery().Language)
}

func TestSearchCachesFirstImageOnCharacter(t *testing.T) {
	f := newFixture(t)
	noImage := card("a", "Mew", "tcgapi")
	withImage := card("b", "Mew", "tcgapi")
	withImage.Images.Small = "https://images.example/b.png"

	_, err := f.service(returning("tcgapi", noImage, withImage)).
		SearchCharacterCards(context.Background(), "Mew", "en")
	require.NoError(t, err)

	ch, err := f.chars.Get(context.Background(), "Mew")
	require.NoError(t, err)
	require.NotNil(t, ch)
	assert.Equal(t, "https://images.example/b.png", ch.ImageURL)
}

func TestSetScopedSearchIgnoresNotAttemptedSources(t *testing.T) {
	f := newFixture(t)
	skipped := &fakeSource{name: "tcgdex", fn: func(context.Context, catalog.Query) catalog.Result {
		return catalog.Result{Source: "tcgdex", Status: catalog.StatusNotAttempted}
	}}
	primary := returning("tcgapi", card("base1-58", "Pikachu", "tcgapi"))

	got, err := f.service(primary, skipped).SearchCharacterCardsInSet(context.Background(), "Pikachu", "base1")
	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Equal(t, "base1", primary.lastQuery().SetID)
}

func TestEmptyCharacterIsRejected(t *testing.T) {
	f := newFixture(t)
	_, err := f.service().Search(context.Background(), aggregator.Request{Character: "  "})
	assert.ErrorIs(t, err, aggregator.ErrEmptyCharacter)
}

func TestNewSearchSupersedesSameSession(t *testing.T) {
	f := newFixture(t)
	started := make(chan struct{})
	var calls int
	var mu sync.Mutex

	src := &fakeSource{name: "tcgapi", fn: func(ctx context.Context, q catalog.Query) catalog.Result {
		mu.Lock()
		calls++
		n := calls
		mu.Unlock()
		if n == 1 {
			close(started)
			<-ctx.Done()
			return catalog.Result{Source: "tcgapi", Status: catalog.StatusFailed, Err: ctx.Err()}
		}
		return catalog.Result{Source: "tcgapi", Status: catalog.StatusOK, Cards: []models.Card{card("x", q.Character, "tcgapi")}}
	}}
	svc := f.service(src)

	errc := make(chan error, 1)
	go func() {
		_, err := svc.Search(context.Background(), aggregator.Request{Character: "Pikachu", Session: "u1"})
		errc <- err
	}()
	<-started

	rep, err := svc.Search(context.Background(), aggregator.Request{Character: "Mew", Session: "u1"})
	require.NoError(t, err)
	require.Len(t, rep.Cards, 1)

	select {
	case err := <-errc:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("superseded search did not return")
	}
}

func TestTimeoutDegradesAsSlow(t *testing.T) {
	f := newFixture(t)
	slow := &fakeSource{name: "tcgapi", fn: func(ctx context.Context, q catalog.Query) catalog.Result {
		<-ctx.Done()
		return catalog.Result{Source: "tcgapi", Status: catalog.StatusFailed, Err: ctx.Err()}
	}}
	svc := aggregator.NewService([]catalog.Source{slow}, f.cards, f.chars, 25, 20*time.Millisecond, nil)

	rep, err := svc.Search(context.Background(), aggregator.Request{Character: "Pikachu"})
	require.NoError(t, err)
	assert.True(t, rep.Degraded)
	assert.Equal(t, catalog.FailureSlow, rep.FailureKind)
	assert.Empty(t, rep.Cached)
}

func TestNextPageComesFromThePagingSource(t *testing.T) {
	// Arrange
	f := newFixture(t)
	paged := &fakeSource{name: "tcgapi", fn: func(_ context.Context, q catalog.Query) catalog.Result {
		page := max(q.Page, 1)
		return catalog.Result{
			Source: "tcgapi", Status: catalog.StatusOK,
			Cards:    []models.Card{card(fmt.Sprintf("p-%d", page), "Pikachu", "tcgapi")},
			Total:    3,
			HasMore:  page < 3,
			LastPage: page,
		}
	}}
	svc := f.service(paged, returning("tcgdex"))
	ctx := context.Background()

	// Act
	first, err := svc.Search(ctx, aggregator.Request{Character: "Pikachu"})
	require.NoError(t, err)
	second, err := svc.Search(ctx, aggregator.Request{Character: "Pikachu", Page: first.NextPage})
	require.NoError(t, err)

	// Assert
	assert.True(t, first.HasMore)
	assert.Equal(t, 2, first.NextPage)
	assert.Equal(t, 2, paged.lastQuery().Page)
	require.Len(t, second.Cards, 1)
	assert.Equal(t, "p-2", second.Cards[0].ID)
	assert.Equal(t, 3, second.NextPage)
}
