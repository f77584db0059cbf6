// Package aggregator fans a character search out over every catalog source,
// merges the results and persists them before answering.
package aggregator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"cardhub/internal/cards"
	"cardhub/internal/catalog"
	"cardhub/internal/characters"
	"cardhub/pkg/models"
)

var ErrEmptyCharacter = errors.New("character name required")

// Request describes one search. Searches sharing a non-empty Session
// supersede each other: starting one cancels the previous in-flight one.
// Page zero is the first search; a positive Page loads that page of the
// paging catalogs, typically Report.NextPage of an earlier search.
type Request struct {
	Character string
	Language  string
	SetID     string
	Session   string
	Page      int
}

// Outcome summarizes what one source contributed.
type Outcome struct {
	Source  string              `json:"source"`
	Status  string              `json:"status"`
	Cards   int                 `json:"cards"`
	Total   int                 `json:"total,omitempty"`
	HasMore bool                `json:"has_more,omitempty"`
	Kind    catalog.FailureKind `json:"kind,omitempty"`
}

// Report is the full result of a search. When every attempted source
// failed, Degraded is set, Cards is empty and Cached holds what was
// already stored locally for the character.
type Report struct {
	Character     string              `json:"character"`
	SpeciesIndex  int                 `json:"species_index"`
	IndexFallback bool                `json:"index_fallback,omitempty"`
	Cards         []models.Card       `json:"cards"`
	Outcomes      []Outcome           `json:"outcomes"`
	HasMore       bool                `json:"has_more"`
	NextPage      int                 `json:"next_page,omitempty"`
	Degraded      bool                `json:"degraded"`
	FailureKind   catalog.FailureKind `json:"failure_kind,omitempty"`
	Cached        []models.Card       `json:"cached,omitempty"`
}

type Service struct {
	Sources    []catalog.Source
	Cards      *cards.Repo
	Characters *characters.Repo

	FallbackSpeciesIndex int
	// Timeout bounds the catalog fan-out; zero means no limit.
	Timeout time.Duration

	logger *zap.Logger

	mu       sync.Mutex
	sessions map[string]*session
}

type session struct {
	cancel context.CancelFunc
}

func NewService(sources []catalog.Source, cardRepo *cards.Repo, chars *characters.Repo,
	fallbackIndex int, timeout time.Duration, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		Sources:              sources,
		Cards:                cardRepo,
		Characters:           chars,
		FallbackSpeciesIndex: fallbackIndex,
		Timeout:              timeout,
		logger:               logger.Named("aggregator"),
		sessions:             make(map[string]*session),
	}
}

// SearchCharacterCards returns every card the catalogs know for a
// character in a language. Catalog failures yield an empty list.
func (s *Service) SearchCharacterCards(ctx context.Context, name, lang string) ([]models.Card, error) {
	rep, err := s.Search(ctx, Request{Character: name, Language: lang})
	if err != nil {
		return nil, err
	}
	return rep.Cards, nil
}

// SearchCharacterCardsInSet restricts the search to one set.
func (s *Service) SearchCharacterCardsInSet(ctx context.Context, name, setID string) ([]models.Card, error) {
	rep, err := s.Search(ctx, Request{Character: name, SetID: setID})
	if err != nil {
		return nil, err
	}
	return rep.Cards, nil
}

func (s *Service) Search(ctx context.Context, req Request) (*Report, error) {
	name := strings.TrimSpace(req.Character)
	if name == "" {
		return nil, ErrEmptyCharacter
	}
	lang := strings.ToLower(strings.TrimSpace(req.Language))
	if lang == "" {
		lang = "en"
	}

	ctx, done := s.begin(ctx, req.Session)
	defer done()

	idx, fallback, err := s.speciesIndex(ctx, name)
	if err != nil {
		return nil, err
	}
	if fallback {
		s.logger.Warn("species_index_fallback", zap.String("character", name), zap.Int("species_index", idx))
	}

	if req.Page < 0 {
		req.Page = 0
	}
	q := catalog.Query{Character: name, Language: lang, SpeciesIndex: idx, SetID: req.SetID, Page: req.Page}
	results := s.fanOut(ctx, q)
	if errors.Is(ctx.Err(), context.Canceled) {
		return nil, fmt.Errorf("search %s: %w", name, ctx.Err())
	}

	rep := &Report{
		Character:     name,
		SpeciesIndex:  idx,
		IndexFallback: fallback,
		Cards:         merge(results),
		Outcomes:      outcomes(results),
	}
	for _, r := range results {
		if r.HasMore {
			rep.HasMore = true
			rep.NextPage = max(rep.NextPage, r.LastPage+1)
		}
	}

	if allFailed(results) {
		rep.Degraded = true
		rep.FailureKind = catalog.ClassifyResults(results)
		cached, err := s.Cards.ListByCharacter(ctx, name, req.SetID)
		if err != nil {
			return nil, fmt.Errorf("read cached cards: %w", err)
		}
		rep.Cached = cached
		s.logger.Warn("all catalogs failed",
			zap.String("character", name),
			zap.String("kind", string(rep.FailureKind)),
			zap.Int("cached", len(cached)))
		return rep, nil
	}

	if err := s.Cards.UpsertMany(ctx, rep.Cards); err != nil {
		return nil, fmt.Errorf("persist %d cards for %s: %w", len(rep.Cards), name, err)
	}
	s.cacheImage(ctx, name, rep.Cards)

	s.logger.Info("search complete",
		zap.String("character", name),
		zap.String("language", lang),
		zap.String("set_id", req.SetID),
		zap.Int("page", req.Page),
		zap.Int("cards", len(rep.Cards)))
	return rep, nil
}

// begin registers the search under its session, cancelling any search it
// supersedes. The returned func releases the registration.
func (s *Service) begin(ctx context.Context, key string) (context.Context, func()) {
	ctx, cancel := context.WithCancel(ctx)
	if key == "" {
		return ctx, cancel
	}

	cur := &session{cancel: cancel}
	s.mu.Lock()
	if prev, ok := s.sessions[key]; ok {
		prev.cancel()
	}
	s.sessions[key] = cur
	s.mu.Unlock()

	return ctx, func() {
		s.mu.Lock()
		if s.sessions[key] == cur {
			delete(s.sessions, key)
		}
		s.mu.Unlock()
		cancel()
	}
}

func (s *Service) speciesIndex(ctx context.Context, name string) (int, bool, error) {
	if s.Characters == nil {
		return s.FallbackSpeciesIndex, true, nil
	}
	idx, fallback, err := s.Characters.IndexOrDefault(ctx, name, s.FallbackSpeciesIndex)
	if err != nil {
		return 0, false, fmt.Errorf("resolve species index: %w", err)
	}
	return idx, fallback, nil
}

// fanOut queries every source concurrently. A source never fails the
// group; its failure stays in its Result.
func (s *Service) fanOut(ctx context.Context, q catalog.Query) []catalog.Result {
	fetchCtx := ctx
	if s.Timeout > 0 {
		var cancel context.CancelFunc
		fetchCtx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}

	results := make([]catalog.Result, len(s.Sources))
	var g errgroup.Group
	for i, src := range s.Sources {
		g.Go(func() error {
			results[i] = src.FetchCards(fetchCtx, q)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func (s *Service) cacheImage(ctx context.Context, name string, cs []models.Card) {
	if s.Characters == nil {
		return
	}
	for _, c := range cs {
		if c.Images.Small == "" {
			continue
		}
		if err := s.Characters.UpdateImage(ctx, name, c.Images.Small); err != nil {
			s.logger.Warn("cache character image", zap.String("character", name), zap.Error(err))
		}
		return
	}
}

// merge unions results by card id in source order. Cards that the two
// catalogs issue under different ids are both kept.
func merge(results []catalog.Result) []models.Card {
	seen := make(map[string]struct{})
	out := make([]models.Card, 0)
	for _, r := range results {
		for _, c := range r.Cards {
			if _, dup := seen[c.ID]; dup {
				continue
			}
			seen[c.ID] = struct{}{}
			out = append(out, c)
		}
	}
	return out
}

func outcomes(results []catalog.Result) []Outcome {
	out := make([]Outcome, len(results))
	for i, r := range results {
		out[i] = Outcome{
			Source:  r.Source,
			Status:  r.Status.String(),
			Cards:   len(r.Cards),
			Total:   r.Total,
			HasMore: r.HasMore,
			Kind:    catalog.Classify(r.Err),
		}
	}
	return out
}

// allFailed is true when at least one source was attempted and none
// succeeded.
func allFailed(results []catalog.Result) bool {
	attempted := 0
	for _, r := range results {
		switch r.Status {
		case catalog.StatusOK:
			return false
		case catalog.StatusFailed:
			attempted++
		}
	}
	return attempted > 0
}
