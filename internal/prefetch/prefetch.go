// Package prefetch warms the local card store by searching every roster
// character that has no stored cards yet.
package prefetch

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"cardhub/internal/aggregator"
	"cardhub/internal/cards"
	"cardhub/internal/characters"
)

type Searcher interface {
	Search(ctx context.Context, req aggregator.Request) (*aggregator.Report, error)
}

type Stats struct {
	Cached  int `json:"cached"`
	Fetched int `json:"fetched"`
	Failed  int `json:"failed"`
}

func (s Stats) Total() int { return s.Cached + s.Fetched + s.Failed }

// Progress is called after each character with the running position.
type Progress func(done, total int, character string)

type Prefetcher struct {
	Characters *characters.Repo
	Cards      *cards.Repo
	Searcher   Searcher
	Language   string

	logger *zap.Logger
}

func New(chars *characters.Repo, cardRepo *cards.Repo, searcher Searcher, lang string, logger *zap.Logger) *Prefetcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	if lang == "" {
		lang = "en"
	}
	return &Prefetcher{
		Characters: chars,
		Cards:      cardRepo,
		Searcher:   searcher,
		Language:   lang,
		logger:     logger.Named("prefetch"),
	}
}

// Run walks the roster once. A failed character is counted and skipped;
// only storage errors and cancellation stop the walk.
func (p *Prefetcher) Run(ctx context.Context, progress Progress) (Stats, error) {
	var stats Stats

	roster, err := p.Characters.List(ctx, characters.SearchParams{})
	if err != nil {
		return stats, fmt.Errorf("load roster: %w", err)
	}

	for i, ch := range roster {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		n, err := p.Cards.CountByCharacter(ctx, ch.Name)
		if err != nil {
			return stats, err
		}

		switch {
		case n > 0:
			stats.Cached++
		default:
			rep, err := p.Searcher.Search(ctx, aggregator.Request{Character: ch.Name, Language: p.Language})
			if err != nil || rep.Degraded {
				stats.Failed++
				p.logger.Warn("prefetch failed", zap.String("character", ch.Name), zap.Error(err))
				break
			}
			stats.Fetched++
		}

		if progress != nil {
			progress(i+1, len(roster), ch.Name)
		}
	}

	p.logger.Info("prefetch complete",
		zap.Int("cached", stats.Cached),
		zap.Int("fetched", stats.Fetched),
		zap.Int("failed", stats.Failed))
	return stats, nil
}
