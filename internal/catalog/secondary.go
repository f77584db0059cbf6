package catalog

import (
	"context"

	"go.uber.org/zap"

	"cardhub/internal/normalize"
	"cardhub/internal/tcgdex"
)

type SecondaryFetcher interface {
	CardsBySpecies(ctx context.Context, lang string, dexID int) ([]tcgdex.Card, error)
	CardsByName(ctx context.Context, lang, name string) ([]tcgdex.Card, error)
	Backfill(ctx context.Context, lang string, compact []tcgdex.Card) ([]tcgdex.Card, []tcgdex.DetailFailure)
}

// SecondarySource queries the secondary catalog by species index, then
// backfills set detail per card. Set-scoped queries are not supported, and
// the catalog lists everything at once, so pages after the first are
// not attempted.
type SecondarySource struct {
	client     SecondaryFetcher
	normalizer *normalize.Normalizer
	logger     *zap.Logger
}

func NewSecondarySource(client SecondaryFetcher, normalizer *normalize.Normalizer, logger *zap.Logger) *SecondarySource {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SecondarySource{
		client:     client,
		normalizer: normalizer,
		logger:     logger.Named("catalog").With(zap.String("catalog", normalize.SourceSecondary)),
	}
}

func (s *SecondarySource) Name() string { return normalize.SourceSecondary }

func (s *SecondarySource) FetchCards(ctx context.Context, q Query) Result {
	if q.SetID != "" || q.Page > 1 || (q.Character == "" && q.SpeciesIndex <= 0) {
		return notAttempted(s.Name())
	}
	lang := q.Language
	if lang == "" {
		lang = "en"
	}

	compact, err := s.list(ctx, lang, q)
	if err != nil {
		s.logger.Warn("catalog request failed",
			zap.String("character", q.Character),
			zap.String("language", lang),
			zap.String("kind", string(Classify(err))),
			zap.Error(err))
		return failed(s.Name(), err)
	}

	detailed, failures := s.client.Backfill(ctx, lang, needsDetail(compact))
	for _, f := range failures {
		s.logger.Info("detail fetch failed, keeping compact record",
			zap.String("card_id", f.CardID), zap.Error(f.Err))
	}
	merged := mergeDetail(compact, detailed)

	cards := s.normalizer.SecondaryCards(merged, lang, s.logSkip)
	return ok(s.Name(), cards, len(cards), false)
}

// Count returns how many records the catalog lists for a character,
// without fetching any detail.
func (s *SecondarySource) Count(ctx context.Context, q Query) (int, error) {
	lang := q.Language
	if lang == "" {
		lang = "en"
	}
	compact, err := s.list(ctx, lang, q)
	if err != nil {
		return 0, err
	}
	return len(compact), nil
}

func (s *SecondarySource) list(ctx context.Context, lang string, q Query) ([]tcgdex.Card, error) {
	if q.SpeciesIndex > 0 {
		return s.client.CardsBySpecies(ctx, lang, q.SpeciesIndex)
	}
	return s.client.CardsByName(ctx, lang, q.Character)
}

func (s *SecondarySource) logSkip(source, id, reason string) {
	s.logger.Info("skipping card record", zap.String("card_id", id), zap.String("reason", reason))
}

func needsDetail(compact []tcgdex.Card) []tcgdex.Card {
	out := make([]tcgdex.Card, 0, len(compact))
	for _, c := range compact {
		if !c.HasSetDetail() {
			out = append(out, c)
		}
	}
	return out
}

// mergeDetail swaps detailed records into the compact list by id, keeping
// compact order.
func mergeDetail(compact, detailed []tcgdex.Card) []tcgdex.Card {
	if len(detailed) == 0 {
		return compact
	}
	byID := make(map[string]tcgdex.Card, len(detailed))
	for _, d := range detailed {
		byID[d.ID] = d
	}
	out := make([]tcgdex.Card, len(compact))
	for i, c := range compact {
		if d, found := byID[c.ID]; found {
			out[i] = d
			continue
		}
		out[i] = c
	}
	return out
}
