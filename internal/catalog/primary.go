package catalog

import (
	"context"

	"go.uber.org/zap"

	"cardhub/internal/normalize"
	"cardhub/internal/tcgapi"
	"cardhub/pkg/models"
)

type PrimarySearcher interface {
	Search(ctx context.Context, p tcgapi.SearchParams) (*tcgapi.CardPage, error)
}

// PrimarySource queries the primary catalog by name prefix, or by exact name
// within a set. It has no language dimension.
type PrimarySource struct {
	client     PrimarySearcher
	normalizer *normalize.Normalizer
	pageSize   int
	maxPages   int
	logger     *zap.Logger
}

// DefaultMaxPages caps how many pages one unpaged query walks.
const DefaultMaxPages = 4

func NewPrimarySource(client PrimarySearcher, normalizer *normalize.Normalizer, pageSize, maxPages int, logger *zap.Logger) *PrimarySource {
	if pageSize <= 0 {
		pageSize = tcgapi.DefaultPageSize
	}
	if maxPages <= 0 {
		maxPages = DefaultMaxPages
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PrimarySource{
		client:     client,
		normalizer: normalizer,
		pageSize:   pageSize,
		maxPages:   maxPages,
		logger:     logger.Named("catalog").With(zap.String("catalog", normalize.SourcePrimary)),
	}
}

func (s *PrimarySource) Name() string { return normalize.SourcePrimary }

func (s *PrimarySource) FetchCards(ctx context.Context, q Query) Result {
	if q.Character == "" {
		return notAttempted(s.Name())
	}

	query := tcgapi.NameQuery(q.Character)
	if q.SetID != "" {
		query = tcgapi.NameInSetQuery(q.Character, q.SetID)
	}

	first, last := 1, s.maxPages
	if q.Page > 0 {
		first, last = q.Page, q.Page
	}

	var (
		cards   []models.Card
		total   int
		hasMore bool
		fetched int
	)
	for page := first; page <= last; page++ {
		res, err := s.client.Search(ctx, tcgapi.SearchParams{Query: query, Page: page, PageSize: s.pageSize})
		if err != nil {
			s.logger.Warn("catalog request failed",
				zap.String("character", q.Character),
				zap.Int("page", page),
				zap.String("kind", string(Classify(err))),
				zap.Error(err))
			return failed(s.Name(), err)
		}

		cards = append(cards, s.normalizer.PrimaryCards(res.Data, s.logSkip)...)
		total = res.TotalCount
		hasMore = res.HasMore()
		fetched = page
		if !hasMore {
			break
		}
	}

	s.logger.Debug("catalog fetch complete",
		zap.String("character", q.Character),
		zap.Int("cards", len(cards)),
		zap.Int("total", total),
		zap.Int("last_page", fetched))
	res := ok(s.Name(), cards, total, hasMore)
	res.LastPage = fetched
	return res
}

func (s *PrimarySource) logSkip(source, id, reason string) {
	s.logger.Info("skipping card record", zap.String("card_id", id), zap.String("reason", reason))
}
