// Package catalog puts both external card catalogs behind one narrow
// interface so the aggregator can fan out over them without knowing either
// wire format.
package catalog

import (
	"context"

	"cardhub/pkg/models"
)

// Query names what to fetch. SpeciesIndex is zero when unknown; SetID
// restricts the search to one set where the catalog supports it. Page zero
// fetches from the start up to the source's page cap; a positive Page
// fetches that single page.
type Query struct {
	Character    string
	Language     string
	SpeciesIndex int
	SetID        string
	Page         int
}

// Source is one external catalog.
type Source interface {
	Name() string
	FetchCards(ctx context.Context, q Query) Result
}

type Status int

const (
	StatusNotAttempted Status = iota
	StatusOK
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusFailed:
		return "failed"
	default:
		return "not_attempted"
	}
}

// Result is the outcome of one FetchCards call. A failed call carries no
// cards and a non-nil Err; transport errors never escape as panics or as a
// separate return value.
type Result struct {
	Source  string
	Status  Status
	Cards   []models.Card
	Total   int
	HasMore bool
	// LastPage is the last page fetched by a paging source.
	LastPage int
	Err      error
}

func notAttempted(source string) Result {
	return Result{Source: source, Status: StatusNotAttempted}
}

func failed(source string, err error) Result {
	return Result{Source: source, Status: StatusFailed, Err: err}
}

func ok(source string, cards []models.Card, total int, hasMore bool) Result {
	if cards == nil {
		cards = []models.Card{}
	}
	return Result{Source: source, Status: StatusOK, Cards: cards, Total: total, HasMore: hasMore}
}
