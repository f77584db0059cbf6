// Package tcgdex is a client for the secondary card catalog, a TCGdex-style
// REST API keyed by language code and used for non-English data.
package tcgdex

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL           = "https://api.tcgdex.net/v2"
	DefaultDetailConcurrency = 8
	maxErrorBody             = 512
)

type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("tcgdex: status %d: %s", e.Code, e.Body)
}

func (e *StatusError) StatusCode() int { return e.Code }

type Client struct {
	baseURL           string
	httpClient        *http.Client
	rateLimiter       *rate.Limiter
	detailConcurrency int
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func WithRateLimit(requestsPerSecond float64, burst int) Option {
	return func(c *Client) { c.rateLimiter = rate.NewLimiter(rate.Limit(requestsPerSecond), burst) }
}

// WithDetailConcurrency caps in-flight detail requests during Backfill.
func WithDetailConcurrency(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.detailConcurrency = n
		}
	}
}

func NewClient(baseURL string, timeout time.Duration, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL:           strings.TrimRight(baseURL, "/"),
		httpClient:        &http.Client{Timeout: timeout},
		rateLimiter:       rate.NewLimiter(rate.Limit(20), 10),
		detailConcurrency: DefaultDetailConcurrency,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CardsBySpecies lists compact records for a national species index.
func (c *Client) CardsBySpecies(ctx context.Context, lang string, dexID int) ([]Card, error) {
	q := url.Values{}
	q.Set("dexId", strconv.Itoa(dexID))

	var cards []Card
	if err := c.get(ctx, "/"+url.PathEscape(lang)+"/cards?"+q.Encode(), &cards); err != nil {
		return nil, fmt.Errorf("cards by species %d (%s): %w", dexID, lang, err)
	}
	return cards, nil
}

// CardsByName lists compact records whose name matches. Matching across
// languages is unreliable; prefer CardsBySpecies.
func (c *Client) CardsByName(ctx context.Context, lang, name string) ([]Card, error) {
	q := url.Values{}
	q.Set("name", name)

	var cards []Card
	if err := c.get(ctx, "/"+url.PathEscape(lang)+"/cards?"+q.Encode(), &cards); err != nil {
		return nil, fmt.Errorf("cards by name %q (%s): %w", name, lang, err)
	}
	return cards, nil
}

// Card fetches the full record for one card.
func (c *Client) Card(ctx context.Context, lang, id string) (*Card, error) {
	var card Card
	if err := c.get(ctx, "/"+url.PathEscape(lang)+"/cards/"+url.PathEscape(id), &card); err != nil {
		return nil, fmt.Errorf("card %s (%s): %w", id, lang, err)
	}
	return &card, nil
}

// DetailFailure describes one detail fetch that fell back to its compact record.
type DetailFailure struct {
	CardID string
	Err    error
}

// Backfill replaces each compact record with its detail record. A failed
// fetch keeps the compact record, so the result always has len(compact)
// entries in the original order. At most the configured detail concurrency
// requests are in flight.
func (c *Client) Backfill(ctx context.Context, lang string, compact []Card) ([]Card, []DetailFailure) {
	out := make([]Card, len(compact))
	copy(out, compact)
	errs := make([]error, len(compact))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.detailConcurrency)
	for i := range compact {
		if compact[i].ID == "" {
			continue
		}
		g.Go(func() error {
			detail, err := c.Card(gctx, lang, compact[i].ID)
			if err != nil {
				errs[i] = err
				return nil
			}
			out[i] = *detail
			return nil
		})
	}
	_ = g.Wait()

	var failures []DetailFailure
	for i, err := range errs {
		if err != nil {
			failures = append(failures, DetailFailure{CardID: compact[i].ID, Err: err})
		}
	}
	return out, failures
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	return nil
}
