package wishlist

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"cardhub/internal/cards"
	"cardhub/pkg/database"
	"cardhub/pkg/models"
)

type Repo struct {
	DB     *sql.DB
	Cards  *cards.Repo
	Events *database.Notifier
}

func NewRepo(db *sql.DB, cardRepo *cards.Repo, events *database.Notifier) *Repo {
	return &Repo{DB: db, Cards: cardRepo, Events: events}
}

// Add is idempotent; re-adding a card keeps the original created_at.
func (r *Repo) Add(ctx context.Context, userID, cardID string) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO wishlist (user_id, card_id)
		VALUES (?, ?)
		ON CONFLICT(user_id, card_id) DO NOTHING
	`, userID, cardID)
	if err != nil {
		return fmt.Errorf("add wishlist: %w", err)
	}
	r.Events.Publish(database.TableWishlist)
	return nil
}

func (r *Repo) Remove(ctx context.Context, userID, cardID string) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `
		DELETE FROM wishlist WHERE user_id = ? AND card_id = ?
	`, userID, cardID)
	if err != nil {
		return false, fmt.Errorf("remove wishlist: %w", err)
	}
	n, _ := res.RowsAffected()
	if n > 0 {
		r.Events.Publish(database.TableWishlist)
	}
	return n > 0, nil
}

func (r *Repo) Contains(ctx context.Context, userID, cardID string) (bool, error) {
	var one int
	err := r.DB.QueryRowContext(ctx, `
		SELECT 1 FROM wishlist WHERE user_id = ? AND card_id = ?
	`, userID, cardID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("wishlist contains: %w", err)
	}
	return true, nil
}

// ListWithCards returns the wishlist newest first, each entry carrying its
// card when it is stored locally.
func (r *Repo) ListWithCards(ctx context.Context, userID string) ([]models.WishlistRecord, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT user_id, card_id, created_at
		FROM wishlist
		WHERE user_id = ?
		ORDER BY created_at DESC, card_id
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list wishlist: %w", err)
	}
	defer rows.Close()

	out := []models.WishlistRecord{}
	var ids []string
	for rows.Next() {
		var (
			w       models.WishlistRecord
			created time.Time
		)
		if err := rows.Scan(&w.UserID, &w.CardID, &created); err != nil {
			return nil, fmt.Errorf("scan wishlist: %w", err)
		}
		w.CreatedAt = created
		out = append(out, w)
		ids = append(ids, w.CardID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}

	if r.Cards == nil || len(ids) == 0 {
		return out, nil
	}
	found, err := r.Cards.ListByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*models.Card, len(found))
	for i := range found {
		byID[found[i].ID] = &found[i]
	}
	for i := range out {
		out[i].Card = byID[out[i].CardID]
	}
	return out, nil
}
