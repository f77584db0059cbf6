package favorites

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"cardhub/pkg/database"
	"cardhub/pkg/models"
)

type Repo struct {
	DB     *sql.DB
	Events *database.Notifier
}

func NewRepo(db *sql.DB, events *database.Notifier) *Repo {
	return &Repo{DB: db, Events: events}
}

// Add inserts the favorite with its total snapshot. An existing favorite is
// left unchanged and Add reports false.
func (r *Repo) Add(ctx context.Context, userID, name string, totalCards int) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `
		INSERT INTO favorites (user_id, character_name, total_cards)
		VALUES (?, ?, ?)
		ON CONFLICT(user_id, character_name) DO NOTHING
	`, userID, name, totalCards)
	if err != nil {
		return false, fmt.Errorf("add favorite: %w", err)
	}
	n, _ := res.RowsAffected()
	if n > 0 {
		r.Events.Publish(database.TableFavorites)
	}
	return n > 0, nil
}

func (r *Repo) Remove(ctx context.Context, userID, name string) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `
		DELETE FROM favorites
		WHERE user_id = ? AND character_name = ?
	`, userID, name)
	if err != nil {
		return false, fmt.Errorf("remove favorite: %w", err)
	}
	n, _ := res.RowsAffected()
	if n > 0 {
		r.Events.Publish(database.TableFavorites)
	}
	return n > 0, nil
}

func (r *Repo) Exists(ctx context.Context, userID, name string) (bool, error) {
	var one int
	err := r.DB.QueryRowContext(ctx, `
		SELECT 1 FROM favorites WHERE user_id = ? AND character_name = ?
	`, userID, name).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("favorite exists: %w", err)
	}
	return true, nil
}

func (r *Repo) List(ctx context.Context, userID string) ([]models.FavoriteCharacter, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT user_id, character_name, total_cards, created_at
		FROM favorites
		WHERE user_id = ?
		ORDER BY character_name
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list favorites: %w", err)
	}
	defer rows.Close()

	out := []models.FavoriteCharacter{}
	for rows.Next() {
		var (
			f       models.FavoriteCharacter
			created time.Time
		)
		if err := rows.Scan(&f.UserID, &f.CharacterName, &f.TotalCards, &created); err != nil {
			return nil, fmt.Errorf("scan favorite: %w", err)
		}
		f.CreatedAt = created
		out = append(out, f)
	}
	return out, rows.Err()
}

// TotalCards sums the cached totals of every favorite.
func (r *Repo) TotalCards(ctx context.Context, userID string) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(total_cards), 0) FROM favorites WHERE user_id = ?
	`, userID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("sum favorite totals: %w", err)
	}
	return n, nil
}
