package characters

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

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

// Seed inserts the roster when the table is empty. It returns the number of
// rows inserted; an already seeded table yields 0.
func (r *Repo) Seed(ctx context.Context, roster []RosterEntry) (int, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var existing int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM characters`).Scan(&existing); err != nil {
		return 0, fmt.Errorf("count characters: %w", err)
	}
	if existing > 0 {
		return 0, nil
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO characters (name, species_index) VALUES (?, ?)
		ON CONFLICT(name) DO NOTHING
	`)
	if err != nil {
		return 0, fmt.Errorf("prepare stmt: %w", err)
	}
	defer stmt.Close()

	inserted := 0
	for _, e := range roster {
		if strings.TrimSpace(e.Name) == "" {
			continue
		}
		var idx any
		if e.SpeciesIndex > 0 {
			idx = e.SpeciesIndex
		}
		res, err := stmt.ExecContext(ctx, e.Name, idx)
		if err != nil {
			return 0, fmt.Errorf("seed %s: %w", e.Name, err)
		}
		n, _ := res.RowsAffected()
		inserted += int(n)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit tx: %w", err)
	}
	r.Events.Publish(database.TableCharacters)
	return inserted, nil
}

// SeedDefault seeds the built-in roster.
func (r *Repo) SeedDefault(ctx context.Context) (int, error) {
	roster, err := Roster()
	if err != nil {
		return 0, err
	}
	return r.Seed(ctx, roster)
}

// SearchParams filters List. UserID decides the Favorite flag.
type SearchParams struct {
	UserID        string
	Query         string
	FavoritesOnly bool
}

func (r *Repo) List(ctx context.Context, p SearchParams) ([]models.Character, error) {
	query := `
		SELECT c.name, c.species_index, c.image_url, f.user_id IS NOT NULL
		FROM characters c
		LEFT JOIN favorites f ON f.character_name = c.name AND f.user_id = ?
		WHERE 1 = 1`
	args := []any{p.UserID}

	if q := strings.TrimSpace(p.Query); q != "" {
		query += ` AND c.name LIKE ?`
		args = append(args, "%"+q+"%")
	}
	if p.FavoritesOnly {
		query += ` AND f.user_id IS NOT NULL`
	}
	query += ` ORDER BY COALESCE(c.species_index, 1000000), c.name`

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list characters: %w", err)
	}
	defer rows.Close()

	out := make([]models.Character, 0)
	for rows.Next() {
		ch, err := scanCharacter(rows)
		if err != nil {
			return nil, fmt.Errorf("scan character row: %w", err)
		}
		out = append(out, *ch)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}

func (r *Repo) Get(ctx context.Context, name string) (*models.Character, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT name, species_index, image_url, 0
		FROM characters
		WHERE name = ?
	`, name)
	ch, err := scanCharacter(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get character: %w", err)
	}
	return ch, nil
}

// SpeciesIndex looks up a character's index. ok is false for names missing
// from the roster or stored without an index.
func (r *Repo) SpeciesIndex(ctx context.Context, name string) (idx int, ok bool, err error) {
	var v sql.NullInt64
	err = r.DB.QueryRowContext(ctx, `SELECT species_index FROM characters WHERE name = ?`, name).Scan(&v)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("species index: %w", err)
	}
	return int(v.Int64), v.Valid, nil
}

// IndexOrDefault is SpeciesIndex with a fallback: names without a known
// index get def and fallback is true.
func (r *Repo) IndexOrDefault(ctx context.Context, name string, def int) (idx int, fallback bool, err error) {
	idx, ok, err := r.SpeciesIndex(ctx, name)
	if err != nil {
		return 0, false, err
	}
	if !ok || idx <= 0 {
		return def, true, nil
	}
	return idx, false, nil
}

// Resolve finds the roster character a card name belongs to: the longest
// name equal to cardName or followed by a space in it.
func (r *Repo) Resolve(ctx context.Context, cardName string) (string, bool, error) {
	var name string
	err := r.DB.QueryRowContext(ctx, `
		SELECT name FROM characters
		WHERE name = ? OR substr(?, 1, length(name) + 1) = name || ' '
		ORDER BY length(name) DESC
		LIMIT 1
	`, cardName, cardName).Scan(&name)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("resolve character: %w", err)
	}
	return name, true, nil
}

// UpdateImage caches a representative image. Unknown names are ignored.
func (r *Repo) UpdateImage(ctx context.Context, name, imageURL string) error {
	res, err := r.DB.ExecContext(ctx, `UPDATE characters SET image_url = ? WHERE name = ?`, imageURL, name)
	if err != nil {
		return fmt.Errorf("update character image: %w", err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		r.Events.Publish(database.TableCharacters)
	}
	return nil
}

func scanCharacter(s interface{ Scan(...any) error }) (*models.Character, error) {
	var (
		ch    models.Character
		idx   sql.NullInt64
		image sql.NullString
	)
	if err := s.Scan(&ch.Name, &idx, &image, &ch.Favorite); err != nil {
		return nil, err
	}
	if idx.Valid {
		v := int(idx.Int64)
		ch.SpeciesIndex = &v
	}
	ch.ImageURL = image.String
	return &ch, nil
}
