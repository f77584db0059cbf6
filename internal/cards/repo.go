package cards

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
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

const cardColumns = `id, name, category, hp, types, rarity,
	set_id, set_name, set_series, set_total, set_printed_total, set_code, set_release_date, set_japanese,
	image_small, image_large, number, artist, pricing, language, source, species_index, updated_at`

// Every column is overwritten on conflict, including with NULLs, so the
// stored row always equals the latest ingestion.
const upsertCard = `
	INSERT INTO cards (` + cardColumns + `)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		name = excluded.name,
		category = excluded.category,
		hp = excluded.hp,
		types = excluded.types,
		rarity = excluded.rarity,
		set_id = excluded.set_id,
		set_name = excluded.set_name,
		set_series = excluded.set_series,
		set_total = excluded.set_total,
		set_printed_total = excluded.set_printed_total,
		set_code = excluded.set_code,
		set_release_date = excluded.set_release_date,
		set_japanese = excluded.set_japanese,
		image_small = excluded.image_small,
		image_large = excluded.image_large,
		number = excluded.number,
		artist = excluded.artist,
		pricing = excluded.pricing,
		language = excluded.language,
		source = excluded.source,
		species_index = excluded.species_index,
		updated_at = excluded.updated_at
`

func (r *Repo) Upsert(ctx context.Context, c models.Card) error {
	return r.UpsertMany(ctx, []models.Card{c})
}

// UpsertMany writes all cards in one transaction.
func (r *Repo) UpsertMany(ctx context.Context, cards []models.Card) error {
	if len(cards) == 0 {
		return nil
	}

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, upsertCard)
	if err != nil {
		return fmt.Errorf("prepare stmt: %w", err)
	}
	defer stmt.Close()

	for _, c := range cards {
		args, err := cardArgs(c)
		if err != nil {
			return err
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("exec upsert for %s: %w", c.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	r.Events.Publish(database.TableCards)
	return nil
}

func (r *Repo) GetByID(ctx context.Context, id string) (*models.Card, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+cardColumns+` FROM cards WHERE id = ?`, id)
	c, err := scanCard(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get card: %w", err)
	}
	return c, nil
}

// NameMatch is the SQL predicate used everywhere a card is attributed to a
// character: the name equals the character name or starts with it followed
// by a space. Takes the character name three times.
var NameMatch = NameMatchOn("name", "?")

// NameMatchOn builds the same predicate for any card-name column and
// character-name expression, for use inside joins.
func NameMatchOn(column, name string) string {
	return `(` + column + ` = ` + name + ` OR substr(` + column + `, 1, length(` + name + `) + 1) = ` + name + ` || ' ')`
}

// ListByCharacter returns locally stored cards attributed to a character,
// optionally restricted to one set.
func (r *Repo) ListByCharacter(ctx context.Context, character, setID string) ([]models.Card, error) {
	query := `SELECT ` + cardColumns + ` FROM cards WHERE ` + NameMatch
	args := []any{character, character, character}
	if setID != "" {
		query += ` AND set_id = ?`
		args = append(args, setID)
	}
	query += ` ORDER BY set_release_date DESC, set_name, number`

	return r.query(ctx, query, args...)
}

func (r *Repo) ListByIDs(ctx context.Context, ids []string) ([]models.Card, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return r.query(ctx, `SELECT `+cardColumns+` FROM cards WHERE id IN (`+placeholders+`) ORDER BY name, id`, args...)
}

// All returns every stored card ordered by name.
func (r *Repo) All(ctx context.Context) ([]models.Card, error) {
	return r.query(ctx, `SELECT `+cardColumns+` FROM cards ORDER BY name, id`)
}

func (r *Repo) CountByCharacter(ctx context.Context, character string) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM cards WHERE `+NameMatch,
		character, character, character).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count cards: %w", err)
	}
	return n, nil
}

// Watch streams ListByCharacter results, re-emitting after card writes.
func (r *Repo) Watch(ctx context.Context, character string) <-chan database.Snapshot[[]models.Card] {
	return database.Watch(ctx, r.Events, func(ctx context.Context) ([]models.Card, error) {
		return r.ListByCharacter(ctx, character, "")
	}, database.TableCards)
}

func (r *Repo) query(ctx context.Context, query string, args ...any) ([]models.Card, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list cards: %w", err)
	}
	defer rows.Close()

	out := make([]models.Card, 0)
	for rows.Next() {
		c, err := scanCard(rows)
		if err != nil {
			return nil, fmt.Errorf("scan card row: %w", err)
		}
		out = append(out, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanCard(s scanner) (*models.Card, error) {
	var (
		c                                  models.Card
		category, hp, types, rarity        sql.NullString
		setID, setSeries, setCode, setDate sql.NullString
		imgSmall, imgLarge, number, artist sql.NullString
		pricing                            sql.NullString
		species                            sql.NullInt64
		updated                            time.Time
	)
	if err := s.Scan(&c.ID, &c.Name, &category, &hp, &types, &rarity,
		&setID, &c.Set.Name, &setSeries, &c.Set.Total, &c.Set.PrintedTotal, &setCode, &setDate, &c.Set.Japanese,
		&imgSmall, &imgLarge, &number, &artist, &pricing, &c.Language, &c.Source, &species, &updated); err != nil {
		return nil, err
	}

	c.Category = category.String
	c.HP = hp.String
	c.Rarity = rarity.String
	c.Set.ID = setID.String
	c.Set.Series = setSeries.String
	c.Set.Code = setCode.String
	c.Set.ReleaseDate = setDate.String
	c.Images.Small = imgSmall.String
	c.Images.Large = imgLarge.String
	c.Number = number.String
	c.Artist = artist.String
	c.UpdatedAt = updated

	if types.Valid && types.String != "" {
		if err := json.Unmarshal([]byte(types.String), &c.Types); err != nil {
			return nil, fmt.Errorf("decode types for %s: %w", c.ID, err)
		}
	}
	if pricing.Valid && pricing.String != "" {
		var p models.Pricing
		if err := json.Unmarshal([]byte(pricing.String), &p); err != nil {
			return nil, fmt.Errorf("decode pricing for %s: %w", c.ID, err)
		}
		c.Pricing = &p
	}
	if species.Valid {
		v := int(species.Int64)
		c.SpeciesIndex = &v
	}
	return &c, nil
}

func cardArgs(c models.Card) ([]any, error) {
	var types, pricing any
	if len(c.Types) > 0 {
		b, err := json.Marshal(c.Types)
		if err != nil {
			return nil, fmt.Errorf("marshal types for %s: %w", c.ID, err)
		}
		types = string(b)
	}
	if c.Pricing != nil {
		b, err := json.Marshal(c.Pricing)
		if err != nil {
			return nil, fmt.Errorf("marshal pricing for %s: %w", c.ID, err)
		}
		pricing = string(b)
	}
	var species any
	if c.SpeciesIndex != nil {
		species = *c.SpeciesIndex
	}
	setName := c.Set.Name
	if setName == "" {
		setName = models.UnknownSetName
	}
	updated := c.UpdatedAt
	if updated.IsZero() {
		updated = time.Now().UTC()
	}

	return []any{
		c.ID, c.Name, nullable(c.Category), nullable(c.HP), types, nullable(c.Rarity),
		nullable(c.Set.ID), setName, nullable(c.Set.Series), c.Set.Total, c.Set.PrintedTotal,
		nullable(c.Set.Code), nullable(c.Set.ReleaseDate), c.Set.Japanese,
		nullable(c.Images.Small), nullable(c.Images.Large), nullable(c.Number), nullable(c.Artist),
		pricing, c.Language, c.Source, species, updated,
	}, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
