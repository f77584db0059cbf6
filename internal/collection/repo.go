package collection

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"cardhub/internal/cards"
	"cardhub/pkg/database"
	"cardhub/pkg/models"
)

// Repo stores ownership records. The (user_id, card_id) unique key plus
// upserts keep at most one record per pair.
type Repo struct {
	DB     *sql.DB
	Cards  *cards.Repo
	Events *database.Notifier
}

func NewRepo(db *sql.DB, cardRepo *cards.Repo, events *database.Notifier) *Repo {
	return &Repo{DB: db, Cards: cardRepo, Events: events}
}

const recordColumns = `id, user_id, card_id, owned, condition, graded, grading_company, grade,
	purchase_price, current_price, created_at, updated_at`

// Upsert writes every attribute of rec, replacing an existing record for the
// same pair but keeping its id and created_at.
func (r *Repo) Upsert(ctx context.Context, rec models.OwnershipRecord) error {
	if rec.Condition == "" {
		rec.Condition = models.ConditionUnknown
	}
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO ownership (user_id, card_id, owned, condition, graded, grading_company, grade,
			purchase_price, current_price, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		ON CONFLICT(user_id, card_id) DO UPDATE SET
			owned = excluded.owned,
			condition = excluded.condition,
			graded = excluded.graded,
			grading_company = excluded.grading_company,
			grade = excluded.grade,
			purchase_price = excluded.purchase_price,
			current_price = excluded.current_price,
			updated_at = CURRENT_TIMESTAMP
	`, rec.UserID, rec.CardID, rec.Owned, string(rec.Condition), rec.Graded,
		nullString(rec.GradingCompany), nullString(rec.Grade), rec.PurchasePrice, rec.CurrentPrice)
	if err != nil {
		return fmt.Errorf("upsert ownership: %w", err)
	}
	r.Events.Publish(database.TableOwnership)
	return nil
}

// MarkOwned sets owned=true, creating the record if needed. Other
// attributes of an existing record are left alone, so repeated calls
// converge on one record.
func (r *Repo) MarkOwned(ctx context.Context, userID, cardID string) error {
	return r.setOwned(ctx, userID, cardID, true)
}

// MarkMissing sets owned=false without deleting the record.
func (r *Repo) MarkMissing(ctx context.Context, userID, cardID string) error {
	return r.setOwned(ctx, userID, cardID, false)
}

func (r *Repo) setOwned(ctx context.Context, userID, cardID string, owned bool) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO ownership (user_id, card_id, owned)
		VALUES (?, ?, ?)
		ON CONFLICT(user_id, card_id) DO UPDATE SET
			owned = excluded.owned,
			updated_at = CURRENT_TIMESTAMP
	`, userID, cardID, owned)
	if err != nil {
		return fmt.Errorf("set owned: %w", err)
	}
	r.Events.Publish(database.TableOwnership)
	return nil
}

func (r *Repo) Delete(ctx context.Context, userID, cardID string) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `
		DELETE FROM ownership
		WHERE user_id = ? AND card_id = ?
	`, userID, cardID)
	if err != nil {
		return false, fmt.Errorf("delete ownership: %w", err)
	}
	n, _ := res.RowsAffected()
	if n > 0 {
		r.Events.Publish(database.TableOwnership)
	}
	return n > 0, nil
}

func (r *Repo) Get(ctx context.Context, userID, cardID string) (*models.OwnershipRecord, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT `+recordColumns+`
		FROM ownership
		WHERE user_id = ? AND card_id = ?
	`, userID, cardID)

	rec, err := scanRecord(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get ownership: %w", err)
	}
	return rec, nil
}

func (r *Repo) IsOwned(ctx context.Context, userID, cardID string) (bool, error) {
	rec, err := r.Get(ctx, userID, cardID)
	if err != nil {
		return false, err
	}
	return rec != nil && rec.Owned, nil
}

// ListParams filters List. A nil Owned returns every record.
type ListParams struct {
	Owned  *bool
	Limit  int
	Offset int
}

// List returns the user's records joined with locally stored cards.
func (r *Repo) List(ctx context.Context, userID string, p ListParams) ([]models.CollectionEntry, int, error) {
	if p.Limit <= 0 || p.Limit > 500 {
		p.Limit = 50
	}
	if p.Offset < 0 {
		p.Offset = 0
	}

	where := `WHERE user_id = ?`
	args := []any{userID}
	if p.Owned != nil {
		where += ` AND owned = ?`
		args = append(args, *p.Owned)
	}

	var total int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM ownership `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count ownership: %w", err)
	}

	rows, err := r.DB.QueryContext(ctx, `
		SELECT `+recordColumns+`
		FROM ownership `+where+`
		ORDER BY updated_at DESC, id DESC
		LIMIT ? OFFSET ?
	`, append(args, p.Limit, p.Offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("list ownership: %w", err)
	}
	defer rows.Close()

	out := make([]models.CollectionEntry, 0, p.Limit)
	ids := make([]string, 0, p.Limit)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan ownership row: %w", err)
		}
		out = append(out, models.CollectionEntry{OwnershipRecord: *rec})
		ids = append(ids, rec.CardID)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("rows err: %w", err)
	}

	if err := r.attachCards(ctx, out, ids); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// OwnedCount counts distinct cards the user owns.
func (r *Repo) OwnedCount(ctx context.Context, userID string) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, `
		SELECT COUNT(DISTINCT card_id) FROM ownership WHERE user_id = ? AND owned = 1
	`, userID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("owned count: %w", err)
	}
	return n, nil
}

const listAllPage = 500

// ListAll pages through every matching record.
func (r *Repo) ListAll(ctx context.Context, userID string, owned *bool) ([]models.CollectionEntry, error) {
	var all []models.CollectionEntry
	p := ListParams{Owned: owned, Limit: listAllPage}
	for {
		page, total, err := r.List(ctx, userID, p)
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		p.Offset += len(page)
		if len(page) < listAllPage || p.Offset >= total {
			return all, nil
		}
	}
}

// Watch streams every owned entry of the user, re-emitting after ownership
// or card writes.
func (r *Repo) Watch(ctx context.Context, userID string) <-chan database.Snapshot[[]models.CollectionEntry] {
	owned := true
	return database.Watch(ctx, r.Events, func(ctx context.Context) ([]models.CollectionEntry, error) {
		return r.ListAll(ctx, userID, &owned)
	}, database.TableOwnership, database.TableCards)
}

func (r *Repo) attachCards(ctx context.Context, entries []models.CollectionEntry, ids []string) error {
	if r.Cards == nil || len(ids) == 0 {
		return nil
	}
	found, err := r.Cards.ListByIDs(ctx, ids)
	if err != nil {
		return err
	}
	byID := make(map[string]*models.Card, len(found))
	for i := range found {
		byID[found[i].ID] = &found[i]
	}
	for i := range entries {
		entries[i].Card = byID[entries[i].CardID]
	}
	return nil
}

func scanRecord(s interface{ Scan(...any) error }) (*models.OwnershipRecord, error) {
	var (
		rec               models.OwnershipRecord
		condition         string
		company, grade    sql.NullString
		purchase, current sql.NullFloat64
		created, updated  time.Time
	)
	if err := s.Scan(&rec.ID, &rec.UserID, &rec.CardID, &rec.Owned, &condition, &rec.Graded,
		&company, &grade, &purchase, &current, &created, &updated); err != nil {
		return nil, err
	}
	rec.Condition = models.ParseCondition(condition)
	rec.GradingCompany = company.String
	rec.Grade = grade.String
	if purchase.Valid {
		v := purchase.Float64
		rec.PurchasePrice = &v
	}
	if current.Valid {
		v := current.Float64
		rec.CurrentPrice = &v
	}
	rec.CreatedAt = created
	rec.UpdatedAt = updated
	return &rec, nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
