package auth

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"

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

// NormalizeEmail lower-cases and trims an address. Email is the external
// identity of a user.
func NormalizeEmail(email string) string {
	return strings.TrimSpace(strings.ToLower(email))
}

// GetOrCreateByEmail returns the user with this email, creating one with a
// fresh id when none exists. created reports which happened.
func (r *Repo) GetOrCreateByEmail(ctx context.Context, email, username string) (u *models.User, created bool, err error) {
	email = NormalizeEmail(email)
	if username = strings.TrimSpace(username); username == "" {
		username, _, _ = strings.Cut(email, "@")
	}

	res, err := r.DB.ExecContext(ctx, `
		INSERT INTO users (id, email, username)
		VALUES (?, ?, ?)
		ON CONFLICT(email) DO NOTHING
	`, uuid.NewString(), email, username)
	if err != nil {
		return nil, false, fmt.Errorf("create user: %w", err)
	}
	n, _ := res.RowsAffected()

	u, err = r.GetByEmail(ctx, email)
	if err != nil {
		return nil, false, err
	}
	if u == nil {
		return nil, false, fmt.Errorf("create user: %s not found after insert", email)
	}
	if n > 0 {
		r.Events.Publish(database.TableUsers)
	}
	return u, n > 0, nil
}

func (r *Repo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT id, email, username, token_version, created_at
		FROM users
		WHERE email = ?
	`, NormalizeEmail(email))
	return scanUser(row, "get by email")
}

func (r *Repo) GetByID(ctx context.Context, id string) (*models.User, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT id, email, username, token_version, created_at
		FROM users
		WHERE id = ?
	`, id)
	return scanUser(row, "get by id")
}

func (r *Repo) GetTokenVersion(ctx context.Context, id string) (int, error) {
	var version int
	err := r.DB.QueryRowContext(ctx, `SELECT token_version FROM users WHERE id = ?`, id).Scan(&version)
	if err != nil {
		if err == sql.ErrNoRows {
			return 0, fmt.Errorf("get token version: user %s not found", id)
		}
		return 0, fmt.Errorf("get token version: %w", err)
	}
	return version, nil
}

// BumpTokenVersion invalidates every token issued so far.
func (r *Repo) BumpTokenVersion(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE users
		SET token_version = token_version + 1
		WHERE id = ?
	`, id)
	if err != nil {
		return fmt.Errorf("bump token version: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("bump token version rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("bump token version: user not found")
	}
	return nil
}

func scanUser(row *sql.Row, op string) (*models.User, error) {
	var u models.User
	if err := row.Scan(&u.ID, &u.Email, &u.Username, &u.TokenVersion, &u.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &u, nil
}
