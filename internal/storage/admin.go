package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"moneypaz/internal/core"
	"moneypaz/internal/log"
)

// ErrUserNotFound is returned when an admin operation targets an unknown user.
var ErrUserNotFound = errors.New("user not found")

// UpsertProfile creates or updates a profile. An existing created_at is kept.
func (r *SQLiteRepository) UpsertProfile(ctx context.Context, p core.Profile) error {
	created := p.CreatedAt
	if created.IsZero() {
		created = r.now()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO profiles (user_id, email, display_name, created_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			email = CASE WHEN excluded.email = '' THEN profiles.email ELSE excluded.email END,
			display_name = CASE WHEN excluded.display_name = '' THEN profiles.display_name ELSE excluded.display_name END`,
		p.UserID, p.Email, p.DisplayName, created.UnixMilli())
	if err != nil {
		return fmt.Errorf("upsert profile %s: %w", p.UserID, err)
	}
	return nil
}

// GetProfile loads a single profile.
func (r *SQLiteRepository) GetProfile(ctx context.Context, userID string) (core.Profile, error) {
	var (
		p       core.Profile
		created int64
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT user_id, email, display_name, created_at FROM profiles WHERE user_id = ?`, userID).
		Scan(&p.UserID, &p.Email, &p.DisplayName, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Profile{}, ErrUserNotFound
	}
	if err != nil {
		return core.Profile{}, fmt.Errorf("get profile %s: %w", userID, err)
	}
	p.CreatedAt = time.UnixMilli(created).UTC()
	return p, nil
}

// GrantRole assigns a role to a user. Granting twice is a no-op.
func (r *SQLiteRepository) GrantRole(ctx context.Context, userID, role string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO user_roles (user_id, role) VALUES (?, ?)`, userID, role)
	if err != nil {
		return fmt.Errorf("grant role %s to %s: %w", role, userID, err)
	}
	return nil
}

// IsAdmin implements services.AdminRepository.
func (r *SQLiteRepository) IsAdmin(ctx context.Context, userID string) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM user_roles WHERE user_id = ? AND role = ?`, userID, core.RoleAdmin).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("check admin role for %s: %w", userID, err)
	}
	return n > 0, nil
}

// MirrorMovement stores a copy of a movement for a user, replacing any row
// with the same id.
func (r *SQLiteRepository) MirrorMovement(ctx context.Context, userID string, m core.Movement) error {
	return mirrorMovement(ctx, r.db, userID, m)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func mirrorMovement(ctx context.Context, db execer, userID string, m core.Movement) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO movements (id, user_id, amount, type, category, created_at) VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			user_id = excluded.user_id, amount = excluded.amount, type = excluded.type,
			category = excluded.category, created_at = excluded.created_at`,
		m.ID, userID, m.Amount.String(), string(m.Type), m.Category.ID, m.Timestamp)
	if err != nil {
		return fmt.Errorf("mirror movement %s: %w", m.ID, err)
	}
	return nil
}

// RemoveMirroredMovement deletes one mirrored movement. Unknown ids are ignored.
func (r *SQLiteRepository) RemoveMirroredMovement(ctx context.Context, userID, movementID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM movements WHERE user_id = ? AND id = ?`, userID, movementID)
	if err != nil {
		return fmt.Errorf("remove mirrored movement %s: %w", movementID, err)
	}
	return nil
}

// ClearMovements deletes every mirrored movement of a user.
func (r *SQLiteRepository) ClearMovements(ctx context.Context, userID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM movements WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("clear movements for %s: %w", userID, err)
	}
	return nil
}

// ReplaceUserMovements swaps the mirrored movements of a user for the given
// list in one transaction.
func (r *SQLiteRepository) ReplaceUserMovements(ctx context.Context, userID string, movements []core.Movement) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM movements WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("clear movements for %s: %w", userID, err)
	}
	for _, m := range movements {
		if err := mirrorMovement(ctx, tx, userID, m); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit movements for %s: %w", userID, err)
	}
	r.logger.DebugContext(ctx, "Mirrored movements replaced",
		log.FieldOperation, log.OpMirror, log.FieldUserID, userID, "count", len(movements))
	return nil
}

// CountMovements returns how many movements are mirrored for a user.
func (r *SQLiteRepository) CountMovements(ctx context.Context, userID string) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM movements WHERE user_id = ?`, userID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count movements for %s: %w", userID, err)
	}
	return n, nil
}

// ListUserSummaries implements services.AdminRepository. Profiles are
// returned newest first with the sum of their mirrored expenses.
func (r *SQLiteRepository) ListUserSummaries(ctx context.Context) ([]core.UserSummary, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT user_id, email, display_name, created_at FROM profiles ORDER BY created_at DESC, user_id`)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	defer rows.Close()

	var (
		out   []core.UserSummary
		index = map[string]int{}
	)
	for rows.Next() {
		var (
			u       core.UserSummary
			created int64
		)
		if err := rows.Scan(&u.UserID, &u.Email, &u.DisplayName, &created); err != nil {
			return nil, fmt.Errorf("scan profile: %w", err)
		}
		u.CreatedAt = time.UnixMilli(created).UTC()
		u.TotalExpenses = decimal.Zero
		index[u.UserID] = len(out)
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}

	totals, err := r.expenseTotals(ctx)
	if err != nil {
		return nil, err
	}
	for userID, total := range totals {
		if i, ok := index[userID]; ok {
			out[i].TotalExpenses = total
		}
	}
	return out, nil
}

func (r *SQLiteRepository) expenseTotals(ctx context.Context) (map[string]decimal.Decimal, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT user_id, amount FROM movements WHERE type = ?`, string(core.Expense))
	if err != nil {
		return nil, fmt.Errorf("list expense amounts: %w", err)
	}
	defer rows.Close()

	totals := map[string]decimal.Decimal{}
	for rows.Next() {
		var userID, raw string
		if err := rows.Scan(&userID, &raw); err != nil {
			return nil, fmt.Errorf("scan expense amount: %w", err)
		}
		amount, err := decimal.NewFromString(raw)
		if err != nil {
			r.logger.WarnContext(ctx, "Skipping unparseable mirrored amount",
				log.FieldUserID, userID, log.FieldAmount, raw)
			continue
		}
		totals[userID] = totals[userID].Add(amount)
	}
	return totals, rows.Err()
}

// DeleteUser implements services.AdminRepository: movements, then roles, then
// the profile are removed in one transaction.
func (r *SQLiteRepository) DeleteUser(ctx context.Context, userID string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	steps := []struct {
		what  string
		query string
	}{
		{"movements", `DELETE FROM movements WHERE user_id = ?`},
		{"roles", `DELETE FROM user_roles WHERE user_id = ?`},
		{"profile", `DELETE FROM profiles WHERE user_id = ?`},
	}
	var removed int64
	for _, s := range steps {
		res, err := tx.ExecContext(ctx, s.query, userID)
		if err != nil {
			return fmt.Errorf("delete %s of %s: %w", s.what, userID, err)
		}
		removed, _ = res.RowsAffected()
	}
	if removed == 0 {
		return ErrUserNotFound
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit user deletion: %w", err)
	}
	return nil
}
