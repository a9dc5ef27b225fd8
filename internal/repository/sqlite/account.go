package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/inkwell/internal/repository"
)

// compile-time check that *DB implements repository.AccountRepository
var _ repository.AccountRepository = (*DB)(nil)

// Link records that an external provider vouches for this user.
//
// INSERT OR IGNORE makes the link idempotent: the UNIQUE (user_id,
// provider) constraint silently drops a second link for the same pair, so
// every OAuth sign-in can call this unconditionally.
func (db *DB) Link(ctx context.Context, userID, provider string) error {
	_, err := db.conn.ExecContext(ctx,
		`INSERT OR IGNORE INTO accounts (id, user_id, provider, created_at)
		 VALUES (?, ?, ?, ?)`,
		xid.New().String(), userID, provider, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("sqlite: linking %s account for user %s: %w", provider, userID, err)
	}
	return nil
}

// Providers lists the provider names linked to the user, oldest link first.
func (db *DB) Providers(ctx context.Context, userID string) ([]string, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT provider FROM accounts WHERE user_id = ? ORDER BY id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing providers for user %s: %w", userID, err)
	}
	defer rows.Close()

	var providers []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("sqlite: scanning provider row: %w", err)
		}
		providers = append(providers, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating providers: %w", err)
	}

	return providers, nil
}
