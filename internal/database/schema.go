package database

import (
	"context"
	"database/sql"
	"fmt"
)

// Migrate creates the tables, constraints and indexes. Safe to call multiple
// times. It takes a plain *sql.DB so the standalone migrate command can run it
// over lib/pq while the API runs it over the pool gorm already holds.
func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("error creating tables: %w", err)
	}
	return nil
}

// PromoteAdmin grants the admin role to the user with the given provider
// subject. It reports false when no such user has signed in yet.
func PromoteAdmin(ctx context.Context, db *sql.DB, externalID string) (bool, error) {
	res, err := db.ExecContext(ctx,
		`UPDATE users SET role = 'admin', updated_at = NOW() WHERE external_id = $1`,
		externalID,
	)
	if err != nil {
		return false, fmt.Errorf("promote %s: %w", externalID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

const schema = `
CREATE TABLE IF NOT EXISTS users (
    id SERIAL PRIMARY KEY,
    external_id VARCHAR(255) UNIQUE NOT NULL,
    name VARCHAR(255) NOT NULL DEFAULT '',
    email VARCHAR(255) NOT NULL DEFAULT '',
    role VARCHAR(16) NOT NULL DEFAULT 'member' CHECK (role IN ('member', 'admin')),
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS posts (
    id SERIAL PRIMARY KEY,
    title VARCHAR(300) NOT NULL,
    category VARCHAR(50) NOT NULL,
    description TEXT NOT NULL,
    status VARCHAR(20) NOT NULL DEFAULT 'under_review'
        CHECK (status IN ('under_review', 'planned', 'in_progress', 'completed')),
    author_id INTEGER NOT NULL REFERENCES users(id),
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_posts_author_id ON posts(author_id);
CREATE INDEX IF NOT EXISTS idx_posts_category ON posts(category);
CREATE INDEX IF NOT EXISTS idx_posts_status ON posts(status);

CREATE TABLE IF NOT EXISTS votes (
    id SERIAL PRIMARY KEY,
    user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    post_id INTEGER NOT NULL REFERENCES posts(id) ON DELETE CASCADE,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    CONSTRAINT idx_votes_user_post UNIQUE (user_id, post_id)
);

CREATE INDEX IF NOT EXISTS idx_votes_post_id ON votes(post_id);
`
