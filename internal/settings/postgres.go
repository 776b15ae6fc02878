package settings

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/lib/pq"
)

// PostgresStore keeps settings in the server_settings table.
type PostgresStore struct {
	db *sql.DB
}

// OpenPostgres opens a connection pool for databaseURL and verifies it.
func OpenPostgres(ctx context.Context, databaseURL string) (*sql.DB, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("settings: open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("settings: ping postgres: %w", err)
	}
	return db, nil
}

// NewPostgresStore creates a settings store backed by the given database handle.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Get returns the setting value or defaultValue when no row exists.
func (s *PostgresStore) Get(ctx context.Context, platform, orgID, key, defaultValue string) (string, error) {
	const query = `
		SELECT value
		FROM server_settings
		WHERE source = $1 AND org_id = $2 AND name = $3`

	var value string
	err := s.db.QueryRowContext(ctx, query, platform, orgID, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return defaultValue, nil
	}
	if err != nil {
		return "", fmt.Errorf("settings: select %s: %w", key, err)
	}
	return value, nil
}

// Set inserts or replaces a setting value.
func (s *PostgresStore) Set(ctx context.Context, platform, orgID, key, value string) error {
	const query = `
		INSERT INTO server_settings (source, org_id, name, value)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (source, org_id, name)
		DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`

	if _, err := s.db.ExecContext(ctx, query, platform, orgID, key, value); err != nil {
		return fmt.Errorf("settings: upsert %s: %w", key, err)
	}
	return nil
}

// Delete removes a setting row.
func (s *PostgresStore) Delete(ctx context.Context, platform, orgID, key string) error {
	const query = `DELETE FROM server_settings WHERE source = $1 AND org_id = $2 AND name = $3`

	if _, err := s.db.ExecContext(ctx, query, platform, orgID, key); err != nil {
		return fmt.Errorf("settings: delete %s: %w", key, err)
	}
	return nil
}
