package state

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// GetFingerprint retrieves the stored fingerprint of a source document.
func (s *SQLiteStore) GetFingerprint(source string) (string, error) {
	if s.db == nil {
		return "", ErrNotOpen
	}

	var fp string
	err := s.db.QueryRowContext(ctx(), `SELECT fingerprint FROM fingerprints WHERE source = ?`, source).Scan(&fp)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil // Not found, return empty string
	}
	if err != nil {
		return "", fmt.Errorf("failed to get fingerprint: %w", err)
	}
	return fp, nil
}

// SetFingerprint stores the fingerprint of a source document.
func (s *SQLiteStore) SetFingerprint(source, fingerprint string) error {
	if s.db == nil {
		return ErrNotOpen
	}

	_, err := s.db.ExecContext(ctx(),
		`INSERT INTO fingerprints (source, fingerprint, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(source) DO UPDATE SET fingerprint = excluded.fingerprint, updated_at = excluded.updated_at`,
		source, fingerprint, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to set fingerprint: %w", err)
	}
	return nil
}
