package state

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

const conversionColumns = `id, package, source, fingerprint, output_dir, status, functions, started_at, completed_at, error`

// CreateConversion records the start of a conversion.
func (s *SQLiteStore) CreateConversion(pkg, source, fingerprint string) (*Conversion, error) {
	if s.db == nil {
		return nil, ErrNotOpen
	}

	c := &Conversion{
		ID:          generateID(),
		Package:     pkg,
		Source:      source,
		Fingerprint: fingerprint,
		Status:      StatusRunning,
		StartedAt:   time.Now().UTC(),
	}
	s.logger.Debug("creating conversion", slog.String("id", c.ID), slog.String("source", source))

	_, err := s.db.ExecContext(ctx(),
		`INSERT INTO conversions (id, package, source, fingerprint, status, started_at) VALUES (?, ?, ?, ?, ?, ?)`,
		c.ID, c.Package, c.Source, c.Fingerprint, string(c.Status), c.StartedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create conversion: %w", err)
	}
	return c, nil
}

// CompleteConversion marks a conversion finished with the given status.
func (s *SQLiteStore) CompleteConversion(id string, status Status, functions int, outputDir, errMsg string) error {
	if s.db == nil {
		return ErrNotOpen
	}

	var errValue *string
	if errMsg != "" {
		errValue = &errMsg
	}
	res, err := s.db.ExecContext(ctx(),
		`UPDATE conversions SET status = ?, functions = ?, output_dir = ?, completed_at = ?, error = ? WHERE id = ?`,
		string(status), functions, outputDir, time.Now().UTC(), errValue, id,
	)
	if err != nil {
		return fmt.Errorf("failed to complete conversion: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

// GetConversion retrieves a conversion by ID.
func (s *SQLiteStore) GetConversion(id string) (*Conversion, error) {
	if s.db == nil {
		return nil, ErrNotOpen
	}

	row := s.db.QueryRowContext(ctx(), `SELECT `+conversionColumns+` FROM conversions WHERE id = ?`, id)
	c, err := scanConversion(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get conversion: %w", err)
	}
	return c, nil
}

// LatestConversion returns the most recent conversion of a source document,
// nil when it was never converted.
func (s *SQLiteStore) LatestConversion(source string) (*Conversion, error) {
	if s.db == nil {
		return nil, ErrNotOpen
	}

	row := s.db.QueryRowContext(ctx(),
		`SELECT `+conversionColumns+` FROM conversions WHERE source = ? ORDER BY started_at DESC, rowid DESC LIMIT 1`,
		source,
	)
	c, err := scanConversion(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest conversion: %w", err)
	}
	return c, nil
}

// ListConversions returns the most recent conversions up to limit.
func (s *SQLiteStore) ListConversions(limit int) ([]*Conversion, error) {
	if s.db == nil {
		return nil, ErrNotOpen
	}

	rows, err := s.db.QueryContext(ctx(),
		`SELECT `+conversionColumns+` FROM conversions ORDER BY started_at DESC, rowid DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []*Conversion
	for rows.Next() {
		c, err := scanConversion(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan conversion: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanConversion(row scanner) (*Conversion, error) {
	c := &Conversion{}
	var status string
	var completedAt sql.NullTime
	var errMsg sql.NullString
	err := row.Scan(&c.ID, &c.Package, &c.Source, &c.Fingerprint, &c.OutputDir, &status,
		&c.Functions, &c.StartedAt, &completedAt, &errMsg)
	if err != nil {
		return nil, err
	}
	c.Status = Status(status)
	if completedAt.Valid {
		t := completedAt.Time
		c.CompletedAt = &t
	}
	if errMsg.Valid {
		c.Error = errMsg.String
	}
	return c, nil
}
