package state

import (
	"fmt"

	"github.com/leapstack-labs/dessist/internal/diag"
	"github.com/leapstack-labs/dessist/internal/session"
)

// SaveDiagnostics stores the diagnostics of a conversion in report order.
func (s *SQLiteStore) SaveDiagnostics(conversionID string, ds []diag.Diagnostic) error {
	if s.db == nil {
		return ErrNotOpen
	}
	if len(ds) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx(), nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx(),
		`INSERT INTO diagnostics (conversion_id, seq, kind, severity, path, node_id, message) VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare diagnostics insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i, d := range ds {
		if _, err := stmt.ExecContext(ctx(), conversionID, i, d.Kind.String(), d.Severity.String(), d.Path, d.NodeID, d.Message); err != nil {
			return fmt.Errorf("failed to save diagnostic: %w", err)
		}
	}
	return tx.Commit()
}

// GetDiagnostics returns the diagnostics of a conversion in report order.
func (s *SQLiteStore) GetDiagnostics(conversionID string) ([]diag.Diagnostic, error) {
	if s.db == nil {
		return nil, ErrNotOpen
	}

	rows, err := s.db.QueryContext(ctx(),
		`SELECT kind, severity, path, node_id, message FROM diagnostics WHERE conversion_id = ? ORDER BY seq`,
		conversionID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get diagnostics: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []diag.Diagnostic
	for rows.Next() {
		var kind, severity string
		var d diag.Diagnostic
		if err := rows.Scan(&kind, &severity, &d.Path, &d.NodeID, &d.Message); err != nil {
			return nil, fmt.Errorf("failed to scan diagnostic: %w", err)
		}
		d.Kind = parseKind(kind)
		if sev, ok := diag.ParseSeverity(severity); ok {
			d.Severity = sev
		} else {
			d.Severity = d.Kind.DefaultSeverity()
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// SaveBindings stores the variable binding table of a conversion.
func (s *SQLiteStore) SaveBindings(conversionID string, bs []session.Binding) error {
	if s.db == nil {
		return ErrNotOpen
	}
	if len(bs) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx(), nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, b := range bs {
		_, err := tx.ExecContext(ctx(),
			`INSERT OR REPLACE INTO bindings (conversion_id, name, qualified, go_type, default_value, scope, owner) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			conversionID, b.Name, b.Qualified, b.Type, b.Default, b.Scope.String(), b.Owner,
		)
		if err != nil {
			return fmt.Errorf("failed to save binding %s: %w", b.Name, err)
		}
	}
	return tx.Commit()
}

// GetBindings returns the binding table of a conversion ordered by name.
func (s *SQLiteStore) GetBindings(conversionID string) ([]session.Binding, error) {
	if s.db == nil {
		return nil, ErrNotOpen
	}

	rows, err := s.db.QueryContext(ctx(),
		`SELECT name, qualified, go_type, default_value, scope, owner FROM bindings WHERE conversion_id = ? ORDER BY name`,
		conversionID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get bindings: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []session.Binding
	for rows.Next() {
		var b session.Binding
		var scope string
		if err := rows.Scan(&b.Name, &b.Qualified, &b.Type, &b.Default, &scope, &b.Owner); err != nil {
			return nil, fmt.Errorf("failed to scan binding: %w", err)
		}
		if scope == session.ScopeGlobal.String() {
			b.Scope = session.ScopeGlobal
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func parseKind(s string) diag.Kind {
	for _, k := range []diag.Kind{
		diag.KindUnrecognizedConstruct,
		diag.KindReferenceNotFound,
		diag.KindMalformedIdentifier,
		diag.KindStructuralCycle,
		diag.KindFormat,
	} {
		if k.String() == s {
			return k
		}
	}
	return diag.KindUnrecognizedConstruct
}
