package project

// runtimeSource is the support code every generated project carries. The
// drivers table is written separately from the configured families.
const runtimeSource = `package %s

import (
	"context"
	"database/sql"
	"fmt"
	"net/smtp"
	"strings"
)

// DataTable is a result set held in memory, one slice of values per row.
type DataTable [][]any

// withDB opens the connection named by setting with the driver registered
// for family and passes it to fn.
func withDB(ctx context.Context, family, setting string, fn func(db *sql.DB) error) error {
	driver, ok := drivers[family]
	if !ok {
		return fmt.Errorf("no driver configured for connection family %%q", family)
	}
	dsn, ok := settings[setting]
	if !ok {
		return fmt.Errorf("no connection string for %%q", setting)
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return fmt.Errorf("failed to open %%s: %%w", setting, err)
	}
	defer db.Close()
	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to connect to %%s: %%w", setting, err)
	}
	return fn(db)
}

// queryTable runs query and reads every row into memory.
func queryTable(ctx context.Context, db *sql.DB, query string, args ...any) (DataTable, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	var table DataTable
	for rows.Next() {
		row := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range row {
			ptrs[i] = &row[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		table = append(table, row)
	}
	return table, rows.Err()
}

// queryScalar runs query and returns the first column of the first row.
func queryScalar(ctx context.Context, db *sql.DB, query string, args ...any) (any, error) {
	var v any
	if err := db.QueryRowContext(ctx, query, args...).Scan(&v); err != nil {
		return nil, err
	}
	return v, nil
}

// cast converts a value read from a table to T, the zero value when the
// dynamic type does not match.
func cast[T any](v any) T {
	t, _ := v.(T)
	return t
}

type mailMessage struct {
	From    string
	To      []string
	CC      []string
	BCC     []string
	Subject string
	Body    string
}

// sendMail delivers m through the SMTP server named by setting.
func sendMail(ctx context.Context, setting string, m mailMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	host := smtpHost(settings[setting])
	if host == "" {
		return fmt.Errorf("no SMTP server configured for %%q", setting)
	}
	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %%s\r\n", m.From)
	fmt.Fprintf(&msg, "To: %%s\r\n", strings.Join(m.To, ", "))
	if len(m.CC) > 0 {
		fmt.Fprintf(&msg, "Cc: %%s\r\n", strings.Join(m.CC, ", "))
	}
	fmt.Fprintf(&msg, "Subject: %%s\r\n\r\n%%s\r\n", m.Subject, m.Body)

	recipients := append(append(append([]string{}, m.To...), m.CC...), m.BCC...)
	return smtp.SendMail(host, nil, m.From, recipients, []byte(msg.String()))
}

// smtpHost reads the SmtpServer entry of an SMTP connection string.
func smtpHost(conn string) string {
	for _, part := range strings.Split(conn, ";") {
		key, value, ok := strings.Cut(part, "=")
		if ok && strings.EqualFold(strings.TrimSpace(key), "SmtpServer") {
			host := strings.TrimSpace(value)
			if !strings.Contains(host, ":") {
				host += ":25"
			}
			return host
		}
	}
	return ""
}
`
