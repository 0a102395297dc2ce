package source

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"
)

// Querier is the subset of pgxpool.Pool used to read reference tables.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// ConnectFunc dials PostgreSQL and returns a querier plus its close function.
type ConnectFunc func(ctx context.Context, dsn string) (Querier, func(), error)

// ConnectPostgres opens a small pgx pool for a one-shot table read.
func ConnectPostgres(ctx context.Context, dsn string) (Querier, func(), error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, nil, eris.Wrap(err, "postgres: parse config")
	}
	cfg.MaxConns = 2
	cfg.MinConns = 0

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, nil, eris.Wrap(err, "postgres: connect")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, eris.Wrap(err, "postgres: ping")
	}
	return pool, pool.Close, nil
}

// ReadPostgres reads every row of table (optionally schema-qualified).
func ReadPostgres(ctx context.Context, q Querier, table string) (*Tabular, error) {
	if !identRe.MatchString(table) {
		return nil, eris.Errorf("postgres: invalid table name %q", table)
	}
	ident := pgx.Identifier(strings.Split(table, "."))

	rows, err := q.Query(ctx, "SELECT * FROM "+ident.Sanitize())
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: query %s", table)
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	tab := &Tabular{Header: make([]string, len(fields))}
	for i, fd := range fields {
		tab.Header[i] = fd.Name
	}

	for rows.Next() {
		vals, err := rows.Values()
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan row")
		}
		rec := make([]string, len(vals))
		for i, v := range vals {
			rec[i] = stringify(v)
		}
		tab.Records = append(tab.Records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "postgres: iterate rows")
	}
	return tab, nil
}

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []byte:
		return string(t)
	case pgtype.Numeric:
		if !t.Valid {
			return ""
		}
		f, err := t.Float64Value()
		if err != nil || !f.Valid {
			return fmt.Sprint(t)
		}
		return strconv.FormatFloat(f.Float64, 'f', -1, 64)
	default:
		return fmt.Sprint(t)
	}
}
