package calendar

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

var validTable = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// Postgres is a Store backed by a single Postgres table.
type Postgres struct {
	pool  *pgxpool.Pool
	table string
}

// NewPostgres connects to dsn and ensures the entries table exists.
func NewPostgres(ctx context.Context, dsn, table string) (*Postgres, error) {
	if !validTable.MatchString(table) {
		return nil, fmt.Errorf("invalid table name: %q", table)
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}

	p := &Postgres{pool: pool, table: table}
	if err := p.ensureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return p, nil
}

// Close releases the connection pool.
func (p *Postgres) Close() { p.pool.Close() }

func (p *Postgres) ensureSchema(ctx context.Context) error {
	ddl := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id          BIGSERIAL PRIMARY KEY,
			title       TEXT NOT NULL,
			location    TEXT NOT NULL DEFAULT '',
			description TEXT NOT NULL DEFAULT '',
			start_ts    TIMESTAMPTZ NOT NULL,
			end_ts      TIMESTAMPTZ NOT NULL
		)`, p.table)
	if _, err := p.pool.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("ensuring schema: %w", err)
	}
	idx := fmt.Sprintf(
		`CREATE INDEX IF NOT EXISTS %s_start_idx ON %s (start_ts)`, p.table, p.table)
	if _, err := p.pool.Exec(ctx, idx); err != nil {
		return fmt.Errorf("ensuring index: %w", err)
	}
	return nil
}

// ListDay returns the entries overlapping the 24 hours starting at day.
func (p *Postgres) ListDay(ctx context.Context, day time.Time) ([]Entry, error) {
	query := fmt.Sprintf(
		`SELECT id, title, location, description, start_ts, end_ts
		 FROM %s WHERE start_ts < $1 AND end_ts > $2`, p.table)

	rows, err := p.pool.Query(ctx, query, day.Add(24*time.Hour), day)
	if err != nil {
		return nil, fmt.Errorf("listing entries: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var (
			id int64
			e  Entry
		)
		if err := rows.Scan(&id, &e.Title, &e.Location, &e.Description, &e.Start, &e.End); err != nil {
			return nil, fmt.Errorf("scanning entry: %w", err)
		}
		e.ID = strconv.FormatInt(id, 10)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing entries: %w", err)
	}
	return out, nil
}

// Create inserts a new entry and returns it with the assigned ID.
func (p *Postgres) Create(ctx context.Context, e Entry) (Entry, error) {
	query := fmt.Sprintf(
		`INSERT INTO %s (title, location, description, start_ts, end_ts)
		 VALUES ($1, $2, $3, $4, $5) RETURNING id`, p.table)

	var id int64
	err := p.pool.QueryRow(ctx, query, e.Title, e.Location, e.Description, e.Start, e.End).Scan(&id)
	if err != nil {
		return Entry{}, fmt.Errorf("creating entry: %w", err)
	}
	e.ID = strconv.FormatInt(id, 10)
	return e, nil
}

// Update overwrites all mutable fields of the entry identified by e.ID.
func (p *Postgres) Update(ctx context.Context, e Entry) error {
	id, err := strconv.ParseInt(e.ID, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid entry id %q: %w", e.ID, err)
	}

	query := fmt.Sprintf(
		`UPDATE %s SET title = $2, location = $3, description = $4, start_ts = $5, end_ts = $6
		 WHERE id = $1`, p.table)

	tag, err := p.pool.Exec(ctx, query, id, e.Title, e.Location, e.Description, e.Start, e.End)
	if err != nil {
		return fmt.Errorf("updating entry: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("entry not found: %s", e.ID)
	}
	return nil
}
