package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/rs/zerolog"
)

// Dialect names the SQL flavour a Store speaks. The values double as the
// DB_DRIVER config values.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite3"
	DialectPostgres Dialect = "pgx"
)

// Config selects and locates the database.
type Config struct {
	Driver string
	DSN    string
}

// Store keeps invited guests, RSVPs and seating rows in a SQL database.
type Store struct {
	db      *sql.DB
	dialect Dialect
	log     zerolog.Logger
}

// querier is what *sql.DB and *sql.Tx have in common.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Open connects to the configured database and pings it.
func Open(ctx context.Context, cfg Config, log zerolog.Logger) (*Store, error) {
	var (
		db  *sql.DB
		err error
	)

	dialect := Dialect(cfg.Driver)
	switch dialect {
	case DialectPostgres:
		pgCfg, perr := pgx.ParseConfig(cfg.DSN)
		if perr != nil {
			return nil, fmt.Errorf("failed to parse database url: %w", perr)
		}
		db = stdlib.OpenDB(*pgCfg)
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(10)
		db.SetConnMaxLifetime(30 * time.Minute)
	case DialectSQLite, "":
		dialect = DialectSQLite
		db, err = sql.Open("sqlite3", sqliteDSN(cfg.DSN))
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		// one writer; also keeps ":memory:" databases on a single connection
		db.SetMaxOpenConns(1)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 8*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return New(db, dialect, log), nil
}

// New wraps an open database handle.
func New(db *sql.DB, dialect Dialect, log zerolog.Logger) *Store {
	return &Store{
		db:      db,
		dialect: dialect,
		log:     log.With().Str("component", "storage").Logger(),
	}
}

// Close closes the underlying database.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// DB exposes the handle for callers that share it, such as the WhatsApp
// device store.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Dialect returns the SQL flavour in use.
func (s *Store) Dialect() Dialect {
	return s.dialect
}

// Migrate creates the tables and indexes if they do not exist yet.
func (s *Store) Migrate(ctx context.Context) error {
	stmts := sqliteSchema
	if s.dialect == DialectPostgres {
		stmts = postgresSchema
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to migrate schema: %w", err)
		}
	}
	s.log.Info().Str("dialect", string(s.dialect)).Msg("Database schema is up to date")
	return nil
}

// Counts is a row count per table.
type Counts struct {
	InvitedGuests int `json:"invited_guests"`
	RSVPs         int `json:"rsvps"`
	Seating       int `json:"seating_assignments"`
	Seated        int `json:"seated"`
}

// Counts returns the number of rows in each table.
func (s *Store) Counts(ctx context.Context) (Counts, error) {
	var c Counts
	query := s.rebind(`SELECT
		(SELECT COUNT(*) FROM invited_guests),
		(SELECT COUNT(*) FROM rsvps),
		(SELECT COUNT(*) FROM seating_assignments),
		(SELECT COUNT(*) FROM seating_assignments WHERE table_number > ?)`)
	if err := s.db.QueryRowContext(ctx, query, 0).Scan(&c.InvitedGuests, &c.RSVPs, &c.Seating, &c.Seated); err != nil {
		return c, fmt.Errorf("failed to count rows: %w", err)
	}
	return c, nil
}

// withTx runs fn in a transaction, committing when it returns nil.
func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			s.log.Error().Err(rbErr).Msg("Failed to roll back transaction")
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// rebind rewrites ? placeholders into $n for PostgreSQL.
func (s *Store) rebind(query string) string {
	if s.dialect != DialectPostgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func sqliteDSN(dsn string) string {
	if dsn == "" {
		dsn = "file:data/wedding.db"
	}
	if strings.Contains(dsn, "_foreign_keys") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_foreign_keys=on&_busy_timeout=5000"
}
