package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JonMunkholm/etl/internal/config"
	"github.com/JonMunkholm/etl/internal/core"
)

// PgStore is a core.Store over a pgx connection pool.
type PgStore struct {
	pool   *pgxpool.Pool
	tx     pgx.Tx
	closed bool
}

// NewPgStore wraps pool. The store takes ownership of pool.
func NewPgStore(pool *pgxpool.Pool) *PgStore {
	return &PgStore{pool: pool}
}

// OpenPostgres connects a pool using cfg and verifies it with a ping.
func OpenPostgres(ctx context.Context, cfg config.DatabaseConfig) (*PgStore, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.MaxConns)
	poolConfig.MinConns = int32(cfg.MinConns)
	poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return NewPgStore(pool), nil
}

func (s *PgStore) Dialect() core.Dialect { return core.DialectPostgres }

// Query runs query inside the open transaction, if any.
func (s *PgStore) Query(ctx context.Context, query string, args ...any) (core.Rows, error) {
	var (
		rows pgx.Rows
		err  error
	)
	if s.tx != nil {
		rows, err = s.tx.Query(ctx, query, args...)
	} else {
		rows, err = s.pool.Query(ctx, query, args...)
	}
	if err != nil {
		return nil, pgError(err)
	}

	fields := rows.FieldDescriptions()
	columns := make([]string, len(fields))
	for i, f := range fields {
		columns[i] = f.Name
	}
	return &pgRows{rows: rows, columns: columns}, nil
}

func (s *PgStore) Exec(ctx context.Context, stmt string, args ...any) error {
	tx, err := s.begin(ctx)
	if err != nil {
		return err
	}
	_, err = tx.Exec(ctx, stmt, args...)
	return pgError(err)
}

// ExecBatch queues stmt once per row and sends them in one round trip.
func (s *PgStore) ExecBatch(ctx context.Context, stmt string, batch [][]core.Value) error {
	tx, err := s.begin(ctx)
	if err != nil {
		return err
	}

	b := &pgx.Batch{}
	for _, row := range batch {
		b.Queue(stmt, core.Args(row)...)
	}

	results := tx.SendBatch(ctx, b)
	for i := range batch {
		if _, err := results.Exec(); err != nil {
			results.Close()
			return fmt.Errorf("row %d: %w", i+1, pgError(err))
		}
	}
	return results.Close()
}

// Commit commits the open transaction. Without one it does nothing.
func (s *PgStore) Commit(ctx context.Context) error {
	if s.tx == nil {
		return nil
	}
	tx := s.tx
	s.tx = nil
	return pgError(tx.Commit(ctx))
}

// Close rolls back uncommitted work and closes the pool. It is safe to call
// more than once.
func (s *PgStore) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	var err error
	if s.tx != nil {
		if rbErr := s.tx.Rollback(context.Background()); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			err = fmt.Errorf("rollback: %w", rbErr)
		}
		s.tx = nil
	}
	s.pool.Close()
	return err
}

func (s *PgStore) begin(ctx context.Context) (pgx.Tx, error) {
	if s.closed {
		return nil, errors.New("store is closed")
	}
	if s.tx != nil {
		return s.tx, nil
	}
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	s.tx = tx
	return tx, nil
}

// pgError adds the server's detail line to a PostgreSQL error so it reaches
// the user message.
func pgError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Detail != "" {
		return fmt.Errorf("%w: %s", err, pgErr.Detail)
	}
	return err
}

// pgRows adapts pgx.Rows to core.Rows.
type pgRows struct {
	rows    pgx.Rows
	columns []string
}

func (r *pgRows) Columns() []string { return r.columns }

func (r *pgRows) Next() bool { return r.rows.Next() }

func (r *pgRows) Values() ([]core.Value, error) {
	raw, err := r.rows.Values()
	if err != nil {
		return nil, err
	}
	values := make([]core.Value, len(raw))
	for i, v := range raw {
		values[i] = pgValue(v)
	}
	return values, nil
}

func (r *pgRows) Err() error { return pgError(r.rows.Err()) }

func (r *pgRows) Close() error {
	r.rows.Close()
	return nil
}

// pgValue converts the types pgx decodes that core.ValueOf does not know.
func pgValue(v any) core.Value {
	switch x := v.(type) {
	case pgtype.Numeric:
		if !x.Valid {
			return core.Null()
		}
		if x.Exp >= 0 {
			if i, err := x.Int64Value(); err == nil && i.Valid {
				return core.Int(i.Int64)
			}
		}
		f, err := x.Float64Value()
		if err != nil || !f.Valid {
			return core.Null()
		}
		return core.Real(f.Float64)
	case [16]byte:
		return core.Text(uuid.UUID(x).String())
	default:
		return core.ValueOf(v)
	}
}
