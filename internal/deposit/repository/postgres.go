package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"depositrelay/internal/apperr"
	"depositrelay/internal/deposit"
	"depositrelay/internal/metrics"
	"depositrelay/internal/okx/entity"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const uniqueViolation = "23505"

const schema = `
CREATE TABLE IF NOT EXISTS deposits (
	id         TEXT PRIMARY KEY,
	user_id    TEXT NOT NULL,
	currency   TEXT NOT NULL,
	chain      TEXT NOT NULL,
	address    TEXT NOT NULL,
	memo       TEXT,
	status     TEXT NOT NULL DEFAULT 'pending',
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS deposits_user_id_idx ON deposits (user_id);`

// PostgresLedger — реализация deposit.Ledger для PostgreSQL.
// Уникальность id обеспечивает первичный ключ таблицы.
type PostgresLedger struct {
	db      *sqlx.DB
	timeout time.Duration
	now     func() time.Time
}

func NewPostgresLedger(db *sqlx.DB, timeout time.Duration) *PostgresLedger {
	return &PostgresLedger{db: db, timeout: timeout, now: time.Now}
}

// EnsureSchema создает таблицу журнала, если её ещё нет
func (r *PostgresLedger) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return apperr.E(apperr.KindPersistence, "PostgresLedger.EnsureSchema", err)
	}
	return nil
}

func (r *PostgresLedger) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, r.timeout)
}

// Record вставляет одну строку; id генерируется, если не задан
func (r *PostgresLedger) Record(ctx context.Context, req *deposit.Request) (string, error) {
	const op = "PostgresLedger.Record"

	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	if req.Status == "" {
		req.Status = entity.StatusPending
	}
	if req.CreatedAt.IsZero() {
		req.CreatedAt = r.now().UTC()
	}

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	start := time.Now()
	_, err := r.db.NamedExecContext(ctx,
		`INSERT INTO deposits (id, user_id, currency, chain, address, memo, status, created_at)
		 VALUES (:id, :user_id, :currency, :chain, :address, :memo, :status, :created_at)`,
		req)
	metrics.LedgerWriteDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return "", apperr.E(apperr.KindPersistence, op, fmt.Errorf("duplicate deposit id %s: %w", req.ID, err))
		}
		return "", apperr.E(apperr.KindPersistence, op, err)
	}

	return req.ID, nil
}

func (r *PostgresLedger) FindByID(ctx context.Context, id string) (*deposit.Request, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var req deposit.Request
	err := r.db.GetContext(ctx, &req,
		`SELECT id, user_id, currency, chain, address, memo, status, created_at
		 FROM deposits WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, deposit.ErrNotFound
	}
	if err != nil {
		return nil, apperr.E(apperr.KindPersistence, "PostgresLedger.FindByID", err)
	}
	return &req, nil
}
