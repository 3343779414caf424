package postgres

import (
	"context"
	"errors"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmehra2102/payment-status-service/internal/payment/application"
	"github.com/dmehra2102/payment-status-service/internal/payment/domain"
)

type Repository struct {
	log  *slog.Logger
	pool *pgxpool.Pool
}

func NewRepository(log *slog.Logger, pool *pgxpool.Pool) *Repository {
	return &Repository{log: log, pool: pool}
}

func (r *Repository) SaveWithOutbox(ctx context.Context, c domain.Check, eventType string, payload []byte, headers map[string]string, traceparent string) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	_, err = tx.Exec(ctx, `INSERT INTO completion_checks (id, transaction_id, completed, status, checked_at) VALUES ($1,$2,$3,$4,$5)`,
		c.ID, c.TransactionID, c.Completed, string(c.Status), c.CheckedAt)
	if err != nil {
		return err
	}

	if headers == nil {
		headers = map[string]string{}
	}
	_, err = tx.Exec(ctx, `INSERT INTO outbox (aggregate_type, aggregate_id, type, payload, headers, traceparent, status) VALUES ($1,$2,$3,$4,$5,$6,'pending')`,
		"payment", c.TransactionID, eventType, payload, headers, traceparent)
	if err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}
	r.log.Debug("completion check stored", "check_id", c.ID, "transaction_id", c.TransactionID, "type", eventType)
	return nil
}

func (r *Repository) Latest(ctx context.Context, transactionID string) (domain.Check, error) {
	var c domain.Check
	var status string
	err := r.pool.QueryRow(ctx, `SELECT id, transaction_id, completed, status, checked_at FROM completion_checks WHERE transaction_id=$1 ORDER BY checked_at DESC, seq DESC LIMIT 1`, transactionID).
		Scan(&c.ID, &c.TransactionID, &c.Completed, &status, &c.CheckedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Check{}, application.ErrCheckNotFound
		}
		return domain.Check{}, err
	}
	c.Status = domain.CompletionStatus(status)
	c.CheckedAt = c.CheckedAt.UTC()
	return c, nil
}
