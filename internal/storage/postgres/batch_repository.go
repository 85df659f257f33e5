package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/slabhouse/marketplace/internal/domain"
)

type BatchRepository struct {
	pool *pgxpool.Pool
}

func NewBatchRepository(pool *pgxpool.Pool) *BatchRepository {
	return &BatchRepository{pool: pool}
}

func (r *BatchRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.pool, fn)
}

func (r *BatchRepository) CreateBatch(ctx context.Context, batch domain.IntakeBatch) error {
	const stmt = `
INSERT INTO intake_batches (id, seller_id, status, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5)`

	_, err := querierFor(ctx, r.pool).Exec(ctx, stmt,
		batch.ID, batch.SellerID, batch.Status, batch.CreatedAt, batch.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create intake batch: %w", err)
	}
	return nil
}

func (r *BatchRepository) GetBatch(ctx context.Context, batchID string) (domain.IntakeBatch, error) {
	return r.getBatch(ctx, batchID, false)
}

func (r *BatchRepository) GetBatchForUpdate(ctx context.Context, batchID string) (domain.IntakeBatch, error) {
	return r.getBatch(ctx, batchID, true)
}

func (r *BatchRepository) getBatch(ctx context.Context, batchID string, forUpdate bool) (domain.IntakeBatch, error) {
	query := `SELECT id, seller_id, status, created_at, updated_at FROM intake_batches WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	var b domain.IntakeBatch
	var status string
	err := querierFor(ctx, r.pool).QueryRow(ctx, query, batchID).
		Scan(&b.ID, &b.SellerID, &status, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.IntakeBatch{}, domain.ErrInvalidID
		}
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.IntakeBatch{}, domain.ErrBatchNotFound
		}
		return domain.IntakeBatch{}, fmt.Errorf("get intake batch: %w", err)
	}
	b.Status = domain.IntakeBatchStatus(status)
	return b, nil
}

func (r *BatchRepository) ListBatchesBySeller(ctx context.Context, sellerID string) ([]domain.IntakeBatch, error) {
	const query = `
SELECT id, seller_id, status, created_at, updated_at
FROM intake_batches
WHERE seller_id = $1
ORDER BY created_at DESC`

	rows, err := querierFor(ctx, r.pool).Query(ctx, query, sellerID)
	if err != nil {
		return nil, fmt.Errorf("list intake batches: %w", err)
	}
	defer rows.Close()

	var batches []domain.IntakeBatch
	for rows.Next() {
		var b domain.IntakeBatch
		var status string
		if err := rows.Scan(&b.ID, &b.SellerID, &status, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan intake batch: %w", err)
		}
		b.Status = domain.IntakeBatchStatus(status)
		batches = append(batches, b)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate intake batches: %w", rows.Err())
	}
	return batches, nil
}

func (r *BatchRepository) UpdateBatchStatus(ctx context.Context, batchID string, from, to domain.IntakeBatchStatus) error {
	const stmt = `UPDATE intake_batches SET status = $3, updated_at = NOW() WHERE id = $1 AND status = $2`

	tag, err := querierFor(ctx, r.pool).Exec(ctx, stmt, batchID, from, to)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("update intake batch status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrBatchNotFound
	}
	return nil
}
