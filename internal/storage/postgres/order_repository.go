package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/slabhouse/marketplace/internal/domain"
)

type OrderRepository struct {
	pool *pgxpool.Pool
}

func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

func (r *OrderRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.pool, fn)
}

func (r *OrderRepository) GetBoxByBuyerForUpdate(ctx context.Context, buyerID string) (*domain.BuyerBox, error) {
	return getBoxByBuyer(ctx, querierFor(ctx, r.pool), buyerID, true)
}

func (r *OrderRepository) ListBoxEntries(ctx context.Context, boxID string) ([]domain.BoxEntry, error) {
	return listBoxEntries(ctx, querierFor(ctx, r.pool), boxID)
}

func (r *OrderRepository) DeleteBoxItems(ctx context.Context, boxID string) error {
	return deleteBoxItems(ctx, querierFor(ctx, r.pool), boxID)
}

func (r *OrderRepository) TransitionCardStatus(ctx context.Context, cardID string, from, to domain.CardStatus) (domain.Card, error) {
	return transitionCardStatus(ctx, querierFor(ctx, r.pool), cardID, from, to)
}

func (r *OrderRepository) CreateOrder(ctx context.Context, order domain.Order) error {
	const stmt = `
INSERT INTO orders (id, buyer_id, status, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5)`

	_, err := querierFor(ctx, r.pool).Exec(ctx, stmt,
		order.ID, order.BuyerID, order.Status, order.CreatedAt, order.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create order: %w", err)
	}
	return nil
}

// CreateOrderItems inserts lines in claim order; line_no preserves it for
// reads. order_items.card_id is unique: a card is sold at most once, ever.
func (r *OrderRepository) CreateOrderItems(ctx context.Context, items []domain.OrderItem) error {
	const stmt = `
INSERT INTO order_items (id, order_id, card_id, price_cents)
VALUES ($1, $2, $3, $4)`

	q := querierFor(ctx, r.pool)
	for _, item := range items {
		if _, err := q.Exec(ctx, stmt, item.ID, item.OrderID, item.CardID, item.PriceCents); err != nil {
			if isUniqueViolation(err) {
				return domain.ErrCardConflict
			}
			return fmt.Errorf("create order item: %w", err)
		}
	}
	return nil
}

func (r *OrderRepository) GetOrder(ctx context.Context, orderID string) (domain.Order, error) {
	return r.getOrder(ctx, orderID, false)
}

func (r *OrderRepository) GetOrderForUpdate(ctx context.Context, orderID string) (domain.Order, error) {
	return r.getOrder(ctx, orderID, true)
}

func (r *OrderRepository) getOrder(ctx context.Context, orderID string, forUpdate bool) (domain.Order, error) {
	query := `SELECT id, buyer_id, status, created_at, updated_at FROM orders WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	var o domain.Order
	var status string
	err := querierFor(ctx, r.pool).QueryRow(ctx, query, orderID).
		Scan(&o.ID, &o.BuyerID, &status, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.Order{}, domain.ErrInvalidID
		}
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Order{}, domain.ErrOrderNotFound
		}
		return domain.Order{}, fmt.Errorf("get order: %w", err)
	}
	o.Status = domain.OrderStatus(status)
	return o, nil
}

func (r *OrderRepository) ListOrderItems(ctx context.Context, orderID string) ([]domain.OrderItem, error) {
	const query = `
SELECT id, order_id, card_id, price_cents
FROM order_items
WHERE order_id = $1
ORDER BY line_no ASC`

	rows, err := querierFor(ctx, r.pool).Query(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("list order items: %w", err)
	}
	defer rows.Close()

	var items []domain.OrderItem
	for rows.Next() {
		var item domain.OrderItem
		if err := rows.Scan(&item.ID, &item.OrderID, &item.CardID, &item.PriceCents); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		items = append(items, item)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate order items: %w", rows.Err())
	}
	return items, nil
}

func (r *OrderRepository) ListOrdersByBuyer(ctx context.Context, buyerID string) ([]domain.Order, error) {
	const query = `
SELECT id, buyer_id, status, created_at, updated_at
FROM orders
WHERE buyer_id = $1
ORDER BY created_at DESC`

	rows, err := querierFor(ctx, r.pool).Query(ctx, query, buyerID)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		var o domain.Order
		var status string
		if err := rows.Scan(&o.ID, &o.BuyerID, &status, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		o.Status = domain.OrderStatus(status)
		orders = append(orders, o)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate orders: %w", rows.Err())
	}
	return orders, nil
}

// UpdateOrderStatus is a compare-and-swap on the fulfillment status, matching
// only when the current status equals from.
func (r *OrderRepository) UpdateOrderStatus(ctx context.Context, orderID string, from, to domain.OrderStatus) error {
	const stmt = `UPDATE orders SET status = $3, updated_at = NOW() WHERE id = $1 AND status = $2`

	tag, err := querierFor(ctx, r.pool).Exec(ctx, stmt, orderID, from, to)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("update order status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}
