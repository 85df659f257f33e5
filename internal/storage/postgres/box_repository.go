package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/slabhouse/marketplace/internal/domain"
)

type BoxRepository struct {
	pool *pgxpool.Pool
}

func NewBoxRepository(pool *pgxpool.Pool) *BoxRepository {
	return &BoxRepository{pool: pool}
}

func (r *BoxRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.pool, fn)
}

func (r *BoxRepository) GetCard(ctx context.Context, cardID string) (domain.Card, error) {
	return getCard(ctx, querierFor(ctx, r.pool), cardID)
}

func (r *BoxRepository) TransitionCardStatus(ctx context.Context, cardID string, from, to domain.CardStatus) (domain.Card, error) {
	return transitionCardStatus(ctx, querierFor(ctx, r.pool), cardID, from, to)
}

func (r *BoxRepository) GetBoxByBuyer(ctx context.Context, buyerID string) (*domain.BuyerBox, error) {
	return getBoxByBuyer(ctx, querierFor(ctx, r.pool), buyerID, false)
}

func (r *BoxRepository) GetBoxByBuyerForUpdate(ctx context.Context, buyerID string) (*domain.BuyerBox, error) {
	return getBoxByBuyer(ctx, querierFor(ctx, r.pool), buyerID, true)
}

func (r *BoxRepository) CreateBox(ctx context.Context, box domain.BuyerBox) error {
	// DO NOTHING instead of raising 23505: a raised unique violation would
	// abort the enclosing transaction, and the claim path re-reads the
	// winner's box inside that same transaction.
	const stmt = `
INSERT INTO buyer_boxes (id, buyer_id, created_at) VALUES ($1, $2, $3)
ON CONFLICT (buyer_id) DO NOTHING`

	tag, err := querierFor(ctx, r.pool).Exec(ctx, stmt, box.ID, box.BuyerID, box.CreatedAt)
	if err != nil {
		return fmt.Errorf("create buyer box: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrBoxExists
	}
	return nil
}

func (r *BoxRepository) GetBoxItem(ctx context.Context, boxID, cardID string) (*domain.BoxItem, error) {
	const query = `SELECT id, box_id, card_id, added_at FROM box_items WHERE box_id = $1 AND card_id = $2`

	var item domain.BoxItem
	err := querierFor(ctx, r.pool).QueryRow(ctx, query, boxID, cardID).
		Scan(&item.ID, &item.BoxID, &item.CardID, &item.AddedAt)
	if err != nil {
		if isInvalidUUID(err) {
			return nil, domain.ErrInvalidID
		}
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get box item: %w", err)
	}
	return &item, nil
}

func (r *BoxRepository) AddBoxItem(ctx context.Context, item domain.BoxItem) error {
	// box_items.card_id is unique across all boxes: a card sits in at most
	// one buyer box. DO NOTHING keeps the transaction usable so the claim
	// path can look up who holds the card after a lost race.
	const stmt = `
INSERT INTO box_items (id, box_id, card_id, added_at) VALUES ($1, $2, $3, $4)
ON CONFLICT (card_id) DO NOTHING`

	tag, err := querierFor(ctx, r.pool).Exec(ctx, stmt, item.ID, item.BoxID, item.CardID, item.AddedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrCardNotFound
		}
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("add box item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrCardConflict
	}
	return nil
}

func (r *BoxRepository) DeleteBoxItem(ctx context.Context, itemID string) error {
	const stmt = `DELETE FROM box_items WHERE id = $1`

	tag, err := querierFor(ctx, r.pool).Exec(ctx, stmt, itemID)
	if err != nil {
		return fmt.Errorf("delete box item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrBoxItemNotFound
	}
	return nil
}

func (r *BoxRepository) ListBoxEntries(ctx context.Context, boxID string) ([]domain.BoxEntry, error) {
	return listBoxEntries(ctx, querierFor(ctx, r.pool), boxID)
}

func (r *BoxRepository) DeleteBoxItems(ctx context.Context, boxID string) error {
	return deleteBoxItems(ctx, querierFor(ctx, r.pool), boxID)
}

// The box read helpers are shared with the checkout repository, which locks
// the box row and drains it inside its own transaction.
func getBoxByBuyer(ctx context.Context, q querier, buyerID string, forUpdate bool) (*domain.BuyerBox, error) {
	query := `SELECT id, buyer_id, created_at FROM buyer_boxes WHERE buyer_id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	var box domain.BuyerBox
	err := q.QueryRow(ctx, query, buyerID).Scan(&box.ID, &box.BuyerID, &box.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get buyer box: %w", err)
	}
	return &box, nil
}

func listBoxEntries(ctx context.Context, q querier, boxID string) ([]domain.BoxEntry, error) {
	const query = `
SELECT bi.id, bi.box_id, bi.card_id, bi.added_at,
	c.id, c.seller_id, c.intake_batch_id, c.category, c.set_name, c.player_name, c.team_name,
	c.card_number, c.parallel, c.serial_number, c.serial_total, c.condition, c.price_cents,
	c.front_image_url, c.back_image_url, c.slot_location, c.status, c.created_at, c.updated_at
FROM box_items bi
JOIN cards c ON c.id = bi.card_id
WHERE bi.box_id = $1
ORDER BY bi.added_at ASC`

	rows, err := q.Query(ctx, query, boxID)
	if err != nil {
		return nil, fmt.Errorf("list box entries: %w", err)
	}
	defer rows.Close()

	var entries []domain.BoxEntry
	for rows.Next() {
		var e domain.BoxEntry
		var batchID *string
		var status string
		err := rows.Scan(
			&e.Item.ID, &e.Item.BoxID, &e.Item.CardID, &e.Item.AddedAt,
			&e.Card.ID, &e.Card.SellerID, &batchID, &e.Card.Category, &e.Card.SetName,
			&e.Card.PlayerName, &e.Card.TeamName, &e.Card.CardNumber, &e.Card.Parallel,
			&e.Card.SerialNumber, &e.Card.SerialTotal, &e.Card.Condition, &e.Card.PriceCents,
			&e.Card.FrontImageURL, &e.Card.BackImageURL, &e.Card.SlotLocation, &status,
			&e.Card.CreatedAt, &e.Card.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan box entry: %w", err)
		}
		if batchID != nil {
			e.Card.IntakeBatchID = *batchID
		}
		e.Card.Status = domain.CardStatus(status)
		entries = append(entries, e)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate box entries: %w", rows.Err())
	}
	return entries, nil
}

func deleteBoxItems(ctx context.Context, q querier, boxID string) error {
	const stmt = `DELETE FROM box_items WHERE box_id = $1`

	if _, err := q.Exec(ctx, stmt, boxID); err != nil {
		return fmt.Errorf("delete box items: %w", err)
	}
	return nil
}
