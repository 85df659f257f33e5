package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/slabhouse/marketplace/internal/domain"
)

const cardColumns = `id, seller_id, intake_batch_id, category, set_name, player_name, team_name,
card_number, parallel, serial_number, serial_total, condition, price_cents,
front_image_url, back_image_url, slot_location, status, created_at, updated_at`

type CardRepository struct {
	pool *pgxpool.Pool
}

func NewCardRepository(pool *pgxpool.Pool) *CardRepository {
	return &CardRepository{pool: pool}
}

func (r *CardRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.pool, fn)
}

func (r *CardRepository) CreateCard(ctx context.Context, card domain.Card) error {
	const stmt = `
INSERT INTO cards (id, seller_id, intake_batch_id, category, set_name, player_name, team_name,
	card_number, parallel, serial_number, serial_total, condition, price_cents,
	slot_location, status, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`

	_, err := querierFor(ctx, r.pool).Exec(ctx, stmt,
		card.ID,
		card.SellerID,
		nullString(card.IntakeBatchID),
		card.Category,
		card.SetName,
		card.PlayerName,
		card.TeamName,
		card.CardNumber,
		card.Parallel,
		card.SerialNumber,
		card.SerialTotal,
		card.Condition,
		card.PriceCents,
		card.SlotLocation,
		card.Status,
		card.CreatedAt,
		card.UpdatedAt,
	)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		if isForeignKeyViolation(err) {
			return domain.ErrBatchNotFound
		}
		return fmt.Errorf("create card: %w", err)
	}
	return nil
}

func (r *CardRepository) GetCard(ctx context.Context, cardID string) (domain.Card, error) {
	return getCard(ctx, querierFor(ctx, r.pool), cardID)
}

func (r *CardRepository) TransitionCardStatus(ctx context.Context, cardID string, from, to domain.CardStatus) (domain.Card, error) {
	return transitionCardStatus(ctx, querierFor(ctx, r.pool), cardID, from, to)
}

func (r *CardRepository) UpdateCard(ctx context.Context, card domain.Card) error {
	const stmt = `
UPDATE cards
SET category = $2, set_name = $3, player_name = $4, team_name = $5, card_number = $6,
	parallel = $7, serial_number = $8, serial_total = $9, condition = $10,
	price_cents = $11, slot_location = $12, updated_at = $13
WHERE id = $1`

	tag, err := querierFor(ctx, r.pool).Exec(ctx, stmt,
		card.ID,
		card.Category,
		card.SetName,
		card.PlayerName,
		card.TeamName,
		card.CardNumber,
		card.Parallel,
		card.SerialNumber,
		card.SerialTotal,
		card.Condition,
		card.PriceCents,
		card.SlotLocation,
		card.UpdatedAt,
	)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("update card: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrCardNotFound
	}
	return nil
}

func (r *CardRepository) DeleteCard(ctx context.Context, cardID string) error {
	const stmt = `DELETE FROM cards WHERE id = $1`

	tag, err := querierFor(ctx, r.pool).Exec(ctx, stmt, cardID)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		if isForeignKeyViolation(err) {
			return domain.ErrCardReferenced
		}
		return fmt.Errorf("delete card: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrCardNotFound
	}
	return nil
}

func (r *CardRepository) SetCardImages(ctx context.Context, cardID, frontURL, backURL string) (domain.Card, error) {
	const stmt = `
UPDATE cards
SET front_image_url = COALESCE(NULLIF($2, ''), front_image_url),
	back_image_url = COALESCE(NULLIF($3, ''), back_image_url),
	updated_at = NOW()
WHERE id = $1
RETURNING ` + cardColumns

	card, err := scanCard(querierFor(ctx, r.pool).QueryRow(ctx, stmt, cardID, frontURL, backURL))
	if err != nil {
		if isInvalidUUID(err) {
			return domain.Card{}, domain.ErrInvalidID
		}
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Card{}, domain.ErrCardNotFound
		}
		return domain.Card{}, fmt.Errorf("set card images: %w", err)
	}
	return card, nil
}

func (r *CardRepository) ListCards(ctx context.Context, f domain.CardFilter) ([]domain.Card, int, error) {
	where := []string{"TRUE"}
	args := []any{}
	add := func(cond string, val any) {
		args = append(args, val)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}

	if f.Category != "" {
		add("category = $%d", f.Category)
	}
	if f.PlayerName != "" {
		add("player_name ILIKE '%%' || $%d || '%%'", f.PlayerName)
	}
	if f.SetName != "" {
		add("set_name ILIKE '%%' || $%d || '%%'", f.SetName)
	}
	if f.Parallel != "" {
		add("parallel = $%d", f.Parallel)
	}
	if f.Condition != "" {
		add("condition = $%d", f.Condition)
	}
	if f.Status != "" {
		add("status = $%d", string(f.Status))
	}
	if f.MinPrice != nil {
		add("price_cents >= $%d", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		add("price_cents <= $%d", *f.MaxPrice)
	}

	clause := strings.Join(where, " AND ")
	q := querierFor(ctx, r.pool)

	var total int
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM cards WHERE `+clause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count cards: %w", err)
	}

	listArgs := append(args, f.Take, f.Skip)
	query := fmt.Sprintf(`SELECT %s FROM cards WHERE %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		cardColumns, clause, len(args)+1, len(args)+2)

	rows, err := q.Query(ctx, query, listArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("list cards: %w", err)
	}
	defer rows.Close()

	var cards []domain.Card
	for rows.Next() {
		card, err := scanCard(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan card: %w", err)
		}
		cards = append(cards, card)
	}
	if rows.Err() != nil {
		return nil, 0, fmt.Errorf("iterate cards: %w", rows.Err())
	}
	return cards, total, nil
}

// getCard and transitionCardStatus are shared with the box and order
// repositories; card rows are read and CAS-written identically everywhere.
func getCard(ctx context.Context, q querier, cardID string) (domain.Card, error) {
	const query = `SELECT ` + cardColumns + ` FROM cards WHERE id = $1`

	card, err := scanCard(q.QueryRow(ctx, query, cardID))
	if err != nil {
		if isInvalidUUID(err) {
			return domain.Card{}, domain.ErrInvalidID
		}
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Card{}, domain.ErrCardNotFound
		}
		return domain.Card{}, fmt.Errorf("get card: %w", err)
	}
	return card, nil
}

// transitionCardStatus is the compare-and-swap write on card lifecycle state:
// the UPDATE matches only when the current status equals from, so concurrent
// transitions on one card are totally ordered by the row lock.
func transitionCardStatus(ctx context.Context, q querier, cardID string, from, to domain.CardStatus) (domain.Card, error) {
	const stmt = `
UPDATE cards
SET status = $3, updated_at = NOW()
WHERE id = $1 AND status = $2
RETURNING ` + cardColumns

	card, err := scanCard(q.QueryRow(ctx, stmt, cardID, from, to))
	if err == nil {
		return card, nil
	}
	if isInvalidUUID(err) {
		return domain.Card{}, domain.ErrInvalidID
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return domain.Card{}, fmt.Errorf("transition card status: %w", err)
	}

	// Zero rows: the card is gone or someone else transitioned it first.
	var status string
	switch err := q.QueryRow(ctx, `SELECT status FROM cards WHERE id = $1`, cardID).Scan(&status); {
	case errors.Is(err, pgx.ErrNoRows):
		return domain.Card{}, domain.ErrCardNotFound
	case err != nil:
		return domain.Card{}, fmt.Errorf("transition card status: %w", err)
	default:
		return domain.Card{}, domain.ErrCardConflict
	}
}

func scanCard(row pgx.Row) (domain.Card, error) {
	var c domain.Card
	var batchID *string
	var status string
	err := row.Scan(
		&c.ID,
		&c.SellerID,
		&batchID,
		&c.Category,
		&c.SetName,
		&c.PlayerName,
		&c.TeamName,
		&c.CardNumber,
		&c.Parallel,
		&c.SerialNumber,
		&c.SerialTotal,
		&c.Condition,
		&c.PriceCents,
		&c.FrontImageURL,
		&c.BackImageURL,
		&c.SlotLocation,
		&status,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return domain.Card{}, err
	}
	if batchID != nil {
		c.IntakeBatchID = *batchID
	}
	c.Status = domain.CardStatus(status)
	return c, nil
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
