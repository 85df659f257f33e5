package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/slabhouse/marketplace/internal/domain"
)

// SearchRepository answers marketplace autocomplete and filter-option queries
// over available cards only.
type SearchRepository struct {
	pool *pgxpool.Pool
}

func NewSearchRepository(pool *pgxpool.Pool) *SearchRepository {
	return &SearchRepository{pool: pool}
}

func (r *SearchRepository) SuggestPlayers(ctx context.Context, query string, limit int) ([]string, error) {
	const q = `
SELECT DISTINCT player_name
FROM cards
WHERE status = 'available' AND player_name ILIKE '%' || $1 || '%'
ORDER BY player_name ASC
LIMIT $2`
	return r.queryStrings(ctx, q, query, limit)
}

func (r *SearchRepository) SuggestSets(ctx context.Context, query string, limit int) ([]string, error) {
	const q = `
SELECT DISTINCT set_name
FROM cards
WHERE status = 'available' AND set_name ILIKE '%' || $1 || '%'
ORDER BY set_name ASC
LIMIT $2`
	return r.queryStrings(ctx, q, query, limit)
}

func (r *SearchRepository) PopularPlayers(ctx context.Context, limit int) ([]domain.NameCount, error) {
	const q = `
SELECT player_name, COUNT(*)
FROM cards
WHERE status = 'available'
GROUP BY player_name
ORDER BY COUNT(*) DESC, player_name ASC
LIMIT $1`
	return r.queryNameCounts(ctx, q, limit)
}

func (r *SearchRepository) PopularSets(ctx context.Context, limit int) ([]domain.NameCount, error) {
	const q = `
SELECT set_name, COUNT(*)
FROM cards
WHERE status = 'available'
GROUP BY set_name
ORDER BY COUNT(*) DESC, set_name ASC
LIMIT $1`
	return r.queryNameCounts(ctx, q, limit)
}

func (r *SearchRepository) FilterOptions(ctx context.Context) (domain.FilterOptions, error) {
	var options domain.FilterOptions
	var err error

	if options.Categories, err = r.queryStrings(ctx,
		`SELECT DISTINCT category FROM cards WHERE status = 'available' ORDER BY category ASC`); err != nil {
		return domain.FilterOptions{}, err
	}
	if options.Parallels, err = r.queryStrings(ctx,
		`SELECT DISTINCT parallel FROM cards WHERE status = 'available' ORDER BY parallel ASC`); err != nil {
		return domain.FilterOptions{}, err
	}
	if options.Conditions, err = r.queryStrings(ctx,
		`SELECT DISTINCT condition FROM cards WHERE status = 'available' ORDER BY condition ASC`); err != nil {
		return domain.FilterOptions{}, err
	}

	const priceQuery = `
SELECT COALESCE(MIN(price_cents), 0), COALESCE(MAX(price_cents), 0)
FROM cards
WHERE status = 'available'`
	if err := r.pool.QueryRow(ctx, priceQuery).Scan(&options.MinPriceCents, &options.MaxPriceCents); err != nil {
		return domain.FilterOptions{}, fmt.Errorf("price range: %w", err)
	}
	return options, nil
}

func (r *SearchRepository) queryNameCounts(ctx context.Context, query string, args ...any) ([]domain.NameCount, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("search query: %w", err)
	}
	defer rows.Close()

	var values []domain.NameCount
	for rows.Next() {
		var v domain.NameCount
		if err := rows.Scan(&v.Name, &v.Count); err != nil {
			return nil, fmt.Errorf("scan name count: %w", err)
		}
		values = append(values, v)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate name counts: %w", rows.Err())
	}
	return values, nil
}

func (r *SearchRepository) queryStrings(ctx context.Context, query string, args ...any) ([]string, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("search query: %w", err)
	}
	defer rows.Close()

	var values []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("scan search value: %w", err)
		}
		values = append(values, v)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate search values: %w", rows.Err())
	}
	return values, nil
}
