package postgresrepo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shoplabs/shopcore/internal/dal/interfaces/iorderstore"
	"github.com/shoplabs/shopcore/internal/service/models/order"
)

var qb = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// Store persists each user's order list as one jsonb row with a version
// column. The version check inside the UPDATE gives the same
// compare-and-swap contract as the in-memory store, but durable.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) Load(ctx context.Context, userID string) ([]order.Order, uint64, error) {
	query, args, err := qb.
		Select("orders", "version").
		From("user_orders").
		Where(sq.Eq{"user_id": userID}).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build load query: %w", err)
	}

	var raw []byte
	var version int64
	err = s.pool.QueryRow(ctx, query, args...).Scan(&raw, &version)
	if errors.Is(err, pgx.ErrNoRows) {
		return []order.Order{}, 0, nil
	}
	if err != nil {
		return nil, 0, fmt.Errorf("load orders for user %s: %w", userID, err)
	}

	var orders []order.Order
	if err := json.Unmarshal(raw, &orders); err != nil {
		return nil, 0, fmt.Errorf("decode orders for user %s: %w", userID, err)
	}

	return orders, uint64(version), nil
}

func (s *Store) Save(ctx context.Context, userID string, orders []order.Order, version uint64) error {
	raw, err := json.Marshal(orders)
	if err != nil {
		return fmt.Errorf("encode orders for user %s: %w", userID, err)
	}

	if version == 0 {
		query, args, err := qb.
			Insert("user_orders").
			Columns("user_id", "orders", "version", "updated_at").
			Values(userID, raw, 1, time.Now()).
			Suffix("ON CONFLICT (user_id) DO NOTHING").
			ToSql()
		if err != nil {
			return fmt.Errorf("build insert query: %w", err)
		}

		tag, err := s.pool.Exec(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("insert orders for user %s: %w", userID, err)
		}
		if tag.RowsAffected() == 0 {
			return iorderstore.ErrVersionConflict
		}

		return nil
	}

	query, args, err := qb.
		Update("user_orders").
		Set("orders", raw).
		Set("version", version+1).
		Set("updated_at", time.Now()).
		Where(sq.Eq{"user_id": userID, "version": version}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update query: %w", err)
	}

	tag, err := s.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update orders for user %s: %w", userID, err)
	}
	if tag.RowsAffected() == 0 {
		return iorderstore.ErrVersionConflict
	}

	return nil
}

func (s *Store) PendingCompensation(ctx context.Context, limit int) ([]order.Order, error) {
	// Rows are filtered in SQL down to users with at least one due pending
	// clearance; the per-order filtering happens on the decoded list.
	query, args, err := qb.
		Select("orders").
		From("user_orders").
		Where(sq.Expr(`EXISTS (
			SELECT 1 FROM jsonb_array_elements(orders) AS o
			WHERE o->'cartClearance'->>'status' = 'pending'
			  AND (o->'cartClearance'->>'nextAttemptAt')::timestamptz <= now()
		)`)).
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build pending query: %w", err)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query pending compensations: %w", err)
	}
	defer rows.Close()

	now := time.Now()
	due := make([]order.Order, 0)
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan pending row: %w", err)
		}
		var orders []order.Order
		if err := json.Unmarshal(raw, &orders); err != nil {
			return nil, fmt.Errorf("decode pending orders: %w", err)
		}
		for _, o := range orders {
			if o.CartClearance.Status == order.ClearancePending && !o.CartClearance.NextAttemptAt.After(now) {
				due = append(due, o)
			}
		}
	}

	return due, rows.Err()
}
