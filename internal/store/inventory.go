package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type InventoryItem struct {
	ID             uuid.UUID `json:"_id"`
	Name           string    `json:"name"`
	Quantity       float64   `json:"quantity"`
	Unit           string    `json:"unit"`
	ExpirationDate time.Time `json:"expirationDate"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

func (s *Store) ListInventory(ctx context.Context) ([]InventoryItem, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, name, quantity, unit, expiration_date, created_at, updated_at
		FROM inventory_items
		ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("select inventory: %w", err)
	}
	defer rows.Close()

	items := []InventoryItem{}
	for rows.Next() {
		var it InventoryItem
		if err := rows.Scan(&it.ID, &it.Name, &it.Quantity, &it.Unit, &it.ExpirationDate, &it.CreatedAt, &it.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan inventory item: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate inventory: %w", err)
	}
	return items, nil
}

func (s *Store) CreateInventoryItem(ctx context.Context, it InventoryItem) (*InventoryItem, error) {
	it.ID = uuid.New()
	err := s.pool.QueryRow(ctx, `
		INSERT INTO inventory_items (id, name, quantity, unit, expiration_date)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at`,
		it.ID, it.Name, it.Quantity, it.Unit, it.ExpirationDate,
	).Scan(&it.CreatedAt, &it.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert inventory item: %w", err)
	}
	return &it, nil
}

func (s *Store) UpdateInventoryItem(ctx context.Context, id uuid.UUID, it InventoryItem) (*InventoryItem, error) {
	it.ID = id
	err := s.pool.QueryRow(ctx, `
		UPDATE inventory_items
		SET name = $1, quantity = $2, unit = $3, expiration_date = $4, updated_at = now()
		WHERE id = $5
		RETURNING created_at, updated_at`,
		it.Name, it.Quantity, it.Unit, it.ExpirationDate, id,
	).Scan(&it.CreatedAt, &it.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update inventory item: %w", err)
	}
	return &it, nil
}

func (s *Store) DeleteInventoryItem(ctx context.Context, id uuid.UUID) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM inventory_items WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete inventory item: %w", err)
	}
	return nil
}
