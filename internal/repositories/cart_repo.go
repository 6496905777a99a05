package repositories

import (
	"context"

	"torqbay/internal/models"

	"github.com/google/uuid"
)

type CartRepository interface {
	// Upsert adds the product to the user's cart or replaces the quantity and
	// installation flag if it is already there.
	Upsert(ctx context.Context, item *models.CartItem) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.CartItem, error)
	Remove(ctx context.Context, userID, productID uuid.UUID) error
	Clear(ctx context.Context, userID uuid.UUID) error
}

type cartRepo struct {
	db DB
}

func NewCartRepo(db DB) CartRepository {
	return &cartRepo{db: db}
}

func (r *cartRepo) Upsert(ctx context.Context, item *models.CartItem) error {
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	query := `
		INSERT INTO cart_items (id, user_id, product_id, quantity, wants_installation, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		ON CONFLICT (user_id, product_id)
		DO UPDATE SET quantity = EXCLUDED.quantity, wants_installation = EXCLUDED.wants_installation, updated_at = NOW()
	`
	_, err := r.db.Exec(ctx, query, item.ID, item.UserID, item.ProductID, item.Quantity, item.WantsInstallation)
	return err
}

func (r *cartRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.CartItem, error) {
	query := `
		SELECT id, user_id, product_id, quantity, wants_installation, created_at, updated_at
		FROM cart_items
		WHERE user_id = $1
		ORDER BY created_at
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*models.CartItem
	for rows.Next() {
		item := &models.CartItem{}
		if err := rows.Scan(&item.ID, &item.UserID, &item.ProductID, &item.Quantity,
			&item.WantsInstallation, &item.CreatedAt, &item.UpdatedAt); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *cartRepo) Remove(ctx context.Context, userID, productID uuid.UUID) error {
	query := `DELETE FROM cart_items WHERE user_id = $1 AND product_id = $2`
	_, err := r.db.Exec(ctx, query, userID, productID)
	return err
}

func (r *cartRepo) Clear(ctx context.Context, userID uuid.UUID) error {
	query := `DELETE FROM cart_items WHERE user_id = $1`
	_, err := r.db.Exec(ctx, query, userID)
	return err
}
