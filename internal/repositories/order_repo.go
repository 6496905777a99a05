package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"torqbay/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type OrderRepository interface {
	// Create persists the order and its items in one transaction. Item prices
	// are the snapshots computed by the checkout pipeline; they are written
	// once and never updated afterwards.
	Create(ctx context.Context, order *models.Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*models.Order, error)
	Search(ctx context.Context, filter *models.OrderSearchFilter) ([]*models.Order, error)
	// UpdateStatus changes order_status and appends a timeline entry. Item
	// rows are untouched.
	UpdateStatus(ctx context.Context, id uuid.UUID, status, note string) error
	UpdatePaymentStatus(ctx context.Context, id uuid.UUID, paymentStatus string, paymentID *string) error
	// FindByRazorpayOrderID looks up an order by the gateway's order id, for
	// webhook delivery where our own id is not in the payload.
	FindByRazorpayOrderID(ctx context.Context, razorpayOrderID string) (*models.Order, error)
	// FindStalePendingPayment returns online orders created before the cutoff
	// whose payment is still pending or has failed, for the expiry job. Both
	// hold decremented stock until the order is cancelled.
	FindStalePendingPayment(ctx context.Context, cutoff time.Time) ([]*models.Order, error)
}

type orderRepo struct {
	db DB
}

func NewOrderRepo(db DB) OrderRepository {
	return &orderRepo{db: db}
}

const orderColumns = `id, user_id, subtotal, total, payment_method, payment_status, order_status, shipping_address, vehicle, razorpay_order_id, razorpay_payment_id, timeline, created_at, updated_at`

func (r *orderRepo) Create(ctx context.Context, order *models.Order) error {
	address, err := json.Marshal(order.ShippingAddress)
	if err != nil {
		return err
	}
	var vehicle []byte
	if order.Vehicle != nil {
		if vehicle, err = json.Marshal(order.Vehicle); err != nil {
			return err
		}
	}
	timeline, err := json.Marshal(order.Timeline)
	if err != nil {
		return err
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO orders (id, user_id, subtotal, total, payment_method, payment_status, order_status, shipping_address, vehicle, razorpay_order_id, razorpay_payment_id, timeline, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NOW(), NOW())
	`
	_, err = tx.Exec(ctx, query, order.ID, order.UserID, order.Subtotal, order.Total,
		order.PaymentMethod, order.PaymentStatus, order.OrderStatus,
		address, vehicle, order.RazorpayOrderID, order.RazorpayPayID, timeline)
	if err != nil {
		return err
	}

	itemQuery := `
		INSERT INTO order_items (id, order_id, product_id, product_name, quantity, unit_price, has_installation, installation_cost)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	for _, item := range order.Items {
		_, err = tx.Exec(ctx, itemQuery, item.ID, order.ID, item.ProductID, item.ProductName,
			item.Quantity, item.UnitPrice, item.HasInstallation, item.InstallationCost)
		if err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (r *orderRepo) scanOrder(row pgx.Row) (*models.Order, error) {
	order := &models.Order{}
	var address, vehicle, timeline []byte
	err := row.Scan(&order.ID, &order.UserID, &order.Subtotal, &order.Total,
		&order.PaymentMethod, &order.PaymentStatus, &order.OrderStatus,
		&address, &vehicle, &order.RazorpayOrderID, &order.RazorpayPayID,
		&timeline, &order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(address, &order.ShippingAddress); err != nil {
		return nil, fmt.Errorf("decode shipping address: %w", err)
	}
	if len(vehicle) > 0 {
		if err := json.Unmarshal(vehicle, &order.Vehicle); err != nil {
			return nil, fmt.Errorf("decode vehicle: %w", err)
		}
	}
	if len(timeline) > 0 {
		if err := json.Unmarshal(timeline, &order.Timeline); err != nil {
			return nil, fmt.Errorf("decode timeline: %w", err)
		}
	}
	return order, nil
}

func (r *orderRepo) loadItems(ctx context.Context, order *models.Order) error {
	query := `
		SELECT id, order_id, product_id, product_name, quantity, unit_price, has_installation, installation_cost
		FROM order_items
		WHERE order_id = $1
		ORDER BY id
	`
	rows, err := r.db.Query(ctx, query, order.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		item := &models.OrderItem{}
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.ProductName,
			&item.Quantity, &item.UnitPrice, &item.HasInstallation, &item.InstallationCost); err != nil {
			return err
		}
		order.Items = append(order.Items, item)
	}
	return rows.Err()
}

func (r *orderRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`
	order, err := r.scanOrder(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if err := r.loadItems(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

func (r *orderRepo) FindByRazorpayOrderID(ctx context.Context, razorpayOrderID string) (*models.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE razorpay_order_id = $1`
	order, err := r.scanOrder(r.db.QueryRow(ctx, query, razorpayOrderID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if err := r.loadItems(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

func (r *orderRepo) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*models.Order, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	return r.queryOrders(ctx, query, userID, limit, offset)
}

func (r *orderRepo) Search(ctx context.Context, filter *models.OrderSearchFilter) ([]*models.Order, error) {
	if filter == nil {
		filter = &models.OrderSearchFilter{}
	}
	if filter.Limit == 0 {
		filter.Limit = 50
	}

	queryBase := `SELECT ` + orderColumns + ` FROM orders WHERE 1=1`
	args := []any{}
	conditionCount := 0

	if filter.OrderStatus != nil {
		conditionCount++
		queryBase += fmt.Sprintf(` AND order_status = $%d`, conditionCount)
		args = append(args, *filter.OrderStatus)
	}
	if filter.PaymentStatus != nil {
		conditionCount++
		queryBase += fmt.Sprintf(` AND payment_status = $%d`, conditionCount)
		args = append(args, *filter.PaymentStatus)
	}
	if filter.UserID != nil {
		conditionCount++
		queryBase += fmt.Sprintf(` AND user_id = $%d`, conditionCount)
		args = append(args, *filter.UserID)
	}
	if filter.CreatedFrom != nil {
		conditionCount++
		queryBase += fmt.Sprintf(` AND created_at >= $%d`, conditionCount)
		args = append(args, *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		conditionCount++
		queryBase += fmt.Sprintf(` AND created_at <= $%d`, conditionCount)
		args = append(args, *filter.CreatedTo)
	}

	queryBase += ` ORDER BY created_at DESC`
	conditionCount++
	queryBase += fmt.Sprintf(` LIMIT $%d`, conditionCount)
	args = append(args, filter.Limit)
	if filter.Offset > 0 {
		conditionCount++
		queryBase += fmt.Sprintf(` OFFSET $%d`, conditionCount)
		args = append(args, filter.Offset)
	}

	return r.queryOrders(ctx, queryBase, args...)
}

func (r *orderRepo) queryOrders(ctx context.Context, query string, args ...any) ([]*models.Order, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []*models.Order
	for rows.Next() {
		order, err := r.scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	for _, order := range orders {
		if err := r.loadItems(ctx, order); err != nil {
			return nil, err
		}
	}
	return orders, nil
}

func (r *orderRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status, note string) error {
	entry, err := json.Marshal(models.TimelineEntry{Status: status, Note: note, At: time.Now().UTC()})
	if err != nil {
		return err
	}
	query := `
		UPDATE orders
		SET order_status = $1, timeline = timeline || $2::jsonb, updated_at = NOW()
		WHERE id = $3
	`
	_, err = r.db.Exec(ctx, query, status, entry, id)
	return err
}

func (r *orderRepo) UpdatePaymentStatus(ctx context.Context, id uuid.UUID, paymentStatus string, paymentID *string) error {
	query := `
		UPDATE orders
		SET payment_status = $1, razorpay_payment_id = COALESCE($2, razorpay_payment_id), updated_at = NOW()
		WHERE id = $3
	`
	_, err := r.db.Exec(ctx, query, paymentStatus, paymentID, id)
	return err
}

func (r *orderRepo) FindStalePendingPayment(ctx context.Context, cutoff time.Time) ([]*models.Order, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE payment_method = 'online' AND payment_status IN ('pending', 'failed') AND order_status = 'pending' AND created_at < $1
		ORDER BY created_at
	`
	return r.queryOrders(ctx, query, cutoff)
}
