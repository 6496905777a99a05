package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"torqbay/internal/models"
	"torqbay/internal/repositories"
)

// OrderServiceInterface covers the post-creation order lifecycle. Status and
// timeline mutate; the snapshotted item prices never do.
type OrderServiceInterface interface {
	GetOrderByID(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	ListOrdersByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*models.Order, error)
	SearchOrders(ctx context.Context, filter *models.OrderSearchFilter) ([]*models.Order, error)
	ConfirmOrder(ctx context.Context, orderID uuid.UUID) error
	ProcessOrder(ctx context.Context, orderID uuid.UUID) error
	ShipOrder(ctx context.Context, orderID uuid.UUID) error
	DeliverOrder(ctx context.Context, orderID uuid.UUID) error
	CancelOrder(ctx context.Context, orderID uuid.UUID, note string) error
	// ExpireStalePendingPayments cancels online orders whose payment never
	// arrived or was declined and restores their stock. Returns the number of
	// orders expired.
	ExpireStalePendingPayments(ctx context.Context, olderThan time.Duration) (int, error)
}

type orderService struct {
	orderRepo   repositories.OrderRepository
	productRepo repositories.ProductRepository
}

// NewOrderService creates a new order service instance
func NewOrderService(orderRepo repositories.OrderRepository, productRepo repositories.ProductRepository) OrderServiceInterface {
	return &orderService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
	}
}

func (s *orderService) GetOrderByID(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	return s.orderRepo.GetByID(ctx, orderID)
}

func (s *orderService) ListOrdersByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*models.Order, error) {
	return s.orderRepo.ListByUser(ctx, userID, limit, offset)
}

func (s *orderService) SearchOrders(ctx context.Context, filter *models.OrderSearchFilter) ([]*models.Order, error) {
	return s.orderRepo.Search(ctx, filter)
}

func (s *orderService) transition(ctx context.Context, orderID uuid.UUID, from, to, note string) error {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return fmt.Errorf("failed to get order: %w", err)
	}
	if order == nil {
		return fmt.Errorf("order not found")
	}
	if order.OrderStatus != from {
		return fmt.Errorf("can only move orders with status '%s' to '%s', current status: %s", from, to, order.OrderStatus)
	}
	return s.orderRepo.UpdateStatus(ctx, orderID, to, note)
}

func (s *orderService) ConfirmOrder(ctx context.Context, orderID uuid.UUID) error {
	return s.transition(ctx, orderID, models.OrderStatusPending, models.OrderStatusConfirmed, "Order confirmed")
}

func (s *orderService) ProcessOrder(ctx context.Context, orderID uuid.UUID) error {
	return s.transition(ctx, orderID, models.OrderStatusConfirmed, models.OrderStatusProcessing, "Order is being prepared")
}

func (s *orderService) ShipOrder(ctx context.Context, orderID uuid.UUID) error {
	return s.transition(ctx, orderID, models.OrderStatusProcessing, models.OrderStatusShipped, "Order shipped")
}

func (s *orderService) DeliverOrder(ctx context.Context, orderID uuid.UUID) error {
	return s.transition(ctx, orderID, models.OrderStatusShipped, models.OrderStatusDelivered, "Order delivered")
}

// CancelOrder cancels an order and restores stock when the goods have not
// left the warehouse yet.
func (s *orderService) CancelOrder(ctx context.Context, orderID uuid.UUID, note string) error {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return fmt.Errorf("failed to get order: %w", err)
	}
	if order == nil {
		return fmt.Errorf("order not found")
	}

	switch order.OrderStatus {
	case models.OrderStatusDelivered, models.OrderStatusCancelled:
		return fmt.Errorf("order cannot be cancelled in status '%s'", order.OrderStatus)
	case models.OrderStatusShipped:
		return fmt.Errorf("shipped orders cannot be cancelled; refuse delivery instead")
	}

	for _, item := range order.Items {
		if err := s.productRepo.RestoreStock(ctx, item.ProductID, item.Quantity); err != nil {
			log.Printf("ERROR: failed to restore stock for product %s on cancel: %v", item.ProductID, err)
		}
	}

	if note == "" {
		note = "Order cancelled"
	}
	return s.orderRepo.UpdateStatus(ctx, orderID, models.OrderStatusCancelled, note)
}

func (s *orderService) ExpireStalePendingPayments(ctx context.Context, olderThan time.Duration) (int, error) {
	cutoff := time.Now().UTC().Add(-olderThan)
	stale, err := s.orderRepo.FindStalePendingPayment(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to list stale orders: %w", err)
	}

	expired := 0
	for _, order := range stale {
		if err := s.CancelOrder(ctx, order.ID, "Payment not received in time"); err != nil {
			log.Printf("WARN: failed to expire order %s: %v", order.ID, err)
			continue
		}
		expired++
	}
	return expired, nil
}
