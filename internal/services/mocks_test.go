package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"torqbay/internal/models"
)

// Mock repositories and gateway shared across the service tests

type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) Create(ctx context.Context, product *models.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *MockProductRepository) GetBySlug(ctx context.Context, slug string) (*models.Product, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *MockProductRepository) Update(ctx context.Context, product *models.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockProductRepository) List(ctx context.Context, filter *models.ProductSearchFilter) ([]*models.Product, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Product), args.Error(1)
}

func (m *MockProductRepository) DecrementStock(ctx context.Context, id uuid.UUID, qty int) (bool, error) {
	args := m.Called(ctx, id, qty)
	return args.Bool(0), args.Error(1)
}

func (m *MockProductRepository) RestoreStock(ctx context.Context, id uuid.UUID, qty int) error {
	args := m.Called(ctx, id, qty)
	return args.Error(0)
}

type MockInstallationRuleRepository struct {
	mock.Mock
}

func (m *MockInstallationRuleRepository) FindRule(ctx context.Context, category string, subCategory, subSubCategory *string) (*models.InstallationRule, error) {
	args := m.Called(ctx, category, subCategory, subSubCategory)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.InstallationRule), args.Error(1)
}

func (m *MockInstallationRuleRepository) Upsert(ctx context.Context, rule *models.InstallationRule) error {
	args := m.Called(ctx, rule)
	return args.Error(0)
}

func (m *MockInstallationRuleRepository) List(ctx context.Context, limit, offset int) ([]*models.InstallationRule, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.InstallationRule), args.Error(1)
}

func (m *MockInstallationRuleRepository) Deactivate(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) Create(ctx context.Context, order *models.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockOrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *MockOrderRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*models.Order, error) {
	args := m.Called(ctx, userID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Order), args.Error(1)
}

func (m *MockOrderRepository) Search(ctx context.Context, filter *models.OrderSearchFilter) ([]*models.Order, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Order), args.Error(1)
}

func (m *MockOrderRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status, note string) error {
	args := m.Called(ctx, id, status, note)
	return args.Error(0)
}

func (m *MockOrderRepository) UpdatePaymentStatus(ctx context.Context, id uuid.UUID, paymentStatus string, paymentID *string) error {
	args := m.Called(ctx, id, paymentStatus, paymentID)
	return args.Error(0)
}

func (m *MockOrderRepository) FindByRazorpayOrderID(ctx context.Context, razorpayOrderID string) (*models.Order, error) {
	args := m.Called(ctx, razorpayOrderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *MockOrderRepository) FindStalePendingPayment(ctx context.Context, cutoff time.Time) ([]*models.Order, error) {
	args := m.Called(ctx, cutoff)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Order), args.Error(1)
}

type MockCartRepository struct {
	mock.Mock
}

func (m *MockCartRepository) Upsert(ctx context.Context, item *models.CartItem) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockCartRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.CartItem, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.CartItem), args.Error(1)
}

func (m *MockCartRepository) Remove(ctx context.Context, userID, productID uuid.UUID) error {
	args := m.Called(ctx, userID, productID)
	return args.Error(0)
}

func (m *MockCartRepository) Clear(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

type MockPaymentGateway struct {
	mock.Mock
}

func (m *MockPaymentGateway) CreatePaymentIntent(ctx context.Context, amountMinor int64, currency, receipt string) (*PaymentIntent, error) {
	args := m.Called(ctx, amountMinor, currency, receipt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*PaymentIntent), args.Error(1)
}

func (m *MockPaymentGateway) VerifyPaymentSignature(intentID, paymentID, signature string) bool {
	args := m.Called(intentID, paymentID, signature)
	return args.Bool(0)
}

func (m *MockPaymentGateway) VerifyWebhookSignature(body []byte, signature string) bool {
	args := m.Called(body, signature)
	return args.Bool(0)
}
