package services

import (
	"context"
	"fmt"
	"log"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"torqbay/internal/caching"
	"torqbay/internal/common"
	"torqbay/internal/installation"
	"torqbay/internal/models"
	"torqbay/internal/repositories"
	"torqbay/internal/vehicles"
)

// ServiceArea is the region this deployment ships to. Orders outside it are
// rejected at checkout; region-lock is a business rule, not an accident.
type ServiceArea struct {
	State     string
	PINPrefix string
}

// Contains reports whether the address falls inside the serviced region.
func (a ServiceArea) Contains(addr models.Address) bool {
	return strings.EqualFold(strings.TrimSpace(addr.State), a.State) &&
		strings.HasPrefix(strings.TrimSpace(addr.PostalCode), a.PINPrefix)
}

// CheckoutItem is one requested cart line.
type CheckoutItem struct {
	ProductID        uuid.UUID `json:"product_id"`
	Quantity         int       `json:"quantity"`
	WithInstallation bool      `json:"with_installation"`
}

// CheckoutRequest carries everything needed to place an order. Prices are
// deliberately absent: the server computes them from the live catalog.
type CheckoutRequest struct {
	Items         []CheckoutItem `json:"items"`
	PaymentMethod string         `json:"payment_method"`
	Address       models.Address `json:"address"`
	Vehicle       models.Vehicle `json:"vehicle"`
}

// CheckoutServiceInterface prices carts and creates orders. The quote path
// and the order path share one resolver so the displayed installation price
// and the charged one never diverge.
type CheckoutServiceInterface interface {
	Quote(ctx context.Context, productID uuid.UUID, segment models.Segment) (installation.Result, error)
	QuoteForModel(ctx context.Context, productID uuid.UUID, modelName string) (installation.Result, error)
	PlaceOrder(ctx context.Context, userID uuid.UUID, req *CheckoutRequest) (*models.Order, error)
	VerifyPayment(ctx context.Context, userID, orderID uuid.UUID, paymentID, signature string) error
}

type checkoutService struct {
	productRepo repositories.ProductRepository
	ruleRepo    repositories.InstallationRuleRepository
	orderRepo   repositories.OrderRepository
	cartRepo    repositories.CartRepository
	gateway     PaymentGateway
	cacheSvc    caching.CacheService
	area        ServiceArea
}

// NewCheckoutService creates a new checkout service instance
func NewCheckoutService(
	productRepo repositories.ProductRepository,
	ruleRepo repositories.InstallationRuleRepository,
	orderRepo repositories.OrderRepository,
	cartRepo repositories.CartRepository,
	gateway PaymentGateway,
	cacheSvc caching.CacheService,
	area ServiceArea,
) CheckoutServiceInterface {
	return &checkoutService{
		productRepo: productRepo,
		ruleRepo:    ruleRepo,
		orderRepo:   orderRepo,
		cartRepo:    cartRepo,
		gateway:     gateway,
		cacheSvc:    cacheSvc,
		area:        area,
	}
}

// ruleFinder prefers the redis cache and falls back to the store. Cache
// problems degrade to direct lookups, never to a wrong price.
func (s *checkoutService) ruleFinder() installation.RuleFinder {
	return &cachedRuleFinder{repo: s.ruleRepo, cache: s.cacheSvc}
}

type cachedRuleFinder struct {
	repo  repositories.InstallationRuleRepository
	cache caching.CacheService
}

func (f *cachedRuleFinder) FindRule(ctx context.Context, category string, subCategory, subSubCategory *string) (*models.InstallationRule, error) {
	if f.cache != nil {
		if rule, err := f.cache.GetRule(ctx, category, subCategory, subSubCategory); err == nil && rule != nil {
			return rule, nil
		}
	}
	rule, err := f.repo.FindRule(ctx, category, subCategory, subSubCategory)
	if err != nil {
		return nil, err
	}
	if rule != nil && f.cache != nil {
		if cacheErr := f.cache.SetRule(ctx, rule, 10*time.Minute); cacheErr != nil {
			log.Printf("WARN: failed to cache installation rule: %v", cacheErr)
		}
	}
	return rule, nil
}

func (s *checkoutService) fetchProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	if s.cacheSvc != nil {
		if product, err := s.cacheSvc.GetProduct(ctx, id); err == nil && product != nil {
			return product, nil
		}
	}
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrCatalogUnavailable, err)
	}
	if product != nil && s.cacheSvc != nil {
		if cacheErr := s.cacheSvc.SetProduct(ctx, product, 5*time.Minute); cacheErr != nil {
			log.Printf("WARN: failed to cache product %s: %v", id, cacheErr)
		}
	}
	return product, nil
}

// Quote resolves the installation price for display.
func (s *checkoutService) Quote(ctx context.Context, productID uuid.UUID, segment models.Segment) (installation.Result, error) {
	product, err := s.fetchProduct(ctx, productID)
	if err != nil {
		return installation.Result{Source: installation.SourceNone}, err
	}
	if product == nil {
		return installation.Result{Source: installation.SourceNone}, common.ErrProductNotFound
	}
	return installation.Resolve(ctx, s.ruleFinder(), product, segment), nil
}

// QuoteForModel maps a vehicle model name to its segment first. Unknown
// models quote with no segment, which disables category-rule pricing.
func (s *checkoutService) QuoteForModel(ctx context.Context, productID uuid.UUID, modelName string) (installation.Result, error) {
	segment, _ := vehicles.SegmentForModel(modelName)
	return s.Quote(ctx, productID, segment)
}

func (s *checkoutService) validateRequest(req *CheckoutRequest) error {
	if req == nil || len(req.Items) == 0 {
		return fmt.Errorf("%w: order has no items", common.ErrInvalidInput)
	}
	for _, item := range req.Items {
		if item.ProductID == uuid.Nil {
			return fmt.Errorf("%w: item has no product id", common.ErrInvalidInput)
		}
		if err := common.ValidatePositiveInteger(item.Quantity, "quantity", 100); err != nil {
			return fmt.Errorf("%w: %v", common.ErrInvalidInput, err)
		}
	}
	if req.PaymentMethod != models.PaymentMethodOnline && req.PaymentMethod != models.PaymentMethodCOD {
		return fmt.Errorf("%w: unknown payment method %q", common.ErrInvalidInput, req.PaymentMethod)
	}
	if err := common.ValidateRequiredString(req.Address.Line1, "address line1"); err != nil {
		return fmt.Errorf("%w: %v", common.ErrInvalidInput, err)
	}
	if err := common.ValidateRequiredString(req.Address.City, "city"); err != nil {
		return fmt.Errorf("%w: %v", common.ErrInvalidInput, err)
	}
	if err := common.ValidateRequiredString(req.Address.State, "state"); err != nil {
		return fmt.Errorf("%w: %v", common.ErrInvalidInput, err)
	}
	if err := common.ValidatePINCode(req.Address.PostalCode, "postal code"); err != nil {
		return fmt.Errorf("%w: %v", common.ErrInvalidInput, err)
	}
	return nil
}

// resolveSegment prefers an explicit segment over a model-name lookup.
func resolveSegment(vehicle models.Vehicle) models.Segment {
	if models.ValidSegment(vehicle.Segment) {
		return vehicle.Segment
	}
	if vehicle.Model != "" {
		if segment, ok := vehicles.SegmentForModel(vehicle.Model); ok {
			return segment
		}
	}
	return ""
}

// PlaceOrder re-validates every line against the live catalog, prices it
// server-side, decrements stock atomically, invokes the payment gateway for
// online payment and persists the order with snapshotted prices. Every
// failure is terminal: no partial order is ever left behind.
func (s *checkoutService) PlaceOrder(ctx context.Context, userID uuid.UUID, req *CheckoutRequest) (*models.Order, error) {
	if err := s.validateRequest(req); err != nil {
		return nil, err
	}

	segment := resolveSegment(req.Vehicle)
	finder := s.ruleFinder()

	var items []*models.OrderItem
	subtotal := 0.0
	for _, line := range req.Items {
		product, err := s.fetchProduct(ctx, line.ProductID)
		if err != nil {
			return nil, err
		}
		if product == nil {
			return nil, fmt.Errorf("%w: %s", common.ErrProductNotFound, line.ProductID)
		}

		if product.Stock < line.Quantity {
			return nil, &common.InsufficientStockError{
				ProductID:   product.ID,
				ProductName: product.Name,
				Requested:   line.Quantity,
				Available:   product.Stock,
			}
		}

		// Unit price comes from the live catalog, never the client.
		unitPrice := product.UnitPrice()

		installationCost := 0.0
		if line.WithInstallation {
			result := installation.Resolve(ctx, finder, product, segment)
			if !result.Available {
				return nil, fmt.Errorf("%w: %s", common.ErrInstallationUnavailable, product.Name)
			}
			// Zero is a real price (free installation), not "no rule".
			if result.Price != nil {
				installationCost = *result.Price
			}
		}

		item := &models.OrderItem{
			ID:               uuid.New(),
			ProductID:        product.ID,
			ProductName:      product.Name,
			Quantity:         line.Quantity,
			UnitPrice:        unitPrice,
			HasInstallation:  line.WithInstallation,
			InstallationCost: installationCost,
		}
		items = append(items, item)
		subtotal += item.LineTotal()
	}

	if !s.area.Contains(req.Address) {
		return nil, fmt.Errorf("%w: we currently deliver only within %s (PIN %sxxxxx)",
			common.ErrOutOfServiceArea, s.area.State, s.area.PINPrefix)
	}

	// Commit stock with conditional decrements; a failed decrement is
	// insufficient stock discovered at commit time. Earlier decrements are
	// rolled back before reporting.
	var decremented []*models.OrderItem
	restore := func() {
		for _, item := range decremented {
			if err := s.productRepo.RestoreStock(ctx, item.ProductID, item.Quantity); err != nil {
				log.Printf("ERROR: failed to restore stock for product %s: %v", item.ProductID, err)
			}
		}
	}
	for _, item := range items {
		ok, err := s.productRepo.DecrementStock(ctx, item.ProductID, item.Quantity)
		if err != nil {
			restore()
			return nil, fmt.Errorf("%w: %v", common.ErrCatalogUnavailable, err)
		}
		if !ok {
			restore()
			return nil, &common.InsufficientStockError{
				ProductID:   item.ProductID,
				ProductName: item.ProductName,
				Requested:   item.Quantity,
			}
		}
		decremented = append(decremented, item)
		if s.cacheSvc != nil {
			if err := s.cacheSvc.DeleteProduct(ctx, item.ProductID); err != nil {
				log.Printf("WARN: failed to invalidate product cache %s: %v", item.ProductID, err)
			}
		}
	}

	now := time.Now().UTC()
	order := &models.Order{
		ID:              uuid.New(),
		UserID:          userID,
		Items:           items,
		Subtotal:        subtotal,
		Total:           subtotal,
		PaymentMethod:   req.PaymentMethod,
		PaymentStatus:   models.PaymentStatusPending,
		OrderStatus:     models.OrderStatusPending,
		ShippingAddress: req.Address,
		Timeline: []models.TimelineEntry{
			{Status: models.OrderStatusPending, Note: "Order placed", At: now},
		},
	}
	if req.Vehicle.Model != "" || segment != "" {
		order.Vehicle = &models.Vehicle{Brand: req.Vehicle.Brand, Model: req.Vehicle.Model, Segment: segment}
	}

	if req.PaymentMethod == models.PaymentMethodOnline {
		intent, err := s.gateway.CreatePaymentIntent(ctx, toMinorUnits(order.Total), "INR", order.ID.String())
		if err != nil {
			restore()
			return nil, fmt.Errorf("%w: %v", common.ErrPaymentGateway, err)
		}
		order.RazorpayOrderID = &intent.ID
	} else {
		// COD needs no gateway round trip; the order is confirmed directly.
		order.OrderStatus = models.OrderStatusConfirmed
		order.Timeline = append(order.Timeline, models.TimelineEntry{
			Status: models.OrderStatusConfirmed, Note: "Cash on delivery", At: now,
		})
	}

	if err := s.orderRepo.Create(ctx, order); err != nil {
		restore()
		if order.RazorpayOrderID != nil {
			// The gateway order now dangles with no local record; leave a
			// trail so it can be reconciled against the dashboard.
			log.Printf("ERROR: order save failed after payment intent %s was created; needs reconciliation", *order.RazorpayOrderID)
		}
		return nil, fmt.Errorf("failed to save order: %w", err)
	}

	if s.cartRepo != nil {
		if err := s.cartRepo.Clear(ctx, userID); err != nil {
			log.Printf("WARN: failed to clear cart for user %s: %v", userID, err)
		}
	}

	return order, nil
}

// VerifyPayment validates the gateway callback signature and marks the order
// paid. A bad signature marks the payment failed and reports an error. Only
// the order's owner may submit a verification.
func (s *checkoutService) VerifyPayment(ctx context.Context, userID, orderID uuid.UUID, paymentID, signature string) error {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return fmt.Errorf("failed to get order: %w", err)
	}
	if order == nil || order.UserID != userID {
		// Someone else's order looks like a missing one; existence is not
		// leaked and no status is written.
		return common.ErrOrderNotFound
	}
	if order.RazorpayOrderID == nil {
		return fmt.Errorf("%w: order has no payment intent", common.ErrInvalidInput)
	}

	if !s.gateway.VerifyPaymentSignature(*order.RazorpayOrderID, paymentID, signature) {
		if err := s.orderRepo.UpdatePaymentStatus(ctx, orderID, models.PaymentStatusFailed, nil); err != nil {
			log.Printf("ERROR: failed to mark payment failed for order %s: %v", orderID, err)
		}
		return fmt.Errorf("%w: signature verification failed", common.ErrPaymentGateway)
	}

	if err := s.orderRepo.UpdatePaymentStatus(ctx, orderID, models.PaymentStatusPaid, &paymentID); err != nil {
		return fmt.Errorf("failed to update payment status: %w", err)
	}
	return s.orderRepo.UpdateStatus(ctx, orderID, models.OrderStatusConfirmed, "Payment received")
}

// toMinorUnits converts rupees to paise for the gateway.
func toMinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}
