package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"torqbay/internal/models"
	"torqbay/internal/repositories"
	"torqbay/internal/services"
)

// WebhookHandlers receives payment gateway callbacks. Razorpay retries
// deliveries, so every branch here must be idempotent.
type WebhookHandlers struct {
	gateway   services.PaymentGateway
	orderRepo repositories.OrderRepository
}

// NewWebhookHandlers creates a new webhook handlers instance
func NewWebhookHandlers(gateway services.PaymentGateway, orderRepo repositories.OrderRepository) *WebhookHandlers {
	return &WebhookHandlers{
		gateway:   gateway,
		orderRepo: orderRepo,
	}
}

type razorpayWebhookEvent struct {
	Event   string `json:"event"`
	Payload struct {
		Payment struct {
			Entity struct {
				ID      string `json:"id"`
				OrderID string `json:"order_id"`
				Status  string `json:"status"`
			} `json:"entity"`
		} `json:"payment"`
	} `json:"payload"`
}

// HandleRazorpayWebhook handles POST /webhooks/razorpay
func (h *WebhookHandlers) HandleRazorpayWebhook(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.NoContent(http.StatusBadRequest)
	}

	// The signature covers the raw body, so it must be verified before any
	// decoding.
	signature := c.Request().Header.Get("X-Razorpay-Signature")
	if !h.gateway.VerifyWebhookSignature(body, signature) {
		c.Logger().Warn("rejected webhook with bad signature")
		return c.NoContent(http.StatusUnauthorized)
	}

	var event razorpayWebhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return c.NoContent(http.StatusBadRequest)
	}

	switch event.Event {
	case "payment.captured":
		return h.markPaid(c, event)
	case "payment.failed":
		return h.markFailed(c, event)
	default:
		// Unhandled event types are acknowledged so the gateway stops
		// retrying them.
		return c.NoContent(http.StatusOK)
	}
}

func (h *WebhookHandlers) markPaid(c echo.Context, event razorpayWebhookEvent) error {
	ctx := c.Request().Context()

	order, err := h.orderRepo.FindByRazorpayOrderID(ctx, event.Payload.Payment.Entity.OrderID)
	if err != nil {
		return c.NoContent(http.StatusInternalServerError)
	}
	if order == nil {
		// Not our order; acknowledge so the gateway stops retrying.
		return c.NoContent(http.StatusOK)
	}
	if order.PaymentStatus == models.PaymentStatusPaid {
		return c.NoContent(http.StatusOK)
	}

	paymentID := event.Payload.Payment.Entity.ID
	if err := h.orderRepo.UpdatePaymentStatus(ctx, order.ID, models.PaymentStatusPaid, &paymentID); err != nil {
		return c.NoContent(http.StatusInternalServerError)
	}
	if order.OrderStatus == models.OrderStatusPending {
		if err := h.orderRepo.UpdateStatus(ctx, order.ID, models.OrderStatusConfirmed, "Payment captured via webhook"); err != nil {
			return c.NoContent(http.StatusInternalServerError)
		}
	}
	return c.NoContent(http.StatusOK)
}

func (h *WebhookHandlers) markFailed(c echo.Context, event razorpayWebhookEvent) error {
	ctx := c.Request().Context()

	order, err := h.orderRepo.FindByRazorpayOrderID(ctx, event.Payload.Payment.Entity.OrderID)
	if err != nil {
		return c.NoContent(http.StatusInternalServerError)
	}
	if order == nil || order.PaymentStatus == models.PaymentStatusPaid {
		// A capture may have raced the failure event; paid stays paid.
		return c.NoContent(http.StatusOK)
	}

	if err := h.orderRepo.UpdatePaymentStatus(ctx, order.ID, models.PaymentStatusFailed, nil); err != nil {
		return c.NoContent(http.StatusInternalServerError)
	}
	return c.NoContent(http.StatusOK)
}
