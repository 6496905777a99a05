package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"torqbay/internal/common"
	"torqbay/internal/services"
)

// CheckoutHandlers handles order placement and payment confirmation
type CheckoutHandlers struct {
	checkoutService services.CheckoutServiceInterface
}

// NewCheckoutHandlers creates a new checkout handlers instance
func NewCheckoutHandlers(checkoutService services.CheckoutServiceInterface) *CheckoutHandlers {
	return &CheckoutHandlers{
		checkoutService: checkoutService,
	}
}

// Checkout handles POST /checkout
func (h *CheckoutHandlers) Checkout(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	req := &services.CheckoutRequest{}
	if err := c.Bind(req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	order, err := h.checkoutService.PlaceOrder(ctx, userID, req)
	if err != nil {
		return sendDomainError(c, err)
	}
	return c.JSON(http.StatusCreated, order)
}

// VerifyPayment handles POST /payments/verify
func (h *CheckoutHandlers) VerifyPayment(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var req struct {
		OrderID   string `json:"order_id"`
		PaymentID string `json:"razorpay_payment_id"`
		Signature string `json:"razorpay_signature"`
	}
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	orderID, err := common.ValidateUUID(req.OrderID, "order_id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}
	if err := common.ValidateRequiredString(req.PaymentID, "razorpay_payment_id"); err != nil {
		return common.SendValidationError(c, "razorpay_payment_id", err.Error())
	}
	if err := common.ValidateRequiredString(req.Signature, "razorpay_signature"); err != nil {
		return common.SendValidationError(c, "razorpay_signature", err.Error())
	}

	if err := h.checkoutService.VerifyPayment(ctx, userID, orderID, req.PaymentID, req.Signature); err != nil {
		return sendDomainError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "paid"})
}
