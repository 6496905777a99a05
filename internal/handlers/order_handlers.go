package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"torqbay/internal/common"
	"torqbay/internal/models"
	"torqbay/internal/services"
)

// OrderHandlers handles HTTP requests for orders
type OrderHandlers struct {
	orderService services.OrderServiceInterface
}

// NewOrderHandlers creates a new order handlers instance
func NewOrderHandlers(orderService services.OrderServiceInterface) *OrderHandlers {
	return &OrderHandlers{
		orderService: orderService,
	}
}

// ListMyOrders handles GET /orders
func (h *OrderHandlers) ListMyOrders(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	limit, offset, err := common.ValidatePaginationParams(limit, offset)
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	orders, err := h.orderService.ListOrdersByUser(ctx, userID, limit, offset)
	if err != nil {
		return common.SendServerError(c, "Failed to list orders")
	}
	if orders == nil {
		orders = []*models.Order{}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"orders": orders,
		"count":  len(orders),
	})
}

// GetOrder handles GET /orders/:id
func (h *OrderHandlers) GetOrder(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	orderID, err := common.ValidateUUID(c.Param("id"), "order id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	order, err := h.orderService.GetOrderByID(ctx, orderID)
	if err != nil {
		return common.SendServerError(c, "Failed to get order")
	}
	if order == nil {
		return common.SendNotFoundError(c, "Order")
	}
	// Customers see only their own orders; admins see all.
	if order.UserID != userID && !common.IsAdminFromContext(ctx) {
		return common.SendNotFoundError(c, "Order")
	}
	return c.JSON(http.StatusOK, order)
}

// CancelOrder handles POST /orders/:id/cancel
func (h *OrderHandlers) CancelOrder(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	orderID, err := common.ValidateUUID(c.Param("id"), "order id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	order, err := h.orderService.GetOrderByID(ctx, orderID)
	if err != nil {
		return common.SendServerError(c, "Failed to get order")
	}
	if order == nil || (order.UserID != userID && !common.IsAdminFromContext(ctx)) {
		return common.SendNotFoundError(c, "Order")
	}

	if err := h.orderService.CancelOrder(ctx, orderID, "Cancelled by customer"); err != nil {
		return common.SendConflictError(c, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]string{"status": models.OrderStatusCancelled})
}

// SearchOrders handles GET /admin/orders
func (h *OrderHandlers) SearchOrders(c echo.Context) error {
	ctx := c.Request().Context()

	filter := &models.OrderSearchFilter{}
	if status := c.QueryParam("status"); status != "" {
		if err := common.ValidateOrderStatus(status); err != nil {
			return common.SendValidationError(c, "status", err.Error())
		}
		filter.OrderStatus = &status
	}
	if paymentStatus := c.QueryParam("payment_status"); paymentStatus != "" {
		filter.PaymentStatus = &paymentStatus
	}
	if userIDStr := c.QueryParam("user_id"); userIDStr != "" {
		userID, err := common.ValidateUUID(userIDStr, "user_id")
		if err != nil {
			return common.SendClientError(c, err.Error())
		}
		filter.UserID = &userID
	}
	filter.Limit, _ = strconv.Atoi(c.QueryParam("limit"))
	filter.Offset, _ = strconv.Atoi(c.QueryParam("offset"))

	orders, err := h.orderService.SearchOrders(ctx, filter)
	if err != nil {
		return common.SendServerError(c, "Failed to search orders")
	}
	if orders == nil {
		orders = []*models.Order{}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"orders": orders,
		"count":  len(orders),
	})
}

// UpdateOrderStatus handles PUT /admin/orders/:id/status
func (h *OrderHandlers) UpdateOrderStatus(c echo.Context) error {
	ctx := c.Request().Context()

	orderID, err := common.ValidateUUID(c.Param("id"), "order id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}
	if err := common.ValidateOrderStatus(req.Status); err != nil {
		return common.SendValidationError(c, "status", err.Error())
	}

	switch req.Status {
	case models.OrderStatusConfirmed:
		err = h.orderService.ConfirmOrder(ctx, orderID)
	case models.OrderStatusProcessing:
		err = h.orderService.ProcessOrder(ctx, orderID)
	case models.OrderStatusShipped:
		err = h.orderService.ShipOrder(ctx, orderID)
	case models.OrderStatusDelivered:
		err = h.orderService.DeliverOrder(ctx, orderID)
	case models.OrderStatusCancelled:
		err = h.orderService.CancelOrder(ctx, orderID, "Cancelled by admin")
	default:
		return common.SendValidationError(c, "status", "orders cannot be moved back to pending")
	}
	if err != nil {
		return common.SendConflictError(c, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]string{"status": req.Status})
}
