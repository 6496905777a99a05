package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"torqbay/internal/common"
)

// sendDomainError maps the checkout/catalog error taxonomy onto HTTP
// responses with the standard error envelope.
func sendDomainError(c echo.Context, err error) error {
	var stockErr *common.InsufficientStockError
	switch {
	case errors.As(err, &stockErr):
		details := map[string]string{
			"product":   stockErr.ProductName,
			"available": strconv.Itoa(stockErr.Available),
		}
		return c.JSON(http.StatusConflict, common.CreateErrorResponse("INSUFFICIENT_STOCK", stockErr.Error(), details))
	case errors.Is(err, common.ErrProductNotFound):
		return common.SendNotFoundError(c, "Product")
	case errors.Is(err, common.ErrOrderNotFound):
		return common.SendNotFoundError(c, "Order")
	case errors.Is(err, common.ErrInstallationUnavailable):
		return c.JSON(http.StatusUnprocessableEntity, common.CreateErrorResponse("INSTALLATION_UNAVAILABLE", err.Error(), nil))
	case errors.Is(err, common.ErrOutOfServiceArea):
		return c.JSON(http.StatusUnprocessableEntity, common.CreateErrorResponse("OUT_OF_SERVICE_AREA", err.Error(), nil))
	case errors.Is(err, common.ErrInvalidInput):
		return common.SendClientError(c, err.Error())
	case errors.Is(err, common.ErrPaymentGateway):
		return c.JSON(http.StatusBadGateway, common.CreateErrorResponse("PAYMENT_GATEWAY_ERROR", "Payment could not be initiated", nil))
	case errors.Is(err, common.ErrCatalogUnavailable):
		return c.JSON(http.StatusServiceUnavailable, common.CreateErrorResponse("CATALOG_UNAVAILABLE", "Catalog is temporarily unavailable", nil))
	default:
		return common.SendServerError(c, "Request failed")
	}
}
