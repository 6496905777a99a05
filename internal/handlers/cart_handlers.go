package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"torqbay/internal/common"
	"torqbay/internal/models"
	"torqbay/internal/repositories"
	"torqbay/internal/services"
)

// CartHandlers handles the per-user shopping cart
type CartHandlers struct {
	cartRepo        repositories.CartRepository
	productService  services.ProductServiceInterface
	checkoutService services.CheckoutServiceInterface
}

// NewCartHandlers creates a new cart handlers instance
func NewCartHandlers(cartRepo repositories.CartRepository, productService services.ProductServiceInterface, checkoutService services.CheckoutServiceInterface) *CartHandlers {
	return &CartHandlers{
		cartRepo:        cartRepo,
		productService:  productService,
		checkoutService: checkoutService,
	}
}

// cartLine is a cart item priced for display. Installation pricing comes from
// the same resolver checkout uses, so the displayed total matches what an
// order would charge.
type cartLine struct {
	Item             *models.CartItem `json:"item"`
	Product          *models.Product  `json:"product"`
	UnitPrice        float64          `json:"unit_price"`
	InstallationCost *float64         `json:"installation_cost,omitempty"`
	LineTotal        float64          `json:"line_total"`
}

// GetCart handles GET /cart?segment=...|model=...
func (h *CartHandlers) GetCart(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	items, err := h.cartRepo.ListByUser(ctx, userID)
	if err != nil {
		return common.SendServerError(c, "Failed to load cart")
	}

	segment := models.Segment(c.QueryParam("segment"))
	modelName := c.QueryParam("model")

	lines := []*cartLine{}
	total := 0.0
	for _, item := range items {
		product, err := h.productService.GetProductByID(ctx, item.ProductID)
		if err != nil {
			return common.SendServerError(c, "Failed to load cart")
		}
		if product == nil {
			// Product was removed from the catalog; drop the stale row.
			if err := h.cartRepo.Remove(ctx, userID, item.ProductID); err != nil {
				c.Logger().Warnf("failed to drop stale cart row: %v", err)
			}
			continue
		}

		line := &cartLine{
			Item:      item,
			Product:   product,
			UnitPrice: product.UnitPrice(),
		}
		lineTotal := float64(item.Quantity) * line.UnitPrice
		if item.WantsInstallation {
			var result = h.quote(c, product, segment, modelName)
			if result != nil && result.Available && result.Price != nil {
				line.InstallationCost = result.Price
				lineTotal += float64(item.Quantity) * *result.Price
			}
		}
		line.LineTotal = lineTotal
		total += lineTotal
		lines = append(lines, line)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"items": lines,
		"total": total,
	})
}

func (h *CartHandlers) quote(c echo.Context, product *models.Product, segment models.Segment, modelName string) *installationQuote {
	ctx := c.Request().Context()
	if models.ValidSegment(segment) {
		result, err := h.checkoutService.Quote(ctx, product.ID, segment)
		if err != nil {
			return nil
		}
		return &installationQuote{Available: result.Available, Price: result.Price}
	}
	result, err := h.checkoutService.QuoteForModel(ctx, product.ID, modelName)
	if err != nil {
		return nil
	}
	return &installationQuote{Available: result.Available, Price: result.Price}
}

type installationQuote struct {
	Available bool
	Price     *float64
}

// AddToCart handles POST /cart
func (h *CartHandlers) AddToCart(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var req struct {
		ProductID         string `json:"product_id"`
		Quantity          int    `json:"quantity"`
		WantsInstallation bool   `json:"wants_installation"`
	}
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	productID, err := common.ValidateUUID(req.ProductID, "product_id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}
	if err := common.ValidatePositiveInteger(req.Quantity, "quantity", 100); err != nil {
		return common.SendValidationError(c, "quantity", err.Error())
	}

	product, err := h.productService.GetProductByID(ctx, productID)
	if err != nil {
		return common.SendServerError(c, "Failed to check product")
	}
	if product == nil {
		return common.SendNotFoundError(c, "Product")
	}

	item := &models.CartItem{
		UserID:            userID,
		ProductID:         productID,
		Quantity:          req.Quantity,
		WantsInstallation: req.WantsInstallation,
	}
	if err := h.cartRepo.Upsert(ctx, item); err != nil {
		return common.SendServerError(c, "Failed to update cart")
	}
	return c.JSON(http.StatusOK, item)
}

// RemoveFromCart handles DELETE /cart/:productId
func (h *CartHandlers) RemoveFromCart(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	productID, err := common.ValidateUUID(c.Param("productId"), "product id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	if err := h.cartRepo.Remove(ctx, userID, productID); err != nil {
		return common.SendServerError(c, "Failed to update cart")
	}
	return c.NoContent(http.StatusNoContent)
}

// ClearCart handles DELETE /cart
func (h *CartHandlers) ClearCart(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	if err := h.cartRepo.Clear(ctx, userID); err != nil {
		return common.SendServerError(c, "Failed to clear cart")
	}
	return c.NoContent(http.StatusNoContent)
}
