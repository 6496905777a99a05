package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"torqbay/internal/common"
	"torqbay/internal/models"
	"torqbay/internal/services"
)

// ProductHandlers handles HTTP requests for the product catalog
type ProductHandlers struct {
	productService services.ProductServiceInterface
}

// NewProductHandlers creates a new product handlers instance
func NewProductHandlers(productService services.ProductServiceInterface) *ProductHandlers {
	return &ProductHandlers{
		productService: productService,
	}
}

// ListProducts handles GET /products
func (h *ProductHandlers) ListProducts(c echo.Context) error {
	ctx := c.Request().Context()

	filter := &models.ProductSearchFilter{
		Query:     c.QueryParam("q"),
		SortBy:    c.QueryParam("sort_by"),
		SortOrder: c.QueryParam("sort_order"),
	}
	if limitStr := c.QueryParam("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil {
			filter.Limit = limit
		}
	}
	if offsetStr := c.QueryParam("offset"); offsetStr != "" {
		if offset, err := strconv.Atoi(offsetStr); err == nil {
			filter.Offset = offset
		}
	}
	if c.QueryParam("in_stock") == "true" {
		filter.InStockOnly = true
	}
	if minStr := c.QueryParam("min_price"); minStr != "" {
		if min, err := strconv.ParseFloat(minStr, 64); err == nil {
			filter.MinPrice = &min
		}
	}
	if maxStr := c.QueryParam("max_price"); maxStr != "" {
		if max, err := strconv.ParseFloat(maxStr, 64); err == nil {
			filter.MaxPrice = &max
		}
	}

	products, err := h.productService.ListProducts(ctx, c.QueryParam("category"), filter)
	if err != nil {
		return common.SendServerError(c, "Failed to list products")
	}
	if products == nil {
		products = []*models.Product{}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"products": products,
		"count":    len(products),
	})
}

// GetProduct handles GET /products/:id
func (h *ProductHandlers) GetProduct(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := common.ValidateUUID(c.Param("id"), "product id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	product, err := h.productService.GetProductByID(ctx, id)
	if err != nil {
		return common.SendServerError(c, "Failed to get product")
	}
	if product == nil {
		return common.SendNotFoundError(c, "Product")
	}
	return c.JSON(http.StatusOK, product)
}

// GetProductBySlug handles GET /products/slug/:slug
func (h *ProductHandlers) GetProductBySlug(c echo.Context) error {
	ctx := c.Request().Context()

	slug := c.Param("slug")
	if err := common.ValidateRequiredString(slug, "slug"); err != nil {
		return common.SendClientError(c, err.Error())
	}

	product, err := h.productService.GetProductBySlug(ctx, slug)
	if err != nil {
		return common.SendServerError(c, "Failed to get product")
	}
	if product == nil {
		return common.SendNotFoundError(c, "Product")
	}
	return c.JSON(http.StatusOK, product)
}

// CreateProduct handles POST /admin/products
func (h *ProductHandlers) CreateProduct(c echo.Context) error {
	ctx := c.Request().Context()

	product := &models.Product{}
	if err := c.Bind(product); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	if err := h.productService.CreateProduct(ctx, product); err != nil {
		return sendDomainError(c, err)
	}
	return c.JSON(http.StatusCreated, product)
}

// UpdateProduct handles PUT /admin/products/:id
func (h *ProductHandlers) UpdateProduct(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := common.ValidateUUID(c.Param("id"), "product id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	product := &models.Product{}
	if err := c.Bind(product); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}
	product.ID = id

	if err := h.productService.UpdateProduct(ctx, product); err != nil {
		return sendDomainError(c, err)
	}
	return c.JSON(http.StatusOK, product)
}

// DeleteProduct handles DELETE /admin/products/:id
func (h *ProductHandlers) DeleteProduct(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := common.ValidateUUID(c.Param("id"), "product id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	if err := h.productService.DeleteProduct(ctx, id); err != nil {
		return common.SendServerError(c, "Failed to delete product")
	}
	return c.NoContent(http.StatusNoContent)
}

// UploadProductImage handles POST /admin/products/:id/images
func (h *ProductHandlers) UploadProductImage(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := common.ValidateUUID(c.Param("id"), "product id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	file, err := c.FormFile("image")
	if err != nil {
		return common.SendClientError(c, "Image file is required")
	}
	src, err := file.Open()
	if err != nil {
		return common.SendServerError(c, "Failed to read upload")
	}
	defer src.Close()

	url, err := h.productService.UploadProductImage(ctx, id, file.Filename, src, file.Size, file.Header.Get("Content-Type"))
	if err != nil {
		return sendDomainError(c, err)
	}
	return c.JSON(http.StatusCreated, map[string]string{"url": url})
}
