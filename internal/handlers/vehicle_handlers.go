package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"torqbay/internal/common"
	"torqbay/internal/vehicles"
)

// VehicleHandlers serves the static brand and segment lookup tables
type VehicleHandlers struct{}

// NewVehicleHandlers creates a new vehicle handlers instance
func NewVehicleHandlers() *VehicleHandlers {
	return &VehicleHandlers{}
}

// ListBrands handles GET /vehicles/brands
func (h *VehicleHandlers) ListBrands(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"brands": vehicles.Brands(),
	})
}

// GetSegment handles GET /vehicles/segment?model=...
func (h *VehicleHandlers) GetSegment(c echo.Context) error {
	modelName := c.QueryParam("model")
	if err := common.ValidateRequiredString(modelName, "model"); err != nil {
		return common.SendClientError(c, err.Error())
	}

	segment, ok := vehicles.SegmentForModel(modelName)
	if !ok {
		return common.SendNotFoundError(c, "Vehicle model")
	}
	return c.JSON(http.StatusOK, map[string]string{
		"model":   modelName,
		"segment": string(segment),
	})
}
