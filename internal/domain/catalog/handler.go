package catalog

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

type Handler struct {
	cat *Catalog
}

func NewHandler(cat *Catalog) *Handler {
	return &Handler{cat: cat}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/lab-definitions", h.ListLabDefinitions)
	api.GET("/lab-definitions/:name", h.GetLabDefinition)
}

func (h *Handler) ListLabDefinitions(c echo.Context) error {
	return c.JSON(http.StatusOK, h.cat.List())
}

func (h *Handler) GetLabDefinition(c echo.Context) error {
	def, ok := h.cat.Lookup(c.Param("name"))
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "lab definition not found")
	}
	return c.JSON(http.StatusOK, def)
}
