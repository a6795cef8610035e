package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/n8ngeorgia/orderdesk/internal/models"
	"github.com/n8ngeorgia/orderdesk/internal/services"
	"github.com/n8ngeorgia/orderdesk/internal/storage"
)

// OrderHandler обрабатывает HTTP-запросы для работы с заявками.
type OrderHandler struct {
	orderService services.OrderService
}

// NewOrderHandler создаёт новый экземпляр OrderHandler.
func NewOrderHandler(orderService services.OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

// CreateOrder обрабатывает POST /api/orders (multipart/form-data или JSON).
func (h *OrderHandler) CreateOrder(c echo.Context) error {
	var req models.CreateOrderRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request format")
	}

	// Файлы приходят частями multipart-формы под именем files.
	// Не-multipart запрос означает заявку без вложений.
	var uploads []services.Upload
	if form, err := c.MultipartForm(); err == nil && form != nil {
		for _, fh := range form.File["files"] {
			src, err := fh.Open()
			if err != nil {
				return echo.NewHTTPError(http.StatusBadRequest, "unable to read uploaded file")
			}
			defer src.Close()

			uploads = append(uploads, services.Upload{
				Name:     fh.Filename,
				Size:     fh.Size,
				MimeType: fh.Header.Get("Content-Type"),
				Reader:   src,
			})
		}
	}

	order, err := h.orderService.Create(c.Request().Context(), &req, uploads)
	if err != nil {
		if errors.Is(err, services.ErrValidation) || errors.Is(err, services.ErrAttachment) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		c.Logger().Errorf("failed to create order: %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}

	return c.JSON(http.StatusOK, models.CreateOrderResponse{Success: true, OrderID: order.OrderID})
}

// ListOrders обрабатывает GET /api/orders.
func (h *OrderHandler) ListOrders(c echo.Context) error {
	orders, err := h.orderService.GetAll(c.Request().Context())
	if err != nil {
		c.Logger().Errorf("failed to list orders: %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}

	return c.JSON(http.StatusOK, orders)
}

// GetOrder обрабатывает GET /api/orders/:id.
func (h *OrderHandler) GetOrder(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		// Невалидный идентификатор не может указывать на заявку
		return echo.NewHTTPError(http.StatusNotFound, "order not found")
	}

	order, err := h.orderService.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrOrderNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "order not found")
		}
		c.Logger().Errorf("failed to get order: %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}

	return c.JSON(http.StatusOK, order)
}

// GetOrderByOrderID обрабатывает GET /api/orders/by-order-id/:orderId.
func (h *OrderHandler) GetOrderByOrderID(c echo.Context) error {
	order, err := h.orderService.GetByOrderID(c.Request().Context(), c.Param("orderId"))
	if err != nil {
		if errors.Is(err, storage.ErrOrderNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "order not found")
		}
		c.Logger().Errorf("failed to get order by public id: %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}

	return c.JSON(http.StatusOK, order)
}

// UpdateOrder обрабатывает PATCH /api/orders/:id.
func (h *OrderHandler) UpdateOrder(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "order not found")
	}

	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "unable to read body")
	}

	order, err := h.orderService.Update(c.Request().Context(), id, body)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrValidation):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		case errors.Is(err, storage.ErrOrderNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "order not found")
		default:
			c.Logger().Errorf("failed to update order: %v", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
		}
	}

	return c.JSON(http.StatusOK, order)
}

// DeleteOrder обрабатывает DELETE /api/orders/:id.
func (h *OrderHandler) DeleteOrder(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "order not found")
	}

	if err := h.orderService.Delete(c.Request().Context(), id); err != nil {
		if errors.Is(err, storage.ErrOrderNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "order not found")
		}
		c.Logger().Errorf("failed to delete order: %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}

	return c.JSON(http.StatusOK, map[string]bool{"success": true})
}
