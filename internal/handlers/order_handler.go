package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Lixing-Zhang/kart-challenge/meal-orders/internal/models"
	"github.com/Lixing-Zhang/kart-challenge/meal-orders/internal/repository"
	"github.com/Lixing-Zhang/kart-challenge/meal-orders/internal/service"
)

// OrderHandler handles order-related HTTP requests
type OrderHandler struct {
	orderService *service.OrderService
	log          *slog.Logger
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(orderService *service.OrderService, log *slog.Logger) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
		log:          log,
	}
}

// CreateOrder handles POST /api/orders/
func (h *OrderHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req models.CreateOrderRequest
	if err := decodeJSON(r, &req); err != nil {
		h.log.Info("failed to decode order request", "error", err)
		WriteError(w, http.StatusBadRequest, msgInvalidBody, h.log)
		return
	}

	order, err := h.orderService.CreateOrder(r.Context(), req)
	if err != nil {
		var (
			missing  *repository.MealsNotFoundError
			creation *repository.OrderCreationError
		)
		switch {
		case isValidationError(err):
			h.log.Info("invalid order request", "error", err)
			WriteError(w, http.StatusUnprocessableEntity, err.Error(), h.log)
		case errors.As(err, &missing):
			h.log.Info("order references unknown meals", "meal_ids", missing.IDs)
			WriteError(w, http.StatusBadRequest, err.Error(), h.log)
		case errors.As(err, &creation):
			h.log.Info("failed to create order", "error", err)
			WriteError(w, http.StatusBadRequest, err.Error(), h.log)
		default:
			h.log.Error("failed to create order", "error", err)
			WriteError(w, http.StatusInternalServerError, msgInternalError, h.log)
		}
		return
	}

	WriteJSON(w, http.StatusCreated, order, h.log)
	h.log.Info("order created successfully", "order_id", order.ID, "items_count", len(order.Items))
}

// GetOrder handles GET /api/orders/{id}
func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		WriteError(w, http.StatusBadRequest, msgInvalidID, h.log)
		return
	}

	order, err := h.orderService.GetOrder(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			h.log.Info("order not found", "order_id", id)
			WriteError(w, http.StatusNotFound, "Order not found", h.log)
			return
		}
		h.log.Error("failed to get order", "order_id", id, "error", err)
		WriteError(w, http.StatusInternalServerError, msgInternalError, h.log)
		return
	}

	WriteJSON(w, http.StatusOK, order, h.log)
}

// SearchByCustomer handles GET /api/orders/customer/{term}
func (h *OrderHandler) SearchByCustomer(w http.ResponseWriter, r *http.Request) {
	term, err := pathParam(r, "term")
	if err != nil {
		h.log.Info("invalid search term encoding", "term", chi.URLParam(r, "term"), "error", err)
		WriteError(w, http.StatusBadRequest, "Invalid search term", h.log)
		return
	}

	orders, err := h.orderService.SearchByCustomer(r.Context(), term)
	if err != nil {
		h.log.Error("failed to search orders by customer", "term", term, "error", err)
		WriteError(w, http.StatusInternalServerError, msgInternalError, h.log)
		return
	}

	WriteJSON(w, http.StatusOK, orders, h.log)
}

// SearchByMeal handles GET /api/orders/meal/{meal_id}
func (h *OrderHandler) SearchByMeal(w http.ResponseWriter, r *http.Request) {
	mealID, err := parseID(r, "meal_id")
	if err != nil {
		WriteError(w, http.StatusBadRequest, msgInvalidID, h.log)
		return
	}

	orders, err := h.orderService.SearchByMeal(r.Context(), mealID)
	if err != nil {
		h.log.Error("failed to search orders by meal", "meal_id", mealID, "error", err)
		WriteError(w, http.StatusInternalServerError, msgInternalError, h.log)
		return
	}

	WriteJSON(w, http.StatusOK, orders, h.log)
}
