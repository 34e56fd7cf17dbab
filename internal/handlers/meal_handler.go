package handlers

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/Lixing-Zhang/kart-challenge/meal-orders/internal/models"
	"github.com/Lixing-Zhang/kart-challenge/meal-orders/internal/repository"
	"github.com/Lixing-Zhang/kart-challenge/meal-orders/internal/service"
	"github.com/Lixing-Zhang/kart-challenge/meal-orders/internal/storage"
)

// uploadField is the multipart field carrying the image
const uploadField = "file"

// MealHandler handles meal-related HTTP requests
type MealHandler struct {
	service *service.MealService
	logger  *slog.Logger
}

// NewMealHandler creates a new meal handler
func NewMealHandler(service *service.MealService, logger *slog.Logger) *MealHandler {
	return &MealHandler{
		service: service,
		logger:  logger,
	}
}

// CreateMeal handles POST /api/meals/
func (h *MealHandler) CreateMeal(w http.ResponseWriter, r *http.Request) {
	var req models.CreateMealRequest
	if err := decodeJSON(r, &req); err != nil {
		h.logger.Info("failed to decode meal request", "error", err)
		WriteError(w, http.StatusBadRequest, msgInvalidBody, h.logger)
		return
	}

	meal, err := h.service.CreateMeal(r.Context(), req)
	if err != nil {
		h.writeMealError(w, err, "failed to create meal")
		return
	}

	h.logger.Info("meal created", "meal_id", meal.ID, "name", meal.Name)
	WriteJSON(w, http.StatusCreated, meal, h.logger)
}

// UpdateMeal handles PUT /api/meals/
func (h *MealHandler) UpdateMeal(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateMealRequest
	if err := decodeJSON(r, &req); err != nil {
		h.logger.Info("failed to decode meal request", "error", err)
		WriteError(w, http.StatusBadRequest, msgInvalidBody, h.logger)
		return
	}

	meal, err := h.service.UpdateMeal(r.Context(), req)
	if err != nil {
		if errors.Is(err, repository.ErrMealNotFound) {
			h.logger.Info("meal not found", "meal_id", req.ID)
			WriteError(w, http.StatusNotFound, mealNotFoundMessage(req.ID), h.logger)
			return
		}
		h.writeMealError(w, err, "failed to update meal")
		return
	}

	WriteJSON(w, http.StatusCreated, meal, h.logger)
}

// ListMeals handles GET /api/meals/
func (h *MealHandler) ListMeals(w http.ResponseWriter, r *http.Request) {
	meals, err := h.service.ListMeals(r.Context())
	if err != nil {
		h.logger.Error("failed to list meals", "error", err)
		WriteError(w, http.StatusInternalServerError, msgInternalError, h.logger)
		return
	}

	WriteJSON(w, http.StatusOK, meals, h.logger)
}

// GetMeal handles GET /api/meals/{id}
// - 200: meal
// - 400: Invalid ID supplied
// - 404: Meal not found
func (h *MealHandler) GetMeal(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		WriteError(w, http.StatusBadRequest, msgInvalidID, h.logger)
		return
	}

	meal, err := h.service.GetMeal(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrMealNotFound) {
			h.logger.Info("meal not found", "meal_id", id)
			WriteError(w, http.StatusNotFound, mealNotFoundMessage(id), h.logger)
			return
		}
		h.logger.Error("failed to get meal", "meal_id", id, "error", err)
		WriteError(w, http.StatusInternalServerError, msgInternalError, h.logger)
		return
	}

	WriteJSON(w, http.StatusOK, meal, h.logger)
}

// DeleteMeal handles DELETE /api/meals/{id}
func (h *MealHandler) DeleteMeal(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		WriteError(w, http.StatusBadRequest, msgInvalidID, h.logger)
		return
	}

	if err := h.service.DeleteMeal(r.Context(), id); err != nil {
		var delErr *service.DeleteError
		switch {
		case errors.Is(err, repository.ErrMealNotFound):
			h.logger.Info("meal not found", "meal_id", id)
			WriteError(w, http.StatusNotFound, mealNotFoundMessage(id), h.logger)
		case errors.As(err, &delErr):
			h.logger.Error("failed to delete meal", "meal_id", id, "error", err)
			WriteError(w, http.StatusInternalServerError, err.Error(), h.logger)
		default:
			h.logger.Error("failed to delete meal", "meal_id", id, "error", err)
			WriteError(w, http.StatusInternalServerError, msgInternalError, h.logger)
		}
		return
	}

	h.logger.Info("meal deleted", "meal_id", id)
	w.WriteHeader(http.StatusNoContent)
}

// UploadImage handles POST /api/meals/upload/{id}.
// The body is streamed part by part; the file never sits fully in memory.
func (h *MealHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		WriteError(w, http.StatusBadRequest, msgInvalidID, h.logger)
		return
	}

	reader, err := r.MultipartReader()
	if err != nil {
		h.logger.Info("upload is not multipart", "meal_id", id, "error", err)
		WriteError(w, http.StatusBadRequest, "Request must be multipart/form-data", h.logger)
		return
	}

	for {
		part, err := reader.NextPart()
		if errors.Is(err, io.EOF) {
			WriteError(w, http.StatusBadRequest, "Missing form field 'file'", h.logger)
			return
		}
		if err != nil {
			h.logger.Info("failed to read multipart body", "meal_id", id, "error", err)
			WriteError(w, http.StatusBadRequest, msgInvalidBody, h.logger)
			return
		}
		if part.FormName() != uploadField {
			part.Close()
			continue
		}

		meal, err := h.service.UploadImage(r.Context(), id, part.Header.Get("Content-Type"), part.FileName(), part)
		part.Close()
		if err != nil {
			h.writeUploadError(w, id, err)
			return
		}

		h.logger.Info("meal image uploaded", "meal_id", id, "image", *meal.Image)
		WriteJSON(w, http.StatusOK, meal, h.logger)
		return
	}
}

func (h *MealHandler) writeUploadError(w http.ResponseWriter, id uuid.UUID, err error) {
	var uploadErr *storage.UploadError
	switch {
	case errors.Is(err, service.ErrInvalidContentType):
		h.logger.Info("rejected upload", "meal_id", id, "error", err)
		WriteError(w, http.StatusBadRequest, err.Error(), h.logger)
	case errors.Is(err, repository.ErrMealNotFound):
		h.logger.Info("meal not found", "meal_id", id)
		WriteError(w, http.StatusNotFound, mealNotFoundMessage(id), h.logger)
	case errors.As(err, &uploadErr):
		h.logger.Error("failed to store meal image", "meal_id", id, "error", err)
		WriteError(w, http.StatusInternalServerError, err.Error(), h.logger)
	default:
		h.logger.Error("failed to store meal image", "meal_id", id, "error", err)
		WriteError(w, http.StatusInternalServerError, (&storage.UploadError{Err: err}).Error(), h.logger)
	}
}

func (h *MealHandler) writeMealError(w http.ResponseWriter, err error, logMsg string) {
	switch {
	case isValidationError(err):
		h.logger.Info("invalid meal request", "error", err)
		WriteError(w, http.StatusUnprocessableEntity, err.Error(), h.logger)
	case errors.Is(err, repository.ErrDuplicateName):
		h.logger.Info("duplicate meal name", "error", err)
		WriteError(w, http.StatusBadRequest, err.Error(), h.logger)
	default:
		h.logger.Error(logMsg, "error", err)
		WriteError(w, http.StatusInternalServerError, msgInternalError, h.logger)
	}
}
