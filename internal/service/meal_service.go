package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"

	"github.com/Lixing-Zhang/kart-challenge/meal-orders/internal/models"
	"github.com/Lixing-Zhang/kart-challenge/meal-orders/internal/repository"
	"github.com/Lixing-Zhang/kart-challenge/meal-orders/internal/storage"
	"github.com/Lixing-Zhang/kart-challenge/meal-orders/internal/validation"
)

var ErrInvalidContentType = errors.New("invalid content type")

// ContentTypeError rejects an upload whose media type is not image/*
type ContentTypeError struct {
	ContentType string
}

func (e *ContentTypeError) Error() string {
	return fmt.Sprintf("File type '%s' is not allowed, only images can be uploaded", e.ContentType)
}

func (e *ContentTypeError) Is(target error) bool {
	return target == ErrInvalidContentType
}

// DeleteError reports a failure after the meal was found
type DeleteError struct {
	ID  uuid.UUID
	Err error
}

func (e *DeleteError) Error() string {
	return fmt.Sprintf("Error deleting meal %s: %v", e.ID, e.Err)
}

func (e *DeleteError) Unwrap() error {
	return e.Err
}

// ImageStore persists meal images
type ImageStore interface {
	Store(r io.Reader, mealID uuid.UUID, originalName string) (string, error)
	Delete(name string) error
}

// MealService handles business logic for the meal catalog
type MealService struct {
	repo      repository.MealRepository
	images    ImageStore
	validator *validation.Validator
}

// NewMealService creates a new meal service
func NewMealService(repo repository.MealRepository, images ImageStore, validator *validation.Validator) *MealService {
	return &MealService{
		repo:      repo,
		images:    images,
		validator: validator,
	}
}

// CreateMeal validates and stores a new meal
func (s *MealService) CreateMeal(ctx context.Context, req models.CreateMealRequest) (*models.Meal, error) {
	req.Normalize()
	if err := s.validator.Struct(&req); err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, req.ToMeal())
}

// UpdateMeal replaces name, price and description of an existing meal
func (s *MealService) UpdateMeal(ctx context.Context, req models.UpdateMealRequest) (*models.Meal, error) {
	req.Normalize()
	if err := s.validator.Struct(&req); err != nil {
		return nil, err
	}

	// The repository merges into missing rows, so existence is checked here.
	if _, err := s.repo.GetByID(ctx, req.ID); err != nil {
		return nil, err
	}
	return s.repo.Update(ctx, req.ToMeal())
}

// ListMeals returns all meals
func (s *MealService) ListMeals(ctx context.Context) ([]models.Meal, error) {
	return s.repo.List(ctx)
}

// GetMeal returns a meal by ID
func (s *MealService) GetMeal(ctx context.Context, id uuid.UUID) (*models.Meal, error) {
	return s.repo.GetByID(ctx, id)
}

// DeleteMeal removes the meal row and then its image file
func (s *MealService) DeleteMeal(ctx context.Context, id uuid.UUID) error {
	meal, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if _, err := s.repo.Delete(ctx, id); err != nil {
		return &DeleteError{ID: id, Err: err}
	}

	if meal.Image != nil {
		if err := s.images.Delete(*meal.Image); err != nil {
			return &DeleteError{ID: id, Err: err}
		}
	}
	return nil
}

// UploadImage stores r as the meal's image and records its name
func (s *MealService) UploadImage(ctx context.Context, id uuid.UUID, contentType, filename string, r io.Reader) (*models.Meal, error) {
	if !strings.HasPrefix(contentType, "image/") {
		return nil, &ContentTypeError{ContentType: contentType}
	}

	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return nil, err
	}

	name, err := s.images.Store(r, id, filename)
	if err != nil {
		return nil, err
	}

	meal, err := s.repo.SetImage(ctx, id, name)
	if err != nil {
		return nil, &storage.UploadError{Err: err}
	}
	return meal, nil
}
