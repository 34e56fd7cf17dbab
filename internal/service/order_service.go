package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/Lixing-Zhang/kart-challenge/meal-orders/internal/models"
	"github.com/Lixing-Zhang/kart-challenge/meal-orders/internal/repository"
	"github.com/Lixing-Zhang/kart-challenge/meal-orders/internal/validation"
)

// OrderService handles order business logic
type OrderService struct {
	repo      repository.OrderRepository
	validator *validation.Validator
}

// NewOrderService creates a new order service
func NewOrderService(repo repository.OrderRepository, validator *validation.Validator) *OrderService {
	return &OrderService{
		repo:      repo,
		validator: validator,
	}
}

// CreateOrder validates the request and places the order atomically
func (s *OrderService) CreateOrder(ctx context.Context, req models.CreateOrderRequest) (*models.OrderView, error) {
	req.Normalize()
	if err := s.validator.Struct(&req); err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, req.Customer, req.Items)
}

// GetOrder returns an assembled order by ID
func (s *OrderService) GetOrder(ctx context.Context, id uuid.UUID) (*models.OrderView, error) {
	return s.repo.GetByID(ctx, id)
}

// SearchByCustomer returns orders whose customer fields contain term, newest first
func (s *OrderService) SearchByCustomer(ctx context.Context, term string) ([]models.OrderView, error) {
	return s.repo.SearchByCustomer(ctx, term)
}

// SearchByMeal returns orders containing the meal, newest first
func (s *OrderService) SearchByMeal(ctx context.Context, mealID uuid.UUID) ([]models.OrderView, error) {
	return s.repo.SearchByMeal(ctx, mealID)
}
