package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Lixing-Zhang/kart-challenge/meal-orders/internal/models"
)

// customerMaskQuery matches @mask against every customer field
const customerMaskQuery = "customer_name LIKE @mask OR customer_email LIKE @mask OR customer_street LIKE @mask " +
	"OR customer_city LIKE @mask OR customer_postal_code LIKE @mask"

// orderLineColumns maps the meals x order_meals join onto OrderLineRow
const orderLineColumns = "order_meals.order_id AS order_id, meals.id AS meal_id, meals.name AS name, " +
	"meals.price AS price, meals.description AS description, meals.image AS image, " +
	"order_meals.quantity AS quantity"

// OrderRepository defines the interface for order data access.
// Every read returns assembled views rather than raw rows.
type OrderRepository interface {
	Create(ctx context.Context, customer models.Customer, items []models.OrderItemRequest) (*models.OrderView, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.OrderView, error)
	SearchByCustomer(ctx context.Context, term string) ([]models.OrderView, error)
	SearchByMeal(ctx context.Context, mealID uuid.UUID) ([]models.OrderView, error)
}

// GormOrderRepository implements OrderRepository on top of GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewOrderRepository creates an order repository bound to the given storage handle
func NewOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// Create inserts the order and its lines in one transaction.
// Unknown meal ids yield *MealsNotFoundError; any other failure yields
// *OrderCreationError. Nothing is persisted in either case.
func (r *GormOrderRepository) Create(ctx context.Context, customer models.Customer, items []models.OrderItemRequest) (*models.OrderView, error) {
	order := &models.Order{Customer: customer}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ids := make([]uuid.UUID, 0, len(items))
		for _, item := range items {
			ids = append(ids, item.ID)
		}

		missing, err := missingMeals(tx, ids)
		if err != nil {
			return err
		}
		if len(missing) > 0 {
			return &MealsNotFoundError{IDs: missing}
		}

		if err := tx.Create(order).Error; err != nil {
			return err
		}

		lines := make([]models.OrderMeal, 0, len(items))
		for _, item := range items {
			lines = append(lines, models.OrderMeal{
				OrderID:  order.ID,
				MealID:   item.ID,
				Quantity: item.Quantity,
			})
		}
		return tx.Create(&lines).Error
	})
	if err != nil {
		var notFound *MealsNotFoundError
		if errors.As(err, &notFound) {
			return nil, notFound
		}
		return nil, &OrderCreationError{Err: err}
	}

	return r.GetByID(ctx, order.ID)
}

// missingMeals returns the ids (deduplicated, in request order) that have no meal row
func missingMeals(tx *gorm.DB, ids []uuid.UUID) ([]uuid.UUID, error) {
	var existing []uuid.UUID
	if err := tx.Model(&models.Meal{}).Where("id IN ?", ids).Pluck("id", &existing).Error; err != nil {
		return nil, fmt.Errorf("failed to look up meals: %w", err)
	}

	found := make(map[uuid.UUID]bool, len(existing))
	for _, id := range existing {
		found[id] = true
	}

	var missing []uuid.UUID
	for _, id := range ids {
		if !found[id] {
			missing = append(missing, id)
			found[id] = true
		}
	}
	return missing, nil
}

// GetByID returns the assembled order or ErrOrderNotFound
func (r *GormOrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.OrderView, error) {
	var order models.Order
	err := r.db.WithContext(ctx).Where("id = ?", id).Take(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	views, err := r.assemble(ctx, []models.Order{order})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// SearchByCustomer returns orders where any customer field contains term,
// newest first. An empty term matches every order.
func (r *GormOrderRepository) SearchByCustomer(ctx context.Context, term string) ([]models.OrderView, error) {
	var orders []models.Order
	err := r.db.WithContext(ctx).
		Where(customerMaskQuery, sql.Named("mask", "%"+term+"%")).
		Order("created_at DESC").
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("failed to search orders by customer: %w", err)
	}
	return r.assemble(ctx, orders)
}

// SearchByMeal returns orders with at least one line for mealID, newest first
func (r *GormOrderRepository) SearchByMeal(ctx context.Context, mealID uuid.UUID) ([]models.OrderView, error) {
	db := r.db.WithContext(ctx)

	var orders []models.Order
	err := db.
		Where("id IN (?)", db.Model(&models.OrderMeal{}).Select("order_id").Where("meal_id = ?", mealID)).
		Order("created_at DESC").
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("failed to search orders by meal: %w", err)
	}
	return r.assemble(ctx, orders)
}

// assemble loads the lines of all given orders with a single join query and
// nests them under their orders. Lines whose meal was deleted drop out of the join.
func (r *GormOrderRepository) assemble(ctx context.Context, orders []models.Order) ([]models.OrderView, error) {
	if len(orders) == 0 {
		return []models.OrderView{}, nil
	}

	ids := make([]uuid.UUID, 0, len(orders))
	for _, order := range orders {
		ids = append(ids, order.ID)
	}

	var rows []OrderLineRow
	err := r.db.WithContext(ctx).
		Table("meals").
		Select(orderLineColumns).
		Joins("JOIN order_meals ON order_meals.meal_id = meals.id").
		Where("order_meals.order_id IN ?", ids).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load order lines: %w", err)
	}

	return AssembleOrders(orders, rows), nil
}
