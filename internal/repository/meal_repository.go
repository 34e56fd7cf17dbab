package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Lixing-Zhang/kart-challenge/meal-orders/internal/models"
)

// MealRepository defines the interface for meal data access
type MealRepository interface {
	Create(ctx context.Context, meal *models.Meal) (*models.Meal, error)
	Update(ctx context.Context, meal *models.Meal) (*models.Meal, error)
	List(ctx context.Context) ([]models.Meal, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Meal, error)
	FindByName(ctx context.Context, name string) (*models.Meal, error)
	Delete(ctx context.Context, id uuid.UUID) (int64, error)
	SetImage(ctx context.Context, id uuid.UUID, filename string) (*models.Meal, error)
}

// GormMealRepository implements MealRepository on top of GORM
type GormMealRepository struct {
	db *gorm.DB
}

// NewMealRepository creates a meal repository bound to the given storage handle
func NewMealRepository(db *gorm.DB) *GormMealRepository {
	return &GormMealRepository{db: db}
}

// Create persists a new meal. Names are unique (exact, case-sensitive match).
func (r *GormMealRepository) Create(ctx context.Context, meal *models.Meal) (*models.Meal, error) {
	_, err := r.FindByName(ctx, meal.Name)
	switch {
	case err == nil:
		return nil, &DuplicateNameError{Name: meal.Name}
	case !errors.Is(err, ErrMealNotFound):
		return nil, err
	}

	if err := r.db.WithContext(ctx).Create(meal).Error; err != nil {
		return nil, writeError("create", meal.Name, err)
	}
	return meal, nil
}

// Update merges name, price and description into the meal with meal.ID and
// refreshes updated_at; image and created_at are kept. A missing row is
// inserted, so callers that need a 404 must check existence first.
func (r *GormMealRepository) Update(ctx context.Context, meal *models.Meal) (*models.Meal, error) {
	existing, err := r.FindByName(ctx, meal.Name)
	switch {
	case err == nil && existing.ID != meal.ID:
		return nil, &DuplicateNameError{Name: meal.Name}
	case err != nil && !errors.Is(err, ErrMealNotFound):
		return nil, err
	}

	err = r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "price", "description", "updated_at"}),
	}).Create(meal).Error
	if err != nil {
		return nil, writeError("update", meal.Name, err)
	}

	return r.GetByID(ctx, meal.ID)
}

// writeError maps a unique index violation that slipped past the name
// check (a concurrent writer took the name) onto DuplicateNameError
func writeError(op, name string, err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return &DuplicateNameError{Name: name}
	}
	return fmt.Errorf("failed to %s meal: %w", op, err)
}

// List returns every meal in no particular order
func (r *GormMealRepository) List(ctx context.Context) ([]models.Meal, error) {
	meals := make([]models.Meal, 0)
	if err := r.db.WithContext(ctx).Find(&meals).Error; err != nil {
		return nil, fmt.Errorf("failed to list meals: %w", err)
	}
	return meals, nil
}

// GetByID returns a meal by its ID or ErrMealNotFound
func (r *GormMealRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Meal, error) {
	return r.first(ctx, "id = ?", id)
}

// FindByName returns the meal holding name or ErrMealNotFound
func (r *GormMealRepository) FindByName(ctx context.Context, name string) (*models.Meal, error) {
	return r.first(ctx, "name = ?", name)
}

func (r *GormMealRepository) first(ctx context.Context, query string, arg any) (*models.Meal, error) {
	var meal models.Meal
	err := r.db.WithContext(ctx).Where(query, arg).Take(&meal).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrMealNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get meal: %w", err)
	}
	return &meal, nil
}

// Delete removes the meal row and returns how many rows went away.
// Order lines referencing the meal are left in place.
func (r *GormMealRepository) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Meal{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to delete meal: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// SetImage records the stored image name for a meal
func (r *GormMealRepository) SetImage(ctx context.Context, id uuid.UUID, filename string) (*models.Meal, error) {
	res := r.db.WithContext(ctx).Model(&models.Meal{}).Where("id = ?", id).Update("image", filename)
	if res.Error != nil {
		return nil, fmt.Errorf("failed to set meal image: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrMealNotFound
	}
	return r.GetByID(ctx, id)
}
