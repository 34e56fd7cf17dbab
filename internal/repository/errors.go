package repository

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrMealNotFound  = errors.New("meal not found")
	ErrOrderNotFound = errors.New("order not found")
	ErrDuplicateName = errors.New("meal name already exists")
)

// DuplicateNameError reports a meal name already held by another meal
type DuplicateNameError struct {
	Name string
}

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("Meal with name '%s' already exists", e.Name)
}

func (e *DuplicateNameError) Is(target error) bool {
	return target == ErrDuplicateName
}

// MealsNotFoundError lists every meal id an order referenced that does not exist
type MealsNotFoundError struct {
	IDs []uuid.UUID
}

func (e *MealsNotFoundError) Error() string {
	ids := make([]string, 0, len(e.IDs))
	for _, id := range e.IDs {
		ids = append(ids, id.String())
	}
	return fmt.Sprintf("Meals not found: %s", strings.Join(ids, ", "))
}

// OrderCreationError wraps whatever made the order transaction roll back
type OrderCreationError struct {
	Err error
}

func (e *OrderCreationError) Error() string {
	return fmt.Sprintf("Error creating order: %v", e.Err)
}

func (e *OrderCreationError) Unwrap() error {
	return e.Err
}
