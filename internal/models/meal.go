package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func init() {
	// Prices are rendered as JSON numbers, not strings.
	decimal.MarshalJSONWithoutQuotes = true
}

// Meal represents a catalog item that can be ordered
type Meal struct {
	ID          uuid.UUID       `json:"id"          gorm:"type:uuid;primaryKey"`
	Name        string          `json:"name"        gorm:"uniqueIndex;not null"`
	Price       decimal.Decimal `json:"price"       gorm:"type:numeric(10,2);not null"`
	Description *string         `json:"description"`
	Image       *string         `json:"image"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// BeforeCreate assigns a fresh identifier to meals created without one
func (m *Meal) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// CreateMealRequest is the body of POST /api/meals/
type CreateMealRequest struct {
	Name        string  `json:"name"        validate:"required,max=255"`
	Price       float64 `json:"price"       validate:"min=0.01,max=99999999.99"`
	Description *string `json:"description"`
}

// Normalize trims surrounding whitespace from the textual fields
func (r *CreateMealRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
}

// ToMeal converts the request into an unsaved meal record
func (r *CreateMealRequest) ToMeal() *Meal {
	return &Meal{
		Name:        r.Name,
		Price:       PriceFromFloat(r.Price),
		Description: r.Description,
	}
}

// UpdateMealRequest is the body of PUT /api/meals/
type UpdateMealRequest struct {
	ID          uuid.UUID `json:"id"          validate:"required"`
	Name        string    `json:"name"        validate:"required,max=255"`
	Price       float64   `json:"price"       validate:"min=0.01,max=99999999.99"`
	Description *string   `json:"description"`
}

// Normalize trims surrounding whitespace from the textual fields
func (r *UpdateMealRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
}

// ToMeal converts the request into the meal fields to merge
func (r *UpdateMealRequest) ToMeal() *Meal {
	return &Meal{
		ID:          r.ID,
		Name:        r.Name,
		Price:       PriceFromFloat(r.Price),
		Description: r.Description,
	}
}

// PriceFromFloat converts a JSON price into a two-decimal amount
func PriceFromFloat(price float64) decimal.Decimal {
	return decimal.NewFromFloat(price).Round(2)
}
