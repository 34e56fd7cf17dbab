package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Customer is the delivery snapshot captured when an order is placed
type Customer struct {
	Name       string `json:"name"        gorm:"size:200;not null" validate:"required,max=200"`
	Email      string `json:"email"       gorm:"size:255;not null" validate:"required,email,max=255"`
	Street     string `json:"street"      gorm:"size:200;not null" validate:"required,max=200"`
	City       string `json:"city"        gorm:"size:150;not null" validate:"required,max=150"`
	PostalCode string `json:"postal-code" gorm:"size:10;not null"  validate:"required,max=10"`
}

// Order is a placed order. Its lines live in order_meals.
type Order struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Customer  Customer  `gorm:"embedded;embeddedPrefix:customer_"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// BeforeCreate assigns a fresh identifier to orders created without one
func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

// OrderMeal links an order to a meal with a quantity.
// meal_id carries no foreign key: a meal may be deleted while orders still reference it.
type OrderMeal struct {
	OrderID  uuid.UUID `gorm:"type:uuid;primaryKey"`
	MealID   uuid.UUID `gorm:"type:uuid;primaryKey"`
	Quantity int       `gorm:"not null;default:1"`
}

func (OrderMeal) TableName() string {
	return "order_meals"
}

// OrderItemRequest references a meal and how many of it to order
type OrderItemRequest struct {
	ID       uuid.UUID `json:"id"       validate:"required"`
	Quantity int       `json:"quantity" validate:"gt=0"`
}

// CreateOrderRequest is the body of POST /api/orders/
type CreateOrderRequest struct {
	Customer Customer           `json:"customer"`
	Items    []OrderItemRequest `json:"items"    validate:"required,min=1,dive"`
}

// Normalize trims surrounding whitespace from the customer fields
func (r *CreateOrderRequest) Normalize() {
	c := &r.Customer
	c.Name = strings.TrimSpace(c.Name)
	c.Email = strings.TrimSpace(c.Email)
	c.Street = strings.TrimSpace(c.Street)
	c.City = strings.TrimSpace(c.City)
	c.PostalCode = strings.TrimSpace(c.PostalCode)
}

// MealIDs returns the meal identifiers referenced by the request, in order
func (r *CreateOrderRequest) MealIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(r.Items))
	for _, item := range r.Items {
		ids = append(ids, item.ID)
	}
	return ids
}

// OrderItemView is a line of an assembled order: the current meal plus the ordered quantity
type OrderItemView struct {
	ID          uuid.UUID       `json:"id"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Description *string         `json:"description"`
	Image       *string         `json:"image"`
	Quantity    int             `json:"quantity"`
}

// OrderView is the nested representation returned by the order endpoints
type OrderView struct {
	ID        uuid.UUID       `json:"id"`
	Customer  Customer        `json:"customer"`
	Items     []OrderItemView `json:"items"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}
