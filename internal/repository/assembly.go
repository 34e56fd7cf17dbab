package repository

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Lixing-Zhang/kart-challenge/meal-orders/internal/models"
)

// OrderLineRow is one flat row of the meals x order_meals join
type OrderLineRow struct {
	OrderID     uuid.UUID
	MealID      uuid.UUID
	Name        string
	Price       decimal.Decimal
	Description *string
	Image       *string
	Quantity    int
}

// GroupLines indexes join rows by the order they belong to, preserving row order
func GroupLines(rows []OrderLineRow) map[uuid.UUID][]models.OrderItemView {
	grouped := make(map[uuid.UUID][]models.OrderItemView)
	for _, row := range rows {
		grouped[row.OrderID] = append(grouped[row.OrderID], models.OrderItemView{
			ID:          row.MealID,
			Name:        row.Name,
			Price:       row.Price,
			Description: row.Description,
			Image:       row.Image,
			Quantity:    row.Quantity,
		})
	}
	return grouped
}

// AssembleOrders builds the nested view of each order, keeping the order of
// orders. An order without rows gets an empty item list.
func AssembleOrders(orders []models.Order, rows []OrderLineRow) []models.OrderView {
	grouped := GroupLines(rows)

	views := make([]models.OrderView, 0, len(orders))
	for _, order := range orders {
		items, ok := grouped[order.ID]
		if !ok {
			items = []models.OrderItemView{}
		}
		views = append(views, models.OrderView{
			ID:        order.ID,
			Customer:  order.Customer,
			Items:     items,
			CreatedAt: order.CreatedAt,
			UpdatedAt: order.UpdatedAt,
		})
	}
	return views
}
