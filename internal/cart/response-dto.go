package cart

import (
	"wanderly/internal/orders"

	"github.com/google/uuid"
)

type LineView struct {
	ProductID uuid.UUID `json:"product_id"`
	Title     string    `json:"title"`
	Image     string    `json:"image"`
	Price     float64   `json:"price"`
	Stock     int       `json:"stock"`
	Quantity  int       `json:"quantity"`
	LineTotal float64   `json:"line_total"`
}

type View struct {
	Items      []LineView `json:"items"`
	TotalItems int        `json:"total_items"`
	Total      float64    `json:"total"`
}

type PurchasedItem struct {
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
	Price     float64   `json:"price"`
}

type CheckoutResponse struct {
	Order          *orders.Order   `json:"order"`
	PurchasedItems []PurchasedItem `json:"purchased_items"`
}
