package orders

import "github.com/google/uuid"

type OrderItemRequest struct {
	ProductID       uuid.UUID `json:"product_id" validate:"required"`
	Quantity        int       `json:"quantity" validate:"required,min=1"`
	PriceAtPurchase *float64  `json:"price_at_purchase" validate:"required,gte=0"`
}

type CreateOrderRequest struct {
	Items       []OrderItemRequest `json:"items" validate:"required,min=1,dive"`
	TotalAmount *float64           `json:"total_amount" validate:"required,gte=0"`
}

type UpdateOrderStatusRequest struct {
	Status OrderStatus `json:"status" validate:"required"`
}
