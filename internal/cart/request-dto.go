package cart

import "github.com/google/uuid"

type AddToCartRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	// Quantity is added to what is already in the cart
	Quantity int `json:"quantity" validate:"omitempty,min=1,max=100"`
}

type UpdateQuantityRequest struct {
	Quantity int `json:"quantity"`
}
