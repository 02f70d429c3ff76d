package products

type CreateProductRequest struct {
	Title       string   `json:"title" validate:"required,max=100"`
	Description string   `json:"description" validate:"max=1000"`
	Price       float64  `json:"price" validate:"gte=0"`
	Image       string   `json:"image" validate:"omitempty,max=500"`
	Category    Category `json:"category" validate:"omitempty,oneof=souvenir travel accessory fashion home electronics music other"`
	Stock       int      `json:"stock" validate:"gte=0"`
}

type UpdateProductRequest struct {
	Title       *string   `json:"title" validate:"omitempty,min=1,max=100"`
	Description *string   `json:"description" validate:"omitempty,max=1000"`
	Price       *float64  `json:"price" validate:"omitempty,gte=0"`
	Image       *string   `json:"image" validate:"omitempty,max=500"`
	Category    *Category `json:"category" validate:"omitempty,oneof=souvenir travel accessory fashion home electronics music other"`
	Stock       *int      `json:"stock" validate:"omitempty,gte=0"`
}
