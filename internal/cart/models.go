package cart

import (
	"time"

	"wanderly/internal/orders"
	"wanderly/internal/products"

	"github.com/google/uuid"
)

// Item is one product line in a user's cart; (user, product) is unique
type Item struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	UserID    uuid.UUID `json:"user_id" gorm:"type:uuid;not null;uniqueIndex:idx_cart_user_product"`
	ProductID uuid.UUID `json:"product_id" gorm:"type:uuid;not null;uniqueIndex:idx_cart_user_product"`
	Quantity  int       `json:"quantity" gorm:"not null;check:quantity >= 1"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (Item) TableName() string {
	return "cart_items"
}

// Line is a cart item joined with its product
type Line struct {
	Item    Item
	Product products.Product
}

// PurchaseLine is a purchase history row with product display fields
type PurchaseLine struct {
	orders.Purchase
	Title string `json:"title"`
	Image string `json:"image"`
}
