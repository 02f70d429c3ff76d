package orders

import (
	"time"

	"github.com/google/uuid"
)

type OrderStatus string

const (
	StatusPending    OrderStatus = "Pending"
	StatusPaid       OrderStatus = "Paid"
	StatusProcessing OrderStatus = "Processing"
	StatusShipped    OrderStatus = "Shipped"
	StatusDelivered  OrderStatus = "Delivered"
	StatusCancelled  OrderStatus = "Cancelled"
	StatusFailed     OrderStatus = "Failed"
)

func (s OrderStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusPaid, StatusProcessing, StatusShipped,
		StatusDelivered, StatusCancelled, StatusFailed:
		return true
	}
	return false
}

// Order is immutable once placed except for Status
type Order struct {
	ID          uuid.UUID   `json:"id" gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	UserID      uuid.UUID   `json:"user_id" gorm:"type:uuid;not null;index"`
	Items       []OrderItem `json:"items" gorm:"foreignKey:OrderID"`
	TotalAmount float64     `json:"total_amount" gorm:"not null;check:total_amount >= 0"`
	Status      OrderStatus `json:"status" gorm:"type:varchar(20);not null;default:'Pending';index"`
	CreatedAt   time.Time   `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt   time.Time   `json:"updated_at" gorm:"autoUpdateTime"`
}

// OrderItem snapshots the product at purchase time
type OrderItem struct {
	ID              uuid.UUID `json:"-" gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	OrderID         uuid.UUID `json:"-" gorm:"type:uuid;not null;index"`
	ProductID       uuid.UUID `json:"product_id" gorm:"type:uuid;not null;index"`
	Name            string    `json:"name" gorm:"size:100;not null"`
	Quantity        int       `json:"quantity" gorm:"not null;check:quantity >= 1"`
	PriceAtPurchase float64   `json:"price_at_purchase" gorm:"not null;check:price_at_purchase >= 0"`
}

// Purchase is one line of a user's purchase history
type Purchase struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	UserID      uuid.UUID `json:"user_id" gorm:"type:uuid;not null;index"`
	OrderID     uuid.UUID `json:"order_id" gorm:"type:uuid;not null;index"`
	ProductID   uuid.UUID `json:"product_id" gorm:"type:uuid;not null"`
	Quantity    int       `json:"quantity" gorm:"not null;check:quantity >= 1"`
	Price       float64   `json:"price" gorm:"not null"`
	PurchasedAt time.Time `json:"purchased_at" gorm:"not null"`
}

// Line is a product and how many units to buy
type Line struct {
	ProductID uuid.UUID
	Quantity  int
}
