package products

import (
	"time"

	"github.com/google/uuid"
)

type Category string

const (
	CategorySouvenir    Category = "souvenir"
	CategoryTravel      Category = "travel"
	CategoryAccessory   Category = "accessory"
	CategoryFashion     Category = "fashion"
	CategoryHome        Category = "home"
	CategoryElectronics Category = "electronics"
	CategoryMusic       Category = "music"
	CategoryOther       Category = "other"
)

func (c Category) IsValid() bool {
	switch c {
	case CategorySouvenir, CategoryTravel, CategoryAccessory, CategoryFashion,
		CategoryHome, CategoryElectronics, CategoryMusic, CategoryOther:
		return true
	}
	return false
}

// Product is a marketplace item. Stock only moves together with SoldCount.
type Product struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	Title       string    `json:"title" gorm:"size:100;not null"`
	Description string    `json:"description" gorm:"size:1000"`
	Price       float64   `json:"price" gorm:"not null;check:price >= 0"`
	Image       string    `json:"image" gorm:"size:500"`
	Category    Category  `json:"category" gorm:"type:varchar(20);not null;default:'other';index"`
	Stock       int       `json:"stock" gorm:"not null;default:0;check:stock >= 0"`
	SoldCount   int       `json:"sold_count" gorm:"not null;default:0;check:sold_count >= 0"`
	CreatedAt   time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt   time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

type ListQuery struct {
	Page     int
	Limit    int
	Category Category
}
