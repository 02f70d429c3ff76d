package cart

import (
	"context"
	"fmt"

	"wanderly/internal/orders"
	"wanderly/internal/products"
	"wanderly/internal/shared/apperrors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository interface {
	InTx(ctx context.Context, fn func(tx TxRepository) error) error
	Lines(ctx context.Context, userID uuid.UUID) ([]Line, error)
	Purchases(ctx context.Context, userID uuid.UUID) ([]PurchaseLine, error)
}

// TxRepository extends order placement with cart line operations
type TxRepository interface {
	orders.TxRepository

	// ShareProduct reads a product under FOR SHARE so stock cannot drop mid-check
	ShareProduct(productID uuid.UUID) (*products.Product, error)
	// AddQuantity adds delta to the user's line, creating it if needed, and
	// returns the resulting quantity. Concurrent adds accumulate.
	AddQuantity(userID, productID uuid.UUID, delta int) (int, error)
	SetQuantity(userID, productID uuid.UUID, quantity int) (bool, error)
	DeleteItem(userID, productID uuid.UUID) (bool, error)
	Items(userID uuid.UUID) ([]Item, error)
	// RemoveItems deletes exactly the given lines
	RemoveItems(ids []uuid.UUID) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) InTx(ctx context.Context, fn func(tx TxRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&txRepository{TxRepository: orders.NewTxRepository(tx), tx: tx})
	})
}

func (r *repository) Lines(ctx context.Context, userID uuid.UUID) ([]Line, error) {
	db := r.db.WithContext(ctx)

	var items []Item
	if err := db.Where("user_id = ?", userID).Order("created_at ASC").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	if len(items) == 0 {
		return nil, nil
	}

	ids := make([]uuid.UUID, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ProductID)
	}
	var rows []products.Product
	if err := db.Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load cart products: %w", err)
	}
	byID := make(map[uuid.UUID]products.Product, len(rows))
	for _, p := range rows {
		byID[p.ID] = p
	}

	lines := make([]Line, 0, len(items))
	for _, it := range items {
		if p, ok := byID[it.ProductID]; ok {
			lines = append(lines, Line{Item: it, Product: p})
		}
	}
	return lines, nil
}

func (r *repository) Purchases(ctx context.Context, userID uuid.UUID) ([]PurchaseLine, error) {
	var rows []PurchaseLine
	err := r.db.WithContext(ctx).
		Table("purchases").
		Select("purchases.*, products.title, products.image").
		Joins("LEFT JOIN products ON products.id = purchases.product_id").
		Where("purchases.user_id = ?", userID).
		Order("purchases.purchased_at DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load purchases: %w", err)
	}
	return rows, nil
}

type txRepository struct {
	orders.TxRepository
	tx *gorm.DB
}

func (r *txRepository) ShareProduct(productID uuid.UUID) (*products.Product, error) {
	locked, err := products.Lock(r.tx, []uuid.UUID{productID}, products.LockShare)
	if err != nil {
		return nil, err
	}
	p, ok := locked[productID]
	if !ok {
		return nil, apperrors.ErrProductNotFound
	}
	return &p, nil
}

func (r *txRepository) AddQuantity(userID, productID uuid.UUID, delta int) (int, error) {
	item := Item{UserID: userID, ProductID: productID, Quantity: delta}
	err := r.tx.Clauses(
		clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "product_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"quantity":   gorm.Expr("cart_items.quantity + EXCLUDED.quantity"),
				"updated_at": gorm.Expr("EXCLUDED.updated_at"),
			}),
		},
		clause.Returning{Columns: []clause.Column{{Name: "id"}, {Name: "quantity"}}},
	).Create(&item).Error
	if err != nil {
		return 0, fmt.Errorf("failed to save cart item: %w", err)
	}
	return item.Quantity, nil
}

func (r *txRepository) SetQuantity(userID, productID uuid.UUID, quantity int) (bool, error) {
	res := r.tx.Model(&Item{}).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Update("quantity", quantity)
	if res.Error != nil {
		return false, fmt.Errorf("failed to update cart item: %w", res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (r *txRepository) DeleteItem(userID, productID uuid.UUID) (bool, error) {
	res := r.tx.Where("user_id = ? AND product_id = ?", userID, productID).Delete(&Item{})
	if res.Error != nil {
		return false, fmt.Errorf("failed to remove cart item: %w", res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (r *txRepository) Items(userID uuid.UUID) ([]Item, error) {
	var items []Item
	err := r.tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	return items, nil
}

func (r *txRepository) RemoveItems(ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	if err := r.tx.Where("id IN ?", ids).Delete(&Item{}).Error; err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}
