package orders

import (
	"context"
	"errors"
	"fmt"

	"wanderly/internal/products"
	"wanderly/internal/shared/apperrors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	InTx(ctx context.Context, fn func(tx TxRepository) error) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]Order, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Order, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status OrderStatus) (*Order, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) InTx(ctx context.Context, fn func(tx TxRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewTxRepository(tx))
	})
}

func (r *repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]Order, error) {
	var out []Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return out, nil
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Order, error) {
	var order Order
	if err := r.db.WithContext(ctx).Preload("Items").Where("id = ?", id).First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	return &order, nil
}

func (r *repository) UpdateStatus(ctx context.Context, id uuid.UUID, status OrderStatus) (*Order, error) {
	res := r.db.WithContext(ctx).Model(&Order{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return nil, fmt.Errorf("failed to update order status: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, apperrors.ErrOrderNotFound
	}
	return r.GetByID(ctx, id)
}

type txRepository struct {
	tx *gorm.DB
}

// NewTxRepository binds order placement to an open transaction
func NewTxRepository(tx *gorm.DB) TxRepository {
	return &txRepository{tx: tx}
}

func (r *txRepository) LockProducts(ids []uuid.UUID) (map[uuid.UUID]products.Product, error) {
	return products.Lock(r.tx, ids, products.LockUpdate)
}

func (r *txRepository) ConsumeStock(productID uuid.UUID, qty int) (bool, error) {
	return products.ConsumeStock(r.tx, productID, qty)
}

func (r *txRepository) CreateOrder(order *Order) error {
	if err := r.tx.Create(order).Error; err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}
	return nil
}

func (r *txRepository) CreatePurchases(purchases []Purchase) error {
	if len(purchases) == 0 {
		return nil
	}
	if err := r.tx.Create(&purchases).Error; err != nil {
		return fmt.Errorf("failed to record purchases: %w", err)
	}
	return nil
}
