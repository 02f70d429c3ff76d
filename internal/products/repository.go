package products

import (
	"context"
	"errors"
	"fmt"

	"wanderly/internal/shared/apperrors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository interface {
	Create(ctx context.Context, product *Product) error
	GetByID(ctx context.Context, id uuid.UUID) (*Product, error)
	Update(ctx context.Context, id uuid.UUID, apply func(p *Product) error) (*Product, error)
	List(ctx context.Context, query ListQuery) ([]Product, int64, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, product *Product) error {
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Product, error) {
	var p Product
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return &p, nil
}

func (r *repository) Update(ctx context.Context, id uuid.UUID, apply func(p *Product) error) (*Product, error) {
	var p Product
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		locked, err := Lock(tx, []uuid.UUID{id}, LockUpdate)
		if err != nil {
			return err
		}
		found, ok := locked[id]
		if !ok {
			return apperrors.ErrProductNotFound
		}
		p = found
		if err := apply(&p); err != nil {
			return err
		}
		if err := tx.Save(&p).Error; err != nil {
			return fmt.Errorf("failed to update product: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *repository) List(ctx context.Context, query ListQuery) ([]Product, int64, error) {
	var (
		items []Product
		total int64
	)
	db := r.db.WithContext(ctx).Model(&Product{})
	if query.Category != "" {
		db = db.Where("category = ?", query.Category)
	}
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}
	offset := (query.Page - 1) * query.Limit
	if err := db.Order("created_at DESC").Offset(offset).Limit(query.Limit).Find(&items).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list products: %w", err)
	}
	return items, total, nil
}

// Row lock strengths
const (
	LockShare  = "SHARE"
	LockUpdate = "UPDATE"
)

// Lock loads the given products inside tx with a row lock, taken in id order
// so concurrent multi-product transactions cannot deadlock. Missing ids are
// absent from the result.
func Lock(tx *gorm.DB, ids []uuid.UUID, strength string) (map[uuid.UUID]Product, error) {
	var rows []Product
	err := tx.Clauses(clause.Locking{Strength: strength}).
		Where("id IN ?", ids).
		Order("id").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to lock products: %w", err)
	}

	out := make(map[uuid.UUID]Product, len(rows))
	for _, p := range rows {
		out[p.ID] = p
	}
	return out, nil
}

// ConsumeStock moves qty units from stock to sold_count if enough remain
func ConsumeStock(tx *gorm.DB, id uuid.UUID, qty int) (bool, error) {
	res := tx.Model(&Product{}).
		Where("id = ? AND stock >= ?", id, qty).
		UpdateColumns(map[string]interface{}{
			"stock":      gorm.Expr("stock - ?", qty),
			"sold_count": gorm.Expr("sold_count + ?", qty),
		})
	if res.Error != nil {
		return false, fmt.Errorf("failed to consume stock: %w", res.Error)
	}
	return res.RowsAffected == 1, nil
}
