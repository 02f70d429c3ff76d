package products

import (
	"context"
	"log/slog"
	"strings"

	"wanderly/internal/shared/constants"
	"wanderly/internal/shared/utils/response"
	"wanderly/pkg/cache"
	"wanderly/pkg/logger"

	"github.com/google/uuid"
)

type Service interface {
	CreateProduct(ctx context.Context, req CreateProductRequest) (*Product, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, req UpdateProductRequest) (*Product, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*Product, error)
	ListProducts(ctx context.Context, query ListQuery) (*ProductListResponse, error)
}

type service struct {
	repo  Repository
	cache cache.Service
	log   *logger.Logger
}

func NewService(repo Repository, cacheService cache.Service) Service {
	return &service{
		repo:  repo,
		cache: cacheService,
		log:   logger.GetDefault().WithComponent("products"),
	}
}

func (s *service) CreateProduct(ctx context.Context, req CreateProductRequest) (*Product, error) {
	category := req.Category
	if category == "" {
		category = CategoryOther
	}
	p := &Product{
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Price:       req.Price,
		Image:       req.Image,
		Category:    category,
		Stock:       req.Stock,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}

	Invalidate(ctx, s.cache)
	s.log.Info("product created", slog.String("product_id", p.ID.String()), slog.Int("stock", p.Stock))
	return p, nil
}

func (s *service) UpdateProduct(ctx context.Context, id uuid.UUID, req UpdateProductRequest) (*Product, error) {
	p, err := s.repo.Update(ctx, id, func(p *Product) error {
		if req.Title != nil {
			p.Title = strings.TrimSpace(*req.Title)
		}
		if req.Description != nil {
			p.Description = *req.Description
		}
		if req.Price != nil {
			p.Price = *req.Price
		}
		if req.Image != nil {
			p.Image = *req.Image
		}
		if req.Category != nil {
			p.Category = *req.Category
		}
		if req.Stock != nil {
			p.Stock = *req.Stock
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	Invalidate(ctx, s.cache, id)
	return p, nil
}

func (s *service) GetProduct(ctx context.Context, id uuid.UUID) (*Product, error) {
	var p Product
	err := s.cache.GetOrSet(ctx, constants.BuildProductDetailKey(id.String()), constants.TTL_DYNAMIC_SHORT, &p, func() (interface{}, error) {
		return s.repo.GetByID(ctx, id)
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *service) ListProducts(ctx context.Context, query ListQuery) (*ProductListResponse, error) {
	load := func() (interface{}, error) {
		items, total, err := s.repo.List(ctx, query)
		if err != nil {
			return nil, err
		}
		if items == nil {
			items = []Product{}
		}
		return ProductListResponse{Products: items, Pagination: response.NewPagination(query.Page, query.Limit, total)}, nil
	}

	if query.Category != "" {
		data, err := load()
		if err != nil {
			return nil, err
		}
		resp := data.(ProductListResponse)
		return &resp, nil
	}

	var resp ProductListResponse
	if err := s.cache.GetOrSet(ctx, constants.BuildProductListKey(query.Page, query.Limit), constants.TTL_DYNAMIC_SHORT, &resp, load); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Invalidate drops cached listings and the detail entries of ids. Anything
// that changes stock calls it after commit.
func Invalidate(ctx context.Context, c cache.Service, ids ...uuid.UUID) {
	log := logger.GetDefault().WithComponent("products")
	if len(ids) > 0 {
		keys := make([]string, 0, len(ids))
		for _, id := range ids {
			keys = append(keys, constants.BuildProductDetailKey(id.String()))
		}
		if err := c.Delete(ctx, keys...); err != nil {
			log.Warn("failed to invalidate product details", slog.Any("error", err))
		}
	}
	if err := c.DeletePattern(ctx, constants.PATTERN_INVALIDATE_PRODUCTS_LIST); err != nil {
		log.Warn("failed to invalidate product lists", slog.Any("error", err))
	}
}
