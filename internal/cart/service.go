package cart

import (
	"context"
	"math"
	"time"

	"wanderly/internal/orders"
	"wanderly/internal/products"
	"wanderly/internal/shared/apperrors"
	"wanderly/pkg/cache"
	"wanderly/pkg/logger"

	"github.com/google/uuid"
)

type Service interface {
	GetCart(ctx context.Context, userID uuid.UUID) (*View, error)
	AddToCart(ctx context.Context, userID uuid.UUID, req AddToCartRequest) (*View, error)
	UpdateQuantity(ctx context.Context, userID, productID uuid.UUID, quantity int) (*View, error)
	RemoveFromCart(ctx context.Context, userID, productID uuid.UUID) (*View, error)
	Checkout(ctx context.Context, userID uuid.UUID) (*CheckoutResponse, error)
	PurchaseHistory(ctx context.Context, userID uuid.UUID) ([]PurchaseLine, error)
}

type service struct {
	repo  Repository
	cache cache.Service
	log   *logger.Logger
	now   func() time.Time
}

func NewService(repo Repository, cacheService cache.Service) Service {
	return &service{
		repo:  repo,
		cache: cacheService,
		log:   logger.GetDefault().WithComponent("cart"),
		now:   time.Now,
	}
}

func (s *service) GetCart(ctx context.Context, userID uuid.UUID) (*View, error) {
	lines, err := s.repo.Lines(ctx, userID)
	if err != nil {
		return nil, err
	}

	view := &View{Items: make([]LineView, 0, len(lines))}
	total := 0.0
	for _, l := range lines {
		lineTotal := l.Product.Price * float64(l.Item.Quantity)
		view.Items = append(view.Items, LineView{
			ProductID: l.Product.ID,
			Title:     l.Product.Title,
			Image:     l.Product.Image,
			Price:     l.Product.Price,
			Stock:     l.Product.Stock,
			Quantity:  l.Item.Quantity,
			LineTotal: roundCents(lineTotal),
		})
		view.TotalItems += l.Item.Quantity
		total += lineTotal
	}
	view.Total = roundCents(total)
	return view, nil
}

// AddToCart adds to whatever is already in the cart; the combined quantity
// must fit the product's current stock.
func (s *service) AddToCart(ctx context.Context, userID uuid.UUID, req AddToCartRequest) (*View, error) {
	delta := req.Quantity
	if delta == 0 {
		delta = 1
	}

	err := s.repo.InTx(ctx, func(tx TxRepository) error {
		product, err := tx.ShareProduct(req.ProductID)
		if err != nil {
			return err
		}

		// the increment happens in the upsert itself; an overflow rolls it back
		quantity, err := tx.AddQuantity(userID, req.ProductID, delta)
		if err != nil {
			return err
		}
		if quantity > product.Stock {
			return apperrors.ErrInsufficientStock.
				WithMessage("Only %d of %s available", product.Stock, product.Title).
				WithDetails(map[string]interface{}{
					"available":       product.Stock,
					"current_in_cart": quantity - delta,
				})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetCart(ctx, userID)
}

func (s *service) UpdateQuantity(ctx context.Context, userID, productID uuid.UUID, quantity int) (*View, error) {
	err := s.repo.InTx(ctx, func(tx TxRepository) error {
		product, err := tx.ShareProduct(productID)
		if err != nil {
			return err
		}
		if quantity < 1 || quantity > product.Stock {
			return apperrors.ErrInvalidQuantity.WithDetails(map[string]interface{}{
				"min": 1,
				"max": product.Stock,
			})
		}
		ok, err := tx.SetQuantity(userID, productID, quantity)
		if err != nil {
			return err
		}
		if !ok {
			return apperrors.ErrItemNotInCart
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetCart(ctx, userID)
}

func (s *service) RemoveFromCart(ctx context.Context, userID, productID uuid.UUID) (*View, error) {
	err := s.repo.InTx(ctx, func(tx TxRepository) error {
		ok, err := tx.DeleteItem(userID, productID)
		if err != nil {
			return err
		}
		if !ok {
			return apperrors.ErrItemNotInCart
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetCart(ctx, userID)
}

// Checkout turns the cart into a Paid order and empties it, all in one
// transaction. Nothing changes if any line fails its stock check.
func (s *service) Checkout(ctx context.Context, userID uuid.UUID) (*CheckoutResponse, error) {
	var order *orders.Order
	err := s.repo.InTx(ctx, func(tx TxRepository) error {
		items, err := tx.Items(userID)
		if err != nil {
			return err
		}
		if len(items) == 0 {
			return apperrors.ErrEmptyCart
		}

		lines := make([]orders.Line, 0, len(items))
		read := make([]uuid.UUID, 0, len(items))
		for _, it := range items {
			lines = append(lines, orders.Line{ProductID: it.ProductID, Quantity: it.Quantity})
			read = append(read, it.ID)
		}
		order, err = orders.Place(tx, userID, lines, s.now())
		if err != nil {
			return err
		}
		// only the lines that were bought; one added meanwhile stays in the cart
		return tx.RemoveItems(read)
	})
	if err != nil {
		return nil, err
	}

	resp := &CheckoutResponse{Order: order, PurchasedItems: make([]PurchasedItem, 0, len(order.Items))}
	ids := make([]uuid.UUID, 0, len(order.Items))
	for _, item := range order.Items {
		resp.PurchasedItems = append(resp.PurchasedItems, PurchasedItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     item.PriceAtPurchase,
		})
		ids = append(ids, item.ProductID)
	}

	products.Invalidate(ctx, s.cache, ids...)
	s.log.LogCheckout(ctx, order.ID.String(), userID.String(), len(order.Items), order.TotalAmount)
	return resp, nil
}

func (s *service) PurchaseHistory(ctx context.Context, userID uuid.UUID) ([]PurchaseLine, error) {
	out, err := s.repo.Purchases(ctx, userID)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []PurchaseLine{}
	}
	return out, nil
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
