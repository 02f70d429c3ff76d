package orders

import (
	"context"
	"log/slog"
	"math"
	"time"

	"wanderly/internal/products"
	"wanderly/internal/shared/apperrors"
	"wanderly/pkg/cache"
	"wanderly/pkg/logger"

	"github.com/google/uuid"
)

// totalTolerance is how far a client total may drift from the recomputed one
const totalTolerance = 0.01

type Service interface {
	CreateOrder(ctx context.Context, userID uuid.UUID, req CreateOrderRequest) (*Order, error)
	GetMyOrders(ctx context.Context, userID uuid.UUID) ([]Order, error)
	GetOrder(ctx context.Context, userID, orderID uuid.UUID) (*Order, error)
	UpdateStatus(ctx context.Context, orderID uuid.UUID, status OrderStatus) (*Order, error)
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
		log:   logger.GetDefault().WithComponent("orders"),
		now:   time.Now,
	}
}

// CreateOrder prices the items server side; client prices are informational
// and only the total is checked.
func (s *service) CreateOrder(ctx context.Context, userID uuid.UUID, req CreateOrderRequest) (*Order, error) {
	lines := make([]Line, 0, len(req.Items))
	for _, item := range req.Items {
		lines = append(lines, Line{ProductID: item.ProductID, Quantity: item.Quantity})
	}

	var order *Order
	err := s.repo.InTx(ctx, func(tx TxRepository) error {
		var err error
		order, err = Place(tx, userID, lines, s.now())
		if err != nil {
			return err
		}
		if math.Abs(order.TotalAmount-*req.TotalAmount) > totalTolerance {
			return apperrors.ErrTotalMismatch.WithDetails(map[string]interface{}{
				"client_total": *req.TotalAmount,
				"server_total": order.TotalAmount,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	products.Invalidate(ctx, s.cache, productIDs(order)...)
	s.log.LogCheckout(ctx, order.ID.String(), userID.String(), len(order.Items), order.TotalAmount)
	return order, nil
}

func (s *service) GetMyOrders(ctx context.Context, userID uuid.UUID) ([]Order, error) {
	out, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []Order{}
	}
	return out, nil
}

func (s *service) GetOrder(ctx context.Context, userID, orderID uuid.UUID) (*Order, error) {
	order, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, apperrors.ErrForbidden.WithMessage("Not authorized to view this order")
	}
	return order, nil
}

func (s *service) UpdateStatus(ctx context.Context, orderID uuid.UUID, status OrderStatus) (*Order, error) {
	if !status.IsValid() {
		return nil, apperrors.ErrInvalidStatus.WithDetails(map[string]interface{}{"status": status})
	}
	order, err := s.repo.UpdateStatus(ctx, orderID, status)
	if err != nil {
		return nil, err
	}
	s.log.Info("order status updated", slog.String("order_id", orderID.String()), slog.String("status", string(status)))
	return order, nil
}

func productIDs(order *Order) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(order.Items))
	for _, item := range order.Items {
		ids = append(ids, item.ProductID)
	}
	return ids
}
