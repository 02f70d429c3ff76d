package orders

import (
	"context"
	"testing"
	"time"

	"wanderly/internal/shared/apperrors"
	"wanderly/pkg/cache"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(repo *memRepo) *service {
	svc := NewService(repo, cache.Noop()).(*service)
	svc.now = func() time.Time { return time.Date(2026, 3, 3, 12, 0, 0, 0, time.UTC) }
	return svc
}

func price(v float64) *float64 { return &v }

func TestPlace_ValidatesThenConsumes(t *testing.T) {
	repo := newMemRepo()
	mug := repo.addProduct("Mug", 12.5, 3)
	hat := repo.addProduct("Cap", 20, 1)
	user := uuid.New()

	err := repo.InTx(context.Background(), func(tx TxRepository) error {
		_, err := Place(tx, user, []Line{{ProductID: mug.ID, Quantity: 2}, {ProductID: hat.ID, Quantity: 2}}, time.Now())
		return err
	})
	require.ErrorIs(t, err, apperrors.ErrInsufficientStock)
	appErr, _ := apperrors.As(err)
	assert.Equal(t, "Cap", appErr.Details["product"])
	assert.Equal(t, 1, appErr.Details["available"])
	assert.Equal(t, 3, repo.product(mug.ID).Stock, "nothing moves when any line fails")

	var order *Order
	err = repo.InTx(context.Background(), func(tx TxRepository) error {
		var err error
		order, err = Place(tx, user, []Line{{ProductID: mug.ID, Quantity: 1}, {ProductID: hat.ID, Quantity: 1}, {ProductID: mug.ID, Quantity: 1}}, time.Now())
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, StatusPaid, order.Status)
	require.Len(t, order.Items, 2, "repeated products merge into one line")
	assert.Equal(t, 2, order.Items[0].Quantity)
	assert.Equal(t, 45.0, order.TotalAmount)

	assert.Equal(t, 1, repo.product(mug.ID).Stock)
	assert.Equal(t, 2, repo.product(mug.ID).SoldCount)
	assert.Equal(t, 0, repo.product(hat.ID).Stock)
	assert.Len(t, repo.purchases(), 2)
}

func TestPlace_UnknownProduct(t *testing.T) {
	repo := newMemRepo()
	err := repo.InTx(context.Background(), func(tx TxRepository) error {
		_, err := Place(tx, uuid.New(), []Line{{ProductID: uuid.New(), Quantity: 1}}, time.Now())
		return err
	})
	assert.ErrorIs(t, err, apperrors.ErrProductNotFound)
}

func TestCreateOrder(t *testing.T) {
	ctx := context.Background()
	repo := newMemRepo()
	book := repo.addProduct("Guide book", 19.99, 5)
	svc := newTestService(repo)
	user := uuid.New()

	req := CreateOrderRequest{
		Items:       []OrderItemRequest{{ProductID: book.ID, Quantity: 2, PriceAtPurchase: price(1)}},
		TotalAmount: price(10),
	}
	_, err := svc.CreateOrder(ctx, user, req)
	assert.ErrorIs(t, err, apperrors.ErrTotalMismatch)
	assert.Equal(t, 5, repo.product(book.ID).Stock)

	req.TotalAmount = price(39.985)
	order, err := svc.CreateOrder(ctx, user, req)
	require.NoError(t, err)
	assert.Equal(t, 39.98, order.TotalAmount)
	assert.Equal(t, 19.99, order.Items[0].PriceAtPurchase, "server price wins over the client's")
	assert.Equal(t, 3, repo.product(book.ID).Stock)

	mine, err := svc.GetMyOrders(ctx, user)
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	_, err = svc.GetOrder(ctx, uuid.New(), order.ID)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
	_, err = svc.GetOrder(ctx, user, uuid.New())
	assert.ErrorIs(t, err, apperrors.ErrOrderNotFound)
	got, err := svc.GetOrder(ctx, user, order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.ID, got.ID)
}

func TestUpdateStatus(t *testing.T) {
	ctx := context.Background()
	repo := newMemRepo()
	p := repo.addProduct("Scarf", 25, 2)
	svc := newTestService(repo)

	order, err := svc.CreateOrder(ctx, uuid.New(), CreateOrderRequest{
		Items:       []OrderItemRequest{{ProductID: p.ID, Quantity: 1, PriceAtPurchase: price(25)}},
		TotalAmount: price(25),
	})
	require.NoError(t, err)

	_, err = svc.UpdateStatus(ctx, order.ID, "Lost")
	assert.ErrorIs(t, err, apperrors.ErrInvalidStatus)

	updated, err := svc.UpdateStatus(ctx, order.ID, StatusShipped)
	require.NoError(t, err)
	assert.Equal(t, StatusShipped, updated.Status)
	assert.Equal(t, 25.0, updated.TotalAmount)
}
