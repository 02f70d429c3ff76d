package orders

import (
	"math"
	"sort"
	"time"

	"wanderly/internal/products"
	"wanderly/internal/shared/apperrors"

	"github.com/google/uuid"
)

// TxRepository is what placing an order needs from the enclosing transaction
type TxRepository interface {
	// LockProducts takes the product rows FOR UPDATE in id order
	LockProducts(ids []uuid.UUID) (map[uuid.UUID]products.Product, error)
	ConsumeStock(productID uuid.UUID, qty int) (bool, error)
	CreateOrder(order *Order) error
	CreatePurchases(purchases []Purchase) error
}

// Place validates every line against locked stock, then moves the stock,
// writes a Paid order with its item snapshot and one purchase row per line.
// The caller's transaction must roll back on any error.
func Place(tx TxRepository, userID uuid.UUID, lines []Line, now time.Time) (*Order, error) {
	lines = mergeLines(lines)
	if len(lines) == 0 {
		return nil, apperrors.ErrEmptyCart
	}

	ids := make([]uuid.UUID, 0, len(lines))
	for _, l := range lines {
		ids = append(ids, l.ProductID)
	}
	locked, err := tx.LockProducts(ids)
	if err != nil {
		return nil, err
	}

	byID := make([]Line, len(lines))
	copy(byID, lines)
	sort.Slice(byID, func(i, j int) bool { return byID[i].ProductID.String() < byID[j].ProductID.String() })
	for _, l := range byID {
		p, ok := locked[l.ProductID]
		if !ok {
			return nil, apperrors.ErrProductNotFound.WithDetails(map[string]interface{}{"product_id": l.ProductID})
		}
		if p.Stock < l.Quantity {
			return nil, insufficient(p, l.Quantity)
		}
	}

	order := &Order{UserID: userID, Status: StatusPaid}
	total := 0.0
	for _, l := range lines {
		p := locked[l.ProductID]
		ok, err := tx.ConsumeStock(p.ID, l.Quantity)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, insufficient(p, l.Quantity)
		}
		order.Items = append(order.Items, OrderItem{
			ProductID:       p.ID,
			Name:            p.Title,
			Quantity:        l.Quantity,
			PriceAtPurchase: p.Price,
		})
		total += p.Price * float64(l.Quantity)
	}
	order.TotalAmount = roundCents(total)

	if err := tx.CreateOrder(order); err != nil {
		return nil, err
	}

	purchases := make([]Purchase, 0, len(order.Items))
	for _, item := range order.Items {
		purchases = append(purchases, Purchase{
			UserID:      userID,
			OrderID:     order.ID,
			ProductID:   item.ProductID,
			Quantity:    item.Quantity,
			Price:       item.PriceAtPurchase,
			PurchasedAt: now,
		})
	}
	if err := tx.CreatePurchases(purchases); err != nil {
		return nil, err
	}
	return order, nil
}

func insufficient(p products.Product, requested int) error {
	return apperrors.ErrInsufficientStock.
		WithMessage("Insufficient stock for %s", p.Title).
		WithDetails(map[string]interface{}{
			"product_id": p.ID,
			"product":    p.Title,
			"available":  p.Stock,
			"requested":  requested,
		})
}

// mergeLines folds repeated products into one line, keeping first-seen order
func mergeLines(lines []Line) []Line {
	index := make(map[uuid.UUID]int, len(lines))
	out := make([]Line, 0, len(lines))
	for _, l := range lines {
		if i, ok := index[l.ProductID]; ok {
			out[i].Quantity += l.Quantity
			continue
		}
		index[l.ProductID] = len(out)
		out = append(out, l)
	}
	return out
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
