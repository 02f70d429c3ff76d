package orders

import (
	"context"
	"sync"

	"wanderly/internal/products"
	"wanderly/internal/shared/apperrors"

	"github.com/google/uuid"
)

type memState struct {
	products  map[uuid.UUID]products.Product
	orders    map[uuid.UUID]Order
	purchases []Purchase
}

func (s memState) clone() memState {
	cp := memState{
		products:  make(map[uuid.UUID]products.Product, len(s.products)),
		orders:    make(map[uuid.UUID]Order, len(s.orders)),
		purchases: append([]Purchase(nil), s.purchases...),
	}
	for k, v := range s.products {
		cp.products[k] = v
	}
	for k, v := range s.orders {
		cp.orders[k] = v
	}
	return cp
}

type memRepo struct {
	mu    sync.Mutex
	state memState
}

func newMemRepo() *memRepo {
	return &memRepo{state: memState{
		products: map[uuid.UUID]products.Product{},
		orders:   map[uuid.UUID]Order{},
	}}
}

func (m *memRepo) addProduct(title string, price float64, stock int) products.Product {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := products.Product{ID: uuid.New(), Title: title, Price: price, Stock: stock, Category: products.CategoryOther}
	m.state.products[p.ID] = p
	return p
}

func (m *memRepo) product(id uuid.UUID) products.Product {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.products[id]
}

func (m *memRepo) purchases() []Purchase {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Purchase(nil), m.state.purchases...)
}

func (m *memRepo) InTx(_ context.Context, fn func(tx TxRepository) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	work := m.state.clone()
	if err := fn(&memTx{st: &work}); err != nil {
		return err
	}
	m.state = work
	return nil
}

func (m *memRepo) ListByUser(_ context.Context, userID uuid.UUID) ([]Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Order
	for _, o := range m.state.orders {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (m *memRepo) GetByID(_ context.Context, id uuid.UUID) (*Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.state.orders[id]
	if !ok {
		return nil, apperrors.ErrOrderNotFound
	}
	return &o, nil
}

func (m *memRepo) UpdateStatus(_ context.Context, id uuid.UUID, status OrderStatus) (*Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.state.orders[id]
	if !ok {
		return nil, apperrors.ErrOrderNotFound
	}
	o.Status = status
	m.state.orders[id] = o
	return &o, nil
}

type memTx struct {
	st *memState
}

func (tx *memTx) LockProducts(ids []uuid.UUID) (map[uuid.UUID]products.Product, error) {
	out := map[uuid.UUID]products.Product{}
	for _, id := range ids {
		if p, ok := tx.st.products[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

func (tx *memTx) ConsumeStock(id uuid.UUID, qty int) (bool, error) {
	p, ok := tx.st.products[id]
	if !ok || p.Stock < qty {
		return false, nil
	}
	p.Stock -= qty
	p.SoldCount += qty
	tx.st.products[id] = p
	return true, nil
}

func (tx *memTx) CreateOrder(o *Order) error {
	o.ID = uuid.New()
	tx.st.orders[o.ID] = *o
	return nil
}

func (tx *memTx) CreatePurchases(ps []Purchase) error {
	tx.st.purchases = append(tx.st.purchases, ps...)
	return nil
}
