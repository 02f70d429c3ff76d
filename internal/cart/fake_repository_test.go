package cart

import (
	"context"
	"sort"
	"sync"

	"wanderly/internal/orders"
	"wanderly/internal/products"
	"wanderly/internal/shared/apperrors"

	"github.com/google/uuid"
)

type itemKey struct {
	user, product uuid.UUID
}

type memState struct {
	products  map[uuid.UUID]products.Product
	items     map[itemKey]Item
	orders    []orders.Order
	purchases []orders.Purchase
}

func (s memState) clone() memState {
	cp := memState{
		products:  make(map[uuid.UUID]products.Product, len(s.products)),
		items:     make(map[itemKey]Item, len(s.items)),
		orders:    append([]orders.Order(nil), s.orders...),
		purchases: append([]orders.Purchase(nil), s.purchases...),
	}
	for k, v := range s.products {
		cp.products[k] = v
	}
	for k, v := range s.items {
		cp.items[k] = v
	}
	return cp
}

type memRepo struct {
	mu    sync.Mutex
	state memState
	seq   int

	beforeAdd  func(tx *memTx)
	afterItems func(tx *memTx)
}

func newMemRepo() *memRepo {
	return &memRepo{state: memState{
		products: map[uuid.UUID]products.Product{},
		items:    map[itemKey]Item{},
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

func (m *memRepo) quantity(user, product uuid.UUID) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.items[itemKey{user, product}].Quantity
}

func (m *memRepo) orderCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.state.orders)
}

func (m *memRepo) InTx(_ context.Context, fn func(tx TxRepository) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	work := m.state.clone()
	tx := &memTx{st: &work, seq: &m.seq, beforeAdd: m.beforeAdd, afterItems: m.afterItems}
	if err := fn(tx); err != nil {
		return err
	}
	m.state = work
	return nil
}

func (m *memRepo) Lines(_ context.Context, userID uuid.UUID) ([]Line, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Line
	for _, it := range userItems(m.state, userID) {
		out = append(out, Line{Item: it, Product: m.state.products[it.ProductID]})
	}
	return out, nil
}

func (m *memRepo) Purchases(_ context.Context, userID uuid.UUID) ([]PurchaseLine, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []PurchaseLine
	for _, p := range m.state.purchases {
		if p.UserID == userID {
			prod := m.state.products[p.ProductID]
			out = append(out, PurchaseLine{Purchase: p, Title: prod.Title, Image: prod.Image})
		}
	}
	return out, nil
}

// userItems returns a user's lines in insertion order
func userItems(st memState, userID uuid.UUID) []Item {
	var out []Item
	for k, it := range st.items {
		if k.user == userID {
			out = append(out, it)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

type memTx struct {
	st  *memState
	seq *int

	// stand-ins for another transaction committing mid-flight
	beforeAdd  func(tx *memTx)
	afterItems func(tx *memTx)
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

func (tx *memTx) CreateOrder(o *orders.Order) error {
	o.ID = uuid.New()
	tx.st.orders = append(tx.st.orders, *o)
	return nil
}

func (tx *memTx) CreatePurchases(ps []orders.Purchase) error {
	tx.st.purchases = append(tx.st.purchases, ps...)
	return nil
}

func (tx *memTx) ShareProduct(id uuid.UUID) (*products.Product, error) {
	p, ok := tx.st.products[id]
	if !ok {
		return nil, apperrors.ErrProductNotFound
	}
	return &p, nil
}

func (tx *memTx) AddQuantity(user, product uuid.UUID, delta int) (int, error) {
	if tx.beforeAdd != nil {
		tx.beforeAdd(tx)
	}
	it := tx.putItem(user, product, 0)
	it.Quantity += delta
	tx.st.items[itemKey{user, product}] = it
	return it.Quantity, nil
}

// putItem returns the existing line, or stores a new one with qty
func (tx *memTx) putItem(user, product uuid.UUID, qty int) Item {
	k := itemKey{user, product}
	if it, ok := tx.st.items[k]; ok {
		return it
	}
	*tx.seq++
	it := Item{ID: uuid.New(), UserID: user, ProductID: product, Quantity: qty}
	it.CreatedAt = it.CreatedAt.AddDate(0, 0, *tx.seq)
	tx.st.items[k] = it
	return it
}

func (tx *memTx) SetQuantity(user, product uuid.UUID, qty int) (bool, error) {
	k := itemKey{user, product}
	it, ok := tx.st.items[k]
	if !ok {
		return false, nil
	}
	it.Quantity = qty
	tx.st.items[k] = it
	return true, nil
}

func (tx *memTx) DeleteItem(user, product uuid.UUID) (bool, error) {
	k := itemKey{user, product}
	if _, ok := tx.st.items[k]; !ok {
		return false, nil
	}
	delete(tx.st.items, k)
	return true, nil
}

func (tx *memTx) Items(user uuid.UUID) ([]Item, error) {
	items := userItems(*tx.st, user)
	if tx.afterItems != nil {
		tx.afterItems(tx)
	}
	return items, nil
}

func (tx *memTx) RemoveItems(ids []uuid.UUID) error {
	drop := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}
	for k, it := range tx.st.items {
		if drop[it.ID] {
			delete(tx.st.items, k)
		}
	}
	return nil
}
