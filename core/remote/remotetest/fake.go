// Package remotetest provides an in-memory remote.Client for tests.
package remotetest

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"catalog-sync/core/remote"
)

// Mutating operation names, as counted by Fake.Mutations.
const (
	OpCreateProduct   = "create_product"
	OpUpdateProduct   = "update_product"
	OpCreatePrice     = "create_price"
	OpDeactivatePrice = "deactivate_price"
)

// Fake is an in-memory billing provider. Prices are immutable, as on the real provider.
type Fake struct {
	mu       sync.Mutex
	products map[string]*remote.Product
	prices   map[string]*remote.Price
	seq      int
	calls    map[string]int
	idem     map[string]string

	// Failures makes the named operation fail with the given error.
	// A *remote.Error is returned as is; the entry is consumed when FailOnce is set for it.
	Failures map[string]error
	FailOnce map[string]bool
}

// New returns an empty Fake.
func New() *Fake {
	return &Fake{
		products: make(map[string]*remote.Product),
		prices:   make(map[string]*remote.Price),
		calls:    make(map[string]int),
		idem:     make(map[string]string),
		Failures: make(map[string]error),
		FailOnce: make(map[string]bool),
	}
}

func (f *Fake) fail(op string) error {
	f.calls[op]++
	err, ok := f.Failures[op]
	if !ok {
		return nil
	}
	if f.FailOnce[op] {
		delete(f.Failures, op)
		delete(f.FailOnce, op)
	}
	return err
}

func (f *Fake) nextID(prefix string) string {
	f.seq++
	return fmt.Sprintf("%s_%d", prefix, f.seq)
}

// Calls returns how many times op was invoked.
func (f *Fake) Calls(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

// Mutations returns the number of mutating calls made so far.
func (f *Fake) Mutations() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[OpCreateProduct] + f.calls[OpUpdateProduct] + f.calls[OpCreatePrice] + f.calls[OpDeactivatePrice]
}

// ResetCalls clears call counters.
func (f *Fake) ResetCalls() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = make(map[string]int)
}

// Product returns a copy of a stored product, deleted or not.
func (f *Fake) Product(id string) (remote.Product, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.products[id]
	if !ok {
		return remote.Product{}, false
	}
	return copyProduct(*p), true
}

// Price returns a copy of a stored price.
func (f *Fake) Price(id string) (remote.Price, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.prices[id]
	if !ok {
		return remote.Price{}, false
	}
	return *p, true
}

// PricesOf returns every price (active or not) of a product, sorted by id.
func (f *Fake) PricesOf(productID string) []remote.Price {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []remote.Price
	for _, p := range f.prices {
		if p.ProductID == productID {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// DeleteProduct removes a product out-of-band.
func (f *Fake) DeleteProduct(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.products, id)
}

// DeletePrice removes a price out-of-band.
func (f *Fake) DeletePrice(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.prices, id)
}

// EditProduct changes a product out-of-band.
func (f *Fake) EditProduct(id string, edit func(*remote.Product)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p, ok := f.products[id]; ok {
		edit(p)
	}
}

// SetPriceActive toggles a price out-of-band.
func (f *Fake) SetPriceActive(id string, active bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p, ok := f.prices[id]; ok {
		p.Active = active
	}
}

func (f *Fake) Ping(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fail("ping")
}

func (f *Fake) CreateProduct(ctx context.Context, params remote.ProductParams) (*remote.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail(OpCreateProduct); err != nil {
		return nil, err
	}
	if id, ok := f.idem[params.IdempotencyKey]; ok && params.IdempotencyKey != "" {
		p := copyProduct(*f.products[id])
		return &p, nil
	}
	p := &remote.Product{
		ID:          f.nextID("prod"),
		Name:        params.Name,
		Description: params.Description,
		Metadata:    make(map[string]string),
		Active:      true,
	}
	mergeMetadata(p.Metadata, params.Metadata)
	f.products[p.ID] = p
	if params.IdempotencyKey != "" {
		f.idem[params.IdempotencyKey] = p.ID
	}
	out := copyProduct(*p)
	return &out, nil
}

func (f *Fake) RetrieveProduct(ctx context.Context, id string) (*remote.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("retrieve_product"); err != nil {
		return nil, err
	}
	p, ok := f.products[id]
	if !ok {
		return nil, remote.NewError("retrieve_product", remote.KindNotFound, "no such product: "+id)
	}
	out := copyProduct(*p)
	return &out, nil
}

func (f *Fake) UpdateProduct(ctx context.Context, id string, params remote.ProductParams) (*remote.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail(OpUpdateProduct); err != nil {
		return nil, err
	}
	p, ok := f.products[id]
	if !ok {
		return nil, remote.NewError(OpUpdateProduct, remote.KindNotFound, "no such product: "+id)
	}
	p.Name = params.Name
	p.Description = params.Description
	if p.Metadata == nil {
		p.Metadata = make(map[string]string)
	}
	mergeMetadata(p.Metadata, params.Metadata)
	out := copyProduct(*p)
	return &out, nil
}

func (f *Fake) CreatePrice(ctx context.Context, params remote.PriceParams) (*remote.Price, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail(OpCreatePrice); err != nil {
		return nil, err
	}
	if id, ok := f.idem[params.IdempotencyKey]; ok && params.IdempotencyKey != "" {
		p := *f.prices[id]
		return &p, nil
	}
	if _, ok := f.products[params.ProductID]; !ok {
		return nil, remote.NewError(OpCreatePrice, remote.KindInvalid, "no such product: "+params.ProductID)
	}
	p := &remote.Price{
		ID:         f.nextID("price"),
		ProductID:  params.ProductID,
		Currency:   params.Currency,
		UnitAmount: params.UnitAmount,
		Interval:   params.Interval,
		Active:     true,
		Metadata:   copyMap(params.Metadata),
	}
	f.prices[p.ID] = p
	if params.IdempotencyKey != "" {
		f.idem[params.IdempotencyKey] = p.ID
	}
	out := *p
	return &out, nil
}

func (f *Fake) RetrievePrice(ctx context.Context, id string) (*remote.Price, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("retrieve_price"); err != nil {
		return nil, err
	}
	p, ok := f.prices[id]
	if !ok {
		return nil, remote.NewError("retrieve_price", remote.KindNotFound, "no such price: "+id)
	}
	out := *p
	return &out, nil
}

func (f *Fake) DeactivatePrice(ctx context.Context, id string) (*remote.Price, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail(OpDeactivatePrice); err != nil {
		return nil, err
	}
	p, ok := f.prices[id]
	if !ok {
		return nil, remote.NewError(OpDeactivatePrice, remote.KindNotFound, "no such price: "+id)
	}
	p.Active = false
	out := *p
	return &out, nil
}

func (f *Fake) ListProducts(ctx context.Context) ([]remote.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("list_products"); err != nil {
		return nil, err
	}
	var out []remote.Product
	for _, p := range f.products {
		if p.Active {
			out = append(out, copyProduct(*p))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *Fake) ListPrices(ctx context.Context, productID string) ([]remote.Price, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("list_prices"); err != nil {
		return nil, err
	}
	var out []remote.Price
	for _, p := range f.prices {
		if p.ProductID == productID && p.Active {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func copyProduct(p remote.Product) remote.Product {
	p.Metadata = copyMap(p.Metadata)
	return p
}

func copyMap(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// mergeMetadata applies update to md the way Stripe does: an empty value unsets the key.
func mergeMetadata(md, update map[string]string) {
	for k, v := range update {
		if v == "" {
			delete(md, k)
			continue
		}
		md[k] = v
	}
}
