package service

import (
	"context"
	"fmt"

	"order-service/internal/models"
	"order-service/internal/order"
	"order-service/internal/repository"
)

// fakeStore is an in-memory implementation of the repository interfaces.
// CreateOrder and CancelOrder mirror the transactional semantics of the
// real repositories: on failure nothing is mutated.
type fakeStore struct {
	customers map[int]models.Customer
	products  map[int]models.Product
	orders    map[int]models.Order
	items     map[int][]models.OrderItem

	nextCustomerID int
	nextProductID  int
	nextOrderID    int
	nextItemID     int

	createOrderErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		customers: make(map[int]models.Customer),
		products:  make(map[int]models.Product),
		orders:    make(map[int]models.Order),
		items:     make(map[int][]models.OrderItem),
	}
}

func (f *fakeStore) addCustomer(c models.Customer) models.Customer {
	f.nextCustomerID++
	c.CustomerID = f.nextCustomerID
	f.customers[c.CustomerID] = c
	return c
}

func (f *fakeStore) addProduct(p models.Product) models.Product {
	f.nextProductID++
	p.ProductID = f.nextProductID
	f.products[p.ProductID] = p
	return p
}

func (f *fakeStore) addOrder(o models.Order, items []models.OrderItem) models.Order {
	f.nextOrderID++
	o.OrderID = f.nextOrderID
	f.orders[o.OrderID] = o
	for i := range items {
		f.nextItemID++
		items[i].OrderItemID = f.nextItemID
		items[i].OrderID = o.OrderID
	}
	f.items[o.OrderID] = items
	return o
}

// CustomerRepository

func (f *fakeStore) Create(_ context.Context, c *models.Customer) error {
	*c = f.addCustomer(*c)
	return nil
}

func (f *fakeStore) GetByID(_ context.Context, id int) (*models.Customer, error) {
	c, ok := f.customers[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &c, nil
}

func (f *fakeStore) GetAll(_ context.Context) ([]models.Customer, error) {
	var out []models.Customer
	for _, c := range f.customers {
		out = append(out, c)
	}
	return out, nil
}

func (f *fakeStore) GetByEmail(_ context.Context, email string) (*models.Customer, error) {
	for _, c := range f.customers {
		if c.Email == email {
			return &c, nil
		}
	}
	return nil, repository.ErrNotFound
}

// ProductRepository view of the same store.

type fakeProducts struct{ store *fakeStore }

func (f fakeProducts) Create(_ context.Context, p *models.Product) error {
	*p = f.store.addProduct(*p)
	return nil
}

func (f fakeProducts) GetByID(_ context.Context, id int) (*models.Product, error) {
	p, ok := f.store.products[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

func (f fakeProducts) GetAll(_ context.Context) ([]models.Product, error) {
	var out []models.Product
	for _, p := range f.store.products {
		out = append(out, p)
	}
	return out, nil
}

func (f fakeProducts) Update(_ context.Context, p *models.Product) error {
	if _, ok := f.store.products[p.ProductID]; !ok {
		return repository.ErrNotFound
	}
	f.store.products[p.ProductID] = *p
	return nil
}

func (f fakeProducts) UpdateQuantity(_ context.Context, id int, change int) error {
	p, ok := f.store.products[id]
	if !ok {
		return repository.ErrNotFound
	}
	if p.Quantity+change < 0 {
		return fmt.Errorf("%w: product %d", repository.ErrInsufficientStock, id)
	}
	p.Quantity += change
	f.store.products[id] = p
	return nil
}

// OrderRepository view of the same store.

type fakeOrders struct{ store *fakeStore }

func (f fakeOrders) CreateOrder(_ context.Context, o *models.Order, items []models.OrderItem) error {
	if f.store.createOrderErr != nil {
		return f.store.createOrderErr
	}
	if _, ok := f.store.customers[o.CustomerID]; !ok {
		return fmt.Errorf("customer %d: %w", o.CustomerID, repository.ErrNotFound)
	}
	// validate everything before mutating anything, depleting a working
	// copy of the stock so duplicate product lines accumulate
	remaining := make(map[int]int)
	for _, item := range items {
		p, ok := f.store.products[item.ProductID]
		if !ok {
			return fmt.Errorf("product %d: %w", item.ProductID, repository.ErrNotFound)
		}
		if _, seen := remaining[item.ProductID]; !seen {
			remaining[item.ProductID] = p.Quantity
		}
		if remaining[item.ProductID] < item.Quantity {
			return fmt.Errorf("%w for product %q: have %d, need %d",
				repository.ErrInsufficientStock, p.Name, remaining[item.ProductID], item.Quantity)
		}
		remaining[item.ProductID] -= item.Quantity
	}
	for _, item := range items {
		p := f.store.products[item.ProductID]
		p.Quantity -= item.Quantity
		f.store.products[item.ProductID] = p
	}
	*o = f.store.addOrder(*o, items)
	return nil
}

func (f fakeOrders) GetByID(_ context.Context, id int) (*models.Order, error) {
	o, ok := f.store.orders[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &o, nil
}

func (f fakeOrders) GetWithItems(_ context.Context, id int) (*models.Order, []models.OrderItem, error) {
	o, ok := f.store.orders[id]
	if !ok {
		return nil, nil, repository.ErrNotFound
	}
	items := append([]models.OrderItem(nil), f.store.items[id]...)
	return &o, items, nil
}

func (f fakeOrders) GetAll(_ context.Context) ([]models.Order, error) {
	var out []models.Order
	for _, o := range f.store.orders {
		out = append(out, o)
	}
	return out, nil
}

func (f fakeOrders) GetByCustomerID(_ context.Context, customerID int) ([]models.Order, error) {
	var out []models.Order
	for _, o := range f.store.orders {
		if o.CustomerID == customerID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (f fakeOrders) UpdateStatus(_ context.Context, id int, from, to order.Status) error {
	o, ok := f.store.orders[id]
	if !ok {
		return repository.ErrNotFound
	}
	if o.Status != from {
		return fmt.Errorf("%w: order %d is no longer %s", repository.ErrStatusConflict, id, from)
	}
	o.Status = to
	f.store.orders[id] = o
	return nil
}

func (f fakeOrders) CancelOrder(_ context.Context, id int, from, to order.Status, restock []models.OrderItem) error {
	if err := f.UpdateStatus(context.Background(), id, from, to); err != nil {
		return err
	}
	for _, item := range restock {
		p := f.store.products[item.ProductID]
		p.Quantity += item.Quantity
		f.store.products[item.ProductID] = p
	}
	return nil
}

// recordingInvalidator captures stock cache invalidations.
type recordingInvalidator struct {
	productIDs []int
}

func (r *recordingInvalidator) Invalidate(_ context.Context, productIDs ...int) {
	r.productIDs = append(r.productIDs, productIDs...)
}
