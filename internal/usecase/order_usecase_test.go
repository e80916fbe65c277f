package usecase

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"buysmart/internal/domain"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

// fakeOrderRepo implements domain.OrderRepository in memory with the same
// contract as the Postgres implementation: every AddItem mutation is applied
// atomically under one lock, stock never goes negative, and at most one OPEN
// order exists per customer.
type fakeOrderRepo struct {
	mu          sync.Mutex
	products    map[int64]*domain.Product
	orders      map[int64]*domain.Order
	nextOrderID int64
	nextItemID  int64

	conflictsLeft int // AddItem returns ErrConflict this many times first
	addItemCalls  int
}

func newFakeOrderRepo(products ...*domain.Product) *fakeOrderRepo {
	repo := &fakeOrderRepo{
		products: make(map[int64]*domain.Product),
		orders:   make(map[int64]*domain.Order),
	}
	for _, p := range products {
		repo.products[p.ID] = p
	}
	return repo
}

func (r *fakeOrderRepo) openOrderOf(customerID int64) *domain.Order {
	for _, o := range r.orders {
		if o.CustomerID == customerID && o.Status == domain.StatusOpen {
			return o
		}
	}
	return nil
}

func (r *fakeOrderRepo) AddItem(ctx context.Context, customerID, productID int64, quantity int) (*domain.AddItemResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.addItemCalls++
	if r.conflictsLeft > 0 {
		r.conflictsLeft--
		return nil, fmt.Errorf("open order for customer %d: %w", customerID, domain.ErrConflict)
	}

	product, ok := r.products[productID]
	if !ok {
		return nil, fmt.Errorf("product %d: %w", productID, domain.ErrNotFound)
	}
	if product.Stock < quantity {
		return nil, fmt.Errorf("product %d: %w (requested %d, available %d)",
			productID, domain.ErrInsufficientStock, quantity, product.Stock)
	}

	order := r.openOrderOf(customerID)
	if order == nil {
		r.nextOrderID++
		order = &domain.Order{
			ID:         r.nextOrderID,
			CustomerID: customerID,
			Status:     domain.StatusOpen,
			CreatedAt:  time.Now(),
		}
		r.orders[order.ID] = order
	}

	product.Stock -= quantity
	r.nextItemID++
	order.Items = append(order.Items, domain.LineItem{
		ID:        r.nextItemID,
		OrderID:   order.ID,
		ProductID: productID,
		Quantity:  quantity,
		UnitPrice: product.Price,
	})
	order.Total += float64(quantity) * product.Price

	return &domain.AddItemResult{
		OrderID:   order.ID,
		ProductID: productID,
		Quantity:  quantity,
		UnitPrice: product.Price,
		Total:     order.Total,
	}, nil
}

func (r *fakeOrderRepo) CloseOrder(ctx context.Context, customerID, orderID int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[orderID]
	if !ok || order.CustomerID != customerID {
		return false, fmt.Errorf("order %d: %w", orderID, domain.ErrNotFound)
	}
	if order.Status == domain.StatusClosed {
		return true, nil
	}
	order.Status = domain.StatusClosed
	return false, nil
}

func (r *fakeOrderRepo) GetOrderByID(ctx context.Context, customerID, orderID int64) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[orderID]
	if !ok || order.CustomerID != customerID {
		return nil, fmt.Errorf("order %d: %w", orderID, domain.ErrNotFound)
	}
	clone := *order
	clone.Items = append([]domain.LineItem(nil), order.Items...)
	return &clone, nil
}

func (r *fakeOrderRepo) ListOrdersByCustomerID(ctx context.Context, customerID int64, limit, offset int) ([]domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var orders []domain.Order
	for _, o := range r.orders {
		if o.CustomerID == customerID {
			clone := *o
			clone.Items = append([]domain.LineItem(nil), o.Items...)
			orders = append(orders, clone)
		}
	}
	return orders, nil
}

func (r *fakeOrderRepo) stockOf(productID int64) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.products[productID].Stock
}

func (r *fakeOrderRepo) openOrderCount(customerID int64) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, o := range r.orders {
		if o.CustomerID == customerID && o.Status == domain.StatusOpen {
			count++
		}
	}
	return count
}

func TestOrderUseCase_AddItem_InvalidQuantity(t *testing.T) {
	repo := newFakeOrderRepo(&domain.Product{ID: 1, Name: "Mug", Price: 5.00, Stock: 10})
	uc := NewOrderUseCase(repo, testLogger())

	for _, quantity := range []int{0, -1, -42} {
		_, err := uc.AddItem(context.Background(), 1, 1, quantity)
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
	}
	assert.Equal(t, 0, repo.addItemCalls, "invalid quantity must be rejected before touching storage")
}

func TestOrderUseCase_AddItem_ProductNotFound(t *testing.T) {
	repo := newFakeOrderRepo()
	uc := NewOrderUseCase(repo, testLogger())

	_, err := uc.AddItem(context.Background(), 1, 99, 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// Walks the full cart lifecycle: lazy order creation, accumulation of the
// running total from price snapshots, a rejected over-ask leaving state
// untouched, checkout, idempotent re-checkout, and a fresh cart afterwards.
func TestOrderUseCase_CartLifecycle(t *testing.T) {
	repo := newFakeOrderRepo(&domain.Product{ID: 1, Name: "P1", Price: 5.00, Stock: 10})
	uc := NewOrderUseCase(repo, testLogger())
	ctx := context.Background()

	// First add creates the order.
	result, err := uc.AddItem(ctx, 1, 1, 4)
	require.NoError(t, err)
	assert.Equal(t, 20.00, result.Total)
	assert.Equal(t, 6, repo.stockOf(1))
	firstOrderID := result.OrderID

	// Over-ask is rejected and nothing moves.
	_, err = uc.AddItem(ctx, 1, 1, 7)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, 6, repo.stockOf(1))
	order, err := uc.GetOrderByID(ctx, 1, firstOrderID)
	require.NoError(t, err)
	assert.Equal(t, 20.00, order.Total)
	assert.Len(t, order.Items, 1)

	// Draining the remaining stock succeeds and reuses the same order.
	result, err = uc.AddItem(ctx, 1, 1, 6)
	require.NoError(t, err)
	assert.Equal(t, firstOrderID, result.OrderID)
	assert.Equal(t, 50.00, result.Total)
	assert.Equal(t, 0, repo.stockOf(1))

	// Checkout.
	message, err := uc.CloseOrder(ctx, 1, firstOrderID)
	require.NoError(t, err)
	assert.Contains(t, message, "closed")
	order, err = uc.GetOrderByID(ctx, 1, firstOrderID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusClosed, order.Status)

	// Second close is an idempotent success.
	message, err = uc.CloseOrder(ctx, 1, firstOrderID)
	require.NoError(t, err)
	assert.Contains(t, message, "already closed")

	// Carts do not reopen: the next add starts a new OPEN order.
	repo.products[1].Stock = 3
	result, err = uc.AddItem(ctx, 1, 1, 2)
	require.NoError(t, err)
	assert.NotEqual(t, firstOrderID, result.OrderID)
	assert.Equal(t, 10.00, result.Total)
	assert.Equal(t, 1, repo.openOrderCount(1))

	old, err := uc.GetOrderByID(ctx, 1, firstOrderID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusClosed, old.Status, "closed order must stay closed")
}

func TestOrderUseCase_AddItem_TotalMatchesPriceSnapshots(t *testing.T) {
	repo := newFakeOrderRepo(&domain.Product{ID: 7, Name: "Lamp", Price: 12.50, Stock: 100})
	uc := NewOrderUseCase(repo, testLogger())
	ctx := context.Background()

	_, err := uc.AddItem(ctx, 3, 7, 2)
	require.NoError(t, err)

	// A later catalog price change must not disturb the total of rows
	// already attached.
	repo.products[7].Price = 99.99
	result, err := uc.AddItem(ctx, 3, 7, 1)
	require.NoError(t, err)

	order, err := uc.GetOrderByID(ctx, 3, result.OrderID)
	require.NoError(t, err)

	var expected float64
	for _, item := range order.Items {
		expected += float64(item.Quantity) * item.UnitPrice
	}
	assert.Equal(t, expected, order.Total)
	assert.InDelta(t, 124.99, order.Total, 0.001)
}

func TestOrderUseCase_CloseOrder_OwnershipChecked(t *testing.T) {
	repo := newFakeOrderRepo(&domain.Product{ID: 1, Name: "P1", Price: 1.00, Stock: 5})
	uc := NewOrderUseCase(repo, testLogger())
	ctx := context.Background()

	result, err := uc.AddItem(ctx, 1, 1, 1)
	require.NoError(t, err)

	// Customer 2 cannot close or even see customer 1's order.
	_, err = uc.CloseOrder(ctx, 2, result.OrderID)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = uc.GetOrderByID(ctx, 2, result.OrderID)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	order, err := uc.GetOrderByID(ctx, 1, result.OrderID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusOpen, order.Status)
}

func TestOrderUseCase_AddItem_IsolatedPerCustomer(t *testing.T) {
	repo := newFakeOrderRepo(&domain.Product{ID: 1, Name: "P1", Price: 2.00, Stock: 10})
	uc := NewOrderUseCase(repo, testLogger())
	ctx := context.Background()

	resultA, err := uc.AddItem(ctx, 1, 1, 2)
	require.NoError(t, err)
	resultB, err := uc.AddItem(ctx, 2, 1, 3)
	require.NoError(t, err)

	assert.NotEqual(t, resultA.OrderID, resultB.OrderID)
	// Stock is shared across carts.
	assert.Equal(t, 5, repo.stockOf(1))

	ordersA, err := uc.ListOrders(ctx, 1, 10, 0)
	require.NoError(t, err)
	require.Len(t, ordersA, 1)
	assert.Equal(t, int64(1), ordersA[0].CustomerID)
}

// Two concurrent adds of 6 against stock 10 must yield exactly one success
// and one insufficient-stock rejection, with final stock 4.
func TestOrderUseCase_AddItem_ConcurrentStockContention(t *testing.T) {
	repo := newFakeOrderRepo(&domain.Product{ID: 1, Name: "P1", Price: 5.00, Stock: 10})
	uc := NewOrderUseCase(repo, testLogger())

	errs := make(chan error, 2)
	var wg sync.WaitGroup
	for _, custID := range []int64{1, 2} {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			_, err := uc.AddItem(context.Background(), id, 1, 6)
			errs <- err
		}(custID)
	}
	wg.Wait()
	close(errs)

	var successes, rejections int
	for err := range errs {
		if err == nil {
			successes++
		} else {
			require.ErrorIs(t, err, domain.ErrInsufficientStock)
			rejections++
		}
	}
	assert.Equal(t, 1, successes)
	assert.Equal(t, 1, rejections)
	assert.Equal(t, 4, repo.stockOf(1))
}

// Many concurrent adds from the same customer must never leave more than one
// OPEN order behind.
func TestOrderUseCase_AddItem_SingleOpenOrderUnderConcurrency(t *testing.T) {
	repo := newFakeOrderRepo(&domain.Product{ID: 1, Name: "P1", Price: 1.00, Stock: 1000})
	uc := NewOrderUseCase(repo, testLogger())

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := uc.AddItem(context.Background(), 42, 1, 1)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, repo.openOrderCount(42))
	orders, err := uc.ListOrders(context.Background(), 42, 10, 0)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Len(t, orders[0].Items, 16)
	assert.Equal(t, 16.00, orders[0].Total)
}

func TestOrderUseCase_AddItem_RetriesConflicts(t *testing.T) {
	repo := newFakeOrderRepo(&domain.Product{ID: 1, Name: "P1", Price: 5.00, Stock: 10})
	repo.conflictsLeft = 2
	uc := NewOrderUseCase(repo, testLogger())

	result, err := uc.AddItem(context.Background(), 1, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, 3, repo.addItemCalls, "two conflicts then a success")
	assert.Equal(t, 5.00, result.Total)
}

func TestOrderUseCase_AddItem_SurfacesExhaustedConflict(t *testing.T) {
	repo := newFakeOrderRepo(&domain.Product{ID: 1, Name: "P1", Price: 5.00, Stock: 10})
	repo.conflictsLeft = maxConflictRetries
	uc := NewOrderUseCase(repo, testLogger())

	_, err := uc.AddItem(context.Background(), 1, 1, 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.Equal(t, maxConflictRetries, repo.addItemCalls)
	assert.Equal(t, 10, repo.stockOf(1), "no decrement may survive a failed call")
}

func TestOrderUseCase_CloseOrder_UnknownOrder(t *testing.T) {
	repo := newFakeOrderRepo()
	uc := NewOrderUseCase(repo, testLogger())

	_, err := uc.CloseOrder(context.Background(), 1, 12345)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = uc.CloseOrder(context.Background(), 1, 0)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestOrderUseCase_AddItem_StockNeverOversold(t *testing.T) {
	const stock = 25
	repo := newFakeOrderRepo(&domain.Product{ID: 1, Name: "P1", Price: 1.00, Stock: stock})
	uc := NewOrderUseCase(repo, testLogger())

	var wg sync.WaitGroup
	accepted := make(chan int, 64)
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func(custID int64) {
			defer wg.Done()
			if _, err := uc.AddItem(context.Background(), custID, 1, 1); err == nil {
				accepted <- 1
			} else {
				assert.ErrorIs(t, err, domain.ErrInsufficientStock)
			}
		}(int64(i%8 + 1))
	}
	wg.Wait()
	close(accepted)

	total := 0
	for n := range accepted {
		total += n
	}
	assert.Equal(t, stock, total, "the sum of accepted quantities equals the initial stock")
	assert.Equal(t, 0, repo.stockOf(1))
}
