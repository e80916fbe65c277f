package domain

import (
	"context"
	"time"
)

type OrderStatus string

const (
	// StatusOpen marks an order that still acts as the customer's cart.
	// At most one OPEN order exists per customer at any time.
	StatusOpen OrderStatus = "OPEN"
	// StatusClosed is terminal: no further line items, no reopening.
	StatusClosed OrderStatus = "CLOSED"
)

func IsValidStatus(status OrderStatus) bool {
	switch status {
	case StatusOpen, StatusClosed:
		return true
	default:
		return false
	}
}

type Order struct {
	ID         int64       `json:"id"`
	CustomerID int64       `json:"customer_id"`
	Status     OrderStatus `json:"status"`
	Total      float64     `json:"total"`
	Items      []LineItem  `json:"items"`
	CreatedAt  time.Time   `json:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at"`
}

// Open reports whether the order still accepts line items.
func (o *Order) Open() bool {
	return o.Status == StatusOpen
}

// LineItem is one product-quantity entry attached to an order. UnitPrice is
// the product price snapshotted at add time, so the order total stays
// reproducible from stored rows even if the catalog price changes later.
type LineItem struct {
	ID        int64   `json:"id"`
	OrderID   int64   `json:"order_id"`
	ProductID int64   `json:"product_id"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
}

// AddItemResult reports the outcome of one accepted add-item call.
type AddItemResult struct {
	OrderID   int64   `json:"order_id"`
	ProductID int64   `json:"product_id"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
	Total     float64 `json:"total"`
}

type OrderRepository interface {
	// AddItem applies the whole add-to-cart mutation in one transaction:
	// find or create the customer's OPEN order, decrement product stock,
	// append a line item with the price snapshot, bump the running total.
	// On failure nothing is visible to other callers. Returns ErrNotFound,
	// ErrInsufficientStock or ErrConflict.
	AddItem(ctx context.Context, customerID, productID int64, quantity int) (*AddItemResult, error)

	// CloseOrder transitions the customer's order OPEN -> CLOSED.
	// alreadyClosed reports an idempotent second close. Returns ErrNotFound
	// when no order with that id is owned by the customer.
	CloseOrder(ctx context.Context, customerID, orderID int64) (alreadyClosed bool, err error)

	GetOrderByID(ctx context.Context, customerID, orderID int64) (*Order, error)
	ListOrdersByCustomerID(ctx context.Context, customerID int64, limit, offset int) ([]Order, error)
}

type OrderUseCase interface {
	AddItem(ctx context.Context, customerID, productID int64, quantity int) (*AddItemResult, error)
	CloseOrder(ctx context.Context, customerID, orderID int64) (string, error)
	GetOrderByID(ctx context.Context, customerID, orderID int64) (*Order, error)
	ListOrders(ctx context.Context, customerID int64, limit, offset int) ([]Order, error)
}
