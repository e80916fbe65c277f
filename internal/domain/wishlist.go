package domain

import (
	"context"
	"time"
)

type WishlistItem struct {
	ID         int64     `json:"id"`
	CustomerID int64     `json:"customer_id"`
	ProductID  int64     `json:"product_id"`
	AddedAt    time.Time `json:"added_at"`
}

type WishlistRepository interface {
	AddItem(ctx context.Context, item *WishlistItem) (*WishlistItem, error)
	ListByCustomerID(ctx context.Context, customerID int64) ([]WishlistItem, error)
	// DeleteItem is ownership-scoped: a customer cannot remove another
	// customer's entry. Returns ErrNotFound either way.
	DeleteItem(ctx context.Context, customerID, itemID int64) error
}

type WishlistUseCase interface {
	AddItem(ctx context.Context, customerID, productID int64) (*WishlistItem, error)
	ListItems(ctx context.Context, customerID int64) ([]WishlistItem, error)
	DeleteItem(ctx context.Context, customerID, itemID int64) error
}
