package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"buysmart/internal/domain"

	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

type postgresWishlistRepository struct {
	db  *sql.DB
	log *logrus.Logger
}

func NewPostgresWishlistRepository(db *sql.DB, logger *logrus.Logger) domain.WishlistRepository {
	return &postgresWishlistRepository{
		db:  db,
		log: logger,
	}
}

func (r *postgresWishlistRepository) AddItem(ctx context.Context, item *domain.WishlistItem) (*domain.WishlistItem, error) {
	err := r.db.QueryRowContext(ctx, `
        INSERT INTO wishlist_items (customer_id, product_id)
        VALUES ($1, $2)
        RETURNING id, added_at`,
		item.CustomerID, item.ProductID,
	).Scan(&item.ID, &item.AddedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			switch pqErr.Code {
			case "23505":
				r.log.Warnf("Product %d already in wishlist of customer %d", item.ProductID, item.CustomerID)
				return nil, fmt.Errorf("wishlist entry for product %d %w", item.ProductID, domain.ErrAlreadyExists)
			case "23503":
				r.log.Warnf("Wishlist add references missing product %d", item.ProductID)
				return nil, fmt.Errorf("product %d: %w", item.ProductID, domain.ErrNotFound)
			}
		}
		r.log.Errorf("Failed to add wishlist item (customer %d, product %d): %v", item.CustomerID, item.ProductID, err)
		return nil, fmt.Errorf("could not add wishlist item: %w", err)
	}
	r.log.Infof("Wishlist item %d added for customer %d (product %d)", item.ID, item.CustomerID, item.ProductID)
	return item, nil
}

func (r *postgresWishlistRepository) ListByCustomerID(ctx context.Context, customerID int64) ([]domain.WishlistItem, error) {
	rows, err := r.db.QueryContext(ctx, `
        SELECT id, customer_id, product_id, added_at
        FROM wishlist_items
        WHERE customer_id = $1
        ORDER BY added_at DESC, id DESC`,
		customerID,
	)
	if err != nil {
		r.log.Errorf("Failed to list wishlist for customer %d: %v", customerID, err)
		return nil, fmt.Errorf("could not retrieve wishlist: %w", err)
	}
	defer rows.Close()

	var items []domain.WishlistItem
	for rows.Next() {
		var item domain.WishlistItem
		if err := rows.Scan(&item.ID, &item.CustomerID, &item.ProductID, &item.AddedAt); err != nil {
			r.log.Errorf("Failed to scan wishlist row for customer %d: %v", customerID, err)
			return nil, fmt.Errorf("error scanning wishlist item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		r.log.Errorf("Error iterating wishlist for customer %d: %v", customerID, err)
		return nil, fmt.Errorf("error iterating wishlist items: %w", err)
	}

	if items == nil {
		items = []domain.WishlistItem{}
	}
	return items, nil
}

func (r *postgresWishlistRepository) DeleteItem(ctx context.Context, customerID, itemID int64) error {
	res, err := r.db.ExecContext(ctx, `
        DELETE FROM wishlist_items
        WHERE id = $1 AND customer_id = $2`,
		itemID, customerID,
	)
	if err != nil {
		r.log.Errorf("Failed to delete wishlist item %d for customer %d: %v", itemID, customerID, err)
		return fmt.Errorf("could not delete wishlist item: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("could not read delete result: %w", err)
	}
	if affected == 0 {
		r.log.Warnf("Wishlist item %d not found for customer %d", itemID, customerID)
		return fmt.Errorf("wishlist item %d: %w", itemID, domain.ErrNotFound)
	}
	r.log.Infof("Wishlist item %d deleted for customer %d", itemID, customerID)
	return nil
}
