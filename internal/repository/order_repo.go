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

type postgresOrderRepository struct {
	db  *sql.DB
	log *logrus.Logger
}

func NewPostgresOrderRepository(db *sql.DB, logger *logrus.Logger) domain.OrderRepository {
	return &postgresOrderRepository{
		db:  db,
		log: logger,
	}
}

// isConflict reports database errors the caller may retry from fresh state:
// a unique violation (two transactions racing to create the same customer's
// OPEN order) or a serialization/deadlock failure.
func isConflict(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "23505", "40001", "40P01":
			return true
		}
	}
	return false
}

// AddItem runs the whole add-to-cart mutation in a single transaction so a
// failure at any step leaves stock, order and line items untouched.
func (r *postgresOrderRepository) AddItem(ctx context.Context, customerID, productID int64, quantity int) (*domain.AddItemResult, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		r.log.Errorf("Failed to begin transaction: %v", err)
		return nil, fmt.Errorf("%w: could not start transaction: %v", domain.ErrStorageUnavailable, err)
	}

	defer func() {
		if p := recover(); p != nil {
			r.log.Error("Recovered from panic, rolling back transaction")
			_ = tx.Rollback()
			panic(p)
		} else if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				r.log.Errorf("Failed to rollback transaction: %v", rbErr)
			}
		}
	}()

	// Locate the customer's open order, locking it for the rest of the
	// transaction so concurrent adds to the same cart serialize.
	var orderID int64
	err = tx.QueryRowContext(ctx, `
        SELECT id
        FROM orders
        WHERE customer_id = $1 AND status = $2
        FOR UPDATE`,
		customerID, domain.StatusOpen,
	).Scan(&orderID)

	if errors.Is(err, sql.ErrNoRows) {
		err = tx.QueryRowContext(ctx, `
            INSERT INTO orders (customer_id, status, total)
            VALUES ($1, $2, 0)
            RETURNING id`,
			customerID, domain.StatusOpen,
		).Scan(&orderID)
		if err != nil {
			if isConflict(err) {
				// Lost the open-order creation race against a concurrent
				// add from the same customer. The partial unique index on
				// orders(customer_id) WHERE status = 'OPEN' guarantees the
				// winner's order is the only one; the caller retries and
				// attaches to it.
				r.log.Warnf("Lost open-order creation race for customer %d: %v", customerID, err)
				return nil, fmt.Errorf("open order for customer %d: %w", customerID, domain.ErrConflict)
			}
			r.log.Errorf("Failed to create open order for customer %d: %v", customerID, err)
			return nil, fmt.Errorf("could not create order: %w", err)
		}
		r.log.Infof("Open order %d created for customer %d", orderID, customerID)
	} else if err != nil {
		if isConflict(err) {
			return nil, fmt.Errorf("open order for customer %d: %w", customerID, domain.ErrConflict)
		}
		r.log.Errorf("Failed to look up open order for customer %d: %v", customerID, err)
		return nil, fmt.Errorf("could not look up open order: %w", err)
	}

	// Conditional decrement: the stock >= quantity guard makes concurrent
	// decrements against the same product serialize on the row lock, so the
	// sum of accepted quantities can never drive stock negative.
	var unitPrice float64
	err = tx.QueryRowContext(ctx, `
        UPDATE products
        SET stock = stock - $2
        WHERE id = $1 AND stock >= $2
        RETURNING price`,
		productID, quantity,
	).Scan(&unitPrice)

	if errors.Is(err, sql.ErrNoRows) {
		// Distinguish a missing product from one that is short on stock.
		var available int
		lookupErr := tx.QueryRowContext(ctx,
			`SELECT stock FROM products WHERE id = $1`, productID,
		).Scan(&available)
		if errors.Is(lookupErr, sql.ErrNoRows) {
			r.log.Warnf("Product %d not found for add-item (customer %d)", productID, customerID)
			err = fmt.Errorf("product %d: %w", productID, domain.ErrNotFound)
			return nil, err
		}
		if lookupErr != nil {
			r.log.Errorf("Failed to read stock for product %d: %v", productID, lookupErr)
			err = fmt.Errorf("could not read product stock: %w", lookupErr)
			return nil, err
		}
		r.log.Warnf("Insufficient stock for product %d (requested %d, available %d)", productID, quantity, available)
		err = fmt.Errorf("product %d: %w (requested %d, available %d)", productID, domain.ErrInsufficientStock, quantity, available)
		return nil, err
	}
	if err != nil {
		if isConflict(err) {
			return nil, fmt.Errorf("stock decrement for product %d: %w", productID, domain.ErrConflict)
		}
		r.log.Errorf("Failed to decrement stock for product %d: %v", productID, err)
		return nil, fmt.Errorf("could not decrement stock: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
        INSERT INTO order_items (order_id, product_id, quantity, unit_price)
        VALUES ($1, $2, $3, $4)`,
		orderID, productID, quantity, unitPrice,
	)
	if err != nil {
		r.log.Errorf("Failed to insert line item (order %d, product %d): %v", orderID, productID, err)
		return nil, fmt.Errorf("could not insert line item: %w", err)
	}

	// Total accumulates from the same snapshot the line item stores, so it
	// always equals the sum of quantity * unit_price over attached items.
	var total float64
	err = tx.QueryRowContext(ctx, `
        UPDATE orders
        SET total = total + $2, updated_at = NOW()
        WHERE id = $1
        RETURNING total`,
		orderID, float64(quantity)*unitPrice,
	).Scan(&total)
	if err != nil {
		r.log.Errorf("Failed to update total for order %d: %v", orderID, err)
		return nil, fmt.Errorf("could not update order total: %w", err)
	}

	if err = tx.Commit(); err != nil {
		r.log.Errorf("Failed to commit add-item transaction for order %d: %v", orderID, err)
		if isConflict(err) {
			return nil, fmt.Errorf("add item to order %d: %w", orderID, domain.ErrConflict)
		}
		return nil, fmt.Errorf("%w: commit failed: %v", domain.ErrStorageUnavailable, err)
	}

	r.log.Infof("Added product %d x%d to order %d (customer %d), total now %.2f", productID, quantity, orderID, customerID, total)
	return &domain.AddItemResult{
		OrderID:   orderID,
		ProductID: productID,
		Quantity:  quantity,
		UnitPrice: unitPrice,
		Total:     total,
	}, nil
}

func (r *postgresOrderRepository) CloseOrder(ctx context.Context, customerID, orderID int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
        UPDATE orders
        SET status = $3, updated_at = NOW()
        WHERE id = $1 AND customer_id = $2 AND status = $4`,
		orderID, customerID, domain.StatusClosed, domain.StatusOpen,
	)
	if err != nil {
		r.log.Errorf("Failed to close order %d for customer %d: %v", orderID, customerID, err)
		return false, fmt.Errorf("could not close order: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("could not read close-order result: %w", err)
	}
	if affected == 1 {
		r.log.Infof("Order %d closed for customer %d", orderID, customerID)
		return false, nil
	}

	// Nothing transitioned: either the order is already CLOSED (idempotent
	// success) or it does not exist for this customer.
	var status domain.OrderStatus
	err = r.db.QueryRowContext(ctx, `
        SELECT status FROM orders WHERE id = $1 AND customer_id = $2`,
		orderID, customerID,
	).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		r.log.Warnf("Order %d not found for customer %d", orderID, customerID)
		return false, fmt.Errorf("order %d: %w", orderID, domain.ErrNotFound)
	}
	if err != nil {
		r.log.Errorf("Failed to read status of order %d: %v", orderID, err)
		return false, fmt.Errorf("could not read order status: %w", err)
	}

	r.log.Infof("Order %d already closed for customer %d", orderID, customerID)
	return true, nil
}

func (r *postgresOrderRepository) GetOrderByID(ctx context.Context, customerID, orderID int64) (*domain.Order, error) {
	order := &domain.Order{}
	err := r.db.QueryRowContext(ctx, `
        SELECT id, customer_id, status, total, created_at, updated_at
        FROM orders
        WHERE id = $1 AND customer_id = $2`,
		orderID, customerID,
	).Scan(
		&order.ID,
		&order.CustomerID,
		&order.Status,
		&order.Total,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.log.Warnf("Order %d not found for customer %d", orderID, customerID)
			return nil, fmt.Errorf("order %d: %w", orderID, domain.ErrNotFound)
		}
		r.log.Errorf("Failed to get order %d: %v", orderID, err)
		return nil, fmt.Errorf("could not retrieve order: %w", err)
	}

	items, err := r.getOrderItems(ctx, orderID)
	if err != nil {
		return nil, err
	}
	order.Items = items

	return order, nil
}

func (r *postgresOrderRepository) getOrderItems(ctx context.Context, orderID int64) ([]domain.LineItem, error) {
	rows, err := r.db.QueryContext(ctx, `
        SELECT id, order_id, product_id, quantity, unit_price
        FROM order_items
        WHERE order_id = $1
        ORDER BY id`,
		orderID,
	)
	if err != nil {
		r.log.Errorf("Failed to query line items for order %d: %v", orderID, err)
		return nil, fmt.Errorf("could not retrieve line items: %w", err)
	}
	defer rows.Close()

	var items []domain.LineItem
	for rows.Next() {
		var item domain.LineItem
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.Quantity, &item.UnitPrice); err != nil {
			r.log.Errorf("Failed to scan line item row for order %d: %v", orderID, err)
			return nil, fmt.Errorf("error scanning line item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		r.log.Errorf("Error iterating line items for order %d: %v", orderID, err)
		return nil, fmt.Errorf("error iterating line items: %w", err)
	}

	return items, nil
}

func (r *postgresOrderRepository) ListOrdersByCustomerID(ctx context.Context, customerID int64, limit, offset int) ([]domain.Order, error) {
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := r.db.QueryContext(ctx, `
        SELECT id, customer_id, status, total, created_at, updated_at
        FROM orders
        WHERE customer_id = $1
        ORDER BY created_at DESC, id DESC
        LIMIT $2 OFFSET $3`,
		customerID, limit, offset,
	)
	if err != nil {
		r.log.Errorf("Failed to list orders for customer %d: %v", customerID, err)
		return nil, fmt.Errorf("could not retrieve orders: %w", err)
	}
	defer rows.Close()

	var orders []domain.Order
	var orderIDs []int64
	for rows.Next() {
		var order domain.Order
		if err := rows.Scan(
			&order.ID,
			&order.CustomerID,
			&order.Status,
			&order.Total,
			&order.CreatedAt,
			&order.UpdatedAt,
		); err != nil {
			r.log.Errorf("Failed to scan order row for customer %d: %v", customerID, err)
			return nil, fmt.Errorf("error scanning order data: %w", err)
		}
		orders = append(orders, order)
		orderIDs = append(orderIDs, order.ID)
	}
	if err := rows.Err(); err != nil {
		r.log.Errorf("Error iterating orders for customer %d: %v", customerID, err)
		return nil, fmt.Errorf("error iterating orders: %w", err)
	}

	if len(orders) == 0 {
		return []domain.Order{}, nil
	}

	itemRows, err := r.db.QueryContext(ctx, `
        SELECT id, order_id, product_id, quantity, unit_price
        FROM order_items
        WHERE order_id = ANY($1::bigint[])
        ORDER BY order_id, id`,
		pq.Array(orderIDs),
	)
	if err != nil {
		r.log.Errorf("Failed to query items for orders %v: %v", orderIDs, err)
		return nil, fmt.Errorf("could not retrieve line items for list: %w", err)
	}
	defer itemRows.Close()

	itemsMap := make(map[int64][]domain.LineItem)
	for itemRows.Next() {
		var item domain.LineItem
		if err := itemRows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.Quantity, &item.UnitPrice); err != nil {
			r.log.Errorf("Failed to scan line item row during multi-order fetch: %v", err)
			return nil, fmt.Errorf("error scanning line item data for list: %w", err)
		}
		itemsMap[item.OrderID] = append(itemsMap[item.OrderID], item)
	}
	if err := itemRows.Err(); err != nil {
		r.log.Errorf("Error iterating line items for list: %v", err)
		return nil, fmt.Errorf("error iterating line items for list: %w", err)
	}

	for i := range orders {
		if items, ok := itemsMap[orders[i].ID]; ok {
			orders[i].Items = items
		} else {
			orders[i].Items = []domain.LineItem{}
		}
	}

	r.log.Debugf("Retrieved %d orders for customer %d (limit %d, offset %d)", len(orders), customerID, limit, offset)
	return orders, nil
}
