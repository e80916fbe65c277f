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

type postgresPaymentRepository struct {
	db  *sql.DB
	log *logrus.Logger
}

func NewPostgresPaymentRepository(db *sql.DB, logger *logrus.Logger) domain.PaymentRepository {
	return &postgresPaymentRepository{
		db:  db,
		log: logger,
	}
}

func (r *postgresPaymentRepository) CreatePayment(ctx context.Context, payment *domain.Payment) (*domain.Payment, error) {
	err := r.db.QueryRowContext(ctx, `
        INSERT INTO payments (order_id, method, amount, paid_at)
        VALUES ($1, $2, $3, NOW())
        RETURNING id, paid_at`,
		payment.OrderID, payment.Method, payment.Amount,
	).Scan(&payment.ID, &payment.PaidAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23503" {
			r.log.Warnf("Payment references missing order %d", payment.OrderID)
			return nil, fmt.Errorf("order %d: %w", payment.OrderID, domain.ErrNotFound)
		}
		r.log.Errorf("Failed to create payment for order %d: %v", payment.OrderID, err)
		return nil, fmt.Errorf("could not create payment: %w", err)
	}
	r.log.Infof("Payment %d recorded for order %d (%.2f via %s)", payment.ID, payment.OrderID, payment.Amount, payment.Method)
	return payment, nil
}

func (r *postgresPaymentRepository) ListByOrderID(ctx context.Context, orderID int64) ([]domain.Payment, error) {
	rows, err := r.db.QueryContext(ctx, `
        SELECT id, order_id, method, amount, paid_at
        FROM payments
        WHERE order_id = $1
        ORDER BY paid_at, id`,
		orderID,
	)
	if err != nil {
		r.log.Errorf("Failed to list payments for order %d: %v", orderID, err)
		return nil, fmt.Errorf("could not retrieve payments: %w", err)
	}
	defer rows.Close()

	var payments []domain.Payment
	for rows.Next() {
		var p domain.Payment
		if err := rows.Scan(&p.ID, &p.OrderID, &p.Method, &p.Amount, &p.PaidAt); err != nil {
			r.log.Errorf("Failed to scan payment row for order %d: %v", orderID, err)
			return nil, fmt.Errorf("error scanning payment: %w", err)
		}
		payments = append(payments, p)
	}
	if err := rows.Err(); err != nil {
		r.log.Errorf("Error iterating payments for order %d: %v", orderID, err)
		return nil, fmt.Errorf("error iterating payments: %w", err)
	}

	if payments == nil {
		payments = []domain.Payment{}
	}
	return payments, nil
}
