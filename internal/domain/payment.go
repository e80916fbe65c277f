package domain

import (
	"context"
	"time"
)

type Payment struct {
	ID      int64     `json:"id"`
	OrderID int64     `json:"order_id"`
	Method  string    `json:"method"`
	Amount  float64   `json:"amount"`
	PaidAt  time.Time `json:"paid_at"`
}

type PaymentRepository interface {
	CreatePayment(ctx context.Context, payment *Payment) (*Payment, error)
	ListByOrderID(ctx context.Context, orderID int64) ([]Payment, error)
}

type PaymentUseCase interface {
	// RecordPayment accepts a payment against a CLOSED order owned by the
	// customer; the amount must match the order total.
	RecordPayment(ctx context.Context, customerID, orderID int64, method string, amount float64) (*Payment, error)
	ListPayments(ctx context.Context, customerID, orderID int64) ([]Payment, error)
}
