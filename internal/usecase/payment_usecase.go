package usecase

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"buysmart/internal/domain"

	"github.com/sirupsen/logrus"
)

var _ domain.PaymentUseCase = (*paymentUseCase)(nil)

type paymentUseCase struct {
	paymentRepo domain.PaymentRepository
	orderRepo   domain.OrderRepository
	log         *logrus.Logger
}

func NewPaymentUseCase(paymentRepo domain.PaymentRepository, orderRepo domain.OrderRepository, logger *logrus.Logger) domain.PaymentUseCase {
	return &paymentUseCase{
		paymentRepo: paymentRepo,
		orderRepo:   orderRepo,
		log:         logger,
	}
}

func (uc *paymentUseCase) RecordPayment(ctx context.Context, customerID, orderID int64, method string, amount float64) (*domain.Payment, error) {
	method = strings.TrimSpace(method)
	if method == "" {
		return nil, errors.New("payment method cannot be empty")
	}
	if amount <= 0 {
		return nil, errors.New("payment amount must be positive")
	}

	order, err := uc.orderRepo.GetOrderByID(ctx, customerID, orderID)
	if err != nil {
		uc.log.Warnf("Use Case: Payment rejected - order %d lookup failed for customer %d: %v", orderID, customerID, err)
		return nil, err
	}
	if order.Open() {
		uc.log.Warnf("Use Case: Payment rejected - order %d is still open", orderID)
		return nil, fmt.Errorf("order %d is still open; close it before paying", orderID)
	}
	if math.Abs(amount-order.Total) > 0.009 {
		uc.log.Warnf("Use Case: Payment rejected - amount %.2f does not match order %d total %.2f", amount, orderID, order.Total)
		return nil, fmt.Errorf("payment amount %.2f does not match order total %.2f", amount, order.Total)
	}

	payment, err := uc.paymentRepo.CreatePayment(ctx, &domain.Payment{
		OrderID: orderID,
		Method:  method,
		Amount:  amount,
	})
	if err != nil {
		uc.log.Errorf("Use Case: Repository failed to record payment for order %d: %v", orderID, err)
		return nil, err
	}
	uc.log.Infof("Use Case: Payment %d recorded for order %d", payment.ID, orderID)
	return payment, nil
}

func (uc *paymentUseCase) ListPayments(ctx context.Context, customerID, orderID int64) ([]domain.Payment, error) {
	// Ownership check first so one customer cannot enumerate another's
	// payments by order id.
	if _, err := uc.orderRepo.GetOrderByID(ctx, customerID, orderID); err != nil {
		return nil, err
	}
	return uc.paymentRepo.ListByOrderID(ctx, orderID)
}
