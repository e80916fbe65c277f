package usecase

import (
	"context"
	"errors"
	"fmt"

	"buysmart/internal/domain"

	"github.com/sirupsen/logrus"
)

// maxConflictRetries bounds how often an add-item call is re-evaluated from
// fresh state after losing a concurrent-update race before the conflict is
// surfaced to the caller.
const maxConflictRetries = 3

var _ domain.OrderUseCase = (*orderUseCase)(nil)

type orderUseCase struct {
	orderRepo domain.OrderRepository
	log       *logrus.Logger
}

func NewOrderUseCase(repo domain.OrderRepository, logger *logrus.Logger) domain.OrderUseCase {
	return &orderUseCase{
		orderRepo: repo,
		log:       logger,
	}
}

// AddItem puts quantity units of a product into the customer's cart, lazily
// opening one if the customer has none. The repository applies the mutation
// atomically; this layer validates inputs and retries conflicts.
func (uc *orderUseCase) AddItem(ctx context.Context, customerID, productID int64, quantity int) (*domain.AddItemResult, error) {
	if customerID <= 0 {
		return nil, errors.New("invalid customer ID")
	}
	if productID <= 0 {
		return nil, fmt.Errorf("product %d: %w", productID, domain.ErrNotFound)
	}
	if quantity <= 0 {
		uc.log.Warnf("Use Case: AddItem rejected for customer %d - non-positive quantity %d", customerID, quantity)
		return nil, fmt.Errorf("%w (got %d)", domain.ErrInvalidQuantity, quantity)
	}

	var lastErr error
	for attempt := 1; attempt <= maxConflictRetries; attempt++ {
		result, err := uc.orderRepo.AddItem(ctx, customerID, productID, quantity)
		if err == nil {
			uc.log.Infof("Use Case: Customer %d added product %d x%d to order %d (total %.2f)",
				customerID, productID, quantity, result.OrderID, result.Total)
			return result, nil
		}
		if !errors.Is(err, domain.ErrConflict) {
			uc.log.Warnf("Use Case: AddItem failed for customer %d, product %d: %v", customerID, productID, err)
			return nil, err
		}
		lastErr = err
		uc.log.Warnf("Use Case: AddItem conflict for customer %d (attempt %d/%d), retrying from fresh state",
			customerID, attempt, maxConflictRetries)
	}

	uc.log.Errorf("Use Case: AddItem conflict retries exhausted for customer %d, product %d", customerID, productID)
	return nil, lastErr
}

// CloseOrder checks out the cart. Closing an already-closed order succeeds
// without touching anything; stock was committed at add time, so the
// transition itself mutates nothing but the status.
func (uc *orderUseCase) CloseOrder(ctx context.Context, customerID, orderID int64) (string, error) {
	if customerID <= 0 {
		return "", errors.New("invalid customer ID")
	}
	if orderID <= 0 {
		return "", fmt.Errorf("order %d: %w", orderID, domain.ErrNotFound)
	}

	alreadyClosed, err := uc.orderRepo.CloseOrder(ctx, customerID, orderID)
	if err != nil {
		uc.log.Warnf("Use Case: CloseOrder failed for order %d (customer %d): %v", orderID, customerID, err)
		return "", err
	}

	if alreadyClosed {
		uc.log.Infof("Use Case: Order %d was already closed (customer %d)", orderID, customerID)
		return fmt.Sprintf("order %d is already closed", orderID), nil
	}
	uc.log.Infof("Use Case: Order %d closed by customer %d", orderID, customerID)
	return fmt.Sprintf("order %d closed", orderID), nil
}

func (uc *orderUseCase) GetOrderByID(ctx context.Context, customerID, orderID int64) (*domain.Order, error) {
	if customerID <= 0 {
		return nil, errors.New("invalid customer ID")
	}
	if orderID <= 0 {
		return nil, fmt.Errorf("order %d: %w", orderID, domain.ErrNotFound)
	}
	return uc.orderRepo.GetOrderByID(ctx, customerID, orderID)
}

func (uc *orderUseCase) ListOrders(ctx context.Context, customerID int64, limit, offset int) ([]domain.Order, error) {
	if customerID <= 0 {
		return nil, errors.New("invalid customer ID")
	}
	orders, err := uc.orderRepo.ListOrdersByCustomerID(ctx, customerID, limit, offset)
	if err != nil {
		uc.log.Errorf("Use Case: Failed to list orders for customer %d: %v", customerID, err)
		return nil, fmt.Errorf("could not retrieve orders for customer %d: %w", customerID, err)
	}
	return orders, nil
}
