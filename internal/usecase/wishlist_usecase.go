package usecase

import (
	"context"
	"errors"
	"fmt"

	"buysmart/internal/domain"

	"github.com/sirupsen/logrus"
)

var _ domain.WishlistUseCase = (*wishlistUseCase)(nil)

type wishlistUseCase struct {
	wishlistRepo domain.WishlistRepository
	productRepo  domain.ProductRepository
	log          *logrus.Logger
}

func NewWishlistUseCase(wishlistRepo domain.WishlistRepository, productRepo domain.ProductRepository, logger *logrus.Logger) domain.WishlistUseCase {
	return &wishlistUseCase{
		wishlistRepo: wishlistRepo,
		productRepo:  productRepo,
		log:          logger,
	}
}

func (uc *wishlistUseCase) AddItem(ctx context.Context, customerID, productID int64) (*domain.WishlistItem, error) {
	if customerID <= 0 {
		return nil, errors.New("invalid customer ID")
	}
	if productID <= 0 {
		return nil, fmt.Errorf("product %d: %w", productID, domain.ErrNotFound)
	}

	if _, err := uc.productRepo.GetProductByID(ctx, productID); err != nil {
		uc.log.Warnf("Use Case: Wishlist add rejected - product %d lookup failed: %v", productID, err)
		return nil, err
	}

	item, err := uc.wishlistRepo.AddItem(ctx, &domain.WishlistItem{
		CustomerID: customerID,
		ProductID:  productID,
	})
	if err != nil {
		uc.log.Warnf("Use Case: Failed to add product %d to wishlist of customer %d: %v", productID, customerID, err)
		return nil, err
	}
	uc.log.Infof("Use Case: Product %d added to wishlist of customer %d", productID, customerID)
	return item, nil
}

func (uc *wishlistUseCase) ListItems(ctx context.Context, customerID int64) ([]domain.WishlistItem, error) {
	if customerID <= 0 {
		return nil, errors.New("invalid customer ID")
	}
	return uc.wishlistRepo.ListByCustomerID(ctx, customerID)
}

func (uc *wishlistUseCase) DeleteItem(ctx context.Context, customerID, itemID int64) error {
	if customerID <= 0 {
		return errors.New("invalid customer ID")
	}
	if itemID <= 0 {
		return fmt.Errorf("wishlist item %d: %w", itemID, domain.ErrNotFound)
	}
	if err := uc.wishlistRepo.DeleteItem(ctx, customerID, itemID); err != nil {
		uc.log.Warnf("Use Case: Failed to delete wishlist item %d for customer %d: %v", itemID, customerID, err)
		return err
	}
	return nil
}
