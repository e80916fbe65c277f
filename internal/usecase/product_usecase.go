package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"buysmart/internal/domain"

	"github.com/sirupsen/logrus"
)

var _ domain.ProductUseCase = (*productUseCase)(nil)

type productUseCase struct {
	productRepo domain.ProductRepository
	log         *logrus.Logger
}

func NewProductUseCase(repo domain.ProductRepository, logger *logrus.Logger) domain.ProductUseCase {
	return &productUseCase{
		productRepo: repo,
		log:         logger,
	}
}

func validateProduct(product *domain.Product) error {
	if strings.TrimSpace(product.Name) == "" {
		return errors.New("product name cannot be empty")
	}
	if product.Price <= 0 {
		return errors.New("product price must be positive")
	}
	if product.Stock < 0 {
		return errors.New("product stock cannot be negative")
	}
	return nil
}

func (uc *productUseCase) CreateProduct(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	if err := validateProduct(product); err != nil {
		uc.log.Warnf("Use Case: Product validation failed: %v", err)
		return nil, err
	}
	product.Name = strings.TrimSpace(product.Name)

	created, err := uc.productRepo.CreateProduct(ctx, product)
	if err != nil {
		uc.log.Errorf("Use Case: Repository failed to create product '%s': %v", product.Name, err)
		return nil, err
	}
	uc.log.Infof("Use Case: Product created with ID %d", created.ID)
	return created, nil
}

func (uc *productUseCase) GetProductByID(ctx context.Context, id int64) (*domain.Product, error) {
	if id <= 0 {
		return nil, fmt.Errorf("product %d: %w", id, domain.ErrNotFound)
	}
	return uc.productRepo.GetProductByID(ctx, id)
}

func (uc *productUseCase) ListProducts(ctx context.Context, limit, offset int) ([]domain.Product, error) {
	return uc.productRepo.ListProducts(ctx, limit, offset)
}

func (uc *productUseCase) UpdateProduct(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	if product.ID <= 0 {
		return nil, fmt.Errorf("product %d: %w", product.ID, domain.ErrNotFound)
	}
	if err := validateProduct(product); err != nil {
		uc.log.Warnf("Use Case: Product validation failed for update of %d: %v", product.ID, err)
		return nil, err
	}
	product.Name = strings.TrimSpace(product.Name)

	updated, err := uc.productRepo.UpdateProduct(ctx, product)
	if err != nil {
		uc.log.Warnf("Use Case: Repository failed to update product %d: %v", product.ID, err)
		return nil, err
	}
	return updated, nil
}

func (uc *productUseCase) DeleteProduct(ctx context.Context, id int64) error {
	if id <= 0 {
		return fmt.Errorf("product %d: %w", id, domain.ErrNotFound)
	}
	if err := uc.productRepo.DeleteProduct(ctx, id); err != nil {
		uc.log.Warnf("Use Case: Repository failed to delete product %d: %v", id, err)
		return err
	}
	uc.log.Infof("Use Case: Product %d deleted", id)
	return nil
}
