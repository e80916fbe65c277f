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

type postgresProductRepository struct {
	db  *sql.DB
	log *logrus.Logger
}

func NewPostgresProductRepository(db *sql.DB, logger *logrus.Logger) domain.ProductRepository {
	return &postgresProductRepository{
		db:  db,
		log: logger,
	}
}

func (r *postgresProductRepository) CreateProduct(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	err := r.db.QueryRowContext(ctx, `
        INSERT INTO products (name, price, stock)
        VALUES ($1, $2, $3)
        RETURNING id`,
		product.Name, product.Price, product.Stock,
	).Scan(&product.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23514" {
			r.log.Warnf("Check constraint violation for product '%s': %s", product.Name, pqErr.Message)
			return nil, fmt.Errorf("product data constraint violation: %s", pqErr.Message)
		}
		r.log.Errorf("Failed to create product '%s': %v", product.Name, err)
		return nil, fmt.Errorf("could not create product: %w", err)
	}
	r.log.Infof("Product created successfully with ID: %d, Name: %s", product.ID, product.Name)
	return product, nil
}

func (r *postgresProductRepository) GetProductByID(ctx context.Context, id int64) (*domain.Product, error) {
	product := &domain.Product{}
	err := r.db.QueryRowContext(ctx, `
        SELECT id, name, price, stock
        FROM products
        WHERE id = $1`,
		id,
	).Scan(&product.ID, &product.Name, &product.Price, &product.Stock)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.log.Warnf("Product with ID %d not found", id)
			return nil, fmt.Errorf("product %d: %w", id, domain.ErrNotFound)
		}
		r.log.Errorf("Failed to get product by ID %d: %v", id, err)
		return nil, fmt.Errorf("could not get product by id: %w", err)
	}
	return product, nil
}

func (r *postgresProductRepository) ListProducts(ctx context.Context, limit, offset int) ([]domain.Product, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := r.db.QueryContext(ctx, `
        SELECT id, name, price, stock
        FROM products
        ORDER BY id
        LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		r.log.Errorf("Failed to list products: %v", err)
		return nil, fmt.Errorf("could not retrieve products: %w", err)
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Price, &p.Stock); err != nil {
			r.log.Errorf("Failed to scan product row: %v", err)
			return nil, fmt.Errorf("error scanning product data: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		r.log.Errorf("Error iterating products: %v", err)
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	if products == nil {
		products = []domain.Product{}
	}
	return products, nil
}

func (r *postgresProductRepository) UpdateProduct(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	updated := &domain.Product{}
	err := r.db.QueryRowContext(ctx, `
        UPDATE products
        SET name = $2, price = $3, stock = $4
        WHERE id = $1
        RETURNING id, name, price, stock`,
		product.ID, product.Name, product.Price, product.Stock,
	).Scan(&updated.ID, &updated.Name, &updated.Price, &updated.Stock)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.log.Warnf("Product with ID %d not found for update", product.ID)
			return nil, fmt.Errorf("product %d: %w", product.ID, domain.ErrNotFound)
		}
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23514" {
			r.log.Warnf("Check constraint violation updating product %d: %s", product.ID, pqErr.Message)
			return nil, fmt.Errorf("product data constraint violation: %s", pqErr.Message)
		}
		r.log.Errorf("Failed to update product %d: %v", product.ID, err)
		return nil, fmt.Errorf("could not update product: %w", err)
	}
	r.log.Infof("Product %d updated successfully", updated.ID)
	return updated, nil
}

func (r *postgresProductRepository) DeleteProduct(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23503" {
			r.log.Warnf("Product %d is referenced by order items and cannot be deleted", id)
			return fmt.Errorf("product %d is referenced by existing orders", id)
		}
		r.log.Errorf("Failed to delete product %d: %v", id, err)
		return fmt.Errorf("could not delete product: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("could not read delete result: %w", err)
	}
	if affected == 0 {
		r.log.Warnf("Product with ID %d not found for delete", id)
		return fmt.Errorf("product %d: %w", id, domain.ErrNotFound)
	}
	r.log.Infof("Product %d deleted successfully", id)
	return nil
}
