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

type postgresCustomerRepository struct {
	db  *sql.DB
	log *logrus.Logger
}

func NewPostgresCustomerRepository(db *sql.DB, logger *logrus.Logger) domain.CustomerRepository {
	return &postgresCustomerRepository{
		db:  db,
		log: logger,
	}
}

func (r *postgresCustomerRepository) CreateCustomer(ctx context.Context, customer *domain.Customer) (*domain.Customer, error) {
	r.log.Debugf("Repository: Attempting to create customer with username: %s", customer.Username)

	err := r.db.QueryRowContext(ctx, `
        INSERT INTO customers (first_name, last_name, email, username, password_hash)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, created_at`,
		customer.FirstName, customer.LastName, customer.Email, customer.Username, customer.PasswordHash,
	).Scan(&customer.ID, &customer.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			r.log.Warnf("Repository: Duplicate username or email: %s / %s", customer.Username, customer.Email)
			return nil, fmt.Errorf("customer with that username or email %w", domain.ErrAlreadyExists)
		}
		r.log.Errorf("Repository: Failed to create customer '%s': %v", customer.Username, err)
		return nil, fmt.Errorf("could not create customer: %w", err)
	}

	r.log.Infof("Repository: Customer created successfully with ID: %d, Username: %s", customer.ID, customer.Username)
	return customer, nil
}

func (r *postgresCustomerRepository) GetCustomerByUsername(ctx context.Context, username string) (*domain.Customer, error) {
	customer := &domain.Customer{}
	err := r.db.QueryRowContext(ctx, `
        SELECT id, first_name, last_name, email, username, password_hash, created_at
        FROM customers
        WHERE username = $1`,
		username,
	).Scan(
		&customer.ID,
		&customer.FirstName,
		&customer.LastName,
		&customer.Email,
		&customer.Username,
		&customer.PasswordHash,
		&customer.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.log.Warnf("Repository: Customer with username %s not found", username)
			return nil, fmt.Errorf("customer %s: %w", username, domain.ErrNotFound)
		}
		r.log.Errorf("Repository: Failed to get customer by username %s: %v", username, err)
		return nil, fmt.Errorf("could not get customer by username: %w", err)
	}
	return customer, nil
}

func (r *postgresCustomerRepository) GetCustomerByID(ctx context.Context, id int64) (*domain.Customer, error) {
	customer := &domain.Customer{}
	err := r.db.QueryRowContext(ctx, `
        SELECT id, first_name, last_name, email, username, password_hash, created_at
        FROM customers
        WHERE id = $1`,
		id,
	).Scan(
		&customer.ID,
		&customer.FirstName,
		&customer.LastName,
		&customer.Email,
		&customer.Username,
		&customer.PasswordHash,
		&customer.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.log.Warnf("Repository: Customer with ID %d not found", id)
			return nil, fmt.Errorf("customer %d: %w", id, domain.ErrNotFound)
		}
		r.log.Errorf("Repository: Failed to get customer by ID %d: %v", id, err)
		return nil, fmt.Errorf("could not get customer by id: %w", err)
	}
	return customer, nil
}
