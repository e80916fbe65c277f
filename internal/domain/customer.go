package domain

import (
	"context"
	"time"
)

type Customer struct {
	ID           int64     `json:"id"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// CustomerProfile is the customer view returned to callers, without the
// password hash.
type CustomerProfile struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Username  string `json:"username"`
}

// Session is an opaque bearer token bound to a customer. The auth middleware
// resolves it on every authenticated request; handlers never trust a
// client-supplied identity.
type Session struct {
	Token      string    `json:"token"`
	CustomerID int64     `json:"customer_id"`
	ExpiresAt  time.Time `json:"expires_at"`
}

type AuthResult struct {
	Token      string    `json:"token"`
	CustomerID int64     `json:"customer_id"`
	ExpiresAt  time.Time `json:"expires_at"`
}

type CustomerRepository interface {
	CreateCustomer(ctx context.Context, customer *Customer) (*Customer, error)
	GetCustomerByUsername(ctx context.Context, username string) (*Customer, error)
	GetCustomerByID(ctx context.Context, id int64) (*Customer, error)
}

type SessionRepository interface {
	CreateSession(ctx context.Context, session *Session) error
	// GetSession returns ErrNotFound for unknown or expired tokens.
	GetSession(ctx context.Context, token string) (*Session, error)
	DeleteSession(ctx context.Context, token string) error
}

type CustomerUseCase interface {
	Register(ctx context.Context, customer *Customer, password string) (*CustomerProfile, error)
	Login(ctx context.Context, username, password string) (*AuthResult, error)
	Authenticate(ctx context.Context, token string) (int64, error)
	GetProfile(ctx context.Context, id int64) (*CustomerProfile, error)
}
