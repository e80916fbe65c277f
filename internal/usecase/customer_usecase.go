package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"buysmart/internal/domain"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

var _ domain.CustomerUseCase = (*customerUseCase)(nil)

type customerUseCase struct {
	customerRepo domain.CustomerRepository
	sessionRepo  domain.SessionRepository
	sessionTTL   time.Duration
	log          *logrus.Logger
}

func NewCustomerUseCase(customerRepo domain.CustomerRepository, sessionRepo domain.SessionRepository, sessionTTL time.Duration, logger *logrus.Logger) domain.CustomerUseCase {
	return &customerUseCase{
		customerRepo: customerRepo,
		sessionRepo:  sessionRepo,
		sessionTTL:   sessionTTL,
		log:          logger,
	}
}

func (uc *customerUseCase) Register(ctx context.Context, customer *domain.Customer, password string) (*domain.CustomerProfile, error) {
	customer.Username = strings.TrimSpace(customer.Username)
	customer.Email = strings.ToLower(strings.TrimSpace(customer.Email))

	if customer.Username == "" {
		return nil, errors.New("username cannot be empty")
	}
	if !isValidEmail(customer.Email) {
		uc.log.Warnf("Use Case: Registration failed - invalid email format: %s", customer.Email)
		return nil, errors.New("invalid email format")
	}
	if len(password) < 6 {
		return nil, errors.New("password must be at least 6 characters long")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		uc.log.Errorf("Use Case: Failed to hash password for %s: %v", customer.Username, err)
		return nil, fmt.Errorf("internal error processing password: %w", err)
	}
	customer.PasswordHash = string(hashed)

	created, err := uc.customerRepo.CreateCustomer(ctx, customer)
	if err != nil {
		uc.log.Warnf("Use Case: Repository failed to create customer %s: %v", customer.Username, err)
		return nil, err
	}

	uc.log.Infof("Use Case: Customer registered successfully. ID: %d, Username: %s", created.ID, created.Username)
	return profileOf(created), nil
}

func (uc *customerUseCase) Login(ctx context.Context, username, password string) (*domain.AuthResult, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, errors.New("invalid username or password")
	}

	customer, err := uc.customerRepo.GetCustomerByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			uc.log.Warnf("Use Case: Login failed - customer not found: %s", username)
			return nil, errors.New("invalid username or password")
		}
		uc.log.Errorf("Use Case: Error retrieving customer %s during login: %v", username, err)
		return nil, fmt.Errorf("failed to retrieve customer: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(customer.PasswordHash), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			uc.log.Warnf("Use Case: Login failed - incorrect password for %s (ID: %d)", username, customer.ID)
			return nil, errors.New("invalid username or password")
		}
		uc.log.Errorf("Use Case: Error comparing password hash for %s: %v", username, err)
		return nil, fmt.Errorf("internal error during authentication: %w", err)
	}

	session := &domain.Session{
		Token:      uuid.NewString(),
		CustomerID: customer.ID,
		ExpiresAt:  time.Now().Add(uc.sessionTTL),
	}
	if err := uc.sessionRepo.CreateSession(ctx, session); err != nil {
		uc.log.Errorf("Use Case: Failed to persist session for customer %d: %v", customer.ID, err)
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	uc.log.Infof("Use Case: Customer %s (ID: %d) logged in", username, customer.ID)
	return &domain.AuthResult{
		Token:      session.Token,
		CustomerID: customer.ID,
		ExpiresAt:  session.ExpiresAt,
	}, nil
}

// Authenticate resolves a bearer token to the owning customer id. This is the
// identity capability every authenticated operation consumes.
func (uc *customerUseCase) Authenticate(ctx context.Context, token string) (int64, error) {
	if token == "" {
		return 0, fmt.Errorf("session: %w", domain.ErrNotFound)
	}
	session, err := uc.sessionRepo.GetSession(ctx, token)
	if err != nil {
		return 0, err
	}
	return session.CustomerID, nil
}

func (uc *customerUseCase) GetProfile(ctx context.Context, id int64) (*domain.CustomerProfile, error) {
	if id <= 0 {
		return nil, fmt.Errorf("customer %d: %w", id, domain.ErrNotFound)
	}
	customer, err := uc.customerRepo.GetCustomerByID(ctx, id)
	if err != nil {
		uc.log.Warnf("Use Case: Repository failed to get customer profile for ID %d: %v", id, err)
		return nil, err
	}
	return profileOf(customer), nil
}

func profileOf(customer *domain.Customer) *domain.CustomerProfile {
	return &domain.CustomerProfile{
		ID:        customer.ID,
		FirstName: customer.FirstName,
		LastName:  customer.LastName,
		Email:     customer.Email,
		Username:  customer.Username,
	}
}

func isValidEmail(email string) bool {
	parts := strings.Split(email, "@")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return false
	}
	domainParts := strings.Split(parts[1], ".")
	return len(domainParts) >= 2 && domainParts[0] != "" && domainParts[len(domainParts)-1] != ""
}
