package delivery

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"buysmart/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubOrderUseCase struct {
	addItemResult *domain.AddItemResult
	addItemErr    error
	closeMessage  string
	closeErr      error
	orders        []domain.Order
	listErr       error

	gotCustomerID int64
	gotProductID  int64
	gotQuantity   int
	gotOrderID    int64
}

func (s *stubOrderUseCase) AddItem(ctx context.Context, customerID, productID int64, quantity int) (*domain.AddItemResult, error) {
	s.gotCustomerID, s.gotProductID, s.gotQuantity = customerID, productID, quantity
	return s.addItemResult, s.addItemErr
}

func (s *stubOrderUseCase) CloseOrder(ctx context.Context, customerID, orderID int64) (string, error) {
	s.gotCustomerID, s.gotOrderID = customerID, orderID
	return s.closeMessage, s.closeErr
}

func (s *stubOrderUseCase) GetOrderByID(ctx context.Context, customerID, orderID int64) (*domain.Order, error) {
	s.gotCustomerID, s.gotOrderID = customerID, orderID
	if len(s.orders) == 0 {
		return nil, fmt.Errorf("order %d: %w", orderID, domain.ErrNotFound)
	}
	return &s.orders[0], nil
}

func (s *stubOrderUseCase) ListOrders(ctx context.Context, customerID int64, limit, offset int) ([]domain.Order, error) {
	s.gotCustomerID = customerID
	return s.orders, s.listErr
}

func newOrderRouter(uc domain.OrderUseCase, authedCustomer int64) *gin.Engine {
	gin.SetMode(gin.TestMode)
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	router := gin.New()
	group := router.Group("")
	if authedCustomer > 0 {
		group.Use(func(c *gin.Context) {
			c.Set(customerIDKey, authedCustomer)
			c.Next()
		})
	}
	NewOrderHandler(uc, logger).RegisterRoutes(group)
	return router
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestOrderHandler_AddItem(t *testing.T) {
	stub := &stubOrderUseCase{
		addItemResult: &domain.AddItemResult{OrderID: 7, ProductID: 1, Quantity: 4, UnitPrice: 5.00, Total: 20.00},
	}
	router := newOrderRouter(stub, 42)

	rec := doJSON(t, router, http.MethodPost, "/orders/items", gin.H{"product_id": 1, "quantity": 4})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, int64(42), stub.gotCustomerID)
	assert.Equal(t, int64(1), stub.gotProductID)
	assert.Equal(t, 4, stub.gotQuantity)

	var resp Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Success", resp.Status)
	assert.Contains(t, resp.Message, "order 7")
}

func TestOrderHandler_AddItem_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"product missing", fmt.Errorf("product 1: %w", domain.ErrNotFound), http.StatusNotFound},
		{"insufficient stock", fmt.Errorf("product 1: %w (requested 7, available 6)", domain.ErrInsufficientStock), http.StatusBadRequest},
		{"invalid quantity", fmt.Errorf("%w (got -1)", domain.ErrInvalidQuantity), http.StatusBadRequest},
		{"conflict exhausted", fmt.Errorf("open order: %w", domain.ErrConflict), http.StatusConflict},
		{"storage down", fmt.Errorf("%w: connection refused", domain.ErrStorageUnavailable), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newOrderRouter(&stubOrderUseCase{addItemErr: tt.err}, 42)
			rec := doJSON(t, router, http.MethodPost, "/orders/items", gin.H{"product_id": 1, "quantity": 7})
			assert.Equal(t, tt.wantStatus, rec.Code)

			var resp Response
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, "Fail", resp.Status)
		})
	}
}

func TestOrderHandler_AddItem_BadRequestBody(t *testing.T) {
	stub := &stubOrderUseCase{}
	router := newOrderRouter(stub, 42)

	rec := doJSON(t, router, http.MethodPost, "/orders/items", gin.H{"quantity": 4})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Zero(t, stub.gotQuantity, "use case must not be reached")
}

func TestOrderHandler_AddItem_Unauthenticated(t *testing.T) {
	router := newOrderRouter(&stubOrderUseCase{}, 0)

	rec := doJSON(t, router, http.MethodPost, "/orders/items", gin.H{"product_id": 1, "quantity": 4})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestOrderHandler_CloseOrder(t *testing.T) {
	stub := &stubOrderUseCase{closeMessage: "order 7 closed"}
	router := newOrderRouter(stub, 42)

	rec := doJSON(t, router, http.MethodPut, "/orders/7/close", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(7), stub.gotOrderID)
	assert.Equal(t, int64(42), stub.gotCustomerID)
}

func TestOrderHandler_CloseOrder_InvalidID(t *testing.T) {
	router := newOrderRouter(&stubOrderUseCase{}, 42)

	rec := doJSON(t, router, http.MethodPut, "/orders/abc/close", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestOrderHandler_CloseOrder_NotOwner(t *testing.T) {
	stub := &stubOrderUseCase{closeErr: fmt.Errorf("order 7: %w", domain.ErrNotFound)}
	router := newOrderRouter(stub, 42)

	rec := doJSON(t, router, http.MethodPut, "/orders/7/close", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestOrderHandler_ListOrders(t *testing.T) {
	stub := &stubOrderUseCase{orders: []domain.Order{
		{ID: 2, CustomerID: 42, Status: domain.StatusOpen, Total: 10.00},
		{ID: 1, CustomerID: 42, Status: domain.StatusClosed, Total: 50.00},
	}}
	router := newOrderRouter(stub, 42)

	rec := doJSON(t, router, http.MethodGet, "/orders?limit=10&offset=0", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Status string
		Data   []domain.Order
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 2)
	assert.Equal(t, domain.StatusOpen, resp.Data[0].Status)
}

func TestOrderHandler_ListOrders_Empty(t *testing.T) {
	router := newOrderRouter(&stubOrderUseCase{}, 42)

	rec := doJSON(t, router, http.MethodGet, "/orders", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Data []domain.Order
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotNil(t, resp.Data)
	assert.Empty(t, resp.Data)
}
