package http

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/mrsourodip/helloKirana/internal/domain"
	"github.com/mrsourodip/helloKirana/internal/event"
	"github.com/mrsourodip/helloKirana/internal/gateway"
	"github.com/mrsourodip/helloKirana/internal/repository"
	"github.com/mrsourodip/helloKirana/internal/service"
	apperrors "github.com/mrsourodip/helloKirana/pkg/errors"
	"github.com/mrsourodip/helloKirana/pkg/httputil"
	pkgkafka "github.com/mrsourodip/helloKirana/pkg/kafka"
	"github.com/mrsourodip/helloKirana/pkg/middleware"
)

// Fixed ids so path params and request bodies pass UUID validation.
const (
	testUserID    = "user-456"
	testOrderID   = "550e8400-e29b-41d4-a716-446655440001"
	testAddressID = "550e8400-e29b-41d4-a716-446655440030"
	testProductID = "550e8400-e29b-41d4-a716-446655440020"
)

// --- Mock repositories ---

type mockOrderRepository struct {
	mock.Mock
}

func (m *mockOrderRepository) Create(ctx context.Context, order *domain.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *mockOrderRepository) GetByID(ctx context.Context, userID, orderID string) (*domain.Order, error) {
	args := m.Called(ctx, userID, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *mockOrderRepository) ListByUserID(ctx context.Context, userID string) ([]domain.Order, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]domain.Order), args.Error(1)
}

func (m *mockOrderRepository) GetLatest(ctx context.Context, userID string) (*domain.Order, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *mockOrderRepository) GetByGatewaySession(ctx context.Context, sessionID string) (*domain.Order, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *mockOrderRepository) SetGatewaySession(ctx context.Context, orderID, sessionID string) (bool, error) {
	args := m.Called(ctx, orderID, sessionID)
	return args.Bool(0), args.Error(1)
}

func (m *mockOrderRepository) MarkPaymentCompleted(ctx context.Context, sessionID, paymentRef string) (bool, error) {
	args := m.Called(ctx, sessionID, paymentRef)
	return args.Bool(0), args.Error(1)
}

func (m *mockOrderRepository) MarkPaymentFailed(ctx context.Context, sessionID string) (bool, error) {
	args := m.Called(ctx, sessionID)
	return args.Bool(0), args.Error(1)
}

func (m *mockOrderRepository) Cancel(ctx context.Context, userID, orderID string) (bool, error) {
	args := m.Called(ctx, userID, orderID)
	return args.Bool(0), args.Error(1)
}

type mockProductRepository struct {
	mock.Mock
}

func (m *mockProductRepository) List(ctx context.Context, filter repository.ProductFilter) ([]domain.Product, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.Product), args.Error(1)
}

func (m *mockProductRepository) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *mockProductRepository) GetByIDs(ctx context.Context, ids []string) ([]domain.Product, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]domain.Product), args.Error(1)
}

func (m *mockProductRepository) ListRelated(ctx context.Context, category, excludeID string, limit int) ([]domain.Product, error) {
	args := m.Called(ctx, category, excludeID, limit)
	return args.Get(0).([]domain.Product), args.Error(1)
}

type mockAddressRepository struct {
	mock.Mock
}

func (m *mockAddressRepository) Create(ctx context.Context, a *domain.Address) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

func (m *mockAddressRepository) GetByID(ctx context.Context, userID, addressID string) (*domain.Address, error) {
	args := m.Called(ctx, userID, addressID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Address), args.Error(1)
}

func (m *mockAddressRepository) ListByUserID(ctx context.Context, userID string) ([]domain.Address, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]domain.Address), args.Error(1)
}

func (m *mockAddressRepository) Delete(ctx context.Context, userID, addressID string) error {
	args := m.Called(ctx, userID, addressID)
	return args.Error(0)
}

func (m *mockAddressRepository) SetDefault(ctx context.Context, userID, addressID string) error {
	args := m.Called(ctx, userID, addressID)
	return args.Error(0)
}

type mockFavoriteRepository struct {
	mock.Mock
}

func (m *mockFavoriteRepository) Create(ctx context.Context, f *domain.Favorite) error {
	args := m.Called(ctx, f)
	return args.Error(0)
}

func (m *mockFavoriteRepository) ListByUserID(ctx context.Context, userID string) ([]domain.FavoriteProduct, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]domain.FavoriteProduct), args.Error(1)
}

func (m *mockFavoriteRepository) Delete(ctx context.Context, userID, productID string) error {
	args := m.Called(ctx, userID, productID)
	return args.Error(0)
}

type mockGatewayClient struct {
	mock.Mock
}

func (m *mockGatewayClient) CreateSession(ctx context.Context, input *gateway.SessionInput) (*gateway.Session, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gateway.Session), args.Error(1)
}

// --- Test helpers ---

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func testEventProducer() *event.Producer {
	logger := testLogger()
	kafkaCfg := pkgkafka.DefaultProducerConfig([]string{"localhost:19092"})
	return event.NewProducer(pkgkafka.NewProducer(kafkaCfg, logger), logger)
}

type orderHandlerFixture struct {
	orders    *mockOrderRepository
	products  *mockProductRepository
	addresses *mockAddressRepository
	gateway   *mockGatewayClient
	router    *chi.Mux
}

func newOrderHandlerFixture() *orderHandlerFixture {
	f := &orderHandlerFixture{
		orders:    new(mockOrderRepository),
		products:  new(mockProductRepository),
		addresses: new(mockAddressRepository),
		gateway:   new(mockGatewayClient),
	}

	svc := service.NewOrderService(f.orders, f.products, f.addresses, f.gateway, testEventProducer(), testLogger())
	handler := NewOrderHandler(svc, testLogger())

	f.router = chi.NewRouter()
	f.router.Route("/orders", func(r chi.Router) {
		r.Use(ContentTypeJSON)
		r.Get("/", handler.ListOrders)
		r.Post("/", handler.CreateOrder)
		r.Get("/latest", handler.GetLatestOrder)
		r.Get("/{id}", handler.GetOrder)
		r.Post("/{id}/cancel", handler.CancelOrder)
		r.Post("/create-payment", handler.CreatePaymentSession)
	})
	return f
}

// authedRequest builds a request carrying the owner identity, as the auth
// middleware would after validating a token.
func authedRequest(method, target string, body []byte) *http.Request {
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, target, bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	return req.WithContext(middleware.WithUserID(req.Context(), testUserID))
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) httputil.Response {
	t.Helper()
	var resp httputil.Response
	err := json.NewDecoder(rec.Body).Decode(&resp)
	require.NoError(t, err)
	return resp
}

func sampleOrder() *domain.Order {
	now := time.Now().UTC()
	return &domain.Order{
		ID:     testOrderID,
		UserID: testUserID,
		Items: []domain.OrderItem{
			{
				ID:        "550e8400-e29b-41d4-a716-446655440010",
				OrderID:   testOrderID,
				ProductID: testProductID,
				Name:      "Basmati Rice",
				UnitKind:  domain.UnitKindWeight,
				UnitPrice: 9500,
				Quantity:  2,
			},
		},
		TotalAmount: 19000,
		Currency:    domain.Currency,
		ShippingAddress: &domain.ShippingAddress{
			Kind:       domain.AddressKindHome,
			Street:     "14 MG Road",
			City:       "Bengaluru",
			Region:     "Karnataka",
			PostalCode: "560001",
		},
		PaymentMethod: domain.PaymentMethodGateway,
		PaymentState:  domain.PaymentStatePending,
		OrderState:    domain.OrderStatePending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// --- CreateOrder ---

func TestCreateOrderHandler_Success(t *testing.T) {
	f := newOrderHandlerFixture()

	f.addresses.On("GetByID", mock.Anything, testUserID, testAddressID).Return(&domain.Address{
		ID: testAddressID, UserID: testUserID, Kind: domain.AddressKindHome,
		Street: "14 MG Road", City: "Bengaluru", Region: "Karnataka", PostalCode: "560001",
	}, nil)
	f.products.On("GetByIDs", mock.Anything, []string{testProductID}).Return([]domain.Product{
		{ID: testProductID, Name: "Basmati Rice", Category: domain.CategoryRice, UnitKind: domain.UnitKindWeight, UnitPrice: 9500},
	}, nil)
	f.orders.On("Create", mock.Anything, mock.AnythingOfType("*domain.Order")).Return(nil)

	body, _ := json.Marshal(map[string]any{
		"items":          []map[string]any{{"product_id": testProductID, "quantity": 2}},
		"address_id":     testAddressID,
		"payment_method": "cash_on_delivery",
	})

	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, authedRequest(http.MethodPost, "/orders", body))

	require.Equal(t, http.StatusCreated, rec.Code)
	resp := decodeResponse(t, rec)
	data := resp.Data.(map[string]any)
	assert.Equal(t, float64(19000), data["total_amount"])
	assert.Equal(t, domain.OrderStateConfirmed, data["order_state"])
}

func TestCreateOrderHandler_MissingItems(t *testing.T) {
	f := newOrderHandlerFixture()

	body, _ := json.Marshal(map[string]any{
		"items":          []map[string]any{},
		"address_id":     testAddressID,
		"payment_method": "gateway",
	})

	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, authedRequest(http.MethodPost, "/orders", body))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeResponse(t, rec)
	assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
	f.orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateOrderHandler_UnknownPaymentMethod(t *testing.T) {
	f := newOrderHandlerFixture()

	body, _ := json.Marshal(map[string]any{
		"items":          []map[string]any{{"product_id": testProductID, "quantity": 1}},
		"address_id":     testAddressID,
		"payment_method": "card",
	})

	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, authedRequest(http.MethodPost, "/orders", body))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// --- Reads ---

func TestGetOrderHandler_NotFound(t *testing.T) {
	f := newOrderHandlerFixture()

	f.orders.On("GetByID", mock.Anything, testUserID, testOrderID).
		Return(nil, apperrors.NotFound("order", testOrderID))

	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, authedRequest(http.MethodGet, "/orders/"+testOrderID, nil))

	require.Equal(t, http.StatusNotFound, rec.Code)
	resp := decodeResponse(t, rec)
	assert.Equal(t, "NOT_FOUND", resp.Error.Code)
}

func TestGetOrderHandler_InvalidID(t *testing.T) {
	f := newOrderHandlerFixture()

	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, authedRequest(http.MethodGet, "/orders/not-a-uuid", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetLatestOrderHandler(t *testing.T) {
	f := newOrderHandlerFixture()

	f.orders.On("GetLatest", mock.Anything, testUserID).Return(sampleOrder(), nil)

	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, authedRequest(http.MethodGet, "/orders/latest", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)
	data := resp.Data.(map[string]any)
	assert.Equal(t, testOrderID, data["id"])
}

func TestListOrdersHandler(t *testing.T) {
	f := newOrderHandlerFixture()

	f.orders.On("ListByUserID", mock.Anything, testUserID).Return([]domain.Order{*sampleOrder()}, nil)

	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, authedRequest(http.MethodGet, "/orders", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)
	assert.Len(t, resp.Data.([]any), 1)
}

// --- Payment session ---

func TestCreatePaymentSessionHandler_Success(t *testing.T) {
	f := newOrderHandlerFixture()

	f.orders.On("GetByID", mock.Anything, testUserID, testOrderID).Return(sampleOrder(), nil)
	f.gateway.On("CreateSession", mock.Anything, mock.Anything).
		Return(&gateway.Session{ID: "sess_abc", Amount: 19000, Currency: "INR"}, nil)
	f.orders.On("SetGatewaySession", mock.Anything, testOrderID, "sess_abc").Return(true, nil)

	body, _ := json.Marshal(map[string]string{"order_id": testOrderID})

	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, authedRequest(http.MethodPost, "/orders/create-payment", body))

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)
	data := resp.Data.(map[string]any)
	assert.Equal(t, "sess_abc", data["session_id"])
}

func TestCreatePaymentSessionHandler_GatewayDown(t *testing.T) {
	f := newOrderHandlerFixture()

	f.orders.On("GetByID", mock.Anything, testUserID, testOrderID).Return(sampleOrder(), nil)
	f.gateway.On("CreateSession", mock.Anything, mock.Anything).
		Return(nil, apperrors.GatewayUnavailable(context.DeadlineExceeded))

	body, _ := json.Marshal(map[string]string{"order_id": testOrderID})

	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, authedRequest(http.MethodPost, "/orders/create-payment", body))

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	resp := decodeResponse(t, rec)
	assert.Equal(t, "GATEWAY_UNAVAILABLE", resp.Error.Code)
}

// --- Cancel ---

func TestCancelOrderHandler_Conflict(t *testing.T) {
	f := newOrderHandlerFixture()

	shipped := sampleOrder()
	shipped.OrderState = domain.OrderStateShipped

	f.orders.On("Cancel", mock.Anything, testUserID, testOrderID).Return(false, nil)
	f.orders.On("GetByID", mock.Anything, testUserID, testOrderID).Return(shipped, nil)

	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, authedRequest(http.MethodPost, "/orders/"+testOrderID+"/cancel", nil))

	require.Equal(t, http.StatusConflict, rec.Code)
	resp := decodeResponse(t, rec)
	assert.Equal(t, "INVALID_TRANSITION", resp.Error.Code)
}

func TestCancelOrderHandler_Success(t *testing.T) {
	f := newOrderHandlerFixture()

	cancelled := sampleOrder()
	cancelled.OrderState = domain.OrderStateCancelled

	f.orders.On("Cancel", mock.Anything, testUserID, testOrderID).Return(true, nil)
	f.orders.On("GetByID", mock.Anything, testUserID, testOrderID).Return(cancelled, nil)

	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, authedRequest(http.MethodPost, "/orders/"+testOrderID+"/cancel", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)
	data := resp.Data.(map[string]any)
	assert.Equal(t, domain.OrderStateCancelled, data["order_state"])
}
