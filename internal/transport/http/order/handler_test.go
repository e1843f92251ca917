package order

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/routedash/routedash/internal/config"
	"github.com/routedash/routedash/internal/entity"
	catalogrepo "github.com/routedash/routedash/internal/repository/catalog"
	repo "github.com/routedash/routedash/internal/repository/order"
	service "github.com/routedash/routedash/internal/service/order"
	"github.com/routedash/routedash/internal/transport/http/middleware"
	"github.com/routedash/routedash/pkg/errorbank"
)

const (
	customerID   = "7f6f3f1a-3f40-4b21-9c1d-9f2f6f8a1b01"
	restaurantID = "b7d2c9e4-5a1f-4f7d-8c3b-2e9d4a6b7c02"
	orderID      = "c1a2b3d4-e5f6-4a7b-8c9d-0e1f2a3b4c03"
	menuItemID   = "d4c3b2a1-f6e5-4b7a-9d8c-1f0e2b3a4d04"
)

type stubOrderStore struct {
	create         func(ctx context.Context, order *entity.Order) error
	getForCustomer func(ctx context.Context, orderID, customerID string) (*entity.Order, error)
	listByCustomer func(ctx context.Context, customerID string) ([]*entity.Order, error)
	updateRoute    func(ctx context.Context, orderID string, patch entity.RoutePatch) (bool, error)
}

func (s *stubOrderStore) Create(ctx context.Context, order *entity.Order) error {
	return s.create(ctx, order)
}

func (s *stubOrderStore) GetForCustomer(ctx context.Context, id, customer string) (*entity.Order, error) {
	return s.getForCustomer(ctx, id, customer)
}

func (s *stubOrderStore) GetForRestaurant(context.Context, string, string) (*entity.Order, error) {
	return nil, repo.ErrNotFound
}

func (s *stubOrderStore) ListByCustomer(ctx context.Context, customer string) ([]*entity.Order, error) {
	return s.listByCustomer(ctx, customer)
}

func (s *stubOrderStore) ListByRestaurant(context.Context, string) ([]*entity.Order, error) {
	return nil, nil
}

func (s *stubOrderStore) TransitionStatus(context.Context, string, entity.OrderStatus, entity.OrderStatus) (bool, error) {
	return false, nil
}

func (s *stubOrderStore) UpdateRoute(ctx context.Context, id string, patch entity.RoutePatch) (bool, error) {
	return s.updateRoute(ctx, id, patch)
}

type stubCatalogStore struct {
	restaurantByID func(ctx context.Context, restaurantID string) (*entity.Restaurant, error)
	availableItems func(ctx context.Context, restaurantID string, ids []string) (map[string]*entity.MenuItem, error)
}

func (s *stubCatalogStore) RestaurantByID(ctx context.Context, id string) (*entity.Restaurant, error) {
	return s.restaurantByID(ctx, id)
}

func (s *stubCatalogStore) RestaurantForOwner(context.Context, string, string) (*entity.Restaurant, error) {
	return nil, catalogrepo.ErrNotFound
}

func (s *stubCatalogStore) AvailableItems(ctx context.Context, id string, ids []string) (map[string]*entity.MenuItem, error) {
	return s.availableItems(ctx, id, ids)
}

func (s *stubCatalogStore) MenuSections(context.Context, string) ([]*entity.MenuSection, error) {
	return nil, nil
}

type testValidator struct {
	validate *validator.Validate
}

func (v *testValidator) Validate(i any) error {
	if err := v.validate.Struct(i); err != nil {
		return errorbank.BadRequest("invalid request payload", errorbank.WithCause(err))
	}
	return nil
}

func newTestRouter(t *testing.T, orders *stubOrderStore, catalog *stubCatalogStore) *echo.Echo {
	t.Helper()

	svc := service.NewService(service.Params{
		Orders:  orders,
		Catalog: catalog,
		Config: config.Config{
			Cache: config.Cache{DefaultTTL: time.Minute},
		},
		Logger: zap.NewNop(),
	})

	e := echo.New()
	e.Validator = &testValidator{validate: validator.New()}
	Register(e, NewHandler(svc, zap.NewNop()))
	return e
}

func doRequest(e *echo.Echo, method, target, principal, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if principal != "" {
		req.Header.Set(middleware.HeaderPrincipal, principal)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var payload map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	return payload
}

func TestCreateRequiresPrincipal(t *testing.T) {
	e := newTestRouter(t, &stubOrderStore{}, &stubCatalogStore{})

	rec := doRequest(e, http.MethodPost, "/orders", "", `{}`)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	payload := decodeBody(t, rec)
	assert.Equal(t, false, payload["success"])
}

func TestCreateReturnsCreatedOrderWithDerivedTotals(t *testing.T) {
	orders := &stubOrderStore{
		create: func(_ context.Context, order *entity.Order) error {
			return nil
		},
	}
	catalog := &stubCatalogStore{
		restaurantByID: func(_ context.Context, id string) (*entity.Restaurant, error) {
			return &entity.Restaurant{ID: id, Active: true}, nil
		},
		availableItems: func(_ context.Context, _ string, _ []string) (map[string]*entity.MenuItem, error) {
			return map[string]*entity.MenuItem{
				menuItemID: {ID: menuItemID, Name: "Fish Tacos", PriceCents: 1195},
			}, nil
		},
	}
	e := newTestRouter(t, orders, catalog)

	body := `{
		"restaurantId": "` + restaurantID + `",
		"items": [{"menuItemId": "` + menuItemID + `", "quantity": 2}],
		"routeOrigin": "12 Pier Ave",
		"routeDestination": "88 Summit Rd",
		"pickupEtaMin": 25
	}`
	rec := doRequest(e, http.MethodPost, "/orders", customerID, body)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	payload := decodeBody(t, rec)
	data := payload["data"].(map[string]any)
	assert.Equal(t, customerID, data["customerId"])
	assert.Equal(t, string(entity.OrderPending), data["status"])
	// 2 x 1195 = 2390 subtotal, tax 197, total 2587.
	assert.EqualValues(t, 2390, data["subtotalCents"])
	assert.EqualValues(t, 197, data["taxCents"])
	assert.EqualValues(t, 2587, data["totalCents"])
}

func TestCreateRejectsInvalidPayload(t *testing.T) {
	e := newTestRouter(t, &stubOrderStore{}, &stubCatalogStore{})

	rec := doRequest(e, http.MethodPost, "/orders", customerID, `{"items": []}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListDegradesToEmptyOnStoreFailure(t *testing.T) {
	orders := &stubOrderStore{
		listByCustomer: func(context.Context, string) ([]*entity.Order, error) {
			return nil, errors.New("connection refused")
		},
	}
	e := newTestRouter(t, orders, &stubCatalogStore{})

	rec := doRequest(e, http.MethodGet, "/orders", customerID, "")

	require.Equal(t, http.StatusOK, rec.Code)
	payload := decodeBody(t, rec)
	assert.Equal(t, true, payload["success"])
	assert.Empty(t, payload["data"])
}

func TestGetByIDRejectsMalformedID(t *testing.T) {
	e := newTestRouter(t, &stubOrderStore{}, &stubCatalogStore{})

	rec := doRequest(e, http.MethodGet, "/orders/not-a-uuid", customerID, "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetByIDReturnsNotFoundForForeignOrder(t *testing.T) {
	orders := &stubOrderStore{
		getForCustomer: func(context.Context, string, string) (*entity.Order, error) {
			return nil, repo.ErrNotFound
		},
	}
	e := newTestRouter(t, orders, &stubCatalogStore{})

	rec := doRequest(e, http.MethodGet, "/orders/"+orderID, customerID, "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateRouteRejectedOnceReady(t *testing.T) {
	orders := &stubOrderStore{
		getForCustomer: func(context.Context, string, string) (*entity.Order, error) {
			return &entity.Order{ID: orderID, CustomerID: customerID, Status: entity.OrderReady}, nil
		},
	}
	e := newTestRouter(t, orders, &stubCatalogStore{})

	rec := doRequest(e, http.MethodPatch, "/orders/"+orderID+"/route", customerID, `{"pickupEtaMin": 15}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	payload := decodeBody(t, rec)
	errBody := payload["error"].(map[string]any)
	assert.Contains(t, errBody["message"], "READY")
}

func TestUpdateRoutePartialMerge(t *testing.T) {
	orders := &stubOrderStore{
		getForCustomer: func(context.Context, string, string) (*entity.Order, error) {
			return &entity.Order{
				ID:               orderID,
				CustomerID:       customerID,
				Status:           entity.OrderPending,
				RouteOrigin:      "12 Pier Ave",
				RouteDestination: "88 Summit Rd",
				PickupEtaMin:     25,
			}, nil
		},
		updateRoute: func(_ context.Context, _ string, patch entity.RoutePatch) (bool, error) {
			return true, nil
		},
	}
	e := newTestRouter(t, orders, &stubCatalogStore{})

	rec := doRequest(e, http.MethodPatch, "/orders/"+orderID+"/route", customerID, `{"pickupEtaMin": 40}`)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	payload := decodeBody(t, rec)
	data := payload["data"].(map[string]any)
	assert.EqualValues(t, 40, data["pickupEtaMin"])
	assert.Equal(t, "12 Pier Ave", data["routeOrigin"])
	assert.Equal(t, "88 Summit Rd", data["routeDestination"])
}
