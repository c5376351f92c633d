package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"

	"github.com/kaanagas/kaanagas-backend/internal/catalog"
	"github.com/kaanagas/kaanagas-backend/internal/deliveries"
	"github.com/kaanagas/kaanagas-backend/internal/notifications"
	"github.com/kaanagas/kaanagas-backend/internal/orders"
	"github.com/kaanagas/kaanagas-backend/internal/payments"
	"github.com/kaanagas/kaanagas-backend/internal/riders"
	"github.com/kaanagas/kaanagas-backend/internal/vendors"
	pkgAuth "github.com/kaanagas/kaanagas-backend/pkg/auth"
	"github.com/kaanagas/kaanagas-backend/pkg/config"
	"github.com/kaanagas/kaanagas-backend/pkg/db/models"
	"github.com/kaanagas/kaanagas-backend/pkg/enums"
	"github.com/kaanagas/kaanagas-backend/pkg/logger"
	"github.com/kaanagas/kaanagas-backend/pkg/metrics"
	"github.com/kaanagas/kaanagas-backend/pkg/mpesa"
	"github.com/kaanagas/kaanagas-backend/pkg/redis"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

type stubCatalogService struct{}

func (stubCatalogService) CreateProduct(ctx context.Context, input catalog.CreateProductInput) (*models.GasProduct, error) {
	return &models.GasProduct{ID: uuid.New()}, nil
}

func (stubCatalogService) UpdateProduct(ctx context.Context, productID uuid.UUID, input catalog.UpdateProductInput) (*models.GasProduct, error) {
	panic("unimplemented")
}

func (stubCatalogService) GetProduct(ctx context.Context, productID uuid.UUID) (*models.GasProduct, error) {
	panic("unimplemented")
}

func (stubCatalogService) ListProducts(ctx context.Context, params catalog.ListParams) (*catalog.ListResult, error) {
	return &catalog.ListResult{}, nil
}

type stubVendorService struct{}

func (stubVendorService) RegisterVendor(ctx context.Context, input vendors.RegisterVendorInput) (*models.VendorProfile, error) {
	panic("unimplemented")
}

func (stubVendorService) UpdateVendor(ctx context.Context, vendorID uuid.UUID, input vendors.UpdateVendorInput) (*models.VendorProfile, error) {
	panic("unimplemented")
}

func (stubVendorService) GetVendor(ctx context.Context, vendorID uuid.UUID) (*models.VendorProfile, error) {
	panic("unimplemented")
}

func (stubVendorService) SetVendorStatus(ctx context.Context, vendorID uuid.UUID, status string) error {
	panic("unimplemented")
}

func (stubVendorService) ListVendors(ctx context.Context) ([]models.VendorProfile, error) {
	return []models.VendorProfile{}, nil
}

func (stubVendorService) FindNearbyVendors(ctx context.Context, params vendors.NearbyParams) ([]vendors.NearbyVendor, error) {
	panic("unimplemented")
}

func (stubVendorService) SetInventory(ctx context.Context, vendorID uuid.UUID, input vendors.SetInventoryInput) (*models.VendorInventory, error) {
	panic("unimplemented")
}

func (stubVendorService) ListInventory(ctx context.Context, vendorID uuid.UUID) ([]models.VendorInventory, error) {
	return []models.VendorInventory{}, nil
}

func (stubVendorService) ResolveUnitPrice(ctx context.Context, vendorID, productID uuid.UUID, isRefill bool) (decimal.Decimal, error) {
	panic("unimplemented")
}

type stubOrderService struct{}

func (stubOrderService) Create(ctx context.Context, input orders.CreateOrderInput) (*models.Order, error) {
	panic("unimplemented")
}

func (stubOrderService) Confirm(ctx context.Context, input orders.VendorActionInput) (*models.Order, error) {
	return &models.Order{ID: input.OrderID}, nil
}

func (stubOrderService) StartPreparing(ctx context.Context, input orders.VendorActionInput) (*models.Order, error) {
	panic("unimplemented")
}

func (stubOrderService) ReadyForPickup(ctx context.Context, input orders.VendorActionInput) (*models.Order, error) {
	panic("unimplemented")
}

func (stubOrderService) AssignRider(ctx context.Context, input orders.AssignRiderInput) (*models.Delivery, error) {
	panic("unimplemented")
}

func (stubOrderService) Cancel(ctx context.Context, input orders.CancelOrderInput) (*models.Order, error) {
	panic("unimplemented")
}

func (stubOrderService) GetOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	panic("unimplemented")
}

func (stubOrderService) GetByNumber(ctx context.Context, orderNumber string) (*models.Order, error) {
	panic("unimplemented")
}

func (stubOrderService) Track(ctx context.Context, orderID uuid.UUID) (*orders.TrackingView, error) {
	panic("unimplemented")
}

func (stubOrderService) ListCustomerOrders(ctx context.Context, customerID uuid.UUID, filters orders.ListFilters) (*orders.OrderList, error) {
	return &orders.OrderList{}, nil
}

func (stubOrderService) ListVendorOrders(ctx context.Context, vendorID uuid.UUID, filters orders.ListFilters) (*orders.OrderList, error) {
	return &orders.OrderList{}, nil
}

func (stubOrderService) ListRiderOrders(ctx context.Context, riderID uuid.UUID, filters orders.ListFilters) (*orders.OrderList, error) {
	return &orders.OrderList{}, nil
}

func (stubOrderService) ListAllOrders(ctx context.Context, filters orders.ListFilters) (*orders.OrderList, error) {
	return &orders.OrderList{}, nil
}

func (stubOrderService) Estimate(ctx context.Context, input orders.EstimateInput) (*orders.Estimate, error) {
	return &orders.Estimate{}, nil
}

func (stubOrderService) VendorStats(ctx context.Context, vendorID uuid.UUID) (*orders.VendorOrderStats, error) {
	panic("unimplemented")
}

func (stubOrderService) AdminStats(ctx context.Context, days int) (*orders.AdminOrderStats, error) {
	return &orders.AdminOrderStats{Days: days}, nil
}

type stubPaymentService struct{}

func (stubPaymentService) Initiate(ctx context.Context, input payments.InitiateInput) (*models.Payment, error) {
	panic("unimplemented")
}

func (stubPaymentService) HandleCallback(ctx context.Context, envelope mpesa.CallbackEnvelope) (string, error) {
	panic("unimplemented")
}

func (stubPaymentService) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]models.Payment, error) {
	panic("unimplemented")
}

type stubDeliveryService struct{}

func (stubDeliveryService) ClaimJob(ctx context.Context, input deliveries.ClaimJobInput) (*models.Delivery, error) {
	panic("unimplemented")
}

func (stubDeliveryService) Accept(ctx context.Context, input deliveries.ActionInput) (*models.Delivery, error) {
	panic("unimplemented")
}

func (stubDeliveryService) StartPickup(ctx context.Context, input deliveries.ActionInput) (*models.Delivery, error) {
	panic("unimplemented")
}

func (stubDeliveryService) StartTransit(ctx context.Context, input deliveries.ActionInput) (*models.Delivery, error) {
	panic("unimplemented")
}

func (stubDeliveryService) Complete(ctx context.Context, input deliveries.CompleteInput) (*models.Delivery, error) {
	panic("unimplemented")
}

func (stubDeliveryService) Fail(ctx context.Context, input deliveries.FailInput) (*models.Delivery, error) {
	panic("unimplemented")
}

func (stubDeliveryService) GetForRider(ctx context.Context, deliveryID, riderID uuid.UUID) (*models.Delivery, error) {
	panic("unimplemented")
}

func (stubDeliveryService) ListRiderDeliveries(ctx context.Context, riderID uuid.UUID, limit int) ([]models.Delivery, error) {
	panic("unimplemented")
}

func (stubDeliveryService) ListOpenJobs(ctx context.Context, riderID uuid.UUID) ([]deliveries.Job, error) {
	return []deliveries.Job{}, nil
}

type stubRiderService struct{}

func (stubRiderService) RegisterRider(ctx context.Context, input riders.RegisterRiderInput) (*models.RiderProfile, error) {
	panic("unimplemented")
}

func (stubRiderService) GetRider(ctx context.Context, riderID uuid.UUID) (*models.RiderProfile, error) {
	panic("unimplemented")
}

func (stubRiderService) GetByUser(ctx context.Context, userID uuid.UUID) (*models.RiderProfile, error) {
	panic("unimplemented")
}

func (stubRiderService) SetRiderStatus(ctx context.Context, riderID uuid.UUID, status string) (*models.RiderProfile, error) {
	panic("unimplemented")
}

func (stubRiderService) UpdateLocation(ctx context.Context, input riders.UpdateLocationInput) error {
	panic("unimplemented")
}

func (stubRiderService) SetAvailability(ctx context.Context, riderID uuid.UUID, available bool) (*models.RiderProfile, error) {
	panic("unimplemented")
}

func (stubRiderService) ListEarnings(ctx context.Context, riderID uuid.UUID, params riders.EarningsParams) ([]models.RiderEarning, error) {
	panic("unimplemented")
}

func (stubRiderService) EarningsSummary(ctx context.Context, riderID uuid.UUID, params riders.EarningsParams) (*riders.EarningsSummary, error) {
	panic("unimplemented")
}

type stubNotificationService struct{}

func (stubNotificationService) List(ctx context.Context, params notifications.ListParams) (*notifications.ListResult, error) {
	return &notifications.ListResult{}, nil
}

func (stubNotificationService) MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error {
	panic("unimplemented")
}

func (stubNotificationService) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	panic("unimplemented")
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "0"},
		JWT: config.JWTConfig{
			Secret:            "secret",
			Issuer:            "issuer",
			ExpirationMinutes: 60,
		},
	}
}

func newTestRouter(cfg *config.Config) http.Handler {
	logg := logger.New(logger.Options{ServiceName: "test-routing", Level: logger.ParseLevel("debug"), Output: io.Discard})
	registry := prometheus.NewRegistry()
	return NewRouter(
		cfg,
		logg,
		stubPinger{},
		(*redis.Client)(nil),
		registry,
		metrics.NewHTTPMetrics(registry),
		stubCatalogService{},
		stubVendorService{},
		stubOrderService{},
		stubPaymentService{},
		stubDeliveryService{},
		stubRiderService{},
		stubNotificationService{},
	)
}

func buildToken(t *testing.T, cfg *config.Config, role enums.UserRole) string {
	t.Helper()
	payload := pkgAuth.AccessTokenPayload{UserID: uuid.New(), Role: role}
	switch role {
	case enums.UserRoleVendor:
		vendorID := uuid.New()
		payload.VendorID = &vendorID
	case enums.UserRoleRider:
		riderID := uuid.New()
		payload.RiderID = &riderID
	}
	token, err := pkgAuth.MintAccessToken(cfg.JWT, time.Now(), payload)
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestHealthLive(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestPublicCatalogNeedsNoToken(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/catalog/products", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestOrdersRejectMissingJWT(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token got %d", resp.Code)
	}
}

func TestOrdersListWithCustomerToken(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleCustomer))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestVendorTransitionsRejectCustomer(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders/"+uuid.NewString()+"/confirm", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleCustomer))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for customer got %d", resp.Code)
	}
}

func TestVendorTransitionsAllowVendor(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders/"+uuid.NewString()+"/confirm", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleVendor))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for vendor got %d", resp.Code)
	}
}

func TestAdminStatsRequireAdminRole(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	customer := httptest.NewRequest(http.MethodGet, "/api/admin/v1/orders/stats", nil)
	customer.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleCustomer))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, customer)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for customer got %d", resp.Code)
	}

	admin := httptest.NewRequest(http.MethodGet, "/api/admin/v1/orders/stats", nil)
	admin.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleAdmin))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, admin)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for admin got %d", resp.Code)
	}
}

func TestRiderJobsRequireRiderProfile(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	// Rider token with a profile claim passes the gate.
	withProfile := httptest.NewRequest(http.MethodGet, "/api/v1/rider/jobs", nil)
	withProfile.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleRider))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, withProfile)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for rider got %d", resp.Code)
	}

	// Rider role without a rider profile claim is rejected.
	token, err := pkgAuth.MintAccessToken(cfg.JWT, time.Now(), pkgAuth.AccessTokenPayload{
		UserID: uuid.New(),
		Role:   enums.UserRoleRider,
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	noProfile := httptest.NewRequest(http.MethodGet, "/api/v1/rider/jobs", nil)
	noProfile.Header.Set("Authorization", "Bearer "+token)
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, noProfile)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 without rider profile got %d", resp.Code)
	}
}

func TestEstimateIsPublic(t *testing.T) {
	router := newTestRouter(testConfig())
	body := `{"vendor_id":"` + uuid.NewString() + `","order_type":"pickup","items":[{"product_id":"` + uuid.NewString() + `","quantity":1}]}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders/estimate", strings.NewReader(body))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}
