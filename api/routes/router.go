package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kaanagas/kaanagas-backend/api/controllers"
	webhookcontrollers "github.com/kaanagas/kaanagas-backend/api/controllers/webhooks"
	"github.com/kaanagas/kaanagas-backend/api/middleware"
	"github.com/kaanagas/kaanagas-backend/internal/catalog"
	"github.com/kaanagas/kaanagas-backend/internal/deliveries"
	"github.com/kaanagas/kaanagas-backend/internal/notifications"
	"github.com/kaanagas/kaanagas-backend/internal/orders"
	"github.com/kaanagas/kaanagas-backend/internal/payments"
	"github.com/kaanagas/kaanagas-backend/internal/riders"
	"github.com/kaanagas/kaanagas-backend/internal/vendors"
	"github.com/kaanagas/kaanagas-backend/pkg/config"
	"github.com/kaanagas/kaanagas-backend/pkg/db"
	"github.com/kaanagas/kaanagas-backend/pkg/enums"
	"github.com/kaanagas/kaanagas-backend/pkg/logger"
	"github.com/kaanagas/kaanagas-backend/pkg/metrics"
	"github.com/kaanagas/kaanagas-backend/pkg/redis"
)

// NewRouter wires every HTTP surface: health probes, the Prometheus
// scrape endpoint, the public catalogue, the M-Pesa webhook and the
// role-gated API groups.
func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	registry *prometheus.Registry,
	httpMetrics *metrics.HTTPMetrics,
	catalogService catalog.Service,
	vendorService vendors.Service,
	orderService orders.Service,
	paymentService payments.Service,
	deliveryService deliveries.Service,
	riderService riders.Service,
	notificationService notifications.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
		middleware.Metrics(httpMetrics),
	)

	orderPolicy := middleware.NewRateLimitPolicy("orders", time.Minute, 30, 0)
	paymentPolicy := middleware.NewRateLimitPolicy("payments", time.Minute, 10, 5)
	webhookPolicy := middleware.NewRateLimitPolicy("mpesa-webhook", time.Minute, 120, 0)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisClient))
	})

	if registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/catalog", func(r chi.Router) {
		r.Get("/products", controllers.ListProducts(catalogService, logg))
		r.Get("/products/{productId}", controllers.GetProduct(catalogService, logg))
	})

	r.Route("/api/v1/vendors", func(r chi.Router) {
		r.Get("/", controllers.ListVendors(vendorService, logg))
		r.Get("/{vendorId}", controllers.GetVendor(vendorService, logg))
	})

	r.Post("/api/v1/orders/estimate", controllers.EstimateOrder(orderService, logg))

	r.With(middleware.RateLimit(webhookPolicy, redisClient, logg)).
		Post("/api/v1/webhooks/mpesa", webhookcontrollers.Mpesa(paymentService, cfg.Mpesa, logg))

	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))

		r.Route("/api/v1/orders", func(r chi.Router) {
			r.Get("/", controllers.ListOrders(orderService, logg))
			r.Get("/track/{orderNumber}", controllers.TrackOrder(orderService, logg))
			r.Get("/{orderId}", controllers.GetOrder(orderService, logg))
			r.Post("/{orderId}/cancel", controllers.CancelOrder(orderService, logg))

			r.With(
				middleware.RequireRole(logg, enums.UserRoleCustomer),
				middleware.RateLimit(orderPolicy, redisClient, logg),
			).Post("/", controllers.CreateOrder(orderService, logg))

			r.Group(func(r chi.Router) {
				r.Use(
					middleware.RequireRole(logg, enums.UserRoleVendor),
					middleware.VendorContext(logg),
				)
				r.Post("/{orderId}/confirm", controllers.ConfirmOrder(orderService, logg))
				r.Post("/{orderId}/prepare", controllers.PrepareOrder(orderService, logg))
				r.Post("/{orderId}/ready-for-pickup", controllers.ReadyOrderForPickup(orderService, logg))
				r.Post("/{orderId}/assign-rider", controllers.AssignRider(orderService, logg))
			})
		})

		r.Route("/api/v1/payments", func(r chi.Router) {
			r.Get("/", controllers.ListPayments(paymentService, orderService, logg))
			r.With(
				middleware.RequireRole(logg, enums.UserRoleCustomer),
				middleware.RateLimit(paymentPolicy, redisClient, logg),
			).Post("/initiate", controllers.InitiatePayment(paymentService, logg))
		})

		r.Route("/api/v1/vendor", func(r chi.Router) {
			r.Post("/register", controllers.RegisterVendor(vendorService, logg))

			r.Group(func(r chi.Router) {
				r.Use(
					middleware.RequireRole(logg, enums.UserRoleVendor),
					middleware.VendorContext(logg),
				)
				r.Put("/profile", controllers.UpdateVendor(vendorService, logg))
				r.Get("/inventory", controllers.ListInventory(vendorService, logg))
				r.Put("/inventory/{productId}", controllers.SetInventory(vendorService, logg))
				r.Get("/orders/stats", controllers.VendorOrderStats(orderService, logg))
			})
		})

		r.Route("/api/v1/rider", func(r chi.Router) {
			r.Post("/register", controllers.RegisterRider(riderService, logg))

			r.Group(func(r chi.Router) {
				r.Use(
					middleware.RequireRole(logg, enums.UserRoleRider),
					middleware.RiderContext(logg),
				)
				r.Get("/jobs", controllers.ListOpenJobs(deliveryService, logg))
				r.Post("/location", controllers.UpdateRiderLocation(riderService, logg))
				r.Post("/availability", controllers.SetRiderAvailability(riderService, logg))
				r.Get("/earnings", controllers.ListRiderEarnings(riderService, logg))
				r.Get("/earnings/summary", controllers.RiderEarningsSummary(riderService, logg))

				r.Route("/deliveries", func(r chi.Router) {
					r.Get("/", controllers.ListRiderDeliveries(deliveryService, logg))
					r.Post("/accept", controllers.AcceptJob(deliveryService, logg))
					r.Get("/{deliveryId}", controllers.GetDelivery(deliveryService, logg))
					r.Post("/{deliveryId}/status", controllers.UpdateDeliveryStatus(deliveryService, logg))
				})
			})
		})

		r.Route("/api/v1/notifications", func(r chi.Router) {
			r.Get("/", controllers.ListNotifications(notificationService, logg))
			r.Post("/{notificationId}/read", controllers.MarkNotificationRead(notificationService, logg))
			r.Post("/read-all", controllers.MarkAllNotificationsRead(notificationService, logg))
		})

		r.Route("/api/admin/v1", func(r chi.Router) {
			r.Use(middleware.RequireRole(logg, enums.UserRoleAdmin))
			r.Post("/catalog/products", controllers.AdminCreateProduct(catalogService, logg))
			r.Put("/catalog/products/{productId}", controllers.AdminUpdateProduct(catalogService, logg))
			r.Put("/vendors/{vendorId}/status", controllers.AdminSetVendorStatus(vendorService, logg))
			r.Get("/orders/stats", controllers.AdminOrderStats(orderService, logg))
		})
	})

	return r
}
