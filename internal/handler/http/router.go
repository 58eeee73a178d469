package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mrsourodip/helloKirana/internal/service"
	"github.com/mrsourodip/helloKirana/pkg/health"
	"github.com/mrsourodip/helloKirana/pkg/middleware"
)

// Services bundles the service layer for route registration.
type Services struct {
	Addresses *service.AddressService
	Orders    *service.OrderService
	Catalog   *service.CatalogService
	Favorites *service.FavoriteService
}

// NewRouter creates a chi router with all storefront routes registered. The
// catalog and the webhook are public; everything owner-scoped sits behind the
// bearer-token middleware.
func NewRouter(
	services Services,
	tokenValidator middleware.TokenValidator,
	webhookSecret string,
	healthHandler *health.Handler,
	corsConfig middleware.CORSConfig,
	logger *slog.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(logger))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics("storefront"))
	r.Use(middleware.Tracing("storefront"))
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.CORS(corsConfig))

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	addressHandler := NewAddressHandler(services.Addresses, logger)
	orderHandler := NewOrderHandler(services.Orders, logger)
	productHandler := NewProductHandler(services.Catalog, logger)
	favoriteHandler := NewFavoriteHandler(services.Favorites, logger)
	webhookHandler := NewWebhookHandler(services.Orders, webhookSecret, logger)

	auth := middleware.Auth(tokenValidator)

	// Public catalog endpoints
	r.Route("/products", func(r chi.Router) {
		r.Use(middleware.CacheControl(60))

		r.Get("/", productHandler.ListProducts)
		r.Get("/{id}", productHandler.GetProduct)
		r.Get("/related/{id}", productHandler.ListRelatedProducts)
	})

	r.Route("/addresses", func(r chi.Router) {
		r.Use(auth)
		r.Use(ContentTypeJSON)

		r.Get("/", addressHandler.ListAddresses)
		r.Post("/", addressHandler.CreateAddress)
		r.Delete("/{id}", addressHandler.DeleteAddress)
		r.Put("/{id}/default", addressHandler.SetDefaultAddress)
	})

	r.Route("/orders", func(r chi.Router) {
		// The gateway authenticates with the body signature, not a bearer token.
		r.Post("/webhook", webhookHandler.HandleWebhook)

		r.Group(func(r chi.Router) {
			r.Use(auth)
			r.Use(ContentTypeJSON)

			r.Get("/", orderHandler.ListOrders)
			r.Post("/", orderHandler.CreateOrder)
			r.Get("/latest", orderHandler.GetLatestOrder)
			r.Get("/{id}", orderHandler.GetOrder)
			r.Post("/{id}/cancel", orderHandler.CancelOrder)
			r.Post("/create-payment", orderHandler.CreatePaymentSession)
		})
	})

	r.Route("/favorites", func(r chi.Router) {
		r.Use(auth)
		r.Use(ContentTypeJSON)

		r.Get("/", favoriteHandler.ListFavorites)
		r.Post("/", favoriteHandler.AddFavorite)
		r.Delete("/{productId}", favoriteHandler.RemoveFavorite)
	})

	return r
}
