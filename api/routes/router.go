package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/storefront-backend/api/controllers"
	"github.com/angelmondragon/storefront-backend/api/middleware"
	"github.com/angelmondragon/storefront-backend/internal/cart"
	"github.com/angelmondragon/storefront-backend/internal/categories"
	"github.com/angelmondragon/storefront-backend/internal/customers"
	"github.com/angelmondragon/storefront-backend/internal/orders"
	products "github.com/angelmondragon/storefront-backend/internal/products"
	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/redis"
)

// RedisStore is the slice of the Redis client the HTTP layer relies on.
type RedisStore interface {
	redis.IdempotencyStore
	middleware.RateLimitStore
	Ping(context.Context) error
}

// Dependencies carries the collaborators mounted by NewRouter. Nil services
// answer with an internal error envelope.
type Dependencies struct {
	DB       controllers.Pinger
	Redis    RedisStore
	Gatherer prometheus.Gatherer

	Categories categories.Service
	Customers  customers.Service
	Products   products.Service
	Orders     orders.Service
	Cart       cart.Service
}

func NewRouter(cfg *config.Config, logg *logger.Logger, deps Dependencies) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.CORS(cfg.App.AllowedOrigins()),
		middleware.Logging(logg),
	)

	readiness := map[string]controllers.Pinger{}
	if deps.DB != nil {
		readiness["db"] = deps.DB
	}
	if deps.Redis != nil {
		readiness["redis"] = deps.Redis
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, readiness))
	})

	gatherer := deps.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	// Redis may be absent in tests; the middlewares pass through on a nil store.
	var (
		idempotencyStore redis.IdempotencyStore
		rateStore        middleware.RateLimitStore
	)
	if deps.Redis != nil {
		idempotencyStore = deps.Redis
		rateStore = deps.Redis
	}
	checkoutLimit := middleware.RateLimit(middleware.NewRateLimitPolicy(
		"checkout",
		cfg.CheckoutRateLimit.Window,
		cfg.CheckoutRateLimit.IPLimit,
		cfg.CheckoutRateLimit.PhoneLimit,
	), rateStore, logg)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.CartSession(logg))
		r.Use(middleware.Idempotency(idempotencyStore, logg))

		r.Route("/categories", func(r chi.Router) {
			r.Get("/", controllers.ListCategories(deps.Categories, logg))
			r.Post("/register", controllers.RegisterCategory(deps.Categories, logg))
			r.Put("/{id}", controllers.UpdateCategory(deps.Categories, logg))
			r.Delete("/{id}", controllers.DeleteCategory(deps.Categories, logg))
		})

		r.Route("/customers", func(r chi.Router) {
			r.Get("/", controllers.ListCustomers(deps.Customers, logg))
			r.Put("/{id}", controllers.UpdateCustomer(deps.Customers, logg))
			r.Delete("/{id}", controllers.DeleteCustomer(deps.Customers, logg))
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ListProducts(deps.Products, logg))
			r.Post("/", controllers.CreateProduct(deps.Products, logg))
			r.Get("/{id}", controllers.GetProduct(deps.Products, logg))
			r.Put("/{id}", controllers.UpdateProduct(deps.Products, logg))
			r.Delete("/{id}", controllers.DeleteProduct(deps.Products, logg))
			r.Patch("/{id}/stock", controllers.UpdateProductStock(deps.Products, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.ListOrders(deps.Orders, logg))
			r.With(checkoutLimit).Post("/", controllers.PlaceOrder(deps.Orders, logg))
			r.Get("/{id}", controllers.GetOrder(deps.Orders, logg))
			r.Delete("/{id}", controllers.DeleteOrder(deps.Orders, logg))
			r.Post("/{id}/adjustment/preview", controllers.PreviewOrderAdjustment(deps.Orders, logg))
			r.Patch("/{id}/{type}", controllers.PatchOrder(deps.Orders, logg))
		})

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.GetCart(deps.Cart, logg))
			r.Delete("/", controllers.ClearCart(deps.Cart, logg))
			r.Post("/items", controllers.AddCartItem(deps.Cart, logg))
			r.Delete("/items/{productId}", controllers.RemoveCartItem(deps.Cart, logg))
			r.Post("/items/{productId}/increment", controllers.IncrementCartItem(deps.Cart, logg))
			r.Post("/items/{productId}/decrement", controllers.DecrementCartItem(deps.Cart, logg))
			r.With(checkoutLimit).Post("/checkout", controllers.CheckoutCart(deps.Cart, logg))
		})
	})

	return r
}
