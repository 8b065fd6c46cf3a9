package httpserver

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/Skotchmaster/shivgems/internal/metrics"
	authmw "github.com/Skotchmaster/shivgems/internal/middleware/auth"
	loggingmw "github.com/Skotchmaster/shivgems/internal/middleware/logging"
)

type Deps struct {
	AuthHandler    *AuthHTTP
	CatalogHandler *CatalogHTTP
	CartHandler    *CartHTTP
	OrderHandler   *OrderHTTP
	AdminHandler   *AdminHTTP

	JWTSecret   []byte
	Revocations authmw.Revocations
	DBPing      PingFunc
	Metrics     *metrics.Metrics
	Logger      *slog.Logger

	AllowedOrigins []string
	Production     bool
}

// NewServer builds the echo instance with the middleware chain and every route mounted.
func NewServer(d *Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = errorHandler(d.Production)
	e.Validator = newValidator()

	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}

	origins := d.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	e.Pre(echomw.RemoveTrailingSlash())
	e.Use(echomw.RequestID())
	e.Use(loggingmw.RequestLogger(logger))
	e.Use(echomw.Recover())
	if d.Metrics != nil {
		e.Use(d.Metrics.Middleware())
	}
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:  origins,
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:  []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization, headerIdempotencyKey},
		ExposeHeaders: []string{echo.HeaderXRequestID},
	}))

	Register(e, d)
	return e
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", live)
	e.GET("/health/ready", ready(d.DBPing))
	if d.Metrics != nil {
		e.GET("/metrics", echo.WrapHandler(d.Metrics.Handler()))
	}

	requireAuth := authmw.RequireAuth(d.JWTSecret, d.Revocations)
	dbGuard := requireDatabase(d.DBPing)

	api := e.Group("/api")

	api.POST("/register", d.AuthHandler.Register)
	api.POST("/login", d.AuthHandler.Login)
	api.GET("/profile", d.AuthHandler.Profile, requireAuth)
	api.POST("/logout", d.AuthHandler.Logout, requireAuth)

	products := api.Group("/products")
	products.GET("", d.CatalogHandler.GetProducts)
	products.GET("/search", d.CatalogHandler.SearchProducts)
	products.GET("/:id", d.CatalogHandler.GetProduct)
	products.POST("", d.CatalogHandler.CreateProduct, requireAuth, authmw.RequireAdmin)
	products.PUT("/:id", d.CatalogHandler.UpdateProduct, requireAuth, authmw.RequireAdmin)
	products.DELETE("/:id", d.CatalogHandler.DeleteProduct, requireAuth, authmw.RequireAdmin)

	cart := api.Group("/cart", requireAuth)
	cart.GET("", d.CartHandler.GetCart)
	cart.GET("/summary", d.CartHandler.Summary)
	cart.POST("", d.CartHandler.AddToCart, dbGuard)
	cart.PUT("/:id", d.CartHandler.UpdateItem, dbGuard)
	cart.DELETE("/:id", d.CartHandler.RemoveItem, dbGuard)
	cart.DELETE("", d.CartHandler.ClearCart, dbGuard)

	orders := api.Group("/orders", requireAuth)
	orders.POST("", d.OrderHandler.CreateOrder, dbGuard)
	orders.GET("", d.OrderHandler.ListOrders, dbGuard)
	orders.GET("/admin/all", d.OrderHandler.ListAllOrders, authmw.RequireAdmin, dbGuard)
	orders.GET("/:id", d.OrderHandler.GetOrder, dbGuard)

	admin := api.Group("/admin", requireAuth, authmw.RequireAdmin)
	admin.GET("/dashboard", d.AdminHandler.Dashboard)
	admin.GET("/users", d.AdminHandler.ListUsers)
	admin.DELETE("/users/:id", d.AdminHandler.DeleteUser)
	admin.GET("/orders", d.AdminHandler.ListOrders)
	admin.PUT("/orders/:id", d.AdminHandler.UpdateOrderStatus)
	admin.DELETE("/orders/:id", d.AdminHandler.DeleteOrder)
}
