// Package httpapi exposes the pizza-delivery operations over HTTP. The
// route table is declared once at startup; the bearer token travels in the
// "token" header.
package httpapi

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"pizzadelivery/internal/cart"
	"pizzadelivery/internal/catalog"
	"pizzadelivery/internal/identity"
	"pizzadelivery/internal/order"
)

type Server struct {
	log     *slog.Logger
	menu    *catalog.Catalog
	users   *identity.Service
	carts   *cart.Service
	orders  *order.Service
	limiter *rate.Limiter
}

type Options struct {
	Log    *slog.Logger
	Menu   *catalog.Catalog
	Users  *identity.Service
	Carts  *cart.Service
	Orders *order.Service

	RequestsPerSecond float64
	Burst             int
}

func NewServer(opts Options) *Server {
	rps := opts.RequestsPerSecond
	if rps <= 0 {
		rps = 50
	}
	burst := opts.Burst
	if burst <= 0 {
		burst = int(rps) * 2
	}

	return &Server{
		log:     opts.Log,
		menu:    opts.Menu,
		users:   opts.Users,
		carts:   opts.Carts,
		orders:  opts.Orders,
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
	}
}

// Router builds the gin engine with the full route table. Unroutable
// paths answer 404, known paths with the wrong method answer 405.
func (s *Server) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger(), s.observe(), s.rateLimit())
	r.HandleMethodNotAllowed = true

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "route not found", "code": "NOT_FOUND"})
	})
	r.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "method not allowed", "code": "METHOD_NOT_ALLOWED"})
	})

	r.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})))

	api := r.Group("/api")
	{
		api.GET("/ping", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"message": "pong"})
		})

		api.POST("/users", s.createUser)
		api.GET("/users", s.getUser)
		api.PUT("/users", s.updateUser)
		api.DELETE("/users", s.deleteUser)
		api.GET("/users/orders", s.listUserOrders)

		api.POST("/tokens", s.createToken)
		api.GET("/tokens", s.getToken)
		api.PUT("/tokens", s.extendToken)
		api.DELETE("/tokens", s.revokeToken)

		api.GET("/menu", s.getMenu)

		api.POST("/shopingCart", s.createCart)
		api.GET("/shopingCart", s.getCart)
		api.PUT("/shopingCart", s.updateCart)
		api.DELETE("/shopingCart", s.deleteCart)

		api.POST("/orders", s.placeOrder)
		api.GET("/orders", s.getOrder)
	}

	return r
}

// bearer pulls the opaque token id from the request header.
func bearer(c *gin.Context) string {
	return c.GetHeader("token")
}
