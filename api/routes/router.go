package routes

import (
	"net/http"
	"time"

	"wanderly/internal/auth"
	"wanderly/internal/cart"
	"wanderly/internal/notifications"
	"wanderly/internal/orders"
	"wanderly/internal/outbox"
	"wanderly/internal/products"
	"wanderly/internal/registrations"
	"wanderly/internal/shared/config"
	"wanderly/internal/shared/database"
	"wanderly/internal/tickets"
	"wanderly/internal/trips"
	"wanderly/pkg/cache"
	"wanderly/pkg/logger"

	"github.com/gin-gonic/gin"
)

// Router holds all route dependencies
type Router struct {
	config *config.Config
	db     *database.DB
	cache  cache.Service
	users  *auth.UserDirectory
}

func NewRouter(cfg *config.Config, db *database.DB) *Router {
	cacheService := cache.Noop()
	if db.Redis != nil {
		cacheService = cache.NewService(db.Redis)
	}
	return &Router{
		config: cfg,
		db:     db,
		cache:  cacheService,
		users:  auth.NewUserDirectory(auth.NewRepository(db.PostgreSQL)),
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes(engine *gin.Engine) {
	r.setupHealthRoutes(engine)

	api := engine.Group(r.config.GetAPIBasePath())
	{
		r.setupAuthRoutes(api)
		r.setupTripRoutes(api)
		r.setupTicketRoutes(api)
		r.setupRegistrationRoutes(api)
		r.setupMarketplaceRoutes(api)
		r.setupNotificationRoutes(api)
	}
}

func (r *Router) setupHealthRoutes(engine *gin.Engine) {
	engine.GET("/health", func(c *gin.Context) {
		checks := r.db.HealthCheck(c.Request.Context())
		code, status := http.StatusOK, "healthy"
		if checks["postgres"] != "healthy" {
			code, status = http.StatusServiceUnavailable, "unhealthy"
		}
		c.JSON(code, gin.H{
			"status":    status,
			"checks":    checks,
			"timestamp": time.Now(),
			"service":   "wanderly-backend",
		})
	})

	engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
			"version": r.config.APIVersion,
		})
	})

	outboxStore := outbox.NewRepository(r.db.PostgreSQL)
	engine.GET(r.config.GetAPIBasePath()+"/status", func(c *gin.Context) {
		counts, err := outboxStore.CountByStatus(c.Request.Context())
		if err != nil {
			logger.GetDefault().WithError(err).Warn("outbox stats unavailable")
		}
		c.JSON(http.StatusOK, gin.H{
			"status":      "operational",
			"api_version": r.config.APIVersion,
			"outbox":      counts,
			"timestamp":   time.Now(),
		})
	})
}

func (r *Router) setupAuthRoutes(rg *gin.RouterGroup) {
	authService := auth.NewService(auth.NewRepository(r.db.PostgreSQL), r.config)
	auth.NewRouter(auth.NewController(authService), r.config).SetupRoutes(rg)
}

func (r *Router) setupTripRoutes(rg *gin.RouterGroup) {
	tripService := trips.NewService(trips.NewRepository(r.db.PostgreSQL), r.cache)
	trips.NewRouter(trips.NewController(tripService), r.config).SetupRoutes(rg)
}

func (r *Router) setupTicketRoutes(rg *gin.RouterGroup) {
	ticketService := tickets.NewService(tickets.NewRepository(r.db.PostgreSQL), r.cache, r.config.Tickets)
	tickets.NewRouter(tickets.NewController(ticketService), r.config).SetupRoutes(rg)
}

func (r *Router) setupRegistrationRoutes(rg *gin.RouterGroup) {
	registrationService := registrations.NewService(registrations.NewRepository(r.db.PostgreSQL), r.users, r.config)
	registrations.NewRouter(registrations.NewController(registrationService), r.config).SetupRoutes(rg)
}

func (r *Router) setupMarketplaceRoutes(rg *gin.RouterGroup) {
	productService := products.NewService(products.NewRepository(r.db.PostgreSQL), r.cache)
	products.NewRouter(products.NewController(productService), r.config).SetupRoutes(rg)

	orderService := orders.NewService(orders.NewRepository(r.db.PostgreSQL), r.cache)
	orders.NewRouter(orders.NewController(orderService), r.config).SetupRoutes(rg)

	cartService := cart.NewService(cart.NewRepository(r.db.PostgreSQL), r.cache)
	cart.NewRouter(cart.NewController(cartService), r.config).SetupRoutes(rg)
}

// setupNotificationRoutes is skipped when MongoDB is down at startup
func (r *Router) setupNotificationRoutes(rg *gin.RouterGroup) {
	if r.db.MongoDB == nil {
		logger.GetDefault().Warn("notification inbox routes disabled: MongoDB not connected")
		return
	}
	service := notifications.NewService(notifications.NewMongoStore(r.db.MongoDB))
	notifications.NewRouter(notifications.NewController(service), r.config).SetupRoutes(rg)
}
