package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"gin-checkout-core/internal/handler/api"
	"gin-checkout-core/internal/handler/middleware"
	"gin-checkout-core/internal/pkg/config"
	"gin-checkout-core/internal/pkg/telemetry"
)

type route struct {
	Method  string
	Path    string
	Handler gin.HandlerFunc
	Mw      []gin.HandlerFunc
}

type Handlers struct {
	Auth     *api.AuthHandler
	Checkout *api.CheckoutHandler
	Order    *api.OrderHandler
}

func NewRouter(
	engine *gin.Engine,
	cfg config.Config,
	authHandler *api.AuthHandler,
	checkoutHandler *api.CheckoutHandler,
	orderHandler *api.OrderHandler,
	authMiddleware *middleware.AuthMiddleware,
	metrics *telemetry.Metrics,
	logger *slog.Logger,
) {
	handlers := Handlers{Auth: authHandler, Checkout: checkoutHandler, Order: orderHandler}
	setupMiddleware(engine, cfg, metrics, logger)
	setupRoutes(engine, cfg, handlers, authMiddleware, metrics)
}

func setupMiddleware(engine *gin.Engine, cfg config.Config, metrics *telemetry.Metrics, logger *slog.Logger) {
	// Recovery must be first (outermost) to catch panics from all other middleware
	engine.Use(middleware.CustomRecovery())
	engine.Use(otelgin.Middleware(cfg.Telemetry.ServiceName))
	engine.Use(middleware.NewCORSMiddleware(cfg.CORS))
	engine.Use(middleware.LoggingMiddleware(logger))
	engine.Use(middleware.MetricsMiddleware(metrics))
	engine.Use(middleware.ErrorHandler())
}

func setupRoutes(engine *gin.Engine, cfg config.Config, h Handlers, authMiddleware *middleware.AuthMiddleware, metrics *telemetry.Metrics) {
	engine.GET("/health", healthCheck)
	engine.GET("/metrics", gin.WrapH(metrics.Handler()))

	if gin.Mode() == gin.DebugMode {
		engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	apiGroup := engine.Group("/api")
	{
		auth := apiGroup.Group("/auth")
		{
			addRoutes(auth, []route{
				{Method: http.MethodPost, Path: "/login", Handler: h.Auth.Login},
			})

			authRequired := auth.Group("")
			authRequired.Use(authMiddleware.RequireAuth())
			addRoutes(authRequired, []route{
				{Method: http.MethodPost, Path: "/logout", Handler: h.Auth.Logout},
				{Method: http.MethodGet, Path: "/me", Handler: h.Auth.Me},
			})
		}

		checkout := apiGroup.Group("/checkout")
		{
			// settlement callback: provider secret instead of a buyer token
			addRoutes(checkout, []route{
				{
					Method:  http.MethodPost,
					Path:    "/deferred/:token/confirm",
					Handler: h.Checkout.ConfirmDeferred,
					Mw:      []gin.HandlerFunc{middleware.RequireSettlementSecret(cfg.Checkout)},
				},
			})

			buyer := checkout.Group("")
			buyer.Use(authMiddleware.RequireAuth())
			addRoutes(buyer, []route{
				{Method: http.MethodPost, Path: "/immediate", Handler: h.Checkout.PurchaseImmediate},
				{Method: http.MethodPost, Path: "/deferred", Handler: h.Checkout.InitiateDeferred},
				{Method: http.MethodGet, Path: "/deferred/:token", Handler: h.Checkout.PollDeferred},
			})
		}

		orders := apiGroup.Group("/orders")
		orders.Use(authMiddleware.RequireAuth())
		{
			addRoutes(orders, []route{
				{Method: http.MethodGet, Path: "", Handler: h.Order.ListOrders},
				{Method: http.MethodGet, Path: "/:id", Handler: h.Order.GetOrder},
			})
		}
	}
}

// @Summary Health check
// @Description Check if the service is healthy
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"message": "Service is healthy",
	})
}

func addRoutes(g *gin.RouterGroup, rs []route) {
	for _, r := range rs {
		h := r.Handler
		if len(r.Mw) > 0 {
			h = chainHandlers(append(r.Mw, r.Handler)...)
		}
		switch r.Method {
		case http.MethodGet:
			g.GET(r.Path, h)
		case http.MethodPost:
			g.POST(r.Path, h)
		default:
			g.Any(r.Path, h)
		}
	}
}

func chainHandlers(hs ...gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, h := range hs {
			h(c)
			if c.IsAborted() {
				return
			}
		}
	}
}
