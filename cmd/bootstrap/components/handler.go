package components

import (
	"gin-checkout-core/internal/handler"
	"gin-checkout-core/internal/handler/api"
	"gin-checkout-core/internal/handler/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
)

var HandlerModule = fx.Module("handler",
	fx.Provide(
		newEngine,
		middleware.NewAuthMiddleware,
	),
	handlerAPIModule,
	fx.Invoke(handler.NewRouter),
)

var handlerAPIModule = fx.Module("handler/api",
	fx.Provide(
		api.NewAuthHandler,
		api.NewCheckoutHandler,
		api.NewOrderHandler,
	),
)

// newEngine has no default middleware; NewRouter installs the chain.
func newEngine() *gin.Engine {
	gin.EnableJsonDecoderDisallowUnknownFields()
	return gin.New()
}
