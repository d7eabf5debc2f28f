package components

import (
	"aurelia-commerce/internal/handler"
	"aurelia-commerce/internal/handler/api"
	"aurelia-commerce/internal/handler/middleware"

	"go.uber.org/fx"
)

var HandlerModule = fx.Module("handler",
	fx.Provide(
		api.NewAuthHandler,
		api.NewCartHandler,
		api.NewOrderHandler,
		api.NewProductHandler,
		middleware.NewAuthMiddleware,
		newHandlers,
	),
	fx.Invoke(handler.NewRouter),
)

func newHandlers(
	auth *api.AuthHandler,
	cart *api.CartHandler,
	order *api.OrderHandler,
	product *api.ProductHandler,
) handler.Handlers {
	return handler.Handlers{
		Auth:    auth,
		Cart:    cart,
		Order:   order,
		Product: product,
	}
}
