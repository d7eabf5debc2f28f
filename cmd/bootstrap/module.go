// Package bootstrap wires the application graph with fx. Each concern
// lives in its own module so integration tests can swap pieces out.
package bootstrap

import (
	"aurelia-commerce/cmd/bootstrap/components"
	"aurelia-commerce/internal/pkg/config"

	"go.uber.org/fx"
)

var ConfigModule = fx.Module("config",
	fx.Provide(config.LoadConfig),
)

var Module = fx.Options(
	ConfigModule,
	DBModule,
	JWTModule,
	components.PersistenceModule,
	components.UseCaseModule,
	components.HandlerModule,
	ReaperModule,
)
