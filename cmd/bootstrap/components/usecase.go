package components

import (
	"aurelia-commerce/internal/pkg/clock"
	"aurelia-commerce/internal/pkg/config"
	"aurelia-commerce/internal/usecase"
	"aurelia-commerce/internal/usecase/commands"
	"aurelia-commerce/internal/usecase/queries"

	"go.uber.org/fx"
)

var UseCaseModule = fx.Module("usecase",
	usecaseBaseOption,
	usecaseQueriesModule,
	usecaseValidatorsModule,
	usecaseCommandsModule,
)

var usecaseBaseOption = fx.Provide(
	clock.NewRealClock,
	func(cfg config.Config) config.CartConfig { return cfg.Cart },
	func(cfg config.Config) config.JWTConfig { return cfg.JWT },
)

var usecaseCommandsModule = fx.Module("usecase/commands",
	fx.Provide(
		commands.NewCartCommands,
		commands.NewOrderCommands,
		commands.NewAuthCommands,
		commands.NewInventoryCommands,
		commands.NewMaintenanceCommands,
	),
)

var usecaseQueriesModule = fx.Module("usecase/queries",
	fx.Provide(
		queries.NewProductQueries,
		queries.NewCartQueries,
		queries.NewOrderQueries,
		queries.NewUserQueries,
	),
)

var usecaseValidatorsModule = fx.Module("usecase/validators",
	fx.Provide(
		usecase.NewTokenValidator,
	),
)
