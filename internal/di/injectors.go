//go:build wireinject
// +build wireinject

package di

import (
	"backlog/internal"
	"backlog/internal/api"
	"backlog/internal/controllers"
	"backlog/internal/providers"
	"backlog/internal/session"
	"backlog/internal/structures"
	"backlog/internal/views"
	wire "github.com/google/wire"
)

func InitApp(cfg *structures.CliFlags) (*internal.App, func(), error) {

	wire.Build(
		providers.NewConfigProvider,
		providers.NewLogProvider,
		providers.NewStorageProvider,
		providers.NewMetricsProvider,
		providers.NewReloadProvider,
		providers.NewStdConsole,
		providers.NewConsoleProvider,
		providers.NewRouterProvider,

		api.NewClient,
		session.NewStore,
		wire.Bind(new(providers.AuthChecker), new(session.StoreInterface)),

		wire.Bind(new(views.Notifier), new(providers.ConsoleProviderInterface)),
		wire.Bind(new(views.Confirmer), new(providers.ConsoleProviderInterface)),
		wire.Bind(new(views.Navigator), new(providers.RouterProviderInterface)),
		views.NewGameForm,
		views.NewGameListView,
		views.NewStatsView,
		views.NewAuthView,

		controllers.NewShellController,
		controllers.NewHealthController,
		internal.InitRoutes,
		internal.NewApp,
	)

	return nil, nil, nil
}
