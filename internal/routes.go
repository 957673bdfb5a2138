package internal

import (
	"backlog/internal/providers"
	"backlog/internal/structures"
	"backlog/internal/views"
)

func InitRoutes(router providers.RouterProviderInterface, list *views.GameListView, stats *views.StatsView, auth *views.AuthView) []structures.Route {
	router.Register(providers.RouteHome, list, true)
	router.Register(providers.RouteStats, stats, true)
	router.Register(providers.RouteLogin, auth, false)
	return router.GetRoutes()
}
