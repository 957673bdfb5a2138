package providers

import (
	"backlog/internal/structures"
	"context"
	"fmt"
	"sync"
)

const (
	RouteHome  = "/"
	RouteStats = "/stats"
	RouteLogin = "/login"
)

type AuthChecker interface {
	IsAuthenticated() bool
}

type RouterProviderInterface interface {
	Register(url string, view structures.View, protected bool)
	Navigate(ctx context.Context, url string) error
	Current() string
	CurrentView() structures.View
	GetRoutes() []structures.Route
}

// RouterProvider maps client routes to views. Protected routes fall back to
// the landing route while there is no session.
type RouterProvider struct {
	auth    AuthChecker
	landing string

	mu      sync.Mutex
	routes  []structures.Route
	current int
}

func NewRouterProvider(auth AuthChecker) RouterProviderInterface {
	return &RouterProvider{auth: auth, landing: RouteLogin, current: -1}
}

func (rp *RouterProvider) Register(url string, view structures.View, protected bool) {
	rp.mu.Lock()
	defer rp.mu.Unlock()
	rp.routes = append(rp.routes, structures.Route{
		Url:       url,
		View:      view,
		Protected: protected,
	})
}

func (rp *RouterProvider) GetRoutes() []structures.Route {
	rp.mu.Lock()
	defer rp.mu.Unlock()
	return append([]structures.Route(nil), rp.routes...)
}

func (rp *RouterProvider) Current() string {
	rp.mu.Lock()
	defer rp.mu.Unlock()
	if rp.current < 0 {
		return ""
	}
	return rp.routes[rp.current].Url
}

func (rp *RouterProvider) CurrentView() structures.View {
	rp.mu.Lock()
	defer rp.mu.Unlock()
	if rp.current < 0 {
		return nil
	}
	return rp.routes[rp.current].View
}

// Navigate unmounts the current view and mounts the one behind url. Views
// may navigate again from Mount, so no lock is held while mounting.
func (rp *RouterProvider) Navigate(ctx context.Context, url string) error {
	rp.mu.Lock()
	idx := rp.find(url)
	if idx < 0 {
		rp.mu.Unlock()
		return fmt.Errorf("unknown route %q", url)
	}
	if rp.routes[idx].Protected && !rp.auth.IsAuthenticated() {
		idx = rp.find(rp.landing)
		if idx < 0 {
			rp.mu.Unlock()
			return fmt.Errorf("route %q requires a session and no landing route is registered", url)
		}
	}
	var prev structures.View
	if rp.current >= 0 {
		prev = rp.routes[rp.current].View
	}
	rp.current = idx
	next := rp.routes[idx].View
	rp.mu.Unlock()

	if prev != nil {
		prev.Unmount()
	}
	return next.Mount(ctx)
}

func (rp *RouterProvider) find(url string) int {
	for i, r := range rp.routes {
		if r.Url == url {
			return i
		}
	}
	return -1
}
