package views

import (
	"backlog/internal/api"
	"backlog/internal/models"
	"backlog/internal/providers"
	"backlog/internal/session"
	"context"
	"fmt"
	"io"
	"sync"
)

type StatsStatus int

const (
	StatsIdle StatsStatus = iota
	StatsLoading
	StatsReady
	StatsUnavailable
)

func (s StatsStatus) String() string {
	switch s {
	case StatsLoading:
		return "loading"
	case StatsReady:
		return "ready"
	case StatsUnavailable:
		return "unavailable"
	default:
		return "idle"
	}
}

// StatsView shows the server's stats snapshot. It follows the session: losing
// it redirects to the landing route, regaining it triggers a fetch.
type StatsView struct {
	client  api.ClientInterface
	session session.StoreInterface
	nav     Navigator
	logger  providers.Logger

	mu          sync.Mutex
	status      StatsStatus
	stats       *models.Stats
	authed      bool
	unsubscribe func()
}

func NewStatsView(client api.ClientInterface, store session.StoreInterface, nav Navigator, logger providers.Logger) *StatsView {
	return &StatsView{client: client, session: store, nav: nav, logger: logger}
}

func (v *StatsView) Mount(ctx context.Context) error {
	unsubscribe := v.session.Subscribe(func(st session.State) {
		v.onSession(ctx, st.IsAuthenticated())
	})
	authed := v.session.IsAuthenticated()

	v.mu.Lock()
	v.unsubscribe = unsubscribe
	v.authed = authed
	v.mu.Unlock()

	if !authed {
		return v.nav.Navigate(ctx, providers.RouteLogin)
	}
	v.fetch(ctx)
	return nil
}

func (v *StatsView) Unmount() {
	v.mu.Lock()
	unsubscribe := v.unsubscribe
	v.unsubscribe = nil
	v.status = StatsIdle
	v.stats = nil
	v.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
}

func (v *StatsView) onSession(ctx context.Context, authed bool) {
	v.mu.Lock()
	was := v.authed
	v.authed = authed
	v.mu.Unlock()

	if !authed {
		if err := v.nav.Navigate(ctx, providers.RouteLogin); err != nil {
			v.logger.Errorf(providers.TypeView, "Redirect from stats failed: %s", err)
		}
		return
	}
	if !was {
		v.fetch(ctx)
	}
}

// fetch has no retry; a failure stays unavailable until the next mount or
// sign-in.
func (v *StatsView) fetch(ctx context.Context) {
	v.mu.Lock()
	v.status = StatsLoading
	v.mu.Unlock()

	resp, err := v.client.GetStats(ctx)

	v.mu.Lock()
	defer v.mu.Unlock()
	if err != nil {
		v.logger.Errorf(providers.TypeView, "Error loading stats: %s", err)
		v.status = StatsUnavailable
		v.stats = nil
		return
	}
	st := resp.Data
	v.stats = &st
	v.status = StatsReady
}

func (v *StatsView) Status() StatsStatus {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.status
}

func (v *StatsView) Stats() *models.Stats {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.stats == nil {
		return nil
	}
	st := *v.stats
	return &st
}

func (v *StatsView) Render(w io.Writer) {
	switch v.Status() {
	case StatsLoading:
		fmt.Fprintln(w, "Loading stats...")
	case StatsUnavailable:
		fmt.Fprintln(w, "Stats are unavailable.")
	case StatsReady:
		renderStats(w, v.Stats(), false)
	default:
		fmt.Fprintln(w, "No stats loaded.")
	}
}
