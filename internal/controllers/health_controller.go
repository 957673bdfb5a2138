package controllers

import (
	"backlog/internal/providers"
	"backlog/internal/session"
	"backlog/internal/views"
	"fmt"
	json "github.com/goccy/go-json"
	"net/http"
	"sync"
	"time"
)

type HealthController struct {
	session   session.StoreInterface
	reloader  providers.ReloaderInterface
	router    providers.RouterProviderInterface
	startTime time.Time

	mu         sync.Mutex
	gamesHeld  int
	statsStale bool
}

type healthResponse struct {
	Status        string  `json:"status"`
	Uptime        string  `json:"uptime"`
	UptimeSeconds float64 `json:"uptime_seconds"`
	Authenticated bool    `json:"authenticated"`
	Route         string  `json:"route"`
	GamesHeld     int     `json:"games_held"`
	StatsStale    bool    `json:"stats_stale"`
	Reloads       int64   `json:"reloads"`
}

func (hc *HealthController) Health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	uptime := time.Since(hc.startTime)
	hc.mu.Lock()
	gamesHeld, statsStale := hc.gamesHeld, hc.statsStale
	hc.mu.Unlock()
	resp := healthResponse{
		Status:        "ok",
		Uptime:        formatDuration(uptime),
		UptimeSeconds: uptime.Seconds(),
		Authenticated: hc.session.IsAuthenticated(),
		Route:         hc.router.Current(),
		GamesHeld:     gamesHeld,
		StatsStale:    statsStale,
		Reloads:       hc.reloader.Count(),
	}

	gson, err := json.Marshal(resp)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(gson)
}

func formatDuration(d time.Duration) string {
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60
	return fmt.Sprintf("%dh%dm%ds", hours, minutes, seconds)
}

func NewHealthController(
	store session.StoreInterface,
	list *views.GameListView,
	reloader providers.ReloaderInterface,
	router providers.RouterProviderInterface,
) *HealthController {
	hc := &HealthController{
		session:   store,
		reloader:  reloader,
		router:    router,
		startTime: time.Now(),
	}
	hc.observe(list.Snapshot())
	list.Subscribe(hc.observe)
	return hc
}

// observe keeps the list figures reported by Health current.
func (hc *HealthController) observe(s views.ListState) {
	hc.mu.Lock()
	hc.gamesHeld = len(s.Games)
	hc.statsStale = s.StatsStale
	hc.mu.Unlock()
}
