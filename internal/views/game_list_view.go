package views

import (
	"backlog/internal/api"
	"backlog/internal/models"
	"backlog/internal/observable"
	"backlog/internal/providers"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
)

// ListState is a copy of what the list view holds.
type ListState struct {
	Games      []models.Game
	Stats      *models.Stats
	StatsStale bool
	Expanded   *models.Game
	Editing    *models.Game
}

// GameListView owns the held game list, the displayed stats and the detail
// panel. The list is kept in sync by merging server responses; it is never
// re-fetched after a mutation.
type GameListView struct {
	client    api.ClientInterface
	form      *GameForm
	notifier  Notifier
	confirmer Confirmer
	metrics   providers.MetricsProviderInterface
	logger    providers.Logger

	mu         sync.Mutex
	games      []models.Game
	stats      *models.Stats
	statsStale bool
	expanded   *models.Game
	editing    *models.Game
	state      *observable.Observable[ListState]
}

func NewGameListView(
	client api.ClientInterface,
	form *GameForm,
	notifier Notifier,
	confirmer Confirmer,
	metrics providers.MetricsProviderInterface,
	logger providers.Logger,
) *GameListView {
	v := &GameListView{
		client:    client,
		form:      form,
		notifier:  notifier,
		confirmer: confirmer,
		metrics:   metrics,
		logger:    logger,
		state:     observable.New[ListState](),
	}
	form.OnSaved(v.OnGameAddedOrUpdated)
	return v
}

func (v *GameListView) Form() *GameForm {
	return v.form
}

func (v *GameListView) Mount(ctx context.Context) error {
	v.Load(ctx)
	return nil
}

func (v *GameListView) Unmount() {
	v.Reset()
}

// Load fetches games and stats concurrently. Each result is applied as soon
// as it arrives; a failure leaves only its own section empty.
func (v *GameListView) Load(ctx context.Context) {
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		resp, err := v.client.ListGames(ctx)
		if err != nil {
			v.logger.Errorf(providers.TypeView, "Error loading games: %s", err)
			return
		}
		v.mu.Lock()
		v.games = resp.Data
		n := len(v.games)
		v.mu.Unlock()
		v.metrics.SetGamesHeld(n)
		v.publish()
	}()

	go func() {
		defer wg.Done()
		v.refreshStats(ctx)
	}()

	wg.Wait()
}

// OnGameAddedOrUpdated merges game by id, replacing the held entry or
// appending it, then refreshes the stats.
func (v *GameListView) OnGameAddedOrUpdated(ctx context.Context, game models.Game) {
	v.mu.Lock()
	replaced := false
	for i := range v.games {
		if v.games[i].ID == game.ID {
			v.games[i] = game
			replaced = true
			break
		}
	}
	if !replaced {
		v.games = append(v.games, game)
	}
	if v.expanded != nil && v.expanded.ID == game.ID {
		g := game
		v.expanded = &g
	}
	v.editing = nil
	n := len(v.games)
	v.mu.Unlock()

	v.form.Edit(nil)
	v.metrics.SetGamesHeld(n)
	v.publish()
	v.refreshStats(ctx)
}

// OnDelete asks for confirmation, deletes on the server and only then drops
// the held entry. It reports whether the game was deleted.
func (v *GameListView) OnDelete(ctx context.Context, id uint) bool {
	if !v.confirmer.Confirm("Delete this game?") {
		return false
	}
	if _, err := v.client.DeleteGame(ctx, id); err != nil {
		v.logger.Errorf(providers.TypeView, "Error deleting game %d: %s", id, err)
		v.notifier.Error("Could not delete the game")
		return false
	}

	v.mu.Lock()
	kept := v.games[:0:0]
	for _, g := range v.games {
		if g.ID != id {
			kept = append(kept, g)
		}
	}
	v.games = kept
	if v.expanded != nil && v.expanded.ID == id {
		v.expanded = nil
	}
	wasEditing := v.editing != nil && v.editing.ID == id
	if wasEditing {
		v.editing = nil
	}
	n := len(v.games)
	v.mu.Unlock()

	if wasEditing {
		v.form.Edit(nil)
	}
	v.metrics.SetGamesHeld(n)
	v.notifier.Info("Game deleted")
	v.publish()
	v.refreshStats(ctx)
	return true
}

// OnViewDetails toggles the detail panel. Selecting the expanded game
// collapses it without a request; any other id is fetched first.
func (v *GameListView) OnViewDetails(ctx context.Context, id uint) {
	v.mu.Lock()
	if v.expanded != nil && v.expanded.ID == id {
		v.expanded = nil
		v.mu.Unlock()
		v.publish()
		return
	}
	v.mu.Unlock()

	resp, err := v.client.GetGame(ctx, id)
	if err != nil {
		v.logger.Errorf(providers.TypeView, "Error loading game %d: %s", id, err)
		v.notifier.Error("Could not load the game details")
		return
	}
	g := resp.Data
	v.mu.Lock()
	v.expanded = &g
	v.mu.Unlock()
	v.publish()
}

// StartEdit hands the held game id to the form.
func (v *GameListView) StartEdit(id uint) error {
	v.mu.Lock()
	var found *models.Game
	for i := range v.games {
		if v.games[i].ID == id {
			g := v.games[i]
			found = &g
			break
		}
	}
	if found == nil {
		v.mu.Unlock()
		return fmt.Errorf("game %d is not in the list", id)
	}
	v.editing = found
	v.mu.Unlock()

	v.form.Edit(found)
	v.publish()
	return nil
}

func (v *GameListView) CancelEdit() {
	v.mu.Lock()
	v.editing = nil
	v.mu.Unlock()
	v.form.Edit(nil)
	v.publish()
}

// Search queries the server by title. The held list is left alone.
func (v *GameListView) Search(ctx context.Context, title string) ([]models.Game, error) {
	resp, err := v.client.SearchGames(ctx, title)
	if err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// Filter queries the server by "status" or "genre". The held list is left
// alone.
func (v *GameListView) Filter(ctx context.Context, field, value string) ([]models.Game, error) {
	var (
		resp *api.Response[[]models.Game]
		err  error
	)
	switch strings.ToLower(field) {
	case "status":
		status, perr := models.ParseGameStatus(value)
		if perr != nil {
			return nil, &models.ValidationError{Field: "status", Message: perr.Error()}
		}
		resp, err = v.client.FilterGamesByStatus(ctx, status)
	case "genre":
		resp, err = v.client.FilterGamesByGenre(ctx, value)
	default:
		return nil, &models.ValidationError{Field: field, Message: "filter by status or genre"}
	}
	if err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// Reset drops everything the view holds.
func (v *GameListView) Reset() {
	v.mu.Lock()
	v.games = nil
	v.stats = nil
	v.statsStale = false
	v.expanded = nil
	v.editing = nil
	v.mu.Unlock()

	v.form.Edit(nil)
	v.metrics.SetGamesHeld(0)
	v.publish()
}

func (v *GameListView) Snapshot() ListState {
	v.mu.Lock()
	defer v.mu.Unlock()
	s := ListState{
		Games:      append([]models.Game(nil), v.games...),
		StatsStale: v.statsStale,
	}
	if v.stats != nil {
		st := *v.stats
		s.Stats = &st
	}
	if v.expanded != nil {
		g := *v.expanded
		s.Expanded = &g
	}
	if v.editing != nil {
		g := *v.editing
		s.Editing = &g
	}
	return s
}

// Subscribe delivers a snapshot after every state change, one delivery at a
// time.
func (v *GameListView) Subscribe(fn func(ListState)) func() {
	return v.state.Subscribe(fn)
}

func (v *GameListView) Render(w io.Writer) {
	s := v.Snapshot()
	RenderGames(w, s.Games)
	if s.Expanded != nil {
		fmt.Fprintln(w)
		renderGameDetail(w, s.Expanded)
	}
	fmt.Fprintln(w)
	renderStats(w, s.Stats, s.StatsStale)
	v.form.Render(w)
}

// refreshStats replaces the stats snapshot. A failure keeps the previous
// snapshot and marks it stale.
func (v *GameListView) refreshStats(ctx context.Context) {
	resp, err := v.client.GetStats(ctx)
	v.mu.Lock()
	if err != nil {
		v.statsStale = v.stats != nil
		v.mu.Unlock()
		v.logger.Warnf(providers.TypeView, "Error refreshing stats: %s", err)
		v.publish()
		return
	}
	st := resp.Data
	v.stats = &st
	v.statsStale = false
	v.mu.Unlock()
	v.publish()
}

func (v *GameListView) publish() {
	v.state.PublishFunc(v.Snapshot)
}
