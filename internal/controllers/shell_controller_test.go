package controllers

import (
	"backlog/internal/api"
	"backlog/internal/models"
	"backlog/internal/providers"
	"backlog/internal/session"
	"backlog/internal/structures"
	"backlog/internal/testutil"
	"backlog/internal/views"
	"bytes"
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type shellFixture struct {
	backend  *testutil.FakeBackend
	storage  *testutil.MockStorage
	reloader providers.ReloaderInterface
	session  session.StoreInterface
	router   providers.RouterProviderInterface
	list     *views.GameListView
	out      *bytes.Buffer
	shell    *ShellController
}

// newShellFixture wires the whole client against a fake backend. input holds
// the answers to confirmation prompts.
func newShellFixture(t *testing.T, input string) *shellFixture {
	t.Helper()
	f := &shellFixture{
		backend:  testutil.NewFakeBackend(t),
		storage:  testutil.NewMockStorage(),
		reloader: providers.NewReloadProvider(),
		out:      &bytes.Buffer{},
	}
	logger := &testutil.MockLogger{}
	metrics := &testutil.MockMetrics{}
	console := providers.NewConsoleProvider(&structures.Console{In: strings.NewReader(input), Out: f.out})

	conf := &structures.Config{Api: structures.ApiConfig{BaseURL: f.backend.URL(), Origin: "http://localhost:8080"}}
	client, err := api.NewClient(conf, f.storage, f.reloader, metrics, logger)
	require.NoError(t, err)

	f.session = session.NewStore(client, f.storage, metrics, logger)
	f.router = providers.NewRouterProvider(f.session)
	form := views.NewGameForm(client, console, logger)
	f.list = views.NewGameListView(client, form, console, console, metrics, logger)
	stats := views.NewStatsView(client, f.session, f.router, logger)
	auth := views.NewAuthView(f.session, f.router, console, console, logger)

	f.router.Register(providers.RouteHome, f.list, true)
	f.router.Register(providers.RouteStats, stats, true)
	f.router.Register(providers.RouteLogin, auth, false)

	f.shell = NewShellController(console, f.router, f.reloader, f.session, client, f.list, stats, auth, logger)
	f.session.Restore()
	require.NoError(t, f.router.Navigate(context.Background(), providers.RouteHome))
	return f
}

func (f *shellFixture) run(lines ...string) string {
	f.out.Reset()
	for _, l := range lines {
		f.shell.Execute(context.Background(), l)
	}
	return f.out.String()
}

func TestShell_StartsOnLoginWithoutSession(t *testing.T) {
	f := newShellFixture(t, "")
	assert.Equal(t, providers.RouteLogin, f.router.Current())

	out := f.run("list")
	assert.Contains(t, out, "sign in first")
	assert.Equal(t, 0, f.backend.CallCount(http.MethodGet, "/games/"))
}

func TestShell_RegisterAddAndStats(t *testing.T) {
	f := newShellFixture(t, "")

	out := f.run(`register username=gamer1 email=gamer1@example.com password=secret1 confirm=secret1`)
	assert.Contains(t, out, "Welcome, gamer1")
	assert.Equal(t, providers.RouteHome, f.router.Current())

	out = f.run(`add title="Celeste" platform=PC genre=Platformer status=Playing`)
	assert.Contains(t, out, "Game created successfully")
	assert.Contains(t, out, "Celeste")
	assert.Contains(t, out, "1 games, 1 pending")

	out = f.run("stats")
	assert.Equal(t, providers.RouteStats, f.router.Current())
	assert.Contains(t, out, "Stats: 1 games")
	assert.Contains(t, out, "Playing 1")
}

func TestShell_EditKeepsHiddenFields(t *testing.T) {
	f := newShellFixture(t, "")
	f.backend.CreateUser("gamer1", "secret1")
	seeded := f.backend.Seed(models.Game{Title: "Hades", Platform: "PC", Genre: "Roguelike", Status: models.StatusPlaying, Progress: 80, Score: 9})
	f.run("login gamer1 secret1")

	out := f.run(`edit 1 status=Completed note="finally"`)
	assert.Contains(t, out, "Game updated successfully")

	stored, _ := f.backend.Game(seeded[0].ID)
	assert.Equal(t, models.StatusCompleted, stored.Status)
	assert.Equal(t, "finally", stored.PersonalNote)
	assert.Equal(t, 80, stored.Progress)
	assert.Equal(t, 9, stored.Score)
	assert.Nil(t, f.list.Snapshot().Editing)
}

func TestShell_EditAcceptsNamedID(t *testing.T) {
	f := newShellFixture(t, "")
	f.backend.CreateUser("gamer1", "secret1")
	seeded := f.backend.Seed(models.Game{Title: "Hades", Platform: "PC", Genre: "Roguelike", Status: models.StatusPlaying})
	f.run("login gamer1 secret1")

	out := f.run("edit id=1 status=Completed")
	assert.Contains(t, out, "Game updated successfully")
	assert.NotContains(t, out, "error:")

	stored, _ := f.backend.Game(seeded[0].ID)
	assert.Equal(t, models.StatusCompleted, stored.Status)
	assert.Nil(t, f.list.Snapshot().Editing)

	out = f.run("edit id=1")
	assert.Contains(t, out, "Editing #1")
	require.NotNil(t, f.list.Snapshot().Editing)
}

func TestShell_DeleteDeclinedMakesNoCall(t *testing.T) {
	f := newShellFixture(t, "n\n")
	f.backend.CreateUser("gamer1", "secret1")
	f.backend.Seed(models.Game{Title: "Hades", Platform: "PC", Genre: "Roguelike", Status: models.StatusPlaying})
	f.run("login username=gamer1 password=secret1")

	out := f.run("delete 1")
	assert.Contains(t, out, "Delete this game? [y/N]")
	assert.Equal(t, 0, f.backend.CallCount(http.MethodDelete, "/games/1"))
	assert.Len(t, f.list.Snapshot().Games, 1)
}

func TestShell_DeleteConfirmed(t *testing.T) {
	f := newShellFixture(t, "y\n")
	f.backend.CreateUser("gamer1", "secret1")
	f.backend.Seed(models.Game{Title: "Hades", Platform: "PC", Genre: "Roguelike", Status: models.StatusPlaying})
	f.run("login username=gamer1 password=secret1")

	out := f.run("delete 1")
	assert.Contains(t, out, "Game deleted")
	assert.Empty(t, f.list.Snapshot().Games)
}

func TestShell_UnauthorizedReloadsToLogin(t *testing.T) {
	f := newShellFixture(t, "")
	f.backend.CreateUser("gamer1", "secret1")
	f.run("login username=gamer1 password=secret1")
	require.True(t, f.session.IsAuthenticated())

	f.backend.RevokeTokens()
	out := f.run("list")

	assert.False(t, f.session.IsAuthenticated())
	assert.False(t, f.storage.Has(api.StorageKeyToken))
	assert.Equal(t, providers.RouteLogin, f.router.Current())
	assert.Equal(t, 1, strings.Count(out, "Your session has ended"))
	assert.Empty(t, f.list.Snapshot().Games)
}

func TestShell_ShowSearchFilter(t *testing.T) {
	f := newShellFixture(t, "")
	f.backend.CreateUser("gamer1", "secret1")
	f.backend.Seed(
		models.Game{Title: "Hollow Knight", Platform: "PC", Genre: "Metroidvania", Status: models.StatusBacklog},
		models.Game{Title: "Hades", Platform: "PC", Genre: "Roguelike", Status: models.StatusCompleted},
	)
	f.run("login username=gamer1 password=secret1")

	out := f.run("show 2")
	assert.Contains(t, out, "== Hades (#2) ==")

	out = f.run(`search "hollow kn"`)
	assert.Contains(t, out, "Hollow Knight")
	assert.NotContains(t, out, "Hades")

	out = f.run("filter status=Completed")
	assert.Contains(t, out, "Hades")

	out = f.run("filter genre=Puzzle")
	assert.Contains(t, out, "No matches.")

	out = f.run("filter status=Wishlist")
	assert.Contains(t, out, "error:")
}

func TestShell_LogoutAndWhoami(t *testing.T) {
	f := newShellFixture(t, "y\n")
	f.backend.CreateUser("gamer1", "secret1")
	f.run("login username=gamer1 password=secret1")

	out := f.run("whoami", "profile")
	assert.Contains(t, out, "gamer1 <gamer1@example.com> (id 1)")
	assert.Contains(t, out, "Token belongs to user id 1")

	out = f.run("logout")
	assert.Contains(t, out, "Signed out.")
	assert.False(t, f.session.IsAuthenticated())
	assert.Equal(t, providers.RouteLogin, f.router.Current())

	out = f.run("whoami")
	assert.Contains(t, out, "Not signed in.")
}

func TestShell_ErrorsAreReported(t *testing.T) {
	f := newShellFixture(t, "")

	assert.Contains(t, f.run("dance"), `unknown command "dance"`)
	assert.Contains(t, f.run(`login "gamer1`), "unterminated quote")
	assert.Contains(t, f.run("login gamer1"), "error:")
	assert.Contains(t, f.run("register username=ab email=x@example.com password=secret1 confirm=secret1"), "error:")

	f.backend.CreateUser("gamer1", "secret1")
	assert.Contains(t, f.run("login gamer1 wrong"), "error: invalid credentials")
	f.run("login gamer1 secret1")
	assert.Contains(t, f.run("delete abc"), `"abc" is not a game id`)
	assert.Contains(t, f.run("edit 42"), "game 42 is not in the list")
}

func TestShell_ServeStopsOnQuitAndEOF(t *testing.T) {
	f := newShellFixture(t, "help\nquit\nlist\n")
	require.NoError(t, f.shell.Serve(context.Background()))
	assert.Contains(t, f.out.String(), "login username=... password=...")
	assert.Equal(t, 0, f.backend.CallCount(http.MethodGet, "/games/"))

	g := newShellFixture(t, "help\n")
	require.NoError(t, g.shell.Serve(context.Background()))
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		line string
		want []string
	}{
		{"", nil},
		{"  list  ", []string{"list"}},
		{`add title="Hollow Knight" platform=PC`, []string{"add", "title=Hollow Knight", "platform=PC"}},
		{`search "a \"quoted\" word"`, []string{"search", `a "quoted" word`}},
		{`note=""`, []string{"note="}},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got, err := tokenize(tt.line)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := tokenize(`add title="open`)
	assert.Error(t, err)
}

func TestParseArgs(t *testing.T) {
	a := parseArgs([]string{"7", "Title=Celeste", "=x", "extra"})
	assert.Equal(t, "Celeste", a.named["title"])
	assert.Equal(t, []string{"7", "=x", "extra"}, a.positional)

	id, err := a.id()
	require.NoError(t, err)
	assert.Equal(t, uint(7), id)
	assert.Equal(t, "Celeste", a.get("title", 5))
	assert.Equal(t, "", a.get("missing", 9))
}

func TestUserMessage(t *testing.T) {
	assert.Equal(t, "login failed", userMessage(&models.AuthError{Message: "login failed"}))
	assert.Equal(t, "title: is required", userMessage(&models.ValidationError{Field: "title", Message: "is required"}))
	assert.Equal(t, "cannot reach the server", userMessage(&models.NetworkError{Method: "GET", Path: "/games/", Err: assert.AnError}))
	assert.Equal(t, "Game not found", userMessage(&models.TransportError{Status: 404, Message: "Game not found"}))
}
