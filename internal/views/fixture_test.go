package views

import (
	"backlog/internal/api"
	"backlog/internal/models"
	"backlog/internal/providers"
	"backlog/internal/session"
	"backlog/internal/structures"
	"backlog/internal/testutil"
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

type viewFixture struct {
	backend   *testutil.FakeBackend
	storage   *testutil.MockStorage
	metrics   *testutil.MockMetrics
	logger    *testutil.MockLogger
	reloader  providers.ReloaderInterface
	notifier  *testutil.MockNotifier
	confirmer *testutil.MockConfirmer
	nav       *testutil.MockNavigator
	client    api.ClientInterface
	session   session.StoreInterface
	form      *GameForm
	list      *GameListView
}

func newViewFixture(t *testing.T) *viewFixture {
	t.Helper()
	f := &viewFixture{
		backend:   testutil.NewFakeBackend(t),
		storage:   testutil.NewMockStorage(),
		metrics:   &testutil.MockMetrics{},
		logger:    &testutil.MockLogger{},
		reloader:  providers.NewReloadProvider(),
		notifier:  &testutil.MockNotifier{},
		confirmer: &testutil.MockConfirmer{Answer: true},
		nav:       &testutil.MockNavigator{},
	}
	conf := &structures.Config{Api: structures.ApiConfig{BaseURL: f.backend.URL(), Origin: "http://localhost:8080"}}
	client, err := api.NewClient(conf, f.storage, f.reloader, f.metrics, f.logger)
	require.NoError(t, err)
	f.client = client
	f.session = session.NewStore(client, f.storage, f.metrics, f.logger)
	f.form = NewGameForm(client, f.notifier, f.logger)
	f.list = NewGameListView(client, f.form, f.notifier, f.confirmer, f.metrics, f.logger)
	return f
}

// signIn creates gamer1 on the backend and logs the session in.
func (f *viewFixture) signIn(t *testing.T) {
	t.Helper()
	f.backend.CreateUser("gamer1", "secret1")
	require.NoError(t, f.session.Login(context.Background(), &models.LoginRequest{Username: "gamer1", Password: "secret1"}))
}

func (f *viewFixture) seed(games ...models.Game) []models.Game {
	return f.backend.Seed(games...)
}

func sampleGames() []models.Game {
	return []models.Game{
		{Title: "Celeste", Platform: "PC", Genre: "Platformer", Status: models.StatusPlaying, Progress: 40, HoursPlayed: 12},
		{Title: "Hades", Platform: "Switch", Genre: "Roguelike", Status: models.StatusCompleted, Progress: 100, HoursPlayed: 60},
		{Title: "Outer Wilds", Platform: "PC", Genre: "Adventure", Status: models.StatusBacklog},
	}
}
