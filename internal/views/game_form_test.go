package views

import (
	"backlog/internal/models"
	"bytes"
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGameForm_RequiredFieldsBlockSubmit(t *testing.T) {
	tests := []struct {
		name   string
		values map[string]string
		field  string
	}{
		{"no title", map[string]string{"platform": "PC", "genre": "RPG"}, "title"},
		{"no platform", map[string]string{"title": "Celeste", "genre": "RPG"}, "platform"},
		{"no genre", map[string]string{"title": "Celeste", "platform": "PC"}, "genre"},
		{"blank title", map[string]string{"title": "   ", "platform": "PC", "genre": "RPG"}, "title"},
		{"blank platform", map[string]string{"title": "Celeste", "platform": "\t", "genre": "RPG"}, "platform"},
		{"blank genre", map[string]string{"title": "Celeste", "platform": "PC", "genre": " \n "}, "genre"},
		{"bad status", map[string]string{"title": "Celeste", "platform": "PC", "genre": "RPG", "status": "Wishlist"}, "status"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newViewFixture(t)
			f.signIn(t)
			require.NoError(t, f.form.Apply(tt.values))

			_, err := f.form.Submit(context.Background())
			var ve *models.ValidationError
			require.True(t, errors.As(err, &ve), "got %v", err)
			assert.True(t, strings.EqualFold(tt.field, ve.Field), "field %q", ve.Field)
			assert.Equal(t, 0, f.backend.CallCount(http.MethodPost, "/games/"))
			assert.Empty(t, f.notifier.Errors)
		})
	}
}

func TestGameForm_CreateDefaultsAndReset(t *testing.T) {
	f := newViewFixture(t)
	f.signIn(t)
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	f.form.now = func() time.Time { return now }

	var got []models.Game
	f.form.OnSaved(func(_ context.Context, g models.Game) { got = append(got, g) })

	require.NoError(t, f.form.Apply(map[string]string{"title": "Celeste", "platform": "PC", "genre": "Platformer"}))
	saved, err := f.form.Submit(context.Background())
	require.NoError(t, err)

	stored, ok := f.backend.Game(saved.ID)
	require.True(t, ok)
	assert.Equal(t, models.StatusBacklog, stored.Status)
	assert.Zero(t, stored.Progress)
	assert.Zero(t, stored.HoursPlayed)
	assert.Zero(t, stored.Score)
	assert.Empty(t, stored.CoverURL)
	require.NotNil(t, stored.StartedAt)
	require.NotNil(t, stored.FinishedAt)
	assert.True(t, now.Equal(*stored.StartedAt))
	assert.True(t, now.Equal(*stored.FinishedAt))

	require.Len(t, got, 1)
	assert.Equal(t, saved.ID, got[0].ID)
	assert.Equal(t, blankGameFields(), f.form.Fields())
	assert.Equal(t, []string{"Game created successfully"}, f.notifier.Infos)
}

func TestGameForm_EditCarriesHiddenFields(t *testing.T) {
	f := newViewFixture(t)
	f.signIn(t)
	started := time.Date(2023, 5, 1, 0, 0, 0, 0, time.UTC)
	seeded := f.seed(models.Game{
		Title: "Hades", Platform: "Switch", Genre: "Roguelike", Status: models.StatusPlaying,
		Progress: 70, HoursPlayed: 41.5, Score: 9, StartedAt: &started, CoverURL: "https://img/hades.png",
		PersonalNote: "one more run",
	})

	var saved []models.Game
	f.form.OnSaved(func(_ context.Context, g models.Game) { saved = append(saved, g) })
	f.form.Edit(&seeded[0])
	assert.Equal(t, FormModeEdit, f.form.Mode())
	assert.Equal(t, "one more run", f.form.Fields().PersonalNote)

	require.NoError(t, f.form.Apply(map[string]string{"status": "Completed", "note": "done"}))
	_, err := f.form.Submit(context.Background())
	require.NoError(t, err)

	stored, _ := f.backend.Game(seeded[0].ID)
	assert.Equal(t, models.StatusCompleted, stored.Status)
	assert.Equal(t, "done", stored.PersonalNote)
	assert.Equal(t, 70, stored.Progress)
	assert.Equal(t, 41.5, stored.HoursPlayed)
	assert.Equal(t, 9, stored.Score)
	assert.Equal(t, "https://img/hades.png", stored.CoverURL)
	require.NotNil(t, stored.StartedAt)
	assert.True(t, started.Equal(*stored.StartedAt))
	assert.Nil(t, stored.FinishedAt)

	require.Len(t, saved, 1)
	assert.Equal(t, FormModeEdit, f.form.Mode())
	assert.Equal(t, "done", f.form.Fields().PersonalNote)
	assert.Equal(t, []string{"Game updated successfully"}, f.notifier.Infos)
}

func TestGameForm_FailureKeepsInput(t *testing.T) {
	f := newViewFixture(t)
	f.signIn(t)
	f.backend.FailNext(http.MethodPost, "/games/", http.StatusInternalServerError)
	called := false
	f.form.OnSaved(func(context.Context, models.Game) { called = true })

	values := map[string]string{"title": "Celeste", "platform": "PC", "genre": "Platformer", "note": "later"}
	require.NoError(t, f.form.Apply(values))
	_, err := f.form.Submit(context.Background())
	require.Error(t, err)

	assert.False(t, called)
	assert.Equal(t, []string{"Failed to save game"}, f.notifier.Errors)
	assert.Equal(t, "Celeste", f.form.Fields().Title)
	assert.Equal(t, "later", f.form.Fields().PersonalNote)
	assert.False(t, f.form.Submitting())
}

func TestGameForm_EditNilReturnsToCreate(t *testing.T) {
	f := newViewFixture(t)
	f.form.Edit(&models.Game{ID: 3, Title: "Tunic", Status: models.StatusDropped})
	assert.Equal(t, "Tunic", f.form.Fields().Title)

	f.form.Edit(nil)
	assert.Equal(t, FormModeCreate, f.form.Mode())
	assert.Equal(t, blankGameFields(), f.form.Fields())
}

func TestGameForm_ApplyRejectsUnknownField(t *testing.T) {
	f := newViewFixture(t)
	err := f.form.Apply(map[string]string{"title": "Celeste", "rating": "5"})
	require.Error(t, err)
	assert.Empty(t, f.form.Fields().Title)
}

func TestGameForm_Render(t *testing.T) {
	f := newViewFixture(t)
	var out bytes.Buffer
	f.form.Render(&out)
	assert.Contains(t, out.String(), "New game")

	out.Reset()
	f.form.Edit(&models.Game{ID: 3, Title: "Tunic"})
	f.form.Render(&out)
	assert.Contains(t, out.String(), `Editing #3: title="Tunic"`)
}
