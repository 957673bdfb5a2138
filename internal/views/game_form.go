package views

import (
	"backlog/internal/api"
	"backlog/internal/models"
	"backlog/internal/providers"
	"context"
	"fmt"
	"github.com/gookit/validate"
	"go.uber.org/atomic"
	"io"
	"sort"
	"strings"
	"sync"
	"time"
)

const (
	FormModeCreate = "create"
	FormModeEdit   = "edit"
)

// GameFormFields are the values a user types into the game form.
type GameFormFields struct {
	Title        string `json:"title" validate:"required"`
	Platform     string `json:"platform" validate:"required"`
	Genre        string `json:"genre" validate:"required"`
	Status       string `json:"status" validate:"required|in:Backlog,Playing,Completed,Dropped"`
	PersonalNote string `json:"note"`
}

func (f GameFormFields) Messages() map[string]string {
	return validate.MS{
		"required": "{field} is required",
		"in":       "{field} must be one of Backlog, Playing, Completed, Dropped",
	}
}

func blankGameFields() GameFormFields {
	return GameFormFields{Status: string(models.StatusBacklog)}
}

// GameForm creates a game or edits the one handed to Edit.
type GameForm struct {
	client   api.ClientInterface
	notifier Notifier
	logger   providers.Logger
	now      func() time.Time

	mu         sync.Mutex
	fields     GameFormFields
	editing    *models.Game
	onSaved    func(ctx context.Context, game models.Game)
	submitting atomic.Bool
}

func NewGameForm(client api.ClientInterface, notifier Notifier, logger providers.Logger) *GameForm {
	return &GameForm{
		client:   client,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
		fields:   blankGameFields(),
	}
}

// OnSaved sets the callback receiving the server record after a successful
// submit.
func (f *GameForm) OnSaved(fn func(ctx context.Context, game models.Game)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.onSaved = fn
}

// Edit switches to edit mode prefilled from g. A nil g returns to create mode
// with blank fields.
func (f *GameForm) Edit(g *models.Game) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if g == nil {
		f.editing = nil
		f.fields = blankGameFields()
		return
	}
	cp := *g
	f.editing = &cp
	f.fields = GameFormFields{
		Title:        g.Title,
		Platform:     g.Platform,
		Genre:        g.Genre,
		Status:       string(g.Status),
		PersonalNote: g.PersonalNote,
	}
}

func (f *GameForm) Mode() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.editing != nil {
		return FormModeEdit
	}
	return FormModeCreate
}

func (f *GameForm) Fields() GameFormFields {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fields
}

func (f *GameForm) Submitting() bool {
	return f.submitting.Load()
}

// Apply sets form fields by name. Unknown names are rejected before any field
// changes.
func (f *GameForm) Apply(values map[string]string) error {
	for k := range values {
		switch k {
		case "title", "platform", "genre", "status", "note":
		default:
			return fmt.Errorf("unknown game field %q", k)
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for k, v := range values {
		switch k {
		case "title":
			f.fields.Title = v
		case "platform":
			f.fields.Platform = v
		case "genre":
			f.fields.Genre = v
		case "status":
			f.fields.Status = v
		case "note":
			f.fields.PersonalNote = v
		}
	}
	return nil
}

// Submit validates the fields and sends them. In edit mode the fields the
// form does not show are carried over from the record being edited.
func (f *GameForm) Submit(ctx context.Context) (*models.Game, error) {
	f.mu.Lock()
	fields := f.fields
	var original *models.Game
	if f.editing != nil {
		cp := *f.editing
		original = &cp
	}
	onSaved := f.onSaved
	f.mu.Unlock()

	fields.Title = strings.TrimSpace(fields.Title)
	fields.Platform = strings.TrimSpace(fields.Platform)
	fields.Genre = strings.TrimSpace(fields.Genre)
	if err := validateStruct(&fields); err != nil {
		return nil, err
	}

	f.submitting.Store(true)
	defer f.submitting.Store(false)

	in := f.buildInput(fields, original)
	var (
		resp *api.Response[models.Game]
		err  error
	)
	if original != nil {
		resp, err = f.client.UpdateGame(ctx, original.ID, in)
	} else {
		resp, err = f.client.CreateGame(ctx, in)
	}
	if err != nil {
		f.logger.Errorf(providers.TypeView, "Failed to save game %q: %s", fields.Title, err)
		f.notifier.Error("Failed to save game")
		return nil, err
	}

	saved := resp.Data
	if original != nil {
		f.notifier.Info("Game updated successfully")
	} else {
		f.notifier.Info("Game created successfully")
		f.mu.Lock()
		f.fields = blankGameFields()
		f.mu.Unlock()
	}
	if onSaved != nil {
		onSaved(ctx, saved)
	}
	return &saved, nil
}

func (f *GameForm) buildInput(fields GameFormFields, original *models.Game) *models.GameInput {
	in := &models.GameInput{
		Title:        fields.Title,
		Platform:     fields.Platform,
		Genre:        fields.Genre,
		Status:       models.GameStatus(fields.Status),
		PersonalNote: fields.PersonalNote,
	}
	if original != nil {
		in.Progress = original.Progress
		in.HoursPlayed = original.HoursPlayed
		in.Score = original.Score
		in.StartedAt = original.StartedAt
		in.FinishedAt = original.FinishedAt
		in.CoverURL = original.CoverURL
		return in
	}
	now := f.now()
	in.StartedAt = &now
	in.FinishedAt = &now
	return in
}

func (f *GameForm) Render(w io.Writer) {
	f.mu.Lock()
	fields := f.fields
	editing := f.editing
	f.mu.Unlock()

	if editing != nil {
		fmt.Fprintf(w, "Editing #%d: title=%q platform=%q genre=%q status=%s note=%q\n",
			editing.ID, fields.Title, fields.Platform, fields.Genre, fields.Status, fields.PersonalNote)
		return
	}
	fmt.Fprintln(w, "New game: add title=... platform=... genre=... [status=Backlog] [note=...]")
}

// validateStruct runs the struct tags of s and reports the first violation.
func validateStruct(s interface{}) error {
	v := validate.Struct(s)
	if v.Validate() {
		return nil
	}
	fields := make([]string, 0, len(v.Errors))
	for field := range v.Errors {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	for _, field := range fields {
		msgs := v.Errors.Field(field)
		rules := make([]string, 0, len(msgs))
		for rule := range msgs {
			rules = append(rules, rule)
		}
		sort.Strings(rules)
		for _, rule := range rules {
			return &models.ValidationError{Field: field, Message: msgs[rule]}
		}
	}
	return &models.ValidationError{Message: v.Errors.One()}
}
