package controllers

import (
	"backlog/internal/api"
	"backlog/internal/models"
	"backlog/internal/providers"
	"backlog/internal/session"
	"backlog/internal/views"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"
)

var errQuit = errors.New("quit")

type command struct {
	usage     string
	summary   string
	protected bool
	run       func(ctx context.Context, a args) error
}

// ShellController reads commands from the console and drives the views.
type ShellController struct {
	console  providers.ConsoleProviderInterface
	router   providers.RouterProviderInterface
	reloader providers.ReloaderInterface
	session  session.StoreInterface
	client   api.ClientInterface
	list     *views.GameListView
	stats    *views.StatsView
	auth     *views.AuthView
	logger   providers.Logger

	commands map[string]*command
}

func NewShellController(
	console providers.ConsoleProviderInterface,
	router providers.RouterProviderInterface,
	reloader providers.ReloaderInterface,
	store session.StoreInterface,
	client api.ClientInterface,
	list *views.GameListView,
	stats *views.StatsView,
	auth *views.AuthView,
	logger providers.Logger,
) *ShellController {
	sc := &ShellController{
		console:  console,
		router:   router,
		reloader: reloader,
		session:  store,
		client:   client,
		list:     list,
		stats:    stats,
		auth:     auth,
		logger:   logger,
	}
	sc.commands = map[string]*command{
		"help":     {usage: "help", summary: "show this help", run: sc.help},
		"login":    {usage: "login username=... password=...", summary: "sign in", run: sc.login},
		"register": {usage: "register username=... email=... password=... confirm=... [first=...] [last=...]", summary: "create an account", run: sc.register},
		"logout":   {usage: "logout", summary: "sign out", run: sc.logout},
		"whoami":   {usage: "whoami", summary: "show the signed in user", run: sc.whoami},
		"profile":  {usage: "profile", summary: "ask the server who the token belongs to", protected: true, run: sc.profile},
		"list":     {usage: "list", summary: "reload the game list", protected: true, run: sc.home},
		"home":     {usage: "home", summary: "go to the game list", protected: true, run: sc.home},
		"add":      {usage: "add title=... platform=... genre=... [status=...] [note=...]", summary: "create a game", protected: true, run: sc.add},
		"edit":     {usage: "edit <id> [field=value...]", summary: "edit a game; without fields only selects it", protected: true, run: sc.edit},
		"save":     {usage: "save [field=value...]", summary: "submit the form", protected: true, run: sc.save},
		"cancel":   {usage: "cancel", summary: "leave edit mode", protected: true, run: sc.cancel},
		"delete":   {usage: "delete <id>", summary: "delete a game", protected: true, run: sc.delete},
		"show":     {usage: "show <id>", summary: "toggle the detail panel of a game", protected: true, run: sc.show},
		"search":   {usage: "search <title>", summary: "search games by title", protected: true, run: sc.search},
		"filter":   {usage: "filter status=...|genre=...", summary: "filter games by status or genre", protected: true, run: sc.filter},
		"stats":    {usage: "stats", summary: "show statistics", protected: true, run: sc.showStats},
		"quit":     {usage: "quit", summary: "exit", run: func(context.Context, args) error { return errQuit }},
	}
	sc.commands["exit"] = sc.commands["quit"]
	return sc
}

// Serve runs the read-eval loop until quit, end of input or ctx is done.
func (sc *ShellController) Serve(ctx context.Context) error {
	sc.render()
	for {
		if ctx.Err() != nil {
			return nil
		}
		sc.console.Printf("%s> ", sc.prompt())
		line, err := sc.console.ReadLine()
		if errors.Is(err, io.EOF) {
			sc.console.Printf("\n")
			return nil
		}
		if err != nil {
			return fmt.Errorf("read command: %w", err)
		}
		if quit := sc.Execute(ctx, line); quit {
			return nil
		}
	}
}

// Execute runs one command line and reports whether the shell should stop.
// Pending reload requests are handled afterwards.
func (sc *ShellController) Execute(ctx context.Context, line string) bool {
	defer sc.drainReload(ctx)

	tokens, err := tokenize(line)
	if err != nil {
		sc.console.Error(err.Error())
		return false
	}
	if len(tokens) == 0 {
		return false
	}
	name := strings.ToLower(tokens[0])
	cmd, ok := sc.commands[name]
	if !ok {
		sc.console.Error(fmt.Sprintf("unknown command %q, try help", name))
		return false
	}
	if cmd.protected && !sc.session.IsAuthenticated() {
		sc.console.Error("sign in first: login or register")
		return false
	}

	err = cmd.run(ctx, parseArgs(tokens[1:]))
	if errors.Is(err, errQuit) {
		return true
	}
	if err != nil {
		sc.logger.Debugf(providers.TypeView, "Command %s failed: %s", name, err)
		sc.console.Error(userMessage(err))
	}
	return false
}

// drainReload performs a requested reload: the session is restored from
// storage again, the list is dropped and the root route is re-entered.
func (sc *ShellController) drainReload(ctx context.Context) {
	select {
	case <-sc.reloader.Requested():
	default:
		return
	}
	sc.logger.Infof(providers.TypeApp, "Reloading after session invalidation")
	sc.session.Restore()
	sc.list.Reset()
	if err := sc.router.Navigate(ctx, providers.RouteHome); err != nil {
		sc.logger.Errorf(providers.TypeApp, "Reload navigation failed: %s", err)
	}
	if !sc.session.IsAuthenticated() {
		sc.console.Info("Your session has ended. Please sign in again.")
	}
	sc.render()
}

func (sc *ShellController) prompt() string {
	if u := sc.session.User(); u != nil {
		return "backlog(" + u.Username + ")"
	}
	return "backlog"
}

func (sc *ShellController) render() {
	if v := sc.router.CurrentView(); v != nil {
		v.Render(sc.console.Out())
	}
}

// ensureHome mounts the list route unless it is already current.
func (sc *ShellController) ensureHome(ctx context.Context) error {
	if sc.router.Current() == providers.RouteHome {
		return nil
	}
	return sc.router.Navigate(ctx, providers.RouteHome)
}

func (sc *ShellController) help(context.Context, args) error {
	names := make([]string, 0, len(sc.commands))
	for name := range sc.commands {
		if name != "exit" {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	for _, name := range names {
		cmd := sc.commands[name]
		sc.console.Printf("  %-70s %s\n", cmd.usage, cmd.summary)
	}
	return nil
}

func (sc *ShellController) login(ctx context.Context, a args) error {
	form := views.LoginForm{Username: a.get("username", 0), Password: a.get("password", 1)}
	if err := sc.auth.Login(ctx, form); err != nil {
		return err
	}
	sc.render()
	return nil
}

func (sc *ShellController) register(ctx context.Context, a args) error {
	form := views.RegisterForm{
		Username:        a.get("username", 0),
		Email:           a.get("email", 1),
		Password:        a.get("password", 2),
		ConfirmPassword: a.get("confirm", 3),
		FirstName:       a.named["first"],
		LastName:        a.named["last"],
	}
	if err := sc.auth.Register(ctx, form); err != nil {
		return err
	}
	sc.render()
	return nil
}

func (sc *ShellController) logout(ctx context.Context, _ args) error {
	done, err := sc.auth.Logout(ctx)
	if err != nil {
		return err
	}
	if done {
		sc.console.Info("Signed out.")
		sc.render()
	}
	return nil
}

func (sc *ShellController) whoami(context.Context, args) error {
	u := sc.session.User()
	if u == nil {
		sc.console.Info("Not signed in.")
		return nil
	}
	line := fmt.Sprintf("%s <%s> (id %d)", u.DisplayName(), u.Email, u.ID)
	if exp, ok := session.TokenExpiry(sc.session.Token()); ok {
		line += ", token expires " + exp.Local().Format(time.RFC1123)
	}
	sc.console.Info(line)
	return nil
}

func (sc *ShellController) profile(ctx context.Context, _ args) error {
	resp, err := sc.client.GetProfile(ctx)
	if err != nil {
		return err
	}
	sc.console.Info(fmt.Sprintf("Token belongs to user id %d", resp.Data.ID()))
	return nil
}

func (sc *ShellController) home(ctx context.Context, _ args) error {
	if err := sc.router.Navigate(ctx, providers.RouteHome); err != nil {
		return err
	}
	sc.render()
	return nil
}

func (sc *ShellController) add(ctx context.Context, a args) error {
	if err := sc.ensureHome(ctx); err != nil {
		return err
	}
	sc.list.CancelEdit()
	return sc.submit(ctx, a.named)
}

func (sc *ShellController) edit(ctx context.Context, a args) error {
	id, err := a.id()
	if err != nil {
		return err
	}
	if err := sc.ensureHome(ctx); err != nil {
		return err
	}
	if err := sc.list.StartEdit(id); err != nil {
		return err
	}
	fields := make(map[string]string, len(a.named))
	for k, v := range a.named {
		if k != "id" {
			fields[k] = v
		}
	}
	if len(fields) == 0 {
		sc.list.Form().Render(sc.console.Out())
		return nil
	}
	return sc.submit(ctx, fields)
}

func (sc *ShellController) save(ctx context.Context, a args) error {
	if err := sc.ensureHome(ctx); err != nil {
		return err
	}
	return sc.submit(ctx, a.named)
}

func (sc *ShellController) submit(ctx context.Context, values map[string]string) error {
	form := sc.list.Form()
	if err := form.Apply(values); err != nil {
		return err
	}
	if _, err := form.Submit(ctx); err != nil {
		var ve *models.ValidationError
		if errors.As(err, &ve) {
			return err
		}
		// the form already showed a notice
		return nil
	}
	sc.render()
	return nil
}

func (sc *ShellController) cancel(context.Context, args) error {
	sc.list.CancelEdit()
	sc.list.Form().Render(sc.console.Out())
	return nil
}

func (sc *ShellController) delete(ctx context.Context, a args) error {
	id, err := a.id()
	if err != nil {
		return err
	}
	if err := sc.ensureHome(ctx); err != nil {
		return err
	}
	if sc.list.OnDelete(ctx, id) {
		sc.render()
	}
	return nil
}

func (sc *ShellController) show(ctx context.Context, a args) error {
	id, err := a.id()
	if err != nil {
		return err
	}
	if err := sc.ensureHome(ctx); err != nil {
		return err
	}
	sc.list.OnViewDetails(ctx, id)
	sc.render()
	return nil
}

func (sc *ShellController) search(ctx context.Context, a args) error {
	title := a.named["title"]
	if title == "" {
		title = strings.Join(a.positional, " ")
	}
	if strings.TrimSpace(title) == "" {
		return &models.ValidationError{Field: "title", Message: "search needs a title"}
	}
	games, err := sc.list.Search(ctx, title)
	if err != nil {
		return err
	}
	sc.printResults(games)
	return nil
}

func (sc *ShellController) filter(ctx context.Context, a args) error {
	var field, value string
	switch {
	case a.named["status"] != "":
		field, value = "status", a.named["status"]
	case a.named["genre"] != "":
		field, value = "genre", a.named["genre"]
	case len(a.positional) == 2:
		field, value = a.positional[0], a.positional[1]
	default:
		return &models.ValidationError{Message: "usage: filter status=... or filter genre=..."}
	}
	games, err := sc.list.Filter(ctx, field, value)
	if err != nil {
		return err
	}
	sc.printResults(games)
	return nil
}

func (sc *ShellController) printResults(games []models.Game) {
	if len(games) == 0 {
		sc.console.Info("No matches.")
		return
	}
	views.RenderGames(sc.console.Out(), games)
}

func (sc *ShellController) showStats(ctx context.Context, _ args) error {
	if err := sc.router.Navigate(ctx, providers.RouteStats); err != nil {
		return err
	}
	sc.render()
	return nil
}

// userMessage is what the console shows for a failed command.
func userMessage(err error) string {
	var (
		ae *models.AuthError
		ve *models.ValidationError
		ne *models.NetworkError
	)
	switch {
	case errors.As(err, &ae):
		return ae.Message
	case errors.As(err, &ve):
		return ve.Error()
	case errors.As(err, &ne):
		return "cannot reach the server"
	}
	return models.ServerMessage(err, err.Error())
}

type args struct {
	named      map[string]string
	positional []string
}

func parseArgs(tokens []string) args {
	a := args{named: make(map[string]string)}
	for _, tok := range tokens {
		if k, v, ok := strings.Cut(tok, "="); ok && k != "" {
			a.named[strings.ToLower(k)] = v
			continue
		}
		a.positional = append(a.positional, tok)
	}
	return a
}

// get returns the named value, falling back to the positional one at pos.
func (a args) get(name string, pos int) string {
	if v, ok := a.named[name]; ok {
		return v
	}
	if pos < len(a.positional) {
		return a.positional[pos]
	}
	return ""
}

func (a args) id() (uint, error) {
	raw := a.get("id", 0)
	if raw == "" {
		return 0, &models.ValidationError{Field: "id", Message: "a game id is required"}
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, &models.ValidationError{Field: "id", Message: fmt.Sprintf("%q is not a game id", raw)}
	}
	return uint(id), nil
}

// tokenize splits a command line on spaces. Double quotes group words and
// may appear mid-token, as in title="Hollow Knight".
func tokenize(line string) ([]string, error) {
	var (
		tokens  []string
		cur     strings.Builder
		inQuote bool
		started bool
	)
	for i := 0; i < len(line); i++ {
		ch := line[i]
		switch {
		case ch == '\\' && inQuote && i+1 < len(line):
			i++
			cur.WriteByte(line[i])
		case ch == '"':
			inQuote = !inQuote
			started = true
		case (ch == ' ' || ch == '\t') && !inQuote:
			if started {
				tokens = append(tokens, cur.String())
				cur.Reset()
				started = false
			}
		default:
			cur.WriteByte(ch)
			started = true
		}
	}
	if inQuote {
		return nil, errors.New("unterminated quote")
	}
	if started {
		tokens = append(tokens, cur.String())
	}
	return tokens, nil
}
