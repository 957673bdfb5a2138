package testutil

import (
	"backlog/internal/models"
	"fmt"
	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"golang.org/x/crypto/bcrypt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"
)

type fakeAccount struct {
	user models.User
	hash []byte
}

// FakeBackend is an in-memory stand-in for the backlog REST API.
type FakeBackend struct {
	Server *httptest.Server

	mu                sync.Mutex
	requireAuth       bool
	omitRegisterToken bool
	games             map[uint]models.Game
	nextGameID        uint
	accounts          map[string]*fakeAccount
	nextUserID        uint
	tokens            map[string]uint
	failures          map[string][]int
	calls             []string
	authHeader        []string
}

func NewFakeBackend(t *testing.T) *FakeBackend {
	t.Helper()
	b := &FakeBackend{
		requireAuth: true,
		games:       make(map[uint]models.Game),
		nextGameID:  1,
		accounts:    make(map[string]*fakeAccount),
		nextUserID:  1,
		tokens:      make(map[string]uint),
		failures:    make(map[string][]int),
	}
	b.Server = httptest.NewServer(b.router())
	t.Cleanup(b.Server.Close)
	return b
}

func (b *FakeBackend) URL() string { return b.Server.URL }

func (b *FakeBackend) router() http.Handler {
	r := mux.NewRouter()
	r.Use(b.record)

	r.HandleFunc("/auth/login", b.login).Methods(http.MethodPost)
	r.HandleFunc("/auth/register", b.register).Methods(http.MethodPost)

	protected := r.NewRoute().Subrouter()
	protected.Use(b.authorize)
	protected.HandleFunc("/api/profile", b.profile).Methods(http.MethodGet)
	protected.HandleFunc("/stats", b.stats).Methods(http.MethodGet)
	protected.HandleFunc("/games/", b.listGames).Methods(http.MethodGet)
	protected.HandleFunc("/games/", b.createGame).Methods(http.MethodPost)
	protected.HandleFunc("/games/search", b.searchGames).Methods(http.MethodGet)
	protected.HandleFunc("/games/status", b.filterGames("status")).Methods(http.MethodGet)
	protected.HandleFunc("/games/genre", b.filterGames("genre")).Methods(http.MethodGet)
	protected.HandleFunc("/games/{id:[0-9]+}", b.getGame).Methods(http.MethodGet)
	protected.HandleFunc("/games/{id:[0-9]+}", b.updateGame).Methods(http.MethodPut)
	protected.HandleFunc("/games/{id:[0-9]+}", b.deleteGame).Methods(http.MethodDelete)
	return r
}

// SetRequireAuth toggles whether /games and /stats need a bearer token.
// /api/profile always does.
func (b *FakeBackend) SetRequireAuth(v bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.requireAuth = v
}

// SetOmitRegisterToken makes /auth/register answer {message, user} only.
func (b *FakeBackend) SetOmitRegisterToken(v bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.omitRegisterToken = v
}

// FailNext makes the next request matching method and path answer status.
func (b *FakeBackend) FailNext(method, path string, status int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	key := method + " " + path
	b.failures[key] = append(b.failures[key], status)
}

// CallCount counts requests received for method and path.
func (b *FakeBackend) CallCount(method, path string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, c := range b.calls {
		if c == method+" "+path {
			n++
		}
	}
	return n
}

// AuthHeaders returns the Authorization header of every request, in order.
func (b *FakeBackend) AuthHeaders() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.authHeader...)
}

// CreateUser registers an account directly and returns a valid token.
func (b *FakeBackend) CreateUser(username, password string) (string, models.User) {
	b.mu.Lock()
	defer b.mu.Unlock()
	acc := b.addAccount(models.RegisterRequest{Username: username, Email: username + "@example.com", Password: password})
	return b.issueToken(acc.user.ID), acc.user
}

// RevokeTokens invalidates every issued token.
func (b *FakeBackend) RevokeTokens() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.tokens = make(map[string]uint)
}

// Seed stores games as-is, assigning ids to those without one.
func (b *FakeBackend) Seed(games ...models.Game) []models.Game {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]models.Game, 0, len(games))
	for _, g := range games {
		if g.ID == 0 {
			g.ID = b.nextGameID
		}
		if g.ID >= b.nextGameID {
			b.nextGameID = g.ID + 1
		}
		b.games[g.ID] = g
		out = append(out, g)
	}
	return out
}

func (b *FakeBackend) Game(id uint) (models.Game, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	g, ok := b.games[id]
	return g, ok
}

func (b *FakeBackend) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		key := r.Method + " " + r.URL.Path
		b.calls = append(b.calls, key)
		b.authHeader = append(b.authHeader, r.Header.Get("Authorization"))
		var forced int
		if q := b.failures[key]; len(q) > 0 {
			forced = q[0]
			b.failures[key] = q[1:]
		}
		b.mu.Unlock()

		if forced != 0 {
			writeJSON(w, forced, map[string]string{"error": http.StatusText(forced)})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (b *FakeBackend) authorize(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token := strings.TrimPrefix(header, "Bearer ")
		b.mu.Lock()
		required := b.requireAuth || r.URL.Path == "/api/profile"
		_, ok := b.tokens[token]
		b.mu.Unlock()

		if !required {
			next.ServeHTTP(w, r)
			return
		}
		if header == "" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "authorization token required"})
			return
		}
		if !ok {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid token"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (b *FakeBackend) login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Username == "" || req.Password == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	acc := b.accounts[req.Username]
	if acc == nil {
		for _, a := range b.accounts {
			if a.user.Email == req.Username {
				acc = a
			}
		}
	}
	if acc == nil || bcrypt.CompareHashAndPassword(acc.hash, []byte(req.Password)) != nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid credentials"})
		return
	}
	writeJSON(w, http.StatusOK, models.AuthResponse{Token: b.issueToken(acc.user.ID), User: &acc.user})
}

func (b *FakeBackend) register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Username == "" || req.Email == "" || len(req.Password) < 6 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, a := range b.accounts {
		if a.user.Username == req.Username || a.user.Email == req.Email {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "username or email already exists"})
			return
		}
	}
	acc := b.addAccount(req)
	if b.omitRegisterToken {
		writeJSON(w, http.StatusCreated, models.AuthResponse{Message: "user created", User: &acc.user})
		return
	}
	writeJSON(w, http.StatusCreated, models.AuthResponse{Token: b.issueToken(acc.user.ID), User: &acc.user})
}

func (b *FakeBackend) profile(w http.ResponseWriter, r *http.Request) {
	token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	b.mu.Lock()
	defer b.mu.Unlock()
	writeJSON(w, http.StatusOK, models.Profile{UserID: b.tokens[token]})
}

func (b *FakeBackend) listGames(w http.ResponseWriter, _ *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	writeJSON(w, http.StatusOK, b.sortedGames(func(models.Game) bool { return true }))
}

func (b *FakeBackend) searchGames(w http.ResponseWriter, r *http.Request) {
	title := strings.ToLower(r.URL.Query().Get("title"))
	b.mu.Lock()
	defer b.mu.Unlock()
	writeJSON(w, http.StatusOK, b.sortedGames(func(g models.Game) bool {
		return strings.Contains(strings.ToLower(g.Title), title)
	}))
}

func (b *FakeBackend) filterGames(field string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		want := r.URL.Query().Get(field)
		b.mu.Lock()
		defer b.mu.Unlock()
		writeJSON(w, http.StatusOK, b.sortedGames(func(g models.Game) bool {
			if field == "status" {
				return string(g.Status) == want
			}
			return g.Genre == want
		}))
	}
}

func (b *FakeBackend) getGame(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseUint(mux.Vars(r)["id"], 10, 64)
	b.mu.Lock()
	defer b.mu.Unlock()
	g, ok := b.games[uint(id)]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Game not found"})
		return
	}
	writeJSON(w, http.StatusOK, g)
}

func (b *FakeBackend) createGame(w http.ResponseWriter, r *http.Request) {
	var in models.GameInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	now := time.Now().UTC()
	g := applyInput(models.Game{ID: b.nextGameID, CreatedAt: now}, in)
	g.UpdatedAt = now
	b.nextGameID++
	b.games[g.ID] = g
	writeJSON(w, http.StatusOK, g)
}

func (b *FakeBackend) updateGame(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseUint(mux.Vars(r)["id"], 10, 64)
	var in models.GameInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	g, ok := b.games[uint(id)]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Game not found"})
		return
	}
	g = applyInput(g, in)
	g.UpdatedAt = time.Now().UTC()
	b.games[g.ID] = g
	writeJSON(w, http.StatusOK, g)
}

func (b *FakeBackend) deleteGame(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseUint(mux.Vars(r)["id"], 10, 64)
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.games, uint(id))
	writeJSON(w, http.StatusOK, models.Message{Message: "Game deleted successfully"})
}

func (b *FakeBackend) stats(w http.ResponseWriter, _ *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	byStatus := make(map[string]int)
	genres := make(map[string]int)
	var hours float64
	pending := 0
	for _, g := range b.games {
		byStatus[string(g.Status)]++
		genres[g.Genre]++
		hours += g.HoursPlayed
		if g.Status != models.StatusCompleted && g.Progress < 100 {
			pending++
		}
	}
	most, best := "", 0
	for genre, n := range genres {
		if n > best || (n == best && genre < most) {
			most, best = genre, n
		}
	}
	avg := 0.0
	if len(b.games) > 0 {
		avg = hours / float64(len(b.games))
	}
	writeJSON(w, http.StatusOK, models.Stats{
		TotalGames:      len(b.games),
		ByStatus:        byStatus,
		AverageHours:    avg,
		MostPlayedGenre: most,
		PendingGames:    pending,
	})
}

func (b *FakeBackend) sortedGames(keep func(models.Game) bool) []models.Game {
	out := make([]models.Game, 0, len(b.games))
	for _, g := range b.games {
		if keep(g) {
			out = append(out, g)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (b *FakeBackend) addAccount(req models.RegisterRequest) *fakeAccount {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.MinCost)
	if err != nil {
		panic(fmt.Sprintf("bcrypt: %s", err))
	}
	now := time.Now().UTC()
	acc := &fakeAccount{
		user: models.User{
			ID:        b.nextUserID,
			Username:  req.Username,
			Email:     req.Email,
			FirstName: req.FirstName,
			LastName:  req.LastName,
			CreatedAt: now,
			UpdatedAt: now,
		},
		hash: hash,
	}
	b.nextUserID++
	b.accounts[req.Username] = acc
	return acc
}

func (b *FakeBackend) issueToken(userID uint) string {
	token := uuid.NewString()
	b.tokens[token] = userID
	return token
}

func applyInput(g models.Game, in models.GameInput) models.Game {
	g.Title = in.Title
	g.Platform = in.Platform
	g.Genre = in.Genre
	g.Status = in.Status
	g.Progress = in.Progress
	g.HoursPlayed = in.HoursPlayed
	g.PersonalNote = in.PersonalNote
	g.Score = in.Score
	g.StartedAt = in.StartedAt
	g.FinishedAt = in.FinishedAt
	g.CoverURL = in.CoverURL
	return g
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
