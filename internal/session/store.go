// Package session owns the authenticated identity: the user record and the
// opaque bearer token, kept in memory and mirrored to persisted storage.
package session

import (
	"backlog/internal/api"
	"backlog/internal/models"
	"backlog/internal/observable"
	"backlog/internal/providers"
	"context"
	"errors"
	json "github.com/goccy/go-json"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/atomic"
	"sync"
	"time"
)

const (
	loginFailed        = "login failed"
	registrationFailed = "registration failed"

	RestoreRestored = "restored"
	RestoreEmpty    = "empty"
	RestoreCorrupt  = "corrupt"
)

// State is the snapshot handed to subscribers after every session change.
type State struct {
	User  *models.User
	Token string
}

func (s State) IsAuthenticated() bool {
	return s.Token != "" && s.User != nil
}

type StoreInterface interface {
	Login(ctx context.Context, req *models.LoginRequest) error
	Register(ctx context.Context, req *models.RegisterRequest) error
	Logout()
	Restore()
	IsAuthenticated() bool
	User() *models.User
	Token() string
	Loading() bool
	Subscribe(fn func(State)) func()
}

type Store struct {
	client  api.ClientInterface
	storage providers.StorageProviderInterface
	metrics providers.MetricsProviderInterface
	logger  providers.Logger

	mu      sync.RWMutex
	user    *models.User
	token   string
	loading atomic.Bool
	state   *observable.Observable[State]
}

func NewStore(
	client api.ClientInterface,
	storage providers.StorageProviderInterface,
	metrics providers.MetricsProviderInterface,
	logger providers.Logger,
) StoreInterface {
	return &Store{
		client:  client,
		storage: storage,
		metrics: metrics,
		logger:  logger,
		state:   observable.New[State](),
	}
}

func (s *Store) Login(ctx context.Context, req *models.LoginRequest) error {
	s.loading.Store(true)
	defer s.loading.Store(false)

	resp, err := s.client.Login(ctx, req)
	if err != nil {
		s.logger.Warnf(providers.TypeSession, "Login for %s failed: %s", req.Username, err)
		return &models.AuthError{Message: models.ServerMessage(err, loginFailed), Err: err}
	}
	return s.establish(&resp.Data, loginFailed)
}

// Register creates the account and signs in. Backends that answer
// registration without a token get an immediate login with the same
// credentials.
func (s *Store) Register(ctx context.Context, req *models.RegisterRequest) error {
	s.loading.Store(true)
	defer s.loading.Store(false)

	resp, err := s.client.Register(ctx, req)
	if err != nil {
		s.logger.Warnf(providers.TypeSession, "Registration for %s failed: %s", req.Username, err)
		return &models.AuthError{Message: models.ServerMessage(err, registrationFailed), Err: err}
	}
	if resp.Data.Token != "" {
		return s.establish(&resp.Data, registrationFailed)
	}

	s.logger.Debugf(providers.TypeSession, "Registration returned no token, logging in as %s", req.Username)
	login, err := s.client.Login(ctx, &models.LoginRequest{Username: req.Username, Password: req.Password})
	if err != nil {
		return &models.AuthError{Message: models.ServerMessage(err, registrationFailed), Err: err}
	}
	if login.Data.User == nil {
		login.Data.User = resp.Data.User
	}
	return s.establish(&login.Data, registrationFailed)
}

func (s *Store) establish(auth *models.AuthResponse, fallback string) error {
	if auth.Token == "" || !auth.User.WellFormed() {
		return &models.AuthError{Message: fallback, Err: errors.New("response carried no session")}
	}
	user := *auth.User

	s.mu.Lock()
	s.user = &user
	s.token = auth.Token
	s.mu.Unlock()

	s.persist(&user, auth.Token)
	s.logger.Infof(providers.TypeSession, "Signed in as %s", user.Username)
	s.publish()
	return nil
}

func (s *Store) persist(user *models.User, token string) {
	raw, err := json.Marshal(user)
	if err != nil {
		s.logger.Errorf(providers.TypeSession, "Failed to encode user record: %s", err)
		return
	}
	if err := s.storage.Set(api.StorageKeyToken, token); err != nil {
		s.logger.Errorf(providers.TypeSession, "Failed to persist token: %s", err)
		return
	}
	if err := s.storage.Set(api.StorageKeyUser, string(raw)); err != nil {
		s.logger.Errorf(providers.TypeSession, "Failed to persist user: %s", err)
	}
}

// Logout clears memory and storage. Calling it without a session is a no-op
// apart from the publication.
func (s *Store) Logout() {
	s.mu.Lock()
	s.user = nil
	s.token = ""
	s.mu.Unlock()

	if err := s.storage.Remove(api.StorageKeyToken, api.StorageKeyUser); err != nil {
		s.logger.Errorf(providers.TypeSession, "Failed to clear persisted session: %s", err)
	}
	s.publish()
}

// Restore rebuilds the session from persisted storage. Missing or corrupt
// data leaves the session unauthenticated and is discarded.
func (s *Store) Restore() {
	user, token, err := s.readPersisted()
	if err != nil {
		outcome := RestoreEmpty
		var pe *models.PersistedStateError
		if errors.As(err, &pe) && pe.Err != nil {
			outcome = RestoreCorrupt
		}
		s.logger.Debugf(providers.TypeSession, "No session restored: %s", err)
		if rmErr := s.storage.Remove(api.StorageKeyToken, api.StorageKeyUser); rmErr != nil {
			s.logger.Errorf(providers.TypeSession, "Failed to discard persisted session: %s", rmErr)
		}
		s.metrics.IncSessionRestores(outcome)
		user, token = nil, ""
	} else {
		s.logger.Infof(providers.TypeSession, "Session restored for %s", user.Username)
		s.metrics.IncSessionRestores(RestoreRestored)
	}

	s.mu.Lock()
	s.user = user
	s.token = token
	s.mu.Unlock()
	s.publish()
}

func (s *Store) readPersisted() (*models.User, string, error) {
	token, ok := s.storage.Get(api.StorageKeyToken)
	if !ok || token == "" {
		return nil, "", &models.PersistedStateError{Key: api.StorageKeyToken}
	}
	raw, ok := s.storage.Get(api.StorageKeyUser)
	if !ok || raw == "" {
		return nil, "", &models.PersistedStateError{Key: api.StorageKeyUser}
	}
	var user models.User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		return nil, "", &models.PersistedStateError{Key: api.StorageKeyUser, Err: err}
	}
	if !user.WellFormed() {
		return nil, "", &models.PersistedStateError{Key: api.StorageKeyUser, Err: errors.New("record has no username")}
	}
	return &user, token, nil
}

func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token != "" && s.user != nil
}

func (s *Store) User() *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *Store) Loading() bool {
	return s.loading.Load()
}

func (s *Store) Subscribe(fn func(State)) func() {
	return s.state.Subscribe(fn)
}

func (s *Store) publish() {
	s.state.PublishFunc(func() State {
		return State{User: s.User(), Token: s.Token()}
	})
}

// TokenExpiry reads the exp claim of a JWT without verifying it. Opaque
// tokens report false.
func TokenExpiry(token string) (time.Time, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}
