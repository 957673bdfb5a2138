package testutil

import (
	"backlog/internal/providers"
	"context"
	"net/http"
	"sync"
	"time"
)

// MockLogger implements providers.Logger and records calls.
type MockLogger struct {
	mu   sync.Mutex
	Logs []LogEntry
}

type LogEntry struct {
	Level  string
	Type   providers.TypeEnum
	Format string
	Args   []interface{}
}

func (m *MockLogger) record(level string, t providers.TypeEnum, format string, args ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Logs = append(m.Logs, LogEntry{Level: level, Type: t, Format: format, Args: args})
}

func (m *MockLogger) Errorf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("error", t, format, args...)
}
func (m *MockLogger) Warnf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("warn", t, format, args...)
}
func (m *MockLogger) Debugf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("debug", t, format, args...)
}
func (m *MockLogger) Infof(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("info", t, format, args...)
}
func (m *MockLogger) Fatalf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("fatal", t, format, args...)
}
func (m *MockLogger) Close() {}

// Count returns how many entries were logged at level.
func (m *MockLogger) Count(level string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, l := range m.Logs {
		if l.Level == level {
			n++
		}
	}
	return n
}

// MockStorage implements providers.StorageProviderInterface over a map.
type MockStorage struct {
	mu     sync.Mutex
	Data   map[string]string
	SetErr error
}

func NewMockStorage() *MockStorage {
	return &MockStorage{Data: make(map[string]string)}
}

func (m *MockStorage) Get(key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.Data[key]
	return v, ok
}

func (m *MockStorage) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SetErr != nil {
		return m.SetErr
	}
	m.Data[key] = value
	return nil
}

func (m *MockStorage) Remove(keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.Data, k)
	}
	return nil
}

func (m *MockStorage) Has(key string) bool {
	_, ok := m.Get(key)
	return ok
}

// MockMetrics implements providers.MetricsProviderInterface.
type MockMetrics struct {
	mu        sync.Mutex
	Restores  []string
	GamesHeld int
}

func (m *MockMetrics) IncRequestsTotal(_ string, _ int)                 {}
func (m *MockMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}
func (m *MockMetrics) IncNetworkErrors(_ string)                        {}
func (m *MockMetrics) IncUnauthorized()                                 {}
func (m *MockMetrics) IncSessionRestores(outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Restores = append(m.Restores, outcome)
}
func (m *MockMetrics) SetGamesHeld(count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GamesHeld = count
}
func (m *MockMetrics) Handler() http.Handler { return http.NotFoundHandler() }

// MockNotifier records user-facing notices.
type MockNotifier struct {
	mu     sync.Mutex
	Infos  []string
	Errors []string
}

func (m *MockNotifier) Info(msg string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Infos = append(m.Infos, msg)
}

func (m *MockNotifier) Error(msg string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Errors = append(m.Errors, msg)
}

// MockConfirmer answers every prompt with Answer.
type MockConfirmer struct {
	Answer  bool
	Prompts []string
}

func (m *MockConfirmer) Confirm(prompt string) bool {
	m.Prompts = append(m.Prompts, prompt)
	return m.Answer
}

// MockNavigator records requested routes.
type MockNavigator struct {
	mu    sync.Mutex
	Paths []string
}

func (m *MockNavigator) Navigate(_ context.Context, url string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Paths = append(m.Paths, url)
	return nil
}

func (m *MockNavigator) Last() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Paths) == 0 {
		return ""
	}
	return m.Paths[len(m.Paths)-1]
}
