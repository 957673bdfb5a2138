// Package api talks to the backlog REST backend. Every call attaches the
// persisted bearer token and any unauthorized answer ends the session.
package api

import (
	"backlog/internal/models"
	"backlog/internal/providers"
	"backlog/internal/structures"
	"bytes"
	"context"
	"errors"
	"fmt"
	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

const (
	StorageKeyToken = "token"
	StorageKeyUser  = "user"

	headerRequestID = "X-Request-ID"
)

// Response wraps a decoded payload together with the HTTP status it came with.
type Response[T any] struct {
	Data   T
	Status int
}

type ClientInterface interface {
	ListGames(ctx context.Context) (*Response[[]models.Game], error)
	GetGame(ctx context.Context, id uint) (*Response[models.Game], error)
	SearchGames(ctx context.Context, title string) (*Response[[]models.Game], error)
	FilterGamesByStatus(ctx context.Context, status models.GameStatus) (*Response[[]models.Game], error)
	FilterGamesByGenre(ctx context.Context, genre string) (*Response[[]models.Game], error)
	CreateGame(ctx context.Context, in *models.GameInput) (*Response[models.Game], error)
	UpdateGame(ctx context.Context, id uint, in *models.GameInput) (*Response[models.Game], error)
	DeleteGame(ctx context.Context, id uint) (*Response[models.Message], error)
	GetStats(ctx context.Context) (*Response[models.Stats], error)
	Login(ctx context.Context, req *models.LoginRequest) (*Response[models.AuthResponse], error)
	Register(ctx context.Context, req *models.RegisterRequest) (*Response[models.AuthResponse], error)
	GetProfile(ctx context.Context) (*Response[models.Profile], error)
}

type Client struct {
	base     *url.URL
	http     *http.Client
	storage  providers.StorageProviderInterface
	reloader providers.ReloaderInterface
	logger   providers.Logger
}

func NewClient(
	conf *structures.Config,
	storage providers.StorageProviderInterface,
	reloader providers.ReloaderInterface,
	metrics providers.MetricsProviderInterface,
	logger providers.Logger,
) (ClientInterface, error) {
	base, err := ResolveBaseURL(conf.Api.BaseURL, conf.Api.Origin)
	if err != nil {
		return nil, err
	}
	logger.Infof(providers.TypeApi, "API base address: %s", base)

	return &Client{
		base:     base,
		http:     &http.Client{Transport: providers.MetricsTransport(metrics, nil)},
		storage:  storage,
		reloader: reloader,
		logger:   logger,
	}, nil
}

// ResolveBaseURL returns baseURL when it is absolute. An empty or relative
// baseURL is resolved against origin, the address the client is served from.
func ResolveBaseURL(baseURL, origin string) (*url.URL, error) {
	ref, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return nil, fmt.Errorf("invalid api base url %q: %w", baseURL, err)
	}
	if ref.IsAbs() {
		return ref, nil
	}
	o, err := url.Parse(origin)
	if err != nil || !o.IsAbs() {
		return nil, fmt.Errorf("invalid api origin %q", origin)
	}
	return o.ResolveReference(ref), nil
}

func (c *Client) ListGames(ctx context.Context) (*Response[[]models.Game], error) {
	return call[[]models.Game](ctx, c, http.MethodGet, "/games/", nil, nil)
}

func (c *Client) GetGame(ctx context.Context, id uint) (*Response[models.Game], error) {
	return call[models.Game](ctx, c, http.MethodGet, gamePath(id), nil, nil)
}

func (c *Client) SearchGames(ctx context.Context, title string) (*Response[[]models.Game], error) {
	return call[[]models.Game](ctx, c, http.MethodGet, "/games/search", url.Values{"title": {title}}, nil)
}

func (c *Client) FilterGamesByStatus(ctx context.Context, status models.GameStatus) (*Response[[]models.Game], error) {
	return call[[]models.Game](ctx, c, http.MethodGet, "/games/status", url.Values{"status": {string(status)}}, nil)
}

func (c *Client) FilterGamesByGenre(ctx context.Context, genre string) (*Response[[]models.Game], error) {
	return call[[]models.Game](ctx, c, http.MethodGet, "/games/genre", url.Values{"genre": {genre}}, nil)
}

func (c *Client) CreateGame(ctx context.Context, in *models.GameInput) (*Response[models.Game], error) {
	return call[models.Game](ctx, c, http.MethodPost, "/games/", nil, in)
}

func (c *Client) UpdateGame(ctx context.Context, id uint, in *models.GameInput) (*Response[models.Game], error) {
	return call[models.Game](ctx, c, http.MethodPut, gamePath(id), nil, in)
}

func (c *Client) DeleteGame(ctx context.Context, id uint) (*Response[models.Message], error) {
	return call[models.Message](ctx, c, http.MethodDelete, gamePath(id), nil, nil)
}

func (c *Client) GetStats(ctx context.Context) (*Response[models.Stats], error) {
	return call[models.Stats](ctx, c, http.MethodGet, "/stats", nil, nil)
}

func (c *Client) Login(ctx context.Context, req *models.LoginRequest) (*Response[models.AuthResponse], error) {
	return call[models.AuthResponse](ctx, c, http.MethodPost, "/auth/login", nil, req)
}

func (c *Client) Register(ctx context.Context, req *models.RegisterRequest) (*Response[models.AuthResponse], error) {
	return call[models.AuthResponse](ctx, c, http.MethodPost, "/auth/register", nil, req)
}

func (c *Client) GetProfile(ctx context.Context) (*Response[models.Profile], error) {
	return call[models.Profile](ctx, c, http.MethodGet, "/api/profile", nil, nil)
}

func gamePath(id uint) string {
	return "/games/" + strconv.FormatUint(uint64(id), 10)
}

func (c *Client) endpoint(path string, query url.Values) string {
	u := *c.base
	u.Path = strings.TrimSuffix(c.base.Path, "/") + path
	u.RawPath = ""
	u.RawQuery = ""
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

func call[T any](ctx context.Context, c *Client, method, path string, query url.Values, body interface{}) (*Response[T], error) {
	resp, err := c.do(ctx, method, path, query, body)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var data T
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil && !errors.Is(err, io.EOF) {
		return nil, &models.NetworkError{Method: method, Path: path, Err: fmt.Errorf("decode response: %w", err)}
	}
	return &Response[T]{Data: data, Status: resp.StatusCode}, nil
}

// do performs the request and returns the response only for 2xx answers. The
// caller owns the body.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body interface{}) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path, query), reader)
	if err != nil {
		return nil, &models.NetworkError{Method: method, Path: path, Err: err}
	}
	requestID := uuid.NewString()
	req.Header.Set(headerRequestID, requestID)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token, ok := c.storage.Get(StorageKeyToken); ok && token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	c.logger.Debugf(providers.TypeApi, "%s %s request_id=%s", method, path, requestID)
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debugf(providers.TypeApi, "%s %s request_id=%s failed: %s", method, path, requestID, err)
		return nil, &models.NetworkError{Method: method, Path: path, Err: err}
	}
	c.logger.Debugf(providers.TypeApi, "%s %s request_id=%s status=%d", method, path, requestID, resp.StatusCode)

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		c.endSession()
	}
	return nil, &models.TransportError{
		Method:  method,
		Path:    path,
		Status:  resp.StatusCode,
		Message: errorMessage(resp.Body),
	}
}

// endSession drops the persisted credentials and asks the shell to reload.
func (c *Client) endSession() {
	if err := c.storage.Remove(StorageKeyToken, StorageKeyUser); err != nil {
		c.logger.Errorf(providers.TypeApi, "Failed to clear persisted session: %s", err)
	}
	c.logger.Warnf(providers.TypeApi, "Unauthorized response, session cleared")
	c.reloader.Reload()
}

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func errorMessage(r io.Reader) string {
	var eb errorBody
	if err := json.NewDecoder(io.LimitReader(r, 64<<10)).Decode(&eb); err != nil {
		return ""
	}
	if eb.Error != "" {
		return eb.Error
	}
	return eb.Message
}
