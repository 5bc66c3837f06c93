package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

const (
	defaultTimeout = 15 * time.Second
	apiPrefix      = "/api/v1"
	requestIDKey   = "X-Request-ID"
)

// Gateway talks to the reglite backend. It holds no state beyond its
// configuration and is safe for concurrent use.
type Gateway struct {
	baseURL     *url.URL
	httpClient  *http.Client
	logRequests RequestLogger
	logger      *log.Logger
}

type Option func(*Gateway)

func WithHTTPClient(client *http.Client) Option {
	return func(g *Gateway) {
		if client != nil {
			g.httpClient = client
		}
	}
}

func WithTimeout(timeout time.Duration) Option {
	return func(g *Gateway) {
		if timeout > 0 {
			g.httpClient.Timeout = timeout
		}
	}
}

func WithRequestLogger(logger RequestLogger) Option {
	return func(g *Gateway) {
		g.logRequests = logger
	}
}

func WithLogger(logger *log.Logger) Option {
	return func(g *Gateway) {
		if logger != nil {
			g.logger = logger
		}
	}
}

func New(rawURL string, opts ...Option) (*Gateway, error) {
	base, err := ParseBaseURL(rawURL)
	if err != nil {
		return nil, err
	}
	g := &Gateway{
		baseURL: base,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		logger: log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

func (g *Gateway) BaseURL() string {
	return g.baseURL.String()
}

func (g *Gateway) RegistryNames(ctx context.Context) ([]string, error) {
	var payload struct {
		Registries []string `json:"registries"`
	}
	if err := g.do(ctx, "list registries", http.MethodGet, "/registries", nil, &payload); err != nil {
		return nil, err
	}
	names := append([]string(nil), payload.Registries...)
	sort.Strings(names)
	return names, nil
}

func (g *Gateway) RegistryStatuses(ctx context.Context) ([]RegistryEntry, error) {
	var payload struct {
		Registries []RegistryEntry `json:"registries"`
		LastUpdate time.Time       `json:"lastUpdate"`
	}
	if err := g.do(ctx, "registry status", http.MethodGet, "/registries/status", nil, &payload); err != nil {
		return nil, err
	}
	return payload.Registries, nil
}

// TriggerValidation asks the backend to re-check every registry. It returns
// once the backend accepted the request; results arrive via RegistryStatuses.
func (g *Gateway) TriggerValidation(ctx context.Context) error {
	return g.do(ctx, "validate registries", http.MethodPost, "/registries/validate", nil, nil)
}

func (g *Gateway) Repositories(ctx context.Context, registry string) ([]string, error) {
	var payload struct {
		Repositories []string `json:"repositories"`
	}
	query := url.Values{"registry": []string{registry}}
	if err := g.do(ctx, "list repositories", http.MethodGet, "/repositories", query, &payload); err != nil {
		return nil, err
	}
	repos := append([]string(nil), payload.Repositories...)
	sort.Strings(repos)
	return repos, nil
}

func (g *Gateway) RepositoryInfo(ctx context.Context, registry, repository string) (RepositoryInfo, error) {
	var info RepositoryInfo
	query := url.Values{
		"registry":   []string{registry},
		"repository": []string{repository},
	}
	if err := g.do(ctx, "repository info", http.MethodGet, "/repository/info", query, &info); err != nil {
		return RepositoryInfo{}, err
	}
	if info.Name == "" {
		info.Name = repository
	}
	if info.TagsCount == 0 && len(info.Tags) > 0 {
		info.TagsCount = len(info.Tags)
	}
	return info, nil
}

// Tags returns tag names in the order the registry reported them.
func (g *Gateway) Tags(ctx context.Context, registry, repository string) ([]string, error) {
	var payload struct {
		Name string   `json:"name"`
		Tags []string `json:"tags"`
	}
	query := url.Values{
		"registry":   []string{registry},
		"repository": []string{repository},
	}
	if err := g.do(ctx, "list tags", http.MethodGet, "/tags", query, &payload); err != nil {
		return nil, err
	}
	if payload.Tags == nil {
		return []string{}, nil
	}
	return payload.Tags, nil
}

func (g *Gateway) Manifest(ctx context.Context, registry, repository, tag string) (Manifest, error) {
	var manifest Manifest
	query := url.Values{
		"registry":   []string{registry},
		"repository": []string{repository},
		"tag":        []string{tag},
	}
	if err := g.do(ctx, "get manifest", http.MethodGet, "/manifest", query, &manifest); err != nil {
		return Manifest{}, err
	}
	if manifest.Tag == "" {
		manifest.Tag = tag
	}
	return manifest, nil
}

// DeleteManifest removes a manifest by digest. The digest is checked
// locally first and no request is sent when it is missing or malformed.
func (g *Gateway) DeleteManifest(ctx context.Context, registry, repository, digest string) error {
	if err := ValidateDigest(digest); err != nil {
		return err
	}
	query := url.Values{
		"registry":   []string{registry},
		"repository": []string{repository},
		"digest":     []string{digest},
	}
	return g.do(ctx, "delete manifest", http.MethodDelete, "/manifest", query, nil)
}

func (g *Gateway) do(ctx context.Context, op, method, path string, query url.Values, out any) error {
	endpoint := resolveURL(g.baseURL, apiPrefix+path, query)
	req, err := http.NewRequestWithContext(ctx, method, endpoint, nil)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	id := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set(requestIDKey, id)

	started := time.Now()
	resp, err := g.httpClient.Do(req)
	g.logRequest(id, req, resp, time.Since(started), err)
	if err != nil {
		g.logger.Debug("request failed", "op", op, "id", id, "err", err)
		return &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()
	g.logger.Debug("request", "op", op, "id", id, "status", resp.StatusCode, "elapsed", time.Since(started))

	if resp.StatusCode >= 300 {
		return &APIError{Op: op, StatusCode: resp.StatusCode, Message: errorMessage(resp)}
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return &TransportError{Op: op, Err: fmt.Errorf("empty response body")}
		}
		return &TransportError{Op: op, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

func errorMessage(resp *http.Response) string {
	var payload struct {
		Error string `json:"error"`
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err := json.Unmarshal(body, &payload); err == nil && strings.TrimSpace(payload.Error) != "" {
		return payload.Error
	}
	return resp.Status
}

func (g *Gateway) logRequest(id string, req *http.Request, resp *http.Response, elapsed time.Duration, err error) {
	if g.logRequests == nil || req == nil {
		return
	}
	entry := RequestLog{
		ID:      id,
		Method:  req.Method,
		URL:     req.URL.String(),
		Headers: cloneHeader(req.Header),
		Elapsed: elapsed,
	}
	if resp != nil {
		entry.Status = resp.StatusCode
	}
	if err != nil {
		entry.Err = err.Error()
	}
	g.logRequests(entry)
}
