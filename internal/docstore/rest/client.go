// Package rest talks to a hosted backend-as-a-service over its records REST API:
//
//	POST  /api/admins/auth-with-password
//	GET   /api/collections/{collection}/records?filter=&sort=&page=&perPage=
//	GET   /api/collections/{collection}/records/{id}
//	POST  /api/collections/{collection}/records
//	PATCH /api/collections/{collection}/records/{id}
//	GET   /api/health
package rest

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	json "github.com/goccy/go-json"
	jwt "github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/reservation-service/internal/docstore"
)

const (
	defaultPageSize = 200
	maxPages        = 50
)

// Config configures the client.
type Config struct {
	BaseURL       string
	AdminEmail    string
	AdminPassword string
	Timeout       time.Duration
}

// Client implements docstore.Store. It is safe for concurrent use.
type Client struct {
	baseURL  string
	email    string
	password string
	http     *http.Client
	logger   *zap.Logger
	now      func() time.Time
	maxPages int

	mu        sync.RWMutex
	token     string
	expiresAt time.Time
}

// New builds a client. No network call is made until the first request.
func New(cfg Config, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		email:    cfg.AdminEmail,
		password: cfg.AdminPassword,
		http:     &http.Client{Timeout: timeout},
		logger:   logger,
		now:      time.Now,
		maxPages: maxPages,
	}
}

type listResponse struct {
	Page       int                 `json:"page"`
	PerPage    int                 `json:"perPage"`
	TotalItems int                 `json:"totalItems"`
	TotalPages int                 `json:"totalPages"`
	Items      []docstore.Document `json:"items"`
}

type errorResponse struct {
	Code    int            `json:"code"`
	Message string         `json:"message"`
	Data    map[string]any `json:"data"`
}

type authResponse struct {
	Token string `json:"token"`
}

// HasCredentials reports whether admin credentials were configured.
func (c *Client) HasCredentials() bool {
	return c.email != "" && c.password != ""
}

// Authenticated reports whether a non-expired admin token is held.
func (c *Client) Authenticated() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.token == "" {
		return false
	}
	return c.expiresAt.IsZero() || c.now().Before(c.expiresAt)
}

// Authenticate exchanges the admin credentials for a token.
func (c *Client) Authenticate(ctx context.Context) error {
	if !c.HasCredentials() {
		return &docstore.Error{Op: "auth", Status: http.StatusUnauthorized, Message: "admin credentials not configured"}
	}
	body := map[string]string{"identity": c.email, "password": c.password}
	var out authResponse
	if err := c.do(ctx, "auth", "", http.MethodPost, "/api/admins/auth-with-password", body, &out, false); err != nil {
		return err
	}
	if out.Token == "" {
		return &docstore.Error{Op: "auth", Status: http.StatusBadGateway, Message: "auth response carried no token"}
	}

	c.mu.Lock()
	c.token = out.Token
	c.expiresAt = tokenExpiry(out.Token)
	c.mu.Unlock()
	c.logger.Info("document store admin authenticated")
	return nil
}

// List pages through the collection until the query limit or the last page.
func (c *Client) List(ctx context.Context, collection string, q docstore.Query) ([]docstore.Document, error) {
	if err := q.Validate(); err != nil {
		return nil, &docstore.Error{Op: "list", Collection: collection, Status: http.StatusBadRequest, Message: err.Error()}
	}
	c.refresh(ctx)

	perPage := defaultPageSize
	if q.Limit > 0 && q.Limit < perPage {
		perPage = q.Limit
	}
	params := url.Values{}
	if expr := FilterExpression(q.Filters); expr != "" {
		params.Set("filter", expr)
	}
	if q.Sort != "" {
		params.Set("sort", q.Sort)
	}
	params.Set("perPage", strconv.Itoa(perPage))

	var out []docstore.Document
	for page := 1; ; page++ {
		params.Set("page", strconv.Itoa(page))
		var resp listResponse
		path := recordsPath(collection) + "?" + params.Encode()
		if err := c.do(ctx, "list", collection, http.MethodGet, path, nil, &resp, true); err != nil {
			return nil, err
		}
		out = append(out, resp.Items...)
		if q.Limit > 0 && len(out) >= q.Limit {
			return out[:q.Limit], nil
		}
		if resp.TotalPages <= page || len(resp.Items) == 0 {
			return out, nil
		}
		if page >= c.maxPages {
			// Callers see a partial list; conflict checks may miss the tail.
			c.logger.Warn("document store list truncated at page cap",
				zap.String("collection", collection),
				zap.Int("pages_read", page),
				zap.Int("total_pages", resp.TotalPages),
				zap.Int("records_read", len(out)),
				zap.Int("total_records", resp.TotalItems))
			return out, nil
		}
	}
}

func (c *Client) Get(ctx context.Context, collection, id string) (docstore.Document, error) {
	c.refresh(ctx)
	var doc docstore.Document
	if err := c.do(ctx, "get", collection, http.MethodGet, recordsPath(collection)+"/"+url.PathEscape(id), nil, &doc, true); err != nil {
		return nil, err
	}
	return doc, nil
}

// Create inserts a record. If the insert fails while the client held no valid admin
// token, it re-authenticates once and retries; any further failure is returned as is.
func (c *Client) Create(ctx context.Context, collection string, data docstore.Document) (docstore.Document, error) {
	wasAuthenticated := c.Authenticated()
	var doc docstore.Document
	err := c.do(ctx, "create", collection, http.MethodPost, recordsPath(collection), data, &doc, true)
	if err == nil {
		return doc, nil
	}
	if wasAuthenticated || !c.HasCredentials() {
		return nil, err
	}

	c.logger.Warn("create failed without admin session; re-authenticating",
		zap.String("collection", collection), zap.Error(err))
	if authErr := c.Authenticate(ctx); authErr != nil {
		c.logger.Warn("document store re-authentication failed", zap.Error(authErr))
		return nil, err
	}
	doc = nil
	if err := c.do(ctx, "create", collection, http.MethodPost, recordsPath(collection), data, &doc, true); err != nil {
		return nil, err
	}
	return doc, nil
}

func (c *Client) Update(ctx context.Context, collection, id string, patch docstore.Document) (docstore.Document, error) {
	c.refresh(ctx)
	var doc docstore.Document
	if err := c.do(ctx, "update", collection, http.MethodPatch, recordsPath(collection)+"/"+url.PathEscape(id), patch, &doc, true); err != nil {
		return nil, err
	}
	return doc, nil
}

func (c *Client) Ping(ctx context.Context) error {
	return c.do(ctx, "ping", "", http.MethodGet, "/api/health", nil, nil, false)
}

// refresh renews an expired admin token before a read or patch. Failures are logged
// and the call proceeds anonymously.
func (c *Client) refresh(ctx context.Context) {
	if !c.HasCredentials() || c.Authenticated() {
		return
	}
	if err := c.Authenticate(ctx); err != nil {
		c.logger.Warn("document store authentication failed", zap.Error(err))
	}
}

func (c *Client) do(ctx context.Context, op, collection, method, path string, body, out any, withAuth bool) error {
	var reader io.Reader = http.NoBody
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return &docstore.Error{Op: op, Collection: collection, Message: "encode request", Err: err}
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return &docstore.Error{Op: op, Collection: collection, Message: "build request", Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if withAuth {
		c.mu.RLock()
		if c.token != "" {
			req.Header.Set("Authorization", "Bearer "+c.token)
		}
		c.mu.RUnlock()
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &docstore.Error{Op: op, Collection: collection, Message: "request failed", Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return &docstore.Error{Op: op, Collection: collection, Status: resp.StatusCode, Message: "read response", Err: err}
	}

	if resp.StatusCode >= 300 {
		return decodeError(op, collection, resp.StatusCode, raw)
	}
	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &docstore.Error{Op: op, Collection: collection, Status: http.StatusBadGateway, Message: "decode response", Err: err}
	}
	return nil
}

func decodeError(op, collection string, status int, raw []byte) error {
	e := &docstore.Error{Op: op, Collection: collection, Status: status}
	var payload errorResponse
	if err := json.Unmarshal(raw, &payload); err == nil && payload.Message != "" {
		e.Message = payload.Message
		e.Data = payload.Data
	} else {
		e.Message = http.StatusText(status)
		if len(raw) > 0 {
			e.Data = map[string]any{"body": string(raw)}
		}
	}
	if status == http.StatusNotFound {
		e.Err = docstore.ErrNotFound
	}
	return e
}

func recordsPath(collection string) string {
	return "/api/collections/" + url.PathEscape(collection) + "/records"
}

// tokenExpiry reads the exp claim without verifying the signature; the store is the
// authority on validity, the client only needs to know when to renew.
func tokenExpiry(token string) time.Time {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}
	}
	return exp.Time
}

// FilterExpression renders filters in the store's expression syntax, e.g.
// (reservation_date='2025-03-14' && party_size=4).
func FilterExpression(filters []docstore.Filter) string {
	if len(filters) == 0 {
		return ""
	}
	parts := make([]string, 0, len(filters))
	for _, f := range filters {
		parts = append(parts, fmt.Sprintf("%s%s%s", f.Field, f.Op, literal(f.Value)))
	}
	return "(" + strings.Join(parts, " && ") + ")"
}

func literal(v any) string {
	switch x := v.(type) {
	case nil:
		return "null"
	case bool, int, int64, float64:
		return docstore.ScalarText(x)
	default:
		s := docstore.ScalarText(x)
		s = strings.ReplaceAll(s, `\`, `\\`)
		s = strings.ReplaceAll(s, `'`, `\'`)
		return "'" + s + "'"
	}
}
