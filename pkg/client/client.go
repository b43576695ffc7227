package client

import (
	"brainer_backend/internal/util"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/sync/singleflight"
)

var ErrNotAuthenticated = errors.New("client: not signed in")

// APIError is a non-2xx answer from the server, decoded from the response envelope.
type APIError struct {
	Status  int
	Message string
	Fields  []util.FieldError
}

func (e *APIError) Error() string {
	if len(e.Fields) == 0 {
		return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
	}
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return fmt.Sprintf("api error %d: %s (%s)", e.Status, e.Message, strings.Join(parts, "; "))
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

type envelope struct {
	Code    int               `json:"code"`
	Message string            `json:"message"`
	Data    json.RawMessage   `json:"data"`
	Errors  []util.FieldError `json:"errors"`
}

type Option func(*Client)

// WithTTL sets how long a read stays fresh before it is revalidated in the background.
func WithTTL(ttl time.Duration) Option {
	return func(c *Client) { c.cache = NewCache(ttl) }
}

func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) { c.http.SetTimeout(timeout) }
}

func WithRetryDelay(delay time.Duration) Option {
	return func(c *Client) { c.retryDelay = delay }
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		base := c.http.BaseURL
		c.http = resty.NewWithClient(hc).SetBaseURL(base)
	}
}

// Client talks to the Brainer API and keeps a keyed cache of everything it reads.
type Client struct {
	http           *resty.Client
	session        *Session
	cache          *Cache
	group          singleflight.Group
	retryDelay     time.Duration
	refreshTimeout time.Duration
	refreshes      sync.WaitGroup
}

func New(baseURL string, session *Session, opts ...Option) *Client {
	if session == nil {
		session = NewSession()
	}
	c := &Client{
		http: resty.New().
			SetBaseURL(strings.TrimRight(baseURL, "/")).
			SetTimeout(15 * time.Second),
		session:        session,
		cache:          NewCache(30 * time.Second),
		retryDelay:     200 * time.Millisecond,
		refreshTimeout: 15 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.http.SetHeader("Accept", "application/json")
	return c
}

func (c *Client) Session() *Session { return c.session }

func (c *Client) Cache() *Cache { return c.cache }

// WaitRefreshes blocks until background revalidations started so far have finished.
func (c *Client) WaitRefreshes() {
	c.refreshes.Wait()
}

func (c *Client) request(ctx context.Context) *resty.Request {
	req := c.http.R().SetContext(ctx)
	if token := c.session.Token(); token != "" {
		req.SetAuthToken(token)
	}
	return req
}

// decode unwraps the response envelope and returns its data payload.
func decode(resp *resty.Response) (json.RawMessage, error) {
	if resp.StatusCode() == http.StatusNoContent {
		return nil, nil
	}
	var env envelope
	if len(resp.Body()) > 0 {
		if err := json.Unmarshal(resp.Body(), &env); err != nil && !resp.IsError() {
			return nil, fmt.Errorf("decoding %s response: %w", resp.Request.URL, err)
		}
	}
	if resp.IsError() {
		msg := env.Message
		if msg == "" {
			msg = http.StatusText(resp.StatusCode())
		}
		return nil, &APIError{Status: resp.StatusCode(), Message: msg, Fields: env.Errors}
	}
	return env.Data, nil
}

func (c *Client) do(ctx context.Context, req *resty.Request, method, path string) (json.RawMessage, error) {
	resp, err := req.Execute(method, path)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	return decode(resp)
}

// transient reports failures worth one more attempt: network errors and gateway statuses.
func transient(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Status {
		case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			return true
		}
		return false
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

// read performs a GET, retrying once on a transient failure.
func (c *Client) read(ctx context.Context, path string) (json.RawMessage, error) {
	data, err := c.do(ctx, c.request(ctx), http.MethodGet, path)
	if !transient(err) {
		return data, err
	}
	select {
	case <-time.After(c.retryDelay):
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return c.do(ctx, c.request(ctx), http.MethodGet, path)
}

// write sends a mutation once. Writes are never retried.
func (c *Client) write(ctx context.Context, method, path string, body, out interface{}) error {
	if !c.session.Authenticated() {
		return ErrNotAuthenticated
	}
	req := c.request(ctx)
	if body != nil {
		req.SetBody(body)
	}
	data, err := c.do(ctx, req, method, path)
	if err != nil {
		return err
	}
	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("decoding %s %s: %w", method, path, err)
		}
	}
	return nil
}

func fetch[T any](ctx context.Context, c *Client, key, path string) (T, error) {
	var out T
	generation := c.cache.Generation()
	data, err := c.read(ctx, path)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return out, fmt.Errorf("decoding %s: %w", path, err)
	}
	c.cache.Store(key, out, generation)
	return out, nil
}

// get serves key from the cache. A stale hit is returned immediately and revalidated in the
// background; a miss is fetched once no matter how many callers ask concurrently.
func get[T any](ctx context.Context, c *Client, key, path string) (T, error) {
	if v, fresh, ok := c.cache.Get(key); ok {
		if typed, ok := v.(T); ok {
			if !fresh {
				revalidate[T](c, key, path)
			}
			return typed, nil
		}
	}
	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		return fetch[T](ctx, c, key, path)
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}

func revalidate[T any](c *Client, key, path string) {
	c.refreshes.Add(1)
	go func() {
		defer c.refreshes.Done()
		ctx, cancel := context.WithTimeout(context.Background(), c.refreshTimeout)
		defer cancel()
		// 刷新失败时保留旧值，下次读取再尝试
		_, _, _ = c.group.Do(key, func() (interface{}, error) {
			return fetch[T](ctx, c, key, path)
		})
	}()
}

func unmarshal(data []byte, out interface{}) error {
	if len(data) == 0 {
		return errors.New("client: empty response data")
	}
	return json.Unmarshal(data, out)
}
