package ledgerbook

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/ledgerbook/ledgerbook-go/internal/cache"
	"github.com/ledgerbook/ledgerbook-go/internal/transport"
	internalTypes "github.com/ledgerbook/ledgerbook-go/internal/types"
)

const (
	// DefaultBaseURL is the default ledgerbook API base URL
	DefaultBaseURL = internalTypes.DefaultBaseURL

	// DefaultTimeout is the default HTTP client timeout
	DefaultTimeout = internalTypes.DefaultTimeout

	// UserAgent is the user agent string
	UserAgent = internalTypes.UserAgent
)

// Client is the main ledgerbook API client
type Client struct {
	// Service interfaces
	Auth           AuthService
	Users          UserService
	Backups        BackupService
	Ledgers        LedgerService
	Accounts       AccountService
	Transactions   TransactionService
	Categories     CategoryService
	Tags           TagService
	MutualFunds    MutualFundService
	PhysicalAssets PhysicalAssetService
	Insights       InsightService

	// Internal fields
	baseURL    string
	httpClient *http.Client
	transport  Transport
	options    *ClientOptions
	session    *Session
	cache      *cache.QueryCache
}

// ClientOptions configures the client
type ClientOptions struct {
	// BaseURL overrides the default API base URL
	BaseURL string

	// HTTPClient allows using a custom HTTP client
	HTTPClient *http.Client

	// Timeout sets the HTTP client timeout
	Timeout time.Duration

	// Token provides direct authentication token
	Token string

	// SessionFile path for session persistence
	SessionFile string

	// Logger for debug logging
	Logger Logger

	// RetryConfig configures retry behavior. Nil disables retries.
	RetryConfig *RetryConfig

	// RateLimiter for rate limiting
	RateLimiter RateLimiter

	// Hooks for observability
	Hooks *Hooks

	// CacheTTL enables the GET response cache when positive
	CacheTTL time.Duration

	// CacheSize bounds the number of cached responses
	CacheSize int

	// SentryDSN enables Sentry error tracking when set
	SentryDSN string

	// SentryOptions allows custom Sentry configuration
	SentryOptions *sentry.ClientOptions
}

// Session represents an authenticated session
type Session = internalTypes.Session

// RetryConfig configures retry behavior
type RetryConfig = internalTypes.RetryConfig

// Hooks provides lifecycle hooks for requests
type Hooks = internalTypes.Hooks

// Logger interface for logging
type Logger = internalTypes.Logger

// RateLimiter interface for rate limiting
type RateLimiter interface {
	Wait(ctx context.Context) error
}

// Transport handles HTTP communication
type Transport interface {
	Do(ctx context.Context, req *transport.Request, result interface{}) error
	Upload(ctx context.Context, path, fieldName, fileName string, data []byte, result interface{}) error
	Download(ctx context.Context, path string, w io.Writer) (string, error)
	SetAuth(token string)
	SetSession(session *internalTypes.Session)
}

// NewClient creates a new ledgerbook client
func NewClient(opts *ClientOptions) (*Client, error) {
	if opts == nil {
		opts = &ClientOptions{}
	}

	if opts.SentryDSN != "" || opts.SentryOptions != nil {
		sentryOpts := sentry.ClientOptions{}

		if opts.SentryOptions != nil {
			sentryOpts = *opts.SentryOptions
		}

		if opts.SentryDSN != "" {
			sentryOpts.Dsn = opts.SentryDSN
		}

		if sentryOpts.Environment == "" {
			sentryOpts.Environment = "production"
		}

		// A broken DSN must not stop the client from working.
		if err := sentry.Init(sentryOpts); err != nil {
			if opts.Logger != nil {
				opts.Logger.Error("Failed to initialize Sentry", "error", err)
			}
		}
	}

	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	opts.BaseURL = strings.TrimRight(opts.BaseURL, "/")

	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{
			Timeout: DefaultTimeout,
		}
	}

	if opts.Timeout > 0 {
		opts.HTTPClient.Timeout = opts.Timeout
	}

	trans := transport.NewRESTTransport(&transport.Options{
		BaseURL:     opts.BaseURL,
		HTTPClient:  opts.HTTPClient,
		RetryConfig: opts.RetryConfig,
		Logger:      opts.Logger,
		Hooks:       opts.Hooks,
	})

	c := &Client{
		baseURL:    opts.BaseURL,
		httpClient: opts.HTTPClient,
		transport:  trans,
		options:    opts,
	}

	if opts.CacheTTL > 0 {
		c.cache = cache.New(opts.CacheSize, opts.CacheTTL)
	}

	c.initServices()

	if opts.SessionFile != "" {
		if err := c.Auth.LoadSession(opts.SessionFile); err != nil && opts.Logger != nil {
			opts.Logger.Warn("Failed to load session", "error", err)
		}
	}

	// An explicit token wins over a stored session.
	if opts.Token != "" {
		c.SetToken(opts.Token)
	}

	return c, nil
}

// NewClientWithToken creates a client with an auth token
func NewClientWithToken(token string) (*Client, error) {
	return NewClient(&ClientOptions{
		Token: token,
	})
}

// initServices initializes all service implementations
func (c *Client) initServices() {
	c.Auth = newAuthService(c)
	c.Users = &userService{client: c}
	c.Backups = newBackupService(c)
	c.Ledgers = &ledgerService{client: c}
	c.Accounts = &accountService{client: c}
	c.Transactions = &transactionService{client: c}
	c.Categories = &categoryService{client: c}
	c.Tags = &tagService{client: c}
	c.MutualFunds = &mutualFundService{client: c}
	c.PhysicalAssets = &physicalAssetService{client: c}
	c.Insights = &insightService{client: c}
}

// SetToken sets the authentication token
func (c *Client) SetToken(token string) {
	c.transport.SetAuth(token)
	if c.session == nil {
		c.session = &Session{}
	}
	if c.session.Token != token {
		// Cached reads belong to the previous token's user.
		c.InvalidateCache()
	}
	c.session.Token = token
}

// GetSession returns the current session
func (c *Client) GetSession() *Session {
	return c.session
}

// InvalidateCache drops cached responses whose key starts with one of the
// prefixes. With no prefixes the whole cache is dropped.
func (c *Client) InvalidateCache(prefixes ...string) {
	if c.cache == nil {
		return
	}
	if len(prefixes) == 0 {
		c.cache.Purge()
		return
	}
	removed := c.cache.Invalidate(prefixes...)
	if c.options.Logger != nil && removed > 0 {
		c.options.Logger.Debug("Cache invalidated", "prefixes", prefixes, "removed", removed)
	}
}

// get performs a GET, reading through the response cache when enabled
func (c *Client) get(ctx context.Context, path string, query url.Values, result interface{}) error {
	key := path
	if len(query) > 0 {
		key += "?" + query.Encode()
	}

	if c.cache != nil {
		if body, ok := c.cache.Get(key); ok {
			return json.Unmarshal(body, result)
		}

		var raw json.RawMessage
		if err := c.do(ctx, &transport.Request{Method: http.MethodGet, Path: path, Query: query}, &raw); err != nil {
			return err
		}
		// Empty bodies are never cached
		if len(raw) == 0 {
			return nil
		}
		c.cache.Set(key, raw)
		return json.Unmarshal(raw, result)
	}

	return c.do(ctx, &transport.Request{Method: http.MethodGet, Path: path, Query: query}, result)
}

// send performs a mutating request. Once it succeeds the given cache
// prefixes are invalidated; with none, the cache is left alone.
func (c *Client) send(ctx context.Context, method, path string, body, result interface{}, invalidate ...string) error {
	if err := c.do(ctx, &transport.Request{Method: method, Path: path, Body: body}, result); err != nil {
		return err
	}
	if len(invalidate) > 0 {
		c.InvalidateCache(invalidate...)
	}
	return nil
}

// do applies rate limiting and error reporting around the transport
func (c *Client) do(ctx context.Context, req *transport.Request, result interface{}) error {
	if c.options.RateLimiter != nil {
		if err := c.options.RateLimiter.Wait(ctx); err != nil {
			captureException(ctx, err, nil)
			return fmt.Errorf("rate limiter: %w", err)
		}
	}

	start := time.Now()
	err := c.transport.Do(ctx, req, result)
	duration := time.Since(start)

	if err != nil && !IsValidationError(err) {
		captureException(ctx, err, func(scope *sentry.Scope) {
			scope.SetTag("http.method", req.Method)
			scope.SetTag("http.route", routeTemplate(req.Path))
			scope.SetContext("request", map[string]interface{}{
				"path":     req.Path,
				"query":    req.Query.Encode(),
				"duration": duration.String(),
			})
		})
	}

	return err
}

// captureException reports err to the Sentry hub on ctx, or the global hub
func captureException(ctx context.Context, err error, configure func(scope *sentry.Scope)) {
	hub := sentry.GetHubFromContext(ctx)
	if hub == nil {
		hub = sentry.CurrentHub()
	}
	hub.WithScope(func(scope *sentry.Scope) {
		if configure != nil {
			configure(scope)
		}
		hub.CaptureException(err)
	})
}

// Close flushes any pending Sentry events and performs cleanup
func (c *Client) Close() {
	sentry.Flush(2 * time.Second)
}

// routeTemplate replaces numeric path segments with {id} so that Sentry
// groups events by endpoint rather than by resource
func routeTemplate(path string) string {
	parts := strings.Split(path, "/")
	for i, part := range parts {
		if part == "" {
			continue
		}
		if isNumeric(part) {
			parts[i] = "{id}"
		}
	}
	return strings.Join(parts, "/")
}

// isNumeric checks if s consists only of ASCII digits
func isNumeric(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return len(s) > 0
}

// ledgerPath builds /ledger/{id}/<suffix...>
func ledgerPath(ledgerID int, suffix ...string) string {
	p := fmt.Sprintf("/ledger/%d", ledgerID)
	for _, s := range suffix {
		p += "/" + s
	}
	return p
}

// ledgerScopes lists the cache prefixes of the named collections of a ledger
func ledgerScopes(ledgerID int, names ...string) []string {
	scopes := make([]string, len(names))
	for i, name := range names {
		scopes[i] = ledgerPath(ledgerID, name)
	}
	return scopes
}
