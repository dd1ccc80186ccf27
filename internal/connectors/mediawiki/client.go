package mediawiki

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/tidwall/gjson"
	"golang.org/x/oauth2"

	"github.com/custodia-labs/wikistats/internal/core/domain"
	"github.com/custodia-labs/wikistats/internal/logger"
)

const (
	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultRetries is the default number of retries for failed reads.
	DefaultRetries = 3

	// DefaultRetryInterval is the initial delay between read retries.
	DefaultRetryInterval = 500 * time.Millisecond

	// DefaultUserAgent identifies the bot to wiki operators.
	DefaultUserAgent = "wikistats"

	// maxResponseBytes bounds how much of a response body is read.
	maxResponseBytes = 16 << 20
)

// ClientConfig holds the settings shared by every client of a family.
type ClientConfig struct {
	UserAgent     string
	Timeout       time.Duration
	Retries       int
	RetryInterval time.Duration

	// Username and Password log in with a bot password.
	Username string
	Password string

	// PasswordFunc supplies the password on first login when Password is
	// empty, for example by prompting on a terminal.
	PasswordFunc func() (string, error)

	// OAuthToken, when set, authenticates every request with a bearer
	// token instead of logging in.
	OAuthToken string

	// HTTPClient overrides the transport. Mainly for tests.
	HTTPClient *http.Client
}

func (c ClientConfig) withDefaults() ClientConfig {
	if c.UserAgent == "" {
		c.UserAgent = DefaultUserAgent
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.Retries < 0 {
		c.Retries = 0
	}
	if c.RetryInterval <= 0 {
		c.RetryInterval = DefaultRetryInterval
	}
	return c
}

// Client talks to the action API of one wiki.
type Client struct {
	endpoint    string
	cfg         ClientConfig
	http        *http.Client
	rateLimiter *RateLimiter

	mu       sync.Mutex
	loggedIn bool
}

// NewClient creates a client for an api.php endpoint.
// The rate limiter may be shared between clients.
func NewClient(endpoint string, cfg ClientConfig, limiter *RateLimiter) (*Client, error) {
	u, err := url.Parse(endpoint)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidEndpoint, endpoint)
	}
	cfg = cfg.withDefaults()
	if limiter == nil {
		limiter = NewRateLimiter(DefaultDelay)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}

	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{}
	}
	base := *hc
	base.Jar = jar
	base.Timeout = cfg.Timeout

	httpClient := &base
	if cfg.OAuthToken != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.OAuthToken})
		ctx := context.WithValue(context.Background(), oauth2.HTTPClient, &base)
		httpClient = oauth2.NewClient(ctx, ts)
		httpClient.Jar = jar
		httpClient.Timeout = cfg.Timeout
	}

	return &Client{
		endpoint:    endpoint,
		cfg:         cfg,
		http:        httpClient,
		rateLimiter: limiter,
	}, nil
}

// Endpoint returns the api.php URL.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Get performs a read request. Transient failures are retried with
// exponential backoff.
func (c *Client) Get(ctx context.Context, params url.Values) (gjson.Result, error) {
	var out gjson.Result
	op := func() error {
		res, err := c.do(ctx, http.MethodGet, params)
		if err != nil {
			if ctx.Err() != nil || !isTransient(err) {
				return backoff.Permanent(err)
			}
			logger.Debug("mediawiki: retrying %s after %v", params.Get("action"), err)
			return err
		}
		out = res
		return nil
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.cfg.RetryInterval
	policy := backoff.WithContext(backoff.WithMaxRetries(b, uint64(c.cfg.Retries)), ctx)
	if err := backoff.Retry(op, policy); err != nil {
		return gjson.Result{}, err
	}
	return out, nil
}

// Post performs a write request. Writes are never retried.
func (c *Client) Post(ctx context.Context, params url.Values) (gjson.Result, error) {
	return c.do(ctx, http.MethodPost, params)
}

// do sends one request and decodes the JSON body. API error objects are
// returned as *APIError, or *RateLimitError when the wiki asks us to wait.
func (c *Client) do(ctx context.Context, method string, params url.Values) (gjson.Result, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return gjson.Result{}, fmt.Errorf("rate limit wait: %w", err)
	}

	q := cloneValues(params)
	q.Set("format", "json")
	q.Set("formatversion", "2")

	var req *http.Request
	var err error
	if method == http.MethodPost {
		req, err = http.NewRequestWithContext(ctx, method, c.endpoint, strings.NewReader(q.Encode()))
		if err == nil {
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		}
	} else {
		req, err = http.NewRequestWithContext(ctx, method, c.endpoint+"?"+q.Encode(), http.NoBody)
	}
	if err != nil {
		return gjson.Result{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", c.cfg.UserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("%s %s: %w", method, params.Get("action"), err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return gjson.Result{}, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		wait := retryAfter(resp)
		c.rateLimiter.Pause(wait)
		return gjson.Result{}, &RateLimitError{Code: "http-429", RetryAfter: wait}
	}
	if resp.StatusCode != http.StatusOK {
		return gjson.Result{}, &APIError{
			StatusCode: resp.StatusCode,
			Info:       http.StatusText(resp.StatusCode),
			Endpoint:   c.endpoint,
		}
	}
	if !gjson.ValidBytes(body) {
		return gjson.Result{}, fmt.Errorf("%w from %s", ErrMalformedResponse, c.endpoint)
	}

	res := gjson.ParseBytes(body)
	if apiErr := res.Get("error"); apiErr.Exists() {
		code := apiErr.Get("code").String()
		if code == codeMaxLag || code == codeRateLimited {
			wait := retryAfter(resp)
			c.rateLimiter.Pause(wait)
			return gjson.Result{}, &RateLimitError{Code: code, RetryAfter: wait}
		}
		return gjson.Result{}, &APIError{
			StatusCode: resp.StatusCode,
			Code:       code,
			Info:       apiErr.Get("info").String(),
			Endpoint:   c.endpoint,
		}
	}
	return res, nil
}

// EnsureSession logs in with the bot password unless the client already
// has a session or uses an OAuth token.
func (c *Client) EnsureSession(ctx context.Context) error {
	if c.cfg.OAuthToken != "" {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.loggedIn {
		return nil
	}

	if c.cfg.Username == "" {
		return fmt.Errorf("login: %w: no bot username configured", domain.ErrAuthRequired)
	}
	password := c.cfg.Password
	if password == "" && c.cfg.PasswordFunc != nil {
		p, err := c.cfg.PasswordFunc()
		if err != nil {
			return fmt.Errorf("read password: %w", err)
		}
		password = p
		c.cfg.Password = p
	}
	if password == "" {
		return fmt.Errorf("login: %w: no bot password configured", domain.ErrAuthRequired)
	}

	token, err := c.Token(ctx, "login")
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}

	res, err := c.Post(ctx, url.Values{
		"action":     {"login"},
		"lgname":     {c.cfg.Username},
		"lgpassword": {password},
		"lgtoken":    {token},
	})
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}
	if result := res.Get("login.result").String(); result != "Success" {
		reason := res.Get("login.reason").String()
		if reason == "" {
			reason = result
		}
		return fmt.Errorf("%w: %w as %s: %s", domain.ErrAuthInvalid, ErrLoginFailed, c.cfg.Username, reason)
	}

	c.loggedIn = true
	logger.Info("mediawiki: logged in to %s as %s", c.endpoint, c.cfg.Username)
	return nil
}

// Token fetches a token of the given type ("login" or "csrf").
func (c *Client) Token(ctx context.Context, kind string) (string, error) {
	res, err := c.Get(ctx, url.Values{
		"action": {"query"},
		"meta":   {"tokens"},
		"type":   {kind},
	})
	if err != nil {
		return "", fmt.Errorf("get %s token: %w", kind, err)
	}
	token := res.Get("query.tokens." + kind + "token").String()
	if token == "" {
		return "", fmt.Errorf("get %s token: %w", kind, ErrMalformedResponse)
	}
	return token, nil
}

// resetSession forgets the login so the next write logs in again.
func (c *Client) resetSession() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loggedIn = false
}

func cloneValues(v url.Values) url.Values {
	out := make(url.Values, len(v)+2)
	for k, vals := range v {
		out[k] = append([]string(nil), vals...)
	}
	return out
}

// wrapStoreError marks a page read or write failure as a store failure,
// leaving domain.ErrNotFound untouched.
func wrapStoreError(op string, page domain.PageLocator, err error) error {
	if errors.Is(err, domain.ErrNotFound) {
		return err
	}
	return fmt.Errorf("%w: %s %s: %w", domain.ErrStoreUnavailable, op, page, err)
}
