// Package steamweb implements a client for Steam's account-security web API.
// It drives the multi-step login/credential-transfer protocol, keeps the
// resulting secret session material in lockstep with the cookie state every
// request is authenticated with, and exposes the authenticator and phone
// operations that reuse the session.
package steamweb

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
)

const (
	// userAgent mimics the Android webview the official mobile app embeds.
	// Steam keys mobile-specific behavior on this string.
	userAgent = "Mozilla/5.0 (Linux; U; Android 4.1.1; en-us; Google Nexus 4 - 4.1.1 - API 16 - 768x1280 Build/JRO03S) AppleWebKit/534.30 (KHTML, like Gecko) Version/4.0 Mobile Safari/534.30"

	// requestedWith identifies the official mobile app package to Steam.
	requestedWith = "com.valvesoftware.android.steam.community"
)

// Endpoints holds the process-wide base addresses, resolved once at startup
// and passed in explicitly rather than read from ambient globals.
type Endpoints struct {
	// CommunityURL is the web origin cookies are scoped to (login, phoneajax).
	CommunityURL string
	// APIURL is the ITwoFactorService origin.
	APIURL string
	// StoreURL hosts the phone validation endpoints.
	StoreURL string
}

// DefaultEndpoints returns the production Steam origins.
func DefaultEndpoints() Endpoints {
	return Endpoints{
		CommunityURL: "https://steamcommunity.com",
		APIURL:       "https://api.steampowered.com",
		StoreURL:     "https://store.steampowered.com",
	}
}

// Client is a single-session, synchronous Steam web API client. One Client
// holds exactly one logical session; the cookie store and session record are
// mutated in place on login and on every response, so concurrent use from
// multiple goroutines requires external synchronization.
type Client struct {
	httpClient *http.Client
	endpoints  Endpoints
	cookies    *cookieStore
	session    *Secret
}

// NewClient constructs a client with an empty cookie store and, optionally, a
// previously persisted session. The client performs no retries and enforces no
// timeout of its own; pass an http.Client configured with whatever deadline
// policy the caller wants.
func NewClient(httpClient *http.Client, endpoints Endpoints, session *Secret) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		httpClient: httpClient,
		endpoints:  endpoints,
		cookies:    newCookieStore(),
		session:    session,
	}
}

// Session returns the current secret session, or nil before login.
func (c *Client) Session() *Secret {
	return c.session
}

// Endpoints returns the base addresses the client was constructed with.
func (c *Client) Endpoints() Endpoints {
	return c.endpoints
}

// setSession replaces the session, wiping the record it displaces.
func (c *Client) setSession(session *Secret) {
	if c.session != nil {
		c.session.Wipe()
	}
	c.session = session
}

// request builds an outgoing request with the base headers and the current
// cookie header. Identity cookies are forced into the store first, so the
// cookie line always carries them plus the session id when a session exists.
func (c *Client) request(ctx context.Context, method, target string, body io.Reader) (*http.Request, error) {
	log.Tracef("steamweb: building request %s %s", method, target)
	c.cookies.applyIdentity(c.session)

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("X-Requested-With", requestedWith)
	req.Header.Set("Cookie", c.cookies.headerValue())
	return req, nil
}

// get builds a GET request for target.
func (c *Client) get(ctx context.Context, target string) (*http.Request, error) {
	return c.request(ctx, http.MethodGet, target, nil)
}

// postForm builds a form-encoded POST request for target.
func (c *Client) postForm(ctx context.Context, target string, form url.Values) (*http.Request, error) {
	req, err := c.request(ctx, http.MethodPost, target, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req, nil
}

// do executes a request, merges its Set-Cookie headers into the store, and
// returns the response body. Network failures propagate untouched; retry is
// the caller's policy, never this layer's.
func (c *Client) do(req *http.Request) (int, []byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	c.cookies.mergeSetCookie(resp.Header)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, err
	}
	return resp.StatusCode, body, nil
}

// requireSession guards the authenticated operations. The precondition is
// checked before any network call is made.
func (c *Client) requireSession() (*Session, error) {
	if c.session == nil {
		return nil, ErrNoSession
	}
	return c.session.Reveal(), nil
}
