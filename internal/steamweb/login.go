package steamweb

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"
)

// OAuth client metadata the official mobile app presents on login.
const (
	oauthClientID = "DE45CD61"
	oauthScope    = "read_profile write_profile read_client write_client"
)

// Credentials are the inputs to a login attempt. The password arrives already
// encrypted by a collaborator that performed the RSA handshake; this layer
// treats it as an opaque string. The optional fields are filled in when a
// previous attempt reported that the server wants them.
type Credentials struct {
	Username          string
	EncryptedPassword string
	TwoFactorCode     string
	EmailCode         string
	CaptchaGID        string
	CaptchaText       string
	RSATimestamp      string
}

// loginOutcome is the three-way classification of a login response: an inline
// OAuth payload, transfer data requiring a relay step, or neither.
type loginOutcome int

const (
	outcomeNone loginOutcome = iota
	outcomeOAuth
	outcomeTransfer
)

// classifyLogin sorts a login response into one of the three outcomes. A
// response carrying transfer URLs without parameters (or vice versa) is a
// protocol error: the server answered, but nonsensically.
func classifyLogin(resp *LoginResponse) (loginOutcome, error) {
	if resp.OAuth != nil {
		return outcomeOAuth, nil
	}
	hasURLs := len(resp.TransferURLs) > 0
	hasParams := resp.TransferParams != nil
	switch {
	case hasURLs && hasParams:
		return outcomeTransfer, nil
	case hasURLs && !hasParams:
		return outcomeNone, &ProtocolError{Op: "login", Reason: "transfer_urls present without transfer_parameters"}
	case !hasURLs && hasParams:
		return outcomeNone, &ProtocolError{Op: "login", Reason: "transfer_parameters present without transfer_urls"}
	default:
		return outcomeNone, nil
	}
}

// Login executes the primary login call and, when the response carries
// transfer data instead of an inline OAuth payload, the secondary relay step.
// On success the client's session is replaced with a freshly materialized
// record. When the server answers without credentials the response is returned
// alongside ErrNoCredentials so the caller can inspect the captcha/two-factor
// flags and decide whether to re-prompt; no session is created or replaced in
// that case.
func (c *Client) Login(ctx context.Context, creds Credentials) (*LoginResponse, error) {
	form := url.Values{}
	form.Set("donotcache", strconv.FormatInt(time.Now().UnixMilli(), 10))
	form.Set("username", creds.Username)
	form.Set("password", creds.EncryptedPassword)
	form.Set("twofactorcode", creds.TwoFactorCode)
	form.Set("emailauth", creds.EmailCode)
	form.Set("captchagid", creds.CaptchaGID)
	form.Set("captcha_text", creds.CaptchaText)
	form.Set("rsatimestamp", creds.RSATimestamp)
	form.Set("remember_login", "true")
	form.Set("oauth_client_id", oauthClientID)
	form.Set("oauth_scope", oauthScope)

	req, err := c.postForm(ctx, c.endpoints.CommunityURL+"/login/dologin", form)
	if err != nil {
		return nil, fmt.Errorf("steamweb login: create request failed: %w", err)
	}

	status, body, err := c.do(req)
	if err != nil {
		return nil, fmt.Errorf("steamweb login: request failed: %w", err)
	}
	log.Tracef("steamweb login: status=%d", status)

	var resp LoginResponse
	if err = json.Unmarshal(body, &resp); err != nil {
		log.Tracef("steamweb login: raw response: %s", string(body))
		return nil, &DecodeError{Op: "login", Err: err}
	}

	outcome, err := classifyLogin(&resp)
	if err != nil {
		return nil, err
	}

	switch outcome {
	case outcomeOAuth:
		session, errBuild := c.materializeSession(resp.OAuth)
		if errBuild != nil {
			return nil, errBuild
		}
		c.setSession(session)
		return &resp, nil
	case outcomeTransfer:
		if errTransfer := c.transferLogin(ctx, &resp); errTransfer != nil {
			return nil, errTransfer
		}
		return &resp, nil
	default:
		return &resp, ErrNoCredentials
	}
}

// transferLogin relays the transfer parameters to every transfer URL and then
// materializes the session from the parameters themselves. The secure guard
// token is reused for both login cookies on this path; the primary path
// receives two distinct tokens, but the transfer response only carries one.
// This mirrors observed provider behavior and is a documented assumption, not
// something to silently correct.
func (c *Client) transferLogin(ctx context.Context, resp *LoginResponse) error {
	params := resp.TransferParams
	payload, err := json.Marshal(params)
	if err != nil {
		return fmt.Errorf("steamweb transfer: marshal parameters failed: %w", err)
	}

	log.Debug("steamweb transfer: relaying transfer parameters")
	for _, target := range resp.TransferURLs {
		log.Tracef("steamweb transfer: posting to %s", target)
		req, errReq := c.request(ctx, http.MethodPost, target, bytes.NewReader(payload))
		if errReq != nil {
			return fmt.Errorf("steamweb transfer: create request failed: %w", errReq)
		}
		req.Header.Set("Content-Type", "application/json")
		if _, _, errDo := c.do(req); errDo != nil {
			return fmt.Errorf("steamweb transfer: relay to %s failed: %w", target, errDo)
		}
	}

	session, err := c.materializeSession(&OAuthData{
		OAuthToken:    params.Auth,
		SteamID:       params.SteamID,
		WGToken:       params.TokenSecure,
		WGTokenSecure: params.TokenSecure,
		WebCookie:     params.WebCookie,
	})
	if err != nil {
		return err
	}
	c.setSession(session)
	return nil
}

// materializeSession builds the secret session record from an OAuth-shaped
// payload plus the session id the login endpoint is contractually required to
// have set as a cookie. A missing session id cookie is an invariant violation,
// not a recoverable condition.
func (c *Client) materializeSession(data *OAuthData) (*Secret, error) {
	steamID, err := strconv.ParseUint(data.SteamID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: steam id %q is not an unsigned integer", ErrMalformedSession, data.SteamID)
	}

	sessionID, ok := c.cookies.get(sessionIDCookie)
	if !ok || sessionID == "" {
		log.Error("steamweb login: session id cookie missing after login")
		return nil, fmt.Errorf("steamweb login: invariant violation: session id cookie not set by login endpoint")
	}

	return NewSecret(Session{
		SessionID:        sessionID,
		SteamLogin:       loginCookie(data.SteamID, data.WGToken),
		SteamLoginSecure: loginCookie(data.SteamID, data.WGTokenSecure),
		WebCookie:        data.WebCookie,
		OAuthToken:       data.OAuthToken,
		SteamID:          steamID,
	}), nil
}

// loginCookie builds a web login cookie value: the steam id and a guard token
// joined by an URL-encoded double pipe.
func loginCookie(steamID, guardToken string) string {
	return steamID + "%7C%7C" + guardToken
}

// UpdateSession pings the community login page so the server refreshes the
// session cookies in the store. It does not touch the secret session record.
func (c *Client) UpdateSession(ctx context.Context) error {
	target := c.endpoints.CommunityURL + "/login?oauth_client_id=" + oauthClientID +
		"&oauth_scope=" + url.QueryEscape(oauthScope)
	req, err := c.get(ctx, target)
	if err != nil {
		return fmt.Errorf("steamweb update session: create request failed: %w", err)
	}
	status, _, err := c.do(req)
	if err != nil {
		return fmt.Errorf("steamweb update session: request failed: %w", err)
	}
	log.Tracef("steamweb update session: status=%d", status)
	return nil
}
