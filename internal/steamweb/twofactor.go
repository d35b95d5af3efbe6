package steamweb

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"
)

// QueryTime asks the provider for its current time and tolerance parameters.
// The call is unauthenticated; the result feeds time-synchronized code
// generation.
func (c *Client) QueryTime(ctx context.Context) (*QueryTimeResponse, error) {
	req, err := c.request(ctx, "POST", c.endpoints.APIURL+"/ITwoFactorService/QueryTime/v0001", strings.NewReader("steamid=0"))
	if err != nil {
		return nil, fmt.Errorf("steamweb query time: create request failed: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	_, body, err := c.do(req)
	if err != nil {
		return nil, fmt.Errorf("steamweb query time: request failed: %w", err)
	}

	var resp APIResponse[QueryTimeResponse]
	if err = json.Unmarshal(body, &resp); err != nil {
		log.Tracef("steamweb query time: raw response: %s", string(body))
		return nil, &DecodeError{Op: "query time", Err: err}
	}
	return &resp.Response, nil
}

// AddAuthenticator starts the authenticator linking process for the account
// the session belongs to. It does not verify any prerequisites (sms or email
// confirmations) on the caller's behalf; the server enforces those itself.
func (c *Client) AddAuthenticator(ctx context.Context, deviceID string) (*AddAuthenticatorResponse, error) {
	session, err := c.requireSession()
	if err != nil {
		return nil, err
	}

	form := url.Values{}
	form.Set("access_token", session.OAuthToken)
	form.Set("steamid", strconv.FormatUint(session.SteamID, 10))
	form.Set("authenticator_type", "1")
	form.Set("device_identifier", deviceID)
	form.Set("sms_phone_id", "1")

	req, err := c.postForm(ctx, c.endpoints.APIURL+"/ITwoFactorService/AddAuthenticator/v0001", form)
	if err != nil {
		return nil, fmt.Errorf("steamweb add authenticator: create request failed: %w", err)
	}

	_, body, err := c.do(req)
	if err != nil {
		return nil, fmt.Errorf("steamweb add authenticator: request failed: %w", err)
	}

	var resp APIResponse[AddAuthenticatorResponse]
	if err = json.Unmarshal(body, &resp); err != nil {
		log.Tracef("steamweb add authenticator: raw response: %s", string(body))
		return nil, &DecodeError{Op: "add authenticator", Err: err}
	}
	return &resp.Response, nil
}

// FinalizeAuthenticator completes enrollment with the SMS activation code and
// a code generated by the authenticator being enrolled, proving the client
// holds the shared secret.
func (c *Client) FinalizeAuthenticator(ctx context.Context, smsCode, authenticatorCode string, authenticatorTime uint64) (*FinalizeAddAuthenticatorResponse, error) {
	session, err := c.requireSession()
	if err != nil {
		return nil, err
	}

	form := url.Values{}
	form.Set("steamid", strconv.FormatUint(session.SteamID, 10))
	form.Set("access_token", session.OAuthToken)
	form.Set("activation_code", smsCode)
	form.Set("authenticator_code", authenticatorCode)
	form.Set("authenticator_time", strconv.FormatUint(authenticatorTime, 10))

	req, err := c.postForm(ctx, c.endpoints.APIURL+"/ITwoFactorService/FinalizeAddAuthenticator/v0001", form)
	if err != nil {
		return nil, fmt.Errorf("steamweb finalize authenticator: create request failed: %w", err)
	}

	_, body, err := c.do(req)
	if err != nil {
		return nil, fmt.Errorf("steamweb finalize authenticator: request failed: %w", err)
	}

	var resp APIResponse[FinalizeAddAuthenticatorResponse]
	if err = json.Unmarshal(body, &resp); err != nil {
		log.Tracef("steamweb finalize authenticator: raw response: %s", string(body))
		return nil, &DecodeError{Op: "finalize authenticator", Err: err}
	}
	return &resp.Response, nil
}

// RemoveAuthenticator revokes the enrolled authenticator using its revocation
// code.
func (c *Client) RemoveAuthenticator(ctx context.Context, revocationCode string) (*RemoveAuthenticatorResponse, error) {
	session, err := c.requireSession()
	if err != nil {
		return nil, err
	}

	form := url.Values{}
	form.Set("steamid", strconv.FormatUint(session.SteamID, 10))
	form.Set("steamguard_scheme", "2")
	form.Set("revocation_code", revocationCode)
	form.Set("access_token", session.OAuthToken)

	req, err := c.postForm(ctx, c.endpoints.APIURL+"/ITwoFactorService/RemoveAuthenticator/v0001", form)
	if err != nil {
		return nil, fmt.Errorf("steamweb remove authenticator: create request failed: %w", err)
	}

	_, body, err := c.do(req)
	if err != nil {
		return nil, fmt.Errorf("steamweb remove authenticator: request failed: %w", err)
	}

	var resp APIResponse[RemoveAuthenticatorResponse]
	if err = json.Unmarshal(body, &resp); err != nil {
		log.Tracef("steamweb remove authenticator: raw response: %s", string(body))
		return nil, &DecodeError{Op: "remove authenticator", Err: err}
	}
	return &resp.Response, nil
}
