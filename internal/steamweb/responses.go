package steamweb

// APIResponse is the envelope the Steam web API wraps most service responses
// in: a single "response" object holding the payload.
type APIResponse[T any] struct {
	Response T `json:"response"`
}

// QueryTimeResponse carries server time and the tolerance parameters returned
// by ITwoFactorService/QueryTime. ServerTime arrives as a decimal string.
type QueryTimeResponse struct {
	ServerTime                        string `json:"server_time"`
	SkewToleranceSeconds              string `json:"skew_tolerance_seconds"`
	LargeTimeJink                     string `json:"large_time_jink"`
	ProbeFrequencySeconds             int    `json:"probe_frequency_seconds"`
	AdjustedTimeProbeFrequencySeconds int    `json:"adjusted_time_probe_frequency_seconds"`
	HintProbeFrequencySeconds         int    `json:"hint_probe_frequency_seconds"`
	SyncTimeout                       int    `json:"sync_timeout"`
	TryAgainSeconds                   int    `json:"try_again_seconds"`
	MaxAttempts                       int    `json:"max_attempts"`
}

// OAuthData is the OAuth-shaped payload a successful login produces, either
// inline in the login response or reconstructed from transfer parameters.
// It is transient: consumed immediately to build a Session and not retained.
type OAuthData struct {
	OAuthToken    string `json:"oauth_token"`
	SteamID       string `json:"steamid"`
	WGToken       string `json:"wgtoken"`
	WGTokenSecure string `json:"wgtoken_secure"`
	WebCookie     string `json:"webcookie"`
}

// TransferParameters are relayed verbatim to each transfer URL and then reused
// to build the session once all relays complete.
type TransferParameters struct {
	SteamID       string `json:"steamid"`
	TokenSecure   string `json:"token_secure"`
	Auth          string `json:"auth"`
	RememberLogin bool   `json:"remember_login"`
	WebCookie     string `json:"webcookie"`
}

// LoginResponse is the structured result of POST /login/dologin. Exactly one
// of three shapes is expected on success: an inline OAuth payload, transfer
// URLs plus transfer parameters, or neither (in which case the flags describe
// what the caller must supply next).
type LoginResponse struct {
	Success           bool                `json:"success"`
	LoginComplete     bool                `json:"login_complete"`
	Message           string              `json:"message,omitempty"`
	CaptchaNeeded     bool                `json:"captcha_needed,omitempty"`
	CaptchaGID        string              `json:"captcha_gid,omitempty"`
	EmailAuthNeeded   bool                `json:"emailauth_needed,omitempty"`
	EmailDomain       string              `json:"emaildomain,omitempty"`
	RequiresTwoFactor bool                `json:"requires_twofactor,omitempty"`
	OAuth             *OAuthData          `json:"oauth,omitempty"`
	TransferURLs      []string            `json:"transfer_urls,omitempty"`
	TransferParams    *TransferParameters `json:"transfer_parameters,omitempty"`
}

// AddAuthenticatorResponse is the payload returned when authenticator linking
// starts. The secrets in here become the account's authenticator material and
// must be persisted before finalization is attempted.
type AddAuthenticatorResponse struct {
	SharedSecret   string `json:"shared_secret"`
	SerialNumber   string `json:"serial_number"`
	RevocationCode string `json:"revocation_code"`
	URI            string `json:"uri"`
	ServerTime     string `json:"server_time"`
	AccountName    string `json:"account_name"`
	TokenGID       string `json:"token_gid"`
	IdentitySecret string `json:"identity_secret"`
	Secret1        string `json:"secret_1"`
	Status         int    `json:"status"`
}

// FinalizeAddAuthenticatorResponse reports the outcome of the enrollment
// confirmation step. WantMore means the server wants another code before it
// commits the authenticator.
type FinalizeAddAuthenticatorResponse struct {
	Status     int    `json:"status"`
	ServerTime string `json:"server_time"`
	WantMore   bool   `json:"want_more"`
	Success    bool   `json:"success"`
}

// RemoveAuthenticatorResponse reports whether authenticator removal succeeded.
type RemoveAuthenticatorResponse struct {
	Success bool `json:"success"`
}

// PhoneValidateResponse describes a phone number as the provider sees it,
// including whether it is a VOIP number.
type PhoneValidateResponse struct {
	Success bool   `json:"success"`
	Number  string `json:"number"`
	IsValid bool   `json:"is_valid"`
	IsVOIP  bool   `json:"is_voip"`
	IsFixed bool   `json:"is_fixed"`
}
