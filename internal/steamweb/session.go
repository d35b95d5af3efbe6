package steamweb

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Session is the authenticated identity context produced by a completed login
// exchange: the long-lived OAuth token, the web-guard login cookies, and the
// account's steam id. Once built, a Session is never mutated; a new login
// produces a wholly new record.
//
// A Session is secret material. It is only ever handed out wrapped in a
// Secret, and the serialized form (field names below) is itself to be treated
// as secret by whoever persists it.
type Session struct {
	SessionID        string `json:"SessionID"`
	SteamLogin       string `json:"SteamLogin"`
	SteamLoginSecure string `json:"SteamLoginSecure"`
	WebCookie        string `json:"WebCookie,omitempty"`
	OAuthToken       string `json:"OAuthToken"`
	SteamID          uint64 `json:"SteamID"`
}

// sessionJSON mirrors Session but defers steam id parsing so that persisted
// records written by other tools (which sometimes quote the id) still load.
type sessionJSON struct {
	SessionID        string          `json:"SessionID"`
	SteamLogin       string          `json:"SteamLogin"`
	SteamLoginSecure string          `json:"SteamLoginSecure"`
	WebCookie        string          `json:"WebCookie"`
	OAuthToken       string          `json:"OAuthToken"`
	SteamID          json.RawMessage `json:"SteamID"`
}

// UnmarshalJSON accepts the steam id as either a JSON number or a quoted
// decimal string. A value that parses as neither fails with
// ErrMalformedSession: the shape was fine but the value is wrong.
func (s *Session) UnmarshalJSON(data []byte) error {
	var raw sessionJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	id, err := parseSteamID(raw.SteamID)
	if err != nil {
		return err
	}
	s.SessionID = raw.SessionID
	s.SteamLogin = raw.SteamLogin
	s.SteamLoginSecure = raw.SteamLoginSecure
	s.WebCookie = raw.WebCookie
	s.OAuthToken = raw.OAuthToken
	s.SteamID = id
	return nil
}

func parseSteamID(raw json.RawMessage) (uint64, error) {
	trimmed := bytes.Trim(bytes.TrimSpace(raw), `"`)
	if len(trimmed) == 0 {
		return 0, fmt.Errorf("%w: empty steam id", ErrMalformedSession)
	}
	id, err := strconv.ParseUint(string(trimmed), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: steam id %q is not an unsigned integer", ErrMalformedSession, string(trimmed))
	}
	return id, nil
}

// Secret wraps a Session so that access to the fields is always an explicit,
// reviewable act. Reflexive formatting of a Secret prints a redacted marker,
// and json.Marshal of a Secret never emits the fields; the one deliberate
// serialization path is Serialize.
type Secret struct {
	session Session
}

// NewSecret wraps a completed session. Callers hand over ownership; the
// wrapper's copy is wiped independently of the original.
func NewSecret(session Session) *Secret {
	return &Secret{session: session}
}

// Reveal grants access to the wrapped session. The returned pointer aliases
// the wrapper's storage and must not outlive it.
func (s *Secret) Reveal() *Session {
	return &s.session
}

// Clone returns an independent copy. Each clone wipes its own storage.
func (s *Secret) Clone() *Secret {
	if s == nil {
		return nil
	}
	return &Secret{session: s.session}
}

// Wipe clears the wrapped session. Go strings are immutable, so this is a
// best-effort clear of the struct fields rather than a guaranteed overwrite of
// the underlying pages; it still keeps a wiped wrapper from ever re-exposing
// the credentials through Reveal or Serialize.
func (s *Secret) Wipe() {
	if s == nil {
		return
	}
	s.session = Session{}
}

// Serialize is the single deliberate serialization path for a Secret. The
// output carries the credentials in the clear and must be handled as secret
// material by the caller.
func (s *Secret) Serialize() ([]byte, error) {
	return json.Marshal(s.session)
}

// DeserializeSession parses a previously serialized session back into a
// Secret. It fails with ErrMalformedSession when the steam id field is not an
// unsigned integer.
func DeserializeSession(data []byte) (*Secret, error) {
	var session Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, err
	}
	return NewSecret(session), nil
}

// String implements fmt.Stringer with a redacted marker so a Secret can never
// leak through casual logging.
func (s *Secret) String() string {
	return "Secret(steamweb.Session)[REDACTED]"
}

// GoString keeps %#v from dumping the fields.
func (s *Secret) GoString() string {
	return s.String()
}

// MarshalJSON keeps an incidental json.Marshal of a containing struct from
// leaking the session. Use Serialize for deliberate persistence.
func (s *Secret) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}
