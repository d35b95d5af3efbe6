package steamweb

import (
	"net/http"
	"sort"
	"strings"

	log "github.com/sirupsen/logrus"
)

// Identity cookies asserted on every request regardless of session state.
// They identify this client as the Android mobile app to Steam.
const (
	cookieMobileClientVersion = "0 (2.1.3)"
	cookieMobileClient        = "android"
	cookieSteamLanguage       = "english"

	sessionIDCookie = "sessionid"
)

// cookieStore holds the cookies scoped to the community origin. It is a plain
// name to value map: Steam's endpoints only care about the Cookie header line,
// never about path or expiry, so a full net/http cookie jar buys nothing here.
// The store is append/overwrite only; values are read back solely to compute
// the outgoing header and to extract the session id right after login.
type cookieStore struct {
	values map[string]string
}

func newCookieStore() *cookieStore {
	return &cookieStore{values: make(map[string]string)}
}

// set stores a cookie, last write wins.
func (c *cookieStore) set(name, value string) {
	c.values[name] = value
}

// get returns the stored value, if any.
func (c *cookieStore) get(name string) (string, bool) {
	v, ok := c.values[name]
	return v, ok
}

// applyIdentity ensures the fixed client-identity cookies and, when a session
// exists, the session id cookie are present. It is idempotent.
func (c *cookieStore) applyIdentity(session *Secret) {
	c.set("mobileClientVersion", cookieMobileClientVersion)
	c.set("mobileClient", cookieMobileClient)
	c.set("Steam_Language", cookieSteamLanguage)
	if session != nil {
		c.set(sessionIDCookie, session.Reveal().SessionID)
	}
}

// mergeSetCookie folds every Set-Cookie header on a response into the store.
// A malformed cookie string only loses that one cookie; it never aborts the
// request that carried it.
func (c *cookieStore) mergeSetCookie(header http.Header) {
	for _, raw := range header.Values("Set-Cookie") {
		pair := strings.TrimSpace(strings.SplitN(raw, ";", 2)[0])
		name, value, ok := strings.Cut(pair, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			log.Debugf("steamweb: skipping malformed set-cookie %q", raw)
			continue
		}
		c.set(name, strings.TrimSpace(value))
	}
}

// headerValue serializes the store to a single Cookie header line. Cookie
// names are emitted in sorted order so the value is stable for a given store
// state.
func (c *cookieStore) headerValue() string {
	names := make([]string, 0, len(c.values))
	for name := range c.values {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	for i, name := range names {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(name)
		b.WriteString("=")
		b.WriteString(c.values[name])
	}
	return b.String()
}
