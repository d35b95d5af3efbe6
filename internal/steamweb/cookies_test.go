package steamweb

import (
	"net/http"
	"strings"
	"testing"
)

func TestApplyIdentityIdempotent(t *testing.T) {
	store := newCookieStore()
	session := NewSecret(testSession())

	store.applyIdentity(session)
	first := store.headerValue()
	store.applyIdentity(session)
	second := store.headerValue()

	if first != second {
		t.Errorf("applyIdentity is not idempotent: %q != %q", first, second)
	}

	for _, want := range []string{
		"mobileClientVersion=0 (2.1.3)",
		"mobileClient=android",
		"Steam_Language=english",
		"sessionid=XYZ",
	} {
		if !strings.Contains(first, want) {
			t.Errorf("cookie header missing %q: %s", want, first)
		}
	}
}

func TestApplyIdentityWithoutSession(t *testing.T) {
	store := newCookieStore()
	store.applyIdentity(nil)
	if _, ok := store.get("sessionid"); ok {
		t.Error("sessionid cookie set without a session")
	}
	if _, ok := store.get("mobileClient"); !ok {
		t.Error("identity cookies missing without a session")
	}
}

func TestMergeSetCookie(t *testing.T) {
	store := newCookieStore()
	header := http.Header{}
	header.Add("Set-Cookie", "sessionid=XYZ; Path=/; Secure")
	header.Add("Set-Cookie", "steamCountry=US")
	header.Add("Set-Cookie", "garbage")
	header.Add("Set-Cookie", "=novalue")

	store.mergeSetCookie(header)

	if v, _ := store.get("sessionid"); v != "XYZ" {
		t.Errorf("sessionid = %q, want XYZ", v)
	}
	if v, _ := store.get("steamCountry"); v != "US" {
		t.Errorf("steamCountry = %q, want US", v)
	}
	if _, ok := store.get("garbage"); ok {
		t.Error("malformed cookie without = was stored")
	}
	if len(store.values) != 2 {
		t.Errorf("store holds %d cookies, want 2", len(store.values))
	}
}

func TestMergeSetCookieLastWriteWins(t *testing.T) {
	store := newCookieStore()
	header := http.Header{}
	header.Add("Set-Cookie", "sessionid=old")
	header.Add("Set-Cookie", "sessionid=new")
	store.mergeSetCookie(header)
	if v, _ := store.get("sessionid"); v != "new" {
		t.Errorf("sessionid = %q, want new", v)
	}
}

func TestHeaderValueStable(t *testing.T) {
	store := newCookieStore()
	store.set("b", "2")
	store.set("a", "1")
	if got := store.headerValue(); got != "a=1; b=2" {
		t.Errorf("headerValue = %q, want %q", got, "a=1; b=2")
	}
}
