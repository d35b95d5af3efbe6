package steamweb

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestQueryTime(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/ITwoFactorService/QueryTime/v0001", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		fmt.Fprint(w, `{"response":{"server_time":"1655768666","skew_tolerance_seconds":"60","large_time_jink":"86400","probe_frequency_seconds":3600,"adjusted_time_probe_frequency_seconds":300,"hint_probe_frequency_seconds":60,"sync_timeout":60,"try_again_seconds":900,"max_attempts":3}}`)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := testClient(server)
	resp, err := client.QueryTime(context.Background())
	if err != nil {
		t.Fatalf("query time failed: %v", err)
	}
	if resp.ServerTime != "1655768666" {
		t.Errorf("server time = %q, want 1655768666", resp.ServerTime)
	}
	if resp.SkewToleranceSeconds != "60" {
		t.Errorf("skew tolerance = %q, want 60", resp.SkewToleranceSeconds)
	}
	if resp.MaxAttempts != 3 {
		t.Errorf("max attempts = %d, want 3", resp.MaxAttempts)
	}
}

func TestAddAuthenticator(t *testing.T) {
	var gotForm map[string]string
	mux := http.NewServeMux()
	mux.HandleFunc("/ITwoFactorService/AddAuthenticator/v0001", func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		gotForm = map[string]string{
			"access_token":       r.PostFormValue("access_token"),
			"steamid":            r.PostFormValue("steamid"),
			"authenticator_type": r.PostFormValue("authenticator_type"),
			"device_identifier":  r.PostFormValue("device_identifier"),
			"sms_phone_id":       r.PostFormValue("sms_phone_id"),
		}
		fmt.Fprint(w, `{"response":{"shared_secret":"c2hhcmVk","serial_number":"123","revocation_code":"R12345","uri":"otpauth://totp/Steam:alice","server_time":"1655768666","account_name":"alice","token_gid":"gid","identity_secret":"aWRlbnRpdHk=","secret_1":"czE=","status":1}}`)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := sessionClient(server)
	resp, err := client.AddAuthenticator(context.Background(), "android:dev-id")
	if err != nil {
		t.Fatalf("add authenticator failed: %v", err)
	}

	want := map[string]string{
		"access_token":       "T",
		"steamid":            "1",
		"authenticator_type": "1",
		"device_identifier":  "android:dev-id",
		"sms_phone_id":       "1",
	}
	for k, v := range want {
		if gotForm[k] != v {
			t.Errorf("form[%s] = %q, want %q", k, gotForm[k], v)
		}
	}
	if resp.SharedSecret != "c2hhcmVk" || resp.RevocationCode != "R12345" || resp.Status != 1 {
		t.Errorf("unexpected response: %+v", resp)
	}
}

func TestFinalizeAuthenticator(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/ITwoFactorService/FinalizeAddAuthenticator/v0001", func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		if got := r.PostFormValue("activation_code"); got != "99999" {
			t.Errorf("activation_code = %q, want 99999", got)
		}
		if got := r.PostFormValue("authenticator_code"); got != "ABCDE" {
			t.Errorf("authenticator_code = %q, want ABCDE", got)
		}
		if got := r.PostFormValue("authenticator_time"); got != "1655768666" {
			t.Errorf("authenticator_time = %q, want 1655768666", got)
		}
		fmt.Fprint(w, `{"response":{"status":1,"server_time":"1655768667","want_more":false,"success":true}}`)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := sessionClient(server)
	resp, err := client.FinalizeAuthenticator(context.Background(), "99999", "ABCDE", 1655768666)
	if err != nil {
		t.Fatalf("finalize authenticator failed: %v", err)
	}
	if !resp.Success || resp.WantMore {
		t.Errorf("unexpected response: %+v", resp)
	}
}

func TestRemoveAuthenticator(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/ITwoFactorService/RemoveAuthenticator/v0001", func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		if got := r.PostFormValue("revocation_code"); got != "R12345" {
			t.Errorf("revocation_code = %q, want R12345", got)
		}
		if got := r.PostFormValue("steamguard_scheme"); got != "2" {
			t.Errorf("steamguard_scheme = %q, want 2", got)
		}
		fmt.Fprint(w, `{"response":{"success":true}}`)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := sessionClient(server)
	resp, err := client.RemoveAuthenticator(context.Background(), "R12345")
	if err != nil {
		t.Fatalf("remove authenticator failed: %v", err)
	}
	if !resp.Success {
		t.Error("success = false, want true")
	}
}

func TestAuthenticatorOpsRequireSession(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("network call made without a session")
	}))
	defer server.Close()

	client := testClient(server)

	if _, err := client.AddAuthenticator(context.Background(), "android:dev"); !errors.Is(err, ErrNoSession) {
		t.Errorf("AddAuthenticator error = %v, want ErrNoSession", err)
	}
	if _, err := client.FinalizeAuthenticator(context.Background(), "1", "2", 3); !errors.Is(err, ErrNoSession) {
		t.Errorf("FinalizeAuthenticator error = %v, want ErrNoSession", err)
	}
	if _, err := client.RemoveAuthenticator(context.Background(), "R"); !errors.Is(err, ErrNoSession) {
		t.Errorf("RemoveAuthenticator error = %v, want ErrNoSession", err)
	}
}

func TestDecodeErrorLogsAndPropagates(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/ITwoFactorService/QueryTime/v0001", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html>not json</html>`)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := testClient(server)
	_, err := client.QueryTime(context.Background())
	var de *DecodeError
	if !errors.As(err, &de) {
		t.Fatalf("error = %v, want DecodeError", err)
	}
	if de.Op != "query time" {
		t.Errorf("decode error op = %q, want query time", de.Op)
	}
}
