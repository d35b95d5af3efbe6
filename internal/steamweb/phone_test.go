package steamweb

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func sessionClient(server *httptest.Server) *Client {
	return NewClient(server.Client(), Endpoints{
		CommunityURL: server.URL,
		APIURL:       server.URL,
		StoreURL:     server.URL,
	}, NewSecret(testSession()))
}

func TestProbeAjaxResult(t *testing.T) {
	cases := []struct {
		name    string
		body    string
		want    bool
		wantErr bool
	}{
		{"success only", `{"success":true}`, true, false},
		{"success false", `{"success":false}`, false, false},
		{"empty object", `{}`, false, false},
		{"has_phone wins over success", `{"has_phone":true,"success":false}`, true, false},
		{"has_phone false wins over success", `{"has_phone":false,"success":true}`, false, false},
		{"null has_phone falls through", `{"has_phone":null,"success":true}`, true, false},
		{"non-boolean field", `{"has_phone":"yes"}`, false, true},
		{"unrelated fields", `{"status":"ok"}`, false, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := probeAjaxResult("test", []byte(tc.body))
			if tc.wantErr {
				var de *DecodeError
				if !errors.As(err, &de) {
					t.Fatalf("error = %v, want DecodeError", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Errorf("result = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestHasPhone(t *testing.T) {
	var gotOp, gotSessionID string
	mux := http.NewServeMux()
	mux.HandleFunc("/steamguard/phoneajax", func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		gotOp = r.PostFormValue("op")
		gotSessionID = r.PostFormValue("sessionid")
		fmt.Fprint(w, `{"has_phone":true}`)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := sessionClient(server)
	has, err := client.HasPhone(context.Background())
	if err != nil {
		t.Fatalf("has phone failed: %v", err)
	}
	if !has {
		t.Error("has phone = false, want true")
	}
	if gotOp != "has_phone" {
		t.Errorf("op = %q, want has_phone", gotOp)
	}
	if gotSessionID != "XYZ" {
		t.Errorf("sessionid = %q, want XYZ", gotSessionID)
	}
}

func TestCheckSMSCodeExtraParams(t *testing.T) {
	var gotForm map[string]string
	mux := http.NewServeMux()
	mux.HandleFunc("/steamguard/phoneajax", func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		gotForm = map[string]string{
			"op":          r.PostFormValue("op"),
			"arg":         r.PostFormValue("arg"),
			"checkfortos": r.PostFormValue("checkfortos"),
			"skipvoip":    r.PostFormValue("skipvoip"),
		}
		fmt.Fprint(w, `{"success":true}`)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := sessionClient(server)
	ok, err := client.CheckSMSCode(context.Background(), "1234")
	if err != nil {
		t.Fatalf("check sms code failed: %v", err)
	}
	if !ok {
		t.Error("check sms code = false, want true")
	}
	want := map[string]string{"op": "check_sms_code", "arg": "1234", "checkfortos": "0", "skipvoip": "1"}
	for k, v := range want {
		if gotForm[k] != v {
			t.Errorf("form[%s] = %q, want %q", k, gotForm[k], v)
		}
	}
}

func TestPhoneOpsRequireSession(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("network call made without a session")
	}))
	defer server.Close()

	client := testClient(server)

	if _, err := client.HasPhone(context.Background()); !errors.Is(err, ErrNoSession) {
		t.Errorf("HasPhone error = %v, want ErrNoSession", err)
	}
	if _, err := client.ValidatePhone(context.Background(), "+1 1234567890"); !errors.Is(err, ErrNoSession) {
		t.Errorf("ValidatePhone error = %v, want ErrNoSession", err)
	}
}

func TestValidatePhone(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/phone/validate", func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		if got := r.PostFormValue("sessionID"); got != "XYZ" {
			t.Errorf("sessionID = %q, want XYZ", got)
		}
		if got := r.PostFormValue("phoneNumber"); got != "+1 1234567890" {
			t.Errorf("phoneNumber = %q, want +1 1234567890", got)
		}
		fmt.Fprint(w, `{"success":true,"number":"+1 1234567890","is_valid":true,"is_voip":false,"is_fixed":false}`)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := sessionClient(server)
	resp, err := client.ValidatePhone(context.Background(), "+1 1234567890")
	if err != nil {
		t.Fatalf("validate phone failed: %v", err)
	}
	if !resp.Success || !resp.IsValid || resp.IsVOIP {
		t.Errorf("unexpected validate response: %+v", resp)
	}
}

func TestAddPhoneNumberUnsupported(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer server.Close()

	client := sessionClient(server)
	if _, err := client.AddPhoneNumber(context.Background(), "+1 1234567890"); !errors.Is(err, ErrUnsupported) {
		t.Errorf("error = %v, want ErrUnsupported", err)
	}
}
