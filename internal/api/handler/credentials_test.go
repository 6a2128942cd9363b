package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/iconidentify/xclip/pkg/twitter"
)

func TestCredentialsHandler_Set(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		status int
		ct0    string
	}{
		{"fields", `{"auth_token":"tok","ct0":"csrf"}`, http.StatusOK, "csrf"},
		{"cookie header", `{"cookie":"lang=en; auth_token=tok; ct0=fromcookie"}`, http.StatusOK, "fromcookie"},
		{"missing ct0", `{"auth_token":"tok"}`, http.StatusBadRequest, ""},
		{"cookie without session", `{"cookie":"lang=en"}`, http.StatusBadRequest, ""},
		{"invalid json", `{`, http.StatusBadRequest, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := twitter.NewCredentialStore("")
			h := NewCredentialsHandler(store, testLogger())

			w := httptest.NewRecorder()
			h.Set(w, newJSONRequest(http.MethodPut, "/api/v1/credentials", tt.body))

			if w.Code != tt.status {
				t.Fatalf("status = %d, want %d", w.Code, tt.status)
			}
			if tt.status != http.StatusOK {
				if store.Status().HasCredentials {
					t.Error("rejected credentials must not be stored")
				}
				return
			}

			var resp twitter.CredentialStatus
			json.NewDecoder(w.Body).Decode(&resp)
			if !resp.HasCredentials || resp.UpdatedAt == nil {
				t.Errorf("resp = %+v", resp)
			}
			if got := store.Get(); got == nil || got.AuthToken != "tok" || got.CT0 != tt.ct0 {
				t.Errorf("stored = %+v", got)
			}
		})
	}
}

func TestCredentialsHandler_StatusAndClear(t *testing.T) {
	store := twitter.NewCredentialStore("auth_token=tok; ct0=csrf")
	h := NewCredentialsHandler(store, testLogger())

	w := httptest.NewRecorder()
	h.Status(w, httptest.NewRequest(http.MethodGet, "/api/v1/credentials", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	body := w.Body.String()
	var resp twitter.CredentialStatus
	json.Unmarshal([]byte(body), &resp)
	if !resp.HasCredentials {
		t.Error("expected credentials from the configured cookie")
	}
	for _, secret := range []string{"tok", "csrf"} {
		if strings.Contains(body, secret) {
			t.Errorf("status response leaks %q", secret)
		}
	}

	w = httptest.NewRecorder()
	h.Clear(w, httptest.NewRequest(http.MethodDelete, "/api/v1/credentials", nil))
	if w.Code != http.StatusNoContent {
		t.Errorf("clear status = %d", w.Code)
	}
	if store.Status().HasCredentials {
		t.Error("credentials should be cleared")
	}
}
