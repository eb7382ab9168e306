package history_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/JaimeStill/hand2voice/internal/accounts"
	"github.com/JaimeStill/hand2voice/internal/history"
	"github.com/JaimeStill/hand2voice/pkg/routes"
)

func historyMux(t *testing.T, protect func(http.Handler) http.Handler) *http.ServeMux {
	t.Helper()
	sys, _ := newService(t, 100)
	mux := http.NewServeMux()
	routes.Register(mux, history.NewHandler(sys, discard).Routes(protect))
	return mux
}

func call(t *testing.T, mux http.Handler, path, body, token string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	var out map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return rec.Code, out
}

func TestHandlerFlow(t *testing.T) {
	mux := historyMux(t, nil)

	status, body := call(t, mux, "/history/get", `{"email":"ada@example.com"}`, "")
	if status != 200 || body["history"] == nil {
		t.Fatalf("get empty = %d %v", status, body)
	}
	if list := body["history"].([]any); len(list) != 0 {
		t.Errorf("history = %v", list)
	}

	status, body = call(t, mux, "/history/add", `{"email":"ada@example.com","entry":{"type":"vision","mode":"hazard","result":"clear path"}}`, "")
	if status != 200 || body["message"] != "History entry added" {
		t.Fatalf("add = %d %v", status, body)
	}
	entry := body["history"].([]any)[0].(map[string]any)
	if entry["mode"] != "hazard" || entry["timestamp"] == "" {
		t.Errorf("entry = %v", entry)
	}

	status, body = call(t, mux, "/history/clear", `{"email":"ada@example.com"}`, "")
	if status != 200 || body["message"] != "History cleared" {
		t.Errorf("clear = %d %v", status, body)
	}
}

func TestHandlerValidation(t *testing.T) {
	mux := historyMux(t, nil)

	tests := []struct {
		path string
		body string
		msg  string
	}{
		{"/history/get", `{}`, "Email required"},
		{"/history/add", `{"email":"ada@example.com"}`, "History entry required"},
		{"/history/add", `{"email":"ada@example.com","entry":{}}`, "History entry required"},
		{"/history/add", `{"entry":{"a":1}}`, "Email required"},
		{"/history/clear", `{"email":""}`, "Email required"},
	}
	for _, tt := range tests {
		status, body := call(t, mux, tt.path, tt.body, "")
		if status != http.StatusBadRequest || body["error"] != tt.msg {
			t.Errorf("%s %s = %d %v, want 400 %q", tt.path, tt.body, status, body, tt.msg)
		}
	}
}

func TestHandlerProtected(t *testing.T) {
	tokens := accounts.NewTokens("secret", time.Hour)
	mux := historyMux(t, accounts.RequireToken(tokens, discard))
	token, _ := tokens.Issue("ada@example.com")

	if status, _ := call(t, mux, "/history/get", `{"email":"ada@example.com"}`, ""); status != http.StatusUnauthorized {
		t.Errorf("no token = %d, want 401", status)
	}
	if status, _ := call(t, mux, "/history/get", `{"email":"bob@example.com"}`, token); status != http.StatusForbidden {
		t.Errorf("foreign email = %d, want 403", status)
	}
	if status, _ := call(t, mux, "/history/get", `{"email":"ada@example.com"}`, token); status != http.StatusOK {
		t.Errorf("own email = %d, want 200", status)
	}
}
