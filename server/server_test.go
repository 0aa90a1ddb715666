package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	contractx "github.com/mousaid/car-sales-agent/agent/contract"
)

type fakeTurns struct {
	resp contractx.TurnResponse
	err  error
	reqs []contractx.TurnRequest
}

func (f *fakeTurns) HandleTurn(_ context.Context, req contractx.TurnRequest) (contractx.TurnResponse, error) {
	f.reqs = append(f.reqs, req)
	if f.err != nil {
		return contractx.TurnResponse{SessionID: req.SessionID}, f.err
	}
	return f.resp, nil
}

func testConfig() Config {
	return Config{Addr: ":0", AllowedOrigins: []string{"http://localhost:3000"}}
}

func postChat(t *testing.T, handler http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestChatHappyPath(t *testing.T) {
	t.Parallel()

	turns := &fakeTurns{resp: contractx.TurnResponse{
		Reply:     "Hello 😊",
		SessionID: "s1",
		Status:    contractx.StatusOK,
	}}
	handler := NewRouter(testConfig(), turns)

	rec := postChat(t, handler, `{"messages":[{"role":"user","content":"hi"}],"session_id":"s1"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["response"] != "Hello 😊" || body["session_id"] != "s1" {
		t.Fatalf("body = %v", body)
	}

	if len(turns.reqs) != 1 || turns.reqs[0].Messages[0].Content != "hi" {
		t.Fatalf("handler received %+v", turns.reqs)
	}
}

func TestChatRateLimitedMapsTo429(t *testing.T) {
	t.Parallel()

	turns := &fakeTurns{resp: contractx.TurnResponse{
		Reply:     "Sorry, the AI assistant has reached its usage limit for now. Please try again later.",
		SessionID: "s1",
		Status:    contractx.StatusRateLimited,
	}}
	handler := NewRouter(testConfig(), turns)

	rec := postChat(t, handler, `{"messages":[{"role":"user","content":"hi"}]}`)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "usage limit") {
		t.Fatalf("body = %s", rec.Body.String())
	}
}

func TestChatHandlerErrorMapsTo500(t *testing.T) {
	t.Parallel()

	turns := &fakeTurns{err: errors.New("connection refused")}
	handler := NewRouter(testConfig(), turns)

	rec := postChat(t, handler, `{"messages":[{"role":"user","content":"hi"}]}`)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}

	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["detail"] != "Database error" {
		t.Fatalf("detail = %q", body["detail"])
	}
}

func TestChatRejectsMalformedBody(t *testing.T) {
	t.Parallel()

	turns := &fakeTurns{}
	handler := NewRouter(testConfig(), turns)

	rec := postChat(t, handler, `{"messages": not json`)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
	if len(turns.reqs) != 0 {
		t.Fatal("handler invoked on malformed body")
	}
}

func TestGreeting(t *testing.T) {
	t.Parallel()

	handler := NewRouter(testConfig(), &fakeTurns{})

	req := httptest.NewRequest(http.MethodGet, "/api/greeting", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Mousa3id") {
		t.Fatalf("body = %s", rec.Body.String())
	}
}

func TestCORSAllowsListedOrigin(t *testing.T) {
	t.Parallel()

	handler := NewRouter(testConfig(), &fakeTurns{})

	req := httptest.NewRequest(http.MethodOptions, "/chat", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("preflight status = %d", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Fatalf("allow-origin = %q", got)
	}
	if got := rec.Header().Get("Access-Control-Allow-Credentials"); got != "true" {
		t.Fatalf("allow-credentials = %q", got)
	}
}

func TestCORSIgnoresUnknownOrigin(t *testing.T) {
	t.Parallel()

	handler := NewRouter(testConfig(), &fakeTurns{})

	req := httptest.NewRequest(http.MethodGet, "/api/greeting", nil)
	req.Header.Set("Origin", "http://evil.example")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Fatalf("allow-origin = %q, want unset", got)
	}
}
