package extractor

import (
	"context"
	"errors"
	"strings"
	"testing"

	profilex "github.com/mousaid/car-sales-agent/agent/profile"
	promptx "github.com/mousaid/car-sales-agent/agent/prompt"
)

type fakeCompleter struct {
	reply   string
	err     error
	prompts []string
}

func (f *fakeCompleter) Complete(_ context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func testPrompts() promptx.Set {
	return promptx.Set{Extractor: "history:{history} message:{message} profile:{profile}"}
}

func TestExtractTypedFields(t *testing.T) {
	t.Parallel()

	completer := &fakeCompleter{reply: `{"name": "Ana", "age": 30, "budget": "25k", "preferences": ["red", "fast"], "email": null}`}
	ex, err := New(completer, testPrompts())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	upd, err := ex.Extract(context.Background(), "user: hi", "I have 25k", profilex.New("s1"))
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}

	if upd.Name == nil || *upd.Name != "Ana" {
		t.Fatalf("name = %v, want Ana", upd.Name)
	}
	if upd.Age == nil || *upd.Age != 30 {
		t.Fatalf("age = %v, want 30", upd.Age)
	}
	if upd.Budget == nil || *upd.Budget != 25000 {
		t.Fatalf("budget = %v, want 25000", upd.Budget)
	}
	if len(upd.Preferences) != 2 {
		t.Fatalf("preferences = %v, want two entries", upd.Preferences)
	}
	if upd.Email != nil {
		t.Fatalf("email = %v, want nil for explicit null", upd.Email)
	}
}

func TestExtractRendersConversationIntoPrompt(t *testing.T) {
	t.Parallel()

	completer := &fakeCompleter{reply: `{}`}
	ex, err := New(completer, testPrompts())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if _, err := ex.Extract(context.Background(), "user: hello", "any SUV?", profilex.New("s1")); err != nil {
		t.Fatalf("Extract: %v", err)
	}

	if len(completer.prompts) != 1 {
		t.Fatalf("completer called %d times, want 1", len(completer.prompts))
	}
	prompt := completer.prompts[0]
	for _, want := range []string{"user: hello", "any SUV?", `"session_id": "s1"`} {
		if !strings.Contains(prompt, want) {
			t.Fatalf("prompt missing %q:\n%s", want, prompt)
		}
	}
}

func TestExtractDropsUnparseableBudget(t *testing.T) {
	t.Parallel()

	completer := &fakeCompleter{reply: `{"budget": "whatever works", "location": "Berlin"}`}
	ex, err := New(completer, testPrompts())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	upd, err := ex.Extract(context.Background(), "", "msg", profilex.New("s1"))
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if upd.Budget != nil {
		t.Fatalf("budget = %v, want nil", upd.Budget)
	}
	if upd.Location == nil || *upd.Location != "Berlin" {
		t.Fatalf("location = %v, want Berlin", upd.Location)
	}
}

func TestExtractCompleterFailureReturnsEmptyUpdate(t *testing.T) {
	t.Parallel()

	completer := &fakeCompleter{err: errors.New("boom")}
	ex, err := New(completer, testPrompts())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	upd, err := ex.Extract(context.Background(), "", "msg", profilex.New("s1"))
	if err == nil {
		t.Fatal("expected error")
	}
	if !upd.IsZero() {
		t.Fatalf("update = %+v, want zero", upd)
	}
}

func TestExtractNonJSONOutputReturnsError(t *testing.T) {
	t.Parallel()

	completer := &fakeCompleter{reply: "I could not find anything."}
	ex, err := New(completer, testPrompts())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	upd, err := ex.Extract(context.Background(), "", "msg", profilex.New("s1"))
	if err == nil {
		t.Fatal("expected error for non-JSON output")
	}
	if !upd.IsZero() {
		t.Fatalf("update = %+v, want zero", upd)
	}
}
