package resolver

import (
	"strings"
	"testing"
	"time"

	profilex "github.com/mousaid/car-sales-agent/agent/profile"
)

func strPtr(s string) *string    { return &s }
func intPtr(n int64) *int64      { return &n }
func floatPtr(f float64) *float64 { return &f }

func qualifiedProfile() *profilex.Profile {
	p := profilex.New("s1")
	p.Location = strPtr("Berlin")
	p.Age = intPtr(30)
	p.Budget = floatPtr(25000)
	p.Usage = strPtr("commuting")
	return p
}

func TestNextActionAsksForAllMissingQualificationFields(t *testing.T) {
	t.Parallel()

	p := profilex.New("s1")
	action := NextAction(p, false)

	if action.Kind != ActionAskMissingInfo {
		t.Fatalf("kind = %q, want %q", action.Kind, ActionAskMissingInfo)
	}
	want := []string{"location", "age", "budget", "usage"}
	if len(action.Missing) != len(want) {
		t.Fatalf("missing = %v, want %v", action.Missing, want)
	}
	for i, field := range want {
		if action.Missing[i] != field {
			t.Fatalf("missing[%d] = %q, want %q", i, action.Missing[i], field)
		}
		if !strings.Contains(action.Question, "<strong>*"+field+"</strong>") {
			t.Fatalf("question %q does not mention %q", action.Question, field)
		}
	}
}

func TestNextActionMissingFieldsTakePriorityOverContact(t *testing.T) {
	t.Parallel()

	p := profilex.New("s1")
	p.TestDriveAgreed = true
	action := NextAction(p, true)

	if action.Kind != ActionAskMissingInfo {
		t.Fatalf("kind = %q, want %q", action.Kind, ActionAskMissingInfo)
	}
}

func TestNextActionContactCascade(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		mutate    func(p *profilex.Profile)
		wantField string
	}{
		{
			name:      "agreed without phone",
			mutate:    func(p *profilex.Profile) { p.TestDriveAgreed = true },
			wantField: "phone_number",
		},
		{
			name:      "phone without email",
			mutate:    func(p *profilex.Profile) { p.PhoneNumber = strPtr("123") },
			wantField: "email",
		},
		{
			name: "email without name",
			mutate: func(p *profilex.Profile) {
				p.PhoneNumber = strPtr("123")
				p.Email = strPtr("a@b.c")
			},
			wantField: "name",
		},
		{
			name: "name without date",
			mutate: func(p *profilex.Profile) {
				p.PhoneNumber = strPtr("123")
				p.Email = strPtr("a@b.c")
				p.Name = strPtr("Ana")
			},
			wantField: "test_drive_date",
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			p := qualifiedProfile()
			tc.mutate(p)
			action := NextAction(p, true)

			if action.Kind != ActionAskContactInfo {
				t.Fatalf("kind = %q, want %q", action.Kind, ActionAskContactInfo)
			}
			if action.Field != tc.wantField {
				t.Fatalf("field = %q, want %q", action.Field, tc.wantField)
			}
			if action.Question == "" {
				t.Fatal("question is empty")
			}
		})
	}
}

func TestNextActionAsksConfirmationBeforeRecommendation(t *testing.T) {
	t.Parallel()

	p := qualifiedProfile()
	p.Name = strPtr("Ana")
	p.PhoneNumber = strPtr("123")
	p.Email = strPtr("a@b.c")
	date := time.Date(2026, 9, 14, 10, 0, 0, 0, time.UTC)
	p.TestDriveDate = &date

	action := NextAction(p, true)
	if action.Kind != ActionAskConfirmation {
		t.Fatalf("kind = %q, want %q", action.Kind, ActionAskConfirmation)
	}
	for _, want := range []string{"Ana", "Berlin", "a@b.c", "2026-09-14 10:00", "(Yes/No)"} {
		if !strings.Contains(action.Question, want) {
			t.Fatalf("confirmation summary missing %q:\n%s", want, action.Question)
		}
	}
}

func TestNextActionConfirmationNotRepeatedAfterSent(t *testing.T) {
	t.Parallel()

	p := qualifiedProfile()
	p.Name = strPtr("Ana")
	date := time.Date(2026, 9, 14, 10, 0, 0, 0, time.UTC)
	p.TestDriveDate = &date
	p.ConfirmationSent = true

	action := NextAction(p, true)
	if action.Kind != ActionProvideRecommendation {
		t.Fatalf("kind = %q, want %q", action.Kind, ActionProvideRecommendation)
	}
}

func TestNextActionRecommendationNeedsMatches(t *testing.T) {
	t.Parallel()

	p := qualifiedProfile()

	if got := NextAction(p, true).Kind; got != ActionProvideRecommendation {
		t.Fatalf("with matches: kind = %q, want %q", got, ActionProvideRecommendation)
	}
	if got := NextAction(p, false).Kind; got != ActionEnd {
		t.Fatalf("without matches: kind = %q, want %q", got, ActionEnd)
	}
}
