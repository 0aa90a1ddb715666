// Package resolver decides the single next conversational action from the
// profile state. It is pure: no I/O, no model calls, deterministic given a
// profile and whether the catalog produced any match.
package resolver

import (
	"fmt"
	"strings"

	profilex "github.com/mousaid/car-sales-agent/agent/profile"
)

type ActionKind string

const (
	ActionAskMissingInfo        ActionKind = "ask_missing_info"
	ActionAskContactInfo        ActionKind = "ask_contact_info"
	ActionAskConfirmation       ActionKind = "ask_confirmation"
	ActionProvideRecommendation ActionKind = "provide_recommendation"
	ActionEnd                   ActionKind = "end"
)

type Action struct {
	Kind ActionKind
	// Field names the contact detail being asked for (phone_number, email,
	// name, test_drive_date) when Kind is ActionAskContactInfo.
	Field string
	// Missing lists the absent qualification fields for ActionAskMissingInfo.
	Missing []string
	// Question is the ready-to-surface ask for the generation prompt; empty
	// for recommendation/end actions.
	Question string
}

// rule pairs a predicate with the action it produces. Rules are evaluated
// top-down and the first match wins; this ordering is the dialogue policy.
type rule struct {
	when func(p *profilex.Profile, hasMatches bool) bool
	then func(p *profilex.Profile) Action
}

var rules = []rule{
	{
		when: func(p *profilex.Profile, _ bool) bool { return len(p.QualificationMissing()) > 0 },
		then: askMissingInfo,
	},
	{
		when: func(p *profilex.Profile, _ bool) bool { return p.TestDriveAgreed && p.PhoneNumber == nil },
		then: askContact("phone_number",
			"Fantastic! Could you please provide your <strong>phone number</strong> so we can arrange the test drive?"),
	},
	{
		when: func(p *profilex.Profile, _ bool) bool { return p.PhoneNumber != nil && p.Email == nil },
		then: askContact("email", "And your <strong>Email</strong> address, please?"),
	},
	{
		when: func(p *profilex.Profile, _ bool) bool { return p.Email != nil && p.Name == nil },
		then: askContact("name",
			"Fantastic! Could you please provide your <strong>Name</strong> so we can arrange the test drive?"),
	},
	{
		when: func(p *profilex.Profile, _ bool) bool { return p.Name != nil && p.TestDriveDate == nil },
		then: askContact("test_drive_date",
			"Cool, when do you want me to book a <strong>Test drive</strong> for you?"),
	},
	{
		when: func(p *profilex.Profile, _ bool) bool {
			return p.Name != nil && p.TestDriveDate != nil && !p.ConfirmationSent
		},
		then: askConfirmation,
	},
	{
		when: func(p *profilex.Profile, hasMatches bool) bool { return p.Qualified() && hasMatches },
		then: func(*profilex.Profile) Action { return Action{Kind: ActionProvideRecommendation} },
	},
}

// NextAction walks the rule table and returns the first matching action,
// falling through to ActionEnd.
func NextAction(p *profilex.Profile, hasMatches bool) Action {
	for _, r := range rules {
		if r.when(p, hasMatches) {
			return r.then(p)
		}
	}
	return Action{Kind: ActionEnd}
}

func askMissingInfo(p *profilex.Profile) Action {
	missing := p.QualificationMissing()
	parts := make([]string, 0, len(missing))
	for _, field := range missing {
		parts = append(parts, "<strong>*"+field+"</strong>")
	}
	return Action{
		Kind:     ActionAskMissingInfo,
		Missing:  missing,
		Question: "Could you please tell me your: <br>" + strings.Join(parts, "<br> ") + "?",
	}
}

func askContact(field, question string) func(*profilex.Profile) Action {
	return func(*profilex.Profile) Action {
		return Action{Kind: ActionAskContactInfo, Field: field, Question: question}
	}
}

func askConfirmation(p *profilex.Profile) Action {
	return Action{Kind: ActionAskConfirmation, Question: confirmationSummary(p)}
}

// confirmationSummary recaps every collected field and asks for a yes/no.
func confirmationSummary(p *profilex.Profile) string {
	var b strings.Builder
	b.WriteString("Please confirm your information:\n")
	writeLine(&b, "Name", strOrNA(p.Name))
	writeLine(&b, "Location", strOrNA(p.Location))
	writeLine(&b, "Age", intOrNA(p.Age))
	writeLine(&b, "Budget", floatOrNA(p.Budget))
	writeLine(&b, "Usage", strOrNA(p.Usage))
	writeLine(&b, "Phone", strOrNA(p.PhoneNumber))
	writeLine(&b, "Email", strOrNA(p.Email))
	writeLine(&b, "Test drive status", fmt.Sprintf("%t", p.TestDriveStatus))
	if p.TestDriveDate != nil {
		writeLine(&b, "Test drive date", p.TestDriveDate.Format("2006-01-02 15:04"))
	} else {
		writeLine(&b, "Test drive date", "N/A")
	}
	b.WriteString("Is this information correct? (Yes/No) If not, please tell me what needs to be changed.")
	return b.String()
}

func writeLine(b *strings.Builder, label, value string) {
	b.WriteString(label)
	b.WriteString(": ")
	b.WriteString(value)
	b.WriteString("\n")
}

func strOrNA(s *string) string {
	if s == nil {
		return "N/A"
	}
	return *s
}

func intOrNA(n *int64) string {
	if n == nil {
		return "N/A"
	}
	return fmt.Sprintf("%d", *n)
}

func floatOrNA(f *float64) string {
	if f == nil {
		return "N/A"
	}
	return fmt.Sprintf("%g", *f)
}
