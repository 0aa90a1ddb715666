// Package profile holds the persistent customer record built up across a
// conversation, plus the merge rules that keep noisy model extractions from
// corrupting it.
package profile

import (
	"strconv"
	"strings"
	"time"

	"github.com/uptrace/bun"
)

// Profile is one row per session. Optional qualification fields are pointers:
// nil means "not yet learned".
type Profile struct {
	bun.BaseModel `bun:"table:user_profiles" json:"-"`

	SessionID string `bun:"session_id,pk" json:"session_id"`

	Name        *string  `bun:"name" json:"name"`
	Location    *string  `bun:"location" json:"location"`
	Age         *int64   `bun:"age" json:"age"`
	Budget      *float64 `bun:"budget" json:"budget"`
	Usage       *string  `bun:"usage" json:"usage"`
	Preferences []string `bun:"preferences,array" json:"preferences"`

	Requirements  []string `bun:"requirements,array" json:"requirements"`
	PreferredCars []string `bun:"preferred_cars,array" json:"preferred_cars"`
	Currency      string   `bun:"currency" json:"currency"`

	TestDriveAgreed  bool       `bun:"test_drive_agreed" json:"test_drive_agreed"`
	PhoneNumber      *string    `bun:"phone_number" json:"phone_number"`
	Email            *string    `bun:"email" json:"email"`
	ConfirmationSent bool       `bun:"confirmation_sent" json:"confirmation_sent"`
	TestDriveStatus  bool       `bun:"test_drive_status" json:"test_drive_status"`
	TestDriveDate    *time.Time `bun:"test_drive_date" json:"test_drive_date"`

	// Derived flags, recomputed and persisted every turn.
	PerfectCarFound      bool `bun:"perfect_car_found" json:"perfect_car_found"`
	HasAgreedToTestDrive bool `bun:"has_agreed_to_test_drive" json:"has_agreed_to_test_drive"`
}

func New(sessionID string) *Profile {
	return &Profile{
		SessionID:     sessionID,
		Preferences:   []string{},
		Requirements:  []string{},
		PreferredCars: []string{},
		Currency:      "USD",
	}
}

// QualificationMissing lists which of location/age/budget/usage are still
// unknown, in that fixed order.
func (p *Profile) QualificationMissing() []string {
	var missing []string
	if p.Location == nil {
		missing = append(missing, "location")
	}
	if p.Age == nil {
		missing = append(missing, "age")
	}
	if p.Budget == nil {
		missing = append(missing, "budget")
	}
	if p.Usage == nil {
		missing = append(missing, "usage")
	}
	return missing
}

// Qualified reports whether the fields gating a recommendation are all known.
func (p *Profile) Qualified() bool {
	return p.Location != nil && p.Budget != nil && p.Usage != nil
}

// Update is a partial profile patch. Nil fields are untouched on merge; the
// date arrives as raw text and is parsed at the merge boundary.
type Update struct {
	Name                 *string
	Location             *string
	Age                  *int64
	Budget               *float64
	Usage                *string
	Preferences          []string
	Requirements         []string
	TestDriveAgreed      *bool
	PhoneNumber          *string
	Email                *string
	ConfirmationSent     *bool
	TestDriveStatus      *bool
	TestDriveDate        *string
	PerfectCarFound      *bool
	HasAgreedToTestDrive *bool
}

type change struct {
	column string
	value  any
	array  bool
}

// changes renders the non-nil fields as column/value pairs. A test-drive date
// that matches none of the accepted formats nulls the column out instead of
// failing the merge.
func (u Update) changes() []change {
	var out []change
	if u.Name != nil {
		out = append(out, change{"name", *u.Name, false})
	}
	if u.Location != nil {
		out = append(out, change{"location", *u.Location, false})
	}
	if u.Age != nil {
		out = append(out, change{"age", *u.Age, false})
	}
	if u.Budget != nil {
		out = append(out, change{"budget", *u.Budget, false})
	}
	if u.Usage != nil {
		out = append(out, change{"usage", *u.Usage, false})
	}
	if u.Preferences != nil {
		out = append(out, change{"preferences", u.Preferences, true})
	}
	if u.Requirements != nil {
		out = append(out, change{"requirements", u.Requirements, true})
	}
	if u.TestDriveAgreed != nil {
		out = append(out, change{"test_drive_agreed", *u.TestDriveAgreed, false})
	}
	if u.PhoneNumber != nil {
		out = append(out, change{"phone_number", *u.PhoneNumber, false})
	}
	if u.Email != nil {
		out = append(out, change{"email", *u.Email, false})
	}
	if u.ConfirmationSent != nil {
		out = append(out, change{"confirmation_sent", *u.ConfirmationSent, false})
	}
	if u.TestDriveStatus != nil {
		out = append(out, change{"test_drive_status", *u.TestDriveStatus, false})
	}
	if u.TestDriveDate != nil {
		if ts := ParseDate(*u.TestDriveDate); ts != nil {
			out = append(out, change{"test_drive_date", *ts, false})
		} else {
			out = append(out, change{"test_drive_date", nil, false})
		}
	}
	if u.PerfectCarFound != nil {
		out = append(out, change{"perfect_car_found", *u.PerfectCarFound, false})
	}
	if u.HasAgreedToTestDrive != nil {
		out = append(out, change{"has_agreed_to_test_drive", *u.HasAgreedToTestDrive, false})
	}
	return out
}

func (u Update) IsZero() bool {
	return len(u.changes()) == 0
}

var dateFormats = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"02/01/2006 15:04",
	"2006-01-02",
}

// ParseDate tries the accepted textual formats in order; nil when none match.
func ParseDate(raw string) *time.Time {
	raw = strings.TrimSpace(raw)
	for _, layout := range dateFormats {
		if ts, err := time.Parse(layout, raw); err == nil {
			return &ts
		}
	}
	return nil
}

// validFields is the merge-boundary whitelist. Anything the extraction emits
// outside this set is silently dropped.
var validFields = map[string]struct{}{
	"name":                     {},
	"location":                 {},
	"age":                      {},
	"budget":                   {},
	"usage":                    {},
	"preferences":              {},
	"requirements":             {},
	"test_drive_agreed":        {},
	"phone_number":             {},
	"email":                    {},
	"confirmation_sent":        {},
	"test_drive_status":        {},
	"test_drive_date":          {},
	"perfect_car_found":        {},
	"has_agreed_to_test_drive": {},
}

// FromExtraction converts a raw extraction object into a typed Update.
// Keys are canonicalized to snake_case, "needs" folds into "usage" when usage
// itself is absent, unknown keys are dropped, and null/uncoercible values stay
// nil so the merge never erases known data.
func FromExtraction(fields map[string]any) Update {
	canon := make(map[string]any, len(fields))
	for k, v := range fields {
		canon[canonicalKey(k)] = v
	}
	if v, ok := canon["needs"]; ok {
		if _, has := canon["usage"]; !has {
			canon["usage"] = v
		}
	}
	if v, ok := canon["test_drive_agreement"]; ok {
		if _, has := canon["test_drive_agreed"]; !has {
			canon["test_drive_agreed"] = v
		}
	}

	var u Update
	for key, v := range canon {
		if _, ok := validFields[key]; !ok {
			continue
		}
		if v == nil {
			continue
		}
		switch key {
		case "name":
			u.Name = toString(v)
		case "location":
			u.Location = toString(v)
		case "age":
			u.Age = toInt(v)
		case "budget":
			u.Budget = toFloat(v)
		case "usage":
			u.Usage = toString(v)
		case "preferences":
			u.Preferences = toStrings(v)
		case "requirements":
			u.Requirements = toStrings(v)
		case "test_drive_agreed":
			u.TestDriveAgreed = toBool(v)
		case "phone_number":
			u.PhoneNumber = toString(v)
		case "email":
			u.Email = toString(v)
		case "confirmation_sent":
			u.ConfirmationSent = toBool(v)
		case "test_drive_status":
			u.TestDriveStatus = toBool(v)
		case "test_drive_date":
			u.TestDriveDate = toString(v)
		case "perfect_car_found":
			u.PerfectCarFound = toBool(v)
		case "has_agreed_to_test_drive":
			u.HasAgreedToTestDrive = toBool(v)
		}
	}
	return u
}

func canonicalKey(k string) string {
	k = strings.ToLower(strings.TrimSpace(k))
	return strings.ReplaceAll(k, " ", "_")
}

func toString(v any) *string {
	s, ok := v.(string)
	if !ok {
		return nil
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func toInt(v any) *int64 {
	switch t := v.(type) {
	case float64:
		n := int64(t)
		return &n
	case int:
		n := int64(t)
		return &n
	case int64:
		return &t
	case string:
		if n, err := strconv.ParseInt(strings.TrimSpace(t), 10, 64); err == nil {
			return &n
		}
	}
	return nil
}

func toFloat(v any) *float64 {
	switch t := v.(type) {
	case float64:
		return &t
	case int:
		f := float64(t)
		return &f
	case int64:
		f := float64(t)
		return &f
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(t), 64); err == nil {
			return &f
		}
	}
	return nil
}

func toBool(v any) *bool {
	switch t := v.(type) {
	case bool:
		return &t
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "true", "yes":
			b := true
			return &b
		case "false", "no":
			b := false
			return &b
		}
	}
	return nil
}

func toStrings(v any) []string {
	switch t := v.(type) {
	case []string:
		return t
	case string:
		if s := strings.TrimSpace(t); s != "" {
			return []string{s}
		}
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			if s, ok := item.(string); ok {
				if s = strings.TrimSpace(s); s != "" {
					out = append(out, s)
				}
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return nil
}
