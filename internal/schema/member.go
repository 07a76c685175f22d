// Package schema defines the internal member schema the import pipeline
// maps roster exports onto. Field names double as the registry's JSON keys.
package schema

import "strings"

// FieldType selects the transcoding rule applied when a source column is
// mapped onto the field.
type FieldType int

const (
	FieldText FieldType = iota
	FieldName           // combined "Last, First" cell, split on the first comma
	FieldBool
	FieldDate
	FieldEnum
)

// Internal field names.
const (
	FieldNameCombined = "name" // source-only pseudo field, writes firstName + lastName
	FieldFirstName    = "firstName"
	FieldLastName     = "lastName"
	FieldEmail        = "email"
	FieldCallSign     = "callSign"
	FieldClass        = "class"
	FieldMembership   = "membership"
	FieldJoinDate     = "joinDate"
	FieldMailList     = "mailList"
)

// Date handling for the legacy roster format.
const (
	// LegacyDateLayout is the only date format the old export produces.
	LegacyDateLayout = "01/02/2006"

	// DateSentinel is the epoch placeholder the legacy system writes for
	// "no date". It maps to an absent value, not a parse error.
	DateSentinel = "01/01/0001"

	// CanonicalDateLayout is how parsed dates are stored and submitted.
	CanonicalDateLayout = "2006-01-02"
)

// TruthyToken is the single value the legacy checkbox export writes for a
// checked box. Comparison is case-insensitive; everything else is false.
const TruthyToken = "checked"

// MembershipClasses is the closed set of valid membership classifications.
var MembershipClasses = []string{"Full", "Family", "Student", "Associate", "Honorary"}

// membershipSynonyms normalizes alternate spellings seen in real exports to
// the canonical classification. Keys are lowercase.
var membershipSynonyms = map[string]string{
	"assoc":       "Associate",
	"life":        "Honorary",
	"life member": "Honorary",
}

// Field describes one internal member field and its validation bounds.
type Field struct {
	Name     string
	Type     FieldType
	Required bool
	MaxLen   int // 0 means unbounded
}

// Fields lists every mappable internal field, in registry column order.
var Fields = []Field{
	{Name: FieldNameCombined, Type: FieldName},
	{Name: FieldFirstName, Type: FieldText, Required: true, MaxLen: 50},
	{Name: FieldLastName, Type: FieldText, Required: true, MaxLen: 50},
	{Name: FieldEmail, Type: FieldText, Required: true},
	{Name: FieldCallSign, Type: FieldText, MaxLen: 10},
	{Name: FieldClass, Type: FieldText},
	{Name: FieldMembership, Type: FieldEnum},
	{Name: FieldJoinDate, Type: FieldDate},
	{Name: FieldMailList, Type: FieldBool},
}

var fieldsByName = func() map[string]Field {
	m := make(map[string]Field, len(Fields))
	for _, f := range Fields {
		m[f.Name] = f
	}
	return m
}()

// ByName returns the field definition for an internal field name.
func ByName(name string) (Field, bool) {
	f, ok := fieldsByName[name]
	return f, ok
}

// CanonicalMembership resolves a raw membership value to its canonical
// classification. The lookup is case-insensitive and consults the synonym
// table first. When nothing matches, the trimmed input is returned with
// ok=false; the validator reports it, not the mapper.
func CanonicalMembership(raw string) (string, bool) {
	trimmed := strings.TrimSpace(raw)
	lower := strings.ToLower(trimmed)
	if canon, ok := membershipSynonyms[lower]; ok {
		return canon, true
	}
	for _, c := range MembershipClasses {
		if strings.EqualFold(trimmed, c) {
			return c, true
		}
	}
	return trimmed, false
}
