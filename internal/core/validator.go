package core

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"rosterline/internal/schema"
)

// requiredMessages are the user-facing reasons for missing required fields.
var requiredMessages = map[string]string{
	schema.FieldFirstName: "first name is required",
	schema.FieldLastName:  "last name is required",
	schema.FieldEmail:     "email is required",
}

// Validate applies every business rule to a candidate record and returns
// the failures keyed by field name, so the preview can highlight exactly
// the offending cell. All rules are evaluated independently; a record can
// carry several errors at once. An empty map means the record is valid.
func Validate(rec *CandidateRecord) map[string]string {
	errs := make(map[string]string)

	// Presence and length bounds come from the schema field table.
	for _, f := range schema.Fields {
		if f.Required {
			requirePresent(errs, rec, f.Name, requiredMessages[f.Name])
		}
		if f.MaxLen > 0 {
			boundLength(errs, rec, f.Name, f.MaxLen)
		}
	}

	// Deliberately coarse email check; the registry does the real one.
	if email := rec.Get(schema.FieldEmail); email != "" {
		if !strings.Contains(email, "@") || !strings.Contains(email, ".") {
			errs[schema.FieldEmail] = "email must contain '@' and '.'"
		}
	}

	if m := rec.Get(schema.FieldMembership); m != "" {
		if _, ok := schema.CanonicalMembership(m); !ok {
			errs[schema.FieldMembership] = fmt.Sprintf("membership must be one of: %s",
				strings.Join(schema.MembershipClasses, ", "))
		}
	}

	// Symmetry invariant: a call sign and a license class come together.
	// Both violations attach to the class field.
	hasCallSign := rec.Get(schema.FieldCallSign) != ""
	hasClass := rec.Get(schema.FieldClass) != ""
	switch {
	case hasCallSign && !hasClass:
		errs[schema.FieldClass] = "license class is required when a call sign is present"
	case hasClass && !hasCallSign:
		errs[schema.FieldClass] = "license class requires a call sign"
	}

	// Dates that failed to parse during mapping are reported here.
	for field, raw := range rec.badDates {
		errs[field] = fmt.Sprintf("%q is not a valid date (use MM/DD/YYYY)", raw)
	}

	return errs
}

// ValidateBatch validates every record in place and returns the number of
// invalid records. Validation blocks submission, never preview.
func ValidateBatch(batch ImportBatch) int {
	invalid := 0
	for _, rec := range batch {
		rec.Errors = Validate(rec)
		if len(rec.Errors) > 0 {
			invalid++
		}
	}
	return invalid
}

func requirePresent(errs map[string]string, rec *CandidateRecord, field, msg string) {
	if msg == "" {
		msg = field + " is required"
	}
	if strings.TrimSpace(rec.Get(field)) == "" {
		errs[field] = msg
	}
}

func boundLength(errs map[string]string, rec *CandidateRecord, field string, max int) {
	if _, dup := errs[field]; dup {
		return // required-presence already reported for this field
	}
	if utf8.RuneCountInString(rec.Get(field)) > max {
		errs[field] = fmt.Sprintf("must be at most %d characters", max)
	}
}
