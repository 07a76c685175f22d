package core

import (
	"strings"
	"testing"

	"rosterline/internal/schema"
)

func record(fields map[string]string) *CandidateRecord {
	return &CandidateRecord{RowNumber: 2, Fields: fields}
}

func validFields() map[string]string {
	return map[string]string{
		schema.FieldFirstName: "John",
		schema.FieldLastName:  "Doe",
		schema.FieldEmail:     "john@example.com",
	}
}

func TestValidate_ValidRecord(t *testing.T) {
	errs := Validate(record(validFields()))
	if len(errs) != 0 {
		t.Errorf("unexpected errors: %v", errs)
	}
}

func TestValidate_Required(t *testing.T) {
	for _, field := range []string{schema.FieldFirstName, schema.FieldLastName, schema.FieldEmail} {
		fields := validFields()
		delete(fields, field)
		errs := Validate(record(fields))
		if errs[field] == "" {
			t.Errorf("missing %s should be an error", field)
		}
	}

	// Whitespace does not satisfy a required field.
	fields := validFields()
	fields[schema.FieldEmail] = "   "
	if errs := Validate(record(fields)); errs[schema.FieldEmail] == "" {
		t.Error("blank email should be an error")
	}
}

func TestValidate_Lengths(t *testing.T) {
	fields := validFields()
	fields[schema.FieldLastName] = strings.Repeat("x", 51)
	fields[schema.FieldCallSign] = "W1AWXYZABCD" // 11 chars
	fields[schema.FieldClass] = "Extra"

	errs := Validate(record(fields))
	if errs[schema.FieldLastName] == "" {
		t.Error("51-char last name should be an error")
	}
	if errs[schema.FieldCallSign] == "" {
		t.Error("11-char call sign should be an error")
	}

	// Exactly at the limit is fine.
	fields[schema.FieldLastName] = strings.Repeat("x", 50)
	fields[schema.FieldCallSign] = "W1AWXYZABC" // 10 chars
	errs = Validate(record(fields))
	if errs[schema.FieldLastName] != "" || errs[schema.FieldCallSign] != "" {
		t.Errorf("at-limit lengths should pass: %v", errs)
	}
}

func TestValidate_LengthCountsRunes(t *testing.T) {
	fields := validFields()
	fields[schema.FieldLastName] = strings.Repeat("ü", 50)
	if errs := Validate(record(fields)); errs[schema.FieldLastName] != "" {
		t.Errorf("50 runes should pass: %v", errs)
	}
}

func TestValidate_EmailShape(t *testing.T) {
	tests := []struct {
		email string
		ok    bool
	}{
		{"john@example.com", true},
		{"a@b.c", true},
		{"john.example.com", false}, // no @
		{"john@example", false},     // no .
		{"@.", true},                // coarse check only
	}

	for _, tt := range tests {
		fields := validFields()
		fields[schema.FieldEmail] = tt.email
		errs := Validate(record(fields))
		if got := errs[schema.FieldEmail] == ""; got != tt.ok {
			t.Errorf("email %q valid = %v, want %v", tt.email, got, tt.ok)
		}
	}
}

func TestValidate_Membership(t *testing.T) {
	fields := validFields()
	fields[schema.FieldMembership] = "Platinum"
	errs := Validate(record(fields))
	if errs[schema.FieldMembership] == "" {
		t.Error("unknown membership should be an error")
	}

	// Absent membership is allowed; the registry default applies.
	delete(fields, schema.FieldMembership)
	if errs := Validate(record(fields)); errs[schema.FieldMembership] != "" {
		t.Errorf("absent membership should pass: %v", errs)
	}
}

func TestValidate_CallSignClassSymmetry(t *testing.T) {
	// A call sign without a class.
	fields := validFields()
	fields[schema.FieldCallSign] = "W1AW"
	errs := Validate(record(fields))
	if errs[schema.FieldClass] == "" {
		t.Error("call sign without class should attach an error to class")
	}

	// A class without a call sign.
	fields = validFields()
	fields[schema.FieldClass] = "Extra"
	errs = Validate(record(fields))
	if errs[schema.FieldClass] == "" {
		t.Error("class without call sign should attach an error to class")
	}

	// Both or neither pass.
	fields = validFields()
	fields[schema.FieldCallSign] = "W1AW"
	fields[schema.FieldClass] = "Extra"
	if errs := Validate(record(fields)); errs[schema.FieldClass] != "" {
		t.Errorf("call sign with class should pass: %v", errs)
	}
	if errs := Validate(record(validFields())); errs[schema.FieldClass] != "" {
		t.Errorf("neither should pass: %v", errs)
	}
}

func TestValidate_MultipleErrors(t *testing.T) {
	rec := record(map[string]string{
		schema.FieldEmail:    "not-an-email",
		schema.FieldCallSign: "W1AW",
	})
	errs := Validate(rec)
	for _, field := range []string{schema.FieldFirstName, schema.FieldLastName, schema.FieldEmail, schema.FieldClass} {
		if errs[field] == "" {
			t.Errorf("expected an error on %s, got %v", field, errs)
		}
	}
}

func TestValidateBatch(t *testing.T) {
	batch := ImportBatch{
		record(validFields()),
		record(map[string]string{schema.FieldFirstName: "Solo"}),
		record(validFields()),
	}

	invalid := ValidateBatch(batch)
	if invalid != 1 {
		t.Errorf("invalid = %d, want 1", invalid)
	}
	if batch.InvalidCount() != 1 {
		t.Errorf("InvalidCount() = %d, want 1", batch.InvalidCount())
	}
	if !batch[0].Valid() || batch[1].Valid() || !batch[2].Valid() {
		t.Error("wrong records flagged invalid")
	}
}
