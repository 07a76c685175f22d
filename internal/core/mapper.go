package core

import (
	"strings"
	"time"

	"rosterline/internal/csv"
	"rosterline/internal/schema"
)

// MapRows transforms parsed rows into candidate records using the session's
// field mapping. Mapping is a total function: absent, malformed, or
// unrecognized values never error here. Every correctness problem is
// deferred to the validator so user feedback stays on one channel, keyed by
// field name.
//
// Unmapped source headers are ignored. Target fields with no source column
// stay absent in the candidate; submission-time defaults (join date, opt-in
// flags) are applied when the payload is built, never in the preview.
func MapRows(headers []string, rows []csv.Row, mapping FieldMapping) ImportBatch {
	batch := make(ImportBatch, 0, len(rows))
	for _, row := range rows {
		batch = append(batch, mapRow(headers, row, mapping))
	}
	return batch
}

func mapRow(headers []string, row csv.Row, mapping FieldMapping) *CandidateRecord {
	rec := &CandidateRecord{
		RowNumber: row.Line,
		Fields:    make(map[string]string),
	}

	for i, header := range headers {
		target := mapping[header]
		if target == "" || i >= len(row.Cells) {
			continue
		}
		cell := strings.TrimSpace(row.Cells[i])

		field, known := schema.ByName(target)
		if !known {
			// Mapping targets we do not recognize are copied verbatim so
			// nothing from the file is silently lost.
			setNonEmpty(rec, target, cell)
			continue
		}

		switch field.Type {
		case schema.FieldName:
			last, first := splitName(cell)
			setNonEmpty(rec, schema.FieldLastName, last)
			setNonEmpty(rec, schema.FieldFirstName, first)

		case schema.FieldBool:
			if strings.EqualFold(cell, schema.TruthyToken) {
				rec.Fields[target] = "true"
			} else {
				rec.Fields[target] = "false"
			}

		case schema.FieldDate:
			mapDate(rec, target, cell)

		case schema.FieldEnum:
			canon, _ := schema.CanonicalMembership(cell)
			setNonEmpty(rec, target, canon)

		default:
			setNonEmpty(rec, target, cell)
		}
	}

	return rec
}

// splitName splits a combined "Last, First" value on the first comma.
// A value without a comma is all last name.
func splitName(cell string) (last, first string) {
	before, after, found := strings.Cut(cell, ",")
	if !found {
		return strings.TrimSpace(cell), ""
	}
	return strings.TrimSpace(before), strings.TrimSpace(after)
}

// mapDate parses the legacy MM/DD/YYYY format. The epoch placeholder maps
// to absent, and an unparseable value is left unset but remembered so the
// validator can report it.
func mapDate(rec *CandidateRecord, target, cell string) {
	if cell == "" || cell == schema.DateSentinel {
		return
	}
	t, err := time.Parse(schema.LegacyDateLayout, cell)
	if err != nil {
		if rec.badDates == nil {
			rec.badDates = make(map[string]string)
		}
		rec.badDates[target] = cell
		return
	}
	rec.Fields[target] = t.Format(schema.CanonicalDateLayout)
}

func setNonEmpty(rec *CandidateRecord, field, value string) {
	if value != "" {
		rec.Fields[field] = value
	}
}
