// Package csv parses the loosely structured roster exports club sites hand
// us. The files are comma separated with optional double-quote quoting, but
// they do not follow RFC 4180: quoting is single-level (no doubled-quote
// escaping) and column counts drift between rows. encoding/csv either
// rejects or silently reshapes these files, so parsing is done with a small
// scanner that mirrors what the exports actually contain.
package csv

import (
	"errors"
	"fmt"
	"strings"
)

const (
	delimiter = ','
	quote     = '"'
)

// ErrNoHeader is returned when the input contains no non-blank lines.
var ErrNoHeader = errors.New("no header row found")

// Row is one data row with the physical line number it started on.
// Line numbers are 1-based and count every line in the source file,
// including the header, so they can be shown next to the original file.
type Row struct {
	Line  int
	Cells []string
}

// Malformed records a data row that was dropped, with the reason.
type Malformed struct {
	Line   int
	Reason string
}

// Document is the result of parsing one roster export.
//
// Rows preserves file order. Malformed holds rows whose cell count did not
// match the header; they are excluded from Rows but never abort the parse.
type Document struct {
	Headers   []string
	Rows      []Row
	Malformed []Malformed
}

// Parse tokenizes raw roster text into a header row and data rows.
//
// The scanner walks the text once, toggling an in-quotes flag on each quote
// character. A delimiter splits fields only outside quotes, and a newline
// ends the row only outside quotes, so quoted cells may contain commas and
// line breaks. Quote characters themselves are never part of a cell value.
// A quote inside a quoted cell does not close the cell on its own; there is
// no support for doubled-quote escaping.
//
// Blank lines are skipped. The first non-blank line is the header; header
// cells are trimmed. Data rows with the wrong cell count are reported in
// Malformed with their line number and parsing continues.
func Parse(text string) (*Document, error) {
	text = strings.TrimPrefix(text, "\uFEFF")

	doc := &Document{}

	var (
		cell     strings.Builder
		cells    []string
		inQuotes bool
		line     = 1 // current physical line
		rowLine  = 1 // line the current row started on
		rowStart = 0 // byte offset of the current row, for blank detection
	)

	endRow := func(end int) {
		cells = append(cells, cell.String())
		cell.Reset()

		raw := text[rowStart:end]
		if strings.TrimSpace(raw) == "" {
			cells = nil
			return
		}

		if doc.Headers == nil {
			doc.Headers = trimHeaders(cells)
		} else if len(cells) != len(doc.Headers) {
			doc.Malformed = append(doc.Malformed, Malformed{
				Line:   rowLine,
				Reason: fmt.Sprintf("row has %d cells, expected %d", len(cells), len(doc.Headers)),
			})
		} else {
			doc.Rows = append(doc.Rows, Row{Line: rowLine, Cells: cells})
		}
		cells = nil
	}

	for i := 0; i < len(text); i++ {
		c := text[i]
		switch {
		case c == quote:
			inQuotes = !inQuotes

		case c == delimiter && !inQuotes:
			cells = append(cells, cell.String())
			cell.Reset()

		case c == '\n' && !inQuotes:
			end := i
			if end > rowStart && text[end-1] == '\r' {
				end--
			}
			endRow(end)
			line++
			rowLine = line
			rowStart = i + 1

		case c == '\n': // quoted line break, keep it in the cell
			cell.WriteByte(c)
			line++

		case c == '\r' && !inQuotes && i+1 < len(text) && text[i+1] == '\n':
			// consumed by the '\n' branch

		default:
			cell.WriteByte(c)
		}
	}

	// Final row without a trailing newline.
	if cell.Len() > 0 || len(cells) > 0 {
		endRow(len(text))
	}

	if doc.Headers == nil {
		return nil, ErrNoHeader
	}
	return doc, nil
}

// trimHeaders trims whitespace and strips one layer of surrounding quotes
// from each header cell. The scanner already drops quote characters during
// tokenization; the extra strip covers headers hand-edited with stray
// quotes that never toggled a quoted region, e.g. `'Call Sign'`.
func trimHeaders(cells []string) []string {
	out := make([]string, len(cells))
	for i, c := range cells {
		c = strings.TrimSpace(c)
		if len(c) >= 2 {
			if (c[0] == '"' && c[len(c)-1] == '"') || (c[0] == '\'' && c[len(c)-1] == '\'') {
				c = c[1 : len(c)-1]
			}
		}
		out[i] = strings.TrimSpace(c)
	}
	return out
}
