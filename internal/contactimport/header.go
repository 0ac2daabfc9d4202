package contactimport

import (
	"errors"
	"fmt"
	"strings"
)

type Column string

const (
	ColumnName      Column = "nome"
	ColumnCPF       Column = "cpf"
	ColumnPhone     Column = "telefone"
	ColumnBirthDate Column = "data_nascimento"
	ColumnAge       Column = "idade"
	ColumnOrigin    Column = "origem"
)

// ExpectedColumns is the canonical column order. Matching and positional
// fallback both walk it in this order.
var ExpectedColumns = []Column{ColumnName, ColumnCPF, ColumnPhone, ColumnBirthDate, ColumnAge, ColumnOrigin}

var requiredColumns = []Column{ColumnName, ColumnPhone}

var ErrMissingColumns = errors.New("colunas obrigatórias ausentes")

type MissingColumnsError struct {
	Columns []Column
}

func (e *MissingColumnsError) Error() string {
	names := make([]string, len(e.Columns))
	for i, col := range e.Columns {
		names[i] = string(col)
	}
	return fmt.Sprintf("%s: %s", ErrMissingColumns, strings.Join(names, ", "))
}

func (e *MissingColumnsError) Unwrap() error {
	return ErrMissingColumns
}

// HeaderMapping is the result of reconciling an uploaded header row against
// ExpectedColumns.
type HeaderMapping struct {
	// Header is the header row actually used, after any inline re-split.
	Header  []string
	Columns map[Column]int
	// Unknown lists non-blank header cells that no column claimed, in header
	// order.
	Unknown []string
	// InlineDelimiter is set when the header arrived as one cell holding the
	// whole row. InlineIndex is the position of that cell.
	InlineDelimiter rune
	InlineIndex     int
}

// ReconcileHeader maps header cells to canonical columns: exact or substring
// match on the normalized key first, then unclaimed columns take unclaimed
// positions left to right.
func ReconcileHeader(header []string) (HeaderMapping, error) {
	mapping := HeaderMapping{
		Header:  trimCells(header),
		Columns: make(map[Column]int, len(ExpectedColumns)),
	}
	mapping.resplitInline()

	keys := make([]string, len(mapping.Header))
	for i, cell := range mapping.Header {
		keys[i] = normalizeHeaderKey(cell)
	}

	claimed := make(map[int]bool, len(keys))
	for _, col := range ExpectedColumns {
		want := normalizeHeaderKey(string(col))
		for idx, key := range keys {
			if claimed[idx] || key == "" {
				continue
			}
			if key == want || strings.Contains(key, want) {
				mapping.Columns[col] = idx
				claimed[idx] = true
				break
			}
		}
	}

	free := make([]int, 0, len(keys))
	for idx := range keys {
		if !claimed[idx] {
			free = append(free, idx)
		}
	}
	for _, col := range ExpectedColumns {
		if len(free) == 0 {
			break
		}
		if _, ok := mapping.Columns[col]; ok {
			continue
		}
		mapping.Columns[col] = free[0]
		claimed[free[0]] = true
		free = free[1:]
	}

	var missing []Column
	for _, col := range requiredColumns {
		if _, ok := mapping.Columns[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return HeaderMapping{}, &MissingColumnsError{Columns: missing}
	}

	for idx, cell := range mapping.Header {
		if !claimed[idx] && cell != "" {
			mapping.Unknown = append(mapping.Unknown, cell)
		}
	}
	return mapping, nil
}

// resplitInline handles exports where the whole header landed in one cell,
// e.g. "nome;telefone;cpf" read with the wrong delimiter.
func (m *HeaderMapping) resplitInline() {
	index := -1
	for i, cell := range m.Header {
		if cell == "" {
			continue
		}
		if index >= 0 {
			return
		}
		index = i
	}
	if index < 0 {
		return
	}

	cell := m.Header[index]
	delimiter := ','
	if strings.ContainsRune(cell, ';') {
		delimiter = ';'
	}
	tokens := trimCells(strings.Split(cell, string(delimiter)))
	nonEmpty := 0
	for _, token := range tokens {
		if token != "" {
			nonEmpty++
		}
	}
	if nonEmpty < 2 {
		return
	}
	m.Header = tokens
	m.InlineDelimiter = delimiter
	m.InlineIndex = index
}

// Row adapts a data record to the mapping, re-splitting it the same way the
// header was when needed.
func (m HeaderMapping) Row(cells []string) []string {
	if m.InlineDelimiter == 0 || m.InlineIndex >= len(cells) {
		return cells
	}
	return splitInline(cells[m.InlineIndex], m.InlineDelimiter)
}

// Value returns the trimmed cell for col, or "" when the column is unmapped
// or the row is short.
func (m HeaderMapping) Value(cells []string, col Column) string {
	idx, ok := m.Columns[col]
	if !ok || idx >= len(cells) {
		return ""
	}
	return strings.TrimSpace(cells[idx])
}

func (m HeaderMapping) Has(col Column) bool {
	_, ok := m.Columns[col]
	return ok
}

func normalizeHeaderKey(raw string) string {
	lowered := strings.ToLower(strings.TrimSpace(raw))
	var b strings.Builder
	b.Grow(len(lowered))
	for i := 0; i < len(lowered); i++ {
		c := lowered[i]
		if (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') {
			b.WriteByte(c)
		}
	}
	return b.String()
}
