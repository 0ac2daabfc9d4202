package contactimport

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

var (
	ErrEmptyFile        = errors.New("arquivo vazio")
	ErrMissingHeader    = errors.New("cabeçalho não encontrado")
	ErrInvalidCSV       = errors.New("csv inválido")
	ErrRowLimitExceeded = errors.New("limite de linhas excedido")
)

const (
	fallbackDelimiter = ';'
	sniffSampleLines  = 10
)

var candidateDelimiters = []rune{',', '\t', ';', '|'}

// Record is one parsed CSV row. Line is relative to the header, which is
// line 1.
type Record struct {
	Line  int
	Cells []string
}

// Table is a decoded upload: the header row and the data rows that follow.
type Table struct {
	Delimiter rune
	Header    []string
	Rows      []Record
}

// DecodeTable turns raw upload bytes into a Table. Text is read as UTF-8,
// falling back to Latin-1, with a leading BOM removed.
func DecodeTable(data []byte) (Table, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return Table{}, ErrEmptyFile
	}

	text, err := decodeText(data)
	if err != nil {
		return Table{}, err
	}
	if strings.TrimSpace(text) == "" {
		return Table{}, ErrEmptyFile
	}

	delimiter := detectDelimiter(text)
	reader := newReader(strings.NewReader(text), delimiter)

	table := Table{Delimiter: delimiter}
	headerLine := 0
	for {
		cells, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Table{}, fmt.Errorf("%w: %v", ErrInvalidCSV, err)
		}
		line, _ := reader.FieldPos(0)
		if headerLine == 0 {
			if isBlankRow(cells) {
				return Table{}, ErrMissingHeader
			}
			headerLine = line
			table.Header = trimCells(cells)
			continue
		}
		table.Rows = append(table.Rows, Record{Line: line - headerLine + 1, Cells: cells})
	}

	if headerLine == 0 {
		return Table{}, ErrMissingHeader
	}
	return table, nil
}

func decodeText(data []byte) (string, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	if utf8.Valid(data) {
		return string(data), nil
	}
	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
	if err != nil {
		return "", fmt.Errorf("decode latin-1: %w", err)
	}
	return string(decoded), nil
}

// detectDelimiter picks the candidate that splits the sampled lines into the
// same number of columns most often. Wider splits win ties.
func detectDelimiter(text string) rune {
	sample := sampleLines(text, sniffSampleLines)
	if len(sample) == 0 {
		return fallbackDelimiter
	}

	best := rune(fallbackDelimiter)
	bestConsistent, bestWidth := 0, 0
	for _, delimiter := range candidateDelimiters {
		width := countFields(sample[0], delimiter)
		if width < 2 {
			continue
		}
		consistent := 0
		for _, line := range sample {
			if countFields(line, delimiter) == width {
				consistent++
			}
		}
		if consistent > bestConsistent || (consistent == bestConsistent && width > bestWidth) {
			best, bestConsistent, bestWidth = delimiter, consistent, width
		}
	}
	return best
}

func sampleLines(text string, limit int) []string {
	lines := make([]string, 0, limit)
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
		if len(lines) == limit {
			break
		}
	}
	return lines
}

func countFields(line string, delimiter rune) int {
	cells, err := newReader(strings.NewReader(line), delimiter).Read()
	if err != nil {
		return 0
	}
	return len(cells)
}

func splitInline(value string, delimiter rune) []string {
	cells, err := newReader(strings.NewReader(value), delimiter).Read()
	if err != nil {
		return strings.Split(value, string(delimiter))
	}
	return cells
}

func newReader(r io.Reader, delimiter rune) *csv.Reader {
	reader := csv.NewReader(r)
	reader.Comma = delimiter
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	return reader
}

func isBlankRow(cells []string) bool {
	for _, cell := range cells {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func trimCells(cells []string) []string {
	out := make([]string, len(cells))
	for i, cell := range cells {
		out[i] = strings.TrimSpace(cell)
	}
	return out
}
