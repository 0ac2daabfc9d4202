package contactimport

import (
	"fmt"
	"strings"

	gen "github.com/clinica-platform/apps/api/internal/gen/db"
)

// MaxLoggedErrors caps how many row errors are kept on an import run. The
// error counter keeps counting past it.
const MaxLoggedErrors = 50

type Summary struct {
	Total    int
	Imported int
	Updated  int
	Skipped  int
	Errored  int
	Log      []string
}

func (s *Summary) fail(line int, format string, args ...any) {
	s.Errored++
	if len(s.Log) >= MaxLoggedErrors {
		return
	}
	s.Log = append(s.Log, fmt.Sprintf("Linha %d: ", line)+fmt.Sprintf(format, args...))
}

func (s Summary) runParams(filename, origin, archiveKey string) gen.CreateContactImportRunParams {
	params := gen.CreateContactImportRunParams{
		Filename:  filename,
		Origin:    origin,
		TotalRows: int32(s.Total),
		Imported:  int32(s.Imported),
		Updated:   int32(s.Updated),
		Skipped:   int32(s.Skipped),
		Errored:   int32(s.Errored),
		Log:       strings.Join(s.Log, "\n"),
	}
	if archiveKey != "" {
		params.ArchiveKey = &archiveKey
	}
	return params
}
