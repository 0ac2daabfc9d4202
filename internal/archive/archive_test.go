package archive

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestImportKey(t *testing.T) {
	at := time.Date(2024, time.March, 5, 23, 0, 0, 0, time.FixedZone("BRT", -3*60*60))
	key := ImportKey(at, "Pacientes Março.csv")

	pattern := regexp.MustCompile(`^imports/2024/03/06/[0-9a-f-]{36}-Pacientes_Mar_o\.csv$`)
	assert.Regexp(t, pattern, key)
}

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "contatos.csv", sanitizeFilename("../../etc/contatos.csv"))
	assert.Equal(t, "lista.csv", sanitizeFilename(`C:\Users\ana\lista.csv`))
	assert.Equal(t, "upload.csv", sanitizeFilename("   "))
}
