package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatterJSON(t *testing.T) {
	var buf bytes.Buffer
	formatter := &Formatter{Format: "json", Writer: &buf}

	assert.True(t, formatter.IsJSON())
	require.NoError(t, formatter.JSON(map[string]int{"total": 3}))
	assert.JSONEq(t, `{"total":3}`, buf.String())
}

func TestFormatterTable(t *testing.T) {
	var buf bytes.Buffer
	formatter := &Formatter{Format: "text", Writer: &buf}

	formatter.Table(
		[]string{"id", "title"},
		[][]string{
			{"1", "Caída de pacientes"},
			{"22", "Fuga"},
		},
	)

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 4)
	assert.Equal(t, "id  title", string(lines[0]))
	assert.Contains(t, string(lines[1]), "--")
	assert.Equal(t, "1   Caída de pacientes", string(lines[2]))
	assert.Equal(t, "22  Fuga", string(lines[3]))
}

func TestFormatterLine(t *testing.T) {
	var buf bytes.Buffer
	formatter := &Formatter{Format: "text", Writer: &buf}

	formatter.Line("page %d/%d", 1, 3)
	assert.Equal(t, "page 1/3\n", buf.String())
}
