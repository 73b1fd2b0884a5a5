package ui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTable(t *testing.T) {
	var buf bytes.Buffer
	table := NewTable(&buf, true, "Status", "File", "Records")
	table.AddRow("written", "models/typestate_builders.go", "Account, User")
	table.AddRow("unchanged", "billing/typestate_builders.go", "Invoice")
	table.Render()

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 4)

	assert.Equal(t, "Status     File                           Records", lines[0])
	assert.Equal(t, strings.Repeat("─", 9)+"  "+strings.Repeat("─", 29)+"  "+strings.Repeat("─", 13), lines[1])
	assert.Equal(t, "written    models/typestate_builders.go   Account, User", lines[2])
	assert.Equal(t, "unchanged  billing/typestate_builders.go  Invoice", lines[3])
	assert.Equal(t, 2, table.Len())
}

func TestTable_NoHeaders(t *testing.T) {
	var buf bytes.Buffer
	table := NewTable(&buf, true)
	table.AddRow("ignored")
	table.Render()

	assert.Empty(t, buf.String())
}

func TestTable_ExtraCellsDropped(t *testing.T) {
	var buf bytes.Buffer
	table := NewTable(&buf, true, "A")
	table.AddRow("x", "y")
	table.Render()

	assert.NotContains(t, buf.String(), "y")
}

func TestTable_ShortRow(t *testing.T) {
	var buf bytes.Buffer
	table := NewTable(&buf, true, "Status", "File")
	table.AddRow("removed")
	table.Render()

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "removed", lines[2])
}

func TestKeyValueTable(t *testing.T) {
	var buf bytes.Buffer
	kv := NewKeyValueTable(&buf, true)
	kv.AddRow("output", "typestate_builders.go")
	kv.AddRow("finalize_method", "Build")
	kv.Render()

	assert.Equal(t,
		"output:          typestate_builders.go\n"+
			"finalize_method: Build\n",
		buf.String())
}

func TestKeyValueTable_Empty(t *testing.T) {
	var buf bytes.Buffer
	NewKeyValueTable(&buf, true).Render()
	assert.Empty(t, buf.String())
}

func TestPadRight(t *testing.T) {
	tests := []struct {
		input string
		width int
		want  string
	}{
		{"test", 6, "test  "},
		{"test", 4, "test"},
		{"test", 2, "test"},
		{"─", 3, "─  "},
		{"", 2, "  "},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, padRight(tt.input, tt.width), "padRight(%q, %d)", tt.input, tt.width)
	}
}
