package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetOutputWritesConsoleLines(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	setLevel()

	Info("wrapped %s XOS", "0.5")
	Debug("hidden")

	assert.Contains(t, buf.String(), "[info]")
	assert.Contains(t, buf.String(), "wrapped 0.5 XOS")
	assert.NotContains(t, buf.String(), "hidden")
}

func TestInitFileOnly(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")

	require.NoError(t, InitFileOnly(dir))
	Warn("confirmation slow")
	Close()

	data, err := os.ReadFile(filepath.Join(dir, "xos-wrap.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"level":"warn"`)
	assert.Contains(t, string(data), "confirmation slow")
}
