package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogWritesFileAndMemory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "engine.txt")
	l := New(path)
	l.now = func() time.Time { return time.Date(2024, 3, 1, 12, 30, 5, 0, time.UTC) }

	l.Log("hello")
	l.Logf("bodies=%d", 3)

	assert.Equal(t, []string{
		"[2024-03-01 12:30:05] hello",
		"[2024-03-01 12:30:05] bodies=3",
	}, l.Lines())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[2024-03-01 12:30:05] hello\n[2024-03-01 12:30:05] bodies=3\n", string(data))
}

func TestDiscardKeepsMemoryOnly(t *testing.T) {
	l := Discard()
	l.Log("x")
	require.Len(t, l.Lines(), 1)
	assert.True(t, strings.HasSuffix(l.Lines()[0], "] x"))
	assert.Empty(t, l.Path())
}

func TestLinesReturnsCopy(t *testing.T) {
	l := Discard()
	l.Log("a")
	lines := l.Lines()
	lines[0] = "changed"
	assert.NotEqual(t, "changed", l.Lines()[0])
}
