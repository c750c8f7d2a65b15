package logger

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNew_WritesJSONFileAndRecent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "explorer.log")
	l, err := New(Options{Level: "debug", File: path})
	require.NoError(t, err)

	l.Named("imagery").Warn("imagery fetch failed", zap.String("id", "elm"))
	require.NoError(t, l.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(string(data))), &entry))
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "imagery", entry["logger"])
	assert.Equal(t, "imagery fetch failed", entry["msg"])
	assert.Equal(t, "elm", entry["id"])

	recent := l.Recent()
	require.Len(t, recent, 1)
	assert.Contains(t, recent[0], "WARN")
	assert.Contains(t, recent[0], "imagery fetch failed")
}

func TestNew_LevelFilters(t *testing.T) {
	l, err := New(Options{Level: "warn"})
	require.NoError(t, err)
	l.Info("hidden")
	l.Error("shown")
	assert.Len(t, l.Recent(), 1)
	require.NoError(t, l.Close())
}

func TestNew_BadLevel(t *testing.T) {
	_, err := New(Options{Level: "loud"})
	assert.ErrorContains(t, err, "logger:")
}

func TestRing_KeepsNewestLines(t *testing.T) {
	r := newRing(3)
	for i := 0; i < 5; i++ {
		_, _ = fmt.Fprintf(r, "line %d\n", i)
	}
	assert.Equal(t, []string{"line 2", "line 3", "line 4"}, r.lines())
}
