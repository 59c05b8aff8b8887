package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_ProductionWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	logger, flush, err := New(Options{Production: true, Level: "info", Service: "bookstore-api", Output: &buf})
	require.NoError(t, err)

	logger.Debug("hidden")
	logger.Info("book created")
	require.NoError(t, flush())

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)
	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "book created", entry["msg"])
	assert.Equal(t, "info", entry["lvl"])
	assert.Equal(t, "bookstore-api", entry["service"])
}

func TestNew_DevelopmentConsole(t *testing.T) {
	var buf bytes.Buffer
	logger, _, err := New(Options{Level: "debug", Output: &buf})
	require.NoError(t, err)

	logger.Debug("list served")

	assert.Contains(t, buf.String(), "list served")
}

func TestNew_InvalidLevel(t *testing.T) {
	_, _, err := New(Options{Level: "loud"})

	assert.Error(t, err)
}
