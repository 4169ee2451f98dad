package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_InfoLevelHidesDebug(t *testing.T) {
	var buf bytes.Buffer
	l := New(Options{Output: &buf})

	l.Debug("hidden")
	l.Info("shown", "segment", 3)

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown")
	assert.Contains(t, out, "segment=3")
	assert.Contains(t, out, Name)
}

func TestNew_VerboseEnablesDebug(t *testing.T) {
	var buf bytes.Buffer
	l := New(Options{Verbose: true, Output: &buf})

	l.Debug("ffmpeg command", "args", "-i in.mp4")
	assert.Contains(t, buf.String(), "ffmpeg command")
}

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	l := New(Options{JSON: true, Output: &buf})

	l.Warn("resolution fallback", "width", 1920)

	line := strings.TrimSpace(buf.String())
	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(line), &entry))
	assert.Equal(t, "resolution fallback", entry["@message"])
	assert.Equal(t, "warn", entry["@level"])
	assert.Equal(t, float64(1920), entry["width"])
}
