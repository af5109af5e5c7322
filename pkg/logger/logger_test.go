package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoggerWritesKeyValues(t *testing.T) {
	req := require.New(t)
	var buf bytes.Buffer
	log := NewWithWriter(&buf, "info")

	log.Info("message appended", "conversation_id", "c1", "seq", 3, "error", errors.New("boom"))

	var entry map[string]interface{}
	req.NoError(json.Unmarshal(buf.Bytes(), &entry))
	req.Equal("info", entry["level"])
	req.Equal("message appended", entry["message"])
	req.Equal("c1", entry["conversation_id"])
	req.EqualValues(3, entry["seq"])
	req.Equal("boom", entry["error"])
}

func TestLoggerLevelFiltering(t *testing.T) {
	req := require.New(t)
	var buf bytes.Buffer
	log := NewWithWriter(&buf, "warn")

	log.Debug("hidden")
	log.Info("hidden")
	req.Zero(buf.Len())

	log.Warn("shown")
	req.Contains(buf.String(), "shown")
}

func TestLoggerUnknownLevelDefaultsToInfo(t *testing.T) {
	req := require.New(t)
	var buf bytes.Buffer
	log := NewWithWriter(&buf, "verbose")

	log.Debug("hidden")
	req.Zero(buf.Len())
	log.Info("shown")
	req.Contains(buf.String(), "shown")
}

func TestPairsDanglingKey(t *testing.T) {
	fields := pairs([]interface{}{"user_id", "u1", "orphan"})
	require.Equal(t, map[string]interface{}{"user_id": "u1", "orphan": "!MISSING"}, fields)
}
