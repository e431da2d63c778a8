package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONFormatter(t *testing.T) {
	var buf bytes.Buffer
	l := newLogger(&buf, "debug", "json", true)
	l.WithFields(logrus.Fields{"request_id": "abc", "status": 200}).Info("request")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "abc", entry["request_id"])
	assert.Equal(t, "request", entry["msg"])
	assert.NotContains(t, entry, "time")
}

func TestLevelFallback(t *testing.T) {
	var buf bytes.Buffer
	l := newLogger(&buf, "chatty", "text", true)
	assert.Equal(t, logrus.InfoLevel, l.GetLevel())
	l.Debug("hidden")
	assert.Empty(t, buf.String())
	l.Warn("shown")
	assert.Contains(t, buf.String(), "level=warning msg=shown")
}
