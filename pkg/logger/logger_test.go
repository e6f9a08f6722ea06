package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithWriterProductionIsJSON(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter("production", &buf)
	log.Info("donation created", "amount", 400.0)

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "donation created", line["msg"])
	assert.Equal(t, "elimufund-api", line["service"])
}

func TestNewWithWriterDevelopmentIsText(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter("development", &buf)
	log.Debug("hello")

	assert.Contains(t, buf.String(), "msg=hello")
}
