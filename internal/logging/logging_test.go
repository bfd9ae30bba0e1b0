package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComponentLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithOutput("warn", &buf).Component("ledger")

	logger.Info().Msg("dropped")
	assert.Zero(t, buf.Len(), "below the configured level")

	logger.Warn().Str("asset_id", "a1").Msg("Retrying")
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "ledger", entry["component"])
	assert.Equal(t, "a1", entry["asset_id"])
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "Retrying", entry["message"])
	assert.Contains(t, entry, "time")
}
