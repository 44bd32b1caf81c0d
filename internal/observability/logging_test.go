package observability

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cory-johannsen/wastehunter/internal/config"
	"github.com/cory-johannsen/wastehunter/internal/game/action"
)

func TestNewLogger_JSON(t *testing.T) {
	cfg := config.LoggingConfig{Level: "info", Format: "json"}
	logger, err := NewLogger(cfg)
	require.NoError(t, err)
	assert.NotNil(t, logger)
}

func TestNewLogger_Console(t *testing.T) {
	cfg := config.LoggingConfig{Level: "debug", Format: "console"}
	logger, err := NewLogger(cfg)
	require.NoError(t, err)
	assert.NotNil(t, logger)
}

func TestNewLogger_InvalidLevel(t *testing.T) {
	cfg := config.LoggingConfig{Level: "trace", Format: "json"}
	_, err := NewLogger(cfg)
	assert.Error(t, err)
}

func TestNewLogger_InvalidFormat(t *testing.T) {
	cfg := config.LoggingConfig{Level: "info", Format: "xml"}
	_, err := NewLogger(cfg)
	assert.Error(t, err)
}

func TestNewLogger_AllLevels(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error"} {
		cfg := config.LoggingConfig{Level: level, Format: "json"}
		logger, err := NewLogger(cfg)
		require.NoError(t, err, "level %q should be valid", level)
		assert.NotNil(t, logger)
	}
}

func TestNewLogger_SamplingDisabled(t *testing.T) {
	logger, err := NewLogger(config.LoggingConfig{Level: "debug", Format: "json"})
	require.NoError(t, err)
	// A sampled production core drops repeats after the first 100 per second;
	// the check below would then report nil for later entries.
	for i := 0; i < 200; i++ {
		assert.NotNil(t, logger.Check(zap.DebugLevel, "dice: rolled"), "entry %d", i)
	}
}

func TestCommandFields(t *testing.T) {
	fields := CommandFields(action.Command{Kind: action.KindItemAP, EntityID: "rook", ItemID: "glock"})
	require.Len(t, fields, 3)
	assert.Equal(t, "entity", fields[0].Key)
	assert.Equal(t, "rook", fields[0].String)
	assert.Equal(t, "command", fields[1].Key)
	assert.Equal(t, "item_ap", fields[1].String)
	assert.Equal(t, "item", fields[2].Key)

	fields = CommandFields(action.Command{Kind: action.KindAction, EntityID: "rook", Action: "disarm"})
	require.Len(t, fields, 3)
	assert.Equal(t, "action", fields[2].Key)
	assert.Equal(t, "disarm", fields[2].String)

	fields = CommandFields(action.Command{Kind: action.KindFormulaRoll, EntityID: "rook", Formula: "3d6"})
	require.Len(t, fields, 3)
	assert.Equal(t, "formula", fields[2].Key)
}
