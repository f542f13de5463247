package sl

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErr(t *testing.T) {
	attr := Err(errors.New("boom"))
	assert.Equal(t, "error", attr.Key)
	assert.Equal(t, "boom", attr.Value.String())

	assert.Equal(t, "", Err(nil).Value.String())
}

func TestSetupLogger(t *testing.T) {
	var buf bytes.Buffer
	SetupLogger(EnvProd, &buf).Info("started", slog.String("env", EnvProd))

	var entry map[string]any
	assert.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "started", entry["msg"])
	assert.Equal(t, EnvProd, entry["env"])

	assert.False(t, SetupLogger(EnvProd, &buf).Enabled(context.Background(), slog.LevelDebug))
	assert.True(t, SetupLogger(EnvLocal, &buf).Enabled(context.Background(), slog.LevelDebug))
}
