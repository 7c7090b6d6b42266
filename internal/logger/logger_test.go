package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetup_JSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "facturas.log")
	closer, err := Setup(LogConfig{Level: "debug", Format: "json", Output: path})
	require.NoError(t, err)
	t.Cleanup(Discard)

	apiLog := WithComponent(ComponentAPI)
	apiLog.Debug().Str("url", "/facturas/").Msg("request")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	line := strings.TrimSpace(string(data))
	assert.Contains(t, line, `"component":"api"`)
	assert.Contains(t, line, `"url":"/facturas/"`)
	assert.Contains(t, line, `"level":"debug"`)
}

func TestSetup_InvalidLevel(t *testing.T) {
	_, err := Setup(LogConfig{Level: "loud"})
	assert.Error(t, err)
}
