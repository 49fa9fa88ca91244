package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sprintchef/internal/config"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestConfigValidate_Default(t *testing.T) {
	out, err := execute(t, "", "config", "validate")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ preset default is valid")
}

func TestConfigValidate_File(t *testing.T) {
	path := writeFile(t, "balance.yaml", "goal:\n  day: 9\n  target_progress: 80\n")

	out, err := execute(t, "", "config", "validate", path)
	require.NoError(t, err)
	assert.Contains(t, out, "is valid")
}

func TestConfigValidate_Invalid(t *testing.T) {
	path := writeFile(t, "balance.yaml", "success:\n  base: 1.5\n")

	out, err := execute(t, "", "--format", "json", "config", "validate", path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, config.ErrSchema, resp.Error.Code)
}

func TestConfigValidate_UnknownKey(t *testing.T) {
	path := writeFile(t, "balance.yaml", "goal:\n  deadline: 9\n")

	out, err := execute(t, "", "config", "validate", path)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error [E004]")
}

func TestConfigValidate_MissingFile(t *testing.T) {
	_, err := execute(t, "", "config", "validate", filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestConfigShow_PresetAndEnv(t *testing.T) {
	t.Setenv("SPRINTCHEF_DAY_ACTIONS", "5")

	out, err := execute(t, "", "--preset", "hard", "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "failure_penalty: 15")
	assert.Contains(t, out, "day_actions: 5")

	cfg, err := config.Decode([]byte(out), config.Default())
	require.NoError(t, err)
	assert.Equal(t, 6, cfg.Goal.Day)
}

func TestConfigShow_JSON(t *testing.T) {
	out, err := execute(t, "", "--format", "json", "--preset", "casual", "config", "show")
	require.NoError(t, err)

	var resp struct {
		Status string        `json:"status"`
		Data   config.Config `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 9, resp.Data.Goal.Day)
}

func TestConfigShow_UnknownPreset(t *testing.T) {
	_, err := execute(t, "", "--preset", "brutal", "config", "show")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
