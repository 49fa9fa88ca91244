package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadScenario_ValidFiles(t *testing.T) {
	files, err := filepath.Glob("testdata/scenarios/*.yaml")
	require.NoError(t, err)
	require.NotEmpty(t, files)

	for _, path := range files {
		t.Run(filepath.Base(path), func(t *testing.T) {
			s, err := LoadScenario(path)
			require.NoError(t, err)
			assert.NotEmpty(t, s.Name)
			assert.NotEmpty(t, s.Steps)
		})
	}
}

func TestLoadScenario_FileNotFound(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}

func TestParseScenario_UnknownField(t *testing.T) {
	_, err := ParseScenario([]byte(`
name: typo
description: d
step:
  - do: start
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestParseScenario_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"missing name", "description: d\nsteps: [{do: start}]", "name is required"},
		{"missing description", "name: n\nsteps: [{do: start}]", "description is required"},
		{"no steps", "name: n\ndescription: d", "steps list is required"},
		{"unknown preset", "name: n\ndescription: d\npreset: brutal\nsteps: [{do: start}]", `unknown preset "brutal"`},
		{"roll out of range", "name: n\ndescription: d\nrolls: [1.0]\nsteps: [{do: start}]", "outside [0, 1)"},
		{"unknown step", "name: n\ndescription: d\nsteps: [{do: dance}]", `unknown step "dance"`},
		{"empty step", "name: n\ndescription: d\nsteps: [{arg: x}]", "do is required"},
		{"action without arg", "name: n\ndescription: d\nsteps: [{do: action}]", "arg is required for action"},
		{"bad pending arg", "name: n\ndescription: d\nsteps: [{do: pending, arg: soon}]", "pending arg"},
		{"assertion without type", "name: n\ndescription: d\nsteps: [{do: start}]\nassertions: [{topic: x}]", "type is required"},
		{"unknown assertion", "name: n\ndescription: d\nsteps: [{do: start}]\nassertions: [{type: vibes}]", `unknown assertion type "vibes"`},
		{"count without topic", "name: n\ndescription: d\nsteps: [{do: start}]\nassertions: [{type: trace_count}]", "topic is required for trace_count"},
		{"order without topics", "name: n\ndescription: d\nsteps: [{do: start}]\nassertions: [{type: trace_order}]", "topics list is required"},
		{"final without expect", "name: n\ndescription: d\nsteps: [{do: start}]\nassertions: [{type: final_state}]", "expect is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestBuildConfig(t *testing.T) {
	s, err := ParseScenario([]byte(`
name: cfg
description: d
preset: hard
config:
  goal:
    target_progress: 40
  pivot:
    failure_threshold: 3
steps: [{do: start}]
`))
	require.NoError(t, err)

	cfg, err := s.BuildConfig()
	require.NoError(t, err)
	assert.Equal(t, 40, cfg.Goal.TargetProgress)
	assert.Equal(t, 6, cfg.Goal.Day, "hard preset keeps its goal day")
	assert.Equal(t, 3, cfg.Pivot.FailureThreshold)
	assert.Equal(t, 20, cfg.Pivot.DebtReduction)
}

func TestBuildConfig_UnknownOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
name: cfg
description: d
config:
  goal:
    target: 40
steps: [{do: start}]
`), 0o644))

	s, err := LoadScenario(path)
	require.NoError(t, err)
	_, err = s.BuildConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}
