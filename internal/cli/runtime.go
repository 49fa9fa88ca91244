package cli

import (
	"fmt"
	"os"

	"github.com/roach88/sprintchef/internal/config"
)

// loadConfig resolves the balance configuration: preset, then the --config
// file decoded over it, then SPRINTCHEF_* environment overrides.
func loadConfig(opts *RootOptions) (config.Config, error) {
	cfg, ok := config.Preset(opts.Preset)
	if !ok {
		return config.Config{}, fmt.Errorf("unknown preset %q", opts.Preset)
	}

	if opts.Config != "" {
		data, err := os.ReadFile(opts.Config)
		if err != nil {
			return config.Config{}, fmt.Errorf("read config file: %w", err)
		}
		cfg, err = config.Decode(data, cfg)
		if err != nil {
			return config.Config{}, fmt.Errorf("%s: %w", opts.Config, err)
		}
	}

	return config.FromEnv(cfg)
}

// configErrors renders validation errors as a CLI error detail list.
func configErrors(errs []config.ValidationError) []string {
	out := make([]string, len(errs))
	for i, e := range errs {
		out[i] = e.Error()
	}
	return out
}
