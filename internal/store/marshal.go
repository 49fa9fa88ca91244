package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/roach88/sprintchef/internal/config"
	"github.com/roach88/sprintchef/internal/state"
)

// marshalJSON converts v to JSON TEXT for storage.
// HTML escaping is disabled so messages stay readable in the database.
func marshalJSON(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	// Encoder adds a trailing newline, remove it
	return strings.TrimSpace(buf.String()), nil
}

// marshalSnapshot converts a state snapshot to JSON TEXT.
func marshalSnapshot(snap state.Snapshot) (string, error) {
	data, err := marshalJSON(snap)
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}
	return data, nil
}

// unmarshalSnapshot parses JSON TEXT to a state snapshot.
func unmarshalSnapshot(data string) (state.Snapshot, error) {
	var snap state.Snapshot
	if err := json.Unmarshal([]byte(data), &snap); err != nil {
		return state.Snapshot{}, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	return snap, nil
}

// marshalConfig converts a balance config to JSON TEXT.
func marshalConfig(cfg config.Config) (string, error) {
	data, err := marshalJSON(cfg)
	if err != nil {
		return "", fmt.Errorf("marshal config: %w", err)
	}
	return data, nil
}

// unmarshalConfig parses JSON TEXT to a balance config.
func unmarshalConfig(data string) (config.Config, error) {
	var cfg config.Config
	if err := json.Unmarshal([]byte(data), &cfg); err != nil {
		return config.Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return cfg, nil
}

// marshalPayload converts an event payload to JSON TEXT.
// A nil payload is stored as "null".
func marshalPayload(payload any) (string, error) {
	data, err := marshalJSON(payload)
	if err != nil {
		return "", fmt.Errorf("marshal payload: %w", err)
	}
	return data, nil
}
