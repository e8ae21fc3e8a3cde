package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validConfig = `{
	"name": "Test Config",
	"description": "Test configuration",
	"grid_size": 3,
	"four_probability": 0.1,
	"messages": {
		"welcome": "Welcome!",
		"moved": "Moved %s",
		"rejected": "Can't move %s",
		"game_over": "Game over with %d points"
	}
}`

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func errorsOnly(result ValidationResult) []string {
	var errs []string
	for _, e := range result.Errors {
		if !strings.HasPrefix(e, "✓") {
			errs = append(errs, e)
		}
	}
	return errs
}

func TestValidateConfig_ValidConfig(t *testing.T) {
	result := validateConfig(writeConfig(t, "test_config.json", validConfig))

	assert.True(t, result.Valid, "errors: %v", result.Errors)
	assert.Equal(t, "test_config.json", result.File)
	assert.Empty(t, errorsOnly(result))

	joined := strings.Join(result.Errors, "\n")
	assert.Contains(t, joined, "✓ Grid: 3x3")
	assert.Contains(t, joined, "✓ Messages render cleanly")
	assert.Contains(t, joined, "✓ Smoke game: score")
}

func TestValidateConfig_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		want    string
	}{
		{
			name:    "malformed JSON",
			file:    "broken.json",
			content: `{"name": "x",`,
			want:    "Invalid JSON",
		},
		{
			name:    "unknown field",
			file:    "legacy.json",
			content: strings.Replace(validConfig, `"grid_size": 3,`, `"grid_size": 3, "obstacles": 2,`, 1),
			want:    "Invalid JSON",
		},
		{
			name:    "grid too small",
			file:    "tiny.json",
			content: strings.Replace(validConfig, `"grid_size": 3`, `"grid_size": 1`, 1),
			want:    "grid_size must be between",
		},
		{
			name:    "spawn odds out of range",
			file:    "odds.json",
			content: strings.Replace(validConfig, `"four_probability": 0.1`, `"four_probability": 1.5`, 1),
			want:    "four_probability",
		},
		{
			name:    "game over without score",
			file:    "noscore.json",
			content: strings.Replace(validConfig, "Game over with %d points", "Game over", 1),
			want:    "messages.game_over",
		},
		{
			name:    "wrong verb",
			file:    "verb.json",
			content: strings.Replace(validConfig, "Game over with %d points", "Game over with %d points in %s", 1),
			want:    "messages.game_over renders badly",
		},
		{
			name:    "welcome with verb",
			file:    "welcome.json",
			content: strings.Replace(validConfig, "Welcome!", "Welcome %s!", 1),
			want:    "messages.welcome takes no arguments",
		},
		{
			name:    "bad file name",
			file:    "Big Board.json",
			content: validConfig,
			want:    "not a valid config ID",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := validateConfig(writeConfig(t, tt.file, tt.content))

			assert.False(t, result.Valid)
			errs := errorsOnly(result)
			require.NotEmpty(t, errs)
			assert.Contains(t, strings.Join(errs, "\n"), tt.want)
		})
	}
}

func TestValidateConfig_MissingFile(t *testing.T) {
	result := validateConfig(filepath.Join(t.TempDir(), "missing.json"))

	assert.False(t, result.Valid)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "Failed to read file")
}

func TestValidateConfig_ShippedConfigs(t *testing.T) {
	files, err := filepath.Glob(filepath.Join("..", "configs", "*.json"))
	require.NoError(t, err)
	require.NotEmpty(t, files)

	for _, file := range files {
		t.Run(filepath.Base(file), func(t *testing.T) {
			result := validateConfig(file)
			assert.True(t, result.Valid, "errors: %v", errorsOnly(result))
		})
	}
}
