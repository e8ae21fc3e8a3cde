package engine

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Fallback message formats used when a config leaves a message empty.
const (
	defaultWelcome  = "Join the tiles to reach 2048!"
	defaultMoved    = "Moved %s"
	defaultRejected = "Can't move %s"
	defaultGameOver = "Game over! Final score: %d"
)

// ValidateGameConfig validates a game configuration for correctness and playability
func ValidateGameConfig(config *GameConfig) error {
	if config == nil {
		return fmt.Errorf("%w: config is nil", ErrInvalidConfig)
	}

	// Validate required fields
	if config.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidConfig)
	}
	if config.Description == "" {
		return fmt.Errorf("%w: description is required", ErrInvalidConfig)
	}

	// Validate grid size
	if config.GridSize < MinGridSize || config.GridSize > MaxGridSize {
		return fmt.Errorf("%w: grid_size must be between %d and %d, got %d", ErrInvalidConfig, MinGridSize, MaxGridSize, config.GridSize)
	}

	// Validate spawn odds
	if config.FourProbability < 0 || config.FourProbability > 1 {
		return fmt.Errorf("%w: four_probability must be between 0 and 1, got %g", ErrInvalidConfig, config.FourProbability)
	}

	// Validate messages
	if config.Messages.Welcome == "" {
		return fmt.Errorf("%w: messages.welcome is required", ErrInvalidConfig)
	}
	if config.Messages.GameOver == "" {
		return fmt.Errorf("%w: messages.game_over is required", ErrInvalidConfig)
	}

	// Validate format strings
	if !strings.Contains(config.Messages.GameOver, "%d") {
		return fmt.Errorf("%w: messages.game_over must contain %%d for score", ErrInvalidConfig)
	}
	if config.Messages.Moved != "" && !strings.Contains(config.Messages.Moved, "%s") {
		return fmt.Errorf("%w: messages.moved must contain %%s for direction", ErrInvalidConfig)
	}
	if config.Messages.Rejected != "" && !strings.Contains(config.Messages.Rejected, "%s") {
		return fmt.Errorf("%w: messages.rejected must contain %%s for direction", ErrInvalidConfig)
	}

	return nil
}

// DefaultConfig returns a valid configuration for a size x size board.
func DefaultConfig(size int) *GameConfig {
	config := &GameConfig{
		Name:            "classic",
		Description:     fmt.Sprintf("Classic %dx%d tile merging", size, size),
		GridSize:        size,
		FourProbability: DefaultFourProbability,
	}
	config.Messages.Welcome = defaultWelcome
	config.Messages.Moved = defaultMoved
	config.Messages.Rejected = defaultRejected
	config.Messages.GameOver = defaultGameOver
	return config
}

// LoadGameConfig loads a game configuration from a JSON file
func LoadGameConfig(filename string) (*GameConfig, error) {
	// Support CONFIG_DIR environment variable for alternative config directory
	configPath := filename
	if configDir := os.Getenv("CONFIG_DIR"); configDir != "" {
		// If filename starts with "configs/", replace with CONFIG_DIR
		if strings.HasPrefix(filename, "configs/") {
			configPath = filepath.Join(configDir, strings.TrimPrefix(filename, "configs/"))
		}
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	var config GameConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, err
	}

	// Validate the loaded configuration
	if err := ValidateGameConfig(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// LoadConfigByName loads a game configuration by name from the configs directory
func LoadConfigByName(configName string) (*GameConfig, error) {
	// Add .json extension if not present
	if !strings.HasSuffix(configName, ".json") {
		configName = configName + ".json"
	}

	configPath := filepath.Join(configDirectory(), configName)

	// Check if config file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: '%s'", ErrConfigNotFound, configName)
	}

	config, err := LoadGameConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("invalid config '%s': %w", configName, err)
	}

	return config, nil
}

// configDirectory returns CONFIG_DIR when set, otherwise "configs".
func configDirectory() string {
	if dir := os.Getenv("CONFIG_DIR"); dir != "" {
		return dir
	}
	return "configs"
}

func formatMessage(format, fallback string, arg any) string {
	if format == "" {
		format = fallback
	}
	return fmt.Sprintf(format, arg)
}
