// Command validate checks the game configuration JSON files in a directory
// (../configs by default). For each file it checks:
//   - JSON structure, with unknown fields rejected
//   - the engine's own validation (name, grid size, spawn odds, messages)
//   - that every message renders without leftover or missing format verbs
//   - that the file name is usable as a config ID
//   - that a seeded greedy game on the config plays through to a locked board
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/wricardo/mcp-training/tilegame/game/agent"
	"github.com/wricardo/mcp-training/tilegame/game/engine"
	"github.com/wricardo/mcp-training/tilegame/internal/randutil"
)

const (
	smokeSeed     = 1
	smokeMaxMoves = 100000
)

var configIDPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*$`)

// ValidationResult captures the outcome of validating a single file.
// Notes starting with ✓ are informational; everything else is an error.
type ValidationResult struct {
	File   string
	Valid  bool
	Errors []string
}

func (r *ValidationResult) fail(format string, args ...any) {
	r.Valid = false
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r *ValidationResult) note(format string, args ...any) {
	r.Errors = append(r.Errors, "✓ "+fmt.Sprintf(format, args...))
}

// validateConfig loads and validates a single configuration JSON file.
func validateConfig(filePath string) ValidationResult {
	result := ValidationResult{
		File:   filepath.Base(filePath),
		Valid:  true,
		Errors: []string{},
	}

	id := strings.TrimSuffix(result.File, ".json")
	if !configIDPattern.MatchString(id) {
		result.fail("File name %q is not a valid config ID (lowercase letters, digits, _ and -)", id)
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		result.fail("Failed to read file: %v", err)
		return result
	}

	var config engine.GameConfig
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&config); err != nil {
		result.fail("Invalid JSON: %v", err)
		return result
	}

	if err := engine.ValidateGameConfig(&config); err != nil {
		result.fail("%v", err)
		return result
	}
	result.note("Grid: %dx%d, four probability %.2f", config.GridSize, config.GridSize, config.FourProbability)

	checkMessages(&result, &config)
	if !result.Valid {
		return result
	}

	smokePlay(&result, &config)
	return result
}

// checkMessages renders each message with a sample argument and flags any
// that leave fmt error markers behind.
func checkMessages(result *ValidationResult, config *engine.GameConfig) {
	samples := []struct {
		key    string
		format string
		arg    any
	}{
		{"welcome", config.Messages.Welcome, nil},
		{"moved", config.Messages.Moved, "left"},
		{"rejected", config.Messages.Rejected, "left"},
		{"game_over", config.Messages.GameOver, 2048},
	}

	for _, s := range samples {
		if s.format == "" {
			continue
		}
		var rendered string
		if s.arg == nil {
			rendered = s.format
			if strings.Contains(s.format, "%") && !strings.Contains(s.format, "%%") {
				result.fail("messages.%s takes no arguments but contains a format verb", s.key)
				continue
			}
		} else {
			rendered = fmt.Sprintf(s.format, s.arg)
		}
		if strings.Contains(rendered, "%!") {
			result.fail("messages.%s renders badly: %q", s.key, rendered)
		}
	}
	if result.Valid {
		result.note("Messages render cleanly")
	}
}

// smokePlay runs one seeded greedy game to completion.
func smokePlay(result *ValidationResult, config *engine.GameConfig) {
	game, err := engine.NewEngine(config, engine.WithRand(randutil.New(smokeSeed)))
	if err != nil {
		result.fail("Failed to start a game: %v", err)
		return
	}

	res := agent.Play(context.Background(), game, agent.NewGreedyAgent(), agent.PlayOptions{MaxMoves: smokeMaxMoves})
	if !res.GameOver {
		result.fail("Smoke game stopped without a locked board (%s after %d moves)", res.StopReason, res.Moves)
		return
	}
	result.note("Smoke game: score %d, max tile %d in %d moves", res.FinalScore, res.MaxTile, res.Moves)
}

var cli struct {
	Dir string `arg:"" optional:"" default:"../configs" help:"Directory containing configuration files"`
}

// main validates every *.json file in the directory, printing a concise
// report and exiting with non-zero status if any are invalid.
func main() {
	kong.Parse(&cli,
		kong.Name("validate"),
		kong.Description("Validate tile game configuration files"),
		kong.UsageOnError(),
	)

	files, err := filepath.Glob(filepath.Join(cli.Dir, "*.json"))
	if err != nil {
		fmt.Printf("Error finding config files: %v\n", err)
		os.Exit(1)
	}
	if len(files) == 0 {
		fmt.Printf("No configuration files found in %s\n", cli.Dir)
		os.Exit(1)
	}

	allValid := true
	for _, file := range files {
		result := validateConfig(file)

		fmt.Printf("\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Println("✅ VALID")
			for _, info := range result.Errors {
				fmt.Println("  " + info)
			}
		} else {
			fmt.Println("❌ INVALID")
			allValid = false
			for _, err := range result.Errors {
				if !strings.HasPrefix(err, "✓") {
					fmt.Println("  ❌ " + err)
				}
			}
		}
	}

	fmt.Printf("\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Println("✅ All configurations are valid!")
	} else {
		fmt.Println("❌ Some configurations have errors")
		os.Exit(1)
	}
}
