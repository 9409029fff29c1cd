// Package initdata generates and loads the tournament configuration
// file served to board clients as init_data.json. The file carries the
// selectable innings and team names for the operation panel dropdowns.
package initdata

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/CodeforSusono/baseball-broadcast-board/internal/scoreboard"
)

const (
	FileName   = "init_data.json"
	backupName = "init_data.json.bak"

	// PreGameMarker and PostGameMarker bracket the inning numbers in
	// the inning dropdown.
	PreGameMarker  = "試合前"
	PostGameMarker = "試合終了"

	// blankTeamItem is the full-width space sentinel the panel shows
	// for "no team selected".
	blankTeamItem = "　"
)

// Document is the generated configuration as written to disk. GameArray
// mixes the marker strings with inning numbers, matching what the board
// dropdowns consume directly.
type Document struct {
	GameTitle  string   `json:"game_title"`
	TeamTop    string   `json:"team_top"`
	TeamBottom string   `json:"team_bottom"`
	GameArray  []any    `json:"game_array"`
	TeamItems  []string `json:"team_items"`
	LastInning int      `json:"last_inning"`
	BoardColor string   `json:"board_color,omitempty"`
}

// Input is the operator-facing shape, read from a YAML file or
// assembled from CLI flags.
type Input struct {
	GameTitle  string   `yaml:"game_title"`
	LastInning int      `yaml:"last_inning"`
	TeamNames  []string `yaml:"team_names"`
	BoardColor string   `yaml:"board_color"`
}

// Generate builds a Document from operator input. The first two teams
// become the defaults for the top and bottom halves.
func Generate(in Input) (*Document, error) {
	teams := make([]string, 0, len(in.TeamNames))
	for _, name := range in.TeamNames {
		if trimmed := strings.TrimSpace(name); trimmed != "" {
			teams = append(teams, trimmed)
		}
	}
	if len(teams) < 2 {
		return nil, fmt.Errorf("at least 2 teams are required, got %d", len(teams))
	}

	if in.GameTitle == "" {
		return nil, fmt.Errorf("game title is required")
	}

	lastInning := in.LastInning
	if lastInning == 0 {
		lastInning = 9
	}
	if lastInning < 1 || lastInning > 9 {
		return nil, fmt.Errorf("last inning must be between 1 and 9, got %d", lastInning)
	}

	doc := &Document{
		GameTitle:  in.GameTitle,
		TeamTop:    teams[0],
		TeamBottom: teams[1],
		GameArray:  gameArray(lastInning),
		TeamItems:  append([]string{blankTeamItem}, teams...),
		LastInning: lastInning,
	}

	if in.BoardColor != "" {
		color, err := scoreboard.NormalizeHexColor(in.BoardColor)
		if err != nil {
			return nil, fmt.Errorf("invalid board color: %w", err)
		}
		doc.BoardColor = color
	}

	return doc, nil
}

func gameArray(lastInning int) []any {
	arr := make([]any, 0, lastInning+2)
	arr = append(arr, PreGameMarker)
	for i := 1; i <= lastInning; i++ {
		arr = append(arr, i)
	}
	arr = append(arr, PostGameMarker)
	return arr
}

// LoadYAML reads operator input from a YAML file.
func LoadYAML(path string) (*Input, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	raw, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var in Input
	if err := yaml.Unmarshal(raw, &in); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	if in.GameTitle == "" {
		return nil, fmt.Errorf("game_title is not set in %s", path)
	}
	if len(in.TeamNames) == 0 {
		return nil, fmt.Errorf("team_names is not set in %s", path)
	}

	return &in, nil
}

// Load reads an existing Document, for interactive-mode defaults.
// A missing or unreadable file yields nil.
func Load(dir string) *Document {
	raw, err := os.ReadFile(filepath.Join(dir, FileName))
	if err != nil {
		return nil
	}
	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil
	}
	return &doc
}

// Save writes the Document into dir, backing up any existing file
// first so a bad generation run never destroys the previous config.
func Save(dir string, doc *Document) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create config dir: %w", err)
	}

	target := filepath.Join(dir, FileName)
	if existing, err := os.ReadFile(target); err == nil {
		backup := filepath.Join(dir, backupName)
		if err := os.WriteFile(backup, existing, 0o644); err != nil {
			return fmt.Errorf("failed to back up existing config: %w", err)
		}
	}

	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.WriteFile(target, raw, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", target, err)
	}
	return nil
}
