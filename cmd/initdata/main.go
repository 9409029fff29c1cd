// Command initdata generates the tournament configuration served to
// board clients as init_data.json. It supports an interactive prompt,
// a YAML input file, or plain flags.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/CodeforSusono/baseball-broadcast-board/internal/initdata"
)

func main() {
	var (
		outDir  = flag.String("out", ".", "Directory to write init_data.json into")
		title   = flag.String("title", "", "Tournament title")
		innings = flag.Int("innings", 9, "Last inning (1-9)")
		teams   = flag.String("teams", "", "Comma-separated team names (at least 2)")
		color   = flag.String("color", "", "Board color as hex, e.g. #1a2b3c (optional)")
	)
	flag.StringVar(title, "t", "", "Shorthand for -title")
	flag.IntVar(innings, "i", 9, "Shorthand for -innings")
	flag.Parse()

	var (
		input *initdata.Input
		err   error
	)
	switch {
	case flag.NArg() == 1 && isYAMLFile(flag.Arg(0)):
		input, err = initdata.LoadYAML(flag.Arg(0))
		if err != nil {
			log.Fatalf("Failed to load YAML config: %v", err)
		}
	case *title != "" || *teams != "":
		input = &initdata.Input{
			GameTitle:  *title,
			LastInning: *innings,
			TeamNames:  splitTeams(*teams),
			BoardColor: *color,
		}
	default:
		input, err = interactiveInput(*outDir)
		if err != nil {
			log.Fatalf("Failed to read input: %v", err)
		}
	}

	doc, err := initdata.Generate(*input)
	if err != nil {
		log.Fatalf("Failed to generate config: %v", err)
	}

	if err := initdata.Save(*outDir, doc); err != nil {
		log.Fatalf("Failed to save config: %v", err)
	}

	fmt.Printf("Top team:    %s\n", doc.TeamTop)
	fmt.Printf("Bottom team: %s\n", doc.TeamBottom)
	fmt.Printf("Wrote %s\n", initdata.FileName)
}

func isYAMLFile(path string) bool {
	return strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml")
}

func splitTeams(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	teams := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			teams = append(teams, trimmed)
		}
	}
	return teams
}

// interactiveInput prompts for each field, offering the values from an
// existing init_data.json as defaults.
func interactiveInput(dir string) (*initdata.Input, error) {
	reader := bufio.NewReader(os.Stdin)

	defaultTitle := "大会名"
	defaultInnings := 9
	if existing := initdata.Load(dir); existing != nil {
		if existing.GameTitle != "" {
			defaultTitle = existing.GameTitle
		}
		if existing.LastInning != 0 {
			defaultInnings = existing.LastInning
		}
	}

	fmt.Println("Baseball scoreboard configuration")
	fmt.Println("=================================")

	title, err := prompt(reader, fmt.Sprintf("Tournament title [%s]: ", defaultTitle))
	if err != nil {
		return nil, err
	}
	if title == "" {
		title = defaultTitle
	}

	inningsText, err := prompt(reader, fmt.Sprintf("Last inning [%d]: ", defaultInnings))
	if err != nil {
		return nil, err
	}
	innings := defaultInnings
	if inningsText != "" {
		innings, err = strconv.Atoi(inningsText)
		if err != nil {
			return nil, fmt.Errorf("last inning must be a number: %w", err)
		}
	}

	fmt.Println("Team names (empty line to finish):")
	var teams []string
	for i := 1; ; i++ {
		name, err := prompt(reader, fmt.Sprintf("  Team %d: ", i))
		if err != nil {
			return nil, err
		}
		if name == "" {
			break
		}
		teams = append(teams, name)
	}

	return &initdata.Input{
		GameTitle:  title,
		LastInning: innings,
		TeamNames:  teams,
	}, nil
}

func prompt(reader *bufio.Reader, label string) (string, error) {
	fmt.Print(label)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
