package scoreboard

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Only standard hex color forms are accepted so a color value can never
// smuggle markup or CSS into the board.
var hexColorPattern = regexp.MustCompile(`^#([0-9a-f]{6}|[0-9a-f]{3})$`)

var ErrEmptyColor = errors.New("color must be a non-empty string")

// NormalizeHexColor validates a display background color and returns the
// canonical lowercase 6-digit form. 3-digit shorthand (#rgb) expands to
// #rrggbb.
func NormalizeHexColor(color string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(color))
	if normalized == "" {
		return "", ErrEmptyColor
	}

	if !hexColorPattern.MatchString(normalized) {
		return "", fmt.Errorf("color must be in hex format (#rrggbb or #rgb), got %q", color)
	}

	if len(normalized) == 4 {
		r, g, b := normalized[1], normalized[2], normalized[3]
		normalized = fmt.Sprintf("#%c%c%c%c%c%c", r, r, g, g, b, b)
	}

	return normalized, nil
}
