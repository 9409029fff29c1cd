package scoreboard

import (
	"regexp"
	"strings"
)

var (
	tagPattern    = regexp.MustCompile(`<[^>]*>`)
	entityPattern = regexp.MustCompile(`&[a-zA-Z0-9#]+;`)

	entityDecoder = strings.NewReplacer(
		"&lt;", "<",
		"&gt;", ">",
		"&quot;", `"`,
		"&#x27;", "'",
		"&#x2F;", "/",
	)
)

// SanitizeText strips markup from free-text fields before they are stored
// or broadcast. Entities are decoded before the second strip pass so an
// encoded script tag cannot survive a single round of tag removal.
// Idempotent: sanitizing already-sanitized text is a no-op.
func SanitizeText(input string) string {
	out := tagPattern.ReplaceAllString(input, "")
	out = entityDecoder.Replace(out)
	out = tagPattern.ReplaceAllString(out, "")
	out = entityPattern.ReplaceAllString(out, "")
	return strings.TrimSpace(out)
}
