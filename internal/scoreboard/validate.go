package scoreboard

import (
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"
)

type fieldKind int

const (
	kindString fieldKind = iota
	kindNumber
	kindBool
)

type fieldRule struct {
	kind      fieldKind
	maxLength int
	min       float64
	max       float64
	assign    func(*GameState, string, float64, bool)
}

// schema mirrors the update payload accepted from the operation client.
// Every field is required; unknown fields are dropped, not rejected.
var schema = map[string]fieldRule{
	"game_title": {kind: kindString, maxLength: 100,
		assign: func(s *GameState, v string, _ float64, _ bool) { s.GameTitle = v }},
	"team_top": {kind: kindString, maxLength: 50,
		assign: func(s *GameState, v string, _ float64, _ bool) { s.TeamTop = v }},
	"team_bottom": {kind: kindString, maxLength: 50,
		assign: func(s *GameState, v string, _ float64, _ bool) { s.TeamBottom = v }},
	"game_inning": {kind: kindNumber, min: 0, max: 99,
		assign: func(s *GameState, _ string, v float64, _ bool) { s.GameInning = int(math.Round(v)) }},
	"top": {kind: kindBool,
		assign: func(s *GameState, _ string, _ float64, v bool) { s.Top = v }},
	"first_base": {kind: kindBool,
		assign: func(s *GameState, _ string, _ float64, v bool) { s.FirstBase = v }},
	"second_base": {kind: kindBool,
		assign: func(s *GameState, _ string, _ float64, v bool) { s.SecondBase = v }},
	"third_base": {kind: kindBool,
		assign: func(s *GameState, _ string, _ float64, v bool) { s.ThirdBase = v }},
	"ball_cnt": {kind: kindNumber, min: 0, max: 3,
		assign: func(s *GameState, _ string, v float64, _ bool) { s.BallCount = int(math.Round(v)) }},
	"strike_cnt": {kind: kindNumber, min: 0, max: 2,
		assign: func(s *GameState, _ string, v float64, _ bool) { s.StrikeCount = int(math.Round(v)) }},
	"out_cnt": {kind: kindNumber, min: 0, max: 2,
		assign: func(s *GameState, _ string, v float64, _ bool) { s.OutCount = int(math.Round(v)) }},
	"score_top": {kind: kindNumber, min: 0, max: 999,
		assign: func(s *GameState, _ string, v float64, _ bool) { s.ScoreTop = int(math.Round(v)) }},
	"score_bottom": {kind: kindNumber, min: 0, max: 999,
		assign: func(s *GameState, _ string, v float64, _ bool) { s.ScoreBottom = int(math.Round(v)) }},
	"last_inning": {kind: kindNumber, min: 1, max: 99,
		assign: func(s *GameState, _ string, v float64, _ bool) { s.LastInning = int(math.Round(v)) }},
}

// ValidationError reports the first field that failed schema validation.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("Field '%s' %s", e.Field, e.Reason)
}

// toFloat accepts the numeric types a decoded JSON payload (or a test
// fixture) can carry.
func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	}
	return 0, false
}

// ValidateUpdate checks a decoded update payload against the scoreboard
// schema and returns a sanitized snapshot. String fields are stripped of
// markup, numbers are rounded to integers. Unknown fields are logged and
// dropped for forward compatibility.
func ValidateUpdate(payload map[string]any) (*GameState, error) {
	if payload == nil {
		return nil, &ValidationError{Reason: "Game data must be a non-null object"}
	}

	state := &GameState{}

	// Deterministic field order keeps the "first error" stable for callers.
	fields := make([]string, 0, len(schema))
	for field := range schema {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	for _, field := range fields {
		rule := schema[field]
		value, ok := payload[field]
		if !ok {
			value = nil
		}

		switch rule.kind {
		case kindString:
			str, ok := value.(string)
			if !ok {
				return nil, &ValidationError{Field: field, Reason: "must be a string"}
			}
			if rule.maxLength > 0 && len([]rune(str)) > rule.maxLength {
				return nil, &ValidationError{Field: field, Reason: fmt.Sprintf("exceeds maximum length of %d", rule.maxLength)}
			}
			rule.assign(state, SanitizeText(str), 0, false)

		case kindNumber:
			num, ok := toFloat(value)
			if !ok || math.IsNaN(num) || math.IsInf(num, 0) {
				return nil, &ValidationError{Field: field, Reason: "must be a finite number"}
			}
			if num < rule.min {
				return nil, &ValidationError{Field: field, Reason: fmt.Sprintf("must be at least %g", rule.min)}
			}
			if num > rule.max {
				return nil, &ValidationError{Field: field, Reason: fmt.Sprintf("must be at most %g", rule.max)}
			}
			rule.assign(state, "", num, false)

		case kindBool:
			b, ok := value.(bool)
			if !ok {
				return nil, &ValidationError{Field: field, Reason: "must be a boolean"}
			}
			rule.assign(state, "", 0, b)
		}
	}

	var unexpected []string
	for key := range payload {
		if _, ok := schema[key]; !ok {
			unexpected = append(unexpected, key)
		}
	}
	if len(unexpected) > 0 {
		sort.Strings(unexpected)
		slog.Debug("Ignoring unexpected update fields", "fields", strings.Join(unexpected, ","))
	}

	return state, nil
}
