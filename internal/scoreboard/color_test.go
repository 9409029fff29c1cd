package scoreboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeHexColor_Valid(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"#ff55ff", "#ff55ff"},
		{"#FF55FF", "#ff55ff"},
		{"#f5f", "#ff55ff"},
		{"#F5F", "#ff55ff"},
		{"#ABC", "#aabbcc"},
		{"#000000", "#000000"},
		{"#ffffff", "#ffffff"},
		{"  #ff55ff  ", "#ff55ff"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := NormalizeHexColor(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeHexColor_Invalid(t *testing.T) {
	tests := []string{
		"red",
		"ff55ff",
		"#ff",
		"#ff55ff00",
		"#gghhii",
		"#ff55ff;",
		"rgb(255,0,0)",
		"#ff55ff url(evil)",
	}

	for _, input := range tests {
		t.Run(input, func(t *testing.T) {
			_, err := NormalizeHexColor(input)
			assert.Error(t, err)
		})
	}
}

func TestNormalizeHexColor_Empty(t *testing.T) {
	_, err := NormalizeHexColor("")
	assert.ErrorIs(t, err, ErrEmptyColor)

	_, err = NormalizeHexColor("   ")
	assert.ErrorIs(t, err, ErrEmptyColor)
}
