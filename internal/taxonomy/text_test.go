package taxonomy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormKey(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "simple", input: "Groceries", want: "groceries"},
		{name: "trims", input: "  Dining Out  ", want: "dining out"},
		{name: "collapses whitespace", input: "Dining \t  Out", want: "dining out"},
		{name: "empty", input: "", want: ""},
		{name: "whitespace only", input: "   ", want: ""},
		{name: "mixed case", input: "GrOcErIeS", want: "groceries"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormKey(tt.input))
		})
	}
}

func TestTitleCase(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "single word", input: "groceries", want: "Groceries"},
		{name: "two words", input: "dining out", want: "Dining Out"},
		{name: "standalone a stays lowercase", input: "once a month", want: "Once a Month"},
		{name: "a as first word capitalized", input: "a new hope", want: "A New Hope"},
		{name: "already cased", input: "Dining Out", want: "Dining Out"},
		{name: "shouty input", input: "DINING OUT", want: "Dining Out"},
		{name: "empty", input: "", want: ""},
		{name: "preserves inner spacing", input: "dining  out", want: "Dining  Out"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TitleCase(tt.input))
		})
	}
}
