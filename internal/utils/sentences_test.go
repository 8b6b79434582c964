package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitSentences(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{
			name:     "single sentence",
			input:    "Hello world.",
			expected: []string{"Hello world."},
		},
		{
			name:     "mixed terminators",
			input:    "It rained. Did it stop? Yes!",
			expected: []string{"It rained.", "Did it stop?", "Yes!"},
		},
		{
			name:     "repeated terminators stay with the sentence",
			input:    "Wait... What?!",
			expected: []string{"Wait...", "What?!"},
		},
		{
			name:     "no terminator returns whole text",
			input:    "just a thought",
			expected: []string{"just a thought"},
		},
		{
			name:     "trailing fragment is dropped",
			input:    "Done. and then",
			expected: []string{"Done."},
		},
		{
			name:     "empty text",
			input:    "",
			expected: []string{""},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SplitSentences(tt.input))
		})
	}
}
