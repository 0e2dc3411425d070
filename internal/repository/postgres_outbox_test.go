package repository

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestTruncateUTF8(t *testing.T) {
	tests := []struct {
		name  string
		input string
		limit int
		want  string
	}{
		{name: "should keep short strings", input: "broker down", limit: 500, want: "broker down"},
		{name: "should cut ascii at the limit", input: "abcdef", limit: 4, want: "abcd"},
		{name: "should back off to the start of a two byte rune", input: "aé", limit: 2, want: "a"},
		{name: "should back off to the start of a four byte rune", input: "ab🎬", limit: 4, want: "ab"},
		{name: "should keep a rune that ends at the limit", input: "ééé", limit: 4, want: "éé"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := truncateUTF8(tt.input, tt.limit)

			assert.Equal(t, tt.want, got)
			assert.True(t, utf8.ValidString(got))
		})
	}
}

func TestTruncateUTF8OutboxLimit(t *testing.T) {
	got := truncateUTF8(strings.Repeat("€", 200), maxOutboxErrorLength)

	assert.True(t, utf8.ValidString(got))
	assert.LessOrEqual(t, len(got), maxOutboxErrorLength)
	assert.Equal(t, strings.Repeat("€", 166), got)
}
