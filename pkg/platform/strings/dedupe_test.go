package strings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDedupeAndTrim(t *testing.T) {
	tests := []struct {
		name  string
		input []string
		want  []string
	}{
		{name: "nil stays nil", input: nil, want: nil},
		{name: "empty stays empty", input: []string{}, want: []string{}},
		{
			name:  "trims and keeps first-seen order",
			input: []string{"  b@x.com", "a@x.com  ", "b@x.com"},
			want:  []string{"b@x.com", "a@x.com"},
		},
		{
			name:  "drops blanks",
			input: []string{"", "   ", "a@x.com", "\t"},
			want:  []string{"a@x.com"},
		},
		{
			name:  "case variants are distinct",
			input: []string{"A@x.com", "a@x.com"},
			want:  []string{"A@x.com", "a@x.com"},
		},
		{
			name:  "all blank",
			input: []string{" ", ""},
			want:  []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DedupeAndTrim(tt.input))
		})
	}
}
