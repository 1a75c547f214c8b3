package blogservice

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeText(t *testing.T) {
	testCases := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "no script tag",
			input: "Sunrise over Bagan",
			want:  "Sunrise over Bagan",
		},
		{
			name:  "script tag",
			input: "<script>alert('hi');</script>",
			want:  "",
		},
		{
			name: "multiple script tags",
			input: `Here is some text.
				<script>alert('hi');</script>
				More text.
				<SCRIPT SRC="evil.js"></SCRIPT>`,
			want: "Here is some text.\n\t\t\t\t\n\t\t\t\tMore text.\n\t\t\t\t",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, sanitizeText(tc.input))
		})
	}
}

func TestSanitizeTextPtr(t *testing.T) {
	assert.Nil(t, sanitizeTextPtr(nil))

	dirty := "before <script>bad()</script> after"
	got := sanitizeTextPtr(&dirty)
	assert.Equal(t, "before  after", *got)
}
