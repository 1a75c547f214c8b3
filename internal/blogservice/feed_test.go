package blogservice

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseCursor(t *testing.T) {
	tests := []struct {
		name   string
		cursor string
		want   *int64
	}{
		{name: "empty", cursor: "", want: nil},
		{name: "valid", cursor: "42", want: ptrInt64(42)},
		{name: "not a number", cursor: "abc", want: nil},
		{name: "negative", cursor: "-1", want: nil},
		{name: "zero", cursor: "0", want: nil},
		{name: "trailing garbage", cursor: "10x", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseCursor(tt.cursor)
			if tt.want == nil {
				assert.Nil(t, got)
			} else {
				assert.NotNil(t, got)
				assert.Equal(t, *tt.want, *got)
			}
		})
	}
}

func TestClampPageSize(t *testing.T) {
	assert.Equal(t, DefaultPageSize, clampPageSize(0))
	assert.Equal(t, DefaultPageSize, clampPageSize(-5))
	assert.Equal(t, 2, clampPageSize(2))
	assert.Equal(t, MaxPageSize, clampPageSize(101))
	assert.Equal(t, MaxPageSize, clampPageSize(MaxPageSize))
}

func ptrInt64(v int64) *int64 {
	return &v
}
