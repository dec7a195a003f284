package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name      string
		page      string
		limit     string
		wantPage  int
		wantLimit int
	}{
		{"defaults when absent", "", "", 1, DefaultLimit},
		{"explicit values", "3", "25", 3, 25},
		{"non-numeric falls back", "abc", "xyz", 1, DefaultLimit},
		{"zero page falls back", "0", "10", 1, 10},
		{"negative limit falls back", "2", "-5", 2, DefaultLimit},
		{"limit clamped to max", "1", "5000", 1, MaxLimit},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Parse(tt.page, tt.limit)
			assert.Equal(t, tt.wantPage, p.Page)
			assert.Equal(t, tt.wantLimit, p.Limit)
		})
	}
}

func TestOffset(t *testing.T) {
	assert.Equal(t, 0, Params{Page: 1, Limit: 10}.Offset())
	assert.Equal(t, 40, Params{Page: 5, Limit: 10}.Offset())
}

func TestTotalPages(t *testing.T) {
	tests := []struct {
		name  string
		limit int
		total int64
		want  int
	}{
		{"empty set", 10, 0, 0},
		{"exact multiple", 10, 30, 3},
		{"partial last page", 10, 31, 4},
		{"single item", 10, 1, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Params{Page: 1, Limit: tt.limit}
			assert.Equal(t, tt.want, p.TotalPages(tt.total))
		})
	}
}
