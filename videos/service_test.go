package videos

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPublicListFilter(t *testing.T) {
	tests := []struct {
		name       string
		query      ListQuery
		firstArg   int
		wantClause string
		wantArgs   []interface{}
	}{
		{
			name:       "no filters",
			query:      ListQuery{},
			firstArg:   1,
			wantClause: "v.status = 'public'",
			wantArgs:   nil,
		},
		{
			name:       "category only",
			query:      ListQuery{Category: "news"},
			firstArg:   1,
			wantClause: "v.status = 'public' AND v.category = $1",
			wantArgs:   []interface{}{"news"},
		},
		{
			name:       "search wraps the term in wildcards",
			query:      ListQuery{Search: "gopher"},
			firstArg:   1,
			wantClause: "v.status = 'public' AND (v.title ILIKE $1 OR v.description ILIKE $1)",
			wantArgs:   []interface{}{"%gopher%"},
		},
		{
			name:       "category and tag keep distinct placeholders",
			query:      ListQuery{Category: "news", Tag: "go"},
			firstArg:   1,
			wantClause: "v.status = 'public' AND v.category = $1 AND $2 = ANY(v.tags)",
			wantArgs:   []interface{}{"news", "go"},
		},
		{
			name:       "all filters shifted past a reserved parameter",
			query:      ListQuery{Category: "news", Tag: "go", Search: "gopher"},
			firstArg:   2,
			wantClause: "v.status = 'public' AND v.category = $2 AND $3 = ANY(v.tags) AND (v.title ILIKE $4 OR v.description ILIKE $4)",
			wantArgs:   []interface{}{"news", "go", "%gopher%"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			clause, args := publicListFilter(tc.query, tc.firstArg)
			assert.Equal(t, tc.wantClause, clause)
			assert.Equal(t, tc.wantArgs, args)
		})
	}
}

// The count statement reuses the filters but starts numbering at $1. With
// more than one filter set every bound value must keep its own placeholder.
func TestPublicListFilterCountNumbering(t *testing.T) {
	q := ListQuery{Category: "education", Tag: "history"}

	clause, args := publicListFilter(q, 1)
	assert.Equal(t, "v.status = 'public' AND v.category = $1 AND $2 = ANY(v.tags)", clause)
	assert.Len(t, args, 2)
	assert.NotContains(t, clause, "$1 = ANY")
}
