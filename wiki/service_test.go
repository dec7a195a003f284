package wiki

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPublishedListFilter(t *testing.T) {
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
			wantClause: "w.status = 'published' AND w.visibility = 'public'",
			wantArgs:   nil,
		},
		{
			name:       "tag only",
			query:      ListQuery{Tag: "antiquity"},
			firstArg:   1,
			wantClause: "w.status = 'published' AND w.visibility = 'public' AND $1 = ANY(w.tags)",
			wantArgs:   []interface{}{"antiquity"},
		},
		{
			name:       "category and tag keep distinct placeholders",
			query:      ListQuery{Category: "history", Tag: "antiquity"},
			firstArg:   1,
			wantClause: "w.status = 'published' AND w.visibility = 'public' AND $1 = ANY(w.categories) AND $2 = ANY(w.tags)",
			wantArgs:   []interface{}{"history", "antiquity"},
		},
		{
			name:       "all filters shifted past a reserved parameter",
			query:      ListQuery{Category: "history", Tag: "antiquity", Search: "alexandria"},
			firstArg:   2,
			wantClause: "w.status = 'published' AND w.visibility = 'public' AND $2 = ANY(w.categories) AND $3 = ANY(w.tags) AND (w.title ILIKE $4 OR w.content ILIKE $4)",
			wantArgs:   []interface{}{"history", "antiquity", "%alexandria%"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			clause, args := publishedListFilter(tc.query, tc.firstArg)
			assert.Equal(t, tc.wantClause, clause)
			assert.Equal(t, tc.wantArgs, args)
		})
	}
}

func TestPublishedListFilterCountNumbering(t *testing.T) {
	q := ListQuery{Category: "science", Tag: "physics"}

	clause, args := publishedListFilter(q, 1)
	assert.Equal(t, "w.status = 'published' AND w.visibility = 'public' AND $1 = ANY(w.categories) AND $2 = ANY(w.tags)", clause)
	assert.Len(t, args, 2)
}
