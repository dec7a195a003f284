package wiki

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNeedsRevision(t *testing.T) {
	current := "original text"
	changed := "edited text"
	same := "original text"

	tests := []struct {
		name       string
		newContent *string
		want       bool
	}{
		{"metadata-only update", nil, false},
		{"identical content", &same, false},
		{"changed content", &changed, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, needsRevision(current, tt.newContent))
		})
	}
}

func TestRevisionDescription(t *testing.T) {
	custom := "Fixed a typo"
	empty := ""

	assert.Equal(t, "Fixed a typo", revisionDescription(&custom))
	assert.Equal(t, defaultChangeDescription, revisionDescription(&empty))
	assert.Equal(t, defaultChangeDescription, revisionDescription(nil))
}

func TestSplitCSV(t *testing.T) {
	assert.Equal(t, []string{"history", "science"}, splitCSV("history, science"))
	assert.Equal(t, []string{"one"}, splitCSV("one,,  ,"))
	assert.Empty(t, splitCSV(""))
}

func TestUpdateArticleRequestEmpty(t *testing.T) {
	assert.True(t, (&UpdateArticleRequest{}).Empty())

	content := "new content"
	assert.False(t, (&UpdateArticleRequest{Content: &content}).Empty())

	// A bare change description with nothing to change counts as empty.
	desc := "no-op"
	assert.True(t, (&UpdateArticleRequest{ChangeDescription: &desc}).Empty())
}
