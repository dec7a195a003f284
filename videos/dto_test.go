package videos

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidCategory(t *testing.T) {
	for _, c := range []string{"politics", "education", "entertainment", "news", "other"} {
		assert.True(t, ValidCategory(c), c)
	}
	assert.False(t, ValidCategory("music"))
	assert.False(t, ValidCategory(""))
}

func TestValidStatus(t *testing.T) {
	for _, s := range []string{StatusProcessing, StatusPublic, StatusPrivate} {
		assert.True(t, ValidStatus(s), s)
	}
	assert.False(t, ValidStatus("archived"))
}

func TestSplitCSV(t *testing.T) {
	assert.Equal(t, []string{"go", "backend"}, splitCSV("go, backend"))
	assert.Equal(t, []string{"solo"}, splitCSV("solo"))
	assert.Empty(t, splitCSV(" , ,"))
}

func TestUpdateVideoRequestEmpty(t *testing.T) {
	assert.True(t, (&UpdateVideoRequest{}).Empty())

	title := "new title"
	assert.False(t, (&UpdateVideoRequest{Title: &title}).Empty())
}
