package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestObjectName(t *testing.T) {
	c := &Client{bucket: "unlocked-library", publicBaseURL: "https://cdn.example.com/unlocked-library"}

	t.Run("recovers the object name", func(t *testing.T) {
		name, ok := c.objectName("https://cdn.example.com/unlocked-library/videos/1714000000000-demo.mp4")
		assert.True(t, ok)
		assert.Equal(t, "videos/1714000000000-demo.mp4", name)
	})

	t.Run("foreign URL is ignored", func(t *testing.T) {
		_, ok := c.objectName("https://other.example.com/videos/demo.mp4")
		assert.False(t, ok)
	})

	t.Run("bare base URL is ignored", func(t *testing.T) {
		_, ok := c.objectName("https://cdn.example.com/unlocked-library")
		assert.False(t, ok)
	})
}
