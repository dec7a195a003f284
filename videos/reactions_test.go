package videos

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNextReaction(t *testing.T) {
	tests := []struct {
		name      string
		current   Reaction
		requested Reaction
		want      Reaction
	}{
		{"like from nothing", ReactionNone, ReactionLike, ReactionLike},
		{"dislike from nothing", ReactionNone, ReactionDislike, ReactionDislike},
		{"like removes like", ReactionLike, ReactionLike, ReactionNone},
		{"dislike removes dislike", ReactionDislike, ReactionDislike, ReactionNone},
		{"like replaces dislike", ReactionDislike, ReactionLike, ReactionLike},
		{"dislike replaces like", ReactionLike, ReactionDislike, ReactionDislike},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, nextReaction(tt.current, tt.requested))
		})
	}
}

// Toggling the same reaction twice always lands back where it started,
// regardless of the starting state.
func TestNextReactionInvolution(t *testing.T) {
	for _, start := range []Reaction{ReactionNone, ReactionLike, ReactionDislike} {
		for _, req := range []Reaction{ReactionLike, ReactionDislike} {
			once := nextReaction(start, req)
			twice := nextReaction(once, req)
			if start == req {
				assert.Equal(t, req, twice)
			}
			// A second identical toggle undoes the first when starting clean.
			if start == ReactionNone {
				assert.Equal(t, ReactionNone, twice)
			}
		}
	}
}

// A user never holds a like and a dislike at once: any sequence of toggles
// ends in exactly one of the three states.
func TestNextReactionSequences(t *testing.T) {
	state := ReactionNone
	for _, req := range []Reaction{
		ReactionLike, ReactionDislike, ReactionDislike, ReactionLike, ReactionLike,
	} {
		state = nextReaction(state, req)
		assert.Contains(t, []Reaction{ReactionNone, ReactionLike, ReactionDislike}, state)
	}
	assert.Equal(t, ReactionNone, state)
}
