package videos

// Reaction is a user's stored stance on a video. The store keeps at most one
// reaction row per (video, user), so a user can never be in both the likes
// and dislikes sets.
type Reaction string

const (
	// ReactionNone means no stored reaction.
	ReactionNone Reaction = ""
	// ReactionLike is a like.
	ReactionLike Reaction = "like"
	// ReactionDislike is a dislike.
	ReactionDislike Reaction = "dislike"
)

// nextReaction computes the reaction state after a toggle request.
// Requesting the reaction the user already holds removes it; requesting the
// opposite one replaces it. The function is an involution for a fixed
// request: applying the same toggle twice restores the starting state.
func nextReaction(current, requested Reaction) Reaction {
	if current == requested {
		return ReactionNone
	}
	return requested
}
