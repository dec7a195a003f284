package videos

import "strings"

// CreateVideoInput is the metadata part of a multipart upload.
type CreateVideoInput struct {
	Title       string
	Description string
	Category    string
	// Tags arrives as a comma-separated string, as submitted by the form.
	Tags string
}

// UpdateVideoRequest is the typed partial update for a video. Unknown fields
// are rejected at decode time.
type UpdateVideoRequest struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Category    *string `json:"category,omitempty"`
	Tags        *string `json:"tags,omitempty"`
	Status      *string `json:"status,omitempty"`
}

// Empty reports whether the patch carries no fields.
func (r *UpdateVideoRequest) Empty() bool {
	return r.Title == nil && r.Description == nil && r.Category == nil &&
		r.Tags == nil && r.Status == nil
}

// ListQuery narrows a listing before pagination is applied.
type ListQuery struct {
	Category string
	Tag      string
	Search   string
}

// ListResponse is the paginated video listing.
type ListResponse struct {
	Videos      []Video `json:"videos"`
	CurrentPage int     `json:"currentPage"`
	TotalPages  int     `json:"totalPages"`
	TotalVideos int64   `json:"totalVideos"`
}

// ReactionResponse reports the counters after a like/dislike toggle.
type ReactionResponse struct {
	Likes    int64 `json:"likes"`
	Dislikes int64 `json:"dislikes"`
	Liked    bool  `json:"liked"`
}

// CommentRequest is the body of a new comment.
type CommentRequest struct {
	Text string `json:"text"`
}

// splitCSV turns a comma-separated string into trimmed, non-empty parts.
func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
