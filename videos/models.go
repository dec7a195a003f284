// Package videos implements video uploads, listing, engagement bookkeeping
// (views, like/dislike reactions) and comments.
package videos

import "time"

// Video statuses. Uploads start out as processing and are not publicly
// listed until their owner flips them to public.
const (
	StatusProcessing = "processing"
	StatusPublic     = "public"
	StatusPrivate    = "private"
)

// Categories a video can be filed under.
var validCategories = map[string]bool{
	"politics":      true,
	"education":     true,
	"entertainment": true,
	"news":          true,
	"other":         true,
}

// ValidCategory reports whether c is a known category.
func ValidCategory(c string) bool {
	return validCategories[c]
}

// ValidStatus reports whether s is a known video status.
func ValidStatus(s string) bool {
	return s == StatusProcessing || s == StatusPublic || s == StatusPrivate
}

// Author is the public slice of a user record embedded in responses.
type Author struct {
	ID             string `json:"id"`
	Username       string `json:"username"`
	ProfilePicture string `json:"profilePicture"`
}

// Video is a media asset reference: the binary lives in object storage, the
// record holds its URLs, metadata and engagement counters.
type Video struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	VideoURL     string    `json:"videoUrl"`
	ThumbnailURL string    `json:"thumbnailUrl"`
	Author       Author    `json:"author"`
	Views        int64     `json:"views"`
	Likes        int64     `json:"likes"`
	Dislikes     int64     `json:"dislikes"`
	// Liked and Disliked reflect the requesting user's reaction and are
	// only present on authenticated reads.
	Liked        *bool     `json:"liked,omitempty"`
	Disliked     *bool     `json:"disliked,omitempty"`
	Tags         []string  `json:"tags"`
	Category     string    `json:"category"`
	Status       string    `json:"status"`
	Comments     []Comment `json:"comments,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Comment is one entry in a video's append-only comment list.
type Comment struct {
	ID        string    `json:"id"`
	User      Author    `json:"user"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}
