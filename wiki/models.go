package wiki

import "time"

// Article statuses.
const (
	StatusDraft       = "draft"
	StatusPublished   = "published"
	StatusUnderReview = "under_review"
	StatusArchived    = "archived"
)

// Article visibilities.
const (
	VisibilityPublic           = "public"
	VisibilityPrivate          = "private"
	VisibilityContributorsOnly = "contributors_only"
)

var validStatuses = map[string]bool{
	StatusDraft:       true,
	StatusPublished:   true,
	StatusUnderReview: true,
	StatusArchived:    true,
}

var validVisibilities = map[string]bool{
	VisibilityPublic:           true,
	VisibilityPrivate:          true,
	VisibilityContributorsOnly: true,
}

// ValidStatus reports whether s is a known article status.
func ValidStatus(s string) bool { return validStatuses[s] }

// ValidVisibility reports whether v is a known visibility.
func ValidVisibility(v string) bool { return validVisibilities[v] }

// Author is the embedded author projection on articles and revisions.
type Author struct {
	ID             string `json:"id"`
	Username       string `json:"username"`
	ProfilePicture string `json:"profilePicture"`
}

// Reference is one cited source attached to an article.
type Reference struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Description string `json:"description,omitempty"`
}

// Article is a wiki article. Likes carries the count; Liked is set only
// when the viewer is known.
type Article struct {
	ID           string      `json:"id"`
	Title        string      `json:"title"`
	Content      string      `json:"content"`
	Author       Author      `json:"author"`
	Categories   []string    `json:"categories"`
	Tags         []string    `json:"tags"`
	References   []Reference `json:"references"`
	Views        int64       `json:"views"`
	Likes        int64       `json:"likes"`
	Liked        *bool       `json:"liked,omitempty"`
	Status       string      `json:"status"`
	Visibility   string      `json:"visibility"`
	LastEditedBy *Author     `json:"lastEditedBy,omitempty"`
	CreatedAt    time.Time   `json:"createdAt"`
	UpdatedAt    time.Time   `json:"updatedAt"`
}

// Revision is one entry in an article's append-only edit history. Content
// is the article text as it was BEFORE the edit that produced the entry.
type Revision struct {
	ID                string    `json:"id"`
	RevisionNum       int       `json:"revisionNum"`
	Content           string    `json:"content"`
	EditedBy          Author    `json:"editedBy"`
	EditedAt          time.Time `json:"editedAt"`
	ChangeDescription string    `json:"changeDescription"`
}

// Contributor is a user granted access to a contributors_only article.
type Contributor struct {
	User         Author    `json:"user"`
	Contribution string    `json:"contribution"`
	CreatedAt    time.Time `json:"createdAt"`
}
