package wiki

import "strings"

// CreateArticleRequest creates an article. Categories and tags arrive as
// comma-separated strings.
type CreateArticleRequest struct {
	Title      string      `json:"title" validate:"required,min=3,max=200"`
	Content    string      `json:"content" validate:"required"`
	Categories string      `json:"categories"`
	Tags       string      `json:"tags"`
	References []Reference `json:"references"`
	Visibility string      `json:"visibility"`
	Status     string      `json:"status"`
}

// UpdateArticleRequest is a partial update. Nil fields are left unchanged;
// a content change records a revision of the outgoing text.
type UpdateArticleRequest struct {
	Title             *string      `json:"title"`
	Content           *string      `json:"content"`
	Categories        *string      `json:"categories"`
	Tags              *string      `json:"tags"`
	References        *[]Reference `json:"references"`
	Visibility        *string      `json:"visibility"`
	Status            *string      `json:"status"`
	ChangeDescription *string      `json:"changeDescription"`
}

// Empty reports whether no field was provided.
func (r *UpdateArticleRequest) Empty() bool {
	return r.Title == nil && r.Content == nil && r.Categories == nil &&
		r.Tags == nil && r.References == nil && r.Visibility == nil && r.Status == nil
}

// AddRevisionRequest snapshots the article's current content manually.
type AddRevisionRequest struct {
	ChangeDescription string `json:"changeDescription"`
}

// AddContributorRequest grants a user access to a contributors_only article.
type AddContributorRequest struct {
	UserID       string `json:"userId" validate:"required,uuid4"`
	Contribution string `json:"contribution"`
}

// ListQuery collects the supported listing filters.
type ListQuery struct {
	Category string
	Tag      string
	Search   string
}

// ListResponse is one page of articles.
type ListResponse struct {
	Wikis       []Article `json:"wikis"`
	CurrentPage int       `json:"currentPage"`
	TotalPages  int       `json:"totalPages"`
	TotalWikis  int64     `json:"totalWikis"`
}

// LikeResponse reports the counter after a like toggle.
type LikeResponse struct {
	Likes int64 `json:"likes"`
	Liked bool  `json:"liked"`
}

func splitCSV(s string) []string {
	out := []string{}
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
