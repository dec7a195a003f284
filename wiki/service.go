package wiki

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/medaruler/unlocked-library/apperror"
	"github.com/medaruler/unlocked-library/auth"
	"github.com/medaruler/unlocked-library/pagination"
)

const pgUniqueViolation = "23505"

// WikiService implements article persistence and the revision history.
type WikiService struct {
	db     *pgxpool.Pool
	logger zerolog.Logger
}

// NewWikiService creates a WikiService.
func NewWikiService(db *pgxpool.Pool, logger zerolog.Logger) *WikiService {
	return &WikiService{db: db, logger: logger.With().Str("component", "wiki").Logger()}
}

// articleSelect joins the author, the optional last editor and the like
// count. $1 is the requesting user's id ('' for anonymous), used only for
// the liked flag.
const articleSelect = `
	SELECT w.id, w.title, w.content, w.categories, w.tags, w."references",
	       w.views, w.status, w.visibility, w.created_at, w.updated_at,
	       u.id, u.username, u.profile_picture,
	       e.id, e.username, e.profile_picture,
	       (SELECT count(*) FROM wiki_likes l WHERE l.wiki_id = w.id),
	       EXISTS (SELECT 1 FROM wiki_likes l WHERE l.wiki_id = w.id AND l.user_id::text = $1)
	FROM wikis w
	JOIN users u ON u.id = w.author_id
	LEFT JOIN users e ON e.id = w.last_edited_by`

func scanArticle(row pgx.Row, viewerKnown bool) (*Article, error) {
	var a Article
	var editorID, editorName, editorPic *string
	var liked bool
	err := row.Scan(
		&a.ID, &a.Title, &a.Content, &a.Categories, &a.Tags, &a.References,
		&a.Views, &a.Status, &a.Visibility, &a.CreatedAt, &a.UpdatedAt,
		&a.Author.ID, &a.Author.Username, &a.Author.ProfilePicture,
		&editorID, &editorName, &editorPic,
		&a.Likes, &liked,
	)
	if err != nil {
		return nil, err
	}
	if editorID != nil {
		a.LastEditedBy = &Author{ID: *editorID, Username: *editorName, ProfilePicture: *editorPic}
	}
	if viewerKnown {
		a.Liked = &liked
	}
	if a.Categories == nil {
		a.Categories = []string{}
	}
	if a.Tags == nil {
		a.Tags = []string{}
	}
	if a.References == nil {
		a.References = []Reference{}
	}
	return &a, nil
}

func viewerID(viewer *auth.User) string {
	if viewer == nil {
		return ""
	}
	return viewer.ID
}

// Create inserts a new article. Creation records no revision; the history
// starts with the first content edit. Titles are unique across the wiki.
func (s *WikiService) Create(ctx context.Context, author *auth.User, req *CreateArticleRequest) (*Article, error) {
	visibility := req.Visibility
	if visibility == "" {
		visibility = VisibilityPublic
	}
	if !ValidVisibility(visibility) {
		return nil, apperror.NewValidationError("Unknown visibility", nil)
	}
	status := req.Status
	if status == "" {
		status = StatusPublished
	}
	if !ValidStatus(status) {
		return nil, apperror.NewValidationError("Unknown status", nil)
	}
	references := req.References
	if references == nil {
		references = []Reference{}
	}

	id := uuid.NewString()
	_, err := s.db.Exec(ctx, `
		INSERT INTO wikis (id, title, content, author_id, categories, tags, "references", status, visibility)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		id, req.Title, req.Content, author.ID,
		splitCSV(req.Categories), splitCSV(req.Tags), references, status, visibility,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return nil, apperror.NewConflictError("An article with this title already exists", err)
		}
		return nil, apperror.NewDatabaseError("failed to create article", err)
	}

	return s.getByID(ctx, id, author.ID, true)
}

// publishedListFilter renders the listing filters as SQL conditions. The
// same filters back two statements whose leading parameters differ, so the
// number of the first placeholder is a parameter; the returned args line up
// with the placeholders one-to-one.
func publishedListFilter(q ListQuery, firstArg int) (string, []interface{}) {
	clauses := []string{"w.status = 'published'", "w.visibility = 'public'"}
	var args []interface{}
	n := firstArg
	if q.Category != "" {
		clauses = append(clauses, fmt.Sprintf("$%d = ANY(w.categories)", n))
		args = append(args, q.Category)
		n++
	}
	if q.Tag != "" {
		clauses = append(clauses, fmt.Sprintf("$%d = ANY(w.tags)", n))
		args = append(args, q.Tag)
		n++
	}
	if q.Search != "" {
		clauses = append(clauses, fmt.Sprintf("(w.title ILIKE $%d OR w.content ILIKE $%d)", n, n))
		args = append(args, "%"+q.Search+"%")
		n++
	}
	return strings.Join(clauses, " AND "), args
}

// List returns a page of published, public articles, newest first.
func (s *WikiService) List(ctx context.Context, q ListQuery, pg pagination.Params, viewer *auth.User) (*ListResponse, error) {
	// The count statement carries no viewer parameter, so its placeholders
	// start at $1; the page query reserves $1 for the viewer.
	countWhere, countArgs := publishedListFilter(q, 1)
	var total int64
	if err := s.db.QueryRow(ctx, `SELECT count(*) FROM wikis w WHERE `+countWhere, countArgs...).Scan(&total); err != nil {
		return nil, apperror.NewDatabaseError("failed to count articles", err)
	}

	where, filterArgs := publishedListFilter(q, 2)
	args := append([]interface{}{viewerID(viewer)}, filterArgs...)
	limitArg := len(args) + 1
	query := fmt.Sprintf(
		articleSelect+` WHERE %s ORDER BY w.created_at DESC LIMIT $%d OFFSET $%d`,
		where, limitArg, limitArg+1,
	)
	args = append(args, pg.Limit, pg.Offset())

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to list articles", err)
	}
	defer rows.Close()

	items := make([]Article, 0, pg.Limit)
	for rows.Next() {
		a, err := scanArticle(rows, viewer != nil)
		if err != nil {
			return nil, apperror.NewDatabaseError("failed to scan article", err)
		}
		items = append(items, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewDatabaseError("failed to list articles", err)
	}

	return &ListResponse{
		Wikis:       items,
		CurrentPage: pg.Page,
		TotalPages:  pg.TotalPages(total),
		TotalWikis:  total,
	}, nil
}

// Get returns one article and bumps its view counter. Every read counts a
// view; there is no per-viewer deduplication. Visibility failures report
// the same NotFound as a missing id.
func (s *WikiService) Get(ctx context.Context, id string, viewer *auth.User) (*Article, error) {
	a, err := s.getByID(ctx, id, viewerID(viewer), viewer != nil)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeRead(ctx, a, viewer); err != nil {
		return nil, err
	}

	if err := s.db.QueryRow(ctx,
		`UPDATE wikis SET views = views + 1 WHERE id = $1 RETURNING views`, id,
	).Scan(&a.Views); err != nil {
		return nil, apperror.NewDatabaseError("failed to record view", err)
	}
	return a, nil
}

func (s *WikiService) authorizeRead(ctx context.Context, a *Article, viewer *auth.User) error {
	switch a.Visibility {
	case VisibilityPublic:
		return nil
	case VisibilityPrivate:
		if viewer != nil && viewer.ID == a.Author.ID {
			return nil
		}
	case VisibilityContributorsOnly:
		if viewer == nil {
			break
		}
		if viewer.ID == a.Author.ID {
			return nil
		}
		var isContributor bool
		err := s.db.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM wiki_contributors WHERE wiki_id = $1 AND user_id = $2)`,
			a.ID, viewer.ID,
		).Scan(&isContributor)
		if err != nil {
			return apperror.NewDatabaseError("failed to check contributor access", err)
		}
		if isContributor {
			return nil
		}
	}
	return apperror.NewNotFoundError("Article not found", nil)
}

// Update applies a partial update in one transaction. When the content
// changes, the OUTGOING text is appended to the revision history before
// the new text replaces it, so the history always holds the superseded
// versions. Metadata-only edits record nothing. Ownership mismatch reports
// the same NotFound as a missing id.
func (s *WikiService) Update(ctx context.Context, id string, editor *auth.User, req *UpdateArticleRequest) (*Article, error) {
	if req.Title != nil && *req.Title == "" {
		return nil, apperror.NewValidationError("Title cannot be empty", nil)
	}
	if req.Visibility != nil && !ValidVisibility(*req.Visibility) {
		return nil, apperror.NewValidationError("Unknown visibility", nil)
	}
	if req.Status != nil && !ValidStatus(*req.Status) {
		return nil, apperror.NewValidationError("Unknown status", nil)
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to begin transaction", err)
	}
	defer tx.Rollback(ctx)

	var currentContent string
	err = tx.QueryRow(ctx,
		`SELECT content FROM wikis WHERE id = $1 AND author_id = $2 FOR UPDATE`,
		id, editor.ID,
	).Scan(&currentContent)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFoundError("Article not found", nil)
		}
		return nil, apperror.NewDatabaseError("failed to load article", err)
	}

	if needsRevision(currentContent, req.Content) {
		if err := appendRevision(ctx, tx, id, currentContent, editor.ID, revisionDescription(req.ChangeDescription)); err != nil {
			return nil, err
		}
	}

	var setClauses []string
	var args []interface{}
	argID := 1

	appendSet := func(column string, value interface{}) {
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", column, argID))
		args = append(args, value)
		argID++
	}

	if req.Title != nil {
		appendSet("title", *req.Title)
	}
	if req.Content != nil {
		appendSet("content", *req.Content)
	}
	if req.Categories != nil {
		appendSet("categories", splitCSV(*req.Categories))
	}
	if req.Tags != nil {
		appendSet("tags", splitCSV(*req.Tags))
	}
	if req.References != nil {
		appendSet(`"references"`, *req.References)
	}
	if req.Visibility != nil {
		appendSet("visibility", *req.Visibility)
	}
	if req.Status != nil {
		appendSet("status", *req.Status)
	}
	appendSet("last_edited_by", editor.ID)
	setClauses = append(setClauses, "updated_at = now()")

	args = append(args, id)
	query := fmt.Sprintf(`UPDATE wikis SET %s WHERE id = $%d`, strings.Join(setClauses, ", "), argID)
	if _, err := tx.Exec(ctx, query, args...); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return nil, apperror.NewConflictError("An article with this title already exists", err)
		}
		return nil, apperror.NewDatabaseError("failed to update article", err)
	}

	// Record the editor among the contributors.
	if _, err := tx.Exec(ctx, `
		INSERT INTO wiki_contributors (wiki_id, user_id, contribution)
		VALUES ($1, $2, 'edit')
		ON CONFLICT (wiki_id, user_id) DO NOTHING`,
		id, editor.ID,
	); err != nil {
		return nil, apperror.NewDatabaseError("failed to record contributor", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, apperror.NewDatabaseError("failed to commit update", err)
	}

	return s.getByID(ctx, id, editor.ID, true)
}

// appendRevision stores content as the next numbered history entry.
// Numbering is assigned under the caller's transaction, keyed off the
// current maximum, so entries stay dense and ordered.
func appendRevision(ctx context.Context, tx pgx.Tx, wikiID, content, editorID, description string) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO wiki_revisions (id, wiki_id, revision_num, content, edited_by, change_description)
		VALUES ($1, $2,
		        (SELECT COALESCE(MAX(revision_num), 0) + 1 FROM wiki_revisions WHERE wiki_id = $2),
		        $3, $4, $5)`,
		uuid.NewString(), wikiID, content, editorID, description,
	)
	if err != nil {
		return apperror.NewDatabaseError("failed to record revision", err)
	}
	return nil
}

// AddRevision snapshots the article's CURRENT content as a manual history
// entry, without changing the article.
func (s *WikiService) AddRevision(ctx context.Context, id string, editor *auth.User, req *AddRevisionRequest) (*Revision, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to begin transaction", err)
	}
	defer tx.Rollback(ctx)

	var content string
	err = tx.QueryRow(ctx,
		`SELECT content FROM wikis WHERE id = $1 AND author_id = $2 FOR UPDATE`,
		id, editor.ID,
	).Scan(&content)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFoundError("Article not found", nil)
		}
		return nil, apperror.NewDatabaseError("failed to load article", err)
	}

	description := req.ChangeDescription
	if description == "" {
		description = "Manual snapshot"
	}

	rev := &Revision{
		ID:      uuid.NewString(),
		Content: content,
		EditedBy: Author{
			ID:             editor.ID,
			Username:       editor.Username,
			ProfilePicture: editor.ProfilePicture,
		},
		ChangeDescription: description,
	}
	err = tx.QueryRow(ctx, `
		INSERT INTO wiki_revisions (id, wiki_id, revision_num, content, edited_by, change_description)
		VALUES ($1, $2,
		        (SELECT COALESCE(MAX(revision_num), 0) + 1 FROM wiki_revisions WHERE wiki_id = $2),
		        $3, $4, $5)
		RETURNING revision_num, edited_at`,
		rev.ID, id, content, editor.ID, description,
	).Scan(&rev.RevisionNum, &rev.EditedAt)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to record revision", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, apperror.NewDatabaseError("failed to commit revision", err)
	}
	return rev, nil
}

// ListRevisions returns an article's history in revision order, oldest
// first. The article's visibility rules apply.
func (s *WikiService) ListRevisions(ctx context.Context, id string, viewer *auth.User) ([]Revision, error) {
	a, err := s.getByID(ctx, id, viewerID(viewer), viewer != nil)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeRead(ctx, a, viewer); err != nil {
		return nil, err
	}

	rows, err := s.db.Query(ctx, `
		SELECT r.id, r.revision_num, r.content, r.edited_at, r.change_description,
		       u.id, u.username, u.profile_picture
		FROM wiki_revisions r
		JOIN users u ON u.id = r.edited_by
		WHERE r.wiki_id = $1
		ORDER BY r.revision_num ASC`, id)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to list revisions", err)
	}
	defer rows.Close()

	revisions := make([]Revision, 0)
	for rows.Next() {
		var rev Revision
		err := rows.Scan(&rev.ID, &rev.RevisionNum, &rev.Content, &rev.EditedAt, &rev.ChangeDescription,
			&rev.EditedBy.ID, &rev.EditedBy.Username, &rev.EditedBy.ProfilePicture)
		if err != nil {
			return nil, apperror.NewDatabaseError("failed to scan revision", err)
		}
		revisions = append(revisions, rev)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewDatabaseError("failed to list revisions", err)
	}
	return revisions, nil
}

// ToggleLike flips the caller's like on the article and returns the new
// counter. Liking twice removes the like.
func (s *WikiService) ToggleLike(ctx context.Context, id, userID string) (*LikeResponse, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to begin transaction", err)
	}
	defer tx.Rollback(ctx)

	var exists bool
	if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM wikis WHERE id = $1)`, id).Scan(&exists); err != nil {
		return nil, apperror.NewDatabaseError("failed to load article", err)
	}
	if !exists {
		return nil, apperror.NewNotFoundError("Article not found", nil)
	}

	tag, err := tx.Exec(ctx, `DELETE FROM wiki_likes WHERE wiki_id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to toggle like", err)
	}
	liked := tag.RowsAffected() == 0
	if liked {
		if _, err := tx.Exec(ctx,
			`INSERT INTO wiki_likes (wiki_id, user_id) VALUES ($1, $2)`, id, userID,
		); err != nil {
			return nil, apperror.NewDatabaseError("failed to toggle like", err)
		}
	}

	var likes int64
	if err := tx.QueryRow(ctx, `SELECT count(*) FROM wiki_likes WHERE wiki_id = $1`, id).Scan(&likes); err != nil {
		return nil, apperror.NewDatabaseError("failed to count likes", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, apperror.NewDatabaseError("failed to commit like", err)
	}
	return &LikeResponse{Likes: likes, Liked: liked}, nil
}

// Delete removes an article and, through cascades, its revisions, likes and
// contributor grants. Ownership mismatch reports NotFound.
func (s *WikiService) Delete(ctx context.Context, id, authorID string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM wikis WHERE id = $1 AND author_id = $2`, id, authorID)
	if err != nil {
		return apperror.NewDatabaseError("failed to delete article", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFoundError("Article not found", nil)
	}
	return nil
}

// AddContributor grants a user access to the article. Only the author can
// grant access; re-granting updates the contribution note.
func (s *WikiService) AddContributor(ctx context.Context, id string, author *auth.User, req *AddContributorRequest) error {
	var found string
	err := s.db.QueryRow(ctx,
		`SELECT id FROM wikis WHERE id = $1 AND author_id = $2`, id, author.ID,
	).Scan(&found)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperror.NewNotFoundError("Article not found", nil)
		}
		return apperror.NewDatabaseError("failed to load article", err)
	}

	contribution := req.Contribution
	if contribution == "" {
		contribution = "contributor"
	}
	_, err = s.db.Exec(ctx, `
		INSERT INTO wiki_contributors (wiki_id, user_id, contribution)
		VALUES ($1, $2, $3)
		ON CONFLICT (wiki_id, user_id) DO UPDATE SET contribution = EXCLUDED.contribution`,
		id, req.UserID, contribution,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return apperror.NewValidationError("Unknown user", err)
		}
		return apperror.NewDatabaseError("failed to add contributor", err)
	}
	return nil
}

// ListContributors returns the article's contributor grants. The article's
// visibility rules apply.
func (s *WikiService) ListContributors(ctx context.Context, id string, viewer *auth.User) ([]Contributor, error) {
	a, err := s.getByID(ctx, id, viewerID(viewer), viewer != nil)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeRead(ctx, a, viewer); err != nil {
		return nil, err
	}

	rows, err := s.db.Query(ctx, `
		SELECT u.id, u.username, u.profile_picture, c.contribution, c.created_at
		FROM wiki_contributors c
		JOIN users u ON u.id = c.user_id
		WHERE c.wiki_id = $1
		ORDER BY c.created_at ASC`, id)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to list contributors", err)
	}
	defer rows.Close()

	contributors := make([]Contributor, 0)
	for rows.Next() {
		var c Contributor
		if err := rows.Scan(&c.User.ID, &c.User.Username, &c.User.ProfilePicture, &c.Contribution, &c.CreatedAt); err != nil {
			return nil, apperror.NewDatabaseError("failed to scan contributor", err)
		}
		contributors = append(contributors, c)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewDatabaseError("failed to list contributors", err)
	}
	return contributors, nil
}

func (s *WikiService) getByID(ctx context.Context, id, viewer string, viewerKnown bool) (*Article, error) {
	row := s.db.QueryRow(ctx, articleSelect+` WHERE w.id = $2`, viewer, id)
	a, err := scanArticle(row, viewerKnown)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFoundError("Article not found", nil)
		}
		return nil, apperror.NewDatabaseError("failed to load article", err)
	}
	return a, nil
}
