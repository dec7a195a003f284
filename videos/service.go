package videos

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/medaruler/unlocked-library/apperror"
	"github.com/medaruler/unlocked-library/auth"
	"github.com/medaruler/unlocked-library/pagination"
	"github.com/medaruler/unlocked-library/storage"
)

// Upload is one file of a multipart upload.
type Upload struct {
	Reader      io.Reader
	Filename    string
	ContentType string
	Size        int64
}

// VideoService implements video persistence and engagement bookkeeping.
type VideoService struct {
	db     *pgxpool.Pool
	store  *storage.Client
	logger zerolog.Logger
}

// NewVideoService creates a VideoService.
func NewVideoService(db *pgxpool.Pool, store *storage.Client, logger zerolog.Logger) *VideoService {
	return &VideoService{db: db, store: store, logger: logger.With().Str("component", "videos").Logger()}
}

// videoSelect joins the author and aggregates reaction counts. $1 is the
// requesting user's id ('' for anonymous), used only for the liked/disliked
// flags.
const videoSelect = `
	SELECT v.id, v.title, v.description, v.video_url, v.thumbnail_url,
	       v.views, v.tags, v.category, v.status, v.created_at, v.updated_at,
	       u.id, u.username, u.profile_picture,
	       (SELECT count(*) FROM video_reactions r WHERE r.video_id = v.id AND r.reaction = 'like'),
	       (SELECT count(*) FROM video_reactions r WHERE r.video_id = v.id AND r.reaction = 'dislike'),
	       (SELECT r.reaction FROM video_reactions r WHERE r.video_id = v.id AND r.user_id::text = $1)
	FROM videos v
	JOIN users u ON u.id = v.author_id`

func scanVideo(row pgx.Row, viewerKnown bool) (*Video, error) {
	var v Video
	var viewerReaction *string
	err := row.Scan(
		&v.ID, &v.Title, &v.Description, &v.VideoURL, &v.ThumbnailURL,
		&v.Views, &v.Tags, &v.Category, &v.Status, &v.CreatedAt, &v.UpdatedAt,
		&v.Author.ID, &v.Author.Username, &v.Author.ProfilePicture,
		&v.Likes, &v.Dislikes, &viewerReaction,
	)
	if err != nil {
		return nil, err
	}
	if viewerKnown {
		liked := viewerReaction != nil && *viewerReaction == string(ReactionLike)
		disliked := viewerReaction != nil && *viewerReaction == string(ReactionDislike)
		v.Liked = &liked
		v.Disliked = &disliked
	}
	if v.Tags == nil {
		v.Tags = []string{}
	}
	return &v, nil
}

// viewerID renders an optional user for the videoSelect parameter.
func viewerID(viewer *auth.User) string {
	if viewer == nil {
		return ""
	}
	return viewer.ID
}

// Create uploads both files to object storage and inserts the record. A
// failed upload surfaces immediately; there are no retries.
func (s *VideoService) Create(ctx context.Context, author *auth.User, in CreateVideoInput, video, thumbnail Upload) (*Video, error) {
	if in.Title == "" || in.Description == "" {
		return nil, apperror.NewValidationError("Title and description are required", nil)
	}
	if !ValidCategory(in.Category) {
		return nil, apperror.NewValidationError("Unknown category", nil)
	}

	videoURL, err := s.store.Upload(ctx, "videos", video.Filename, video.ContentType, video.Reader, video.Size)
	if err != nil {
		return nil, err
	}
	thumbnailURL, err := s.store.Upload(ctx, "thumbnails", thumbnail.Filename, thumbnail.ContentType, thumbnail.Reader, thumbnail.Size)
	if err != nil {
		return nil, err
	}

	id := uuid.NewString()
	_, err = s.db.Exec(ctx, `
		INSERT INTO videos (id, title, description, video_url, thumbnail_url, author_id, tags, category)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		id, in.Title, in.Description, videoURL, thumbnailURL, author.ID, splitCSV(in.Tags), in.Category,
	)
	if err != nil {
		// The record failed after the binaries were stored; remove the
		// orphaned objects on a best-effort basis.
		if delErr := s.store.Delete(ctx, videoURL); delErr != nil {
			s.logger.Warn().Err(delErr).Str("url", videoURL).Msg("failed to clean up orphaned video object")
		}
		if delErr := s.store.Delete(ctx, thumbnailURL); delErr != nil {
			s.logger.Warn().Err(delErr).Str("url", thumbnailURL).Msg("failed to clean up orphaned thumbnail object")
		}
		return nil, apperror.NewDatabaseError("failed to create video", err)
	}

	return s.getByID(ctx, id, viewerID(author), true)
}

// publicListFilter renders the listing filters as SQL conditions. The same
// filters back two statements whose leading parameters differ, so the number
// of the first placeholder is a parameter; the returned args line up with
// the placeholders one-to-one.
func publicListFilter(q ListQuery, firstArg int) (string, []interface{}) {
	clauses := []string{"v.status = 'public'"}
	var args []interface{}
	n := firstArg
	if q.Category != "" {
		clauses = append(clauses, fmt.Sprintf("v.category = $%d", n))
		args = append(args, q.Category)
		n++
	}
	if q.Tag != "" {
		clauses = append(clauses, fmt.Sprintf("$%d = ANY(v.tags)", n))
		args = append(args, q.Tag)
		n++
	}
	if q.Search != "" {
		clauses = append(clauses, fmt.Sprintf("(v.title ILIKE $%d OR v.description ILIKE $%d)", n, n))
		args = append(args, "%"+q.Search+"%")
		n++
	}
	return strings.Join(clauses, " AND "), args
}

// List returns a page of public videos, newest first. Category, tag and
// text-search filters narrow the matched set before pagination.
func (s *VideoService) List(ctx context.Context, q ListQuery, pg pagination.Params, viewer *auth.User) (*ListResponse, error) {
	// The count statement carries no viewer parameter, so its placeholders
	// start at $1; the page query reserves $1 for the viewer.
	countWhere, countArgs := publicListFilter(q, 1)
	var total int64
	if err := s.db.QueryRow(ctx, `SELECT count(*) FROM videos v WHERE `+countWhere, countArgs...).Scan(&total); err != nil {
		return nil, apperror.NewDatabaseError("failed to count videos", err)
	}

	where, filterArgs := publicListFilter(q, 2)
	args := append([]interface{}{viewerID(viewer)}, filterArgs...)
	limitArg := len(args) + 1
	query := fmt.Sprintf(
		videoSelect+` WHERE %s ORDER BY v.created_at DESC LIMIT $%d OFFSET $%d`,
		where, limitArg, limitArg+1,
	)
	args = append(args, pg.Limit, pg.Offset())

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to list videos", err)
	}
	defer rows.Close()

	items := make([]Video, 0, pg.Limit)
	for rows.Next() {
		v, err := scanVideo(rows, viewer != nil)
		if err != nil {
			return nil, apperror.NewDatabaseError("failed to scan video", err)
		}
		items = append(items, *v)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewDatabaseError("failed to list videos", err)
	}

	return &ListResponse{
		Videos:      items,
		CurrentPage: pg.Page,
		TotalPages:  pg.TotalPages(total),
		TotalVideos: total,
	}, nil
}

// Get returns a video's detail view, with comments, and bumps the view
// counter. Every read counts a view; there is no per-viewer deduplication,
// so repeated reads inflate the counter (a documented limitation carried
// over from the original behavior). A private video is visible to its owner
// only; everyone else gets the same 404 as a missing id.
func (s *VideoService) Get(ctx context.Context, id string, viewer *auth.User) (*Video, error) {
	v, err := s.getByID(ctx, id, viewerID(viewer), viewer != nil)
	if err != nil {
		return nil, err
	}
	if v.Status != StatusPublic && (viewer == nil || viewer.ID != v.Author.ID) {
		return nil, apperror.NewNotFoundError("Video not found", nil)
	}

	if err := s.db.QueryRow(ctx,
		`UPDATE videos SET views = views + 1 WHERE id = $1 RETURNING views`, id,
	).Scan(&v.Views); err != nil {
		return nil, apperror.NewDatabaseError("failed to record view", err)
	}

	comments, err := s.ListComments(ctx, id)
	if err != nil {
		return nil, err
	}
	v.Comments = comments
	return v, nil
}

// Update applies a partial update. The WHERE clause filters on both id and
// author, so a non-owner receives the same NotFound as a missing id.
func (s *VideoService) Update(ctx context.Context, id, authorID string, req *UpdateVideoRequest) (*Video, error) {
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
	if req.Description != nil {
		appendSet("description", *req.Description)
	}
	if req.Category != nil {
		if !ValidCategory(*req.Category) {
			return nil, apperror.NewValidationError("Unknown category", nil)
		}
		appendSet("category", *req.Category)
	}
	if req.Tags != nil {
		appendSet("tags", splitCSV(*req.Tags))
	}
	if req.Status != nil {
		if !ValidStatus(*req.Status) {
			return nil, apperror.NewValidationError("Unknown status", nil)
		}
		appendSet("status", *req.Status)
	}
	if len(setClauses) == 0 {
		return nil, apperror.NewValidationError("No fields provided for update", nil)
	}
	setClauses = append(setClauses, "updated_at = now()")

	args = append(args, id, authorID)
	query := fmt.Sprintf(
		`UPDATE videos SET %s WHERE id = $%d AND author_id = $%d RETURNING id`,
		strings.Join(setClauses, ", "), argID, argID+1,
	)

	var updatedID string
	if err := s.db.QueryRow(ctx, query, args...).Scan(&updatedID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFoundError("Video not found", nil)
		}
		return nil, apperror.NewDatabaseError("failed to update video", err)
	}

	return s.getByID(ctx, updatedID, authorID, true)
}

// Delete removes the stored objects and then the record. Ownership mismatch
// is reported as NotFound.
func (s *VideoService) Delete(ctx context.Context, id, authorID string) error {
	var videoURL, thumbnailURL string
	err := s.db.QueryRow(ctx,
		`SELECT video_url, thumbnail_url FROM videos WHERE id = $1 AND author_id = $2`,
		id, authorID,
	).Scan(&videoURL, &thumbnailURL)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperror.NewNotFoundError("Video not found", nil)
		}
		return apperror.NewDatabaseError("failed to load video", err)
	}

	if err := s.store.Delete(ctx, videoURL); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, thumbnailURL); err != nil {
		return err
	}

	if _, err := s.db.Exec(ctx, `DELETE FROM videos WHERE id = $1 AND author_id = $2`, id, authorID); err != nil {
		return apperror.NewDatabaseError("failed to delete video", err)
	}
	return nil
}

// ToggleReaction flips the caller's reaction and returns the new counters.
// Toggling the held reaction removes it; switching sides replaces it, which
// keeps the likes and dislikes sets mutually exclusive. Concurrent toggles
// by the same user are not serialized; the last write wins in the reaction
// row.
func (s *VideoService) ToggleReaction(ctx context.Context, videoID, userID string, requested Reaction) (*ReactionResponse, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to begin transaction", err)
	}
	defer tx.Rollback(ctx)

	var exists bool
	if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM videos WHERE id = $1)`, videoID).Scan(&exists); err != nil {
		return nil, apperror.NewDatabaseError("failed to load video", err)
	}
	if !exists {
		return nil, apperror.NewNotFoundError("Video not found", nil)
	}

	current := ReactionNone
	var stored string
	err = tx.QueryRow(ctx,
		`SELECT reaction FROM video_reactions WHERE video_id = $1 AND user_id = $2`,
		videoID, userID,
	).Scan(&stored)
	switch {
	case err == nil:
		current = Reaction(stored)
	case errors.Is(err, pgx.ErrNoRows):
		// no stored reaction
	default:
		return nil, apperror.NewDatabaseError("failed to load reaction", err)
	}

	next := nextReaction(current, requested)
	if next == ReactionNone {
		_, err = tx.Exec(ctx,
			`DELETE FROM video_reactions WHERE video_id = $1 AND user_id = $2`,
			videoID, userID)
	} else {
		_, err = tx.Exec(ctx, `
			INSERT INTO video_reactions (video_id, user_id, reaction)
			VALUES ($1, $2, $3)
			ON CONFLICT (video_id, user_id) DO UPDATE
			SET reaction = EXCLUDED.reaction, created_at = now()`,
			videoID, userID, string(next))
	}
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to store reaction", err)
	}

	var resp ReactionResponse
	err = tx.QueryRow(ctx, `
		SELECT count(*) FILTER (WHERE reaction = 'like'),
		       count(*) FILTER (WHERE reaction = 'dislike')
		FROM video_reactions WHERE video_id = $1`, videoID,
	).Scan(&resp.Likes, &resp.Dislikes)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to count reactions", err)
	}
	resp.Liked = next == ReactionLike

	if err := tx.Commit(ctx); err != nil {
		return nil, apperror.NewDatabaseError("failed to commit reaction", err)
	}
	return &resp, nil
}

// AddComment appends a comment. Comments are append-only; there is no edit
// or delete contract.
func (s *VideoService) AddComment(ctx context.Context, videoID string, user *auth.User, text string) (*Comment, error) {
	if strings.TrimSpace(text) == "" {
		return nil, apperror.NewValidationError("Comment text is required", nil)
	}

	var exists bool
	if err := s.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM videos WHERE id = $1)`, videoID).Scan(&exists); err != nil {
		return nil, apperror.NewDatabaseError("failed to load video", err)
	}
	if !exists {
		return nil, apperror.NewNotFoundError("Video not found", nil)
	}

	comment := &Comment{
		ID:   uuid.NewString(),
		User: Author{ID: user.ID, Username: user.Username, ProfilePicture: user.ProfilePicture},
		Text: text,
	}
	err := s.db.QueryRow(ctx, `
		INSERT INTO video_comments (id, video_id, user_id, body)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at`,
		comment.ID, videoID, user.ID, text,
	).Scan(&comment.CreatedAt)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to add comment", err)
	}
	return comment, nil
}

// ListComments returns a video's comments in insertion order.
func (s *VideoService) ListComments(ctx context.Context, videoID string) ([]Comment, error) {
	rows, err := s.db.Query(ctx, `
		SELECT c.id, c.body, c.created_at, u.id, u.username, u.profile_picture
		FROM video_comments c
		JOIN users u ON u.id = c.user_id
		WHERE c.video_id = $1
		ORDER BY c.created_at ASC`, videoID)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to list comments", err)
	}
	defer rows.Close()

	comments := make([]Comment, 0)
	for rows.Next() {
		var c Comment
		if err := rows.Scan(&c.ID, &c.Text, &c.CreatedAt, &c.User.ID, &c.User.Username, &c.User.ProfilePicture); err != nil {
			return nil, apperror.NewDatabaseError("failed to scan comment", err)
		}
		comments = append(comments, c)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewDatabaseError("failed to list comments", err)
	}
	return comments, nil
}

func (s *VideoService) getByID(ctx context.Context, id, viewer string, viewerKnown bool) (*Video, error) {
	row := s.db.QueryRow(ctx, videoSelect+` WHERE v.id = $2`, viewer, id)
	v, err := scanVideo(row, viewerKnown)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFoundError("Video not found", nil)
		}
		return nil, apperror.NewDatabaseError("failed to load video", err)
	}
	return v, nil
}
