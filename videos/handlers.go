package videos

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/medaruler/unlocked-library/apperror"
	"github.com/medaruler/unlocked-library/auth"
	"github.com/medaruler/unlocked-library/pagination"
)

// Handlers exposes the video endpoints.
type Handlers struct {
	service       *VideoService
	maxUploadSize int64
}

// NewHandlers creates video Handlers. maxUploadSize caps the multipart
// request body on uploads.
func NewHandlers(service *VideoService, maxUploadSize int64) *Handlers {
	return &Handlers{service: service, maxUploadSize: maxUploadSize}
}

// RegisterRoutes mounts the video endpoints. Listing and detail reads work
// without a token but pick up the caller's reaction flags when one is
// presented.
func (h *Handlers) RegisterRoutes(r chi.Router, a auth.Authenticator) {
	r.Group(func(r chi.Router) {
		r.Use(auth.OptionalAuth(a))
		r.Get("/", h.HandleList())
		r.Get("/{id}", h.HandleGet())
		r.Get("/{id}/comments", h.HandleListComments())
	})
	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth(a))
		r.Post("/", h.HandleUpload())
		r.Patch("/{id}", h.HandleUpdate())
		r.Delete("/{id}", h.HandleDelete())
		r.Post("/{id}/like", h.HandleToggleReaction(ReactionLike))
		r.Post("/{id}/dislike", h.HandleToggleReaction(ReactionDislike))
		r.Post("/{id}/comments", h.HandleAddComment())
	})
}

func decodeStrict(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return apperror.NewValidationError("Invalid updates", err)
	}
	return nil
}

// HandleUpload handles POST /api/videos.
//
//	@Summary		Upload a video
//	@Description	Uploads a video file and thumbnail with metadata. The video starts in processing status.
//	@Tags			videos
//	@Accept			multipart/form-data
//	@Produce		json
//	@Security		BearerAuth
//	@Param			video		formData	file	true	"Video file"
//	@Param			thumbnail	formData	file	true	"Thumbnail image"
//	@Param			title		formData	string	true	"Title"
//	@Param			description	formData	string	true	"Description"
//	@Param			category	formData	string	true	"Category"
//	@Param			tags		formData	string	false	"Comma-separated tags"
//	@Success		201	{object}	Video
//	@Failure		400	{object}	apperror.ErrorResponse
//	@Failure		401	{object}	apperror.ErrorResponse
//	@Router			/api/videos [post]
func (h *Handlers) HandleUpload() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := auth.UserFromContext(r.Context())
		if !ok {
			apperror.WriteError(w, apperror.NewAuthError("Authentication required", nil))
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			var maxErr *http.MaxBytesError
			if errors.As(err, &maxErr) {
				apperror.WriteJSON(w, http.StatusRequestEntityTooLarge, apperror.ErrorResponse{
					Message: "Upload exceeds the maximum allowed size",
				})
				return
			}
			apperror.WriteError(w, apperror.NewValidationError("Invalid multipart form", err))
			return
		}

		videoFile, videoHeader, videoErr := r.FormFile("video")
		thumbFile, thumbHeader, thumbErr := r.FormFile("thumbnail")
		if videoErr != nil || thumbErr != nil {
			apperror.WriteError(w, apperror.NewValidationError("Both video and thumbnail are required", nil))
			return
		}
		defer videoFile.Close()
		defer thumbFile.Close()

		in := CreateVideoInput{
			Title:       r.FormValue("title"),
			Description: r.FormValue("description"),
			Category:    r.FormValue("category"),
			Tags:        r.FormValue("tags"),
		}

		video, err := h.service.Create(r.Context(), user, in,
			Upload{Reader: videoFile, Filename: videoHeader.Filename, ContentType: videoHeader.Header.Get("Content-Type"), Size: videoHeader.Size},
			Upload{Reader: thumbFile, Filename: thumbHeader.Filename, ContentType: thumbHeader.Header.Get("Content-Type"), Size: thumbHeader.Size},
		)
		if err != nil {
			apperror.WriteError(w, err)
			return
		}
		apperror.WriteJSON(w, http.StatusCreated, video)
	}
}

// HandleList handles GET /api/videos.
//
//	@Summary		List public videos
//	@Description	Returns a page of public videos, newest first, optionally filtered by category, tag or search text.
//	@Tags			videos
//	@Produce		json
//	@Param			page		query	int		false	"Page number"
//	@Param			limit		query	int		false	"Page size"
//	@Param			category	query	string	false	"Category filter"
//	@Param			tag			query	string	false	"Tag filter"
//	@Param			search		query	string	false	"Title/description search"
//	@Success		200	{object}	ListResponse
//	@Router			/api/videos [get]
func (h *Handlers) HandleList() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		viewer, _ := auth.UserFromContext(r.Context())
		q := ListQuery{
			Category: r.URL.Query().Get("category"),
			Tag:      r.URL.Query().Get("tag"),
			Search:   r.URL.Query().Get("search"),
		}
		resp, err := h.service.List(r.Context(), q, pagination.FromRequest(r), viewer)
		if err != nil {
			apperror.WriteError(w, err)
			return
		}
		apperror.WriteJSON(w, http.StatusOK, resp)
	}
}

// HandleGet handles GET /api/videos/{id}.
//
//	@Summary		Get a video
//	@Description	Returns one video with its comments, and counts the view.
//	@Tags			videos
//	@Produce		json
//	@Param			id	path		string	true	"Video id"
//	@Success		200	{object}	Video
//	@Failure		404	{object}	apperror.ErrorResponse
//	@Router			/api/videos/{id} [get]
func (h *Handlers) HandleGet() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		viewer, _ := auth.UserFromContext(r.Context())
		video, err := h.service.Get(r.Context(), chi.URLParam(r, "id"), viewer)
		if err != nil {
			apperror.WriteError(w, err)
			return
		}
		apperror.WriteJSON(w, http.StatusOK, video)
	}
}

// HandleUpdate handles PATCH /api/videos/{id}.
//
//	@Summary		Update a video
//	@Description	Applies a partial update to a video owned by the caller.
//	@Tags			videos
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id		path		string				true	"Video id"
//	@Param			request	body		UpdateVideoRequest	true	"Fields to update"
//	@Success		200	{object}	Video
//	@Failure		400	{object}	apperror.ErrorResponse
//	@Failure		404	{object}	apperror.ErrorResponse
//	@Router			/api/videos/{id} [patch]
func (h *Handlers) HandleUpdate() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := auth.UserFromContext(r.Context())
		if !ok {
			apperror.WriteError(w, apperror.NewAuthError("Authentication required", nil))
			return
		}

		var req UpdateVideoRequest
		if err := decodeStrict(r, &req); err != nil {
			apperror.WriteError(w, err)
			return
		}
		if req.Empty() {
			apperror.WriteError(w, apperror.NewValidationError("No fields provided for update", nil))
			return
		}

		video, err := h.service.Update(r.Context(), chi.URLParam(r, "id"), user.ID, &req)
		if err != nil {
			apperror.WriteError(w, err)
			return
		}
		apperror.WriteJSON(w, http.StatusOK, video)
	}
}

// HandleDelete handles DELETE /api/videos/{id}.
//
//	@Summary		Delete a video
//	@Description	Deletes a video owned by the caller, including its stored files.
//	@Tags			videos
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		string	true	"Video id"
//	@Success		200	{object}	map[string]string
//	@Failure		404	{object}	apperror.ErrorResponse
//	@Router			/api/videos/{id} [delete]
func (h *Handlers) HandleDelete() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := auth.UserFromContext(r.Context())
		if !ok {
			apperror.WriteError(w, apperror.NewAuthError("Authentication required", nil))
			return
		}
		if err := h.service.Delete(r.Context(), chi.URLParam(r, "id"), user.ID); err != nil {
			apperror.WriteError(w, err)
			return
		}
		apperror.WriteJSON(w, http.StatusOK, map[string]string{"message": "Video deleted successfully"})
	}
}

// HandleToggleReaction handles POST /api/videos/{id}/like and
// POST /api/videos/{id}/dislike.
//
//	@Summary		Toggle a reaction
//	@Description	Adds the reaction, removes it if already held, or replaces the opposite one.
//	@Tags			videos
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		string	true	"Video id"
//	@Success		200	{object}	ReactionResponse
//	@Failure		404	{object}	apperror.ErrorResponse
//	@Router			/api/videos/{id}/like [post]
func (h *Handlers) HandleToggleReaction(want Reaction) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := auth.UserFromContext(r.Context())
		if !ok {
			apperror.WriteError(w, apperror.NewAuthError("Authentication required", nil))
			return
		}
		resp, err := h.service.ToggleReaction(r.Context(), chi.URLParam(r, "id"), user.ID, want)
		if err != nil {
			apperror.WriteError(w, err)
			return
		}
		apperror.WriteJSON(w, http.StatusOK, resp)
	}
}

// HandleAddComment handles POST /api/videos/{id}/comments.
//
//	@Summary		Add a comment
//	@Tags			videos
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id		path		string			true	"Video id"
//	@Param			request	body		CommentRequest	true	"Comment text"
//	@Success		201	{object}	Comment
//	@Failure		400	{object}	apperror.ErrorResponse
//	@Failure		404	{object}	apperror.ErrorResponse
//	@Router			/api/videos/{id}/comments [post]
func (h *Handlers) HandleAddComment() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := auth.UserFromContext(r.Context())
		if !ok {
			apperror.WriteError(w, apperror.NewAuthError("Authentication required", nil))
			return
		}
		var req CommentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			apperror.WriteError(w, apperror.NewValidationError("Invalid request body", err))
			return
		}
		comment, err := h.service.AddComment(r.Context(), chi.URLParam(r, "id"), user, req.Text)
		if err != nil {
			apperror.WriteError(w, err)
			return
		}
		apperror.WriteJSON(w, http.StatusCreated, comment)
	}
}

// HandleListComments handles GET /api/videos/{id}/comments.
//
//	@Summary		List comments
//	@Tags			videos
//	@Produce		json
//	@Param			id	path		string	true	"Video id"
//	@Success		200	{array}		Comment
//	@Router			/api/videos/{id}/comments [get]
func (h *Handlers) HandleListComments() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		comments, err := h.service.ListComments(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			apperror.WriteError(w, err)
			return
		}
		apperror.WriteJSON(w, http.StatusOK, comments)
	}
}
