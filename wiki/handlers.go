package wiki

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/medaruler/unlocked-library/apperror"
	"github.com/medaruler/unlocked-library/auth"
	"github.com/medaruler/unlocked-library/pagination"
)

// Handlers exposes the wiki endpoints.
type Handlers struct {
	service  *WikiService
	validate *validator.Validate
}

// NewHandlers creates wiki Handlers.
func NewHandlers(service *WikiService) *Handlers {
	return &Handlers{service: service, validate: validator.New()}
}

// RegisterRoutes mounts the wiki endpoints. Reads work without a token,
// subject to each article's visibility.
func (h *Handlers) RegisterRoutes(r chi.Router, a auth.Authenticator) {
	r.Group(func(r chi.Router) {
		r.Use(auth.OptionalAuth(a))
		r.Get("/", h.HandleList())
		r.Get("/{id}", h.HandleGet())
		r.Get("/{id}/revisions", h.HandleListRevisions())
		r.Get("/{id}/contributors", h.HandleListContributors())
	})
	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth(a))
		r.Post("/", h.HandleCreate())
		r.Patch("/{id}", h.HandleUpdate())
		r.Delete("/{id}", h.HandleDelete())
		r.Post("/{id}/like", h.HandleLike())
		r.Post("/{id}/revisions", h.HandleAddRevision())
		r.Post("/{id}/contributors", h.HandleAddContributor())
	})
}

func (h *Handlers) decode(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperror.NewValidationError("Invalid request body", err)
	}
	if err := h.validate.Struct(dst); err != nil {
		return apperror.NewValidationError("Validation failed", err)
	}
	return nil
}

func decodeStrict(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return apperror.NewValidationError("Invalid updates", err)
	}
	return nil
}

func requireUser(w http.ResponseWriter, r *http.Request) (*auth.User, bool) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		apperror.WriteError(w, apperror.NewAuthError("Authentication required", nil))
		return nil, false
	}
	return user, true
}

// HandleCreate handles POST /api/wiki.
//
//	@Summary		Create an article
//	@Description	Creates a wiki article. Creation records no revision; history starts with the first edit.
//	@Tags			wiki
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		CreateArticleRequest	true	"Article"
//	@Success		201	{object}	Article
//	@Failure		400	{object}	apperror.ErrorResponse
//	@Router			/api/wiki [post]
func (h *Handlers) HandleCreate() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := requireUser(w, r)
		if !ok {
			return
		}
		var req CreateArticleRequest
		if err := h.decode(r, &req); err != nil {
			apperror.WriteError(w, err)
			return
		}
		article, err := h.service.Create(r.Context(), user, &req)
		if err != nil {
			apperror.WriteError(w, err)
			return
		}
		apperror.WriteJSON(w, http.StatusCreated, article)
	}
}

// HandleList handles GET /api/wiki.
//
//	@Summary		List articles
//	@Description	Returns a page of published, public articles, newest first.
//	@Tags			wiki
//	@Produce		json
//	@Param			page		query	int		false	"Page number"
//	@Param			limit		query	int		false	"Page size"
//	@Param			category	query	string	false	"Category filter"
//	@Param			tag			query	string	false	"Tag filter"
//	@Param			search		query	string	false	"Title/content search"
//	@Success		200	{object}	ListResponse
//	@Router			/api/wiki [get]
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

// HandleGet handles GET /api/wiki/{id}.
//
//	@Summary		Get an article
//	@Description	Returns one article and counts the view.
//	@Tags			wiki
//	@Produce		json
//	@Param			id	path		string	true	"Article id"
//	@Success		200	{object}	Article
//	@Failure		404	{object}	apperror.ErrorResponse
//	@Router			/api/wiki/{id} [get]
func (h *Handlers) HandleGet() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		viewer, _ := auth.UserFromContext(r.Context())
		article, err := h.service.Get(r.Context(), chi.URLParam(r, "id"), viewer)
		if err != nil {
			apperror.WriteError(w, err)
			return
		}
		apperror.WriteJSON(w, http.StatusOK, article)
	}
}

// HandleUpdate handles PATCH /api/wiki/{id}.
//
//	@Summary		Update an article
//	@Description	Applies a partial update. A content change records the previous text as a revision.
//	@Tags			wiki
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id		path		string					true	"Article id"
//	@Param			request	body		UpdateArticleRequest	true	"Fields to update"
//	@Success		200	{object}	Article
//	@Failure		400	{object}	apperror.ErrorResponse
//	@Failure		404	{object}	apperror.ErrorResponse
//	@Router			/api/wiki/{id} [patch]
func (h *Handlers) HandleUpdate() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := requireUser(w, r)
		if !ok {
			return
		}
		var req UpdateArticleRequest
		if err := decodeStrict(r, &req); err != nil {
			apperror.WriteError(w, err)
			return
		}
		if req.Empty() {
			apperror.WriteError(w, apperror.NewValidationError("No fields provided for update", nil))
			return
		}
		article, err := h.service.Update(r.Context(), chi.URLParam(r, "id"), user, &req)
		if err != nil {
			apperror.WriteError(w, err)
			return
		}
		apperror.WriteJSON(w, http.StatusOK, article)
	}
}

// HandleDelete handles DELETE /api/wiki/{id}.
//
//	@Summary		Delete an article
//	@Tags			wiki
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		string	true	"Article id"
//	@Success		200	{object}	map[string]string
//	@Failure		404	{object}	apperror.ErrorResponse
//	@Router			/api/wiki/{id} [delete]
func (h *Handlers) HandleDelete() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := requireUser(w, r)
		if !ok {
			return
		}
		if err := h.service.Delete(r.Context(), chi.URLParam(r, "id"), user.ID); err != nil {
			apperror.WriteError(w, err)
			return
		}
		apperror.WriteJSON(w, http.StatusOK, map[string]string{"message": "Article deleted successfully"})
	}
}

// HandleLike handles POST /api/wiki/{id}/like.
//
//	@Summary		Toggle like
//	@Description	Likes the article, or removes the like if already present.
//	@Tags			wiki
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		string	true	"Article id"
//	@Success		200	{object}	LikeResponse
//	@Failure		404	{object}	apperror.ErrorResponse
//	@Router			/api/wiki/{id}/like [post]
func (h *Handlers) HandleLike() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := requireUser(w, r)
		if !ok {
			return
		}
		resp, err := h.service.ToggleLike(r.Context(), chi.URLParam(r, "id"), user.ID)
		if err != nil {
			apperror.WriteError(w, err)
			return
		}
		apperror.WriteJSON(w, http.StatusOK, resp)
	}
}

// HandleAddRevision handles POST /api/wiki/{id}/revisions.
//
//	@Summary		Snapshot the article
//	@Description	Records the article's current content as a manual revision.
//	@Tags			wiki
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id		path		string				true	"Article id"
//	@Param			request	body		AddRevisionRequest	true	"Change description"
//	@Success		201	{object}	Revision
//	@Failure		404	{object}	apperror.ErrorResponse
//	@Router			/api/wiki/{id}/revisions [post]
func (h *Handlers) HandleAddRevision() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := requireUser(w, r)
		if !ok {
			return
		}
		var req AddRevisionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			apperror.WriteError(w, apperror.NewValidationError("Invalid request body", err))
			return
		}
		rev, err := h.service.AddRevision(r.Context(), chi.URLParam(r, "id"), user, &req)
		if err != nil {
			apperror.WriteError(w, err)
			return
		}
		apperror.WriteJSON(w, http.StatusCreated, rev)
	}
}

// HandleListRevisions handles GET /api/wiki/{id}/revisions.
//
//	@Summary		List revisions
//	@Description	Returns the article's edit history, oldest first.
//	@Tags			wiki
//	@Produce		json
//	@Param			id	path		string	true	"Article id"
//	@Success		200	{array}		Revision
//	@Failure		404	{object}	apperror.ErrorResponse
//	@Router			/api/wiki/{id}/revisions [get]
func (h *Handlers) HandleListRevisions() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		viewer, _ := auth.UserFromContext(r.Context())
		revisions, err := h.service.ListRevisions(r.Context(), chi.URLParam(r, "id"), viewer)
		if err != nil {
			apperror.WriteError(w, err)
			return
		}
		apperror.WriteJSON(w, http.StatusOK, revisions)
	}
}

// HandleAddContributor handles POST /api/wiki/{id}/contributors.
//
//	@Summary		Add a contributor
//	@Description	Grants a user access to a contributors-only article. Author only.
//	@Tags			wiki
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id		path		string					true	"Article id"
//	@Param			request	body		AddContributorRequest	true	"Contributor"
//	@Success		200	{object}	map[string]string
//	@Failure		404	{object}	apperror.ErrorResponse
//	@Router			/api/wiki/{id}/contributors [post]
func (h *Handlers) HandleAddContributor() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := requireUser(w, r)
		if !ok {
			return
		}
		var req AddContributorRequest
		if err := h.decode(r, &req); err != nil {
			apperror.WriteError(w, err)
			return
		}
		if err := h.service.AddContributor(r.Context(), chi.URLParam(r, "id"), user, &req); err != nil {
			apperror.WriteError(w, err)
			return
		}
		apperror.WriteJSON(w, http.StatusOK, map[string]string{"message": "Contributor added successfully"})
	}
}

// HandleListContributors handles GET /api/wiki/{id}/contributors.
//
//	@Summary		List contributors
//	@Tags			wiki
//	@Produce		json
//	@Param			id	path		string	true	"Article id"
//	@Success		200	{array}		Contributor
//	@Failure		404	{object}	apperror.ErrorResponse
//	@Router			/api/wiki/{id}/contributors [get]
func (h *Handlers) HandleListContributors() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		viewer, _ := auth.UserFromContext(r.Context())
		contributors, err := h.service.ListContributors(r.Context(), chi.URLParam(r, "id"), viewer)
		if err != nil {
			apperror.WriteError(w, err)
			return
		}
		apperror.WriteJSON(w, http.StatusOK, contributors)
	}
}
