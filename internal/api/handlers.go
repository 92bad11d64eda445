package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/starford/notestxt/internal/apperr"
	"github.com/starford/notestxt/internal/noteservice"
)

// Handler holds API route handlers.
type Handler struct {
	svc *noteservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *noteservice.Service) *Handler {
	return &Handler{svc: svc}
}

// writeNote sends a note with its version as ETag, the value clients echo
// back in If-Match.
func writeNote(w http.ResponseWriter, status int, n *NoteDetail) {
	w.Header().Set("ETag", strconv.Quote(n.Version))
	writeJSON(w, status, n)
}

// SelectNotes handles GET /notes.
//
//	@Summary		Select notes with the selection syntax
//	@Tags			notes
//	@Produce		json
//	@Param			q		query		string	false	"Selection, e.g. \"! #work bank\""
//	@Param			limit	query		int		false	"Max items"
//	@Success		200		{object}	SelectResponse
//	@Security		BearerAuth
//	@Router			/notes [get]
func (h *Handler) SelectNotes(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	writeJSON(w, http.StatusOK, h.svc.Select(r.Context(), q.Get("q"), limit))
}

// GetNote handles GET /notes/{id}.
//
//	@Summary		Get a single note by id
//	@Tags			notes
//	@Produce		json
//	@Param			id	path		string	true	"Note id"
//	@Success		200	{object}	NoteDetail
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes/{id} [get]
func (h *Handler) GetNote(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	note, err := h.svc.GetNote(r.Context(), id)
	if err != nil {
		h.fail(w, "get note", id, err)
		return
	}
	writeNote(w, http.StatusOK, note)
}

// CreateNote handles POST /notes.
//
//	@Summary		Create a note in this machine's file
//	@Tags			notes
//	@Accept			json
//	@Produce		json
//	@Param			body	body		CreateNoteRequest	true	"Note to create"
//	@Success		201		{object}	NoteDetail
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes [post]
func (h *Handler) CreateNote(w http.ResponseWriter, r *http.Request) {
	var req CreateNoteRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	note, err := h.svc.CreateNote(r.Context(), req.Text)
	if err != nil {
		h.fail(w, "create note", "", err)
		return
	}
	writeNote(w, http.StatusCreated, note)
}

// UpdateNote handles PUT /notes/{id}.
//
//	@Summary		Replace a note's text
//	@Tags			notes
//	@Accept			json
//	@Produce		json
//	@Param			id			path		string				true	"Note id"
//	@Param			If-Match	header		string				false	"Version (ETag) the edit is based on"
//	@Param			draft		query		bool				false	"Keep the edit in memory without saving"
//	@Param			body		body		UpdateNoteRequest	true	"New text"
//	@Success		200			{object}	NoteDetail
//	@Failure		400			{object}	errResponse
//	@Failure		404			{object}	errResponse
//	@Failure		409			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes/{id} [put]
func (h *Handler) UpdateNote(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req UpdateNoteRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("text is required; use DELETE to remove a note"))
		return
	}
	ifMatch := strings.Trim(r.Header.Get("If-Match"), `"`)
	draft, _ := strconv.ParseBool(r.URL.Query().Get("draft"))

	note, err := h.svc.UpdateNote(r.Context(), id, req.Text, ifMatch, draft)
	if err != nil {
		h.fail(w, "update note", id, err)
		return
	}
	writeNote(w, http.StatusOK, note)
}

// SetCreated handles PUT /notes/{id}/created.
//
//	@Summary		Change a note's creation date
//	@Tags			notes
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string				true	"Note id"
//	@Param			body	body		SetCreatedRequest	true	"New date"
//	@Success		200		{object}	NoteDetail
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes/{id}/created [put]
func (h *Handler) SetCreated(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req SetCreatedRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	note, err := h.svc.SetCreated(r.Context(), id, req.Created)
	if err != nil {
		h.fail(w, "set created", id, err)
		return
	}
	writeNote(w, http.StatusOK, note)
}

// DeleteNote handles DELETE /notes/{id}.
//
//	@Summary		Delete a note from every file
//	@Tags			notes
//	@Param			id	path	string	true	"Note id"
//	@Success		204	"Note deleted"
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes/{id} [delete]
func (h *Handler) DeleteNote(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.svc.DeleteNote(r.Context(), id); err != nil {
		h.fail(w, "delete note", id, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Tags handles GET /tags.
//
//	@Summary		Tag vocabulary and the tag cover of a selection
//	@Tags			tags
//	@Produce		json
//	@Param			q	query		string	false	"Selection"
//	@Success		200	{object}	TagsResponse
//	@Security		BearerAuth
//	@Router			/tags [get]
func (h *Handler) Tags(w http.ResponseWriter, r *http.Request) {
	sel := h.svc.Select(r.Context(), r.URL.Query().Get("q"), 0)
	writeJSON(w, http.StatusOK, TagsResponse{
		Tags:      h.svc.Tags(r.Context()),
		Strict:    sel.Strict,
		NonStrict: sel.NonStrict,
	})
}

// Sync handles POST /sync.
//
//	@Summary		Merge external changes to the note files now
//	@Tags			sync
//	@Produce		json
//	@Success		200	{object}	SyncResponse
//	@Security		BearerAuth
//	@Router			/sync [post]
func (h *Handler) Sync(w http.ResponseWriter, r *http.Request) {
	changed, err := h.svc.Refresh(r.Context())
	conflict := errors.Is(err, apperr.ErrConflict)
	if err != nil && !conflict {
		h.fail(w, "sync", "", err)
		return
	}
	if changed == nil {
		changed = []string{}
	}
	writeJSON(w, http.StatusOK, SyncResponse{Changed: changed, Conflict: conflict})
}

// Status handles GET /status.
//
//	@Summary		Note counts and files in use
//	@Tags			sync
//	@Produce		json
//	@Success		200	{object}	StatusResponse
//	@Security		BearerAuth
//	@Router			/status [get]
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	st := h.svc.Status(r.Context())
	writeJSON(w, http.StatusOK, StatusResponse{Status: st, Line: st.Line()})
}

func (h *Handler) fail(w http.ResponseWriter, op, id string, err error) {
	var pw *apperr.ParseWarning
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
	case errors.Is(err, apperr.ErrConflict):
		writeJSON(w, http.StatusConflict, errorBody("note was modified since If-Match"))
	case errors.As(err, &pw):
		writeJSON(w, http.StatusBadRequest, errorBody(pw.Error()))
	default:
		slog.Error("api: "+op+" failed", slog.String("id", id), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
	}
}
