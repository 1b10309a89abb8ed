package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "github.com/ThomasTsao0704/stock-analysis-app/internal/errors"
	"github.com/ThomasTsao0704/stock-analysis-app/pkg/contracts/domain"
)

// NoteHandler serves the append-only analysis note log.
type NoteHandler struct {
	service NoteServiceInterface
	logger  *slog.Logger
}

// NewNoteHandler creates a note handler.
func NewNoteHandler(service NoteServiceInterface, logger *slog.Logger) *NoteHandler {
	return &NoteHandler{
		service: service,
		logger:  logger.With(slog.String("component", "note_handler")),
	}
}

// Routes returns the note routes.
func (h *NoteHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/", h.GetNotes)
	r.Post("/", h.CreateNote)

	return r
}

// GetNotes handles GET /api/notes.
func (h *NoteHandler) GetNotes(w http.ResponseWriter, r *http.Request) {
	notes, err := h.service.LoadAll()
	if err != nil {
		h.logger.ErrorContext(r.Context(), "loading notes failed",
			slog.String("error", err.Error()))
		renderError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   notes,
		"count":  len(notes),
	})
}

// CreateNote handles POST /api/notes.
func (h *NoteHandler) CreateNote(w http.ResponseWriter, r *http.Request) {
	var note domain.AnalysisNote
	if err := json.NewDecoder(r.Body).Decode(&note); err != nil {
		renderError(w, r, apierrors.NewValidationError("request body is not a valid note", err))
		return
	}

	if err := h.service.Append(note); err != nil {
		h.logger.ErrorContext(r.Context(), "appending note failed",
			slog.String("code", note.Code),
			slog.String("error", err.Error()))
		renderError(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "note recorded", slog.String("code", note.Code))
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, map[string]interface{}{
		"status": "success",
	})
}
