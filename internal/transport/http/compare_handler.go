package http

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "github.com/ThomasTsao0704/stock-analysis-app/internal/errors"
)

// CompareHandler serves the multi-stock close comparison.
type CompareHandler struct {
	service CompareServiceInterface
	logger  *slog.Logger
}

// NewCompareHandler creates a compare handler.
func NewCompareHandler(service CompareServiceInterface, logger *slog.Logger) *CompareHandler {
	return &CompareHandler{
		service: service,
		logger:  logger.With(slog.String("component", "compare_handler")),
	}
}

// Routes returns the compare routes.
func (h *CompareHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/", h.GetCompare)

	return r
}

// GetCompare handles GET /api/compare?codes=2330,1101.
func (h *CompareHandler) GetCompare(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("codes")
	if raw == "" {
		renderError(w, r, apierrors.NewValidationError("codes query parameter is required", nil))
		return
	}

	result, err := h.service.Compare(r.Context(), strings.Split(raw, ","))
	if err != nil {
		h.logger.ErrorContext(r.Context(), "comparison failed",
			slog.String("codes", raw),
			slog.String("error", err.Error()))
		renderError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   result,
	})
}
