package http

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	apierrors "github.com/ThomasTsao0704/stock-analysis-app/internal/errors"
	"github.com/ThomasTsao0704/stock-analysis-app/internal/services"
)

// ScreenHandler serves screen runs, per-code history and the run log.
type ScreenHandler struct {
	service ScreenServiceInterface
	logger  *slog.Logger
}

// NewScreenHandler creates a screen handler.
func NewScreenHandler(service ScreenServiceInterface, logger *slog.Logger) *ScreenHandler {
	return &ScreenHandler{
		service: service,
		logger:  logger.With(slog.String("component", "screen_handler")),
	}
}

// Routes returns the screen routes.
func (h *ScreenHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/screens", h.GetScreens)
	r.Get("/runs", h.GetRuns)

	r.Route("/ticker/{code}", func(r chi.Router) {
		r.Get("/history", h.GetTickerHistory)
	})

	return r
}

// GetScreens handles GET /api/screens.
func (h *ScreenHandler) GetScreens(w http.ResponseWriter, r *http.Request) {
	req, err := screenRequestFromQuery(r)
	if err != nil {
		renderError(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "running screens",
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.String("date", req.Date),
		slog.Int("window", req.Window))

	result, err := h.service.Run(r.Context(), req)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "screen run failed",
			slog.String("error", err.Error()))
		renderError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   result,
	})
}

// GetTickerHistory handles GET /api/ticker/{code}/history.
func (h *ScreenHandler) GetTickerHistory(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	req, err := screenRequestFromQuery(r)
	if err != nil {
		renderError(w, r, err)
		return
	}

	history, err := h.service.History(r.Context(), req, code)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "history lookup failed",
			slog.String("code", code),
			slog.String("error", err.Error()))
		renderError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"code":   code,
		"data":   history,
		"count":  len(history),
	})
}

// GetRuns handles GET /api/runs.
func (h *ScreenHandler) GetRuns(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			renderError(w, r, apierrors.NewValidationError("limit must be a positive integer", err))
			return
		}
		limit = n
	}

	runs, err := h.service.RecentRuns(limit)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "run log lookup failed",
			slog.String("error", err.Error()))
		renderError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   runs,
		"count":  len(runs),
	})
}

// screenRequestFromQuery builds a ScreenRequest from query parameters.
// Unset parameters stay zero and fall back to service defaults.
func screenRequestFromQuery(r *http.Request) (services.ScreenRequest, error) {
	q := r.URL.Query()
	req := services.ScreenRequest{
		Locator: q.Get("locator"),
		Date:    q.Get("date"),
		Refresh: q.Get("refresh") == "true",
	}
	if req.Locator == "" {
		return req, apierrors.NewValidationError("locator query parameter is required", nil)
	}

	var err error
	if req.Window, err = intParam(q.Get("window")); err != nil {
		return req, apierrors.NewValidationError("window must be an integer", err)
	}
	if req.TopN, err = intParam(q.Get("top_n")); err != nil {
		return req, apierrors.NewValidationError("top_n must be an integer", err)
	}
	if req.LimitUpThreshold, err = floatParam(q.Get("limit_up_threshold")); err != nil {
		return req, apierrors.NewValidationError("limit_up_threshold must be a number", err)
	}
	if req.VolumeMultiple, err = floatParam(q.Get("volume_multiple")); err != nil {
		return req, apierrors.NewValidationError("volume_multiple must be a number", err)
	}
	return req, nil
}

func intParam(v string) (int, error) {
	if v == "" {
		return 0, nil
	}
	return strconv.Atoi(v)
}

func floatParam(v string) (float64, error) {
	if v == "" {
		return 0, nil
	}
	return strconv.ParseFloat(v, 64)
}

// renderError writes the JSON error body for err with its mapped status.
func renderError(w http.ResponseWriter, r *http.Request, err error) {
	_ = render.Render(w, r, apierrors.ToAPIError(err))
}
