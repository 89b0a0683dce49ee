package collect

import (
	"context"
	"errors"
	"log"
	"net/http"
	"slices"
	"strconv"

	"cherryblossom/internal/httpx"
)

type HTTPHandler struct {
	svc *Service
	// jobs outlive the request; they stop when base is cancelled
	base context.Context
}

func NewHTTPHandler(base context.Context, svc *Service) *HTTPHandler {
	return &HTTPHandler{svc: svc, base: base}
}

// Collect handles POST /internal/jobs/collect
// @Summary Start a collection job
// @Description Start collecting one configured year, or every configured year when year is omitted. Runs in the background.
// @Tags internal
// @Produce json
// @Security BearerAuth
// @Param year query int false "Race year"
// @Success 202 {object} httpx.SuccessResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 401 {object} httpx.ErrorResponse
// @Failure 409 {object} httpx.ErrorResponse
// @Router /internal/jobs/collect [post]
func (h *HTTPHandler) Collect(w http.ResponseWriter, r *http.Request) {
	years := h.svc.Years()
	raw := r.URL.Query().Get("year")
	if raw != "" {
		year, err := strconv.Atoi(raw)
		if err != nil || !slices.Contains(years, year) {
			httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid year", []httpx.ErrorDetail{
				{Field: "year", Message: "year must be one of the configured race years"},
			})
			return
		}
		years = []int{year}
	}

	for _, year := range years {
		if h.svc.Busy(year) {
			httpx.JSONError(w, r, http.StatusConflict, "JOB_IN_PROGRESS", "Collection already in progress for "+strconv.Itoa(year), nil)
			return
		}
	}

	requestID := httpx.RequestIDFrom(r)
	if raw == "" {
		go func() {
			if err := h.svc.Run(h.base); err != nil {
				log.Printf("collect job failed years=%v request_id=%s error=%v", years, requestID, err)
				return
			}
			log.Printf("collect job done years=%v request_id=%s", years, requestID)
		}()
	} else {
		go func() {
			year := years[0]
			run, err := h.svc.CollectYear(h.base, year)
			switch {
			case errors.Is(err, ErrInProgress):
				log.Printf("collect job skipped year=%d request_id=%s reason=in_progress", year, requestID)
			case err != nil:
				log.Printf("collect job failed year=%d request_id=%s error=%v", year, requestID, err)
			default:
				log.Printf("collect job done year=%d run_id=%s rows=%d request_id=%s", year, run.ID, run.RowsSaved, requestID)
			}
		}()
	}

	httpx.JSONAccepted(w, r, map[string]any{"status": "started", "years": years})
}

// Runs handles GET /internal/jobs/collect/runs
// @Summary List collection runs
// @Tags internal
// @Produce json
// @Security BearerAuth
// @Param year query int true "Race year"
// @Success 200 {object} httpx.SuccessResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Router /internal/jobs/collect/runs [get]
func (h *HTTPHandler) Runs(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(r.URL.Query().Get("year"))
	if err != nil {
		httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid year", []httpx.ErrorDetail{
			{Field: "year", Message: "year is required"},
		})
		return
	}

	runs, err := h.svc.Runs(r.Context(), year)
	if err != nil {
		if errors.Is(err, ErrUnknownYear) {
			httpx.JSONError(w, r, http.StatusNotFound, "NOT_FOUND", "Year is not configured", nil)
			return
		}
		httpx.JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
		return
	}
	httpx.JSONSuccess(w, r, runs, nil)
}
