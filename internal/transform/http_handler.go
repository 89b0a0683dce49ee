package transform

import (
	"errors"
	"net/http"
	"strconv"

	"cherryblossom/internal/httpx"
)

type HTTPHandler struct {
	svc *Service
}

func NewHTTPHandler(svc *Service) *HTTPHandler {
	return &HTTPHandler{svc: svc}
}

// Transform handles POST /internal/jobs/transform
// @Summary Publish cleaned datasets
// @Description Clean the latest completed collection of one year, or of every configured year when year is omitted, and publish a new dataset version.
// @Tags internal
// @Produce json
// @Security BearerAuth
// @Param year query int false "Race year"
// @Success 200 {object} httpx.SuccessResponse
// @Success 207 {object} httpx.SuccessResponse "Some years failed"
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 401 {object} httpx.ErrorResponse
// @Failure 409 {object} httpx.ErrorResponse
// @Failure 500 {object} httpx.ErrorResponse
// @Router /internal/jobs/transform [post]
func (h *HTTPHandler) Transform(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("year")
	if raw == "" {
		reports, err := h.svc.TransformAll(r.Context())
		switch {
		case err == nil:
			httpx.JSONSuccess(w, r, reports, nil)
		case published(reports) == 0:
			details := make([]httpx.ErrorDetail, 0)
			for _, msg := range errorMessages(err) {
				details = append(details, httpx.ErrorDetail{Field: "year", Message: msg})
			}
			httpx.JSONError(w, r, http.StatusInternalServerError, "TRANSFORM_FAILED", "No year was published", details)
		default:
			httpx.JSONMultiStatus(w, r, reports, map[string]any{"errors": errorMessages(err)})
		}
		return
	}

	year, err := strconv.Atoi(raw)
	if err != nil {
		httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid year", []httpx.ErrorDetail{
			{Field: "year", Message: "year must be an integer"},
		})
		return
	}

	report, err := h.svc.Transform(r.Context(), year)
	switch {
	case errors.Is(err, ErrUnknownYear):
		httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid year", []httpx.ErrorDetail{
			{Field: "year", Message: "year must be one of the configured race years"},
		})
	case errors.Is(err, ErrNoCompletedRun):
		httpx.JSONError(w, r, http.StatusConflict, "NO_COMPLETED_RUN", "Year has no completed collection", nil)
	case errors.Is(err, ErrNothingToPublish):
		httpx.JSONError(w, r, http.StatusUnprocessableEntity, "NOTHING_TO_PUBLISH", "No records left after cleaning", nil)
	case err != nil:
		httpx.JSONError(w, r, http.StatusInternalServerError, "TRANSFORM_FAILED", "Transform failed", nil)
	default:
		httpx.JSONSuccess(w, r, report, nil)
	}
}

// published counts reports that produced a dataset version.
func published(reports []Report) int {
	n := 0
	for _, rep := range reports {
		if rep.DatasetID != "" {
			n++
		}
	}
	return n
}

func errorMessages(err error) []string {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		var out []string
		for _, e := range joined.Unwrap() {
			out = append(out, e.Error())
		}
		return out
	}
	return []string{err.Error()}
}
