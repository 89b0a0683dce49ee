package dashboard

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"cherryblossom/internal/analysis"
	"cherryblossom/internal/httpx"
	"cherryblossom/internal/results"
)

type HTTPHandler struct {
	svc *Service
}

func NewHTTPHandler(svc *Service) *HTTPHandler {
	return &HTTPHandler{svc: svc}
}

func (h *HTTPHandler) internalError(w http.ResponseWriter, r *http.Request, op string, err error) {
	log.Printf("dashboard %s failed request_id=%s error=%v", op, httpx.RequestIDFrom(r), err)
	httpx.JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
}

func (h *HTTPHandler) filter(w http.ResponseWriter, r *http.Request) (Filter, bool) {
	f, details := ParseFilter(r.URL.Query())
	if len(details) > 0 {
		httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid filter", details)
		return Filter{}, false
	}
	return f, true
}

// Years handles GET /v1/years
// @Summary List current datasets
// @Tags results
// @Produce json
// @Success 200 {object} httpx.SuccessResponse
// @Failure 500 {object} httpx.ErrorResponse
// @Router /v1/years [get]
func (h *HTTPHandler) Years(w http.ResponseWriter, r *http.Request) {
	datasets, err := h.svc.Years(r.Context())
	if err != nil {
		h.internalError(w, r, "years", err)
		return
	}
	if datasets == nil {
		datasets = []results.Dataset{}
	}
	httpx.JSONSuccess(w, r, datasets, nil)
}

// History handles GET /v1/years/{year}/datasets
// @Summary List dataset versions of a year
// @Tags results
// @Produce json
// @Param year path int true "Race year"
// @Success 200 {object} httpx.SuccessResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Router /v1/years/{year}/datasets [get]
func (h *HTTPHandler) History(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(r.PathValue("year"))
	if err != nil || year <= 0 {
		httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid year", []httpx.ErrorDetail{
			{Field: "year", Message: "year must be a positive integer"},
		})
		return
	}

	datasets, err := h.svc.History(r.Context(), year)
	if err != nil {
		if errors.Is(err, results.ErrNotFound) {
			httpx.JSONError(w, r, http.StatusNotFound, "NOT_FOUND", "No datasets for year", nil)
			return
		}
		h.internalError(w, r, "history", err)
		return
	}
	httpx.JSONSuccess(w, r, datasets, nil)
}

// Results handles GET /v1/results
// @Summary List results
// @Description Filtered, sorted and paged results of the current datasets
// @Tags results
// @Produce json
// @Param year query int false "Race year, repeatable"
// @Param gender query string false "M, F, X or U"
// @Param age_group query string false "Age group label, e.g. 30-34"
// @Param state query string false "Two letter state code"
// @Param region query string false "Census region"
// @Param local query bool false "DC, MD and VA runners only"
// @Param name query string false "Name contains"
// @Param sort query string false "place, finish, pace, age or name" default(place)
// @Param desc query bool false "Descending order"
// @Param page query int false "Page number" default(1)
// @Param page_size query int false "Items per page" default(20)
// @Success 200 {object} httpx.SuccessResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 500 {object} httpx.ErrorResponse
// @Router /v1/results [get]
func (h *HTTPHandler) Results(w http.ResponseWriter, r *http.Request) {
	f, ok := h.filter(w, r)
	if !ok {
		return
	}
	query := r.URL.Query()
	page, pageSize := Pagination(query)
	sort, desc := ParseSort(query)

	records, total, err := h.svc.Results(r.Context(), f, sort, desc, pageSize, (page-1)*pageSize)
	if err != nil {
		h.internalError(w, r, "results", err)
		return
	}
	if records == nil {
		records = []results.Record{}
	}

	httpx.JSONSuccess(w, r, records, map[string]any{
		"page":        page,
		"page_size":   pageSize,
		"total":       total,
		"total_pages": (total + pageSize - 1) / pageSize,
	})
}

// Summary handles GET /v1/stats/summary
// @Summary Summary statistics
// @Tags stats
// @Produce json
// @Success 200 {object} httpx.SuccessResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Router /v1/stats/summary [get]
func (h *HTTPHandler) Summary(w http.ResponseWriter, r *http.Request) {
	f, ok := h.filter(w, r)
	if !ok {
		return
	}
	summary, err := h.svc.Summary(r.Context(), f)
	if err != nil {
		h.internalError(w, r, "summary", err)
		return
	}
	httpx.JSONSuccess(w, r, summary, nil)
}

// PaceDistribution handles GET /v1/charts/pace-distribution
// @Summary Pace histogram
// @Tags charts
// @Produce json
// @Param bin query int false "Bin width in seconds" default(30)
// @Success 200 {object} httpx.SuccessResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Router /v1/charts/pace-distribution [get]
func (h *HTTPHandler) PaceDistribution(w http.ResponseWriter, r *http.Request) {
	f, ok := h.filter(w, r)
	if !ok {
		return
	}
	bin := analysis.DefaultPaceBin
	if raw := r.URL.Query().Get("bin"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 5 || v > 600 {
			httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid bin", []httpx.ErrorDetail{
				{Field: "bin", Message: "bin must be between 5 and 600 seconds"},
			})
			return
		}
		bin = v
	}

	bins, err := h.svc.PaceDistribution(r.Context(), f, bin)
	if err != nil {
		h.internalError(w, r, "pace distribution", err)
		return
	}
	if len(bins) > 0 {
		bin = bins[0].End - bins[0].Start
	}
	httpx.JSONSuccess(w, r, bins, map[string]any{"bin_seconds": bin})
}

// Participation handles GET /v1/charts/participation
// @Summary Finishers per year
// @Description Trend over every current year; the year filter is ignored
// @Tags charts
// @Produce json
// @Success 200 {object} httpx.SuccessResponse
// @Router /v1/charts/participation [get]
func (h *HTTPHandler) Participation(w http.ResponseWriter, r *http.Request) {
	f, ok := h.filter(w, r)
	if !ok {
		return
	}
	trend, err := h.svc.Participation(r.Context(), f)
	if err != nil {
		h.internalError(w, r, "participation", err)
		return
	}
	httpx.JSONSuccess(w, r, trend, nil)
}

// FinishBy handles GET /v1/charts/finish-by/{group}
// @Summary Finish time by group
// @Tags charts
// @Produce json
// @Param group path string true "gender, age_group, region or year"
// @Success 200 {object} httpx.SuccessResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Router /v1/charts/finish-by/{group} [get]
func (h *HTTPHandler) FinishBy(w http.ResponseWriter, r *http.Request) {
	by, ok := analysis.ParseGroupBy(r.PathValue("group"))
	if !ok {
		httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid group", []httpx.ErrorDetail{
			{Field: "group", Message: "group must be one of gender, age_group, region, year"},
		})
		return
	}
	f, ok := h.filter(w, r)
	if !ok {
		return
	}
	stats, err := h.svc.FinishBy(r.Context(), f, by)
	if err != nil {
		h.internalError(w, r, "finish by", err)
		return
	}
	httpx.JSONSuccess(w, r, stats, map[string]any{"group_by": by})
}

// ExportCSV handles GET /v1/export.csv
// @Summary Export results as CSV
// @Tags export
// @Produce text/csv
// @Success 200 {file} file
// @Failure 400 {object} httpx.ErrorResponse
// @Router /v1/export.csv [get]
func (h *HTTPHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	f, ok := h.filter(w, r)
	if !ok {
		return
	}
	records, err := h.svc.Records(r.Context(), f)
	if err != nil {
		h.internalError(w, r, "export csv", err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="cherry-blossom-results.csv"`)
	if err := WriteCSV(w, records); err != nil {
		log.Printf("dashboard export csv write failed request_id=%s error=%v", httpx.RequestIDFrom(r), err)
	}
}

// ExportXLSX handles GET /v1/export.xlsx
// @Summary Export results as an Excel workbook
// @Description Results sheet plus a Dictionary sheet describing every column
// @Tags export
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success 200 {file} file
// @Failure 400 {object} httpx.ErrorResponse
// @Router /v1/export.xlsx [get]
func (h *HTTPHandler) ExportXLSX(w http.ResponseWriter, r *http.Request) {
	f, ok := h.filter(w, r)
	if !ok {
		return
	}
	records, err := h.svc.Records(r.Context(), f)
	if err != nil {
		h.internalError(w, r, "export xlsx", err)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="cherry-blossom-results.xlsx"`)
	if err := WriteXLSX(w, records); err != nil {
		log.Printf("dashboard export xlsx write failed request_id=%s error=%v", httpx.RequestIDFrom(r), err)
	}
}
