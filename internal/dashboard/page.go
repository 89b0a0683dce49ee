package dashboard

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"log"
	"math"
	"net/http"
	"strconv"

	"cherryblossom/internal/analysis"
	"cherryblossom/internal/httpx"
	"cherryblossom/internal/results"
	"cherryblossom/internal/transform"
)

//go:embed templates/*.html
var templateFS embed.FS

const topResults = 25

var pageTemplate = template.Must(template.New("dashboard.html").Funcs(template.FuncMap{
	"clock":   clockMinutes,
	"seconds": transform.FormatClock,
	"pct":     func(v float64) string { return strconv.FormatFloat(v, 'f', 1, 64) + "%" },
	"deref":   func(v *int) string { return optionalInt(v) },
	"hasYear": func(years []int, y int) bool {
		for _, v := range years {
			if v == y {
				return true
			}
		}
		return false
	},
}).ParseFS(templateFS, "templates/dashboard.html"))

func clockMinutes(minutes float64) string {
	return transform.FormatClock(int(math.Round(minutes * 60)))
}

func optionalInt(v *int) string {
	if v == nil {
		return "-"
	}
	return strconv.Itoa(*v)
}

type pageData struct {
	Overview
	Errors     []httpx.ErrorDetail
	Genders    []string
	AgeGroups  []string
	Regions    []string
	PaceChart  BarChart
	TrendChart LineChart
	AgeChart   BarChart
	CSVURL     string
	XLSXURL    string
	SummaryURL string
}

type PageHandler struct {
	svc *Service
}

func NewPageHandler(svc *Service) *PageHandler {
	return &PageHandler{svc: svc}
}

// Dashboard handles GET /
func (h *PageHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	f, details := ParseFilter(r.URL.Query())
	status := http.StatusOK
	if len(details) > 0 {
		status = http.StatusBadRequest
		f = Filter{}
	}

	overview, err := h.svc.Overview(r.Context(), f, topResults)
	if err != nil {
		log.Printf("dashboard page failed request_id=%s error=%v", httpx.RequestIDFrom(r), err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	data := newPageData(overview)
	data.Errors = details

	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, data); err != nil {
		log.Printf("dashboard render failed request_id=%s error=%v", httpx.RequestIDFrom(r), err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func newPageData(o Overview) pageData {
	d := pageData{
		Overview:  o,
		Genders:   results.Genders,
		AgeGroups: results.AgeGroups,
		Regions:   transform.Regions,
	}

	query := o.Filter.Values().Encode()
	suffix := ""
	if query != "" {
		suffix = "?" + query
	}
	d.CSVURL = "/v1/export.csv" + suffix
	d.XLSXURL = "/v1/export.xlsx" + suffix
	d.SummaryURL = "/v1/stats/summary" + suffix

	labels := make([]string, len(o.Pace))
	counts := make([]float64, len(o.Pace))
	for i, b := range o.Pace {
		labels[i], counts[i] = b.Label, float64(b.Count)
	}
	d.PaceChart = NewBarChart(labels, counts, formatCount)

	labels = make([]string, len(o.Participation))
	counts = make([]float64, len(o.Participation))
	for i, p := range o.Participation {
		labels[i], counts[i] = strconv.Itoa(p.Year), float64(p.Total)
	}
	d.TrendChart = NewLineChart(labels, counts, formatCount)

	d.AgeChart = groupChart(o.ByAgeGroup)
	return d
}

func groupChart(stats []analysis.GroupStat) BarChart {
	labels := make([]string, len(stats))
	means := make([]float64, len(stats))
	for i, s := range stats {
		labels[i], means[i] = s.Group, s.MeanFinish
	}
	return NewBarChart(labels, means, clockMinutes)
}

func formatCount(v float64) string {
	return fmt.Sprintf("%.0f", v)
}
