package dashboard

import (
	"net/url"
	"strconv"
	"strings"

	"cherryblossom/internal/httpx"
	"cherryblossom/internal/results"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// Filter is the set of query parameters shared by every dashboard view.
type Filter struct {
	Years     []int  `query:"year" validate:"dive,gte=1973"`
	Gender    string `query:"gender" validate:"omitempty,gender"`
	AgeGroup  string `query:"age_group" validate:"omitempty,age_group"`
	State     string `query:"state" validate:"omitempty,len=2,alpha"`
	Region    string `query:"region" validate:"omitempty,census_region"`
	LocalOnly bool   `query:"local"`
	Name      string `query:"name" validate:"max=100"`
}

// ParseFilter reads a Filter from query values. year may repeat or hold a
// comma list.
func ParseFilter(q url.Values) (Filter, []httpx.ErrorDetail) {
	f := Filter{
		Gender:    strings.ToUpper(strings.TrimSpace(q.Get("gender"))),
		AgeGroup:  strings.TrimSpace(q.Get("age_group")),
		State:     strings.ToUpper(strings.TrimSpace(q.Get("state"))),
		Region:    strings.TrimSpace(q.Get("region")),
		LocalOnly: isTrue(q.Get("local")),
		Name:      strings.TrimSpace(q.Get("name")),
	}

	var details []httpx.ErrorDetail
	for _, v := range q["year"] {
		for _, part := range strings.Split(v, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			y, err := strconv.Atoi(part)
			if err != nil || y <= 0 {
				details = append(details, httpx.ErrorDetail{Field: "year", Message: "year must be a positive integer"})
				continue
			}
			f.Years = append(f.Years, y)
		}
	}
	if len(details) > 0 {
		return f, details
	}
	return f, ValidateStruct(f)
}

func isTrue(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "on", "yes":
		return true
	}
	return false
}

func (f Filter) Query() results.Query {
	return results.Query{
		Years:     f.Years,
		Gender:    f.Gender,
		AgeGroup:  f.AgeGroup,
		State:     f.State,
		Region:    f.Region,
		LocalOnly: f.LocalOnly,
		Name:      f.Name,
	}
}

// Values encodes f back into query parameters, omitting empty fields.
func (f Filter) Values() url.Values {
	v := url.Values{}
	for _, y := range f.Years {
		v.Add("year", strconv.Itoa(y))
	}
	set := func(k, s string) {
		if s != "" {
			v.Set(k, s)
		}
	}
	set("gender", f.Gender)
	set("age_group", f.AgeGroup)
	set("state", f.State)
	set("region", f.Region)
	set("name", f.Name)
	if f.LocalOnly {
		v.Set("local", "true")
	}
	return v
}

// Pagination reads page and page_size with defaults and bounds.
func Pagination(q url.Values) (page, pageSize int) {
	page, _ = strconv.Atoi(q.Get("page"))
	if page < 1 {
		page = 1
	}
	pageSize, _ = strconv.Atoi(q.Get("page_size"))
	if pageSize <= 0 || pageSize > maxPageSize {
		pageSize = defaultPageSize
	}
	return page, pageSize
}

var sortKeys = map[string]bool{
	results.SortPlace:  true,
	results.SortFinish: true,
	results.SortPace:   true,
	results.SortAge:    true,
	results.SortName:   true,
}

// ParseSort returns the sort key and direction, falling back to place.
func ParseSort(q url.Values) (string, bool) {
	key := strings.ToLower(strings.TrimSpace(q.Get("sort")))
	if !sortKeys[key] {
		key = results.SortPlace
	}
	return key, isTrue(q.Get("desc"))
}
