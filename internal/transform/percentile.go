package transform

import (
	"sort"

	"cherryblossom/internal/results"
)

// percentRanks returns rank/n*100 for every non-nil value, using the
// average rank for ties. Nil values get a nil rank and are not counted.
func percentRanks(values []*int) []*float64 {
	type item struct {
		idx int
		v   int
	}
	items := make([]item, 0, len(values))
	for i, v := range values {
		if v != nil {
			items = append(items, item{idx: i, v: *v})
		}
	}
	out := make([]*float64, len(values))
	n := len(items)
	if n == 0 {
		return out
	}
	sort.SliceStable(items, func(a, b int) bool { return items[a].v < items[b].v })

	for start := 0; start < n; {
		end := start
		for end+1 < n && items[end+1].v == items[start].v {
			end++
		}
		// ranks are 1-based; ties share the mean of their positions
		avg := float64(start+end+2) / 2
		pct := avg / float64(n) * 100
		for k := start; k <= end; k++ {
			p := pct
			out[items[k].idx] = &p
		}
		start = end + 1
	}
	return out
}

// assignPercentiles fills overall, per-gender and per-gender-and-age-group
// percentiles. Records without an age group get no age group percentile.
func assignPercentiles(records []results.Record) {
	overall := make([]*int, len(records))
	for i := range records {
		overall[i] = records[i].OverallPlace
	}
	for i, p := range percentRanks(overall) {
		records[i].OverallPercentile = p
	}

	byGender := make(map[string][]int)
	byGroup := make(map[string][]int)
	for i, r := range records {
		byGender[r.Gender] = append(byGender[r.Gender], i)
		if r.AgeGroup != "" {
			key := r.Gender + "|" + r.AgeGroup
			byGroup[key] = append(byGroup[key], i)
		}
	}

	for _, idxs := range byGender {
		vals := make([]*int, len(idxs))
		for k, i := range idxs {
			vals[k] = records[i].GenderPlace
		}
		for k, p := range percentRanks(vals) {
			records[idxs[k]].GenderPercentile = p
		}
	}
	for _, idxs := range byGroup {
		vals := make([]*int, len(idxs))
		for k, i := range idxs {
			vals[k] = records[i].AgeGroupPlace
		}
		for k, p := range percentRanks(vals) {
			records[idxs[k]].AgeGroupPercentile = p
		}
	}
}
