package analysis

import (
	"sort"

	"cherryblossom/internal/results"
)

// Summary holds the headline statistics for a set of records.
type Summary struct {
	Total            int          `json:"total"`
	Years            []int        `json:"years"`
	Gender           []Share      `json:"gender"`
	Age              NumberStats  `json:"age"`
	FinishMinutes    NumberStats  `json:"finish_minutes"`
	PaceMinutes      NumberStats  `json:"pace_minutes"`
	US               Share        `json:"us"`
	International    Share        `json:"international"`
	Local            Share        `json:"local"`
	UniqueStates     int          `json:"unique_states"`
	UniqueCountries  int          `json:"unique_countries"`
	TopStates        []RankedItem `json:"top_states"`
	Regions          []Share      `json:"census_regions"`
	Divisions        []Share      `json:"census_divisions"`
	FinishByGender   []GroupStat  `json:"finish_by_gender"`
	FinishByAgeGroup []GroupStat  `json:"finish_by_age_group"`
	FinishByRegion   []GroupStat  `json:"finish_by_region"`
	SuspiciousStates []RankedItem `json:"suspicious_states"`
}

// Share is a count and its percentage of the summarised total.
type Share struct {
	Name    string  `json:"name,omitempty"`
	Count   int     `json:"count"`
	Percent float64 `json:"percent"`
}

// NumberStats describes one numeric column. Count is the number of
// non-missing values.
type NumberStats struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}

type RankedItem struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// States with at most this many runners are flagged as suspicious.
const suspiciousMaxRunners = 5

// Summarize computes headline statistics. UniqueStates and UniqueCountries
// count every runner; the other geography breakdowns only count US runners.
func Summarize(records []results.Record) Summary {
	s := Summary{Total: len(records)}
	if len(records) == 0 {
		return s
	}

	years := make(map[int]bool)
	genders := make(map[string]int)
	states := make(map[string]int)
	allStates := make(map[string]bool)
	countries := make(map[string]bool)
	regions := make(map[string]int)
	divisions := make(map[string]int)
	var ages, finishes, paces []float64
	var us, local int

	for i := range records {
		r := &records[i]
		years[r.Year] = true
		genders[r.Gender]++
		if r.Age != nil {
			ages = append(ages, float64(*r.Age))
		}
		finishes = append(finishes, r.FinishMinutes())
		paces = append(paces, r.PaceMinutes())
		if r.Country != "" {
			countries[r.Country] = true
		}
		if r.State != "" {
			allStates[r.State] = true
		}
		if r.IsLocal {
			local++
		}
		if !r.IsUS {
			continue
		}
		us++
		if r.State != "" {
			states[r.State]++
		}
		if r.CensusRegion != "" {
			regions[r.CensusRegion]++
		}
		if r.CensusDivision != "" {
			divisions[r.CensusDivision]++
		}
	}

	for y := range years {
		s.Years = append(s.Years, y)
	}
	sort.Ints(s.Years)

	for _, g := range results.Genders {
		if n := genders[g]; n > 0 {
			s.Gender = append(s.Gender, Share{Name: g, Count: n, Percent: pct(n, s.Total)})
		}
	}

	s.Age = describe(ages)
	s.FinishMinutes = describe(finishes)
	s.PaceMinutes = describe(paces)

	s.US = Share{Count: us, Percent: pct(us, s.Total)}
	s.International = Share{Count: s.Total - us, Percent: pct(s.Total-us, s.Total)}
	s.Local = Share{Count: local, Percent: pct(local, s.Total)}

	s.UniqueStates = len(allStates)
	s.UniqueCountries = len(countries)
	s.TopStates = topN(states, 10)
	s.Regions = shares(regions, us)
	s.Divisions = shares(divisions, us)

	s.FinishByGender = FinishByGroup(records, ByGender)
	s.FinishByAgeGroup = FinishByGroup(records, ByAgeGroup)
	s.FinishByRegion = FinishByGroup(records, ByRegion)
	s.SuspiciousStates = suspicious(states)
	return s
}

func describe(values []float64) NumberStats {
	if len(values) == 0 {
		return NumberStats{}
	}
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	return NumberStats{
		Count:  len(values),
		Mean:   round2(Mean(values)),
		Median: round2(Median(values)),
		Min:    round2(lo),
		Max:    round2(hi),
	}
}

func topN(counts map[string]int, n int) []RankedItem {
	items := make([]RankedItem, 0, len(counts))
	for name, count := range counts {
		items = append(items, RankedItem{Name: name, Count: count})
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].Count != items[j].Count {
			return items[i].Count > items[j].Count
		}
		return items[i].Name < items[j].Name
	})
	if len(items) > n {
		items = items[:n]
	}
	return items
}

// shares orders by count descending, then name.
func shares(counts map[string]int, total int) []Share {
	out := make([]Share, 0, len(counts))
	for _, item := range topN(counts, len(counts)) {
		out = append(out, Share{Name: item.Name, Count: item.Count, Percent: pct(item.Count, total)})
	}
	return out
}

// suspicious lists states with very few runners, fewest first. These are
// usually typos or foreign province codes in the state column.
func suspicious(states map[string]int) []RankedItem {
	var out []RankedItem
	for st, n := range states {
		if n <= suspiciousMaxRunners {
			out = append(out, RankedItem{Name: st, Count: n})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count < out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	return out
}
