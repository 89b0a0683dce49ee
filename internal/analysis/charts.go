package analysis

import (
	"fmt"
	"sort"
	"strconv"

	"cherryblossom/internal/results"
)

const DefaultPaceBin = 30

// MaxPaceBins bounds the histogram; wider bins are used past it.
const MaxPaceBins = 200

// Bin is one histogram bucket covering [Start, End) seconds per mile.
type Bin struct {
	Start int    `json:"start_seconds"`
	End   int    `json:"end_seconds"`
	Label string `json:"label"`
	Count int    `json:"count"`
}

// PaceDistribution buckets pace into contiguous bins of binSeconds,
// including empty bins between the slowest and fastest runner. binSeconds
// is doubled until the range fits in MaxPaceBins.
func PaceDistribution(records []results.Record, binSeconds int) []Bin {
	if binSeconds <= 0 {
		binSeconds = DefaultPaceBin
	}
	if len(records) == 0 {
		return []Bin{}
	}
	lo, hi := records[0].PaceSeconds, records[0].PaceSeconds
	for _, r := range records[1:] {
		lo = min(lo, r.PaceSeconds)
		hi = max(hi, r.PaceSeconds)
	}
	for hi/binSeconds-lo/binSeconds+1 > MaxPaceBins {
		binSeconds *= 2
	}
	first := lo / binSeconds
	bins := make([]Bin, hi/binSeconds-first+1)
	for i := range bins {
		start := (first + i) * binSeconds
		bins[i] = Bin{Start: start, End: start + binSeconds, Label: paceLabel(start) + "-" + paceLabel(start+binSeconds)}
	}
	for _, r := range records {
		bins[r.PaceSeconds/binSeconds-first].Count++
	}
	return bins
}

func paceLabel(seconds int) string {
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}

// YearParticipation counts finishers of one year by gender.
type YearParticipation struct {
	Year    int `json:"year"`
	Total   int `json:"total"`
	Male    int `json:"male"`
	Female  int `json:"female"`
	Other   int `json:"other"`
	Unknown int `json:"unknown"`
}

func Participation(records []results.Record) []YearParticipation {
	byYear := make(map[int]*YearParticipation)
	for _, r := range records {
		p, ok := byYear[r.Year]
		if !ok {
			p = &YearParticipation{Year: r.Year}
			byYear[r.Year] = p
		}
		p.Total++
		switch r.Gender {
		case results.GenderMale:
			p.Male++
		case results.GenderFemale:
			p.Female++
		case results.GenderOther:
			p.Other++
		default:
			p.Unknown++
		}
	}
	out := make([]YearParticipation, 0, len(byYear))
	for _, p := range byYear {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Year < out[j].Year })
	return out
}

type GroupBy string

const (
	ByGender   GroupBy = "gender"
	ByAgeGroup GroupBy = "age_group"
	ByRegion   GroupBy = "region"
	ByYear     GroupBy = "year"
)

func ParseGroupBy(s string) (GroupBy, bool) {
	switch g := GroupBy(s); g {
	case ByGender, ByAgeGroup, ByRegion, ByYear:
		return g, true
	}
	return "", false
}

// GroupStat is finish time in minutes for one group.
type GroupStat struct {
	Group        string  `json:"group"`
	Count        int     `json:"count"`
	MeanFinish   float64 `json:"mean_finish_minutes"`
	MedianFinish float64 `json:"median_finish_minutes"`
}

// FinishByGroup aggregates finish time per group. Records without a value
// for the group are left out. Genders and age groups keep their natural
// order, years ascend and regions are sorted fastest first.
func FinishByGroup(records []results.Record, by GroupBy) []GroupStat {
	finishes := make(map[string][]float64)
	for _, r := range records {
		key := groupKey(r, by)
		if key == "" {
			continue
		}
		finishes[key] = append(finishes[key], r.FinishMinutes())
	}

	out := make([]GroupStat, 0, len(finishes))
	add := func(key string) {
		vals, ok := finishes[key]
		if !ok {
			return
		}
		out = append(out, GroupStat{
			Group:        key,
			Count:        len(vals),
			MeanFinish:   round2(Mean(vals)),
			MedianFinish: round2(Median(vals)),
		})
	}

	switch by {
	case ByGender:
		for _, g := range results.Genders {
			add(g)
		}
	case ByAgeGroup:
		for _, g := range results.AgeGroups {
			add(g)
		}
	default:
		for key := range finishes {
			add(key)
		}
		if by == ByYear {
			sort.Slice(out, func(i, j int) bool {
				a, _ := strconv.Atoi(out[i].Group)
				b, _ := strconv.Atoi(out[j].Group)
				return a < b
			})
		} else {
			sort.Slice(out, func(i, j int) bool {
				if out[i].MeanFinish != out[j].MeanFinish {
					return out[i].MeanFinish < out[j].MeanFinish
				}
				return out[i].Group < out[j].Group
			})
		}
	}
	return out
}

func groupKey(r results.Record, by GroupBy) string {
	switch by {
	case ByGender:
		return r.Gender
	case ByAgeGroup:
		return r.AgeGroup
	case ByRegion:
		return r.CensusRegion
	case ByYear:
		return strconv.Itoa(r.Year)
	}
	return ""
}
