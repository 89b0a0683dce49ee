package transform

import (
	"log"
	"sort"
	"strings"
	"time"

	"cherryblossom/internal/collect"
	"cherryblossom/internal/results"

	"github.com/go-playground/validator/v10"
)

type Options struct {
	MinFinish time.Duration
	MaxFinish time.Duration
}

// DefaultOptions bounds a plausible 10 mile finish.
func DefaultOptions() Options {
	return Options{MinFinish: 40 * time.Minute, MaxFinish: 3 * time.Hour}
}

// Report counts what happened to the raw rows of one year.
type Report struct {
	Year            int    `json:"year"`
	SourceRunID     string `json:"source_run_id,omitempty"`
	Input           int    `json:"input"`
	Military        int    `json:"military_removed"`
	MissingCritical int    `json:"missing_critical_removed"`
	Outliers        int    `json:"outliers_removed"`
	DuplicatePlaces int    `json:"duplicate_places_removed"`
	Invalid         int    `json:"invalid_removed"`
	Output          int    `json:"output"`
	DatasetID       string `json:"dataset_id,omitempty"`
	Version         int    `json:"version,omitempty"`
}

func (r Report) Removed() int {
	return r.Input - r.Output
}

var validate = validator.New()

// Clean turns raw rows of one year into ordered, enriched records.
func Clean(year int, rows []collect.RawRow, opts Options) ([]results.Record, Report) {
	if opts.MinFinish == 0 && opts.MaxFinish == 0 {
		opts = DefaultOptions()
	}
	report := Report{Year: year, Input: len(rows)}

	out := make([]results.Record, 0, len(rows))
	seenPlaces := make(map[int]bool)
	for _, row := range rows {
		state := normalizeCode(row.State)
		if IsMilitary(state) {
			report.Military++
			continue
		}

		finish, okFinish := ParseClock(row.FinishTime)
		pace, okPace := ParseClock(row.Pace)
		if !okFinish || !okPace {
			report.MissingCritical++
			continue
		}

		if d := time.Duration(finish) * time.Second; d < opts.MinFinish || d > opts.MaxFinish {
			report.Outliers++
			continue
		}
		if !plausiblePace(pace, finish, opts) {
			report.Outliers++
			continue
		}

		country := normalizeCode(row.Country)
		rec := results.Record{
			Year:          year,
			Name:          strings.TrimSpace(row.Name),
			Age:           positiveOrNil(parseOptionalInt(row.Age), 110),
			Gender:        NormalizeGender(row.Gender),
			Race:          strings.TrimSpace(row.Race),
			State:         state,
			Country:       country,
			IsUS:          country == "USA",
			IsLocal:       IsLocal(state),
			OverallPlace:  positiveOrNil(parseOptionalInt(row.OverallPlace), 0),
			GenderPlace:   positiveOrNil(parseOptionalInt(row.GenderPlace), 0),
			AgeGroupPlace: positiveOrNil(parseOptionalInt(row.AgeGroupPlace), 0),
			FinishSeconds: finish,
			PaceSeconds:   pace,
		}
		if rec.Age != nil {
			rec.AgeGroup = results.AgeGroupFor(*rec.Age)
		}
		if rec.IsUS {
			rec.CensusRegion = RegionFor(state)
			rec.CensusDivision = DivisionFor(state)
		}

		if err := validate.Struct(rec); err != nil {
			log.Printf("transform invalid record year=%d page=%d row=%d error=%v", year, row.Page, row.RowIndex, err)
			report.Invalid++
			continue
		}

		// only kept rows claim a place
		if rec.OverallPlace != nil {
			if seenPlaces[*rec.OverallPlace] {
				report.DuplicatePlaces++
				continue
			}
			seenPlaces[*rec.OverallPlace] = true
		}
		out = append(out, rec)
	}

	sortRecords(out)
	assignPercentiles(out)
	report.Output = len(out)
	return out, report
}

// raceMiles is the distance pace is quoted over.
const raceMiles = 10

// plausiblePace reports whether pace lies within the finish bounds spread
// over the race distance and within 10% (at least 30s) of finish/raceMiles.
func plausiblePace(pace, finish int, opts Options) bool {
	lo := int(opts.MinFinish/time.Second) / raceMiles
	hi := int(opts.MaxFinish/time.Second+raceMiles-1) / raceMiles
	if pace < lo || pace > hi {
		return false
	}
	expected := finish / raceMiles
	tolerance := max(expected/10, 30)
	diff := pace - expected
	return diff >= -tolerance && diff <= tolerance
}

// sortRecords orders by overall place with unplaced runners last,
// then by finish time and name.
func sortRecords(records []results.Record) {
	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i], records[j]
		switch {
		case a.OverallPlace != nil && b.OverallPlace != nil:
			if *a.OverallPlace != *b.OverallPlace {
				return *a.OverallPlace < *b.OverallPlace
			}
		case a.OverallPlace != nil:
			return true
		case b.OverallPlace != nil:
			return false
		}
		if a.FinishSeconds != b.FinishSeconds {
			return a.FinishSeconds < b.FinishSeconds
		}
		return a.Name < b.Name
	})
}
