package results

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a dataset or year has no current data.
var ErrNotFound = errors.New("results not found")

const (
	GenderMale    = "M"
	GenderFemale  = "F"
	GenderOther   = "X"
	GenderUnknown = "U"
)

// Genders lists the gender categories a record can carry.
var Genders = []string{GenderMale, GenderFemale, GenderOther, GenderUnknown}

// Record is one cleaned finisher of a single race year.
type Record struct {
	DatasetID          string   `json:"dataset_id"`
	Year               int      `json:"year" validate:"gte=1973"`
	Name               string   `json:"name" validate:"required"`
	Age                *int     `json:"age,omitempty" validate:"omitempty,gt=0,lte=110"`
	AgeGroup           string   `json:"age_group,omitempty"`
	Gender             string   `json:"gender" validate:"oneof=M F X U"`
	Race               string   `json:"race,omitempty"`
	State              string   `json:"state,omitempty"`
	Country            string   `json:"country,omitempty"`
	IsUS               bool     `json:"is_us"`
	IsLocal            bool     `json:"is_local"`
	CensusRegion       string   `json:"census_region,omitempty"`
	CensusDivision     string   `json:"census_division,omitempty"`
	OverallPlace       *int     `json:"overall_place,omitempty" validate:"omitempty,gt=0"`
	GenderPlace        *int     `json:"gender_place,omitempty" validate:"omitempty,gt=0"`
	AgeGroupPlace      *int     `json:"age_group_place,omitempty" validate:"omitempty,gt=0"`
	FinishSeconds      int      `json:"finish_seconds" validate:"gte=0"`
	PaceSeconds        int      `json:"pace_seconds" validate:"gte=0"`
	OverallPercentile  *float64 `json:"overall_percentile,omitempty"`
	GenderPercentile   *float64 `json:"gender_percentile,omitempty"`
	AgeGroupPercentile *float64 `json:"age_group_percentile,omitempty"`
}

func (r Record) FinishTime() time.Duration {
	return time.Duration(r.FinishSeconds) * time.Second
}

func (r Record) FinishMinutes() float64 {
	return float64(r.FinishSeconds) / 60
}

// PaceMinutes is minutes per mile.
func (r Record) PaceMinutes() float64 {
	return float64(r.PaceSeconds) / 60
}

// Dataset is one immutable, versioned snapshot of a race year.
// A newer version of the same year supersedes it; it is never edited.
type Dataset struct {
	ID           string     `json:"id"`
	Year         int        `json:"year"`
	Version      int        `json:"version"`
	SourceRunID  string     `json:"source_run_id"`
	RecordCount  int        `json:"record_count"`
	CreatedAt    time.Time  `json:"created_at"`
	SupersededAt *time.Time `json:"superseded_at,omitempty"`
}

func (d Dataset) Current() bool {
	return d.SupersededAt == nil
}

// Query defines filters and pagination over current datasets.
type Query struct {
	Years     []int
	Gender    string
	AgeGroup  string
	State     string
	Region    string
	LocalOnly bool
	Name      string
	Sort      string
	Desc      bool
	Limit     int
	Offset    int
}

// Sort keys accepted by Query.Sort.
const (
	SortPlace  = "place"
	SortFinish = "finish"
	SortPace   = "pace"
	SortAge    = "age"
	SortName   = "name"
)
