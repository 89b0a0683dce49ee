package dashboard

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"cherryblossom/internal/results"
	"cherryblossom/internal/transform"

	"github.com/xuri/excelize/v2"
)

// exportColumn is one column of the CSV and XLSX exports.
type exportColumn struct {
	name        string
	kind        string
	description string
	value       func(r results.Record) any
}

var exportColumns = []exportColumn{
	{"year", "integer", "Race year", func(r results.Record) any { return r.Year }},
	{"overall_place", "integer", "Finish position among all finishers", func(r results.Record) any { return intOrNil(r.OverallPlace) }},
	{"name", "text", "Runner name as published", func(r results.Record) any { return r.Name }},
	{"gender", "category", "M, F, X (other) or U (unknown)", func(r results.Record) any { return r.Gender }},
	{"age", "integer", "Age on race day", func(r results.Record) any { return intOrNil(r.Age) }},
	{"age_group", "category", "Five year age bucket; 0-19 and 80+ at the edges", func(r results.Record) any { return r.AgeGroup }},
	{"race", "text", "Race name as published", func(r results.Record) any { return r.Race }},
	{"state", "text", "State or province code", func(r results.Record) any { return r.State }},
	{"country", "text", "Country code", func(r results.Record) any { return r.Country }},
	{"is_us", "boolean", "Country is USA", func(r results.Record) any { return r.IsUS }},
	{"is_local", "boolean", "State is DC, MD or VA", func(r results.Record) any { return r.IsLocal }},
	{"census_region", "category", "US Census region, US runners only", func(r results.Record) any { return r.CensusRegion }},
	{"census_division", "category", "US Census division, US runners only", func(r results.Record) any { return r.CensusDivision }},
	{"gender_place", "integer", "Finish position within gender", func(r results.Record) any { return intOrNil(r.GenderPlace) }},
	{"age_group_place", "integer", "Finish position within gender and age group", func(r results.Record) any { return intOrNil(r.AgeGroupPlace) }},
	{"finish_time", "text", "Net finish time, H:MM:SS", func(r results.Record) any { return transform.FormatClock(r.FinishSeconds) }},
	{"finish_seconds", "integer", "Net finish time in seconds", func(r results.Record) any { return r.FinishSeconds }},
	{"pace", "text", "Minutes per mile, M:SS", func(r results.Record) any { return transform.FormatClock(r.PaceSeconds) }},
	{"pace_seconds", "integer", "Seconds per mile", func(r results.Record) any { return r.PaceSeconds }},
	{"overall_percentile", "decimal", "Percent rank of overall place, 100 is last", func(r results.Record) any { return floatOrNil(r.OverallPercentile) }},
	{"gender_percentile", "decimal", "Percent rank of gender place within gender", func(r results.Record) any { return floatOrNil(r.GenderPercentile) }},
	{"age_group_percentile", "decimal", "Percent rank of age group place within gender and age group", func(r results.Record) any { return floatOrNil(r.AgeGroupPercentile) }},
}

func intOrNil(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}

func floatOrNil(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}

func csvValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case int:
		return strconv.Itoa(t)
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'f', 2, 64)
	default:
		return fmt.Sprint(t)
	}
}

// WriteCSV writes records with a header row.
func WriteCSV(w io.Writer, records []results.Record) error {
	cw := csv.NewWriter(w)

	header := make([]string, len(exportColumns))
	for i, c := range exportColumns {
		header[i] = c.name
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}

	row := make([]string, len(exportColumns))
	for _, r := range records {
		for i, c := range exportColumns {
			row[i] = csvValue(c.value(r))
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing CSV row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

const (
	resultsSheet    = "Results"
	dictionarySheet = "Dictionary"
)

// WriteXLSX writes a workbook with the records and a data dictionary sheet.
func WriteXLSX(w io.Writer, records []results.Record) error {
	book := excelize.NewFile()
	defer book.Close()

	headerStyle, err := book.NewStyle(&excelize.Style{
		Fill: excelize.Fill{
			Type:    "pattern",
			Pattern: 1,
			Color:   []string{"f4c2d7"},
		},
		Font: &excelize.Font{Bold: true},
	})
	if err != nil {
		return err
	}

	if err := book.SetSheetName("Sheet1", resultsSheet); err != nil {
		return err
	}
	sw, err := book.NewStreamWriter(resultsSheet)
	if err != nil {
		return err
	}
	if err := sw.SetColWidth(1, len(exportColumns), 14); err != nil {
		return err
	}

	header := make([]any, len(exportColumns))
	for i, c := range exportColumns {
		header[i] = excelize.Cell{StyleID: headerStyle, Value: c.name}
	}
	if err := sw.SetRow("A1", header); err != nil {
		return err
	}

	for n, r := range records {
		row := make([]any, len(exportColumns))
		for i, c := range exportColumns {
			row[i] = c.value(r)
		}
		cell, err := excelize.CoordinatesToCellName(1, n+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, row); err != nil {
			return err
		}
	}
	if err := sw.Flush(); err != nil {
		return err
	}

	if err := writeDictionary(book, headerStyle, records); err != nil {
		return err
	}
	return book.Write(w)
}

// dictionaryHeader describes each export column against the exported rows.
var dictionaryHeader = []any{"column", "type", "description", "non_null_count", "sample_value"}

func writeDictionary(book *excelize.File, headerStyle int, records []results.Record) error {
	if _, err := book.NewSheet(dictionarySheet); err != nil {
		return err
	}
	if err := book.SetSheetRow(dictionarySheet, "A1", &dictionaryHeader); err != nil {
		return err
	}
	if err := book.SetCellStyle(dictionarySheet, "A1", "E1", headerStyle); err != nil {
		return err
	}
	for i, c := range exportColumns {
		count, sample := columnProfile(c, records)
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := book.SetSheetRow(dictionarySheet, cell, &[]any{c.name, c.kind, c.description, count, sample}); err != nil {
			return err
		}
	}
	if err := book.SetColWidth(dictionarySheet, "A", "B", 22); err != nil {
		return err
	}
	if err := book.SetColWidth(dictionarySheet, "C", "C", 60); err != nil {
		return err
	}
	return book.SetColWidth(dictionarySheet, "D", "E", 18)
}

// columnProfile counts the non-empty values of c and returns the first one
// as a sample.
func columnProfile(c exportColumn, records []results.Record) (int, string) {
	count := 0
	sample := ""
	for _, r := range records {
		v := csvValue(c.value(r))
		if v == "" {
			continue
		}
		if count == 0 {
			sample = v
		}
		count++
	}
	return count, sample
}
