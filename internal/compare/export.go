package compare

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/goccy/go-json"
)

// WriteCSV exports a comparison report as one flat table with a type column.
func WriteCSV(w io.Writer, report Report) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Type", "Function", "Metric", "Baseline", "Current", "Delta", "Percent_Change"}); err != nil {
		return err
	}
	writeChanges := func(kind string, changes []Change) error {
		for _, c := range changes {
			record := []string{
				kind,
				c.Function,
				string(c.Metric),
				strconv.FormatFloat(c.Baseline, 'f', -1, 64),
				strconv.FormatFloat(c.Current, 'f', -1, 64),
				strconv.FormatFloat(c.Delta, 'f', -1, 64),
				strconv.FormatFloat(c.PercentChange, 'f', 2, 64),
			}
			if err := cw.Write(record); err != nil {
				return err
			}
		}
		return nil
	}
	if err := writeChanges("REGRESSION", report.Regressions); err != nil {
		return err
	}
	if err := writeChanges("IMPROVEMENT", report.Improvements); err != nil {
		return err
	}
	for _, function := range report.NewFunctions {
		if err := cw.Write([]string{"NEW", function, "", "", "", "", ""}); err != nil {
			return err
		}
	}
	for _, function := range report.RemovedFunctions {
		if err := cw.Write([]string{"REMOVED", function, "", "", "", "", ""}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteJSON exports a comparison report.
func WriteJSON(w io.Writer, report Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}
