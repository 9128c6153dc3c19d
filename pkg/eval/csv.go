package eval

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
)

// WriteCSV renders reports in long form, one row per model and horizon step,
// with an "overall" row per model at the end of its block.
func WriteCSV(w io.Writer, reports []Report) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write([]string{"model", "step", "rmse", "mae"}); err != nil {
		return err
	}

	for _, report := range reports {
		for _, step := range report.PerStep {
			row := []string{
				report.Model,
				strconv.Itoa(step.Step),
				formatFloat(step.RMSE),
				formatFloat(step.MAE),
			}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
		overall := []string{report.Model, "overall", formatFloat(report.RMSE), formatFloat(report.MAE)}
		if err := cw.Write(overall); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteCSVFile writes the reports to path, truncating any existing file.
func WriteCSVFile(path string, reports []Report) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report file: %w", err)
	}
	defer f.Close()

	if err := WriteCSV(f, reports); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 3, 64)
}
