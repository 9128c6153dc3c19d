package adapters

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"loadcast/pkg/dataset"
)

// CSVAdapter reads hourly observations from a cleaned CSV export. The first
// column must be an RFC3339 or "2006-01-02 15:04:05" timestamp, the second
// the load; any further columns become exogenous features named after their
// header. Empty cells are treated as missing values.
type CSVAdapter struct {
	// Path to the CSV file.
	Path string
}

func (c *CSVAdapter) Name() string { return "csv" }

// Collect reads the file and returns the hourly series restricted to
// [start, end), with unreported hours marked missing.
func (c *CSVAdapter) Collect(ctx context.Context, start, end time.Time) (dataset.Series, error) {
	if c.Path == "" {
		return nil, fmt.Errorf("csv adapter: path is required")
	}
	if !end.After(start) {
		return nil, fmt.Errorf("csv adapter: end %v not after start %v", end, start)
	}

	f, err := os.Open(c.Path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", c.Path, err)
	}
	defer f.Close()

	points, err := readPoints(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", c.Path, err)
	}
	return gridSeries(points, start, end), nil
}

func readPoints(ctx context.Context, r io.Reader) ([]point, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if len(header) < 2 {
		return nil, fmt.Errorf("need at least timestamp and load columns, got %d", len(header))
	}
	featureNames := header[2:]

	var points []point
	for line := 2; ; line++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		ts, err := parseCSVTime(record[0])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		p := point{ts: ts, load: parseCSVValue(record[1])}
		if len(featureNames) > 0 {
			p.features = make(map[string]float64, len(featureNames))
			for i, name := range featureNames {
				p.features[name] = parseCSVValue(record[2+i])
			}
		}
		points = append(points, p)
	}
	return points, nil
}

func parseCSVTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02 15:04"} {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable timestamp %q", s)
}

// parseCSVValue maps empty or malformed cells to the missing marker rather
// than failing the whole file; a single bad hour should cost one sample, not
// the dataset.
func parseCSVValue(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return dataset.Missing
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return dataset.Missing
	}
	return v
}
