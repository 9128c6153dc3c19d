// Command backtest runs walk-forward evaluation of forecasting models over a
// historical load export.
//
// It reads an hourly CSV (timestamp, load, optional feature columns), builds
// a lagged dataset, evaluates each requested model with rolling
// train/test splits, and prints a comparison table. Detailed per-step errors
// can be written to a CSV report for plotting.
//
// Usage:
//
//	backtest \
//	  -input=load_es.csv \
//	  -models=previous-day,moving-average,year-ago,ridge \
//	  -lags=1-72,145-168 \
//	  -train-days=365 -test-days=30 \
//	  -report=errors.csv
package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"loadcast/cmd/forecaster/config"
	"loadcast/pkg/adapters"
	"loadcast/pkg/dataset"
	"loadcast/pkg/eval"
	"loadcast/pkg/models"
)

func main() {
	var (
		input       = flag.String("input", "", "hourly load CSV (timestamp, load, features...)")
		from        = flag.String("from", "", "start of the evaluation range, RFC3339 (default: first row)")
		to          = flag.String("to", "", "end of the evaluation range, RFC3339 (default: last row + 1h)")
		modelList   = flag.String("models", "previous-day,moving-average,year-ago,ridge", "comma-separated models to evaluate")
		lagList     = flag.String("lags", "1-72,145-168", "comma-separated lag hours")
		horizon     = flag.Int("horizon", 24, "forecast horizon in hours")
		maDays      = flag.Int("ma-days", 3, "trailing days for the moving-average model")
		ridgeLambda = flag.Float64("ridge-lambda", 1.0, "L2 penalty for the ridge model")
		trainDays   = flag.Int("train-days", 365, "training span per fold, in days")
		testDays    = flag.Int("test-days", 30, "test span per fold, in days")
		strideDays  = flag.Int("stride-days", 0, "fold stride in days (default: test-days)")
		report      = flag.String("report", "", "write per-step errors to this CSV file")
		logLevel    = flag.String("log-level", "info", "log level: debug, info, warn, error")
	)
	flag.Parse()

	logger := newLogger(*logLevel)
	slog.SetDefault(logger)

	if *input == "" {
		fmt.Fprintln(os.Stderr, "usage: backtest -input=<file.csv> [flags]")
		flag.PrintDefaults()
		os.Exit(2)
	}
	if *strideDays <= 0 {
		*strideDays = *testDays
	}

	lags, err := config.ParseLags(*lagList)
	if err != nil {
		logger.Error("invalid -lags", "error", err)
		os.Exit(2)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	start, end, err := evalRange(*input, *from, *to)
	if err != nil {
		logger.Error("failed to determine evaluation range", "error", err)
		os.Exit(1)
	}

	adapter := &adapters.CSVAdapter{Path: *input}
	series, err := adapter.Collect(ctx, start, end)
	if err != nil {
		logger.Error("failed to read load history", "input", *input, "error", err)
		os.Exit(1)
	}
	logger.Info("loaded history",
		"input", *input,
		"hours", len(series),
		"from", start.Format(time.RFC3339),
		"to", end.Format(time.RFC3339),
	)

	ds, err := dataset.Build(series, lags, *horizon, dataset.OriginDaily)
	if err != nil {
		logger.Error("failed to build dataset", "error", err)
		os.Exit(1)
	}
	logger.Info("built dataset", "samples", len(ds.Samples), "input_width", ds.InputWidth())

	opts := models.Options{MovingAverageDays: *maDays, RidgeLambda: *ridgeLambda}

	var reports []eval.Report
	for _, name := range strings.Split(*modelList, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}

		model, err := models.New(name, opts)
		if err != nil {
			logger.Error("failed to create model", "model", name, "error", err)
			os.Exit(1)
		}

		started := time.Now()
		rep, err := eval.Evaluate(ctx, model, ds, *trainDays, *testDays, *strideDays)
		if err != nil {
			logger.Error("evaluation failed", "model", name, "error", err)
			os.Exit(1)
		}
		logger.Info("evaluated model",
			"model", rep.Model,
			"folds", rep.Folds,
			"test_samples", rep.Samples,
			"duration_ms", time.Since(started).Milliseconds(),
		)
		reports = append(reports, rep)
	}

	printTable(os.Stdout, reports)

	if *report != "" {
		if err := eval.WriteCSVFile(*report, reports); err != nil {
			logger.Error("failed to write report", "path", *report, "error", err)
			os.Exit(1)
		}
		logger.Info("wrote report", "path", *report)
	}
}

// evalRange resolves the series bounds, peeking at the file's first and last
// timestamps where flags are omitted.
func evalRange(path, from, to string) (time.Time, time.Time, error) {
	var start, end time.Time

	if from != "" {
		ts, err := time.Parse(time.RFC3339, from)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("bad -from: %w", err)
		}
		start = ts.UTC()
	}
	if to != "" {
		ts, err := time.Parse(time.RFC3339, to)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("bad -to: %w", err)
		}
		end = ts.UTC()
	}
	if !start.IsZero() && !end.IsZero() {
		return start, end, nil
	}

	first, last, err := fileBounds(path)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if start.IsZero() {
		start = first
	}
	if end.IsZero() {
		end = last.Add(time.Hour)
	}
	return start, end, nil
}

// fileBounds scans the CSV for its first and last row timestamps.
func fileBounds(path string) (time.Time, time.Time, error) {
	f, err := os.Open(path)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	defer f.Close()

	cr := csv.NewReader(f)
	cr.TrimLeadingSpace = true

	if _, err := cr.Read(); err != nil { // header
		return time.Time{}, time.Time{}, fmt.Errorf("read header: %w", err)
	}

	var first, last time.Time
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return time.Time{}, time.Time{}, err
		}

		ts, err := time.Parse(time.RFC3339, strings.TrimSpace(record[0]))
		if err != nil {
			ts, err = time.Parse("2006-01-02 15:04:05", strings.TrimSpace(record[0]))
			if err != nil {
				ts, err = time.Parse("2006-01-02 15:04", strings.TrimSpace(record[0]))
				if err != nil {
					return time.Time{}, time.Time{}, fmt.Errorf("unparseable timestamp %q", record[0])
				}
			}
		}
		ts = ts.UTC()

		if first.IsZero() {
			first = ts
		}
		last = ts
	}

	if first.IsZero() {
		return time.Time{}, time.Time{}, fmt.Errorf("no data rows in %s", path)
	}
	return first, last, nil
}

// printTable writes a comparison of overall errors per model.
func printTable(w io.Writer, reports []eval.Report) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "MODEL\tFOLDS\tTEST SAMPLES\tRMSE\tMAE")
	for _, rep := range reports {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%.1f\t%.1f\n",
			rep.Model, rep.Folds, rep.Samples, rep.RMSE, rep.MAE)
	}
	tw.Flush()
}

func newLogger(level string) *slog.Logger {
	var l slog.Level
	switch level {
	case "debug":
		l = slog.LevelDebug
	case "warn":
		l = slog.LevelWarn
	case "error":
		l = slog.LevelError
	default:
		l = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: l}))
}
