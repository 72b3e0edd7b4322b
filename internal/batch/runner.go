// Package batch normalizes every export in a directory, one file at a time.
//
// Files are independent: a file that cannot be read, or whose processing
// panics, is recorded as failed and the batch moves on. Nothing learned from
// one file (header mappings, date conventions) is carried to the next.
package batch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/JonMunkholm/redemptions/internal/core"
	"github.com/JonMunkholm/redemptions/internal/logging"
	"github.com/JonMunkholm/redemptions/internal/tabular"
)

// Normalizer turns one raw table into a canonical table.
type Normalizer interface {
	Run(raw core.RawTable) (*core.CanonicalTable, *core.Report)
}

// Options configures where a Runner writes its output.
type Options struct {
	OutputDir string // Created if missing
	Prefix    string // Prepended to each output file name
}

// FileResult is the outcome for one input file.
type FileResult struct {
	Path     string
	Output   string // Written file; empty on failure
	RunID    string
	Info     tabular.Info
	Report   *core.Report
	Err      error // Technical error; nil on success
	Duration time.Duration
}

// OK reports whether the file was normalized and written.
func (r *FileResult) OK() bool {
	return r.Err == nil
}

// UserError returns the failure mapped to its user-facing message, or nil
// when the file succeeded.
func (r *FileResult) UserError() *core.UserError {
	return core.NewUserError(r.Err)
}

// Summary is the outcome of a batch.
type Summary struct {
	Files     []FileResult
	Succeeded int
	Failed    int
}

func (s *Summary) add(res FileResult) {
	s.Files = append(s.Files, res)
	if res.OK() {
		s.Succeeded++
	} else {
		s.Failed++
	}
}

// Runner processes export files sequentially.
type Runner struct {
	reader     *tabular.Reader
	normalizer Normalizer
	opts       Options
}

// NewRunner creates a runner.
func NewRunner(reader *tabular.Reader, normalizer Normalizer, opts Options) *Runner {
	return &Runner{reader: reader, normalizer: normalizer, opts: opts}
}

// OutputPath returns where the normalized form of input is written. The
// output is always CSV, whatever the input format.
func (r *Runner) OutputPath(input string) string {
	base := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	return filepath.Join(r.opts.OutputDir, r.opts.Prefix+base+".csv")
}

// Discover lists the supported exports directly inside dir, sorted by name.
// Subdirectories are not searched. Hidden files and spreadsheet lock files
// are ignored, as are this runner's own outputs when they share dir.
func (r *Runner) Discover(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading directory %s: %w", dir, err)
	}

	sameDir := filepath.Clean(dir) == filepath.Clean(r.opts.OutputDir)

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") || strings.HasPrefix(name, "~$") {
			continue
		}
		if tabular.FormatOf(name) == "" {
			continue
		}
		if sameDir && r.opts.Prefix != "" && strings.HasPrefix(name, r.opts.Prefix) {
			continue
		}
		paths = append(paths, filepath.Join(dir, name))
	}

	sort.Strings(paths)
	return paths, nil
}

// ProcessDir normalizes every export found in dir.
func (r *Runner) ProcessDir(ctx context.Context, dir string) (*Summary, error) {
	paths, err := r.Discover(dir)
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no input files in %s", dir)
	}
	return r.ProcessFiles(ctx, paths)
}

// ProcessFiles normalizes paths in order. Per-file failures are recorded in
// the summary; the returned error is set only when the output directory
// cannot be created. Once ctx is done the remaining files are marked failed
// without being read.
func (r *Runner) ProcessFiles(ctx context.Context, paths []string) (*Summary, error) {
	if err := os.MkdirAll(r.opts.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("write output: create %s: %w", r.opts.OutputDir, err)
	}

	summary := &Summary{}
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			summary.add(FileResult{Path: path, Err: fmt.Errorf("process %s: %w", filepath.Base(path), err)})
			continue
		}
		summary.add(r.processFile(ctx, path))
	}
	return summary, nil
}

// processFile handles one file, containing any panic to that file.
func (r *Runner) processFile(ctx context.Context, path string) (res FileResult) {
	start := time.Now()
	res = FileResult{Path: path, RunID: logging.NewRunID()}

	ctx = logging.ContextWithRunID(ctx, res.RunID)
	logger := logging.WithFields(ctx, "file", filepath.Base(path))

	defer func() {
		if rec := recover(); rec != nil {
			logger.Error("panic while normalizing", "panic", rec)
			res.Output = ""
			res.Err = fmt.Errorf("internal error: %v", rec)
		}
		res.Duration = time.Since(start)
	}()

	logger.Debug("file started")

	raw, info, err := r.reader.ReadFile(path)
	res.Info = info
	if err != nil {
		res.Err = err
		logger.Warn("file skipped", "error", err, "code", core.MapError(err).Code)
		return res
	}

	table, report := r.normalizer.Run(raw)
	res.Report = report

	out := r.OutputPath(path)
	if err := tabular.WriteFile(out, func(w io.Writer) error {
		return tabular.WriteTable(w, table)
	}); err != nil {
		res.Err = err
		logger.Error("write failed", "output", out, "error", err)
		return res
	}
	res.Output = out

	for _, m := range report.Matches {
		logger.Debug("header resolved",
			"header", m.Raw,
			"column", m.Name(),
			"rule", m.Kind.String(),
			"score", m.Score,
		)
	}
	for _, d := range report.Dates {
		logger.Debug("date convention chosen",
			"column", d.Column,
			"order", d.Chosen.String(),
			"reason", d.Reason,
			"day_first", d.DayFirstCount,
			"month_first", d.MonthFirstCount,
			"nulled", d.Nulled,
		)
	}
	if info.Repaired > 0 {
		logger.Warn("invalid UTF-8 replaced", "cells", info.Repaired)
	}

	logger.Info("file completed",
		"output", filepath.Base(out),
		"rows_read", report.RowsRead,
		"rows_written", report.RowsWritten,
		"rows_removed", report.RowsRemoved,
	)
	return res
}

// Err returns the combined error of every failed file, or nil.
func (s *Summary) Err() error {
	var errs []error
	for i := range s.Files {
		if f := &s.Files[i]; !f.OK() {
			errs = append(errs, fmt.Errorf("%s: %w", filepath.Base(f.Path), f.Err))
		}
	}
	return errors.Join(errs...)
}
