package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/redemptions/internal/batch"
	"github.com/JonMunkholm/redemptions/internal/codes"
	"github.com/JonMunkholm/redemptions/internal/config"
	"github.com/JonMunkholm/redemptions/internal/console"
	"github.com/JonMunkholm/redemptions/internal/core"
	"github.com/JonMunkholm/redemptions/internal/logging"
	"github.com/JonMunkholm/redemptions/internal/rowops"
	"github.com/JonMunkholm/redemptions/internal/tabular"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

// errFilesFailed signals that the batch ran but some files were not
// normalized. Details have already been printed.
var errFilesFailed = errors.New("some files could not be normalized")

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	envLoaded := godotenv.Overload() == nil

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := newRootCmd(envLoaded)
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if !errors.Is(err, errFilesFailed) {
			fmt.Fprintln(os.Stderr, err)
		}
		stop()
		os.Exit(1)
	}
}

func newRootCmd(envLoaded bool) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "normalize",
		Short:         "Normalize promotion redemption exports into one canonical schema",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		newRunCmd(envLoaded),
		newCodesCmd(envLoaded),
		newMatchCmd(envLoaded),
		newInterleaveCmd(envLoaded),
		newSplitCmd(envLoaded),
		newVersionCmd(),
	)

	return rootCmd
}

// userError logs the technical cause of err and returns it mapped to the
// message shown to the user. The cause stays reachable through Unwrap.
func userError(err error) error {
	slog.Error("command failed", "error", err)
	return core.NewUserError(err)
}

// overrides holds command-line values that replace configured ones.
type overrides struct {
	outDir   string
	tieBreak string
	cutoff   float64
	scorer   string
}

// loadConfig reads the environment, applies any flags the user set and
// validates the result once more.
func loadConfig(cmd *cobra.Command, envLoaded bool, args []string, o *overrides) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if len(args) > 0 {
		cfg.Paths.InputDir = args[0]
	}
	if flags.Changed("out") {
		cfg.Paths.OutputDir = o.outDir
	}
	if flags.Changed("date-tie-break") {
		cfg.Dates.TieBreak = o.tieBreak
	}
	if flags.Changed("fuzzy-cutoff") {
		cfg.Match.Cutoff = o.cutoff
	}
	if flags.Changed("scorer") {
		cfg.Match.Scorer = o.scorer
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)
	if envLoaded {
		slog.Debug("loaded .env file (overwriting existing env vars)")
	}
	slog.Debug("configuration loaded", "config", cfg.String())

	return cfg, nil
}

func newRunCmd(envLoaded bool) *cobra.Command {
	var o overrides
	var verbose bool

	cmd := &cobra.Command{
		Use:   "run [input-dir]",
		Short: "Normalize every .csv and .xlsx export in a directory",
		Long: `Normalize every export found directly inside the input directory.

Each file is read, its headers are matched to the canonical schema, values
are coerced, dates are resolved to ISO form and empty rows are dropped. The
result is written as <prefix><name>.csv in the output directory. A file that
fails is reported and the rest of the batch still runs.

Example: normalize run ./exports --date-tie-break month-first`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, envLoaded, args, &o)
			if err != nil {
				return err
			}

			opts, err := cfg.PipelineOptions()
			if err != nil {
				return err
			}

			runner := batch.NewRunner(
				tabular.NewReader(cfg.Input.MaxFileSize, cfg.Input.MissingTokens),
				core.New(opts),
				batch.Options{
					OutputDir: cfg.Paths.ResolvedOutputDir(),
					Prefix:    cfg.Paths.OutputPrefix,
				},
			)

			summary, err := runner.ProcessDir(cmd.Context(), cfg.Paths.InputDir)
			if err != nil {
				return userError(err)
			}

			console.NewPrinter(cmd.OutOrStdout(), verbose).Summary(summary)
			if summary.Failed > 0 {
				return errFilesFailed
			}
			return nil
		},
	}

	addOverrideFlags(cmd, &o)
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "List every header resolution, not only fuzzy and unmatched ones")

	return cmd
}

func newCodesCmd(envLoaded bool) *cobra.Command {
	var o overrides

	cmd := &cobra.Command{
		Use:   "codes [dir]",
		Short: "Collect the distinct promotion codes from normalized files",
		Long: `Read every CSV in the output directory (or the given directory), collect
the distinct trimmed promotion_code values and write them, sorted, under a
single "code" column.

Example: normalize codes --out ./exports/check_headers_output`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, envLoaded, nil, &o)
			if err != nil {
				return err
			}

			dir := cfg.Paths.ResolvedOutputDir()
			if len(args) > 0 {
				dir = args[0]
			}

			sources, err := codes.Sources(dir, cfg.Paths.CodesFile)
			if err != nil {
				return userError(err)
			}

			res := codes.Collect(tabular.NewReader(cfg.Input.MaxFileSize, cfg.Input.MissingTokens), sources)
			for _, f := range res.Files {
				if f.Err != nil {
					slog.Warn("skipped file", "file", f.Path, "error", f.Err)
					continue
				}
				slog.Info("collected codes", "file", f.Path, "codes", f.Count)
			}

			out := filepath.Join(dir, cfg.Paths.CodesFile)
			if err := codes.Write(out, res.Codes); err != nil {
				return userError(err)
			}

			console.NewPrinter(cmd.OutOrStdout(), false).Codes(out, res)
			return nil
		},
	}

	cmd.Flags().StringVar(&o.outDir, "out", "", "Directory holding normalized files (default: configured output directory)")

	return cmd
}

// newTableReader loads the configuration for the row tools and returns a
// reader honouring its size limit and missing-value tokens.
func newTableReader(cmd *cobra.Command, envLoaded bool) (*tabular.Reader, error) {
	cfg, err := loadConfig(cmd, envLoaded, nil, &overrides{})
	if err != nil {
		return nil, err
	}
	return tabular.NewReader(cfg.Input.MaxFileSize, cfg.Input.MissingTokens), nil
}

func readTable(r *tabular.Reader, path string) (core.RawTable, error) {
	t, _, err := r.ReadFile(path)
	if err != nil {
		return core.RawTable{}, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return t, nil
}

func writeTable(path string, t core.RawTable) error {
	return tabular.WriteFile(path, func(w io.Writer) error {
		return tabular.WriteRaw(w, t)
	})
}

func newMatchCmd(envLoaded bool) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "match <source> <mask>",
		Short: "Keep source rows whose promotion code appears in a mask file",
		Long: `Keep the rows of the source file whose promotion_code matches a code in the
mask file, ignoring case. Kept rows carry the mask's spelling of the code.

Example: normalize match redemptions.csv campaign_codes.csv --out matched_rows.csv`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := newTableReader(cmd, envLoaded)
			if err != nil {
				return err
			}
			src, err := readTable(r, args[0])
			if err != nil {
				return userError(err)
			}
			mask, err := readTable(r, args[1])
			if err != nil {
				return userError(err)
			}

			matched, err := rowops.MatchCodes(src, mask)
			if err != nil {
				return userError(err)
			}
			if err := writeTable(out, matched); err != nil {
				return userError(err)
			}

			slog.Info("rows matched", "source", args[0], "mask", args[1], "kept", len(matched.Rows), "of", len(src.Rows))
			console.NewPrinter(cmd.OutOrStdout(), false).Wrote(out, len(matched.Rows))
			return nil
		},
	}

	cmd.Flags().StringVar(&out, "out", "matched_rows.csv", "Output file")

	return cmd
}

func newInterleaveCmd(envLoaded bool) *cobra.Command {
	var out, column string

	cmd := &cobra.Command{
		Use:   "interleave <file>",
		Short: "Interleave rows of equally sized offer groups for batch generation",
		Long: `Group rows by the offer column in order of first appearance and write them
round-robin: the first row of each offer, then the second, and so on. Every
offer must have the same number of rows.

Example: normalize interleave vouchers.csv --column offer_name --out output.csv`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := newTableReader(cmd, envLoaded)
			if err != nil {
				return err
			}
			t, err := readTable(r, args[0])
			if err != nil {
				return userError(err)
			}

			interleaved, err := rowops.Interleave(t, column)
			if err != nil {
				return userError(err)
			}
			if err := writeTable(out, interleaved); err != nil {
				return userError(err)
			}

			console.NewPrinter(cmd.OutOrStdout(), false).Wrote(out, len(interleaved.Rows))
			return nil
		},
	}

	cmd.Flags().StringVar(&out, "out", "output.csv", "Output file")
	cmd.Flags().StringVar(&column, "column", rowops.DefaultGroupColumn, "Column whose values form the groups")

	return cmd
}

func newSplitCmd(envLoaded bool) *cobra.Command {
	var parts int
	var prefix string

	cmd := &cobra.Command{
		Use:   "split <file>",
		Short: "Split a file into parts of nearly equal size",
		Long: `Split a file into consecutive parts written as <prefix>_part<N>.csv. Each
part holds ceil(rows/parts) rows; the last parts may be shorter or empty.

Example: normalize split vouchers.csv --parts 3`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := newTableReader(cmd, envLoaded)
			if err != nil {
				return err
			}
			t, err := readTable(r, args[0])
			if err != nil {
				return userError(err)
			}

			split, err := rowops.Split(t, parts)
			if err != nil {
				return userError(err)
			}

			if prefix == "" {
				prefix = strings.TrimSuffix(args[0], filepath.Ext(args[0]))
			}
			p := console.NewPrinter(cmd.OutOrStdout(), false)
			for i, part := range split {
				path := rowops.PartPath(prefix, i)
				if err := writeTable(path, part); err != nil {
					return userError(err)
				}
				p.Wrote(path, len(part.Rows))
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&parts, "parts", 2, "Number of parts")
	cmd.Flags().StringVar(&prefix, "prefix", "", "Output path prefix (default: input path without extension)")

	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	}
}

func addOverrideFlags(cmd *cobra.Command, o *overrides) {
	cmd.Flags().StringVar(&o.outDir, "out", "", "Output directory (default: <input-dir>/check_headers_output)")
	cmd.Flags().StringVar(&o.tieBreak, "date-tie-break", "", "Date order when both read equally well: day-first or month-first")
	cmd.Flags().Float64Var(&o.cutoff, "fuzzy-cutoff", core.DefaultFuzzyCutoff, "Minimum similarity for a fuzzy header match (0-1)")
	cmd.Flags().StringVar(&o.scorer, "scorer", core.ScorerGestalt, "Header similarity: gestalt or levenshtein")
}
