// Command analyzer runs the price/volume deviation analysis on a CSV or
// Excel file and writes the two-sheet workbook (or CSV tables).
//
//	analyzer -in prices.csv -x 20 -y 5 -i 10 -j 2
//	analyzer -in prices.csv -format csv -out tanla
//	analyzer -recount tanla_data.csv
//
// Parameters not given as flags or in the configuration file are asked for
// on stdin.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"slices"
	"strings"
	"syscall"

	"pvcli/internal/analysis"
	"pvcli/internal/config"
	"pvcli/internal/infrastructure"
	"pvcli/internal/services"
	"pvcli/pkg/contracts"
	"pvcli/pkg/contracts/domain"
)

const (
	formatXLSX = "xlsx"
	formatCSV  = "csv"
)

// errUsage marks command-line mistakes; main exits with status 2
var errUsage = errors.New("usage error")

type options struct {
	in         string
	out        string
	format     string
	recount    string
	configFile string
	version    bool
	params     domain.AnalysisParams
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()

	switch {
	case err == nil, errors.Is(err, flag.ErrHelp):
		return
	case errors.Is(err, errUsage):
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	default:
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	opts := &options{}
	fs := flag.NewFlagSet("analyzer", flag.ContinueOnError)
	fs.SetOutput(stderr)

	fs.StringVar(&opts.in, "in", "", "input CSV or Excel file with time, Price and Volume columns")
	fs.StringVar(&opts.out, "out", "", "output workbook path, or base name for -format csv (relative paths land in the reports directory)")
	fs.StringVar(&opts.format, "format", formatXLSX, "output format: xlsx or csv")
	fs.StringVar(&opts.recount, "recount", "", "rebuild the frequency table from an exported Data table")
	fs.StringVar(&opts.configFile, "config", "", "configuration file (YAML)")
	fs.BoolVar(&opts.version, "version", false, "print version and exit")
	raw := make(map[string]*string, len(prompts))
	for _, p := range prompts {
		raw[p.param] = fs.String(p.param, "", p.usage)
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", errUsage, err)
	}
	if opts.version {
		return opts, nil
	}

	// Explicitly given parameters must be positive integers; only absent
	// ones fall back to the configuration or a prompt.
	var paramErr error
	fs.Visit(func(f *flag.Flag) {
		for _, p := range prompts {
			if p.param != f.Name || paramErr != nil {
				continue
			}
			n, err := analysis.ParseParam(p.param, *raw[p.param])
			if err != nil {
				paramErr = err
				return
			}
			*p.field(&opts.params) = n
		}
	})
	if paramErr != nil {
		return nil, paramErr
	}

	if fs.NArg() > 0 {
		return nil, fmt.Errorf("%w: unexpected arguments %v", errUsage, fs.Args())
	}
	if !slices.Contains([]string{formatXLSX, formatCSV}, opts.format) {
		return nil, fmt.Errorf("%w: -format must be xlsx or csv, got %q", errUsage, opts.format)
	}
	if opts.in == "" && opts.recount == "" {
		return nil, fmt.Errorf("%w: -in is required", errUsage)
	}
	return opts, nil
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}
	if opts.version {
		fmt.Fprintln(stdout, contracts.GetFullVersionString())
		return nil
	}

	cfg, err := config.Load(opts.configFile)
	if err != nil {
		return err
	}
	// Nothing scrapes a CLI run; spans still go to stdout when configured
	cfg.Telemetry.Metrics = false

	logger, closer, err := infrastructure.NewLogger(cfg.Logging, stderr)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	if closer != nil {
		defer closer.Close()
	}
	slog.SetDefault(logger)

	paths, err := config.ResolvePaths(cfg.Paths)
	if err != nil {
		return err
	}
	if err := paths.EnsureDirectories(); err != nil {
		return err
	}

	telemetry, err := infrastructure.InitializeOTel(cfg.Telemetry, contracts.Version, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := telemetry.Shutdown(context.WithoutCancel(ctx)); err != nil {
			logger.Warn("telemetry shutdown failed", slog.String("error", err.Error()))
		}
	}()

	svc, err := services.NewAnalysisService(cfg, paths, telemetry, logger)
	if err != nil {
		return err
	}

	if opts.recount != "" {
		return recount(ctx, svc, opts, stdout)
	}
	return analyze(ctx, svc, opts, stdin, stdout)
}

func analyze(ctx context.Context, svc *services.AnalysisService, opts *options, stdin io.Reader, stdout io.Writer) error {
	params := mergeParams(opts.params, svc.DefaultParams())
	if err := promptMissing(&params, bufio.NewScanner(stdin), stdout); err != nil {
		return err
	}

	if err := svc.ValidateInput(opts.in); err != nil {
		return err
	}
	file, err := os.Open(opts.in)
	if err != nil {
		return fmt.Errorf("failed to open input: %w", err)
	}
	defer file.Close()

	report, err := svc.Analyze(ctx, services.AnalyzeRequest{
		Name:   filepath.Base(opts.in),
		Reader: file,
		Params: params,
		Source: services.SourceCLI,
	})
	if err != nil {
		return err
	}

	switch opts.format {
	case formatCSV:
		base := opts.out
		if base == "" {
			base = baseName(opts.in)
		}
		files, err := svc.WriteCSV(ctx, report, base)
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "Process complete. CSV files saved to: %s, %s\n", files.Data, files.Frequency)
	default:
		out := opts.out
		if out == "" {
			out = config.WorkbookFileName
		}
		path, err := svc.SaveWorkbook(ctx, report, out)
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "Process complete. Excel file saved to: %s\n", path)
	}

	fmt.Fprintln(stdout, rowSummary(report.Summary))
	return nil
}

func recount(ctx context.Context, svc *services.AnalysisService, opts *options, stdout io.Writer) error {
	if err := svc.ValidateInput(opts.recount); err != nil {
		return err
	}
	file, err := os.Open(opts.recount)
	if err != nil {
		return fmt.Errorf("failed to open labels: %w", err)
	}
	defer file.Close()

	rec, err := svc.Recount(ctx, filepath.Base(opts.recount), file)
	if err != nil {
		return err
	}

	base := opts.out
	if base == "" {
		base = strings.TrimSuffix(baseName(opts.recount), "_data") + "_recount"
	}
	path, err := svc.SaveRecount(ctx, rec, base)
	if err != nil {
		return err
	}

	fmt.Fprintf(stdout, "Frequency table rebuilt from %d rows: %s\n", rec.Rows, path)
	if len(rec.Warnings) > 0 {
		fmt.Fprintf(stdout, "%d malformed labels were sorted last\n", len(rec.Warnings))
	}
	return nil
}

// mergeParams fills unset flag values from the configured defaults
func mergeParams(flags, defaults domain.AnalysisParams) domain.AnalysisParams {
	pick := func(flag, def int) int {
		if flag != 0 {
			return flag
		}
		return def
	}
	return domain.AnalysisParams{
		Window:         pick(flags.Window, defaults.Window),
		Horizon:        pick(flags.Horizon, defaults.Horizon),
		VolumeBinWidth: pick(flags.VolumeBinWidth, defaults.VolumeBinWidth),
		PriceBinWidth:  pick(flags.PriceBinWidth, defaults.PriceBinWidth),
	}
}

var prompts = []struct {
	param string
	usage string
	text  string
	field func(*domain.AnalysisParams) *int
}{
	{"x", "number of previous days for the volume average", "Enter number of previous days for volume average (x): ", func(p *domain.AnalysisParams) *int { return &p.Window }},
	{"y", "number of forward days for the price return", "Enter number of forward days for price return (y): ", func(p *domain.AnalysisParams) *int { return &p.Horizon }},
	{"i", "bin interval size for the volume % difference", "Enter bin interval size for volume % difference (i): ", func(p *domain.AnalysisParams) *int { return &p.VolumeBinWidth }},
	{"j", "bin interval size for the price forward return %", "Enter bin interval size for price forward return % (j): ", func(p *domain.AnalysisParams) *int { return &p.PriceBinWidth }},
}

// promptMissing asks for every parameter still unset. A non-integer or
// non-positive answer is a ConfigurationError.
func promptMissing(params *domain.AnalysisParams, in *bufio.Scanner, out io.Writer) error {
	for _, p := range prompts {
		field := p.field(params)
		if *field != 0 {
			continue
		}

		fmt.Fprint(out, p.text)
		if !in.Scan() {
			if err := in.Err(); err != nil {
				return fmt.Errorf("failed to read %s: %w", p.param, err)
			}
			return &analysis.ConfigurationError{Param: p.param, Reason: "no value entered"}
		}

		n, err := analysis.ParseParam(p.param, in.Text())
		if err != nil {
			return err
		}
		*field = n
	}
	return nil
}

func rowSummary(s domain.RunSummary) string {
	dropped := 0
	keys := make([]string, 0, len(s.DroppedRows))
	for k, n := range s.DroppedRows {
		dropped += n
		keys = append(keys, k)
	}
	slices.Sort(keys)

	line := fmt.Sprintf("Rows: %d read, %d retained, %d dropped", s.InputRows, s.RetainedRows, dropped)
	if dropped > 0 {
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			if s.DroppedRows[k] > 0 {
				parts = append(parts, fmt.Sprintf("%s=%d", k, s.DroppedRows[k]))
			}
		}
		line += " (" + strings.Join(parts, ", ") + ")"
	}
	return line
}

func baseName(path string) string {
	name := filepath.Base(path)
	return strings.TrimSuffix(name, filepath.Ext(name))
}
