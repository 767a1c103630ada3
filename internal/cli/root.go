package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/langbench/internal/config"
	"github.com/ppiankov/langbench/internal/fixture"
	"github.com/ppiankov/langbench/internal/reporter"
	"github.com/ppiankov/langbench/internal/runner"
)

// FailedTestsError is returned in strict mode when at least one fixture failed.
type FailedTestsError struct {
	Failed int
	Total  int
}

func (e *FailedTestsError) Error() string {
	return fmt.Sprintf("%d of %d tests failed", e.Failed, e.Total)
}

// testOptions is the merged result of flags and the settings file.
type testOptions struct {
	binary    string
	dir       string
	timeout   time.Duration
	preview   int
	diff      bool
	jsonPath  string
	sarifPath string
	strict    bool
	watch     bool
	tuiMode   string
	poll      bool
	noColor   bool
}

// NewRootCmd builds the langtest command.
func NewRootCmd() *cobra.Command {
	var (
		opts       testOptions
		verbose    bool
		configFile string
	)

	root := &cobra.Command{
		Use:   "langtest [name]",
		Short: "Run interpreter fixtures and compare their output",
		Long: "langtest runs the interpreter binary once per fixture in the fixtures directory.\n" +
			"Each fixture is <name>.lang (program), <name>.in (stdin) and <name>.out (expected stdout).\n" +
			"With no arguments every fixture runs; with a name only that fixture runs.",
		Args:    cobra.MaximumNArgs(1),
		Version: versionString(),
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogging(verbose)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := config.LoadSettings(configFile)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			applySettings(cmd, &opts, settings)

			name := ""
			if len(args) == 1 {
				name = args[0]
			}
			return runTests(cmd.Context(), cmd.OutOrStdout(), opts, name)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	root.PersistentFlags().StringVar(&configFile, "config", ".langtest.yml", "path to config file")

	f := root.Flags()
	f.StringVar(&opts.binary, "binary", "./lang", "interpreter command; the fixture source path is appended")
	f.StringVar(&opts.dir, "dir", "./tests", "fixtures directory")
	f.DurationVar(&opts.timeout, "timeout", runner.DefaultTimeout, "wall-clock limit per fixture")
	f.IntVar(&opts.preview, "preview", reporter.DefaultPreviewLength, "characters of output shown on a wrong answer")
	f.BoolVar(&opts.diff, "diff", false, "print a line diff on a wrong answer")
	f.StringVar(&opts.jsonPath, "json", "", "write a JSON report to this path")
	f.StringVar(&opts.sarifPath, "sarif", "", "write a SARIF report of failed fixtures to this path")
	f.BoolVar(&opts.strict, "strict", false, "exit with code 1 when any fixture fails")
	f.BoolVar(&opts.watch, "watch", false, "re-run when fixtures or the binary change")
	f.StringVar(&opts.tuiMode, "tui", "auto", "watch display: on (dashboard), off (plain text), auto (detect TTY)")
	f.BoolVar(&opts.poll, "poll", false, "watch by polling instead of filesystem notifications")
	f.BoolVar(&opts.noColor, "no-color", false, "disable colored output")

	return root
}

// applySettings fills options from the settings file unless the flag was set.
func applySettings(cmd *cobra.Command, opts *testOptions, s *config.Settings) {
	flags := cmd.Flags()
	if !flags.Changed("binary") && s.Binary != "" {
		opts.binary = s.Binary
	}
	if !flags.Changed("dir") && s.FixturesDir != "" {
		opts.dir = s.FixturesDir
	}
	if !flags.Changed("timeout") && s.Timeout > 0 {
		opts.timeout = s.Timeout
	}
	if !flags.Changed("preview") && s.PreviewLength > 0 {
		opts.preview = s.PreviewLength
	}
	if !flags.Changed("diff") && s.Diff {
		opts.diff = true
	}
	if !flags.Changed("strict") && s.Strict {
		opts.strict = true
	}
	if !flags.Changed("json") && s.JSONReport != "" {
		opts.jsonPath = s.JSONReport
	}
	if !flags.Changed("sarif") && s.SARIFReport != "" {
		opts.sarifPath = s.SARIFReport
	}
}

func runTests(ctx context.Context, out io.Writer, opts testOptions, name string) error {
	switch opts.tuiMode {
	case "auto", "on", "off":
	default:
		return fmt.Errorf("invalid --tui value %q (want auto, on or off)", opts.tuiMode)
	}

	command, err := runner.ParseCommand(opts.binary)
	if err != nil {
		return fmt.Errorf("parse --binary: %w", err)
	}
	r, err := runner.New(runner.Config{Command: command, Timeout: opts.timeout})
	if err != nil {
		return err
	}

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	sel := fixtureSelector{dir: opts.dir, name: name}
	slog.Debug("langtest starting", "binary", command, "dir", opts.dir, "timeout", r.Timeout(), "fixture", name)

	if opts.watch {
		return runWatch(ctx, out, opts, r, sel, watchedBinary(command))
	}

	textRep := reporter.NewTextReporter(out, reporterOptions(out, opts))
	sum, err := runRound(ctx, runner.NewSuite(r, textRep), sel, textRep)
	if err != nil {
		return err
	}

	if err := writeReports(sum, opts); err != nil {
		return err
	}
	if opts.strict && !sum.AllPassed() {
		return &FailedTestsError{Failed: sum.Failed(), Total: sum.Total}
	}
	return nil
}

// fixtureSelector resolves the fixtures of one round. Discovery is repeated
// each round so watch mode sees added and removed fixtures.
type fixtureSelector struct {
	dir  string
	name string // empty for all fixtures
}

func (s fixtureSelector) single() bool { return s.name != "" }

func (s fixtureSelector) fixtures() ([]fixture.Fixture, error) {
	if s.single() {
		return []fixture.Fixture{fixture.New(s.dir, s.name)}, nil
	}
	fixtures, err := fixture.Discover(s.dir)
	if err != nil {
		return nil, err
	}
	slog.Debug("discovered fixtures", "dir", s.dir, "count", len(fixtures))
	return fixtures, nil
}

// singlePassPrinter is implemented by reporters that confirm a lone passing fixture.
type singlePassPrinter interface {
	PrintSinglePass(name string)
}

// runRound runs the selected fixtures once and returns their summary.
func runRound(ctx context.Context, suite *runner.Suite, sel fixtureSelector, pp singlePassPrinter) (*runner.Summary, error) {
	fixtures, err := sel.fixtures()
	if err != nil {
		return nil, err
	}
	if !sel.single() {
		return suite.RunAll(ctx, fixtures)
	}

	start := time.Now()
	res, err := suite.RunOne(ctx, fixtures[0])
	if err != nil {
		return nil, err
	}
	if res.Passed() && pp != nil {
		pp.PrintSinglePass(res.Name)
	}
	return runner.NewSummary(start, res), nil
}

// writeReports writes the optional JSON and SARIF reports of a round.
func writeReports(sum *runner.Summary, opts testOptions) error {
	if opts.jsonPath != "" {
		if err := reporter.WriteJSONReport(sum, opts.jsonPath); err != nil {
			return err
		}
		slog.Info("report written", "format", "json", "path", opts.jsonPath)
	}
	if opts.sarifPath != "" {
		if err := reporter.WriteSARIFReport(sum, Version, opts.preview, opts.sarifPath); err != nil {
			return err
		}
		slog.Info("report written", "format", "sarif", "path", opts.sarifPath)
	}
	return nil
}

func reporterOptions(out io.Writer, opts testOptions) reporter.Options {
	return reporter.Options{
		Color:         !opts.noColor && out == io.Writer(os.Stdout) && isTerminal(),
		PreviewLength: opts.preview,
		Diff:          opts.diff,
	}
}

// watchedBinary returns the binary path to watch, or "" when the command
// is resolved through PATH.
func watchedBinary(command []string) string {
	bin := command[0]
	if !strings.ContainsRune(bin, filepath.Separator) && !strings.ContainsRune(bin, '/') {
		return ""
	}
	return bin
}

func setupLogging(verbose bool) {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})))
}

// isTerminal checks if stdout is a terminal.
func isTerminal() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}
