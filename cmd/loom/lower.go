package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"loom/internal/buildpipeline"
	"loom/internal/diag"
	"loom/internal/diagfmt"
	"loom/internal/driver"
	"loom/internal/project"
	"loom/internal/source"
)

var lowerCmd = &cobra.Command{
	Use:   "lower [flags] <file.py|directory>",
	Short: "Lower Python function definitions into the surface form or the graph IR",
	Long: `Lower every function definition of a Python file, of all *.py files within a
directory, or of a snippet read from stdin. Settings from loom.toml apply
unless overridden by flags.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLower,
}

func init() {
	lowerCmd.Flags().String("emit", "surface", "what to print (surface|graph|dump|deps)")
	lowerCmd.Flags().String("namespace", "", "namespace of generated local symbols (empty = random per unit)")
	lowerCmd.Flags().Int("jobs", 0, "max parallel workers for directory processing (0=auto)")
	lowerCmd.Flags().Bool("stdin", false, "read one function definition from stdin")
	lowerCmd.Flags().String("origin", "<stdin>", "file name reported for stdin input")
	lowerCmd.Flags().Uint32("line-offset", 1, "line of origin on which stdin input starts")
	lowerCmd.Flags().String("format", "pretty", "diagnostics format (pretty|json)")
	lowerCmd.Flags().Bool("with-notes", false, "include diagnostic notes in output")
	lowerCmd.Flags().Bool("fullpath", false, "emit absolute file paths in output")
}

// lowerSettings is the manifest merged with explicitly set flags.
type lowerSettings struct {
	emit       project.Emit
	namespace  string
	jobs       int
	lineOffset uint32
	color      string
	maxDiag    int
	format     string
	withNotes  bool
	pathMode   diagfmt.PathMode
	timings    bool
	quiet      bool
	ui         uiMode
	stdin      bool
	origin     string
}

func readLowerSettings(cmd *cobra.Command, target string) (*lowerSettings, error) {
	cfg := project.Defaults()
	manifest, ok, err := project.Load(target)
	if err != nil {
		return nil, err
	}
	if ok {
		cfg = manifest.Config
	}

	flags := cmd.Flags()
	pf := cmd.Root().PersistentFlags()
	s := &lowerSettings{
		emit:       cfg.Compile.Emit,
		namespace:  cfg.Compile.Namespace,
		jobs:       cfg.Compile.Jobs,
		lineOffset: cfg.Compile.LineOffset,
		color:      cfg.Diagnostics.Color,
		maxDiag:    cfg.Diagnostics.Max,
	}

	if flags.Changed("emit") {
		emitStr, err := flags.GetString("emit")
		if err != nil {
			return nil, fmt.Errorf("failed to get emit flag: %w", err)
		}
		if s.emit, err = project.ParseEmit(emitStr); err != nil {
			return nil, err
		}
	}
	if flags.Changed("namespace") {
		if s.namespace, err = flags.GetString("namespace"); err != nil {
			return nil, fmt.Errorf("failed to get namespace flag: %w", err)
		}
	}
	if flags.Changed("jobs") {
		if s.jobs, err = flags.GetInt("jobs"); err != nil {
			return nil, fmt.Errorf("failed to get jobs flag: %w", err)
		}
	}
	if flags.Changed("line-offset") {
		if s.lineOffset, err = flags.GetUint32("line-offset"); err != nil {
			return nil, fmt.Errorf("failed to get line-offset flag: %w", err)
		}
		if s.lineOffset == 0 {
			return nil, fmt.Errorf("--line-offset must be at least 1")
		}
	}
	if pf.Changed("color") {
		if s.color, err = pf.GetString("color"); err != nil {
			return nil, fmt.Errorf("failed to get color flag: %w", err)
		}
	}
	if pf.Changed("max-diagnostics") {
		if s.maxDiag, err = pf.GetInt("max-diagnostics"); err != nil {
			return nil, fmt.Errorf("failed to get max-diagnostics flag: %w", err)
		}
	}

	if s.format, err = flags.GetString("format"); err != nil {
		return nil, fmt.Errorf("failed to get format flag: %w", err)
	}
	switch s.format {
	case "pretty", "json":
	default:
		return nil, fmt.Errorf("unknown format: %s", s.format)
	}
	if s.withNotes, err = flags.GetBool("with-notes"); err != nil {
		return nil, fmt.Errorf("failed to get with-notes flag: %w", err)
	}
	fullPath, err := flags.GetBool("fullpath")
	if err != nil {
		return nil, fmt.Errorf("failed to get fullpath flag: %w", err)
	}
	if fullPath {
		s.pathMode = diagfmt.PathModeAbsolute
	}
	if s.stdin, err = flags.GetBool("stdin"); err != nil {
		return nil, fmt.Errorf("failed to get stdin flag: %w", err)
	}
	if s.origin, err = flags.GetString("origin"); err != nil {
		return nil, fmt.Errorf("failed to get origin flag: %w", err)
	}
	if s.timings, err = pf.GetBool("timings"); err != nil {
		return nil, fmt.Errorf("failed to get timings flag: %w", err)
	}
	if s.quiet, err = pf.GetBool("quiet"); err != nil {
		return nil, fmt.Errorf("failed to get quiet flag: %w", err)
	}
	uiStr, err := pf.GetString("ui")
	if err != nil {
		return nil, fmt.Errorf("failed to get ui flag: %w", err)
	}
	if s.ui, err = readUIMode(uiStr); err != nil {
		return nil, err
	}
	return s, nil
}

// runLower executes the "lower" command. It prints the requested form of
// every unit that compiled and reports diagnostics for the rest; any failure
// makes the command exit non-zero.
func runLower(cmd *cobra.Command, args []string) error {
	target := "."
	if len(args) == 1 {
		target = args[0]
	}
	s, err := readLowerSettings(cmd, target)
	if err != nil {
		return err
	}
	if s.stdin && len(args) == 1 {
		return fmt.Errorf("--stdin does not take a path")
	}
	color.NoColor = !useColor(s.color, os.Stderr)

	if s.stdin {
		return lowerStdin(cmd, s)
	}
	if len(args) == 0 {
		return fmt.Errorf("missing path (or use --stdin)")
	}
	return lowerPath(cmd, s, target)
}

func lowerStdin(cmd *cobra.Command, s *lowerSettings) error {
	src, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return fmt.Errorf("read stdin: %w", err)
	}
	fs, unit, err := driver.CompileSource(cmd.Context(), s.origin, s.lineOffset, src, driver.Options{
		Namespace:      s.namespace,
		MaxDiagnostics: s.maxDiag,
		EnableTimings:  s.timings,
		SkipGraph:      s.emit != project.EmitGraph,
	})
	if err != nil {
		return reportFailure(cmd, s, fs, unit.Bag, []error{err})
	}
	if err := emitUnit(cmd.OutOrStdout(), unit, s.emit); err != nil {
		return err
	}
	if s.timings && !s.quiet {
		diagfmt.Pretty(cmd.ErrOrStderr(), unit.Bag, fs, diagfmt.PrettyOpts{Color: !color.NoColor, PathMode: s.pathMode})
	}
	return nil
}

func lowerPath(cmd *cobra.Command, s *lowerSettings, target string) error {
	st, err := os.Stat(target)
	if err != nil {
		return err
	}
	baseDir := filepath.Dir(target)
	if st.IsDir() {
		baseDir = target
	}
	req := &buildpipeline.CompileRequest{
		TargetPath:     target,
		BaseDir:        baseDir,
		Namespace:      s.namespace,
		MaxDiagnostics: s.maxDiag,
		Jobs:           s.jobs,
		EnableTimings:  s.timings,
		SkipGraph:      s.emit != project.EmitGraph,
	}
	files, err := buildpipeline.ResolveFiles(req)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		if !s.quiet {
			fmt.Fprintf(cmd.ErrOrStderr(), "no *.py files under %s\n", target)
		}
		return nil
	}

	var res buildpipeline.CompileResult
	if shouldUseTUI(s.ui, len(files)) && !s.quiet {
		res, err = runCompileWithUI(cmd.Context(), "lowering "+target, files, req)
	} else {
		req.Files = files
		res, err = buildpipeline.Compile(cmd.Context(), req)
	}
	if res.Result == nil {
		return err
	}

	if emitErr := emitUnits(cmd.OutOrStdout(), res.Units, s.emit); emitErr != nil {
		return emitErr
	}
	if s.timings && !s.quiet {
		printStageTimings(cmd.ErrOrStderr(), res.Timings)
	}
	if err == nil {
		if s.timings && !s.quiet {
			diagfmt.Pretty(cmd.ErrOrStderr(), res.Bag, res.Files, diagfmt.PrettyOpts{Color: !color.NoColor, PathMode: s.pathMode})
		}
		return nil
	}
	var unitErrs []error
	for _, u := range res.Units {
		if u.Err != nil {
			unitErrs = append(unitErrs, u.Err)
		}
	}
	if len(unitErrs) == 0 {
		// cancelled or a pipeline error not tied to a unit
		return err
	}
	return reportFailure(cmd, s, res.Files, res.Bag, unitErrs)
}

// reportFailure renders errors in the selected format and returns
// errReported so main does not print them again.
func reportFailure(cmd *cobra.Command, s *lowerSettings, fs *source.FileSet, bag *diag.Bag, errs []error) error {
	out := cmd.ErrOrStderr()
	if s.format == "json" {
		if err := diagfmt.JSON(out, bag, fs, diagfmt.JSONOpts{IncludeSpans: true, PathMode: s.pathMode, IncludeNotes: s.withNotes}); err != nil {
			return errors.Join(err, errors.Join(errs...))
		}
		return errReported
	}
	sink := &diagfmt.Sink{W: out, Files: fs, Color: !color.NoColor, PathMode: s.pathMode}
	for _, err := range errs {
		sink.Handle(err)
	}
	return errReported
}
