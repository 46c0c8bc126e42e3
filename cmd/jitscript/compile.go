package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"jitscript/internal/config"
	"jitscript/internal/diag"
	"jitscript/internal/diagfmt"
	"jitscript/internal/driver"
	"jitscript/internal/observ"
	"jitscript/internal/source"
	"jitscript/internal/version"
)

var compileCmd = &cobra.Command{
	Use:   "compile <bundle.yaml>",
	Short: "Compile the methods of a module bundle to graph IR",
	Args:  cobra.ExactArgs(1),
	RunE:  runCompile,
}

func init() {
	compileCmd.Flags().String("emit", "", "what to write: ir|msgpack|none (default from config, else ir)")
	compileCmd.Flags().StringP("output", "o", "", "write emitted IR to this file instead of stdout")
	compileCmd.Flags().Int("jobs", 0, "max parallel method compilations (0=auto)")
	compileCmd.Flags().StringSlice("library", nil, "extra operator library (TOML); repeatable")
	compileCmd.Flags().String("cache", "", "operator registry snapshot to read instead of the libraries")
	compileCmd.Flags().String("format", "", "diagnostic format (pretty|short)")
	compileCmd.Flags().Bool("notes", true, "show diagnostic notes")
	compileCmd.Flags().String("ui", "off", "show per-method progress (auto|on|off)")
}

func runCompile(cmd *cobra.Command, args []string) (err error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	cleanup, err := setupTracing(cmd, cfg)
	if err != nil {
		return err
	}
	defer func() { cleanup(err != nil) }()
	stopProfiling, err := setupProfiling(cmd)
	if err != nil {
		return err
	}
	defer stopProfiling()

	emitFlag, err := cmd.Flags().GetString("emit")
	if err != nil {
		return err
	}
	if emitFlag == "" {
		emitFlag = cfg.Compile.Emit
	}
	emit, err := driver.ParseEmitMode(emitFlag)
	if err != nil {
		return err
	}
	jobs := cfg.Compile.Jobs
	if cmd.Flags().Changed("jobs") {
		if jobs, err = cmd.Flags().GetInt("jobs"); err != nil {
			return err
		}
	}
	libs, err := libraryFlags(cmd, cfg)
	if err != nil {
		return err
	}
	cache, err := cacheFlag(cmd, cfg)
	if err != nil {
		return err
	}
	showTimings, err := cmd.Root().PersistentFlags().GetBool("timings")
	if err != nil {
		return err
	}
	var timer *observ.Timer
	if showTimings {
		timer = observ.NewTimer()
	}
	opset := cfg.Compile.Version
	if opset == "" {
		opset = version.OpsetVersion
	}

	uiFlag, err := cmd.Flags().GetString("ui")
	if err != nil {
		return err
	}
	showUI, err := wantProgressUI(uiFlag)
	if err != nil {
		return err
	}

	opts := driver.Options{
		Libraries:      libs,
		Cache:          cache,
		Namespaces:     cfg.Compile.Namespaces,
		Version:        opset,
		Jobs:           jobs,
		MaxDiagnostics: cfg.Diagnostics.Max,
		Timer:          timer,
	}
	var res *driver.Result
	if showUI {
		res, err = runCompileWithUI(cmd.Context(), "compiling "+filepath.Base(args[0]), args[0], opts)
	} else {
		res, err = driver.Compile(cmd.Context(), args[0], opts)
	}
	if err != nil {
		return fmt.Errorf("compilation failed: %w", err)
	}

	if err := printDiagnostics(cmd, cfg, res.Bag, res.FileSet); err != nil {
		return err
	}
	if showTimings {
		fmt.Fprint(cmd.ErrOrStderr(), timer.Summary())
	}
	if res.Bag.HasErrors() {
		return exitError{code: 1}
	}

	outPath, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := driver.Export(&buf, res.Program, emit); err != nil {
		return fmt.Errorf("failed to export IR: %w", err)
	}
	if outPath == "" {
		_, err = io.Copy(cmd.OutOrStdout(), &buf)
		return err
	}
	if err := os.WriteFile(outPath, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %w", outPath, err)
	}
	return nil
}

func printDiagnostics(cmd *cobra.Command, cfg config.Config, bag *diag.Bag, fs *source.FileSet) error {
	if bag.Len() == 0 {
		return nil
	}
	format := cfg.Diagnostics.Format
	if f, err := cmd.Flags().GetString("format"); err == nil && f != "" {
		format = f
	}
	notes := cfg.Diagnostics.Notes
	if cmd.Flags().Changed("notes") {
		notes, _ = cmd.Flags().GetBool("notes")
	}
	colored, err := useColor(cmd, os.Stderr)
	if err != nil {
		return err
	}
	pathMode, ok := diagfmt.ParsePathMode(cfg.Diagnostics.PathMode)
	if !ok {
		return fmt.Errorf("invalid diagnostics path_mode %q", cfg.Diagnostics.PathMode)
	}
	opts := diagfmt.PrettyOpts{
		Color:     colored,
		Context:   cfg.Diagnostics.Context,
		PathMode:  pathMode,
		ShowNotes: notes,
	}
	w := cmd.ErrOrStderr()
	switch format {
	case "pretty":
		err = diagfmt.Pretty(w, bag, fs, opts)
	case "short":
		err = diagfmt.Short(w, bag, fs, opts)
	default:
		return fmt.Errorf("unknown diagnostic format: %s", format)
	}
	if err != nil {
		return err
	}
	if n := bag.Dropped(); n > 0 {
		_, err = fmt.Fprintf(w, "... %d more diagnostics not shown (max_diagnostics = %d)\n", n, bag.Len())
	}
	return err
}
