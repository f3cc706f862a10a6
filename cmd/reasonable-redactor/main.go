// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"golang.org/x/term"

	"reasonable-redactor/internal/batch"
	"reasonable-redactor/internal/config"
	"reasonable-redactor/internal/formatters"
	_ "reasonable-redactor/internal/formatters/json"
	"reasonable-redactor/internal/formatters/text"
	_ "reasonable-redactor/internal/formatters/yaml"
	"reasonable-redactor/internal/observability"
	"reasonable-redactor/internal/redactors"
	"reasonable-redactor/internal/redactors/pdf"
	"reasonable-redactor/internal/version"
)

// cliFlags holds command line flag values
type cliFlags struct {
	inDir        string
	outDir       string
	configPath   string
	setup        bool
	noPrompt     bool
	workers      int
	noColor      bool
	debug        bool
	reportFormat string
	showVersion  bool
}

func parseFlags(args []string, stderr io.Writer) (*cliFlags, error) {
	fs := flag.NewFlagSet("reasonable-redactor", flag.ContinueOnError)
	fs.SetOutput(stderr)

	f := &cliFlags{}
	fs.StringVar(&f.inDir, "in", "./in", "Folder with the PDFs to redact")
	fs.StringVar(&f.outDir, "out", "./out", "Folder for the redacted copies")
	fs.StringVar(&f.configPath, "config", "./"+config.DefaultFileName, "Settings file")
	fs.BoolVar(&f.setup, "setup", false, "Run the interactive settings setup before processing")
	fs.BoolVar(&f.noPrompt, "no-prompt", false, "Never ask questions, use the saved settings")
	fs.IntVar(&f.workers, "workers", 1, "Number of documents processed at the same time")
	fs.BoolVar(&f.noColor, "no-color", false, "Disable colored output")
	fs.BoolVar(&f.debug, "debug", false, "Print a step trace and timing records to stderr")
	fs.StringVar(&f.reportFormat, "report", "", "Also write a run report to the output folder: json, yaml or text")
	fs.BoolVar(&f.showVersion, "version", false, "Show version information")

	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: reasonable-redactor [flags]\n\n")
		fmt.Fprintf(stderr, "Redacts email addresses and Bcc header blocks from every PDF in the input folder.\n\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}
	if f.workers < 1 {
		return nil, fmt.Errorf("-workers must be at least 1, got %d", f.workers)
	}
	if f.setup && f.noPrompt {
		return nil, errors.New("-setup and -no-prompt cannot be combined")
	}
	if f.reportFormat != "" {
		if _, ok := formatters.Get(f.reportFormat); !ok {
			return nil, fmt.Errorf("unsupported report format '%s'. Available formats: %s",
				f.reportFormat, strings.Join(formatters.List(), ", "))
		}
	}
	return f, nil
}

// isTerminal checks if the stream is a terminal
func isTerminal(v interface{}) bool {
	f, ok := v.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes the tool and returns the process exit code. Per-document
// failures do not change the exit code.
func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	flags, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	if flags.showVersion {
		fmt.Fprintln(stdout, version.Info())
		return 0
	}

	if flags.noColor || !isTerminal(stdout) {
		color.NoColor = true
	}
	console := text.NewFormatter()

	observer := observability.Nop()
	if flags.debug {
		observer = observability.NewDebugObserver(stderr).StandardObserver
	}

	for _, dir := range []string{flags.inDir, flags.outDir} {
		if err := os.MkdirAll(dir, 0750); err != nil {
			fmt.Fprintf(stderr, "Error: cannot create folder %s: %v\n", dir, err)
			return 1
		}
	}

	settings := loadSettings(flags, stdin, stdout, stderr, console, observer)

	outputManager, err := redactors.NewOutputManager(flags.outDir, observer)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	report := formatters.NewReport(version.AppName, version.Short(), flags.inDir, flags.outDir)
	headerPrinted := false
	runner := &batch.Runner{
		InputDir: flags.inDir,
		Output:   outputManager,
		Redactor: pdf.NewDocumentRedactor(settings, nil, outputManager, observer),
		Workers:  flags.workers,
		Observer: observer,
		Report: func(o batch.Outcome) {
			if !headerPrinted {
				fmt.Fprint(stdout, console.Header(version.AppName))
				headerPrinted = true
			}
			fmt.Fprint(stdout, console.Entry(report.Add(o)))
		},
	}

	summary, err := runner.Run(ctx)
	report.Stamp = summary.Stamp
	switch {
	case errors.Is(err, batch.ErrNoInput):
		fmt.Fprintln(stdout, "\nNo PDFs found.")
		fmt.Fprintf(stdout, "Put PDFs into: %s\n", absPath(flags.inDir))
		return 0
	case errors.Is(err, context.Canceled):
		fmt.Fprint(stdout, console.Summary(report))
		fmt.Fprintln(stderr, "Interrupted: remaining files were not processed.")
		return 1
	case err != nil:
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	report.OutputDir = absPath(flags.outDir)
	fmt.Fprint(stdout, console.Summary(report))

	if flags.reportFormat != "" {
		path, err := writeReport(outputManager, flags.reportFormat, report)
		if err != nil {
			fmt.Fprint(stderr, console.Warning("could not write run report: %v", err))
		} else {
			fmt.Fprintf(stdout, "Report: %s\n", path)
		}
	}
	return 0
}

// loadSettings reads the settings file and runs the setup prompt when asked
// to. A broken settings file is reported and replaced by the defaults.
func loadSettings(flags *cliFlags, stdin io.Reader, stdout, stderr io.Writer, console *text.Formatter, observer *observability.StandardObserver) config.Settings {
	finishTiming := observer.StartTiming(observability.ComponentConfig, "load", flags.configPath)
	loaded := config.Load(flags.configPath)
	meta := map[string]interface{}{"source": loaded.Source, "fallback": loaded.Fallback}
	if loaded.Err != nil {
		meta["error"] = loaded.Err.Error()
	}
	finishTiming(loaded.Err == nil, meta)

	if loaded.Fallback {
		fmt.Fprint(stderr, console.Warning("%v", loaded.Err))
		fmt.Fprint(stderr, console.Warning("using default settings"))
	}
	settings := loaded.Settings

	prompter := config.NewPrompter(stdin, stdout)
	edit := flags.setup
	if !edit && !flags.noPrompt && isTerminal(stdin) {
		edit = prompter.Confirm("Edit settings? (y/N) [N] : ", false)
	}
	if !edit {
		return settings
	}

	settings = prompter.Setup(version.AppName, settings)
	if err := config.Save(flags.configPath, settings); err != nil {
		fmt.Fprint(stderr, console.Warning("could not save settings: %v", err))
	}
	return settings
}

func writeReport(om *redactors.OutputManager, format string, report *formatters.Report) (string, error) {
	name, err := formatters.ReportFileName(format, report.Stamp)
	if err != nil {
		return "", err
	}
	content, err := formatters.Export(format, report, formatters.FormatterOptions{NoColor: true})
	if err != nil {
		return "", err
	}
	path := filepath.Join(om.OutputDir(), name)
	err = om.WriteAtomic(path, func(tmp string) error {
		return os.WriteFile(tmp, []byte(content), 0600)
	})
	return path, err
}

func absPath(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}
