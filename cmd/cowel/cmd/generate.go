// Copyright 2024-2025 The COWEL Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/eisenwave/cowel"
	"github.com/eisenwave/cowel/reporter"
)

var (
	outputPath  string
	minimal     bool
	logSeverity string
)

var generateCmd = &cobra.Command{
	Use:   "generate [file]",
	Short: "Generate HTML from a COWEL document",
	Long: `Compile a COWEL source file to HTML.

Examples:
  # Compile a document to stdout
  cowel generate doc.cow

  # Compile to a file
  cowel generate doc.cow -o doc.html

  # Emit only the body, without <head> orchestration
  cowel generate --minimal doc.cow`,
	Args: cobra.ExactArgs(1),
	RunE: runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.Flags().StringVarP(&outputPath, "output", "o", "", "write output to file instead of stdout")
	generateCmd.Flags().BoolVar(&minimal, "minimal", false, "emit the body only")
	generateCmd.Flags().StringVar(&logSeverity, "log-severity", "warning",
		"minimum diagnostic severity (trace, debug, info, soft_warning, warning, error, fatal, none)")
}

func severityFromName(name string) (reporter.Severity, bool) {
	switch name {
	case "trace":
		return reporter.SeverityTrace, true
	case "debug":
		return reporter.SeverityDebug, true
	case "info":
		return reporter.SeverityInfo, true
	case "soft_warning":
		return reporter.SeveritySoftWarning, true
	case "warning":
		return reporter.SeverityWarning, true
	case "error":
		return reporter.SeverityError, true
	case "fatal":
		return reporter.SeverityFatal, true
	case "none":
		return reporter.SeverityNone, true
	}
	return 0, false
}

func runGenerate(cmd *cobra.Command, args []string) error {
	severity, ok := severityFromName(logSeverity)
	if !ok {
		exitWithError("unknown severity %q", logSeverity)
	}

	source, err := os.ReadFile(args[0])
	if err != nil {
		exitWithError("cannot read %s: %v", args[0], err)
	}

	loader := cowel.NewRelativeFileLoader(filepath.Dir(args[0]))
	logger := reporter.LoggerFunc(func(d reporter.Diagnostic) {
		name := d.FileName
		if name == "" {
			name = loader.FileName(d.Location.File)
		}
		if name == "" {
			name = args[0]
		}
		fmt.Fprintf(os.Stderr, "%s:%d:%d: %s: %s [%s]\n",
			name, d.Location.Line+1, d.Location.Column+1,
			d.Severity, d.Message, d.ID)
	})

	mode := cowel.ModeDocument
	if minimal {
		mode = cowel.ModeMinimal
	}
	result := cowel.GenerateHTML(cowel.Options{
		Source:         string(source),
		Mode:           mode,
		MinLogSeverity: severity,
		Logger:         logger,
		Loader:         loader,
	})
	if result.Status == cowel.ProcessingFatal {
		// Diagnostics were already printed; only report the outcome.
		return reporter.ErrInvalidSource
	}

	if outputPath == "" {
		_, err = os.Stdout.Write(result.Output)
		return err
	}
	return os.WriteFile(outputPath, result.Output, 0o644)
}
