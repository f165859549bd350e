package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/partwise/partwise/internal/diag"
	"github.com/partwise/partwise/internal/importer"
	"github.com/partwise/partwise/internal/mxml"
)

// CLI error codes for failures outside the import pipeline itself.
const (
	ErrCodeRead      = "READ_ERROR"
	ErrCodeContainer = "INVALID_CONTAINER"
	ErrCodeWrite     = "WRITE_ERROR"
)

// NewImportCommand creates the import command.
func NewImportCommand(rootOpts *RootOptions) *cobra.Command {
	var outPath string

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import a MusicXML file into a score",
		Long: `Import a MusicXML (.xml, .musicxml) or compressed MXL (.mxl) file.

The importer recovers from wrong text encodings, unrecognized elements,
and measure numbering gaps, recording every recovery as a warning. The
import is marked partial when any content had to be skipped or
truncated.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(rootOpts, args[0], outPath, cmd)
		},
	}

	cmd.Flags().StringVarP(&outPath, "output", "o", "", "write the canonical JSON result to a file")

	return cmd
}

func runImport(opts *RootOptions, path, outPath string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	result, err := importFile(path, formatter)
	if err != nil {
		return err
	}

	canonical, err := result.Serialize()
	if err != nil {
		_ = formatter.Error(ErrCodeWrite, "cannot serialize result", err.Error())
		return WrapExitError(ExitFailure, "cannot serialize result", err)
	}

	if outPath != "" {
		if err := os.WriteFile(outPath, canonical, 0o644); err != nil {
			_ = formatter.Error(ErrCodeWrite, fmt.Sprintf("cannot write %s", outPath), err.Error())
			return WrapExitError(ExitCommandError, "cannot write output file", err)
		}
		formatter.VerboseLog("Wrote %d bytes to %s", len(canonical), outPath)
	}

	if formatter.Format == "json" {
		return json.NewEncoder(formatter.Writer).Encode(CLIResponse{
			Status: "ok",
			Data:   json.RawMessage(canonical),
		})
	}

	printImportSummary(formatter.Writer, path, result)
	return nil
}

// importFile reads, optionally unpacks, and imports one file. Errors
// are already reported through the formatter when non-nil.
func importFile(path string, formatter *OutputFormatter) (*importer.ImportResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		_ = formatter.Error(ErrCodeRead, fmt.Sprintf("cannot read %s", path), err.Error())
		return nil, WrapExitError(ExitCommandError, "cannot read input file", err)
	}

	if mxml.IsCompressed(data) {
		formatter.VerboseLog("Extracting compressed container %s", path)
		data, err = mxml.ExtractCompressed(data)
		if err != nil {
			_ = formatter.Error(ErrCodeContainer, fmt.Sprintf("cannot unpack %s", path), err.Error())
			return nil, WrapExitError(ExitFailure, "cannot unpack container", err)
		}
	}

	result, err := importer.Import(data, filepath.Base(path))
	if err != nil {
		var ie *importer.ImportError
		if errors.As(err, &ie) {
			_ = formatter.Error(string(ie.Code), ie.Message, importFailureDetails(ie))
			return nil, WrapExitError(ExitFailure, "import failed", err)
		}
		_ = formatter.Error("IMPORT_ERROR", err.Error(), nil)
		return nil, WrapExitError(ExitFailure, "import failed", err)
	}
	return result, nil
}

// importFailureDetails collects the recovery report for a terminal
// failure: which encodings were tried and what was diagnosed before
// the import gave up.
func importFailureDetails(ie *importer.ImportError) interface{} {
	details := map[string]interface{}{}
	if len(ie.Attempts) > 0 {
		details["attempted_encodings"] = ie.Attempts
	}
	if len(ie.Warnings) > 0 {
		details["warnings"] = ie.Warnings
	}
	if len(details) == 0 {
		return nil
	}
	return details
}

func printImportSummary(w io.Writer, path string, result *importer.ImportResult) {
	fmt.Fprintf(w, "Imported %s (%s)\n", path, result.Metadata.Encoding)
	if result.Metadata.WorkTitle != "" {
		fmt.Fprintf(w, "  Title:       %s\n", result.Metadata.WorkTitle)
	}
	if result.Metadata.Composer != "" {
		fmt.Fprintf(w, "  Composer:    %s\n", result.Metadata.Composer)
	}
	fmt.Fprintf(w, "  Instruments: %d (%d staves, %d voices)\n",
		result.Statistics.InstrumentCount, result.Statistics.StaffCount, result.Statistics.VoiceCount)
	fmt.Fprintf(w, "  Notes:       %d (duration %d ticks)\n",
		result.Statistics.NoteCount, result.Statistics.DurationTicks)

	if result.PartialImport {
		fmt.Fprintln(w, "Partial import: some content was skipped or truncated")
	}
	printWarnings(w, result.Warnings)
}

// warningCategoryOrder fixes the display order of warning groups.
var warningCategoryOrder = []diag.Category{
	diag.CategoryPartialImport,
	diag.CategoryStructuralIssues,
	diag.CategoryOverlapResolution,
	diag.CategoryMissingElements,
}

func printWarnings(w io.Writer, warnings []diag.Warning) {
	if len(warnings) == 0 {
		return
	}
	fmt.Fprintf(w, "Warnings (%d):\n", len(warnings))
	for _, category := range warningCategoryOrder {
		printed := false
		for _, warning := range warnings {
			if warning.Category != category {
				continue
			}
			if !printed {
				fmt.Fprintf(w, "  [%s]\n", category)
				printed = true
			}
			fmt.Fprintf(w, "    %s: %s%s\n", warning.Severity, warning.Message, warningLocation(warning))
		}
	}
}

func warningLocation(w diag.Warning) string {
	loc := ""
	if w.InstrumentName != "" {
		loc += ", " + w.InstrumentName
	}
	if w.MeasureNumber > 0 {
		loc += fmt.Sprintf(", measure %d", w.MeasureNumber)
	}
	if w.StaffNumber > 0 {
		loc += fmt.Sprintf(", staff %d", w.StaffNumber)
	}
	if w.VoiceNumber > 0 {
		loc += fmt.Sprintf(", voice %d", w.VoiceNumber)
	}
	if loc == "" {
		return ""
	}
	return " (" + loc[2:] + ")"
}
