package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/partwise/partwise/internal/importer"
)

// InspectResult is the JSON payload of the inspect command: metadata
// and statistics without the full score body.
type InspectResult struct {
	Metadata      importer.Metadata   `json:"metadata"`
	Statistics    importer.Statistics `json:"statistics"`
	PartialImport bool                `json:"partial_import"`
}

// NewInspectCommand creates the inspect command.
func NewInspectCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect <file>",
		Short: "Import a file and report statistics without the score body",
		Long: `Run the full import pipeline but report only metadata, statistics,
and warnings. Useful for checking how cleanly a file imports before
consuming the score.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runInspect(opts *RootOptions, path string, cmd *cobra.Command) error {
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

	if formatter.Format == "json" {
		return formatter.Success(InspectResult{
			Metadata:      result.Metadata,
			Statistics:    result.Statistics,
			PartialImport: result.PartialImport,
		})
	}

	w := formatter.Writer
	fmt.Fprintf(w, "File:       %s\n", result.Metadata.FileName)
	fmt.Fprintf(w, "Encoding:   %s\n", result.Metadata.Encoding)
	if result.Metadata.WorkTitle != "" {
		fmt.Fprintf(w, "Title:      %s\n", result.Metadata.WorkTitle)
	}
	if result.Metadata.Composer != "" {
		fmt.Fprintf(w, "Composer:   %s\n", result.Metadata.Composer)
	}
	if result.Metadata.Software != "" {
		fmt.Fprintf(w, "Software:   %s\n", result.Metadata.Software)
	}
	fmt.Fprintf(w, "Instruments: %d\n", result.Statistics.InstrumentCount)
	fmt.Fprintf(w, "Staves:      %d\n", result.Statistics.StaffCount)
	fmt.Fprintf(w, "Voices:      %d\n", result.Statistics.VoiceCount)
	fmt.Fprintf(w, "Notes:       %d\n", result.Statistics.NoteCount)
	fmt.Fprintf(w, "Duration:    %d ticks\n", result.Statistics.DurationTicks)
	fmt.Fprintf(w, "Warnings:    %d (%d elements skipped)\n",
		result.Statistics.WarningCount, result.Statistics.SkippedElementCount)
	if result.PartialImport {
		fmt.Fprintln(w, "Partial:     yes")
	}
	printWarnings(w, result.Warnings)
	return nil
}
