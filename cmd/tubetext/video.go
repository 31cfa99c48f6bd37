package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"tubetext/internal/bootstrap"
	"tubetext/internal/domain"
	"tubetext/internal/export"
)

func newTranscriptCmd(a *app) *cobra.Command {
	var (
		pro     bool
		asJSON  bool
		pdfPath string
	)

	cmd := &cobra.Command{
		Use:   "transcript <video-url>",
		Short: "Fetch the transcript of a YouTube video",
		Long: `Fetch the transcript of a YouTube video and print it as timestamped lines.
The --pro flag uses the premium endpoint, which requires a premium account.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			services, sink, err := a.build(cmd)
			if err != nil {
				return err
			}
			defer services.Close()

			if err := load(cmd, services, sink, args[0], pro); err != nil {
				return err
			}
			transcript, _ := services.Orchestrator.Transcript()
			if asJSON {
				if err := writeTranscriptJSON(cmd.OutOrStdout(), transcript); err != nil {
					return err
				}
			} else {
				writeTranscript(cmd.OutOrStdout(), transcript)
			}

			if pdfPath != "" {
				return exportPDF(cmd, services, sink, pdfPath)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&pro, "pro", false, "Use the premium transcript endpoint")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the transcript as JSON")
	cmd.Flags().StringVar(&pdfPath, "pdf", "", "Also save the transcript as a PDF at this path")
	return cmd
}

func newSummaryCmd(a *app) *cobra.Command {
	var pro bool

	cmd := &cobra.Command{
		Use:   "summary <video-url>",
		Short: "Summarize a YouTube video from its transcript",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			services, sink, err := a.build(cmd)
			if err != nil {
				return err
			}
			defer services.Close()

			if err := load(cmd, services, sink, args[0], pro); err != nil {
				return err
			}
			if err := services.Orchestrator.RequestSummary(cmd.Context()); err != nil {
				return sink.reported(err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), services.Orchestrator.Snapshot().Text)
			return nil
		},
	}

	cmd.Flags().BoolVar(&pro, "pro", false, "Use the premium transcript endpoint")
	return cmd
}

func newTranslateCmd(a *app) *cobra.Command {
	var (
		pro      bool
		language string
	)

	cmd := &cobra.Command{
		Use:   "translate <video-url>",
		Short: "Stream a translation of a YouTube video transcript",
		Long: `Stream a translation of a YouTube video transcript. Fragments are printed
as the server produces them.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			services, sink, err := a.build(cmd)
			if err != nil {
				return err
			}
			defer services.Close()

			if err := load(cmd, services, sink, args[0], pro); err != nil {
				return err
			}
			sink.streamFragments(true)
			return sink.reported(services.Orchestrator.RequestTranslation(cmd.Context(), language))
		},
	}

	cmd.Flags().BoolVar(&pro, "pro", false, "Use the premium transcript endpoint")
	cmd.Flags().StringVarP(&language, "language", "l", "", "Target language (defaults to the configured one)")
	return cmd
}

func newPDFCmd(a *app) *cobra.Command {
	var (
		pro bool
		out string
	)

	cmd := &cobra.Command{
		Use:   "pdf <video-url>",
		Short: "Save the transcript of a YouTube video as a PDF",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			services, sink, err := a.build(cmd)
			if err != nil {
				return err
			}
			defer services.Close()

			if err := load(cmd, services, sink, args[0], pro); err != nil {
				return err
			}
			return exportPDF(cmd, services, sink, out)
		},
	}

	cmd.Flags().BoolVar(&pro, "pro", false, "Use the premium transcript endpoint")
	cmd.Flags().StringVarP(&out, "out", "o", export.DefaultFileName, "Output file")
	return cmd
}

func load(cmd *cobra.Command, services bootstrap.Services, sink *terminalSink, videoURL string, pro bool) error {
	mode := domain.ModeTranscription
	if pro {
		mode = domain.ModePro
	}
	return sink.reported(services.Orchestrator.Submit(cmd.Context(), videoURL, mode))
}

func exportPDF(cmd *cobra.Command, services bootstrap.Services, sink *terminalSink, path string) error {
	written, err := services.Orchestrator.ExportPDF(cmd.Context(), path)
	if err != nil {
		return sink.reported(err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Saved %s (%d bytes)\n", path, written)
	return nil
}

func writeTranscript(w io.Writer, transcript domain.TranscriptResult) {
	for _, segment := range transcript.Segments {
		fmt.Fprintf(w, "[%s] %s\n", segment.Timestamp, segment.Text)
	}
}

func writeTranscriptJSON(w io.Writer, transcript domain.TranscriptResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(transcript)
}
