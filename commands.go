package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"pdf_imagetools/pdf"
)

var (
	stripImagesOut string
	stripThreshold int
	extractPages   string
	analyzeThresh  int
)

var stripLogosCmd = &cobra.Command{
	Use:   "strip-logos IN OUT",
	Short: "Remove images repeated across pages",
	Long: `Remove every image whose perceptual fingerprint occurs at least --threshold
times in the document and write the cleaned PDF to OUT.

With --images, a second document holding one remaining image per page is written as well.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		opts := cfg.Pipeline.StripOptions()
		if cmd.Flags().Changed("threshold") {
			if stripThreshold < 2 {
				return fmt.Errorf("--threshold must be at least 2, got %d", stripThreshold)
			}
			opts.Threshold = stripThreshold
		}

		if stripImagesOut == "" {
			out, result, err := pdf.RemoveLogos(data, opts)
			if err != nil {
				return err
			}
			if err := writeOutput(args[1], out); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "logos detected: %d, images removed: %d\n", result.LogosDetected, result.ImagesRemoved)
			return nil
		}

		result, err := pdf.CleanDocument(data, opts, cfg.Pipeline.Layout())
		if err != nil {
			return err
		}
		if err := writeOutput(args[1], result.Cleaned); err != nil {
			return err
		}
		if err := writeOutput(stripImagesOut, result.Images); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "logos detected: %d, images removed: %d, images extracted: %d\n",
			result.LogosDetected, result.ImagesRemoved, result.ImagesExtracted)
		return nil
	},
}

var extractImagesCmd = &cobra.Command{
	Use:   "extract-images IN OUT",
	Short: "Write a document holding only the embedded images, one per page",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		var pages []int
		if extractPages != "" {
			if pages, err = pdf.ParsePageSpecifier(extractPages); err != nil {
				return err
			}
		}
		out, n, err := pdf.ExtractImages(data, pages, cfg.Pipeline.Layout())
		if err != nil {
			return err
		}
		if err := writeOutput(args[1], out); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "images extracted: %d\n", n)
		return nil
	},
}

var reportCmd = &cobra.Command{
	Use:   "report IN PIECES_JSON OUT",
	Short: "Assemble a report from a JSON description of pieces",
	Long: `Assemble a report from IN using the pieces described in PIECES_JSON:

  {"pieceA": {"description": "...", "pages": {"1": [1, 2]}}}

Pages and image indices are 1-based. Pieces are laid out in the order they are declared.`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		raw, err := os.ReadFile(args[1])
		if err != nil {
			return err
		}
		spec, err := pdf.ParseReportSpec(raw)
		if err != nil {
			return err
		}
		out, result, err := pdf.GenerateReport(data, spec, cfg.Pipeline.Layout())
		if err != nil {
			return err
		}
		if err := writeOutput(args[2], out); err != nil {
			return err
		}
		for _, s := range result.Skipped {
			logrus.WithField("reference", s.Error()).Warn("reference skipped")
		}
		fmt.Fprintf(cmd.OutOrStdout(), "images placed: %d, references skipped: %d\n", result.ImagesTotal, len(result.Skipped))
		return nil
	},
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze IN",
	Short: "Report repeated images without modifying the document",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		doc, err := pdf.OpenDocument(data)
		if err != nil {
			return err
		}
		opts := cfg.Pipeline.StripOptions()
		if cmd.Flags().Changed("threshold") {
			if analyzeThresh < 2 {
				return fmt.Errorf("--threshold must be at least 2, got %d", analyzeThresh)
			}
			opts.Threshold = analyzeThresh
		}
		analysis, err := pdf.AnalyzeLogos(doc, opts)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), analysis.String())
		return nil
	},
}

func init() {
	stripLogosCmd.Flags().StringVar(&stripImagesOut, "images", "", "also write the images-only document to this path")
	stripLogosCmd.Flags().IntVar(&stripThreshold, "threshold", pdf.DefaultRepeatThreshold, "minimum occurrences for an image to count as a logo")
	extractImagesCmd.Flags().StringVar(&extractPages, "pages", "", `pages to extract, e.g. "1,3-5" (default: all)`)
	analyzeCmd.Flags().IntVar(&analyzeThresh, "threshold", pdf.DefaultRepeatThreshold, "minimum occurrences for an image to count as a logo")
}

func writeOutput(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	logrus.WithFields(logrus.Fields{"file": path, "bytes": len(data)}).Info("output written")
	return nil
}
