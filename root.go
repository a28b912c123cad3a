package main

import (
	"github.com/spf13/cobra"

	"pdf_imagetools/config"
)

var (
	cfgFile string
	cfg     *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "pdf_imagetools",
	Short: "Extract, deduplicate and reassemble images embedded in PDF documents",
	Long: `pdf_imagetools works on the raster images embedded in PDF documents.

It can:
  - remove logos and watermarks (images repeated across pages)
  - build an images-only document from a PDF
  - assemble a report from a JSON description of pieces, pages and image indices
  - serve all of the above over HTTP`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		c.ApplyLogging()
		cfg = c
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ./config.yaml)",
	)

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(stripLogosCmd)
	rootCmd.AddCommand(extractImagesCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(analyzeCmd)
}
