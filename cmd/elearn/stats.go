package main

import (
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/at-ishikawa/elearn/internal/pdf"
	"github.com/at-ishikawa/elearn/internal/statistics"
)

func newStatsCommand() *cobra.Command {
	var (
		pdfPath      string
		markdownPath string
		templatePath string
	)
	command := &cobra.Command{
		Use:   "stats",
		Short: "Show user, course, quiz and activity statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			manager, closeManager, err := openManager(ctx, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer closeManager()

			report, err := manager.Stats.Aggregate(ctx)
			if err != nil {
				return printResult(cmd.OutOrStdout(), report, err)
			}

			if markdownPath != "" || pdfPath != "" {
				content, err := statistics.RenderMarkdown(report, time.Now(), templatePath)
				if err != nil {
					return fmt.Errorf("statistics.RenderMarkdown() > %w", err)
				}
				if markdownPath != "" {
					if err := os.WriteFile(markdownPath, content, 0644); err != nil {
						return fmt.Errorf("os.WriteFile(%s) > %w", markdownPath, err)
					}
					color.New(color.FgGreen).Fprintf(cmd.ErrOrStderr(), "Wrote the report to %s\n", markdownPath)
				}
				if pdfPath != "" {
					path, err := pdf.Render(content, pdfPath)
					if err != nil {
						return fmt.Errorf("pdf.Render() > %w", err)
					}
					color.New(color.FgGreen).Fprintf(cmd.ErrOrStderr(), "Wrote the report to %s\n", path)
				}
			}
			return printResult(cmd.OutOrStdout(), report, nil)
		},
	}
	command.Flags().StringVar(&pdfPath, "pdf", "", "Also render the report to this PDF file")
	command.Flags().StringVar(&markdownPath, "markdown", "", "Also write the report as markdown to this file")
	command.Flags().StringVar(&templatePath, "template", "", "Go template for the markdown report (default built-in)")
	return command
}
