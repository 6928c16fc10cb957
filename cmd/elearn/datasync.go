package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/at-ishikawa/elearn/internal/datasync"
)

func newExportCommand() *cobra.Command {
	var (
		format string
		output string
	)
	command := &cobra.Command{
		Use:   "export",
		Short: "Export users, courses, quizzes, logs and settings to a backup file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "json" && format != "yaml" {
				return fmt.Errorf("unsupported format %q: must be json or yaml", format)
			}

			ctx := cmd.Context()
			manager, closeManager, err := openManager(ctx, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer closeManager()

			doc, err := manager.Exporter.Export(ctx)
			if err != nil {
				return fmt.Errorf("exporter.Export() > %w", err)
			}

			var buf bytes.Buffer
			if format == "yaml" {
				err = doc.WriteYAML(&buf)
			} else {
				err = doc.WriteJSON(&buf)
			}
			if err != nil {
				return fmt.Errorf("write %s > %w", format, err)
			}

			if output == "-" {
				_, err := io.Copy(cmd.OutOrStdout(), &buf)
				return err
			}
			if output == "" {
				output = datasync.FileName(time.Now(), format)
			}
			if err := os.WriteFile(output, buf.Bytes(), 0644); err != nil {
				return fmt.Errorf("os.WriteFile(%s) > %w", output, err)
			}
			color.New(color.FgGreen).Fprintf(cmd.ErrOrStderr(), "Exported to %s\n", output)
			return nil
		},
	}
	command.Flags().StringVar(&format, "format", "json", "Output format (json or yaml)")
	command.Flags().StringVarP(&output, "output", "o", "", "Output file, - for stdout (default elearning-backup-<date>.<format>)")
	return command
}

func newImportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE",
		Short: "Replace the stored data with a JSON backup file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("os.ReadFile(%s) > %w", args[0], err)
			}

			ctx := cmd.Context()
			manager, closeManager, err := openManager(ctx, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer closeManager()

			fmt.Fprintf(cmd.ErrOrStderr(), "Importing %s\n", args[0])
			res, err := manager.Importer.Import(ctx, raw)
			if err == nil {
				color.New(color.FgGreen).Fprintf(cmd.ErrOrStderr(),
					"Imported %d users, %d courses, %d quizzes (backup: %s)\n",
					res.Users, res.Courses, res.Quizzes, res.BackupKey)
			}
			return printResult(cmd.OutOrStdout(), res, err)
		},
	}
}

func newBackupsCommand() *cobra.Command {
	command := &cobra.Command{
		Use:   "backups",
		Short: "List or restore the snapshots taken before each import",
	}
	command.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List backup keys, oldest first",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				ctx := cmd.Context()
				manager, closeManager, err := openManager(ctx, cmd.ErrOrStderr())
				if err != nil {
					return err
				}
				defer closeManager()

				keys, err := manager.Importer.Backups(ctx)
				return printResult(cmd.OutOrStdout(), keys, err)
			},
		},
		&cobra.Command{
			Use:   "restore KEY",
			Short: "Restore users, courses, quizzes and logs from a backup key",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				ctx := cmd.Context()
				manager, closeManager, err := openManager(ctx, cmd.ErrOrStderr())
				if err != nil {
					return err
				}
				defer closeManager()

				err = manager.Importer.Restore(ctx, args[0])
				if err == nil {
					color.New(color.FgGreen).Fprintf(cmd.ErrOrStderr(), "Restored %s\n", args[0])
				}
				return printResult(cmd.OutOrStdout(), map[string]string{"backupKey": args[0]}, err)
			},
		},
	)
	return command
}
