package main

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/at-ishikawa/elearn/internal/activity"
)

func newLogCommand() *cobra.Command {
	var (
		actor   string
		session bool
	)
	command := &cobra.Command{
		Use:   "log ACTION DESCRIPTION",
		Short: "Record an activity log entry",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			manager, closeManager, err := openManager(ctx, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer closeManager()

			if session {
				entry, err := manager.Sessions.Record(ctx, actor, args[0], args[1])
				return printResult(cmd.OutOrStdout(), entry, err)
			}
			entry, err := manager.Activity.Record(ctx, args[0], args[1], actor)
			return printResult(cmd.OutOrStdout(), entry, err)
		},
	}
	command.Flags().StringVar(&actor, "actor", activity.SystemActor, "Identifier of the user performing the action")
	command.Flags().BoolVar(&session, "session", false, "Append to the authentication log instead of the activity log")
	command.AddCommand(&cobra.Command{
		Use:   "sessions",
		Short: "Show the authentication log, oldest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			manager, closeManager, err := openManager(ctx, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer closeManager()

			entries, err := manager.Sessions.Entries(ctx)
			return printResult(cmd.OutOrStdout(), entries, err)
		},
	})
	return command
}

func newCacheCommand() *cobra.Command {
	command := &cobra.Command{
		Use:   "cache",
		Short: "Inspect the seed cache",
	}
	command.AddCommand(&cobra.Command{
		Use:   "info",
		Short: "Show the cached entries with their age and size",
		Long: `Show the cached entries with their age in milliseconds and their size.

The cache lives only as long as the process that fills it. A fresh elearn
invocation starts with an empty cache, so this command reports the entries
loaded by the command itself, which is none.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			manager, closeManager, err := openManager(ctx, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer closeManager()

			return printResult(cmd.OutOrStdout(), manager.CacheInfo(), nil)
		},
	})
	return command
}

func newStorageCommand() *cobra.Command {
	command := &cobra.Command{
		Use:   "storage",
		Short: "Manage the persistent store",
	}
	command.AddCommand(
		&cobra.Command{
			Use:   "clear",
			Short: "Remove every key and write the defaults again",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				ctx := cmd.Context()
				manager, closeManager, err := openManager(ctx, cmd.ErrOrStderr())
				if err != nil {
					return err
				}
				defer closeManager()

				err = manager.ClearStorage(ctx)
				if err == nil {
					color.New(color.FgYellow).Fprintln(cmd.ErrOrStderr(), "Storage cleared")
				}
				return printResult(cmd.OutOrStdout(), true, err)
			},
		},
		&cobra.Command{
			Use:   "remove KEY",
			Short: "Remove one key",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				ctx := cmd.Context()
				manager, closeManager, err := openManager(ctx, cmd.ErrOrStderr())
				if err != nil {
					return err
				}
				defer closeManager()

				err = manager.RemoveFromStorage(ctx, args[0])
				return printResult(cmd.OutOrStdout(), true, err)
			},
		},
	)
	return command
}
