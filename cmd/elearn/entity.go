package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/at-ishikawa/elearn/internal/repository"
)

// newEntityCommand builds the list/create/update/delete commands for one repository.
// Read-only kinds only get list.
func newEntityCommand(name, short string, mutable bool) *cobra.Command {
	command := &cobra.Command{
		Use:   name,
		Short: short,
	}
	command.AddCommand(newListCommand(name))
	if mutable {
		command.AddCommand(
			newCreateCommand(name),
			newUpdateCommand(name),
			newDeleteCommand(name),
		)
	}
	return command
}

func newListCommand(name string) *cobra.Command {
	var refresh bool
	command := &cobra.Command{
		Use:   "list",
		Short: fmt.Sprintf("List %s, seeding them on first use", name),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			manager, closeManager, err := openManager(ctx, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer closeManager()

			repo, _ := manager.Repository(name)
			records, err := repo.Load(ctx, refresh)
			return printResult(cmd.OutOrStdout(), records, err)
		},
	}
	command.Flags().BoolVar(&refresh, "refresh", false, "Reload the seed documents and replace the stored data")
	return command
}

func newCreateCommand(name string) *cobra.Command {
	var data string
	command := &cobra.Command{
		Use:   "create",
		Short: fmt.Sprintf("Create one of %s from a JSON object", name),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			payload, err := parseRecord(data)
			if err != nil {
				return err
			}
			manager, closeManager, err := openManager(ctx, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer closeManager()

			repo, _ := manager.Repository(name)
			created, err := repo.Create(ctx, payload)
			if err == nil {
				color.New(color.FgGreen).Fprintf(cmd.ErrOrStderr(), "Created %s %v\n",
					repo.Kind().Label, created[repo.Kind().IDField])
			}
			return printResult(cmd.OutOrStdout(), created, err)
		},
	}
	command.Flags().StringVar(&data, "data", "", "JSON object with the fields of the new record")
	return command
}

func newUpdateCommand(name string) *cobra.Command {
	var data string
	command := &cobra.Command{
		Use:   "update ID",
		Short: fmt.Sprintf("Merge fields into one of %s", name),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			partial, err := parseRecord(data)
			if err != nil {
				return err
			}
			if partial == nil {
				partial = repository.Record{}
			}
			manager, closeManager, err := openManager(ctx, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer closeManager()

			repo, _ := manager.Repository(name)
			id := repo.Kind().ParseID(args[0])
			updated, err := repo.Update(ctx, id, partial)
			if err == nil {
				color.New(color.FgGreen).Fprintf(cmd.ErrOrStderr(), "Updated %s %v\n", repo.Kind().Label, id)
			}
			return printResult(cmd.OutOrStdout(), updated, err)
		},
	}
	command.Flags().StringVar(&data, "data", "", "JSON object with the fields to overwrite")
	return command
}

func newDeleteCommand(name string) *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: fmt.Sprintf("Delete one of %s", name),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			manager, closeManager, err := openManager(ctx, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer closeManager()

			repo, _ := manager.Repository(name)
			id := repo.Kind().ParseID(args[0])
			err = repo.Delete(ctx, id)
			if err == nil {
				color.New(color.FgYellow).Fprintf(cmd.ErrOrStderr(), "Deleted %s %v\n", repo.Kind().Label, id)
			}
			return printResult(cmd.OutOrStdout(), map[string]any{"id": id}, err)
		},
	}
}
