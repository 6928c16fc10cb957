package main

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/at-ishikawa/elearn/internal/query"
	"github.com/at-ishikawa/elearn/internal/repository"
)

type searchFunc func(ctx context.Context, text string, filters ...query.Filter) []repository.Record

func newSearchCommand() *cobra.Command {
	command := &cobra.Command{
		Use:   "search",
		Short: "Search records by text and filters",
	}
	command.AddCommand(
		newSearchUsersCommand(),
		newSearchCoursesCommand(),
		newSearchTextCommand("quizzes", func(s *query.Searcher) searchFunc { return s.SearchQuizzes }),
		newSearchTextCommand("logs", func(s *query.Searcher) searchFunc { return s.SearchLogs }),
	)
	return command
}

// searchText joins the positional arguments; no arguments matches everything.
func searchText(args []string) string {
	return strings.Join(args, " ")
}

func newSearchUsersCommand() *cobra.Command {
	var filters query.UserFilters
	command := &cobra.Command{
		Use:   "users [QUERY]",
		Short: "Search users by name or email",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			manager, closeManager, err := openManager(ctx, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer closeManager()

			users := manager.Search.SearchUsers(ctx, searchText(args), filters)
			return printResult(cmd.OutOrStdout(), users, nil)
		},
	}
	command.Flags().StringVar(&filters.Role, "role", "", "Only users with this role")
	command.Flags().StringVar(&filters.Status, "status", "", "Only users with this status (active or inactive)")
	return command
}

func newSearchCoursesCommand() *cobra.Command {
	var filters query.CourseFilters
	command := &cobra.Command{
		Use:   "courses [QUERY]",
		Short: "Search courses by title, description or instructor",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			manager, closeManager, err := openManager(ctx, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer closeManager()

			courses := manager.Search.SearchCourses(ctx, searchText(args), filters)
			return printResult(cmd.OutOrStdout(), courses, nil)
		},
	}
	command.Flags().StringVar(&filters.Category, "category", "", "Only courses in this category")
	command.Flags().StringVar(&filters.Level, "level", "", "Only courses of this level")
	return command
}

func newSearchTextCommand(name string, search func(*query.Searcher) searchFunc) *cobra.Command {
	return &cobra.Command{
		Use:   name + " [QUERY]",
		Short: "Search " + name + " by text",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			manager, closeManager, err := openManager(ctx, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer closeManager()

			records := search(manager.Search)(ctx, searchText(args))
			return printResult(cmd.OutOrStdout(), records, nil)
		},
	}
}
