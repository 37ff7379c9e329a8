package cli

import (
	"github.com/spf13/cobra"

	"github.com/mmynk/roomsplit/internal/history"
	"github.com/mmynk/roomsplit/internal/split"
)

// NewHistoryCommand creates the history command and its clear subcommand.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	var category string

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List receipts saved from this machine, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(rootOpts, cmd)
			if err != nil {
				return err
			}
			filter, err := history.ParseFilter(category)
			if err != nil {
				return a.fail(&split.ValidationError{Field: "category", Message: err.Error()})
			}
			return a.formatter.Success(newHistoryView(filter, history.Filter(a.mirror.List(), filter)))
		},
	}
	cmd.Flags().StringVar(&category, "category", history.FilterAll, "only show one category (all, grocery, furniture, trip)")

	cmd.AddCommand(newHistoryClearCommand(rootOpts))
	return cmd
}

func newHistoryClearCommand(rootOpts *RootOptions) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove every receipt from the local history",
		Long: `Remove every receipt from the local history. Receipts on the server
are not touched. Requires --yes.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(rootOpts, cmd)
			if err != nil {
				return err
			}
			if !yes {
				return a.fail(NewExitError(ExitFailure, "refusing to clear history without --yes"))
			}
			removed := len(a.mirror.List())
			if err := a.mirror.ClearAll(); err != nil {
				a.formatter.Error(ErrCodeHistory, err.Error(), map[string]string{"path": a.historyAt})
				exitErr := WrapExitError(ExitCommandError, "failed to clear history", err)
				exitErr.reported = true
				return exitErr
			}
			return a.formatter.Success(&clearedView{Path: a.historyAt, Removed: removed})
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm clearing the history")
	return cmd
}
