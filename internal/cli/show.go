package cli

import (
	"github.com/spf13/cobra"
)

// NewShowCommand creates the show command.
func NewShowCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <receipt-id>",
		Short: "Show a receipt and what each participant owes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(rootOpts, cmd)
			if err != nil {
				return err
			}
			state, err := a.reconciler.Load(cmd.Context(), args[0])
			if err != nil {
				return a.fail(err)
			}
			return a.formatter.Success(newReceiptView(&state.Receipt, state.Participants))
		},
	}
}
