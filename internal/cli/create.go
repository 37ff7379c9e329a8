package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/mmynk/roomsplit/internal/models"
	"github.com/mmynk/roomsplit/internal/split"
)

// CreateOptions holds the create command flags.
type CreateOptions struct {
	Title     string
	Category  string
	Date      string
	Name      string
	Roommates []string
}

// NewCreateCommand creates the create command.
func NewCreateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CreateOptions{}

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a receipt shared with roommates",
		Long: `Create a receipt on the receipt server. You are added as the first
participant, followed by every --roommate in order.`,
		Example: `  roomsplit create --name Ann --roommate Bo --roommate Cy --category grocery`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCreate(rootOpts, opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Title, "title", "", "receipt title (default \""+split.DefaultTitle+"\")")
	cmd.Flags().StringVar(&opts.Category, "category", string(models.CategoryGrocery), "grocery, furniture or trip")
	cmd.Flags().StringVar(&opts.Date, "date", time.Now().Format("2006/01/02"), "receipt date")
	cmd.Flags().StringVar(&opts.Name, "name", "", "your name")
	cmd.Flags().StringArrayVar(&opts.Roommates, "roommate", nil, "roommate name (repeatable)")

	return cmd
}

func runCreate(rootOpts *RootOptions, opts *CreateOptions, cmd *cobra.Command) error {
	a, err := newApp(rootOpts, cmd)
	if err != nil {
		return err
	}

	category, err := models.ParseCategory(opts.Category)
	if err != nil {
		return a.fail(&split.ValidationError{Field: "category", Message: err.Error()})
	}

	receipt, participants, err := a.reconciler.CreateReceipt(cmd.Context(), split.NewReceipt{
		Title:       opts.Title,
		Category:    category,
		Date:        opts.Date,
		CreatorName: opts.Name,
		Roommates:   opts.Roommates,
	})
	if err != nil {
		return a.fail(err)
	}

	a.formatter.VerboseLog("created receipt %s with %d participants", receipt.ID, len(participants))
	return a.formatter.Success(newReceiptView(receipt, participants))
}
