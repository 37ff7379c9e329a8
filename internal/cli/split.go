package cli

import (
	"fmt"
	"strings"

	"connectrpc.com/connect"
	"github.com/spf13/cobra"

	"github.com/mmynk/roomsplit/internal/calculator"
	"github.com/mmynk/roomsplit/internal/models"
	"github.com/mmynk/roomsplit/internal/rpc"
	"github.com/mmynk/roomsplit/internal/split"
)

// SplitOptions holds the split command flags.
type SplitOptions struct {
	Total     string
	Mode      string
	Exclude   []string
	ToggleAll bool
	Amounts   []string // name=amount, applied in order
	DryRun    bool
}

// NewSplitCommand creates the split command.
func NewSplitCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SplitOptions{}

	cmd := &cobra.Command{
		Use:   "split <receipt-id>",
		Short: "Split a receipt total between its participants and save it",
		Long: `Split a receipt total between its participants and save it to the server.

Everyone is included unless excluded with --exclude. In equal mode every
included participant owes the same share, rounded to cents. In custom mode
each --amount sets what one participant owes; with exactly two participants
included, setting one amount gives the other the rest of the total.

Participants are referred to by ID or by name. After a successful save the
receipt is added to the local history.`,
		Example: `  roomsplit split 1f0c... --total 84.20
  roomsplit split 1f0c... --total 100 --mode custom --exclude Cy --amount Ann=40`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSplit(rootOpts, opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Total, "total", "", "receipt total (default: the saved total)")
	cmd.Flags().StringVar(&opts.Mode, "mode", string(models.SplitEqual), "equal or custom")
	cmd.Flags().StringArrayVar(&opts.Exclude, "exclude", nil, "participant to leave out (repeatable)")
	cmd.Flags().BoolVar(&opts.ToggleAll, "toggle-all", false, "flip the select-all switch before applying --exclude")
	cmd.Flags().StringArrayVar(&opts.Amounts, "amount", nil, "custom amount as participant=amount (repeatable)")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "preview the allocation without saving")

	return cmd
}

func runSplit(rootOpts *RootOptions, opts *SplitOptions, receiptID string, cmd *cobra.Command) error {
	a, err := newApp(rootOpts, cmd)
	if err != nil {
		return err
	}

	mode, err := models.ParseSplitMode(opts.Mode)
	if err != nil {
		return a.fail(&split.ValidationError{Field: "mode", Message: err.Error()})
	}
	if mode != models.SplitCustom && len(opts.Amounts) > 0 {
		return a.fail(&split.ValidationError{Field: "amount", Message: "--amount needs --mode custom"})
	}

	state, err := a.reconciler.Load(cmd.Context(), receiptID)
	if err != nil {
		return a.fail(err)
	}
	if err := applySplitOptions(state, mode, opts); err != nil {
		return a.fail(err)
	}

	if opts.DryRun {
		return previewSplit(cmd, a, state)
	}

	result, err := a.reconciler.SaveSplit(cmd.Context(), state)
	if err != nil {
		return a.fail(err)
	}
	if !result.Audit.Balanced() {
		a.formatter.VerboseLog("allocation drift %s", result.Audit.Drift)
	}
	return a.formatter.Success(newSplitView(result))
}

// applySplitOptions replays the flags onto state in the order a user would
// edit: total and mode, select-all, exclusions, then amounts.
func applySplitOptions(state *split.EditState, mode models.SplitMode, opts *SplitOptions) error {
	if opts.Total != "" {
		state.Total = opts.Total
	}
	state.Mode = mode

	if opts.ToggleAll {
		state.ToggleAll()
	}
	for _, ref := range opts.Exclude {
		p, ok := state.Find(ref)
		if !ok {
			return fmt.Errorf("%w: %s", split.ErrUnknownParticipant, ref)
		}
		if err := state.Toggle(p.ID); err != nil {
			return err
		}
	}
	for _, assignment := range opts.Amounts {
		i := strings.LastIndex(assignment, "=")
		if i <= 0 {
			return &split.ValidationError{Field: "amount", Message: fmt.Sprintf("expected participant=amount, got %q", assignment)}
		}
		ref, raw := strings.TrimSpace(assignment[:i]), strings.TrimSpace(assignment[i+1:])
		p, ok := state.Find(ref)
		if !ok {
			return fmt.Errorf("%w: %s", split.ErrUnknownParticipant, ref)
		}
		if err := state.SetManualAmount(p.ID, raw); err != nil {
			return fmt.Errorf("%w: %s", err, p.Name)
		}
	}
	return nil
}

// previewSplit asks the server to compute the allocation without saving it.
func previewSplit(cmd *cobra.Command, a *app, state *split.EditState) error {
	manual := make(map[string]string, len(state.Participants))
	for _, id := range state.Selected() {
		if raw := state.ManualAmount(id); raw != "" {
			manual[id] = raw
		}
	}

	resp, err := a.client.ComputeAllocation(cmd.Context(), connect.NewRequest(&rpc.ComputeAllocationRequest{
		Total:          state.Total,
		Mode:           string(state.Mode),
		ParticipantIDs: state.ParticipantIDs(),
		SelectedIDs:    state.Selected(),
		ManualAmounts:  manual,
	}))
	if err != nil {
		return a.fail(err)
	}

	return a.formatter.Success(newPreviewView(state, calculator.ParseAmount(state.Total), resp.Msg.Amounts))
}
