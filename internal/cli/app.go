package cli

import (
	"errors"
	"fmt"
	"net/http"

	"connectrpc.com/connect"
	"github.com/spf13/cobra"

	"github.com/mmynk/roomsplit/internal/history"
	"github.com/mmynk/roomsplit/internal/rpc"
	"github.com/mmynk/roomsplit/internal/split"
	"github.com/mmynk/roomsplit/internal/storage"
	"github.com/mmynk/roomsplit/internal/storage/remote"
)

// app is what a command needs to talk to the server and the local history.
type app struct {
	formatter  *OutputFormatter
	client     *rpc.ReceiptServiceClient
	mirror     *history.Mirror
	reconciler *split.Reconciler
	historyAt  string
}

func newFormatter(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
}

// newApp wires the remote store, the history mirror and the reconciler from
// the loaded configuration.
func newApp(opts *RootOptions, cmd *cobra.Command) (*app, error) {
	cfg := opts.cfg
	if cfg == nil {
		return nil, NewExitError(ExitCommandError, "configuration not loaded")
	}

	historyPath := cfg.Client.HistoryPath
	if historyPath == "" {
		var err error
		if historyPath, err = history.DefaultPath(); err != nil {
			return nil, WrapExitError(ExitCommandError, "failed to locate history file", err)
		}
	}

	httpClient := &http.Client{Timeout: cfg.Client.Timeout}
	store := remote.New(httpClient, cfg.Client.ServerURL)
	mirror := history.NewMirror(history.NewFileStore(historyPath))

	a := &app{
		formatter:  newFormatter(opts, cmd),
		client:     rpc.NewReceiptServiceClient(httpClient, cfg.Client.ServerURL),
		mirror:     mirror,
		reconciler: split.NewReconciler(store, mirror),
		historyAt:  historyPath,
	}
	a.formatter.VerboseLog("server: %s", cfg.Client.ServerURL)
	a.formatter.VerboseLog("history: %s", historyPath)
	return a, nil
}

// fail reports err in the configured format and converts it to an ExitError.
// Input errors exit with ExitFailure; everything that went wrong talking to
// the server exits with ExitCommandError.
func (a *app) fail(err error) error {
	exitErr := a.classify(err)
	exitErr.reported = true
	return exitErr
}

func (a *app) classify(err error) *ExitError {
	var (
		validation *split.ValidationError
		saveErr    *split.SaveError
		exitErr    *ExitError
	)

	switch {
	case errors.As(err, &exitErr):
		code := ErrCodeRemote
		if exitErr.Code == ExitFailure {
			code = ErrCodeValidation
		}
		a.formatter.Error(code, exitErr.Error(), nil)
		return exitErr

	case errors.As(err, &validation):
		a.formatter.Error(ErrCodeValidation, validation.Message, map[string]string{"field": validation.Field})
		return WrapExitError(ExitFailure, "invalid input", err)

	case errors.Is(err, split.ErrUnknownParticipant), errors.Is(err, split.ErrNotSelected):
		a.formatter.Error(ErrCodeValidation, err.Error(), nil)
		return WrapExitError(ExitFailure, "invalid input", err)

	case errors.As(err, &saveErr) && saveErr.Partial():
		a.formatter.Error(ErrCodePartialSave, saveErr.Error(), map[string]any{
			"receipt_id": saveErr.ReceiptID,
			"stage":      saveErr.Stage,
			"updated":    saveErr.Updated,
			"failed":     saveErr.Failed,
		})
		return WrapExitError(ExitCommandError, "save incomplete", err)

	case errors.Is(err, storage.ErrNotFound):
		a.formatter.Error(ErrCodeNotFound, err.Error(), nil)
		return WrapExitError(ExitCommandError, "not found", err)
	}

	message := err.Error()
	if code := connect.CodeOf(err); code == connect.CodeUnavailable || code == connect.CodeDeadlineExceeded {
		message = fmt.Sprintf("receipt server unreachable: %v", err)
	}
	a.formatter.Error(ErrCodeRemote, message, nil)
	return WrapExitError(ExitCommandError, "request failed", err)
}
