package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/UnknownOlympus/compass/internal/geocoding"
	"github.com/UnknownOlympus/compass/internal/models"
	"github.com/spf13/cobra"
)

const (
	exitFailure  = 1
	exitNotFound = 2
)

type attemptOutput struct {
	Resolver string `json:"resolver"`
	Outcome  string `json:"outcome"`
	Error    string `json:"error,omitempty"`
}

type resolveOutput struct {
	Address  string              `json:"address"`
	Result   *models.Coordinates `json:"result"`
	Attempts []attemptOutput     `json:"attempts,omitempty"`
}

// tracer is the part of the dispatcher the resolve command relies on.
type tracer interface {
	ResolveWithTrace(ctx context.Context, address string) (*models.Coordinates, []geocoding.Attempt, error)
}

func newResolveCmd() *cobra.Command {
	var trace bool

	cmd := &cobra.Command{
		Use:   "resolve <address...>",
		Short: "Resolve one address and print its coordinates as JSON",
		Long: `
resolve dispatches the address once, exactly like the HTTP API does, and prints
the result. It exits with status 2 when no resolver found the address and with
status 1 on any error.
`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(cmd.ErrOrStderr())
			if err != nil {
				return &exitError{code: exitFailure, err: err}
			}

			return runResolve(cmd.Context(), app.dispatcher, strings.Join(args, " "), trace, cmd.OutOrStdout())
		},
	}
	cmd.Flags().BoolVar(&trace, "trace", false, "print every resolver attempt")

	return cmd
}

func runResolve(ctx context.Context, dispatcher tracer, address string, trace bool, out io.Writer) error {
	coords, attempts, err := dispatcher.ResolveWithTrace(ctx, address)
	if err != nil {
		return &exitError{code: exitFailure, err: err}
	}

	output := resolveOutput{Address: address, Result: coords}
	if trace {
		for _, attempt := range attempts {
			entry := attemptOutput{Resolver: attempt.Resolver, Outcome: string(attempt.Outcome)}
			if attempt.Err != nil {
				entry.Error = attempt.Err.Error()
			}
			output.Attempts = append(output.Attempts, entry)
		}
	}

	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	if err = encoder.Encode(output); err != nil {
		return &exitError{code: exitFailure, err: fmt.Errorf("failed to write result: %w", err)}
	}

	if coords == nil {
		return &exitError{code: exitNotFound}
	}

	return nil
}

// exitCode maps a command error to the process exit status.
func exitCode(err error) int {
	if err == nil {
		return 0
	}

	var exitErr *exitError
	if errors.As(err, &exitErr) {
		return exitErr.code
	}

	return exitFailure
}
