package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aura-survey/backend/internal/apperr"
	"github.com/aura-survey/backend/internal/flow"
)

func newTakeCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "take",
		Short: "Answer the survey interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctrl, err := opts.controller()
			if err != nil {
				return err
			}
			if err := ctrl.Load(cmd.Context()); err != nil {
				return err
			}
			return runTake(cmd.Context(), ctrl, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}

// runTake reads one command per line until quit or end of input.
func runTake(ctx context.Context, ctrl *flow.Controller, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	fmt.Fprintln(out, helpText())
	for {
		switch ctrl.View() {
		case flow.ViewAuth:
			return errNotSignedIn
		case flow.ViewEmpty:
			fmt.Fprintln(out, "There are no questions yet.")
			return nil
		case flow.ViewSummary:
			renderSummary(out, ctrl.Summary())
			fmt.Fprintln(out, "\nAll done. Enter b to revisit the last question or q to quit.")
		case flow.ViewQuestion:
			renderQuestion(out, ctrl.Current())
		}

		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		quit, err := dispatch(ctx, ctrl, strings.Fields(scanner.Text()), out)
		if quit {
			return nil
		}
		if err != nil {
			if apperr.IsAuth(err) {
				return fmt.Errorf("%s: sign in again", apperr.Message(err))
			}
			if !isAppErr(err) {
				return err
			}
			fmt.Fprintln(out, "Error:", apperr.Message(err))
		}
	}
}

func dispatch(ctx context.Context, ctrl *flow.Controller, fields []string, out io.Writer) (quit bool, err error) {
	if len(fields) == 0 {
		return false, nil
	}
	switch fields[0] {
	case "q", "quit", "exit":
		return true, nil
	case "n", "next":
		return false, ctrl.Next()
	case "b", "back", "prev":
		return false, ctrl.Prev()
	case "r", "refresh":
		return false, ctrl.Refresh(ctx)
	case "s", "summary":
		renderSummary(out, ctrl.Summary())
		return false, nil
	case "h", "help", "?":
		fmt.Fprintln(out, helpText())
		return false, nil
	case "p", "predict":
		if len(fields) != 2 {
			return false, apperr.Validation("usage: p <percent>")
		}
		v, err := strconv.ParseFloat(strings.TrimSuffix(fields[1], "%"), 64)
		if err != nil {
			return false, apperr.Validation("prediction must be a number")
		}
		if err := ctrl.SetPrediction(v); err != nil {
			return false, err
		}
		return false, ctrl.SubmitPrediction(ctx)
	}

	n, convErr := strconv.Atoi(fields[0])
	if convErr != nil {
		return false, apperr.Validation("unknown command, enter h for help")
	}
	v := ctrl.Current()
	if v == nil {
		return false, apperr.Validation("no question to answer")
	}
	if n < 1 || n > len(v.Question.Options) {
		return false, apperr.Validation(fmt.Sprintf("choose an option between 1 and %d", len(v.Question.Options)))
	}
	return false, ctrl.Select(ctx, v.Question.Options[n-1].ID)
}

func isAppErr(err error) bool {
	var e *apperr.Error
	return errors.As(err, &e)
}
